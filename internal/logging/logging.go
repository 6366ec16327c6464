// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package logging holds the silent default logger shared by the converter
// packages.
package logging

import (
	"context"
	"log/slog"
)

// nopHandler discards every record. Enabled returns false, so callers skip
// formatting altogether.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var nop = slog.New(nopHandler{})

// Nop returns a logger that produces no output.
func Nop() *slog.Logger { return nop }

// OrNop returns l, or the silent logger when l is nil.
func OrNop(l *slog.Logger) *slog.Logger {
	if l == nil {
		return nop
	}
	return l
}
