// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package translate

import (
	"context"

	"github.com/gogpu/mslconv/conv"
	"github.com/gogpu/mslconv/shader"
)

// Request is one translation. Engines must not modify Config.
type Request struct {
	Module *shader.Module
	Config *conv.Configuration
}

// Usage reports which inputs, outputs and resources a translated entry
// point references.
type Usage interface {
	IsResourceUsed(set, binding uint32) bool
	IsVariableUsed(v conv.InterfaceVariable) bool
}

// Output is what an engine produces.
type Output struct {
	Source     string
	EntryPoint conv.EntryPoint

	RasterizationDisabled bool
	Log                   string

	// Usage may be nil, in which case every element is reported used.
	Usage Usage
}

// Engine translates shader modules.
type Engine interface {
	Translate(ctx context.Context, req Request) (*Output, error)
}

// EngineFunc adapts a function to the Engine interface.
type EngineFunc func(ctx context.Context, req Request) (*Output, error)

// Translate calls f.
func (f EngineFunc) Translate(ctx context.Context, req Request) (*Output, error) {
	return f(ctx, req)
}

// Failure is an engine error that carries the source produced before the
// engine gave up.
type Failure struct {
	PartialSource string
	Err           error
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return "translation failed"
	}
	return f.Err.Error()
}

func (f *Failure) Unwrap() error { return f.Err }
