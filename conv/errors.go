// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package conv

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrorKind categorizes conversion errors.
type ErrorKind uint8

const (
	// KindConfiguration indicates malformed caller input, such as an
	// incompatible immutable sampler or slot exhaustion.
	KindConfiguration ErrorKind = iota

	// KindReflection indicates a required execution mode is declared by
	// neither cooperating stage.
	KindReflection

	// KindTranslation indicates the translation engine failed.
	KindTranslation

	// KindCacheConsistency indicates a persisted record was produced for a
	// different compiler version or platform. It is never returned to
	// callers of the cache lookup.
	KindCacheConsistency
)

// String returns a human-readable error kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindReflection:
		return "reflection"
	case KindTranslation:
		return "translation"
	case KindCacheConsistency:
		return "cache consistency"
	default:
		return "unknown"
	}
}

// Fact names a required tessellation fact.
type Fact uint8

const (
	FactNone Fact = iota
	FactPatchKind
	FactWinding
	FactPartition
	FactOutputControlPoints
)

// String returns the fact name.
func (f Fact) String() string {
	switch f {
	case FactPatchKind:
		return "patch kind"
	case FactWinding:
		return "winding order"
	case FactPartition:
		return "partition mode"
	case FactOutputControlPoints:
		return "output control point count"
	default:
		return "none"
	}
}

func (f Fact) missingMessage() string {
	switch f {
	case FactPatchKind:
		return "neither tessellation shader specifies a patch input mode (Triangles, Quads, or Isolines)"
	case FactWinding:
		return "neither tessellation shader specifies a winding order mode (VertexOrderCw or VertexOrderCcw)"
	case FactPartition:
		return "neither tessellation shader specifies a partition mode (SpacingEqual, SpacingFractionalOdd, or SpacingFractionalEven)"
	case FactOutputControlPoints:
		return "neither tessellation shader specifies the number of output control points"
	default:
		return "missing tessellation fact"
	}
}

// Error is a conversion error with enough context to act on it.
type Error struct {
	Kind ErrorKind

	Stage      Stage
	EntryPoint string
	// Element is the offending element, such as "set 0 binding 3".
	Element string
	// Fact is set for reflection errors.
	Fact Fact
	// PartialSource is whatever target source the engine produced before
	// failing. Translation errors only.
	PartialSource string

	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "mslconv %s error: %s stage", e.Kind, e.Stage)
	if e.EntryPoint != "" {
		fmt.Fprintf(&b, ", entry point %q", e.EntryPoint)
	}
	if e.Element != "" {
		fmt.Fprintf(&b, ", %s", e.Element)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// NewConfigurationError creates a configuration error.
func NewConfigurationError(stage Stage, entry, element, format string, args ...any) *Error {
	return &Error{
		Kind:       KindConfiguration,
		Stage:      stage,
		EntryPoint: entry,
		Element:    element,
		Message:    fmt.Sprintf(format, args...),
	}
}

// NewReflectionError creates an error for a missing tessellation fact.
func NewReflectionError(stage Stage, entry string, fact Fact) *Error {
	return &Error{
		Kind:       KindReflection,
		Stage:      stage,
		EntryPoint: entry,
		Element:    fact.String(),
		Fact:       fact,
		Message:    fact.missingMessage(),
	}
}

// NewTranslationError wraps an engine failure.
func NewTranslationError(stage Stage, entry, partial string, cause error) *Error {
	msg := "translation failed"
	if partial != "" {
		msg = fmt.Sprintf("translation failed (%d bytes of partial source)", len(partial))
	}
	return &Error{
		Kind:          KindTranslation,
		Stage:         stage,
		EntryPoint:    entry,
		PartialSource: partial,
		Message:       msg,
		Err:           cause,
	}
}

// NewCacheConsistencyError reports a persisted record pinned to another
// compiler version or platform.
func NewCacheConsistencyError(opts Options, want Options) *Error {
	return &Error{
		Kind:       KindCacheConsistency,
		Stage:      opts.Stage,
		EntryPoint: opts.EntryPoint,
		Element:    "options",
		Message: fmt.Sprintf("record built for %s %s, running %s %s",
			opts.Platform, opts.CompilerVersion, want.Platform, want.CompilerVersion),
	}
}

func kindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsConfiguration reports whether err is a configuration error.
func IsConfiguration(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindConfiguration
}

// IsReflection reports whether err is a reflection error.
func IsReflection(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindReflection
}

// IsTranslation reports whether err is a translation error.
func IsTranslation(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindTranslation
}

// IsCacheConsistency reports whether err is a cache consistency error.
func IsCacheConsistency(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindCacheConsistency
}
