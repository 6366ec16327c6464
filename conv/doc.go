// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package conv defines the shader conversion data model: the per-stage
// Configuration that keys a translation, the Result it produces, and the
// errors reported along the way.
//
// A Configuration pairs Options with the stage interface variables and the
// resource bindings allocated for the stage. After translation the
// UsedByShader flags record which of those the shader actually reads, and
// Matches uses them to reuse a translation when only unused bindings differ:
//
//	if cached.Matches(cfg) {
//		cfg.AlignWith(cached)
//		return cachedResult
//	}
package conv
