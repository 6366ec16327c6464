// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package shader holds the source modules handed to the converter.
//
// A Module wraps a gputypes.ShaderSource and parses it on first use. Its
// Key, the code size and a 64-bit hash of the code, groups cached
// translations of the same module.
//
// SPIR-V sources are indexed with package spirv. WGSL sources are lowered
// to naga IR, and compiled to SPIR-V on demand so that SPIR-V reflection
// applies to them as well.
package shader
