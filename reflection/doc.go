// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package reflection recovers the facts translation needs from a shader
// module: merged tessellation execution modes, the reflected output
// interface of a stage, the compute workgroup size, and which interface
// variables and resources an entry point statically uses.
//
// The functions are pure. They never modify the module and are safe to
// call concurrently.
package reflection
