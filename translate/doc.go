// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package translate applies a conversion configuration to a translation
// engine and records which configured elements the result uses.
//
// An Engine turns one entry point of a shader module into Metal Shading
// Language. The Translator wraps an engine: it validates the
// configuration, fills in result defaults, wraps engine failures in
// translation errors and, on success only, writes the UsedByShader flags
// of the configuration's own stage.
//
// NagaEngine translates WGSL modules with the naga MSL backend, binding
// resources to the slots held in the configuration.
package translate
