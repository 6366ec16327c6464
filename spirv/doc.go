// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package spirv reads and writes SPIR-V binaries at the level needed for
// shader interface reflection.
//
// Parse indexes a module without interpreting function bodies: entry
// points, execution modes, debug names, decorations (decoration groups are
// flattened onto their targets), types, constants, module-scope variables
// and, for each function, the set of IDs its body references. That last
// index is what makes static-use queries possible:
//
//	m, err := spirv.ParseBytes(code)
//	if err != nil {
//		return err
//	}
//	ep, err := m.FindEntryPoint("main", spirv.ExecutionModelFragment)
//	if err != nil {
//		return err
//	}
//	used := m.StaticUses(ep)
//
// # Binary Writer
//
// ModuleBuilder assembles modules section by section. It exists for building
// test fixtures, here and in the packages that reflect SPIR-V, and performs
// no validation:
//
//	builder := spirv.NewModuleBuilder(spirv.Version1_3)
//	builder.AddCapability(spirv.CapabilityShader)
//	builder.SetMemoryModel(spirv.AddressingModelLogical, spirv.MemoryModelGLSL450)
//	floatType := builder.AddTypeFloat(32)
//	vec4Type := builder.AddTypeVector(floatType, 4)
//	binary := builder.Build()
package spirv
