// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package reflection

import (
	"github.com/gogpu/mslconv/conv"
	"github.com/gogpu/mslconv/spirv"
)

type bindingKey struct {
	set, binding uint32
}

type variableKey struct {
	storage  conv.StorageKind
	builtIn  conv.BuiltIn
	location uint32
}

func keyOf(v conv.InterfaceVariable) variableKey {
	if v.IsBuiltIn() {
		return variableKey{storage: v.Storage, builtIn: v.BuiltIn}
	}
	return variableKey{storage: v.Storage, builtIn: conv.BuiltInNone, location: v.Location}
}

// Usage records what one entry point statically references.
type Usage struct {
	resources map[bindingKey]bool
	variables map[variableKey]bool
}

func newUsage() *Usage {
	return &Usage{
		resources: make(map[bindingKey]bool),
		variables: make(map[variableKey]bool),
	}
}

// IsResourceUsed reports whether the entry point references the resource
// at (set, binding). Push constants are reported under
// (conv.PushConstantSet, conv.PushConstantBinding).
func (u *Usage) IsResourceUsed(set, binding uint32) bool {
	return u.resources[bindingKey{set, binding}]
}

// IsVariableUsed reports whether the entry point references the input or
// output v, matched by builtin or by location.
func (u *Usage) IsVariableUsed(v conv.InterfaceVariable) bool {
	return u.variables[keyOf(v)]
}

// StaticUsage computes the usage of an entry point of a SPIR-V module.
func StaticUsage(m *spirv.Module, entry string, stage conv.Stage) (*Usage, error) {
	ep, err := findEntryPoint(m, entry, stage)
	if err != nil {
		return nil, err
	}
	used := m.StaticUses(ep)
	u := newUsage()

	for _, v := range m.Variables() {
		if !used[v.ID] {
			continue
		}
		switch v.StorageClass {
		case spirv.StorageClassPushConstant:
			u.resources[bindingKey{conv.PushConstantSet, conv.PushConstantBinding}] = true
		case spirv.StorageClassUniform, spirv.StorageClassUniformConstant, spirv.StorageClassStorageBuffer:
			set, _ := m.DecorationValue(v.ID, spirv.DecorationDescriptorSet)
			binding, ok := m.DecorationValue(v.ID, spirv.DecorationBinding)
			if ok {
				u.resources[bindingKey{set, binding}] = true
			}
		}
	}
	for _, class := range [...]spirv.StorageClass{spirv.StorageClassInput, spirv.StorageClassOutput} {
		for _, v := range interfaceVariables(m, ep, stage, class, used) {
			if v.UsedByShader && (v.IsBuiltIn() || v.Location != conv.LocationAuto) {
				u.variables[keyOf(v)] = true
			}
		}
	}
	return u, nil
}
