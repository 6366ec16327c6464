// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package reflection

import (
	"github.com/gogpu/mslconv/conv"
	"github.com/gogpu/mslconv/spirv"
)

// WorkgroupSize reflects the workgroup size of a compute entry point.
//
// A constant decorated with the WorkgroupSize builtin takes precedence
// over the LocalSize and LocalSizeId execution modes. Each dimension backed
// by a specialization constant with a SpecId is reported as specialized,
// with the constant's default value as its size. Sizes are at least 1.
func WorkgroupSize(m *spirv.Module, entry string) ([3]conv.WorkgroupDimension, error) {
	var dims [3]conv.WorkgroupDimension
	ep, err := findEntryPoint(m, entry, conv.StageCompute)
	if err != nil {
		return dims, err
	}

	if c := builtinWorkgroupSize(m); c != nil {
		for i := 0; i < 3 && i < len(c.Values); i++ {
			dims[i] = dimension(m, c.Values[i])
		}
	} else if ids, ok := ep.Modes[spirv.ExecutionModeLocalSizeID]; ok {
		for i := 0; i < 3 && i < len(ids); i++ {
			dims[i] = dimension(m, ids[i])
		}
	} else if sizes, ok := ep.Modes[spirv.ExecutionModeLocalSize]; ok {
		for i := 0; i < 3 && i < len(sizes); i++ {
			dims[i].Size = sizes[i]
		}
	}
	for i := range dims {
		if dims[i].Size == 0 {
			dims[i].Size = 1
		}
	}
	return dims, nil
}

func builtinWorkgroupSize(m *spirv.Module) *spirv.Constant {
	for _, c := range m.Constants() {
		if !c.IsComposite() {
			continue
		}
		if b, ok := m.DecorationValue(c.ID, spirv.DecorationBuiltIn); ok && spirv.BuiltIn(b) == spirv.BuiltInWorkgroupSize {
			return c
		}
	}
	return nil
}

func dimension(m *spirv.Module, id uint32) conv.WorkgroupDimension {
	var d conv.WorkgroupDimension
	d.Size, _ = m.ScalarConstant(id)
	if c := m.Constant(id); c != nil && c.IsSpec() {
		if specID, ok := m.DecorationValue(id, spirv.DecorationSpecID); ok {
			d.IsSpecialized = true
			d.SpecializationID = specID
		}
	}
	return d
}
