// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package reflection

import (
	"golang.org/x/exp/slices"

	"github.com/gogpu/mslconv/conv"
	"github.com/gogpu/mslconv/spirv"
)

// Outputs reflects the output interface of an entry point. Struct outputs
// are expanded member by member, and matrix or array values into one
// entry per column or element at consecutive locations. Members without a
// location of their own follow the struct's location.
//
// For a tessellation control stage, per-vertex outputs are arrays indexed
// by control point and are reflected one array level deeper.
//
// The result is sorted by location. Entries without a location are given
// one past the location of the entry before them.
func Outputs(m *spirv.Module, entry string, stage conv.Stage) ([]conv.InterfaceVariable, error) {
	ep, err := findEntryPoint(m, entry, stage)
	if err != nil {
		return nil, err
	}
	outs := interfaceVariables(m, ep, stage, spirv.StorageClassOutput, m.StaticUses(ep))
	return AssignLocations(outs), nil
}

// Inputs is Outputs for the input interface. Both tessellation stages read
// per-vertex inputs as arrays indexed by control point.
func Inputs(m *spirv.Module, entry string, stage conv.Stage) ([]conv.InterfaceVariable, error) {
	ep, err := findEntryPoint(m, entry, stage)
	if err != nil {
		return nil, err
	}
	ins := interfaceVariables(m, ep, stage, spirv.StorageClassInput, m.StaticUses(ep))
	return AssignLocations(ins), nil
}

// arrayedPerVertex reports whether per-vertex variables of class are
// arrays indexed by control point in stage.
func arrayedPerVertex(stage conv.Stage, class spirv.StorageClass) bool {
	if class == spirv.StorageClassOutput {
		return stage == conv.StageTessControl
	}
	return stage.IsTessellation()
}

// interfaceVariables expands the entry point's interface variables of
// class, in declaration order, without resolving automatic locations.
func interfaceVariables(m *spirv.Module, ep *spirv.EntryPoint, stage conv.Stage, class spirv.StorageClass, used map[uint32]bool) []conv.InterfaceVariable {
	storage := conv.StorageOutput
	if class == spirv.StorageClassInput {
		storage = conv.StorageInput
	}
	var vars []conv.InterfaceVariable
	for _, id := range ep.Interface {
		v := m.Variable(id)
		if v == nil || v.StorageClass != class {
			continue
		}
		t := m.Pointee(v)
		if t == nil {
			continue
		}
		patch := m.HasDecoration(id, spirv.DecorationPatch)
		if !patch && arrayedPerVertex(stage, class) && isArray(t) {
			t = m.Type(t.Elem)
		}
		base := conv.InterfaceVariable{
			Storage:      storage,
			Location:     conv.LocationAuto,
			BuiltIn:      conv.BuiltInNone,
			Rate:         rate(patch),
			UsedByShader: used[id],
		}
		if loc, ok := m.DecorationValue(id, spirv.DecorationLocation); ok {
			base.Location = loc
		}
		if c, ok := m.DecorationValue(id, spirv.DecorationComponent); ok {
			base.Component = c
		}
		if b, ok := m.DecorationValue(id, spirv.DecorationBuiltIn); ok {
			base.BuiltIn = conv.BuiltIn(b)
		}
		if t == nil || t.Kind != spirv.TypeStruct {
			vars = expand(m, vars, base, t)
			continue
		}
		for i, memberType := range t.Members {
			member := base
			i := uint32(i)
			member.Location = addLocation(base.Location, i)
			if loc, ok := m.MemberDecorationValue(t.ID, i, spirv.DecorationLocation); ok {
				member.Location = loc
			}
			if c, ok := m.MemberDecorationValue(t.ID, i, spirv.DecorationComponent); ok {
				member.Component = c
			}
			if m.HasMemberDecoration(t.ID, i, spirv.DecorationPatch) {
				member.Rate = conv.RatePerPatch
			}
			if b, ok := m.MemberDecorationValue(t.ID, i, spirv.DecorationBuiltIn); ok {
				member.BuiltIn = conv.BuiltIn(b)
			}
			vars = expand(m, vars, member, m.Type(memberType))
		}
	}
	return vars
}

// expand appends v for type t, one entry per matrix column or array
// element.
func expand(m *spirv.Module, outs []conv.InterfaceVariable, v conv.InterfaceVariable, t *spirv.Type) []conv.InterfaceVariable {
	if t == nil {
		return append(outs, v)
	}
	n := uint32(1)
	switch t.Kind {
	case spirv.TypeMatrix:
		n = t.Count
	case spirv.TypeArray:
		if length, ok := m.ArrayLength(t); ok {
			n = length
		}
	}
	v.Scalar, v.Width, v.VecSize = describe(m, t)
	base := v.Location
	for i := uint32(0); i < n; i++ {
		v.Location = addLocation(base, i)
		outs = append(outs, v)
	}
	return outs
}

// describe returns the scalar kind, scalar width in bits and vector size
// of t, looking through matrices and arrays.
func describe(m *spirv.Module, t *spirv.Type) (conv.ScalarKind, uint32, uint32) {
	for depth := 0; t != nil && depth < 8; depth++ {
		switch t.Kind {
		case spirv.TypeBool:
			return conv.ScalarBool, 32, 1
		case spirv.TypeInt:
			if t.Signed {
				return conv.ScalarSint, t.Width, 1
			}
			return conv.ScalarUint, t.Width, 1
		case spirv.TypeFloat:
			return conv.ScalarFloat, t.Width, 1
		case spirv.TypeVector:
			k, w, _ := describe(m, m.Type(t.Elem))
			return k, w, t.Count
		case spirv.TypeMatrix, spirv.TypeArray, spirv.TypeRuntimeArray:
			t = m.Type(t.Elem)
		default:
			return conv.ScalarUnknown, 0, 0
		}
	}
	return conv.ScalarUnknown, 0, 0
}

func isArray(t *spirv.Type) bool {
	return t.Kind == spirv.TypeArray || t.Kind == spirv.TypeRuntimeArray
}

func rate(patch bool) conv.Rate {
	if patch {
		return conv.RatePerPatch
	}
	return conv.RatePerVertex
}

// addLocation offsets loc, leaving LocationAuto unresolved.
func addLocation(loc, i uint32) uint32 {
	if loc == conv.LocationAuto {
		return loc
	}
	return loc + i
}

// AssignLocations stable-sorts vars by location and resolves every
// LocationAuto entry to one past the entry before it. The first entry
// resolves to 0.
func AssignLocations(vars []conv.InterfaceVariable) []conv.InterfaceVariable {
	slices.SortStableFunc(vars, func(a, b conv.InterfaceVariable) int {
		switch {
		case a.Location < b.Location:
			return -1
		case a.Location > b.Location:
			return 1
		}
		return 0
	})
	prev := conv.LocationAuto
	for i := range vars {
		if vars[i].Location == conv.LocationAuto {
			vars[i].Location = prev + 1
		}
		prev = vars[i].Location
	}
	return vars
}

// NextStageInputs turns the outputs of one stage into the input variables
// of the stage that consumes them. Usage flags are cleared; they belong to
// the consuming stage's own translation.
func NextStageInputs(outputs []conv.InterfaceVariable) []conv.InterfaceVariable {
	inputs := make([]conv.InterfaceVariable, len(outputs))
	for i, v := range outputs {
		v.Storage = conv.StorageInput
		v.UsedByShader = false
		inputs[i] = v
	}
	return inputs
}
