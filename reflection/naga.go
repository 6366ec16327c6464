// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package reflection

import (
	"github.com/gogpu/naga/ir"

	"github.com/gogpu/mslconv/conv"
)

// IR reflection covers the stages a WGSL module can declare. The
// tessellation stages have no IR equivalent.

var irStages = map[conv.Stage]ir.ShaderStage{
	conv.StageVertex:   ir.StageVertex,
	conv.StageFragment: ir.StageFragment,
	conv.StageCompute:  ir.StageCompute,
}

var irBuiltins = map[ir.BuiltinValue]conv.BuiltIn{
	ir.BuiltinPosition:             conv.BuiltInPosition,
	ir.BuiltinVertexIndex:          conv.BuiltInVertexIndex,
	ir.BuiltinInstanceIndex:        conv.BuiltInInstanceIndex,
	ir.BuiltinFrontFacing:          conv.BuiltInFrontFacing,
	ir.BuiltinFragDepth:            conv.BuiltInFragDepth,
	ir.BuiltinSampleIndex:          conv.BuiltInSampleID,
	ir.BuiltinSampleMask:           conv.BuiltInSampleMask,
	ir.BuiltinLocalInvocationID:    conv.BuiltInLocalInvocationID,
	ir.BuiltinLocalInvocationIndex: conv.BuiltInLocalInvocationIndex,
	ir.BuiltinGlobalInvocationID:   conv.BuiltInGlobalInvocationID,
	ir.BuiltinWorkGroupID:          conv.BuiltInWorkgroupID,
	ir.BuiltinNumWorkGroups:        conv.BuiltInNumWorkgroups,
	ir.BuiltinViewIndex:            conv.BuiltInViewIndex,
	ir.BuiltinPrimitiveIndex:       conv.BuiltInPrimitiveID,
	ir.BuiltinPointSize:            conv.BuiltInPointSize,
	ir.BuiltinClipDistance:         conv.BuiltInClipDistance,
}

func findIREntryPoint(m *ir.Module, name string, stage conv.Stage) (*ir.EntryPoint, error) {
	want, ok := irStages[stage]
	if !ok {
		return nil, conv.NewConfigurationError(stage, name, "entry point",
			"%s stage cannot be declared in WGSL", stage)
	}
	for i := range m.EntryPoints {
		ep := &m.EntryPoints[i]
		if ep.Stage == want && (name == "" || ep.Name == name) {
			return ep, nil
		}
	}
	return nil, conv.NewConfigurationError(stage, name, "entry point",
		"no %s entry point named %q", stage, name)
}

// IROutputs is Outputs for a naga IR module. Outputs are the bound members
// of the entry point's result; a returned value is always written, so
// every output is reported used.
func IROutputs(m *ir.Module, entry string, stage conv.Stage) ([]conv.InterfaceVariable, error) {
	ep, err := findIREntryPoint(m, entry, stage)
	if err != nil {
		return nil, err
	}
	var outs []conv.InterfaceVariable
	if res := ep.Function.Result; res != nil {
		outs = irBound(m, outs, conv.StorageOutput, stage, res.Type, res.Binding)
	}
	for i := range outs {
		outs[i].UsedByShader = true
	}
	return AssignLocations(outs), nil
}

// IRInputs reflects the bound entry-point arguments.
func IRInputs(m *ir.Module, entry string, stage conv.Stage) ([]conv.InterfaceVariable, error) {
	ep, err := findIREntryPoint(m, entry, stage)
	if err != nil {
		return nil, err
	}
	var ins []conv.InterfaceVariable
	for _, arg := range ep.Function.Arguments {
		ins = irBound(m, ins, conv.StorageInput, stage, arg.Type, arg.Binding)
	}
	return AssignLocations(ins), nil
}

// irBound appends the variables for a value of type th carrying binding, or
// for each bound member when th is a struct.
func irBound(m *ir.Module, vars []conv.InterfaceVariable, storage conv.StorageKind, stage conv.Stage, th ir.TypeHandle, binding *ir.Binding) []conv.InterfaceVariable {
	if binding != nil {
		if v, ok := irVariable(m, storage, stage, th, *binding); ok {
			vars = append(vars, v)
		}
		return vars
	}
	if int(th) >= len(m.Types) {
		return vars
	}
	st, ok := m.Types[th].Inner.(ir.StructType)
	if !ok {
		return vars
	}
	for _, member := range st.Members {
		if member.Binding == nil {
			continue
		}
		if v, ok := irVariable(m, storage, stage, member.Type, *member.Binding); ok {
			vars = append(vars, v)
		}
	}
	return vars
}

func irVariable(m *ir.Module, storage conv.StorageKind, stage conv.Stage, th ir.TypeHandle, binding ir.Binding) (conv.InterfaceVariable, bool) {
	v := conv.InterfaceVariable{
		Storage:  storage,
		Location: conv.LocationAuto,
		BuiltIn:  conv.BuiltInNone,
	}
	switch b := binding.(type) {
	case ir.LocationBinding:
		v.Location = b.Location
	case ir.BuiltinBinding:
		bi, ok := irBuiltins[b.Builtin]
		if !ok {
			return v, false
		}
		if bi == conv.BuiltInPosition && stage == conv.StageFragment && storage == conv.StorageInput {
			bi = conv.BuiltInFragCoord
		}
		v.BuiltIn = bi
	default:
		return v, false
	}
	v.Scalar, v.Width, v.VecSize = irDescribe(m, th)
	return v, true
}

// irDescribe returns the scalar kind, width in bits and vector size of th.
func irDescribe(m *ir.Module, th ir.TypeHandle) (conv.ScalarKind, uint32, uint32) {
	if int(th) >= len(m.Types) {
		return conv.ScalarUnknown, 0, 0
	}
	switch t := m.Types[th].Inner.(type) {
	case ir.ScalarType:
		return irScalar(t), uint32(t.Width) * 8, 1
	case ir.VectorType:
		return irScalar(t.Scalar), uint32(t.Scalar.Width) * 8, uint32(t.Size)
	case ir.ArrayType:
		return irDescribe(m, t.Base)
	}
	return conv.ScalarUnknown, 0, 0
}

func irScalar(s ir.ScalarType) conv.ScalarKind {
	switch s.Kind {
	case ir.ScalarFloat, ir.ScalarAbstractFloat:
		return conv.ScalarFloat
	case ir.ScalarSint, ir.ScalarAbstractInt:
		return conv.ScalarSint
	case ir.ScalarUint:
		return conv.ScalarUint
	case ir.ScalarBool:
		return conv.ScalarBool
	}
	return conv.ScalarUnknown
}

// IRStaticUsage is StaticUsage for a naga IR module. Globals count as used
// when an expression of the entry point, or of a function it calls,
// references them. Every bound argument and result member is used.
func IRStaticUsage(m *ir.Module, entry string, stage conv.Stage) (*Usage, error) {
	ep, err := findIREntryPoint(m, entry, stage)
	if err != nil {
		return nil, err
	}
	u := newUsage()
	globals := make(map[ir.GlobalVariableHandle]bool)
	visited := make(map[ir.FunctionHandle]bool)

	var walk func(fn *ir.Function)
	call := func(h ir.FunctionHandle) {
		if visited[h] || int(h) >= len(m.Functions) {
			return
		}
		visited[h] = true
		walk(&m.Functions[h])
	}
	walk = func(fn *ir.Function) {
		for _, e := range fn.Expressions {
			switch k := e.Kind.(type) {
			case ir.ExprGlobalVariable:
				globals[k.Variable] = true
			case ir.ExprCallResult:
				call(k.Function)
			}
		}
		for _, h := range calledFunctions(fn.Body, nil) {
			call(h)
		}
	}
	walk(&ep.Function)

	for h := range globals {
		if int(h) >= len(m.GlobalVariables) {
			continue
		}
		gv := m.GlobalVariables[h]
		switch {
		case gv.Space == ir.SpacePushConstant || gv.Space == ir.SpaceImmediate:
			u.resources[bindingKey{conv.PushConstantSet, conv.PushConstantBinding}] = true
		case gv.Binding != nil:
			u.resources[bindingKey{gv.Binding.Group, gv.Binding.Binding}] = true
		}
	}

	var vars []conv.InterfaceVariable
	for _, arg := range ep.Function.Arguments {
		vars = irBound(m, vars, conv.StorageInput, stage, arg.Type, arg.Binding)
	}
	if res := ep.Function.Result; res != nil {
		vars = irBound(m, vars, conv.StorageOutput, stage, res.Type, res.Binding)
	}
	for _, v := range vars {
		if v.IsBuiltIn() || v.Location != conv.LocationAuto {
			u.variables[keyOf(v)] = true
		}
	}
	return u, nil
}

// calledFunctions appends the targets of every call statement in block,
// descending into nested blocks.
func calledFunctions(block ir.Block, out []ir.FunctionHandle) []ir.FunctionHandle {
	for _, s := range block {
		switch k := s.Kind.(type) {
		case ir.StmtCall:
			out = append(out, k.Function)
		case ir.StmtBlock:
			out = calledFunctions(k.Block, out)
		case ir.StmtIf:
			out = calledFunctions(k.Accept, out)
			out = calledFunctions(k.Reject, out)
		case ir.StmtSwitch:
			for _, c := range k.Cases {
				out = calledFunctions(c.Body, out)
			}
		case ir.StmtLoop:
			out = calledFunctions(k.Body, out)
			out = calledFunctions(k.Continuing, out)
		}
	}
	return out
}

// IRWorkgroupSize reports the workgroup size of a compute entry point. WGSL
// sizes are resolved at lowering time and are never specialized.
func IRWorkgroupSize(m *ir.Module, entry string) ([3]conv.WorkgroupDimension, error) {
	var dims [3]conv.WorkgroupDimension
	ep, err := findIREntryPoint(m, entry, conv.StageCompute)
	if err != nil {
		return dims, err
	}
	for i, size := range ep.Workgroup {
		dims[i].Size = max(size, 1)
	}
	return dims, nil
}
