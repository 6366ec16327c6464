// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package reflection

import (
	"errors"
	"testing"

	"github.com/gogpu/mslconv/conv"
	"github.com/gogpu/mslconv/spirv"
)

type mode struct {
	mode   spirv.ExecutionMode
	params []uint32
}

// entryModule builds a module holding one empty entry point "main" with
// the given execution modes.
func entryModule(t *testing.T, model spirv.ExecutionModel, modes ...mode) *spirv.Module {
	t.Helper()
	b := spirv.NewModuleBuilder(spirv.Version1_3)
	b.AddCapability(spirv.CapabilityShader)
	b.SetMemoryModel(spirv.AddressingModelLogical, spirv.MemoryModelGLSL450)
	voidType := b.AddTypeVoid()
	fn := b.AddFunction(b.AddTypeFunction(voidType), voidType, spirv.FunctionControlNone)
	b.AddLabel()
	b.AddReturn()
	b.AddFunctionEnd()
	b.AddEntryPoint(model, fn, "main", nil)
	for _, m := range modes {
		b.AddExecutionMode(fn, m.mode, m.params...)
	}
	m, err := spirv.Parse(b.Words())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return m
}

func TestTessellation_Precedence(t *testing.T) {
	control := entryModule(t, spirv.ExecutionModelTessellationControl,
		mode{mode: spirv.ExecutionModeTriangles},
		mode{mode: spirv.ExecutionModeVertexOrderCw},
		mode{mode: spirv.ExecutionModeOutputVertices, params: []uint32{3}},
	)
	eval := entryModule(t, spirv.ExecutionModelTessellationEvaluation,
		mode{mode: spirv.ExecutionModeQuads},
		mode{mode: spirv.ExecutionModeVertexOrderCcw},
		mode{mode: spirv.ExecutionModeSpacingFractionalOdd},
		mode{mode: spirv.ExecutionModeOutputVertices, params: []uint32{4}},
		mode{mode: spirv.ExecutionModePointMode},
	)

	facts, err := Tessellation(control, "main", eval, "main")
	if err != nil {
		t.Fatalf("Tessellation: %v", err)
	}
	want := conv.TessellationFacts{
		PatchKind:           conv.PatchTriangles,
		Winding:             conv.WindingClockwise,
		Partition:           conv.PartitionFractionalOdd,
		OutputControlPoints: 3,
		PointMode:           true,
	}
	if facts != want {
		t.Errorf("Tessellation = %+v, want %+v", facts, want)
	}
}

func TestTessellation_Missing(t *testing.T) {
	tests := []struct {
		name    string
		control []mode
		eval    []mode
		fact    conv.Fact
	}{
		{
			name: "patch kind",
			eval: []mode{{mode: spirv.ExecutionModeVertexOrderCw}},
			fact: conv.FactPatchKind,
		},
		{
			name:    "winding",
			control: []mode{{mode: spirv.ExecutionModeIsolines}},
			fact:    conv.FactWinding,
		},
		{
			name: "partition",
			control: []mode{
				{mode: spirv.ExecutionModeTriangles},
				{mode: spirv.ExecutionModeVertexOrderCcw},
				{mode: spirv.ExecutionModeOutputVertices, params: []uint32{3}},
			},
			fact: conv.FactPartition,
		},
		{
			name: "control points",
			control: []mode{
				{mode: spirv.ExecutionModeTriangles},
				{mode: spirv.ExecutionModeSpacingEqual},
			},
			eval: []mode{{mode: spirv.ExecutionModeVertexOrderCw}},
			fact: conv.FactOutputControlPoints,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			control := entryModule(t, spirv.ExecutionModelTessellationControl, tt.control...)
			eval := entryModule(t, spirv.ExecutionModelTessellationEvaluation, tt.eval...)
			_, err := Tessellation(control, "", eval, "")
			if !conv.IsReflection(err) {
				t.Fatalf("Tessellation error = %v, want reflection error", err)
			}
			var e *conv.Error
			if !errors.As(err, &e) || e.Fact != tt.fact {
				t.Errorf("missing fact = %v, want %v", e.Fact, tt.fact)
			}
		})
	}
}

func TestTessellation_NoEntryPoint(t *testing.T) {
	control := entryModule(t, spirv.ExecutionModelVertex)
	eval := entryModule(t, spirv.ExecutionModelTessellationEvaluation)
	_, err := Tessellation(control, "main", eval, "main")
	if !conv.IsConfiguration(err) {
		t.Errorf("Tessellation error = %v, want configuration error", err)
	}
}

// outputModule declares outputs at locations 0 and 2 and one without a
// location, and writes only the first.
func outputModule(t *testing.T) *spirv.Module {
	t.Helper()
	b := spirv.NewModuleBuilder(spirv.Version1_3)
	b.AddCapability(spirv.CapabilityShader)
	b.SetMemoryModel(spirv.AddressingModelLogical, spirv.MemoryModelGLSL450)
	voidType := b.AddTypeVoid()
	float := b.AddTypeFloat(32)
	vec4 := b.AddTypeVector(float, 4)
	vec2 := b.AddTypeVector(float, 2)
	ptr4 := b.AddTypePointer(spirv.StorageClassOutput, vec4)
	ptr2 := b.AddTypePointer(spirv.StorageClassOutput, vec2)
	ptrF := b.AddTypePointer(spirv.StorageClassOutput, float)
	zero := b.AddConstantFloat32(float, 0)
	color := b.AddConstantComposite(vec4, zero, zero, zero, zero)

	out0 := b.AddVariable(ptr4, spirv.StorageClassOutput)
	out2 := b.AddVariable(ptr2, spirv.StorageClassOutput)
	outAuto := b.AddVariable(ptrF, spirv.StorageClassOutput)
	b.AddDecorate(out0, spirv.DecorationLocation, 0)
	b.AddDecorate(out2, spirv.DecorationLocation, 2)

	fn := b.AddFunction(b.AddTypeFunction(voidType), voidType, spirv.FunctionControlNone)
	b.AddLabel()
	b.AddStore(out0, color)
	b.AddReturn()
	b.AddFunctionEnd()
	b.AddEntryPoint(spirv.ExecutionModelVertex, fn, "main", []uint32{out0, out2, outAuto})

	m, err := spirv.Parse(b.Words())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return m
}

func TestOutputs_AutoLocation(t *testing.T) {
	outs, err := Outputs(outputModule(t), "main", conv.StageVertex)
	if err != nil {
		t.Fatalf("Outputs: %v", err)
	}
	if len(outs) != 3 {
		t.Fatalf("len(Outputs) = %d, want 3", len(outs))
	}
	wantLoc := []uint32{0, 2, 3}
	wantUsed := []bool{true, false, false}
	wantVec := []uint32{4, 2, 1}
	for i, v := range outs {
		if v.Location != wantLoc[i] {
			t.Errorf("outs[%d].Location = %d, want %d", i, v.Location, wantLoc[i])
		}
		if v.UsedByShader != wantUsed[i] {
			t.Errorf("outs[%d].UsedByShader = %v, want %v", i, v.UsedByShader, wantUsed[i])
		}
		if v.VecSize != wantVec[i] {
			t.Errorf("outs[%d].VecSize = %d, want %d", i, v.VecSize, wantVec[i])
		}
		if v.Scalar != conv.ScalarFloat || v.Width != 32 {
			t.Errorf("outs[%d] type = %s%d, want float32", i, v.Scalar, v.Width)
		}
		if v.Storage != conv.StorageOutput {
			t.Errorf("outs[%d].Storage = %s, want output", i, v.Storage)
		}
	}
}

func TestOutputs_StructAndMatrix(t *testing.T) {
	b := spirv.NewModuleBuilder(spirv.Version1_3)
	b.AddCapability(spirv.CapabilityShader)
	b.SetMemoryModel(spirv.AddressingModelLogical, spirv.MemoryModelGLSL450)
	voidType := b.AddTypeVoid()
	float := b.AddTypeFloat(32)
	sint := b.AddTypeInt(32, true)
	vec4 := b.AddTypeVector(float, 4)
	vec3 := b.AddTypeVector(float, 3)
	mat3 := b.AddTypeMatrix(vec3, 3)
	block := b.AddTypeStruct(vec4, mat3, sint)
	b.AddMemberDecorate(block, 2, spirv.DecorationLocation, 10)
	blockPtr := b.AddTypePointer(spirv.StorageClassOutput, block)
	posPtr := b.AddTypePointer(spirv.StorageClassOutput, vec4)

	outs := b.AddVariable(blockPtr, spirv.StorageClassOutput)
	pos := b.AddVariable(posPtr, spirv.StorageClassOutput)
	b.AddDecorate(outs, spirv.DecorationLocation, 4)
	b.AddDecorate(pos, spirv.DecorationBuiltIn, uint32(spirv.BuiltInPosition))

	fn := b.AddFunction(b.AddTypeFunction(voidType), voidType, spirv.FunctionControlNone)
	b.AddLabel()
	b.AddReturn()
	b.AddFunctionEnd()
	b.AddEntryPoint(spirv.ExecutionModelVertex, fn, "main", []uint32{pos, outs})

	m, err := spirv.Parse(b.Words())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got, err := Outputs(m, "", conv.StageVertex)
	if err != nil {
		t.Fatalf("Outputs: %v", err)
	}

	want := []struct {
		location uint32
		builtIn  conv.BuiltIn
		scalar   conv.ScalarKind
		vecSize  uint32
	}{
		{4, conv.BuiltInNone, conv.ScalarFloat, 4},
		{5, conv.BuiltInNone, conv.ScalarFloat, 3},
		{6, conv.BuiltInNone, conv.ScalarFloat, 3},
		{7, conv.BuiltInNone, conv.ScalarFloat, 3},
		{10, conv.BuiltInNone, conv.ScalarSint, 1},
		{11, conv.BuiltInPosition, conv.ScalarFloat, 4},
	}
	if len(got) != len(want) {
		t.Fatalf("len(Outputs) = %d, want %d: %v", len(got), len(want), got)
	}
	for i, w := range want {
		g := got[i]
		if g.Location != w.location || g.BuiltIn != w.builtIn || g.Scalar != w.scalar || g.VecSize != w.vecSize {
			t.Errorf("outs[%d] = {%d %d %s %d}, want {%d %d %s %d}", i,
				g.Location, g.BuiltIn, g.Scalar, g.VecSize,
				w.location, w.builtIn, w.scalar, w.vecSize)
		}
	}
}

func TestOutputs_TessControlArrays(t *testing.T) {
	b := spirv.NewModuleBuilder(spirv.Version1_3)
	b.AddCapability(spirv.CapabilityTessellation)
	b.SetMemoryModel(spirv.AddressingModelLogical, spirv.MemoryModelGLSL450)
	voidType := b.AddTypeVoid()
	float := b.AddTypeFloat(32)
	u32 := b.AddTypeInt(32, false)
	vec4 := b.AddTypeVector(float, 4)
	perVertex := b.AddTypeArray(vec4, b.AddConstant(u32, 3))
	perPatch := b.AddTypeArray(float, b.AddConstant(u32, 2))

	vertexOut := b.AddVariable(b.AddTypePointer(spirv.StorageClassOutput, perVertex), spirv.StorageClassOutput)
	patchOut := b.AddVariable(b.AddTypePointer(spirv.StorageClassOutput, perPatch), spirv.StorageClassOutput)
	b.AddDecorate(vertexOut, spirv.DecorationLocation, 1)
	b.AddDecorate(patchOut, spirv.DecorationLocation, 5)
	b.AddDecorate(patchOut, spirv.DecorationPatch)

	fn := b.AddFunction(b.AddTypeFunction(voidType), voidType, spirv.FunctionControlNone)
	b.AddLabel()
	b.AddReturn()
	b.AddFunctionEnd()
	b.AddEntryPoint(spirv.ExecutionModelTessellationControl, fn, "main", []uint32{vertexOut, patchOut})
	b.AddExecutionMode(fn, spirv.ExecutionModeOutputVertices, 3)

	m, err := spirv.Parse(b.Words())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	outs, err := Outputs(m, "main", conv.StageTessControl)
	if err != nil {
		t.Fatalf("Outputs: %v", err)
	}
	if len(outs) != 3 {
		t.Fatalf("len(Outputs) = %d, want 3: %v", len(outs), outs)
	}
	if outs[0].Location != 1 || outs[0].VecSize != 4 || outs[0].Rate != conv.RatePerVertex {
		t.Errorf("per-vertex output = %+v, want location 1 vec4 per vertex", outs[0])
	}
	for i, loc := range []uint32{5, 6} {
		if outs[i+1].Location != loc || outs[i+1].Rate != conv.RatePerPatch {
			t.Errorf("patch output %d = %+v, want location %d per patch", i, outs[i+1], loc)
		}
	}

	// The same module read as a vertex stage keeps the array level.
	m.EntryPoints[0].Model = spirv.ExecutionModelVertex
	outs, err = Outputs(m, "main", conv.StageVertex)
	if err != nil {
		t.Fatalf("Outputs: %v", err)
	}
	if len(outs) != 5 {
		t.Errorf("len(Outputs) as vertex = %d, want 5", len(outs))
	}
}

func TestAssignLocations(t *testing.T) {
	v := func(loc uint32) conv.InterfaceVariable {
		return conv.InterfaceVariable{Location: loc, BuiltIn: conv.BuiltInNone}
	}
	tests := []struct {
		name string
		in   []uint32
		want []uint32
	}{
		{"explicit then auto", []uint32{0, 2, conv.LocationAuto}, []uint32{0, 2, 3}},
		{"unsorted", []uint32{3, conv.LocationAuto, 1}, []uint32{1, 3, 4}},
		{"all auto", []uint32{conv.LocationAuto, conv.LocationAuto}, []uint32{0, 1}},
		{"empty", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var vars []conv.InterfaceVariable
			for _, loc := range tt.in {
				vars = append(vars, v(loc))
			}
			got := AssignLocations(vars)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].Location != tt.want[i] {
					t.Errorf("[%d].Location = %d, want %d", i, got[i].Location, tt.want[i])
				}
			}
		})
	}
}

func TestNextStageInputs(t *testing.T) {
	outs := []conv.InterfaceVariable{
		{Storage: conv.StorageOutput, Location: 0, BuiltIn: conv.BuiltInNone, VecSize: 4, UsedByShader: true},
		{Storage: conv.StorageOutput, Location: 1, BuiltIn: conv.BuiltInNone, VecSize: 2},
	}
	ins := NextStageInputs(outs)
	for i, v := range ins {
		if v.Storage != conv.StorageInput {
			t.Errorf("ins[%d].Storage = %s, want input", i, v.Storage)
		}
		if v.UsedByShader {
			t.Errorf("ins[%d].UsedByShader = true, want false", i)
		}
		if v.Location != outs[i].Location || v.VecSize != outs[i].VecSize {
			t.Errorf("ins[%d] = %+v, want layout of %+v", i, v, outs[i])
		}
	}
	if !outs[0].UsedByShader {
		t.Error("NextStageInputs modified its argument")
	}
}

func TestWorkgroupSize(t *testing.T) {
	t.Run("local size", func(t *testing.T) {
		m := entryModule(t, spirv.ExecutionModelGLCompute,
			mode{mode: spirv.ExecutionModeLocalSize, params: []uint32{8, 4, 0}})
		dims, err := WorkgroupSize(m, "main")
		if err != nil {
			t.Fatalf("WorkgroupSize: %v", err)
		}
		for i, want := range []uint32{8, 4, 1} {
			if dims[i].Size != want || dims[i].IsSpecialized {
				t.Errorf("dims[%d] = %+v, want literal %d", i, dims[i], want)
			}
		}
	})

	t.Run("no mode", func(t *testing.T) {
		m := entryModule(t, spirv.ExecutionModelGLCompute)
		dims, err := WorkgroupSize(m, "")
		if err != nil {
			t.Fatalf("WorkgroupSize: %v", err)
		}
		for i := range dims {
			if dims[i].Size != 1 {
				t.Errorf("dims[%d].Size = %d, want 1", i, dims[i].Size)
			}
		}
	})

	t.Run("local size id", func(t *testing.T) {
		b := spirv.NewModuleBuilder(spirv.Version1_3)
		voidType := b.AddTypeVoid()
		u32 := b.AddTypeInt(32, false)
		x := b.AddSpecConstant(u32, 32)
		y := b.AddConstant(u32, 2)
		b.AddDecorate(x, spirv.DecorationSpecID, 3)
		fn := b.AddFunction(b.AddTypeFunction(voidType), voidType, spirv.FunctionControlNone)
		b.AddLabel()
		b.AddReturn()
		b.AddFunctionEnd()
		b.AddEntryPoint(spirv.ExecutionModelGLCompute, fn, "main", nil)
		b.AddExecutionModeID(fn, spirv.ExecutionModeLocalSizeID, x, y, y)
		b.AddExecutionMode(fn, spirv.ExecutionModeLocalSize, 1, 1, 1)
		m, err := spirv.Parse(b.Words())
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}

		dims, err := WorkgroupSize(m, "main")
		if err != nil {
			t.Fatalf("WorkgroupSize: %v", err)
		}
		want := [3]conv.WorkgroupDimension{
			{Size: 32, SpecializationID: 3, IsSpecialized: true},
			{Size: 2},
			{Size: 2},
		}
		if dims != want {
			t.Errorf("WorkgroupSize = %+v, want %+v", dims, want)
		}
	})

	t.Run("builtin composite", func(t *testing.T) {
		b := spirv.NewModuleBuilder(spirv.Version1_3)
		voidType := b.AddTypeVoid()
		u32 := b.AddTypeInt(32, false)
		uvec3 := b.AddTypeVector(u32, 3)
		x := b.AddSpecConstant(u32, 16)
		z := b.AddSpecConstant(u32, 0)
		one := b.AddConstant(u32, 1)
		size := b.AddSpecConstantComposite(uvec3, x, one, z)
		b.AddDecorate(x, spirv.DecorationSpecID, 0)
		b.AddDecorate(z, spirv.DecorationSpecID, 2)
		b.AddDecorate(size, spirv.DecorationBuiltIn, uint32(spirv.BuiltInWorkgroupSize))
		fn := b.AddFunction(b.AddTypeFunction(voidType), voidType, spirv.FunctionControlNone)
		b.AddLabel()
		b.AddReturn()
		b.AddFunctionEnd()
		b.AddEntryPoint(spirv.ExecutionModelGLCompute, fn, "main", nil)
		b.AddExecutionMode(fn, spirv.ExecutionModeLocalSize, 64, 64, 64)
		m, err := spirv.Parse(b.Words())
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}

		dims, err := WorkgroupSize(m, "main")
		if err != nil {
			t.Fatalf("WorkgroupSize: %v", err)
		}
		want := [3]conv.WorkgroupDimension{
			{Size: 16, SpecializationID: 0, IsSpecialized: true},
			{Size: 1},
			{Size: 1, SpecializationID: 2, IsSpecialized: true},
		}
		if dims != want {
			t.Errorf("WorkgroupSize = %+v, want %+v", dims, want)
		}
	})

	t.Run("wrong stage", func(t *testing.T) {
		m := entryModule(t, spirv.ExecutionModelFragment)
		if _, err := WorkgroupSize(m, "main"); !conv.IsConfiguration(err) {
			t.Errorf("WorkgroupSize error = %v, want configuration error", err)
		}
	})
}

func TestStaticUsage(t *testing.T) {
	b := spirv.NewModuleBuilder(spirv.Version1_3)
	b.AddCapability(spirv.CapabilityShader)
	b.SetMemoryModel(spirv.AddressingModelLogical, spirv.MemoryModelGLSL450)
	voidType := b.AddTypeVoid()
	float := b.AddTypeFloat(32)
	vec4 := b.AddTypeVector(float, 4)
	block := b.AddTypeStruct(vec4)
	b.AddDecorate(block, spirv.DecorationBlock)
	uniformPtr := b.AddTypePointer(spirv.StorageClassUniform, block)
	pushPtr := b.AddTypePointer(spirv.StorageClassPushConstant, block)
	vec4Uniform := b.AddTypePointer(spirv.StorageClassUniform, vec4)
	vec4Push := b.AddTypePointer(spirv.StorageClassPushConstant, vec4)
	outPtr := b.AddTypePointer(spirv.StorageClassOutput, vec4)
	u32 := b.AddTypeInt(32, false)
	zero := b.AddConstant(u32, 0)

	used := b.AddVariable(uniformPtr, spirv.StorageClassUniform)
	unused := b.AddVariable(uniformPtr, spirv.StorageClassUniform)
	push := b.AddVariable(pushPtr, spirv.StorageClassPushConstant)
	pos := b.AddVariable(outPtr, spirv.StorageClassOutput)
	color := b.AddVariable(outPtr, spirv.StorageClassOutput)
	b.AddDecorate(used, spirv.DecorationDescriptorSet, 1)
	b.AddDecorate(used, spirv.DecorationBinding, 2)
	b.AddDecorate(unused, spirv.DecorationDescriptorSet, 1)
	b.AddDecorate(unused, spirv.DecorationBinding, 3)
	b.AddDecorate(pos, spirv.DecorationBuiltIn, uint32(spirv.BuiltInPosition))
	b.AddDecorate(color, spirv.DecorationLocation, 0)

	fn := b.AddFunction(b.AddTypeFunction(voidType), voidType, spirv.FunctionControlNone)
	b.AddLabel()
	u := b.AddLoad(vec4, b.AddAccessChain(vec4Uniform, used, zero))
	p := b.AddLoad(vec4, b.AddAccessChain(vec4Push, push, zero))
	b.AddStore(pos, u)
	b.AddStore(pos, p)
	b.AddReturn()
	b.AddFunctionEnd()
	b.AddEntryPoint(spirv.ExecutionModelVertex, fn, "main", []uint32{pos, color})

	m, err := spirv.Parse(b.Words())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	usage, err := StaticUsage(m, "main", conv.StageVertex)
	if err != nil {
		t.Fatalf("StaticUsage: %v", err)
	}

	resources := []struct {
		set, binding uint32
		want         bool
	}{
		{1, 2, true},
		{1, 3, false},
		{conv.PushConstantSet, conv.PushConstantBinding, true},
		{0, 0, false},
	}
	for _, r := range resources {
		if got := usage.IsResourceUsed(r.set, r.binding); got != r.want {
			t.Errorf("IsResourceUsed(%d, %d) = %v, want %v", r.set, r.binding, got, r.want)
		}
	}

	position := conv.InterfaceVariable{Storage: conv.StorageOutput, BuiltIn: conv.BuiltInPosition}
	if !usage.IsVariableUsed(position) {
		t.Error("Position output reported unused")
	}
	location0 := conv.InterfaceVariable{Storage: conv.StorageOutput, BuiltIn: conv.BuiltInNone, Location: 0}
	if usage.IsVariableUsed(location0) {
		t.Error("unwritten location 0 output reported used")
	}
	location0.Storage = conv.StorageInput
	if usage.IsVariableUsed(location0) {
		t.Error("undeclared input reported used")
	}
}

func TestInputs(t *testing.T) {
	b := spirv.NewModuleBuilder(spirv.Version1_3)
	b.AddCapability(spirv.CapabilityShader)
	b.SetMemoryModel(spirv.AddressingModelLogical, spirv.MemoryModelGLSL450)
	voidType := b.AddTypeVoid()
	float := b.AddTypeFloat(32)
	vec4 := b.AddTypeVector(float, 4)
	ptr4 := b.AddTypePointer(spirv.StorageClassInput, vec4)

	coord := b.AddVariable(ptr4, spirv.StorageClassInput)
	uv := b.AddVariable(ptr4, spirv.StorageClassInput)
	idle := b.AddVariable(ptr4, spirv.StorageClassInput)
	b.AddDecorate(coord, spirv.DecorationBuiltIn, uint32(conv.BuiltInFragCoord))
	b.AddDecorate(uv, spirv.DecorationLocation, 3)
	b.AddDecorate(idle, spirv.DecorationLocation, 1)

	fn := b.AddFunction(b.AddTypeFunction(voidType), voidType, spirv.FunctionControlNone)
	b.AddLabel()
	b.AddLoad(vec4, uv)
	b.AddReturn()
	b.AddFunctionEnd()
	b.AddEntryPoint(spirv.ExecutionModelFragment, fn, "main", []uint32{coord, uv, idle})

	m, err := spirv.Parse(b.Words())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ins, err := Inputs(m, "main", conv.StageFragment)
	if err != nil {
		t.Fatalf("Inputs: %v", err)
	}
	if len(ins) != 3 {
		t.Fatalf("len(Inputs) = %d, want 3", len(ins))
	}
	if ins[0].Location != 1 || ins[0].UsedByShader {
		t.Errorf("ins[0] = %v used %v, want location 1 unused", ins[0], ins[0].UsedByShader)
	}
	if ins[1].Location != 3 || !ins[1].UsedByShader || ins[1].Storage != conv.StorageInput {
		t.Errorf("ins[1] = %v used %v, want used input location 3", ins[1], ins[1].UsedByShader)
	}
	if ins[2].BuiltIn != conv.BuiltInFragCoord {
		t.Errorf("ins[2] = %v, want frag coord", ins[2])
	}
}
