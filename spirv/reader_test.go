// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package spirv

import (
	"encoding/binary"
	"strings"
	"testing"
)

type computeFixture struct {
	words              []uint32
	fn, helper, unused uint32
	buffer, idle       uint32
	sizeX, composite   uint32
}

// buildCompute assembles a compute module whose entry point calls a helper
// that reads one storage buffer. A second buffer is declared but never
// referenced.
func buildCompute() computeFixture {
	var f computeFixture
	b := NewModuleBuilder(Version1_3)
	b.AddCapability(CapabilityShader)
	b.SetMemoryModel(AddressingModelLogical, MemoryModelGLSL450)

	voidType := b.AddTypeVoid()
	fnType := b.AddTypeFunction(voidType)
	uintType := b.AddTypeInt(32, false)
	uvec3 := b.AddTypeVector(uintType, 3)
	f.sizeX = b.AddSpecConstant(uintType, 64)
	one := b.AddConstant(uintType, 1)
	f.composite = b.AddSpecConstantComposite(uvec3, f.sizeX, one, one)
	runtime := b.AddTypeRuntimeArray(uintType)
	block := b.AddTypeStruct(runtime)
	ptr := b.AddTypePointer(StorageClassStorageBuffer, block)
	f.buffer = b.AddVariable(ptr, StorageClassStorageBuffer)
	f.idle = b.AddVariable(ptr, StorageClassStorageBuffer)

	b.AddDecorate(f.sizeX, DecorationSpecID, 7)
	b.AddDecorate(f.composite, DecorationBuiltIn, uint32(BuiltInWorkgroupSize))
	b.AddDecorate(block, DecorationBlock)
	b.AddMemberDecorate(block, 0, DecorationOffset, 0)
	b.AddDecorate(f.buffer, DecorationDescriptorSet, 0)
	b.AddDecorate(f.buffer, DecorationBinding, 1)
	b.AddName(f.buffer, "data")

	f.unused = b.AddFunction(fnType, voidType, FunctionControlNone)
	b.AddLabel()
	b.AddReturn()
	b.AddFunctionEnd()

	f.helper = b.AddFunction(fnType, voidType, FunctionControlNone)
	b.AddLabel()
	uintPtr := b.AddTypePointer(StorageClassStorageBuffer, uintType)
	zero := b.AddConstant(uintType, 0)
	elem := b.AddAccessChain(uintPtr, f.buffer, zero, zero)
	b.AddLoad(uintType, elem)
	b.AddReturn()
	b.AddFunctionEnd()

	f.fn = b.AddFunction(fnType, voidType, FunctionControlNone)
	b.AddLabel()
	b.AddFunctionCall(voidType, f.helper)
	b.AddReturn()
	b.AddFunctionEnd()

	b.AddEntryPoint(ExecutionModelGLCompute, f.fn, "main", nil)
	b.AddExecutionMode(f.fn, ExecutionModeLocalSize, 8, 8, 1)
	f.words = b.Words()
	return f
}

func TestParse_EntryPointsAndModes(t *testing.T) {
	f := buildCompute()
	m, err := Parse(f.words)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.Version != Version1_3 {
		t.Errorf("Version = %s, want 1.3", m.Version)
	}
	ep, err := m.FindEntryPoint("main", ExecutionModelGLCompute)
	if err != nil {
		t.Fatalf("FindEntryPoint: %v", err)
	}
	if ep.Function != f.fn {
		t.Errorf("Function = %d, want %d", ep.Function, f.fn)
	}
	size := ep.Modes[ExecutionModeLocalSize]
	if len(size) != 3 || size[0] != 8 || size[1] != 8 || size[2] != 1 {
		t.Errorf("LocalSize = %v, want [8 8 1]", size)
	}
	if ep.HasMode(ExecutionModeLocalSizeID) {
		t.Error("unexpected LocalSizeId mode")
	}
	if _, err := m.FindEntryPoint("main", ExecutionModelFragment); err == nil {
		t.Error("expected error for wrong execution model")
	}
}

func TestParse_DecorationsAndConstants(t *testing.T) {
	f := buildCompute()
	m, err := Parse(f.words)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if v, ok := m.DecorationValue(f.buffer, DecorationBinding); !ok || v != 1 {
		t.Errorf("Binding = %d/%v, want 1", v, ok)
	}
	if v, ok := m.DecorationValue(f.sizeX, DecorationSpecID); !ok || v != 7 {
		t.Errorf("SpecId = %d/%v, want 7", v, ok)
	}
	if m.Names[f.buffer] != "data" {
		t.Errorf("name = %q, want %q", m.Names[f.buffer], "data")
	}
	c := m.Constant(f.composite)
	if c == nil || !c.IsSpec() || !c.IsComposite() {
		t.Fatalf("composite constant = %+v", c)
	}
	if v, ok := m.ScalarConstant(f.sizeX); !ok || v != 64 {
		t.Errorf("ScalarConstant = %d/%v, want 64", v, ok)
	}
	if got := len(m.Variables()); got != 2 {
		t.Errorf("len(Variables) = %d, want 2", got)
	}
	pointee := m.Pointee(m.Variable(f.buffer))
	if pointee == nil || pointee.Kind != TypeStruct {
		t.Fatalf("Pointee = %+v, want struct", pointee)
	}
	if v, ok := m.MemberDecorationValue(pointee.ID, 0, DecorationOffset); !ok || v != 0 {
		t.Errorf("member Offset = %d/%v, want 0", v, ok)
	}
}

func TestModule_StaticUsesFollowsCalls(t *testing.T) {
	f := buildCompute()
	m, err := Parse(f.words)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ep, _ := m.FindEntryPoint("main", ExecutionModelGLCompute)
	used := m.StaticUses(ep)
	if !used[f.buffer] {
		t.Error("buffer read through a called function should be used")
	}
	if used[f.idle] {
		t.Error("unreferenced buffer should not be used")
	}
	if used[f.unused] {
		t.Error("uncalled function should not be used")
	}
}

func TestParse_DecorationGroup(t *testing.T) {
	b := NewModuleBuilder(Version1_0)
	uintType := b.AddTypeInt(32, false)
	ptr := b.AddTypePointer(StorageClassUniform, uintType)
	v1 := b.AddVariable(ptr, StorageClassUniform)
	v2 := b.AddVariable(ptr, StorageClassUniform)
	group := b.AllocID()
	b.AddDecorate(group, DecorationDescriptorSet, 3)
	b.emit(sectionAnnotation, OpDecorationGroup, group)
	b.emit(sectionAnnotation, OpGroupDecorate, group, v1, v2)

	m, err := Parse(b.Words())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	for _, id := range []uint32{v1, v2} {
		if v, ok := m.DecorationValue(id, DecorationDescriptorSet); !ok || v != 3 {
			t.Errorf("variable %d: DescriptorSet = %d/%v, want 3", id, v, ok)
		}
	}
}

func TestParseBytes_BigEndian(t *testing.T) {
	words := buildCompute().words
	data := make([]byte, len(words)*4)
	for i, w := range words {
		binary.BigEndian.PutUint32(data[i*4:], w)
	}
	m, err := ParseBytes(data)
	if err != nil {
		t.Fatalf("ParseBytes: %v", err)
	}
	if len(m.EntryPoints) != 1 || m.EntryPoints[0].Name != "main" {
		t.Errorf("EntryPoints = %+v", m.EntryPoints)
	}
}

func TestParse_Malformed(t *testing.T) {
	valid := buildCompute().words
	truncated := append([]uint32(nil), valid[:len(valid)-1]...)
	zeroCount := append(append([]uint32(nil), valid[:5]...), 0)
	badMagic := append([]uint32(nil), valid...)
	badMagic[0] = 0xdeadbeef

	tests := []struct {
		name  string
		words []uint32
		want  string
	}{
		{"short", valid[:3], "too short"},
		{"magic", badMagic, "magic"},
		{"zero count", zeroCount, "zero word count"},
		{"truncated", truncated, "unterminated function"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.words)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want substring %q", err, tt.want)
			}
		})
	}
	if _, err := ParseBytes([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for unaligned binary")
	}
}
