// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package spirv

import (
	"encoding/binary"
	"math"
)

// Instruction is one SPIR-V instruction. Operands exclude the leading
// word-count/opcode word.
type Instruction struct {
	Opcode   OpCode
	Operands []uint32
}

// AppendTo appends the encoded instruction to words.
func (i Instruction) AppendTo(words []uint32) []uint32 {
	words = append(words, uint32(len(i.Operands)+1)<<16|uint32(i.Opcode))
	return append(words, i.Operands...)
}

// encodeString encodes s as a null-terminated literal padded to a whole
// number of words.
func encodeString(s string) []uint32 {
	n := len(s)/4 + 1
	buf := make([]byte, n*4)
	copy(buf, s)
	words := make([]uint32, n)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(buf[i*4:])
	}
	return words
}

// section is a logical layout section. Sections are emitted in order.
type section uint8

const (
	sectionCapability section = iota
	sectionMemoryModel
	sectionEntryPoint
	sectionExecutionMode
	sectionDebug
	sectionAnnotation
	sectionType
	sectionGlobal
	sectionFunction

	sectionCount
)

// ModuleBuilder assembles a module from instructions added in any order;
// each lands in its layout section. It performs no validation and exists
// to build fixtures and small synthetic modules.
type ModuleBuilder struct {
	version  Version
	nextID   uint32
	sections [sectionCount][]Instruction
}

// NewModuleBuilder returns an empty builder for version.
func NewModuleBuilder(version Version) *ModuleBuilder {
	return &ModuleBuilder{version: version, nextID: 1}
}

// AllocID reserves a fresh result ID.
func (b *ModuleBuilder) AllocID() uint32 {
	id := b.nextID
	b.nextID++
	return id
}

func (b *ModuleBuilder) emit(s section, op OpCode, operands ...uint32) {
	b.sections[s] = append(b.sections[s], Instruction{Opcode: op, Operands: operands})
}

// def emits op defining a new ID, which is returned.
func (b *ModuleBuilder) def(s section, op OpCode, operands ...uint32) uint32 {
	id := b.AllocID()
	b.emit(s, op, append([]uint32{id}, operands...)...)
	return id
}

// typedDef is def for instructions that carry a result type.
func (b *ModuleBuilder) typedDef(s section, op OpCode, resultType uint32, operands ...uint32) uint32 {
	id := b.AllocID()
	b.emit(s, op, append([]uint32{resultType, id}, operands...)...)
	return id
}

func (b *ModuleBuilder) AddCapability(c Capability) {
	b.emit(sectionCapability, OpCapability, uint32(c))
}

// SetMemoryModel replaces the module's memory model.
func (b *ModuleBuilder) SetMemoryModel(addressing AddressingModel, memory MemoryModel) {
	b.sections[sectionMemoryModel] = []Instruction{{
		Opcode:   OpMemoryModel,
		Operands: []uint32{uint32(addressing), uint32(memory)},
	}}
}

// AddEntryPoint declares fn as an entry point. iface lists the IDs of the
// interface variables.
func (b *ModuleBuilder) AddEntryPoint(model ExecutionModel, fn uint32, name string, iface []uint32) {
	ops := append([]uint32{uint32(model), fn}, encodeString(name)...)
	b.emit(sectionEntryPoint, OpEntryPoint, append(ops, iface...)...)
}

func (b *ModuleBuilder) AddExecutionMode(fn uint32, mode ExecutionMode, literals ...uint32) {
	b.emit(sectionExecutionMode, OpExecutionMode, append([]uint32{fn, uint32(mode)}, literals...)...)
}

// AddExecutionModeID is AddExecutionMode for modes whose operands are IDs,
// such as LocalSizeId.
func (b *ModuleBuilder) AddExecutionModeID(fn uint32, mode ExecutionMode, ids ...uint32) {
	b.emit(sectionExecutionMode, OpExecutionModeID, append([]uint32{fn, uint32(mode)}, ids...)...)
}

func (b *ModuleBuilder) AddName(id uint32, name string) {
	b.emit(sectionDebug, OpName, append([]uint32{id}, encodeString(name)...)...)
}

func (b *ModuleBuilder) AddMemberName(structID, member uint32, name string) {
	b.emit(sectionDebug, OpMemberName, append([]uint32{structID, member}, encodeString(name)...)...)
}

func (b *ModuleBuilder) AddDecorate(id uint32, d Decoration, literals ...uint32) {
	b.emit(sectionAnnotation, OpDecorate, append([]uint32{id, uint32(d)}, literals...)...)
}

func (b *ModuleBuilder) AddMemberDecorate(structID, member uint32, d Decoration, literals ...uint32) {
	b.emit(sectionAnnotation, OpMemberDecorate, append([]uint32{structID, member, uint32(d)}, literals...)...)
}

// Types. Each returns the new type ID.

func (b *ModuleBuilder) AddTypeVoid() uint32    { return b.def(sectionType, OpTypeVoid) }
func (b *ModuleBuilder) AddTypeBool() uint32    { return b.def(sectionType, OpTypeBool) }
func (b *ModuleBuilder) AddTypeSampler() uint32 { return b.def(sectionType, OpTypeSampler) }

func (b *ModuleBuilder) AddTypeFloat(width uint32) uint32 {
	return b.def(sectionType, OpTypeFloat, width)
}

func (b *ModuleBuilder) AddTypeInt(width uint32, signed bool) uint32 {
	var signedness uint32
	if signed {
		signedness = 1
	}
	return b.def(sectionType, OpTypeInt, width, signedness)
}

func (b *ModuleBuilder) AddTypeVector(component, count uint32) uint32 {
	return b.def(sectionType, OpTypeVector, component, count)
}

func (b *ModuleBuilder) AddTypeMatrix(column, columns uint32) uint32 {
	return b.def(sectionType, OpTypeMatrix, column, columns)
}

// AddTypeArray declares an array whose length is the constant lengthID.
func (b *ModuleBuilder) AddTypeArray(elem, lengthID uint32) uint32 {
	return b.def(sectionType, OpTypeArray, elem, lengthID)
}

func (b *ModuleBuilder) AddTypeRuntimeArray(elem uint32) uint32 {
	return b.def(sectionType, OpTypeRuntimeArray, elem)
}

// AddTypeImage declares a non-arrayed, single-sampled, non-depth image.
// sampled is 1 for sampled images and 2 for storage images.
func (b *ModuleBuilder) AddTypeImage(sampledType uint32, dim Dim, sampled uint32) uint32 {
	return b.def(sectionType, OpTypeImage, sampledType, uint32(dim), 0, 0, 0, sampled, 0)
}

func (b *ModuleBuilder) AddTypeSampledImage(image uint32) uint32 {
	return b.def(sectionType, OpTypeSampledImage, image)
}

func (b *ModuleBuilder) AddTypePointer(class StorageClass, pointee uint32) uint32 {
	return b.def(sectionType, OpTypePointer, uint32(class), pointee)
}

func (b *ModuleBuilder) AddTypeFunction(result uint32, params ...uint32) uint32 {
	return b.def(sectionType, OpTypeFunction, append([]uint32{result}, params...)...)
}

func (b *ModuleBuilder) AddTypeStruct(members ...uint32) uint32 {
	return b.def(sectionType, OpTypeStruct, members...)
}

// Constants share the type section.

func (b *ModuleBuilder) AddConstant(typ uint32, literals ...uint32) uint32 {
	return b.typedDef(sectionType, OpConstant, typ, literals...)
}

func (b *ModuleBuilder) AddConstantFloat32(typ uint32, v float32) uint32 {
	return b.AddConstant(typ, math.Float32bits(v))
}

func (b *ModuleBuilder) AddConstantComposite(typ uint32, parts ...uint32) uint32 {
	return b.typedDef(sectionType, OpConstantComposite, typ, parts...)
}

// AddSpecConstant declares a specialization constant with a default value.
// Give it an ID with AddDecorate(id, DecorationSpecID, n).
func (b *ModuleBuilder) AddSpecConstant(typ uint32, defaults ...uint32) uint32 {
	return b.typedDef(sectionType, OpSpecConstant, typ, defaults...)
}

func (b *ModuleBuilder) AddSpecConstantComposite(typ uint32, parts ...uint32) uint32 {
	return b.typedDef(sectionType, OpSpecConstantComposite, typ, parts...)
}

// AddVariable declares a module-scope variable of pointer type ptr.
func (b *ModuleBuilder) AddVariable(ptr uint32, class StorageClass) uint32 {
	return b.typedDef(sectionGlobal, OpVariable, ptr, uint32(class))
}

// Function bodies. Instructions are appended to the function section in
// call order, so a body is written between AddFunction and AddFunctionEnd.

func (b *ModuleBuilder) AddFunction(fnType, result uint32, control FunctionControl) uint32 {
	return b.typedDef(sectionFunction, OpFunction, result, uint32(control), fnType)
}

func (b *ModuleBuilder) AddLabel() uint32 { return b.def(sectionFunction, OpLabel) }
func (b *ModuleBuilder) AddReturn()       { b.emit(sectionFunction, OpReturn) }
func (b *ModuleBuilder) AddFunctionEnd()  { b.emit(sectionFunction, OpFunctionEnd) }

func (b *ModuleBuilder) AddFunctionCall(result, fn uint32, args ...uint32) uint32 {
	return b.typedDef(sectionFunction, OpFunctionCall, result, append([]uint32{fn}, args...)...)
}

func (b *ModuleBuilder) AddLoad(result, ptr uint32) uint32 {
	return b.typedDef(sectionFunction, OpLoad, result, ptr)
}

func (b *ModuleBuilder) AddStore(ptr, value uint32) {
	b.emit(sectionFunction, OpStore, ptr, value)
}

func (b *ModuleBuilder) AddAccessChain(result, base uint32, indices ...uint32) uint32 {
	return b.typedDef(sectionFunction, OpAccessChain, result, append([]uint32{base}, indices...)...)
}

// Words returns the module as a word stream. The ID bound is one past the
// last allocated ID.
func (b *ModuleBuilder) Words() []uint32 {
	v := uint32(b.version.Major)<<16 | uint32(b.version.Minor)<<8
	words := []uint32{MagicNumber, v, GeneratorID, b.nextID, 0}
	for _, insts := range b.sections {
		for _, inst := range insts {
			words = inst.AppendTo(words)
		}
	}
	return words
}

// Build returns the module as a little-endian binary.
func (b *ModuleBuilder) Build() []byte {
	words := b.Words()
	out := make([]byte, 0, len(words)*4)
	for _, w := range words {
		out = binary.LittleEndian.AppendUint32(out, w)
	}
	return out
}
