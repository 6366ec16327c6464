// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package spirv

import "fmt"

// Version represents a SPIR-V version.
type Version struct {
	Major uint8
	Minor uint8
}

// Common SPIR-V versions
var (
	Version1_0 = Version{1, 0}
	Version1_3 = Version{1, 3}
	Version1_4 = Version{1, 4}
	Version1_5 = Version{1, 5}
	Version1_6 = Version{1, 6}
)

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// SPIR-V magic number and constants
const (
	MagicNumber = 0x07230203
	GeneratorID = 0x00000000 // Unregistered generator
)

// OpCode represents a SPIR-V opcode.
type OpCode uint16

// Opcodes the reader and builder care about.
const (
	OpNop                   OpCode = 0
	OpSource                OpCode = 3
	OpName                  OpCode = 5
	OpMemberName            OpCode = 6
	OpString                OpCode = 7
	OpExtension             OpCode = 10
	OpExtInstImport         OpCode = 11
	OpMemoryModel           OpCode = 14
	OpEntryPoint            OpCode = 15
	OpExecutionMode         OpCode = 16
	OpCapability            OpCode = 17
	OpTypeVoid              OpCode = 19
	OpTypeBool              OpCode = 20
	OpTypeInt               OpCode = 21
	OpTypeFloat             OpCode = 22
	OpTypeVector            OpCode = 23
	OpTypeMatrix            OpCode = 24
	OpTypeImage             OpCode = 25
	OpTypeSampler           OpCode = 26
	OpTypeSampledImage      OpCode = 27
	OpTypeArray             OpCode = 28
	OpTypeRuntimeArray      OpCode = 29
	OpTypeStruct            OpCode = 30
	OpTypePointer           OpCode = 32
	OpTypeFunction          OpCode = 33
	OpConstantTrue          OpCode = 41
	OpConstantFalse         OpCode = 42
	OpConstant              OpCode = 43
	OpConstantComposite     OpCode = 44
	OpConstantNull          OpCode = 46
	OpSpecConstantTrue      OpCode = 48
	OpSpecConstantFalse     OpCode = 49
	OpSpecConstant          OpCode = 50
	OpSpecConstantComposite OpCode = 51
	OpSpecConstantOp        OpCode = 52
	OpFunction              OpCode = 54
	OpFunctionParameter     OpCode = 55
	OpFunctionEnd           OpCode = 56
	OpFunctionCall          OpCode = 57
	OpVariable              OpCode = 59
	OpLoad                  OpCode = 61
	OpStore                 OpCode = 62
	OpAccessChain           OpCode = 65
	OpDecorate              OpCode = 71
	OpMemberDecorate        OpCode = 72
	OpDecorationGroup       OpCode = 73
	OpGroupDecorate         OpCode = 74
	OpLabel                 OpCode = 248
	OpBranch                OpCode = 249
	OpReturn                OpCode = 253
	OpReturnValue           OpCode = 254
	OpExecutionModeID       OpCode = 331
	OpDecorateID            OpCode = 332
)

// String returns the opcode mnemonic.
func (op OpCode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("Op(%d)", uint16(op))
}

// Capability represents a SPIR-V capability.
type Capability uint32

const (
	CapabilityMatrix       Capability = 0
	CapabilityShader       Capability = 1
	CapabilityTessellation Capability = 3
)

// AddressingModel represents a SPIR-V addressing model.
type AddressingModel uint32

const AddressingModelLogical AddressingModel = 0

// MemoryModel represents a SPIR-V memory model.
type MemoryModel uint32

const (
	MemoryModelSimple  MemoryModel = 0
	MemoryModelGLSL450 MemoryModel = 1
	MemoryModelVulkan  MemoryModel = 3
)

// FunctionControl represents SPIR-V function control bits.
type FunctionControl uint32

const FunctionControlNone FunctionControl = 0

// ExecutionModel represents a SPIR-V execution model.
type ExecutionModel uint32

const (
	ExecutionModelVertex                 ExecutionModel = 0
	ExecutionModelTessellationControl    ExecutionModel = 1
	ExecutionModelTessellationEvaluation ExecutionModel = 2
	ExecutionModelGeometry               ExecutionModel = 3
	ExecutionModelFragment               ExecutionModel = 4
	ExecutionModelGLCompute              ExecutionModel = 5
	ExecutionModelKernel                 ExecutionModel = 6
)

func (m ExecutionModel) String() string {
	return lookup(executionModelNames, m)
}

// ExecutionMode represents a SPIR-V execution mode.
type ExecutionMode uint32

const (
	ExecutionModeInvocations           ExecutionMode = 0
	ExecutionModeSpacingEqual          ExecutionMode = 1
	ExecutionModeSpacingFractionalEven ExecutionMode = 2
	ExecutionModeSpacingFractionalOdd  ExecutionMode = 3
	ExecutionModeVertexOrderCw         ExecutionMode = 4
	ExecutionModeVertexOrderCcw        ExecutionMode = 5
	ExecutionModeOriginUpperLeft       ExecutionMode = 7
	ExecutionModeEarlyFragmentTests    ExecutionMode = 9
	ExecutionModePointMode             ExecutionMode = 10
	ExecutionModeDepthReplacing        ExecutionMode = 12
	ExecutionModeLocalSize             ExecutionMode = 17
	ExecutionModeTriangles             ExecutionMode = 22
	ExecutionModeQuads                 ExecutionMode = 24
	ExecutionModeIsolines              ExecutionMode = 25
	ExecutionModeOutputVertices        ExecutionMode = 26
	ExecutionModeLocalSizeID           ExecutionMode = 38
)

func (m ExecutionMode) String() string {
	return lookup(executionModeNames, m)
}

// StorageClass represents a SPIR-V storage class.
type StorageClass uint32

const (
	StorageClassUniformConstant StorageClass = 0
	StorageClassInput           StorageClass = 1
	StorageClassUniform         StorageClass = 2
	StorageClassOutput          StorageClass = 3
	StorageClassWorkgroup       StorageClass = 4
	StorageClassPrivate         StorageClass = 6
	StorageClassFunction        StorageClass = 7
	StorageClassPushConstant    StorageClass = 9
	StorageClassStorageBuffer   StorageClass = 12
)

func (c StorageClass) String() string {
	return lookup(storageClassNames, c)
}

// Decoration represents a SPIR-V decoration.
type Decoration uint32

// Common decorations
const (
	DecorationSpecID        Decoration = 1
	DecorationBlock         Decoration = 2
	DecorationRowMajor      Decoration = 4
	DecorationColMajor      Decoration = 5
	DecorationArrayStride   Decoration = 6
	DecorationMatrixStride  Decoration = 7
	DecorationBuiltIn       Decoration = 11
	DecorationFlat          Decoration = 14
	DecorationPatch         Decoration = 15
	DecorationLocation      Decoration = 30
	DecorationComponent     Decoration = 31
	DecorationBinding       Decoration = 33
	DecorationDescriptorSet Decoration = 34
	DecorationOffset        Decoration = 35
)

func (d Decoration) String() string {
	return lookup(decorationNames, d)
}

// BuiltIn represents a SPIR-V builtin.
type BuiltIn uint32

const (
	BuiltInPosition           BuiltIn = 0
	BuiltInPointSize          BuiltIn = 1
	BuiltInClipDistance       BuiltIn = 3
	BuiltInCullDistance       BuiltIn = 4
	BuiltInInvocationID       BuiltIn = 8
	BuiltInTessLevelOuter     BuiltIn = 11
	BuiltInTessLevelInner     BuiltIn = 12
	BuiltInFragCoord          BuiltIn = 15
	BuiltInFragDepth          BuiltIn = 22
	BuiltInWorkgroupSize      BuiltIn = 25
	BuiltInGlobalInvocationID BuiltIn = 28
	BuiltInVertexIndex        BuiltIn = 42
)

func (b BuiltIn) String() string {
	return lookup(builtinNames, b)
}

// Dim represents an image dimensionality.
type Dim uint32

const (
	Dim1D          Dim = 0
	Dim2D          Dim = 1
	Dim3D          Dim = 2
	DimCube        Dim = 3
	DimBuffer      Dim = 5
	DimSubpassData Dim = 6
)
