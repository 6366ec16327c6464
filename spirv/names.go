// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package spirv

import "fmt"

// Mnemonics for the enumerants this package declares. Anything else prints
// as its number.

var opcodeNames = map[OpCode]string{
	OpNop: "OpNop", OpSource: "OpSource", OpName: "OpName",
	OpMemberName: "OpMemberName", OpString: "OpString",
	OpExtension: "OpExtension", OpExtInstImport: "OpExtInstImport",
	OpMemoryModel: "OpMemoryModel", OpEntryPoint: "OpEntryPoint",
	OpExecutionMode: "OpExecutionMode", OpCapability: "OpCapability",
	OpTypeVoid: "OpTypeVoid", OpTypeBool: "OpTypeBool", OpTypeInt: "OpTypeInt",
	OpTypeFloat: "OpTypeFloat", OpTypeVector: "OpTypeVector",
	OpTypeMatrix: "OpTypeMatrix", OpTypeImage: "OpTypeImage",
	OpTypeSampler: "OpTypeSampler", OpTypeSampledImage: "OpTypeSampledImage",
	OpTypeArray: "OpTypeArray", OpTypeRuntimeArray: "OpTypeRuntimeArray",
	OpTypeStruct: "OpTypeStruct", OpTypePointer: "OpTypePointer",
	OpTypeFunction: "OpTypeFunction",
	OpConstantTrue: "OpConstantTrue", OpConstantFalse: "OpConstantFalse",
	OpConstant: "OpConstant", OpConstantComposite: "OpConstantComposite",
	OpConstantNull: "OpConstantNull",
	OpSpecConstantTrue: "OpSpecConstantTrue", OpSpecConstantFalse: "OpSpecConstantFalse",
	OpSpecConstant: "OpSpecConstant", OpSpecConstantComposite: "OpSpecConstantComposite",
	OpSpecConstantOp: "OpSpecConstantOp",
	OpFunction: "OpFunction", OpFunctionParameter: "OpFunctionParameter",
	OpFunctionEnd: "OpFunctionEnd", OpFunctionCall: "OpFunctionCall",
	OpVariable: "OpVariable", OpLoad: "OpLoad", OpStore: "OpStore",
	OpAccessChain: "OpAccessChain", OpDecorate: "OpDecorate",
	OpMemberDecorate: "OpMemberDecorate", OpDecorationGroup: "OpDecorationGroup",
	OpGroupDecorate: "OpGroupDecorate", OpLabel: "OpLabel", OpBranch: "OpBranch",
	OpReturn: "OpReturn", OpReturnValue: "OpReturnValue",
	OpExecutionModeID: "OpExecutionModeId", OpDecorateID: "OpDecorateId",
}

var executionModelNames = map[ExecutionModel]string{
	ExecutionModelVertex:                 "Vertex",
	ExecutionModelTessellationControl:    "TessellationControl",
	ExecutionModelTessellationEvaluation: "TessellationEvaluation",
	ExecutionModelGeometry:               "Geometry",
	ExecutionModelFragment:               "Fragment",
	ExecutionModelGLCompute:              "GLCompute",
	ExecutionModelKernel:                 "Kernel",
}

var executionModeNames = map[ExecutionMode]string{
	ExecutionModeInvocations:           "Invocations",
	ExecutionModeSpacingEqual:          "SpacingEqual",
	ExecutionModeSpacingFractionalEven: "SpacingFractionalEven",
	ExecutionModeSpacingFractionalOdd:  "SpacingFractionalOdd",
	ExecutionModeVertexOrderCw:         "VertexOrderCw",
	ExecutionModeVertexOrderCcw:        "VertexOrderCcw",
	ExecutionModeOriginUpperLeft:       "OriginUpperLeft",
	ExecutionModeEarlyFragmentTests:    "EarlyFragmentTests",
	ExecutionModePointMode:             "PointMode",
	ExecutionModeDepthReplacing:        "DepthReplacing",
	ExecutionModeLocalSize:             "LocalSize",
	ExecutionModeTriangles:             "Triangles",
	ExecutionModeQuads:                 "Quads",
	ExecutionModeIsolines:              "Isolines",
	ExecutionModeOutputVertices:        "OutputVertices",
	ExecutionModeLocalSizeID:           "LocalSizeId",
}

var storageClassNames = map[StorageClass]string{
	StorageClassUniformConstant: "UniformConstant",
	StorageClassInput:           "Input",
	StorageClassUniform:         "Uniform",
	StorageClassOutput:          "Output",
	StorageClassWorkgroup:       "Workgroup",
	StorageClassPrivate:         "Private",
	StorageClassFunction:        "Function",
	StorageClassPushConstant:    "PushConstant",
	StorageClassStorageBuffer:   "StorageBuffer",
}

var decorationNames = map[Decoration]string{
	DecorationSpecID:        "SpecId",
	DecorationBlock:         "Block",
	DecorationRowMajor:      "RowMajor",
	DecorationColMajor:      "ColMajor",
	DecorationArrayStride:   "ArrayStride",
	DecorationMatrixStride:  "MatrixStride",
	DecorationBuiltIn:       "BuiltIn",
	DecorationFlat:          "Flat",
	DecorationPatch:         "Patch",
	DecorationLocation:      "Location",
	DecorationComponent:     "Component",
	DecorationBinding:       "Binding",
	DecorationDescriptorSet: "DescriptorSet",
	DecorationOffset:        "Offset",
}

var builtinNames = map[BuiltIn]string{
	BuiltInPosition:           "Position",
	BuiltInPointSize:          "PointSize",
	BuiltInClipDistance:       "ClipDistance",
	BuiltInCullDistance:       "CullDistance",
	BuiltInInvocationID:       "InvocationId",
	BuiltInTessLevelOuter:     "TessLevelOuter",
	BuiltInTessLevelInner:     "TessLevelInner",
	BuiltInFragCoord:          "FragCoord",
	BuiltInFragDepth:          "FragDepth",
	BuiltInWorkgroupSize:      "WorkgroupSize",
	BuiltInGlobalInvocationID: "GlobalInvocationId",
	BuiltInVertexIndex:        "VertexIndex",
}

func lookup[T ~uint32](names map[T]string, v T) string {
	if name, ok := names[v]; ok {
		return name
	}
	return fmt.Sprintf("%d", uint32(v))
}
