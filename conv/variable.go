// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package conv

import "fmt"

// LocationAuto marks an interface variable whose location has not been
// resolved yet.
const LocationAuto = ^uint32(0)

// StorageKind tells inputs from outputs.
type StorageKind uint8

const (
	StorageInput StorageKind = iota
	StorageOutput
)

func (k StorageKind) String() string {
	if k == StorageOutput {
		return "output"
	}
	return "input"
}

// BuiltIn identifies a builtin interface value. Values follow the SPIR-V
// BuiltIn numbering.
type BuiltIn uint32

// Builtins referenced by name in this module.
const (
	BuiltInPosition             BuiltIn = 0
	BuiltInPointSize            BuiltIn = 1
	BuiltInClipDistance         BuiltIn = 3
	BuiltInCullDistance         BuiltIn = 4
	BuiltInVertexID             BuiltIn = 5
	BuiltInInstanceID           BuiltIn = 6
	BuiltInPrimitiveID          BuiltIn = 7
	BuiltInInvocationID         BuiltIn = 8
	BuiltInLayer                BuiltIn = 9
	BuiltInViewportIndex        BuiltIn = 10
	BuiltInTessLevelOuter       BuiltIn = 11
	BuiltInTessLevelInner       BuiltIn = 12
	BuiltInTessCoord            BuiltIn = 13
	BuiltInPatchVertices        BuiltIn = 14
	BuiltInFragCoord            BuiltIn = 15
	BuiltInPointCoord           BuiltIn = 16
	BuiltInFrontFacing          BuiltIn = 17
	BuiltInSampleID             BuiltIn = 18
	BuiltInSamplePosition       BuiltIn = 19
	BuiltInSampleMask           BuiltIn = 20
	BuiltInFragDepth            BuiltIn = 22
	BuiltInNumWorkgroups        BuiltIn = 24
	BuiltInWorkgroupSize        BuiltIn = 25
	BuiltInWorkgroupID          BuiltIn = 26
	BuiltInLocalInvocationID    BuiltIn = 27
	BuiltInGlobalInvocationID   BuiltIn = 28
	BuiltInLocalInvocationIndex BuiltIn = 29
	BuiltInVertexIndex          BuiltIn = 42
	BuiltInInstanceIndex        BuiltIn = 43
	BuiltInViewIndex            BuiltIn = 4440

	// BuiltInNone marks a location-addressed variable.
	BuiltInNone BuiltIn = ^BuiltIn(0)
)

// ScalarKind is the base scalar type of an interface variable.
type ScalarKind uint8

const (
	ScalarUnknown ScalarKind = iota
	ScalarFloat
	ScalarSint
	ScalarUint
	ScalarBool
)

func (k ScalarKind) String() string {
	switch k {
	case ScalarFloat:
		return "float"
	case ScalarSint:
		return "int"
	case ScalarUint:
		return "uint"
	case ScalarBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Rate is the frequency at which an interface variable varies.
type Rate uint8

const (
	RatePerVertex Rate = iota
	RatePerPrimitive
	RatePerPatch
)

// InterfaceVariable is one stage input or output.
type InterfaceVariable struct {
	Storage  StorageKind
	Location uint32
	// Component is the first vector component occupied at Location.
	Component uint32
	BuiltIn   BuiltIn
	Scalar    ScalarKind
	// Width is the scalar width in bits.
	Width   uint32
	VecSize uint32
	// Binding is the vertex buffer binding for vertex-stage inputs.
	Binding uint32
	Rate    Rate

	// UsedByShader is set by translation.
	UsedByShader bool
}

// Matches reports structural equality, ignoring UsedByShader.
func (v InterfaceVariable) Matches(other InterfaceVariable) bool {
	v.UsedByShader = other.UsedByShader
	return v == other
}

// IsBuiltIn reports whether v is a builtin rather than a located variable.
func (v InterfaceVariable) IsBuiltIn() bool {
	return v.BuiltIn != BuiltInNone
}

func (v InterfaceVariable) String() string {
	if v.IsBuiltIn() {
		return fmt.Sprintf("%s builtin %d", v.Storage, uint32(v.BuiltIn))
	}
	if v.Location == LocationAuto {
		return fmt.Sprintf("%s location auto", v.Storage)
	}
	return fmt.Sprintf("%s location %d", v.Storage, v.Location)
}
