// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package conv

import (
	"fmt"
	"strconv"
	"strings"
)

// Stage identifies a shading stage.
type Stage uint8

const (
	StageVertex Stage = iota
	StageTessControl
	StageTessEval
	StageFragment
	StageCompute

	// StageCount is the number of shading stages.
	StageCount
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageTessControl:
		return "tessellation control"
	case StageTessEval:
		return "tessellation evaluation"
	case StageFragment:
		return "fragment"
	case StageCompute:
		return "compute"
	default:
		return fmt.Sprintf("stage(%d)", uint8(s))
	}
}

// IsTessellation reports whether s is one of the two tessellation stages.
func (s Stage) IsTessellation() bool {
	return s == StageTessControl || s == StageTessEval
}

// PatchKind is the tessellation input primitive.
type PatchKind uint8

const (
	PatchUnset PatchKind = iota
	PatchTriangles
	PatchQuads
	PatchIsolines
)

func (k PatchKind) String() string {
	switch k {
	case PatchUnset:
		return "unset"
	case PatchTriangles:
		return "triangles"
	case PatchQuads:
		return "quads"
	case PatchIsolines:
		return "isolines"
	default:
		return fmt.Sprintf("patch(%d)", uint8(k))
	}
}

// Winding is the tessellator output winding order.
type Winding uint8

const (
	WindingUnset Winding = iota
	WindingClockwise
	WindingCounterClockwise
)

func (w Winding) String() string {
	switch w {
	case WindingUnset:
		return "unset"
	case WindingClockwise:
		return "cw"
	case WindingCounterClockwise:
		return "ccw"
	default:
		return fmt.Sprintf("winding(%d)", uint8(w))
	}
}

// Partition is the tessellator spacing mode.
type Partition uint8

const (
	PartitionUnset Partition = iota
	PartitionEqual
	PartitionFractionalEven
	PartitionFractionalOdd
)

func (p Partition) String() string {
	switch p {
	case PartitionUnset:
		return "unset"
	case PartitionEqual:
		return "equal"
	case PartitionFractionalEven:
		return "fractional-even"
	case PartitionFractionalOdd:
		return "fractional-odd"
	default:
		return fmt.Sprintf("partition(%d)", uint8(p))
	}
}

// Platform is the target OS family. It is part of the persisted
// compatibility contract and its numeric values must not change.
type Platform uint8

const (
	PlatformMacOS Platform = iota
	PlatformIOS
	PlatformTVOS
	PlatformVisionOS
)

func (p Platform) String() string {
	switch p {
	case PlatformMacOS:
		return "macos"
	case PlatformIOS:
		return "ios"
	case PlatformTVOS:
		return "tvos"
	case PlatformVisionOS:
		return "visionos"
	default:
		return fmt.Sprintf("platform(%d)", uint8(p))
	}
}

// ParsePlatform parses a platform name as produced by Platform.String.
func ParsePlatform(s string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "macos", "osx":
		return PlatformMacOS, nil
	case "ios":
		return PlatformIOS, nil
	case "tvos":
		return PlatformTVOS, nil
	case "visionos", "xros":
		return PlatformVisionOS, nil
	}
	return 0, fmt.Errorf("unknown platform %q", s)
}

// CompilerVersion is the target shading-language compiler version triple.
type CompilerVersion struct {
	Major uint32
	Minor uint32
	Patch uint32
}

func (v CompilerVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Less reports whether v is strictly older than other.
func (v CompilerVersion) Less(other CompilerVersion) bool {
	if v.Major != other.Major {
		return v.Major < other.Major
	}
	if v.Minor != other.Minor {
		return v.Minor < other.Minor
	}
	return v.Patch < other.Patch
}

// ParseCompilerVersion parses "major[.minor[.patch]]".
func ParseCompilerVersion(s string) (CompilerVersion, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) == 0 || len(parts) > 3 || parts[0] == "" {
		return CompilerVersion{}, fmt.Errorf("invalid compiler version %q", s)
	}
	var nums [3]uint32
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return CompilerVersion{}, fmt.Errorf("invalid compiler version %q: %w", s, err)
		}
		nums[i] = uint32(n)
	}
	return CompilerVersion{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// Options holds the per-stage translation options. It is comparable and
// participates in the cache key, so equality is plain structural equality.
type Options struct {
	// EntryPoint is the entry-point name in the source module.
	EntryPoint string
	Stage      Stage

	// PatchKind and OutputControlPoints are only meaningful for the
	// tessellation stages. Zero means unset.
	PatchKind           PatchKind
	OutputControlPoints uint32

	FlipVertexY         bool
	FixupClipSpaceDepth bool
	ArgumentBuffers     bool

	CompilerVersion CompilerVersion
	Platform        Platform
}

// Matches reports whether o and other are structurally equal.
func (o Options) Matches(other Options) bool {
	return o == other
}

// Compatible reports whether o and other agree on the fields that pin a
// translation to one compiler and platform.
func (o Options) Compatible(other Options) bool {
	return o.CompilerVersion == other.CompilerVersion && o.Platform == other.Platform
}
