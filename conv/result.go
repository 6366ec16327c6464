// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package conv

// DefaultEntryPointName is the target function name used when the engine
// does not report one.
const DefaultEntryPointName = "main0"

// WorkgroupDimension is one dimension of a compute workgroup size. When
// IsSpecialized is set the size is supplied at pipeline build time through
// the specialization constant SpecializationID, and Size is its default.
type WorkgroupDimension struct {
	Size             uint32
	SpecializationID uint32
	IsSpecialized    bool
}

// TessellationFacts are the tessellation execution modes merged from the
// control and evaluation stages.
type TessellationFacts struct {
	PatchKind           PatchKind
	Winding             Winding
	Partition           Partition
	OutputControlPoints uint32
	PointMode           bool
}

// EntryPoint describes the translated entry point.
type EntryPoint struct {
	// Name is the target function name. It differs from the source name
	// when the source name is not legal in the target language.
	Name          string
	WorkgroupSize [3]WorkgroupDimension

	SupportsFastMath bool

	NeedsSwizzleBuffer       bool
	NeedsOutputBuffer        bool
	NeedsPatchOutputBuffer   bool
	NeedsBufferSizeBuffer    bool
	NeedsDynamicOffsetBuffer bool
	NeedsInputThreadgroupMem bool
	NeedsDispatchBaseBuffer  bool
	NeedsViewRangeBuffer     bool
}

// Result is a finished translation. It is immutable once produced and is
// shared between the cache and every caller that receives it.
type Result struct {
	Source     string
	EntryPoint EntryPoint

	RasterizationDisabled bool

	// Log holds the engine diagnostics.
	Log string
}
