// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package reflection

import (
	"github.com/gogpu/mslconv/conv"
	"github.com/gogpu/mslconv/spirv"
)

var (
	patchModes = []struct {
		mode spirv.ExecutionMode
		kind conv.PatchKind
	}{
		{spirv.ExecutionModeTriangles, conv.PatchTriangles},
		{spirv.ExecutionModeQuads, conv.PatchQuads},
		{spirv.ExecutionModeIsolines, conv.PatchIsolines},
	}
	windingModes = []struct {
		mode    spirv.ExecutionMode
		winding conv.Winding
	}{
		{spirv.ExecutionModeVertexOrderCw, conv.WindingClockwise},
		{spirv.ExecutionModeVertexOrderCcw, conv.WindingCounterClockwise},
	}
	partitionModes = []struct {
		mode      spirv.ExecutionMode
		partition conv.Partition
	}{
		{spirv.ExecutionModeSpacingEqual, conv.PartitionEqual},
		{spirv.ExecutionModeSpacingFractionalEven, conv.PartitionFractionalEven},
		{spirv.ExecutionModeSpacingFractionalOdd, conv.PartitionFractionalOdd},
	}
)

// Tessellation merges the tessellation execution modes of a control and an
// evaluation entry point. For the patch kind, winding, partition and
// control-point count the control stage wins when both declare one; point
// mode is set if either stage requests it.
//
// A fact declared by neither stage is a reflection error. Facts are
// checked in a fixed order and only the first missing one is reported.
func Tessellation(control *spirv.Module, controlEntry string, eval *spirv.Module, evalEntry string) (conv.TessellationFacts, error) {
	var facts conv.TessellationFacts
	tesc, err := findEntryPoint(control, controlEntry, conv.StageTessControl)
	if err != nil {
		return facts, err
	}
	tese, err := findEntryPoint(eval, evalEntry, conv.StageTessEval)
	if err != nil {
		return facts, err
	}
	stages := [2]*spirv.EntryPoint{tesc, tese}

	missing := func(f conv.Fact) error {
		return conv.NewReflectionError(conv.StageTessControl, tesc.Name, f)
	}

patch:
	for _, ep := range stages {
		for _, p := range patchModes {
			if ep.HasMode(p.mode) {
				facts.PatchKind = p.kind
				break patch
			}
		}
	}
	if facts.PatchKind == conv.PatchUnset {
		return facts, missing(conv.FactPatchKind)
	}

winding:
	for _, ep := range stages {
		for _, w := range windingModes {
			if ep.HasMode(w.mode) {
				facts.Winding = w.winding
				break winding
			}
		}
	}
	if facts.Winding == conv.WindingUnset {
		return facts, missing(conv.FactWinding)
	}

	facts.PointMode = tesc.HasMode(spirv.ExecutionModePointMode) || tese.HasMode(spirv.ExecutionModePointMode)

partition:
	for _, ep := range stages {
		for _, p := range partitionModes {
			if ep.HasMode(p.mode) {
				facts.Partition = p.partition
				break partition
			}
		}
	}
	if facts.Partition == conv.PartitionUnset {
		return facts, missing(conv.FactPartition)
	}

	found := false
	for _, ep := range stages {
		if ops, ok := ep.Modes[spirv.ExecutionModeOutputVertices]; ok && len(ops) > 0 {
			facts.OutputControlPoints = ops[0]
			found = true
			break
		}
	}
	if !found {
		return facts, missing(conv.FactOutputControlPoints)
	}
	return facts, nil
}
