// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package binding

import (
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/mslconv/conv"
)

// StageFlags is a set of shading stages.
type StageFlags uint8

// Stage masks.
const (
	StageVertex      = StageFlags(1 << conv.StageVertex)
	StageTessControl = StageFlags(1 << conv.StageTessControl)
	StageTessEval    = StageFlags(1 << conv.StageTessEval)
	StageFragment    = StageFlags(1 << conv.StageFragment)
	StageCompute     = StageFlags(1 << conv.StageCompute)

	StageAllGraphics = StageVertex | StageTessControl | StageTessEval | StageFragment
	StageAll         = StageAllGraphics | StageCompute
)

// StageBit returns the mask holding only s.
func StageBit(s conv.Stage) StageFlags { return StageFlags(1) << s }

// Has reports whether s is in f.
func (f StageFlags) Has(s conv.Stage) bool { return f&StageBit(s) != 0 }

// Stages returns the stages in f in ascending order.
func (f StageFlags) Stages() []conv.Stage {
	var out []conv.Stage
	for s := conv.Stage(0); s < conv.StageCount; s++ {
		if f.Has(s) {
			out = append(out, s)
		}
	}
	return out
}

func (f StageFlags) String() string {
	if f == 0 {
		return "none"
	}
	var names []string
	for _, s := range f.Stages() {
		names = append(names, s.String())
	}
	return strings.Join(names, "|")
}

// StagesFromWebGPU converts a WebGPU visibility mask. WebGPU has no
// tessellation stages.
func StagesFromWebGPU(v gputypes.ShaderStages) StageFlags {
	var f StageFlags
	if v&gputypes.ShaderStageVertex != 0 {
		f |= StageVertex
	}
	if v&gputypes.ShaderStageFragment != 0 {
		f |= StageFragment
	}
	if v&gputypes.ShaderStageCompute != 0 {
		f |= StageCompute
	}
	return f
}

// StageResourceBinding holds one stage's buffer, texture and sampler slot
// counters. It is used both as a running offset and as a slot count.
type StageResourceBinding struct {
	BufferIndex  uint32
	TextureIndex uint32
	SamplerIndex uint32
}

// Add returns the component-wise sum of r and o.
func (r StageResourceBinding) Add(o StageResourceBinding) StageResourceBinding {
	return StageResourceBinding{
		BufferIndex:  r.BufferIndex + o.BufferIndex,
		TextureIndex: r.TextureIndex + o.TextureIndex,
		SamplerIndex: r.SamplerIndex + o.SamplerIndex,
	}
}

// ShaderResourceBinding holds a StageResourceBinding for every stage.
type ShaderResourceBinding [conv.StageCount]StageResourceBinding

// Add returns the per-stage sum of r and o.
func (r ShaderResourceBinding) Add(o ShaderResourceBinding) ShaderResourceBinding {
	var out ShaderResourceBinding
	for i := range r {
		out[i] = r[i].Add(o[i])
	}
	return out
}

// Limits are per-stage slot maximums.
type Limits struct {
	MaxBuffers  uint32
	MaxTextures uint32
	MaxSamplers uint32
}

// DefaultLimits returns the Metal argument-table sizes.
func DefaultLimits() Limits {
	return Limits{MaxBuffers: 31, MaxTextures: 128, MaxSamplers: 16}
}
