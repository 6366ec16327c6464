// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package conv

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// PushConstantSet is the descriptor-set index under which the push-constant
// buffer is recorded. Its binding number is PushConstantBinding.
const (
	PushConstantSet     = ^uint32(0)
	PushConstantBinding = 0
)

// SamplerCoord selects normalized or pixel texture coordinates.
type SamplerCoord uint8

const (
	CoordNormalized SamplerCoord = iota
	CoordPixel
)

// ConstantSampler is a sampler hard-coded into the translated source.
// It is comparable.
type ConstantSampler struct {
	Coord         SamplerCoord
	AddressU      gputypes.AddressMode
	AddressV      gputypes.AddressMode
	AddressW      gputypes.AddressMode
	MagFilter     gputypes.FilterMode
	MinFilter     gputypes.FilterMode
	MipFilter     gputypes.MipmapFilterMode
	LodMinClamp   float32
	LodMaxClamp   float32
	Compare       gputypes.CompareFunction
	MaxAnisotropy uint16
}

// ResourceBinding is one descriptor binding as seen by one stage, with the
// target slots allocated to it.
type ResourceBinding struct {
	Stage         Stage
	DescriptorSet uint32
	Binding       uint32
	// Count is the descriptor array size.
	Count uint32

	BufferSlot  uint32
	TextureSlot uint32
	SamplerSlot uint32

	// ConstantSampler is set for immutable samplers that must be
	// hard-coded rather than bound.
	ConstantSampler *ConstantSampler

	// UsedByShader is set by translation.
	UsedByShader bool
}

// Matches reports structural equality, ignoring UsedByShader. Constant
// samplers are compared by value.
func (r ResourceBinding) Matches(other ResourceBinding) bool {
	if r.Stage != other.Stage || r.DescriptorSet != other.DescriptorSet ||
		r.Binding != other.Binding || r.Count != other.Count ||
		r.BufferSlot != other.BufferSlot || r.TextureSlot != other.TextureSlot ||
		r.SamplerSlot != other.SamplerSlot {
		return false
	}
	if (r.ConstantSampler == nil) != (other.ConstantSampler == nil) {
		return false
	}
	return r.ConstantSampler == nil || *r.ConstantSampler == *other.ConstantSampler
}

// SameBinding reports whether r and other name the same (stage, set, binding).
func (r ResourceBinding) SameBinding(other ResourceBinding) bool {
	return r.Stage == other.Stage && r.DescriptorSet == other.DescriptorSet && r.Binding == other.Binding
}

// Element names the binding for diagnostics.
func (r ResourceBinding) Element() string {
	if r.DescriptorSet == PushConstantSet {
		return "push constants"
	}
	return fmt.Sprintf("set %d binding %d", r.DescriptorSet, r.Binding)
}

// DynamicOffset maps a dynamic-offset descriptor to its index in the
// per-draw offset buffer.
type DynamicOffset struct {
	Stage         Stage
	DescriptorSet uint32
	Binding       uint32
	Index         uint32
}
