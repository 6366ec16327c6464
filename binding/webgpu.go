// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package binding

import (
	"github.com/gogpu/gputypes"
	"github.com/pkg/errors"
)

// FromBindGroupLayout converts a WebGPU bind group layout to a set layout.
// Every entry describes a single descriptor.
func FromBindGroupLayout(desc gputypes.BindGroupLayoutDescriptor) (SetLayout, error) {
	layout := SetLayout{Bindings: make([]LayoutBinding, 0, len(desc.Entries))}
	for _, e := range desc.Entries {
		t, err := descriptorTypeOf(e)
		if err != nil {
			return SetLayout{}, errors.Wrapf(err, "bind group layout %q binding %d", desc.Label, e.Binding)
		}
		layout.Bindings = append(layout.Bindings, LayoutBinding{
			Binding: e.Binding,
			Type:    t,
			Count:   1,
			Stages:  StagesFromWebGPU(e.Visibility),
		})
	}
	return layout, nil
}

func descriptorTypeOf(e gputypes.BindGroupLayoutEntry) (DescriptorType, error) {
	set := 0
	var t DescriptorType
	if b := e.Buffer; b != nil {
		set++
		switch b.Type {
		case gputypes.BufferBindingTypeUniform:
			t = TypeUniformBuffer
			if b.HasDynamicOffset {
				t = TypeUniformBufferDynamic
			}
		case gputypes.BufferBindingTypeStorage, gputypes.BufferBindingTypeReadOnlyStorage:
			t = TypeStorageBuffer
			if b.HasDynamicOffset {
				t = TypeStorageBufferDynamic
			}
		default:
			return 0, errors.Errorf("undefined buffer binding type %d", uint32(b.Type))
		}
	}
	if e.Sampler != nil {
		set++
		t = TypeSampler
	}
	if e.Texture != nil {
		set++
		t = TypeSampledImage
	}
	if e.StorageTexture != nil {
		set++
		t = TypeStorageImage
	}
	if set != 1 {
		return 0, errors.Errorf("entry sets %d binding kinds, want exactly one", set)
	}
	return t, nil
}

// PushConstantsFromWebGPU converts push-constant ranges given as byte
// spans.
func PushConstantsFromWebGPU(ranges []gputypes.PushConstantRange) []PushConstantRange {
	out := make([]PushConstantRange, 0, len(ranges))
	for _, r := range ranges {
		var size uint32
		if r.End > r.Start {
			size = r.End - r.Start
		}
		out = append(out, PushConstantRange{
			Stages: StagesFromWebGPU(r.Stages),
			Offset: r.Start,
			Size:   size,
		})
	}
	return out
}

// LimitsFromWebGPU derives per-stage slot limits from WebGPU device limits.
// Buffer slots cover uniform and storage buffers together.
func LimitsFromWebGPU(l gputypes.Limits) Limits {
	return Limits{
		MaxBuffers:  l.MaxUniformBuffersPerShaderStage + l.MaxStorageBuffersPerShaderStage,
		MaxTextures: l.MaxSampledTexturesPerShaderStage + l.MaxStorageTexturesPerShaderStage,
		MaxSamplers: l.MaxSamplersPerShaderStage,
	}
}
