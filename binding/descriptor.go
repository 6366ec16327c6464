// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package binding

import "fmt"

// DescriptorType is a Vulkan descriptor type. Values follow VkDescriptorType.
type DescriptorType uint32

const (
	TypeSampler              DescriptorType = 0
	TypeCombinedImageSampler DescriptorType = 1
	TypeSampledImage         DescriptorType = 2
	TypeStorageImage         DescriptorType = 3
	TypeUniformTexelBuffer   DescriptorType = 4
	TypeStorageTexelBuffer   DescriptorType = 5
	TypeUniformBuffer        DescriptorType = 6
	TypeStorageBuffer        DescriptorType = 7
	TypeUniformBufferDynamic DescriptorType = 8
	TypeStorageBufferDynamic DescriptorType = 9
	TypeInputAttachment      DescriptorType = 10
	TypeInlineUniformBlock   DescriptorType = 1000138000
)

// String returns the descriptor type name.
func (t DescriptorType) String() string {
	if k, ok := kinds[t]; ok {
		return k.name
	}
	return fmt.Sprintf("DescriptorType(%d)", uint32(t))
}

// IsDynamic reports whether descriptors of type t take a dynamic offset.
func (t DescriptorType) IsDynamic() bool { return kinds[t].dynamic }

// AcceptsImmutableSamplers reports whether t may carry immutable samplers.
func (t DescriptorType) AcceptsImmutableSamplers() bool { return kinds[t].sampler }

// kind is the per-descriptor-type behavior. The set of kinds is closed.
type kind struct {
	name string
	// reserve returns the slots consumed per stage by count descriptors.
	reserve func(a *Allocator, count uint32) StageResourceBinding
	dynamic bool
	sampler bool
}

var kinds = map[DescriptorType]kind{
	TypeSampler:              {name: "sampler", reserve: reserveSamplerOnly, sampler: true},
	TypeCombinedImageSampler: {name: "combined image sampler", reserve: reserveCombined, sampler: true},
	TypeSampledImage:         {name: "sampled image", reserve: reserveTexture},
	TypeInputAttachment:      {name: "input attachment", reserve: reserveTexture},
	TypeUniformTexelBuffer:   {name: "uniform texel buffer", reserve: reserveTexture},
	TypeStorageImage:         {name: "storage image", reserve: reserveStorageTexture},
	TypeStorageTexelBuffer:   {name: "storage texel buffer", reserve: reserveStorageTexture},
	TypeUniformBuffer:        {name: "uniform buffer", reserve: reserveBuffer},
	TypeStorageBuffer:        {name: "storage buffer", reserve: reserveBuffer},
	TypeUniformBufferDynamic: {name: "uniform buffer dynamic", reserve: reserveBuffer, dynamic: true},
	TypeStorageBufferDynamic: {name: "storage buffer dynamic", reserve: reserveBuffer, dynamic: true},
	TypeInlineUniformBlock:   {name: "inline uniform block", reserve: reserveInline},
}

// reserveSampler adds the sampler slots shared by both sampler kinds.
func reserveSampler(r StageResourceBinding, n uint32) StageResourceBinding {
	r.SamplerIndex += n
	return r
}

func reserveSamplerOnly(_ *Allocator, n uint32) StageResourceBinding {
	return reserveSampler(StageResourceBinding{}, n)
}

func reserveCombined(_ *Allocator, n uint32) StageResourceBinding {
	return reserveSampler(StageResourceBinding{TextureIndex: n}, n)
}

func reserveTexture(_ *Allocator, n uint32) StageResourceBinding {
	return StageResourceBinding{TextureIndex: n}
}

func reserveBuffer(_ *Allocator, n uint32) StageResourceBinding {
	return StageResourceBinding{BufferIndex: n}
}

// reserveStorageTexture emulates texture atomics with a companion buffer
// when the device lacks native support.
func reserveStorageTexture(a *Allocator, n uint32) StageResourceBinding {
	r := StageResourceBinding{TextureIndex: n}
	if !a.NativeTextureAtomics {
		r.BufferIndex = n
	}
	return r
}

// reserveInline reserves one buffer for the whole block. The count of an
// inline uniform block is its size in bytes.
func reserveInline(_ *Allocator, n uint32) StageResourceBinding {
	if n == 0 {
		return StageResourceBinding{}
	}
	return StageResourceBinding{BufferIndex: 1}
}
