// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package binding

import (
	"github.com/gogpu/mslconv/conv"
)

// LayoutBinding is one binding of a descriptor-set layout.
type LayoutBinding struct {
	Binding uint32
	Type    DescriptorType
	// Count is the array size, or the byte size of an inline uniform block.
	Count  uint32
	Stages StageFlags
	// ImmutableSamplers, when present, holds one sampler per descriptor.
	ImmutableSamplers []*Sampler
}

// SetLayout is an ordered descriptor-set layout.
type SetLayout struct {
	Bindings []LayoutBinding
	// PushDescriptor sets are bound directly and never packed into an
	// argument buffer.
	PushDescriptor bool
}

// PushConstantRange is a push-constant range of a pipeline layout.
type PushConstantRange struct {
	Stages StageFlags
	Offset uint32
	Size   uint32
}

// AllocatedBinding is a layout binding together with its starting slots.
type AllocatedBinding struct {
	LayoutBinding
	// Start holds, for each stage in Stages, the first slot of each class.
	Start ShaderResourceBinding
	// DynamicOffsetIndex is the first offset-buffer index of a dynamic
	// buffer binding.
	DynamicOffsetIndex uint32
}

// SetAllocation is the result of allocating one set.
type SetAllocation struct {
	Set            uint32
	PushDescriptor bool
	Bindings       []AllocatedBinding
	// Start and End are the running offsets before and after the set.
	Start ShaderResourceBinding
	End   ShaderResourceBinding
	// DynamicOffsets is the number of offset-buffer entries the set uses.
	DynamicOffsets uint32
}

// Allocator assigns slots. The zero value enforces DefaultLimits and
// assumes no native texture atomics.
type Allocator struct {
	NativeTextureAtomics bool
	Limits               Limits
}

func (a *Allocator) limits() Limits {
	if a.Limits == (Limits{}) {
		return DefaultLimits()
	}
	return a.Limits
}

// AllocateSet assigns slots to every binding of layout, in declaration
// order, starting at start. firstDynamic is the first dynamic-offset index
// available to the set.
func (a *Allocator) AllocateSet(set uint32, layout SetLayout, start ShaderResourceBinding, firstDynamic uint32) (*SetAllocation, error) {
	out := &SetAllocation{
		Set:            set,
		PushDescriptor: layout.PushDescriptor,
		Bindings:       make([]AllocatedBinding, 0, len(layout.Bindings)),
		Start:          start,
	}
	running := start
	dynamic := firstDynamic
	for i, lb := range layout.Bindings {
		if err := a.checkBinding(set, layout.Bindings[:i], lb); err != nil {
			return nil, err
		}
		if lb.Stages == 0 {
			continue
		}
		k := kinds[lb.Type]
		ab := AllocatedBinding{LayoutBinding: lb, Start: running, DynamicOffsetIndex: dynamic}
		use := k.reserve(a, lb.Count)
		for _, s := range lb.Stages.Stages() {
			if err := a.checkLimits(s, set, lb, running[s], use); err != nil {
				return nil, err
			}
			running[s] = running[s].Add(use)
		}
		if k.dynamic {
			dynamic += lb.Count
		}
		out.Bindings = append(out.Bindings, ab)
	}
	out.End = running
	out.DynamicOffsets = dynamic - firstDynamic
	return out, nil
}

func (a *Allocator) checkBinding(set uint32, prev []LayoutBinding, lb LayoutBinding) error {
	stage := firstStage(lb.Stages)
	element := conv.ResourceBinding{DescriptorSet: set, Binding: lb.Binding}.Element()
	k, ok := kinds[lb.Type]
	if !ok {
		return conv.NewConfigurationError(stage, "", element, "unknown descriptor type %d", uint32(lb.Type))
	}
	for _, p := range prev {
		if p.Binding == lb.Binding {
			return conv.NewConfigurationError(stage, "", element, "binding declared more than once")
		}
	}
	if len(lb.ImmutableSamplers) == 0 {
		return nil
	}
	if !k.sampler {
		return conv.NewConfigurationError(stage, "", element,
			"immutable samplers are not allowed on a %s binding", k.name)
	}
	if uint32(len(lb.ImmutableSamplers)) != lb.Count {
		return conv.NewConfigurationError(stage, "", element,
			"%d immutable samplers for %d descriptors", len(lb.ImmutableSamplers), lb.Count)
	}
	for i, s := range lb.ImmutableSamplers {
		if s == nil {
			return conv.NewConfigurationError(stage, "", element, "immutable sampler %d is nil", i)
		}
		if err := s.Validate(); err != nil {
			e := conv.NewConfigurationError(stage, "", element, "incompatible immutable sampler %d", i)
			e.Err = err
			return e
		}
	}
	return nil
}

// checkLimits reports whether reserving use on top of r exceeds a limit.
func (a *Allocator) checkLimits(s conv.Stage, set uint32, lb LayoutBinding, r, use StageResourceBinding) error {
	lim := a.limits()
	classes := [...]struct {
		name       string
		have, need uint32
		limit      uint32
	}{
		{"buffer", r.BufferIndex, use.BufferIndex, lim.MaxBuffers},
		{"texture", r.TextureIndex, use.TextureIndex, lim.MaxTextures},
		{"sampler", r.SamplerIndex, use.SamplerIndex, lim.MaxSamplers},
	}
	for _, c := range classes {
		if total := uint64(c.have) + uint64(c.need); total > uint64(c.limit) {
			element := conv.ResourceBinding{DescriptorSet: set, Binding: lb.Binding}.Element()
			return conv.NewConfigurationError(s, "", element,
				"descriptor count overflow: %d %s slots needed, limit is %d", total, c.name, c.limit)
		}
	}
	return nil
}

func firstStage(f StageFlags) conv.Stage {
	if stages := f.Stages(); len(stages) > 0 {
		return stages[0]
	}
	return conv.StageVertex
}

// PipelineLayout is the allocation of every set of a pipeline layout plus
// its push constants.
type PipelineLayout struct {
	Sets []*SetAllocation
	// PushConstantStages is the union of the stages of all push-constant
	// ranges. PushConstants holds their buffer slot per stage.
	PushConstantStages StageFlags
	PushConstants      ShaderResourceBinding
	// Total is the number of slots used per stage.
	Total              ShaderResourceBinding
	DynamicOffsetCount uint32
}

// AllocatePipeline allocates sets in order, each continuing where the
// previous one ended. Push constants take the next buffer slot of every
// stage that reads them.
func (a *Allocator) AllocatePipeline(sets []SetLayout, pushConstants []PushConstantRange) (*PipelineLayout, error) {
	pl := &PipelineLayout{Sets: make([]*SetAllocation, 0, len(sets))}
	var running ShaderResourceBinding
	var dynamic uint32
	for i, layout := range sets {
		sa, err := a.AllocateSet(uint32(i), layout, running, dynamic)
		if err != nil {
			return nil, err
		}
		pl.Sets = append(pl.Sets, sa)
		running = sa.End
		dynamic += sa.DynamicOffsets
	}
	for _, r := range pushConstants {
		if r.Size > 0 {
			pl.PushConstantStages |= r.Stages
		}
	}
	pl.PushConstants = running
	pushBinding := LayoutBinding{Binding: conv.PushConstantBinding, Count: 1}
	for _, s := range pl.PushConstantStages.Stages() {
		use := StageResourceBinding{BufferIndex: 1}
		if err := a.checkLimits(s, conv.PushConstantSet, pushBinding, running[s], use); err != nil {
			return nil, err
		}
		running[s] = running[s].Add(use)
	}
	pl.Total = running
	pl.DynamicOffsetCount = dynamic
	return pl, nil
}

// PopulateConfiguration adds the layout's resource bindings for every
// stage to cfg, along with push-descriptor sets and, when cfg enables
// argument buffers, dynamic offsets.
func (pl *PipelineLayout) PopulateConfiguration(cfg *conv.Configuration) {
	for _, sa := range pl.Sets {
		if sa.PushDescriptor {
			cfg.AddDiscreteSet(sa.Set)
		}
		for _, ab := range sa.Bindings {
			var cs *conv.ConstantSampler
			if len(ab.ImmutableSamplers) > 0 {
				cs = ab.ImmutableSamplers[0].ConstantSampler()
			}
			for _, s := range ab.Stages.Stages() {
				start := ab.Start[s]
				rb := conv.ResourceBinding{
					Stage:           s,
					DescriptorSet:   sa.Set,
					Binding:         ab.Binding,
					Count:           ab.Count,
					BufferSlot:      start.BufferIndex,
					TextureSlot:     start.TextureIndex,
					SamplerSlot:     start.SamplerIndex,
					ConstantSampler: cs,
				}
				cfg.Resources = append(cfg.Resources, rb)
				if ab.Type.IsDynamic() && cfg.Options.ArgumentBuffers {
					cfg.DynamicOffsets = append(cfg.DynamicOffsets, conv.DynamicOffset{
						Stage:         s,
						DescriptorSet: sa.Set,
						Binding:       ab.Binding,
						Index:         ab.DynamicOffsetIndex,
					})
				}
			}
		}
	}
	for _, s := range pl.PushConstantStages.Stages() {
		cfg.Resources = append(cfg.Resources, conv.ResourceBinding{
			Stage:         s,
			DescriptorSet: conv.PushConstantSet,
			Binding:       conv.PushConstantBinding,
			Count:         1,
			BufferSlot:    pl.PushConstants[s].BufferIndex,
			TextureSlot:   pl.PushConstants[s].TextureIndex,
			SamplerSlot:   pl.PushConstants[s].SamplerIndex,
		})
	}
}
