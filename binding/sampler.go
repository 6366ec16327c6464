// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package binding

import (
	"github.com/gogpu/gputypes"
	"github.com/pkg/errors"

	"github.com/gogpu/mslconv/conv"
)

// Sampler is an immutable sampler baked into a set layout.
type Sampler struct {
	Descriptor gputypes.SamplerDescriptor
	// UnnormalizedCoordinates selects pixel coordinates.
	UnnormalizedCoordinates bool
}

// NewSampler returns an immutable sampler for desc.
func NewSampler(desc gputypes.SamplerDescriptor) *Sampler {
	return &Sampler{Descriptor: desc}
}

// Validate checks the sampler against the rules Metal imposes on constant
// samplers.
func (s *Sampler) Validate() error {
	d := s.Descriptor
	if d.MaxAnisotropy > 16 {
		return errors.Errorf("max anisotropy %d out of range [1, 16]", d.MaxAnisotropy)
	}
	if d.LodMinClamp > d.LodMaxClamp {
		return errors.Errorf("lod min clamp %g exceeds lod max clamp %g", d.LodMinClamp, d.LodMaxClamp)
	}
	if !s.UnnormalizedCoordinates {
		return nil
	}
	switch {
	case d.MinFilter != d.MagFilter:
		return errors.New("unnormalized coordinates require equal min and mag filters")
	case d.MipmapFilter == gputypes.MipmapFilterModeLinear:
		return errors.New("unnormalized coordinates require nearest mipmap filtering")
	case anisotropy(d) > 1:
		return errors.New("unnormalized coordinates forbid anisotropic filtering")
	case d.Compare != gputypes.CompareFunctionUndefined:
		return errors.New("unnormalized coordinates forbid depth comparison")
	}
	for _, m := range [...]gputypes.AddressMode{d.AddressModeU, d.AddressModeV} {
		if m != gputypes.AddressModeClampToEdge && m != gputypes.AddressModeUndefined {
			return errors.Errorf("unnormalized coordinates require clamp-to-edge addressing, got %s", m)
		}
	}
	return nil
}

// ConstantSampler returns the sampler in the form embedded in translated
// source. Undefined address modes and filters take their WebGPU defaults.
func (s *Sampler) ConstantSampler() *conv.ConstantSampler {
	d := s.Descriptor
	cs := &conv.ConstantSampler{
		AddressU:      orAddress(d.AddressModeU),
		AddressV:      orAddress(d.AddressModeV),
		AddressW:      orAddress(d.AddressModeW),
		MagFilter:     orFilter(d.MagFilter),
		MinFilter:     orFilter(d.MinFilter),
		MipFilter:     d.MipmapFilter,
		LodMinClamp:   d.LodMinClamp,
		LodMaxClamp:   d.LodMaxClamp,
		Compare:       d.Compare,
		MaxAnisotropy: anisotropy(d),
	}
	if s.UnnormalizedCoordinates {
		cs.Coord = conv.CoordPixel
	}
	return cs
}

func anisotropy(d gputypes.SamplerDescriptor) uint16 {
	if d.MaxAnisotropy == 0 {
		return 1
	}
	return d.MaxAnisotropy
}

func orAddress(m gputypes.AddressMode) gputypes.AddressMode {
	if m == gputypes.AddressModeUndefined {
		return gputypes.AddressModeClampToEdge
	}
	return m
}

func orFilter(f gputypes.FilterMode) gputypes.FilterMode {
	if f == gputypes.FilterModeUndefined {
		return gputypes.FilterModeNearest
	}
	return f
}
