// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package conv

import (
	"golang.org/x/exp/slices"
)

// Configuration is everything that determines the output of one stage
// translation. It is the variant cache key.
//
// A Configuration is owned by one compile request and is never mutated
// concurrently. Translation only writes the UsedByShader flags.
type Configuration struct {
	Options        Options
	Inputs         []InterfaceVariable
	Outputs        []InterfaceVariable
	Resources      []ResourceBinding
	DiscreteSets   []uint32
	DynamicOffsets []DynamicOffset
}

// Matches reports whether a translation produced for c can be reused for
// other. Only entries of c that the shader uses are required to be present
// in other; unused entries are ignored in both directions.
func (c *Configuration) Matches(other *Configuration) bool {
	if !c.Options.Matches(other.Options) {
		return false
	}
	for _, v := range c.Inputs {
		if v.UsedByShader && !containsVariable(other.Inputs, v) {
			return false
		}
	}
	for _, v := range c.Outputs {
		if v.UsedByShader && !containsVariable(other.Outputs, v) {
			return false
		}
	}
	for _, rb := range c.Resources {
		if rb.Stage == c.Options.Stage && rb.UsedByShader && !containsResource(other.Resources, rb) {
			return false
		}
	}
	for _, off := range c.DynamicOffsets {
		if off.Stage == c.Options.Stage && !slices.Contains(other.DynamicOffsets, off) {
			return false
		}
	}
	for _, set := range c.DiscreteSets {
		if !slices.Contains(other.DiscreteSets, set) {
			return false
		}
	}
	return true
}

// AlignWith copies UsedByShader from the matching entries of src. Entries
// with no match in src are marked unused.
func (c *Configuration) AlignWith(src *Configuration) {
	alignVariables(c.Inputs, src.Inputs)
	alignVariables(c.Outputs, src.Outputs)
	for i := range c.Resources {
		rb := &c.Resources[i]
		rb.UsedByShader = false
		for _, s := range src.Resources {
			if rb.Matches(s) {
				rb.UsedByShader = s.UsedByShader
			}
		}
	}
}

func alignVariables(dst, src []InterfaceVariable) {
	for i := range dst {
		v := &dst[i]
		v.UsedByShader = false
		for _, s := range src {
			if v.Matches(s) {
				v.UsedByShader = s.UsedByShader
			}
		}
	}
}

// Equivalent reports whether c and other are identical apart from
// UsedByShader flags, including list order.
func (c *Configuration) Equivalent(other *Configuration) bool {
	if !c.Options.Matches(other.Options) {
		return false
	}
	if !slices.EqualFunc(c.Inputs, other.Inputs, InterfaceVariable.Matches) ||
		!slices.EqualFunc(c.Outputs, other.Outputs, InterfaceVariable.Matches) ||
		!slices.EqualFunc(c.Resources, other.Resources, ResourceBinding.Matches) {
		return false
	}
	return slices.Equal(c.DiscreteSets, other.DiscreteSets) &&
		slices.Equal(c.DynamicOffsets, other.DynamicOffsets)
}

// Clone returns a deep copy of c.
func (c *Configuration) Clone() *Configuration {
	out := &Configuration{
		Options:        c.Options,
		Inputs:         slices.Clone(c.Inputs),
		Outputs:        slices.Clone(c.Outputs),
		Resources:      slices.Clone(c.Resources),
		DiscreteSets:   slices.Clone(c.DiscreteSets),
		DynamicOffsets: slices.Clone(c.DynamicOffsets),
	}
	for i := range out.Resources {
		if cs := out.Resources[i].ConstantSampler; cs != nil {
			cp := *cs
			out.Resources[i].ConstantSampler = &cp
		}
	}
	return out
}

// Validate checks that (stage, set, binding) is unique among the resources.
func (c *Configuration) Validate() error {
	for i, rb := range c.Resources {
		for _, prev := range c.Resources[:i] {
			if prev.SameBinding(rb) {
				return NewConfigurationError(rb.Stage, c.Options.EntryPoint, rb.Element(),
					"resource binding declared more than once")
			}
		}
	}
	return nil
}

// MarkAllUsed flags every interface variable and resource as used.
func (c *Configuration) MarkAllUsed() {
	for i := range c.Inputs {
		c.Inputs[i].UsedByShader = true
	}
	for i := range c.Outputs {
		c.Outputs[i].UsedByShader = true
	}
	for i := range c.Resources {
		c.Resources[i].UsedByShader = true
	}
}

// IsInputLocationUsed reports whether a used input occupies location.
func (c *Configuration) IsInputLocationUsed(location uint32) bool {
	for _, v := range c.Inputs {
		if v.Location == location && v.UsedByShader {
			return true
		}
	}
	return false
}

// InputCountAt returns how many inputs are declared at location.
func (c *Configuration) InputCountAt(location uint32) int {
	n := 0
	for _, v := range c.Inputs {
		if v.Location == location {
			n++
		}
	}
	return n
}

// IsResourceUsed reports whether the shader uses (stage, set, binding).
func (c *Configuration) IsResourceUsed(stage Stage, set, binding uint32) bool {
	for _, rb := range c.Resources {
		if rb.Stage == stage && rb.DescriptorSet == set && rb.Binding == binding {
			return rb.UsedByShader
		}
	}
	return false
}

// AddDiscreteSet records set as excluded from argument-buffer packing.
// The list stays sorted and free of duplicates.
func (c *Configuration) AddDiscreteSet(set uint32) {
	i, found := slices.BinarySearch(c.DiscreteSets, set)
	if !found {
		c.DiscreteSets = slices.Insert(c.DiscreteSets, i, set)
	}
}

// StageResources returns the resources bound for c's own stage.
func (c *Configuration) StageResources() []ResourceBinding {
	var out []ResourceBinding
	for _, rb := range c.Resources {
		if rb.Stage == c.Options.Stage {
			out = append(out, rb)
		}
	}
	return out
}

func containsVariable(list []InterfaceVariable, v InterfaceVariable) bool {
	for _, o := range list {
		if v.Matches(o) {
			return true
		}
	}
	return false
}

func containsResource(list []ResourceBinding, rb ResourceBinding) bool {
	for _, o := range list {
		if rb.Matches(o) {
			return true
		}
	}
	return false
}
