// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"strings"

	"github.com/gogpu/naga/ir"
	"golang.org/x/exp/slices"

	"github.com/gogpu/mslconv/binding"
	"github.com/gogpu/mslconv/conv"
)

// layoutFromIR derives descriptor-set layouts from the bound globals of a
// WGSL module, visible to stages. Missing sets are left empty.
func layoutFromIR(m *ir.Module, stages binding.StageFlags) []binding.SetLayout {
	var sets []binding.SetLayout
	for _, gv := range m.GlobalVariables {
		if gv.Binding == nil {
			continue
		}
		t, count := descriptorOf(m, gv)
		for uint32(len(sets)) <= gv.Binding.Group {
			sets = append(sets, binding.SetLayout{})
		}
		set := &sets[gv.Binding.Group]
		set.Bindings = append(set.Bindings, binding.LayoutBinding{
			Binding: gv.Binding.Binding,
			Type:    t,
			Count:   count,
			Stages:  stages,
		})
	}
	for i := range sets {
		slices.SortFunc(sets[i].Bindings, func(a, b binding.LayoutBinding) int {
			return int(a.Binding) - int(b.Binding)
		})
	}
	return sets
}

func descriptorOf(m *ir.Module, gv ir.GlobalVariable) (binding.DescriptorType, uint32) {
	count := uint32(1)
	inner := m.Types[gv.Type].Inner
	if arr, ok := inner.(ir.BindingArrayType); ok {
		if arr.Size != nil {
			count = *arr.Size
		}
		inner = m.Types[arr.Base].Inner
	}
	switch t := inner.(type) {
	case ir.SamplerType:
		return binding.TypeSampler, count
	case ir.ImageType:
		if t.Class == ir.ImageClassStorage {
			return binding.TypeStorageImage, count
		}
		return binding.TypeSampledImage, count
	}
	if gv.Space == ir.SpaceStorage {
		return binding.TypeStorageBuffer, count
	}
	return binding.TypeUniformBuffer, count
}

// describe renders the slots and usage of a converted stage.
func describe(cfg *conv.Configuration, res *conv.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "entry point: %s (%s)\n", res.EntryPoint.Name, cfg.Options.Stage)
	for _, v := range cfg.Inputs {
		fmt.Fprintf(&sb, "  %-28s used=%v\n", v, v.UsedByShader)
	}
	for _, v := range cfg.Outputs {
		fmt.Fprintf(&sb, "  %-28s used=%v\n", v, v.UsedByShader)
	}
	for _, rb := range cfg.StageResources() {
		fmt.Fprintf(&sb, "  %-28s buffer=%d texture=%d sampler=%d used=%v\n",
			rb.Element(), rb.BufferSlot, rb.TextureSlot, rb.SamplerSlot, rb.UsedByShader)
	}
	if cfg.Options.Stage == conv.StageCompute {
		ws := res.EntryPoint.WorkgroupSize
		fmt.Fprintf(&sb, "  workgroup size: %d x %d x %d\n", ws[0].Size, ws[1].Size, ws[2].Size)
	}
	if res.RasterizationDisabled {
		sb.WriteString("  rasterization disabled\n")
	}
	return sb.String()
}
