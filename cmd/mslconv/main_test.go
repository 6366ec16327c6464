// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package main

import (
	"strings"
	"testing"

	"github.com/gogpu/naga"

	"github.com/gogpu/mslconv/binding"
	"github.com/gogpu/mslconv/conv"
)

func TestParseStage(t *testing.T) {
	tests := []struct {
		in   string
		want conv.Stage
	}{
		{"vertex", conv.StageVertex},
		{"FRAG", conv.StageFragment},
		{"tesc", conv.StageTessControl},
		{"tese", conv.StageTessEval},
		{"comp", conv.StageCompute},
	}
	for _, tt := range tests {
		got, err := parseStage(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("parseStage(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
		}
	}
	if _, err := parseStage("geometry"); err == nil {
		t.Error("parseStage(geometry) succeeded")
	}
}

const layoutWGSL = `
@group(1) @binding(2) var<storage, read_write> data: array<u32>;
@group(1) @binding(0) var<uniform> scale: vec4<f32>;
@group(0) @binding(0) var tex: texture_2d<f32>;
@group(0) @binding(1) var samp: sampler;

@compute @workgroup_size(1)
fn main() {
    data[0] = u32(scale.x + textureSampleLevel(tex, samp, vec2<f32>(0.0), 0.0).x);
}
`

func TestLayoutFromIR(t *testing.T) {
	ast, err := naga.Parse(layoutWGSL)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	m, err := naga.LowerWithSource(ast, layoutWGSL)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	sets := layoutFromIR(m, binding.StageCompute)
	if len(sets) != 2 {
		t.Fatalf("len(sets) = %d, want 2", len(sets))
	}
	want := [][]binding.DescriptorType{
		{binding.TypeSampledImage, binding.TypeSampler},
		{binding.TypeUniformBuffer, binding.TypeStorageBuffer},
	}
	for i, types := range want {
		got := sets[i].Bindings
		if len(got) != len(types) {
			t.Fatalf("set %d has %d bindings, want %d", i, len(got), len(types))
		}
		for j, typ := range types {
			if got[j].Type != typ || got[j].Count != 1 || got[j].Stages != binding.StageCompute {
				t.Errorf("set %d binding %d = %+v, want %s", i, j, got[j], typ)
			}
		}
	}
	if sets[1].Bindings[1].Binding != 2 {
		t.Errorf("set 1 second binding = %d, want 2", sets[1].Bindings[1].Binding)
	}
}

func TestDescribe(t *testing.T) {
	cfg := &conv.Configuration{
		Options: conv.Options{Stage: conv.StageCompute},
		Resources: []conv.ResourceBinding{
			{Stage: conv.StageCompute, DescriptorSet: 0, Binding: 1, BufferSlot: 2, UsedByShader: true},
			{Stage: conv.StageFragment, DescriptorSet: 0, Binding: 3},
		},
	}
	res := &conv.Result{EntryPoint: conv.EntryPoint{
		Name:          "main0",
		WorkgroupSize: [3]conv.WorkgroupDimension{{Size: 8}, {Size: 4}, {Size: 1}},
	}}
	out := describe(cfg, res)
	for _, want := range []string{"main0 (compute)", "set 0 binding 1", "buffer=2", "8 x 4 x 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("describe output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "binding 3") {
		t.Errorf("describe printed another stage's resource:\n%s", out)
	}
}
