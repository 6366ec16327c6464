// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package translate

import (
	"context"
	"strings"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga/msl"

	"github.com/gogpu/mslconv/conv"
	"github.com/gogpu/mslconv/shader"
	"github.com/gogpu/mslconv/spirv"
)

const fragmentWGSL = `
@group(0) @binding(0) var<uniform> tint: vec4<f32>;
@group(0) @binding(1) var tex: texture_2d<f32>;
@group(0) @binding(2) var samp: sampler;
@group(1) @binding(0) var<uniform> unused: vec4<f32>;

@fragment
fn fs_main(@location(0) uv: vec2<f32>) -> @location(0) vec4<f32> {
    return textureSample(tex, samp, uv) * tint;
}
`

func nagaConfig() *conv.Configuration {
	return &conv.Configuration{
		Options: conv.Options{
			EntryPoint:      "fs_main",
			Stage:           conv.StageFragment,
			CompilerVersion: conv.CompilerVersion{Major: 2, Minor: 4},
		},
		Inputs: []conv.InterfaceVariable{
			{Storage: conv.StorageInput, Location: 0, BuiltIn: conv.BuiltInNone, VecSize: 2},
			{Storage: conv.StorageInput, Location: 3, BuiltIn: conv.BuiltInNone, VecSize: 4},
		},
		Resources: []conv.ResourceBinding{
			{Stage: conv.StageFragment, DescriptorSet: 0, Binding: 0, Count: 1, BufferSlot: 3},
			{Stage: conv.StageFragment, DescriptorSet: 0, Binding: 1, Count: 1, TextureSlot: 5},
			{Stage: conv.StageFragment, DescriptorSet: 0, Binding: 2, Count: 1, SamplerSlot: 2},
			{Stage: conv.StageFragment, DescriptorSet: 1, Binding: 0, Count: 1, BufferSlot: 4},
		},
	}
}

func TestNagaEngine_Slots(t *testing.T) {
	cfg := nagaConfig()
	tr := NewTranslator(NewNagaEngine(), nil, false)
	res, err := tr.Translate(context.Background(), shader.NewWGSL(fragmentWGSL), cfg)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	for _, want := range []string{"[[buffer(3)]]", "[[texture(5)]]", "[[sampler(2)]]"} {
		if !strings.Contains(res.Source, want) {
			t.Errorf("source lacks %s:\n%s", want, res.Source)
		}
	}
	if res.EntryPoint.Name == "" {
		t.Error("EntryPoint.Name is empty")
	}
	if !res.EntryPoint.SupportsFastMath {
		t.Error("SupportsFastMath = false, want true")
	}

	used := []bool{true, true, true, false}
	for i, rb := range cfg.Resources {
		if rb.UsedByShader != used[i] {
			t.Errorf("%s UsedByShader = %v, want %v", rb.Element(), rb.UsedByShader, used[i])
		}
	}
	if !cfg.Inputs[0].UsedByShader || cfg.Inputs[1].UsedByShader {
		t.Errorf("input usage = %v/%v, want true/false", cfg.Inputs[0].UsedByShader, cfg.Inputs[1].UsedByShader)
	}
}

func TestNagaEngine_InlineSampler(t *testing.T) {
	cfg := nagaConfig()
	cs := conv.ConstantSampler{
		AddressU:  gputypes.AddressModeRepeat,
		AddressV:  gputypes.AddressModeRepeat,
		AddressW:  gputypes.AddressModeClampToEdge,
		MagFilter: gputypes.FilterModeLinear,
		MinFilter: gputypes.FilterModeLinear,
	}
	cfg.Resources[2].ConstantSampler = &cs

	res, err := NewTranslator(NewNagaEngine(), nil, false).Translate(context.Background(), shader.NewWGSL(fragmentWGSL), cfg)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if !strings.Contains(res.Source, "constexpr metal::sampler") {
		t.Errorf("source lacks an inline sampler:\n%s", res.Source)
	}
	if strings.Contains(res.Source, "[[sampler(") {
		t.Errorf("inline sampler is also bound:\n%s", res.Source)
	}
}

func TestNagaEngine_Compute(t *testing.T) {
	const src = `
@group(0) @binding(0) var<storage, read_write> data: array<u32>;

@compute @workgroup_size(16)
fn main(@builtin(global_invocation_id) id: vec3<u32>) {
    data[id.x] = arrayLength(&data);
}
`
	cfg := &conv.Configuration{
		Options: conv.Options{Stage: conv.StageCompute},
		Resources: []conv.ResourceBinding{
			{Stage: conv.StageCompute, Count: 1, BufferSlot: 0},
		},
	}
	res, err := NewTranslator(NewNagaEngine(), nil, false).Translate(context.Background(), shader.NewWGSL(src), cfg)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	want := [3]uint32{16, 1, 1}
	for i, d := range res.EntryPoint.WorkgroupSize {
		if d.Size != want[i] || d.IsSpecialized {
			t.Errorf("WorkgroupSize[%d] = %+v, want %d", i, d, want[i])
		}
	}
	if !res.EntryPoint.NeedsBufferSizeBuffer {
		t.Error("NeedsBufferSizeBuffer = false for a runtime-sized array")
	}
	if !strings.Contains(res.Source, "[[buffer(1)]]") {
		t.Errorf("sizes buffer not placed after the data buffer:\n%s", res.Source)
	}
}

func TestNagaEngine_Unsupported(t *testing.T) {
	b := spirv.NewModuleBuilder(spirv.Version1_3)
	b.AddTypeVoid()
	tests := []struct {
		name   string
		module *shader.Module
		stage  conv.Stage
		entry  string
	}{
		{"spirv module", shader.NewSPIRV(b.Words()), conv.StageFragment, ""},
		{"tessellation", shader.NewWGSL(fragmentWGSL), conv.StageTessEval, ""},
		{"missing entry", shader.NewWGSL(fragmentWGSL), conv.StageVertex, ""},
		{"wrong name", shader.NewWGSL(fragmentWGSL), conv.StageFragment, "main"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &conv.Configuration{Options: conv.Options{Stage: tt.stage, EntryPoint: tt.entry}}
			_, err := NewTranslator(NewNagaEngine(), nil, false).Translate(context.Background(), tt.module, cfg)
			if !conv.IsTranslation(err) {
				t.Errorf("Translate error = %v, want translation error", err)
			}
		})
	}
}

func TestInlineSampler(t *testing.T) {
	s := InlineSampler(conv.ConstantSampler{
		Coord:     conv.CoordPixel,
		AddressU:  gputypes.AddressModeMirrorRepeat,
		MagFilter: gputypes.FilterModeLinear,
		MipFilter: gputypes.MipmapFilterModeLinear,
		Compare:   gputypes.CompareFunctionLessEqual,
	})
	if s.Coord != msl.SamplerCoordPixel {
		t.Errorf("Coord = %v, want pixel", s.Coord)
	}
	if s.Address != [3]msl.SamplerAddress{msl.SamplerAddressMirroredRepeat, msl.SamplerAddressClampToEdge, msl.SamplerAddressClampToEdge} {
		t.Errorf("Address = %v", s.Address)
	}
	if s.MagFilter != msl.SamplerFilterLinear || s.MinFilter != msl.SamplerFilterNearest {
		t.Errorf("filters = %v/%v, want linear/nearest", s.MagFilter, s.MinFilter)
	}
	if s.MipFilter == nil || *s.MipFilter != msl.SamplerFilterLinear {
		t.Errorf("MipFilter = %v, want linear", s.MipFilter)
	}
	if s.CompareFunc != msl.SamplerCompareFuncLessEqual {
		t.Errorf("CompareFunc = %v, want less_equal", s.CompareFunc)
	}
}
