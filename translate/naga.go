// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package translate

import (
	"context"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/msl"

	"github.com/gogpu/mslconv/conv"
	"github.com/gogpu/mslconv/reflection"
	"github.com/gogpu/mslconv/shader"
)

// NagaEngine translates WGSL modules with the naga MSL backend.
//
// Resources are bound to the slots of the configuration's own-stage
// resource bindings. Bindings with a constant sampler become inline
// samplers.
type NagaEngine struct {
	// BoundsChecks selects the backend's bounds-check policies. The zero
	// value performs no checks.
	BoundsChecks msl.BoundsCheckPolicies
}

// NewNagaEngine returns an engine with the backend's default bounds
// checks.
func NewNagaEngine() *NagaEngine {
	return &NagaEngine{BoundsChecks: msl.DefaultBoundsCheckPolicies()}
}

var mslStages = map[conv.Stage]ir.ShaderStage{
	conv.StageVertex:   ir.StageVertex,
	conv.StageFragment: ir.StageFragment,
	conv.StageCompute:  ir.StageCompute,
}

// Translate implements Engine.
func (e *NagaEngine) Translate(ctx context.Context, req Request) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg := req.Config
	opts := cfg.Options
	if req.Module.Language() != shader.LanguageWGSL {
		return nil, fmt.Errorf("naga engine: %s modules are not supported", req.Module.Language())
	}
	stage, ok := mslStages[opts.Stage]
	if !ok {
		return nil, fmt.Errorf("naga engine: %s stage is not supported", opts.Stage)
	}
	module, err := req.Module.IR()
	if err != nil {
		return nil, err
	}
	ep := findEntry(module, stage, opts.EntryPoint)
	if ep == nil {
		return nil, fmt.Errorf("naga engine: no %s entry point %q", opts.Stage, opts.EntryPoint)
	}

	options, err := e.options(module, ep.Name, cfg)
	if err != nil {
		return nil, err
	}
	source, info, err := msl.CompileWithPipeline(module, options, msl.PipelineOptions{
		EntryPoint: &msl.EntryPointSelector{Stage: stage, Name: ep.Name},
	})
	if err != nil {
		return nil, &Failure{PartialSource: source, Err: err}
	}

	usage, err := reflection.IRStaticUsage(module, ep.Name, opts.Stage)
	if err != nil {
		return nil, err
	}
	out := &Output{
		Source: source,
		Usage:  usage,
		EntryPoint: conv.EntryPoint{
			Name:                     info.EntryPointNames[ep.Name],
			SupportsFastMath:         true,
			NeedsBufferSizeBuffer:    info.RequiresSizesBuffer,
			NeedsDynamicOffsetBuffer: opts.ArgumentBuffers && hasDynamicOffsets(cfg),
		},
	}
	if opts.Stage == conv.StageCompute {
		out.EntryPoint.WorkgroupSize, err = reflection.IRWorkgroupSize(module, ep.Name)
		if err != nil {
			return nil, err
		}
	}
	if opts.Stage == conv.StageVertex {
		out.RasterizationDisabled = !writesPosition(module, ep)
	}
	return out, nil
}

func findEntry(m *ir.Module, stage ir.ShaderStage, name string) *ir.EntryPoint {
	for i := range m.EntryPoints {
		ep := &m.EntryPoints[i]
		if ep.Stage == stage && (name == "" || ep.Name == name) {
			return ep
		}
	}
	return nil
}

func hasDynamicOffsets(cfg *conv.Configuration) bool {
	for _, off := range cfg.DynamicOffsets {
		if off.Stage == cfg.Options.Stage {
			return true
		}
	}
	return false
}

func writesPosition(m *ir.Module, ep *ir.EntryPoint) bool {
	outs, err := reflection.IROutputs(m, ep.Name, conv.StageVertex)
	if err != nil {
		return false
	}
	for _, o := range outs {
		if o.BuiltIn == conv.BuiltInPosition {
			return true
		}
	}
	return false
}

// options builds the backend options binding every global of module to
// the slots configured for it.
func (e *NagaEngine) options(module *ir.Module, entry string, cfg *conv.Configuration) (msl.Options, error) {
	opts := msl.Options{
		LangVersion: msl.Version{
			Major: uint8(cfg.Options.CompilerVersion.Major),
			Minor: uint8(cfg.Options.CompilerVersion.Minor),
		},
		BoundsCheckPolicies:           e.BoundsChecks,
		ZeroInitializeWorkgroupMemory: true,
	}
	if opts.LangVersion == (msl.Version{}) {
		opts.LangVersion = msl.Version2_1
	}

	resources := msl.EntryPointResources{Resources: make(map[ir.ResourceBinding]msl.BindTarget)}
	next := uint32(0)
	for _, rb := range cfg.StageResources() {
		next = max(next, rb.BufferSlot+max(rb.Count, 1))
		if rb.DescriptorSet == conv.PushConstantSet {
			slot, err := slot8(rb, rb.BufferSlot)
			if err != nil {
				return opts, err
			}
			resources.PushConstantBuffer = &slot
			continue
		}
		gv := findGlobal(module, rb.DescriptorSet, rb.Binding)
		if gv == nil {
			continue
		}
		target, err := bindTarget(module, gv, rb, &opts)
		if err != nil {
			return opts, err
		}
		resources.Resources[ir.ResourceBinding{Group: rb.DescriptorSet, Binding: rb.Binding}] = target
	}
	// The buffer-size table goes after every configured buffer.
	if next <= 0xff {
		sizes := uint8(next)
		resources.SizesBuffer = &sizes
	}
	opts.PerEntryPointMap = map[string]msl.EntryPointResources{entry: resources}
	return opts, nil
}

func findGlobal(m *ir.Module, group, binding uint32) *ir.GlobalVariable {
	for i := range m.GlobalVariables {
		gv := &m.GlobalVariables[i]
		if gv.Binding != nil && gv.Binding.Group == group && gv.Binding.Binding == binding {
			return gv
		}
	}
	return nil
}

func slot8(rb conv.ResourceBinding, slot uint32) (uint8, error) {
	if slot > 0xff {
		return 0, conv.NewConfigurationError(rb.Stage, "", rb.Element(), "slot %d exceeds the Metal argument table", slot)
	}
	return uint8(slot), nil
}

func bindTarget(m *ir.Module, gv *ir.GlobalVariable, rb conv.ResourceBinding, opts *msl.Options) (msl.BindTarget, error) {
	var target msl.BindTarget
	var inner ir.TypeInner
	if int(gv.Type) < len(m.Types) {
		inner = m.Types[gv.Type].Inner
	}
	if arr, ok := inner.(ir.BindingArrayType); ok && int(arr.Base) < len(m.Types) {
		inner = m.Types[arr.Base].Inner
	}
	switch inner.(type) {
	case ir.SamplerType:
		if rb.ConstantSampler != nil {
			opts.InlineSamplers = append(opts.InlineSamplers, InlineSampler(*rb.ConstantSampler))
			target.Sampler = &msl.BindSamplerTarget{IsInline: true, Slot: uint8(len(opts.InlineSamplers) - 1)}
			return target, nil
		}
		s, err := slot8(rb, rb.SamplerSlot)
		if err != nil {
			return target, err
		}
		target.Sampler = &msl.BindSamplerTarget{Slot: s}
	case ir.ImageType:
		s, err := slot8(rb, rb.TextureSlot)
		if err != nil {
			return target, err
		}
		target.Texture = &s
	default:
		s, err := slot8(rb, rb.BufferSlot)
		if err != nil {
			return target, err
		}
		target.Buffer = &s
		target.Mutable = gv.Space == ir.SpaceStorage && gv.Access == ir.StorageReadWrite
	}
	return target, nil
}

// InlineSampler converts a constant sampler to the backend's inline
// sampler.
func InlineSampler(cs conv.ConstantSampler) msl.InlineSampler {
	s := msl.InlineSampler{
		Address: [3]msl.SamplerAddress{
			samplerAddress(cs.AddressU),
			samplerAddress(cs.AddressV),
			samplerAddress(cs.AddressW),
		},
		MagFilter:   samplerFilter(cs.MagFilter),
		MinFilter:   samplerFilter(cs.MinFilter),
		CompareFunc: compareFunc(cs.Compare),
	}
	if cs.Coord == conv.CoordPixel {
		s.Coord = msl.SamplerCoordPixel
	}
	switch cs.MipFilter {
	case gputypes.MipmapFilterModeNearest:
		f := msl.SamplerFilterNearest
		s.MipFilter = &f
	case gputypes.MipmapFilterModeLinear:
		f := msl.SamplerFilterLinear
		s.MipFilter = &f
	}
	return s
}

func samplerAddress(m gputypes.AddressMode) msl.SamplerAddress {
	switch m {
	case gputypes.AddressModeRepeat:
		return msl.SamplerAddressRepeat
	case gputypes.AddressModeMirrorRepeat:
		return msl.SamplerAddressMirroredRepeat
	default:
		return msl.SamplerAddressClampToEdge
	}
}

func samplerFilter(f gputypes.FilterMode) msl.SamplerFilter {
	if f == gputypes.FilterModeLinear {
		return msl.SamplerFilterLinear
	}
	return msl.SamplerFilterNearest
}

var compareFuncs = map[gputypes.CompareFunction]msl.SamplerCompareFunc{
	gputypes.CompareFunctionNever:        msl.SamplerCompareFuncNever,
	gputypes.CompareFunctionLess:         msl.SamplerCompareFuncLess,
	gputypes.CompareFunctionEqual:        msl.SamplerCompareFuncEqual,
	gputypes.CompareFunctionLessEqual:    msl.SamplerCompareFuncLessEqual,
	gputypes.CompareFunctionGreater:      msl.SamplerCompareFuncGreater,
	gputypes.CompareFunctionNotEqual:     msl.SamplerCompareFuncNotEqual,
	gputypes.CompareFunctionGreaterEqual: msl.SamplerCompareFuncGreaterEqual,
	gputypes.CompareFunctionAlways:       msl.SamplerCompareFuncAlways,
}

func compareFunc(c gputypes.CompareFunction) msl.SamplerCompareFunc {
	if f, ok := compareFuncs[c]; ok {
		return f
	}
	return msl.SamplerCompareFuncNever
}
