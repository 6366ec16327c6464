// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package mslconv converts shader stages to Metal Shading Language.
//
// A Converter assigns Metal argument-table slots to the descriptors of a
// pipeline layout, reflects each stage's interface, translates the stage
// and caches the result. A cached translation is reused for any later
// configuration that agrees on everything the shader actually reads.
//
// Example:
//
//	c := mslconv.New(env.Default(), nil)
//	layout, err := c.Layout([]binding.SetLayout{set0}, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	results, err := c.ConvertPipeline(ctx, layout, []mslconv.PipelineStage{
//	    {Module: module, Stage: conv.StageVertex, EntryPoint: "vs_main"},
//	    {Module: module, Stage: conv.StageFragment, EntryPoint: "fs_main"},
//	})
package mslconv

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/mslconv/binding"
	"github.com/gogpu/mslconv/cache"
	"github.com/gogpu/mslconv/conv"
	"github.com/gogpu/mslconv/env"
	"github.com/gogpu/mslconv/reflection"
	"github.com/gogpu/mslconv/shader"
	"github.com/gogpu/mslconv/translate"
)

// Converter converts shader stages. It is safe for concurrent use.
type Converter struct {
	env        *env.Environment
	allocator  *binding.Allocator
	translator *translate.Translator
	cache      *cache.Cache
}

// New returns a converter configured by e. A nil e uses env.Default and a
// nil engine uses translate.NewNagaEngine.
func New(e *env.Environment, engine translate.Engine) *Converter {
	if e == nil {
		e = env.Default()
	}
	if engine == nil {
		engine = translate.NewNagaEngine()
	}
	log := e.Log()
	return &Converter{
		env:        e,
		allocator:  e.Allocator(),
		translator: translate.NewTranslator(engine, log, e.Debug),
		cache: cache.New(cache.Options{
			Capacity:        e.ShaderCacheCapacity,
			CompilerVersion: e.CompilerVersion(),
			Platform:        e.TargetPlatform(),
			Logger:          log,
		}),
	}
}

// Env returns the converter's environment.
func (c *Converter) Env() *env.Environment { return c.env }

// Cache returns the variant cache, for persistence and statistics.
func (c *Converter) Cache() *cache.Cache { return c.cache }

// Layout assigns slots to the sets of a pipeline layout, in order, followed
// by its push constants.
func (c *Converter) Layout(sets []binding.SetLayout, pushConstants []binding.PushConstantRange) (*binding.PipelineLayout, error) {
	return c.allocator.AllocatePipeline(sets, pushConstants)
}

// NewConfiguration builds the configuration for one stage: options from
// the environment, resources from layout (which may be nil) and the
// interface reflected from module.
func (c *Converter) NewConfiguration(module *shader.Module, stage conv.Stage, entry string, layout *binding.PipelineLayout) (*conv.Configuration, error) {
	cfg := &conv.Configuration{Options: c.env.Options(stage, entry)}
	if layout != nil {
		layout.PopulateConfiguration(cfg)
	}
	var err error
	cfg.Inputs, cfg.Outputs, err = reflectInterface(module, stage, entry)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func reflectInterface(module *shader.Module, stage conv.Stage, entry string) (ins, outs []conv.InterfaceVariable, err error) {
	if module.Language() == shader.LanguageWGSL {
		m, err := module.IR()
		if err != nil {
			return nil, nil, err
		}
		if ins, err = reflection.IRInputs(m, entry, stage); err != nil {
			return nil, nil, err
		}
		outs, err = reflection.IROutputs(m, entry, stage)
		return ins, outs, err
	}
	m, err := module.SPIRV()
	if err != nil {
		return nil, nil, err
	}
	if ins, err = reflection.Inputs(m, entry, stage); err != nil {
		return nil, nil, err
	}
	outs, err = reflection.Outputs(m, entry, stage)
	return ins, outs, err
}

// ConvertStage returns the translation of module under cfg, from the cache
// when possible. On success cfg carries the usage flags of the
// translation.
//
// The environment's MetalCompileTimeout bounds the wait. A translation
// that outlives it still completes and is cached.
func (c *Converter) ConvertStage(ctx context.Context, module *shader.Module, cfg *conv.Configuration) (*conv.Result, error) {
	if t := c.env.MetalCompileTimeout; t > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t)
		defer cancel()
	}
	return c.cache.LookupOrCompile(ctx, module.Key(), cfg, func(ctx context.Context, cfg *conv.Configuration) (*conv.Result, error) {
		return c.translator.Translate(ctx, module, cfg)
	})
}

// PipelineStage selects one stage of a pipeline.
type PipelineStage struct {
	Module     *shader.Module
	Stage      conv.Stage
	EntryPoint string
}

// StageResult is the conversion of one pipeline stage.
type StageResult struct {
	Stage  conv.Stage
	Config *conv.Configuration
	Result *conv.Result
}

// ConvertPipeline converts every stage of a pipeline concurrently. Results
// are in the order of stages. The first failure cancels the remaining
// waits and is returned.
//
// Tessellation stages must come in pairs; their patch kind and output
// control-point count are reflected from the pair before translation.
func (c *Converter) ConvertPipeline(ctx context.Context, layout *binding.PipelineLayout, stages []PipelineStage) ([]StageResult, error) {
	cfgs := make([]*conv.Configuration, len(stages))
	for i, s := range stages {
		cfg, err := c.NewConfiguration(s.Module, s.Stage, s.EntryPoint, layout)
		if err != nil {
			return nil, err
		}
		cfgs[i] = cfg
	}
	if err := linkTessellation(stages, cfgs); err != nil {
		return nil, err
	}

	results := make([]StageResult, len(stages))
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range stages {
		g.Go(func() error {
			res, err := c.ConvertStage(gctx, s.Module, cfgs[i])
			if err != nil {
				return err
			}
			results[i] = StageResult{Stage: s.Stage, Config: cfgs[i], Result: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// linkTessellation copies the merged tessellation facts of the control and
// evaluation stages into both configurations.
func linkTessellation(stages []PipelineStage, cfgs []*conv.Configuration) error {
	control, eval := -1, -1
	for i, s := range stages {
		switch s.Stage {
		case conv.StageTessControl:
			control = i
		case conv.StageTessEval:
			eval = i
		}
	}
	switch {
	case control < 0 && eval < 0:
		return nil
	case control < 0:
		return conv.NewConfigurationError(conv.StageTessEval, stages[eval].EntryPoint, "pipeline",
			"tessellation evaluation stage without a control stage")
	case eval < 0:
		return conv.NewConfigurationError(conv.StageTessControl, stages[control].EntryPoint, "pipeline",
			"tessellation control stage without an evaluation stage")
	}

	cm, err := stages[control].Module.SPIRV()
	if err != nil {
		return err
	}
	em, err := stages[eval].Module.SPIRV()
	if err != nil {
		return err
	}
	facts, err := reflection.Tessellation(cm, stages[control].EntryPoint, em, stages[eval].EntryPoint)
	if err != nil {
		return err
	}
	for _, i := range []int{control, eval} {
		cfgs[i].Options.PatchKind = facts.PatchKind
		cfgs[i].Options.OutputControlPoints = facts.OutputControlPoints
	}
	return nil
}
