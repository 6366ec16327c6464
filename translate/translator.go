// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package translate

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gogpu/mslconv/conv"
	"github.com/gogpu/mslconv/internal/logging"
	"github.com/gogpu/mslconv/reflection"
	"github.com/gogpu/mslconv/shader"
)

// Translator runs an Engine against a configuration.
type Translator struct {
	engine Engine
	logger *slog.Logger
	// debug logs every translated source.
	debug bool
}

// NewTranslator returns a translator for engine. A nil logger discards
// output.
func NewTranslator(engine Engine, logger *slog.Logger, debug bool) *Translator {
	return &Translator{engine: engine, logger: logging.OrNop(logger), debug: debug}
}

// Translate translates the entry point cfg selects from module.
//
// On success the UsedByShader flags of cfg's inputs, outputs and own-stage
// resources are overwritten from the engine's usage report. For SPIR-V
// modules a missing usage report or compute workgroup size is reflected
// from the module. On failure
// cfg is left untouched and the error is a translation error carrying any
// partial source.
func (t *Translator) Translate(ctx context.Context, module *shader.Module, cfg *conv.Configuration) (*conv.Result, error) {
	opts := cfg.Options
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	out, err := t.engine.Translate(ctx, Request{Module: module, Config: cfg})
	if err == nil && out == nil {
		err = errors.New("engine returned no output")
	}
	if err != nil {
		var partial string
		var f *Failure
		if errors.As(err, &f) {
			partial = f.PartialSource
		}
		t.logger.Warn("mslconv: translation failed",
			"stage", opts.Stage.String(),
			"entryPoint", opts.EntryPoint,
			"partialBytes", len(partial),
			"err", err)
		return nil, conv.NewTranslationError(opts.Stage, opts.EntryPoint, partial, err)
	}

	if module.Language() == shader.LanguageSPIRV {
		if err := reflectSPIRV(module, opts, out); err != nil {
			return nil, err
		}
	}

	res := &conv.Result{
		Source:                out.Source,
		EntryPoint:            out.EntryPoint,
		RasterizationDisabled: out.RasterizationDisabled,
		Log:                   out.Log,
	}
	if res.EntryPoint.Name == "" {
		res.EntryPoint.Name = conv.DefaultEntryPointName
	}
	for i := range res.EntryPoint.WorkgroupSize {
		d := &res.EntryPoint.WorkgroupSize[i]
		d.Size = max(d.Size, 1)
	}

	annotate(cfg, out.Usage)

	if t.debug {
		t.logger.Debug("mslconv: translated",
			"stage", opts.Stage.String(),
			"entryPoint", opts.EntryPoint,
			"function", res.EntryPoint.Name,
			"source", res.Source)
	}
	return res, nil
}

// reflectSPIRV fills in the workgroup size and usage report an engine left
// out, from the SPIR-V module itself.
func reflectSPIRV(module *shader.Module, opts conv.Options, out *Output) error {
	needSize := opts.Stage == conv.StageCompute && out.EntryPoint.WorkgroupSize == [3]conv.WorkgroupDimension{}
	if !needSize && out.Usage != nil {
		return nil
	}
	m, err := module.SPIRV()
	if err != nil {
		return conv.NewTranslationError(opts.Stage, opts.EntryPoint, out.Source, err)
	}
	if needSize {
		if out.EntryPoint.WorkgroupSize, err = reflection.WorkgroupSize(m, opts.EntryPoint); err != nil {
			return err
		}
	}
	if out.Usage == nil {
		usage, err := reflection.StaticUsage(m, opts.EntryPoint, opts.Stage)
		if err != nil {
			return err
		}
		out.Usage = usage
	}
	return nil
}

// annotate writes the usage flags of cfg's own stage. A nil usage marks
// everything used.
func annotate(cfg *conv.Configuration, usage Usage) {
	for i := range cfg.Inputs {
		v := &cfg.Inputs[i]
		v.UsedByShader = usage == nil || usage.IsVariableUsed(*v)
	}
	for i := range cfg.Outputs {
		v := &cfg.Outputs[i]
		v.UsedByShader = usage == nil || usage.IsVariableUsed(*v)
	}
	for i := range cfg.Resources {
		rb := &cfg.Resources[i]
		if rb.Stage == cfg.Options.Stage {
			rb.UsedByShader = usage == nil || usage.IsResourceUsed(rb.DescriptorSet, rb.Binding)
		}
	}
}
