// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package env holds the process-wide converter settings.
//
// An Environment is built once, usually by Load at startup, and passed to
// every component that needs it. Settings come from MVK_CONFIG_* variables:
//
//	MVK_CONFIG_SHADER_CONVERSION_FLIP_VERTEX_Y=0
//	MVK_CONFIG_MSL_VERSION=3.1
//	MVK_CONFIG_SHADER_CACHE_CAPACITY=1024
package env

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"

	"github.com/gogpu/mslconv/binding"
	"github.com/gogpu/mslconv/conv"
	"github.com/gogpu/mslconv/internal/logging"
)

// Prefix is the prefix of every environment variable read by Load.
const Prefix = "MVK_CONFIG"

// Log levels of LogLevel, from silent to most verbose.
const (
	LogLevelNone = iota
	LogLevelError
	LogLevelWarning
	LogLevelInfo
	LogLevelDebug
)

// Environment is the converter configuration.
type Environment struct {
	FlipVertexY         bool   `envconfig:"SHADER_CONVERSION_FLIP_VERTEX_Y" default:"true"`
	FixupClipSpaceDepth bool   `envconfig:"SHADER_CONVERSION_FIXUP_CLIP_SPACE_DEPTH" default:"false"`
	UseArgumentBuffers  bool   `envconfig:"USE_METAL_ARGUMENT_BUFFERS" default:"false"`
	MSLVersion          string `envconfig:"MSL_VERSION" default:"2.4.0"`
	Platform            string `envconfig:"PLATFORM" default:"macos"`

	NativeTextureAtomics bool `envconfig:"NATIVE_TEXTURE_ATOMICS" default:"false"`

	// ShaderCacheCapacity bounds the variant cache. Zero is unbounded.
	ShaderCacheCapacity int `envconfig:"SHADER_CACHE_CAPACITY" default:"256"`

	// MetalCompileTimeout bounds how long a caller waits for a
	// translation, e.g. "250ms". Zero waits indefinitely.
	MetalCompileTimeout time.Duration `envconfig:"METAL_COMPILE_TIMEOUT" default:"0"`

	// Debug logs every translated source at debug level.
	Debug    bool `envconfig:"DEBUG" default:"false"`
	LogLevel int  `envconfig:"LOG_LEVEL" default:"1"`

	MaxBuffers  uint32 `envconfig:"MAX_PER_STAGE_BUFFERS" default:"31"`
	MaxTextures uint32 `envconfig:"MAX_PER_STAGE_TEXTURES" default:"128"`
	MaxSamplers uint32 `envconfig:"MAX_PER_STAGE_SAMPLERS" default:"16"`

	compilerVersion conv.CompilerVersion
	platform        conv.Platform
	logger          atomic.Pointer[slog.Logger]
}

// Default returns the default settings without reading the process
// environment.
func Default() *Environment {
	e := &Environment{
		FlipVertexY:         true,
		MSLVersion:          "2.4.0",
		Platform:            "macos",
		ShaderCacheCapacity: 256,
		LogLevel:            LogLevelError,
		MaxBuffers:          31,
		MaxTextures:         128,
		MaxSamplers:         16,
	}
	// The defaults above always parse.
	_ = e.resolve()
	return e
}

// Load reads the settings from the MVK_CONFIG_* environment variables.
func Load() (*Environment, error) {
	e := &Environment{}
	if err := envconfig.Process(Prefix, e); err != nil {
		return nil, errors.Wrap(err, "env")
	}
	if err := e.resolve(); err != nil {
		return nil, err
	}
	return e, nil
}

// resolve parses the string settings and checks ranges.
func (e *Environment) resolve() error {
	v, err := conv.ParseCompilerVersion(e.MSLVersion)
	if err != nil {
		return errors.Wrapf(err, "env: %s_MSL_VERSION", Prefix)
	}
	p, err := conv.ParsePlatform(e.Platform)
	if err != nil {
		return errors.Wrapf(err, "env: %s_PLATFORM", Prefix)
	}
	if e.ShaderCacheCapacity < 0 {
		return errors.Errorf("env: %s_SHADER_CACHE_CAPACITY %d is negative", Prefix, e.ShaderCacheCapacity)
	}
	if e.MetalCompileTimeout < 0 {
		return errors.Errorf("env: %s_METAL_COMPILE_TIMEOUT %s is negative", Prefix, e.MetalCompileTimeout)
	}
	if e.LogLevel < LogLevelNone || e.LogLevel > LogLevelDebug {
		return errors.Errorf("env: %s_LOG_LEVEL %d is out of range", Prefix, e.LogLevel)
	}
	e.compilerVersion, e.platform = v, p
	return nil
}

// CompilerVersion returns the parsed MSLVersion.
func (e *Environment) CompilerVersion() conv.CompilerVersion { return e.compilerVersion }

// TargetPlatform returns the parsed Platform.
func (e *Environment) TargetPlatform() conv.Platform { return e.platform }

// Limits returns the per-stage slot limits.
func (e *Environment) Limits() binding.Limits {
	return binding.Limits{
		MaxBuffers:  e.MaxBuffers,
		MaxTextures: e.MaxTextures,
		MaxSamplers: e.MaxSamplers,
	}
}

// Allocator returns a slot allocator honouring the environment's limits
// and texture atomics support.
func (e *Environment) Allocator() *binding.Allocator {
	return &binding.Allocator{
		NativeTextureAtomics: e.NativeTextureAtomics,
		Limits:               e.Limits(),
	}
}

// Options returns the translation options for one stage entry point.
func (e *Environment) Options(stage conv.Stage, entry string) conv.Options {
	return conv.Options{
		EntryPoint:          entry,
		Stage:               stage,
		FlipVertexY:         e.FlipVertexY,
		FixupClipSpaceDepth: e.FixupClipSpaceDepth,
		ArgumentBuffers:     e.UseArgumentBuffers,
		CompilerVersion:     e.compilerVersion,
		Platform:            e.platform,
	}
}

// SlogLevel maps LogLevel to a slog level. ok is false for LogLevelNone.
func (e *Environment) SlogLevel() (level slog.Level, ok bool) {
	switch e.LogLevel {
	case LogLevelNone:
		return 0, false
	case LogLevelError:
		return slog.LevelError, true
	case LogLevelWarning:
		return slog.LevelWarn, true
	case LogLevelInfo:
		return slog.LevelInfo, true
	default:
		return slog.LevelDebug, true
	}
}

// SetLogger sets the logger used by components built from e. Pass nil to
// restore silent logging. It is safe to call concurrently with Log.
func (e *Environment) SetLogger(l *slog.Logger) {
	e.logger.Store(logging.OrNop(l))
}

// Log returns the current logger. It never returns nil.
func (e *Environment) Log() *slog.Logger {
	if l := e.logger.Load(); l != nil {
		return l
	}
	return logging.Nop()
}
