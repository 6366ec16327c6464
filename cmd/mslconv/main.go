// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Command mslconv converts a WGSL or SPIR-V shader stage to MSL.
//
// Usage:
//
//	mslconv [options] <input>
//
// Examples:
//
//	mslconv -stage fragment shader.wgsl             # MSL to stdout
//	mslconv -stage vertex -o vs.metal shader.wgsl   # MSL to file
//	mslconv -stage compute -reflect shader.wgsl     # print slots and usage
//	mslconv -cache shaders.cache shader.wgsl        # reuse persisted variants
//
// Settings are read from MVK_CONFIG_* environment variables.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/mslconv"
	"github.com/gogpu/mslconv/binding"
	"github.com/gogpu/mslconv/conv"
	"github.com/gogpu/mslconv/env"
	"github.com/gogpu/mslconv/shader"
)

var (
	output    = flag.String("o", "", "output file (default: stdout)")
	stageName = flag.String("stage", "fragment", "stage: vertex, tesc, tese, fragment or compute")
	entry     = flag.String("entry", "", "entry point (default: first of the stage)")
	reflect   = flag.Bool("reflect", false, "print the configuration instead of the source")
	cachePath = flag.String("cache", "", "variant cache file to load and update")
	version   = flag.Bool("version", false, "print version")
)

const mslconvVersion = "0.1.0-dev"

func main() {
	flag.Usage = usage
	flag.Parse()

	if *version {
		fmt.Printf("mslconv version %s\n", mslconvVersion)
		return
	}
	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Error: no input file specified")
		usage()
		os.Exit(1)
	}
	if err := run(args[0]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(inputPath string) error {
	e, err := env.Load()
	if err != nil {
		return err
	}
	if level, ok := e.SlogLevel(); ok {
		e.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	}
	stage, err := parseStage(*stageName)
	if err != nil {
		return err
	}
	module, err := readModule(inputPath)
	if err != nil {
		return err
	}

	c := mslconv.New(e, nil)
	if *cachePath != "" {
		if err := loadCache(c, *cachePath); err != nil {
			return err
		}
	}

	var sets []binding.SetLayout
	if module.Language() == shader.LanguageWGSL {
		m, err := module.IR()
		if err != nil {
			return err
		}
		sets = layoutFromIR(m, binding.StageBit(stage))
	}
	layout, err := c.Layout(sets, nil)
	if err != nil {
		return err
	}
	cfg, err := c.NewConfiguration(module, stage, *entry, layout)
	if err != nil {
		return err
	}
	res, err := c.ConvertStage(context.Background(), module, cfg)
	if err != nil {
		var ce *conv.Error
		if errors.As(err, &ce) && ce.PartialSource != "" {
			fmt.Fprintf(os.Stderr, "Partial output:\n%s\n", ce.PartialSource)
		}
		return err
	}

	if *cachePath != "" {
		if err := saveCache(c, *cachePath); err != nil {
			return err
		}
	}

	text := res.Source
	if *reflect {
		text = describe(cfg, res)
	}
	if *output == "" {
		_, err = os.Stdout.WriteString(text)
		return err
	}
	if err := os.WriteFile(*output, []byte(text), 0o644); err != nil {
		return err
	}
	fmt.Printf("Successfully converted %s to %s (%d bytes)\n", inputPath, *output, len(text))
	return nil
}

func parseStage(s string) (conv.Stage, error) {
	switch strings.ToLower(s) {
	case "vertex", "vert":
		return conv.StageVertex, nil
	case "tesc", "tess-control":
		return conv.StageTessControl, nil
	case "tese", "tess-eval":
		return conv.StageTessEval, nil
	case "fragment", "frag":
		return conv.StageFragment, nil
	case "compute", "comp":
		return conv.StageCompute, nil
	}
	return 0, fmt.Errorf("unknown stage %q", s)
}

func readModule(path string) (*shader.Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m *shader.Module
	if filepath.Ext(path) == ".spv" {
		if m, err = shader.NewSPIRVBytes(data); err != nil {
			return nil, err
		}
	} else {
		m = shader.NewWGSL(string(data))
	}
	m.Label = filepath.Base(path)
	return m, nil
}

func loadCache(c *mslconv.Converter, path string) error {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = c.Cache().ReadFrom(f)
	return err
}

func saveCache(c *mslconv.Converter, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := c.Cache().WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: mslconv [options] <input.wgsl|input.spv>\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  mslconv -stage fragment shader.wgsl         Convert to stdout\n")
	fmt.Fprintf(os.Stderr, "  mslconv -stage vertex -o vs.metal s.wgsl    Convert to file\n")
	fmt.Fprintf(os.Stderr, "  mslconv -stage compute -reflect s.wgsl      Print slots and usage\n")
}
