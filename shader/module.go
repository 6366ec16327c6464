// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package shader

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
	nagaspirv "github.com/gogpu/naga/spirv"
	"github.com/pkg/errors"

	"github.com/gogpu/mslconv/spirv"
)

// Language is the language of a module's source.
type Language uint8

const (
	LanguageSPIRV Language = iota
	LanguageWGSL
)

func (l Language) String() string {
	if l == LanguageWGSL {
		return "WGSL"
	}
	return "SPIR-V"
}

// Key identifies module code: its size in bytes and its xxhash.
type Key struct {
	Size uint64
	Hash uint64
}

func (k Key) String() string {
	return fmt.Sprintf("%016x/%d", k.Hash, k.Size)
}

// KeyOfWords returns the key of SPIR-V code given as words. The words are
// hashed in little-endian byte order.
func KeyOfWords(words []uint32) Key {
	d := xxhash.New()
	var b [4]byte
	for _, w := range words {
		binary.LittleEndian.PutUint32(b[:], w)
		_, _ = d.Write(b[:])
	}
	return Key{Size: uint64(len(words)) * 4, Hash: d.Sum64()}
}

// KeyOfString returns the key of textual source code.
func KeyOfString(code string) Key {
	return Key{Size: uint64(len(code)), Hash: xxhash.Sum64String(code)}
}

// Module is a shader module. It is safe for concurrent use; parsing
// happens once, on first access.
type Module struct {
	Label string

	source gputypes.ShaderSource
	lang   Language
	key    Key

	spirvOnce sync.Once
	spirv     *spirv.Module
	spirvErr  error

	irOnce sync.Once
	ir     *ir.Module
	irErr  error
}

// New creates a module from a shader module descriptor. WGSL and SPIR-V
// sources are accepted.
func New(desc gputypes.ShaderModuleDescriptor) (*Module, error) {
	var m *Module
	switch src := desc.Source.(type) {
	case gputypes.ShaderSourceSPIRV:
		m = NewSPIRV(src.Code)
	case *gputypes.ShaderSourceSPIRV:
		m = NewSPIRV(src.Code)
	case gputypes.ShaderSourceWGSL:
		m = NewWGSL(src.Code)
	case *gputypes.ShaderSourceWGSL:
		m = NewWGSL(src.Code)
	case nil:
		return nil, errors.New("shader: module has no source")
	default:
		return nil, errors.Errorf("shader: unsupported source %T", desc.Source)
	}
	m.Label = desc.Label
	return m, nil
}

// NewSPIRV creates a module from SPIR-V words.
func NewSPIRV(words []uint32) *Module {
	return &Module{
		source: gputypes.ShaderSourceSPIRV{Code: words},
		lang:   LanguageSPIRV,
		key:    KeyOfWords(words),
	}
}

// NewSPIRVBytes creates a module from a SPIR-V binary in either byte
// order.
func NewSPIRVBytes(data []byte) (*Module, error) {
	m, err := spirv.ParseBytes(data)
	if err != nil {
		return nil, err
	}
	words := make([]uint32, len(data)/4)
	order := binary.ByteOrder(binary.LittleEndian)
	if binary.LittleEndian.Uint32(data) != spirv.MagicNumber {
		order = binary.BigEndian
	}
	for i := range words {
		words[i] = order.Uint32(data[i*4:])
	}
	mod := NewSPIRV(words)
	mod.spirvOnce.Do(func() { mod.spirv = m })
	return mod, nil
}

// NewWGSL creates a module from WGSL source.
func NewWGSL(code string) *Module {
	return &Module{
		source: gputypes.ShaderSourceWGSL{Code: code},
		lang:   LanguageWGSL,
		key:    KeyOfString(code),
	}
}

// Key returns the module key.
func (m *Module) Key() Key { return m.key }

// Language returns the source language.
func (m *Module) Language() Language { return m.lang }

// Source returns the module source.
func (m *Module) Source() gputypes.ShaderSource { return m.source }

// WGSL returns the WGSL source, or "" for SPIR-V modules.
func (m *Module) WGSL() string {
	if src, ok := m.source.(gputypes.ShaderSourceWGSL); ok {
		return src.Code
	}
	return ""
}

// SPIRV returns the indexed SPIR-V module. WGSL modules are compiled to
// SPIR-V first.
func (m *Module) SPIRV() (*spirv.Module, error) {
	m.spirvOnce.Do(func() {
		switch src := m.source.(type) {
		case gputypes.ShaderSourceSPIRV:
			m.spirv, m.spirvErr = spirv.Parse(src.Code)
		case gputypes.ShaderSourceWGSL:
			var module *ir.Module
			if module, m.spirvErr = m.IR(); m.spirvErr != nil {
				return
			}
			var data []byte
			data, m.spirvErr = naga.GenerateSPIRV(module, nagaspirv.Options{Version: nagaspirv.Version1_3})
			if m.spirvErr != nil {
				m.spirvErr = errors.Wrap(m.spirvErr, "shader: generating SPIR-V")
				return
			}
			m.spirv, m.spirvErr = spirv.ParseBytes(data)
		}
	})
	return m.spirv, m.spirvErr
}

// IR returns the validated naga IR of a WGSL module.
func (m *Module) IR() (*ir.Module, error) {
	m.irOnce.Do(func() {
		code := m.WGSL()
		if m.lang != LanguageWGSL {
			m.irErr = errors.Errorf("shader: %s modules have no naga IR", m.lang)
			return
		}
		m.ir, m.irErr = lower(code)
	})
	return m.ir, m.irErr
}

func lower(code string) (*ir.Module, error) {
	ast, err := naga.Parse(code)
	if err != nil {
		return nil, errors.Wrap(err, "shader: parsing WGSL")
	}
	module, err := naga.LowerWithSource(ast, code)
	if err != nil {
		return nil, errors.Wrap(err, "shader: lowering WGSL")
	}
	verrs, err := naga.Validate(module)
	if err != nil {
		return nil, errors.Wrap(err, "shader: validating IR")
	}
	if len(verrs) > 0 {
		return nil, errors.Wrapf(&verrs[0], "shader: %d validation errors", len(verrs))
	}
	return module, nil
}
