// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package cache

import (
	"io"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/gogpu/mslconv/conv"
	"github.com/gogpu/mslconv/shader"
)

// Persisted entries are protobuf wire records written field by field.
// Readers skip fields they do not know. schemaVersion changes when the
// record layout changes incompatibly; optionsVersion changes whenever the
// field set of the options block changes, since options select the bucket.
const (
	schemaVersion  = 1
	optionsVersion = 1
)

const (
	fileVersion protowire.Number = 1
	fileRecord  protowire.Number = 2
)

const (
	recModuleSize protowire.Number = iota + 1
	recModuleHash
	recOptions
	recInput
	recOutput
	recResource
	recDiscreteSet
	recDynamicOffset
	recSource
	recEntryPoint
	recRasterizationDisabled
	recLog
)

const (
	optVersion protowire.Number = iota + 1
	optEntryPoint
	optStage
	optPatchKind
	optOutputControlPoints
	optFlipVertexY
	optFixupClipSpaceDepth
	optArgumentBuffers
	optCompilerMajor
	optCompilerMinor
	optCompilerPatch
	optPlatform
)

const (
	varStorage protowire.Number = iota + 1
	varLocation
	varComponent
	varBuiltIn
	varScalar
	varWidth
	varVecSize
	varBinding
	varRate
	varUsed
)

const (
	resStage protowire.Number = iota + 1
	resSet
	resBinding
	resCount
	resBufferSlot
	resTextureSlot
	resSamplerSlot
	resUsed
	resConstantSampler
)

const (
	smpCoord protowire.Number = iota + 1
	smpAddressU
	smpAddressV
	smpAddressW
	smpMagFilter
	smpMinFilter
	smpMipFilter
	smpLodMinClamp
	smpLodMaxClamp
	smpCompare
	smpMaxAnisotropy
)

const (
	offStage protowire.Number = iota + 1
	offSet
	offBinding
	offIndex
)

const (
	epName protowire.Number = iota + 1
	epWorkgroupSize
	epFastMath
	epSwizzleBuffer
	epOutputBuffer
	epPatchOutputBuffer
	epBufferSizeBuffer
	epDynamicOffsetBuffer
	epInputThreadgroupMem
	epDispatchBaseBuffer
	epViewRangeBuffer
)

const (
	dimSize protowire.Number = iota + 1
	dimSpecializationID
	dimSpecialized
)

// WriteTo writes every finished entry to w, least recently used first.
func (c *Cache) WriteTo(w io.Writer) (int64, error) {
	c.mu.Lock()
	var ready []*entry
	for node := c.lru.Back(); node != nil; node = node.prev {
		if e := node.key; e.state == StateReady {
			ready = append(ready, e)
		}
	}
	c.mu.Unlock()

	b := appendUint(nil, fileVersion, schemaVersion)
	for _, e := range ready {
		b = appendMessage(b, fileRecord, appendRecord(nil, e.key.module, e.config, e.result))
	}
	n, err := w.Write(b)
	return int64(n), errors.Wrap(err, "cache: write")
}

// ReadFrom restores entries written by WriteTo. Records written for
// another compiler version, platform or options layout are skipped and
// counted as stale. Entries already served by the cache are kept.
func (c *Cache) ReadFrom(r io.Reader) (int64, error) {
	data, err := io.ReadAll(r)
	n := int64(len(data))
	if err != nil {
		return n, errors.Wrap(err, "cache: read")
	}

	var version uint64
	var raw [][]byte
	err = fields(data, func(f field) error {
		switch f.num {
		case fileVersion:
			version = f.u
		case fileRecord:
			raw = append(raw, f.b)
		}
		return nil
	})
	if err != nil {
		return n, err
	}
	if version != schemaVersion {
		return n, errors.Errorf("cache: unsupported schema version %d", version)
	}

	recs := make([]record, 0, len(raw))
	for i, b := range raw {
		rec, err := decodeRecord(b)
		if err != nil {
			return n, errors.Wrapf(err, "cache: record %d", i)
		}
		recs = append(recs, rec)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, rec := range recs {
		if rec.optionsVersion != optionsVersion {
			c.stats.Stale++
			c.logger.Debug("shader cache skip", "module", rec.module, "options_version", rec.optionsVersion)
			continue
		}
		c.adopt(rec.module, rec.config, rec.result)
	}
	c.evict()
	return n, nil
}

type record struct {
	module         shader.Key
	optionsVersion uint64
	config         *conv.Configuration
	result         *conv.Result
}

func appendUint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	return appendUint(b, num, protowire.EncodeBool(v))
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

func appendFloat(b []byte, num protowire.Number, v float32) []byte {
	b = protowire.AppendTag(b, num, protowire.Fixed32Type)
	return protowire.AppendFixed32(b, math.Float32bits(v))
}

func appendRecord(b []byte, module shader.Key, cfg *conv.Configuration, res *conv.Result) []byte {
	b = appendUint(b, recModuleSize, module.Size)
	b = protowire.AppendTag(b, recModuleHash, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, module.Hash)
	b = appendMessage(b, recOptions, appendOptions(nil, cfg.Options))
	for _, v := range cfg.Inputs {
		b = appendMessage(b, recInput, appendVariable(nil, v))
	}
	for _, v := range cfg.Outputs {
		b = appendMessage(b, recOutput, appendVariable(nil, v))
	}
	for _, rb := range cfg.Resources {
		b = appendMessage(b, recResource, appendResource(nil, rb))
	}
	for _, set := range cfg.DiscreteSets {
		b = appendUint(b, recDiscreteSet, uint64(set))
	}
	for _, off := range cfg.DynamicOffsets {
		b = appendMessage(b, recDynamicOffset, appendDynamicOffset(nil, off))
	}
	b = appendString(b, recSource, res.Source)
	b = appendMessage(b, recEntryPoint, appendEntryPoint(nil, res.EntryPoint))
	b = appendBool(b, recRasterizationDisabled, res.RasterizationDisabled)
	if res.Log != "" {
		b = appendString(b, recLog, res.Log)
	}
	return b
}

// appendOptions encodes the options block. The encoding also keys the
// cache buckets, so it is deterministic.
func appendOptions(b []byte, o conv.Options) []byte {
	b = appendUint(b, optVersion, optionsVersion)
	b = appendString(b, optEntryPoint, o.EntryPoint)
	b = appendUint(b, optStage, uint64(o.Stage))
	b = appendUint(b, optPatchKind, uint64(o.PatchKind))
	b = appendUint(b, optOutputControlPoints, uint64(o.OutputControlPoints))
	b = appendBool(b, optFlipVertexY, o.FlipVertexY)
	b = appendBool(b, optFixupClipSpaceDepth, o.FixupClipSpaceDepth)
	b = appendBool(b, optArgumentBuffers, o.ArgumentBuffers)
	b = appendUint(b, optCompilerMajor, uint64(o.CompilerVersion.Major))
	b = appendUint(b, optCompilerMinor, uint64(o.CompilerVersion.Minor))
	b = appendUint(b, optCompilerPatch, uint64(o.CompilerVersion.Patch))
	return appendUint(b, optPlatform, uint64(o.Platform))
}

func appendVariable(b []byte, v conv.InterfaceVariable) []byte {
	b = appendUint(b, varStorage, uint64(v.Storage))
	b = appendUint(b, varLocation, uint64(v.Location))
	b = appendUint(b, varComponent, uint64(v.Component))
	b = appendUint(b, varBuiltIn, uint64(v.BuiltIn))
	b = appendUint(b, varScalar, uint64(v.Scalar))
	b = appendUint(b, varWidth, uint64(v.Width))
	b = appendUint(b, varVecSize, uint64(v.VecSize))
	b = appendUint(b, varBinding, uint64(v.Binding))
	b = appendUint(b, varRate, uint64(v.Rate))
	return appendBool(b, varUsed, v.UsedByShader)
}

func appendResource(b []byte, rb conv.ResourceBinding) []byte {
	b = appendUint(b, resStage, uint64(rb.Stage))
	b = appendUint(b, resSet, uint64(rb.DescriptorSet))
	b = appendUint(b, resBinding, uint64(rb.Binding))
	b = appendUint(b, resCount, uint64(rb.Count))
	b = appendUint(b, resBufferSlot, uint64(rb.BufferSlot))
	b = appendUint(b, resTextureSlot, uint64(rb.TextureSlot))
	b = appendUint(b, resSamplerSlot, uint64(rb.SamplerSlot))
	b = appendBool(b, resUsed, rb.UsedByShader)
	if cs := rb.ConstantSampler; cs != nil {
		b = appendMessage(b, resConstantSampler, appendSampler(nil, *cs))
	}
	return b
}

func appendSampler(b []byte, cs conv.ConstantSampler) []byte {
	b = appendUint(b, smpCoord, uint64(cs.Coord))
	b = appendUint(b, smpAddressU, uint64(cs.AddressU))
	b = appendUint(b, smpAddressV, uint64(cs.AddressV))
	b = appendUint(b, smpAddressW, uint64(cs.AddressW))
	b = appendUint(b, smpMagFilter, uint64(cs.MagFilter))
	b = appendUint(b, smpMinFilter, uint64(cs.MinFilter))
	b = appendUint(b, smpMipFilter, uint64(cs.MipFilter))
	b = appendFloat(b, smpLodMinClamp, cs.LodMinClamp)
	b = appendFloat(b, smpLodMaxClamp, cs.LodMaxClamp)
	b = appendUint(b, smpCompare, uint64(cs.Compare))
	return appendUint(b, smpMaxAnisotropy, uint64(cs.MaxAnisotropy))
}

func appendDynamicOffset(b []byte, off conv.DynamicOffset) []byte {
	b = appendUint(b, offStage, uint64(off.Stage))
	b = appendUint(b, offSet, uint64(off.DescriptorSet))
	b = appendUint(b, offBinding, uint64(off.Binding))
	return appendUint(b, offIndex, uint64(off.Index))
}

func appendEntryPoint(b []byte, ep conv.EntryPoint) []byte {
	b = appendString(b, epName, ep.Name)
	for _, d := range ep.WorkgroupSize {
		dim := appendUint(nil, dimSize, uint64(d.Size))
		dim = appendUint(dim, dimSpecializationID, uint64(d.SpecializationID))
		dim = appendBool(dim, dimSpecialized, d.IsSpecialized)
		b = appendMessage(b, epWorkgroupSize, dim)
	}
	b = appendBool(b, epFastMath, ep.SupportsFastMath)
	b = appendBool(b, epSwizzleBuffer, ep.NeedsSwizzleBuffer)
	b = appendBool(b, epOutputBuffer, ep.NeedsOutputBuffer)
	b = appendBool(b, epPatchOutputBuffer, ep.NeedsPatchOutputBuffer)
	b = appendBool(b, epBufferSizeBuffer, ep.NeedsBufferSizeBuffer)
	b = appendBool(b, epDynamicOffsetBuffer, ep.NeedsDynamicOffsetBuffer)
	b = appendBool(b, epInputThreadgroupMem, ep.NeedsInputThreadgroupMem)
	b = appendBool(b, epDispatchBaseBuffer, ep.NeedsDispatchBaseBuffer)
	return appendBool(b, epViewRangeBuffer, ep.NeedsViewRangeBuffer)
}

// field is one decoded wire field. Scalars are in u, length-delimited
// values in b.
type field struct {
	num protowire.Number
	typ protowire.Type
	u   uint64
	b   []byte
}

// fields calls fn for every field of the message b.
func fields(b []byte, fn func(f field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return errors.Wrap(protowire.ParseError(n), "cache: bad tag")
		}
		b = b[n:]
		f := field{num: num, typ: typ}
		switch typ {
		case protowire.VarintType:
			f.u, n = protowire.ConsumeVarint(b)
		case protowire.Fixed32Type:
			var v uint32
			v, n = protowire.ConsumeFixed32(b)
			f.u = uint64(v)
		case protowire.Fixed64Type:
			f.u, n = protowire.ConsumeFixed64(b)
		case protowire.BytesType:
			f.b, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return errors.Wrapf(protowire.ParseError(n), "cache: field %d", num)
		}
		b = b[n:]
		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

func decodeRecord(b []byte) (record, error) {
	rec := record{config: &conv.Configuration{}, result: &conv.Result{}}
	cfg, res := rec.config, rec.result
	err := fields(b, func(f field) error {
		var err error
		switch f.num {
		case recModuleSize:
			rec.module.Size = f.u
		case recModuleHash:
			rec.module.Hash = f.u
		case recOptions:
			cfg.Options, rec.optionsVersion, err = decodeOptions(f.b)
		case recInput:
			var v conv.InterfaceVariable
			v, err = decodeVariable(f.b)
			cfg.Inputs = append(cfg.Inputs, v)
		case recOutput:
			var v conv.InterfaceVariable
			v, err = decodeVariable(f.b)
			cfg.Outputs = append(cfg.Outputs, v)
		case recResource:
			var rb conv.ResourceBinding
			rb, err = decodeResource(f.b)
			cfg.Resources = append(cfg.Resources, rb)
		case recDiscreteSet:
			cfg.DiscreteSets = append(cfg.DiscreteSets, uint32(f.u))
		case recDynamicOffset:
			var off conv.DynamicOffset
			off, err = decodeDynamicOffset(f.b)
			cfg.DynamicOffsets = append(cfg.DynamicOffsets, off)
		case recSource:
			res.Source = string(f.b)
		case recEntryPoint:
			res.EntryPoint, err = decodeEntryPoint(f.b)
		case recRasterizationDisabled:
			res.RasterizationDisabled = protowire.DecodeBool(f.u)
		case recLog:
			res.Log = string(f.b)
		}
		return err
	})
	return rec, err
}

func decodeOptions(b []byte) (conv.Options, uint64, error) {
	var o conv.Options
	var version uint64
	err := fields(b, func(f field) error {
		switch f.num {
		case optVersion:
			version = f.u
		case optEntryPoint:
			o.EntryPoint = string(f.b)
		case optStage:
			o.Stage = conv.Stage(f.u)
		case optPatchKind:
			o.PatchKind = conv.PatchKind(f.u)
		case optOutputControlPoints:
			o.OutputControlPoints = uint32(f.u)
		case optFlipVertexY:
			o.FlipVertexY = protowire.DecodeBool(f.u)
		case optFixupClipSpaceDepth:
			o.FixupClipSpaceDepth = protowire.DecodeBool(f.u)
		case optArgumentBuffers:
			o.ArgumentBuffers = protowire.DecodeBool(f.u)
		case optCompilerMajor:
			o.CompilerVersion.Major = uint32(f.u)
		case optCompilerMinor:
			o.CompilerVersion.Minor = uint32(f.u)
		case optCompilerPatch:
			o.CompilerVersion.Patch = uint32(f.u)
		case optPlatform:
			o.Platform = conv.Platform(f.u)
		}
		return nil
	})
	return o, version, err
}

func decodeVariable(b []byte) (conv.InterfaceVariable, error) {
	var v conv.InterfaceVariable
	err := fields(b, func(f field) error {
		switch f.num {
		case varStorage:
			v.Storage = conv.StorageKind(f.u)
		case varLocation:
			v.Location = uint32(f.u)
		case varComponent:
			v.Component = uint32(f.u)
		case varBuiltIn:
			v.BuiltIn = conv.BuiltIn(f.u)
		case varScalar:
			v.Scalar = conv.ScalarKind(f.u)
		case varWidth:
			v.Width = uint32(f.u)
		case varVecSize:
			v.VecSize = uint32(f.u)
		case varBinding:
			v.Binding = uint32(f.u)
		case varRate:
			v.Rate = conv.Rate(f.u)
		case varUsed:
			v.UsedByShader = protowire.DecodeBool(f.u)
		}
		return nil
	})
	return v, err
}

func decodeResource(b []byte) (conv.ResourceBinding, error) {
	var rb conv.ResourceBinding
	err := fields(b, func(f field) error {
		switch f.num {
		case resStage:
			rb.Stage = conv.Stage(f.u)
		case resSet:
			rb.DescriptorSet = uint32(f.u)
		case resBinding:
			rb.Binding = uint32(f.u)
		case resCount:
			rb.Count = uint32(f.u)
		case resBufferSlot:
			rb.BufferSlot = uint32(f.u)
		case resTextureSlot:
			rb.TextureSlot = uint32(f.u)
		case resSamplerSlot:
			rb.SamplerSlot = uint32(f.u)
		case resUsed:
			rb.UsedByShader = protowire.DecodeBool(f.u)
		case resConstantSampler:
			cs, err := decodeSampler(f.b)
			if err != nil {
				return err
			}
			rb.ConstantSampler = &cs
		}
		return nil
	})
	return rb, err
}

func decodeSampler(b []byte) (conv.ConstantSampler, error) {
	var cs conv.ConstantSampler
	err := fields(b, func(f field) error {
		switch f.num {
		case smpCoord:
			cs.Coord = conv.SamplerCoord(f.u)
		case smpAddressU:
			cs.AddressU = gputypes.AddressMode(f.u)
		case smpAddressV:
			cs.AddressV = gputypes.AddressMode(f.u)
		case smpAddressW:
			cs.AddressW = gputypes.AddressMode(f.u)
		case smpMagFilter:
			cs.MagFilter = gputypes.FilterMode(f.u)
		case smpMinFilter:
			cs.MinFilter = gputypes.FilterMode(f.u)
		case smpMipFilter:
			cs.MipFilter = gputypes.MipmapFilterMode(f.u)
		case smpLodMinClamp:
			cs.LodMinClamp = math.Float32frombits(uint32(f.u))
		case smpLodMaxClamp:
			cs.LodMaxClamp = math.Float32frombits(uint32(f.u))
		case smpCompare:
			cs.Compare = gputypes.CompareFunction(f.u)
		case smpMaxAnisotropy:
			cs.MaxAnisotropy = uint16(f.u)
		}
		return nil
	})
	return cs, err
}

func decodeDynamicOffset(b []byte) (conv.DynamicOffset, error) {
	var off conv.DynamicOffset
	err := fields(b, func(f field) error {
		switch f.num {
		case offStage:
			off.Stage = conv.Stage(f.u)
		case offSet:
			off.DescriptorSet = uint32(f.u)
		case offBinding:
			off.Binding = uint32(f.u)
		case offIndex:
			off.Index = uint32(f.u)
		}
		return nil
	})
	return off, err
}

func decodeEntryPoint(b []byte) (conv.EntryPoint, error) {
	var ep conv.EntryPoint
	dims := 0
	err := fields(b, func(f field) error {
		switch f.num {
		case epName:
			ep.Name = string(f.b)
		case epWorkgroupSize:
			if dims >= len(ep.WorkgroupSize) {
				return errors.New("too many workgroup dimensions")
			}
			d := &ep.WorkgroupSize[dims]
			dims++
			return fields(f.b, func(f field) error {
				switch f.num {
				case dimSize:
					d.Size = uint32(f.u)
				case dimSpecializationID:
					d.SpecializationID = uint32(f.u)
				case dimSpecialized:
					d.IsSpecialized = protowire.DecodeBool(f.u)
				}
				return nil
			})
		case epFastMath:
			ep.SupportsFastMath = protowire.DecodeBool(f.u)
		case epSwizzleBuffer:
			ep.NeedsSwizzleBuffer = protowire.DecodeBool(f.u)
		case epOutputBuffer:
			ep.NeedsOutputBuffer = protowire.DecodeBool(f.u)
		case epPatchOutputBuffer:
			ep.NeedsPatchOutputBuffer = protowire.DecodeBool(f.u)
		case epBufferSizeBuffer:
			ep.NeedsBufferSizeBuffer = protowire.DecodeBool(f.u)
		case epDynamicOffsetBuffer:
			ep.NeedsDynamicOffsetBuffer = protowire.DecodeBool(f.u)
		case epInputThreadgroupMem:
			ep.NeedsInputThreadgroupMem = protowire.DecodeBool(f.u)
		case epDispatchBaseBuffer:
			ep.NeedsDispatchBaseBuffer = protowire.DecodeBool(f.u)
		case epViewRangeBuffer:
			ep.NeedsViewRangeBuffer = protowire.DecodeBool(f.u)
		}
		return nil
	})
	return ep, err
}
