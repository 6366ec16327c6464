// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package spirv

import (
	"encoding/binary"
	"math/bits"

	"github.com/pkg/errors"
)

const headerWords = 5

// ParseBytes parses a SPIR-V binary in either byte order.
func ParseBytes(data []byte) (*Module, error) {
	if len(data)%4 != 0 {
		return nil, errors.Errorf("spirv: binary length %d is not a multiple of 4", len(data))
	}
	if len(data) < headerWords*4 {
		return nil, errors.Errorf("spirv: binary too short (%d bytes)", len(data))
	}
	order := binary.ByteOrder(binary.LittleEndian)
	if binary.LittleEndian.Uint32(data) != MagicNumber {
		order = binary.BigEndian
	}
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = order.Uint32(data[i*4:])
	}
	return Parse(words)
}

// Parse indexes a SPIR-V module given as a word stream. Words whose magic
// number is byte-swapped are accepted.
func Parse(words []uint32) (*Module, error) {
	if len(words) < headerWords {
		return nil, errors.Errorf("spirv: module too short (%d words)", len(words))
	}
	switch words[0] {
	case MagicNumber:
	case bits.ReverseBytes32(MagicNumber):
		swapped := make([]uint32, len(words))
		for i, w := range words {
			swapped[i] = bits.ReverseBytes32(w)
		}
		words = swapped
	default:
		return nil, errors.Errorf("spirv: bad magic number 0x%08x", words[0])
	}

	m := newModule()
	m.Version = Version{Major: uint8(words[1] >> 16), Minor: uint8(words[1] >> 8)}
	m.Generator = words[2]
	m.Bound = words[3]

	r := reader{module: m}
	for offset := headerWords; offset < len(words); {
		count := int(words[offset] >> 16)
		op := OpCode(words[offset] & 0xffff)
		if count == 0 {
			return nil, errors.Errorf("spirv: zero word count for %s at word %d", op, offset)
		}
		if offset+count > len(words) {
			return nil, errors.Errorf("spirv: %s at word %d overruns the module", op, offset)
		}
		if err := r.instruction(op, words[offset+1:offset+count]); err != nil {
			return nil, errors.Wrapf(err, "spirv: %s at word %d", op, offset)
		}
		offset += count
	}
	if r.fn != nil {
		return nil, errors.New("spirv: unterminated function")
	}
	return m, nil
}

type reader struct {
	module *Module
	fn     *Function
	entry  map[uint32][]*EntryPoint
}

func need(ops []uint32, n int) error {
	if len(ops) < n {
		return errors.Errorf("expected at least %d operands, got %d", n, len(ops))
	}
	return nil
}

func (r *reader) instruction(op OpCode, ops []uint32) error {
	m := r.module
	if r.fn != nil {
		return r.functionInstruction(op, ops)
	}
	switch op {
	case OpEntryPoint:
		if err := need(ops, 3); err != nil {
			return err
		}
		name, n := decodeString(ops[2:])
		ep := &EntryPoint{
			Model:     ExecutionModel(ops[0]),
			Function:  ops[1],
			Name:      name,
			Interface: append([]uint32(nil), ops[2+n:]...),
			Modes:     make(map[ExecutionMode][]uint32),
		}
		m.EntryPoints = append(m.EntryPoints, ep)
		if r.entry == nil {
			r.entry = make(map[uint32][]*EntryPoint)
		}
		r.entry[ep.Function] = append(r.entry[ep.Function], ep)

	case OpExecutionMode, OpExecutionModeID:
		if err := need(ops, 2); err != nil {
			return err
		}
		for _, ep := range r.entry[ops[0]] {
			ep.Modes[ExecutionMode(ops[1])] = append([]uint32(nil), ops[2:]...)
		}

	case OpName:
		if err := need(ops, 1); err != nil {
			return err
		}
		m.Names[ops[0]], _ = decodeString(ops[1:])

	case OpDecorate, OpDecorateID:
		if err := need(ops, 2); err != nil {
			return err
		}
		r.decorate(ops[0], Decoration(ops[1]), ops[2:])

	case OpMemberDecorate:
		if err := need(ops, 3); err != nil {
			return err
		}
		members := m.members[ops[0]]
		if members == nil {
			members = make(map[uint32]Decorations)
			m.members[ops[0]] = members
		}
		if members[ops[1]] == nil {
			members[ops[1]] = make(Decorations)
		}
		members[ops[1]][Decoration(ops[2])] = append([]uint32(nil), ops[3:]...)

	case OpGroupDecorate:
		// Decorations targeting the OpDecorationGroup ID are recorded
		// like any other and copied to each member here.
		if err := need(ops, 1); err != nil {
			return err
		}
		for _, target := range ops[1:] {
			for d, args := range m.decorations[ops[0]] {
				r.decorate(target, d, args)
			}
		}

	case OpTypeVoid, OpTypeBool, OpTypeInt, OpTypeFloat, OpTypeVector, OpTypeMatrix,
		OpTypeImage, OpTypeSampler, OpTypeSampledImage, OpTypeArray, OpTypeRuntimeArray,
		OpTypeStruct, OpTypePointer, OpTypeFunction:
		return r.typeDecl(op, ops)

	case OpConstantTrue, OpConstantFalse, OpConstant, OpConstantComposite, OpConstantNull,
		OpSpecConstantTrue, OpSpecConstantFalse, OpSpecConstant, OpSpecConstantComposite,
		OpSpecConstantOp:
		if err := need(ops, 2); err != nil {
			return err
		}
		m.constants[ops[1]] = &Constant{ID: ops[1], Type: ops[0], Op: op, Values: append([]uint32(nil), ops[2:]...)}
		m.constOrder = append(m.constOrder, ops[1])

	case OpVariable:
		if err := need(ops, 3); err != nil {
			return err
		}
		m.variables[ops[1]] = &Variable{ID: ops[1], Type: ops[0], StorageClass: StorageClass(ops[2])}
		m.varOrder = append(m.varOrder, ops[1])

	case OpFunction:
		if err := need(ops, 4); err != nil {
			return err
		}
		r.fn = &Function{ID: ops[1], refs: make(map[uint32]struct{})}
		m.functions[r.fn.ID] = r.fn
	}
	return nil
}

func (r *reader) decorate(id uint32, d Decoration, args []uint32) {
	decs := r.module.decorations[id]
	if decs == nil {
		decs = make(Decorations)
		r.module.decorations[id] = decs
	}
	decs[d] = append([]uint32(nil), args...)
}

func (r *reader) functionInstruction(op OpCode, ops []uint32) error {
	switch op {
	case OpFunctionEnd:
		r.fn = nil
	case OpFunction:
		return errors.New("nested function")
	default:
		for _, id := range ops {
			r.fn.refs[id] = struct{}{}
		}
	}
	return nil
}

func (r *reader) typeDecl(op OpCode, ops []uint32) error {
	if err := need(ops, 1); err != nil {
		return err
	}
	t := &Type{ID: ops[0]}
	args := ops[1:]
	var want int
	switch op {
	case OpTypeVoid:
		t.Kind = TypeVoid
	case OpTypeBool:
		t.Kind = TypeBool
	case OpTypeInt:
		t.Kind, want = TypeInt, 2
	case OpTypeFloat:
		t.Kind, want = TypeFloat, 1
	case OpTypeVector:
		t.Kind, want = TypeVector, 2
	case OpTypeMatrix:
		t.Kind, want = TypeMatrix, 2
	case OpTypeImage:
		t.Kind, want = TypeImage, 7
	case OpTypeSampler:
		t.Kind = TypeSampler
	case OpTypeSampledImage:
		t.Kind, want = TypeSampledImage, 1
	case OpTypeArray:
		t.Kind, want = TypeArray, 2
	case OpTypeRuntimeArray:
		t.Kind, want = TypeRuntimeArray, 1
	case OpTypeStruct:
		t.Kind = TypeStruct
	case OpTypePointer:
		t.Kind, want = TypePointer, 2
	case OpTypeFunction:
		t.Kind, want = TypeFunction, 1
	}
	if err := need(args, want); err != nil {
		return err
	}
	switch t.Kind {
	case TypeInt:
		t.Width, t.Signed = args[0], args[1] != 0
	case TypeFloat:
		t.Width = args[0]
	case TypeVector, TypeMatrix:
		t.Elem, t.Count = args[0], args[1]
	case TypeImage:
		t.Elem, t.Dim, t.Sampled = args[0], Dim(args[1]), args[5]
	case TypeSampledImage, TypeRuntimeArray:
		t.Elem = args[0]
	case TypeArray:
		t.Elem, t.LengthID = args[0], args[1]
	case TypeStruct:
		t.Members = append([]uint32(nil), args...)
	case TypePointer:
		t.StorageClass, t.Elem = StorageClass(args[0]), args[1]
	case TypeFunction:
		t.Elem = args[0]
	}
	r.module.types[t.ID] = t
	return nil
}

// decodeString decodes a null-terminated literal string and returns it with
// the number of words it occupies.
func decodeString(words []uint32) (string, int) {
	buf := make([]byte, 0, len(words)*4)
	for i, w := range words {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], w)
		for _, c := range b {
			if c == 0 {
				return string(buf), i + 1
			}
			buf = append(buf, c)
		}
	}
	return string(buf), len(words)
}
