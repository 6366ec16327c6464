// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package spirv

import (
	"github.com/pkg/errors"
)

// EntryPoint is one OpEntryPoint together with its execution modes.
type EntryPoint struct {
	Model     ExecutionModel
	Function  uint32
	Name      string
	Interface []uint32
	// Modes maps each declared execution mode to its operands. Operands of
	// OpExecutionModeId modes are IDs, all others are literals.
	Modes map[ExecutionMode][]uint32
}

// HasMode reports whether the entry point declares mode.
func (e *EntryPoint) HasMode(mode ExecutionMode) bool {
	_, ok := e.Modes[mode]
	return ok
}

// TypeKind classifies a type declaration.
type TypeKind uint8

const (
	TypeOther TypeKind = iota
	TypeVoid
	TypeBool
	TypeInt
	TypeFloat
	TypeVector
	TypeMatrix
	TypeArray
	TypeRuntimeArray
	TypeStruct
	TypePointer
	TypeImage
	TypeSampler
	TypeSampledImage
	TypeFunction
)

// Type is a decoded OpType* instruction.
type Type struct {
	ID   uint32
	Kind TypeKind

	// Width and Signed describe scalar types.
	Width  uint32
	Signed bool

	// Elem is the component, column, element, pointee or sampled type.
	Elem uint32
	// Count is the vector component count or the matrix column count.
	Count uint32
	// LengthID is the array length constant.
	LengthID uint32

	Members      []uint32
	StorageClass StorageClass

	Dim     Dim
	Sampled uint32
}

// Variable is a module-scope OpVariable.
type Variable struct {
	ID           uint32
	Type         uint32 // pointer type
	StorageClass StorageClass
}

// Constant is a constant or specialization constant.
type Constant struct {
	ID     uint32
	Type   uint32
	Op     OpCode
	Values []uint32 // literal words, or constituent IDs for composites
}

// IsSpec reports whether c is a specialization constant.
func (c *Constant) IsSpec() bool {
	switch c.Op {
	case OpSpecConstant, OpSpecConstantTrue, OpSpecConstantFalse,
		OpSpecConstantComposite, OpSpecConstantOp:
		return true
	}
	return false
}

// IsComposite reports whether c is a composite constant.
func (c *Constant) IsComposite() bool {
	return c.Op == OpConstantComposite || c.Op == OpSpecConstantComposite
}

// Function records the IDs referenced by a function body.
type Function struct {
	ID   uint32
	refs map[uint32]struct{}
}

// Decorations maps a decoration to its literal operands.
type Decorations map[Decoration][]uint32

// Module is an indexed SPIR-V module.
type Module struct {
	Version   Version
	Generator uint32
	Bound     uint32

	EntryPoints []*EntryPoint
	Names       map[uint32]string

	types       map[uint32]*Type
	variables   map[uint32]*Variable
	varOrder    []uint32
	constants   map[uint32]*Constant
	constOrder  []uint32
	functions   map[uint32]*Function
	decorations map[uint32]Decorations
	members     map[uint32]map[uint32]Decorations
}

func newModule() *Module {
	return &Module{
		Names:       make(map[uint32]string),
		types:       make(map[uint32]*Type),
		variables:   make(map[uint32]*Variable),
		constants:   make(map[uint32]*Constant),
		functions:   make(map[uint32]*Function),
		decorations: make(map[uint32]Decorations),
		members:     make(map[uint32]map[uint32]Decorations),
	}
}

// FindEntryPoint returns the entry point named name with execution model
// model.
func (m *Module) FindEntryPoint(name string, model ExecutionModel) (*EntryPoint, error) {
	for _, ep := range m.EntryPoints {
		if ep.Name == name && ep.Model == model {
			return ep, nil
		}
	}
	return nil, errors.Errorf("spirv: no %s entry point named %q", model, name)
}

// Type returns the type declared with id, or nil.
func (m *Module) Type(id uint32) *Type { return m.types[id] }

// Variable returns the module-scope variable id, or nil.
func (m *Module) Variable(id uint32) *Variable { return m.variables[id] }

// Constant returns the constant id, or nil.
func (m *Module) Constant(id uint32) *Constant { return m.constants[id] }

// Variables returns the module-scope variables in declaration order.
func (m *Module) Variables() []*Variable {
	out := make([]*Variable, 0, len(m.varOrder))
	for _, id := range m.varOrder {
		out = append(out, m.variables[id])
	}
	return out
}

// Constants returns the constants in declaration order.
func (m *Module) Constants() []*Constant {
	out := make([]*Constant, 0, len(m.constOrder))
	for _, id := range m.constOrder {
		out = append(out, m.constants[id])
	}
	return out
}

// Decoration returns the operands of decoration d on id.
func (m *Module) Decoration(id uint32, d Decoration) ([]uint32, bool) {
	ops, ok := m.decorations[id][d]
	return ops, ok
}

// HasDecoration reports whether id carries decoration d.
func (m *Module) HasDecoration(id uint32, d Decoration) bool {
	_, ok := m.decorations[id][d]
	return ok
}

// DecorationValue returns the first operand of decoration d on id.
func (m *Module) DecorationValue(id uint32, d Decoration) (uint32, bool) {
	ops, ok := m.decorations[id][d]
	if !ok || len(ops) == 0 {
		return 0, false
	}
	return ops[0], true
}

// MemberDecorationValue returns the first operand of decoration d on member
// of the struct type structID.
func (m *Module) MemberDecorationValue(structID, member uint32, d Decoration) (uint32, bool) {
	ops, ok := m.members[structID][member][d]
	if !ok || len(ops) == 0 {
		return 0, false
	}
	return ops[0], true
}

// HasMemberDecoration reports whether member of structID carries d.
func (m *Module) HasMemberDecoration(structID, member uint32, d Decoration) bool {
	_, ok := m.members[structID][member][d]
	return ok
}

// ScalarConstant returns the low word of a scalar constant.
func (m *Module) ScalarConstant(id uint32) (uint32, bool) {
	c := m.constants[id]
	if c == nil || c.IsComposite() {
		return 0, false
	}
	switch c.Op {
	case OpConstantTrue, OpSpecConstantTrue:
		return 1, true
	case OpConstantFalse, OpSpecConstantFalse, OpConstantNull:
		return 0, true
	}
	if len(c.Values) == 0 {
		return 0, false
	}
	return c.Values[0], true
}

// ArrayLength returns the element count of an OpTypeArray.
func (m *Module) ArrayLength(t *Type) (uint32, bool) {
	if t == nil || t.Kind != TypeArray {
		return 0, false
	}
	return m.ScalarConstant(t.LengthID)
}

// Pointee returns the type a variable points to.
func (m *Module) Pointee(v *Variable) *Type {
	ptr := m.types[v.Type]
	if ptr == nil || ptr.Kind != TypePointer {
		return nil
	}
	return m.types[ptr.Elem]
}

// StaticUses returns every ID referenced from the entry point's function or
// any function it transitively calls.
func (m *Module) StaticUses(ep *EntryPoint) map[uint32]bool {
	used := make(map[uint32]bool)
	visited := make(map[uint32]bool)
	stack := []uint32{ep.Function}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[id] {
			continue
		}
		visited[id] = true
		fn := m.functions[id]
		if fn == nil {
			continue
		}
		for ref := range fn.refs {
			used[ref] = true
			if _, isFunc := m.functions[ref]; isFunc && !visited[ref] {
				stack = append(stack, ref)
			}
		}
	}
	return used
}
