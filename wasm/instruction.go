package wasm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wippyai/wasm-inspect/errors"
	"github.com/wippyai/wasm-inspect/wasm/internal/binary"
)

// Instruction represents a decoded WebAssembly instruction. Imm is nil for
// opcodes without immediates.
type Instruction struct {
	Imm    Immediate
	Opcode Opcode
}

// Immediate is the operand payload of an instruction. The concrete types are
// the *Imm structs in this file.
type Immediate interface {
	fmt.Stringer
	immediate()
}

// BlockImm holds the block type for block, loop, and if instructions.
type BlockImm struct {
	Type BlockType
}

// BranchImm holds the label index for br and br_if instructions.
type BranchImm struct {
	LabelIdx uint32
}

// BrTableImm holds the label table for br_table instruction.
type BrTableImm struct {
	Labels  []uint32
	Default uint32
}

// CallImm holds the function index for call instruction.
type CallImm struct {
	FuncIdx uint32
}

// CallIndirectImm holds the type index for call_indirect. The MVP reserves a
// zero byte after it for a future table index.
type CallIndirectImm struct {
	TypeIdx  uint32
	Reserved bool
}

// LocalImm holds the local index for local.get, local.set, local.tee.
type LocalImm struct {
	LocalIdx uint32
}

// GlobalImm holds the global index for global.get and global.set.
type GlobalImm struct {
	GlobalIdx uint32
}

// MemoryImm holds memory access parameters for load and store instructions.
type MemoryImm struct {
	Align  uint32
	Offset uint32
}

// ReservedImm holds the reserved flag of memory.size and memory.grow.
type ReservedImm struct {
	Reserved bool
}

// I32Imm holds the constant value for i32.const instruction.
type I32Imm struct {
	Value int32
}

// I64Imm holds the constant value for i64.const instruction.
type I64Imm struct {
	Value int64
}

// F32Imm holds the constant value for f32.const instruction.
type F32Imm struct {
	Value float32
}

// F64Imm holds the constant value for f64.const instruction.
type F64Imm struct {
	Value float64
}

func (BlockImm) immediate()        {}
func (BranchImm) immediate()       {}
func (BrTableImm) immediate()      {}
func (CallImm) immediate()         {}
func (CallIndirectImm) immediate() {}
func (LocalImm) immediate()        {}
func (GlobalImm) immediate()       {}
func (MemoryImm) immediate()       {}
func (ReservedImm) immediate()     {}
func (I32Imm) immediate()          {}
func (I64Imm) immediate()          {}
func (F32Imm) immediate()          {}
func (F64Imm) immediate()          {}

func (i BlockImm) String() string  { return i.Type.String() }
func (i BranchImm) String() string { return strconv.FormatUint(uint64(i.LabelIdx), 10) }
func (i CallImm) String() string   { return strconv.FormatUint(uint64(i.FuncIdx), 10) }
func (i LocalImm) String() string  { return strconv.FormatUint(uint64(i.LocalIdx), 10) }
func (i GlobalImm) String() string { return strconv.FormatUint(uint64(i.GlobalIdx), 10) }
func (ReservedImm) String() string { return "" }
func (i I32Imm) String() string    { return strconv.FormatInt(int64(i.Value), 10) }
func (i I64Imm) String() string    { return strconv.FormatInt(i.Value, 10) }
func (i F32Imm) String() string    { return strconv.FormatFloat(float64(i.Value), 'g', -1, 32) }
func (i F64Imm) String() string    { return strconv.FormatFloat(i.Value, 'g', -1, 64) }

func (i BrTableImm) String() string {
	parts := make([]string, 0, len(i.Labels)+1)
	for _, l := range i.Labels {
		parts = append(parts, strconv.FormatUint(uint64(l), 10))
	}
	parts = append(parts, strconv.FormatUint(uint64(i.Default), 10))
	return strings.Join(parts, " ")
}

func (i CallIndirectImm) String() string {
	return "(type " + strconv.FormatUint(uint64(i.TypeIdx), 10) + ")"
}

func (i MemoryImm) String() string {
	var parts []string
	if i.Offset != 0 {
		parts = append(parts, "offset="+strconv.FormatUint(uint64(i.Offset), 10))
	}
	parts = append(parts, "align="+strconv.FormatUint(uint64(1)<<i.Align, 10))
	return strings.Join(parts, " ")
}

// String renders the instruction in text format, e.g. "i32.const 42".
func (i Instruction) String() string {
	name := i.Opcode.String()
	if i.Imm == nil {
		return name
	}
	if s := i.Imm.String(); s != "" {
		return name + " " + s
	}
	return name
}

// GetCallTarget returns the call target if this is a call instruction
func (i Instruction) GetCallTarget() (uint32, bool) {
	if i.Opcode == OpCall {
		if imm, ok := i.Imm.(CallImm); ok {
			return imm.FuncIdx, true
		}
	}
	return 0, false
}

// DecodeInstructions decodes a standalone instruction stream. Unlike a
// function body, the stream is not required to end with end.
func DecodeInstructions(code []byte) ([]Instruction, error) {
	r := binary.FromBytes(code)
	instrs := make([]Instruction, 0, len(code)/2)
	for r.Remaining() > 0 {
		instr, err := decodeInstruction(r)
		if err != nil {
			return nil, err
		}
		instrs = append(instrs, instr)
	}
	return instrs, nil
}

// decodeInstruction reads one opcode byte and its immediates.
func decodeInstruction(r *binary.Reader) (Instruction, error) {
	at := r.Position()
	b, err := r.ReadByte()
	if err != nil {
		return Instruction{}, err
	}
	op, ok := LookupOpcode(b)
	if !ok {
		return Instruction{}, errors.New(errors.PhaseDecode, errors.KindInvalidOpcode).
			At(at).
			Value(b).
			Detail("byte 0x%02x is not a defined opcode", b).
			Build()
	}

	instr := Instruction{Opcode: op}
	instr.Imm, err = decodeImmediate(r, opcodes[b].imm)
	if err != nil {
		return Instruction{}, err
	}
	return instr, nil
}

func decodeImmediate(r *binary.Reader, kind immKind) (Immediate, error) {
	switch kind {
	case immNone:
		return nil, nil

	case immBlock:
		at := r.Position()
		tag, err := r.ReadVarUint7()
		if err != nil {
			return nil, err
		}
		bt := BlockType(tag)
		if !bt.valid() {
			return nil, errors.InvalidTypeTag(at, "block type", tag)
		}
		return BlockImm{Type: bt}, nil

	case immBranch:
		idx, err := r.ReadVarUint32()
		if err != nil {
			return nil, err
		}
		return BranchImm{LabelIdx: idx}, nil

	case immBrTable:
		count, err := r.ReadVarUint32()
		if err != nil {
			return nil, err
		}
		labels := make([]uint32, 0, boundedCap(count, r.Remaining()))
		for i := uint32(0); i < count; i++ {
			l, err := r.ReadVarUint32()
			if err != nil {
				return nil, err
			}
			labels = append(labels, l)
		}
		def, err := r.ReadVarUint32()
		if err != nil {
			return nil, err
		}
		return BrTableImm{Labels: labels, Default: def}, nil

	case immCall:
		idx, err := r.ReadVarUint32()
		if err != nil {
			return nil, err
		}
		return CallImm{FuncIdx: idx}, nil

	case immCallIndirect:
		typeIdx, err := r.ReadVarUint32()
		if err != nil {
			return nil, err
		}
		reserved, err := r.ReadVarUint1()
		if err != nil {
			return nil, err
		}
		return CallIndirectImm{TypeIdx: typeIdx, Reserved: reserved}, nil

	case immLocal:
		idx, err := r.ReadVarUint32()
		if err != nil {
			return nil, err
		}
		return LocalImm{LocalIdx: idx}, nil

	case immGlobal:
		idx, err := r.ReadVarUint32()
		if err != nil {
			return nil, err
		}
		return GlobalImm{GlobalIdx: idx}, nil

	case immMemory:
		align, err := r.ReadVarUint32()
		if err != nil {
			return nil, err
		}
		offset, err := r.ReadVarUint32()
		if err != nil {
			return nil, err
		}
		return MemoryImm{Align: align, Offset: offset}, nil

	case immReserved:
		reserved, err := r.ReadVarUint1()
		if err != nil {
			return nil, err
		}
		return ReservedImm{Reserved: reserved}, nil

	case immI32:
		v, err := r.ReadVarInt32()
		if err != nil {
			return nil, err
		}
		return I32Imm{Value: v}, nil

	case immI64:
		v, err := r.ReadVarInt64()
		if err != nil {
			return nil, err
		}
		return I64Imm{Value: v}, nil

	case immF32:
		v, err := r.ReadF32()
		if err != nil {
			return nil, err
		}
		return F32Imm{Value: v}, nil

	case immF64:
		v, err := r.ReadF64()
		if err != nil {
			return nil, err
		}
		return F64Imm{Value: v}, nil
	}
	return nil, fmt.Errorf("unhandled immediate kind %d", kind)
}

// decodeInitExpr reads a single instruction followed by end.
func decodeInitExpr(r *binary.Reader) (InitExpr, error) {
	start := r.Position()
	instr, err := decodeInstruction(r)
	if err != nil {
		return InitExpr{}, err
	}
	if instr.Opcode == OpEnd {
		return InitExpr{}, errors.New(errors.PhaseDecode, errors.KindMalformedInitExpr).
			At(start).
			Detail("empty initializer expression").
			Build()
	}
	at := r.Position()
	b, err := r.ReadByte()
	if err != nil {
		return InitExpr{}, err
	}
	if Opcode(b) != OpEnd {
		return InitExpr{}, errors.New(errors.PhaseDecode, errors.KindMalformedInitExpr).
			At(at).
			Value(b).
			Detail("expected end after %s, got 0x%02x", instr.Opcode, b).
			Build()
	}
	return InitExpr{Instr: instr}, nil
}

// boundedCap caps a declared entry count by the bytes left to read, since
// every entry takes at least one byte. A hostile count cannot force a huge
// allocation.
func boundedCap(count uint32, remaining int64) int {
	if int64(count) > remaining {
		return int(remaining)
	}
	return int(count)
}
