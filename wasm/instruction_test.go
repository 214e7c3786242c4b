package wasm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/wasm-inspect/wasm"
	"github.com/wippyai/wasm-inspect/wasm/internal/binary"
)

func TestLookupOpcode(t *testing.T) {
	defined := 0
	for b := 0; b < 256; b++ {
		op, ok := wasm.LookupOpcode(byte(b))
		inRange := b <= 0x05 || (b >= 0x0b && b <= 0x11) || b == 0x1a || b == 0x1b ||
			(b >= 0x20 && b <= 0x24) || (b >= 0x28 && b <= 0xbf)
		assert.Equal(t, inRange, ok, "byte 0x%02x", b)
		if ok {
			defined++
			assert.Equal(t, byte(b), byte(op))
		}
	}
	assert.Equal(t, 172, defined)
}

func TestOpcodeString(t *testing.T) {
	assert.Equal(t, "unreachable", wasm.OpUnreachable.String())
	assert.Equal(t, "call_indirect", wasm.OpCallIndirect.String())
	assert.Equal(t, "local.tee", wasm.OpLocalTee.String())
	assert.Equal(t, "i64.load32_u", wasm.OpI64Load32U.String())
	assert.Equal(t, "memory.grow", wasm.OpMemoryGrow.String())
	assert.Equal(t, "i32.wrap_i64", wasm.OpI32WrapI64.String())
	assert.Equal(t, "f64.reinterpret_i64", wasm.OpF64ReinterpretI64.String())
	assert.Equal(t, "opcode(0x06)", wasm.Opcode(0x06).String())
}

func TestDecodeInstructions_Immediates(t *testing.T) {
	code := binary.NewWriter().
		Byte(0x02).Byte(0x40). // block
		Byte(0x03).Byte(0x7f). // loop (result i32)
		Byte(0x04).Byte(0x7e). // if (result i64)
		Byte(0x0c).WriteU32(1). // br 1
		Byte(0x0d).WriteU32(0). // br_if 0
		Byte(0x0e).WriteU32(2).WriteU32(0).WriteU32(1).WriteU32(2). // br_table 0 1 2
		Byte(0x10).WriteU32(300). // call 300
		Byte(0x11).WriteU32(4).Byte(0x00). // call_indirect
		Byte(0x20).WriteU32(5). // local.get 5
		Byte(0x24).WriteU32(6). // global.set 6
		Byte(0x28).WriteU32(2).WriteU32(16). // i32.load
		Byte(0x3f).Byte(0x00). // memory.size
		Byte(0x41).WriteS32(-128). // i32.const
		Byte(0x42).WriteS64(1 << 40). // i64.const
		Byte(0x43).WriteF32(1.5). // f32.const
		Byte(0x44).WriteF64(-0.25). // f64.const
		Byte(0x1b). // select
		Byte(0x0b). // end
		Bytes()

	instrs, err := wasm.DecodeInstructions(code)
	require.NoError(t, err)

	assert.Equal(t, []wasm.Instruction{
		{Opcode: wasm.OpBlock, Imm: wasm.BlockImm{Type: wasm.BlockEmpty}},
		{Opcode: wasm.OpLoop, Imm: wasm.BlockImm{Type: wasm.BlockType(wasm.ValI32)}},
		{Opcode: wasm.OpIf, Imm: wasm.BlockImm{Type: wasm.BlockType(wasm.ValI64)}},
		{Opcode: wasm.OpBr, Imm: wasm.BranchImm{LabelIdx: 1}},
		{Opcode: wasm.OpBrIf, Imm: wasm.BranchImm{LabelIdx: 0}},
		{Opcode: wasm.OpBrTable, Imm: wasm.BrTableImm{Labels: []uint32{0, 1}, Default: 2}},
		{Opcode: wasm.OpCall, Imm: wasm.CallImm{FuncIdx: 300}},
		{Opcode: wasm.OpCallIndirect, Imm: wasm.CallIndirectImm{TypeIdx: 4}},
		{Opcode: wasm.OpLocalGet, Imm: wasm.LocalImm{LocalIdx: 5}},
		{Opcode: wasm.OpGlobalSet, Imm: wasm.GlobalImm{GlobalIdx: 6}},
		{Opcode: wasm.OpI32Load, Imm: wasm.MemoryImm{Align: 2, Offset: 16}},
		{Opcode: wasm.OpMemorySize, Imm: wasm.ReservedImm{}},
		{Opcode: wasm.OpI32Const, Imm: wasm.I32Imm{Value: -128}},
		{Opcode: wasm.OpI64Const, Imm: wasm.I64Imm{Value: 1 << 40}},
		{Opcode: wasm.OpF32Const, Imm: wasm.F32Imm{Value: 1.5}},
		{Opcode: wasm.OpF64Const, Imm: wasm.F64Imm{Value: -0.25}},
		{Opcode: wasm.OpSelect},
		{Opcode: wasm.OpEnd},
	}, instrs)
}

func TestDecodeInstructions_Errors(t *testing.T) {
	tests := []struct {
		name string
		code []byte
		want error
	}{
		{"reserved byte", []byte{0x0a}, wasm.ErrInvalidOpcode},
		{"prefix byte", []byte{0xfc, 0x00}, wasm.ErrInvalidOpcode},
		{"truncated immediate", []byte{0x10}, wasm.ErrUnexpectedEOF},
		{"truncated f64", []byte{0x44, 0x00, 0x00}, wasm.ErrUnexpectedEOF},
		{"overlong i32", []byte{0x41, 0xff, 0xff, 0xff, 0xff, 0xff, 0x7f}, wasm.ErrVarintTooLong},
		{"bad call_indirect reserved", []byte{0x11, 0x00, 0x02}, wasm.ErrVarintTooLong},
		{"bad block type", []byte{0x02, 0x00}, wasm.ErrInvalidTypeTag},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := wasm.DecodeInstructions(tt.code)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestInstructionString(t *testing.T) {
	tests := []struct {
		instr wasm.Instruction
		want  string
	}{
		{wasm.Instruction{Opcode: wasm.OpNop}, "nop"},
		{wasm.Instruction{Opcode: wasm.OpI32Const, Imm: wasm.I32Imm{Value: 42}}, "i32.const 42"},
		{wasm.Instruction{Opcode: wasm.OpBrTable, Imm: wasm.BrTableImm{Labels: []uint32{0, 1}, Default: 2}}, "br_table 0 1 2"},
		{wasm.Instruction{Opcode: wasm.OpBlock, Imm: wasm.BlockImm{Type: wasm.BlockEmpty}}, "block"},
		{wasm.Instruction{Opcode: wasm.OpLoop, Imm: wasm.BlockImm{Type: wasm.BlockType(wasm.ValF32)}}, "loop f32"},
		{wasm.Instruction{Opcode: wasm.OpCallIndirect, Imm: wasm.CallIndirectImm{TypeIdx: 3}}, "call_indirect (type 3)"},
		{wasm.Instruction{Opcode: wasm.OpI64Store, Imm: wasm.MemoryImm{Align: 3, Offset: 8}}, "i64.store offset=8 align=8"},
		{wasm.Instruction{Opcode: wasm.OpI32Load8U, Imm: wasm.MemoryImm{}}, "i32.load8_u align=1"},
		{wasm.Instruction{Opcode: wasm.OpMemoryGrow, Imm: wasm.ReservedImm{}}, "memory.grow"},
		{wasm.Instruction{Opcode: wasm.OpF64Const, Imm: wasm.F64Imm{Value: 0.5}}, "f64.const 0.5"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.instr.String())
	}
}

func TestGetCallTarget(t *testing.T) {
	idx, ok := wasm.Instruction{Opcode: wasm.OpCall, Imm: wasm.CallImm{FuncIdx: 7}}.GetCallTarget()
	assert.True(t, ok)
	assert.Equal(t, uint32(7), idx)

	_, ok = wasm.Instruction{Opcode: wasm.OpCallIndirect, Imm: wasm.CallIndirectImm{}}.GetCallTarget()
	assert.False(t, ok)
}
