package wasm

import "fmt"

// Opcode is a single-byte MVP instruction tag.
type Opcode byte

// Control flow
const (
	OpUnreachable  Opcode = 0x00
	OpNop          Opcode = 0x01
	OpBlock        Opcode = 0x02
	OpLoop         Opcode = 0x03
	OpIf           Opcode = 0x04
	OpElse         Opcode = 0x05
	OpEnd          Opcode = 0x0B
	OpBr           Opcode = 0x0C
	OpBrIf         Opcode = 0x0D
	OpBrTable      Opcode = 0x0E
	OpReturn       Opcode = 0x0F
	OpCall         Opcode = 0x10
	OpCallIndirect Opcode = 0x11
)

// Parametric
const (
	OpDrop   Opcode = 0x1A
	OpSelect Opcode = 0x1B
)

// Variable access
const (
	OpLocalGet  Opcode = 0x20
	OpLocalSet  Opcode = 0x21
	OpLocalTee  Opcode = 0x22
	OpGlobalGet Opcode = 0x23
	OpGlobalSet Opcode = 0x24
)

// Memory
const (
	OpI32Load    Opcode = 0x28
	OpI64Load    Opcode = 0x29
	OpF32Load    Opcode = 0x2A
	OpF64Load    Opcode = 0x2B
	OpI32Load8S  Opcode = 0x2C
	OpI32Load8U  Opcode = 0x2D
	OpI32Load16S Opcode = 0x2E
	OpI32Load16U Opcode = 0x2F
	OpI64Load8S  Opcode = 0x30
	OpI64Load8U  Opcode = 0x31
	OpI64Load16S Opcode = 0x32
	OpI64Load16U Opcode = 0x33
	OpI64Load32S Opcode = 0x34
	OpI64Load32U Opcode = 0x35
	OpI32Store   Opcode = 0x36
	OpI64Store   Opcode = 0x37
	OpF32Store   Opcode = 0x38
	OpF64Store   Opcode = 0x39
	OpI32Store8  Opcode = 0x3A
	OpI32Store16 Opcode = 0x3B
	OpI64Store8  Opcode = 0x3C
	OpI64Store16 Opcode = 0x3D
	OpI64Store32 Opcode = 0x3E
	OpMemorySize Opcode = 0x3F
	OpMemoryGrow Opcode = 0x40
)

// Constants
const (
	OpI32Const Opcode = 0x41
	OpI64Const Opcode = 0x42
	OpF32Const Opcode = 0x43
	OpF64Const Opcode = 0x44
)

// Comparison
const (
	OpI32Eqz Opcode = 0x45
	OpI32Eq  Opcode = 0x46
	OpI32Ne  Opcode = 0x47
	OpI32LtS Opcode = 0x48
	OpI32LtU Opcode = 0x49
	OpI32GtS Opcode = 0x4A
	OpI32GtU Opcode = 0x4B
	OpI32LeS Opcode = 0x4C
	OpI32LeU Opcode = 0x4D
	OpI32GeS Opcode = 0x4E
	OpI32GeU Opcode = 0x4F
	OpI64Eqz Opcode = 0x50
	OpI64Eq  Opcode = 0x51
	OpI64Ne  Opcode = 0x52
	OpI64LtS Opcode = 0x53
	OpI64LtU Opcode = 0x54
	OpI64GtS Opcode = 0x55
	OpI64GtU Opcode = 0x56
	OpI64LeS Opcode = 0x57
	OpI64LeU Opcode = 0x58
	OpI64GeS Opcode = 0x59
	OpI64GeU Opcode = 0x5A
	OpF32Eq  Opcode = 0x5B
	OpF32Ne  Opcode = 0x5C
	OpF32Lt  Opcode = 0x5D
	OpF32Gt  Opcode = 0x5E
	OpF32Le  Opcode = 0x5F
	OpF32Ge  Opcode = 0x60
	OpF64Eq  Opcode = 0x61
	OpF64Ne  Opcode = 0x62
	OpF64Lt  Opcode = 0x63
	OpF64Gt  Opcode = 0x64
	OpF64Le  Opcode = 0x65
	OpF64Ge  Opcode = 0x66
)

// Numeric
const (
	OpI32Clz      Opcode = 0x67
	OpI32Ctz      Opcode = 0x68
	OpI32Popcnt   Opcode = 0x69
	OpI32Add      Opcode = 0x6A
	OpI32Sub      Opcode = 0x6B
	OpI32Mul      Opcode = 0x6C
	OpI32DivS     Opcode = 0x6D
	OpI32DivU     Opcode = 0x6E
	OpI32RemS     Opcode = 0x6F
	OpI32RemU     Opcode = 0x70
	OpI32And      Opcode = 0x71
	OpI32Or       Opcode = 0x72
	OpI32Xor      Opcode = 0x73
	OpI32Shl      Opcode = 0x74
	OpI32ShrS     Opcode = 0x75
	OpI32ShrU     Opcode = 0x76
	OpI32Rotl     Opcode = 0x77
	OpI32Rotr     Opcode = 0x78
	OpI64Clz      Opcode = 0x79
	OpI64Ctz      Opcode = 0x7A
	OpI64Popcnt   Opcode = 0x7B
	OpI64Add      Opcode = 0x7C
	OpI64Sub      Opcode = 0x7D
	OpI64Mul      Opcode = 0x7E
	OpI64DivS     Opcode = 0x7F
	OpI64DivU     Opcode = 0x80
	OpI64RemS     Opcode = 0x81
	OpI64RemU     Opcode = 0x82
	OpI64And      Opcode = 0x83
	OpI64Or       Opcode = 0x84
	OpI64Xor      Opcode = 0x85
	OpI64Shl      Opcode = 0x86
	OpI64ShrS     Opcode = 0x87
	OpI64ShrU     Opcode = 0x88
	OpI64Rotl     Opcode = 0x89
	OpI64Rotr     Opcode = 0x8A
	OpF32Abs      Opcode = 0x8B
	OpF32Neg      Opcode = 0x8C
	OpF32Ceil     Opcode = 0x8D
	OpF32Floor    Opcode = 0x8E
	OpF32Trunc    Opcode = 0x8F
	OpF32Nearest  Opcode = 0x90
	OpF32Sqrt     Opcode = 0x91
	OpF32Add      Opcode = 0x92
	OpF32Sub      Opcode = 0x93
	OpF32Mul      Opcode = 0x94
	OpF32Div      Opcode = 0x95
	OpF32Min      Opcode = 0x96
	OpF32Max      Opcode = 0x97
	OpF32Copysign Opcode = 0x98
	OpF64Abs      Opcode = 0x99
	OpF64Neg      Opcode = 0x9A
	OpF64Ceil     Opcode = 0x9B
	OpF64Floor    Opcode = 0x9C
	OpF64Trunc    Opcode = 0x9D
	OpF64Nearest  Opcode = 0x9E
	OpF64Sqrt     Opcode = 0x9F
	OpF64Add      Opcode = 0xA0
	OpF64Sub      Opcode = 0xA1
	OpF64Mul      Opcode = 0xA2
	OpF64Div      Opcode = 0xA3
	OpF64Min      Opcode = 0xA4
	OpF64Max      Opcode = 0xA5
	OpF64Copysign Opcode = 0xA6
)

// Conversion
const (
	OpI32WrapI64     Opcode = 0xA7
	OpI32TruncF32S   Opcode = 0xA8
	OpI32TruncF32U   Opcode = 0xA9
	OpI32TruncF64S   Opcode = 0xAA
	OpI32TruncF64U   Opcode = 0xAB
	OpI64ExtendI32S  Opcode = 0xAC
	OpI64ExtendI32U  Opcode = 0xAD
	OpI64TruncF32S   Opcode = 0xAE
	OpI64TruncF32U   Opcode = 0xAF
	OpI64TruncF64S   Opcode = 0xB0
	OpI64TruncF64U   Opcode = 0xB1
	OpF32ConvertI32S Opcode = 0xB2
	OpF32ConvertI32U Opcode = 0xB3
	OpF32ConvertI64S Opcode = 0xB4
	OpF32ConvertI64U Opcode = 0xB5
	OpF32DemoteF64   Opcode = 0xB6
	OpF64ConvertI32S Opcode = 0xB7
	OpF64ConvertI32U Opcode = 0xB8
	OpF64ConvertI64S Opcode = 0xB9
	OpF64ConvertI64U Opcode = 0xBA
	OpF64PromoteF32  Opcode = 0xBB
)

// Reinterpretation
const (
	OpI32ReinterpretF32 Opcode = 0xBC
	OpI64ReinterpretF64 Opcode = 0xBD
	OpF32ReinterpretI32 Opcode = 0xBE
	OpF64ReinterpretI64 Opcode = 0xBF
)

// immKind identifies the immediate operands that follow an opcode byte.
type immKind uint8

const (
	immNone         immKind = iota
	immBlock                // block type
	immBranch               // label depth
	immBrTable              // label vector + default
	immCall                 // function index
	immCallIndirect         // type index + reserved varuint1
	immLocal                // local index
	immGlobal               // global index
	immMemory               // memarg
	immReserved             // reserved varuint1 (memory.size, memory.grow)
	immI32                  // varint32
	immI64                  // varint64
	immF32                  // raw LE float32
	immF64                  // raw LE float64
)

type opcodeInfo struct {
	name    string
	imm     immKind
	defined bool
}

// opcodes maps every byte to its opcode entry. Bytes with defined == false
// are not MVP instructions.
var opcodes = [256]opcodeInfo{
	OpUnreachable:       {"unreachable", immNone, true},
	OpNop:               {"nop", immNone, true},
	OpBlock:             {"block", immBlock, true},
	OpLoop:              {"loop", immBlock, true},
	OpIf:                {"if", immBlock, true},
	OpElse:              {"else", immNone, true},
	OpEnd:               {"end", immNone, true},
	OpBr:                {"br", immBranch, true},
	OpBrIf:              {"br_if", immBranch, true},
	OpBrTable:           {"br_table", immBrTable, true},
	OpReturn:            {"return", immNone, true},
	OpCall:              {"call", immCall, true},
	OpCallIndirect:      {"call_indirect", immCallIndirect, true},
	OpDrop:              {"drop", immNone, true},
	OpSelect:            {"select", immNone, true},
	OpLocalGet:          {"local.get", immLocal, true},
	OpLocalSet:          {"local.set", immLocal, true},
	OpLocalTee:          {"local.tee", immLocal, true},
	OpGlobalGet:         {"global.get", immGlobal, true},
	OpGlobalSet:         {"global.set", immGlobal, true},
	OpI32Load:           {"i32.load", immMemory, true},
	OpI64Load:           {"i64.load", immMemory, true},
	OpF32Load:           {"f32.load", immMemory, true},
	OpF64Load:           {"f64.load", immMemory, true},
	OpI32Load8S:         {"i32.load8_s", immMemory, true},
	OpI32Load8U:         {"i32.load8_u", immMemory, true},
	OpI32Load16S:        {"i32.load16_s", immMemory, true},
	OpI32Load16U:        {"i32.load16_u", immMemory, true},
	OpI64Load8S:         {"i64.load8_s", immMemory, true},
	OpI64Load8U:         {"i64.load8_u", immMemory, true},
	OpI64Load16S:        {"i64.load16_s", immMemory, true},
	OpI64Load16U:        {"i64.load16_u", immMemory, true},
	OpI64Load32S:        {"i64.load32_s", immMemory, true},
	OpI64Load32U:        {"i64.load32_u", immMemory, true},
	OpI32Store:          {"i32.store", immMemory, true},
	OpI64Store:          {"i64.store", immMemory, true},
	OpF32Store:          {"f32.store", immMemory, true},
	OpF64Store:          {"f64.store", immMemory, true},
	OpI32Store8:         {"i32.store8", immMemory, true},
	OpI32Store16:        {"i32.store16", immMemory, true},
	OpI64Store8:         {"i64.store8", immMemory, true},
	OpI64Store16:        {"i64.store16", immMemory, true},
	OpI64Store32:        {"i64.store32", immMemory, true},
	OpMemorySize:        {"memory.size", immReserved, true},
	OpMemoryGrow:        {"memory.grow", immReserved, true},
	OpI32Const:          {"i32.const", immI32, true},
	OpI64Const:          {"i64.const", immI64, true},
	OpF32Const:          {"f32.const", immF32, true},
	OpF64Const:          {"f64.const", immF64, true},
	OpI32Eqz:            {"i32.eqz", immNone, true},
	OpI32Eq:             {"i32.eq", immNone, true},
	OpI32Ne:             {"i32.ne", immNone, true},
	OpI32LtS:            {"i32.lt_s", immNone, true},
	OpI32LtU:            {"i32.lt_u", immNone, true},
	OpI32GtS:            {"i32.gt_s", immNone, true},
	OpI32GtU:            {"i32.gt_u", immNone, true},
	OpI32LeS:            {"i32.le_s", immNone, true},
	OpI32LeU:            {"i32.le_u", immNone, true},
	OpI32GeS:            {"i32.ge_s", immNone, true},
	OpI32GeU:            {"i32.ge_u", immNone, true},
	OpI64Eqz:            {"i64.eqz", immNone, true},
	OpI64Eq:             {"i64.eq", immNone, true},
	OpI64Ne:             {"i64.ne", immNone, true},
	OpI64LtS:            {"i64.lt_s", immNone, true},
	OpI64LtU:            {"i64.lt_u", immNone, true},
	OpI64GtS:            {"i64.gt_s", immNone, true},
	OpI64GtU:            {"i64.gt_u", immNone, true},
	OpI64LeS:            {"i64.le_s", immNone, true},
	OpI64LeU:            {"i64.le_u", immNone, true},
	OpI64GeS:            {"i64.ge_s", immNone, true},
	OpI64GeU:            {"i64.ge_u", immNone, true},
	OpF32Eq:             {"f32.eq", immNone, true},
	OpF32Ne:             {"f32.ne", immNone, true},
	OpF32Lt:             {"f32.lt", immNone, true},
	OpF32Gt:             {"f32.gt", immNone, true},
	OpF32Le:             {"f32.le", immNone, true},
	OpF32Ge:             {"f32.ge", immNone, true},
	OpF64Eq:             {"f64.eq", immNone, true},
	OpF64Ne:             {"f64.ne", immNone, true},
	OpF64Lt:             {"f64.lt", immNone, true},
	OpF64Gt:             {"f64.gt", immNone, true},
	OpF64Le:             {"f64.le", immNone, true},
	OpF64Ge:             {"f64.ge", immNone, true},
	OpI32Clz:            {"i32.clz", immNone, true},
	OpI32Ctz:            {"i32.ctz", immNone, true},
	OpI32Popcnt:         {"i32.popcnt", immNone, true},
	OpI32Add:            {"i32.add", immNone, true},
	OpI32Sub:            {"i32.sub", immNone, true},
	OpI32Mul:            {"i32.mul", immNone, true},
	OpI32DivS:           {"i32.div_s", immNone, true},
	OpI32DivU:           {"i32.div_u", immNone, true},
	OpI32RemS:           {"i32.rem_s", immNone, true},
	OpI32RemU:           {"i32.rem_u", immNone, true},
	OpI32And:            {"i32.and", immNone, true},
	OpI32Or:             {"i32.or", immNone, true},
	OpI32Xor:            {"i32.xor", immNone, true},
	OpI32Shl:            {"i32.shl", immNone, true},
	OpI32ShrS:           {"i32.shr_s", immNone, true},
	OpI32ShrU:           {"i32.shr_u", immNone, true},
	OpI32Rotl:           {"i32.rotl", immNone, true},
	OpI32Rotr:           {"i32.rotr", immNone, true},
	OpI64Clz:            {"i64.clz", immNone, true},
	OpI64Ctz:            {"i64.ctz", immNone, true},
	OpI64Popcnt:         {"i64.popcnt", immNone, true},
	OpI64Add:            {"i64.add", immNone, true},
	OpI64Sub:            {"i64.sub", immNone, true},
	OpI64Mul:            {"i64.mul", immNone, true},
	OpI64DivS:           {"i64.div_s", immNone, true},
	OpI64DivU:           {"i64.div_u", immNone, true},
	OpI64RemS:           {"i64.rem_s", immNone, true},
	OpI64RemU:           {"i64.rem_u", immNone, true},
	OpI64And:            {"i64.and", immNone, true},
	OpI64Or:             {"i64.or", immNone, true},
	OpI64Xor:            {"i64.xor", immNone, true},
	OpI64Shl:            {"i64.shl", immNone, true},
	OpI64ShrS:           {"i64.shr_s", immNone, true},
	OpI64ShrU:           {"i64.shr_u", immNone, true},
	OpI64Rotl:           {"i64.rotl", immNone, true},
	OpI64Rotr:           {"i64.rotr", immNone, true},
	OpF32Abs:            {"f32.abs", immNone, true},
	OpF32Neg:            {"f32.neg", immNone, true},
	OpF32Ceil:           {"f32.ceil", immNone, true},
	OpF32Floor:          {"f32.floor", immNone, true},
	OpF32Trunc:          {"f32.trunc", immNone, true},
	OpF32Nearest:        {"f32.nearest", immNone, true},
	OpF32Sqrt:           {"f32.sqrt", immNone, true},
	OpF32Add:            {"f32.add", immNone, true},
	OpF32Sub:            {"f32.sub", immNone, true},
	OpF32Mul:            {"f32.mul", immNone, true},
	OpF32Div:            {"f32.div", immNone, true},
	OpF32Min:            {"f32.min", immNone, true},
	OpF32Max:            {"f32.max", immNone, true},
	OpF32Copysign:       {"f32.copysign", immNone, true},
	OpF64Abs:            {"f64.abs", immNone, true},
	OpF64Neg:            {"f64.neg", immNone, true},
	OpF64Ceil:           {"f64.ceil", immNone, true},
	OpF64Floor:          {"f64.floor", immNone, true},
	OpF64Trunc:          {"f64.trunc", immNone, true},
	OpF64Nearest:        {"f64.nearest", immNone, true},
	OpF64Sqrt:           {"f64.sqrt", immNone, true},
	OpF64Add:            {"f64.add", immNone, true},
	OpF64Sub:            {"f64.sub", immNone, true},
	OpF64Mul:            {"f64.mul", immNone, true},
	OpF64Div:            {"f64.div", immNone, true},
	OpF64Min:            {"f64.min", immNone, true},
	OpF64Max:            {"f64.max", immNone, true},
	OpF64Copysign:       {"f64.copysign", immNone, true},
	OpI32WrapI64:        {"i32.wrap_i64", immNone, true},
	OpI32TruncF32S:      {"i32.trunc_f32_s", immNone, true},
	OpI32TruncF32U:      {"i32.trunc_f32_u", immNone, true},
	OpI32TruncF64S:      {"i32.trunc_f64_s", immNone, true},
	OpI32TruncF64U:      {"i32.trunc_f64_u", immNone, true},
	OpI64ExtendI32S:     {"i64.extend_i32_s", immNone, true},
	OpI64ExtendI32U:     {"i64.extend_i32_u", immNone, true},
	OpI64TruncF32S:      {"i64.trunc_f32_s", immNone, true},
	OpI64TruncF32U:      {"i64.trunc_f32_u", immNone, true},
	OpI64TruncF64S:      {"i64.trunc_f64_s", immNone, true},
	OpI64TruncF64U:      {"i64.trunc_f64_u", immNone, true},
	OpF32ConvertI32S:    {"f32.convert_i32_s", immNone, true},
	OpF32ConvertI32U:    {"f32.convert_i32_u", immNone, true},
	OpF32ConvertI64S:    {"f32.convert_i64_s", immNone, true},
	OpF32ConvertI64U:    {"f32.convert_i64_u", immNone, true},
	OpF32DemoteF64:      {"f32.demote_f64", immNone, true},
	OpF64ConvertI32S:    {"f64.convert_i32_s", immNone, true},
	OpF64ConvertI32U:    {"f64.convert_i32_u", immNone, true},
	OpF64ConvertI64S:    {"f64.convert_i64_s", immNone, true},
	OpF64ConvertI64U:    {"f64.convert_i64_u", immNone, true},
	OpF64PromoteF32:     {"f64.promote_f32", immNone, true},
	OpI32ReinterpretF32: {"i32.reinterpret_f32", immNone, true},
	OpI64ReinterpretF64: {"i64.reinterpret_f64", immNone, true},
	OpF32ReinterpretI32: {"f32.reinterpret_i32", immNone, true},
	OpF64ReinterpretI64: {"f64.reinterpret_i64", immNone, true},
}

// LookupOpcode maps b to its opcode. ok is false for bytes outside the
// defined ranges, including the reserved 0x06-0x0a.
func LookupOpcode(b byte) (op Opcode, ok bool) {
	return Opcode(b), opcodes[b].defined
}

// String returns the text-format mnemonic.
func (op Opcode) String() string {
	if info := opcodes[op]; info.defined {
		return info.name
	}
	return fmt.Sprintf("opcode(0x%02x)", byte(op))
}
