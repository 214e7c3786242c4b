package wasm_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/wasm-inspect/errors"
	"github.com/wippyai/wasm-inspect/wasm"
	"github.com/wippyai/wasm-inspect/wasm/internal/binary"
)

func ptrTo[T any](v T) *T { return &v }

func s32(v int32) []byte { return binary.NewWriter().WriteS32(v).Bytes() }

func s64(v int64) []byte { return binary.NewWriter().WriteS64(v).Bytes() }

// fullModule exercises every section kind plus a raw custom section.
func fullModule() []byte {
	return module(
		section(1, vec(
			funcType([]byte{0x7f, 0x7f}, 0x7f),
			funcType(nil),
			funcType([]byte{0x7e}),
		)),
		section(2, vec(
			cat(name("env"), name("f"), []byte{0x00}, u32(2)),
			cat(name("env"), name("tbl"), []byte{0x01, 0x70, 0x01}, u32(1), u32(10)),
			cat(name("env"), name("mem"), []byte{0x02, 0x00}, u32(1)),
			cat(name("env"), name("g"), []byte{0x03, 0x7f, 0x00}),
		)),
		section(3, vec(u32(0), u32(1))),
		section(4, vec(cat([]byte{0x70, 0x00}, u32(2)))),
		section(5, vec(cat([]byte{0x01}, u32(1), u32(2)))),
		section(6, vec(
			cat([]byte{0x7e, 0x01, 0x42}, s64(-5), []byte{0x0b}),
			cat([]byte{0x7c, 0x00, 0x44}, binary.NewWriter().WriteF64(2.5).Bytes(), []byte{0x0b}),
			cat([]byte{0x7f, 0x00, 0x23}, u32(0), []byte{0x0b}),
		)),
		section(7, vec(
			cat(name("add"), []byte{0x00}, u32(1)),
			cat(name("memory"), []byte{0x02}, u32(0)),
		)),
		section(8, u32(2)),
		section(9, vec(cat(u32(0), []byte{0x41}, s32(1), []byte{0x0b}, vec(u32(1), u32(2))))),
		custom("producers", []byte{0x01, 0x02, 0x03}),
		section(10, vec(
			body(vec(cat(u32(2), []byte{0x7f})), 0x20, 0x00, 0x20, 0x01, 0x6a, 0x0b),
			body(vec(), 0x0b),
		)),
		section(11, vec(cat(u32(0), []byte{0x41}, s32(16), []byte{0x0b}, name("hi")))),
	)
}

func TestDecodeModule_Minimal(t *testing.T) {
	m, err := wasm.DecodeModule(preamble)
	require.NoError(t, err)
	require.NotNil(t, m)

	assert.Nil(t, m.Types)
	assert.Nil(t, m.Imports)
	assert.Nil(t, m.Funcs)
	assert.Nil(t, m.Tables)
	assert.Nil(t, m.Memories)
	assert.Nil(t, m.Globals)
	assert.Nil(t, m.Exports)
	assert.Nil(t, m.Start)
	assert.Nil(t, m.Elements)
	assert.Nil(t, m.Code)
	assert.Nil(t, m.Data)
	assert.Nil(t, m.Names)
	assert.Empty(t, m.Sections)

	assert.NoError(t, m.Validate())
}

func TestDecodeModule_EmptySectionIsPresent(t *testing.T) {
	m, err := wasm.DecodeModule(module(section(1, vec())))
	require.NoError(t, err)

	assert.NotNil(t, m.Types)
	assert.Empty(t, m.Types)
	assert.True(t, m.HasSection(wasm.SectionType))
	assert.False(t, m.HasSection(wasm.SectionFunction))
}

func TestDecodeModule_TypeAndFunction(t *testing.T) {
	data := module(
		section(1, vec(funcType([]byte{0x7f, 0x7f}, 0x7f))),
		section(3, vec(u32(0))),
	)
	m, err := wasm.DecodeModule(data)
	require.NoError(t, err)

	require.Len(t, m.Types, 1)
	assert.Equal(t, []wasm.ValType{wasm.ValI32, wasm.ValI32}, m.Types[0].Params)
	assert.Equal(t, []wasm.ValType{wasm.ValI32}, m.Types[0].Results)
	assert.Equal(t, "func(i32, i32) -> i32", m.Types[0].String())

	require.Equal(t, []uint32{0}, m.Funcs)
	ft := m.GetFuncType(0)
	require.NotNil(t, ft)
	assert.Equal(t, m.Types[0], *ft)
}

func TestDecodeModule_AllSections(t *testing.T) {
	data := fullModule()
	m, err := wasm.DecodeModule(data)
	require.NoError(t, err)

	t.Run("types", func(t *testing.T) {
		require.Len(t, m.Types, 3)
		assert.Empty(t, m.Types[1].Params)
		assert.Nil(t, m.Types[1].Results)
		assert.Equal(t, []wasm.ValType{wasm.ValI64}, m.Types[2].Params)
	})

	t.Run("imports", func(t *testing.T) {
		require.Len(t, m.Imports, 4)

		assert.Equal(t, "env", m.Imports[0].Module)
		assert.Equal(t, "f", m.Imports[0].Name)
		assert.Equal(t, wasm.KindFunc, m.Imports[0].Desc.Kind)
		assert.Equal(t, uint32(2), m.Imports[0].Desc.TypeIdx)

		require.NotNil(t, m.Imports[1].Desc.Table)
		assert.Equal(t, wasm.ElemAnyFunc, m.Imports[1].Desc.Table.ElemType)
		assert.Equal(t, wasm.Limits{HasMax: true, Min: 1, Max: ptrTo[uint32](10)}, m.Imports[1].Desc.Table.Limits)

		require.NotNil(t, m.Imports[2].Desc.Memory)
		assert.Equal(t, wasm.Limits{Min: 1}, m.Imports[2].Desc.Memory.Limits)

		require.NotNil(t, m.Imports[3].Desc.Global)
		assert.Equal(t, wasm.GlobalType{ValType: wasm.ValI32}, *m.Imports[3].Desc.Global)

		assert.Equal(t, 1, m.NumImported(wasm.KindFunc))
		assert.Equal(t, 3, m.NumFuncs())
	})

	t.Run("function index space", func(t *testing.T) {
		assert.Equal(t, &m.Types[2], m.GetFuncType(0))
		assert.Equal(t, &m.Types[0], m.GetFuncType(1))
		assert.Equal(t, &m.Types[1], m.GetFuncType(2))
		assert.Nil(t, m.GetFuncType(3))
	})

	t.Run("tables and memories", func(t *testing.T) {
		require.Len(t, m.Tables, 1)
		assert.Equal(t, wasm.Limits{Min: 2}, m.Tables[0].Limits)
		require.Len(t, m.Memories, 1)
		assert.Equal(t, wasm.Limits{HasMax: true, Min: 1, Max: ptrTo[uint32](2)}, m.Memories[0].Limits)
	})

	t.Run("globals", func(t *testing.T) {
		require.Len(t, m.Globals, 3)
		assert.Equal(t, wasm.GlobalType{ValType: wasm.ValI64, Mutable: true}, m.Globals[0].Type)
		assert.Equal(t, wasm.Instruction{Opcode: wasm.OpI64Const, Imm: wasm.I64Imm{Value: -5}}, m.Globals[0].Init.Instr)
		assert.Equal(t, wasm.Instruction{Opcode: wasm.OpF64Const, Imm: wasm.F64Imm{Value: 2.5}}, m.Globals[1].Init.Instr)
		assert.Equal(t, "global.get 0", m.Globals[2].Init.String())
	})

	t.Run("exports and start", func(t *testing.T) {
		assert.Equal(t, []wasm.Export{
			{Name: "add", Kind: wasm.KindFunc, Idx: 1},
			{Name: "memory", Kind: wasm.KindMemory, Idx: 0},
		}, m.Exports)
		require.NotNil(t, m.Start)
		assert.Equal(t, uint32(2), *m.Start)
	})

	t.Run("elements", func(t *testing.T) {
		require.Len(t, m.Elements, 1)
		assert.Equal(t, uint32(0), m.Elements[0].TableIdx)
		assert.Equal(t, "i32.const 1", m.Elements[0].Offset.String())
		assert.Equal(t, []uint32{1, 2}, m.Elements[0].FuncIdxs)
	})

	t.Run("code", func(t *testing.T) {
		require.Len(t, m.Code, 2)
		assert.Equal(t, []wasm.LocalEntry{{Count: 2, ValType: wasm.ValI32}}, m.Code[0].Locals)
		assert.Equal(t, uint64(2), m.Code[0].NumLocals())
		assert.Equal(t, []wasm.Instruction{
			{Opcode: wasm.OpLocalGet, Imm: wasm.LocalImm{LocalIdx: 0}},
			{Opcode: wasm.OpLocalGet, Imm: wasm.LocalImm{LocalIdx: 1}},
			{Opcode: wasm.OpI32Add},
		}, m.Code[0].Instructions)

		// the terminating end is verified, not recorded
		assert.NotNil(t, m.Code[1].Instructions)
		assert.Empty(t, m.Code[1].Instructions)
		assert.Equal(t, uint32(2), m.Code[1].Size)
		assert.Equal(t, byte(0x0b), data[m.Code[1].Offset+int64(m.Code[1].Size)-1])
	})

	t.Run("data", func(t *testing.T) {
		require.Len(t, m.Data, 1)
		assert.Equal(t, uint32(0), m.Data[0].MemIdx)
		assert.Equal(t, "i32.const 16", m.Data[0].Offset.String())
		assert.Equal(t, []byte("hi"), m.Data[0].Init)
	})

	t.Run("custom sections", func(t *testing.T) {
		assert.Nil(t, m.Names)
		assert.Equal(t, []wasm.CustomSection{{Name: "producers", Data: []byte{0x01, 0x02, 0x03}}}, m.CustomSections)
	})

	assert.NoError(t, m.Validate())
}

func TestDecodeModule_SectionByteAccounting(t *testing.T) {
	data := fullModule()
	m, err := wasm.DecodeModule(data)
	require.NoError(t, err)

	require.Len(t, m.Sections, 12)
	wantIDs := []wasm.SectionID{1, 2, 3, 4, 5, 6, 7, 8, 9, 0, 10, 11}
	for i, h := range m.Sections {
		assert.Equal(t, wantIDs[i], h.ID, "section %d", i)
	}

	// every payload ends exactly where the next header begins
	for i := 0; i < len(m.Sections)-1; i++ {
		next := m.Sections[i+1]
		headerLen := int64(1 + len(u32(next.Size)))
		assert.Equal(t, m.Sections[i].End()+headerLen, next.Offset, "after %s", m.Sections[i].ID)
	}
	assert.Equal(t, int64(len(data)), m.Sections[len(m.Sections)-1].End())

	custom := m.Sections[9]
	assert.Equal(t, "producers", custom.Name)
	assert.Equal(t, uint32(len(name("producers"))+3), custom.Size)
}

func TestDecodeModule_Names(t *testing.T) {
	m, err := wasm.DecodeModule(addModule())
	require.NoError(t, err)
	require.NotNil(t, m.Names)

	require.NotNil(t, m.Names.Module)
	assert.Equal(t, "math", *m.Names.Module)

	fn, ok := m.Names.FunctionName(0)
	require.True(t, ok)
	assert.Equal(t, "add", fn)

	local, ok := m.Names.LocalName(0, 1)
	require.True(t, ok)
	assert.Equal(t, "b", local)

	assert.Empty(t, m.CustomSections)
}

func TestDecodeModuleFrom_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "add.wasm")
	require.NoError(t, os.WriteFile(path, addModule(), 0o600))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	info, err := f.Stat()
	require.NoError(t, err)

	fromFile, err := wasm.DecodeModuleFrom(f, info.Size())
	require.NoError(t, err)

	inMemory, err := wasm.DecodeModule(addModule())
	require.NoError(t, err)
	assert.Equal(t, inMemory, fromFile)
}

func TestDecodeModule_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"zero magic", []byte{0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00}, wasm.ErrInvalidPreamble},
		{"reversed magic", []byte{0x6d, 0x73, 0x61, 0x00, 0x01, 0x00, 0x00, 0x00}, wasm.ErrInvalidPreamble},
		{"version 2", []byte{0x00, 0x61, 0x73, 0x6d, 0x02, 0x00, 0x00, 0x00}, wasm.ErrUnsupportedVersion},
		{"version 0x0d", []byte{0x00, 0x61, 0x73, 0x6d, 0x0d, 0x00, 0x01, 0x00}, wasm.ErrUnsupportedVersion},
		{"truncated magic", []byte{0x00, 0x61, 0x73}, wasm.ErrUnexpectedEOF},
		{"truncated version", []byte{0x00, 0x61, 0x73, 0x6d, 0x01}, wasm.ErrUnexpectedEOF},
		{"empty input", nil, wasm.ErrUnexpectedEOF},

		{"section id 12", module([]byte{0x0c, 0x00}), wasm.ErrUnknownSectionID},
		{"section id 0x7f", module([]byte{0x7f, 0x00}), wasm.ErrUnknownSectionID},
		{"overlong section size", module([]byte{0x01, 0x80, 0x80, 0x80, 0x80, 0x80, 0x00}), wasm.ErrVarintTooLong},
		{"missing section size", module([]byte{0x01}), wasm.ErrUnexpectedEOF},

		{"payload longer than decoded", module([]byte{0x01, 0x02, 0x00, 0x00}), wasm.ErrSectionLengthMismatch},
		{"payload shorter than decoded", module([]byte{0x01, 0x01, 0x01, 0x60, 0x00, 0x00}), wasm.ErrSectionLengthMismatch},
		{"custom name longer than payload", module([]byte{0x00, 0x02, 0x05, 'h', 'e', 'l', 'l', 'o'}), wasm.ErrSectionLengthMismatch},
		{"truncated entry", module([]byte{0x01, 0x05, 0x01, 0x60}), wasm.ErrUnexpectedEOF},

		{"sections out of order", module(section(3, vec()), section(1, vec())), wasm.ErrSectionOrder},
		{"duplicate section", module(section(1, vec()), section(1, vec())), wasm.ErrSectionOrder},
		{"duplicate name section", module(custom("name", nil), custom("name", nil)), wasm.ErrNameSubsection},

		{"bad func form", module(section(1, vec([]byte{0x61, 0x00, 0x00}))), wasm.ErrInvalidTypeTag},
		{"bad param type", module(section(1, vec(funcType([]byte{0x40})))), wasm.ErrInvalidTypeTag},
		{"bad result type", module(section(1, vec(funcType(nil, 0x70)))), wasm.ErrInvalidTypeTag},
		{"two results", module(section(1, vec([]byte{0x60, 0x00, 0x02, 0x7f, 0x7f}))), wasm.ErrVarintTooLong},
		{"bad external kind", module(section(2, vec(cat(name("a"), name("b"), []byte{0x04, 0x00})))), wasm.ErrInvalidTypeTag},
		{"bad table elem type", module(section(4, vec([]byte{0x6f, 0x00, 0x01}))), wasm.ErrInvalidTypeTag},
		{"bad limits flag", module(section(5, vec([]byte{0x02, 0x01}))), wasm.ErrVarintTooLong},
		{"bad global mutability", module(section(6, vec([]byte{0x7f, 0x02, 0x41, 0x00, 0x0b}))), wasm.ErrVarintTooLong},
		{"invalid import name", module(section(2, vec(cat([]byte{0x02, 0xc3, 0x28}, name("b"), []byte{0x00, 0x00})))), wasm.ErrInvalidUTF8},

		{"init expr without end", module(section(6, vec([]byte{0x7f, 0x00, 0x41, 0x00, 0x01}))), wasm.ErrMalformedInitExpr},
		{"empty init expr", module(section(6, vec([]byte{0x7f, 0x00, 0x0b}))), wasm.ErrMalformedInitExpr},
		{"init expr bad opcode", module(section(6, vec([]byte{0x7f, 0x00, 0xff, 0x0b}))), wasm.ErrInvalidOpcode},

		{"reserved opcode in body", module(section(10, vec(body(vec(), 0x06, 0x0b)))), wasm.ErrInvalidOpcode},
		{"opcode past 0xbf", module(section(10, vec(body(vec(), 0xc0, 0x0b)))), wasm.ErrInvalidOpcode},
		{"body without end", module(section(10, vec(body(vec(), 0x01)))), wasm.ErrMalformedBody},
		{"body overrun by immediate", module(section(10, cat(u32(1), []byte{0x03, 0x00, 0x41, 0x80, 0x80, 0x00}))), wasm.ErrMalformedBody},
		{"body too small for locals", module(section(10, cat(u32(1), []byte{0x01, 0x01, 0x01, 0x7f}))), wasm.ErrMalformedBody},
		{"bad local type", module(section(10, vec(body(vec(cat(u32(1), []byte{0x70})), 0x0b)))), wasm.ErrInvalidTypeTag},
		{"bad block type", module(section(10, vec(body(vec(), 0x02, 0x60, 0x0b, 0x0b)))), wasm.ErrInvalidTypeTag},
		{"body size past end of input", module(section(10, cat(u32(1), []byte{0xff, 0xff, 0xff, 0xff, 0x0f, 0x00}))), wasm.ErrUnexpectedEOF},
		{"body size one past end of input", module(section(10, cat(u32(1), []byte{0x03, 0x00, 0x0b}))), wasm.ErrUnexpectedEOF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := wasm.DecodeModule(tt.data)
			assert.Nil(t, m)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDecodeModule_ErrorLocation(t *testing.T) {
	data := module(
		section(1, vec(funcType(nil))),
		section(3, vec(u32(0), u32(0))),
		section(10, vec(
			body(vec(), 0x01, 0x0b),
			body(vec(), 0x01, 0xff, 0x0b),
		)),
	)
	_, err := wasm.DecodeModule(data)

	var e *errors.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errors.PhaseDecode, e.Phase)
	assert.Equal(t, errors.KindInvalidOpcode, e.Kind)
	assert.Equal(t, []string{"code", "1"}, e.Path)
	assert.Equal(t, byte(0xff), data[e.Offset])
	assert.Contains(t, err.Error(), "code.1")
}

func TestDecodeModule_SectionLengthMismatchLocation(t *testing.T) {
	data := module([]byte{0x01, 0x02, 0x00, 0x00})
	_, err := wasm.DecodeModule(data)

	var e *errors.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, []string{"type"}, e.Path)
	assert.Equal(t, int64(10), e.Offset)
	assert.Contains(t, e.Detail, "declared 2")
	assert.Contains(t, e.Detail, "consumed 1")
}

func TestDecodeModule_CustomSectionsAnywhere(t *testing.T) {
	data := module(
		custom("first", nil),
		section(1, vec()),
		custom("second", []byte{0xaa}),
		section(3, vec()),
		custom("first", []byte{0xbb}),
	)
	m, err := wasm.DecodeModule(data)
	require.NoError(t, err)

	assert.Equal(t, []wasm.CustomSection{
		{Name: "first", Data: []byte{}},
		{Name: "second", Data: []byte{0xaa}},
		{Name: "first", Data: []byte{0xbb}},
	}, m.CustomSections)
}
