package wasm

import "strings"

// Module represents a decoded WebAssembly module.
//
// A nil slice or pointer means the section was absent from the input; a
// present section with zero entries decodes to an empty, non-nil slice.
type Module struct {
	Types    []FuncType
	Imports  []Import
	Funcs    []uint32 // Type indices for declared functions
	Tables   []TableType
	Memories []MemoryType
	Globals  []Global
	Exports  []Export
	Start    *uint32
	Elements []Element
	Code     []FuncBody
	Data     []DataSegment

	// Names is the decoded "name" custom section.
	Names *Names

	// CustomSections holds every other custom section, undecoded.
	CustomSections []CustomSection

	// Sections lists every section header in file order.
	Sections []SectionHeader
}

// SectionHeader records where a section's payload sits in the input.
// Size is the declared payload length; for custom sections it includes the
// encoded name.
type SectionHeader struct {
	Name   string // custom sections only
	Offset int64  // first payload byte
	Size   uint32
	ID     SectionID
}

// End returns the offset one past the payload.
func (h SectionHeader) End() int64 {
	return h.Offset + int64(h.Size)
}

// FuncType represents a WebAssembly function signature with parameter and result types.
// The MVP encoding allows at most one result.
type FuncType struct {
	Params  []ValType
	Results []ValType
}

func (f FuncType) String() string {
	var b strings.Builder
	b.WriteString("func(")
	for i, p := range f.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.String())
	}
	b.WriteByte(')')
	if len(f.Results) > 0 {
		b.WriteString(" -> ")
		b.WriteString(f.Results[0].String())
	}
	return b.String()
}

// Import represents an imported function, table, memory, or global.
type Import struct {
	Desc   ImportDesc
	Module string
	Name   string
}

// ImportDesc describes an imported item. Exactly one of TypeIdx, Table,
// Memory or Global is meaningful, selected by Kind.
type ImportDesc struct {
	Table   *TableType
	Memory  *MemoryType
	Global  *GlobalType
	TypeIdx uint32
	Kind    ExternalKind
}

// TableType describes a table with element type and size limits.
type TableType struct {
	Limits   Limits
	ElemType ElemType
}

// MemoryType describes a linear memory with size limits.
type MemoryType struct {
	Limits Limits
}

// Limits describes size constraints for tables and memories.
// When HasMax is set Max points at the maximum; Min <= *Max is checked by
// the validator, not the decoder.
type Limits struct {
	Max    *uint32
	Min    uint32
	HasMax bool
}

// GlobalType describes a global variable's type and mutability.
type GlobalType struct {
	ValType ValType
	Mutable bool
}

// Global represents a global variable with type and initialization.
type Global struct {
	Init InitExpr
	Type GlobalType
}

// Export describes an exported item.
type Export struct {
	Name string
	Idx  uint32
	Kind ExternalKind
}

// Element represents an MVP element segment: function indices written into
// a table at a constant offset.
type Element struct {
	Offset   InitExpr
	FuncIdxs []uint32
	TableIdx uint32
}

// FuncBody represents a function's local declarations and instructions.
// Instructions excludes the terminating end, which the decoder verifies.
type FuncBody struct {
	Locals       []LocalEntry
	Instructions []Instruction
	Offset       int64  // offset of the body's first byte after its size prefix
	Size         uint32 // declared body size
}

// NumLocals returns the number of declared locals, parameters excluded.
func (b *FuncBody) NumLocals() uint64 {
	var n uint64
	for _, l := range b.Locals {
		n += uint64(l.Count)
	}
	return n
}

// LocalEntry represents a group of local variables with the same type.
type LocalEntry struct {
	Count   uint32
	ValType ValType
}

// DataSegment represents an MVP data segment.
type DataSegment struct {
	Offset InitExpr
	Init   []byte
	MemIdx uint32
}

// InitExpr is a constant initializer: one instruction followed by end.
type InitExpr struct {
	Instr Instruction
}

func (e InitExpr) String() string {
	return e.Instr.String()
}

// CustomSection holds a named custom section's data.
type CustomSection struct {
	Name string
	Data []byte
}

// HasSection reports whether a section with the given id was present.
func (m *Module) HasSection(id SectionID) bool {
	for _, h := range m.Sections {
		if h.ID == id {
			return true
		}
	}
	return false
}

// NumImported returns the number of imports of the given kind.
func (m *Module) NumImported(kind ExternalKind) int {
	count := 0
	for _, imp := range m.Imports {
		if imp.Desc.Kind == kind {
			count++
		}
	}
	return count
}

// NumFuncs returns the size of the function index space.
func (m *Module) NumFuncs() int {
	return m.NumImported(KindFunc) + len(m.Funcs)
}

// GetFuncType returns the type of a function by its index. Imported functions
// come first in the index space, followed by the function section in order.
func (m *Module) GetFuncType(funcIdx uint32) *FuncType {
	numImported := uint32(m.NumImported(KindFunc))
	if funcIdx < numImported {
		for i, imp := range m.Imports {
			if imp.Desc.Kind == KindFunc {
				if funcIdx == 0 {
					return m.typeAt(m.Imports[i].Desc.TypeIdx)
				}
				funcIdx--
			}
		}
	}
	localIdx := funcIdx - numImported
	if int(localIdx) >= len(m.Funcs) {
		return nil
	}
	return m.typeAt(m.Funcs[localIdx])
}

func (m *Module) typeAt(typeIdx uint32) *FuncType {
	if int(typeIdx) >= len(m.Types) {
		return nil
	}
	return &m.Types[typeIdx]
}
