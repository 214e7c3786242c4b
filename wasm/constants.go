package wasm

import "fmt"

// WebAssembly binary format magic number and version.
const (
	// Magic is the WebAssembly binary magic number ("\0asm" in little-endian).
	Magic uint32 = 0x6D736100

	// Version is the supported WebAssembly binary format version.
	Version uint32 = 0x01
)

// SectionID is the binary identifier of a module section.
type SectionID byte

// Section IDs define the binary identifiers for each module section.
// Sections must appear in increasing order by ID (except custom sections).
const (
	SectionCustom   SectionID = 0  // Custom section (can appear anywhere)
	SectionType     SectionID = 1  // Type section (function signatures)
	SectionImport   SectionID = 2  // Import section
	SectionFunction SectionID = 3  // Function section (type indices)
	SectionTable    SectionID = 4  // Table section
	SectionMemory   SectionID = 5  // Memory section
	SectionGlobal   SectionID = 6  // Global section
	SectionExport   SectionID = 7  // Export section
	SectionStart    SectionID = 8  // Start section
	SectionElement  SectionID = 9  // Element section
	SectionCode     SectionID = 10 // Code section (function bodies)
	SectionData     SectionID = 11 // Data section

	sectionCount = 12
)

var sectionNames = [sectionCount]string{
	"custom", "type", "import", "function", "table", "memory",
	"global", "export", "start", "element", "code", "data",
}

func (id SectionID) String() string {
	if id < sectionCount {
		return sectionNames[id]
	}
	return fmt.Sprintf("section(%d)", byte(id))
}

// NameSectionName is the custom section carrying debug names.
const NameSectionName = "name"

// ExternalKind tags an import descriptor or export.
type ExternalKind byte

// Import/Export descriptor kinds identify the type of imported or exported item.
const (
	KindFunc   ExternalKind = 0 // Function import/export
	KindTable  ExternalKind = 1 // Table import/export
	KindMemory ExternalKind = 2 // Memory import/export
	KindGlobal ExternalKind = 3 // Global import/export
)

func (k ExternalKind) String() string {
	switch k {
	case KindFunc:
		return "func"
	case KindTable:
		return "table"
	case KindMemory:
		return "memory"
	case KindGlobal:
		return "global"
	default:
		return fmt.Sprintf("kind(%d)", byte(k))
	}
}

// ValType represents a WebAssembly value type.
type ValType byte

// Value type encodings as defined in the WebAssembly binary format.
const (
	ValI32 ValType = 0x7F // 32-bit integer
	ValI64 ValType = 0x7E // 64-bit integer
	ValF32 ValType = 0x7D // 32-bit float
	ValF64 ValType = 0x7C // 64-bit float
)

func (v ValType) String() string {
	switch v {
	case ValI32:
		return "i32"
	case ValI64:
		return "i64"
	case ValF32:
		return "f32"
	case ValF64:
		return "f64"
	default:
		return "unknown"
	}
}

func (v ValType) valid() bool {
	return v >= ValF64 && v <= ValI32
}

// ElemType is the element type of a table. The MVP defines only anyfunc.
type ElemType byte

const ElemAnyFunc ElemType = 0x70

func (e ElemType) String() string {
	if e == ElemAnyFunc {
		return "anyfunc"
	}
	return "unknown"
}

// FuncTypeByte is the form tag that starts every type section entry.
const FuncTypeByte byte = 0x60

// BlockType is the signature of a block, loop or if: empty or one value type.
type BlockType byte

// BlockEmpty is the block type of a block with no result.
const BlockEmpty BlockType = 0x40

func (b BlockType) String() string {
	if b == BlockEmpty {
		return ""
	}
	return ValType(b).String()
}

// Result returns the block's result type, if it has one.
func (b BlockType) Result() (ValType, bool) {
	if b == BlockEmpty {
		return 0, false
	}
	return ValType(b), true
}

func (b BlockType) valid() bool {
	return b == BlockEmpty || ValType(b).valid()
}
