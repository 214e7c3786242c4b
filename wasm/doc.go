// Package wasm decodes WebAssembly 1.0 (MVP) binary modules and checks
// them against structural rules.
//
// # Decoding
//
// Decode a module held in memory:
//
//	data, _ := os.ReadFile("module.wasm")
//	module, err := wasm.DecodeModule(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Or straight from a file, without reading it whole first:
//
//	f, _ := os.Open("module.wasm")
//	info, _ := f.Stat()
//	module, err := wasm.DecodeModuleFrom(f, info.Size())
//
// Decoding is a single forward pass. Every section must consume exactly its
// declared length, integers must respect their declared bit width, and every
// type tag and opcode must be defined. The first violation aborts the decode
// with a *errors.Error carrying the byte offset and a path such as
// "code.3"; no partial Module is returned. Use the Err* sentinels with
// errors.Is to test for a category:
//
//	if errors.Is(err, wasm.ErrInvalidOpcode) { ... }
//
// # Module Structure
//
// A decoded module has one field per section:
//
//	module.Types      []FuncType     // Function signatures
//	module.Imports    []Import       // Imported definitions
//	module.Funcs      []uint32       // Type indices for functions
//	module.Tables     []TableType    // Table definitions
//	module.Memories   []MemoryType   // Memory definitions
//	module.Globals    []Global       // Global variables
//	module.Exports    []Export       // Exported definitions
//	module.Start      *uint32        // Start function index
//	module.Elements   []Element      // Table initializers
//	module.Code       []FuncBody     // Function bodies
//	module.Data       []DataSegment  // Memory initializers
//	module.Names      *Names         // "name" custom section
//
// A nil field means the section was absent. Module.Sections lists every
// section header with its payload offset and size, and CustomSections keeps
// custom sections other than "name" as raw bytes.
//
// Function bodies are decoded to instructions with their immediates:
//
//	for _, instr := range module.Code[0].Instructions {
//	    fmt.Println(instr) // e.g. "i32.const 42"
//	}
//
// # Validation
//
// Validation runs a table of rules over a decoded module and collects every
// violation instead of stopping at the first:
//
//	report := wasm.NewValidator().Validate(module)
//	for _, v := range report.Violations {
//	    fmt.Println(v)
//	}
//
// Module.Validate returns the violations combined into one error, and
// DecodeModuleValidate decodes and validates in one call. Rules can be
// dropped by name with WithoutRules or replaced by passing custom Rule
// values to NewValidator.
//
// # Logging
//
// The decoder logs section headers at debug level through a zap logger that
// is a no-op until SetLogger is called.
package wasm
