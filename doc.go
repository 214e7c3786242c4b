// Package wasminspect decodes and validates WebAssembly 1.0 (MVP) binary
// modules.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	wasminspect/          Root package with Inspect helpers
//	├── wasm/             Module decoder, instruction decoder and validator
//	│   └── internal/     Byte cursor and LEB128 codec
//	├── errors/           Structured error types with offsets and paths
//	├── internal/config/  YAML configuration and logger setup
//	├── internal/reference/ wazero cross-check
//	└── cmd/wasm-inspect/ Command line tool
//
// # Quick Start
//
// Decode and validate a module:
//
//	res, err := wasminspect.InspectFile("module.wasm")
//	if err != nil {
//	    log.Fatal(err) // malformed binary
//	}
//	for _, v := range res.Report.Violations {
//	    fmt.Println(v)
//	}
//
// Decoding stops at the first malformed construct and returns no module.
// Validation runs every rule and reports every violation.
//
// # Thread Safety
//
// Decoded modules are plain values. Independent decodes may run in
// parallel; InspectFiles does so over a bounded worker group.
package wasminspect
