// Package errors provides structured error types for the wasm-inspect library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the location path, the byte offset for decode errors, and
// the cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindInvalidOpcode).
//		At(r.Position()).
//		Path("code", "3").
//		Detail("byte 0x%02x is not a defined opcode", b).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UnexpectedEOF(offset, 4, 1)
//	err := errors.InvalidTypeTag(offset, "value type", 0x55)
//
// All errors implement the standard error interface and support errors.Is/As.
// Is matches on Phase and Kind only, so a bare &Error{Phase, Kind} works as a
// sentinel.
package errors
