package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseDecode   Phase = "decode"   // binary to Module
	PhaseValidate Phase = "validate" // structural rules over a decoded Module
	PhaseLoad     Phase = "load"     // opening the input source
	PhaseConfig   Phase = "config"   // configuration loading
)

// Kind categorizes the error
type Kind string

const (
	KindUnexpectedEOF      Kind = "unexpected_eof"
	KindVarintTooLong      Kind = "varint_too_long"
	KindInvalidPreamble    Kind = "invalid_preamble"
	KindUnsupportedVersion Kind = "unsupported_version"
	KindUnknownSection     Kind = "unknown_section_id"
	KindSectionLength      Kind = "section_length_mismatch"
	KindSectionOrder       Kind = "section_order"
	KindInvalidOpcode      Kind = "invalid_opcode"
	KindMalformedInitExpr  Kind = "malformed_init_expr"
	KindMalformedBody      Kind = "malformed_body"
	KindInvalidTypeTag     Kind = "invalid_type_tag"
	KindNameSubsection     Kind = "duplicate_or_misordered_name_subsection"
	KindInvalidUTF8        Kind = "invalid_utf8"
	KindInvalidLimits      Kind = "invalid_limits"
	KindOutOfBounds        Kind = "out_of_bounds"
	KindInvalidData        Kind = "invalid_data"
	KindInvalidInput       Kind = "invalid_input"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
	// Offset is the byte offset in the input. Only reported for PhaseDecode.
	Offset int64
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" in ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Phase == PhaseDecode {
		fmt.Fprintf(&b, " at offset %d", e.Offset)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the location path (section, entry, field)
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// At sets the byte offset
func (b *Builder) At(offset int64) *Builder {
	b.err.Offset = offset
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// WithPath prefixes the location path of err. Errors that are not *Error are
// returned unchanged.
func WithPath(err error, path ...string) error {
	var e *Error
	if !stderrors.As(err, &e) {
		return err
	}
	cp := *e
	cp.Path = append(append(make([]string, 0, len(path)+len(e.Path)), path...), e.Path...)
	return &cp
}

// KindOf returns the Kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Convenience constructors for common error patterns

// UnexpectedEOF creates a short-read error
func UnexpectedEOF(offset int64, want, have int64) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindUnexpectedEOF,
		Offset: offset,
		Detail: fmt.Sprintf("need %d byte(s), %d remaining", want, have),
	}
}

// VarintTooLong creates an over-long or non-canonical LEB128 error
func VarintTooLong(offset int64, maxBits int, detail string) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindVarintTooLong,
		Offset: offset,
		Detail: fmt.Sprintf("varint%d: %s", maxBits, detail),
	}
}

// InvalidTypeTag creates an out-of-set type tag error
func InvalidTypeTag(offset int64, what string, tag byte) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindInvalidTypeTag,
		Offset: offset,
		Detail: fmt.Sprintf("invalid %s 0x%02x", what, tag),
		Value:  tag,
	}
}

// InvalidUTF8 creates an invalid UTF-8 error
func InvalidUTF8(offset int64, data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindInvalidUTF8,
		Offset: offset,
		Detail: fmt.Sprintf("invalid UTF-8 sequence: %x", preview),
	}
}

// SectionLength creates a byte accounting mismatch error
func SectionLength(offset int64, declared, consumed int64) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindSectionLength,
		Offset: offset,
		Detail: fmt.Sprintf("declared %d byte(s), consumed %d", declared, consumed),
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Load creates an input loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidInput,
		Detail: detail,
		Cause:  cause,
	}
}
