package wasm

import "github.com/wippyai/wasm-inspect/errors"

// Sentinel errors for errors.Is. They match any error of the same phase and
// kind, wherever it occurred.
var (
	ErrUnexpectedEOF         = sentinel(errors.PhaseDecode, errors.KindUnexpectedEOF)
	ErrVarintTooLong         = sentinel(errors.PhaseDecode, errors.KindVarintTooLong)
	ErrInvalidPreamble       = sentinel(errors.PhaseDecode, errors.KindInvalidPreamble)
	ErrUnsupportedVersion    = sentinel(errors.PhaseDecode, errors.KindUnsupportedVersion)
	ErrUnknownSectionID      = sentinel(errors.PhaseDecode, errors.KindUnknownSection)
	ErrSectionLengthMismatch = sentinel(errors.PhaseDecode, errors.KindSectionLength)
	ErrSectionOrder          = sentinel(errors.PhaseDecode, errors.KindSectionOrder)
	ErrInvalidOpcode         = sentinel(errors.PhaseDecode, errors.KindInvalidOpcode)
	ErrMalformedInitExpr     = sentinel(errors.PhaseDecode, errors.KindMalformedInitExpr)
	ErrMalformedBody         = sentinel(errors.PhaseDecode, errors.KindMalformedBody)
	ErrInvalidTypeTag        = sentinel(errors.PhaseDecode, errors.KindInvalidTypeTag)
	ErrNameSubsection        = sentinel(errors.PhaseDecode, errors.KindNameSubsection)
	ErrInvalidUTF8           = sentinel(errors.PhaseDecode, errors.KindInvalidUTF8)

	ErrInvalidLimits = sentinel(errors.PhaseValidate, errors.KindInvalidLimits)
	ErrOutOfBounds   = sentinel(errors.PhaseValidate, errors.KindOutOfBounds)
	ErrInvalidData   = sentinel(errors.PhaseValidate, errors.KindInvalidData)
)

func sentinel(phase errors.Phase, kind errors.Kind) *errors.Error {
	return errors.New(phase, kind).Build()
}
