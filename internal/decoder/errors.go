package decoder

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/txengine/internal/domain"
)

var (
	// ErrMissingField a required field is absent or empty.
	ErrMissingField = errors.New("missing required field")
	// ErrExtraField a field not allowed by the schema is present.
	ErrExtraField = errors.New("unexpected field")
	// ErrBadNumber a numeric field does not parse or is out of range.
	ErrBadNumber = errors.New("malformed number")
	// ErrUnknownKind the kind token is not recognised.
	ErrUnknownKind = domain.ErrUnknownKind
	// ErrBadHeader the header row does not match the expected columns.
	ErrBadHeader = errors.New("malformed header")
	// ErrLineTooLong the record exceeds the configured maximum width.
	ErrLineTooLong = errors.New("line too long")
)

// maxRawLen bounds how much of the offending line a DecodeError keeps.
const maxRawLen = 256

// DecodeError describes a record that could not be decoded.
type DecodeError struct {
	// Line is the 1-based line number in the input stream.
	Line int
	// Raw is the offending line, possibly shortened.
	Raw string
	Err error
}

func newDecodeError(line int, raw string, err error) *DecodeError {
	if len(raw) > maxRawLen {
		raw = raw[:maxRawLen] + "..."
	}
	return &DecodeError{Line: line, Raw: raw, Err: err}
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
