package animl

import (
	"fmt"

	errs "github.com/instrumatics/animl-go/core/errors"
)

// Validation error kinds. Every error carries the entity path it was
// detected at (e.g. "AnIML.SampleSet.Sample[2]") so a caller can render a
// complete diagnostic report. All kinds unwrap to the module-wide
// errs.ErrInvalidInput sentinel except UnsupportedVersionError, which
// unwraps to errs.ErrUnsupported.

// MissingFieldError reports a required field that is absent.
type MissingFieldError struct {
	Path  string
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: missing required field %q", e.Path, e.Field)
}

func (e *MissingFieldError) Unwrap() error { return errs.ErrInvalidInput }

// InvalidValueError reports a field value outside its declared domain.
type InvalidValueError struct {
	Path  string
	Field string
	Got   string
	Want  string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("%s: invalid %s %q (want %s)", e.Path, e.Field, e.Got, e.Want)
}

func (e *InvalidValueError) Unwrap() error { return errs.ErrInvalidInput }

// CardinalityError reports a singular field given multiple children, or a
// required-multiple container given none.
type CardinalityError struct {
	Path    string
	Field   string
	Message string
}

func (e *CardinalityError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Path, e.Field, e.Message)
}

func (e *CardinalityError) Unwrap() error { return errs.ErrInvalidInput }

// DuplicateIdentifierError reports an identifier collision within its
// uniqueness scope (document-wide for samples and steps, per-SeriesSet for
// series).
type DuplicateIdentifierError struct {
	Path string
	Kind string
	ID   string
}

func (e *DuplicateIdentifierError) Error() string {
	return fmt.Sprintf("%s: duplicate %s %q", e.Path, e.Kind, e.ID)
}

func (e *DuplicateIdentifierError) Unwrap() error { return errs.ErrInvalidInput }

// DanglingReferenceError reports a soft reference that resolves to nothing.
type DanglingReferenceError struct {
	Path string
	Kind string
	ID   string
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("%s: %s %q does not resolve", e.Path, e.Kind, e.ID)
}

func (e *DanglingReferenceError) Unwrap() error { return errs.ErrInvalidInput }

// MalformedEncodingError reports an encoded value block whose buffer shape
// does not fit the declared series type.
type MalformedEncodingError struct {
	Path    string
	Message string
}

func (e *MalformedEncodingError) Error() string {
	return fmt.Sprintf("%s: malformed encoded value set: %s", e.Path, e.Message)
}

func (e *MalformedEncodingError) Unwrap() error { return errs.ErrInvalidInput }

// ValueRangeError reports a numeric literal outside the declared width of
// its series type.
type ValueRangeError struct {
	Path    string
	Literal string
	Type    SeriesType
}

func (e *ValueRangeError) Error() string {
	return fmt.Sprintf("%s: literal %q out of range for %s", e.Path, e.Literal, e.Type)
}

func (e *ValueRangeError) Unwrap() error { return errs.ErrInvalidInput }

// RangeCoverageError reports value-set chunks whose sub-ranges overlap, or
// leave a gap in the logical index space of their series.
type RangeCoverageError struct {
	Path    string
	Message string
}

func (e *RangeCoverageError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

func (e *RangeCoverageError) Unwrap() error { return errs.ErrInvalidInput }

// UnsupportedVersionError reports a document whose schema version is not
// the supported one. It is fatal: no further validation proceeds.
type UnsupportedVersionError struct {
	Got  string
	Want string
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported schema version %q (supported: %q)", e.Got, e.Want)
}

func (e *UnsupportedVersionError) Unwrap() error { return errs.ErrUnsupported }
