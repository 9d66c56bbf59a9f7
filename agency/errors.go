package agency

import (
	"errors"
	"fmt"
)

// FatalError is an error that no retry can fix.
//
// It signals a gap in the agency's rule or lookup tables, or a defect in the source data, and
// carries the raw input that caused it. Whether it aborts a single record or the whole run is up
// to the caller.
type FatalError interface {
	error
	RawInput() string
}

// UnrecognizedCodeError is returned when a code is in none of the agency's lookup tables.
type UnrecognizedCodeError struct {
	Field string
	Code  string
}

func (e *UnrecognizedCodeError) Error() string {
	return fmt.Sprintf("unrecognized %s %q", e.Field, e.Code)
}

func (e *UnrecognizedCodeError) RawInput() string {
	return e.Code
}

// MalformedIDError is returned when an identifier does not reduce to an integer.
type MalformedIDError struct {
	Field string
	Token string
	Err   error
}

func (e *MalformedIDError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed %s %q: %s", e.Field, e.Token, e.Err)
	}
	return fmt.Sprintf("malformed %s %q", e.Field, e.Token)
}

func (e *MalformedIDError) RawInput() string {
	return e.Token
}

func (e *MalformedIDError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether any error in err's chain is a FatalError.
func IsFatal(err error) bool {
	var f FatalError
	return errors.As(err, &f)
}
