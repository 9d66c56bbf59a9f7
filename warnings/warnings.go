// Package warnings contains the non-fatal problems reported while cleaning a GTFS static feed.
package warnings

import (
	"fmt"

	"github.com/jamespfennell/gtfsclean/constants"
)

// StaticWarning is a problem that caused a record to be skipped without aborting the run.
type StaticWarning interface {
	File() constants.StaticFile
	Error() string
}

// MissingKeys is reported for a row with empty required values.
type MissingKeys struct {
	FileName constants.StaticFile
	Line     int
	Keys     []string
}

func (w MissingKeys) File() constants.StaticFile {
	return w.FileName
}

func (w MissingKeys) Error() string {
	return fmt.Sprintf("%s line %d: skipping %s because of missing keys %v", w.FileName, w.Line, constants.EntityOf(w.FileName), w.Keys)
}

// UnknownReference is reported for a row referring to a record that does not exist.
type UnknownReference struct {
	FileName constants.StaticFile
	Line     int
	Key      string
	Value    string
}

func (w UnknownReference) File() constants.StaticFile {
	return w.FileName
}

func (w UnknownReference) Error() string {
	return fmt.Sprintf("%s line %d: skipping %s because %s %q does not exist", w.FileName, w.Line, constants.EntityOf(w.FileName), w.Key, w.Value)
}

// FatalRecordSkipped is reported instead of aborting the run when a record fails with a
// fatal error and the caller asked for such records to be skipped.
type FatalRecordSkipped struct {
	FileName constants.StaticFile
	Line     int
	Err      error
}

func (w FatalRecordSkipped) File() constants.StaticFile {
	return w.FileName
}

func (w FatalRecordSkipped) Error() string {
	return fmt.Sprintf("%s line %d: skipping %s: %s", w.FileName, w.Line, constants.EntityOf(w.FileName), w.Err)
}

func (w FatalRecordSkipped) Unwrap() error {
	return w.Err
}

// InvalidValue is reported for a row with a value that cannot be parsed.
type InvalidValue struct {
	FileName constants.StaticFile
	Line     int
	Key      string
	Value    string
}

func (w InvalidValue) File() constants.StaticFile {
	return w.FileName
}

func (w InvalidValue) Error() string {
	return fmt.Sprintf("%s line %d: skipping %s because %s %q is invalid", w.FileName, w.Line, constants.EntityOf(w.FileName), w.Key, w.Value)
}
