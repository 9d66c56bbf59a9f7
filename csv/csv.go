// Package csv wraps the stdlib csv reader with the column access used by the static parser.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/jamespfennell/gtfsclean/constants"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

type File struct {
	name           constants.StaticFile
	reader         *csv.Reader
	header         map[string]int
	line           int
	cells          []string
	missingColumns []string
	missingKeys    []string
	ioErr          error
	closer         func() error
}

// New reads the header of a CSV file. The reader is closed by File.Close, or immediately if the
// header cannot be read.
func New(name constants.StaticFile, reader io.ReadCloser) (*File, error) {
	csvReader := BOMAwareCSVReader(reader)
	csvReader.FieldsPerRecord = -1
	header, err := csvReader.Read()
	if err == io.EOF {
		reader.Close()
		return nil, fmt.Errorf("%s contains no rows", name)
	} else if err != nil {
		reader.Close()
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	csvReader.ReuseRecord = true
	m := map[string]int{}
	for i, column := range header {
		m[column] = i
	}
	return &File{
		name:   name,
		reader: csvReader,
		header: m,
		line:   1,
		closer: reader.Close,
	}, nil
}

func (f *File) Name() constants.StaticFile {
	return f.name
}

// Column is a handle to one column of the file.
type Column struct {
	i        int
	name     string
	required bool
	f        *File
}

// RequiredColumn returns a column that must be present and non-empty in every row.
func (f *File) RequiredColumn(name string) Column {
	i, ok := f.header[name]
	if !ok {
		f.missingColumns = append(f.missingColumns, name)
		i = -1
	}
	return Column{i: i, name: name, required: true, f: f}
}

func (f *File) OptionalColumn(name string) Column {
	i, ok := f.header[name]
	if !ok {
		i = -1
	}
	return Column{i: i, name: name, f: f}
}

// Read returns the value of the column in the current row.
//
// An empty value in a required column is recorded in MissingKeys.
func (c Column) Read() string {
	var s string
	if c.i >= 0 && c.i < len(c.f.cells) {
		s = c.f.cells[c.i]
	}
	if s == "" && c.required {
		c.f.missingKeys = append(c.f.missingKeys, c.name)
	}
	return s
}

// ReadOptional returns nil if the column is absent or empty in the current row.
func (c Column) ReadOptional() *string {
	s := c.Read()
	if s == "" {
		return nil
	}
	return &s
}

// ReadOr returns def if the column is absent or empty in the current row.
func (c Column) ReadOr(def string) string {
	if s := c.Read(); s != "" {
		return s
	}
	return def
}

// MissingColumns returns the required columns absent from the header.
func (f *File) MissingColumns() []string {
	return f.missingColumns
}

// NextRow advances to the next row. It returns false at the end of the file or on a read
// error, which is then returned by Close.
func (f *File) NextRow() bool {
	cells, err := f.reader.Read()
	if err != nil {
		if err != io.EOF {
			f.ioErr = fmt.Errorf("%s line %d: %w", f.name, f.line+1, err)
		}
		f.cells = nil
		return false
	}
	f.line++
	f.cells = cells
	f.missingKeys = nil
	return true
}

// Line is the 1-based line number of the current row; the header is line 1.
func (f *File) Line() int {
	return f.line
}

// MissingKeys returns the required columns read as empty in the current row.
func (f *File) MissingKeys() []string {
	return f.missingKeys
}

func (f *File) Close() error {
	closeErr := f.closer()
	if f.ioErr != nil {
		return f.ioErr
	}
	return closeErr
}

// BOMAwareCSVReader detects a UTF byte order mark at the start of the data and decodes
// accordingly. Data without a BOM is read as UTF-8.
func BOMAwareCSVReader(reader io.Reader) *csv.Reader {
	transformer := unicode.BOMOverride(encoding.Nop.NewDecoder())
	return csv.NewReader(transform.NewReader(reader, transformer))
}
