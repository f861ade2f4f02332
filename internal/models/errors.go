package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrFetch marks a source request that failed after all retries.
	ErrFetch = errors.New("fetch failed")
	// ErrParse marks an input file that is not valid JSON.
	ErrParse = errors.New("parse failed")
	// ErrSchemaGap marks a document missing a required structure.
	ErrSchemaGap = errors.New("schema gap")
)

// FetchError describes a source request that gave up.
type FetchError struct {
	Season     int
	Endpoint   string
	Attempts   int
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("fetch %d/%s failed after %d attempt(s)", e.Season, e.Endpoint, e.Attempts)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}

	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrFetch}
	}

	return []error{ErrFetch, e.Err}
}

// ParseError locates a syntax error inside an input file.
type ParseError struct {
	Path   string
	Line   int
	Column int
	Offset int64
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %v", e.Path, e.Line, e.Column, e.Err)
	}

	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}

// NewParseError locates err inside data when it carries a byte offset.
func NewParseError(path string, data []byte, err error) *ParseError {
	pe := &ParseError{Path: path, Err: err}

	var syntaxErr *json.SyntaxError

	var typeErr *json.UnmarshalTypeError

	switch {
	case errors.As(err, &syntaxErr):
		pe.Offset = syntaxErr.Offset
	case errors.As(err, &typeErr):
		pe.Offset = typeErr.Offset
	default:
		return pe
	}

	pe.Line, pe.Column = LineColumn(data, pe.Offset)

	return pe
}

// LineColumn converts a decoder offset ("error after reading offset bytes")
// into a 1-based line and column.
func LineColumn(data []byte, offset int64) (int, int) {
	i := int(offset) - 1
	if i < 0 {
		i = 0
	}

	if i > len(data) {
		i = len(data)
	}

	prefix := data[:i]
	line := bytes.Count(prefix, []byte("\n")) + 1
	col := i - (bytes.LastIndexByte(prefix, '\n') + 1) + 1

	return line, col
}

// SchemaGapError names a structure the document lacks.
type SchemaGapError struct {
	Path  string
	Field string
}

func (e *SchemaGapError) Error() string {
	return fmt.Sprintf("%s: missing %s", e.Path, e.Field)
}

func (e *SchemaGapError) Unwrap() error {
	return ErrSchemaGap
}
