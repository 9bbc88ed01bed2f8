package dataset

import (
	"errors"
	"fmt"
	"strings"
)

// ErrFileNotFound is returned when the source table does not exist.
var ErrFileNotFound = errors.New("data file not found")

// NotFoundError carries the path that could not be found. It matches
// ErrFileNotFound with errors.Is.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("'%s' 파일을 찾을 수 없습니다. 파일 경로를 확인해주세요.", e.Path)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrFileNotFound
}

// DecodeError reports that neither UTF-8 nor the fallback encoding could
// decode the file.
type DecodeError struct {
	Path     string
	Fallback string
	Err      error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
	}
	if e.Fallback == "" || e.Fallback == "none" {
		return fmt.Sprintf("decode %s: not valid UTF-8", e.Path)
	}
	return fmt.Sprintf("decode %s: not valid UTF-8 or %s", e.Path, e.Fallback)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ParseError reports a cell that could not be converted
type ParseError struct {
	Path   string
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: line %d, column %q: invalid value %q: %v", e.Path, e.Line, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// SchemaError reports required columns missing from the header
type SchemaError struct {
	Path    string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema %s: missing required columns: %s", e.Path, strings.Join(e.Missing, ", "))
}

// IsCorrupted reports whether err means the file exists but cannot be used
func IsCorrupted(err error) bool {
	var (
		decodeErr *DecodeError
		parseErr  *ParseError
		schemaErr *SchemaError
	)
	return errors.As(err, &decodeErr) || errors.As(err, &parseErr) || errors.As(err, &schemaErr)
}
