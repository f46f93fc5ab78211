package tagger

import (
	"errors"
	"fmt"
)

// ErrParse indicates a file could not be parsed by its dialect visitor
var ErrParse = errors.New("parse failed")

// ErrUnsupported indicates a file or block the tagger has no visitor for
var ErrUnsupported = errors.New("unsupported input")

// ParseError records which file and dialect failed, and why
type ParseError struct {
	Path    string
	Dialect Dialect
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("tag %s (%s): %v", e.Path, e.Dialect, e.Err)
}

// Unwrap exposes both ErrParse and the underlying cause
func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}

// NewParseError creates a new parse error
func NewParseError(path string, dialect Dialect, err error) error {
	return &ParseError{Path: path, Dialect: dialect, Err: err}
}
