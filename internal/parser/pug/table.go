package pug

import (
	"errors"
	"fmt"
)

// ErrOffsetTranslation is returned when a generated position has no trustworthy
// counterpart in the original source. Callers must skip tagging rather than guess.
var ErrOffsetTranslation = errors.New("offset translation failed")

// OffsetError describes a generated position that could not be mapped back
type OffsetError struct {
	GeneratedLine int
	GeneratedCol  int
	Reason        string
}

func (e *OffsetError) Error() string {
	return fmt.Sprintf("generated %d:%d: %s", e.GeneratedLine+1, e.GeneratedCol+1, e.Reason)
}

func (e *OffsetError) Unwrap() error {
	return ErrOffsetTranslation
}

// Entry maps one generated line back to the source the developer wrote
type Entry struct {
	// Line is the 0-based original line, or -1 for lines synthesized by the transpiler
	Line int
	// Element is set when the generated line opens an element
	Element bool
	// Name is the tag name as written; empty for implicit div shorthand (.class, #id)
	Name string
	// NameCol is the original byte column where the element starts
	NameCol int
	// InsertCol is the original byte column where a location attribute may be inserted
	InsertCol int
	// GenCol is the generated byte column of the tag name
	GenCol int
}

// OffsetTable maps every generated line to its original line and element columns
type OffsetTable struct {
	entries       []Entry
	originalLines int
}

// GeneratedLines returns the number of lines in the bracketed form
func (t *OffsetTable) GeneratedLines() int {
	return len(t.entries)
}

// OriginalLines returns the number of lines in the indentation-based source
func (t *OffsetTable) OriginalLines() int {
	return t.originalLines
}

// Entry returns the mapping for a generated line
func (t *OffsetTable) Entry(genLine int) (Entry, bool) {
	if genLine < 0 || genLine >= len(t.entries) {
		return Entry{}, false
	}
	return t.entries[genLine], true
}

// Translate maps a tag name found at a generated position back to the element that
// produced it. The generated column must be the exact column the transpiler emitted
// for that element; anything else means the bracketed form and the table disagree.
func (t *OffsetTable) Translate(genLine, genCol int) (Entry, error) {
	entry, ok := t.Entry(genLine)
	if !ok {
		return Entry{}, &OffsetError{GeneratedLine: genLine, GeneratedCol: genCol, Reason: "line outside offset table"}
	}
	if entry.Line < 0 || !entry.Element {
		return Entry{}, &OffsetError{GeneratedLine: genLine, GeneratedCol: genCol, Reason: "line has no originating element"}
	}
	if entry.GenCol != genCol {
		return Entry{}, &OffsetError{
			GeneratedLine: genLine,
			GeneratedCol:  genCol,
			Reason:        fmt.Sprintf("element emitted at column %d", entry.GenCol+1),
		}
	}
	return entry, nil
}
