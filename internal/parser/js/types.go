package js

// Lang selects the tree-sitter grammar used for a script file
type Lang int

const (
	// JavaScript covers .js, .jsx, .mjs and .cjs; the grammar includes JSX
	JavaScript Lang = iota
	// TypeScript covers .ts, .mts and .cts; JSX is not valid there
	TypeScript
	// TSX covers .tsx
	TSX
)

// String returns the grammar name
func (l Lang) String() string {
	switch l {
	case TypeScript:
		return "typescript"
	case TSX:
		return "tsx"
	default:
		return "javascript"
	}
}

// Segment represents a literal text segment from a template string,
// between ${...} expression boundaries
type Segment struct {
	// Content is the literal text of this segment
	Content string
	// StartByte is the byte offset of the segment in the JS/TS source
	StartByte int
	// StartLine is the 0-indexed line in the JS/TS source where this segment begins
	StartLine uint
	// StartCol is the 0-indexed byte column in the JS/TS source where this segment begins
	StartCol uint
}

// TemplateRegion represents an html tagged template literal found in JS/TS source
type TemplateRegion struct {
	// Segments contains the literal text parts of the template, split at ${...} boundaries
	Segments []Segment
	// Tag is the template tag function name
	Tag string
}

// JSXElement is an opening or self-closing JSX element
type JSXElement struct {
	// TagName is the element name as written, e.g. "div", "Foo.Bar"
	TagName string
	// Start is the byte offset of the opening '<'
	Start int
	// InsertAt is the byte offset after the name and any type arguments
	InsertAt int
	// Attributes holds the attribute names present on the element
	Attributes []string
}

// HasAttribute reports whether the element carries an attribute with the given name
func (e JSXElement) HasAttribute(name string) bool {
	for _, a := range e.Attributes {
		if a == name {
			return true
		}
	}
	return false
}

// Result is everything the tagger needs from one script file
type Result struct {
	JSX       []JSXElement
	Templates []TemplateRegion
}
