package html

// Element is an opening tag found in HTML or template markup.
// Offsets are bytes into the parsed source.
type Element struct {
	// TagName is the tag name as written
	TagName string
	// Start is the byte offset of the opening '<'
	Start int
	// NameEnd is the byte offset immediately after the tag name
	NameEnd int
	// Row and Col are the 0-based row and byte column of the tag name
	Row uint
	Col uint
	// Attributes holds the attribute names present on the tag
	Attributes []string
	// InError is set when tree-sitter recovered the tag inside an ERROR node
	InError bool
}

// HasAttribute reports whether the tag carries an attribute with the given name
func (e Element) HasAttribute(name string) bool {
	for _, a := range e.Attributes {
		if a == name {
			return true
		}
	}
	return false
}
