package location

// Syntax selects how an attribute is written into a host template
type Syntax int

const (
	// SyntaxMarkup writes ` name="value"` after a bracketed tag name (HTML, JSX, Vue)
	SyntaxMarkup Syntax = iota
	// SyntaxPug writes `(name="value")` after an indentation-dialect tag name
	SyntaxPug
)

// Attribute renders the text inserted immediately after a tag name
func Attribute(value string, syntax Syntax) string {
	switch syntax {
	case SyntaxPug:
		return "(" + AttributeName + `="` + value + `")`
	default:
		return " " + AttributeName + `="` + value + `"`
	}
}

// Site is an element opening found by a dialect parser
type Site struct {
	// TagName as written in source
	TagName string
	// InsertAt is the byte offset immediately after the tag name
	InsertAt int
	// Line is the 1-based line of the element opening in the authored file
	Line int
	// Column is the 1-based UTF-16 column of the element opening ('<', or the
	// tag name in the indentation dialect)
	Column int
	// Tagged is set when the element already carries AttributeName
	Tagged bool
}

// Token builds the token for a site in the given file
func (s Site) Token(path string) Token {
	return Token{Path: path, Line: s.Line, Column: s.Column, TagName: s.TagName}
}

// Inserter receives attribute insertions keyed by original byte offsets
type Inserter interface {
	Insert(offset int, text string) error
}

// Attach writes the site's attribute into buf unless the tag is escaped or already tagged.
// Reports whether an attribute was emitted. Skipping a site never affects its children;
// parsers report every element independently.
func Attach(buf Inserter, path string, site Site, escape *Matcher, syntax Syntax) (bool, error) {
	if site.Tagged || site.TagName == "" {
		return false, nil
	}
	if escape != nil && escape.Match(site.TagName) {
		return false, nil
	}
	if err := buf.Insert(site.InsertAt, Attribute(site.Token(path).String(), syntax)); err != nil {
		return false, err
	}
	return true, nil
}
