package tagger

import (
	"fmt"
	"strings"

	"bennypowers.dev/code-inspector/internal/location"
	htmlparser "bennypowers.dev/code-inspector/internal/parser/html"
	"bennypowers.dev/code-inspector/internal/parser/pug"
	"bennypowers.dev/code-inspector/internal/position"
)

// indentation tags an indentation-dialect block found at byte offset base of the file.
// The block is transpiled to bracketed markup, its elements are mapped back through
// the offset table, and every site is verified against the authored text before any
// attribute is written. A single failed translation skips the whole block.
func (j *job) indentation(text string, base int, ins location.Inserter) error {
	res, err := j.tagger.transpile(j.filePath, text)
	if err != nil {
		return NewParseError(j.filePath, Indentation, err)
	}

	parser := htmlparser.AcquireParser()
	elements, err := parser.Elements(res.HTML)
	htmlparser.ReleaseParser(parser)
	if err != nil {
		return NewParseError(j.filePath, Indentation, err)
	}

	lines := position.NewLineIndex(text)
	sites := make([]location.Site, 0, len(elements))
	for _, el := range elements {
		entry, err := res.Table.Translate(int(el.Row), int(el.Col))
		if err != nil {
			return NewParseError(j.filePath, Indentation, err)
		}

		name := entry.Name
		if name == "" {
			name = "div"
		}
		if !strings.EqualFold(name, el.TagName) {
			return NewParseError(j.filePath, Indentation, &pug.OffsetError{
				GeneratedLine: int(el.Row),
				GeneratedCol:  int(el.Col),
				Reason:        fmt.Sprintf("generated <%s> but authored %q", el.TagName, name),
			})
		}

		lineStart := lines.LineStart(entry.Line)
		authored := lines.Line(entry.Line)
		if lineStart < 0 || entry.InsertCol > len(authored) ||
			(entry.Name != "" && !strings.HasPrefix(authored[entry.NameCol:], entry.Name)) {
			return NewParseError(j.filePath, Indentation, &pug.OffsetError{
				GeneratedLine: int(el.Row),
				GeneratedCol:  int(el.Col),
				Reason:        fmt.Sprintf("line %d does not read %q at column %d", entry.Line+1, entry.Name, entry.NameCol),
			})
		}

		sites = append(sites, j.site(name, base+lineStart+entry.NameCol, lineStart+entry.InsertCol,
			el.HasAttribute(location.AttributeName)))
	}

	for _, site := range sites {
		if err := j.attach(ins, site, location.SyntaxPug); err != nil {
			return err
		}
	}
	return nil
}
