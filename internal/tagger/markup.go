package tagger

import (
	"fmt"
	"path/filepath"
	"strings"

	"bennypowers.dev/code-inspector/internal/location"
	htmlparser "bennypowers.dev/code-inspector/internal/parser/html"
	"bennypowers.dev/code-inspector/internal/parser/js"
)

// scriptLang picks the grammar for a script file by extension
func scriptLang(filePath string) js.Lang {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".ts", ".mts", ".cts":
		return js.TypeScript
	case ".tsx":
		return js.TSX
	default:
		return js.JavaScript
	}
}

// script tags JSX elements and the markup inside html`...` templates
func (j *job) script() error {
	parser := js.AcquireParser(scriptLang(j.filePath))
	defer js.ReleaseParser(parser)

	result, err := parser.Parse(j.content)
	if err != nil {
		return NewParseError(j.filePath, EmbeddedMarkup, err)
	}

	for _, el := range result.JSX {
		site := j.site(el.TagName, el.Start, el.InsertAt, el.HasAttribute(location.AttributeName))
		if err := j.attach(j.buf, site, location.SyntaxMarkup); err != nil {
			return err
		}
	}

	for _, tmpl := range result.Templates {
		for _, seg := range tmpl.Segments {
			if err := j.markup(seg.Content, seg.StartByte, j.buf.Shifted(seg.StartByte), markupFragment); err != nil {
				return err
			}
		}
	}
	return nil
}

// markupKind says how much of a document the markup text is
type markupKind int

const (
	// markupFragment is a piece of a tagged template literal, cut at ${} holes.
	// Tree-sitter error recovery is expected and tolerated.
	markupFragment markupKind = iota
	// markupTemplate is a whole component template. {{ }} interpolations are
	// JavaScript, and tags recovered inside an ERROR node are not trusted.
	markupTemplate
)

// markup tags bracketed elements in text, which starts at byte offset base of the file.
// Elements tree-sitter recovered are kept only when the source at their offsets
// really reads "<name".
func (j *job) markup(text string, base int, ins location.Inserter, kind markupKind) error {
	parser := htmlparser.AcquireParser()
	defer htmlparser.ReleaseParser(parser)

	parsed := text
	if kind == markupTemplate {
		parsed = blankInterpolations(text)
	}
	elements, err := parser.Elements(parsed)
	if err != nil {
		return fmt.Errorf("markup at offset %d: %w", base, err)
	}

	for _, el := range elements {
		if kind == markupTemplate && el.InError {
			continue
		}
		if el.Start >= len(parsed) || parsed[el.Start] != '<' || !hasName(parsed, el.NameEnd, el.TagName) {
			continue
		}
		site := j.site(el.TagName, base+el.Start, el.NameEnd, el.HasAttribute(location.AttributeName))
		if err := j.attach(ins, site, location.SyntaxMarkup); err != nil {
			return err
		}
	}
	return nil
}

// blankInterpolations replaces every {{ ... }} span with spaces of the same
// byte length, keeping newlines, so offsets into the result match text.
// An unclosed {{ blanks to the end.
func blankInterpolations(text string) string {
	if !strings.Contains(text, "{{") {
		return text
	}
	b := []byte(text)
	for i := 0; i+1 < len(b); i++ {
		if b[i] != '{' || b[i+1] != '{' {
			continue
		}
		end := strings.Index(text[i+2:], "}}")
		stop := len(b)
		if end >= 0 {
			stop = i + 2 + end + 2
		}
		for k := i; k < stop; k++ {
			if b[k] != '\n' && b[k] != '\r' {
				b[k] = ' '
			}
		}
		i = stop - 1
	}
	return string(b)
}
