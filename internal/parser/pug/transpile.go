// Package pug handles the indentation-based template dialect: it transpiles a
// block to bracketed markup and records where every generated line came from.
package pug

import (
	"errors"
	"fmt"
	"strings"

	"bennypowers.dev/code-inspector/internal/location"
)

// ErrSyntax is returned for input the transpiler cannot read
var ErrSyntax = errors.New("pug syntax error")

// SyntaxError carries the original line of a transpile failure
type SyntaxError struct {
	Line   int
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line+1, e.Reason)
}

func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}

// Result is the bracketed form of an indentation-based block
type Result struct {
	HTML  string
	Table *OffsetTable
}

// Detect reports whether a block's lang hint names the indentation dialect
func Detect(lang string) bool {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "pug", "jade":
		return true
	}
	return false
}

var keywords = map[string]bool{
	"if": true, "else": true, "unless": true, "each": true, "for": true, "while": true,
	"case": true, "when": true, "default": true, "block": true, "extends": true,
	"include": true, "mixin": true, "append": true, "prepend": true, "yield": true,
	"doctype": true,
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true, "hr": true,
	"img": true, "input": true, "link": true, "meta": true, "param": true,
	"source": true, "track": true, "wbr": true,
}

// frame is an open element awaiting its closing tag; name is empty for
// control lines (if, each, mixin calls, code) that only scope their children
type frame struct {
	indent int
	name   string
}

type transpiler struct {
	lines   []string
	out     []string
	entries []Entry
	stack   []frame
}

// Transpile converts an indentation-based block to bracketed markup. Every element
// is emitted on its own generated line and closing tags get lines of their own, so
// generated and original line numbers diverge; the returned table maps them back.
func Transpile(src string) (*Result, error) {
	lines := strings.Split(src, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}

	tp := &transpiler{lines: lines}
	if err := tp.run(); err != nil {
		return nil, err
	}

	return &Result{
		HTML:  strings.Join(tp.out, "\n"),
		Table: &OffsetTable{entries: tp.entries, originalLines: len(lines)},
	}, nil
}

func (tp *transpiler) run() error {
	for i := 0; i < len(tp.lines); i++ {
		line := tp.lines[i]
		trimmed := strings.TrimLeft(line, " \t")
		if strings.TrimSpace(trimmed) == "" {
			continue
		}

		indentText := line[:len(line)-len(trimmed)]
		if strings.Contains(indentText, " ") && strings.Contains(indentText, "\t") {
			return &SyntaxError{Line: i, Reason: "indentation mixes tabs and spaces"}
		}
		indent := len(indentText)
		tp.closeTo(indent)

		switch {
		case strings.HasPrefix(trimmed, "//"):
			if !strings.HasPrefix(trimmed, "//-") {
				tp.emit("<!-- "+escapeComment(strings.TrimSpace(trimmed[2:]))+" -->", Entry{Line: i})
			}
			i = tp.skipBlock(i, indent)
		case strings.HasPrefix(trimmed, "|"):
			tp.emit(escapeText(strings.TrimPrefix(trimmed[1:], " ")), Entry{Line: i})
		case strings.HasPrefix(trimmed, "<"):
			tp.emit(escapeText(trimmed), Entry{Line: i})
		case strings.HasPrefix(trimmed, ":"):
			// filters (:markdown) own their nested block as raw text
			i = tp.skipBlock(i, indent)
		case strings.HasPrefix(trimmed, "-"), strings.HasPrefix(trimmed, "="),
			strings.HasPrefix(trimmed, "!="), strings.HasPrefix(trimmed, "+"):
			tp.push(frame{indent: indent})
		case isKeywordLine(trimmed):
			if !strings.HasPrefix(trimmed, "doctype") {
				tp.push(frame{indent: indent})
			}
		default:
			last, err := tp.element(i, indent, indent)
			if err != nil {
				return err
			}
			i = last
		}
	}
	tp.closeTo(0)
	return nil
}

// element reads the element starting at byte column col of line i and returns the
// last original line it consumed (attribute blocks and text blocks span lines).
func (tp *transpiler) element(i, col, indent int) (int, error) {
	line := tp.lines[i]
	entry := Entry{Line: i, Element: true, NameCol: col}
	pos := col

	if pos < len(line) && isLetter(line[pos]) {
		end := scanTagName(line, pos)
		entry.Name = line[pos:end]
		entry.InsertCol = end
		pos = end
	}

	tagged := false
	shorthand := false
	cur := i

chain:
	for pos < len(line) {
		switch c := line[pos]; {
		case c == '.' || c == '#':
			end := scanIdent(line, pos+1)
			if end == pos+1 {
				break chain
			}
			if entry.Name == "" && !shorthand {
				entry.InsertCol = end
			}
			shorthand = true
			pos = end
		case c == '(':
			text, endLine, endPos, err := tp.scanAttrs(cur, pos)
			if err != nil {
				return 0, err
			}
			if strings.Contains(text, location.AttributeName) {
				tagged = true
			}
			cur, pos = endLine, endPos
			line = tp.lines[cur]
		case strings.HasPrefix(line[pos:], "&attributes("):
			_, endLine, endPos, err := tp.scanAttrs(cur, pos+len("&attributes"))
			if err != nil {
				return 0, err
			}
			cur, pos = endLine, endPos
			line = tp.lines[cur]
		default:
			break chain
		}
	}

	if entry.Name == "" && !shorthand {
		return 0, &SyntaxError{Line: i, Reason: fmt.Sprintf("unexpected %q", line[col:])}
	}

	rest := line[pos:]
	selfClosing := false
	textBlock := false
	inline := ""
	expansion := -1

	switch {
	case rest == "":
	case rest[0] == '.' && strings.TrimSpace(rest) == ".":
		textBlock = true
	case strings.HasPrefix(rest, "/"):
		selfClosing = true
	case strings.HasPrefix(rest, ": "), rest == ":":
		expansion = pos + 1
		for expansion < len(line) && line[expansion] == ' ' {
			expansion++
		}
	case strings.HasPrefix(rest, "="), strings.HasPrefix(rest, "!="):
	case rest[0] == ' ':
		inline = escapeText(rest[1:])
	default:
		return 0, &SyntaxError{Line: cur, Reason: fmt.Sprintf("unexpected %q after element", rest)}
	}

	name := entry.Name
	if name == "" {
		name = "div"
	}
	void := voidElements[strings.ToLower(name)]

	depth := strings.Repeat("  ", len(tp.stack))
	var b strings.Builder
	b.WriteString(depth)
	b.WriteString("<")
	b.WriteString(name)
	if tagged {
		b.WriteString(" " + location.AttributeName + `=""`)
	}
	if selfClosing {
		b.WriteString("/>")
	} else {
		b.WriteString(">")
	}
	b.WriteString(inline)

	entry.GenCol = len(depth) + 1
	tp.emit(b.String(), entry)

	if !selfClosing && !void {
		tp.push(frame{indent: indent, name: name})
	} else {
		// void and self-closing elements still scope nested lines
		tp.push(frame{indent: indent})
	}

	if expansion >= 0 && expansion < len(line) {
		return tp.element(cur, expansion, indent)
	}
	if textBlock {
		return tp.textBlock(cur, indent), nil
	}
	return cur, nil
}

// scanAttrs reads a parenthesized attribute block starting at '(' on line i,
// following it across lines. Returns the block text and the position after ')'.
func (tp *transpiler) scanAttrs(i, pos int) (string, int, int, error) {
	var b strings.Builder
	depth := 0
	var quote byte

	for cur := i; cur < len(tp.lines); cur++ {
		line := tp.lines[cur]
		start := 0
		if cur == i {
			start = pos
		} else {
			b.WriteByte('\n')
		}
		for j := start; j < len(line); j++ {
			c := line[j]
			b.WriteByte(c)
			switch {
			case quote != 0:
				if c == '\\' && j+1 < len(line) {
					j++
					b.WriteByte(line[j])
				} else if c == quote {
					quote = 0
				}
			case c == '"' || c == '\'' || c == '`':
				quote = c
			case c == '(':
				depth++
			case c == ')':
				depth--
				if depth == 0 {
					return b.String(), cur, j + 1, nil
				}
			}
		}
	}
	return "", 0, 0, &SyntaxError{Line: i, Reason: "unterminated attribute block"}
}

// textBlock emits every line nested under indent as text and returns the last one
func (tp *transpiler) textBlock(i, indent int) int {
	last := i
	for j := i + 1; j < len(tp.lines); j++ {
		line := tp.lines[j]
		if strings.TrimSpace(line) == "" {
			continue
		}
		if indentOf(line) <= indent {
			break
		}
		tp.emit(escapeText(strings.TrimLeft(line, " \t")), Entry{Line: j})
		last = j
	}
	return last
}

// skipBlock returns the last line nested under indent
func (tp *transpiler) skipBlock(i, indent int) int {
	last := i
	for j := i + 1; j < len(tp.lines); j++ {
		line := tp.lines[j]
		if strings.TrimSpace(line) == "" {
			continue
		}
		if indentOf(line) <= indent {
			break
		}
		last = j
	}
	return last
}

func (tp *transpiler) emit(text string, entry Entry) {
	tp.out = append(tp.out, text)
	tp.entries = append(tp.entries, entry)
}

func (tp *transpiler) push(f frame) {
	tp.stack = append(tp.stack, f)
}

// closeTo pops every frame opened at or deeper than indent, emitting closing tags
// on synthesized lines
func (tp *transpiler) closeTo(indent int) {
	for len(tp.stack) > 0 {
		top := tp.stack[len(tp.stack)-1]
		if top.indent < indent {
			return
		}
		tp.stack = tp.stack[:len(tp.stack)-1]
		if top.name != "" {
			tp.emit(strings.Repeat("  ", len(tp.stack))+"</"+top.name+">", Entry{Line: -1})
		}
	}
}

func isKeywordLine(s string) bool {
	end := 0
	for end < len(s) && isLetter(s[end]) {
		end++
	}
	if !keywords[s[:end]] {
		return false
	}
	return end == len(s) || s[end] == ' '
}

func indentOf(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isWord(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// scanTagName matches \w(?:[-:\w]*\w)? so that "a: b" stops before the colon
func scanTagName(line string, pos int) int {
	end := pos
	for end < len(line) && (isWord(line[end]) || line[end] == '-' || line[end] == ':') {
		end++
	}
	for end > pos+1 && (line[end-1] == '-' || line[end-1] == ':') {
		end--
	}
	return end
}

func scanIdent(line string, pos int) int {
	end := pos
	for end < len(line) && (isWord(line[end]) || line[end] == '-') {
		end++
	}
	return end
}

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escapeText(s string) string {
	return textEscaper.Replace(s)
}

func escapeComment(s string) string {
	return strings.ReplaceAll(s, "--", "- -")
}
