// Package location encodes and decodes the source-location tokens that the
// tagger injects into markup and the inspector reads back from the page.
package location

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// AttributeName is the attribute carrying a token on every tagged element.
// The tagger and the inspector runtime must agree on it exactly.
const AttributeName = "__location__"

// ErrMalformedToken is returned by Decode for strings that are not tokens
var ErrMalformedToken = errors.New("malformed location token")

// Token identifies the source origin of one rendered element.
// Line is 1-based; Column is 1-based in UTF-16 code units.
type Token struct {
	Path    string `json:"path"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	TagName string `json:"tagName"`
}

// Encode renders path:line:column:tagName. The path is never escaped.
func Encode(path string, line, column int, tagName string) string {
	return path + ":" + strconv.Itoa(line) + ":" + strconv.Itoa(column) + ":" + tagName
}

// String renders the token in its serialized form
func (t Token) String() string {
	return Encode(t.Path, t.Line, t.Column, t.TagName)
}

// Decode parses a serialized token. The path is everything before the last three
// colon-separated fields, so Windows drive letters survive.
func Decode(s string) (Token, error) {
	fields := make([]string, 3)
	rest := s
	for i := 2; i >= 0; i-- {
		idx := strings.LastIndexByte(rest, ':')
		if idx < 0 {
			return Token{}, fmt.Errorf("%w: %q", ErrMalformedToken, s)
		}
		fields[i] = rest[idx+1:]
		rest = rest[:idx]
	}
	if rest == "" {
		return Token{}, fmt.Errorf("%w: empty path in %q", ErrMalformedToken, s)
	}

	line, err := strconv.Atoi(fields[0])
	if err != nil || line < 0 {
		return Token{}, fmt.Errorf("%w: bad line in %q", ErrMalformedToken, s)
	}
	column, err := strconv.Atoi(fields[1])
	if err != nil || column < 0 {
		return Token{}, fmt.Errorf("%w: bad column in %q", ErrMalformedToken, s)
	}

	return Token{Path: rest, Line: line, Column: column, TagName: fields[2]}, nil
}
