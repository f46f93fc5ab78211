package location

import (
	"fmt"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// DefaultEscapeTags are framework built-ins that never render a DOM node of their own
var DefaultEscapeTags = []string{
	"template", "script", "style", "slot", "transition", "transition-group",
	"transitiongroup", "keep-alive", "keepalive", "component", "teleport",
	"suspense", "fragment", "react.fragment",
}

// Matcher decides whether a tag name is excluded from tagging.
// Literal entries compare case-insensitively; pattern entries are ECMAScript
// regular expressions tested against the lower-cased tag name.
type Matcher struct {
	literals []string
	patterns []*regexp2.Regexp
}

// NewMatcher builds a matcher. Entries written as /source/flags compile to patterns.
func NewMatcher(entries ...string) (*Matcher, error) {
	m := &Matcher{}
	for _, e := range entries {
		if isPatternLiteral(e) {
			re, err := CompilePattern(e)
			if err != nil {
				return nil, err
			}
			m.patterns = append(m.patterns, re)
			continue
		}
		m.literals = append(m.literals, strings.ToLower(e))
	}
	return m, nil
}

// DefaultMatcher returns a matcher over DefaultEscapeTags
func DefaultMatcher() *Matcher {
	m, _ := NewMatcher(DefaultEscapeTags...)
	return m
}

// Extend returns a new matcher holding m's entries plus the given ones
func (m *Matcher) Extend(entries ...string) (*Matcher, error) {
	extra, err := NewMatcher(entries...)
	if err != nil {
		return nil, err
	}
	if m != nil {
		extra.literals = append(append([]string{}, m.literals...), extra.literals...)
		extra.patterns = append(append([]*regexp2.Regexp{}, m.patterns...), extra.patterns...)
	}
	return extra, nil
}

// AddPattern appends an already compiled pattern
func (m *Matcher) AddPattern(re *regexp2.Regexp) {
	m.patterns = append(m.patterns, re)
}

// Match reports whether any entry matches tagName
func (m *Matcher) Match(tagName string) bool {
	if m == nil {
		return false
	}
	name := strings.ToLower(tagName)
	for _, lit := range m.literals {
		if lit == name {
			return true
		}
	}
	for _, re := range m.patterns {
		ok, err := re.MatchString(name)
		if err == nil && ok {
			return true
		}
	}
	return false
}

// Len returns the number of entries
func (m *Matcher) Len() int {
	if m == nil {
		return 0
	}
	return len(m.literals) + len(m.patterns)
}

func isPatternLiteral(s string) bool {
	return len(s) >= 2 && s[0] == '/' && strings.LastIndexByte(s, '/') > 0
}

// CompilePattern compiles a /source/flags literal. Supported flags are i, m and s;
// g and y are accepted and ignored since matching is a single test.
func CompilePattern(literal string) (*regexp2.Regexp, error) {
	end := strings.LastIndexByte(literal, '/')
	if literal == "" || literal[0] != '/' || end <= 0 {
		return nil, fmt.Errorf("escape pattern %q: expected /source/flags", literal)
	}
	source, flags := literal[1:end], literal[end+1:]

	opts := regexp2.RegexOptions(regexp2.ECMAScript)
	for _, f := range flags {
		switch f {
		case 'i':
			opts |= regexp2.IgnoreCase
		case 'm':
			opts |= regexp2.Multiline
		case 's':
			// ECMAScript mode in regexp2 rejects Singleline; fall back to default syntax.
			opts = (opts &^ regexp2.ECMAScript) | regexp2.Singleline
		case 'g', 'y', 'u':
		default:
			return nil, fmt.Errorf("escape pattern %q: unsupported flag %q", literal, f)
		}
	}

	re, err := regexp2.Compile(source, opts)
	if err != nil {
		return nil, fmt.Errorf("escape pattern %q: %w", literal, err)
	}
	re.MatchTimeout = 100 * time.Millisecond
	return re, nil
}
