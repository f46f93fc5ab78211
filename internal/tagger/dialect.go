package tagger

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Dialect is one of the closed set of template syntaxes the tagger understands
type Dialect int

const (
	// DialectAuto picks the dialect from the file extension
	DialectAuto Dialect = iota
	// EmbeddedMarkup is JS/TS containing JSX or html tagged templates
	EmbeddedMarkup
	// SFCTemplate is a single-file component whose template block is tagged
	SFCTemplate
	// Indentation is the indentation-based (pug) template dialect
	Indentation
)

var dialectNames = map[Dialect]string{
	DialectAuto:    "auto",
	EmbeddedMarkup: "markup",
	SFCTemplate:    "sfc",
	Indentation:    "pug",
}

// String returns the dialect's flag name
func (d Dialect) String() string {
	if name, ok := dialectNames[d]; ok {
		return name
	}
	return fmt.Sprintf("dialect(%d)", int(d))
}

// ParseDialect converts a flag value into a Dialect
func ParseDialect(s string) (Dialect, error) {
	for d, name := range dialectNames {
		if strings.EqualFold(s, name) {
			return d, nil
		}
	}
	switch strings.ToLower(s) {
	case "jsx", "tsx", "js", "ts":
		return EmbeddedMarkup, nil
	case "vue":
		return SFCTemplate, nil
	case "jade", "indentation":
		return Indentation, nil
	}
	return DialectAuto, fmt.Errorf("unknown dialect %q", s)
}

var extensionDialects = map[string]Dialect{
	".js":   EmbeddedMarkup,
	".jsx":  EmbeddedMarkup,
	".mjs":  EmbeddedMarkup,
	".cjs":  EmbeddedMarkup,
	".ts":   EmbeddedMarkup,
	".tsx":  EmbeddedMarkup,
	".mts":  EmbeddedMarkup,
	".cts":  EmbeddedMarkup,
	".vue":  SFCTemplate,
	".pug":  Indentation,
	".jade": Indentation,
}

// DetectDialect maps a file path to its dialect by extension
func DetectDialect(filePath string) (Dialect, bool) {
	d, ok := extensionDialects[strings.ToLower(filepath.Ext(filePath))]
	return d, ok
}
