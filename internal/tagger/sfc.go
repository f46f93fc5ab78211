package tagger

import (
	"fmt"
	"strings"

	"bennypowers.dev/code-inspector/internal/parser/pug"
	"bennypowers.dev/code-inspector/internal/parser/sfc"
)

// sfc tags the template block of a single-file component. Script and style
// blocks are left untouched.
func (j *job) sfc() error {
	desc, err := sfc.Parse(j.content)
	if err != nil {
		return NewParseError(j.filePath, SFCTemplate, err)
	}
	block := desc.Template
	if block == nil {
		return nil
	}

	text := block.Content(j.content)
	shifted := j.buf.Shifted(block.Start)

	lang := block.Lang()
	switch {
	case pug.Detect(lang):
		return j.indentation(text, block.Start, shifted)
	case lang == "" || strings.EqualFold(lang, "html"):
		return j.markup(text, block.Start, shifted, markupTemplate)
	default:
		return NewParseError(j.filePath, SFCTemplate, fmt.Errorf("%w: template lang %q", ErrUnsupported, lang))
	}
}
