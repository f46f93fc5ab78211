package html

import (
	"fmt"
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_html "github.com/tree-sitter/tree-sitter-html/bindings/go"
)

// Parser finds element openings in HTML and template markup
type Parser struct {
	parser   *sitter.Parser
	tagQuery *sitter.Query
}

// Language is the shared tree-sitter HTML language
var Language = sitter.NewLanguage(tree_sitter_html.Language())

// parserPool is a pool of reusable HTML parsers
var parserPool = sync.Pool{
	New: func() any {
		parser := sitter.NewParser()
		if err := parser.SetLanguage(Language); err != nil {
			panic(fmt.Sprintf("failed to set HTML language: %v", err))
		}

		tagQuery, qerr := sitter.NewQuery(Language, `[(start_tag) (self_closing_tag)] @tag`)
		if qerr != nil {
			panic(fmt.Sprintf("failed to compile tag query: %v", qerr))
		}

		return &Parser{
			parser:   parser,
			tagQuery: tagQuery,
		}
	},
}

// AcquireParser gets a parser from the pool
func AcquireParser() *Parser {
	p := parserPool.Get().(*Parser)
	p.parser.Reset()
	return p
}

// ReleaseParser returns a parser to the pool
func ReleaseParser(p *Parser) {
	if p != nil {
		parserPool.Put(p)
	}
}

// Close closes the parser and releases its resources
func (p *Parser) Close() {
	if p.parser != nil {
		p.parser.Close()
	}
	if p.tagQuery != nil {
		p.tagQuery.Close()
	}
}

// ClosePool closes all parsers in the pool
func ClosePool() {
	for range 100 {
		if p, ok := parserPool.Get().(*Parser); ok && p != nil {
			p.Close()
		}
	}
}

// Elements returns every start or self-closing tag in source, in document order.
// Tree-sitter recovers from malformed markup; tags recovered inside an ERROR
// node are reported with InError set so callers can decide whether to trust them.
func (p *Parser) Elements(source string) ([]Element, error) {
	sourceBytes := []byte(source)
	tree := p.parser.Parse(sourceBytes, nil)
	if tree == nil {
		return nil, fmt.Errorf("tree-sitter returned no tree")
	}
	defer tree.Close()

	root := tree.RootNode()

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()

	var elements []Element
	matches := cursor.Matches(p.tagQuery, root, sourceBytes)
	for match := matches.Next(); match != nil; match = matches.Next() {
		for _, capture := range match.Captures {
			if el, ok := elementFromTag(&capture.Node, sourceBytes); ok {
				elements = append(elements, el)
			}
		}
	}

	return elements, nil
}

// elementFromTag reads the tag name and attribute names of a start_tag or self_closing_tag
func elementFromTag(tag *sitter.Node, sourceBytes []byte) (Element, bool) {
	var el Element
	found := false

	for i := uint(0); i < tag.ChildCount(); i++ {
		child := tag.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "tag_name":
			el.TagName = child.Utf8Text(sourceBytes)
			el.NameEnd = int(child.EndByte())
			el.Row = child.StartPosition().Row
			el.Col = child.StartPosition().Column
			found = true
		case "attribute":
			if name := child.NamedChild(0); name != nil && name.Kind() == "attribute_name" {
				el.Attributes = append(el.Attributes, name.Utf8Text(sourceBytes))
			}
		}
	}
	if !found || el.TagName == "" {
		return Element{}, false
	}

	el.Start = int(tag.StartByte())
	el.InError = insideError(tag)
	return el, true
}

func insideError(n *sitter.Node) bool {
	for cur := n.Parent(); cur != nil; cur = cur.Parent() {
		if cur.IsError() {
			return true
		}
	}
	return false
}
