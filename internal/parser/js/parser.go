package js

import (
	"errors"
	"fmt"
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// ErrSyntax is returned when the script contains syntax errors
var ErrSyntax = errors.New("syntax error")

// Parser finds element-construction sites in JS/TS source
type Parser struct {
	lang          Lang
	parser        *sitter.Parser
	jsxQuery      *sitter.Query // nil for plain TypeScript
	templateQuery *sitter.Query
	genericQuery  *sitter.Query // matches html<Type>`...` (misparsed by the JS grammar as binary_expression)
}

var languages = map[Lang]*sitter.Language{
	JavaScript: sitter.NewLanguage(tree_sitter_javascript.Language()),
	TypeScript: sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()),
	TSX:        sitter.NewLanguage(tree_sitter_typescript.LanguageTSX()),
}

// parserPools holds one pool of reusable parsers per grammar
var parserPools = map[Lang]*sync.Pool{
	JavaScript: newPool(JavaScript),
	TypeScript: newPool(TypeScript),
	TSX:        newPool(TSX),
}

func newPool(lang Lang) *sync.Pool {
	return &sync.Pool{
		New: func() any {
			return newParser(lang)
		},
	}
}

func newParser(lang Lang) *Parser {
	language := languages[lang]
	parser := sitter.NewParser()
	if err := parser.SetLanguage(language); err != nil {
		panic(fmt.Sprintf("failed to set %s language: %v", lang, err))
	}

	p := &Parser{lang: lang, parser: parser}

	if lang != TypeScript {
		jsxQuery, qerr := sitter.NewQuery(language, `[(jsx_opening_element) (jsx_self_closing_element)] @element`)
		if qerr != nil {
			panic(fmt.Sprintf("failed to compile JSX query: %v", qerr))
		}
		p.jsxQuery = jsxQuery
	}

	templateQuery, qerr := sitter.NewQuery(language, `
		(call_expression
			function: (identifier) @tag
			arguments: (template_string) @template)
	`)
	if qerr != nil {
		panic(fmt.Sprintf("failed to compile template query: %v", qerr))
	}
	p.templateQuery = templateQuery

	// The TypeScript grammars parse html<Type>`...` as a call with type arguments;
	// only the JS grammar needs the binary_expression form.
	if lang == JavaScript {
		genericQuery, qerr := sitter.NewQuery(language, `
			(binary_expression
				left: (binary_expression
					left: (identifier) @tag)
				right: (template_string) @template)
		`)
		if qerr != nil {
			panic(fmt.Sprintf("failed to compile generic query: %v", qerr))
		}
		p.genericQuery = genericQuery
	}

	return p
}

// AcquireParser gets a parser for the grammar from its pool
func AcquireParser(lang Lang) *Parser {
	pool, ok := parserPools[lang]
	if !ok {
		pool = parserPools[JavaScript]
	}
	p := pool.Get().(*Parser)
	p.parser.Reset()
	return p
}

// ReleaseParser returns a parser to its pool
func ReleaseParser(p *Parser) {
	if p != nil {
		parserPools[p.lang].Put(p)
	}
}

// Close closes the parser and releases its resources
func (p *Parser) Close() {
	if p.parser != nil {
		p.parser.Close()
	}
	for _, q := range []*sitter.Query{p.jsxQuery, p.templateQuery, p.genericQuery} {
		if q != nil {
			q.Close()
		}
	}
}

// ClosePool closes all parsers in every pool
func ClosePool() {
	for _, pool := range parserPools {
		for range 100 {
			if p, ok := pool.Get().(*Parser); ok && p != nil {
				p.Close()
			}
		}
	}
}

// Parse finds JSX elements and html tagged templates. A source with syntax
// errors yields ErrSyntax: recovered JSX nodes are not trusted for positions.
func (p *Parser) Parse(source string) (*Result, error) {
	sourceBytes := []byte(source)
	tree := p.parser.Parse(sourceBytes, nil)
	if tree == nil {
		return nil, fmt.Errorf("%w: tree-sitter returned no tree", ErrSyntax)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, fmt.Errorf("%w at %s", ErrSyntax, firstErrorPosition(root))
	}

	result := &Result{}
	if p.jsxQuery != nil {
		result.JSX = p.findJSX(root, sourceBytes)
	}
	for _, query := range []*sitter.Query{p.templateQuery, p.genericQuery} {
		if query != nil {
			result.Templates = runTemplateQuery(query, root, sourceBytes, result.Templates)
		}
	}
	return result, nil
}

func (p *Parser) findJSX(root *sitter.Node, sourceBytes []byte) []JSXElement {
	cursor := sitter.NewQueryCursor()
	defer cursor.Close()

	var elements []JSXElement
	matches := cursor.Matches(p.jsxQuery, root, sourceBytes)
	for match := matches.Next(); match != nil; match = matches.Next() {
		for _, capture := range match.Captures {
			if el, ok := jsxElement(&capture.Node, sourceBytes); ok {
				elements = append(elements, el)
			}
		}
	}
	return elements
}

// jsxElement reads one opening element. Fragments (<>) have no name and are skipped.
func jsxElement(node *sitter.Node, sourceBytes []byte) (JSXElement, bool) {
	name := node.ChildByFieldName("name")
	if name == nil {
		return JSXElement{}, false
	}

	el := JSXElement{
		TagName:  name.Utf8Text(sourceBytes),
		Start:    int(node.StartByte()),
		InsertAt: int(name.EndByte()),
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "type_arguments":
			// <Select<Option> ...>: the attribute goes after the type arguments
			el.InsertAt = int(child.EndByte())
		case "jsx_attribute":
			if attrName := child.NamedChild(0); attrName != nil {
				el.Attributes = append(el.Attributes, attrName.Utf8Text(sourceBytes))
			}
		}
	}
	return el, true
}

// runTemplateQuery executes a single tree-sitter query against the parsed tree,
// extracting html tagged template regions and appending them to regions.
func runTemplateQuery(query *sitter.Query, root *sitter.Node, sourceBytes []byte, regions []TemplateRegion) []TemplateRegion {
	cursor := sitter.NewQueryCursor()
	defer cursor.Close()

	matches := cursor.Matches(query, root, sourceBytes)
	for match := matches.Next(); match != nil; match = matches.Next() {
		var tagName string
		var templateNode sitter.Node
		foundTemplate := false

		for _, capture := range match.Captures {
			switch query.CaptureNames()[capture.Index] {
			case "tag":
				tagName = capture.Node.Utf8Text(sourceBytes)
			case "template":
				templateNode = capture.Node
				foundTemplate = true
			}
		}

		if tagName != "html" || !foundTemplate {
			continue
		}

		segments := extractSegments(&templateNode, sourceBytes)
		if len(segments) > 0 {
			regions = append(regions, TemplateRegion{
				Segments: segments,
				Tag:      tagName,
			})
		}
	}

	return regions
}

// extractSegments splits a template_string node into literal text segments
// (string_fragment nodes), skipping ${...} substitutions
func extractSegments(templateNode *sitter.Node, sourceBytes []byte) []Segment {
	var segments []Segment

	for i := uint(0); i < templateNode.ChildCount(); i++ {
		child := templateNode.Child(i)
		if child != nil && child.Kind() == "string_fragment" {
			segments = append(segments, Segment{
				Content:   child.Utf8Text(sourceBytes),
				StartByte: int(child.StartByte()),
				StartLine: child.StartPosition().Row,
				StartCol:  child.StartPosition().Column,
			})
		}
	}

	return segments
}

// firstErrorPosition describes where the first ERROR or MISSING node sits
func firstErrorPosition(n *sitter.Node) string {
	if n.IsError() || n.IsMissing() {
		pos := n.StartPosition()
		return fmt.Sprintf("%d:%d", pos.Row+1, pos.Column+1)
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child != nil && child.HasError() {
			return firstErrorPosition(child)
		}
	}
	return "unknown position"
}
