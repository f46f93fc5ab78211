package inspector

import (
	"bennypowers.dev/code-inspector/internal/location"
)

// ElementNode is one tagged element in the ancestor tree
type ElementNode struct {
	Name     string
	Path     string
	Line     int
	Column   int
	Children []*ElementNode
	Element  Element
	Depth    int
}

// Token returns the node's location
func (n *ElementNode) Token() location.Token {
	return location.Token{Path: n.Path, Line: n.Line, Column: n.Column, TagName: n.Name}
}

// BuildTree builds the ancestor tree for a composed path (innermost first).
// Untagged elements are elided: the nearest tagged ancestor of a tagged element
// becomes its parent. Elements sharing a location keep separate nodes.
// Returns nil when nothing in the path is tagged.
func BuildTree(path []Element, locate Locator) *ElementNode {
	var root, parent *ElementNode
	for i := len(path) - 1; i >= 0; i-- {
		el := path[i]
		if el == nil {
			continue
		}
		tok, ok := locate(el)
		if !ok {
			continue
		}
		node := &ElementNode{
			Name:    tok.TagName,
			Path:    tok.Path,
			Line:    tok.Line,
			Column:  tok.Column,
			Element: el,
		}
		if parent == nil {
			root = node
		} else {
			node.Depth = parent.Depth + 1
			parent.Children = append(parent.Children, node)
		}
		parent = node
	}
	return root
}

// Rows flattens the tree depth-first into display order
func (n *ElementNode) Rows() []*ElementNode {
	if n == nil {
		return nil
	}
	rows := []*ElementNode{n}
	for _, c := range n.Children {
		rows = append(rows, c.Rows()...)
	}
	return rows
}
