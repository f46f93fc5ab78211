// Package sfc splits a single-file component into its top-level blocks.
package sfc

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	htmlparser "bennypowers.dev/code-inspector/internal/parser/html"
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// ErrUnterminatedBlock is returned when a top-level block has no closing tag
var ErrUnterminatedBlock = errors.New("unterminated block")

// Block is one top-level block of a component file
type Block struct {
	// Type is the block tag: template, script, style, or a custom block name
	Type string
	// Attrs holds the block's attributes; boolean attributes map to ""
	Attrs map[string]string
	// Start and End delimit the block content in bytes
	Start int
	End   int
	// Line is the 0-based line where the content starts
	Line int
}

// Lang returns the lang attribute, lower-cased
func (b *Block) Lang() string {
	return strings.ToLower(b.Attrs["lang"])
}

// Content returns the block text from the file source
func (b *Block) Content(source string) string {
	return source[b.Start:b.End]
}

// Descriptor is the structural view of a component file
type Descriptor struct {
	Template *Block
	Scripts  []Block
	Styles   []Block
	Custom   []Block
}

var (
	templateOpen  = regexp.MustCompile(`(?mi)^<template\b[^>]*>`)
	templateClose = regexp.MustCompile(`(?mi)^</template\s*>`)
	langAttr      = regexp.MustCompile(`(?i)\blang\s*=\s*["']?([\w-]+)`)
)

// maskForeignTemplate blanks the content of a top-level template block whose
// lang is not HTML, keeping newlines and byte length. Its text is not markup,
// so a '<' inside it would otherwise derail the HTML parse of the whole file.
// The block ends at the last line-leading </template>.
func maskForeignTemplate(source string) string {
	open := templateOpen.FindStringIndex(source)
	if open == nil {
		return source
	}
	m := langAttr.FindStringSubmatch(source[open[0]:open[1]])
	if m == nil || strings.EqualFold(m[1], "html") {
		return source
	}
	closes := templateClose.FindAllStringIndex(source[open[1]:], -1)
	if len(closes) == 0 {
		return source
	}
	end := open[1] + closes[len(closes)-1][0]

	b := []byte(source)
	for i := open[1]; i < end; i++ {
		if b[i] != '\n' && b[i] != '\r' {
			b[i] = ' '
		}
	}
	return string(b)
}

// Parse reads the top-level blocks of a component file. Only the first
// template block is kept, matching how component compilers treat duplicates.
func Parse(source string) (*Descriptor, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(htmlparser.Language); err != nil {
		return nil, fmt.Errorf("failed to set HTML language: %w", err)
	}

	sourceBytes := []byte(maskForeignTemplate(source))
	tree := parser.Parse(sourceBytes, nil)
	if tree == nil {
		return nil, fmt.Errorf("tree-sitter returned no tree")
	}
	defer tree.Close()

	root := tree.RootNode()
	desc := &Descriptor{}

	for i := uint(0); i < root.NamedChildCount(); i++ {
		node := root.NamedChild(i)
		if node == nil {
			continue
		}
		switch node.Kind() {
		case "element", "script_element", "style_element":
		default:
			continue
		}

		block, err := readBlock(node, sourceBytes)
		if err != nil {
			return nil, err
		}
		if block == nil {
			continue
		}

		switch block.Type {
		case "template":
			if desc.Template == nil {
				desc.Template = block
			}
		case "script":
			desc.Scripts = append(desc.Scripts, *block)
		case "style":
			desc.Styles = append(desc.Styles, *block)
		default:
			desc.Custom = append(desc.Custom, *block)
		}
	}

	return desc, nil
}

func readBlock(node *sitter.Node, sourceBytes []byte) (*Block, error) {
	var start, end *sitter.Node
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "start_tag":
			start = child
		case "end_tag":
			end = child
		}
	}
	if start == nil {
		// self-closing top-level tags carry no content
		return nil, nil
	}

	block := &Block{Attrs: map[string]string{}}
	for i := uint(0); i < start.NamedChildCount(); i++ {
		child := start.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "tag_name":
			block.Type = strings.ToLower(child.Utf8Text(sourceBytes))
		case "attribute":
			name, value := readAttribute(child, sourceBytes)
			if name != "" {
				block.Attrs[name] = value
			}
		}
	}

	if end == nil {
		pos := start.StartPosition()
		return nil, fmt.Errorf("%w: <%s> at %d:%d", ErrUnterminatedBlock, block.Type, pos.Row+1, pos.Column+1)
	}

	block.Start = int(start.EndByte())
	block.End = int(end.StartByte())
	block.Line = int(start.EndPosition().Row)
	return block, nil
}

func readAttribute(attr *sitter.Node, sourceBytes []byte) (string, string) {
	var name, value string
	for i := uint(0); i < attr.NamedChildCount(); i++ {
		child := attr.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "attribute_name":
			name = strings.ToLower(child.Utf8Text(sourceBytes))
		case "attribute_value":
			value = child.Utf8Text(sourceBytes)
		case "quoted_attribute_value":
			value = strings.Trim(child.Utf8Text(sourceBytes), `"'`)
		}
	}
	return name, value
}
