package inspector

import (
	"bennypowers.dev/code-inspector/internal/location"
)

// Element is a live node of the host page
type Element interface {
	Attribute(name string) (string, bool)
	BoundingRect() Rect
	TagName() string
}

// Locator reads a location from an element
type Locator func(Element) (location.Token, bool)

// AttributeLocator reads a token from the named attribute
func AttributeLocator(name string) Locator {
	return func(el Element) (location.Token, bool) {
		v, ok := el.Attribute(name)
		if !ok || v == "" {
			return location.Token{}, false
		}
		tok, err := location.Decode(v)
		if err != nil {
			return location.Token{}, false
		}
		return tok, true
	}
}

// resolver tries the tagger's attribute first, then an optional framework scheme
type resolver struct {
	primary   Locator
	framework Locator
}

func (r resolver) locate(el Element) (location.Token, bool) {
	if el == nil {
		return location.Token{}, false
	}
	if tok, ok := r.primary(el); ok {
		return tok, true
	}
	if r.framework != nil {
		return r.framework(el)
	}
	return location.Token{}, false
}

// Target is an element resolved to its location
type Target struct {
	Element Element
	Token   location.Token
}

// first returns the innermost tagged element of a composed path (innermost first)
func (r resolver) first(path []Element) (Target, bool) {
	for _, el := range path {
		if tok, ok := r.locate(el); ok {
			return Target{Element: el, Token: tok}, true
		}
	}
	return Target{}, false
}
