//go:build js && wasm

package main

import (
	"strings"
	"syscall/js"

	"bennypowers.dev/code-inspector/internal/inspector"
)

const elementNode = 1

// domElement adapts a DOM element to inspector.Element
type domElement struct {
	v js.Value
}

func (e domElement) Attribute(name string) (string, bool) {
	if !e.v.Call("hasAttribute", name).Bool() {
		return "", false
	}
	return e.v.Call("getAttribute", name).String(), true
}

func (e domElement) BoundingRect() inspector.Rect {
	r := e.v.Call("getBoundingClientRect")
	return inspector.Rect{
		Left:   r.Get("left").Float(),
		Top:    r.Get("top").Float(),
		Right:  r.Get("right").Float(),
		Bottom: r.Get("bottom").Float(),
	}
}

func (e domElement) TagName() string {
	return strings.ToLower(e.v.Get("tagName").String())
}

// composedPath returns the event's element path, innermost first, skipping
// text nodes, the document and the window. Events inside the overlay have no path.
func composedPath(ev js.Value, layer js.Value) []inspector.Element {
	if ev.Get("composedPath").Type() != js.TypeFunction {
		return ancestors(ev.Get("target"), layer)
	}
	raw := ev.Call("composedPath")
	n := raw.Length()
	path := make([]inspector.Element, 0, n)
	for i := 0; i < n; i++ {
		node := raw.Index(i)
		if node.Get("nodeType").Int() != elementNode {
			continue
		}
		if layer.Truthy() && layer.Call("contains", node).Bool() {
			return nil
		}
		path = append(path, domElement{v: node})
	}
	return path
}

func ancestors(node js.Value, layer js.Value) []inspector.Element {
	var path []inspector.Element
	for node.Truthy() {
		if node.Get("nodeType").Int() == elementNode {
			if layer.Truthy() && layer.Call("contains", node).Bool() {
				return nil
			}
			path = append(path, domElement{v: node})
		}
		node = node.Get("parentNode")
	}
	return path
}

func modifiers(ev js.Value) inspector.Modifiers {
	return inspector.Modifiers{
		Shift: ev.Get("shiftKey").Bool(),
		Alt:   ev.Get("altKey").Bool(),
		Ctrl:  ev.Get("ctrlKey").Bool(),
		Meta:  ev.Get("metaKey").Bool(),
	}
}

func pointerEvent(ev js.Value, layer js.Value) inspector.PointerEvent {
	return inspector.PointerEvent{
		Client:    inspector.Point{X: ev.Get("clientX").Float(), Y: ev.Get("clientY").Float()},
		Page:      inspector.Point{X: ev.Get("pageX").Float(), Y: ev.Get("pageY").Float()},
		Modifiers: modifiers(ev),
		Path:      composedPath(ev, layer),
	}
}

func keyEvent(ev js.Value) inspector.KeyEvent {
	code := ev.Get("code")
	if code.Type() != js.TypeString {
		code = js.ValueOf("")
	}
	return inspector.KeyEvent{Key: ev.Get("key").String(), Code: code.String(), Modifiers: modifiers(ev)}
}

func apply(ev js.Value, h inspector.Handled) {
	if h.PreventDefault {
		ev.Call("preventDefault")
	}
	if h.StopPropagation {
		ev.Call("stopPropagation")
	}
}

func viewport() inspector.Size {
	w := js.Global()
	return inspector.Size{
		Width:  w.Get("innerWidth").Float(),
		Height: w.Get("innerHeight").Float(),
	}
}
