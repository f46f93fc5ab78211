//go:build js && wasm

package main

import (
	"fmt"
	"strconv"
	"syscall/js"

	"bennypowers.dev/code-inspector/internal/inspector"
	"bennypowers.dev/code-inspector/internal/location"
)

// noticeTimeout is how long a notice stays visible, in milliseconds
const noticeTimeout = 2000

// overlay draws inspector views into a fixed, pointer-transparent layer
type overlay struct {
	root    js.Value
	cover   js.Value
	tooltip js.Value
	tree    js.Value
	header  js.Value
	rows    js.Value
	toggle  js.Value
	notice  js.Value

	// onNotice schedules clearing a newly shown notice
	onNotice   func()
	lastNotice *inspector.Notice
}

func newOverlay(doc js.Value) *overlay {
	el := func(parent js.Value, class string, css map[string]any) js.Value {
		n := doc.Call("createElement", "div")
		n.Set("className", class)
		style := n.Get("style")
		for k, v := range css {
			style.Set(k, v)
		}
		parent.Call("appendChild", n)
		return n
	}

	o := &overlay{}
	o.root = doc.Call("createElement", "div")
	o.root.Set("id", "code-inspector-overlay")
	rs := o.root.Get("style")
	rs.Set("position", "fixed")
	rs.Set("inset", "0")
	rs.Set("pointerEvents", "none")
	rs.Set("zIndex", "2147483647")
	rs.Set("font", "12px/1.5 ui-monospace, monospace")

	hidden := map[string]any{"position": "fixed", "display": "none"}
	o.cover = el(o.root, "code-inspector-cover", hidden)
	o.tooltip = el(o.root, "code-inspector-tooltip", map[string]any{
		"position": "fixed", "display": "none", "background": "#1e1e1e", "color": "#fff",
		"padding": "4px 8px", "borderRadius": "4px", "whiteSpace": "nowrap",
	})
	o.tree = el(o.root, "code-inspector-tree", map[string]any{
		"position": "fixed", "display": "none", "pointerEvents": "auto", "background": "#fff",
		"color": "#222", "boxShadow": "0 2px 12px rgba(0,0,0,.25)", "overflow": "auto",
	})
	o.header = el(o.tree, "code-inspector-tree-header", map[string]any{
		"cursor": "move", "padding": "6px 8px", "fontWeight": "bold", "borderBottom": "1px solid #ddd",
	})
	o.header.Set("textContent", "ancestors")
	o.rows = el(o.tree, "code-inspector-tree-rows", map[string]any{})
	o.toggle = el(o.root, "code-inspector-switch", map[string]any{
		"position": "fixed", "display": "none", "pointerEvents": "auto", "width": "32px", "height": "32px",
		"borderRadius": "50%", "cursor": "pointer", "background": "#42b883",
	})
	o.notice = el(o.root, "code-inspector-notice", map[string]any{
		"position": "fixed", "display": "none", "bottom": "16px", "left": "50%",
		"transform": "translateX(-50%)", "padding": "6px 12px", "borderRadius": "4px", "color": "#fff",
	})

	doc.Get("body").Call("appendChild", o.root)
	return o
}

func show(n js.Value, visible bool) {
	if visible {
		n.Get("style").Set("display", "block")
	} else {
		n.Get("style").Set("display", "none")
	}
}

func px(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64) + "px"
}

func place(n js.Value, left, top float64) {
	s := n.Get("style")
	s.Set("left", px(left))
	s.Set("top", px(top))
}

// Render implements inspector.Renderer
func (o *overlay) Render(v inspector.View) {
	show(o.cover, v.Cover != nil)
	if v.Cover != nil {
		place(o.cover, v.Cover.Box.Left, v.Cover.Box.Top)
		s := o.cover.Get("style")
		s.Set("width", px(v.Cover.Box.Width()))
		s.Set("height", px(v.Cover.Box.Height()))
		s.Set("background", v.Cover.Color)
	}

	show(o.tooltip, v.Tooltip != nil)
	if v.Tooltip != nil {
		o.tooltip.Set("textContent", tooltipText(v.Tooltip.Token, string(v.Tooltip.Action)))
		o.tooltip.Set("className", "code-inspector-tooltip "+v.Tooltip.Placement.Class())
		place(o.tooltip, v.Tooltip.Placement.Left, v.Tooltip.Placement.Top)
	}

	show(o.tree, v.Tree != nil)
	if v.Tree != nil {
		o.renderRows(v.Tree.Rows)
		place(o.tree, v.Tree.Position.X, v.Tree.Position.Y)
		o.tree.Get("style").Set("width", px(v.Tree.Size.Width))
	}

	show(o.toggle, v.Switch.Visible)
	if v.Switch.Visible {
		place(o.toggle, v.Switch.Position.X, v.Switch.Position.Y)
		opacity := "0.5"
		if v.Switch.Open {
			opacity = "1"
		}
		o.toggle.Get("style").Set("opacity", opacity)
	}

	show(o.notice, v.Notice != nil)
	if v.Notice != nil {
		o.notice.Set("textContent", v.Notice.Text)
		bg := "#42b883"
		if !v.Notice.OK {
			bg = "#e5484d"
		}
		o.notice.Get("style").Set("background", bg)
		if v.Notice != o.lastNotice && o.onNotice != nil {
			o.onNotice()
		}
	}
	o.lastNotice = v.Notice

	cursor := ""
	if v.Dragging {
		cursor = "move"
	}
	o.root.Get("style").Set("cursor", cursor)
}

func (o *overlay) renderRows(rows []*inspector.ElementNode) {
	o.rows.Set("textContent", "")
	doc := js.Global().Get("document")
	for n, row := range rows {
		r := doc.Call("createElement", "div")
		r.Set("className", "code-inspector-tree-row")
		r.Call("setAttribute", "data-index", n)
		r.Set("textContent", fmt.Sprintf("<%s> %s:%d:%d", row.Name, row.Path, row.Line, row.Column))
		s := r.Get("style")
		s.Set("paddingLeft", px(8+float64(row.Depth)*12))
		s.Set("cursor", "pointer")
		s.Set("whiteSpace", "nowrap")
		o.rows.Call("appendChild", r)
	}
}

// MeasureTooltip implements inspector.Measurer
func (o *overlay) MeasureTooltip(tok location.Token) inspector.Size {
	o.tooltip.Set("textContent", tooltipText(tok, ""))
	s := o.tooltip.Get("style")
	prevDisplay, prevVisibility := s.Get("display"), s.Get("visibility")
	s.Set("visibility", "hidden")
	s.Set("display", "block")
	size := inspector.Size{
		Width:  o.tooltip.Get("offsetWidth").Float(),
		Height: o.tooltip.Get("offsetHeight").Float(),
	}
	s.Set("display", prevDisplay)
	s.Set("visibility", prevVisibility)
	return size
}

func tooltipText(tok location.Token, action string) string {
	text := fmt.Sprintf("<%s> %s:%d:%d", tok.TagName, tok.Path, tok.Line, tok.Column)
	if action != "" {
		text += " [" + action + "]"
	}
	return text
}

// rowIndex finds the tree row an event landed on
func rowIndex(ev js.Value) (int, bool) {
	target := ev.Get("target")
	if !target.Truthy() || target.Get("closest").Type() != js.TypeFunction {
		return 0, false
	}
	row := target.Call("closest", "[data-index]")
	if !row.Truthy() {
		return 0, false
	}
	n, err := strconv.Atoi(row.Call("getAttribute", "data-index").String())
	return n, err == nil
}
