//go:build js && wasm

package main

import (
	"syscall/js"

	"bennypowers.dev/code-inspector/internal/inspector"
)

type listener struct {
	target  js.Value
	event   string
	fn      js.Func
	capture bool
}

// binding owns every DOM listener so close can remove them
type binding struct {
	listeners []listener
}

func (b *binding) on(target js.Value, event string, capture bool, handle func(ev js.Value)) {
	fn := js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) > 0 {
			handle(args[0])
		}
		return nil
	})
	target.Call("addEventListener", event, fn, capture)
	b.listeners = append(b.listeners, listener{target: target, event: event, fn: fn, capture: capture})
}

func (b *binding) close() {
	for _, l := range b.listeners {
		l.target.Call("removeEventListener", l.event, l.fn, l.capture)
		l.fn.Release()
	}
	b.listeners = nil
}

// timeout runs f once after ms milliseconds
func (b *binding) timeout(ms int, f func()) {
	var fn js.Func
	fn = js.FuncOf(func(this js.Value, args []js.Value) any {
		fn.Release()
		f()
		return nil
	})
	js.Global().Call("setTimeout", fn, ms)
}

// bind forwards window and overlay events to the inspector. Page listeners use
// the capture phase so the page cannot swallow them first.
func bind(insp *inspector.Inspector, o *overlay) *binding {
	b := &binding{}
	win := js.Global()
	doc := win.Get("document")

	b.on(win, "keydown", true, func(ev js.Value) {
		apply(ev, insp.KeyDown(keyEvent(ev)))
	})
	b.on(win, "keyup", true, func(ev js.Value) {
		apply(ev, insp.KeyUp(keyEvent(ev)))
	})
	b.on(win, "pointermove", true, func(ev js.Value) {
		apply(ev, insp.PointerMove(pointerEvent(ev, o.root)))
	})
	b.on(doc, "mouseleave", false, func(js.Value) {
		insp.PointerLeave()
	})
	b.on(win, "blur", false, func(js.Value) {
		insp.PointerLeave()
	})
	b.on(win, "click", true, func(ev js.Value) {
		if o.root.Call("contains", ev.Get("target")).Bool() {
			return
		}
		apply(ev, insp.Click(pointerEvent(ev, o.root)))
	})
	b.on(win, "contextmenu", true, func(ev js.Value) {
		if o.root.Call("contains", ev.Get("target")).Bool() {
			ev.Call("preventDefault")
			return
		}
		apply(ev, insp.ContextMenu(pointerEvent(ev, o.root)))
	})
	b.on(win, "pointerup", true, func(ev js.Value) {
		insp.PointerUp(pointerEvent(ev, o.root))
	})
	b.on(win, "resize", false, func(js.Value) {
		insp.Resize(viewport())
	})

	b.on(o.toggle, "pointerdown", false, func(ev js.Value) {
		apply(ev, insp.PointerDown(inspector.DragSwitch, pointerEvent(ev, o.root)))
	})
	b.on(o.toggle, "click", false, func(ev js.Value) {
		apply(ev, insp.SwitchClick())
	})
	b.on(o.header, "pointerdown", false, func(ev js.Value) {
		apply(ev, insp.PointerDown(inspector.DragTree, pointerEvent(ev, o.root)))
	})
	b.on(o.rows, "mouseover", false, func(ev js.Value) {
		if n, ok := rowIndex(ev); ok {
			insp.HoverRow(n)
		}
	})
	b.on(o.rows, "click", false, func(ev js.Value) {
		if n, ok := rowIndex(ev); ok {
			ev.Call("stopPropagation")
			insp.ChooseRow(n)
		}
	})
	return b
}
