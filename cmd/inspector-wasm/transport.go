//go:build js && wasm

package main

import (
	"errors"
	"syscall/js"

	"bennypowers.dev/code-inspector/internal/dispatch"
)

var errNoClipboard = errors.New("clipboard API unavailable")

// xhrBeacon sends the locate request with XMLHttpRequest
type xhrBeacon struct{}

func (xhrBeacon) Send(url string, onError func(error)) {
	xhr := js.Global().Get("XMLHttpRequest").New()
	failed := false
	var onFail, onEnd js.Func
	onFail = js.FuncOf(func(this js.Value, args []js.Value) any {
		failed = true
		return nil
	})
	onEnd = js.FuncOf(func(this js.Value, args []js.Value) any {
		onFail.Release()
		onEnd.Release()
		if failed {
			onError(errors.New("locate request failed"))
		}
		return nil
	})
	xhr.Set("onerror", onFail)
	xhr.Set("onloadend", onEnd)
	xhr.Call("open", "GET", url, true)
	xhr.Call("send")
}

// imageBeacon requests the URL as an image source, which content policies
// that block XHR usually still allow
type imageBeacon struct{}

func (imageBeacon) Send(url string) {
	img := js.Global().Get("Image").New()
	img.Set("src", url)
}

// asyncClipboard is navigator.clipboard
type asyncClipboard struct{}

func (asyncClipboard) WriteText(text string, done func(error)) error {
	clip := js.Global().Get("navigator").Get("clipboard")
	if !clip.Truthy() || clip.Get("writeText").Type() != js.TypeFunction {
		return errNoClipboard
	}
	var resolve, reject js.Func
	release := func() {
		resolve.Release()
		reject.Release()
	}
	resolve = js.FuncOf(func(this js.Value, args []js.Value) any {
		release()
		done(nil)
		return nil
	})
	reject = js.FuncOf(func(this js.Value, args []js.Value) any {
		release()
		msg := "clipboard write rejected"
		if len(args) > 0 && args[0].Truthy() {
			msg = args[0].Call("toString").String()
		}
		done(errors.New(msg))
		return nil
	})
	clip.Call("writeText", text).Call("then", resolve, reject)
	return nil
}

// selectionClipboard copies through a hidden textarea
type selectionClipboard struct{}

func (selectionClipboard) CopyViaSelection(text string) bool {
	doc := js.Global().Get("document")
	ta := doc.Call("createElement", "textarea")
	ta.Set("value", text)
	ta.Call("setAttribute", "readonly", "")
	style := ta.Get("style")
	style.Set("position", "fixed")
	style.Set("opacity", "0")
	style.Set("left", "-9999px")
	doc.Get("body").Call("appendChild", ta)
	ta.Call("select")
	ok := doc.Call("execCommand", "copy").Bool()
	ta.Call("remove")
	return ok
}

// windowOpener opens target URLs in a new tab
type windowOpener struct{}

func (windowOpener) Open(url string) {
	js.Global().Call("open", url, "_blank")
}

func transports() dispatch.Transports {
	return dispatch.Transports{
		Beacon:    xhrBeacon{},
		Image:     imageBeacon{},
		Clipboard: asyncClipboard{},
		Fallback:  selectionClipboard{},
		Opener:    windowOpener{},
	}
}
