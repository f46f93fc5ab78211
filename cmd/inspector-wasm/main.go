//go:build js && wasm

// Command inspector-wasm is the page runtime. It reads its boot document from
// window.__codeInspector (a JSON string or object), installs the overlay and
// forwards DOM events to the inspector. window.codeInspector exposes close()
// and track(token, action).
package main

import (
	"syscall/js"

	"bennypowers.dev/code-inspector/internal/config"
	"bennypowers.dev/code-inspector/internal/dispatch"
	"bennypowers.dev/code-inspector/internal/inspector"
	"bennypowers.dev/code-inspector/internal/location"
	"bennypowers.dev/code-inspector/internal/log"
)

const bootGlobal = "__codeInspector"

func bootDocument() []byte {
	v := js.Global().Get(bootGlobal)
	switch v.Type() {
	case js.TypeString:
		return []byte(v.String())
	case js.TypeObject:
		return []byte(js.Global().Get("JSON").Call("stringify", v).String())
	default:
		return nil
	}
}

func main() {
	log.SetOutput(consoleWriter{})
	boot, err := config.ParseBoot(bootDocument())
	if err != nil {
		log.Error("%v", err)
		return
	}
	if boot.Config.HideConsole {
		log.SetLevel(log.LevelError)
	}

	doc := js.Global().Get("document")
	o := newOverlay(doc)
	d := dispatch.New(boot.Config.DispatchSettings(boot.URL), transports())

	opts := boot.Config.InspectorOptions(boot.URL)
	opts.Viewport = viewport()
	opts.SwitchPosition = inspector.Point{X: 16, Y: 16}
	insp := inspector.New(opts, d, o)

	b := bind(insp, o)
	o.onNotice = func() {
		b.timeout(noticeTimeout, insp.ClearNotice)
	}

	api := js.Global().Get("Object").New()
	closeFn := js.FuncOf(func(this js.Value, args []js.Value) any {
		b.close()
		insp.Close()
		o.root.Call("remove")
		return nil
	})
	trackFn := js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) == 0 {
			return false
		}
		tok, err := location.Decode(args[0].String())
		if err != nil {
			log.Warn("%v", err)
			return false
		}
		var action dispatch.Action
		if len(args) > 1 && args[1].Type() == js.TypeString {
			if action, err = dispatch.ParseAction(args[1].String()); err != nil {
				log.Warn("%v", err)
				return false
			}
		}
		return d.TrackCode(tok, action, nil) == nil
	})
	api.Set("close", closeFn)
	api.Set("track", trackFn)
	js.Global().Set("codeInspector", api)

	log.Info("hold %s and click an element to open its source", opts.HotKeys.String())
	select {}
}

// consoleWriter sends log lines to console.log
type consoleWriter struct{}

func (consoleWriter) Write(p []byte) (int, error) {
	js.Global().Get("console").Call("log", string(p))
	return len(p), nil
}
