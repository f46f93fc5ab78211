// Package dispatch turns a chosen element's location into a locate beacon,
// a clipboard write, or a templated URL.
package dispatch

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"

	"bennypowers.dev/code-inspector/internal/location"
	"bennypowers.dev/code-inspector/internal/log"
)

// Beacon sends a GET request whose response is ignored. onError runs when the
// request could not be made (network error, blocked by content policy).
type Beacon interface {
	Send(url string, onError func(error))
}

// ImageBeacon requests url as an image source; it cannot report failure
type ImageBeacon interface {
	Send(url string)
}

// Clipboard is the asynchronous clipboard API. A returned error means the API is
// unavailable or failed synchronously; done receives the asynchronous outcome.
type Clipboard interface {
	WriteText(text string, done func(error)) error
}

// FallbackClipboard copies through a hidden selection
type FallbackClipboard interface {
	CopyViaSelection(text string) bool
}

// Opener navigates to or opens a URL
type Opener interface {
	Open(url string)
}

// Transports holds the page capabilities a Dispatcher uses. Nil members are
// treated as unavailable.
type Transports struct {
	Beacon    Beacon
	Image     ImageBeacon
	Clipboard Clipboard
	Fallback  FallbackClipboard
	Opener    Opener
}

// Result is the outcome reported to the caller of TrackCode
type Result struct {
	Action Action
	Token  location.Token
	// Text is the copied text or the opened URL
	Text string
	OK   bool
	Err  error
}

// Formatter renders a copy template; line and column arrive as strings
type Formatter func(template, file, line, column string) string

// Dispatcher runs actions for chosen elements. Transport calls never block:
// results arrive through the done callback.
type Dispatcher struct {
	settings   Settings
	transports Transports
	// Formatter renders copied text; defaults to FormatOpenPath
	Formatter Formatter
	useImage  atomic.Bool
}

// New creates a Dispatcher
func New(settings Settings, transports Transports) *Dispatcher {
	return &Dispatcher{
		settings:   settings,
		transports: transports,
		Formatter:  FormatOpenPath,
	}
}

// Settings returns the dispatcher's settings
func (d *Dispatcher) Settings() Settings {
	return d.settings
}

// UsingImageBeacon reports whether the session has switched to image beacons
func (d *Dispatcher) UsingImageBeacon() bool {
	return d.useImage.Load()
}

// TrackCode runs action (or the default) for token. done may be nil and may run
// after TrackCode returns. The returned error covers only action resolution.
func (d *Dispatcher) TrackCode(token location.Token, action Action, done func(Result)) error {
	if done == nil {
		done = func(Result) {}
	}
	resolved, err := d.settings.Resolve(action)
	if err != nil {
		done(Result{Action: action, Token: token, Err: err})
		return err
	}

	switch resolved {
	case ActionLocate:
		d.locate(token, done)
	case ActionCopy:
		d.copy(token, done)
	case ActionTarget:
		d.target(token, done)
	}
	return nil
}

func (d *Dispatcher) locate(token location.Token, done func(Result)) {
	u := BeaconURL(d.settings.BaseURL, token)
	result := Result{Action: ActionLocate, Token: token, Text: u, OK: true}

	if d.useImage.Load() || d.transports.Beacon == nil {
		d.sendImage(u)
		done(result)
		return
	}

	d.transports.Beacon.Send(u, func(err error) {
		log.Warn("locate request failed, using image requests from now on: %v", err)
		d.useImage.Store(true)
		d.sendImage(u)
	})
	done(result)
}

func (d *Dispatcher) sendImage(u string) {
	if d.transports.Image != nil {
		d.transports.Image.Send(u)
	}
}

func (d *Dispatcher) copy(token location.Token, done func(Result)) {
	text := d.Formatter(d.settings.copyTemplate(), token.Path, strconv.Itoa(token.Line), strconv.Itoa(token.Column))
	result := Result{Action: ActionCopy, Token: token, Text: text}

	fallback := func(cause error) {
		if d.transports.Fallback != nil && d.transports.Fallback.CopyViaSelection(text) {
			result.OK = true
		} else {
			result.Err = errors.Join(errClipboard, cause)
		}
		done(result)
	}

	if d.transports.Clipboard == nil {
		fallback(errNoClipboard)
		return
	}

	err := d.transports.Clipboard.WriteText(text, func(err error) {
		if err != nil {
			result.Err = errors.Join(errClipboard, err)
		} else {
			result.OK = true
		}
		done(result)
	})
	if err != nil {
		fallback(err)
	}
}

var (
	errClipboard   = errors.New("copy failed")
	errNoClipboard = errors.New("clipboard API unavailable")
)

func (d *Dispatcher) target(token location.Token, done func(Result)) {
	u := TargetURL(d.settings.Target, token)
	if d.transports.Opener != nil {
		d.transports.Opener.Open(u)
	}
	done(Result{Action: ActionTarget, Token: token, Text: u, OK: d.transports.Opener != nil})
}

// BeaconURL builds the locate request GET base/?file=...&line=...&column=...
func BeaconURL(base string, token location.Token) string {
	return strings.TrimSuffix(base, "/") + "/?file=" + url.QueryEscape(token.Path) +
		"&line=" + strconv.Itoa(token.Line) +
		"&column=" + strconv.Itoa(token.Column)
}

// FormatOpenPath substitutes every {file}, {line} and {column} in template
func FormatOpenPath(template, file, line, column string) string {
	r := strings.NewReplacer("{file}", file, "{line}", line, "{column}", column)
	return r.Replace(template)
}

// TargetURL substitutes the token into a target URL template. Values are used verbatim.
func TargetURL(template string, token location.Token) string {
	return FormatOpenPath(template, token.Path, strconv.Itoa(token.Line), strconv.Itoa(token.Column))
}
