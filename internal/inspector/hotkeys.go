package inspector

import (
	"fmt"
	"strings"

	"bennypowers.dev/code-inspector/internal/collections"
)

// Modifier is a keyboard modifier named the way key events expose it
type Modifier string

const (
	Shift Modifier = "shiftKey"
	Alt   Modifier = "altKey"
	Ctrl  Modifier = "ctrlKey"
	Meta  Modifier = "metaKey"
)

// DefaultHotKeys are used when none are configured
var DefaultHotKeys = []Modifier{Shift, Alt}

// ParseModifier accepts event property names (altKey) and plain names (alt, option, cmd)
func ParseModifier(s string) (Modifier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "shiftkey", "shift":
		return Shift, nil
	case "altkey", "alt", "option":
		return Alt, nil
	case "ctrlkey", "ctrl", "control":
		return Ctrl, nil
	case "metakey", "meta", "cmd", "command":
		return Meta, nil
	}
	return "", fmt.Errorf("unknown modifier %q", s)
}

// Modifiers is the modifier state carried by an input event
type Modifiers struct {
	Shift, Alt, Ctrl, Meta bool
}

func (m Modifiers) pressed(mod Modifier) bool {
	switch mod {
	case Shift:
		return m.Shift
	case Alt:
		return m.Alt
	case Ctrl:
		return m.Ctrl
	case Meta:
		return m.Meta
	}
	return false
}

// HotKeys is the configured modifier combination that enables tracking
type HotKeys struct {
	keys collections.Set[Modifier]
}

// NewHotKeys builds a combination; an empty list means DefaultHotKeys
func NewHotKeys(mods ...Modifier) HotKeys {
	if len(mods) == 0 {
		mods = DefaultHotKeys
	}
	return HotKeys{keys: collections.NewSet(mods...)}
}

// IsTracking reports whether every configured modifier is pressed
func (h HotKeys) IsTracking(m Modifiers) bool {
	if h.keys.Len() == 0 {
		return false
	}
	for _, mod := range h.keys.Members() {
		if !m.pressed(mod) {
			return false
		}
	}
	return true
}

// String renders the combination, e.g. "altKey+shiftKey"
func (h HotKeys) String() string {
	names := make([]string, 0, h.keys.Len())
	for _, mod := range collections.Sorted(h.keys) {
		names = append(names, string(mod))
	}
	return strings.Join(names, "+")
}
