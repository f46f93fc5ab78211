package dispatch

import (
	"errors"
	"fmt"
	"strings"
)

// ErrActionDisabled is returned when neither the requested action nor a fallback is enabled
var ErrActionDisabled = errors.New("no enabled action")

// Action is what happens when a tagged element is chosen
type Action string

const (
	// ActionLocate opens the location in the editor through the launch service
	ActionLocate Action = "locate"
	// ActionCopy writes the formatted location to the clipboard
	ActionCopy Action = "copy"
	// ActionTarget opens a URL built from the target template
	ActionTarget Action = "target"
)

// DefaultCopyTemplate formats copied locations as path:line:column
const DefaultCopyTemplate = "{file}:{line}:{column}"

// ParseAction converts a config or flag value into an Action
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case ActionLocate, ActionCopy, ActionTarget:
		return a, nil
	case "":
		return "", nil
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// Settings are the feature toggles that decide which actions are available
type Settings struct {
	Locate bool
	Copy   bool
	// CopyTemplate formats copied text; empty means DefaultCopyTemplate
	CopyTemplate string
	// Target is a URL template; empty disables ActionTarget
	Target        string
	DefaultAction Action
	// BaseURL is the launch service origin, e.g. http://127.0.0.1:5678
	BaseURL string
}

// Enabled reports whether action a can run under these settings
func (s Settings) Enabled(a Action) bool {
	switch a {
	case ActionLocate:
		return s.Locate
	case ActionCopy:
		return s.Copy
	case ActionTarget:
		return s.Target != ""
	}
	return false
}

// EnabledActions lists the enabled actions in cycling order
func (s Settings) EnabledActions() []Action {
	var actions []Action
	for _, a := range []Action{ActionLocate, ActionCopy, ActionTarget} {
		if s.Enabled(a) {
			actions = append(actions, a)
		}
	}
	return actions
}

// Resolve picks the action to run: the requested one, else the default, else
// whichever of locate and copy is enabled.
func (s Settings) Resolve(requested Action) (Action, error) {
	a := requested
	if a == "" {
		a = s.DefaultAction
	}
	if a != "" && s.Enabled(a) {
		return a, nil
	}
	for _, fallback := range []Action{ActionLocate, ActionCopy} {
		if s.Enabled(fallback) {
			return fallback, nil
		}
	}
	return "", ErrActionDisabled
}

func (s Settings) copyTemplate() string {
	if s.CopyTemplate == "" {
		return DefaultCopyTemplate
	}
	return s.CopyTemplate
}
