// Package banner prints the one-time startup tip and owns the process-wide
// warning-suppression flag.
package banner

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

// Info is what the startup tip describes
type Info struct {
	HotKeys string
	ModeKey string
	URL     string
	Editor  string
	Version string
}

// State is process-wide banner state. The zero value is ready to use.
type State struct {
	mu           sync.Mutex
	initialized  bool
	suppressWarn bool
	out          io.Writer
}

var (
	accent = color.New(color.Bold, color.FgHiGreen)
	key    = color.New(color.FgHiCyan)
	dim    = color.New(color.FgHiBlack)
	warn   = color.New(color.FgYellow)
)

var global State

// Global returns the process-wide state
func Global() *State {
	return &global
}

// SetOutput redirects banner output; nil means stdout
func (s *State) SetOutput(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.out = w
}

func (s *State) writer() io.Writer {
	if s.out == nil {
		return os.Stdout
	}
	return s.out
}

// EnsureInitialized prints the startup tip the first time it is called and
// reports whether it printed. hide suppresses the tip but still marks the
// state initialized.
func (s *State) EnsureInitialized(info Info, hide bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return false
	}
	s.initialized = true
	if hide {
		return false
	}

	w := s.writer()
	fmt.Fprintf(w, "%s %s\n", accent.Sprint("code-inspector"), dim.Sprint(info.Version))
	fmt.Fprintf(w, "  hold %s and click an element to open it in %s", key.Sprint(info.HotKeys), key.Sprint(info.Editor))
	if info.ModeKey != "" {
		fmt.Fprintf(w, "; press %s to switch mode", key.Sprint(info.ModeKey))
	}
	fmt.Fprintln(w)
	if info.URL != "" {
		fmt.Fprintf(w, "  listening on %s\n", dim.Sprint(info.URL))
	}
	return true
}

// Warn prints a warning once per process unless warnings are suppressed.
// Reports whether it printed.
func (s *State) Warn(format string, args ...any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.suppressWarn {
		return false
	}
	s.suppressWarn = true
	fmt.Fprintln(s.writer(), warn.Sprintf(format, args...))
	return true
}

// SuppressWarnings stops further Warn output
func (s *State) SuppressWarnings() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suppressWarn = true
}

// Initialized reports whether the tip has been handled
func (s *State) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// Reset returns the state to its zero value, keeping the output
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initialized = false
	s.suppressWarn = false
}
