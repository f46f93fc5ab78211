// Package inspector is the in-page overlay: it turns pointer and keyboard input
// over tagged elements into a cover, a tooltip, an ancestor tree and dispatched
// actions. The host binding forwards DOM events and draws the View it receives.
package inspector

import (
	"fmt"
	"slices"
	"strings"

	"bennypowers.dev/code-inspector/internal/dispatch"
	"bennypowers.dev/code-inspector/internal/location"
)

// Mode is the inspector's interaction state
type Mode int

const (
	// Idle shows nothing and lets the page handle input
	Idle Mode = iota
	// Tracking covers the tagged element under the pointer
	Tracking
	// TreeOpen shows the ancestor tree of a context-menu target
	TreeOpen
)

func (m Mode) String() string {
	switch m {
	case Tracking:
		return "tracking"
	case TreeOpen:
		return "treeOpen"
	default:
		return "idle"
	}
}

// DragTarget names the draggable panel
type DragTarget string

const (
	DragSwitch DragTarget = "switch"
	DragTree   DragTarget = "nodeTree"
)

// DragState tracks a drag gesture. BaseX/BaseY are the panel offset and
// MoveX/MoveY the pointer page position when the gesture began.
type DragState struct {
	Dragging     bool
	BaseX, BaseY float64
	MoveX, MoveY float64
	Target       DragTarget
}

// KeyEvent is a keydown or keyup. Code is the physical key ("KeyZ"); Key is
// the produced character, which Option/Alt may transform on macOS.
type KeyEvent struct {
	Key  string
	Code string
	Modifiers
}

// PointerEvent is a pointer, touch, click or context-menu event. Path is the
// composed ancestor path, innermost first.
type PointerEvent struct {
	Client Point
	Page   Point
	Modifiers
	Path []Element
}

// Handled tells the binding what to do with the original event
type Handled struct {
	PreventDefault  bool
	StopPropagation bool
}

var consumed = Handled{PreventDefault: true, StopPropagation: true}

// Tracker runs an action for a location; dispatch.Dispatcher implements it
type Tracker interface {
	TrackCode(token location.Token, action dispatch.Action, done func(dispatch.Result)) error
}

// Options configures an Inspector
type Options struct {
	HotKeys HotKeys
	// ModeKey cycles the default action while the hot keys are held. Default "z".
	ModeKey  string
	Settings dispatch.Settings
	// Framework is a second location scheme for elements the tagger cannot reach
	Framework  Locator
	ShowSwitch bool
	CoverColor string
	// Gap separates the tooltip from the covered element. Default 8.
	Gap float64
	// TooltipSize is used when the renderer cannot measure. Default 300x40.
	TooltipSize Size
	// TreeWidth, TreeRowHeight and TreeHeaderHeight size the tree panel for clamping
	TreeWidth        float64
	TreeRowHeight    float64
	TreeHeaderHeight float64
	Viewport         Size
	SwitchPosition   Point
}

func (o *Options) setDefaults() {
	if o.HotKeys.keys == nil {
		o.HotKeys = NewHotKeys()
	}
	if o.ModeKey == "" {
		o.ModeKey = "z"
	}
	if o.Gap == 0 {
		o.Gap = 8
	}
	if o.TooltipSize == (Size{}) {
		o.TooltipSize = Size{Width: 300, Height: 40}
	}
	if o.TreeWidth == 0 {
		o.TreeWidth = 320
	}
	if o.TreeRowHeight == 0 {
		o.TreeRowHeight = 24
	}
	if o.TreeHeaderHeight == 0 {
		o.TreeHeaderHeight = 32
	}
	if o.CoverColor == "" {
		o.CoverColor = "rgba(66, 184, 131, 0.35)"
	}
}

// Inspector is the overlay state machine. It is not safe for concurrent use;
// the binding calls it from the page's event loop.
type Inspector struct {
	opts     Options
	resolver resolver
	tracker  Tracker
	renderer Renderer

	mode          Mode
	open          bool
	drag          DragState
	moved         bool
	hovered       *Target
	tree          *ElementNode
	treePos       Point
	switchPos     Point
	viewport      Size
	defaultAction dispatch.Action
	notice        *Notice
	seq           uint64
	closed        bool
}

// New creates an Inspector in the idle state
func New(opts Options, tracker Tracker, renderer Renderer) *Inspector {
	opts.setDefaults()
	i := &Inspector{
		opts:      opts,
		resolver:  resolver{primary: AttributeLocator(location.AttributeName), framework: opts.Framework},
		tracker:   tracker,
		renderer:  renderer,
		switchPos: opts.SwitchPosition,
		viewport:  opts.Viewport,
	}
	if a, err := opts.Settings.Resolve(opts.Settings.DefaultAction); err == nil {
		i.defaultAction = a
	}
	return i
}

// Mode returns the current interaction state
func (i *Inspector) Mode() Mode { return i.mode }

// Open reports whether persistent tracking is on
func (i *Inspector) Open() bool { return i.open }

// Drag returns the drag sub-state
func (i *Inspector) Drag() DragState { return i.drag }

// DefaultAction returns the action a click runs
func (i *Inspector) DefaultAction() dispatch.Action { return i.defaultAction }

// Hovered returns the covered element, if any
func (i *Inspector) Hovered() (Target, bool) {
	if i.hovered == nil {
		return Target{}, false
	}
	return *i.hovered, true
}

// Tree returns the open ancestor tree, or nil
func (i *Inspector) Tree() *ElementNode { return i.tree }

// Resize records the viewport size
func (i *Inspector) Resize(viewport Size) {
	i.viewport = viewport
	if i.tree != nil {
		i.treePos = ClampToViewport(i.treePos, i.treeSize(), viewport)
	}
	i.render()
}

func (i *Inspector) active(m Modifiers) bool {
	return i.open || i.opts.HotKeys.IsTracking(m)
}

// KeyDown handles the mode shortcut and entering tracking
func (i *Inspector) KeyDown(ev KeyEvent) Handled {
	if i.closed {
		return Handled{}
	}
	if i.isModeKey(ev) && i.opts.HotKeys.IsTracking(ev.Modifiers) {
		i.cycleAction()
		return consumed
	}
	if i.mode == Idle && i.active(ev.Modifiers) {
		i.mode = Tracking
		i.render()
	}
	return Handled{}
}

// isModeKey matches the physical key or the produced character. Option/Alt
// on macOS turns "z" into "Ω" or similar, but Code stays "KeyZ".
func (i *Inspector) isModeKey(ev KeyEvent) bool {
	if code := physicalCode(i.opts.ModeKey); code != "" && ev.Code == code {
		return true
	}
	return strings.EqualFold(ev.Key, i.opts.ModeKey)
}

// physicalCode is the KeyboardEvent.code of a single letter or digit key
func physicalCode(key string) string {
	if len(key) != 1 {
		return ""
	}
	switch c := key[0]; {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		return "Key" + strings.ToUpper(key)
	case c >= '0' && c <= '9':
		return "Digit" + key
	}
	return ""
}

// KeyUp leaves tracking once the combination is released
func (i *Inspector) KeyUp(ev KeyEvent) Handled {
	if i.closed {
		return Handled{}
	}
	if i.mode == Tracking && !i.active(ev.Modifiers) {
		i.toIdle()
	}
	return Handled{}
}

func (i *Inspector) cycleAction() {
	actions := i.opts.Settings.EnabledActions()
	if len(actions) < 2 {
		return
	}
	next := (slices.Index(actions, i.defaultAction) + 1) % len(actions)
	i.defaultAction = actions[next]
	i.notice = &Notice{Text: "mode: " + string(i.defaultAction), OK: true}
	i.render()
}

// PointerMove updates a drag, or the covered element while tracking.
// The most recent move always wins.
func (i *Inspector) PointerMove(ev PointerEvent) Handled {
	if i.closed {
		return Handled{}
	}
	if i.drag.Dragging {
		i.dragTo(ev.Page)
		return consumed
	}
	if i.mode == TreeOpen {
		return Handled{}
	}
	if !i.active(ev.Modifiers) {
		if i.mode == Tracking {
			i.toIdle()
		}
		return Handled{}
	}

	i.mode = Tracking
	if target, ok := i.resolver.first(ev.Path); ok {
		i.hovered = &target
	} else {
		i.hovered = nil
	}
	i.render()
	return Handled{}
}

// PointerLeave handles the pointer leaving the page
func (i *Inspector) PointerLeave() {
	if i.closed || i.mode != Tracking || i.drag.Dragging {
		return
	}
	if i.open {
		i.hovered = nil
		i.render()
		return
	}
	i.toIdle()
}

// Click dispatches the default action for the element under the pointer
func (i *Inspector) Click(ev PointerEvent) Handled {
	if i.closed || i.drag.Dragging {
		return Handled{}
	}
	if i.mode == TreeOpen {
		// the click a panel drag ends with lands on the page; it must not close the tree
		if i.moved {
			i.moved = false
			return consumed
		}
		i.CloseTree()
		return consumed
	}
	if !i.active(ev.Modifiers) {
		return Handled{}
	}
	target, ok := i.resolver.first(ev.Path)
	if !ok {
		return Handled{}
	}
	i.hovered = &target
	i.dispatch(target.Token)
	return consumed
}

// ContextMenu opens the ancestor tree near the pointer
func (i *Inspector) ContextMenu(ev PointerEvent) Handled {
	if i.closed || !i.active(ev.Modifiers) {
		return Handled{}
	}
	tree := BuildTree(ev.Path, i.resolver.locate)
	if tree == nil {
		return Handled{}
	}
	i.mode = TreeOpen
	i.tree = tree
	i.hovered = nil
	i.treePos = ClampToViewport(ev.Client, i.treeSize(), i.viewport)
	i.render()
	return consumed
}

func (i *Inspector) treeSize() Size {
	rows := len(i.tree.Rows())
	return Size{Width: i.opts.TreeWidth, Height: i.opts.TreeHeaderHeight + float64(rows)*i.opts.TreeRowHeight}
}

// HoverRow covers the element of tree row n, wherever the pointer is
func (i *Inspector) HoverRow(n int) {
	row := i.row(n)
	if row == nil {
		return
	}
	i.hovered = &Target{Element: row.Element, Token: row.Token()}
	i.render()
}

// ChooseRow dispatches the default action for tree row n and closes the tree
func (i *Inspector) ChooseRow(n int) {
	row := i.row(n)
	if row == nil {
		return
	}
	i.dispatch(row.Token())
	i.CloseTree()
}

func (i *Inspector) row(n int) *ElementNode {
	if i.closed || i.mode != TreeOpen {
		return nil
	}
	rows := i.tree.Rows()
	if n < 0 || n >= len(rows) {
		return nil
	}
	return rows[n]
}

// CloseTree dismisses the ancestor tree
func (i *Inspector) CloseTree() {
	if i.mode != TreeOpen {
		return
	}
	i.tree = nil
	i.toIdle()
}

// PointerDown starts dragging the switch or the tree panel
func (i *Inspector) PointerDown(target DragTarget, ev PointerEvent) Handled {
	if i.closed {
		return Handled{}
	}
	base := i.switchPos
	if target == DragTree {
		if i.tree == nil {
			return Handled{}
		}
		base = i.treePos
	}
	i.drag = DragState{
		Dragging: true,
		BaseX:    base.X,
		BaseY:    base.Y,
		MoveX:    ev.Page.X,
		MoveY:    ev.Page.Y,
		Target:   target,
	}
	i.moved = false
	return consumed
}

func (i *Inspector) dragTo(p Point) {
	next := Point{
		X: max(0, i.drag.BaseX+p.X-i.drag.MoveX),
		Y: max(0, i.drag.BaseY+p.Y-i.drag.MoveY),
	}
	// a gesture pinned against an edge still counts as a drag
	if p.X != i.drag.MoveX || p.Y != i.drag.MoveY {
		i.moved = true
	}
	switch i.drag.Target {
	case DragSwitch:
		i.switchPos = next
	case DragTree:
		i.treePos = next
	}
	i.render()
}

// PointerUp ends any drag. The binding listens on the window so drags
// released outside the handle still end.
func (i *Inspector) PointerUp(PointerEvent) {
	if !i.drag.Dragging {
		return
	}
	i.drag.Dragging = false
	i.render()
}

// SwitchClick toggles persistent tracking unless the click ends a drag
func (i *Inspector) SwitchClick() Handled {
	if i.closed {
		return Handled{}
	}
	if i.moved {
		i.moved = false
		return consumed
	}
	i.open = !i.open
	if i.open {
		if i.mode == Idle {
			i.mode = Tracking
		}
		i.render()
	} else {
		i.tree = nil
		i.toIdle()
	}
	return consumed
}

// Close tears the inspector down; later events are ignored
func (i *Inspector) Close() {
	if i.closed {
		return
	}
	i.closed = true
	i.mode, i.open, i.hovered, i.tree, i.drag = Idle, false, nil, nil, DragState{}
	if i.renderer != nil {
		i.renderer.Render(View{})
	}
}

func (i *Inspector) toIdle() {
	i.mode = Idle
	i.hovered = nil
	i.render()
}

// dispatch runs the default action. Results of superseded dispatches are dropped.
func (i *Inspector) dispatch(tok location.Token) {
	if i.tracker == nil {
		return
	}
	i.seq++
	id := i.seq
	_ = i.tracker.TrackCode(tok, i.defaultAction, func(r dispatch.Result) {
		if i.closed || id != i.seq {
			return
		}
		i.notice = noticeFor(r)
		i.render()
	})
}

func noticeFor(r dispatch.Result) *Notice {
	switch {
	case r.Err != nil && r.Action == dispatch.ActionCopy:
		return &Notice{Text: "copy failed"}
	case r.Err != nil:
		return &Notice{Text: r.Err.Error()}
	case r.Action == dispatch.ActionCopy:
		return &Notice{Text: "copied " + r.Text, OK: true}
	case r.Action == dispatch.ActionTarget:
		return &Notice{Text: "opened " + r.Text, OK: r.OK}
	default:
		return &Notice{Text: fmt.Sprintf("opening %s:%d:%d", r.Token.Path, r.Token.Line, r.Token.Column), OK: true}
	}
}

// ClearNotice hides the transient notice
func (i *Inspector) ClearNotice() {
	if i.notice == nil {
		return
	}
	i.notice = nil
	i.render()
}
