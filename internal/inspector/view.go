package inspector

import (
	"bennypowers.dev/code-inspector/internal/dispatch"
	"bennypowers.dev/code-inspector/internal/location"
)

// Cover is the highlight drawn over the hovered element
type Cover struct {
	Box   Rect
	Color string
}

// Tooltip shows the hovered element's location
type Tooltip struct {
	Token     location.Token
	Placement Placement
	Action    dispatch.Action
}

// TreeView is the ancestor tree panel
type TreeView struct {
	Rows     []*ElementNode
	Position Point
	Size     Size
}

// SwitchView is the floating toggle
type SwitchView struct {
	Visible  bool
	Open     bool
	Position Point
}

// Notice is a transient success or failure message
type Notice struct {
	Text string
	OK   bool
}

// View is everything the binding draws. Nil parts are hidden.
type View struct {
	Mode          Mode
	Cover         *Cover
	Tooltip       *Tooltip
	Tree          *TreeView
	Switch        SwitchView
	Notice        *Notice
	DefaultAction dispatch.Action
	Dragging      bool
}

// Renderer draws views
type Renderer interface {
	Render(View)
}

// Measurer is implemented by renderers that can size a tooltip before placing it
type Measurer interface {
	MeasureTooltip(location.Token) Size
}

// View computes the current view
func (i *Inspector) View() View {
	if i.closed {
		return View{}
	}
	v := View{
		Mode:          i.mode,
		Switch:        SwitchView{Visible: i.opts.ShowSwitch, Open: i.open, Position: i.switchPos},
		Notice:        i.notice,
		DefaultAction: i.defaultAction,
		Dragging:      i.drag.Dragging,
	}

	if i.hovered != nil && i.mode != Idle {
		box := i.hovered.Element.BoundingRect()
		v.Cover = &Cover{Box: box, Color: i.opts.CoverColor}
		v.Tooltip = &Tooltip{
			Token:     i.hovered.Token,
			Placement: PlaceTooltip(box, i.tooltipSize(i.hovered.Token), i.viewport, i.opts.Gap),
			Action:    i.defaultAction,
		}
	}

	if i.mode == TreeOpen && i.tree != nil {
		v.Tree = &TreeView{Rows: i.tree.Rows(), Position: i.treePos, Size: i.treeSize()}
	}
	return v
}

func (i *Inspector) tooltipSize(tok location.Token) Size {
	if m, ok := i.renderer.(Measurer); ok {
		if s := m.MeasureTooltip(tok); s != (Size{}) {
			return s
		}
	}
	return i.opts.TooltipSize
}

func (i *Inspector) render() {
	if i.renderer == nil || i.closed {
		return
	}
	i.renderer.Render(i.View())
}
