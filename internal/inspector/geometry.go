package inspector

// Rect is a box in viewport (client) coordinates
type Rect struct {
	Left, Top, Right, Bottom float64
}

// Width of the box
func (r Rect) Width() float64 { return r.Right - r.Left }

// Height of the box
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// Size is a width/height pair
type Size struct {
	Width, Height float64
}

// Point is a position in CSS pixels
type Point struct {
	X, Y float64
}

// Vertical is where a tooltip sits relative to its element
type Vertical string

const (
	Above  Vertical = "top"
	Below  Vertical = "bottom"
	Inside Vertical = "inside"
)

// Horizontal is which element edge a tooltip aligns to
type Horizontal string

const (
	AlignLeft  Horizontal = "left"
	AlignRight Horizontal = "right"
)

// Placement is a computed tooltip position
type Placement struct {
	Vertical   Vertical
	Horizontal Horizontal
	Top        float64
	Left       float64
}

// Class is the CSS class naming the placement, e.g. "element-info-top element-info-left"
func (p Placement) Class() string {
	return "element-info-" + string(p.Vertical) + " element-info-" + string(p.Horizontal)
}

// PlaceTooltip positions a tooltip of size tip next to box within viewport.
// Above is preferred; when the tooltip would leave the top of the viewport it
// anchors at box.Bottom+gap instead, and when neither side has room it is laid
// over the element's top edge.
func PlaceTooltip(box Rect, tip Size, viewport Size, gap float64) Placement {
	var p Placement

	aboveTop := box.Top - gap - tip.Height
	belowTop := box.Bottom + gap
	switch {
	case aboveTop >= 0:
		p.Vertical, p.Top = Above, aboveTop
	case belowTop+tip.Height <= viewport.Height:
		p.Vertical, p.Top = Below, belowTop
	default:
		p.Vertical, p.Top = Inside, clamp(box.Top+gap, 0, viewport.Height-tip.Height)
	}

	if box.Left+tip.Width <= viewport.Width || box.Right-tip.Width < 0 {
		p.Horizontal, p.Left = AlignLeft, clamp(box.Left, 0, viewport.Width-tip.Width)
	} else {
		p.Horizontal, p.Left = AlignRight, box.Right-tip.Width
	}
	return p
}

// ClampToViewport moves a panel of the given size placed at pos so it stays visible
func ClampToViewport(pos Point, panel Size, viewport Size) Point {
	return Point{
		X: clamp(pos.X, 0, viewport.Width-panel.Width),
		Y: clamp(pos.Y, 0, viewport.Height-panel.Height),
	}
}

// clamp limits v to [lo, hi]; lo wins when the range is empty
func clamp(v, lo, hi float64) float64 {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
