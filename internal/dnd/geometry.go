package dnd

import "math"

// Point is a pointer coordinate in the sensor's coordinate space.
type Point struct {
	X float64
	Y float64
}

// Rect is an axis-aligned bounding box.
type Rect struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// Right returns the right edge.
func (r Rect) Right() float64 { return r.Left + r.Width }

// Bottom returns the bottom edge.
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// Corners returns top-left, top-right, bottom-left and bottom-right in that order.
func (r Rect) Corners() [4]Point {
	return [4]Point{
		{X: r.Left, Y: r.Top},
		{X: r.Right(), Y: r.Top},
		{X: r.Left, Y: r.Bottom()},
		{X: r.Right(), Y: r.Bottom()},
	}
}

// Contains reports whether p lies inside r. Edges count as inside.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X <= r.Right() && p.Y >= r.Top && p.Y <= r.Bottom()
}

// Translate returns r shifted by dx, dy.
func (r Rect) Translate(dx, dy float64) Rect {
	r.Left += dx
	r.Top += dy
	return r
}

// distance returns the Euclidean distance between two points.
func distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Region is a droppable area, either a column or a card.
type Region struct {
	ID   string
	Rect Rect
}

// Geometry carries the raw per-frame measurements reported by the drag sensor.
type Geometry struct {
	// Pointer is nil when the sensor could not report a coordinate.
	Pointer *Point
	// Active is the dragged item's rect translated by the current drag offset.
	Active Rect
	// Over is the rect of the resolved target, nil when there is no target.
	Over *Rect
}

// BelowOver reports whether the dragged item has passed the bottom of the target,
// which moves a cross-column insertion after the hovered card instead of before it.
func (g Geometry) BelowOver() bool {
	if g.Over == nil {
		return false
	}
	return g.Active.Top > g.Over.Top+g.Over.Height
}
