package model

import (
	"fmt"
	"math"
)

// Rect represents an axis-aligned rectangle in detection space.
// Coordinates are pixels of the rasterized table crop with Y growing downward,
// so Top <= Bottom for a well-formed rectangle.
type Rect struct {
	Left   float64
	Top    float64
	Right  float64
	Bottom float64
}

// NewRect creates a rectangle from its edges and validates it.
func NewRect(left, top, right, bottom float64) (Rect, error) {
	r := Rect{Left: left, Top: top, Right: right, Bottom: bottom}
	if err := r.Validate(); err != nil {
		return Rect{}, err
	}
	return r, nil
}

// Validate reports a *MalformedGeometryError when the rectangle has
// non-finite coordinates or inverted edges.
func (r Rect) Validate() error {
	for _, v := range [...]float64{r.Left, r.Top, r.Right, r.Bottom} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &MalformedGeometryError{Rect: r, Reason: "non-finite coordinate"}
		}
	}
	if r.Left > r.Right {
		return &MalformedGeometryError{Rect: r, Reason: fmt.Sprintf("left %g > right %g", r.Left, r.Right)}
	}
	if r.Top > r.Bottom {
		return &MalformedGeometryError{Rect: r, Reason: fmt.Sprintf("top %g > bottom %g", r.Top, r.Bottom)}
	}
	return nil
}

// Width returns the horizontal extent
func (r Rect) Width() float64 {
	return r.Right - r.Left
}

// Height returns the vertical extent
func (r Rect) Height() float64 {
	return r.Bottom - r.Top
}

// Contains reports whether other lies entirely within r. Shared edges count
// as inside.
func (r Rect) Contains(other Rect) bool {
	return r.Left <= other.Left && r.Right >= other.Right &&
		r.Top <= other.Top && r.Bottom >= other.Bottom
}

// Intersects checks if two rectangles overlap or touch
func (r Rect) Intersects(other Rect) bool {
	return !(r.Right < other.Left ||
		r.Left > other.Right ||
		r.Bottom < other.Top ||
		r.Top > other.Bottom)
}

// Union returns the smallest rectangle containing both rectangles
func (r Rect) Union(other Rect) Rect {
	return Rect{
		Left:   math.Min(r.Left, other.Left),
		Top:    math.Min(r.Top, other.Top),
		Right:  math.Max(r.Right, other.Right),
		Bottom: math.Max(r.Bottom, other.Bottom),
	}
}

// IsZero returns true if all edges are zero
func (r Rect) IsZero() bool {
	return r == Rect{}
}

// Ptr returns a pointer to a copy of r. Cells and rows store optional bounds
// as pointers.
func (r Rect) Ptr() *Rect {
	return &r
}

// String formats the rectangle as [left,top,right,bottom]
func (r Rect) String() string {
	return fmt.Sprintf("[%g,%g,%g,%g]", r.Left, r.Top, r.Right, r.Bottom)
}
