package skin

import "fmt"

// Point is a position in a surface's unit square.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned rectangle. Containment is half-open: the minimum
// edges are inside, the maximum edges are not.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r Rect) MinX() float64 { return r.X }
func (r Rect) MinY() float64 { return r.Y }
func (r Rect) MaxX() float64 { return r.X + r.Width }
func (r Rect) MaxY() float64 { return r.Y + r.Height }
func (r Rect) MidX() float64 { return r.X + r.Width/2 }
func (r Rect) MidY() float64 { return r.Y + r.Height/2 }

func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

func (r Rect) Contains(p Point) bool {
	if r.IsEmpty() {
		return false
	}
	return p.X >= r.MinX() && p.X < r.MaxX() && p.Y >= r.MinY() && p.Y < r.MaxY()
}

// ContainsRect reports whether o lies entirely within r.
func (r Rect) ContainsRect(o Rect) bool {
	return o.MinX() >= r.MinX() && o.MaxX() <= r.MaxX() && o.MinY() >= r.MinY() && o.MaxY() <= r.MaxY()
}

// Union returns the smallest rectangle containing both.
func (r Rect) Union(o Rect) Rect {
	minX, minY := min(r.MinX(), o.MinX()), min(r.MinY(), o.MinY())
	maxX, maxY := max(r.MaxX(), o.MaxX()), max(r.MaxY(), o.MaxY())
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Scaled maps a normalized rectangle into the given containing rectangle.
func (r Rect) Scaled(to Rect) Rect {
	return Rect{
		X:      to.X + r.X*to.Width,
		Y:      to.Y + r.Y*to.Height,
		Width:  r.Width * to.Width,
		Height: r.Height * to.Height,
	}
}

// Normalize maps a point inside r to r's unit square.
func (r Rect) Normalize(p Point) Point {
	if r.IsEmpty() {
		return Point{}
	}
	return Point{X: (p.X - r.X) / r.Width, Y: (p.Y - r.Y) / r.Height}
}

// Outset grows the rectangle by the given edge margins.
func (r Rect) Outset(top, bottom, left, right float64) Rect {
	return Rect{
		X:      r.X - left,
		Y:      r.Y - top,
		Width:  r.Width + left + right,
		Height: r.Height + top + bottom,
	}
}

func (r Rect) String() string {
	return fmt.Sprintf("(%g,%g %gx%g)", r.X, r.Y, r.Width, r.Height)
}
