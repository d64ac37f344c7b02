package dispatch

import (
	"github.com/soar/padroute/internal/contact"
	"github.com/soar/padroute/internal/skin"
)

// thumbstickSurface tracks the one contact steering a thumbstick item.
type thumbstickSurface struct {
	item    skin.Item
	contact contact.ID
	held    bool
	x, y    float64
}

// axes maps p into the item frame as (x, y) in [-1,1]², up positive.
func (s *thumbstickSurface) axes(p skin.Point) (float64, float64) {
	f := s.item.Frame
	x := (p.X - f.MidX()) / (f.Width / 2)
	y := -(p.Y - f.MidY()) / (f.Height / 2)
	return clamp(x, -1, 1), clamp(y, -1, 1)
}

// touchSurface tracks the one contact drawing on a touch-screen item.
type touchSurface struct {
	item    skin.Item
	contact contact.ID
	held    bool
}

// position maps p into the item frame's unit square.
func (s *touchSurface) position(p skin.Point) (float64, float64) {
	n := s.item.Frame.Normalize(p)
	return clamp(n.X, 0, 1), clamp(n.Y, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
