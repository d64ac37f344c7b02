// Package geometry resolves which skin inputs lie under a point.
package geometry

import (
	"github.com/soar/padroute/internal/input"
	"github.com/soar/padroute/internal/skin"
)

// Band divisors for directional items. The bands overlap at the corners so
// a single point can press two adjacent directions.
const (
	dpadDivisor       = 3.0
	thumbstickDivisor = 2.0
)

// HitTest returns the inputs of every item under p, in item order. p is in
// the surface's unit square. Duplicates across items are kept.
//
// When hidden is set, the first item whose extended frame contains p decides
// the result: a standard item holding menu or flex yields its inputs, any
// other item yields nothing.
func HitTest(p skin.Point, items []skin.Item, hidden bool) []input.Input {
	var hits []input.Input

	for i := range items {
		it := &items[i]
		if !it.ExtendedFrame.Contains(p) {
			continue
		}

		if hidden {
			if it.Inputs.HasName(input.Menu, input.Flex) {
				return append(hits, it.Inputs.Inputs...)
			}
			return hits
		}

		switch it.Inputs.Kind {
		case skin.GroupTouch:
		case skin.GroupStandard:
			hits = append(hits, it.Inputs.Inputs...)
		case skin.GroupDirectional:
			// Thumbsticks are read from their own surface by deflection.
			if it.Kind == skin.Thumbstick {
				continue
			}
			hits = append(hits, directional(p, it)...)
		}
	}

	return hits
}

// bandDivisor is the share of a directional item's frame each band covers.
func bandDivisor(kind skin.Kind) float64 {
	if kind == skin.Thumbstick {
		return thumbstickDivisor
	}
	return dpadDivisor
}

// directional resolves the bands of a directional item under p, whatever
// the item kind.
func directional(p skin.Point, it *skin.Item) []input.Input {
	divisor := bandDivisor(it.Kind)

	f, e := it.Frame, it.ExtendedFrame
	bandH := f.Height / divisor
	bandW := f.Width / divisor

	top := skin.Rect{X: e.MinX(), Y: e.MinY(), Width: e.Width, Height: bandH + (f.MinY() - e.MinY())}
	bottom := skin.Rect{X: e.MinX(), Y: f.MaxY() - bandH, Width: e.Width, Height: bandH + (e.MaxY() - f.MaxY())}
	left := skin.Rect{X: e.MinX(), Y: e.MinY(), Width: bandW + (f.MinX() - e.MinX()), Height: e.Height}
	right := skin.Rect{X: f.MaxX() - bandW, Y: e.MinY(), Width: bandW + (e.MaxX() - f.MaxX()), Height: e.Height}

	var hits []input.Input
	if top.Contains(p) {
		hits = append(hits, it.Inputs.Up)
	}
	if bottom.Contains(p) {
		hits = append(hits, it.Inputs.Down)
	}
	if left.Contains(p) {
		hits = append(hits, it.Inputs.Left)
	}
	if right.Contains(p) {
		hits = append(hits, it.Inputs.Right)
	}
	return hits
}

// Resolver binds an item list and hidden flag for repeated lookups. The
// items are borrowed and must not be mutated while the resolver is in use.
type Resolver struct {
	Items  []skin.Item
	Hidden bool
}

// Inputs reduces the hit list at p to a set.
func (r *Resolver) Inputs(p skin.Point) input.Set {
	return input.NewSet(HitTest(p, r.Items, r.Hidden)...)
}

// Any reports whether anything resolves at p.
func (r *Resolver) Any(p skin.Point) bool {
	return len(HitTest(p, r.Items, r.Hidden)) > 0
}
