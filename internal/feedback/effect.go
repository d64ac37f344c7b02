package feedback

import (
	"math"

	"github.com/tanema/gween"

	"github.com/soar/padroute/internal/input"
	"github.com/soar/padroute/internal/skin"
)

// Animated properties of an effect view.
const (
	propScaleX = iota
	propScaleY
	propTiltX
	propTiltY
	propOffsetX
	propOffsetY
	propNormalAlpha
	propSelectedAlpha
	propCount
)

const (
	buttonScale = 0.9
	dpadTilt    = math.Pi / 10
	dpadOffset  = 1.75
	dpadSquash  = 0.95
)

// ViewState is a snapshot of an item's press visuals. Tilt is in radians
// around the horizontal (TiltX) and vertical (TiltY) axes; offsets are in
// points.
type ViewState struct {
	ItemID        string
	Kind          skin.Kind
	ScaleX        float64
	ScaleY        float64
	TiltX         float64
	TiltY         float64
	OffsetX       float64
	OffsetY       float64
	NormalAlpha   float64
	SelectedAlpha float64
	Pressed       bool
	Animating     bool
}

func identity() [propCount]float64 {
	var p [propCount]float64
	p[propScaleX] = 1
	p[propScaleY] = 1
	p[propNormalAlpha] = 1
	return p
}

type view struct {
	item        skin.Item
	hasSelected bool

	values  [propCount]float64
	targets [propCount]float64
	tweens  [propCount]*gween.Tween
	pressed bool
}

func newView(it skin.Item) *view {
	v := &view{item: it, hasSelected: it.Selected != ""}
	v.values = identity()
	v.targets = v.values
	return v
}

func (v *view) owns(in input.Input) bool {
	return v.item.Inputs.Has(in)
}

// press returns the target properties for pressing in on this view.
func (v *view) press(in input.Input) [propCount]float64 {
	p := identity()
	switch v.item.Kind {
	case skin.Button:
		p[propScaleX] = buttonScale
		p[propScaleY] = buttonScale
		if v.hasSelected {
			p[propNormalAlpha] = 0
			p[propSelectedAlpha] = 1
		}
	case skin.DPad:
		g := v.item.Inputs
		switch {
		case in.Equal(g.Up):
			p[propTiltX], p[propOffsetY], p[propScaleX] = dpadTilt, -dpadOffset, dpadSquash
		case in.Equal(g.Down):
			p[propTiltX], p[propOffsetY], p[propScaleX] = -dpadTilt, dpadOffset, dpadSquash
		case in.Equal(g.Left):
			p[propTiltY], p[propOffsetX], p[propScaleY] = -dpadTilt, -dpadOffset, dpadSquash
		case in.Equal(g.Right):
			p[propTiltY], p[propOffsetX], p[propScaleY] = dpadTilt, dpadOffset, dpadSquash
		}
	}
	return p
}

// animate starts a transition from the current values, which interrupts any
// transition in flight.
func (v *view) animate(to [propCount]float64, duration float32) {
	v.targets = to
	for i := range v.tweens {
		if v.values[i] == to[i] {
			v.tweens[i] = nil
			continue
		}
		v.tweens[i] = gween.New(float32(v.values[i]), float32(to[i]), duration, CriticalSpring)
	}
}

func (v *view) update(dt float32) {
	for i, tw := range v.tweens {
		if tw == nil {
			continue
		}
		val, done := tw.Update(dt)
		v.values[i] = float64(val)
		if done {
			v.values[i] = v.targets[i]
			v.tweens[i] = nil
		}
	}
}

func (v *view) animating() bool {
	for _, tw := range v.tweens {
		if tw != nil {
			return true
		}
	}
	return false
}

func (v *view) state() ViewState {
	return ViewState{
		ItemID:        v.item.ID,
		Kind:          v.item.Kind,
		ScaleX:        v.values[propScaleX],
		ScaleY:        v.values[propScaleY],
		TiltX:         v.values[propTiltX],
		TiltY:         v.values[propTiltY],
		OffsetX:       v.values[propOffsetX],
		OffsetY:       v.values[propOffsetY],
		NormalAlpha:   v.values[propNormalAlpha],
		SelectedAlpha: v.values[propSelectedAlpha],
		Pressed:       v.pressed,
		Animating:     v.animating(),
	}
}
