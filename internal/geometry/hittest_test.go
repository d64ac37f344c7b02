package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soar/padroute/internal/input"
	"github.com/soar/padroute/internal/skin"
)

func dir(name string) input.Input { return input.New(name, input.SkinDirectional) }
func btn(name string) input.Input { return input.New(name, input.SkinStandard) }

func dpad(id string, frame skin.Rect, kind skin.Kind) skin.Item {
	it := skin.Item{
		ID:     id,
		Kind:   kind,
		Frame:  frame,
		Inputs: skin.Directional(dir("up"), dir("down"), dir("left"), dir("right")),
	}
	if err := it.Validate(); err != nil {
		panic(err)
	}
	return it
}

func button(id string, frame skin.Rect, names ...string) skin.Item {
	ins := make([]input.Input, len(names))
	for i, n := range names {
		ins[i] = btn(n)
	}
	it := skin.Item{ID: id, Kind: skin.Button, Frame: frame, Inputs: skin.Standard(ins...)}
	if err := it.Validate(); err != nil {
		panic(err)
	}
	return it
}

func names(ins []input.Input) []string {
	return input.NewSet(ins...).Names()
}

func TestDPadCornerPressesTwoDirections(t *testing.T) {
	items := []skin.Item{dpad("dpad1", skin.Rect{X: 0, Y: 0, Width: 0.3, Height: 0.3}, skin.DPad)}

	hits := HitTest(skin.Point{X: 0.05, Y: 0.05}, items, false)
	assert.ElementsMatch(t, []string{"up", "left"}, names(hits))
}

func TestDPadBands(t *testing.T) {
	items := []skin.Item{dpad("dpad1", skin.Rect{X: 0, Y: 0, Width: 0.3, Height: 0.3}, skin.DPad)}

	tests := []struct {
		name string
		p    skin.Point
		want []string
	}{
		{"center", skin.Point{X: 0.15, Y: 0.15}, nil},
		{"top", skin.Point{X: 0.15, Y: 0.05}, []string{"up"}},
		{"bottom", skin.Point{X: 0.15, Y: 0.25}, []string{"down"}},
		{"left", skin.Point{X: 0.05, Y: 0.15}, []string{"left"}},
		{"right", skin.Point{X: 0.25, Y: 0.15}, []string{"right"}},
		{"bottom right", skin.Point{X: 0.25, Y: 0.25}, []string{"down", "right"}},
		{"outside", skin.Point{X: 0.31, Y: 0.15}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := names(HitTest(tt.p, items, false))
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.ElementsMatch(t, tt.want, got)
		})
	}
}

func TestExtendedFrameWidensOuterBands(t *testing.T) {
	it := skin.Item{
		ID:            "dpad1",
		Kind:          skin.DPad,
		Frame:         skin.Rect{X: 0.1, Y: 0.1, Width: 0.3, Height: 0.3},
		ExtendedFrame: skin.Rect{X: 0.05, Y: 0.05, Width: 0.4, Height: 0.4},
		Inputs:        skin.Directional(dir("up"), dir("down"), dir("left"), dir("right")),
	}
	require.NoError(t, it.Validate())

	hits := HitTest(skin.Point{X: 0.25, Y: 0.07}, []skin.Item{it}, false)
	assert.Equal(t, []string{"up"}, names(hits))
}

func TestThumbstickAndTouchItemsAreSkipped(t *testing.T) {
	touch := skin.Item{
		ID:     "screen",
		Kind:   skin.TouchScreen,
		Frame:  skin.Rect{X: 0, Y: 0, Width: 1, Height: 1},
		Inputs: skin.Touch(input.New(input.TouchScreenX, input.SkinTouchAxis), input.New(input.TouchScreenY, input.SkinTouchAxis)),
	}
	require.NoError(t, touch.Validate())
	items := []skin.Item{
		dpad("stick", skin.Rect{X: 0, Y: 0, Width: 0.5, Height: 0.5}, skin.Thumbstick),
		touch,
	}

	assert.Empty(t, HitTest(skin.Point{X: 0.1, Y: 0.1}, items, false))
}

func TestOverlappingItemsKeepDuplicates(t *testing.T) {
	items := []skin.Item{
		button("a1", skin.Rect{X: 0, Y: 0, Width: 0.5, Height: 0.5}, "a"),
		button("a2", skin.Rect{X: 0.2, Y: 0.2, Width: 0.5, Height: 0.5}, "a", "b"),
	}

	hits := HitTest(skin.Point{X: 0.3, Y: 0.3}, items, false)
	assert.Len(t, hits, 3)
	assert.Equal(t, []string{"a", "b"}, names(hits))
}

func TestHiddenOnlyMenuAndFlex(t *testing.T) {
	menu := button("menu", skin.Rect{X: 0, Y: 0, Width: 0.2, Height: 0.2}, "menu")
	a := button("a", skin.Rect{X: 0.5, Y: 0.5, Width: 0.2, Height: 0.2}, "a")
	under := button("under", skin.Rect{X: 0, Y: 0, Width: 0.2, Height: 0.2}, "b")

	items := []skin.Item{menu, a, under}
	assert.Equal(t, []string{"menu"}, names(HitTest(skin.Point{X: 0.1, Y: 0.1}, items, true)))
	assert.Empty(t, HitTest(skin.Point{X: 0.6, Y: 0.6}, items, true))

	// The first item under the point decides even when a later one has menu.
	items = []skin.Item{under, menu}
	assert.Empty(t, HitTest(skin.Point{X: 0.1, Y: 0.1}, items, true))
}

func TestHitTestIsIdempotent(t *testing.T) {
	items := []skin.Item{
		dpad("dpad1", skin.Rect{X: 0, Y: 0, Width: 0.3, Height: 0.3}, skin.DPad),
		button("a", skin.Rect{X: 0.2, Y: 0, Width: 0.3, Height: 0.3}, "a"),
	}
	p := skin.Point{X: 0.25, Y: 0.05}

	first := HitTest(p, items, false)
	second := HitTest(p, items, false)
	assert.Equal(t, first, second)
	assert.Equal(t, skin.Rect{X: 0, Y: 0, Width: 0.3, Height: 0.3}, items[0].Frame)
}

func TestResolver(t *testing.T) {
	r := &Resolver{Items: []skin.Item{button("a", skin.Rect{X: 0, Y: 0, Width: 0.5, Height: 0.5}, "a")}}

	assert.True(t, r.Any(skin.Point{X: 0.1, Y: 0.1}))
	assert.False(t, r.Any(skin.Point{X: 0.9, Y: 0.9}))
	assert.True(t, r.Inputs(skin.Point{X: 0.1, Y: 0.1}).Contains(btn("a")))
}

func TestThumbstickBandsAreWider(t *testing.T) {
	frame := skin.Rect{X: 0, Y: 0, Width: 0.3, Height: 0.3}
	stick := dpad("stick", frame, skin.Thumbstick)
	pad := dpad("dpad1", frame, skin.DPad)
	p := skin.Point{X: 0.18, Y: 0.12}

	assert.Equal(t, 2.0, bandDivisor(skin.Thumbstick))
	assert.Equal(t, 3.0, bandDivisor(skin.DPad))
	assert.ElementsMatch(t, []string{"up", "right"}, names(directional(p, &stick)))
	assert.Empty(t, directional(p, &pad))
	assert.Empty(t, HitTest(p, []skin.Item{stick}, false), "thumbsticks are not hit tested")
}
