package contact

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soar/padroute/internal/geometry"
	"github.com/soar/padroute/internal/input"
	"github.com/soar/padroute/internal/skin"
)

func btn(name string) input.Input { return input.New(name, input.SkinStandard) }

func item(id string, frame skin.Rect, names ...string) skin.Item {
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

// Left half is "a", right half is "b", the top strip is "menu" over both.
func testResolver() *geometry.Resolver {
	return &geometry.Resolver{Items: []skin.Item{
		item("a", skin.Rect{X: 0, Y: 0, Width: 0.5, Height: 1}, "a"),
		item("b", skin.Rect{X: 0.5, Y: 0, Width: 0.5, Height: 1}, "b"),
		item("menu", skin.Rect{X: 0, Y: 0, Width: 1, Height: 0.1}, "menu"),
	}}
}

var (
	pointA    = skin.Point{X: 0.25, Y: 0.5}
	pointB    = skin.Point{X: 0.75, Y: 0.5}
	pointMenu = skin.Point{X: 0.25, Y: 0.05}
	pointNone = skin.Point{X: 1.5, Y: 1.5}
)

func TestTwoContactsActivateAndReleaseSeparately(t *testing.T) {
	agg := New(testResolver())

	agg.Begin(1)
	agg.Begin(2)

	d := agg.Update(1, pointA)
	assert.True(t, d.Activated.Equal(input.NewSet(btn("a"))))
	assert.Empty(t, d.Deactivated)

	d = agg.Update(2, pointB)
	assert.True(t, d.Activated.Equal(input.NewSet(btn("b"))))
	assert.Empty(t, d.Deactivated)

	d = agg.End(1)
	assert.True(t, d.Deactivated.Equal(input.NewSet(btn("a"))))
	d = agg.End(2)
	assert.True(t, d.Deactivated.Equal(input.NewSet(btn("b"))))
	assert.Empty(t, agg.Active())
}

func TestBatchReleaseEmitsBoth(t *testing.T) {
	agg := New(testResolver())
	agg.Begin(1)
	agg.Begin(2)
	agg.UpdateAll([]Sample{{ID: 1, Point: pointA}, {ID: 2, Point: pointB}})

	d := agg.EndAll([]ID{1, 2})
	assert.ElementsMatch(t, []string{"a", "b"}, d.Deactivated.Names())
}

func TestBeginEmitsNothing(t *testing.T) {
	agg := New(testResolver())
	agg.Begin(1)
	assert.True(t, agg.Tracking(1))
	assert.Empty(t, agg.Active())
}

func TestUnknownContactsAreIgnored(t *testing.T) {
	agg := New(testResolver())

	d := agg.Update(7, pointA)
	assert.True(t, d.IsEmpty())
	d = agg.End(7)
	assert.True(t, d.IsEmpty())
	assert.False(t, agg.Tracking(7))
}

func TestMenuCollapsesContact(t *testing.T) {
	agg := New(testResolver())
	agg.Begin(1)

	d := agg.Update(1, pointMenu)
	assert.Equal(t, []string{"menu"}, d.Activated.Names())
	assert.Equal(t, []string{"menu"}, agg.contacts[1].Names())

	d = agg.Update(1, pointA)
	assert.Equal(t, []string{"a"}, d.Activated.Names())
	assert.Equal(t, []string{"menu"}, d.Deactivated.Names())
}

func TestSharedInputStaysActiveWhileAnyContactHoldsIt(t *testing.T) {
	agg := New(testResolver())
	agg.Begin(1)
	agg.Begin(2)

	agg.Update(1, pointA)
	d := agg.Update(2, pointA)
	assert.True(t, d.IsEmpty())

	d = agg.End(1)
	assert.True(t, d.IsEmpty())
	d = agg.Cancel(2)
	assert.Equal(t, []string{"a"}, d.Deactivated.Names())
}

func TestReset(t *testing.T) {
	agg := New(testResolver())
	agg.Begin(1)
	agg.Update(1, pointB)

	d := agg.Reset()
	assert.Equal(t, []string{"b"}, d.Deactivated.Names())
	assert.False(t, agg.Tracking(1))
}

// Random begin/update/end sequences must replay to the committed set and
// never activate an input that is already active.
func TestDeltasReplayToCommittedSet(t *testing.T) {
	points := []skin.Point{pointA, pointB, pointMenu, pointNone}
	rng := rand.New(rand.NewPCG(1, 2))

	for run := 0; run < 50; run++ {
		agg := New(testResolver())
		replayed := make(input.Set)

		apply := func(d Delta) {
			for k := range d.Activated {
				_, already := replayed[k]
				require.False(t, already, "duplicate activation of %s", k)
			}
			for k := range d.Deactivated {
				_, active := replayed[k]
				require.True(t, active, "deactivation of inactive %s", k)
			}
			for k, v := range d.Activated {
				replayed[k] = v
			}
			for k := range d.Deactivated {
				delete(replayed, k)
			}
		}

		for step := 0; step < 200; step++ {
			id := ID(rng.IntN(4))
			switch rng.IntN(3) {
			case 0:
				if !agg.Tracking(id) {
					agg.Begin(id)
				}
			case 1:
				apply(agg.Update(id, points[rng.IntN(len(points))]))
			case 2:
				apply(agg.End(id))
			}
			require.True(t, replayed.Equal(agg.Active()))
		}

		for id := ID(0); id < 4; id++ {
			apply(agg.End(id))
		}
		assert.Empty(t, replayed)
	}
}
