package feedback

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soar/padroute/internal/input"
	"github.com/soar/padroute/internal/skin"
)

type pending struct {
	d time.Duration
	f func()
}

type fakeScheduler struct {
	queued []pending
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) {
	s.queued = append(s.queued, pending{d, f})
}

func (s *fakeScheduler) fire() {
	q := s.queued
	s.queued = nil
	for _, p := range q {
		p.f()
	}
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func btn(name string) input.Input { return input.New(name, input.SkinStandard) }
func dir(name string) input.Input { return input.New(name, input.SkinDirectional) }

func testItems() []skin.Item {
	return []skin.Item{
		{
			ID: "a", Kind: skin.Button,
			Frame:    skin.Rect{X: 0, Y: 0, Width: 0.2, Height: 0.2},
			Inputs:   skin.Standard(btn("a")),
			Selected: "a_selected.pdf",
		},
		{
			ID: "b", Kind: skin.Button,
			Frame:  skin.Rect{X: 0.3, Y: 0, Width: 0.2, Height: 0.2},
			Inputs: skin.Standard(btn("b")),
		},
		{
			ID: "dpad", Kind: skin.DPad,
			Frame:  skin.Rect{X: 0, Y: 0.5, Width: 0.3, Height: 0.3},
			Inputs: skin.Directional(dir("up"), dir("down"), dir("left"), dir("right")),
		},
	}
}

func newTestCoordinator() (*Coordinator, *fakeScheduler, *fakeClock) {
	sched := &fakeScheduler{}
	clock := &fakeClock{t: time.Unix(1000, 0)}
	c := New(DefaultConfig(), sched)
	c.SetClock(clock.now)
	c.Rebuild(testItems())
	return c, sched, clock
}

func settle(c *Coordinator) {
	for i := 0; i < 10; i++ {
		c.Update(0.1)
	}
}

func TestButtonPressAndRelease(t *testing.T) {
	c, _, clock := newTestCoordinator()

	c.Press(btn("a"))
	settle(c)
	v, ok := c.View("a")
	require.True(t, ok)
	assert.Equal(t, 0.9, v.ScaleX)
	assert.Equal(t, 0.0, v.NormalAlpha)
	assert.Equal(t, 1.0, v.SelectedAlpha)
	assert.True(t, v.Pressed)
	assert.False(t, v.Animating)

	clock.advance(time.Second)
	c.Release(btn("a"))
	settle(c)
	v, _ = c.View("a")
	assert.Equal(t, 1.0, v.ScaleX)
	assert.Equal(t, 1.0, v.NormalAlpha)
	assert.Equal(t, 0.0, v.SelectedAlpha)
}

func TestButtonWithoutSelectedLayerOnlyScales(t *testing.T) {
	c, _, _ := newTestCoordinator()

	c.Press(btn("b"))
	settle(c)
	v, _ := c.View("b")
	assert.Equal(t, 0.9, v.ScaleY)
	assert.Equal(t, 1.0, v.NormalAlpha)
	assert.Equal(t, 0.0, v.SelectedAlpha)
}

func TestDPadTilt(t *testing.T) {
	c, _, _ := newTestCoordinator()

	c.Press(dir("left"))
	settle(c)
	v, _ := c.View("dpad")
	assert.InDelta(t, -math.Pi/10, v.TiltY, 1e-6)
	assert.Equal(t, -1.75, v.OffsetX)
	assert.Equal(t, 0.95, v.ScaleY)
	assert.Equal(t, 0.0, v.TiltX)
}

func TestShortTapReleaseIsDeferred(t *testing.T) {
	c, sched, clock := newTestCoordinator()

	c.Press(btn("a"))
	clock.advance(30 * time.Millisecond)
	c.Release(btn("a"))

	require.Len(t, sched.queued, 1)
	assert.Equal(t, 100*time.Millisecond, sched.queued[0].d)
	v, _ := c.View("a")
	assert.True(t, v.Pressed, "the release must wait")

	settle(c)
	sched.fire()
	v, _ = c.View("a")
	assert.False(t, v.Pressed)
	assert.True(t, v.Animating, "the release transition must still run")

	settle(c)
	v, _ = c.View("a")
	assert.Equal(t, 1.0, v.ScaleX)
}

func TestInterruptStartsFromCurrentValue(t *testing.T) {
	c, _, clock := newTestCoordinator()

	c.Press(btn("b"))
	c.Update(0.1)
	mid, _ := c.View("b")
	require.True(t, mid.ScaleX < 1 && mid.ScaleX > 0.9)

	clock.advance(time.Second)
	c.Release(btn("b"))
	c.Update(0.001)
	v, _ := c.View("b")
	assert.InDelta(t, mid.ScaleX, v.ScaleX, 0.01)
}

func TestRebuildDropsViews(t *testing.T) {
	c, _, _ := newTestCoordinator()
	c.Rebuild(nil)
	_, ok := c.View("a")
	assert.False(t, ok)
	assert.Empty(t, c.Views())
	c.Press(btn("a"))
}

func TestCriticalSpring(t *testing.T) {
	assert.Equal(t, float32(0), CriticalSpring(0, 0, 1, 1))
	assert.Equal(t, float32(1), CriticalSpring(1, 0, 1, 1))
	prev := float32(0)
	for i := 1; i < 100; i++ {
		v := CriticalSpring(float32(i)/100, 0, 1, 1)
		assert.GreaterOrEqual(t, v, prev, "no overshoot or reversal")
		assert.LessOrEqual(t, v, float32(1))
		prev = v
	}
}

type fakeHaptics struct {
	level            Level
	impacts, vibrate int
}

func (h *fakeHaptics) Level() Level { return h.level }
func (h *fakeHaptics) Impact()      { h.impacts++ }
func (h *fakeHaptics) Vibrate()     { h.vibrate++ }

func TestPulse(t *testing.T) {
	fine := &fakeHaptics{level: LevelFine}
	basic := &fakeHaptics{level: LevelBasic}

	Pulse(fine)
	Pulse(basic)
	Pulse(nil)
	assert.Equal(t, 1, fine.impacts)
	assert.Equal(t, 1, basic.vibrate)

	Pulse(Multi{fine, basic})
	assert.Equal(t, 2, fine.impacts)
	assert.Equal(t, 2, basic.vibrate)
}
