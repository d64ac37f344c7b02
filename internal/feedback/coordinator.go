// Package feedback couples activations to haptic pulses and to tweened
// press and release visuals on skin items.
package feedback

import (
	"time"

	"github.com/soar/padroute/internal/input"
	"github.com/soar/padroute/internal/skin"
)

// Scheduler runs f on the serial context after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

type Config struct {
	// Duration of a press or release transition.
	Duration time.Duration
	// A release arriving sooner than ReleaseDebounce after its press is
	// deferred by ReleaseDelay so the press stays visible.
	ReleaseDebounce time.Duration
	ReleaseDelay    time.Duration
}

func DefaultConfig() Config {
	return Config{
		Duration:        650 * time.Millisecond,
		ReleaseDebounce: 60 * time.Millisecond,
		ReleaseDelay:    100 * time.Millisecond,
	}
}

// Coordinator owns one effect view per button and d-pad item. It must be
// used from the serial context only.
type Coordinator struct {
	cfg   Config
	sched Scheduler
	now   func() time.Time

	views     []*view
	pressedAt map[input.Key]time.Time
}

func New(cfg Config, sched Scheduler) *Coordinator {
	return &Coordinator{
		cfg:       cfg,
		sched:     sched,
		now:       time.Now,
		pressedAt: make(map[input.Key]time.Time),
	}
}

// SetClock replaces the time source.
func (c *Coordinator) SetClock(now func() time.Time) {
	c.now = now
}

// Rebuild drops every view and creates new ones for items.
func (c *Coordinator) Rebuild(items []skin.Item) {
	c.views = c.views[:0]
	clear(c.pressedAt)
	for _, it := range items {
		if it.Kind == skin.Button || it.Kind == skin.DPad {
			c.views = append(c.views, newView(it))
		}
	}
}

// Press starts the press transition of the item that owns in.
func (c *Coordinator) Press(in input.Input) {
	c.pressedAt[in.Key()] = c.now()
	v := c.find(in)
	if v == nil {
		return
	}
	v.pressed = true
	v.animate(v.press(in), c.seconds())
}

// Release starts the release transition, or schedules it when the press
// was too short to have been seen.
func (c *Coordinator) Release(in input.Input) {
	at, ok := c.pressedAt[in.Key()]
	delete(c.pressedAt, in.Key())

	if ok && c.now().Sub(at) < c.cfg.ReleaseDebounce && c.sched != nil {
		c.sched.AfterFunc(c.cfg.ReleaseDelay, func() {
			if _, again := c.pressedAt[in.Key()]; again {
				return
			}
			c.release(in)
		})
		return
	}
	c.release(in)
}

func (c *Coordinator) release(in input.Input) {
	v := c.find(in)
	if v == nil {
		return
	}
	v.pressed = false
	v.animate(identity(), c.seconds())
}

// Update advances every transition by dt seconds.
func (c *Coordinator) Update(dt float32) {
	for _, v := range c.views {
		v.update(dt)
	}
}

// View returns the current visuals of an item.
func (c *Coordinator) View(id string) (ViewState, bool) {
	for _, v := range c.views {
		if v.item.ID == id {
			return v.state(), true
		}
	}
	return ViewState{}, false
}

// Views snapshots every view in item order.
func (c *Coordinator) Views() []ViewState {
	out := make([]ViewState, len(c.views))
	for i, v := range c.views {
		out[i] = v.state()
	}
	return out
}

func (c *Coordinator) find(in input.Input) *view {
	for _, v := range c.views {
		if v.owns(in) {
			return v
		}
	}
	return nil
}

func (c *Coordinator) seconds() float32 {
	return float32(c.cfg.Duration.Seconds())
}
