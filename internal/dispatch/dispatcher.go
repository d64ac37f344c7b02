// Package dispatch is the skin control surface: it routes touches to the
// button, thumbstick and touch-screen surfaces of the current skin and
// delivers the resulting activations to receivers.
package dispatch

import (
	"log"

	"github.com/soar/padroute/internal/contact"
	"github.com/soar/padroute/internal/controller"
	"github.com/soar/padroute/internal/feedback"
	"github.com/soar/padroute/internal/geometry"
	"github.com/soar/padroute/internal/input"
	"github.com/soar/padroute/internal/skin"
)

// Effects receives press and release visuals for button-surface inputs.
type Effects interface {
	Rebuild(items []skin.Item)
	Press(in input.Input)
	Release(in input.Input)
}

type Options struct {
	ButtonHaptics     bool
	ThumbstickHaptics bool
	// Region is the placement kept when the traits ask for split view.
	Region  skin.Placement
	Haptics feedback.Haptics
	Effects Effects
	Debug   bool
}

type ownerKind int

const (
	ownButtons ownerKind = iota
	ownThumbstick
	ownTouch
)

func (k ownerKind) String() string {
	switch k {
	case ownThumbstick:
		return "thumbstick"
	case ownTouch:
		return "touch screen"
	default:
		return "buttons"
	}
}

type owner struct {
	kind  ownerKind
	index int
}

// Dispatcher is a controller whose inputs come from the skin. Receivers
// attach through the embedded State.
type Dispatcher struct {
	*controller.State

	opts   Options
	traits skin.Traits
	items  []skin.Item

	resolver *geometry.Resolver
	buttons  *contact.Aggregator
	sticks   []*thumbstickSurface
	touches  []*touchSurface
	owners   map[contact.ID]owner
}

func New(name string, opts Options) *Dispatcher {
	d := &Dispatcher{
		State:    controller.New(name, input.SkinStandard),
		opts:     opts,
		resolver: &geometry.Resolver{},
		owners:   make(map[contact.ID]owner),
	}
	d.buttons = contact.New(d.resolver)
	return d
}

// Load rebuilds from a provider's items for traits.
func (d *Dispatcher) Load(p skin.Provider, traits skin.Traits) {
	d.Rebuild(p.Items(traits), traits)
}

// Rebuild tears down every surface, releasing whatever is active, and
// recreates them for items. In split view only items in the configured
// region are kept.
func (d *Dispatcher) Rebuild(items []skin.Item, traits skin.Traits) {
	d.reset()

	if traits.DisplayType == skin.DisplaySplitView {
		items = skin.FilterPlacement(items, d.opts.Region)
	}
	d.traits = traits
	d.items = items
	d.resolver.Items = items
	d.buttons = contact.New(d.resolver)
	d.sticks = nil
	d.touches = nil

	for _, it := range items {
		switch it.Kind {
		case skin.Thumbstick:
			d.sticks = append(d.sticks, &thumbstickSurface{item: it})
		case skin.TouchScreen:
			d.touches = append(d.touches, &touchSurface{item: it})
		}
	}
	if d.opts.Effects != nil {
		d.opts.Effects.Rebuild(items)
	}

	if d.opts.Debug {
		log.Printf("[DEBUG] Skin surfaces rebuilt for %s: %d items, %d thumbsticks, %d touch screens",
			traits, len(items), len(d.sticks), len(d.touches))
	}
}

func (d *Dispatcher) reset() {
	for _, s := range d.sticks {
		if s.held {
			g := s.item.Inputs
			d.UpdateDirectional(g.Up, g.Down, g.Left, g.Right, 0, 0)
		}
	}
	for _, s := range d.touches {
		if s.held {
			d.Deactivate(s.item.Inputs.X)
			d.Deactivate(s.item.Inputs.Y)
		}
	}
	d.applyButtons(d.buttons.Reset())
	clear(d.owners)
	d.DeactivateAll()
}

// SetHidden switches hit testing to the hidden rule, where only menu and
// flex stay reachable.
func (d *Dispatcher) SetHidden(hidden bool) {
	d.resolver.Hidden = hidden
}

func (d *Dispatcher) Hidden() bool {
	return d.resolver.Hidden
}

func (d *Dispatcher) Traits() skin.Traits {
	return d.traits
}

// Items returns the items the surfaces were built from.
func (d *Dispatcher) Items() []skin.Item {
	return d.items
}

// TouchBegan assigns the contact to a surface: a thumbstick under p, else a
// touch screen under p when no button input resolves there, else the
// buttons.
func (d *Dispatcher) TouchBegan(id contact.ID, p skin.Point) {
	if _, ok := d.owners[id]; ok {
		return
	}
	o := d.ownerAt(p)
	d.owners[id] = o

	if d.opts.Debug {
		log.Printf("[DEBUG] Touch %d began at (%.3f, %.3f) on %s", id, p.X, p.Y, o.kind)
	}

	switch o.kind {
	case ownThumbstick:
		s := d.sticks[o.index]
		s.contact, s.held = id, true
		d.steer(s, p)
	case ownTouch:
		s := d.touches[o.index]
		s.contact, s.held = id, true
		d.draw(s, p)
	default:
		d.buttons.Begin(id)
		d.applyButtons(d.buttons.Update(id, p))
	}
}

// TouchMoved updates a tracked contact. Unknown contacts are ignored.
func (d *Dispatcher) TouchMoved(id contact.ID, p skin.Point) {
	o, ok := d.owners[id]
	if !ok {
		return
	}
	switch o.kind {
	case ownThumbstick:
		d.steer(d.sticks[o.index], p)
	case ownTouch:
		d.draw(d.touches[o.index], p)
	default:
		d.applyButtons(d.buttons.Update(id, p))
	}
}

// TouchEnded releases a tracked contact. Unknown contacts are ignored.
func (d *Dispatcher) TouchEnded(id contact.ID, _ skin.Point) {
	o, ok := d.owners[id]
	if !ok {
		return
	}
	delete(d.owners, id)

	switch o.kind {
	case ownThumbstick:
		s := d.sticks[o.index]
		s.held = false
		g := s.item.Inputs
		s.x, s.y = 0, 0
		d.UpdateDirectional(g.Up, g.Down, g.Left, g.Right, 0, 0)
	case ownTouch:
		s := d.touches[o.index]
		s.held = false
		d.Deactivate(s.item.Inputs.X)
		d.Deactivate(s.item.Inputs.Y)
	default:
		d.applyButtons(d.buttons.End(id))
	}
}

// TouchCancelled is the same as TouchEnded.
func (d *Dispatcher) TouchCancelled(id contact.ID, p skin.Point) {
	d.TouchEnded(id, p)
}

// TouchesMoved updates several button contacts as one batch, so the batch
// produces at most one haptic pulse.
func (d *Dispatcher) TouchesMoved(samples []contact.Sample) {
	var batch []contact.Sample
	for _, s := range samples {
		o, ok := d.owners[s.ID]
		if !ok {
			continue
		}
		if o.kind == ownButtons {
			batch = append(batch, s)
			continue
		}
		d.TouchMoved(s.ID, s.Point)
	}
	if len(batch) > 0 {
		d.applyButtons(d.buttons.UpdateAll(batch))
	}
}

func (d *Dispatcher) ownerAt(p skin.Point) owner {
	if d.resolver.Hidden {
		return owner{kind: ownButtons}
	}
	for i, s := range d.sticks {
		if s.held {
			continue
		}
		if s.item.ExtendedFrame.Contains(p) {
			return owner{kind: ownThumbstick, index: i}
		}
	}
	for i, s := range d.touches {
		if s.held {
			continue
		}
		if s.item.Frame.Contains(p) && !d.resolver.Any(p) {
			return owner{kind: ownTouch, index: i}
		}
	}
	return owner{kind: ownButtons}
}

func (d *Dispatcher) applyButtons(delta contact.Delta) {
	if len(delta.Activated) > 0 {
		for _, in := range delta.Activated.Sorted() {
			d.Activate(in, 1)
			if d.opts.Effects != nil {
				d.opts.Effects.Press(in)
			}
		}
		if d.opts.ButtonHaptics {
			feedback.Pulse(d.opts.Haptics)
		}
	}
	for _, in := range delta.Deactivated.Sorted() {
		d.Deactivate(in)
		if d.opts.Effects != nil {
			d.opts.Effects.Release(in)
		}
	}
}

func (d *Dispatcher) steer(s *thumbstickSurface, p skin.Point) {
	g := s.item.Inputs
	before := d.activeDirections(g)

	s.x, s.y = s.axes(p)
	d.UpdateDirectional(g.Up, g.Down, g.Left, g.Right, s.x, s.y)

	if d.opts.ThumbstickHaptics && len(d.activeDirections(g).Subtract(before)) > 0 {
		feedback.Pulse(d.opts.Haptics)
	}
}

func (d *Dispatcher) activeDirections(g skin.InputGroup) input.Set {
	out := make(input.Set)
	for _, in := range g.All() {
		if d.IsActive(in) {
			out.Add(in)
		}
	}
	return out
}

func (d *Dispatcher) draw(s *touchSurface, p skin.Point) {
	x, y := s.position(p)
	d.Activate(s.item.Inputs.X, x)
	d.Activate(s.item.Inputs.Y, y)
}

// Thumbstick reports the axes of a thumbstick item and whether a contact
// holds it.
func (d *Dispatcher) Thumbstick(itemID string) (x, y float64, held bool) {
	for _, s := range d.sticks {
		if s.item.ID == itemID {
			return s.x, s.y, s.held
		}
	}
	return 0, 0, false
}
