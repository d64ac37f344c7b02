package engine

import (
	"github.com/soar/padroute/internal/feedback"
	"github.com/soar/padroute/internal/remap"
	"github.com/soar/padroute/internal/skin"
)

// Stick is the deflection of a thumbstick item.
type Stick struct {
	X, Y float64
	Held bool
}

// Scene is what a host draws for one frame.
type Scene struct {
	Traits skin.Traits
	Items  []skin.Item
	Hidden bool
	Views  map[string]feedback.ViewState
	Sticks map[string]Stick

	// Remapping is the source being remapped, empty outside a session.
	Remapping string
	State     remap.State
	// Pending is the skin input waiting for a binding.
	Pending string
	// Labels holds the binding bubble text per skin input name.
	Labels map[string]string

	Notice string
}

// Scene snapshots the drawable state.
func (e *Engine) Scene() Scene {
	sc := Scene{
		Traits: e.dispatcher.Traits(),
		Items:  e.dispatcher.Items(),
		Hidden: e.dispatcher.Hidden(),
		Views:  make(map[string]feedback.ViewState),
		Sticks: make(map[string]Stick),
	}
	for _, v := range e.effects.Views() {
		sc.Views[v.ItemID] = v
	}
	for _, it := range sc.Items {
		if it.Kind == skin.Thumbstick {
			x, y, held := e.dispatcher.Thumbstick(it.ID)
			sc.Sticks[it.ID] = Stick{X: x, Y: y, Held: held}
		}
	}
	if e.now().Before(e.noticeUntil) {
		sc.Notice = e.notice
	}

	if e.session == nil {
		return sc
	}
	sc.Remapping = e.target
	sc.State = e.session.State()
	if in, ok := e.session.Pending(); ok {
		sc.Pending = in.Name()
	}
	sc.Labels = make(map[string]string)
	for _, it := range sc.Items {
		if it.Kind == skin.TouchScreen {
			continue
		}
		for _, in := range it.Inputs.All() {
			if label, ok := e.session.Binding(in); ok {
				sc.Labels[in.Name()] = label
			}
		}
	}
	return sc
}
