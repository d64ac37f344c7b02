// Package controller keeps the activated-input bookkeeping shared by every
// input source and fans activations out to receivers through per-receiver
// mappings.
package controller

import (
	"github.com/soar/padroute/internal/input"
	"github.com/soar/padroute/internal/mapping"
)

// Receiver consumes mapped activations from a controller.
type Receiver interface {
	Activate(in input.Input, value float64)
	Deactivate(in input.Input)
}

// ReceiverFuncs adapts a pair of funcs to Receiver. Use a pointer so the
// receiver can be removed again.
type ReceiverFuncs struct {
	OnActivate   func(in input.Input, value float64)
	OnDeactivate func(in input.Input)
}

func (f *ReceiverFuncs) Activate(in input.Input, value float64) {
	if f.OnActivate != nil {
		f.OnActivate(in, value)
	}
}

func (f *ReceiverFuncs) Deactivate(in input.Input) {
	if f.OnDeactivate != nil {
		f.OnDeactivate(in)
	}
}

type binding struct {
	r Receiver
	m mapping.Mapper
}

// State is one input source: a skin, a physical pad or the keyboard. It is
// not safe for concurrent use.
type State struct {
	Name      string
	Namespace input.Namespace

	activated map[input.Key]float64
	inputs    map[input.Key]input.Input
	sustained map[input.Key]float64
	receivers []binding
}

func New(name string, ns input.Namespace) *State {
	return &State{
		Name:      name,
		Namespace: ns,
		activated: make(map[input.Key]float64),
		inputs:    make(map[input.Key]input.Input),
		sustained: make(map[input.Key]float64),
	}
}

// AddReceiver registers r with mapping m, replacing any previous mapping
// for r. A nil mapping passes inputs through unchanged.
func (s *State) AddReceiver(r Receiver, m mapping.Mapper) {
	for i := range s.receivers {
		if s.receivers[i].r == r {
			s.receivers[i].m = m
			return
		}
	}
	s.receivers = append(s.receivers, binding{r: r, m: m})
}

func (s *State) RemoveReceiver(r Receiver) {
	for i := range s.receivers {
		if s.receivers[i].r == r {
			s.receivers = append(s.receivers[:i], s.receivers[i+1:]...)
			return
		}
	}
}

// Receivers lists the registered receivers in registration order.
func (s *State) Receivers() []Receiver {
	out := make([]Receiver, len(s.receivers))
	for i, b := range s.receivers {
		out[i] = b.r
	}
	return out
}

// MappingFor returns the mapping r was registered with.
func (s *State) MappingFor(r Receiver) (mapping.Mapper, bool) {
	for _, b := range s.receivers {
		if b.r == r {
			return b.m, true
		}
	}
	return nil, false
}

// MappedInput is what r receives for in.
func (s *State) MappedInput(in input.Input, r Receiver) (input.Input, bool) {
	m, ok := s.MappingFor(r)
	if !ok {
		return input.Input{}, false
	}
	return mapped(in, m)
}

func mapped(in input.Input, m mapping.Mapper) (input.Input, bool) {
	if m == nil {
		return in, true
	}
	return m.Input(in)
}

// Activate records in at value and forwards it to every receiver whose
// mapping covers it. An input may be activated repeatedly, as a moving
// analog stick does.
func (s *State) Activate(in input.Input, value float64) {
	s.activated[in.Key()] = value
	s.inputs[in.Key()] = in

	for _, b := range s.snapshot() {
		if out, ok := mapped(in, b.m); ok {
			b.r.Activate(out, value)
		}
	}
}

// Deactivate releases in. Releasing an input that is not active does
// nothing. A sustained input stays active, and a sustained continuous input
// returns to its sustained value. A receiver only sees the mapped input
// deactivate once no other active input maps to it.
func (s *State) Deactivate(in input.Input) {
	if _, ok := s.activated[in.Key()]; !ok {
		return
	}

	if v, ok := s.sustained[in.Key()]; ok {
		if in.IsContinuous() {
			s.Activate(in, v)
		}
		return
	}

	delete(s.activated, in.Key())
	delete(s.inputs, in.Key())

	for _, b := range s.snapshot() {
		out, ok := mapped(in, b.m)
		if !ok {
			continue
		}
		if s.stillMapped(out, b.m) {
			continue
		}
		b.r.Deactivate(out)
	}
}

func (s *State) stillMapped(out input.Input, m mapping.Mapper) bool {
	for _, other := range s.inputs {
		if o, ok := mapped(other, m); ok && o.Equal(out) {
			return true
		}
	}
	return false
}

// Sustain holds in active at value until Unsustain.
func (s *State) Sustain(in input.Input, value float64) {
	if v, ok := s.activated[in.Key()]; !ok || v != value {
		s.Activate(in, value)
	}
	s.sustained[in.Key()] = value
}

func (s *State) Unsustain(in input.Input) {
	delete(s.sustained, in.Key())
	s.Deactivate(in)
}

// IsActive reports whether in is active.
func (s *State) IsActive(in input.Input) bool {
	_, ok := s.activated[in.Key()]
	return ok
}

// Value returns the activation value of in.
func (s *State) Value(in input.Input) (float64, bool) {
	v, ok := s.activated[in.Key()]
	return v, ok
}

// IsSustained reports whether in is held by Sustain.
func (s *State) IsSustained(in input.Input) bool {
	_, ok := s.sustained[in.Key()]
	return ok
}

// Active returns the active inputs.
func (s *State) Active() input.Set {
	out := make(input.Set, len(s.inputs))
	for k, in := range s.inputs {
		out[k] = in
	}
	return out
}

// DeactivateAll releases every active input, sustained ones included.
func (s *State) DeactivateAll() {
	clear(s.sustained)
	for _, in := range s.Active().Sorted() {
		s.Deactivate(in)
	}
}

// UpdateDirectional decomposes an axis pair in [-1,1]² into the four
// directional inputs with magnitude abs(value). The opposite direction of
// each axis is released before the new one is pressed, so both signs are
// never active together. Up is positive y.
func (s *State) UpdateDirectional(up, down, left, right input.Input, x, y float64) {
	s.updateAxis(left, right, x)
	s.updateAxis(down, up, y)
}

func (s *State) updateAxis(negative, positive input.Input, v float64) {
	switch {
	case v < 0:
		s.Deactivate(positive)
		s.Activate(negative, -v)
	case v > 0:
		s.Deactivate(negative)
		s.Activate(positive, v)
	default:
		s.Deactivate(negative)
		s.Deactivate(positive)
	}
}

// snapshot lets receivers add or remove receivers while being called.
func (s *State) snapshot() []binding {
	out := make([]binding, len(s.receivers))
	copy(out, s.receivers)
	return out
}
