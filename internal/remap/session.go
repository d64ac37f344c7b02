// Package remap runs the interactive remapping session: the user picks a
// skin input, then presses the physical input that should drive it.
package remap

import (
	"errors"
	"fmt"
	"log"
	"maps"
	"slices"
	"time"

	"github.com/soar/padroute/internal/controller"
	"github.com/soar/padroute/internal/input"
	"github.com/soar/padroute/internal/mapping"
)

var (
	// ErrBindingNotFound is returned when a capture cannot be resolved to a
	// skin key or a controller key.
	ErrBindingNotFound = errors.New("binding not found")
	// ErrNotAwaiting is returned for captures outside AwaitingControllerInput.
	ErrNotAwaiting = errors.New("not awaiting controller input")
	// ErrNotSelectable is returned for skin inputs that cannot be remapped.
	ErrNotSelectable = errors.New("input cannot be remapped")
)

type State int

const (
	Idle State = iota
	AwaitingControllerInput
	DebouncingReEntry
)

func (s State) String() string {
	switch s {
	case AwaitingControllerInput:
		return "awaiting controller input"
	case DebouncingReEntry:
		return "debouncing"
	default:
		return "idle"
	}
}

// Scheduler runs f on the serial context after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

// Writer saves an override without blocking the caller.
type Writer interface {
	SaveAsync(controller, gameType string, m *mapping.Mapping)
}

type Options struct {
	// Controller is the name of the controller being remapped.
	Controller string
	// Keyboard selects CaptureKey as the capture path.
	Keyboard bool
	// Default is the controller's built-in mapping.
	Default *mapping.Mapping

	Persister mapping.Persister
	Writer    Writer
	Sync      bool

	Scheduler Scheduler
	Settle    time.Duration

	// Translator returns the translator for a game type. Defaults to
	// mapping.Builtin.
	Translator func(gameType string) (*mapping.Translator, error)
	// Notice is shown to the user when a capture fails.
	Notice func(msg string)
	// Changed fires after any binding or state change.
	Changed func()
	Debug   bool
}

// Session buffers override edits per game type and writes them on Close.
// It must be used from the serial context only.
type Session struct {
	opts Options

	state      State
	gameType   string
	translator *mapping.Translator
	pending    input.Input
	locked     bool

	overrides map[string]*mapping.Mapping
	dirty     map[string]bool

	skinReceiver     *controller.ReceiverFuncs
	physicalReceiver *controller.ReceiverFuncs
}

func New(gameType string, opts Options) (*Session, error) {
	if opts.Translator == nil {
		opts.Translator = mapping.Builtin
	}
	if opts.Settle == 0 {
		opts.Settle = 100 * time.Millisecond
	}
	if opts.Default == nil {
		opts.Default = mapping.New(opts.Controller, input.PhysicalStandard)
	}

	s := &Session{
		opts:      opts,
		overrides: make(map[string]*mapping.Mapping),
		dirty:     make(map[string]bool),
	}
	if err := s.SetGameType(gameType); err != nil {
		return nil, err
	}

	s.skinReceiver = &controller.ReceiverFuncs{OnActivate: func(in input.Input, _ float64) {
		if s.state != Idle {
			return
		}
		if err := s.Select(in); err != nil && s.opts.Debug {
			log.Printf("[DEBUG] Skin input %s not selected: %v", in, err)
		}
	}}
	s.physicalReceiver = &controller.ReceiverFuncs{OnActivate: func(in input.Input, _ float64) {
		if err := s.Capture(in); err != nil && s.opts.Debug {
			log.Printf("[DEBUG] Controller input %s not captured: %v", in, err)
		}
	}}
	return s, nil
}

// SkinReceiver starts a capture from skin activations while idle. Register
// it on the skin dispatcher without a mapping.
func (s *Session) SkinReceiver() controller.Receiver {
	return s.skinReceiver
}

// PhysicalReceiver completes a capture from physical activations. Register
// it on the physical controller without a mapping.
func (s *Session) PhysicalReceiver() controller.Receiver {
	return s.physicalReceiver
}

func (s *Session) State() State {
	return s.state
}

func (s *Session) GameType() string {
	return s.gameType
}

// Pending returns the skin input waiting for a binding.
func (s *Session) Pending() (input.Input, bool) {
	return s.pending, !s.pending.IsZero()
}

// Select picks the skin input to bind. Touch-screen axes are never
// selectable.
func (s *Session) Select(in input.Input) error {
	if s.locked {
		return ErrNotAwaiting
	}
	if in.IsTouchAxis() {
		return fmt.Errorf("%w: %s", ErrNotSelectable, in.Name())
	}
	s.pending = in
	s.state = AwaitingControllerInput
	log.Printf("Remapping %s for %s: press a button on %s", in.Name(), s.gameType, s.opts.Controller)
	s.changed()
	return nil
}

// Capture binds the pending skin input to a physical controller input.
func (s *Session) Capture(in input.Input) error {
	if s.opts.Keyboard {
		return ErrNotAwaiting
	}
	return s.capture(func(override *mapping.Mapping) (string, input.Input, bool) {
		key, bound, ok := mapping.ControllerKey(in, override, s.opts.Default)
		if !ok {
			return "", input.Input{}, false
		}
		return key, bound, true
	})
}

// CaptureKey binds the pending skin input to a keyboard key.
func (s *Session) CaptureKey(key string) error {
	if !s.opts.Keyboard {
		return ErrNotAwaiting
	}
	return s.capture(func(*mapping.Mapping) (string, input.Input, bool) {
		return key, input.New(key, input.SkinStandard), true
	})
}

type resolveFunc func(override *mapping.Mapping) (key string, bound input.Input, ok bool)

func (s *Session) capture(resolve resolveFunc) error {
	if s.state != AwaitingControllerInput || s.locked {
		return ErrNotAwaiting
	}

	skinKey, _, ok := s.translator.SkinKey(s.pending)
	if !ok {
		return s.notFound(fmt.Sprintf("no skin key for %s", s.pending.Name()))
	}

	override := s.override()
	key, bound, ok := resolve(override)
	if !ok {
		return s.notFound("no controller key for the pressed input")
	}

	value := input.New(skinKey, bound.Namespace())
	if bound.IsContinuous() {
		value = value.Continuous()
	}

	if prev, had := override.Lookup(key); had {
		log.Printf("Rebinding %s from %s to %s (%s)", key, prev.Name(), skinKey, s.gameType)
	} else {
		log.Printf("Binding %s to %s (%s)", key, skinKey, s.gameType)
	}
	if evicted := override.Set(key, value); len(evicted) > 0 {
		log.Printf("Unbound %v, they were mapped to %s", evicted, skinKey)
	}
	s.dirty[s.gameType] = true

	s.locked = true
	s.state = DebouncingReEntry
	s.changed()
	s.settle()
	return nil
}

func (s *Session) notFound(detail string) error {
	log.Printf("Binding not found: %s", detail)
	if s.opts.Notice != nil {
		s.opts.Notice("Binding not found")
	}
	s.stop()
	return fmt.Errorf("%w: %s", ErrBindingNotFound, detail)
}

func (s *Session) settle() {
	done := func() {
		s.locked = false
		s.stop()
	}
	if s.opts.Scheduler == nil {
		done()
		return
	}
	s.opts.Scheduler.AfterFunc(s.opts.Settle, done)
}

func (s *Session) stop() {
	s.pending = input.Input{}
	if !s.locked {
		s.state = Idle
	}
	s.changed()
}

// Cancel abandons the pending selection without changing any binding.
func (s *Session) Cancel() {
	if s.locked {
		return
	}
	s.stop()
}

// Reset drops the override for the current game type. A stored record is
// marked deleted when sync is enabled and removed otherwise.
func (s *Session) Reset() error {
	delete(s.overrides, s.gameType)
	delete(s.dirty, s.gameType)

	var err error
	if s.opts.Persister != nil {
		err = s.opts.Persister.DeleteOverride(s.opts.Controller, s.gameType, s.opts.Sync)
		if errors.Is(err, mapping.ErrNotFound) {
			err = nil
		}
	}
	if !s.locked {
		s.stop()
	}
	if err != nil {
		return fmt.Errorf("failed to reset mapping for %s: %w", s.gameType, err)
	}
	return nil
}

// SetGameType switches the game type being edited. Edits to the previous
// game type stay buffered until Close.
func (s *Session) SetGameType(gameType string) error {
	tr, err := s.opts.Translator(gameType)
	if err != nil {
		return fmt.Errorf("failed to switch to %s: %w", gameType, err)
	}
	s.gameType = gameType
	s.translator = tr
	if !s.locked {
		s.pending = input.Input{}
		s.state = Idle
	}
	s.changed()
	return nil
}

// Override returns the buffered override for the current game type,
// loading it on first use.
func (s *Session) Override() *mapping.Mapping {
	return s.override()
}

func (s *Session) override() *mapping.Mapping {
	if m, ok := s.overrides[s.gameType]; ok {
		return m
	}
	var m *mapping.Mapping
	if s.opts.Persister != nil {
		m = mapping.OverrideOrDefault(s.opts.Persister, s.opts.Controller, s.gameType, s.opts.Default)
	} else {
		m = s.opts.Default.Clone()
	}
	s.overrides[s.gameType] = m
	return m
}

// Binding returns the short label of the physical key bound to a skin
// input, as drawn on the binding bubbles.
func (s *Session) Binding(skinInput input.Input) (string, bool) {
	skinKey, _, ok := s.translator.SkinKey(skinInput)
	if !ok {
		return "", false
	}
	key, ok := mapping.BoundKey(s.override(), skinKey)
	if !ok {
		return "", false
	}
	return mapping.ShortLabel(key), true
}

// Dirty lists the game types with unsaved edits.
func (s *Session) Dirty() []string {
	return slices.Sorted(maps.Keys(s.dirty))
}

// Close hands every edited override to the writer, one write per game type,
// and does not wait for them.
func (s *Session) Close() {
	s.pending = input.Input{}
	s.state = Idle
	if s.opts.Writer == nil {
		return
	}
	for _, gt := range s.Dirty() {
		s.opts.Writer.SaveAsync(s.opts.Controller, gt, s.overrides[gt].Clone())
	}
	clear(s.dirty)
}

func (s *Session) changed() {
	if s.opts.Changed != nil {
		s.opts.Changed()
	}
}
