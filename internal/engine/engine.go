// Package engine wires the input sources, the remapping session and the
// output receivers together. Every method must be called on the serial
// context; other goroutines go through the loop.
package engine

import (
	"errors"
	"fmt"
	"log"
	"slices"
	"time"

	"github.com/soar/padroute/internal/contact"
	"github.com/soar/padroute/internal/controller"
	"github.com/soar/padroute/internal/dispatch"
	"github.com/soar/padroute/internal/feedback"
	"github.com/soar/padroute/internal/gamepad"
	"github.com/soar/padroute/internal/keyboard"
	"github.com/soar/padroute/internal/loop"
	"github.com/soar/padroute/internal/mapping"
	"github.com/soar/padroute/internal/remap"
	"github.com/soar/padroute/internal/skin"
	"github.com/soar/padroute/internal/store"
)

// Source names, as the viewer sees them.
const (
	SourceSkin       = "Skin"
	SourceKeyboard   = "Keyboard"
	SourceController = "Controller"
)

var (
	ErrRemapping     = errors.New("already remapping")
	ErrUnknownSource = errors.New("unknown input source")
)

const noticeDuration = 2 * time.Second

// Output builds the receiver that gets a source's core inputs.
type Output func(source string) controller.Receiver

type Options struct {
	GameType string
	Skin     skin.Provider
	Traits   skin.Traits
	// Region is the placement kept in split view.
	Region skin.Placement

	// Store holds the overrides. Without it every controller uses its
	// default mapping and remaps are discarded on StopRemap.
	Store *store.Cache
	Sync  bool

	Feedback          feedback.Config
	Settle            time.Duration
	ButtonHaptics     bool
	ThumbstickHaptics bool
	Haptics           feedback.Haptics

	Outputs []Output
	// Notice is called with every message shown to the user.
	Notice func(msg string)
	Debug  bool
}

// Engine owns the routing state.
type Engine struct {
	opts Options
	loop *loop.Loop
	now  func() time.Time

	translator *mapping.Translator
	dispatcher *dispatch.Dispatcher
	effects    *feedback.Coordinator
	keyboard   *keyboard.Keyboard
	pad        *gamepad.Pad

	outputs map[string][]controller.Receiver

	session *remap.Session
	target  string

	notice      string
	noticeUntil time.Time
}

func New(l *loop.Loop, opts Options) (*Engine, error) {
	tr, err := mapping.Builtin(opts.GameType)
	if err != nil {
		return nil, err
	}
	if opts.Feedback == (feedback.Config{}) {
		opts.Feedback = feedback.DefaultConfig()
	}

	e := &Engine{
		opts:       opts,
		loop:       l,
		now:        time.Now,
		translator: tr,
		keyboard:   keyboard.New(opts.Debug),
		pad:        gamepad.NewPad(SourceController, opts.Debug),
		outputs:    make(map[string][]controller.Receiver),
	}
	e.effects = feedback.New(opts.Feedback, l)
	e.dispatcher = dispatch.New(SourceSkin, dispatch.Options{
		ButtonHaptics:     opts.ButtonHaptics,
		ThumbstickHaptics: opts.ThumbstickHaptics,
		Region:            opts.Region,
		Haptics:           opts.Haptics,
		Effects:           e.effects,
		Debug:             opts.Debug,
	})

	for _, src := range []string{SourceSkin, SourceKeyboard, SourceController} {
		for _, out := range opts.Outputs {
			e.outputs[src] = append(e.outputs[src], out(src))
		}
		e.wire(src)
	}
	if opts.Skin != nil {
		e.dispatcher.Load(opts.Skin, opts.Traits)
	}
	return e, nil
}

func (e *Engine) source(src string) *controller.State {
	switch src {
	case SourceSkin:
		return e.dispatcher.State
	case SourceKeyboard:
		return e.keyboard.State
	case SourceController:
		return e.pad.State
	}
	return nil
}

// mapper is what the outputs of src see: skin inputs go straight to the
// core, physical inputs go through the controller's override, or its
// default mapping when it has none.
func (e *Engine) mapper(src string) mapping.Mapper {
	var name string
	var def *mapping.Mapping
	switch src {
	case SourceKeyboard:
		name, def = keyboard.Name, keyboard.DefaultMapping()
	case SourceController:
		name, def = e.pad.Name, gamepad.DefaultMapping(e.pad.Name)
	default:
		return e.translator
	}

	layer := &mapping.Layered{Default: def}
	if e.opts.Store != nil {
		ov, err := e.opts.Store.LoadOverride(name, e.translator.GameType)
		switch {
		case err == nil:
			layer = &mapping.Layered{Override: ov}
		case !errors.Is(err, mapping.ErrNotFound):
			log.Printf("Failed to load mapping for %s/%s, using the default: %v", name, e.translator.GameType, err)
		}
	}
	return mapping.Chain{layer, e.translator}
}

// wire (re)registers the outputs of src with its current mapping. The
// source being remapped stays detached.
func (e *Engine) wire(src string) {
	if e.session != nil && (src == SourceSkin || src == e.target) {
		return
	}
	state, m := e.source(src), e.mapper(src)
	for _, r := range e.outputs[src] {
		state.AddReceiver(r, m)
	}
}

func (e *Engine) unwire(src string) {
	state := e.source(src)
	for _, r := range e.outputs[src] {
		state.RemoveReceiver(r)
	}
}

// release lets go of everything src holds, so no receiver keeps an input
// its mapping is about to lose.
func (e *Engine) release(src string) {
	switch src {
	case SourceSkin:
		e.dispatcher.Rebuild(e.dispatcher.Items(), e.dispatcher.Traits())
	case SourceKeyboard:
		e.keyboard.Release()
	case SourceController:
		e.pad.Release()
	}
}

func (e *Engine) rewire(src string) {
	e.release(src)
	e.unwire(src)
	e.wire(src)
}

func (e *Engine) GameType() string {
	return e.translator.GameType
}

// SetGameType switches every source to the keymap and overrides of
// gameType.
func (e *Engine) SetGameType(gameType string) error {
	tr, err := mapping.Builtin(gameType)
	if err != nil {
		return err
	}
	if e.session != nil {
		if err := e.session.SetGameType(gameType); err != nil {
			return err
		}
	}
	e.translator = tr
	for _, src := range []string{SourceSkin, SourceKeyboard, SourceController} {
		e.rewire(src)
	}
	log.Printf("Game type set to %s", gameType)
	return nil
}

// NextGameType switches to the built-in game type after the current one,
// wrapping around.
func (e *Engine) NextGameType() error {
	types := mapping.GameTypes()
	next := types[0]
	if i := slices.Index(types, e.GameType()); i >= 0 {
		next = types[(i+1)%len(types)]
	}
	if err := e.SetGameType(next); err != nil {
		return err
	}
	e.notify("Game type: " + next)
	return nil
}

// SetSkin replaces the skin and rebuilds the skin surfaces.
func (e *Engine) SetSkin(p skin.Provider) {
	e.opts.Skin = p
	e.dispatcher.Load(p, e.opts.Traits)
}

// SetTraits rebuilds the skin surfaces for new display traits.
func (e *Engine) SetTraits(t skin.Traits) {
	e.opts.Traits = t
	if e.opts.Skin != nil {
		e.dispatcher.Load(e.opts.Skin, t)
	}
}

func (e *Engine) Traits() skin.Traits {
	return e.opts.Traits
}

// SetHidden switches the skin to its hidden rule, where only menu and flex
// respond.
func (e *Engine) SetHidden(hidden bool) {
	e.dispatcher.SetHidden(hidden)
}

func (e *Engine) TouchBegan(id contact.ID, p skin.Point) {
	e.dispatcher.TouchBegan(id, p)
}

func (e *Engine) TouchMoved(id contact.ID, p skin.Point) {
	e.dispatcher.TouchMoved(id, p)
}

func (e *Engine) TouchEnded(id contact.ID, p skin.Point) {
	e.dispatcher.TouchEnded(id, p)
}

func (e *Engine) TouchCancelled(id contact.ID, p skin.Point) {
	e.dispatcher.TouchCancelled(id, p)
}

func (e *Engine) TouchesMoved(samples []contact.Sample) {
	e.dispatcher.TouchesMoved(samples)
}

// Keys syncs the locally held keys, once per frame.
func (e *Engine) Keys(pressed []string) {
	for _, key := range e.keyboard.Sync(pressed) {
		e.captureKey(key)
	}
}

// KeyDown presses a remote key.
func (e *Engine) KeyDown(key string) {
	if e.keyboard.Press(key) {
		e.captureKey(key)
	}
}

// KeyUp releases a remote key.
func (e *Engine) KeyUp(key string) {
	e.keyboard.Lift(key)
}

func (e *Engine) captureKey(key string) {
	if e.session == nil || e.target != SourceKeyboard || e.session.State() != remap.AwaitingControllerInput {
		return
	}
	if err := e.session.CaptureKey(key); err != nil && e.opts.Debug {
		log.Printf("[DEBUG] Key %s not captured: %v", key, err)
	}
}

// ApplyPad feeds a polled controller snapshot. A different controller
// takes over the overrides stored under its own name.
func (e *Engine) ApplyPad(s gamepad.GamepadState) {
	if s.Connected && s.Name != "" && s.Name != e.pad.Name {
		if e.target == SourceController {
			e.StopRemap()
		}
		e.pad.Release()
		log.Printf("Controller changed: %s -> %s", e.pad.Name, s.Name)
		e.pad.Name = s.Name
		e.unwire(SourceController)
		e.wire(SourceController)
	}
	e.pad.Apply(s)
}

// ControllerName is the name overrides for the physical controller are
// stored under.
func (e *Engine) ControllerName() string {
	return e.pad.Name
}

// StartRemap opens a remapping session for src, the keyboard or the
// physical controller. Until StopRemap the skin selects inputs instead of
// playing them and src only completes captures.
func (e *Engine) StartRemap(src string) error {
	if e.session != nil {
		return ErrRemapping
	}

	opts := remap.Options{
		Sync:      e.opts.Sync,
		Scheduler: e.loop,
		Settle:    e.opts.Settle,
		Notice:    e.notify,
		Debug:     e.opts.Debug,
	}
	switch src {
	case SourceKeyboard:
		opts.Controller, opts.Keyboard, opts.Default = keyboard.Name, true, keyboard.DefaultMapping()
	case SourceController:
		opts.Controller, opts.Default = e.pad.Name, gamepad.DefaultMapping(e.pad.Name)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownSource, src)
	}
	if e.opts.Store != nil {
		opts.Persister, opts.Writer = e.opts.Store, e.opts.Store
	}

	session, err := remap.New(e.translator.GameType, opts)
	if err != nil {
		return err
	}

	for _, name := range []string{SourceSkin, src} {
		e.release(name)
		e.unwire(name)
	}
	e.session, e.target = session, src
	e.dispatcher.AddReceiver(session.SkinReceiver(), nil)
	if src == SourceController {
		e.pad.AddReceiver(session.PhysicalReceiver(), nil)
	}

	log.Printf("Remapping %s for %s: tap a skin input, then press its new binding", opts.Controller, e.translator.GameType)
	return nil
}

// StopRemap commits the session's edits and restores normal routing.
func (e *Engine) StopRemap() {
	if e.session == nil {
		return
	}
	s, src := e.session, e.target
	s.Close()
	if dirty := s.Dirty(); len(dirty) > 0 {
		log.Printf("Remap closed with unsaved game types: %v", dirty)
	}

	e.dispatcher.RemoveReceiver(s.SkinReceiver())
	e.pad.RemoveReceiver(s.PhysicalReceiver())
	e.session, e.target = nil, ""
	for _, name := range []string{SourceSkin, src} {
		e.release(name)
		e.wire(name)
	}
	log.Println("Remapping finished")
}

// CancelRemap abandons the pending selection. The session stays open.
func (e *Engine) CancelRemap() {
	if e.session != nil {
		e.session.Cancel()
	}
}

// ResetRemap drops the remapped controller's override for the current game
// type.
func (e *Engine) ResetRemap() error {
	if e.session == nil {
		return nil
	}
	if err := e.session.Reset(); err != nil {
		e.notify("Failed to reset bindings")
		return err
	}
	e.notify("Bindings reset to default")
	return nil
}

// WriteDone reports a finished background write. Failures are shown to the
// user; the in-memory bindings stay as they are.
func (e *Engine) WriteDone(r store.Result) {
	if r.Err == nil {
		return
	}
	if r.Deleted {
		e.notify("Failed to reset stored bindings")
	} else {
		e.notify("Failed to save bindings")
	}
}

// Remapping returns the source being remapped.
func (e *Engine) Remapping() (string, bool) {
	return e.target, e.session != nil
}

func (e *Engine) notify(msg string) {
	e.notice = msg
	e.noticeUntil = e.now().Add(noticeDuration)
	if e.opts.Notice != nil {
		e.opts.Notice(msg)
	}
}

// Frame runs posted work and advances effect transitions by dt seconds.
func (e *Engine) Frame(dt float32) {
	e.loop.Drain()
	e.effects.Update(dt)
}
