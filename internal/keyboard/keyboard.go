// Package keyboard turns hardware key state into controller inputs in the
// keyboard namespace. Keys are named the way ebiten names them.
package keyboard

import (
	"log"
	"maps"
	"slices"

	"github.com/soar/padroute/internal/controller"
	"github.com/soar/padroute/internal/input"
	"github.com/soar/padroute/internal/mapping"
)

// Name is the controller name used for keyboard overrides.
const Name = "Keyboard"

// Built-in bindings for the keyboard, key name to skin key.
var defaultBindings = map[string]string{
	"ArrowUp":    "up",
	"ArrowDown":  "down",
	"ArrowLeft":  "left",
	"ArrowRight": "right",
	"X":          "a",
	"Z":          "b",
	"S":          "x",
	"A":          "y",
	"Q":          "l",
	"W":          "r",
	"Enter":      "start",
	"ShiftRight": "select",
	"Escape":     "menu",
	"Space":      "flex",
	"F5":         "quickSave",
	"F9":         "quickLoad",
	"Tab":        "toggleFastForward",
	"F12":        "screenshot",
}

// DefaultMapping returns a fresh copy of the built-in keyboard mapping.
func DefaultMapping() *mapping.Mapping {
	m := mapping.New(Name, input.Keyboard)
	for key, skinKey := range defaultBindings {
		m.Put(key, input.New(skinKey, input.SkinStandard))
	}
	return m
}

// Key returns the input for a key name.
func Key(name string) input.Input {
	return input.New(name, input.Keyboard)
}

type holder uint8

const (
	local holder = 1 << iota
	remote
)

// Keyboard is the hardware keyboard as a controller. Local keys come from
// Sync once per frame; remote keys come from Press and Lift. A key stays
// active while either side holds it.
type Keyboard struct {
	*controller.State

	held  map[string]holder
	debug bool
}

func New(debug bool) *Keyboard {
	return &Keyboard{
		State: controller.New(Name, input.Keyboard),
		held:  make(map[string]holder),
		debug: debug,
	}
}

// Sync activates local keys that became held and deactivates local keys
// that were released. It returns the newly pressed keys in sorted order.
func (k *Keyboard) Sync(pressed []string) []string {
	now := make(map[string]bool, len(pressed))
	for _, name := range pressed {
		now[name] = true
	}

	var released, down []string
	for name, h := range k.held {
		if h&local != 0 && !now[name] {
			released = append(released, name)
		}
	}
	for name := range now {
		if k.held[name]&local == 0 {
			down = append(down, name)
		}
	}
	slices.Sort(released)
	slices.Sort(down)

	for _, name := range released {
		k.let(name, local)
	}
	var fresh []string
	for _, name := range down {
		if k.hold(name, local) {
			fresh = append(fresh, name)
		}
	}
	return fresh
}

// Press holds a remote key and reports whether it became active.
func (k *Keyboard) Press(name string) bool {
	return k.hold(name, remote)
}

// Lift lets go of a remote key.
func (k *Keyboard) Lift(name string) {
	k.let(name, remote)
}

// Release lets go of every held key.
func (k *Keyboard) Release() {
	for _, name := range slices.Sorted(maps.Keys(k.held)) {
		delete(k.held, name)
		k.Deactivate(Key(name))
	}
}

func (k *Keyboard) hold(name string, by holder) bool {
	h := k.held[name]
	k.held[name] = h | by
	if h != 0 {
		return false
	}
	if k.debug {
		log.Printf("[DEBUG] Key down: %s", name)
	}
	k.Activate(Key(name), 1)
	return true
}

func (k *Keyboard) let(name string, by holder) {
	h, ok := k.held[name]
	if !ok || h&by == 0 {
		return
	}
	h &^= by
	if h != 0 {
		k.held[name] = h
		return
	}
	delete(k.held, name)
	k.Deactivate(Key(name))
}
