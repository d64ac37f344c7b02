package gamepad

import (
	"log"
	"maps"
	"math"
	"slices"

	"github.com/soar/padroute/internal/controller"
	"github.com/soar/padroute/internal/input"
)

type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// GamepadState is one polled snapshot of the active joystick. Buttons holds
// the pressed physical buttons by name, d-pad included.
type GamepadState struct {
	Connected      bool            `json:"connected"`
	ControllerType string          `json:"controllerType"`
	Name           string          `json:"name"`
	Buttons        map[string]bool `json:"buttons"`
	LeftStick      Vector          `json:"leftStick"`
	RightStick     Vector          `json:"rightStick"`
	LeftTrigger    float64         `json:"leftTrigger"`
	RightTrigger   float64         `json:"rightTrigger"`
}

const analogThreshold = 0.01

func floatEqual(a, b float64) bool {
	return math.Abs(a-b) < analogThreshold
}

// Changed reports whether next differs from prev beyond analog jitter.
func Changed(prev, next GamepadState) bool {
	return prev.Connected != next.Connected ||
		prev.ControllerType != next.ControllerType ||
		prev.Name != next.Name ||
		!maps.Equal(pressed(prev.Buttons), pressed(next.Buttons)) ||
		!floatEqual(prev.LeftStick.X, next.LeftStick.X) ||
		!floatEqual(prev.LeftStick.Y, next.LeftStick.Y) ||
		!floatEqual(prev.RightStick.X, next.RightStick.X) ||
		!floatEqual(prev.RightStick.Y, next.RightStick.Y) ||
		!floatEqual(prev.LeftTrigger, next.LeftTrigger) ||
		!floatEqual(prev.RightTrigger, next.RightTrigger)
}

func pressed(buttons map[string]bool) map[string]bool {
	out := make(map[string]bool, len(buttons))
	for k, v := range buttons {
		if v {
			out[k] = true
		}
	}
	return out
}

// Values lists every active physical input in s with its value. Stick axes
// become the four directions with magnitude abs(axis).
func Values(s GamepadState) map[string]float64 {
	out := make(map[string]float64)
	if !s.Connected {
		return out
	}
	for name, down := range s.Buttons {
		if down {
			out[name] = 1
		}
	}
	stick(out, LeftThumbstick, s.LeftStick)
	stick(out, RightThumbstick, s.RightStick)
	if s.LeftTrigger > 0 {
		out[LeftTrigger] = s.LeftTrigger
	}
	if s.RightTrigger > 0 {
		out[RightTrigger] = s.RightTrigger
	}
	return out
}

func stick(out map[string]float64, name string, v Vector) {
	switch {
	case v.X < 0:
		out[name+"Left"] = -v.X
	case v.X > 0:
		out[name+"Right"] = v.X
	}
	switch {
	case v.Y < 0:
		out[name+"Down"] = -v.Y
	case v.Y > 0:
		out[name+"Up"] = v.Y
	}
}

// Input returns the physical input for a name. Stick directions and
// triggers are continuous.
func Input(name string) input.Input {
	switch name {
	case LeftTrigger, RightTrigger,
		LeftThumbstick + "Up", LeftThumbstick + "Down", LeftThumbstick + "Left", LeftThumbstick + "Right",
		RightThumbstick + "Up", RightThumbstick + "Down", RightThumbstick + "Left", RightThumbstick + "Right":
		return input.New(name, input.PhysicalDirectional).Continuous()
	}
	return input.New(name, input.PhysicalStandard)
}

// Pad is a physical controller fed from polled snapshots.
type Pad struct {
	*controller.State

	last  map[string]float64
	debug bool
}

func NewPad(name string, debug bool) *Pad {
	return &Pad{
		State: controller.New(name, input.PhysicalStandard),
		last:  make(map[string]float64),
		debug: debug,
	}
}

// Apply turns the difference between the previous snapshot and s into
// deactivations then activations, each in name order.
func (p *Pad) Apply(s GamepadState) {
	if s.Connected && s.Name != "" {
		p.Name = s.Name
	}
	now := Values(s)

	for _, name := range slices.Sorted(maps.Keys(p.last)) {
		if _, ok := now[name]; !ok {
			p.Deactivate(Input(name))
		}
	}
	for _, name := range slices.Sorted(maps.Keys(now)) {
		v := now[name]
		if old, ok := p.last[name]; ok && floatEqual(old, v) {
			continue
		}
		if p.debug {
			log.Printf("[DEBUG] %s: %s = %.2f", p.Name, name, v)
		}
		p.Activate(Input(name), v)
	}
	p.last = now
}

// Release deactivates everything, as on disconnect.
func (p *Pad) Release() {
	p.Apply(GamepadState{})
}

// sendLatest queues s without blocking. When ch is full the oldest queued
// snapshot gives way, so the last state sent always arrives.
func sendLatest(ch chan GamepadState, s GamepadState) {
	for {
		select {
		case ch <- s:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
