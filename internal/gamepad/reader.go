package gamepad

import (
	"context"
	"log"
	"runtime"
	"sync"

	"github.com/jupiterrider/purego-sdl3/sdl"

	"github.com/soar/padroute/internal/feedback"
)

const (
	pollDelayNS       = 16_000_000 // ~60Hz
	hatUp       uint8 = 0x01
	hatRight    uint8 = 0x02
	hatDown     uint8 = 0x04
	hatLeft     uint8 = 0x08
)

type joystickInfo struct {
	joystick *sdl.Joystick
	mapping  *DeviceMapping
	name     string
	id       sdl.JoystickID
}

type rumble struct {
	low, high uint16
	ms        uint32
}

// Reader reads gamepad input from SDL3 Joystick API and emits state changes.
// It also serves as haptics for the active joystick.
type Reader struct {
	deadzone  float64
	debug     bool
	state     GamepadState
	prevState GamepadState
	joysticks map[sdl.JoystickID]*joystickInfo
	activeID  sdl.JoystickID // the first connected joystick
	hasActive bool
	changes   chan GamepadState
	rumbles   chan rumble
	mu        sync.RWMutex
}

var _ feedback.Haptics = (*Reader)(nil)

func NewReader(deadzone float64, debug bool) *Reader {
	return &Reader{
		deadzone:  deadzone,
		debug:     debug,
		joysticks: make(map[sdl.JoystickID]*joystickInfo),
		changes:   make(chan GamepadState, 64),
		rumbles:   make(chan rumble, 8),
	}
}

// Changes returns the channel on which state changes are sent.
func (r *Reader) Changes() <-chan GamepadState {
	return r.changes
}

// CurrentState returns a snapshot of the current gamepad state.
func (r *Reader) CurrentState() GamepadState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Run initializes SDL and runs the main event+polling loop on the current thread.
func (r *Reader) Run(ctx context.Context) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if !sdl.Init(sdl.InitJoystick) {
		log.Fatalf("SDL Init failed: %s", sdl.GetError())
	}
	defer sdl.Quit()

	log.Println("SDL3 Joystick subsystem initialized")

	for _, id := range sdl.GetJoysticks() {
		r.openJoystick(id)
	}

	for {
		select {
		case <-ctx.Done():
			r.closeAll()
			close(r.changes)
			return
		default:
		}

		r.processEvents()
		r.pollState()
		r.processRumble()
		sdl.DelayNS(pollDelayNS)
	}
}

// Level reports basic haptics while a joystick is active.
func (r *Reader) Level() feedback.Level {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.state.Connected {
		return feedback.LevelUnsupported
	}
	return feedback.LevelBasic
}

// Impact is a short high-frequency rumble.
func (r *Reader) Impact() {
	r.queueRumble(rumble{high: 0x8000, ms: 30})
}

// Vibrate is a short rumble on both motors.
func (r *Reader) Vibrate() {
	r.queueRumble(rumble{low: 0xC000, high: 0xC000, ms: 60})
}

func (r *Reader) queueRumble(rb rumble) {
	select {
	case r.rumbles <- rb:
	default:
	}
}

func (r *Reader) processRumble() {
	for {
		select {
		case rb := <-r.rumbles:
			info, ok := r.joysticks[r.activeID]
			if !r.hasActive || !ok {
				continue
			}
			if !sdl.RumbleJoystick(info.joystick, rb.low, rb.high, rb.ms) && r.debug {
				log.Printf("[DEBUG] Rumble unsupported on %s: %s", info.name, sdl.GetError())
			}
		default:
			return
		}
	}
}

func (r *Reader) processEvents() {
	var event sdl.Event
	for sdl.PollEvent(&event) {
		switch event.Type() {
		case sdl.EventJoystickAdded:
			r.openJoystick(event.JDevice().Which)

		case sdl.EventJoystickRemoved:
			r.removeJoystick(event.JDevice().Which)

		case sdl.EventJoystickButtonDown:
			if r.debug {
				be := event.JButton()
				log.Printf("[DEBUG] Button DOWN: index=%d joystick=%d", be.Button, be.Which)
			}

		case sdl.EventJoystickButtonUp:
			if r.debug {
				be := event.JButton()
				log.Printf("[DEBUG] Button UP:   index=%d joystick=%d", be.Button, be.Which)
			}

		case sdl.EventJoystickHatMotion:
			if r.debug {
				he := event.JHat()
				log.Printf("[DEBUG] Hat: index=%d value=0x%02X joystick=%d", he.Hat, he.Value, he.Which)
			}
		}
	}
}

func (r *Reader) openJoystick(instanceID sdl.JoystickID) {
	if _, exists := r.joysticks[instanceID]; exists {
		return
	}

	js := sdl.OpenJoystick(instanceID)
	if js == nil {
		log.Printf("Failed to open joystick %d: %s", instanceID, sdl.GetError())
		return
	}

	jsID := sdl.GetJoystickID(js)
	vendorID := sdl.GetJoystickVendor(js)
	productID := sdl.GetJoystickProduct(js)
	name := sdl.GetJoystickName(js)
	mapping := GetMapping(vendorID, productID)

	r.joysticks[jsID] = &joystickInfo{
		joystick: js,
		mapping:  mapping,
		name:     name,
		id:       jsID,
	}

	log.Printf("Joystick connected: %s (VID=%04X PID=%04X) mapping=%s axes=%d buttons=%d hats=%d",
		name, vendorID, productID, mapping.Name,
		sdl.GetNumJoystickAxes(js), sdl.GetNumJoystickButtons(js), sdl.GetNumJoystickHats(js))

	if !r.hasActive {
		r.activate(jsID)
	}
}

func (r *Reader) activate(id sdl.JoystickID) {
	info := r.joysticks[id]
	r.activeID = id
	r.hasActive = true
	log.Printf("Active joystick set: %s (ID=%d)", info.name, id)

	r.mu.Lock()
	r.state = GamepadState{Connected: true, Name: info.name, ControllerType: info.mapping.Name}
	r.mu.Unlock()
	r.emitState()
}

func (r *Reader) removeJoystick(instanceID sdl.JoystickID) {
	info, exists := r.joysticks[instanceID]
	if !exists {
		return
	}

	log.Printf("Joystick disconnected: %s", info.name)
	sdl.CloseJoystick(info.joystick)
	delete(r.joysticks, instanceID)

	if !r.hasActive || r.activeID != instanceID {
		return
	}
	r.hasActive = false
	for id, js := range r.joysticks {
		if sdl.JoystickConnected(js.joystick) {
			r.activate(id)
			return
		}
	}
	r.mu.Lock()
	r.state = GamepadState{}
	r.prevState = GamepadState{}
	r.mu.Unlock()
	r.emitState()
}

func (r *Reader) closeAll() {
	for id, info := range r.joysticks {
		sdl.CloseJoystick(info.joystick)
		delete(r.joysticks, id)
	}
}

func (r *Reader) pollState() {
	if !r.hasActive {
		return
	}

	info, exists := r.joysticks[r.activeID]
	if !exists || !sdl.JoystickConnected(info.joystick) {
		return
	}

	js := info.joystick
	mapping := info.mapping
	state := GamepadState{
		Connected:      true,
		ControllerType: mapping.Name,
		Name:           info.name,
		Buttons:        make(map[string]bool),
	}

	for _, am := range mapping.Axes {
		raw := sdl.GetJoystickAxis(js, am.Index)
		if am.IsTrigger {
			val := ApplyDeadzone(NormalizeTrigger(raw, am.RawMin, am.RawMax), r.deadzone)
			switch am.Target {
			case LeftTrigger:
				state.LeftTrigger = val
			case RightTrigger:
				state.RightTrigger = val
			}
			continue
		}
		val := NormalizeAxis(raw)
		if am.Invert {
			val = -val
		}
		val = ApplyDeadzone(val, r.deadzone)
		switch am.Target {
		case "left_x":
			state.LeftStick.X = val
		case "left_y":
			state.LeftStick.Y = val
		case "right_x":
			state.RightStick.X = val
		case "right_y":
			state.RightStick.Y = val
		}
	}

	numButtons := sdl.GetNumJoystickButtons(js)
	for _, bm := range mapping.Buttons {
		if bm.Index >= numButtons {
			continue
		}
		if sdl.GetJoystickButton(js, bm.Index) {
			state.Buttons[bm.Target] = true
		}
	}

	if mapping.HasHat && sdl.GetNumJoystickHats(js) > 0 {
		hat := sdl.GetJoystickHat(js, 0)
		state.Buttons[DpadUp] = hat&hatUp != 0
		state.Buttons[DpadRight] = hat&hatRight != 0
		state.Buttons[DpadDown] = hat&hatDown != 0
		state.Buttons[DpadLeft] = hat&hatLeft != 0
	}

	r.mu.Lock()
	if !Changed(r.prevState, state) {
		r.mu.Unlock()
		return
	}
	r.state = state
	r.prevState = state
	r.mu.Unlock()
	r.emitState()
}

func (r *Reader) emitState() {
	r.mu.RLock()
	s := r.state
	r.mu.RUnlock()

	sendLatest(r.changes, s)
}
