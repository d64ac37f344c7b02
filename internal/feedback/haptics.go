package feedback

// Level is the haptic capability of a device.
type Level int

const (
	LevelUnsupported Level = iota
	LevelBasic
	LevelFine
)

// Haptics is a device that can pulse.
type Haptics interface {
	Level() Level
	// Impact is a short fine-grained tap.
	Impact()
	// Vibrate is the coarse fallback.
	Vibrate()
}

// Pulse fires one pulse on h, fine when supported.
func Pulse(h Haptics) {
	if h == nil {
		return
	}
	if h.Level() == LevelFine {
		h.Impact()
		return
	}
	h.Vibrate()
}

// Multi pulses several devices at once. Its level is the finest of its
// members.
type Multi []Haptics

func (m Multi) Level() Level {
	best := LevelUnsupported
	for _, h := range m {
		if l := h.Level(); l > best {
			best = l
		}
	}
	return best
}

func (m Multi) Impact() {
	for _, h := range m {
		Pulse(h)
	}
}

func (m Multi) Vibrate() {
	for _, h := range m {
		h.Vibrate()
	}
}
