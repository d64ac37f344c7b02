package mapping

import (
	"strings"

	"github.com/soar/padroute/internal/input"
)

// FunctionKeys are front-end actions a skin or controller may bind directly.
// They translate to themselves.
var FunctionKeys = []string{
	"quickSave", "quickLoad", "volume", "toggleFastForward", "saveStates",
	"cheatCodes", "skins", "filters", "screenshot", "haptics", "airplay",
	"controllers", "orientation", "functionLayout", "restart", "quit",
	"reverseScreens", "resolution", "homeMenu", "amiibo", "toggleControlls",
	"blowing", "palette", "swapDisk",
}

// IsFunctionKey reports whether key is in the function-key allowlist.
func IsFunctionKey(key string) bool {
	for _, k := range FunctionKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Translator converts tokens for one game type. Keymap binds skin keys to
// the core's inputs.
type Translator struct {
	GameType string
	Keymap   *Mapping
}

// SkinKey resolves a skin input to its key in the keymap: direct lookup,
// then reverse lookup by value, then the menu synonym, then the function-key
// allowlist.
func (t *Translator) SkinKey(in input.Input) (string, input.Input, bool) {
	name := in.Name()
	if v, ok := t.Keymap.Lookup(name); ok {
		return name, v, true
	}
	if k, v, ok := t.Keymap.ReverseLookup(name); ok {
		return k, v, true
	}
	if strings.EqualFold(name, input.Menu) {
		return input.Menu, in, true
	}
	if IsFunctionKey(name) {
		return name, in, true
	}
	return "", input.Input{}, false
}

// CoreInput translates a skin key into the core's namespace.
func (t *Translator) CoreInput(skinKey string) (input.Input, bool) {
	if in, ok := t.Keymap.Lookup(skinKey); ok {
		return in, true
	}
	if strings.EqualFold(skinKey, input.Menu) || IsFunctionKey(skinKey) {
		return input.New(skinKey, input.Core), true
	}
	return input.Input{}, false
}

// Input implements Mapper, so a translator can feed a core receiver.
func (t *Translator) Input(in input.Input) (input.Input, bool) {
	return t.CoreInput(in.Name())
}

// ControllerKey resolves a captured physical input to its key: a direct
// lookup in the override, then a direct lookup in the default, then a
// reverse lookup in the default.
func ControllerKey(in input.Input, override, def *Mapping) (string, input.Input, bool) {
	name := in.Name()
	if v, ok := override.Lookup(name); ok {
		return name, v, true
	}
	if v, ok := def.Lookup(name); ok {
		return name, v, true
	}
	return def.ReverseLookup(name)
}

// BoundKey returns the first key, in sorted order, that m binds to the skin
// key.
func BoundKey(m *Mapping, skinKey string) (string, bool) {
	k, _, ok := m.ReverseLookup(skinKey)
	return k, ok
}

var shortLabels = map[string]string{
	"leftShoulder":          "L1",
	"leftTrigger":           "L2",
	"leftThumbstickButton":  "L3",
	"leftThumbstickUp":      "L↑",
	"leftThumbstickDown":    "L↓",
	"leftThumbstickLeft":    "L←",
	"leftThumbstickRight":   "L→",
	"rightShoulder":         "R1",
	"rightTrigger":          "R2",
	"rightThumbstickButton": "R3",
	"rightThumbstickUp":     "R↑",
	"rightThumbstickDown":   "R↓",
	"rightThumbstickLeft":   "R←",
	"rightThumbstickRight":  "R→",
}

// ShortLabel is the compact label drawn on a binding bubble for a physical
// key.
func ShortLabel(key string) string {
	if l, ok := shortLabels[key]; ok {
		return l
	}
	if key == "" {
		return ""
	}
	r := []rune(key)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
