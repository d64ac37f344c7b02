package mapping

import (
	"fmt"
	"sort"

	"github.com/soar/padroute/internal/input"
)

type coreInput struct {
	name string
	code int
}

// Button codes as the cores expect them.
var coreInputs = map[string][]coreInput{
	"gba": {
		{"up", 64}, {"down", 128}, {"left", 32}, {"right", 16},
		{"a", 1}, {"b", 2}, {"l", 512}, {"r", 256},
		{"start", 8}, {"select", 4},
	},
	"gb": {
		{"up", 0x40}, {"down", 0x80}, {"left", 0x20}, {"right", 0x10},
		{"a", 0x01}, {"b", 0x02}, {"start", 0x08}, {"select", 0x04},
		{"flex", 5},
	},
	"nes": {
		{"a", 0}, {"b", 1}, {"start", 2}, {"select", 3},
		{"up", 4}, {"down", 5}, {"left", 6}, {"right", 7},
		{"flex", 8},
	},
	"snes": {
		{"a", 0}, {"b", 1}, {"x", 2}, {"y", 3}, {"l", 4}, {"r", 5},
		{"start", 6}, {"select", 7},
		{"up", 8}, {"down", 9}, {"left", 10}, {"right", 11},
		{"flex", 12},
	},
}

func init() {
	coreInputs["gbc"] = coreInputs["gb"]
}

// GameTypes lists the game types with a built-in keymap.
func GameTypes() []string {
	out := make([]string, 0, len(coreInputs))
	for gt := range coreInputs {
		out = append(out, gt)
	}
	sort.Strings(out)
	return out
}

// Builtin returns the translator for a game type with a built-in keymap.
func Builtin(gameType string) (*Translator, error) {
	inputs, ok := coreInputs[gameType]
	if !ok {
		return nil, fmt.Errorf("%w: no keymap for game type %q", ErrNotFound, gameType)
	}
	km := New(gameType, input.SkinStandard)
	for _, ci := range inputs {
		km.Put(ci.name, input.New(ci.name, input.Core).WithCode(ci.code))
	}
	return &Translator{GameType: gameType, Keymap: km}, nil
}
