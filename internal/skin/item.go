package skin

import (
	"errors"
	"fmt"

	"github.com/soar/padroute/internal/input"
)

// ErrInvalidItem is returned for items that break the item invariants.
var ErrInvalidItem = errors.New("invalid skin item")

// Kind is the visual/behavioural class of an item.
type Kind int

const (
	Button Kind = iota
	DPad
	Thumbstick
	TouchScreen
)

var kindNames = map[Kind]string{
	Button:      "button",
	DPad:        "dpad",
	Thumbstick:  "thumbstick",
	TouchScreen: "touchScreen",
}

func (k Kind) String() string {
	return kindNames[k]
}

func parseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return k, true
		}
	}
	return 0, false
}

// Placement selects the containing region of an item.
type Placement int

const (
	PlacementController Placement = iota
	PlacementApp
)

func (p Placement) String() string {
	if p == PlacementApp {
		return "app"
	}
	return "controller"
}

// GroupKind tags the populated variant of an InputGroup.
type GroupKind int

const (
	GroupStandard GroupKind = iota
	GroupDirectional
	GroupTouch
)

// InputGroup is the set of inputs an item produces. Exactly one variant is
// populated, selected by Kind; build it with the Standard, Directional or
// Touch constructors.
type InputGroup struct {
	Kind GroupKind

	Inputs []input.Input // GroupStandard

	Up, Down, Left, Right input.Input // GroupDirectional

	X, Y input.Input // GroupTouch
}

func Standard(inputs ...input.Input) InputGroup {
	return InputGroup{Kind: GroupStandard, Inputs: inputs}
}

func Directional(up, down, left, right input.Input) InputGroup {
	return InputGroup{Kind: GroupDirectional, Up: up, Down: down, Left: left, Right: right}
}

func Touch(x, y input.Input) InputGroup {
	return InputGroup{Kind: GroupTouch, X: x, Y: y}
}

// All lists every input of the group.
func (g InputGroup) All() []input.Input {
	switch g.Kind {
	case GroupDirectional:
		return []input.Input{g.Up, g.Down, g.Left, g.Right}
	case GroupTouch:
		return []input.Input{g.X, g.Y}
	default:
		return g.Inputs
	}
}

// Has reports whether in is one of the group's inputs.
func (g InputGroup) Has(in input.Input) bool {
	for _, i := range g.All() {
		if i.Equal(in) {
			return true
		}
	}
	return false
}

// HasName reports whether a Standard group holds an input with the name.
func (g InputGroup) HasName(names ...string) bool {
	if g.Kind != GroupStandard {
		return false
	}
	for _, in := range g.Inputs {
		for _, n := range names {
			if in.Name() == n {
				return true
			}
		}
	}
	return false
}

func (g InputGroup) validate() error {
	switch g.Kind {
	case GroupStandard:
		if len(g.Inputs) == 0 || !g.Up.IsZero() || !g.X.IsZero() {
			return fmt.Errorf("%w: standard group must hold only standard inputs", ErrInvalidItem)
		}
	case GroupDirectional:
		if g.Up.IsZero() || g.Down.IsZero() || g.Left.IsZero() || g.Right.IsZero() || len(g.Inputs) > 0 || !g.X.IsZero() {
			return fmt.Errorf("%w: directional group needs exactly up, down, left and right", ErrInvalidItem)
		}
	case GroupTouch:
		if g.X.IsZero() || g.Y.IsZero() || len(g.Inputs) > 0 || !g.Up.IsZero() {
			return fmt.Errorf("%w: touch group needs exactly x and y", ErrInvalidItem)
		}
	default:
		return fmt.Errorf("%w: unknown input group %d", ErrInvalidItem, g.Kind)
	}
	return nil
}

// Item is one control zone of a skin.
type Item struct {
	ID            string
	Kind          Kind
	Frame         Rect
	ExtendedFrame Rect
	Placement     Placement
	Inputs        InputGroup

	// Normal and Selected name the press-effect image assets, if any.
	Normal   string
	Selected string
}

// Validate checks the item invariants and widens ExtendedFrame to contain
// Frame when it does not already.
func (it *Item) Validate() error {
	if it.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidItem)
	}
	if it.Frame.IsEmpty() {
		return fmt.Errorf("%w: %s has an empty frame", ErrInvalidItem, it.ID)
	}
	if err := it.Inputs.validate(); err != nil {
		return fmt.Errorf("%s: %w", it.ID, err)
	}
	switch it.Kind {
	case DPad, Thumbstick:
		if it.Inputs.Kind != GroupDirectional {
			return fmt.Errorf("%w: %s is a %s without directional inputs", ErrInvalidItem, it.ID, it.Kind)
		}
	case TouchScreen:
		if it.Inputs.Kind != GroupTouch {
			return fmt.Errorf("%w: %s is a touch screen without touch inputs", ErrInvalidItem, it.ID)
		}
	}
	if it.ExtendedFrame.IsEmpty() {
		it.ExtendedFrame = it.Frame
	} else if !it.ExtendedFrame.ContainsRect(it.Frame) {
		it.ExtendedFrame = it.ExtendedFrame.Union(it.Frame)
	}
	return nil
}

// FilterPlacement returns the items with the given placement.
func FilterPlacement(items []Item, p Placement) []Item {
	var out []Item
	for _, it := range items {
		if it.Placement == p {
			out = append(out, it)
		}
	}
	return out
}
