// Package skin describes virtual controllers: the control zones a skin
// places on screen for a given set of display traits, and the screens it
// reserves for game output.
package skin

// Device is the class of host device a representation targets.
type Device string

const (
	Phone   Device = "phone"
	Tablet  Device = "tablet"
	Desktop Device = "desktop"
)

// DisplayType is how the host presents the skin.
type DisplayType string

const (
	DisplayStandard   DisplayType = "standard"
	DisplayEdgeToEdge DisplayType = "edgeToEdge"
	DisplaySplitView  DisplayType = "splitView"
)

// Orientation of the host display.
type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// Traits select a skin representation.
type Traits struct {
	Device      Device      `yaml:"device" json:"device"`
	DisplayType DisplayType `yaml:"displayType" json:"displayType"`
	Orientation Orientation `yaml:"orientation" json:"orientation"`
}

func (t Traits) String() string {
	return string(t.Device) + "-" + string(t.DisplayType) + "-" + string(t.Orientation)
}

// Screen is a region of the skin reserved for game output.
type Screen struct {
	ID          string
	OutputFrame *Rect
	Placement   Placement
}

// Provider supplies the items and screens for a set of traits. The engine
// borrows a provider per call and never owns it.
type Provider interface {
	Items(traits Traits) []Item
	Screens(traits Traits) []Screen
}

type representation struct {
	traits      Traits
	translucent bool
	items       []Item
	screens     []Screen
}

// Skin is a parsed skin description.
type Skin struct {
	Name       string
	Identifier string
	GameType   string
	Debug      bool

	representations []representation
}

// representation picks the representation for traits, falling back to one
// with the same device and orientation, then the same orientation, then the
// first representation. ok is false only when the skin is empty.
func (s *Skin) representation(t Traits) (representation, bool) {
	if len(s.representations) == 0 {
		return representation{}, false
	}
	for _, r := range s.representations {
		if r.traits == t {
			return r, true
		}
	}
	for _, r := range s.representations {
		if r.traits.Device == t.Device && r.traits.Orientation == t.Orientation {
			return r, true
		}
	}
	for _, r := range s.representations {
		if r.traits.Orientation == t.Orientation {
			return r, true
		}
	}
	return s.representations[0], true
}

// Supports reports whether the skin has a representation for exactly these
// traits.
func (s *Skin) Supports(t Traits) bool {
	for _, r := range s.representations {
		if r.traits == t {
			return true
		}
	}
	return false
}

// SupportedTraits returns the traits of the representation that would be
// used for t.
func (s *Skin) SupportedTraits(t Traits) (Traits, bool) {
	r, ok := s.representation(t)
	return r.traits, ok
}

func (s *Skin) Items(t Traits) []Item {
	r, ok := s.representation(t)
	if !ok {
		return nil
	}
	out := make([]Item, len(r.items))
	copy(out, r.items)
	return out
}

func (s *Skin) Screens(t Traits) []Screen {
	r, ok := s.representation(t)
	if !ok {
		return nil
	}
	out := make([]Screen, len(r.screens))
	copy(out, r.screens)
	return out
}

// IsTranslucent reports whether the representation for t is drawn
// translucent.
func (s *Skin) IsTranslucent(t Traits) bool {
	r, _ := s.representation(t)
	return r.translucent
}
