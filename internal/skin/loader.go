package skin

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/soar/padroute/internal/input"
)

type skinDoc struct {
	Name            string              `yaml:"name"`
	Identifier      string              `yaml:"identifier"`
	GameType        string              `yaml:"gameType"`
	Debug           bool                `yaml:"debug"`
	Representations []representationDoc `yaml:"representations"`
}

type representationDoc struct {
	Traits      Traits      `yaml:"traits"`
	Translucent bool        `yaml:"translucent"`
	Items       []itemDoc   `yaml:"items"`
	Screens     []screenDoc `yaml:"screens"`
}

type edgesDoc struct {
	Top    float64 `yaml:"top"`
	Bottom float64 `yaml:"bottom"`
	Left   float64 `yaml:"left"`
	Right  float64 `yaml:"right"`
}

type directionalDoc struct {
	Up    string `yaml:"up"`
	Down  string `yaml:"down"`
	Left  string `yaml:"left"`
	Right string `yaml:"right"`
}

type touchDoc struct {
	X string `yaml:"x"`
	Y string `yaml:"y"`
}

type itemDoc struct {
	ID          string          `yaml:"id"`
	Kind        string          `yaml:"kind"`
	Frame       []float64       `yaml:"frame"`
	Extended    *edgesDoc       `yaml:"extendedEdges,omitempty"`
	Placement   string          `yaml:"placement,omitempty"`
	Inputs      []string        `yaml:"inputs,omitempty"`
	Directional *directionalDoc `yaml:"directional,omitempty"`
	Touch       *touchDoc       `yaml:"touch,omitempty"`
	Normal      string          `yaml:"normal,omitempty"`
	Selected    string          `yaml:"selected,omitempty"`
}

type screenDoc struct {
	ID          string    `yaml:"id"`
	OutputFrame []float64 `yaml:"outputFrame,omitempty"`
	Placement   string    `yaml:"placement,omitempty"`
}

// LoadFile loads and parses a YAML skin description.
func LoadFile(path string) (*Skin, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read skin file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses YAML skin data and validates every item.
func Parse(data []byte) (*Skin, error) {
	var doc skinDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse skin YAML: %w", err)
	}

	s := &Skin{
		Name:       doc.Name,
		Identifier: doc.Identifier,
		GameType:   doc.GameType,
		Debug:      doc.Debug,
	}
	if s.Name == "" {
		s.Name = "Game Controller"
	}

	for ri, rd := range doc.Representations {
		r := representation{traits: rd.Traits, translucent: rd.Translucent}
		for ii, id := range rd.Items {
			it, err := id.item(ii)
			if err != nil {
				return nil, fmt.Errorf("representation %d (%s): %w", ri, rd.Traits, err)
			}
			r.items = append(r.items, it)
		}
		for si, sd := range rd.Screens {
			sc := Screen{ID: sd.ID, Placement: parsePlacement(sd.Placement)}
			if sc.ID == "" {
				sc.ID = fmt.Sprintf("screen-%d", si)
			}
			if len(sd.OutputFrame) > 0 {
				f, err := parseRect(sd.OutputFrame)
				if err != nil {
					return nil, fmt.Errorf("screen %s: %w", sc.ID, err)
				}
				sc.OutputFrame = &f
			}
			r.screens = append(r.screens, sc)
		}
		s.representations = append(s.representations, r)
	}

	return s, nil
}

func (d itemDoc) item(index int) (Item, error) {
	kind, ok := parseKind(d.Kind)
	if !ok {
		return Item{}, fmt.Errorf("%w: unknown kind %q", ErrInvalidItem, d.Kind)
	}

	it := Item{
		ID:        d.ID,
		Kind:      kind,
		Placement: parsePlacement(d.Placement),
		Normal:    d.Normal,
		Selected:  d.Selected,
	}
	if it.ID == "" {
		it.ID = fmt.Sprintf("%s-%d", kind, index)
	}

	frame, err := parseRect(d.Frame)
	if err != nil {
		return Item{}, fmt.Errorf("%s: %w", it.ID, err)
	}
	it.Frame = frame
	it.ExtendedFrame = frame
	if d.Extended != nil {
		it.ExtendedFrame = frame.Outset(d.Extended.Top, d.Extended.Bottom, d.Extended.Left, d.Extended.Right)
	}

	switch {
	case d.Directional != nil:
		it.Inputs = Directional(
			input.New(d.Directional.Up, input.SkinDirectional),
			input.New(d.Directional.Down, input.SkinDirectional),
			input.New(d.Directional.Left, input.SkinDirectional),
			input.New(d.Directional.Right, input.SkinDirectional),
		)
		if kind == Thumbstick {
			it.Inputs.Up = it.Inputs.Up.Continuous()
			it.Inputs.Down = it.Inputs.Down.Continuous()
			it.Inputs.Left = it.Inputs.Left.Continuous()
			it.Inputs.Right = it.Inputs.Right.Continuous()
		}
	case d.Touch != nil:
		it.Inputs = Touch(
			input.New(d.Touch.X, input.SkinTouchAxis).Continuous(),
			input.New(d.Touch.Y, input.SkinTouchAxis).Continuous(),
		)
	default:
		inputs := make([]input.Input, len(d.Inputs))
		for i, name := range d.Inputs {
			inputs[i] = input.New(name, input.SkinStandard)
		}
		it.Inputs = Standard(inputs...)
	}

	if err := it.Validate(); err != nil {
		return Item{}, err
	}
	return it, nil
}

func parseRect(v []float64) (Rect, error) {
	if len(v) != 4 {
		return Rect{}, fmt.Errorf("%w: a frame needs 4 values, got %d", ErrInvalidItem, len(v))
	}
	return Rect{X: v[0], Y: v[1], Width: v[2], Height: v[3]}, nil
}

func parsePlacement(s string) Placement {
	if s == "app" {
		return PlacementApp
	}
	return PlacementController
}
