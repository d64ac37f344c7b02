package mapping

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/soar/padroute/internal/input"
)

var (
	// ErrNotFound is returned when no live record or keymap exists.
	ErrNotFound = errors.New("mapping not found")
	// ErrCorrupt is returned when a stored mapping cannot be decoded.
	ErrCorrupt = errors.New("mapping record is corrupt")
)

// Record is a persisted override for one (controller, game type) pair.
type Record struct {
	ID             string    `yaml:"id"`
	ControllerName string    `yaml:"controllerName"`
	GameType       string    `yaml:"gameType"`
	Mapping        string    `yaml:"mapping"`
	Deleted        bool      `yaml:"deleted,omitempty"`
	Modified       time.Time `yaml:"modified"`
}

// Persister stores overrides keyed by (controller name, game type).
// LoadOverride returns ErrNotFound when there is no live record and
// ErrCorrupt when the record cannot be decoded. DeleteOverride marks the
// record deleted when soft is set and removes it otherwise.
type Persister interface {
	LoadOverride(controller, gameType string) (*Mapping, error)
	SaveOverride(controller, gameType string, m *Mapping) error
	DeleteOverride(controller, gameType string, soft bool) error
}

type inputDoc struct {
	Name       string `yaml:"name"`
	Namespace  string `yaml:"namespace"`
	Code       *int   `yaml:"code,omitempty"`
	Continuous bool   `yaml:"continuous,omitempty"`
}

type mappingDoc struct {
	Name      string              `yaml:"name"`
	Namespace string              `yaml:"namespace"`
	Inputs    map[string]inputDoc `yaml:"inputs"`
}

// Encode serialises a mapping to YAML.
func Encode(m *Mapping) ([]byte, error) {
	doc := mappingDoc{
		Name:      m.Name,
		Namespace: m.Namespace.String(),
		Inputs:    make(map[string]inputDoc, m.Len()),
	}
	for k, in := range m.entries {
		d := inputDoc{Name: in.Name(), Namespace: in.Namespace().String(), Continuous: in.IsContinuous()}
		if code, ok := in.Code(); ok {
			d.Code = &code
		}
		doc.Inputs[k] = d
	}
	data, err := yaml.Marshal(&doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode mapping %s: %w", m.Name, err)
	}
	return data, nil
}

// Decode parses a mapping encoded by Encode. Any failure is ErrCorrupt.
func Decode(data []byte) (*Mapping, error) {
	var doc mappingDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	ns, ok := input.ParseNamespace(doc.Namespace)
	if !ok {
		return nil, fmt.Errorf("%w: unknown namespace %q", ErrCorrupt, doc.Namespace)
	}

	m := New(doc.Name, ns)
	for k, d := range doc.Inputs {
		ins, ok := input.ParseNamespace(d.Namespace)
		if !ok || d.Name == "" {
			return nil, fmt.Errorf("%w: bad input for key %q", ErrCorrupt, k)
		}
		in := input.New(d.Name, ins)
		if d.Code != nil {
			in = in.WithCode(*d.Code)
		}
		if d.Continuous {
			in = in.Continuous()
		}
		m.entries[k] = in
	}
	return m, nil
}

// OverrideOrDefault loads the stored override, or returns a copy of def when
// there is none or it cannot be decoded. A corrupt record is left in place.
func OverrideOrDefault(p Persister, controller, gameType string, def *Mapping) *Mapping {
	m, err := p.LoadOverride(controller, gameType)
	switch {
	case err == nil:
		return m
	case errors.Is(err, ErrCorrupt):
		log.Printf("Ignoring corrupt mapping for %s/%s: %v", controller, gameType, err)
	case !errors.Is(err, ErrNotFound):
		log.Printf("Failed to load mapping for %s/%s: %v", controller, gameType, err)
	}
	return def.Clone()
}
