// Package mapping translates input tokens between namespaces: physical
// controller keys to skin keys, and skin keys to emulation-core inputs.
package mapping

import (
	"sort"

	"github.com/soar/padroute/internal/input"
)

// Mapper maps a source input to the input a receiver should see.
type Mapper interface {
	Input(in input.Input) (input.Input, bool)
}

// Mapping is a dictionary from source keys in one namespace to inputs. The
// zero value is not usable; use New.
type Mapping struct {
	Name      string
	Namespace input.Namespace

	entries map[string]input.Input
}

func New(name string, ns input.Namespace) *Mapping {
	return &Mapping{Name: name, Namespace: ns, entries: make(map[string]input.Input)}
}

// Lookup returns the input bound to key.
func (m *Mapping) Lookup(key string) (input.Input, bool) {
	if m == nil {
		return input.Input{}, false
	}
	in, ok := m.entries[key]
	return in, ok
}

// ReverseLookup finds the first key, in sorted key order, whose value has
// the given name.
func (m *Mapping) ReverseLookup(name string) (string, input.Input, bool) {
	if m == nil {
		return "", input.Input{}, false
	}
	for _, k := range m.Keys() {
		if in := m.entries[k]; in.Name() == name {
			return k, in, true
		}
	}
	return "", input.Input{}, false
}

// Set binds key to in. Every other key whose value has the same name as in
// is removed first, so no two keys share a target. The evicted keys are
// returned in sorted order.
func (m *Mapping) Set(key string, in input.Input) []string {
	var evicted []string
	for _, k := range m.Keys() {
		if k != key && m.entries[k].Name() == in.Name() {
			delete(m.entries, k)
			evicted = append(evicted, k)
		}
	}
	m.entries[key] = in
	return evicted
}

// Put binds key to in without eviction. Default tables use it, since a
// controller may legitimately route two keys to one input.
func (m *Mapping) Put(key string, in input.Input) {
	m.entries[key] = in
}

func (m *Mapping) Delete(key string) {
	delete(m.entries, key)
}

func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Keys lists the bound keys in sorted order.
func (m *Mapping) Keys() []string {
	if m == nil {
		return nil
	}
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m *Mapping) Clone() *Mapping {
	if m == nil {
		return nil
	}
	c := New(m.Name, m.Namespace)
	for k, v := range m.entries {
		c.entries[k] = v
	}
	return c
}

// Input maps a source input by its name.
func (m *Mapping) Input(in input.Input) (input.Input, bool) {
	return m.Lookup(in.Name())
}

// Layered resolves a key through an override mapping first, then the
// default mapping. Either layer may be nil.
type Layered struct {
	Default  *Mapping
	Override *Mapping
}

// Effective returns override[key] if bound, otherwise default[key].
func (l *Layered) Effective(key string) (input.Input, bool) {
	if in, ok := l.Override.Lookup(key); ok {
		return in, true
	}
	return l.Default.Lookup(key)
}

func (l *Layered) Input(in input.Input) (input.Input, bool) {
	return l.Effective(in.Name())
}

// Chain maps an input through each mapper in turn. Every step must resolve.
type Chain []Mapper

func (c Chain) Input(in input.Input) (input.Input, bool) {
	for _, m := range c {
		out, ok := m.Input(in)
		if !ok {
			return input.Input{}, false
		}
		in = out
	}
	return in, true
}
