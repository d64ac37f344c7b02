package input

import "sort"

// Set is an unordered collection of inputs keyed by (name, namespace).
type Set map[Key]Input

// NewSet builds a set from the given inputs. Later duplicates replace
// earlier ones.
func NewSet(inputs ...Input) Set {
	s := make(Set, len(inputs))
	for _, in := range inputs {
		s[in.Key()] = in
	}
	return s
}

func (s Set) Add(in Input) {
	s[in.Key()] = in
}

func (s Set) Remove(in Input) {
	delete(s, in.Key())
}

func (s Set) Contains(in Input) bool {
	_, ok := s[in.Key()]
	return ok
}

// Find returns the member with the given name, in any namespace.
func (s Set) Find(name string) (Input, bool) {
	for _, in := range s.Sorted() {
		if in.Name() == name {
			return in, true
		}
	}
	return Input{}, false
}

// Menu returns the menu member, if present.
func (s Set) Menu() (Input, bool) {
	for _, in := range s.Sorted() {
		if in.IsMenu() {
			return in, true
		}
	}
	return Input{}, false
}

func (s Set) Clone() Set {
	c := make(Set, len(s))
	for k, v := range s {
		c[k] = v
	}
	return c
}

// Union returns a new set holding the members of both sets.
func (s Set) Union(other Set) Set {
	u := s.Clone()
	for k, v := range other {
		u[k] = v
	}
	return u
}

// Subtract returns the members of s that are not in other.
func (s Set) Subtract(other Set) Set {
	d := make(Set)
	for k, v := range s {
		if _, ok := other[k]; !ok {
			d[k] = v
		}
	}
	return d
}

func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for k := range s {
		if _, ok := other[k]; !ok {
			return false
		}
	}
	return true
}

// Sorted lists the members ordered by namespace then name.
func (s Set) Sorted() []Input {
	out := make([]Input, 0, len(s))
	for _, v := range s {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].namespace != out[j].namespace {
			return out[i].namespace < out[j].namespace
		}
		return out[i].name < out[j].name
	})
	return out
}

// Names lists member names in sorted order.
func (s Set) Names() []string {
	sorted := s.Sorted()
	names := make([]string, len(sorted))
	for i, in := range sorted {
		names[i] = in.Name()
	}
	return names
}
