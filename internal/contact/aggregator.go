// Package contact tracks concurrent touch contacts on a button surface and
// turns their movement into activation deltas.
package contact

import (
	"github.com/soar/padroute/internal/input"
	"github.com/soar/padroute/internal/skin"
)

// ID identifies one contact while it is tracked.
type ID int

// Resolver maps a surface point to the inputs under it.
type Resolver interface {
	Inputs(p skin.Point) input.Set
}

// Delta is the change to the committed active set produced by one call.
type Delta struct {
	Activated   input.Set
	Deactivated input.Set
}

func (d Delta) IsEmpty() bool {
	return len(d.Activated) == 0 && len(d.Deactivated) == 0
}

// Sample is one contact position in a batch update.
type Sample struct {
	ID    ID
	Point skin.Point
}

// Aggregator owns the per-contact input sets and the committed total. It is
// not safe for concurrent use; callers run it on one serial context.
type Aggregator struct {
	resolver  Resolver
	contacts  map[ID]input.Set
	committed input.Set
}

func New(r Resolver) *Aggregator {
	return &Aggregator{
		resolver:  r,
		contacts:  make(map[ID]input.Set),
		committed: make(input.Set),
	}
}

// Begin starts tracking a contact with an empty set. It emits nothing.
func (a *Aggregator) Begin(id ID) {
	a.contacts[id] = make(input.Set)
}

// Tracking reports whether id is a live contact.
func (a *Aggregator) Tracking(id ID) bool {
	_, ok := a.contacts[id]
	return ok
}

// Update resolves the contact's inputs at p. Unknown ids are ignored.
func (a *Aggregator) Update(id ID, p skin.Point) Delta {
	a.resolve(id, p)
	return a.commit()
}

// UpdateAll resolves several contacts and emits a single delta for the batch.
func (a *Aggregator) UpdateAll(samples []Sample) Delta {
	for _, s := range samples {
		a.resolve(s.ID, s.Point)
	}
	return a.commit()
}

// End stops tracking the contact and emits whatever it released.
func (a *Aggregator) End(id ID) Delta {
	delete(a.contacts, id)
	return a.commit()
}

// EndAll ends several contacts and emits a single delta for the batch.
func (a *Aggregator) EndAll(ids []ID) Delta {
	for _, id := range ids {
		delete(a.contacts, id)
	}
	return a.commit()
}

// Cancel is the same as End.
func (a *Aggregator) Cancel(id ID) Delta {
	return a.End(id)
}

// Reset drops every contact and deactivates the committed total.
func (a *Aggregator) Reset() Delta {
	clear(a.contacts)
	return a.commit()
}

// Active returns a copy of the committed total.
func (a *Aggregator) Active() input.Set {
	return a.committed.Clone()
}

func (a *Aggregator) resolve(id ID, p skin.Point) {
	if _, ok := a.contacts[id]; !ok {
		return
	}
	inputs := a.resolver.Inputs(p)
	if menu, ok := inputs.Menu(); ok {
		inputs = input.NewSet(menu)
	}
	a.contacts[id] = inputs
}

// commit diffs the union of all contacts against the committed total and
// replaces the total before returning, so callbacks driven by the delta see
// the new state.
func (a *Aggregator) commit() Delta {
	total := make(input.Set)
	for _, s := range a.contacts {
		for k, v := range s {
			total[k] = v
		}
	}

	d := Delta{
		Activated:   total.Subtract(a.committed),
		Deactivated: a.committed.Subtract(total),
	}
	a.committed = total
	return d
}
