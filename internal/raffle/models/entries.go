package models

import (
	"slices"

	id "raffle/pkg/domain"
	dErrors "raffle/pkg/domain-errors"
)

// Entries is an ordered set of participants with a fixed capacity.
type Entries struct {
	items    []id.Identity
	capacity int
}

// NewEntries returns an empty container holding at most capacity participants.
func NewEntries(capacity int) Entries {
	return Entries{items: make([]id.Identity, 0, capacity), capacity: capacity}
}

// RestoreEntries rebuilds a container from persisted items.
func RestoreEntries(capacity int, items []id.Identity) (Entries, error) {
	if len(items) > capacity {
		return Entries{}, dErrors.New(dErrors.CodeInvariantViolation, "stored entries exceed capacity")
	}
	e := NewEntries(capacity)
	for _, item := range items {
		if e.Contains(item) {
			return Entries{}, dErrors.New(dErrors.CodeInvariantViolation, "stored entries contain a duplicate")
		}
		e.items = append(e.items, item)
	}
	return e, nil
}

func (e Entries) Len() int { return len(e.items) }

func (e Entries) Cap() int { return e.capacity }

func (e Entries) Full() bool { return len(e.items) >= e.capacity }

func (e Entries) Contains(identity id.Identity) bool {
	return slices.Contains(e.items, identity)
}

// At returns the participant at index i.
func (e Entries) At(i int) id.Identity { return e.items[i] }

// Items returns a copy of the participants in entry order.
func (e Entries) Items() []id.Identity { return slices.Clone(e.items) }

// Add appends identity, rejecting duplicates and insertion past capacity.
func (e *Entries) Add(identity id.Identity) error {
	if e.Full() {
		return ReasonMaxEntriesReached.Err()
	}
	if e.Contains(identity) {
		return ReasonAlreadyEntered.Err()
	}
	e.items = append(e.items, identity)
	return nil
}

func (e Entries) clone() Entries {
	return Entries{items: slices.Clone(e.items), capacity: e.capacity}
}
