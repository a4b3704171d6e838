package entity

import "time"

// Event is a domain event pending on the entity that raised it. Events are
// queued in memory during command execution and only leave the process after
// the state change that produced them has been committed.
type Event interface {
	EventType() string
	OccurredAt() time.Time
}

// AggregateRoot marks the single entry point of a consistency boundary.
// Repositories and aggregate ports only ever load and persist roots.
type AggregateRoot interface {
	IsAggregateRoot()
}

// Base carries the identity and the pending-event queue shared by all domain
// entities. Identities are assigned by the creator, never by the store, so
// the zero check belongs to each entity's constructor.
type Base[ID comparable] struct {
	id     ID
	events []Event
}

func NewBase[ID comparable](id ID) Base[ID] {
	return Base[ID]{id: id}
}

func (b *Base[ID]) ID() ID { return b.id }

// RecordEvent appends to the pending queue in occurrence order.
func (b *Base[ID]) RecordEvent(ev Event) {
	if ev == nil {
		return
	}
	b.events = append(b.events, ev)
}

// PendingEvents returns a copy of the queue; the queue itself is only
// mutated through RecordEvent and DrainEvents.
func (b *Base[ID]) PendingEvents() []Event {
	out := make([]Event, len(b.events))
	copy(out, b.events)
	return out
}

// DrainEvents empties the queue and returns the drained events in order.
// Callers invoke this exactly once per command, after a successful commit
// of the state change (or inside the same transaction, for outbox writes).
func (b *Base[ID]) DrainEvents() []Event {
	out := b.events
	b.events = nil
	return out
}
