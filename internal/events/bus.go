// Package events provides an observable bus for modeler activity. Subscribers
// register explicitly and get an unsubscribe func back; recent events are
// kept in a bounded ring buffer for late readers.
package events

import (
	"sort"
	"sync"
	"time"
)

// DefaultCapacity is the number of events a bus retains.
const DefaultCapacity = 100

// Kind identifies what happened.
type Kind string

const (
	TableAdded          Kind = "table.added"
	TableRenamed        Kind = "table.renamed"
	TableDeleted        Kind = "table.deleted"
	FieldAdded          Kind = "field.added"
	FieldUpdated        Kind = "field.updated"
	FieldDeleted        Kind = "field.deleted"
	RelationshipAdded   Kind = "relationship.added"
	RelationshipUpdated Kind = "relationship.updated"
	RelationshipDeleted Kind = "relationship.deleted"
	InterviewApplied    Kind = "interview.applied"
	GenerateCompleted   Kind = "generate.completed"
	GenerateBlocked     Kind = "generate.blocked"
)

// Event is one published occurrence. Seq is assigned by the bus and
// increases by one per publish.
type Event struct {
	Seq     uint64    `json:"seq"`
	Kind    Kind      `json:"kind"`
	Subject string    `json:"subject"`
	Detail  string    `json:"detail,omitempty"`
	At      time.Time `json:"at"`
}

// Publisher is the write side of a bus.
type Publisher interface {
	Publish(e Event) Event
}

// Bus fans events out to subscribers and remembers the most recent ones.
type Bus struct {
	mu      sync.Mutex
	seq     uint64
	nextSub int
	subs    map[int]func(Event)
	recent  *Ring[Event]
	now     func() time.Time
}

// NewBus creates a bus retaining up to capacity events.
func NewBus(capacity int) *Bus {
	return &Bus{
		subs:   make(map[int]func(Event)),
		recent: NewRing[Event](capacity),
		now:    time.Now,
	}
}

// Publish stamps the event, records it and delivers it to every subscriber
// in subscription order. Handlers run on the publisher's goroutine, outside
// the bus lock, so a handler may publish or unsubscribe.
func (b *Bus) Publish(e Event) Event {
	b.mu.Lock()
	b.seq++
	e.Seq = b.seq
	if e.At.IsZero() {
		e.At = b.now()
	}
	b.recent.Push(e)

	ids := make([]int, 0, len(b.subs))
	for id := range b.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	handlers := make([]func(Event), len(ids))
	for i, id := range ids {
		handlers[i] = b.subs[id]
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(e)
	}
	return e
}

// Subscribe registers a handler and returns the func that removes it.
// Calling the returned func more than once is harmless.
func (b *Bus) Subscribe(handler func(Event)) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextSub
	b.nextSub++
	b.subs[id] = handler
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Recent returns the retained events, oldest first.
func (b *Bus) Recent() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.recent.Items()
}

// Since returns the retained events with Seq greater than seq.
func (b *Bus) Since(seq uint64) []Event {
	var out []Event
	for _, e := range b.Recent() {
		if e.Seq > seq {
			out = append(out, e)
		}
	}
	return out
}

// Subscribers returns the number of registered handlers.
func (b *Bus) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
