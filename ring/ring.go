// Package ring hands timestamped MIDI bytes from the realtime thread to
// a background consumer without ever blocking the producer.
package ring

import "sync/atomic"

// Event is one MIDI byte stamped with the absolute sample count at
// which it occurred. Events move through the ring by value; nothing is
// shared once an event is popped.
type Event struct {
	Msg  byte
	Time uint64
}

// Ring is a fixed-capacity single-producer single-consumer queue.
// Push never blocks: when the ring is full the newest event is dropped.
// Exactly one goroutine may call Push and exactly one may call Pop; the
// capacity is fixed at construction.
type Ring struct {
	buf     []Event
	head    atomic.Uint64 // next slot to read, consumer-owned
	tail    atomic.Uint64 // next slot to write, producer-owned
	dropped atomic.Uint64
}

// New returns a ring holding up to capacity events.
func New(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring{buf: make([]Event, capacity)}
}

// Push appends ev if there is room and reports whether it was stored.
// Wait-free; safe to call from the realtime thread.
func (r *Ring) Push(ev Event) bool {
	head := r.head.Load()
	tail := r.tail.Load()
	if tail-head >= uint64(len(r.buf)) {
		r.dropped.Add(1)
		return false
	}
	r.buf[tail%uint64(len(r.buf))] = ev
	r.tail.Store(tail + 1)
	return true
}

// Pop removes and returns the oldest buffered event.
func (r *Ring) Pop() (Event, bool) {
	head := r.head.Load()
	if head == r.tail.Load() {
		return Event{}, false
	}
	ev := r.buf[head%uint64(len(r.buf))]
	r.head.Store(head + 1)
	return ev, true
}

// Len reports how many events are currently buffered.
func (r *Ring) Len() int {
	return int(r.tail.Load() - r.head.Load())
}

// Cap returns the fixed capacity.
func (r *Ring) Cap() int {
	return len(r.buf)
}

// Dropped reports how many events were discarded because the ring was
// full. Overflow is silent by design; this counter exists for tests and
// monitoring.
func (r *Ring) Dropped() uint64 {
	return r.dropped.Load()
}
