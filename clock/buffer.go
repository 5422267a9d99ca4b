package clock

import "midi-clock/midi"

// Event is one message scheduled inside the current processing window.
type Event struct {
	Offset uint32 // sample offset from the window start
	Msg    midi.Message
}

// Buffer collects the messages for one window, standing in for the
// host's per-window output port buffer. It is reused across windows:
// Reset keeps the backing storage so steady-state windows do not
// allocate.
type Buffer struct {
	events []Event
}

// NewBuffer returns a buffer with room for capacity events before it
// has to grow.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{events: make([]Event, 0, capacity)}
}

// Reset empties the buffer, keeping its storage.
func (b *Buffer) Reset() {
	b.events = b.events[:0]
}

// Add schedules a message at the given in-window offset.
func (b *Buffer) Add(offset uint32, m midi.Message) {
	b.events = append(b.events, Event{Offset: offset, Msg: m})
}

// Events returns the scheduled messages in emission order. The slice is
// valid until the next Reset.
func (b *Buffer) Events() []Event {
	return b.events
}

// Len returns the number of scheduled messages.
func (b *Buffer) Len() int {
	return len(b.events)
}
