// Package dump receives a live MIDI beat clock stream, timestamps it
// against a monotonic sample counter and derives the sender's tempo.
package dump

import (
	"midi-clock/midi"
	"midi-clock/ring"
)

// InEvent is one incoming MIDI event as the host delivers it: a payload
// and its sample offset inside the current processing window.
type InEvent struct {
	Offset uint32
	Data   []byte
}

// Capture is the realtime half of the dump tool. It scans each window's
// incoming events, stamps the System Real-Time bytes against a counter
// of samples elapsed since activation and hands them to the consumer
// through the ring.
//
// A single realtime goroutine owns Capture; it never blocks, allocates
// or logs.
type Capture struct {
	ring  *ring.Ring
	waker *ring.Waker

	frames uint64 // samples processed since activation
}

// NewCapture wires a capture stage to its outgoing channel.
func NewCapture(r *ring.Ring, w *ring.Waker) *Capture {
	return &Capture{ring: r, waker: w}
}

// Process handles one window of nframes samples. Realtime bytes are
// forwarded; everything else is ignored. Overflow drops are silent, the
// ring counts them.
func (c *Capture) Process(events []InEvent, nframes uint32) {
	for _, ev := range events {
		if len(ev.Data) == 1 && midi.IsRealtime(ev.Data[0]) {
			c.push(ev.Data[0], c.frames+uint64(ev.Offset))
		}
	}
	c.frames += uint64(nframes)
}

// Deliver forwards a single byte stamped with an externally supplied
// absolute sample time, for hosts that hand over events one at a time
// instead of in windows.
func (c *Capture) Deliver(msg byte, at uint64) {
	if !midi.IsRealtime(msg) {
		return
	}
	c.push(msg, at)
}

// Frames returns the number of samples processed so far.
func (c *Capture) Frames() uint64 {
	return c.frames
}

func (c *Capture) push(msg byte, at uint64) {
	c.ring.Push(ring.Event{Msg: msg, Time: at})
	// Wake even after a drop: the consumer may still have a backlog
	// worth draining.
	c.waker.Wake()
}
