package dump

import (
	"fmt"
	"io"

	"midi-clock/midi"
	"midi-clock/ring"
)

// Update is published after each handled event so an optional monitor
// (the TUI) can mirror the estimator's view without touching its state.
type Update struct {
	BPM       float64 // 0 until two consecutive ticks have been seen
	Time      uint64  // absolute sample time of the event
	Ticks     uint64  // clock ticks handled so far
	Transport byte    // last start/stop/continue status, 0 if none
}

// Estimator is the background consumer: it drains the ring and converts
// consecutive clock-tick timestamps into an instantaneous tempo.
type Estimator struct {
	// FrameRate is the sample rate the timestamps are measured in.
	FrameRate uint32

	// Newline terminates each tempo line. The default '\r' keeps the
	// reading on a single updating line; '\n' scrolls.
	Newline byte

	// Updates, when non-nil, receives an Update per handled event.
	// Sends never block; a slow monitor just misses frames.
	Updates chan Update

	w        io.Writer
	prevTime uint64
	hasPrev  bool
	ticks    uint64
	lastTran byte
}

// NewEstimator returns an estimator writing tempo lines to w.
func NewEstimator(frameRate uint32, w io.Writer) *Estimator {
	return &Estimator{FrameRate: frameRate, Newline: '\r', w: w}
}

// Run drains events until the waker shuts down. It is the only
// goroutine allowed to pop from the ring.
func (e *Estimator) Run(r *ring.Ring, w *ring.Waker) {
	for {
		for {
			ev, ok := r.Pop()
			if !ok {
				break
			}
			e.Handle(ev)
		}
		if !w.Wait(func() bool { return r.Len() > 0 }) {
			return
		}
	}
}

// Handle processes one timed event. A clock tick with a known
// predecessor produces one tempo line; the very first tick after
// startup or after a transport edge produces nothing, because its
// spacing is meaningless.
func (e *Estimator) Handle(ev ring.Event) {
	switch ev.Msg {
	case midi.Clock:
		e.ticks++
		if e.hasPrev && ev.Time > e.prevTime {
			samplesPerQuarterNote := float64(ev.Time-e.prevTime) * 24.0
			bpm := float64(e.FrameRate) * 60.0 / samplesPerQuarterNote
			fmt.Fprintf(e.w, "%.2f @ %d%c", bpm, ev.Time, e.Newline)
			e.notify(Update{BPM: bpm, Time: ev.Time, Ticks: e.ticks, Transport: e.lastTran})
		}
		e.prevTime = ev.Time
		e.hasPrev = true

	case midi.Start:
		e.transport("start", ev)
	case midi.Continue:
		e.transport("continue", ev)
	case midi.Stop:
		e.transport("stop", ev)
	}
}

// transport prints a transport edge and resets the tick pairing so the
// first clock after the edge does not pair with a stale timestamp.
func (e *Estimator) transport(name string, ev ring.Event) {
	fmt.Fprintf(e.w, "%s @ %d\n", name, ev.Time)
	e.hasPrev = false
	e.lastTran = ev.Msg
	e.notify(Update{Time: ev.Time, Ticks: e.ticks, Transport: ev.Msg})
}

func (e *Estimator) notify(u Update) {
	if e.Updates == nil {
		return
	}
	select {
	case e.Updates <- u:
	default:
	}
}
