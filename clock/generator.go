package clock

import (
	"math"

	"midi-clock/midi"
)

// clocksPerQuarterNote is fixed by the MIDI beat clock protocol.
const clocksPerQuarterNote = 24.0

// Generator turns a stream of transport snapshots into MIDI beat clock
// messages. It never acts as transport master; it only follows the
// snapshots it is given (or a user-supplied tempo).
//
// All mutable state lives on the struct: one Process call per window,
// from a single goroutine. The configuration fields are read by Process
// and must not change while it runs.
type Generator struct {
	Filter Filter

	// UserBPM is a fallback tempo used when the host has no tempo map.
	// With ForceBPM set it overrides the host tempo map entirely.
	UserBPM  float64
	ForceBPM bool

	// DroppedPositions counts song positions that fell outside the
	// 14-bit protocol range and were silently discarded.
	DroppedPositions uint64

	state        TransportState
	lastPos      bbtPos
	lastTickTime float64 // fractional sample time of the last clock tick
}

// Process inspects the transport snapshot for one window of nframes
// samples and appends this window's messages to out, each tagged with
// its in-window sample offset.
//
// The host calls this from the realtime thread: it must not allocate,
// lock, log or block.
func (g *Generator) Process(pos *TransportSnapshot, nframes uint32, out *Buffer) {
	// A relocate while stopped is announced with a song position, so
	// followers stay in sync for the next start.
	if pos.State == Stopped && g.state == Stopped && g.lastPos.changed(pos) {
		g.sendPosition(pos, out)
	}
	g.lastPos.remember(pos)

	if pos.State != g.state {
		g.transition(pos, out)
		// Restart the tick grid at the window boundary of the change.
		g.lastTickTime = float64(pos.Frame)
		g.state = pos.State
	}

	if pos.State != Rolling && g.Filter.Has(NoStoppedClock) {
		return
	}
	if g.Filter.Has(NoClock) {
		return
	}
	g.sendTicks(pos, nframes, out)
}

// State returns the transport state remembered from the last window.
func (g *Generator) State() TransportState {
	return g.state
}

// transition emits the control messages for a transport state change.
// Process only calls it when the state actually changed, so a host that
// reports Starting for several windows in a row sends Start/Continue
// once; the repeats are no-ops.
func (g *Generator) transition(pos *TransportSnapshot, out *Buffer) {
	switch pos.State {
	case Stopped:
		if !g.Filter.Has(NoTransport) {
			out.Add(0, midi.Realtime(midi.Stop))
		}
		g.sendPosition(pos, out)

	case Starting:
		g.startOrContinue(pos, out)

	case Rolling:
		if g.state != Starting {
			// The host jumped straight to Rolling; the start
			// message was never sent, so send it now.
			g.startOrContinue(pos, out)
		}
		// One tick right at the window start so followers can align
		// their 24-per-quarter grid immediately.
		if !g.Filter.Has(NoClock) {
			out.Add(0, midi.Realtime(midi.Clock))
		}
	}
}

// startOrContinue sends Start when the transport begins at frame 0 and
// Continue when it resumes anywhere else.
func (g *Generator) startOrContinue(pos *TransportSnapshot, out *Buffer) {
	if g.Filter.Has(NoTransport) {
		return
	}
	if pos.Frame == 0 {
		out.Add(0, midi.Realtime(midi.Start))
	} else {
		out.Add(0, midi.Realtime(midi.Continue))
	}
}

// sendPosition emits a Song Position Pointer for the snapshot's BBT
// position. The register counts MIDI-beats (six clocks each) from zero,
// four per quarter note; the host counts bar and beat from one.
func (g *Generator) sendPosition(pos *TransportSnapshot, out *Buffer) {
	if g.Filter.Has(NoPosition) || !pos.BBTValid {
		return
	}
	beats := int64(4*((float64(pos.Bar)-1)*pos.BeatsPerBar+(float64(pos.Beat)-1))) +
		int64(math.Floor(4*float64(pos.Tick)/pos.TicksPerBeat))
	msg, ok := midi.SongPosition(beats)
	if !ok {
		g.DroppedPositions++
		return
	}
	out.Add(0, msg)
}

// sendTicks emits every clock tick whose target sample falls inside
// this window.
//
// lastTickTime advances by exactly one interval per tick and is never
// snapped to a window boundary, so rounding error cannot accumulate:
// over any number of windows the mean tick rate converges on the
// configured tempo. Only the emitted offset is rounded.
func (g *Generator) sendTicks(pos *TransportSnapshot, nframes uint32, out *Buffer) {
	samplesPerBeat, ok := g.samplesPerBeat(pos)
	if !ok {
		return
	}

	var bbtOffset int64
	if pos.BBTValid && pos.OffsetValid {
		bbtOffset = int64(pos.Offset)
	}

	// One transport beat is one quarter note regardless of meter
	// (true for x/4 meters; close enough for the rest).
	interval := samplesPerBeat / clocksPerQuarterNote

	for {
		next := g.lastTickTime + interval
		offset := int64(math.Round(next)) - int64(pos.Frame) - bbtOffset
		if offset >= int64(nframes) {
			// Belongs to a later window. The phase is left alone so
			// that window emits it.
			break
		}
		if offset >= 0 {
			out.Add(uint32(offset), midi.Realtime(midi.Clock))
		}
		// A negative offset is a tick that logically fell into an
		// earlier window; it still consumes its slot so it cannot be
		// emitted twice.
		g.lastTickTime = next
	}
}

// samplesPerBeat resolves the tempo source for this window: a forced
// user tempo wins, then the host tempo map, then the user fallback.
// ok is false when no source applies; no ticks are sent then.
func (g *Generator) samplesPerBeat(pos *TransportSnapshot) (float64, bool) {
	rate := float64(pos.FrameRate)
	switch {
	case g.ForceBPM && g.UserBPM > 0:
		return rate * 60.0 / g.UserBPM, true
	case pos.BBTValid:
		return rate * 60.0 / pos.BeatsPerMinute, true
	case g.UserBPM > 0:
		return rate * 60.0 / g.UserBPM, true
	}
	return 0, false
}
