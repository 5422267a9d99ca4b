package host

import (
	"math"
	"sync"

	"midi-clock/clock"
)

// Transport is a small internal timeline for the generator to follow
// when no external transport master exists. It rolls at a fixed tempo
// in 4/4 and publishes the same snapshot shape a real host would.
//
// Snapshot contends on a mutex with the rare Play/Stop/Locate calls;
// that is acceptable here because this transport lives on the host side
// of the interface, not in the clock core.
type Transport struct {
	mu    sync.Mutex
	state clock.TransportState
	frame uint64
	rate  uint32
	bpm   float64

	beatsPerBar  float64
	ticksPerBeat float64
}

// NewTransport returns a stopped transport at frame 0. With bpm zero
// the transport reports no tempo map, which silences the clock unless
// the generator has a user tempo.
func NewTransport(frameRate uint32, bpm float64) *Transport {
	return &Transport{
		rate:         frameRate,
		bpm:          bpm,
		beatsPerBar:  4,
		ticksPerBeat: 1920,
	}
}

// Play requests a transport start; the state passes through Starting
// for one window before it rolls, like a host waiting on slow clients.
func (t *Transport) Play() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == clock.Stopped {
		t.state = clock.Starting
	}
}

// Stop halts the transport, keeping the current position.
func (t *Transport) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = clock.Stopped
}

// Locate moves the playhead. Usually called while stopped, which makes
// the generator announce the new position.
func (t *Transport) Locate(frame uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.frame = frame
}

// SetTempo changes the tempo the transport reports.
func (t *Transport) SetTempo(bpm float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bpm = bpm
}

// Snapshot returns this window's transport view and advances the
// timeline by nframes when rolling. A Starting state resolves to
// Rolling on the following window.
func (t *Transport) Snapshot(nframes uint32) clock.TransportSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := clock.TransportSnapshot{
		State:     t.state,
		Frame:     t.frame,
		FrameRate: t.rate,
	}
	if t.bpm > 0 {
		samplesPerBeat := float64(t.rate) * 60.0 / t.bpm
		beats := float64(t.frame) / samplesPerBeat
		bar := math.Floor(beats / t.beatsPerBar)
		beatInBar := beats - bar*t.beatsPerBar

		snap.BBTValid = true
		snap.BeatsPerMinute = t.bpm
		snap.Bar = int32(bar) + 1
		snap.Beat = int32(beatInBar) + 1
		snap.Tick = int32((beatInBar - math.Floor(beatInBar)) * t.ticksPerBeat)
		snap.BeatsPerBar = t.beatsPerBar
		snap.TicksPerBeat = t.ticksPerBeat
		snap.BarStartTick = bar * t.beatsPerBar * t.ticksPerBeat
	}

	switch t.state {
	case clock.Starting:
		t.state = clock.Rolling
	case clock.Rolling:
		t.frame += uint64(nframes)
	}
	return snap
}
