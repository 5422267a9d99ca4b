package clock

// TransportState is the host transport's play state.
type TransportState uint8

const (
	Stopped TransportState = iota
	Starting
	Rolling
)

func (s TransportState) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Starting:
		return "starting"
	case Rolling:
		return "rolling"
	}
	return "unknown"
}

// TransportSnapshot is the host transport's view for one processing
// window. The host produces a fresh value every window; the generator
// copies the few fields it needs across windows and never keeps a
// reference to the snapshot itself.
type TransportSnapshot struct {
	State     TransportState
	Frame     uint64 // absolute sample position of the window start
	FrameRate uint32

	// BBTValid guards all tempo-map fields below.
	BBTValid       bool
	BeatsPerMinute float64
	Bar            int32 // counted from 1
	Beat           int32 // counted from 1
	Tick           int32
	BeatsPerBar    float64
	TicksPerBeat   float64
	BarStartTick   float64

	// Sub-frame offset of the BBT reference, when the host reports one.
	OffsetValid bool
	Offset      uint32
}

// Filter suppresses classes of outgoing messages. The zero value lets
// everything through.
type Filter uint8

const (
	NoTransport   Filter = 1 << iota // start/stop/continue
	NoClock                          // clock ticks
	NoPosition                       // song position pointers
	NoStoppedClock                   // no clock while the transport is not rolling
)

// Has reports whether all bits in f are set.
func (f Filter) Has(bits Filter) bool {
	return f&bits == bits
}

// bbtPos remembers the transport's bar/beat/tick across windows so a
// relocate while stopped can be detected.
type bbtPos struct {
	valid           bool
	bar, beat, tick int32
	barStartTick    float64
}

// changed reports whether the snapshot's position differs from the
// remembered one. Positions only compare when both are valid.
func (p *bbtPos) changed(pos *TransportSnapshot) bool {
	if !p.valid || !pos.BBTValid {
		return false
	}
	return p.bar != pos.Bar || p.beat != pos.Beat || p.tick != pos.Tick
}

// remember copies the snapshot's position. Invalid snapshots leave the
// last valid position in place.
func (p *bbtPos) remember(pos *TransportSnapshot) {
	if !pos.BBTValid {
		return
	}
	p.valid = true
	p.bar = pos.Bar
	p.beat = pos.Beat
	p.tick = pos.Tick
	p.barStartTick = pos.BarStartTick
}
