package clock

import (
	"math"
	"testing"

	"midi-clock/midi"
)

// collectTicks runs a rolling generator over consecutive windows and
// returns each emitted tick's absolute sample time.
func collectTicks(t *testing.T, bpm float64, nframes uint32, windows int) []uint64 {
	t.Helper()
	g := Generator{state: Rolling}
	buf := NewBuffer(int(nframes)/8 + 4)
	ticks := []uint64{}

	frame := uint64(0)
	for i := 0; i < windows; i++ {
		s := snap(Rolling, frame, bpm)
		buf.Reset()
		g.Process(&s, nframes, buf)
		for _, ev := range buf.Events() {
			if ev.Msg.Status() == midi.Clock {
				ticks = append(ticks, frame+uint64(ev.Offset))
			}
		}
		frame += uint64(nframes)
	}
	return ticks
}

func TestTickSpacingExact(t *testing.T) {
	// 48 kHz at 120 BPM: the tick interval is exactly 1000 samples, so
	// every emitted tick must sit exactly on the 1000-sample grid no
	// matter how the windows cut it up.
	for _, nframes := range []uint32{64, 256, 333, 1024} {
		windows := int(1_000_000 / nframes)
		ticks := collectTicks(t, 120, nframes, windows)

		total := uint64(nframes) * uint64(windows)
		want := int(total / 1000)
		if len(ticks) < want-1 || len(ticks) > want+1 {
			t.Logf("window %d: %d ticks over %d samples, expected %d +-1\n",
				nframes, len(ticks), total, want)
			t.FailNow()
		}
		for i, tick := range ticks {
			if tick != uint64(i+1)*1000 {
				t.Logf("window %d: tick %d at %d, expected %d\n",
					nframes, i, tick, (i+1)*1000)
				t.FailNow()
			}
		}
	}
}

func TestNoDriftOverManyWindows(t *testing.T) {
	// 140 BPM at 48 kHz gives a non-representable interval of
	// 857.142857... samples. Over 10,000 windows every tick must stay
	// within one sample of the ideal grid: error from rounding the
	// offset is allowed, accumulated error is not.
	const (
		bpm     = 140.0
		nframes = 857 // roughly one interval per window
		windows = 10000
	)
	interval := 48000.0 * 60.0 / bpm / 24.0

	ticks := collectTicks(t, bpm, nframes, windows)
	if len(ticks) == 0 {
		t.Logf("No ticks emitted\n")
		t.FailNow()
	}
	for i, tick := range ticks {
		ideal := float64(i+1) * interval
		if diff := math.Abs(float64(tick) - ideal); diff > 1.0 {
			t.Logf("Tick %d drifted %.4f samples from the grid (at %d, ideal %.3f)\n",
				i, diff, tick, ideal)
			t.FailNow()
		}
	}

	last := ticks[len(ticks)-1]
	ideal := float64(len(ticks)) * interval
	if diff := math.Abs(float64(last) - ideal); diff > 1.0 {
		t.Logf("Final tick off by %.4f samples after %d windows\n", diff, windows)
		t.FailNow()
	}
}

func TestBoundaryTickEmittedOnce(t *testing.T) {
	// A tick landing exactly on a window boundary belongs to the next
	// window and must be emitted there, exactly once.
	ticks := collectTicks(t, 120, 1000, 5)
	want := []uint64{1000, 2000, 3000, 4000}
	if len(ticks) != len(want) {
		t.Logf("Got ticks at %v, expected %v\n", ticks, want)
		t.FailNow()
	}
	for i := range want {
		if ticks[i] != want[i] {
			t.Logf("Got ticks at %v, expected %v\n", ticks, want)
			t.FailNow()
		}
	}
}

func TestWindowJitterKeepsGrid(t *testing.T) {
	// Alternate window sizes; the grid must not care how the stream is
	// chopped up.
	g := Generator{state: Rolling}
	buf := NewBuffer(64)
	sizes := []uint32{64, 512, 128, 1024, 96, 731}
	ticks := []uint64{}

	frame := uint64(0)
	for i := 0; i < 2000; i++ {
		nframes := sizes[i%len(sizes)]
		s := snap(Rolling, frame, 120)
		buf.Reset()
		g.Process(&s, nframes, buf)
		for _, ev := range buf.Events() {
			if ev.Msg.Status() == midi.Clock {
				ticks = append(ticks, frame+uint64(ev.Offset))
			}
		}
		frame += uint64(nframes)
	}

	for i, tick := range ticks {
		if tick != uint64(i+1)*1000 {
			t.Logf("Tick %d at %d, expected %d\n", i, tick, (i+1)*1000)
			t.FailNow()
		}
	}
}
