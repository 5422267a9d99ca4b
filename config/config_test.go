package config

import (
	"testing"

	"midi-clock/clock"
)

func TestDefaultFilterGatesStoppedClock(t *testing.T) {
	f := DefaultConfig().Filter()
	if !f.Has(clock.NoStoppedClock) {
		t.Logf("Default filter should suppress clock while stopped\n")
		t.FailNow()
	}
	if f.Has(clock.NoClock) || f.Has(clock.NoTransport) || f.Has(clock.NoPosition) {
		t.Logf("Default filter suppresses too much: %08b\n", f)
		t.FailNow()
	}
}

func TestFilterMapping(t *testing.T) {
	c := &Config{
		NoPosition:        true,
		NoTransport:       true,
		ClockWhileStopped: true,
	}
	f := c.Filter()
	if !f.Has(clock.NoPosition) || !f.Has(clock.NoTransport) {
		t.Logf("Suppression flags did not map: %08b\n", f)
		t.FailNow()
	}
	if f.Has(clock.NoStoppedClock) {
		t.Logf("ClockWhileStopped should clear NoStoppedClock\n")
		t.FailNow()
	}
}
