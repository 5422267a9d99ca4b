// Package host is the thin layer between the clock core and the
// outside world: MIDI port I/O, the processing-window driver and a
// small internal transport. Nothing in here runs on the realtime path
// except the callbacks it forwards.
package host

import (
	"context"
	"fmt"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"midi-clock/debug"
	"midi-clock/dump"
)

// OutSender opens a MIDI output and returns a function that sends raw
// message bytes to it. An empty name picks the first available output.
func OutSender(name string) (func(b []byte) error, error) {
	out, err := findOut(name)
	if err != nil {
		return nil, err
	}
	send, err := gomidi.SendTo(out)
	if err != nil {
		return nil, fmt.Errorf("open output %q: %w", out.String(), err)
	}
	debug.Log("host", "sending to %q", out.String())
	return func(b []byte) error {
		return send(gomidi.Message(b))
	}, nil
}

// ListenClock subscribes a capture stage to a MIDI input. Incoming
// single-byte realtime messages are stamped against the port's
// millisecond timestamps converted to samples at the given rate. The
// returned function stops the listener.
func ListenClock(in drivers.In, c *dump.Capture, frameRate uint32) (func(), error) {
	stop, err := gomidi.ListenTo(in, func(msg gomidi.Message, timestampms int32) {
		if timestampms < 0 {
			timestampms = 0
		}
		at := uint64(timestampms) * uint64(frameRate) / 1000
		if len(msg) == 1 {
			c.Deliver(msg[0], at)
		}
	}, gomidi.UseTimeCode())
	if err != nil {
		return nil, fmt.Errorf("listen on %q: %w", in.String(), err)
	}
	debug.Log("host", "listening on %q", in.String())
	return stop, nil
}

// InPort resolves a MIDI input by name substring; an empty name picks
// the first available input.
func InPort(name string) (drivers.In, error) {
	if name == "" {
		ins := gomidi.GetInPorts()
		if len(ins) == 0 {
			return nil, fmt.Errorf("no MIDI input ports available")
		}
		return ins[0], nil
	}
	in, err := gomidi.FindInPort(name)
	if err != nil {
		return nil, fmt.Errorf("no MIDI input matching %q", name)
	}
	return in, nil
}

// WaitForInPort polls for a matching input until one shows up or ctx
// ends, so the tools can be started before the sender's port exists.
func WaitForInPort(ctx context.Context, name string) (drivers.In, error) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		in, err := InPort(name)
		if err == nil {
			return in, nil
		}
		select {
		case <-ctx.Done():
			return nil, err
		case <-ticker.C:
		}
	}
}

// Close releases the MIDI driver. Call once at program exit.
func Close() {
	gomidi.CloseDriver()
}

func findOut(name string) (drivers.Out, error) {
	if name == "" {
		outs := gomidi.GetOutPorts()
		if len(outs) == 0 {
			return nil, fmt.Errorf("no MIDI output ports available")
		}
		return outs[0], nil
	}
	out, err := gomidi.FindOutPort(name)
	if err != nil {
		return nil, fmt.Errorf("no MIDI output matching %q", name)
	}
	return out, nil
}
