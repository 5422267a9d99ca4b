package host

import (
	"context"
	"time"
)

// Driver emulates a host's fixed-size processing windows from wall
// time: it invokes OnWindow once per period with the configured window
// length, the way an audio host would invoke its process callback.
type Driver struct {
	FrameRate uint32
	Window    uint32 // frames per callback
	OnWindow  func(nframes uint32)
}

// Run invokes the callback at window cadence until ctx ends.
func (d *Driver) Run(ctx context.Context) {
	period := time.Duration(float64(d.Window) / float64(d.FrameRate) * float64(time.Second))
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.OnWindow(d.Window)
		}
	}
}
