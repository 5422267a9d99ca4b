// midiclock generates a MIDI beat clock from the transport: 24 ticks
// per quarter note plus start, stop, continue and song position
// messages, sample-aligned inside each processing window.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"midi-clock/clock"
	"midi-clock/config"
	"midi-clock/debug"
	"midi-clock/host"
)

const version = "0.5.0"

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: midiclock [options] [port]

Send a MIDI beat clock to the given output port (a name substring; the
first available port when omitted and not configured).

Options:
  -b, --bpm BPM       fallback tempo when the transport has no tempo map
  -B, --force-bpm     always use the -b tempo, ignore the tempo map
  -P, --no-position   do not send song position (0xF2) messages
  -T, --no-transport  do not send start/stop/continue messages
  -s, --stopped-clock keep the clock ticking while the transport is stopped
  -d, --debug         write diagnostics to the debug log
  -V, --version       print version and exit
  -h, --help          show this help
`)
}

func main() {
	os.Exit(run())
}

func run() int {
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Warn("ignoring broken config", zap.Error(err))
		cfg = config.DefaultConfig()
	}

	var showVersion, debugLog bool
	flag.Float64Var(&cfg.BPM, "b", cfg.BPM, "")
	flag.Float64Var(&cfg.BPM, "bpm", cfg.BPM, "")
	flag.BoolVar(&cfg.ForceBPM, "B", cfg.ForceBPM, "")
	flag.BoolVar(&cfg.ForceBPM, "force-bpm", cfg.ForceBPM, "")
	flag.BoolVar(&cfg.NoPosition, "P", cfg.NoPosition, "")
	flag.BoolVar(&cfg.NoPosition, "no-position", cfg.NoPosition, "")
	flag.BoolVar(&cfg.NoTransport, "T", cfg.NoTransport, "")
	flag.BoolVar(&cfg.NoTransport, "no-transport", cfg.NoTransport, "")
	flag.BoolVar(&cfg.ClockWhileStopped, "s", cfg.ClockWhileStopped, "")
	flag.BoolVar(&cfg.ClockWhileStopped, "stopped-clock", cfg.ClockWhileStopped, "")
	flag.BoolVar(&debugLog, "d", false, "")
	flag.BoolVar(&debugLog, "debug", false, "")
	flag.BoolVar(&showVersion, "V", false, "")
	flag.BoolVar(&showVersion, "version", false, "")
	flag.Usage = usage
	flag.Parse()

	if showVersion {
		fmt.Printf("midiclock %s\n", version)
		return 0
	}

	if debugLog {
		if err := debug.Enable(); err != nil {
			logger.Warn("cannot enable debug log", zap.Error(err))
		}
		defer debug.Disable()
	}

	defer host.Close()

	portName := ""
	if flag.NArg() > 0 {
		portName = flag.Arg(0)
	} else if len(cfg.Ports) > 0 {
		portName = cfg.Ports[0]
	}

	send, err := host.OutSender(portName)
	if err != nil {
		logger.Error("cannot open MIDI output", zap.Error(err))
		return 1
	}

	if err := host.LockMemory(); err != nil {
		logger.Warn("cannot lock memory", zap.Error(err))
	}

	gen := &clock.Generator{
		Filter:   cfg.Filter(),
		UserBPM:  cfg.BPM,
		ForceBPM: cfg.ForceBPM,
	}
	transport := host.NewTransport(cfg.FrameRate, cfg.BPM)
	buf := clock.NewBuffer(int(cfg.Window)/8 + 8)

	driver := &host.Driver{
		FrameRate: cfg.FrameRate,
		Window:    cfg.Window,
		OnWindow: func(nframes uint32) {
			snap := transport.Snapshot(nframes)
			buf.Reset()
			gen.Process(&snap, nframes, buf)
			for _, ev := range buf.Events() {
				if err := send(ev.Msg.Bytes()); err != nil {
					debug.Log("send", "%v", err)
				}
			}
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	windowPeriod := time.Duration(float64(cfg.Window) / float64(cfg.FrameRate) * float64(time.Second))
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		<-sigCh
		logger.Info("shutting down")
		// Stop the transport first and let the stop message flush
		// through one more window before killing the driver.
		transport.Stop()
		time.Sleep(2 * windowPeriod)
		cancel()
	}()

	transport.Play()
	logger.Info("transport rolling",
		zap.Float64("bpm", cfg.BPM),
		zap.Uint32("rate", cfg.FrameRate),
		zap.Uint32("window", cfg.Window))
	driver.Run(ctx)

	if gen.DroppedPositions > 0 {
		logger.Warn("song positions out of range", zap.Uint64("dropped", gen.DroppedPositions))
	}
	return 0
}
