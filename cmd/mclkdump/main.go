// mclkdump listens to an incoming MIDI beat clock and prints the
// sender's tempo derived from consecutive tick timestamps, plus every
// transport edge it sees.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"midi-clock/config"
	"midi-clock/debug"
	"midi-clock/dump"
	"midi-clock/host"
	"midi-clock/ring"
	"midi-clock/tui"
)

const version = "0.5.0"

// ringSize holds a few windows' worth of ticks; at 24 ticks per quarter
// note even extreme tempi fit with room to spare.
const ringSize = 20

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: mclkdump [options] [port]

Print the tempo of a MIDI beat clock arriving on the given input port
(a name substring; the first available port when omitted and not
configured). When a port name is given, mclkdump waits for it to
appear.

Options:
  -n, --newline  print each tempo reading on its own line
  -t, --tui      show a live monitor instead of printing lines
  -d, --debug    write diagnostics to the debug log
  -V, --version  print version and exit
  -h, --help     show this help
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

	var useTUI, showVersion, debugLog bool
	flag.BoolVar(&cfg.Newline, "n", cfg.Newline, "")
	flag.BoolVar(&cfg.Newline, "newline", cfg.Newline, "")
	flag.BoolVar(&useTUI, "t", false, "")
	flag.BoolVar(&useTUI, "tui", false, "")
	flag.BoolVar(&debugLog, "d", false, "")
	flag.BoolVar(&debugLog, "debug", false, "")
	flag.BoolVar(&showVersion, "V", false, "")
	flag.BoolVar(&showVersion, "version", false, "")
	flag.Usage = usage
	flag.Parse()

	if showVersion {
		fmt.Printf("mclkdump %s\n", version)
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	in, err := host.InPort(portName)
	if err != nil && portName != "" {
		// The named port may not exist yet; wait for it unless a
		// signal arrives first.
		logger.Info("waiting for input port", zap.String("port", portName))
		go func() {
			<-sigCh
			cancel()
		}()
		in, err = host.WaitForInPort(ctx, portName)
	}
	if err != nil {
		logger.Error("cannot open MIDI input", zap.Error(err))
		return 1
	}

	r := ring.New(ringSize)
	waker := ring.NewWaker()
	capture := dump.NewCapture(r, waker)

	if err := host.LockMemory(); err != nil {
		logger.Warn("cannot lock memory", zap.Error(err))
	}

	stop, err := host.ListenClock(in, capture, cfg.FrameRate)
	if err != nil {
		logger.Error("cannot listen", zap.Error(err))
		return 1
	}
	defer stop()

	if useTUI {
		// The monitor owns the terminal; the estimator only feeds the
		// update channel.
		est := dump.NewEstimator(cfg.FrameRate, io.Discard)
		est.Updates = make(chan dump.Update, 8)
		go est.Run(r, waker)

		p := tea.NewProgram(tui.NewModel(est.Updates, r), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			logger.Error("monitor failed", zap.Error(err))
			waker.Shutdown()
			return 1
		}
		waker.Shutdown()
		return 0
	}

	est := dump.NewEstimator(cfg.FrameRate, os.Stdout)
	if cfg.Newline {
		est.Newline = '\n'
	}

	go func() {
		<-sigCh
		waker.Shutdown()
	}()

	est.Run(r, waker)
	// Leave the carriage-return line behind cleanly.
	if !cfg.Newline {
		fmt.Println()
	}
	if dropped := r.Dropped(); dropped > 0 {
		logger.Warn("events dropped", zap.Uint64("dropped", dropped))
	}
	return 0
}
