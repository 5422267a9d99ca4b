// Package debug provides optional file-based diagnostics. The TUI owns
// the terminal, so anything worth seeing at runtime goes to a log file
// instead of stdout. Disabled by default; every call is a no-op until
// Enable.
package debug

import (
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.Mutex
	logger *zap.SugaredLogger
)

// Enable starts debug logging to ~/.config/midi-clock/debug.log.
func Enable() error {
	mu.Lock()
	defer mu.Unlock()

	if logger != nil {
		return nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	dir := filepath.Join(home, ".config", "midi-clock")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{filepath.Join(dir, "debug.log")}
	cfg.ErrorOutputPaths = cfg.OutputPaths
	cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	l, err := cfg.Build()
	if err != nil {
		return err
	}

	logger = l.Sugar()
	logger.Infof("%-10s %s", "debug", "debug logging started")
	return nil
}

// Disable flushes and stops debug logging.
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	if logger != nil {
		logger.Sync()
		logger = nil
	}
}

// Log writes a message under a category. Never call this from the
// realtime path; the file write can block.
func Log(category, format string, args ...any) {
	mu.Lock()
	l := logger
	mu.Unlock()

	if l == nil {
		return
	}
	l.Infof("%-10s "+format, append([]any{category}, args...)...)
}
