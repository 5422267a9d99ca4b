package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"midi-clock/clock"
)

// Config is the persistent configuration shared by midiclock and
// mclkdump. Command-line flags override whatever is loaded from disk.
type Config struct {
	// Generator settings
	BPM               float64 `json:"bpm,omitempty"`      // fallback tempo, 0 disables
	ForceBPM          bool    `json:"forceBpm,omitempty"` // ignore the host tempo map
	NoPosition        bool    `json:"noPosition,omitempty"`
	NoTransport       bool    `json:"noTransport,omitempty"`
	ClockWhileStopped bool    `json:"clockWhileStopped,omitempty"`

	// Dump settings
	Newline bool `json:"newline,omitempty"` // scroll tempo lines instead of overwriting

	// Emulated host parameters
	FrameRate uint32 `json:"frameRate,omitempty"`
	Window    uint32 `json:"window,omitempty"` // frames per processing window

	// Ports to connect to when none are given on the command line
	Ports []string `json:"ports,omitempty"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BPM:       120,
		FrameRate: 48000,
		Window:    256,
	}
}

// Filter translates the suppression settings into the generator's
// message filter. Clock-while-stopped is opt-in, matching how hardware
// followers expect the clock to pause with the transport.
func (c *Config) Filter() clock.Filter {
	var f clock.Filter
	if !c.ClockWhileStopped {
		f |= clock.NoStoppedClock
	}
	if c.NoPosition {
		f |= clock.NoPosition
	}
	if c.NoTransport {
		f |= clock.NoTransport
	}
	return f
}

// Dir returns the config directory path.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "midi-clock"), nil
}

// Path returns the full path to config.json.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.FrameRate == 0 {
		cfg.FrameRate = 48000
	}
	if cfg.Window == 0 {
		cfg.Window = 256
	}
	return cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := Path()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
