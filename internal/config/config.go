// Package config loads the VM's and debugger's runtime tuning knobs from a
// TOML file, falling back to defaults when one isn't present — same
// struct-of-sections pattern and BurntSushi/toml decoder the teacher uses.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the root of the TOML document: one section per component that
// has user-tunable behaviour.
type Config struct {
	VM struct {
		RAMFill             string `toml:"ram_fill"` // "zero" or "random"
		EnableStats         bool   `toml:"enable_stats"`
		EnableRegisterTrace bool   `toml:"enable_register_trace"`
	} `toml:"vm"`

	Debugger struct {
		TickIntervalMS int    `toml:"tick_interval_ms"`
		HistorySize    int    `toml:"history_size"`
		RAMFill        string `toml:"ram_fill"`
	} `toml:"debugger"`

	Display struct {
		RAMBytesPerLine      int `toml:"ram_bytes_per_line"`
		ProgramContextBefore int `toml:"program_context_before"`
		ProgramContextAfter  int `toml:"program_context_after"`
	} `toml:"display"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.VM.RAMFill = "zero"
	cfg.VM.EnableStats = false
	cfg.VM.EnableRegisterTrace = false
	cfg.Debugger.TickIntervalMS = 33
	cfg.Debugger.HistorySize = 1000
	cfg.Debugger.RAMFill = "random"
	cfg.Display.RAMBytesPerLine = 16
	cfg.Display.ProgramContextBefore = 5
	cfg.Display.ProgramContextAfter = 10
	return cfg
}

// Load reads config from path. A missing file is not an error: it yields
// DefaultConfig() unchanged, matching the teacher's LoadFrom fallback.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}
