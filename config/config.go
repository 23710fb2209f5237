// Package config loads synacor run configuration from TOML files.
//
// An example configuration:
//
//	binary = "challenge.bin"
//	state = "maze.state"
//	verbose = false
//	history = 4096
//	lines = 20
//
//	[[breakpoint]]
//	expr = "pc == 0x156b"
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/ezrec/synacor/emulator"
	"github.com/ezrec/synacor/io"
	"github.com/ezrec/synacor/translate"
)

var f = translate.From

var (
	ErrUnknownKey   = errors.New(f("unknown configuration key"))
	ErrInvalidValue = errors.New(f("invalid configuration value"))
)

// Config of a synacor run.
type Config struct {
	Binary      string       `toml:"binary"`      // Program binary to execute.
	State       string       `toml:"state"`       // Saved state to resume.
	Disassemble string       `toml:"disassemble"` // Listing file; disassemble instead of running.
	Verbose     bool         `toml:"verbose"`     // Verbose logging.
	History     int          `toml:"history"`     // Program counter history entries.
	Lines       int          `toml:"lines"`       // Output lines kept for saved states.
	Breakpoints []Breakpoint `toml:"breakpoint"`  // Initial breakpoints.
}

// Breakpoint configuration.
type Breakpoint struct {
	Expr string `toml:"expr"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		History: io.HISTORY_DEFAULT_CAPACITY,
		Lines:   io.LINES_DEFAULT_LIMIT,
	}
}

// Load parses a TOML configuration file. Keys missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	return Parse(path, string(data))
}

// Parse a TOML configuration. The name is used in error messages.
func Parse(name string, text string) (*Config, error) {
	cfg := Default()

	md, err := toml.Decode(text, cfg)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", name, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: %w: %v", name, ErrUnknownKey, undecoded[0])
	}

	err = cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	return cfg, nil
}

// Validate checks the configuration values.
func (cfg *Config) Validate() error {
	if cfg.History <= 0 {
		return fmt.Errorf("%w: history %d", ErrInvalidValue, cfg.History)
	}

	if cfg.Lines <= 0 {
		return fmt.Errorf("%w: lines %d", ErrInvalidValue, cfg.Lines)
	}

	for _, bp := range cfg.Breakpoints {
		_, err := emulator.NewBreakpoint(bp.Expr)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidValue, err)
		}
	}

	return nil
}

// Merge overrides the configuration with the set values of other.
// Breakpoints are added to the existing ones.
func (cfg *Config) Merge(other *Config) {
	if len(other.Binary) != 0 {
		cfg.Binary = other.Binary
	}
	if len(other.State) != 0 {
		cfg.State = other.State
	}
	if len(other.Disassemble) != 0 {
		cfg.Disassemble = other.Disassemble
	}
	if other.Verbose {
		cfg.Verbose = true
	}
	if other.History > 0 {
		cfg.History = other.History
	}
	if other.Lines > 0 {
		cfg.Lines = other.Lines
	}
	cfg.Breakpoints = append(cfg.Breakpoints, other.Breakpoints...)
}

// Apply the configuration to an emulator.
func (cfg *Config) Apply(emu *emulator.Emulator) (err error) {
	emu.Verbose = cfg.Verbose
	emu.History.Capacity = cfg.History
	emu.History.Data = nil
	emu.History.Reset()
	emu.Tape.Lines.Limit = cfg.Lines

	for _, bp := range cfg.Breakpoints {
		_, err = emu.AddBreakpoint(bp.Expr)
		if err != nil {
			return
		}
	}

	return
}
