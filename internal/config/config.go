package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = ".loomgraph/config.toml"

// Config holds settings for the loomgraph CLI.
type Config struct {
	StateDir        string  `toml:"state_dir"`
	Actor           string  `toml:"actor"`            // recorded as created_by
	DefaultDuration float64 `toml:"default_duration"` // days, for tasks without an estimate
	MinutesPerDay   float64 `toml:"minutes_per_day"`  // converts bd estimates to days
	BdBin           string  `toml:"bd_bin"`
	BdDB            string  `toml:"bd_db"`
	LogLevel        string  `toml:"log_level"` // empty keeps LOG_LEVEL or the logger default
}

// Default returns the configuration used when no file is present.
func Default() Config {
	actor := os.Getenv("USER")
	if actor == "" {
		actor = "unknown"
	}
	return Config{
		StateDir:        ".loomgraph",
		Actor:           actor,
		DefaultDuration: 1,
		MinutesPerDay:   480,
		BdBin:           "bd",
	}
}

// Load reads a TOML config file on top of the defaults. A missing file is not
// an error unless required is set.
func Load(path string, required bool) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return cfg, nil
		}
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("load config %s: unknown keys %v", path, undecoded)
	}
	return cfg, cfg.Validate()
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.MinutesPerDay <= 0 {
		return fmt.Errorf("minutes_per_day must be positive, got %v", c.MinutesPerDay)
	}
	if c.DefaultDuration < 0 {
		return fmt.Errorf("default_duration must not be negative, got %v", c.DefaultDuration)
	}
	if c.StateDir == "" {
		return errors.New("state_dir must not be empty")
	}
	return nil
}
