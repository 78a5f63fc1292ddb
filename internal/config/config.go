// Package config loads engine settings from a TOML file layered under
// environment variable overrides, following the same precedence and
// file-search convention the rest of the pack uses: environment
// variables win over the config file, which wins over the built-in
// defaults.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds all configuration for the sanitycheck engine.
// Precedence: environment variables > config file > defaults.
type Config struct {
	Repos     ReposConfig     `toml:"repos"`
	Run       RunConfig       `toml:"run"`
	Progress  ProgressConfig  `toml:"progress"`
	Log       LogConfig       `toml:"log"`
	Watch     WatchConfig     `toml:"watch"`
}

// ReposConfig lists the check repositories to load.
type ReposConfig struct {
	Paths []string `toml:"paths"`
}

// RunConfig controls how loaded checks are executed.
type RunConfig struct {
	// TryFix enables the single automatic fix-then-recheck attempt.
	TryFix bool `toml:"try_fix"`
}

// ProgressConfig selects the progress sink the runner reports to.
type ProgressConfig struct {
	// Backend is "noop", "counting" (plain stderr counter), or "tui"
	// (bubbletea progress bar).
	Backend string `toml:"backend"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
}

// WatchConfig controls the optional periodic re-run mode.
type WatchConfig struct {
	Enabled         bool `toml:"enabled"`
	IntervalSeconds int  `toml:"interval_seconds"`
}

// Load creates a Config by reading from a TOML config file and
// environment variables.
//
// Config file search order (first found wins):
//  1. Path passed via configPath parameter (from --config flag)
//  2. SANITYCHECK_CONFIG environment variable
//  3. ./sanitycheck.toml (current directory)
//  4. ~/.config/sanitycheck/sanitycheck.toml (XDG-style)
//
// All fields are optional in the config file. Environment variables
// always override file values.
func Load(configPath string) (*Config, error) {
	cfg := &Config{
		Run: RunConfig{
			TryFix: true,
		},
		Progress: ProgressConfig{
			Backend: "counting",
		},
		Log: LogConfig{
			Level: "info",
		},
		Watch: WatchConfig{
			Enabled:         false,
			IntervalSeconds: 300,
		},
	}

	if err := cfg.loadFile(configPath); err != nil {
		return nil, err
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile finds and parses the TOML config file. If no file is
// found, this is a no-op (config file is optional).
func (c *Config) loadFile(configPath string) error {
	path := resolveConfigPath(configPath)
	if path == "" {
		return nil
	}
	if _, err := toml.DecodeFile(path, c); err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	return nil
}

// resolveConfigPath determines which config file to use. Returns
// empty string if no config file is found (config file is optional).
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if p := os.Getenv("SANITYCHECK_CONFIG"); p != "" {
		return p
	}
	if _, err := os.Stat("sanitycheck.toml"); err == nil {
		return "sanitycheck.toml"
	}
	if home, err := os.UserHomeDir(); err == nil {
		p := home + "/.config/sanitycheck/sanitycheck.toml"
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// applyEnv overlays environment variables on top of existing config
// values. An env var only takes effect if it is non-empty.
func (c *Config) applyEnv() {
	if v := os.Getenv("SANITYCHECK_REPOS"); v != "" {
		c.Repos.Paths = splitCSV(v)
	}

	if v := os.Getenv("SANITYCHECK_TRY_FIX"); v != "" {
		c.Run.TryFix = v == "true" || v == "1"
	}

	envOverride("SANITYCHECK_PROGRESS", &c.Progress.Backend)
	envOverride("SANITYCHECK_LOG_LEVEL", &c.Log.Level)

	if v := os.Getenv("SANITYCHECK_WATCH"); v != "" {
		c.Watch.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("SANITYCHECK_WATCH_INTERVAL_SECONDS"); v != "" {
		var seconds int
		if _, err := fmt.Sscanf(v, "%d", &seconds); err == nil && seconds > 0 {
			c.Watch.IntervalSeconds = seconds
		}
	}
}

// Validate checks that required fields are present and well-formed.
func (c *Config) Validate() error {
	if len(c.Repos.Paths) == 0 {
		return fmt.Errorf("at least one repo path is required: set repos.paths in config file, or SANITYCHECK_REPOS env var")
	}
	switch c.Progress.Backend {
	case "noop", "counting", "tui":
	default:
		return fmt.Errorf("invalid progress backend: %q (must be \"noop\", \"counting\" or \"tui\")", c.Progress.Backend)
	}
	if c.Watch.Enabled && c.Watch.IntervalSeconds <= 0 {
		return fmt.Errorf("watch.interval_seconds must be positive when watch is enabled")
	}
	return nil
}

// envOverride sets *dst to the value of the named env var, if it is
// non-empty.
func envOverride(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func splitCSV(v string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(v); i++ {
		if i == len(v) || v[i] == ',' {
			if i > start {
				out = append(out, v[start:i])
			}
			start = i + 1
		}
	}
	return out
}
