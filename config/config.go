// Package config loads and validates the hotkeyd TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"hotkeyd/keybind"
)

// Keybind is one [[keybind]] entry as written in the config file.
type Keybind struct {
	Trigger string `toml:"trigger"`
	Action  string `toml:"action"`
	Global  bool   `toml:"global"`
}

type Config struct {
	LogPath  string    `toml:"log_path"`
	Keybinds []Keybind `toml:"keybind"`
}

// DefaultPath returns the per-user config file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "hotkeyd", "config.toml"), nil
}

// Load reads and validates the config file. Every entry must parse; a bad
// trigger or action fails the whole load so the daemon never runs with a
// partially applied config.
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	for i, kb := range cfg.Keybinds {
		if _, err := keybind.ParseSequence(kb.Trigger); err != nil {
			return nil, fmt.Errorf("%s: keybind %d: %w", path, i+1, err)
		}
		if _, err := keybind.ParseAction(kb.Action); err != nil {
			return nil, fmt.Errorf("%s: keybind %d: %w", path, i+1, err)
		}
	}
	return &cfg, nil
}

// Table converts the validated entries into the keybinding table the
// backends consume. Load must have succeeded on the same receiver.
func (c *Config) Table() keybind.Table {
	table := make(keybind.Table, 0, len(c.Keybinds))
	for _, kb := range c.Keybinds {
		seq, err := keybind.ParseSequence(kb.Trigger)
		if err != nil {
			continue
		}
		action, err := keybind.ParseAction(kb.Action)
		if err != nil {
			continue
		}
		table = append(table, keybind.Binding{
			Sequence: seq,
			Action:   action,
			Global:   kb.Global,
		})
	}
	return table
}
