package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is cmd/itmux's user-facing YAML profile file: named host groups
// and reusable on-connect macros. Host/credential records themselves are
// owned by pkg/hostprofile/pkg/credential and persisted as JSON; this file
// only carries the conveniences a user hand-edits.
//
// Example:
//
//	groups:
//	  - name: dc1
//	    default_user: netops
//	    default_port: 22
//	macros:
//	  - name: uptime
//	    commands: ["uptime", "who"]
type Config struct {
	Groups []GroupConfig `yaml:"groups"`
	Macros []MacroConfig `yaml:"macros,omitempty"`
}

// GroupConfig mirrors hostprofile.Group plus the on-connect command lists
// a macro can't express standalone.
type GroupConfig struct {
	Name        string   `yaml:"name"`
	DefaultUser string   `yaml:"default_user,omitempty"`
	DefaultPort int      `yaml:"default_port,omitempty"`
	JumpHost    string   `yaml:"jump_host,omitempty"`
	OnConnect   []string `yaml:"on_connect,omitempty"`
}

// MacroConfig is a named list of commands sendable to the active pane from
// the TUI's command bar.
type MacroConfig struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Commands    []string `yaml:"commands"`
}

var ErrConfigNotFound = errors.New("itmux: no config file found")

const defaultConfigName = "itmux.yaml"

// LoadConfig reads explicitPath if given, else the first of the XDG/legacy
// candidate paths that exists. A missing config at every candidate path is
// not fatal: the TUI runs with an empty Config (no groups/macros) in that
// case, since all of its real state lives in pkg/hostprofile.
func LoadConfig(explicitPath string) (*Config, string, error) {
	for _, p := range configPathCandidates(explicitPath) {
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		var cfg Config
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, p, fmt.Errorf("parse yaml %s: %w", p, err)
		}
		return &cfg, p, nil
	}
	return &Config{}, "", ErrConfigNotFound
}

func configPathCandidates(explicitPath string) []string {
	var out []string
	if strings.TrimSpace(explicitPath) != "" {
		out = append(out, explicitPath)
	}
	if env := os.Getenv("ITMUX_CONFIG"); env != "" {
		out = append(out, env)
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		out = append(out, filepath.Join(xdg, "itmux", defaultConfigName))
	}
	if home, err := os.UserHomeDir(); err == nil {
		out = append(out, filepath.Join(home, ".config", "itmux", defaultConfigName))
	}
	return out
}

// GroupByName returns the named group, if present.
func (c *Config) GroupByName(name string) (GroupConfig, bool) {
	for _, g := range c.Groups {
		if g.Name == name {
			return g, true
		}
	}
	return GroupConfig{}, false
}

// MacroByName returns the named macro, if present.
func (c *Config) MacroByName(name string) (MacroConfig, bool) {
	for _, m := range c.Macros {
		if m.Name == name {
			return m, true
		}
	}
	return MacroConfig{}, false
}
