// Package config loads the optional YAML cluster fixture file described in
// SPEC_FULL.md §B. The CLI form `<prog> <port> <id> <otherId>+` (spec.md
// §6) remains the primary interface; this is additive, for scripted
// multi-replica test setups.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Replica names one entry of a cluster config file: its own id/port and
// the other replica ids (never addresses, see transport.Bus's shared-bus
// design) it should track as peers.
type Replica struct {
	ID    string   `yaml:"id"`
	Port  int      `yaml:"port"`
	Peers []string `yaml:"peers"`
}

// Load reads and validates a YAML cluster config file.
func Load(path string) (Replica, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Replica{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var r Replica
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Replica{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if r.ID == "" {
		return Replica{}, fmt.Errorf("config: %s: id is required", path)
	}
	if r.Port <= 0 {
		return Replica{}, fmt.Errorf("config: %s: port must be positive", path)
	}
	if len(r.Peers) == 0 {
		return Replica{}, fmt.Errorf("config: %s: at least one peer is required", path)
	}

	return r, nil
}
