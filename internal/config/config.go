// Package config loads the machine configuration the pipeline engine is
// built from: functional-unit counts and latencies, branch predictor
// policy, the reorder-buffer capacity, and initial register/memory
// state. It is, per spec.md §6, one of the engine's external
// collaborators — the engine never reads a file itself.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrConfig is the sentinel every load/validation failure wraps
// (spec.md §7's ConfigError kind).
var ErrConfig = errors.New("invalid configuration")

// UnitConfig describes one functional-unit type's reservation stations.
// DivLatency only matters for Mult; SpecForward/SpecBackward only for
// Branch — left zero/empty for the rest, mirroring the source
// prototype's per-type XML attributes collapsed into one record.
type UnitConfig struct {
	Number       int    `yaml:"number"`
	Latency      int    `yaml:"latency"`
	DivLatency   int    `yaml:"divLatency,omitempty"`
	SpecForward  string `yaml:"specForward,omitempty"`
	SpecBackward string `yaml:"specBackward,omitempty"`
}

// MemoryConfig describes the flat memory array: its size in 8-byte
// cells, and the initial contents of the leading cells. Each entry's
// YAML scalar type (integer literal vs. floating literal) decides
// whether the cell starts out int-typed or float-typed.
type MemoryConfig struct {
	Size  int   `yaml:"size"`
	Cells []any `yaml:"cells"`
}

// Config is the parameter record produced by LoadConfig: everything the
// engine needs to build its ROB, reservation stations, register file,
// and memory.
type Config struct {
	ROBCapacity int                   `yaml:"robCapacity"`
	Units       map[string]UnitConfig `yaml:"units"`
	Registers   map[string]float64    `yaml:"registers"`
	Memory      MemoryConfig          `yaml:"memory"`
}

// unitNames are the recognized functional-unit type keys, in the
// canonical configuration order from spec.md §4.2.
var unitNames = []string{"Load", "Store", "Add", "Mult", "ALU", "Branch"}

// LoadConfig reads and validates a machine configuration from a YAML
// file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read config file: %v", ErrConfig, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	return cfg, nil
}

// Validate checks that the configuration describes a buildable machine.
func (c *Config) Validate() error {
	if c.ROBCapacity <= 0 {
		return fmt.Errorf("robCapacity must be positive, got %d", c.ROBCapacity)
	}

	known := make(map[string]bool, len(unitNames))
	for _, n := range unitNames {
		known[n] = true
	}

	for name, u := range c.Units {
		if !known[name] {
			return fmt.Errorf("unknown functional unit type %q", name)
		}
		if u.Number <= 0 {
			return fmt.Errorf("unit %q: number must be positive, got %d", name, u.Number)
		}
		if u.Latency <= 0 {
			return fmt.Errorf("unit %q: latency must be positive, got %d", name, u.Latency)
		}
		if name == "Branch" {
			if u.SpecForward != "" && u.SpecForward != "taken" && u.SpecForward != "not_taken" {
				return fmt.Errorf("branch specForward must be \"taken\" or \"not_taken\", got %q", u.SpecForward)
			}
			if u.SpecBackward != "" && u.SpecBackward != "taken" && u.SpecBackward != "not_taken" {
				return fmt.Errorf("branch specBackward must be \"taken\" or \"not_taken\", got %q", u.SpecBackward)
			}
		}
	}

	if c.Memory.Size < 0 {
		return fmt.Errorf("memory size must be non-negative, got %d", c.Memory.Size)
	}
	if len(c.Memory.Cells) > c.Memory.Size {
		return fmt.Errorf("memory has %d initial cells but size is only %d", len(c.Memory.Cells), c.Memory.Size)
	}

	return nil
}

// Default returns the reference machine from the source prototype: a
// 24-entry ROB, one unit of each type at latency 1, and the static
// predictor's documented defaults (forward=not_taken, backward=taken).
func Default() *Config {
	return &Config{
		ROBCapacity: 24,
		Units: map[string]UnitConfig{
			"Load":   {Number: 1, Latency: 1},
			"Store":  {Number: 1, Latency: 1},
			"Add":    {Number: 1, Latency: 1},
			"Mult":   {Number: 1, Latency: 1, DivLatency: 1},
			"ALU":    {Number: 1, Latency: 1},
			"Branch": {Number: 1, Latency: 1, SpecForward: "not_taken", SpecBackward: "taken"},
		},
		Registers: map[string]float64{},
		Memory:    MemoryConfig{Size: 32, Cells: nil},
	}
}
