package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	content := `
robCapacity: 16
units:
  Load:
    number: 2
    latency: 2
  Mult:
    number: 1
    latency: 4
    divLatency: 10
  Branch:
    number: 1
    latency: 1
    specForward: not_taken
    specBackward: taken
registers:
  R1: 4
  F0: 2
memory:
  size: 8
  cells: [3.14, 0]
`
	tmpfile, err := os.CreateTemp("", "config-*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := LoadConfig(tmpfile.Name())
	require.NoError(t, err)

	assert.Equal(t, 16, cfg.ROBCapacity)
	assert.Equal(t, 2, cfg.Units["Load"].Number)
	assert.Equal(t, 10, cfg.Units["Mult"].DivLatency)
	assert.Equal(t, "taken", cfg.Units["Branch"].SpecBackward)
	assert.Equal(t, 4.0, cfg.Registers["R1"])
	assert.Equal(t, 8, cfg.Memory.Size)
	assert.Len(t, cfg.Memory.Cells, 2)

	// Unit types absent from the file fall back to Default()'s values.
	assert.Equal(t, 1, cfg.Units["Store"].Number)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig("/nonexistent/path/config.yaml")
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{
			name:    "valid default",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "zero ROB capacity",
			mutate:  func(c *Config) { c.ROBCapacity = 0 },
			wantErr: true,
		},
		{
			name: "unknown unit type",
			mutate: func(c *Config) {
				c.Units["Weird"] = UnitConfig{Number: 1, Latency: 1}
			},
			wantErr: true,
		},
		{
			name: "zero latency",
			mutate: func(c *Config) {
				c.Units["Load"] = UnitConfig{Number: 1, Latency: 0}
			},
			wantErr: true,
		},
		{
			name: "bad branch direction",
			mutate: func(c *Config) {
				c.Units["Branch"] = UnitConfig{Number: 1, Latency: 1, SpecForward: "sometimes"}
			},
			wantErr: true,
		},
		{
			name: "too many initial cells",
			mutate: func(c *Config) {
				c.Memory = MemoryConfig{Size: 1, Cells: []any{1, 2}}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	require.NotNil(t, cfg)
	assert.Equal(t, 24, cfg.ROBCapacity)
	assert.Equal(t, 1, cfg.Units["Mult"].DivLatency)
	assert.Equal(t, "not_taken", cfg.Units["Branch"].SpecForward)
	assert.Equal(t, "taken", cfg.Units["Branch"].SpecBackward)
	assert.NoError(t, cfg.Validate())
}
