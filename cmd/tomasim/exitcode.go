package main

import (
	"errors"

	"github.com/jasonKoogler/tomasulo-sim/internal/asm"
	"github.com/jasonKoogler/tomasulo-sim/internal/config"
	"github.com/jasonKoogler/tomasulo-sim/internal/engine"
)

// exitCodeFor maps a terminal error to the exit codes spec.md §6
// defines: 1 for a detected simulation/parse/config error, 2 for
// anything unrecognized.
func exitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	var engineErr *engine.EngineError
	var parseErr *asm.ParseError
	switch {
	case errors.As(err, &engineErr):
		return 1
	case errors.As(err, &parseErr):
		return 1
	case errors.Is(err, config.ErrConfig):
		return 1
	default:
		return 2
	}
}
