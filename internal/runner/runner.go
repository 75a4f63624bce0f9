// Package runner wraps the pipeline engine with the driving loop, run
// statistics, and cooperative shutdown that cmd/tomasim needs. The
// engine itself is strictly single-threaded and synchronous (spec.md
// §5); unlike the source simulator's one-goroutine-per-core design,
// there is exactly one engine here and Run ticks it in the calling
// goroutine, checking a stop channel between cycles so a SIGINT can
// interrupt a long run without tearing down mid-tick.
package runner

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jasonKoogler/tomasulo-sim/internal/config"
	"github.com/jasonKoogler/tomasulo-sim/internal/engine"
)

// Statistics summarizes a completed (or interrupted) run.
type Statistics struct {
	Cycles         int64
	Committed      int64
	IPC            float64
	Mispredictions int64
	Duration       time.Duration
}

// Runner drives an engine.Engine to completion or a cycle budget,
// tracking statistics and accepting a cooperative shutdown request.
type Runner struct {
	Engine *engine.Engine

	// OnCycle, if set, is called after every successful Step — the seam
	// the CLI layer uses to feed a trace sink without this package
	// depending on internal/trace.
	OnCycle func(*engine.Engine)

	running  atomic.Bool
	stopChan chan struct{}
	stats    Statistics
}

// New builds a Runner around a freshly-constructed engine.
func New(cfg *config.Config, instructions []engine.Instruction) (*Runner, error) {
	eng, err := engine.New(cfg, instructions)
	if err != nil {
		return nil, fmt.Errorf("building engine: %w", err)
	}
	return &Runner{Engine: eng, stopChan: make(chan struct{})}, nil
}

// Run ticks the engine until it terminates, maxCycles elapse, or
// Shutdown is called, whichever comes first.
func (r *Runner) Run(maxCycles int64) (Statistics, error) {
	if !r.running.CompareAndSwap(false, true) {
		return Statistics{}, fmt.Errorf("runner is already running")
	}
	defer r.running.Store(false)

	start := time.Now()
	var cycles int64
	for cycles = 0; maxCycles <= 0 || cycles < maxCycles; cycles++ {
		select {
		case <-r.stopChan:
			return r.finalize(cycles, time.Since(start)), nil
		default:
		}

		done, err := r.Engine.Step()
		if err != nil {
			return r.finalize(cycles+1, time.Since(start)), err
		}
		if r.OnCycle != nil {
			r.OnCycle(r.Engine)
		}
		if done {
			cycles++
			break
		}
	}

	return r.finalize(cycles, time.Since(start)), nil
}

func (r *Runner) finalize(cycles int64, dur time.Duration) Statistics {
	r.stats = Statistics{
		Cycles:         cycles,
		Committed:      r.Engine.Committed,
		Mispredictions: r.Engine.Mispredictions,
		Duration:       dur,
	}
	if cycles > 0 {
		r.stats.IPC = float64(r.Engine.Committed) / float64(cycles)
	}
	return r.stats
}

// Shutdown requests that a running Run return at the next cycle
// boundary. Safe to call from a signal handler goroutine.
func (r *Runner) Shutdown() {
	if !r.running.Load() {
		return
	}
	select {
	case <-r.stopChan:
		// already closed
	default:
		close(r.stopChan)
	}
}

// GetStatistics returns the statistics from the most recently completed
// Run call.
func (r *Runner) GetStatistics() Statistics {
	return r.stats
}

// Reset rebuilds the engine from scratch and clears statistics and the
// stop channel, so the same Runner can be reused for another Run.
func (r *Runner) Reset(cfg *config.Config, instructions []engine.Instruction) error {
	eng, err := engine.New(cfg, instructions)
	if err != nil {
		return fmt.Errorf("rebuilding engine: %w", err)
	}
	r.Engine = eng
	r.stats = Statistics{}
	r.stopChan = make(chan struct{})
	r.running.Store(false)
	return nil
}
