package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jasonKoogler/tomasulo-sim/internal/engine"
	"github.com/jasonKoogler/tomasulo-sim/internal/runner"
	"github.com/jasonKoogler/tomasulo-sim/internal/trace"
)

func newTraceCmd() *cobra.Command {
	var configPath, programPath, format, outPath string
	var maxCycles int64

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Simulate a program, emitting a per-cycle trace",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, instructions, err := loadInputs(configPath, programPath)
			if err != nil {
				return err
			}

			out := os.Stdout
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("creating trace output file: %w", err)
				}
				defer f.Close() //nolint:errcheck
				out = f
			}

			var sink trace.Sink
			switch format {
			case "", "text":
				sink = trace.NewTableWriter(out)
			case "latex":
				sink = trace.NewLaTeXWriter(out)
			default:
				return fmt.Errorf("unknown trace format %q (want \"text\" or \"latex\")", format)
			}
			defer sink.Close() //nolint:errcheck

			r, err := runner.New(cfg, instructions)
			if err != nil {
				return err
			}
			r.OnCycle = func(e *engine.Engine) {
				sink.Update(trace.Capture(e)) //nolint:errcheck
			}

			stats, err := r.Run(maxCycles)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "traced %d cycles, %d instructions committed\n", stats.Cycles, stats.Committed)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to the machine configuration YAML file (required)")
	cmd.Flags().StringVar(&programPath, "program", "", "path to the assembly program (required)")
	cmd.Flags().StringVar(&format, "format", "text", "trace format: text or latex")
	cmd.Flags().StringVar(&outPath, "out", "", "write the trace here instead of stdout")
	cmd.Flags().Int64Var(&maxCycles, "max-cycles", 0, "stop after this many cycles (0 = run to completion)")
	cmd.MarkFlagRequired("config")  //nolint:errcheck
	cmd.MarkFlagRequired("program") //nolint:errcheck

	return cmd
}
