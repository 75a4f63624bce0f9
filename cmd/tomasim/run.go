package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jasonKoogler/tomasulo-sim/internal/asm"
	"github.com/jasonKoogler/tomasulo-sim/internal/config"
	"github.com/jasonKoogler/tomasulo-sim/internal/engine"
	"github.com/jasonKoogler/tomasulo-sim/internal/runner"
)

func newRunCmd() *cobra.Command {
	var configPath, programPath string
	var maxCycles int64

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Simulate a program to completion or a cycle budget",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return fmt.Errorf("building logger: %w", err)
			}
			defer logger.Sync() //nolint:errcheck
			sugar := logger.Sugar()

			cfg, instructions, err := loadInputs(configPath, programPath)
			if err != nil {
				return err
			}

			sugar.Infow("loaded configuration",
				"robCapacity", cfg.ROBCapacity,
				"instructions", len(instructions),
			)

			r, err := runner.New(cfg, instructions)
			if err != nil {
				return err
			}
			r.Engine.Logger = engineLogger{s: sugar}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			go func() {
				if _, ok := <-sigCh; ok {
					sugar.Info("signal received, draining current cycle")
					r.Shutdown()
				}
			}()
			defer signal.Stop(sigCh)

			stats, err := r.Run(maxCycles)
			if err != nil {
				return err
			}

			fmt.Printf("Simulation finished after %d cycles (%v)\n", stats.Cycles, stats.Duration)
			fmt.Printf("Instructions committed: %d\n", stats.Committed)
			fmt.Printf("IPC: %.3f\n", stats.IPC)
			fmt.Printf("Mispredictions: %d\n", stats.Mispredictions)

			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to the machine configuration YAML file (required)")
	cmd.Flags().StringVar(&programPath, "program", "", "path to the assembly program (required)")
	cmd.Flags().Int64Var(&maxCycles, "max-cycles", 0, "stop after this many cycles (0 = run to completion)")
	cmd.MarkFlagRequired("config")    //nolint:errcheck
	cmd.MarkFlagRequired("program")   //nolint:errcheck

	return cmd
}

func loadInputs(configPath, programPath string) (*config.Config, []engine.Instruction, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}

	source, err := os.ReadFile(programPath)
	if err != nil {
		return nil, nil, fmt.Errorf("reading program file: %w", err)
	}

	instructions, err := asm.Parse(string(source))
	if err != nil {
		return nil, nil, err
	}

	return cfg, instructions, nil
}
