package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jasonKoogler/tomasulo-sim/internal/asm"
	"github.com/jasonKoogler/tomasulo-sim/internal/config"
)

func newValidateCmd() *cobra.Command {
	var configPath, programPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check that a configuration and program load without simulating",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			fmt.Printf("configuration OK: ROB capacity %d, %d unit types configured\n",
				cfg.ROBCapacity, len(cfg.Units))

			if programPath == "" {
				return nil
			}
			source, err := os.ReadFile(programPath)
			if err != nil {
				return fmt.Errorf("reading program file: %w", err)
			}
			instructions, err := asm.Parse(string(source))
			if err != nil {
				return err
			}
			fmt.Printf("program OK: %d instructions decoded\n", len(instructions))
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to the machine configuration YAML file (required)")
	cmd.Flags().StringVar(&programPath, "program", "", "path to the assembly program")
	cmd.MarkFlagRequired("config") //nolint:errcheck

	return cmd
}
