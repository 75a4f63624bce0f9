package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var verbose bool

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tomasim",
		Short: "Tomasulo pipeline simulator for MIPS-64",
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug-level logging")

	root.AddCommand(newRunCmd())
	root.AddCommand(newValidateCmd())
	root.AddCommand(newTraceCmd())

	return root
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// engineLogger adapts *zap.SugaredLogger to engine.Logger.
type engineLogger struct {
	s *zap.SugaredLogger
}

func (l engineLogger) Debugf(format string, args ...any) {
	l.s.Debugf(format, args...)
}
