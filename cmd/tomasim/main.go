// Command tomasim runs the Tomasulo pipeline simulator: load a machine
// configuration and an assembly program, simulate to completion (or a
// cycle budget), and report statistics and/or a per-cycle trace.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}
