package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sdlint/internal/prof"
)

// setupProfiling reads the persistent profiling flags and starts the
// requested profilers. The returned stop function is safe to call multiple
// times; it flushes the heap profile last and reports failures to stderr.
func setupProfiling(cmd *cobra.Command) (func(), error) {
	root := cmd.Root()

	cpuPath, err := root.PersistentFlags().GetString("cpu-profile")
	if err != nil {
		return nil, fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	memPath, err := root.PersistentFlags().GetString("mem-profile")
	if err != nil {
		return nil, fmt.Errorf("failed to get mem-profile flag: %w", err)
	}
	tracePath, err := root.PersistentFlags().GetString("runtime-trace")
	if err != nil {
		return nil, fmt.Errorf("failed to get runtime-trace flag: %w", err)
	}

	session, err := prof.Start(prof.Options{
		CPUPath:   cpuPath,
		MemPath:   memPath,
		TracePath: tracePath,
	})
	if err != nil {
		return nil, err
	}
	stop := func() {
		if err := session.Stop(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to stop profiling: %v\n", err)
		}
	}
	return stop, nil
}
