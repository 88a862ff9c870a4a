package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"linemark/internal/prof"
)

// startProfiling reads the profiling flags of cmd and starts the requested profiles.
func startProfiling(cmd *cobra.Command) (*prof.Session, error) {
	cpuProfile, err := cmd.Flags().GetString("cpu-profile")
	if err != nil {
		return nil, fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	memProfile, err := cmd.Flags().GetString("mem-profile")
	if err != nil {
		return nil, fmt.Errorf("failed to get mem-profile flag: %w", err)
	}
	tracePath, err := cmd.Flags().GetString("runtime-trace")
	if err != nil {
		return nil, fmt.Errorf("failed to get runtime-trace flag: %w", err)
	}
	return prof.Start(prof.Options{CPU: cpuProfile, Mem: memProfile, Trace: tracePath})
}
