package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"linemark/internal/observ"
	"linemark/internal/scan"
	"linemark/internal/trace"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <file.java|directory>...",
	Short: "List the marked lines of Java files",
	Long: `Parse the given Java files (directories contribute every *.java file below them)
and report each line that receives a gutter marker`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("format", "", "output format (text|json|msgpack), default from settings")
	checkCmd.Flags().String("path-mode", "", "path display (absolute|relative|basename|auto), default from settings")
	checkCmd.Flags().Int("jobs", 0, "max parallel parses (0=auto)")
	checkCmd.Flags().Bool("strict", false, "fail when the marker file cannot be loaded")
	checkCmd.Flags().Bool("timings", false, "print phase timings to stderr")
	checkCmd.Flags().String("cpu-profile", "", "write a CPU profile to file")
	checkCmd.Flags().String("mem-profile", "", "write a heap profile to file")
	checkCmd.Flags().String("runtime-trace", "", "write a Go runtime trace to file")
}

// runCheck executes "check": loads the marker file, scans the arguments and writes the report.
// Files that fail to load are reported but only make the command fail together with --strict.
func runCheck(cmd *cobra.Command, args []string) error {
	opts := cliOpts

	formatValue, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if formatValue == "" {
		formatValue = opts.settings.Output.Format
	}
	format, err := scan.ParseFormat(formatValue)
	if err != nil {
		return err
	}

	pathMode, err := cmd.Flags().GetString("path-mode")
	if err != nil {
		return fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	if pathMode == "" {
		pathMode = opts.settings.Output.PathMode
	}
	switch pathMode {
	case "absolute", "relative", "basename", "auto":
	default:
		return fmt.Errorf("invalid --path-mode value %q (expected absolute|relative|basename|auto)", pathMode)
	}

	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	strict, err := cmd.Flags().GetBool("strict")
	if err != nil {
		return fmt.Errorf("failed to get strict flag: %w", err)
	}

	showTimings, err := cmd.Flags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	profiles, err := startProfiling(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if err := profiles.Stop(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "failed to write profiles: %v\n", err)
		}
	}()
	var timer *observ.Timer
	if showTimings {
		timer = observ.NewTimer()
	}

	ctx := cmd.Context()
	tracer := trace.FromContext(ctx)

	cfg := opts.loadMarkerConfig()
	if !cfg.Loaded() {
		trace.Point(tracer, trace.ScopeConfig, "marker", "not loaded: "+opts.markerPath, 0)
		if strict {
			return fmt.Errorf("marker file %s could not be loaded", opts.markerPath)
		}
	}

	baseDir, err := os.Getwd()
	if err != nil {
		baseDir = ""
	}
	for i, arg := range args {
		args[i] = filepath.Clean(arg)
	}

	report, err := scan.Run(ctx, scan.Options{
		Paths:    args,
		Config:   cfg,
		Language: opts.language,
		Jobs:     jobs,
		BaseDir:  baseDir,
		Timer:    timer,
	})
	if err != nil {
		return err
	}

	if err := report.Encode(cmd.OutOrStdout(), format, scan.EncodeOptions{
		Color:    format == scan.FormatText && useColor(opts.color),
		PathMode: pathMode,
	}); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if showTimings {
		fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
	}
	if strict && len(report.Errors) > 0 {
		return fmt.Errorf("%d file(s) could not be checked", len(report.Errors))
	}
	return nil
}
