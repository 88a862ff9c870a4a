package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"linemark/internal/version"
)

// cliOpts is filled by the root PersistentPreRunE before any RunE.
var cliOpts cliOptions

var rootCmd = &cobra.Command{
	Use:   "linemark",
	Short: "Gutter markers for configured Java source lines",
	Long: `linemark reads ~/.config/line-marker/marker and marks the listed lines of Java
files, either as a batch report (check) or live in an editor (lsp)`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		opts, err := resolveOptions(cmd)
		if err != nil {
			return err
		}
		cliOpts = opts
		cleanup, err := setupTracing(cmd, opts)
		if err != nil {
			return err
		}
		traceCleanup = cleanup
		return nil
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		runTraceCleanup()
	},
}

// main registers subcommands and persistent flags, then executes the root command.
// Any command error exits with status 1.
func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(lspCmd)
	rootCmd.AddCommand(versionCmd)

	addPersistentFlags(rootCmd)

	err := rootCmd.Execute()
	// PersistentPostRun is skipped when RunE fails
	runTraceCleanup()
	if err != nil {
		os.Exit(1)
	}
}

// addPersistentFlags registers the global flags read by resolveOptions.
func addPersistentFlags(cmd *cobra.Command) {
	// Глобальные флаги
	cmd.PersistentFlags().String("marker", "", "marker file (default ~/.config/line-marker/marker)")
	cmd.PersistentFlags().String("settings", "", "settings file (default ~/.config/line-marker/linemark.toml)")
	cmd.PersistentFlags().String("language", "", "language id that receives markers (default JAVA)")
	cmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	cmd.PersistentFlags().String("trace", "", "trace output file (- for stderr)")
	cmd.PersistentFlags().String("trace-level", "", "trace level (off|error|phase|detail|debug)")
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
