package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"linemark/internal/lsp"
	"linemark/internal/trace"
)

var lspCmd = &cobra.Command{
	Use:          "lsp",
	Short:        "Publish gutter markers to an editor over stdio",
	SilenceUsage: true,
	RunE:         runLSP,
}

func runLSP(cmd *cobra.Command, _ []string) error {
	opts := cliOpts
	cfg := opts.loadMarkerConfig()
	// маркер-файл читается один раз за сессию
	trace.Point(trace.FromContext(cmd.Context()), trace.ScopeConfig, "marker",
		fmt.Sprintf("%s loaded=%t lines=%d", opts.markerPath, cfg.Loaded(), cfg.Len()), 0)

	server := lsp.NewServer(os.Stdin, os.Stdout, lsp.ServerOptions{
		Config:   cfg,
		Language: opts.language,
		Log:      cmd.ErrOrStderr(),
	})
	if err := server.Run(cmd.Context()); err != nil {
		if errors.Is(err, lsp.ErrExit) {
			return nil
		}
		if errors.Is(err, lsp.ErrExitWithoutShutdown) {
			return fmt.Errorf("lsp exit without shutdown")
		}
		return err
	}
	return nil
}
