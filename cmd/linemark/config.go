package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"linemark/internal/markcfg"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the loaded marker file",
	Long: `Print the marker file location and the file name to line mapping it defines.
When the file cannot be loaded the reason is printed and markers stay disabled`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().String("format", "text", "output format (text|json)")
}

type configPayload struct {
	Marker   string           `json:"marker"`
	Settings string           `json:"settings,omitempty"`
	Language string           `json:"language"`
	Loaded   bool             `json:"loaded"`
	Reason   string           `json:"reason,omitempty"`
	Lines    map[string][]int `json:"lines"`
}

func runConfig(cmd *cobra.Command, _ []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	opts := cliOpts

	payload := configPayload{
		Marker:   opts.markerPath,
		Settings: opts.settings.Path,
		Language: opts.language,
		Lines:    map[string][]int{},
	}
	cfg, err := markcfg.LoadFile(opts.markerPath)
	if err != nil {
		payload.Reason = err.Error()
	} else {
		payload.Loaded = true
		payload.Lines = cfg.Entries()
	}

	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	case "text":
		return renderConfigText(cmd.OutOrStdout(), payload, cfg)
	default:
		return fmt.Errorf("unsupported format %q (must be text or json)", format)
	}
}

func renderConfigText(out io.Writer, p configPayload, cfg *markcfg.Config) error {
	fmt.Fprintf(out, "marker:   %s\n", p.Marker)
	if p.Settings != "" {
		fmt.Fprintf(out, "settings: %s\n", p.Settings)
	}
	fmt.Fprintf(out, "language: %s\n", p.Language)
	if !p.Loaded {
		_, err := fmt.Fprintf(out, "disabled: %s\n", p.Reason)
		return err
	}
	for _, name := range cfg.Files() {
		lines := cfg.Lines(name)
		parts := make([]string, len(lines))
		for i, l := range lines {
			parts[i] = strconv.Itoa(l)
		}
		fmt.Fprintf(out, "%s %s\n", name, strings.Join(parts, ","))
	}
	_, err := fmt.Fprintf(out, "%d line(s) in %d file(s)\n", cfg.Len(), len(cfg.Files()))
	return err
}
