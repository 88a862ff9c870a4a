package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"linemark/internal/markcfg"
	"linemark/internal/settings"
)

type colorMode string

const (
	colorAuto colorMode = "auto"
	colorOn   colorMode = "on"
	colorOff  colorMode = "off"
)

func readColorMode(value string) (colorMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return colorAuto, nil
	case "on":
		return colorOn, nil
	case "off":
		return colorOff, nil
	default:
		return "", fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
	}
}

func useColor(mode colorMode) bool {
	switch mode {
	case colorOn:
		return true
	case colorOff:
		return false
	default:
		return isTerminal(os.Stdout)
	}
}

// cliOptions is linemark.toml with the persistent flags applied on top.
type cliOptions struct {
	settings       settings.Settings
	markerPath     string
	language       string
	color          colorMode
	traceLevel     string
	traceOutput    string
	traceOutputSet bool
}

// resolveOptions reads the settings file and lets explicitly set flags override it.
// An explicit --settings file must exist; the default one is optional.
func resolveOptions(cmd *cobra.Command) (cliOptions, error) {
	flags := cmd.Root().PersistentFlags()

	settingsPath, err := flags.GetString("settings")
	if err != nil {
		return cliOptions{}, fmt.Errorf("failed to get settings flag: %w", err)
	}
	var s settings.Settings
	if settingsPath != "" {
		s, err = settings.Load(settingsPath)
	} else if settingsPath, err = settings.DefaultPath(); err == nil {
		s, err = settings.LoadOrDefault(settingsPath)
	} else {
		s, err = settings.Default(), nil
	}
	if err != nil {
		return cliOptions{}, err
	}

	opts := cliOptions{
		settings:    s,
		language:    s.Language,
		traceLevel:  s.Trace.Level,
		traceOutput: s.Trace.Output,
	}

	opts.markerPath, err = s.MarkerPath()
	if err != nil {
		return cliOptions{}, err
	}
	if flags.Changed("marker") {
		if opts.markerPath, err = flags.GetString("marker"); err != nil {
			return cliOptions{}, fmt.Errorf("failed to get marker flag: %w", err)
		}
	}
	if flags.Changed("language") {
		if opts.language, err = flags.GetString("language"); err != nil {
			return cliOptions{}, fmt.Errorf("failed to get language flag: %w", err)
		}
		if strings.TrimSpace(opts.language) == "" {
			return cliOptions{}, fmt.Errorf("--language must not be empty")
		}
	}

	colorValue := s.Output.Color
	if flags.Changed("color") {
		if colorValue, err = flags.GetString("color"); err != nil {
			return cliOptions{}, fmt.Errorf("failed to get color flag: %w", err)
		}
	}
	if opts.color, err = readColorMode(colorValue); err != nil {
		return cliOptions{}, err
	}

	if flags.Changed("trace-level") {
		if opts.traceLevel, err = flags.GetString("trace-level"); err != nil {
			return cliOptions{}, fmt.Errorf("failed to get trace-level flag: %w", err)
		}
	}
	if flags.Changed("trace") {
		if opts.traceOutput, err = flags.GetString("trace"); err != nil {
			return cliOptions{}, fmt.Errorf("failed to get trace flag: %w", err)
		}
		opts.traceOutputSet = true
	}
	return opts, nil
}

// loadMarkerConfig loads the marker file the way the editor integration does:
// any failure yields a disabled config.
func (o cliOptions) loadMarkerConfig() *markcfg.Config {
	cfg, _ := markcfg.Load(o.markerPath)
	return cfg
}
