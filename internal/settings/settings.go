// Package settings reads the optional linemark.toml next to the marker file.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"linemark/internal/markcfg"
	"linemark/internal/marker"
)

// FileName is the settings file looked up in the marker directory.
const FileName = "linemark.toml"

// ErrNotFound is returned by Load when the settings file does not exist.
var ErrNotFound = errors.New("settings file not found")

// Settings holds tool defaults. Flags given on the command line win over these.
type Settings struct {
	Marker   string        `toml:"marker"`
	Language string        `toml:"language"`
	Output   OutputConfig  `toml:"output"`
	Trace    TraceSettings `toml:"trace"`

	// Path is where the settings were read from; empty for defaults.
	Path string `toml:"-"`
}

type OutputConfig struct {
	Color    string `toml:"color"`
	PathMode string `toml:"path_mode"`
	Format   string `toml:"format"`
}

type TraceSettings struct {
	Level  string `toml:"level"`
	Output string `toml:"output"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		Language: marker.LanguageJava,
		Output: OutputConfig{
			Color:    "auto",
			PathMode: "relative",
			Format:   "text",
		},
		Trace: TraceSettings{
			Level:  "off",
			Output: "-",
		},
	}
}

// DefaultPath returns <home>/.config/line-marker/linemark.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, filepath.FromSlash(markcfg.DefaultDir), FileName), nil
}

// Load reads path on top of the defaults. Keys absent from the file keep their default.
func Load(path string) (Settings, error) {
	s := Default()
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return s, fmt.Errorf("failed to stat %q: %w", path, err)
	}

	meta, err := toml.DecodeFile(path, &s)
	if err != nil {
		return Default(), fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Default(), fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := s.validate(); err != nil {
		return Default(), fmt.Errorf("%s: %w", path, err)
	}
	s.Path = path
	return s, nil
}

// LoadOrDefault is Load that treats a missing file as the defaults.
func LoadOrDefault(path string) (Settings, error) {
	s, err := Load(path)
	if errors.Is(err, ErrNotFound) {
		return Default(), nil
	}
	return s, err
}

// MarkerPath returns the configured marker file, falling back to the per-user default.
func (s Settings) MarkerPath() (string, error) {
	if s.Marker != "" {
		return expandHome(s.Marker)
	}
	return markcfg.DefaultPath()
}

func (s Settings) validate() error {
	switch s.Output.Color {
	case "auto", "on", "off":
	default:
		return fmt.Errorf("output.color must be auto, on or off, got %q", s.Output.Color)
	}
	switch s.Output.PathMode {
	case "absolute", "relative", "basename", "auto":
	default:
		return fmt.Errorf("output.path_mode must be absolute, relative, basename or auto, got %q", s.Output.PathMode)
	}
	switch s.Output.Format {
	case "text", "json", "msgpack":
	default:
		return fmt.Errorf("output.format must be text, json or msgpack, got %q", s.Output.Format)
	}
	if strings.TrimSpace(s.Language) == "" {
		return errors.New("language must not be empty")
	}
	return nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
