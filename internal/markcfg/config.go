package markcfg

import (
	"maps"
	"slices"
)

// Config maps bare source file names to the one-based lines marked in them.
// A Config is immutable once returned by the loader and safe for concurrent reads.
type Config struct {
	loaded bool
	lines  map[string]map[int]struct{}
}

// Disabled returns the config used when the marker file could not be read.
// Every lookup on it reports nothing.
func Disabled() *Config {
	return &Config{lines: map[string]map[int]struct{}{}}
}

// newLoaded returns an empty config in the loaded state.
func newLoaded() *Config {
	return &Config{loaded: true, lines: map[string]map[int]struct{}{}}
}

// add records a (file, line) pair. Keys are only created together with their first line.
func (c *Config) add(fileName string, line int) {
	set, ok := c.lines[fileName]
	if !ok {
		set = make(map[int]struct{})
		c.lines[fileName] = set
	}
	set[line] = struct{}{}
}

// Loaded reports whether the marker file was read successfully.
func (c *Config) Loaded() bool {
	return c != nil && c.loaded
}

// Contains reports whether line is marked in fileName.
func (c *Config) Contains(fileName string, line int) bool {
	if !c.Loaded() {
		return false
	}
	set, ok := c.lines[fileName]
	if !ok {
		return false
	}
	_, ok = set[line]
	return ok
}

// Files returns the marked file names in lexical order.
func (c *Config) Files() []string {
	if c == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(c.lines))
}

// Lines returns the marked lines of fileName in ascending order.
func (c *Config) Lines(fileName string) []int {
	if c == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(c.lines[fileName]))
}

// Len returns the number of distinct (file, line) pairs.
func (c *Config) Len() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, set := range c.lines {
		n += len(set)
	}
	return n
}

// Entries returns a copy of the mapping, mostly useful for reporting and tests.
func (c *Config) Entries() map[string][]int {
	out := make(map[string][]int)
	if c == nil {
		return out
	}
	for name := range c.lines {
		out[name] = c.Lines(name)
	}
	return out
}
