package markcfg

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
)

// DefaultDir is the per-user directory holding the marker file, relative to the home directory.
const DefaultDir = ".config/line-marker"

// DefaultFileName is the name of the marker file inside DefaultDir.
const DefaultFileName = "marker"

// maxLineSize bounds a single marker file line. Longer lines are dropped like
// any other line that does not match.
const maxLineSize = 1 << 20

// linePattern accepts exactly "<name>.java<one whitespace><digits>" and nothing else.
// Whitespace is spelled out: Java's \s also covers '\v', RE2's does not.
var linePattern = regexp.MustCompile(`^(?P<fileName>[^\t\n\v\f\r ]+\.java)[\t\n\v\f\r ](?P<lineNumber>\d+)$`)

// wideBreaks are the multi-byte line separators: U+0085, U+2028 and U+2029.
var wideBreaks = [][]byte{{0xC2, 0x85}, {0xE2, 0x80, 0xA8}, {0xE2, 0x80, 0xA9}}

// DefaultPath returns <home>/.config/line-marker/marker.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, filepath.FromSlash(DefaultDir), DefaultFileName), nil
}

// Load reads the marker file at path.
// A missing or unreadable file yields the disabled config and false; partial
// results of a failed read are never returned.
func Load(path string) (*Config, bool) {
	cfg, err := LoadFile(path)
	if err != nil {
		return Disabled(), false
	}
	return cfg, true
}

// LoadFile is Load with the failure reason kept.
// Missing files report an error wrapping os.ErrNotExist.
func LoadFile(path string) (*Config, error) {
	// #nosec G304 -- path is provided by the caller
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open marker file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat marker file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("marker file %q is a directory", path)
	}

	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("read marker file: %w", err)
	}
	return cfg, nil
}

// Parse builds a config from r. Lines that do not match the pattern are skipped.
// Only a read error fails the parse.
func Parse(r io.Reader) (*Config, error) {
	cfg := newLoaded()
	split := &lineSplitter{max: maxLineSize}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize+4)
	scanner.Split(split.split)
	for scanner.Scan() {
		name, line, ok := parseLine(scanner.Text())
		if !ok {
			continue
		}
		cfg.add(name, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseLine extracts a (file, line) pair from one marker file line.
func parseLine(text string) (string, int, bool) {
	m := linePattern.FindStringSubmatch(text)
	if m == nil {
		return "", 0, false
	}
	// числа, не влезающие в int, считаем несовпадением
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, false
	}
	return m[1], n, true
}

// lineSplitter cuts the marker file into lines for bufio.Scanner. Lines end at "\n", "\r\n", a
// lone '\r' and the wide separators. A line longer than max is dropped whole.
type lineSplitter struct {
	max      int
	dropping bool // inside an over-long line
}

func (s *lineSplitter) split(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	i, width := lineBreak(data, atEOF)
	if width > 0 {
		if s.dropping {
			s.dropping = false
			return i + width, nil, nil
		}
		return i + width, data[:i], nil
	}
	if atEOF {
		if s.dropping {
			s.dropping = false
			return len(data), nil, nil
		}
		return len(data), data, nil
	}
	if len(data) >= s.max {
		// хвост может оказаться началом разделителя, его оставляем
		keep := 0
		if i >= 0 {
			keep = len(data) - i
		}
		s.dropping = true
		return len(data) - keep, nil, nil
	}
	return 0, nil, nil
}

// lineBreak finds the first line separator in data and returns its index and
// width. Width 0 with i >= 0 means data ends in what may be the start of one.
func lineBreak(data []byte, atEOF bool) (int, int) {
	for i := 0; i < len(data); i++ {
		switch c := data[i]; c {
		case '\n':
			return i, 1
		case '\r':
			if i+1 < len(data) {
				if data[i+1] == '\n' {
					return i, 2
				}
				return i, 1
			}
			if atEOF {
				return i, 1
			}
			return i, 0
		case 0xC2, 0xE2:
			rest := data[i:]
			for _, sep := range wideBreaks {
				if bytes.HasPrefix(rest, sep) {
					return i, len(sep)
				}
				if !atEOF && len(rest) < len(sep) && bytes.HasPrefix(sep, rest) {
					return i, 0
				}
			}
		}
	}
	return -1, 0
}
