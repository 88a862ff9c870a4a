package scan

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/vmihailenco/msgpack/v5"

	"linemark/internal/source"
)

// Format selects how a report is written.
type Format string

const (
	FormatText    Format = "text"
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatText, FormatJSON, FormatMsgpack:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format %q (must be text, json or msgpack)", s)
	}
}

// EncodeOptions tunes text output; binary and JSON output ignore it.
type EncodeOptions struct {
	Color    bool
	PathMode string // absolute|relative|basename|auto
}

// Encode writes the report in the requested format.
func (r *Report) Encode(w io.Writer, format Format, opts EncodeOptions) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r.forEncoding())
	case FormatMsgpack:
		return msgpack.NewEncoder(w).Encode(r.forEncoding())
	case FormatText, "":
		return r.writeText(w, opts)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// forEncoding keeps Hits non-nil so consumers always see a list.
func (r *Report) forEncoding() *Report {
	if r.Hits != nil {
		return r
	}
	cp := *r
	cp.Hits = []Hit{}
	return &cp
}

// DecodeMsgpack reads a report written with FormatMsgpack.
func DecodeMsgpack(rd io.Reader) (*Report, error) {
	var r Report
	if err := msgpack.NewDecoder(rd).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &r, nil
}

func (r *Report) writeText(w io.Writer, opts EncodeOptions) error {
	locColor := color.New(color.FgCyan)
	iconColor := color.New(color.FgYellow, color.Bold)
	errColor := color.New(color.FgRed, color.Bold)
	for _, c := range []*color.Color{locColor, iconColor, errColor} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	if !r.Enabled {
		_, err := fmt.Fprintln(w, "marker file not loaded; no markers")
		return err
	}

	mode := opts.PathMode
	if mode == "" {
		mode = "relative"
	}
	locs := make([]string, len(r.Hits))
	width := 0
	for i, h := range r.Hits {
		f := source.File{Path: h.Path}
		locs[i] = f.FormatPath(mode, r.baseDir) + ":" + strconv.Itoa(h.Line) + ":" + strconv.Itoa(h.Col)
		width = max(width, runewidth.StringWidth(locs[i]))
	}

	for i, h := range r.Hits {
		loc := runewidth.FillRight(locs[i], width)
		if _, err := fmt.Fprintf(w, "%s  %s  %s\n", locColor.Sprint(loc), iconColor.Sprint(h.Icon), h.Text); err != nil {
			return err
		}
	}
	for _, e := range r.Errors {
		if _, err := fmt.Fprintf(w, "%s %s: %s\n", errColor.Sprint("error:"), e.Path, e.Err); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%d marker(s) in %d file(s)\n", len(r.Hits), r.Files)
	return err
}
