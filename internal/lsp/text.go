package lsp

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// applyChanges applies didChange events in order. Ranges are clamped to the current text.
func applyChanges(text string, changes []textDocumentContentChangeEvent) string {
	for _, change := range changes {
		if change.Range == nil {
			text = change.Text
			continue
		}
		start := offsetForPosition(text, change.Range.Start)
		end := max(start, offsetForPosition(text, change.Range.End))
		text = text[:start] + change.Text + text[end:]
	}
	return text
}

// offsetForPosition converts an LSP position (UTF-16 columns) to a byte offset in text.
// Lines end at "\n", "\r\n" or a lone "\r". Positions past the end of a line stop
// at its terminator; lines past the end give len(text).
func offsetForPosition(text string, pos position) int {
	if pos.Line < 0 || pos.Character < 0 {
		return 0
	}
	start := 0
	for range pos.Line {
		br := strings.IndexAny(text[start:], "\r\n")
		if br < 0 {
			return len(text)
		}
		start += br + lineBreakAt(text, start+br)
	}

	off := start
	units := 0
	for off < len(text) && lineBreakAt(text, off) == 0 {
		r, size := utf8.DecodeRuneInString(text[off:])
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		if units+n > pos.Character {
			break
		}
		units += n
		off += size
	}
	return off
}

// lineBreakAt returns the width of the line terminator starting at i, 0 when there is none.
func lineBreakAt(text string, i int) int {
	switch text[i] {
	case '\n':
		return 1
	case '\r':
		if i+1 < len(text) && text[i+1] == '\n' {
			return 2
		}
		return 1
	}
	return 0
}
