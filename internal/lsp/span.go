package lsp

import (
	"unicode/utf16"
	"unicode/utf8"

	"fortio.org/safecast"

	"linemark/internal/source"
)

// clampOffset converts n to a file offset, saturating at the uint32 bounds.
func clampOffset(n int) uint32 {
	if n <= 0 {
		return 0
	}
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		return ^uint32(0)
	}
	return v
}

// lineStart returns the byte offset where the one-based line begins.
func lineStart(file *source.File, line int) uint32 {
	if line <= 1 || len(file.LineIdx) == 0 {
		return 0
	}
	if line-2 >= len(file.LineIdx) {
		return clampOffset(len(file.Content))
	}
	return file.LineIdx[line-2] + 1
}

// lineEndOffset returns the offset of the '\n' closing the one-based line, or the content end.
func lineEndOffset(file *source.File, line int) uint32 {
	if line >= 1 && line <= len(file.LineIdx) {
		return file.LineIdx[line-1]
	}
	return clampOffset(len(file.Content))
}

// positionAt maps a byte offset to a zero-based LSP position counted in UTF-16 units.
func positionAt(file *source.File, offset uint32) position {
	if file == nil {
		return position{}
	}
	offset = min(offset, clampOffset(len(file.Content)))
	line := file.LineOf(offset)
	units := 0
	for rest := file.Content[lineStart(file, line):offset]; len(rest) > 0; {
		r, size := utf8.DecodeRune(rest)
		if n := utf16.RuneLen(r); n > 0 {
			units += n
		} else {
			units++
		}
		rest = rest[size:]
	}
	return position{Line: line - 1, Character: units}
}

func rangeForSpan(file *source.File, span source.Span) lspRange {
	return lspRange{Start: positionAt(file, span.Start), End: positionAt(file, span.End)}
}
