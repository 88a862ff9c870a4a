// Package markcfg loads the marker file: a plain text list of
// "<File>.java <line>" rules naming the lines that should carry a gutter marker.
//
// The format is deliberately tolerant. Any line that is not exactly one
// Java file name, a single whitespace character and a decimal number is
// ignored, so hand-edited files with comments or stray columns still load.
// Only a missing or unreadable file disables marking, and it does so for the
// whole lifetime of the returned Config.
package markcfg
