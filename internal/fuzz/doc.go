
// Package fuzztests houses Go fuzz harnesses for the two inputs linemark reads
// from outside: the marker file and Java sources opened in the editor.
// The goal is to catch panics and broken marker invariants on arbitrary bytes.
//
// Назначение: прогонять произвольные байты через markcfg.Parse и через
// javasyntax + marker.Provider.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
//
// Зависимости: internal/markcfg, internal/marker, internal/javasyntax,
// internal/source.

package fuzztests
