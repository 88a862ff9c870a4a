// Package trace provides structured tracing for linemark runs.
//
// The CLI and the LSP host emit spans around config loading, file scans and
// document analysis; the marker decision itself stays silent.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	linemark check --trace=- --trace-level=detail src/
//
// # Levels
//
//   - LevelOff: No tracing
//   - LevelError: Only failures
//   - LevelPhase: Driver and config boundaries
//   - LevelDetail: Per-file events
//   - LevelDebug: Everything including per-marker points
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopeFile, "scan:Foo.java", parentID)
//	defer span.End("")
package trace
