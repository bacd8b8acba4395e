// Package trace records what the rcgen pipeline does, for debugging slow or
// surprising expansions.
//
// # Usage
//
//	rcgen expand --trace=- --trace-level=unit app.mp
//
// # Tracers
//
//   - Nop: zero-overhead default
//   - StreamTracer: writes each event as text or NDJSON
//   - RingTracer: keeps the last N events for dumping after a failure
//   - ZapTracer: forwards events to a zap.Logger
//   - MultiTracer: fans out to several tracers
//
// # Levels and scopes
//
// A level admits every scope at or above its granularity: LevelPhase admits
// driver and pass events, LevelUnit adds per-unit events, LevelDebug adds
// per-procedure and per-instruction events.
//
// # Context propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "expand", 0)
//	defer span.End("")
package trace
