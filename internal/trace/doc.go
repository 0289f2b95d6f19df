// Package trace records spans of a check run: the driver, one pass per
// document, each analyzer inside a pass, and individual rules.
//
// # Usage
//
//	ably check --trace=- --trace-level=detail site/
//
// Sinks: the no-op tracer (tracing off), StreamTracer (immediate writes),
// RingTracer (last N events, dumped on failure) and MultiTracer.
//
// Tracers travel through context, spans nest through it as well:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span, ctx := trace.Start(ctx, trace.ScopePass, "check")
//	defer span.End("")
package trace
