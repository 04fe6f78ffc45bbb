/*
Package tracing provides lightweight request tracing for debugging.

Spans are kept local: finished spans are written to the zap log rather
than exported to a collector. Trace identity propagates over the
X-Trace-ID and X-Span-ID headers, so shell-originated requests keep one
trace id across the boundary.

Usage:

	tracer := tracing.New("workspace-os", logger)
	router.Use(tracing.HTTPMiddleware(tracer))

	span, ctx := tracer.StartSpan(ctx, "operation")
	span.SetTag("key", "value")
	span.Finish()
	tracer.Submit(span)

Span submission never blocks; spans are dropped when the buffer is full.
*/
package tracing
