// Package tracing provides OpenTelemetry tracing for the summarizer: the
// process tracer provider, the shared tracer used for pipeline and
// completion spans, and HTTP server middleware.
//
//	shutdown := tracing.Init("blog-summarizer", 1.0)
//	defer shutdown(context.Background())
//
//	ctx, span := tracing.GetTracer().Start(ctx, "summarize.chunk")
//	defer span.End()
package tracing
