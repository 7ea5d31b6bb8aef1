package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation name of every span the service creates.
const TracerName = "blog-summarizer"

// GetTracer returns the tracer for creating spans. It is resolved against
// the current global provider on every call.
func GetTracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

// Init installs a global tracer provider sampling sampleRatio of new traces
// (parent decisions are honoured) and the W3C trace-context propagator.
// No exporter is attached; spans are still created so that trace IDs reach
// logs and response headers.
func Init(serviceName string, sampleRatio float64) func(context.Context) error {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(sampleRatio))),
		sdktrace.WithSpanProcessor(serviceNameProcessor{name: serviceName}),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return tp.Shutdown
}

// serviceNameProcessor stamps service.name on every span.
type serviceNameProcessor struct {
	name string
}

func (p serviceNameProcessor) OnStart(_ context.Context, s sdktrace.ReadWriteSpan) {
	s.SetAttributes(attribute.String("service.name", p.name))
}

func (serviceNameProcessor) OnEnd(sdktrace.ReadOnlySpan)      {}
func (serviceNameProcessor) Shutdown(context.Context) error   { return nil }
func (serviceNameProcessor) ForceFlush(context.Context) error { return nil }

// TraceID returns the hex trace ID of the span in ctx, or "" when there is none.
func TraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}
