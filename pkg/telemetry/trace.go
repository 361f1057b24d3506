package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the name of the tracer obtained from the global provider.
const TracerName = "vtree"

// StartRender starts a span around one render cycle.
func StartRender(ctx context.Context, tracer trace.Tracer, component string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "vtree.render",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("vtree.component", component)),
	)
}

// EndRender records the outcome of a render span and ends it.
func EndRender(span trace.Span, created, destroyed, moves int, err error) {
	span.SetAttributes(
		attribute.Int("vtree.created", created),
		attribute.Int("vtree.destroyed", destroyed),
		attribute.Int("vtree.moves", moves),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
