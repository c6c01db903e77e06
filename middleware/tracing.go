package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/pushkit/reporting/payload"
	"github.com/pushkit/reporting/report"
)

// tracerName is the instrumentation scope name for reporting tracing.
const tracerName = "github.com/pushkit/reporting"

// Tracing returns middleware that wraps report submission in an
// OpenTelemetry span. If no TracerProvider is configured globally, the
// default noop tracer is used and this middleware becomes a pass-through
// with zero overhead.
//
// Span attributes include: reporting.report.id, reporting.event_type,
// reporting.attempts. On error, the span status is set to codes.Error
// with the error message.
func Tracing() Middleware {
	tracer := otel.Tracer(tracerName)
	return TracingWithTracer(tracer)
}

// TracingWithTracer returns tracing middleware using the provided tracer.
// This variant allows injecting a specific TracerProvider for testing.
func TracingWithTracer(tracer trace.Tracer) Middleware {
	return func(ctx context.Context, r *report.Report, next Handler) error {
		eventType, _ := r.Payload[payload.KeyEventType].(string)

		ctx, span := tracer.Start(ctx, "reporting.submit",
			trace.WithAttributes(
				attribute.String("reporting.report.id", r.ID.String()),
				attribute.String("reporting.event_type", eventType),
				attribute.Int("reporting.attempts", r.Attempts),
			),
			trace.WithSpanKind(trace.SpanKindClient),
		)
		defer span.End()

		err := next(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}

		return err
	}
}
