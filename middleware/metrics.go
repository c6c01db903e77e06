package middleware

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/pushkit/reporting/payload"
	"github.com/pushkit/reporting/report"
)

// meterName is the instrumentation scope name for reporting metrics.
const meterName = "github.com/pushkit/reporting"

// Metrics returns middleware that records per-submission metrics using the
// global OTel MeterProvider. If no MeterProvider is configured, noop
// instruments are used and this middleware becomes a pass-through.
//
// Instruments:
//   - reporting.submission.duration (Float64Histogram): submission time in
//     seconds, with attributes: event_type, status ("ok" or "error")
//   - reporting.submission.count (Int64Counter): total submission attempts,
//     with attributes: event_type, status ("ok" or "error")
func Metrics() Middleware {
	meter := otel.Meter(meterName)
	return MetricsWithMeter(meter)
}

// MetricsWithMeter returns metrics middleware using the provided meter.
// This variant allows injecting a specific MeterProvider for testing.
func MetricsWithMeter(meter metric.Meter) Middleware {
	// Create instruments once at middleware construction time.
	// OTel instruments are safe for concurrent use. On error, the API
	// returns noop instruments so the middleware degrades gracefully.
	duration, dErr := meter.Float64Histogram(
		"reporting.submission.duration",
		metric.WithDescription("Duration of report submission in seconds"),
		metric.WithUnit("s"),
	)
	_ = dErr // noop fallback guaranteed by OTel API contract

	count, cErr := meter.Int64Counter(
		"reporting.submission.count",
		metric.WithDescription("Total number of report submission attempts"),
		metric.WithUnit("{submission}"),
	)
	_ = cErr // noop fallback guaranteed by OTel API contract

	return func(ctx context.Context, r *report.Report, next Handler) error {
		start := time.Now()
		err := next(ctx)
		elapsed := time.Since(start).Seconds()

		status := "ok"
		if err != nil {
			status = "error"
		}
		eventType, _ := r.Payload[payload.KeyEventType].(string)

		attrs := metric.WithAttributes(
			attribute.String("event_type", eventType),
			attribute.String("status", status),
		)
		duration.Record(ctx, elapsed, attrs)
		count.Add(ctx, 1, attrs)

		return err
	}
}
