package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/pushkit/reporting/payload"
	"github.com/pushkit/reporting/report"
)

// Logging returns middleware that logs each submission attempt. Failures
// log at Warn, not Error: a failed attempt is routine for an offline
// device and the classifier decides what happens next.
func Logging(logger *slog.Logger) Middleware {
	return func(ctx context.Context, r *report.Report, next Handler) error {
		start := time.Now()
		err := next(ctx)
		elapsed := time.Since(start)

		eventType, _ := r.Payload[payload.KeyEventType].(string)

		if err != nil {
			logger.Warn("report submission failed",
				slog.String("report_id", r.ID.String()),
				slog.String("event_type", eventType),
				slog.Int("attempts", r.Attempts),
				slog.Duration("elapsed", elapsed),
				slog.String("error", err.Error()),
			)
		} else {
			logger.Debug("report submitted",
				slog.String("report_id", r.ID.String()),
				slog.String("event_type", eventType),
				slog.Duration("elapsed", elapsed),
			)
		}

		return err
	}
}
