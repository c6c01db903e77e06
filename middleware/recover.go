package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/pushkit/reporting/report"
)

// Recover returns middleware that recovers from panics in the submission
// chain. Panics are converted to errors and logged with a stack trace, so
// a misbehaving submitter yields a retry decision instead of killing the
// worker goroutine.
func Recover(logger *slog.Logger) Middleware {
	return func(ctx context.Context, r *report.Report, next Handler) (retErr error) {
		defer func() {
			if rec := recover(); rec != nil {
				stack := string(debug.Stack())
				logger.Error("submitter panicked",
					slog.String("report_id", r.ID.String()),
					slog.Any("panic", rec),
					slog.String("stack", stack),
				)
				retErr = fmt.Errorf("panic submitting report %s: %v", r.ID.String(), rec)
			}
		}()
		return next(ctx)
	}
}
