// Package hook defines the lifecycle hook system for the reporting pipeline.
// Hooks are notified of report lifecycle events (enqueued, submitted,
// retrying, dropped) and can react to them — counters, debug logging,
// product analytics of the analytics pipeline itself.
//
// Each lifecycle event is a separate interface so hooks opt in only to the
// events they care about.
package hook

import (
	"context"
	"time"

	"github.com/pushkit/reporting/report"
)

// Hook is the base interface all hooks must implement.
type Hook interface {
	// Name returns a unique human-readable name for the hook.
	Name() string
}

// ReportEnqueued is called after a report is durably enqueued.
type ReportEnqueued interface {
	OnReportEnqueued(ctx context.Context, r *report.Report) error
}

// ReportSubmitted is called after a report is accepted by the backend.
// The report is deleted once the hooks have run.
type ReportSubmitted interface {
	OnReportSubmitted(ctx context.Context, r *report.Report, elapsed time.Duration) error
}

// ReportRetrying is called when a submission fails recoverably and the
// report is scheduled for another attempt.
type ReportRetrying interface {
	OnReportRetrying(ctx context.Context, r *report.Report, attempt int, nextRunAt time.Time) error
}

// ReportDropped is called when a report is discarded without having been
// accepted: an undecodable payload, an unrecoverable submission failure,
// or an exhausted retry budget. reason carries the final error.
type ReportDropped interface {
	OnReportDropped(ctx context.Context, r *report.Report, reason error) error
}

// Shutdown is called when the host scheduler stops.
type Shutdown interface {
	OnShutdown(ctx context.Context)
}
