package hook

import (
	"context"
	"log/slog"
	"time"

	"github.com/pushkit/reporting/report"
)

// Named entry types pair a hook implementation with the hook name captured
// at registration time. This avoids type-asserting back to Hook inside the
// emit methods.
type enqueuedEntry struct {
	name string
	hook ReportEnqueued
}

type submittedEntry struct {
	name string
	hook ReportSubmitted
}

type retryingEntry struct {
	name string
	hook ReportRetrying
}

type droppedEntry struct {
	name string
	hook ReportDropped
}

type shutdownEntry struct {
	name string
	hook Shutdown
}

// Registry holds registered hooks and dispatches lifecycle events to them.
// It type-caches hooks at registration time so emit calls iterate only over
// hooks that implement the relevant event.
type Registry struct {
	hooks  []Hook
	logger *slog.Logger

	enqueued  []enqueuedEntry
	submitted []submittedEntry
	retrying  []retryingEntry
	dropped   []droppedEntry
	shutdown  []shutdownEntry
}

// NewRegistry creates a hook registry with the given logger.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{logger: logger}
}

// Register adds a hook and type-asserts it into all applicable event
// caches. Hooks are notified in registration order.
func (r *Registry) Register(h Hook) {
	r.hooks = append(r.hooks, h)
	name := h.Name()

	if e, ok := h.(ReportEnqueued); ok {
		r.enqueued = append(r.enqueued, enqueuedEntry{name, e})
	}
	if e, ok := h.(ReportSubmitted); ok {
		r.submitted = append(r.submitted, submittedEntry{name, e})
	}
	if e, ok := h.(ReportRetrying); ok {
		r.retrying = append(r.retrying, retryingEntry{name, e})
	}
	if e, ok := h.(ReportDropped); ok {
		r.dropped = append(r.dropped, droppedEntry{name, e})
	}
	if e, ok := h.(Shutdown); ok {
		r.shutdown = append(r.shutdown, shutdownEntry{name, e})
	}
}

// Hooks returns all registered hooks.
func (r *Registry) Hooks() []Hook { return r.hooks }

// EmitReportEnqueued notifies hooks that a report was durably enqueued.
// Hook errors are logged and do not affect the pipeline.
func (r *Registry) EmitReportEnqueued(ctx context.Context, rep *report.Report) {
	for _, e := range r.enqueued {
		if err := e.hook.OnReportEnqueued(ctx, rep); err != nil {
			r.logHookError("OnReportEnqueued", e.name, err)
		}
	}
}

// EmitReportSubmitted notifies hooks that the backend accepted a report.
func (r *Registry) EmitReportSubmitted(ctx context.Context, rep *report.Report, elapsed time.Duration) {
	for _, e := range r.submitted {
		if err := e.hook.OnReportSubmitted(ctx, rep, elapsed); err != nil {
			r.logHookError("OnReportSubmitted", e.name, err)
		}
	}
}

// EmitReportRetrying notifies hooks that a report was rescheduled.
func (r *Registry) EmitReportRetrying(ctx context.Context, rep *report.Report, attempt int, nextRunAt time.Time) {
	for _, e := range r.retrying {
		if err := e.hook.OnReportRetrying(ctx, rep, attempt, nextRunAt); err != nil {
			r.logHookError("OnReportRetrying", e.name, err)
		}
	}
}

// EmitReportDropped notifies hooks that a report was discarded.
func (r *Registry) EmitReportDropped(ctx context.Context, rep *report.Report, reason error) {
	for _, e := range r.dropped {
		if err := e.hook.OnReportDropped(ctx, rep, reason); err != nil {
			r.logHookError("OnReportDropped", e.name, err)
		}
	}
}

// EmitShutdown notifies hooks that the host scheduler is stopping.
func (r *Registry) EmitShutdown(ctx context.Context) {
	for _, e := range r.shutdown {
		e.hook.OnShutdown(ctx)
	}
}

func (r *Registry) logHookError(event, name string, err error) {
	r.logger.Error("hook returned error",
		slog.String("event", event),
		slog.String("hook", name),
		slog.String("error", err.Error()),
	)
}
