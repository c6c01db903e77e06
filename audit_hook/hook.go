package audithook

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pushkit/reporting/hook"
	"github.com/pushkit/reporting/payload"
	"github.com/pushkit/reporting/report"
)

// Compile-time interface checks.
var (
	_ hook.Hook            = (*Hook)(nil)
	_ hook.ReportEnqueued  = (*Hook)(nil)
	_ hook.ReportSubmitted = (*Hook)(nil)
	_ hook.ReportRetrying  = (*Hook)(nil)
	_ hook.ReportDropped   = (*Hook)(nil)
)

// AuditEvent is the structured record handed to the Recorder.
type AuditEvent struct {
	Action     string
	Resource   string
	Category   string
	ResourceID string
	Metadata   map[string]any
	Outcome    string
	Severity   string
	Reason     string
}

// Recorder is the interface that audit backends must implement.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// RecorderFunc adapts a function to the Recorder interface.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Severity constants.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Outcome constants.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Hook bridges report lifecycle events to an audit trail backend. Each
// lifecycle hook emits a structured audit event through the [Recorder].
type Hook struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates a Hook that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Hook {
	h := &Hook{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Name implements hook.Hook.
func (h *Hook) Name() string { return "audit-hook" }

// OnReportEnqueued implements hook.ReportEnqueued.
func (h *Hook) OnReportEnqueued(ctx context.Context, r *report.Report) error {
	return h.record(ctx, ActionReportEnqueued, SeverityInfo, OutcomeSuccess, r.ID.String(), nil,
		"event_type", eventType(r),
	)
}

// OnReportSubmitted implements hook.ReportSubmitted.
func (h *Hook) OnReportSubmitted(ctx context.Context, r *report.Report, elapsed time.Duration) error {
	return h.record(ctx, ActionReportSubmitted, SeverityInfo, OutcomeSuccess, r.ID.String(), nil,
		"event_type", eventType(r),
		"attempts", r.Attempts,
		"elapsed_ms", elapsed.Milliseconds(),
	)
}

// OnReportRetrying implements hook.ReportRetrying.
func (h *Hook) OnReportRetrying(ctx context.Context, r *report.Report, attempt int, nextRunAt time.Time) error {
	return h.record(ctx, ActionReportRetrying, SeverityWarning, OutcomeFailure, r.ID.String(), nil,
		"event_type", eventType(r),
		"attempt", attempt,
		"next_run_at", nextRunAt.Format(time.RFC3339),
	)
}

// OnReportDropped implements hook.ReportDropped.
func (h *Hook) OnReportDropped(ctx context.Context, r *report.Report, reason error) error {
	return h.record(ctx, ActionReportDropped, SeverityCritical, OutcomeFailure, r.ID.String(), reason,
		"event_type", eventType(r),
		"attempts", r.Attempts,
	)
}

// record builds and sends an audit event if the action is enabled.
// The kvPairs argument is a list of key-value pairs added to Metadata.
func (h *Hook) record(
	ctx context.Context,
	action, severity, outcome, resourceID string,
	err error,
	kvPairs ...any,
) error {
	if h.enabled != nil && !h.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   ResourceReport,
		Category:   CategoryReport,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := h.recorder.Record(ctx, evt); recErr != nil {
		h.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}

// eventType reads the discriminator out of the persisted payload without
// a full decode; an absent or malformed key comes back empty.
func eventType(r *report.Report) string {
	if s, ok := r.Payload[payload.KeyEventType].(string); ok {
		return s
	}
	return ""
}
