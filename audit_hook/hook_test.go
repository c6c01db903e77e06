package audithook_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	ah "github.com/pushkit/reporting/audit_hook"
	"github.com/pushkit/reporting/event"
	"github.com/pushkit/reporting/payload"
	"github.com/pushkit/reporting/report"
)

// mockRecorder captures audit events for verification.
type mockRecorder struct {
	mu     sync.Mutex
	events []*ah.AuditEvent
}

func (m *mockRecorder) Record(_ context.Context, evt *ah.AuditEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, evt)
	return nil
}

func (m *mockRecorder) last() *ah.AuditEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.events) == 0 {
		return nil
	}
	return m.events[len(m.events)-1]
}

func (m *mockRecorder) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

func newTestReport() *report.Report {
	return report.New(payload.Encode(event.Delivery{
		Fields: event.Fields{InstanceID: "i1", DeviceID: "d1", PublishID: "p1", Timestamp: 1000},
	}), 3)
}

func TestHook_Name(t *testing.T) {
	h := ah.New(&mockRecorder{})
	if h.Name() != "audit-hook" {
		t.Errorf("expected name %q, got %q", "audit-hook", h.Name())
	}
}

func TestHook_ReportEnqueued(t *testing.T) {
	rec := &mockRecorder{}
	h := ah.New(rec)

	r := newTestReport()
	if err := h.OnReportEnqueued(context.Background(), r); err != nil {
		t.Fatalf("OnReportEnqueued() error = %v", err)
	}

	evt := rec.last()
	if evt == nil {
		t.Fatal("no audit event recorded")
	}
	if evt.Action != ah.ActionReportEnqueued {
		t.Errorf("Action = %q, want %q", evt.Action, ah.ActionReportEnqueued)
	}
	if evt.Severity != ah.SeverityInfo {
		t.Errorf("Severity = %q, want info", evt.Severity)
	}
	if evt.ResourceID != r.ID.String() {
		t.Errorf("ResourceID = %q, want %q", evt.ResourceID, r.ID.String())
	}
	if evt.Metadata["event_type"] != "Delivery" {
		t.Errorf("event_type = %v, want Delivery", evt.Metadata["event_type"])
	}
}

func TestHook_ReportSubmitted(t *testing.T) {
	rec := &mockRecorder{}
	h := ah.New(rec)

	if err := h.OnReportSubmitted(context.Background(), newTestReport(), 25*time.Millisecond); err != nil {
		t.Fatalf("OnReportSubmitted() error = %v", err)
	}

	evt := rec.last()
	if evt.Action != ah.ActionReportSubmitted {
		t.Errorf("Action = %q, want %q", evt.Action, ah.ActionReportSubmitted)
	}
	if evt.Outcome != ah.OutcomeSuccess {
		t.Errorf("Outcome = %q, want success", evt.Outcome)
	}
	if evt.Metadata["elapsed_ms"] != int64(25) {
		t.Errorf("elapsed_ms = %v, want 25", evt.Metadata["elapsed_ms"])
	}
}

func TestHook_ReportRetrying(t *testing.T) {
	rec := &mockRecorder{}
	h := ah.New(rec)

	next := time.Now().UTC().Add(time.Minute)
	if err := h.OnReportRetrying(context.Background(), newTestReport(), 2, next); err != nil {
		t.Fatalf("OnReportRetrying() error = %v", err)
	}

	evt := rec.last()
	if evt.Action != ah.ActionReportRetrying {
		t.Errorf("Action = %q, want %q", evt.Action, ah.ActionReportRetrying)
	}
	if evt.Severity != ah.SeverityWarning {
		t.Errorf("Severity = %q, want warning", evt.Severity)
	}
	if evt.Metadata["attempt"] != 2 {
		t.Errorf("attempt = %v, want 2", evt.Metadata["attempt"])
	}
}

func TestHook_ReportDropped(t *testing.T) {
	rec := &mockRecorder{}
	h := ah.New(rec)

	cause := errors.New("unknown instance")
	if err := h.OnReportDropped(context.Background(), newTestReport(), cause); err != nil {
		t.Fatalf("OnReportDropped() error = %v", err)
	}

	evt := rec.last()
	if evt.Action != ah.ActionReportDropped {
		t.Errorf("Action = %q, want %q", evt.Action, ah.ActionReportDropped)
	}
	if evt.Severity != ah.SeverityCritical {
		t.Errorf("Severity = %q, want critical", evt.Severity)
	}
	if evt.Reason != "unknown instance" {
		t.Errorf("Reason = %q, want cause message", evt.Reason)
	}
	if evt.Metadata["error"] != "unknown instance" {
		t.Errorf("metadata error = %v, want cause message", evt.Metadata["error"])
	}
}

func TestHook_WithActionsFilters(t *testing.T) {
	rec := &mockRecorder{}
	h := ah.New(rec, ah.WithActions(ah.ActionReportDropped))

	ctx := context.Background()
	r := newTestReport()
	_ = h.OnReportEnqueued(ctx, r)
	_ = h.OnReportSubmitted(ctx, r, time.Millisecond)
	_ = h.OnReportRetrying(ctx, r, 1, time.Now())
	_ = h.OnReportDropped(ctx, r, errors.New("boom"))

	if rec.count() != 1 {
		t.Fatalf("recorded %d events, want 1 (only drops enabled)", rec.count())
	}
	if rec.last().Action != ah.ActionReportDropped {
		t.Errorf("Action = %q, want %q", rec.last().Action, ah.ActionReportDropped)
	}
}

func TestHook_RecorderErrorIsSwallowed(t *testing.T) {
	h := ah.New(ah.RecorderFunc(func(context.Context, *ah.AuditEvent) error {
		return errors.New("audit backend down")
	}))

	if err := h.OnReportEnqueued(context.Background(), newTestReport()); err != nil {
		t.Errorf("OnReportEnqueued() error = %v, want nil (recorder errors are logged)", err)
	}
}

func TestAllActions(t *testing.T) {
	if got := len(ah.AllActions()); got != 4 {
		t.Errorf("AllActions() returned %d actions, want 4", got)
	}
}
