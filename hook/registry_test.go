package hook_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pushkit/reporting/hook"
	"github.com/pushkit/reporting/payload"
	"github.com/pushkit/reporting/report"
)

// recorder implements every lifecycle event and records calls.
type recorder struct {
	name      string
	enqueued  int
	submitted int
	retrying  int
	dropped   int
	shutdown  int
	err       error
}

func (r *recorder) Name() string { return r.name }

func (r *recorder) OnReportEnqueued(_ context.Context, _ *report.Report) error {
	r.enqueued++
	return r.err
}

func (r *recorder) OnReportSubmitted(_ context.Context, _ *report.Report, _ time.Duration) error {
	r.submitted++
	return r.err
}

func (r *recorder) OnReportRetrying(_ context.Context, _ *report.Report, _ int, _ time.Time) error {
	r.retrying++
	return r.err
}

func (r *recorder) OnReportDropped(_ context.Context, _ *report.Report, _ error) error {
	r.dropped++
	return r.err
}

func (r *recorder) OnShutdown(_ context.Context) {
	r.shutdown++
}

// enqueuedOnly opts in to a single event.
type enqueuedOnly struct {
	calls int
}

func (enqueuedOnly) Name() string { return "enqueued-only" }

func (h *enqueuedOnly) OnReportEnqueued(_ context.Context, _ *report.Report) error {
	h.calls++
	return nil
}

func newReport() *report.Report {
	return report.New(payload.Payload{payload.KeyInstanceID: "i1"}, 0)
}

func TestRegistry_EmitsAllEvents(t *testing.T) {
	rec := &recorder{name: "recorder"}
	reg := hook.NewRegistry(nil)
	reg.Register(rec)

	ctx := context.Background()
	r := newReport()

	reg.EmitReportEnqueued(ctx, r)
	reg.EmitReportSubmitted(ctx, r, time.Millisecond)
	reg.EmitReportRetrying(ctx, r, 1, time.Now())
	reg.EmitReportDropped(ctx, r, errors.New("boom"))
	reg.EmitShutdown(ctx)

	if rec.enqueued != 1 || rec.submitted != 1 || rec.retrying != 1 || rec.dropped != 1 || rec.shutdown != 1 {
		t.Errorf("expected each event once, got %+v", rec)
	}
}

func TestRegistry_PartialHook(t *testing.T) {
	h := &enqueuedOnly{}
	reg := hook.NewRegistry(nil)
	reg.Register(h)

	ctx := context.Background()
	r := newReport()

	reg.EmitReportEnqueued(ctx, r)
	reg.EmitReportSubmitted(ctx, r, 0)
	reg.EmitReportDropped(ctx, r, errors.New("boom"))

	if h.calls != 1 {
		t.Errorf("enqueued calls = %d, want 1", h.calls)
	}
}

func TestRegistry_HookErrorDoesNotStopOthers(t *testing.T) {
	failing := &recorder{name: "failing", err: errors.New("hook broke")}
	ok := &recorder{name: "ok"}

	reg := hook.NewRegistry(nil)
	reg.Register(failing)
	reg.Register(ok)

	reg.EmitReportSubmitted(context.Background(), newReport(), 0)

	if ok.submitted != 1 {
		t.Errorf("second hook should still run, submitted = %d", ok.submitted)
	}
}

func TestRegistry_Hooks(t *testing.T) {
	reg := hook.NewRegistry(nil)
	reg.Register(&recorder{name: "a"})
	reg.Register(&recorder{name: "b"})

	if got := len(reg.Hooks()); got != 2 {
		t.Errorf("len(Hooks()) = %d, want 2", got)
	}
}
