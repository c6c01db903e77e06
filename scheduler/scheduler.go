// Package scheduler binds the submission executor to a job-execution host.
//
// Two bindings are provided: [Pool], a concurrent store-polling worker pool,
// and [Timer], a serial in-process binding driven by timers. Both share the
// same executor, payload codec, and failure classifier, so their
// decode/submit/retry behavior is identical by construction — a binding
// contributes only the glue that decides when invocations happen.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/pushkit/reporting/backoff"
	"github.com/pushkit/reporting/payload"
	"github.com/pushkit/reporting/report"
	"github.com/pushkit/reporting/worker"
)

// Host accepts encoded payloads for durable, at-least-once submission.
// Enqueue may be called before Start; the report waits in the store.
// Stop is accepted at any time and triggers no special cleanup — an
// in-flight submission is not aborted, and if the process dies before
// its outcome lands, the report is simply re-delivered later.
type Host interface {
	// Enqueue durably persists a payload for submission.
	Enqueue(ctx context.Context, p payload.Payload) error

	// Start begins driving invocations, including reports persisted by
	// a previous process.
	Start(ctx context.Context) error

	// Stop halts invocation scheduling and waits for in-flight
	// invocations to finish or ctx to end.
	Stop(ctx context.Context) error
}

// outcomes applies an executor outcome to the store on behalf of a binding.
// Keeping this in one place is what guarantees the bindings stay
// behaviorally interchangeable.
type outcomes struct {
	store   report.Store
	backoff backoff.Strategy
	logger  *slog.Logger
}

// apply resolves one invocation result. It returns the delay until the
// report should run again, or ok=false when the report was discarded
// (accepted, dropped, or retry budget exhausted).
func (o *outcomes) apply(ctx context.Context, exec *worker.Executor, r *report.Report, outcome worker.Outcome, cause error) (delay time.Duration, ok bool) {
	switch outcome {
	case worker.OutcomeDone, worker.OutcomeDrop:
		o.delete(ctx, r)
		return 0, false

	case worker.OutcomeRetry:
		r.Attempts++
		if cause != nil {
			r.LastError = cause.Error()
		}

		if r.Exhausted() {
			o.logger.Warn("dropping report after exhausting retry budget",
				slog.String("report_id", r.ID.String()),
				slog.Int("attempts", r.Attempts),
				slog.String("last_error", r.LastError),
			)
			exec.Hooks().EmitReportDropped(ctx, r, cause)
			o.delete(ctx, r)
			return 0, false
		}

		now := time.Now().UTC()
		delay = o.backoff.Delay(r.Attempts)
		r.State = report.StateRetrying
		r.RunAt = now.Add(delay)
		r.UpdatedAt = now

		if err := o.store.UpdateReport(ctx, r); err != nil {
			o.logger.Error("failed to reschedule report",
				slog.String("report_id", r.ID.String()),
				slog.String("error", err.Error()),
			)
			return 0, false
		}

		exec.Hooks().EmitReportRetrying(ctx, r, r.Attempts, r.RunAt)

		o.logger.Info("report scheduled for retry",
			slog.String("report_id", r.ID.String()),
			slog.Int("attempt", r.Attempts),
			slog.Duration("delay", delay),
		)
		return delay, true
	}

	return 0, false
}

// reclaim returns claimed reports whose outcome never landed — the
// claiming process died mid-invocation, or a reschedule write failed —
// to the pending state so they become due again. Both bindings drive
// this from their periodic loops; it is what makes a claim survivable.
func (o *outcomes) reclaim(ctx context.Context, staleAfter time.Duration) int {
	stale, err := o.store.ReapStale(ctx, staleAfter)
	if err != nil {
		o.logger.Error("failed to reap stale reports", slog.String("error", err.Error()))
		return 0
	}

	now := time.Now().UTC()
	reclaimed := 0
	for _, r := range stale {
		r.State = report.StatePending
		r.RunAt = now
		r.UpdatedAt = now
		if err := o.store.UpdateReport(ctx, r); err != nil {
			o.logger.Error("failed to reclaim stale report",
				slog.String("report_id", r.ID.String()),
				slog.String("error", err.Error()),
			)
			continue
		}
		reclaimed++
	}

	if reclaimed > 0 {
		o.logger.Info("reclaimed stale reports", slog.Int("count", reclaimed))
	}
	return reclaimed
}

func (o *outcomes) delete(ctx context.Context, r *report.Report) {
	if err := o.store.DeleteReport(ctx, r.ID); err != nil {
		o.logger.Error("failed to delete resolved report",
			slog.String("report_id", r.ID.String()),
			slog.String("error", err.Error()),
		)
	}
}
