// Package worker drives a single report invocation: decode the persisted
// payload, submit the event once, classify the result. The Executor is
// shared by every scheduler binding, which is what makes the bindings
// behaviorally identical — a binding supplies only host glue around one
// Execute call.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/pushkit/reporting/classify"
	"github.com/pushkit/reporting/event"
	"github.com/pushkit/reporting/hook"
	"github.com/pushkit/reporting/middleware"
	"github.com/pushkit/reporting/payload"
	"github.com/pushkit/reporting/report"
)

// Submitter performs the actual network submission of a receipt event to
// the backend identified by its instance id. A call makes at most one
// submission; returning blocks until the backend answered or ctx ended.
// Mark permanently rejected submissions with classify.Unrecoverable —
// every other error is treated as recoverable.
type Submitter interface {
	Submit(ctx context.Context, ev event.Event) error
}

// SubmitterFunc adapts a function to the Submitter interface.
type SubmitterFunc func(ctx context.Context, ev event.Event) error

// Submit calls f.
func (f SubmitterFunc) Submit(ctx context.Context, ev event.Event) error {
	return f(ctx, ev)
}

// Outcome is what an invocation reports back to its host scheduler,
// exactly once per invocation.
type Outcome int

const (
	// OutcomeDone means the backend accepted the report; the payload
	// can be discarded.
	OutcomeDone Outcome = iota
	// OutcomeRetry means the host should re-invoke later with the same
	// persisted payload.
	OutcomeRetry
	// OutcomeDrop means the report is permanently failed; the payload
	// is discarded without having been accepted.
	OutcomeDrop
)

// String returns the outcome name for logging.
func (o Outcome) String() string {
	switch o {
	case OutcomeDone:
		return "done"
	case OutcomeRetry:
		return "retry"
	case OutcomeDrop:
		return "drop"
	default:
		return "unknown"
	}
}

// Executor runs one report invocation through middleware and the submitter,
// then classifies the result. It holds no per-invocation state; one
// instance serves all invocations of all bindings.
type Executor struct {
	submitter Submitter
	mw        middleware.Middleware
	hooks     *hook.Registry
	logger    *slog.Logger
}

// NewExecutor creates an Executor with the given dependencies.
func NewExecutor(
	submitter Submitter,
	hooks *hook.Registry,
	logger *slog.Logger,
	mws ...middleware.Middleware,
) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	if hooks == nil {
		hooks = hook.NewRegistry(logger)
	}
	return &Executor{
		submitter: submitter,
		mw:        middleware.Chain(mws...),
		hooks:     hooks,
		logger:    logger,
	}
}

// Execute runs one invocation of a report and returns the single outcome
// the host acts on, along with the error that produced it (nil for
// OutcomeDone). The error is diagnostic only — a host never re-throws it,
// it acts purely on the outcome.
//
// A payload that fails to decode is dropped without a submission attempt:
// it will not become well-formed on a later try, and receipts are
// best-effort telemetry, so the loss is logged and swallowed. Otherwise the
// event is submitted exactly once and the failure classifier maps the
// result onto OutcomeRetry or OutcomeDrop. The persisted payload is never
// mutated — a retry is a brand-new invocation of the same payload.
func (e *Executor) Execute(ctx context.Context, r *report.Report) (Outcome, error) {
	ev, err := payload.Decode(r.Payload)
	if err != nil {
		e.logger.Warn("dropping report with undecodable payload",
			slog.String("report_id", r.ID.String()),
			slog.String("error", err.Error()),
		)
		e.hooks.EmitReportDropped(ctx, r, err)
		return OutcomeDrop, err
	}

	start := time.Now()
	err = e.mw(ctx, r, func(ctx context.Context) error {
		return e.submitter.Submit(ctx, ev)
	})
	elapsed := time.Since(start)

	if err != nil {
		if classify.Classify(err) == classify.Terminal {
			e.logger.Warn("dropping report after unrecoverable submission failure",
				slog.String("report_id", r.ID.String()),
				slog.String("error", err.Error()),
			)
			e.hooks.EmitReportDropped(ctx, r, err)
			return OutcomeDrop, err
		}
		return OutcomeRetry, err
	}

	e.hooks.EmitReportSubmitted(ctx, r, elapsed)
	return OutcomeDone, nil
}

// Hooks returns the executor's hook registry.
func (e *Executor) Hooks() *hook.Registry { return e.hooks }
