package reporting

import (
	"context"
	"log/slog"

	"github.com/pushkit/reporting/backoff"
	"github.com/pushkit/reporting/event"
	"github.com/pushkit/reporting/hook"
	"github.com/pushkit/reporting/middleware"
	"github.com/pushkit/reporting/payload"
	"github.com/pushkit/reporting/report"
	"github.com/pushkit/reporting/scheduler"
	"github.com/pushkit/reporting/worker"
)

// Reporter is the central coordinator of the receipt pipeline. It encodes
// receipts, hands them to a host binding for durable submission, and owns
// the host's lifecycle.
//
// Create one with New() and functional options.
type Reporter struct {
	config    Config
	logger    *slog.Logger
	store     report.Store
	submitter worker.Submitter
	backoff   backoff.Strategy
	hooks     []hook.Hook
	mws       []middleware.Middleware
	host      scheduler.Host

	ratePerSec float64
	rateBurst  int
	useTimer   bool
}

// New creates a Reporter. Unless a pre-wired host is supplied via
// WithHost, a store and a submitter are required and the Reporter builds
// its own host: a polling pool by default, or the timer binding with
// WithTimerHost.
func New(opts ...Option) (*Reporter, error) {
	r := &Reporter{
		config: DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.host != nil {
		return r, nil
	}

	if r.store == nil {
		return nil, ErrNoStore
	}
	if r.submitter == nil {
		return nil, ErrNoSubmitter
	}

	registry := hook.NewRegistry(r.logger)
	for _, h := range r.hooks {
		registry.Register(h)
	}

	mws := append([]middleware.Middleware{
		middleware.Recover(r.logger),
		middleware.Logging(r.logger),
	}, r.mws...)

	executor := worker.NewExecutor(r.submitter, registry, r.logger, mws...)

	bo := r.backoff
	if bo == nil {
		bo = backoff.DefaultStrategy()
	}

	if r.useTimer {
		r.host = scheduler.NewTimer(r.store, executor, r.logger,
			scheduler.WithTimerBackoff(bo),
			scheduler.WithTimerMaxAttempts(r.config.MaxAttempts),
			scheduler.WithTimerStaleAfter(r.config.StaleAfter),
		)
	} else {
		r.host = scheduler.NewPool(r.store, executor, r.logger,
			scheduler.WithPoolConcurrency(r.config.Concurrency),
			scheduler.WithPollInterval(r.config.PollInterval),
			scheduler.WithMaxAttempts(r.config.MaxAttempts),
			scheduler.WithPoolStaleAfter(r.config.StaleAfter),
			scheduler.WithPoolBackoff(bo),
			scheduler.WithSubmissionRate(r.ratePerSec, r.rateBurst),
		)
	}

	return r, nil
}

// Logger returns the reporter's logger.
func (r *Reporter) Logger() *slog.Logger { return r.logger }

// Host returns the scheduler binding driving submissions.
func (r *Reporter) Host() scheduler.Host { return r.host }

// Start begins driving submissions, including receipts persisted by a
// previous process.
func (r *Reporter) Start(ctx context.Context) error {
	return r.host.Start(ctx)
}

// Stop halts submission scheduling. In-flight submissions are not aborted;
// an unresolved receipt is redelivered after the next Start. When ctx
// carries no deadline, the configured ShutdownTimeout bounds the wait.
func (r *Reporter) Stop(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok && r.config.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.ShutdownTimeout)
		defer cancel()
	}
	return r.host.Stop(ctx)
}

// ReportDelivery records a delivery receipt for durable submission. The
// event must carry a non-empty InstanceID — it is the submission routing
// key, and a receipt without one could never be submitted.
func (r *Reporter) ReportDelivery(ctx context.Context, ev event.Delivery) error {
	return r.enqueue(ctx, ev)
}

// ReportOpen records an open receipt for durable submission.
func (r *Reporter) ReportOpen(ctx context.Context, ev event.Open) error {
	return r.enqueue(ctx, ev)
}

func (r *Reporter) enqueue(ctx context.Context, ev event.Event) error {
	if ev.Common().InstanceID == "" {
		return ErrEmptyInstanceID
	}
	return r.host.Enqueue(ctx, payload.Encode(ev))
}
