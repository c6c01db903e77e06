package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/pushkit/reporting/backoff"
	"github.com/pushkit/reporting/id"
	"github.com/pushkit/reporting/payload"
	"github.com/pushkit/reporting/report"
	"github.com/pushkit/reporting/worker"
)

// Pool is the store-polling host binding. A set of worker goroutines polls
// the store for due reports and runs each through the shared executor.
// This is the binding to use where concurrent submission is fine and the
// store is the source of truth for scheduling.
type Pool struct {
	store        report.Store
	executor     *worker.Executor
	outcomes     *outcomes
	concurrency  int
	pollInterval time.Duration
	maxAttempts  int
	staleAfter   time.Duration
	limiter      *rate.Limiter
	workerID     id.WorkerID
	logger       *slog.Logger

	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithPoolConcurrency sets the number of concurrent worker goroutines.
func WithPoolConcurrency(n int) PoolOption {
	return func(p *Pool) { p.concurrency = n }
}

// WithPollInterval sets how often idle workers poll for due reports.
func WithPollInterval(d time.Duration) PoolOption {
	return func(p *Pool) { p.pollInterval = d }
}

// WithMaxAttempts bounds submission attempts per report. Zero means
// unbounded.
func WithMaxAttempts(n int) PoolOption {
	return func(p *Pool) { p.maxAttempts = n }
}

// WithPoolStaleAfter sets how long a report may sit in active state
// before the reaper returns it to pending. A claim this stale means the
// claiming process died before its outcome landed. Zero or negative
// disables reaping.
func WithPoolStaleAfter(d time.Duration) PoolOption {
	return func(p *Pool) { p.staleAfter = d }
}

// WithPoolBackoff sets the retry delay strategy.
func WithPoolBackoff(b backoff.Strategy) PoolOption {
	return func(p *Pool) { p.outcomes.backoff = b }
}

// WithSubmissionRate caps sustained submissions per second across the
// pool with a token-bucket limiter. Zero perSec disables the cap.
func WithSubmissionRate(perSec float64, burst int) PoolOption {
	return func(p *Pool) {
		if perSec <= 0 {
			p.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		p.limiter = rate.NewLimiter(rate.Limit(perSec), burst)
	}
}

// NewPool creates a polling pool binding around a store and executor.
func NewPool(store report.Store, executor *worker.Executor, logger *slog.Logger, opts ...PoolOption) *Pool {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pool{
		store:        store,
		executor:     executor,
		outcomes:     &outcomes{store: store, backoff: backoff.DefaultStrategy(), logger: logger},
		concurrency:  2,
		pollInterval: 5 * time.Second,
		staleAfter:   5 * time.Minute,
		workerID:     id.NewWorkerID(),
		logger:       logger,
		stopCh:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WorkerID returns the pool's unique worker identifier.
func (p *Pool) WorkerID() id.WorkerID { return p.workerID }

// Enqueue durably persists a payload as a pending report.
func (p *Pool) Enqueue(ctx context.Context, pl payload.Payload) error {
	r := report.New(pl, p.maxAttempts)
	if err := p.store.EnqueueReport(ctx, r); err != nil {
		return err
	}
	p.executor.Hooks().EmitReportEnqueued(ctx, r)
	return nil
}

// Start launches the worker goroutines. It returns immediately.
func (p *Pool) Start(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return nil
	}
	p.running = true
	p.stopCh = make(chan struct{})

	for i := 0; i < p.concurrency; i++ {
		p.wg.Add(1)
		go p.runWorker()
	}

	if p.staleAfter > 0 {
		p.wg.Add(1)
		go p.runReaper()
	}

	p.logger.Info("report pool started",
		slog.String("worker_id", p.workerID.String()),
		slog.Int("concurrency", p.concurrency),
	)
	return nil
}

// Stop halts polling and waits for in-flight invocations to finish or ctx
// to end. In-flight submissions are not aborted; their reports are
// redelivered by a later Start if the outcome never lands.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = false
	close(p.stopCh)
	p.mu.Unlock()

	// Shutdown hooks fire even when ctx expires before the workers drain.
	defer p.executor.Hooks().EmitShutdown(ctx)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	p.logger.Info("report pool stopped", slog.String("worker_id", p.workerID.String()))
	return nil
}

// runReaper periodically returns stale active reports to pending. The
// first pass runs at startup so claims abandoned by a dead process are
// recovered as soon as they age past the threshold.
func (p *Pool) runReaper() {
	defer p.wg.Done()

	p.outcomes.reclaim(context.Background(), p.staleAfter)

	ticker := time.NewTicker(p.staleAfter)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.outcomes.reclaim(context.Background(), p.staleAfter)
		}
	}
}

// runWorker polls for due reports until the pool stops.
func (p *Pool) runWorker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopCh:
			return
		default:
		}

		ctx := context.Background()
		reports, err := p.store.DequeueDue(ctx, 1)
		if err != nil {
			p.logger.Error("failed to dequeue reports", slog.String("error", err.Error()))
			p.sleep()
			continue
		}
		if len(reports) == 0 {
			p.sleep()
			continue
		}

		for _, r := range reports {
			p.invoke(ctx, r)
		}
	}
}

// invoke runs one report invocation, honoring the submission rate cap.
func (p *Pool) invoke(ctx context.Context, r *report.Report) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return
		}
	}
	outcome, cause := p.executor.Execute(ctx, r)
	p.outcomes.apply(ctx, p.executor, r, outcome, cause)
}

// sleep waits one poll interval or until the pool stops.
func (p *Pool) sleep() {
	select {
	case <-time.After(p.pollInterval):
	case <-p.stopCh:
	}
}

var _ Host = (*Pool)(nil)
