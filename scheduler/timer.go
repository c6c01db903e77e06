package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pushkit/reporting/backoff"
	"github.com/pushkit/reporting/payload"
	"github.com/pushkit/reporting/report"
	"github.com/pushkit/reporting/worker"
)

// Timer is the in-process host binding for environments without a polling
// worker pool. A single drain goroutine executes invocations serially; it
// is woken by enqueues, by per-retry timers, and by a slow safety sweep
// that catches reports whose timers died with a previous process.
type Timer struct {
	store         report.Store
	executor      *worker.Executor
	outcomes      *outcomes
	maxAttempts   int
	sweepInterval time.Duration
	staleAfter    time.Duration
	logger        *slog.Logger

	kick    chan struct{}
	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// TimerOption configures a Timer.
type TimerOption func(*Timer)

// WithTimerBackoff sets the retry delay strategy.
func WithTimerBackoff(b backoff.Strategy) TimerOption {
	return func(t *Timer) { t.outcomes.backoff = b }
}

// WithTimerMaxAttempts bounds submission attempts per report. Zero means
// unbounded.
func WithTimerMaxAttempts(n int) TimerOption {
	return func(t *Timer) { t.maxAttempts = n }
}

// WithSweepInterval sets how often the safety sweep checks the store for
// due reports nothing else woke the drain loop for.
func WithSweepInterval(d time.Duration) TimerOption {
	return func(t *Timer) { t.sweepInterval = d }
}

// WithTimerStaleAfter sets how long a report may sit in active state
// before the safety sweep returns it to pending. A claim this stale
// means the claiming process died before its outcome landed. Zero or
// negative disables reclaiming.
func WithTimerStaleAfter(d time.Duration) TimerOption {
	return func(t *Timer) { t.staleAfter = d }
}

// NewTimer creates a timer binding around a store and executor.
func NewTimer(store report.Store, executor *worker.Executor, logger *slog.Logger, opts ...TimerOption) *Timer {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Timer{
		store:         store,
		executor:      executor,
		outcomes:      &outcomes{store: store, backoff: backoff.DefaultStrategy(), logger: logger},
		sweepInterval: time.Minute,
		staleAfter:    5 * time.Minute,
		logger:        logger,
		kick:          make(chan struct{}, 1),
		stopCh:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Enqueue durably persists a payload and wakes the drain loop.
func (t *Timer) Enqueue(ctx context.Context, pl payload.Payload) error {
	r := report.New(pl, t.maxAttempts)
	if err := t.store.EnqueueReport(ctx, r); err != nil {
		return err
	}
	t.executor.Hooks().EmitReportEnqueued(ctx, r)
	t.wake()
	return nil
}

// Start launches the drain goroutine. Reports persisted by a previous
// process are picked up by the initial drain and the safety sweep.
func (t *Timer) Start(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return nil
	}
	t.running = true
	t.stopCh = make(chan struct{})

	t.wg.Add(1)
	go t.run()

	t.logger.Info("report timer host started")
	return nil
}

// Stop halts the drain loop and waits for an in-flight invocation to
// finish or ctx to end. Pending retry timers are abandoned; the safety
// sweep of a later Start redelivers their reports.
func (t *Timer) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return nil
	}
	t.running = false
	close(t.stopCh)
	t.mu.Unlock()

	// Shutdown hooks fire even when ctx expires before the drain finishes.
	defer t.executor.Hooks().EmitShutdown(ctx)

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	t.logger.Info("report timer host stopped")
	return nil
}

// run is the drain loop. Each wake-up claims and executes every due
// report, one at a time. Stale active claims left by a dead process are
// reclaimed at startup and on each safety sweep.
func (t *Timer) run() {
	defer t.wg.Done()

	ticker := time.NewTicker(t.sweepInterval)
	defer ticker.Stop()

	t.reclaim()

	for {
		t.drain()

		select {
		case <-t.stopCh:
			return
		case <-t.kick:
		case <-ticker.C:
			t.reclaim()
		}
	}
}

// reclaim returns stale active reports to pending so the following drain
// picks them up.
func (t *Timer) reclaim() {
	if t.staleAfter <= 0 {
		return
	}
	t.outcomes.reclaim(context.Background(), t.staleAfter)
}

// drain claims due reports until the store runs dry.
func (t *Timer) drain() {
	ctx := context.Background()
	for {
		select {
		case <-t.stopCh:
			return
		default:
		}

		reports, err := t.store.DequeueDue(ctx, 1)
		if err != nil {
			t.logger.Error("failed to dequeue reports", slog.String("error", err.Error()))
			return
		}
		if len(reports) == 0 {
			return
		}

		for _, r := range reports {
			outcome, cause := t.executor.Execute(ctx, r)
			if delay, requeued := t.outcomes.apply(ctx, t.executor, r, outcome, cause); requeued {
				t.scheduleWake(delay)
			}
		}
	}
}

// scheduleWake arms a one-shot timer that wakes the drain loop when a
// rescheduled report comes due.
func (t *Timer) scheduleWake(delay time.Duration) {
	time.AfterFunc(delay, t.wake)
}

// wake nudges the drain loop without blocking; a pending nudge is enough.
func (t *Timer) wake() {
	select {
	case t.kick <- struct{}{}:
	default:
	}
}

var _ Host = (*Timer)(nil)
