package reporting

import (
	"log/slog"

	"github.com/pushkit/reporting/backoff"
	"github.com/pushkit/reporting/hook"
	"github.com/pushkit/reporting/middleware"
	"github.com/pushkit/reporting/report"
	"github.com/pushkit/reporting/scheduler"
	"github.com/pushkit/reporting/worker"
)

// Option configures a Reporter.
type Option func(*Reporter)

// WithStore sets the report store backend. Required unless WithHost
// supplies a fully wired host.
func WithStore(s report.Store) Option {
	return func(r *Reporter) { r.store = s }
}

// WithSubmitter sets the submission collaborator that performs the actual
// network call. Required unless WithHost supplies a fully wired host.
func WithSubmitter(s worker.Submitter) Option {
	return func(r *Reporter) { r.submitter = s }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Reporter) { r.logger = l }
}

// WithConfig replaces the default pool host configuration.
func WithConfig(c Config) Option {
	return func(r *Reporter) { r.config = c }
}

// WithBackoff sets the retry delay strategy for the default host.
// If not set, backoff.DefaultStrategy() (exponential with jitter) is used.
func WithBackoff(b backoff.Strategy) Option {
	return func(r *Reporter) { r.backoff = b }
}

// WithHook registers a lifecycle hook.
func WithHook(h hook.Hook) Option {
	return func(r *Reporter) { r.hooks = append(r.hooks, h) }
}

// WithMiddleware appends middleware to the submission chain. The chain
// always starts with Recover and Logging.
func WithMiddleware(m middleware.Middleware) Option {
	return func(r *Reporter) { r.mws = append(r.mws, m) }
}

// WithSubmissionRate caps sustained submissions per second for the default
// pool host.
func WithSubmissionRate(perSec float64, burst int) Option {
	return func(r *Reporter) {
		r.ratePerSec = perSec
		r.rateBurst = burst
	}
}

// WithTimerHost swaps the default polling pool for the in-process timer
// binding. Use this where a polling pool is too heavy — the timer host
// submits serially and wakes only on enqueues, retries, and a slow sweep.
func WithTimerHost() Option {
	return func(r *Reporter) { r.useTimer = true }
}

// WithHost supplies a fully constructed host binding, bypassing the
// Reporter's own wiring. Store and submitter options are then ignored.
func WithHost(h scheduler.Host) Option {
	return func(r *Reporter) { r.host = h }
}
