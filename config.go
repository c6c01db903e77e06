package reporting

import "time"

// Config holds configuration for the Reporter's default pool host.
type Config struct {
	// Concurrency is the number of concurrent submission workers.
	Concurrency int

	// PollInterval is how often idle workers poll for due reports.
	PollInterval time.Duration

	// ShutdownTimeout is the maximum time Stop waits for in-flight
	// submissions.
	ShutdownTimeout time.Duration

	// MaxAttempts bounds submission attempts per report. Zero means
	// unbounded; the backend's terminal rejections then decide.
	MaxAttempts int

	// StaleAfter is how long a claimed report may go without a state
	// update before it is returned to pending. This is the recovery
	// window for claims abandoned by a crashed process. Zero or
	// negative disables reclaiming.
	StaleAfter time.Duration
}

// DefaultConfig returns a Config with sensible defaults. Receipts are
// low-urgency telemetry, so the defaults poll gently.
func DefaultConfig() Config {
	return Config{
		Concurrency:     2,
		PollInterval:    5 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		MaxAttempts:     0,
		StaleAfter:      5 * time.Minute,
	}
}
