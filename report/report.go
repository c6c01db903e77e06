package report

import (
	"time"

	"github.com/pushkit/reporting/id"
	"github.com/pushkit/reporting/payload"
)

// State represents the lifecycle state of a persisted report.
type State string

const (
	// StatePending means the report is waiting for its first submission.
	StatePending State = "pending"
	// StateActive means a scheduler binding is currently submitting the
	// report.
	StateActive State = "active"
	// StateRetrying means a submission failed recoverably and the report
	// is waiting for its next attempt.
	StateRetrying State = "retrying"
)

// Report is one queued receipt submission. The Payload is written once at
// enqueue time and never mutated afterwards — retries re-submit the exact
// same payload. Everything else on the struct is scheduling metadata owned
// by the host.
type Report struct {
	ID id.ReportID `json:"id"`
	// Payload is the encoded receipt event.
	Payload payload.Payload `json:"payload"`
	State   State           `json:"state"`
	// Attempts counts completed submission attempts.
	Attempts int `json:"attempts"`
	// MaxAttempts bounds retries. Zero means unbounded; the backend's
	// terminal rejections are then the only thing that stops a report.
	MaxAttempts int    `json:"max_attempts"`
	LastError   string `json:"last_error,omitempty"`
	// RunAt is the earliest time the report may be picked up.
	RunAt     time.Time `json:"run_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New creates a pending report around an encoded payload, eligible to run
// immediately.
func New(p payload.Payload, maxAttempts int) *Report {
	now := time.Now().UTC()
	return &Report{
		ID:          id.NewReportID(),
		Payload:     p,
		State:       StatePending,
		MaxAttempts: maxAttempts,
		RunAt:       now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Clone returns a copy of the report with its own payload map.
func (r *Report) Clone() *Report {
	cp := *r
	cp.Payload = r.Payload.Clone()
	return &cp
}

// Exhausted reports whether the retry budget is spent. A zero MaxAttempts
// never exhausts.
func (r *Report) Exhausted() bool {
	return r.MaxAttempts > 0 && r.Attempts >= r.MaxAttempts
}
