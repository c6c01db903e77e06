// Package classify maps a failed submission onto the binary retry decision
// the host scheduler acts on. The mapping is closed two-way: an error marked
// unrecoverable is terminal, everything else — network failures, timeouts,
// transient server errors, anything unclassified — is retried. Bounding the
// number of attempts is the scheduler's job, not this package's.
package classify

import "errors"

// Outcome is the retry decision for a failed submission.
type Outcome int

const (
	// Retry means the host should re-invoke the report later with the
	// same persisted payload.
	Retry Outcome = iota
	// Terminal means the report is permanently failed and its payload
	// is discarded.
	Terminal
)

// String returns the outcome name for logging.
func (o Outcome) String() string {
	switch o {
	case Retry:
		return "retry"
	case Terminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// unrecoverableError marks a submission failure that retrying cannot fix.
type unrecoverableError struct {
	err error
}

func (e *unrecoverableError) Error() string {
	return "unrecoverable: " + e.err.Error()
}

func (e *unrecoverableError) Unwrap() error {
	return e.err
}

// Unrecoverable marks err as permanently failed. Classify maps errors
// carrying this mark, at any depth of wrapping, to Terminal.
func Unrecoverable(err error) error {
	if err == nil {
		return nil
	}
	return &unrecoverableError{err: err}
}

// IsUnrecoverable reports whether err carries the unrecoverable mark
// anywhere in its chain.
func IsUnrecoverable(err error) bool {
	var ue *unrecoverableError
	return errors.As(err, &ue)
}

// Classify maps a submission failure onto its retry decision.
func Classify(err error) Outcome {
	if IsUnrecoverable(err) {
		return Terminal
	}
	return Retry
}
