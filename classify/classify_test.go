package classify_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/pushkit/reporting/classify"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want classify.Outcome
	}{
		{"plain error", errors.New("connection refused"), classify.Retry},
		{"timeout-ish", errors.New("context deadline exceeded"), classify.Retry},
		{"unrecoverable", classify.Unrecoverable(errors.New("bad device token")), classify.Terminal},
		{"wrapped unrecoverable", fmt.Errorf("submit: %w", classify.Unrecoverable(errors.New("rejected"))), classify.Terminal},
		{"unrecoverable wrapping wrapped", classify.Unrecoverable(fmt.Errorf("outer: %w", errors.New("inner"))), classify.Terminal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify.Classify(tt.err); got != tt.want {
				t.Errorf("Classify(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsUnrecoverable(t *testing.T) {
	plain := errors.New("boom")
	if classify.IsUnrecoverable(plain) {
		t.Error("plain error should not be unrecoverable")
	}
	if !classify.IsUnrecoverable(classify.Unrecoverable(plain)) {
		t.Error("marked error should be unrecoverable")
	}
	if classify.IsUnrecoverable(nil) {
		t.Error("nil should not be unrecoverable")
	}
}

func TestUnrecoverable_Nil(t *testing.T) {
	if classify.Unrecoverable(nil) != nil {
		t.Error("Unrecoverable(nil) should be nil")
	}
}

func TestUnrecoverable_PreservesCause(t *testing.T) {
	cause := errors.New("bad device token")
	err := classify.Unrecoverable(cause)
	if !errors.Is(err, cause) {
		t.Error("Unrecoverable should wrap its cause")
	}
	if got, want := err.Error(), "unrecoverable: bad device token"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestOutcome_String(t *testing.T) {
	if got := classify.Retry.String(); got != "retry" {
		t.Errorf("Retry.String() = %q, want %q", got, "retry")
	}
	if got := classify.Terminal.String(); got != "terminal" {
		t.Errorf("Terminal.String() = %q, want %q", got, "terminal")
	}
}
