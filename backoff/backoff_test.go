package backoff_test

import (
	"testing"
	"time"

	"github.com/pushkit/reporting/backoff"
)

func TestConstant(t *testing.T) {
	c := backoff.NewConstant(5 * time.Second)
	for _, attempt := range []int{1, 2, 10} {
		if got := c.Delay(attempt); got != 5*time.Second {
			t.Errorf("Delay(%d) = %v, want 5s", attempt, got)
		}
	}
}

func TestExponential(t *testing.T) {
	e := backoff.NewExponential(time.Second, time.Minute)

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{6, 32 * time.Second},
		{7, time.Minute},  // capped
		{20, time.Minute}, // capped
	}
	for _, tt := range tests {
		if got := e.Delay(tt.attempt); got != tt.want {
			t.Errorf("Delay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestExponential_NoCap(t *testing.T) {
	e := backoff.NewExponential(time.Second, 0)
	if got := e.Delay(10); got != 512*time.Second {
		t.Errorf("Delay(10) = %v, want 512s", got)
	}
}

func TestExponentialWithJitter_Bounds(t *testing.T) {
	e := backoff.NewExponentialWithJitter(time.Second, 30*time.Second)

	for attempt := 1; attempt <= 10; attempt++ {
		for range 50 {
			d := e.Delay(attempt)
			if d < 0 {
				t.Fatalf("Delay(%d) = %v, negative", attempt, d)
			}
			if d > 30*time.Second {
				t.Fatalf("Delay(%d) = %v, above cap", attempt, d)
			}
		}
	}
}

func TestDefaultStrategy(t *testing.T) {
	s := backoff.DefaultStrategy()
	if d := s.Delay(1); d < 0 || d > 30*time.Second {
		t.Errorf("Delay(1) = %v, want within [0, 30s]", d)
	}
	if d := s.Delay(100); d > 10*time.Minute {
		t.Errorf("Delay(100) = %v, want at most 10m", d)
	}
}
