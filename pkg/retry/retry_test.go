package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	policy := Policy{
		MaxAttempts: 3,
		BaseDelay:   10 * time.Millisecond,
		MaxDelay:    time.Second,
		Jitter:      0, // deterministic delays for the test
	}

	var attemptTimes []time.Time
	calls := 0
	err := Do(context.Background(), nil, "test", policy, func() error {
		attemptTimes = append(attemptTimes, time.Now())
		calls++
		if calls < 3 {
			return fmt.Errorf("backend returned status 503")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", calls)
	}

	gap1 := attemptTimes[1].Sub(attemptTimes[0])
	gap2 := attemptTimes[2].Sub(attemptTimes[1])
	if gap2 <= gap1 {
		t.Fatalf("expected increasing backoff, got %v then %v", gap1, gap2)
	}
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	policy := Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 10 * time.Millisecond}

	calls := 0
	err := Do(context.Background(), nil, "test", policy, func() error {
		calls++
		return fmt.Errorf("backend returned status 500")
	})
	if err == nil {
		t.Fatalf("expected terminal error")
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestDo_PermanentErrorStopsImmediately(t *testing.T) {
	policy := Policy{MaxAttempts: 5, BaseDelay: time.Millisecond, MaxDelay: 10 * time.Millisecond}

	sentinel := errors.New("backend returned status 400")
	calls := 0
	err := Do(context.Background(), nil, "test", policy, func() error {
		calls++
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single attempt for a non-retryable error, got %d", calls)
	}
}

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		err       error
		retryable bool
	}{
		{fmt.Errorf("backend returned status 503"), true},
		{fmt.Errorf("backend returned status 429"), true},
		{fmt.Errorf("backend returned status 408"), true},
		{fmt.Errorf("connection reset by peer"), true},
		{fmt.Errorf("backend returned status 400"), false},
		{fmt.Errorf("backend returned status 404"), false},
		{nil, false},
	}
	for _, tc := range cases {
		if got := IsRetryable(tc.err); got != tc.retryable {
			t.Fatalf("IsRetryable(%v) = %v, want %v", tc.err, got, tc.retryable)
		}
	}
}
