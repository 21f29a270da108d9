package util

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"
)

func TestRetrySucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Retry returned error: %v", err)
	}
	if calls != 3 {
		t.Errorf("fn called %d times, want 3", calls)
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	want := errors.New("permanent")
	calls := 0
	err := Retry(context.Background(), 2, time.Millisecond, func() error {
		calls++
		return want
	})
	if !errors.Is(err, want) {
		t.Errorf("Retry error = %v, want %v", err, want)
	}
	if calls != 2 {
		t.Errorf("fn called %d times, want 2", calls)
	}
}

func TestRetryRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, 5, time.Second, func() error {
		return errors.New("always")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Retry error = %v, want context.Canceled", err)
	}
}

func TestRetryJitterBounded(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	start := time.Now()
	calls := 0
	err := RetryJitter(context.Background(), 3, 5*time.Millisecond, 10*time.Millisecond, rng, func() error {
		calls++
		return errors.New("nope")
	})
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if calls != 3 {
		t.Errorf("fn called %d times, want 3", calls)
	}
	// Two sleeps, each bounded by the (clamped) delay.
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("jittered retries took too long: %v", elapsed)
	}
}

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(60) // 1/sec, starts with one token
	if !rl.Allow() {
		t.Fatal("first Allow should succeed")
	}
	if rl.Allow() {
		t.Error("second immediate Allow should fail")
	}
}

func TestSessionKey(t *testing.T) {
	a := time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)
	b := time.Date(2024, 3, 5, 20, 0, 0, 0, time.UTC)
	c := time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)

	if !SameSession(a, b) {
		t.Error("same UTC date should be same session")
	}
	if SameSession(b, c) {
		t.Error("different UTC dates must be different sessions")
	}
	if got := SessionKey(a); got != "2024-03-05" {
		t.Errorf("SessionKey = %q, want %q", got, "2024-03-05")
	}
}
