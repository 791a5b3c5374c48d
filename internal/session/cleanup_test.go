package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"wallet-checkout/internal/cartapi"
)

func testPolicy(cfg CleanupConfig) (*CleanupPolicy, *[]time.Duration) {
	p := NewCleanupPolicy(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	var slept []time.Duration
	p.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return p, &slept
}

func TestCleanupPolicy_FirstAttemptImmediate(t *testing.T) {
	p, slept := testPolicy(CleanupConfig{})
	client := &cartapi.Mock{
		RemovePersonalDataFunc: func(_ context.Context, _ string) error { return nil },
	}

	p.Run(context.Background(), client, "c1")

	if len(*slept) != 0 {
		t.Errorf("slept %d times before success, want 0", len(*slept))
	}
}

func TestCleanupPolicy_BackoffSchedule(t *testing.T) {
	p, slept := testPolicy(CleanupConfig{
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    time.Minute,
		MaxAttempts: 4,
	})

	var calls int
	client := &cartapi.Mock{
		RemovePersonalDataFunc: func(_ context.Context, _ string) error {
			calls++
			return errors.New("unavailable")
		},
	}

	p.Run(context.Background(), client, "c1")

	if calls != 4 {
		t.Fatalf("attempts = %d, want 4", calls)
	}
	want := []time.Duration{200 * time.Millisecond, 400 * time.Millisecond, 800 * time.Millisecond}
	if len(*slept) != len(want) {
		t.Fatalf("slept %d times, want %d", len(*slept), len(want))
	}
	for i, d := range want {
		if (*slept)[i] != d {
			t.Errorf("delay[%d] = %v, want %v", i, (*slept)[i], d)
		}
	}
}

func TestCleanupPolicy_DelayCapped(t *testing.T) {
	p, slept := testPolicy(CleanupConfig{
		BaseDelay:   10 * time.Second,
		MaxDelay:    15 * time.Second,
		MaxAttempts: 3,
	})
	client := &cartapi.Mock{
		RemovePersonalDataFunc: func(_ context.Context, _ string) error { return errors.New("unavailable") },
	}

	p.Run(context.Background(), client, "c1")

	for i, d := range *slept {
		if d != 15*time.Second {
			t.Errorf("delay[%d] = %v, want capped at 15s", i, d)
		}
	}
}

func TestCleanupPolicy_SucceedsAfterRetry(t *testing.T) {
	p, _ := testPolicy(CleanupConfig{MaxAttempts: 3})

	var calls int
	client := &cartapi.Mock{
		RemovePersonalDataFunc: func(_ context.Context, _ string) error {
			calls++
			if calls < 3 {
				return errors.New("unavailable")
			}
			return nil
		},
	}

	p.Run(context.Background(), client, "c1")

	if calls != 3 {
		t.Errorf("attempts = %d, want 3", calls)
	}
}

// Exhaustion must not panic or propagate; cleanup is best effort.
func TestCleanupPolicy_ExhaustionSwallowed(t *testing.T) {
	p, _ := testPolicy(CleanupConfig{MaxAttempts: 2})
	client := &cartapi.Mock{
		RemovePersonalDataFunc: func(_ context.Context, _ string) error { return errors.New("always down") },
	}

	p.Run(context.Background(), client, "c1")
}

func TestCleanupPolicy_StopsOnContextCancel(t *testing.T) {
	p := NewCleanupPolicy(CleanupConfig{MaxAttempts: 5}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	p.sleep = func(ctx context.Context, _ time.Duration) error { return context.Canceled }

	var calls int
	client := &cartapi.Mock{
		RemovePersonalDataFunc: func(_ context.Context, _ string) error {
			calls++
			return errors.New("unavailable")
		},
	}

	p.Run(context.Background(), client, "c1")

	if calls != 1 {
		t.Errorf("attempts after canceled sleep = %d, want 1", calls)
	}
}

func TestNewCleanupPolicy_Defaults(t *testing.T) {
	p := NewCleanupPolicy(CleanupConfig{}, nil)
	if p.base != DefaultCleanupBaseDelay {
		t.Errorf("base = %v, want %v", p.base, DefaultCleanupBaseDelay)
	}
	if p.maxDelay != DefaultCleanupMaxDelay {
		t.Errorf("maxDelay = %v, want %v", p.maxDelay, DefaultCleanupMaxDelay)
	}
	if p.maxAttempts != DefaultCleanupMaxAttempts {
		t.Errorf("maxAttempts = %d, want %d", p.maxAttempts, DefaultCleanupMaxAttempts)
	}
}
