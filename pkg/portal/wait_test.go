package portal

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPollUntilImmediate(t *testing.T) {
	err := PollUntil(context.Background(), time.Millisecond, time.Second, func(context.Context) (bool, error) {
		return true, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPollUntilEventually(t *testing.T) {
	calls := 0
	err := PollUntil(context.Background(), time.Millisecond, time.Second, func(context.Context) (bool, error) {
		calls++
		return calls >= 3, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 polls, got %d", calls)
	}
}

func TestPollUntilTimeout(t *testing.T) {
	err := PollUntil(context.Background(), time.Millisecond, 20*time.Millisecond, func(context.Context) (bool, error) {
		return false, nil
	})
	if !errors.Is(err, ErrWaitTimeout) {
		t.Fatalf("expected ErrWaitTimeout, got %v", err)
	}
}

func TestPollUntilCondErrorAborts(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := PollUntil(context.Background(), time.Millisecond, time.Second, func(context.Context) (bool, error) {
		calls++
		return false, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected cond error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single poll, got %d", calls)
	}
}

func TestPollUntilContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := PollUntil(ctx, 10*time.Millisecond, time.Second, func(context.Context) (bool, error) {
		return false, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
