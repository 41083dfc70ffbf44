package portal

import (
	"context"
	"errors"
	"time"
)

// ErrWaitTimeout is returned when a polled condition never became true
// before its deadline.
var ErrWaitTimeout = errors.New("condition not met before timeout")

// PollUntil checks cond at the given interval until it reports true, the
// timeout elapses, or the context is cancelled. Every dependent-field wait
// in the workflow (dropdown repopulation, mode indicator, download
// completion) goes through this single primitive.
//
// A non-nil error from cond aborts the wait immediately; cond returning
// (false, nil) just means "not yet".
func PollUntil(ctx context.Context, interval, timeout time.Duration, cond func(context.Context) (bool, error)) error {
	deadline := time.Now().Add(timeout)

	for {
		ok, err := cond(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			return ErrWaitTimeout
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}
