package utils

import (
	"context"
	"time"
)

// SleepFunc pauses for d or until ctx is done. Components take one of these
// so that tests can run without real delays.
type SleepFunc func(ctx context.Context, d time.Duration) error

func SleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
