package screening

import (
	"context"
	"time"
)

// WallSleeper waits on the real clock
type WallSleeper struct{}

// Sleep blocks for d; it returns ctx.Err() if ctx ends first.
// Non-positive durations return immediately.
func (WallSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
