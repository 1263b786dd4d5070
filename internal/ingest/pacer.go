package ingest

import (
	"context"
	"math/rand/v2"
	"time"
)

// Pacer waits between pipeline steps.
type Pacer interface {
	// Pause blocks for a duration in [lo, hi] or until ctx is done.
	Pause(ctx context.Context, lo, hi time.Duration) error
}

// RandomPacer sleeps for a uniformly random duration.
type RandomPacer struct{}

func (RandomPacer) Pause(ctx context.Context, lo, hi time.Duration) error {
	d := lo
	if hi > lo {
		d += rand.N(hi - lo + 1)
	}
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
