// Package delay picks and waits out randomized pauses between actions.
package delay

import (
	"context"
	"math/rand"
	"time"
)

// Random returns a uniformly distributed duration in [minSec, maxSec]
// seconds with millisecond resolution. Swapped bounds are reordered.
func Random(minSec, maxSec float64, rng *rand.Rand) time.Duration {
	if minSec < 0 {
		minSec = 0
	}
	if maxSec < minSec {
		minSec, maxSec = maxSec, minSec
		if minSec < 0 {
			minSec = 0
		}
	}

	lo := time.Duration(minSec * float64(time.Second))
	hi := time.Duration(maxSec * float64(time.Second))
	if hi <= lo {
		return lo
	}

	span := int64((hi - lo) / time.Millisecond)
	var n int64
	if rng != nil {
		n = rng.Int63n(span + 1)
	} else {
		n = rand.Int63n(span + 1)
	}
	return lo + time.Duration(n)*time.Millisecond
}

// Sleep waits for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
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

// Sleeper abstracts the wait so callers can be tested without real time.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// ContextSleeper sleeps on the wall clock.
type ContextSleeper struct{}

func (ContextSleeper) Sleep(ctx context.Context, d time.Duration) error {
	return Sleep(ctx, d)
}
