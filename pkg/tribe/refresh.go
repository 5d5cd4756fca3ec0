package tribe

import (
	"context"
	"time"
)

// DefaultRefreshDelay is the gap between the immediate and the delayed
// refresh after a confirmed mutation.
const DefaultRefreshDelay = time.Second

// Refresher runs a refresh immediately and once more after Delay, to
// tolerate read-after-write lag in the data source.
type Refresher struct {
	Delay time.Duration
}

// Run calls fn synchronously, then schedules the delayed call. The
// returned channel is closed once the delayed call finished or was
// abandoned because ctx ended.
func (r Refresher) Run(ctx context.Context, fn func(context.Context)) <-chan struct{} {
	done := make(chan struct{})
	if fn == nil {
		close(done)
		return done
	}
	fn(ctx)

	delay := r.Delay
	if delay <= 0 {
		delay = DefaultRefreshDelay
	}
	go func() {
		defer close(done)
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
		case <-timer.C:
			fn(ctx)
		}
	}()
	return done
}
