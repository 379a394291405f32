package timex

import (
	"context"
	"time"
)

// Sleep suspends for d or until ctx is done, whichever comes first.
// A non-positive d only checks ctx.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// WaitFunc is the shape of Sleep; services take one so tests can observe or
// skip their delays.
type WaitFunc func(ctx context.Context, d time.Duration) error
