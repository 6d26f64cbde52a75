package remux

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"
)

// Limited bounds how many remuxes of the wrapped Runner run at once and how long
// each may take. Callers waiting for a slot give up when their context ends.
type Limited struct {
	r       Runner
	sem     *semaphore.Weighted
	timeout time.Duration
}

// Limit wraps r. n below 1 means one at a time; a zero timeout means none.
func Limit(r Runner, n int64, timeout time.Duration) *Limited {
	return &Limited{r: r, sem: semaphore.NewWeighted(max(n, 1)), timeout: timeout}
}

func (l *Limited) Remux(ctx context.Context, in, out string) error {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer l.sem.Release(1)

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}
	return l.r.Remux(ctx, in, out)
}
