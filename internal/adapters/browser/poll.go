package browser

import (
	"context"
	"time"
)

// PollInterval is how often WaitVisible and WaitGone re-check the page.
var PollInterval = 100 * time.Millisecond

// poll calls cond until it returns true, the timeout elapses or ctx ends.
// Errors from cond count as "not yet".
func poll(ctx context.Context, timeout time.Duration, cond func(ctx context.Context) (bool, error)) bool {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	for {
		if ok, err := cond(ctx); err == nil && ok {
			return true
		}
		if !time.Now().Before(deadline) {
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}
	}
}
