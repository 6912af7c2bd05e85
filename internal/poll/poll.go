// Package poll runs a function on a fixed interval.
package poll

import (
	"context"
	"time"
)

// Every calls fn immediately and then once per interval until ctx is
// cancelled. Calls never overlap; a slow fn delays the next tick.
func Every(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	if ctx.Err() != nil {
		return
	}
	fn(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}
