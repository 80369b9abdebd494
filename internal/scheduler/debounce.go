// Package scheduler coalesces bursts of page-change events into single passes.
package scheduler

import (
	"context"
	"time"

	"notion-trade-sync/internal/logger"
)

// Debounce consumes change events and runs task once no event has arrived
// for window. Every event restarts the quiet period. Tasks run on the calling
// goroutine one at a time; events that arrive while a task runs schedule
// another run after it. Debounce returns when ctx ends or events is closed.
func Debounce(ctx context.Context, events <-chan struct{}, window time.Duration, task func(context.Context)) {
	// go1.23 timers: Stop and Reset never leave a stale tick in C
	timer := time.NewTimer(window)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case _, ok := <-events:
			if !ok {
				return
			}
			timer.Reset(window)

		case <-timer.C:
			logger.Debug(ctx, "Quiet period elapsed, running pass", "window", window)
			task(ctx)
		}
	}
}
