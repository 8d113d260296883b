package preview

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/mdbear/internal/logfields"
)

// RebuildFunc runs one build for the event that triggered it.
type RebuildFunc func(ctx context.Context, trigger Event) error

// RunRebuilds consumes events and runs rebuild for them, one at a time, until
// ctx is done or events is closed.
//
// With a zero window every event yields exactly one rebuild. A positive window
// coalesces events arriving before the stream has been quiet for that long into
// a single rebuild triggered by the last of them. Failures are logged and the
// loop keeps going.
func RunRebuilds(ctx context.Context, events <-chan Event, window time.Duration, rebuild RebuildFunc, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	for {
		var ev Event
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			ev = e
		}

		merged := 1
		if window > 0 {
			var open bool
			ev, merged, open = coalesce(ctx, events, window, ev)
			if !open {
				return
			}
		}

		logger.Info("Change detected; rebuilding site", logfields.Path(ev.Path), logfields.Count(merged))
		// An in-flight build is never interrupted by shutdown.
		if err := rebuild(context.WithoutCancel(ctx), ev); err != nil {
			logger.Warn("Rebuild failed", logfields.Error(err))
		}
	}
}

// coalesce gathers events until none arrives for window. open is false when
// ctx ended or events closed while waiting; the pending change is dropped then.
func coalesce(ctx context.Context, events <-chan Event, window time.Duration, first Event) (last Event, count int, open bool) {
	last, count = first, 1
	timer := time.NewTimer(window)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return last, count, false
		case e, ok := <-events:
			if !ok {
				return last, count, false
			}
			last = e
			count++
			timer.Reset(window)
		case <-timer.C:
			return last, count, true
		}
	}
}
