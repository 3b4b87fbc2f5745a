package walletsync

import (
	"context"
	"sync"
	"time"

	"github.com/gabapcia/walletsync/internal/pkg/logger"
)

// watchOverrun starts an advisory overrun detector for one apply or rollback
// call. The threshold is half the current epoch's slot duration: a listener
// callback that runs longer than that risks lagging behind block production.
//
// The watchdog only observes. It warns when the threshold passes, keeps
// re-warning while the call is still in flight, and never cancels or
// interrupts the wrapped work. The returned stop function must be called
// when the call completes; calling it more than once is safe.
func (s *service) watchOverrun(ctx context.Context, phase string) func() {
	slotDuration, err := s.slotting.CurrentEpochSlotDuration(ctx)
	if err != nil {
		logger.Warn(ctx, "overrun watchdog disabled, slot duration unavailable",
			"sync.phase", phase,
			"error", err,
		)
		return func() {}
	}

	threshold := slotDuration / 2
	if threshold <= 0 {
		return func() {}
	}

	var (
		done    = make(chan struct{})
		once    sync.Once
		started = time.Now()
	)

	go func() {
		ticker := time.NewTicker(threshold)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				logger.Warn(ctx, "block synchronization is overrunning",
					"sync.phase", phase,
					"sync.elapsed", time.Since(started),
					"sync.threshold", threshold,
				)
			}
		}
	}()

	return func() {
		once.Do(func() { close(done) })
	}
}
