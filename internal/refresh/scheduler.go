package refresh

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type Runner interface {
	Run(ctx context.Context) error
}

// Scheduler runs a cycle immediately and then once per interval. Each tick
// starts its cycle in its own goroutine, so a slow cycle does not delay the
// next one and two cycles may overlap.
type Scheduler struct {
	runner   Runner
	interval time.Duration
	wg       sync.WaitGroup
}

func NewScheduler(runner Runner, interval time.Duration) *Scheduler {
	return &Scheduler{runner: runner, interval: interval}
}

// Start blocks until ctx is cancelled, then waits for in-flight cycles.
func (s *Scheduler) Start(ctx context.Context) {
	log.Info().Dur("interval", s.interval).Msg("Starting refresh scheduler. Running immediately and then every interval...")

	s.launch(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.launch(ctx)
		case <-ctx.Done():
			log.Info().Msg("Refresh scheduler stopping; waiting for in-flight cycles")
			s.wg.Wait()
			return
		}
	}
}

func (s *Scheduler) launch(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		// Errors are already logged and notified by the cycle.
		_ = s.runner.Run(ctx)
	}()
}
