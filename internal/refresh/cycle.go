package refresh

import (
	"context"
	"fmt"
	"time"

	"leetcode_leaderboard/internal/aggregate"
	"leetcode_leaderboard/internal/notifications"
	"leetcode_leaderboard/internal/roster"
	"leetcode_leaderboard/internal/snapshot"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// leaderCount is how many top records go into the success notification.
const leaderCount = 3

type Aggregator interface {
	Run(ctx context.Context, rows []roster.Row) []aggregate.Record
}

// Publisher mirrors a written snapshot somewhere else. Failures are logged only.
type Publisher interface {
	PublishLeaderboard(ctx context.Context, records []aggregate.Record) error
}

type Notifier interface {
	NotifyRefreshSucceeded(ctx context.Context, summary notifications.RefreshSummary)
	NotifyRefreshFailed(ctx context.Context, cycleID string, cause error)
}

// APICounter reports provider calls so each cycle can log its cost.
type APICounter interface {
	GetAPICallCount() int64
}

// Cycle is one load, fetch, rank and persist pass over the roster.
type Cycle struct {
	RosterDir    string
	SnapshotPath string
	Aggregator   Aggregator
	Publishers   []Publisher
	Notifier     Notifier
	Counter      APICounter
}

// Run executes a single refresh. On error the previous snapshot is left
// untouched.
func (c *Cycle) Run(ctx context.Context) error {
	cycleID := uuid.NewString()
	logger := log.With().Str("cycle_id", cycleID).Logger()
	started := time.Now()

	var callsBefore int64
	if c.Counter != nil {
		callsBefore = c.Counter.GetAPICallCount()
	}

	logger.Info().Str("roster_dir", c.RosterDir).Msg("Starting refresh cycle")

	rows, err := roster.Load(c.RosterDir)
	if err != nil {
		return c.fail(ctx, cycleID, fmt.Errorf("failed to load roster: %w", err))
	}

	records := c.Aggregator.Run(ctx, rows)

	// Fetches cut short by cancellation come back zeroed; writing them would
	// replace a good leaderboard with an empty one.
	if err := ctx.Err(); err != nil {
		return c.fail(ctx, cycleID, fmt.Errorf("refresh interrupted: %w", err))
	}

	if err := snapshot.Write(c.SnapshotPath, records); err != nil {
		return c.fail(ctx, cycleID, err)
	}

	for _, p := range c.Publishers {
		if err := p.PublishLeaderboard(ctx, records); err != nil {
			logger.Error().Err(err).Msg("Failed to publish leaderboard")
		}
	}

	summary := Summarize(cycleID, records, time.Since(started))

	event := logger.Info().
		Int("records", summary.Records).
		Int("no_data", summary.NoData).
		Dur("duration", summary.Duration)
	if c.Counter != nil {
		event = event.Int64("api_calls", c.Counter.GetAPICallCount()-callsBefore)
	}
	event.Msg("Refresh cycle complete")

	if c.Notifier != nil {
		c.Notifier.NotifyRefreshSucceeded(ctx, summary)
	}
	return nil
}

func (c *Cycle) fail(ctx context.Context, cycleID string, err error) error {
	log.Error().Err(err).Str("cycle_id", cycleID).Msg("Refresh cycle failed; keeping previous snapshot")
	if c.Notifier != nil {
		c.Notifier.NotifyRefreshFailed(context.WithoutCancel(ctx), cycleID, err)
	}
	return fmt.Errorf("refresh cycle %s: %w", cycleID, err)
}

// Summarize builds the notification summary for a ranked record list.
func Summarize(cycleID string, records []aggregate.Record, elapsed time.Duration) notifications.RefreshSummary {
	summary := notifications.RefreshSummary{
		CycleID:  cycleID,
		Records:  len(records),
		Duration: elapsed,
	}
	for _, r := range records {
		if r.Profile == nil {
			summary.NoData++
		}
	}
	for i := 0; i < len(records) && i < leaderCount; i++ {
		summary.Leaders = append(summary.Leaders, notifications.Leader{
			Name:        records[i].Name,
			TotalSolved: records[i].Total(),
		})
	}
	return summary
}
