package main

import (
	"context"

	"leetcode_leaderboard/internal/app"
	"leetcode_leaderboard/internal/refresh"

	"github.com/rs/zerolog/log"
)

// newCycle wires the refresh cycle from configuration. The sheet mirror is
// only attached when a spreadsheet is configured.
func newCycle(ctx context.Context, cfg app.Config) *refresh.Cycle {
	log.Debug().Msg("Wiring refresh cycle")

	leetcodeClient, aggregator := app.InitializeClients(cfg)

	cycle := &refresh.Cycle{
		RosterDir:    cfg.RosterDir,
		SnapshotPath: cfg.SnapshotPath,
		Aggregator:   aggregator,
		Notifier:     app.InitializeNotificationClient(cfg),
		Counter:      leetcodeClient,
	}
	if publisher := app.InitializeSheetsPublisher(ctx, cfg); publisher != nil {
		cycle.Publishers = append(cycle.Publishers, publisher)
	}

	return cycle
}
