package sheets

import (
	"context"
	"strings"

	"leetcode_leaderboard/internal/aggregate"
	"leetcode_leaderboard/internal/config"
	"leetcode_leaderboard/internal/retry"

	"github.com/rs/zerolog/log"
)

// Publisher mirrors the ranked leaderboard into one sheet tab.
type Publisher struct {
	client        *Client
	spreadsheetID string
	sheetName     string
	retryConfig   retry.Config
}

// NewPublisher targets the tab named by sheetRange ("Leaderboard!A1" and
// "Leaderboard" both select the Leaderboard tab).
func NewPublisher(client *Client, spreadsheetID, sheetRange string) *Publisher {
	return &Publisher{
		client:        client,
		spreadsheetID: spreadsheetID,
		sheetName:     strings.Split(sheetRange, "!")[0],
		retryConfig:   config.DefaultResilienceConfig.SheetWrite,
	}
}

// PublishLeaderboard replaces the tab's contents with a header row and one
// row per record, in ranked order.
func (p *Publisher) PublishLeaderboard(ctx context.Context, records []aggregate.Record) error {
	rows := BuildRows(records)
	log.Debug().
		Str("sheet", p.sheetName).
		Int("rows", len(rows)).
		Msg("Publishing leaderboard to sheet")

	clearRange := p.sheetName + "!A:Z"
	_, err := retry.WithRetry(ctx, p.retryConfig, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, p.client.ClearRange(ctx, p.spreadsheetID, clearRange)
	})
	if err != nil {
		return err
	}

	_, err = retry.WithRetry(ctx, p.retryConfig, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, p.client.UpdateRange(ctx, p.spreadsheetID, p.sheetName+"!A1", rows)
	})
	if err != nil {
		return err
	}

	log.Info().
		Str("sheet", p.sheetName).
		Int("records", len(records)).
		Msg("Sheet update complete")
	return nil
}

// BuildRows lays records out as sheet rows under a header row. Missing
// counts are written as 0 so the columns stay numeric.
func BuildRows(records []aggregate.Record) [][]interface{} {
	rows := make([][]interface{}, 0, len(records)+1)
	rows = append(rows, []interface{}{"Rank", "Roll Number", "Name", "Section", "Day", "Username", "Total Solved", "Easy", "Medium", "Hard", "LeetCode URL"})
	for i, r := range records {
		username := ""
		if r.Profile != nil {
			username = r.Profile.Username
		}
		rows = append(rows, []interface{}{
			i + 1, r.Roll, r.Name, r.Section, r.Day, username,
			r.Total(), r.Easy(), r.Medium(), r.Hard(), r.URL,
		})
	}
	return rows
}
