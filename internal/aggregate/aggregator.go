package aggregate

import (
	"context"
	"sort"
	"sync"

	"leetcode_leaderboard/internal/roster"
	"leetcode_leaderboard/internal/stats"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ProfileFetcher resolves a profile URL to stats. Implementations must not
// fail; errors are folded into a zeroed result.
type ProfileFetcher interface {
	Fetch(ctx context.Context, url string) stats.Result
}

type Aggregator struct {
	fetcher ProfileFetcher
}

func New(fetcher ProfileFetcher) *Aggregator {
	return &Aggregator{fetcher: fetcher}
}

// Run fetches every row concurrently and returns the ranked records.
//
// There is no concurrency cap: a roster of N students has N fetches in
// flight at once. Records are collected in the order fetches settle, so
// records with equal totals keep settlement order after ranking, not roster
// order.
func (a *Aggregator) Run(ctx context.Context, rows []roster.Row) []Record {
	log.Debug().Int("rows", len(rows)).Msg("Starting fetch fan-out")

	var (
		mu      sync.Mutex
		records = make([]Record, 0, len(rows))
		g       errgroup.Group
	)

	for _, row := range rows {
		g.Go(func() error {
			log.Debug().
				Str("roll", row.Roll).
				Str("name", row.Name).
				Str("section", row.Section).
				Str("day", row.Day).
				Msg("Processing student")

			rec := NewRecord(row, a.fetcher.Fetch(ctx, row.URL))
			if rec.Profile == nil {
				log.Info().Str("roll", row.Roll).Str("name", row.Name).Msg("URL is not a LeetCode profile; skipped API call")
			}

			mu.Lock()
			records = append(records, rec)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	Rank(records)

	log.Debug().Int("records", len(records)).Msg("Finished fetch fan-out")
	return records
}

// Rank sorts records by total solved, highest first. Equal totals keep their
// current relative order.
func Rank(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Total() > records[j].Total()
	})
}
