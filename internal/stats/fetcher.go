package stats

import (
	"context"
	"strings"

	"leetcode_leaderboard/internal/leetcode"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultProfilePrefix = "https://leetcode.com/u/"
	DefaultRecentLimit   = 5

	profileMarker = "/u/"
)

// Provider is the subset of the LeetCode client the fetcher needs.
type Provider interface {
	GetUserStats(ctx context.Context, username string) ([]leetcode.DifficultyCount, error)
	GetRecentAcceptedSubmissions(ctx context.Context, username string, limit int) ([]leetcode.Submission, error)
}

// Counts holds the four solved-problem slots.
type Counts struct {
	Total  int
	Easy   int
	Medium int
	Hard   int
}

// Result is what the fetcher reports for one profile URL. Recognized is false
// when the URL is not a provider profile and nothing was fetched.
type Result struct {
	Recognized        bool
	Username          string
	Counts            Counts
	RecentSubmissions []leetcode.Submission
}

type Fetcher struct {
	provider    Provider
	prefix      string
	recentLimit int
}

func NewFetcher(provider Provider, prefix string, recentLimit int) *Fetcher {
	if prefix == "" {
		prefix = DefaultProfilePrefix
	}
	if recentLimit <= 0 {
		recentLimit = DefaultRecentLimit
	}
	return &Fetcher{
		provider:    provider,
		prefix:      prefix,
		recentLimit: recentLimit,
	}
}

// Recognizes reports whether url points at a provider profile.
func (f *Fetcher) Recognizes(url string) bool {
	return strings.HasPrefix(url, f.prefix)
}

// Username extracts the profile username from a recognized URL: the text
// after the prefix up to any further "/u/" marker, with one trailing slash
// dropped.
func (f *Fetcher) Username(url string) string {
	username := strings.TrimPrefix(url, f.prefix)
	if before, _, found := strings.Cut(username, profileMarker); found {
		username = before
	}
	return strings.TrimSuffix(username, "/")
}

// Fetch never fails. Unrecognized URLs short-circuit without a network call;
// any provider failure yields zero counts and no submissions.
func (f *Fetcher) Fetch(ctx context.Context, url string) Result {
	if !f.Recognizes(url) {
		log.Debug().Str("url", url).Msg("Not a LeetCode profile URL; skipping API call")
		return Result{}
	}

	username := f.Username(url)
	log.Debug().Str("username", username).Msg("Fetching LeetCode data")

	var (
		counts []leetcode.DifficultyCount
		recent []leetcode.Submission
	)

	// Both calls are attempted even if one fails.
	var g errgroup.Group
	g.Go(func() error {
		var err error
		counts, err = f.provider.GetUserStats(ctx, username)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = f.provider.GetRecentAcceptedSubmissions(ctx, username, f.recentLimit)
		return err
	})

	if err := g.Wait(); err != nil {
		log.Error().
			Err(err).
			Str("username", username).
			Str("url", url).
			Msg("Failed to fetch LeetCode data; using zeroed stats")
		return Result{
			Recognized:        true,
			Username:          username,
			RecentSubmissions: []leetcode.Submission{},
		}
	}

	if len(recent) > f.recentLimit {
		recent = recent[:f.recentLimit]
	}
	if recent == nil {
		recent = []leetcode.Submission{}
	}

	result := Result{
		Recognized:        true,
		Username:          username,
		Counts:            Normalize(counts),
		RecentSubmissions: recent,
	}

	log.Debug().
		Str("username", username).
		Int("total_solved", result.Counts.Total).
		Int("recent_submissions", len(recent)).
		Msg("LeetCode data fetched")
	return result
}

// slots maps a provider difficulty label to its field in Counts.
var slots = map[string]func(*Counts) *int{
	"All":    func(c *Counts) *int { return &c.Total },
	"Easy":   func(c *Counts) *int { return &c.Easy },
	"Medium": func(c *Counts) *int { return &c.Medium },
	"Hard":   func(c *Counts) *int { return &c.Hard },
}

// Normalize folds the provider's per-difficulty list into Counts by label.
// Unknown labels are ignored and missing ones stay zero.
func Normalize(entries []leetcode.DifficultyCount) Counts {
	var c Counts
	for _, e := range entries {
		slot, ok := slots[e.Difficulty]
		if !ok {
			continue
		}
		*slot(&c) = e.Count
	}
	return c
}
