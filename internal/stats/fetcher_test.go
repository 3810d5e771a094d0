package stats_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"leetcode_leaderboard/internal/leetcode"
	"leetcode_leaderboard/internal/leetcode/leetcodetest"
	"leetcode_leaderboard/internal/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	counts    []leetcode.DifficultyCount
	recent    []leetcode.Submission
	statsErr  error
	recentErr error

	statsCalls  atomic.Int32
	recentCalls atomic.Int32
	lastUser    atomic.Value
	lastLimit   atomic.Int32
}

func (p *stubProvider) GetUserStats(ctx context.Context, username string) ([]leetcode.DifficultyCount, error) {
	p.statsCalls.Add(1)
	p.lastUser.Store(username)
	return p.counts, p.statsErr
}

func (p *stubProvider) GetRecentAcceptedSubmissions(ctx context.Context, username string, limit int) ([]leetcode.Submission, error) {
	p.recentCalls.Add(1)
	p.lastLimit.Store(int32(limit))
	return p.recent, p.recentErr
}

func TestFetchUnrecognizedURLMakesNoCalls(t *testing.T) {
	p := &stubProvider{}
	f := stats.NewFetcher(p, "", 0)

	res := f.Fetch(context.Background(), "https://github.com/asha")

	assert.False(t, res.Recognized)
	assert.Zero(t, p.statsCalls.Load())
	assert.Zero(t, p.recentCalls.Load())
}

func TestFetchExtractsUsername(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://leetcode.com/u/asha/", "asha"},
		{"https://leetcode.com/u/asha", "asha"},
		{"https://leetcode.com/u/asha//", "asha/"},
		{"https://leetcode.com/u/asha/u/ben", "asha"},
		{"https://leetcode.com/u/asha/u/ben/", "asha"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			p := &stubProvider{}
			f := stats.NewFetcher(p, "", 0)
			res := f.Fetch(context.Background(), tt.url)
			assert.Equal(t, tt.want, res.Username)
			assert.Equal(t, tt.want, p.lastUser.Load())
		})
	}
}

func TestFetchNormalizesCounts(t *testing.T) {
	p := &stubProvider{
		counts: []leetcode.DifficultyCount{
			{Difficulty: "Hard", Count: 7},
			{Difficulty: "All", Count: 42},
			{Difficulty: "Insane", Count: 99},
			{Difficulty: "Easy", Count: 20},
			{Difficulty: "Medium", Count: 15},
		},
		recent: []leetcode.Submission{{ID: "1"}},
	}
	f := stats.NewFetcher(p, "", 5)

	res := f.Fetch(context.Background(), "https://leetcode.com/u/asha/")

	require.True(t, res.Recognized)
	assert.Equal(t, stats.Counts{Total: 42, Easy: 20, Medium: 15, Hard: 7}, res.Counts)
	assert.Len(t, res.RecentSubmissions, 1)
	assert.Equal(t, int32(5), p.lastLimit.Load())
}

func TestNormalizeMissingSlotsDefaultToZero(t *testing.T) {
	got := stats.Normalize([]leetcode.DifficultyCount{{Difficulty: "Easy", Count: 3}})
	assert.Equal(t, stats.Counts{Easy: 3}, got)
	assert.Equal(t, stats.Counts{}, stats.Normalize(nil))
}

func TestFetchFailureYieldsZeroedResult(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name string
		p    *stubProvider
	}{
		{"stats call fails", &stubProvider{statsErr: boom, recent: []leetcode.Submission{{ID: "1"}}}},
		{"recent call fails", &stubProvider{recentErr: boom, counts: []leetcode.DifficultyCount{{Difficulty: "All", Count: 9}}}},
		{"both fail", &stubProvider{statsErr: boom, recentErr: boom}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := stats.NewFetcher(tt.p, "", 0)
			res := f.Fetch(context.Background(), "https://leetcode.com/u/asha")

			assert.True(t, res.Recognized)
			assert.Equal(t, stats.Counts{}, res.Counts)
			assert.NotNil(t, res.RecentSubmissions)
			assert.Empty(t, res.RecentSubmissions)
			// Both calls are always attempted.
			assert.Equal(t, int32(1), tt.p.statsCalls.Load())
			assert.Equal(t, int32(1), tt.p.recentCalls.Load())
		})
	}
}

func TestFetchAgainstFakeEndpoint(t *testing.T) {
	srv := leetcodetest.NewServer(map[string]leetcodetest.User{
		"asha": {
			Counts: []leetcode.DifficultyCount{
				{Difficulty: "All", Count: 42},
				{Difficulty: "Easy", Count: 20},
				{Difficulty: "Medium", Count: 15},
				{Difficulty: "Hard", Count: 7},
			},
		},
		"ben": {FailRecent: true},
	})
	defer srv.Close()

	client := leetcode.NewClient(srv.URL, 0)
	f := stats.NewFetcher(client, "", 0)

	asha := f.Fetch(context.Background(), "https://leetcode.com/u/asha/")
	assert.Equal(t, stats.Counts{Total: 42, Easy: 20, Medium: 15, Hard: 7}, asha.Counts)
	assert.NotNil(t, asha.RecentSubmissions)

	ben := f.Fetch(context.Background(), "https://leetcode.com/u/ben/")
	assert.Equal(t, stats.Counts{}, ben.Counts)

	ghost := f.Fetch(context.Background(), "https://leetcode.com/u/ghost/")
	assert.Equal(t, stats.Counts{}, ghost.Counts)

	assert.Equal(t, int64(6), srv.Calls())
}
