package aggregate

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"leetcode_leaderboard/internal/roster"
	"leetcode_leaderboard/internal/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// mapFetcher serves canned totals by URL and counts calls.
type mapFetcher struct {
	mu     sync.Mutex
	totals map[string]int
	calls  map[string]int
}

func newMapFetcher(totals map[string]int) *mapFetcher {
	return &mapFetcher{totals: totals, calls: map[string]int{}}
}

func (f *mapFetcher) Fetch(ctx context.Context, url string) stats.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[url]++
	total, ok := f.totals[url]
	if !ok {
		return stats.Result{}
	}
	return stats.Result{
		Recognized: true,
		Username:   url,
		Counts:     stats.Counts{Total: total},
	}
}

func rowsFor(urls ...string) []roster.Row {
	rows := make([]roster.Row, len(urls))
	for i, u := range urls {
		rows[i] = roster.Row{Roll: u, Name: "name-" + u, URL: u, Section: "A"}
	}
	return rows
}

func TestRunPreservesCardinalityAndRanks(t *testing.T) {
	f := newMapFetcher(map[string]int{"a": 5, "b": 50, "c": 0, "d": 12})
	rows := rowsFor("a", "b", "c", "d", "e")

	records := New(f).Run(context.Background(), rows)

	require.Len(t, records, len(rows))
	for i := 1; i < len(records); i++ {
		assert.GreaterOrEqual(t, records[i-1].Total(), records[i].Total())
	}
	assert.Equal(t, "b", records[0].Roll)
	assert.Equal(t, "d", records[1].Roll)
	assert.Equal(t, "a", records[2].Roll)

	// The last two tie at zero; their order is settlement order, so only
	// membership is checked.
	tail := []string{records[3].Roll, records[4].Roll}
	assert.ElementsMatch(t, []string{"c", "e"}, tail)

	for _, u := range []string{"a", "b", "c", "d", "e"} {
		assert.Equal(t, 1, f.calls[u], "url %s", u)
	}
}

func TestRunUnrecognizedURLGetsInfoMarker(t *testing.T) {
	f := newMapFetcher(map[string]int{"https://leetcode.com/u/x": 42})
	rows := []roster.Row{
		{Roll: "2", Name: "Ben", URL: "https://example.com/ben", Section: "B"},
		{Roll: "1", Name: "Asha", URL: "https://leetcode.com/u/x", Section: "A"},
	}

	records := New(f).Run(context.Background(), rows)

	require.Len(t, records, 2)
	assert.Equal(t, 42, records[0].Total())
	assert.Empty(t, records[0].Info)
	assert.Nil(t, records[1].Profile)
	assert.Equal(t, NoDataInfo, records[1].Info)
	assert.Equal(t, 0, records[1].Total())
}

func TestRunEmptyRoster(t *testing.T) {
	records := New(newMapFetcher(nil)).Run(context.Background(), nil)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestRankIsStableForTies(t *testing.T) {
	withTotal := func(roll string, total int) Record {
		return Record{Roll: roll, Profile: &Profile{TotalSolved: total}}
	}
	records := []Record{
		withTotal("p", 3),
		{Roll: "q", Info: NoDataInfo},
		withTotal("r", 9),
		withTotal("s", 3),
		withTotal("t", 0),
		withTotal("u", 3),
	}

	Rank(records)

	var got []string
	for _, r := range records {
		got = append(got, r.Roll)
	}
	assert.Equal(t, []string{"r", "p", "s", "u", "q", "t"}, got)
}

func TestRecordJSONShape(t *testing.T) {
	withProfile := NewRecord(
		roster.Row{Roll: "1", Name: "Asha", URL: "https://leetcode.com/u/asha", Section: "A", Day: "Mon"},
		stats.Result{Recognized: true, Username: "asha", Counts: stats.Counts{Total: 3, Easy: 1, Medium: 1, Hard: 1}},
	)
	data, err := json.Marshal(withProfile)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"roll":"1","name":"Asha","url":"https://leetcode.com/u/asha","section":"A","day":"Mon",
		"username":"asha","totalSolved":3,"easySolved":1,"mediumSolved":1,"hardSolved":1,
		"recentSubmissions":[]
	}`, string(data))

	noData := NewRecord(roster.Row{Roll: "2", Name: "Ben", URL: "x", Section: "B"}, stats.Result{})
	data, err = json.Marshal(noData)
	require.NoError(t, err)
	assert.JSONEq(t, `{"roll":"2","name":"Ben","url":"x","section":"B","info":"No LeetCode data available"}`, string(data))

	var back Record
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Nil(t, back.Profile)
	assert.Equal(t, NoDataInfo, back.Info)
}
