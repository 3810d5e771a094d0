package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"leetcode_leaderboard/internal/aggregate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

type recordedCall struct {
	Method string
	Path   string
	Body   map[string]any
}

func fakeSheetsServer(t *testing.T, failFirst int) (*httptest.Server, func() []recordedCall) {
	t.Helper()
	var (
		mu    sync.Mutex
		calls []recordedCall
		fails = failFirst
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)

		mu.Lock()
		calls = append(calls, recordedCall{Method: r.Method, Path: r.URL.Path, Body: body})
		shouldFail := fails > 0
		if shouldFail {
			fails--
		}
		mu.Unlock()

		if shouldFail {
			http.Error(w, `{"error":{"code":400,"message":"bad request"}}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)
	return srv, func() []recordedCall {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedCall(nil), calls...)
	}
}

func newTestPublisher(t *testing.T, srv *httptest.Server) *Publisher {
	t.Helper()
	client, err := NewClient(context.Background(), "",
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)

	p := NewPublisher(client, "sheet-id", "Leaderboard!A1")
	p.retryConfig.BaseDelay = time.Millisecond
	p.retryConfig.MaxDelay = 5 * time.Millisecond
	return p
}

func testRecords() []aggregate.Record {
	return []aggregate.Record{
		{Roll: "1", Name: "Asha", URL: "https://leetcode.com/u/asha", Section: "A",
			Profile: &aggregate.Profile{Username: "asha", TotalSolved: 42, EasySolved: 20, MediumSolved: 15, HardSolved: 7}},
		{Roll: "2", Name: "Ben", URL: "https://example.com", Section: "B", Info: aggregate.NoDataInfo},
	}
}

func TestBuildRows(t *testing.T) {
	rows := BuildRows(testRecords())
	require.Len(t, rows, 3)
	assert.Equal(t, "Rank", rows[0][0])
	assert.Equal(t, []interface{}{1, "1", "Asha", "A", "", "asha", 42, 20, 15, 7, "https://leetcode.com/u/asha"}, rows[1])
	assert.Equal(t, []interface{}{2, "2", "Ben", "B", "", "", 0, 0, 0, 0, "https://example.com"}, rows[2])
}

func TestPublishLeaderboardClearsThenUpdates(t *testing.T) {
	srv, calls := fakeSheetsServer(t, 0)
	p := newTestPublisher(t, srv)

	require.NoError(t, p.PublishLeaderboard(context.Background(), testRecords()))

	got := calls()
	require.Len(t, got, 2)
	assert.Equal(t, http.MethodPost, got[0].Method)
	assert.True(t, strings.HasSuffix(got[0].Path, ":clear"), got[0].Path)
	assert.Contains(t, got[0].Path, "/v4/spreadsheets/sheet-id/values/Leaderboard!A:Z")

	assert.Equal(t, http.MethodPut, got[1].Method)
	assert.Contains(t, got[1].Path, "/v4/spreadsheets/sheet-id/values/Leaderboard!A1")
	values, ok := got[1].Body["values"].([]any)
	require.True(t, ok)
	assert.Len(t, values, 3)
}

func TestPublishLeaderboardRetriesTransientFailures(t *testing.T) {
	srv, calls := fakeSheetsServer(t, 1)
	p := newTestPublisher(t, srv)

	require.NoError(t, p.PublishLeaderboard(context.Background(), testRecords()))
	assert.Len(t, calls(), 3)
}

func TestPublishLeaderboardGivesUp(t *testing.T) {
	srv, _ := fakeSheetsServer(t, 100)
	p := newTestPublisher(t, srv)
	p.retryConfig.MaxRetries = 1

	err := p.PublishLeaderboard(context.Background(), testRecords())
	assert.Error(t, err)
}
