// Package leetcodetest provides an in-process fake of the LeetCode GraphQL
// endpoint for tests.
package leetcodetest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"

	"leetcode_leaderboard/internal/leetcode"
)

// User is the canned data served for one username.
type User struct {
	Counts      []leetcode.DifficultyCount
	Submissions []leetcode.Submission
	// FailStats and FailRecent make the matching query return HTTP 500.
	FailStats  bool
	FailRecent bool
}

type Server struct {
	*httptest.Server

	mu    sync.Mutex
	users map[string]User
	calls atomic.Int64
	// Hook, when set, runs before each request is answered.
	Hook func(username string)
}

func NewServer(users map[string]User) *Server {
	s := &Server{users: users}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// Calls returns the number of GraphQL requests received.
func (s *Server) Calls() int64 {
	return s.calls.Load()
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.calls.Add(1)

	var req struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	username, _ := req.Variables["username"].(string)
	if s.Hook != nil {
		s.Hook(username)
	}

	s.mu.Lock()
	user, ok := s.users[username]
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.Contains(req.Query, "matchedUser"):
		if user.FailStats {
			http.Error(w, "upstream failure", http.StatusInternalServerError)
			return
		}
		if !ok {
			writeJSON(w, map[string]any{
				"data":   map[string]any{"matchedUser": nil},
				"errors": []map[string]string{{"message": "That user does not exist."}},
			})
			return
		}
		writeJSON(w, map[string]any{
			"data": map[string]any{
				"matchedUser": map[string]any{
					"username":    username,
					"submitStats": map[string]any{"acSubmissionNum": user.Counts},
				},
			},
		})
	case strings.Contains(req.Query, "recentAcSubmissionList"):
		if user.FailRecent {
			http.Error(w, "upstream failure", http.StatusInternalServerError)
			return
		}
		subs := user.Submissions
		if limit, ok := req.Variables["limit"].(float64); ok && int(limit) < len(subs) {
			subs = subs[:int(limit)]
		}
		writeJSON(w, map[string]any{
			"data": map[string]any{"recentAcSubmissionList": subs},
		})
	default:
		http.Error(w, "unknown query", http.StatusBadRequest)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	_ = json.NewEncoder(w).Encode(v)
}
