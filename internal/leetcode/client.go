package leetcode

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const DefaultEndpoint = "https://leetcode.com/graphql"

// ErrUserNotFound is returned when the provider has no matching user.
var ErrUserNotFound = errors.New("leetcode user not found")

const userStatsQuery = `
  query userStats($username: String!) {
    matchedUser(username: $username) {
      username
      submitStats: submitStatsGlobal {
        acSubmissionNum {
          difficulty
          count
          submissions
        }
      }
    }
  }
`

const recentSubmissionsQuery = `
  query recentAcSubmissions($username: String!, $limit: Int!) {
    recentAcSubmissionList(username: $username, limit: $limit) {
      id
      title
      titleSlug
      timestamp
      statusDisplay
      runtime
      memory
      lang
    }
  }
`

type Client struct {
	endpoint     string
	client       *http.Client
	apiCallCount int64
	apiCallMutex sync.Mutex
}

// DifficultyCount is one entry of the provider's acSubmissionNum list.
type DifficultyCount struct {
	Difficulty  string `json:"difficulty"`
	Count       int    `json:"count"`
	Submissions int    `json:"submissions"`
}

// Submission is a recent accepted submission as reported by the provider.
type Submission struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	TitleSlug     string `json:"titleSlug"`
	Timestamp     string `json:"timestamp"`
	StatusDisplay string `json:"statusDisplay"`
	Runtime       string `json:"runtime"`
	Memory        string `json:"memory"`
	Lang          string `json:"lang"`
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

type userStatsData struct {
	MatchedUser *struct {
		Username    string `json:"username"`
		SubmitStats *struct {
			AcSubmissionNum []DifficultyCount `json:"acSubmissionNum"`
		} `json:"submitStats"`
	} `json:"matchedUser"`
}

type recentSubmissionsData struct {
	RecentAcSubmissionList []Submission `json:"recentAcSubmissionList"`
}

// NewClient returns a client for the GraphQL endpoint. A zero timeout means
// requests are bounded only by their context.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// IncrementAPICall safely increments the API call counter
func (c *Client) IncrementAPICall() {
	c.apiCallMutex.Lock()
	c.apiCallCount++
	c.apiCallMutex.Unlock()
}

// GetAPICallCount returns the current API call count
func (c *Client) GetAPICallCount() int64 {
	c.apiCallMutex.Lock()
	defer c.apiCallMutex.Unlock()
	return c.apiCallCount
}

// GetUserStats returns the accepted-problem counts by difficulty for username.
func (c *Client) GetUserStats(ctx context.Context, username string) ([]DifficultyCount, error) {
	var data userStatsData
	err := c.do(ctx, userStatsQuery, map[string]any{"username": username}, &data)
	if err != nil {
		return nil, err
	}
	if data.MatchedUser == nil {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, username)
	}
	if data.MatchedUser.SubmitStats == nil {
		return nil, fmt.Errorf("missing submitStats for %s", username)
	}
	return data.MatchedUser.SubmitStats.AcSubmissionNum, nil
}

// GetRecentAcceptedSubmissions returns up to limit recent accepted submissions,
// most recent first. A null list from the provider is returned as empty.
func (c *Client) GetRecentAcceptedSubmissions(ctx context.Context, username string, limit int) ([]Submission, error) {
	var data recentSubmissionsData
	err := c.do(ctx, recentSubmissionsQuery, map[string]any{"username": username, "limit": limit}, &data)
	if err != nil {
		return nil, err
	}
	if data.RecentAcSubmissionList == nil {
		return []Submission{}, nil
	}
	return data.RecentAcSubmissionList, nil
}

func (c *Client) do(ctx context.Context, query string, variables map[string]any, out any) error {
	payload, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Referer", "https://leetcode.com")

	// Increment API call counter
	c.IncrementAPICall()

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var gqlResp graphQLResponse
	if err := json.NewDecoder(resp.Body).Decode(&gqlResp); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if len(gqlResp.Errors) > 0 {
		messages := make([]string, 0, len(gqlResp.Errors))
		for _, e := range gqlResp.Errors {
			messages = append(messages, e.Message)
		}
		log.Debug().Strs("errors", messages).Msg("GraphQL errors in response")
		return fmt.Errorf("graphql error: %s", strings.Join(messages, "; "))
	}

	if len(gqlResp.Data) == 0 || string(gqlResp.Data) == "null" {
		return fmt.Errorf("response has no data")
	}
	if err := json.Unmarshal(gqlResp.Data, out); err != nil {
		return fmt.Errorf("failed to decode data: %w", err)
	}
	return nil
}
