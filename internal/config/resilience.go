package config

import (
	"time"

	"leetcode_leaderboard/internal/retry"
)

// ResilienceConfig covers the optional outbound sinks only. Provider fetches
// get a single attempt per refresh cycle and are never retried.
type ResilienceConfig struct {
	SheetWrite retry.Config
}

var DefaultResilienceConfig = ResilienceConfig{
	SheetWrite: retry.Config{
		Operation:  "sheet write",
		MaxRetries: 3,
		BaseDelay:  2 * time.Second,
		MaxDelay:   30 * time.Second,
		Timeout:    15 * time.Second,
	},
}
