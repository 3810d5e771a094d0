package aggregate

import (
	"leetcode_leaderboard/internal/leetcode"
	"leetcode_leaderboard/internal/roster"
	"leetcode_leaderboard/internal/stats"
)

// NoDataInfo marks records whose profile URL is not a LeetCode profile.
const NoDataInfo = "No LeetCode data available"

// Profile is the fetched part of a record. It is absent (nil) for
// unrecognized profile URLs, which drops these keys from the JSON.
type Profile struct {
	Username          string                `json:"username"`
	TotalSolved       int                   `json:"totalSolved"`
	EasySolved        int                   `json:"easySolved"`
	MediumSolved      int                   `json:"mediumSolved"`
	HardSolved        int                   `json:"hardSolved"`
	RecentSubmissions []leetcode.Submission `json:"recentSubmissions"`
}

// Record is one student's row in the snapshot.
type Record struct {
	Roll    string `json:"roll"`
	Name    string `json:"name"`
	URL     string `json:"url"`
	Section string `json:"section"`
	Day     string `json:"day,omitempty"`
	*Profile
	Info string `json:"info,omitempty"`
}

// Total is the ranking key; records without a profile count as 0.
func (r Record) Total() int {
	if r.Profile == nil {
		return 0
	}
	return r.Profile.TotalSolved
}

func (r Record) Easy() int {
	if r.Profile == nil {
		return 0
	}
	return r.Profile.EasySolved
}

func (r Record) Medium() int {
	if r.Profile == nil {
		return 0
	}
	return r.Profile.MediumSolved
}

func (r Record) Hard() int {
	if r.Profile == nil {
		return 0
	}
	return r.Profile.HardSolved
}

// NewRecord merges a roster row with the fetcher's result for it.
func NewRecord(row roster.Row, res stats.Result) Record {
	rec := Record{
		Roll:    row.Roll,
		Name:    row.Name,
		URL:     row.URL,
		Section: row.Section,
		Day:     row.Day,
	}
	if !res.Recognized {
		rec.Info = NoDataInfo
		return rec
	}

	recent := res.RecentSubmissions
	if recent == nil {
		recent = []leetcode.Submission{}
	}
	rec.Profile = &Profile{
		Username:          res.Username,
		TotalSolved:       res.Counts.Total,
		EasySolved:        res.Counts.Easy,
		MediumSolved:      res.Counts.Medium,
		HardSolved:        res.Counts.Hard,
		RecentSubmissions: recent,
	}
	return rec
}
