package dashboard

import (
	"io"
	"strconv"
	"strings"

	"leetcode_leaderboard/internal/aggregate"

	"github.com/gosimple/slug"
)

// CSVHeader is the fixed first line of every export.
var CSVHeader = []string{"Rank", "Roll Number", "Name", "Section", "Total Solved", "Easy", "Medium", "Hard", "LeetCode URL"}

// WriteCSV writes records with a rank column recomputed from their order.
// Fields are joined with commas as-is; values containing commas are not
// quoted, which matches what the leaderboard has always exported.
func WriteCSV(w io.Writer, records []aggregate.Record) error {
	lines := make([]string, 0, len(records)+1)
	lines = append(lines, strings.Join(CSVHeader, ","))
	for i, r := range records {
		lines = append(lines, strings.Join([]string{
			strconv.Itoa(i + 1),
			r.Roll,
			r.Name,
			SectionLabel(r),
			countOrNA(r.Total()),
			countOrNA(r.Easy()),
			countOrNA(r.Medium()),
			countOrNA(r.Hard()),
			r.URL,
		}, ","))
	}
	_, err := io.WriteString(w, strings.Join(lines, "\n"))
	return err
}

// ExportFilename names the download for a section filter.
func ExportFilename(section string) string {
	if section == "" || section == AllSections {
		return "leaderboard.csv"
	}
	s := slug.Make(section)
	if s == "" {
		return "leaderboard.csv"
	}
	return "leaderboard-" + s + ".csv"
}

// countOrNA renders zero counts as N/A, the same as the table does.
func countOrNA(n int) string {
	if n == 0 {
		return "N/A"
	}
	return strconv.Itoa(n)
}
