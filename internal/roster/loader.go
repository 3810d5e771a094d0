package roster

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// File names expected inside the roster directory. DayFile is optional.
const (
	RollFile    = "roll.txt"
	NameFile    = "name.txt"
	URLFile     = "urls.txt"
	SectionFile = "sections.txt"
	DayFile     = "day.txt"
)

// ErrLengthMismatch is returned when the required roster files disagree on
// the number of students.
var ErrLengthMismatch = errors.New("roster files have mismatched line counts")

// Row is one student's identity, taken positionally from the roster files.
type Row struct {
	Roll    string
	Name    string
	URL     string
	Section string
	Day     string
}

// Load reads the roster files in dir and zips them into rows. Blank lines are
// dropped before zipping, so the i-th non-blank line of every file belongs to
// the same student.
func Load(dir string) ([]Row, error) {
	log.Debug().Str("dir", dir).Msg("Reading roster files")

	rolls, err := readLines(filepath.Join(dir, RollFile))
	if err != nil {
		return nil, err
	}
	names, err := readLines(filepath.Join(dir, NameFile))
	if err != nil {
		return nil, err
	}
	urls, err := readLines(filepath.Join(dir, URLFile))
	if err != nil {
		return nil, err
	}
	sections, err := readLines(filepath.Join(dir, SectionFile))
	if err != nil {
		return nil, err
	}

	days, err := readLines(filepath.Join(dir, DayFile))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		log.Debug().Str("file", DayFile).Msg("No day file found; day labels will be empty")
		days = nil
	}

	if len(rolls) != len(names) || len(names) != len(urls) || len(names) != len(sections) {
		return nil, fmt.Errorf("%w: rolls=%d names=%d urls=%d sections=%d",
			ErrLengthMismatch, len(rolls), len(names), len(urls), len(sections))
	}

	if len(days) != 0 && len(days) < len(rolls) {
		log.Warn().
			Int("days", len(days)).
			Int("rows", len(rolls)).
			Msg("Day file is shorter than the roster; trailing rows have no day label")
	}

	rows := make([]Row, len(rolls))
	for i := range rolls {
		rows[i] = Row{
			Roll:    rolls[i],
			Name:    names[i],
			URL:     urls[i],
			Section: sections[i],
		}
		if i < len(days) {
			rows[i].Day = days[i]
		}
	}

	log.Debug().Int("rows", len(rows)).Msg("Roster loaded")
	return rows, nil
}

// readLines returns the trimmed, non-blank lines of a file.
func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}

	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}
