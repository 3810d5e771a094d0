package dashboard

import (
	"net/url"
	"sort"

	"leetcode_leaderboard/internal/aggregate"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// AllSections is the filter value that disables section filtering.
const AllSections = "all"

// NoSection is shown for records without a section label.
const NoSection = "N/A"

type Column string

const (
	ColumnSection Column = "section"
	ColumnTotal   Column = "total"
	ColumnEasy    Column = "easy"
	ColumnMedium  Column = "medium"
	ColumnHard    Column = "hard"
)

// Columns lists the sortable columns in display order.
var Columns = []Column{ColumnSection, ColumnTotal, ColumnEasy, ColumnMedium, ColumnHard}

func (c Column) valid() bool {
	for _, col := range Columns {
		if c == col {
			return true
		}
	}
	return false
}

// directionKey is the query key holding the column's direction. It is
// prefixed so the section column never collides with the section filter.
func (c Column) directionKey() string {
	return "dir_" + string(c)
}

func (c Column) numeric() bool {
	return c != ColumnSection
}

type Direction int

const (
	Descending Direction = iota
	Ascending
)

func (d Direction) String() string {
	if d == Ascending {
		return "asc"
	}
	return "desc"
}

func (d Direction) invert() Direction {
	if d == Ascending {
		return Descending
	}
	return Ascending
}

func parseDirection(s string) (Direction, bool) {
	switch s {
	case "asc":
		return Ascending, true
	case "desc":
		return Descending, true
	}
	return Descending, false
}

// ViewState is everything the leaderboard page needs to know about the
// user's choices. Each column keeps its own direction; toggling one column
// never touches another.
type ViewState struct {
	Section    string
	Active     Column
	Directions map[Column]Direction
}

// NewViewState returns the initial state: no filter, ranked order, numeric
// columns descending and section ascending. The first toggle of a column
// inverts its starting direction.
func NewViewState() ViewState {
	return ViewState{
		Section: AllSections,
		Directions: map[Column]Direction{
			ColumnSection: Ascending,
			ColumnTotal:   Descending,
			ColumnEasy:    Descending,
			ColumnMedium:  Descending,
			ColumnHard:    Descending,
		},
	}
}

// Action is a user interaction on the leaderboard page.
type Action interface {
	apply(ViewState) ViewState
}

// SelectSection changes the section filter.
type SelectSection struct {
	Section string
}

func (a SelectSection) apply(s ViewState) ViewState {
	s.Section = a.Section
	if s.Section == "" {
		s.Section = AllSections
	}
	return s
}

// ToggleSort inverts one column's direction and sorts by it.
type ToggleSort struct {
	Column Column
}

func (a ToggleSort) apply(s ViewState) ViewState {
	if !a.Column.valid() {
		return s
	}
	s.Directions[a.Column] = s.Directions[a.Column].invert()
	s.Active = a.Column
	return s
}

// Reduce returns the state after action. The input state is not modified.
func Reduce(state ViewState, action Action) ViewState {
	next := state.clone()
	return action.apply(next)
}

func (s ViewState) clone() ViewState {
	dirs := make(map[Column]Direction, len(s.Directions))
	for k, v := range s.Directions {
		dirs[k] = v
	}
	s.Directions = dirs
	return s
}

// Query encodes the state for links and forms.
func (s ViewState) Query() url.Values {
	q := url.Values{}
	if s.Section != "" && s.Section != AllSections {
		q.Set("section", s.Section)
	}
	if s.Active != "" {
		q.Set("sort", string(s.Active))
	}
	for _, col := range Columns {
		q.Set(col.directionKey(), s.Directions[col].String())
	}
	return q
}

// ParseViewState rebuilds a state from query values, falling back to the
// initial state for anything missing or invalid.
func ParseViewState(q url.Values) ViewState {
	s := NewViewState()
	if section := q.Get("section"); section != "" {
		s.Section = section
	}
	if col := Column(q.Get("sort")); col.valid() {
		s.Active = col
	}
	for _, col := range Columns {
		if d, ok := parseDirection(q.Get(col.directionKey())); ok {
			s.Directions[col] = d
		}
	}
	return s
}

// Rows returns the records visible under the state: filtered by section,
// then sorted by the active column if any. records is not modified.
func (s ViewState) Rows(records []aggregate.Record) []aggregate.Record {
	rows := Filter(records, s.Section)
	if s.Active != "" {
		SortRecords(rows, s.Active, s.Directions[s.Active])
	}
	return rows
}

// SectionLabel is the section as displayed and filtered on.
func SectionLabel(r aggregate.Record) string {
	if r.Section == "" {
		return NoSection
	}
	return r.Section
}

// Sections returns the sorted distinct section labels.
func Sections(records []aggregate.Record) []string {
	seen := map[string]bool{}
	var sections []string
	for _, r := range records {
		label := SectionLabel(r)
		if seen[label] {
			continue
		}
		seen[label] = true
		sections = append(sections, label)
	}
	sort.Strings(sections)
	return sections
}

// Filter returns a new slice with the records of one section, or all of
// them for AllSections.
func Filter(records []aggregate.Record, section string) []aggregate.Record {
	out := make([]aggregate.Record, 0, len(records))
	for _, r := range records {
		if section == "" || section == AllSections || SectionLabel(r) == section {
			out = append(out, r)
		}
	}
	return out
}

// SortRecords sorts in place, stably. Missing numbers count as 0 and a
// missing section sorts as "Z".
func SortRecords(records []aggregate.Record, col Column, dir Direction) {
	if col.numeric() {
		value := numericValue(col)
		sort.SliceStable(records, func(i, j int) bool {
			if dir == Descending {
				return value(records[i]) > value(records[j])
			}
			return value(records[i]) < value(records[j])
		})
		return
	}

	c := collate.New(language.English)
	key := func(r aggregate.Record) string {
		if r.Section == "" {
			return "Z"
		}
		return r.Section
	}
	sort.SliceStable(records, func(i, j int) bool {
		cmp := c.CompareString(key(records[i]), key(records[j]))
		if dir == Descending {
			return cmp > 0
		}
		return cmp < 0
	})
}

func numericValue(col Column) func(aggregate.Record) int {
	switch col {
	case ColumnEasy:
		return aggregate.Record.Easy
	case ColumnMedium:
		return aggregate.Record.Medium
	case ColumnHard:
		return aggregate.Record.Hard
	default:
		return aggregate.Record.Total
	}
}
