package dashboard

import (
	"embed"
	"html/template"
	"io"
	"sort"
	"strings"

	"leetcode_leaderboard/internal/aggregate"
)

//go:embed templates/leaderboard.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/leaderboard.html"))

type rowView struct {
	Rank    int
	Roll    string
	Name    string
	URL     string
	Linked  bool
	Section string
	Total   string
	Easy    string
	Medium  string
	Hard    string
}

type headerView struct {
	Label     string
	Href      string
	Active    bool
	Direction string
}

// hiddenInput carries state the section form must resubmit.
type hiddenInput struct {
	Name  string
	Value string
}

type pageView struct {
	Rows       []rowView
	Headers    []headerView
	Sections   []string
	Selected   string
	ExportHref string
	Hidden     []hiddenInput
	Empty      bool
}

var columnLabels = map[Column]string{
	ColumnSection: "Section",
	ColumnTotal:   "Total Solved",
	ColumnEasy:    "Easy",
	ColumnMedium:  "Medium",
	ColumnHard:    "Hard",
}

// Render writes the leaderboard page for state. profilePrefix decides which
// names are rendered as profile links.
func Render(w io.Writer, state ViewState, records []aggregate.Record, profilePrefix string) error {
	rows := state.Rows(records)

	view := pageView{
		Sections:   Sections(records),
		Selected:   state.Section,
		ExportHref: "/export.csv?" + state.Query().Encode(),
		Hidden:     formState(state),
		Empty:      len(rows) == 0,
	}

	for _, col := range Columns {
		next := Reduce(state, ToggleSort{Column: col})
		view.Headers = append(view.Headers, headerView{
			Label:     columnLabels[col],
			Href:      "/?" + next.Query().Encode(),
			Active:    state.Active == col,
			Direction: state.Directions[col].String(),
		})
	}

	for i, r := range rows {
		view.Rows = append(view.Rows, rowView{
			Rank:    i + 1,
			Roll:    r.Roll,
			Name:    r.Name,
			URL:     r.URL,
			Linked:  profilePrefix != "" && strings.HasPrefix(r.URL, profilePrefix),
			Section: SectionLabel(r),
			Total:   countOrNA(r.Total()),
			Easy:    countOrNA(r.Easy()),
			Medium:  countOrNA(r.Medium()),
			Hard:    countOrNA(r.Hard()),
		})
	}

	return pageTemplate.Execute(w, view)
}

// formState is the state minus the section filter, which the form's select
// supplies itself. Changing the filter keeps every column's direction.
func formState(state ViewState) []hiddenInput {
	q := state.Query()
	q.Del("section")

	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	inputs := make([]hiddenInput, 0, len(keys))
	for _, k := range keys {
		inputs = append(inputs, hiddenInput{Name: k, Value: q.Get(k)})
	}
	return inputs
}
