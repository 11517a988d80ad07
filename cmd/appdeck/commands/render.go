package commands

import (
	"appdeck/internal/catalog"
	"appdeck/internal/favorites"
	"appdeck/internal/scrapers/playstore"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	return t
}

func renderRecords(out io.Writer, records []playstore.AppRecord) {
	t := newTable(out)
	t.AppendHeader(table.Row{"#", "Name", "Identifier", "Icon"})
	for i, r := range records {
		t.AppendRow(table.Row{i + 1, r.DisplayName, r.Identifier, r.IconUrl})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d apps", len(records))})
	t.Render()
}

func renderFavorites(out io.Writer, stored []favorites.Favorite) {
	t := newTable(out)
	t.AppendHeader(table.Row{"Identifier", "Added"})
	for _, f := range stored {
		t.AppendRow(table.Row{f.Identifier, f.AddedAt.Local().Format(time.DateTime)})
	}
	t.Render()
}

// renderOutcome prints a terminal outcome, Loading prints nothing.
func renderOutcome(out io.Writer, outcome catalog.Outcome) {
	switch outcome.State {
	case catalog.StateSuccess:
		renderRecords(out, outcome.Records)
	case catalog.StateError:
		fmt.Fprintf(out, "failed to load catalog: %s\n", outcome.Kind)
		if len(outcome.Previous) > 0 {
			fmt.Fprintln(out, "last known catalog:")
			renderRecords(out, outcome.Previous)
		}
	}
}

type jsonOutcome struct {
	State    string                `json:"state"`
	Records  []playstore.AppRecord `json:"records"`
	Error    string                `json:"error,omitempty"`
	Previous []playstore.AppRecord `json:"previous,omitempty"`
}

func renderOutcomeJson(out io.Writer, outcome catalog.Outcome) error {
	value := jsonOutcome{
		State:    outcome.State.String(),
		Records:  outcome.Records,
		Previous: outcome.Previous,
	}
	if outcome.State == catalog.StateError {
		value.Error = outcome.Kind.String()
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
