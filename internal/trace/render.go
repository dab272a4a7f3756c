package trace

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/syn-ce/os/internal/ir"
)

// Mode selects the table flavour.
type Mode int

const (
	ASCII    Mode = iota // fixed-width terminal table
	Markdown             // GitHub-flavoured Markdown
)

// ParseMode maps "ascii" or "markdown" to a Mode. Empty means ASCII.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ascii":
		return ASCII, nil
	case "markdown", "md":
		return Markdown, nil
	default:
		return ASCII, fmt.Errorf("unknown table mode %q (want ascii or markdown)", s)
	}
}

// String returns the mode name.
func (m Mode) String() string {
	if m == Markdown {
		return "markdown"
	}
	return "ascii"
}

// Header lists the action table columns.
var Header = []string{"Action", "Wagon", "From", "To", "Main", "Siding", "Parking"}

// Render formats records as an action table. Rail columns list wagons
// from the accessible end inward.
func Render(records []ir.ActionRecord, m Mode) string {
	w := table.NewWriter()
	if m == ASCII {
		w.SetStyle(table.StyleLight)
	}

	header := make(table.Row, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	w.AppendHeader(header)

	for _, r := range records {
		w.AppendRow(table.Row{
			r.Seq,
			int64(r.Wagon),
			string(r.From),
			string(r.To),
			ir.FormatWagons(r.Main),
			ir.FormatWagons(r.Siding),
			ir.FormatWagons(r.Parking),
		})
	}

	w.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 2, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
	})

	if m == Markdown {
		return w.RenderMarkdown()
	}
	return w.Render()
}

// Summary is a one-line description of a finished trace.
func Summary(records []ir.ActionRecord) string {
	toMain := 0
	for _, r := range records {
		if r.To == ir.Main {
			toMain++
		}
	}
	return strconv.Itoa(len(records)) + " moves, " + strconv.Itoa(toMain) + " onto main"
}
