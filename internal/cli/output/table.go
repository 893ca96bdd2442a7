package output

import (
	"github.com/jedib0t/go-pretty/v6/table"
)

// Table renders rows under a header. Text mode draws a box table;
// every other mode gets a markdown table.
func (r *Renderer) Table(header []string, rows [][]string) {
	t := table.NewWriter()
	t.AppendHeader(toRow(header))
	for _, row := range rows {
		t.AppendRow(toRow(row))
	}

	if r.EffectiveMode() == ModeText {
		t.SetStyle(table.StyleLight)
		r.Println(t.Render())
		return
	}
	r.Println(t.RenderMarkdown())
}

func toRow(cells []string) table.Row {
	row := make(table.Row, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	return row
}
