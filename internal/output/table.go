package output

import (
	"github.com/jedib0t/go-pretty/v6/table"
)

func renderTable(v view) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	if v.title != "" {
		t.SetTitle(v.title)
	}

	t.AppendHeader(toRow(v.header))
	for _, row := range v.rows {
		t.AppendRow(toRow(row))
	}

	if v.footer != "" {
		footer := make([]string, len(v.header))
		if len(footer) > 0 {
			footer[len(footer)-1] = v.footer
		}
		t.AppendFooter(toRow(footer))
	}

	return t.Render()
}

func toRow(cells []string) table.Row {
	row := make(table.Row, len(cells))
	for i, cell := range cells {
		row[i] = cell
	}
	return row
}
