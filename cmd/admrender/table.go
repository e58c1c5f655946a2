package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// column describes one table column. Numeric columns are right-aligned;
// wrap > 0 soft-wraps long cells such as paths and error messages.
type column struct {
	title   string
	numeric bool
	wrap    int
}

var (
	propertyColumns = []column{{title: "Property"}, {title: "Value", wrap: 72}}
	chnaColumns     = []column{
		{title: "Track", numeric: true},
		{title: "UID"},
		{title: "Track Format"},
		{title: "Pack Format"},
	}
	layoutColumns = []column{
		{title: "Layout"},
		{title: "Pack Format"},
		{title: "Channels", numeric: true},
		{title: "Loudspeakers", wrap: 60},
	}
	resultColumns = []column{
		{title: "Kind"},
		{title: "ID"},
		{title: "Name"},
		{title: "Frames", numeric: true},
		{title: "Duration", numeric: true},
		{title: "Output", wrap: 48},
		{title: "Status", wrap: 40},
	}
)

// renderTable lays rows out under cols. Short rows are padded, extra cells
// dropped. A non-empty footer is printed under the last row.
func renderTable(cols []column, rows [][]string, footer ...string) string {
	if len(cols) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(tableRow(len(cols), columnTitles(cols)))

	for _, row := range rows {
		tw.AppendRow(tableRow(len(cols), row))
	}

	if len(footer) > 0 {
		tw.AppendFooter(tableRow(len(cols), footer))
	}

	configs := make([]table.ColumnConfig, len(cols))
	for i, c := range cols {
		configs[i] = table.ColumnConfig{Number: i + 1, AlignHeader: text.AlignLeft, AlignFooter: text.AlignLeft}
		if c.numeric {
			configs[i].Align = text.AlignRight
			configs[i].AlignFooter = text.AlignRight
		}
		if c.wrap > 0 {
			configs[i].WidthMax = c.wrap
			configs[i].WidthMaxEnforcer = text.WrapSoft
		}
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

func columnTitles(cols []column) []string {
	titles := make([]string, len(cols))
	for i, c := range cols {
		titles[i] = c.title
	}
	return titles
}

func tableRow(n int, cells []string) table.Row {
	row := make(table.Row, n)
	for i := range n {
		if i < len(cells) {
			row[i] = cells[i]
		} else {
			row[i] = ""
		}
	}
	return row
}
