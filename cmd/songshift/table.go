package main

import (
	"slices"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// maxCellWidth wraps long paths instead of stretching the table.
const maxCellWidth = 60

// renderTable draws rows under headers. rightAligned lists 1-based column
// numbers holding durations or counts.
func renderTable(headers []string, rows [][]string, rightAligned ...int) string {
	if len(headers) == 0 {
		return ""
	}
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(tableRow(headers, len(headers)))
	for _, row := range rows {
		tw.AppendRow(tableRow(row, len(headers)))
	}

	configs := make([]table.ColumnConfig, len(headers))
	for i := range configs {
		cfg := table.ColumnConfig{Number: i + 1, WidthMax: maxCellWidth}
		if slices.Contains(rightAligned, i+1) {
			cfg.Align = text.AlignRight
		}
		configs[i] = cfg
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

// tableRow pads or truncates cells to width columns.
func tableRow(cells []string, width int) table.Row {
	row := make(table.Row, width)
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
		} else {
			row[i] = ""
		}
	}
	return row
}
