package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// tableColumn describes one report column. Cells wider than MaxWidth wrap,
// which keeps multi-line ffmpeg errors readable; zero means no limit.
type tableColumn struct {
	Header   string
	Align    columnAlignment
	MaxWidth int
}

// columns builds left-aligned columns without width limits.
func columns(headers ...string) []tableColumn {
	out := make([]tableColumn, len(headers))
	for i, header := range headers {
		out[i] = tableColumn{Header: header}
	}
	return out
}

// renderTable draws rows under cols. A non-empty footer is rendered as a
// totals row below the body.
func renderTable(cols []tableColumn, rows [][]string, footer ...string) string {
	if len(cols) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(fitRow(len(cols), headers(cols)))
	for _, row := range rows {
		tw.AppendRow(fitRow(len(cols), row))
	}
	if len(footer) > 0 {
		tw.AppendFooter(fitRow(len(cols), footer))
	}

	configs := make([]table.ColumnConfig, 0, len(cols))
	for i, col := range cols {
		align := text.AlignLeft
		if col.Align == alignRight {
			align = text.AlignRight
		}
		cfg := table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
			AlignFooter: align,
		}
		if col.MaxWidth > 0 {
			cfg.WidthMax = col.MaxWidth
			cfg.WidthMaxEnforcer = text.WrapSoft
		}
		configs = append(configs, cfg)
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

func headers(cols []tableColumn) []string {
	out := make([]string, len(cols))
	for i, col := range cols {
		out[i] = col.Header
	}
	return out
}

// fitRow pads or truncates cells to exactly n columns.
func fitRow(n int, cells []string) table.Row {
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
