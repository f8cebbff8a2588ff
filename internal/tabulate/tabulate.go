//
// Package tabulate renders combined metric results as a plain
// markdown table for terminal output.
//
package tabulate

import (
	"io"
	"strconv"

	"github.com/nsip/otf-benchmark/metric"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
)

//
// Header lists the columns in output order.
//
var Header = []string{"Subject", "Score", "Percentile", "Performing Grade", "Standing", "Next Grade Threshold"}

// unavailable marks a metric that could not be calculated
const unavailable = "n/a"

//
// Rows flattens results into table cells, one row per subject,
// with unavailable metrics shown as n/a.
//
func Rows(results []metric.CombinedResult) [][]string {
	rows := make([][]string, 0, len(results))
	for _, cr := range results {
		row := []string{cr.Subject, strconv.Itoa(cr.Score), unavailable, unavailable, unavailable, unavailable}
		if cr.Percentile != nil {
			row[2] = cr.Percentile.String()
		}
		if pg := cr.PerformingGrade; pg != nil {
			row[3] = pg.String()
			row[4] = string(pg.Standing)
		}
		if cr.Threshold != nil {
			row[5] = cr.Threshold.String()
		}
		rows = append(rows, row)
	}
	return rows
}

//
// Write renders results to w as a markdown table.
//
func Write(w io.Writer, results []metric.CombinedResult) error {
	table := newTable(w)
	for _, row := range Rows(results) {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

//
// left aligned markdown with no top or bottom border
//
func newTable(w io.Writer) *tablewriter.Table {
	cfg := tablewriter.Config{
		Header: tw.CellConfig{
			Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			Formatting: tw.CellFormatting{AutoFormat: tw.Off},
		},
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignLeft},
		},
		Behavior: tw.Behavior{TrimSpace: tw.Off},
	}
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(cfg),
		tablewriter.WithHeader(Header),
		tablewriter.WithRenderer(renderer.NewBlueprint()),
		tablewriter.WithRendition(tw.Rendition{
			Symbols: tw.NewSymbols(tw.StyleMarkdown),
			Borders: tw.Border{
				Left:   tw.On,
				Top:    tw.Off,
				Right:  tw.On,
				Bottom: tw.Off,
			},
		}),
		tablewriter.WithRowAutoWrap(tw.WrapNone),
	)
}
