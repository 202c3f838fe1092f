package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"play-extract/pkg/pipeline"
	"play-extract/pkg/replication"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	if len(headers) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	headerRow := make(table.Row, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}
	tw.AppendHeader(headerRow)

	for _, row := range rows {
		r := make(table.Row, len(headers))
		for i := range headers {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, len(aligns))
	for i, a := range aligns {
		align := text.AlignLeft
		if a == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: align})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render() + "\n"
}

func renderSummary(summary *pipeline.Summary) string {
	rows := make([][]string, 0, len(summary.Results))
	for _, r := range summary.Results {
		detail := strings.Join(r.Locations, ", ")
		if r.Err != nil {
			detail = r.Err.Error()
		}
		rows = append(rows, []string{
			r.Source,
			string(r.Status),
			r.Name,
			string(r.Strategy),
			strconv.Itoa(r.Speakers),
			strconv.Itoa(r.Lines),
			detail,
		})
	}

	out := renderTable(
		[]string{"Source", "Status", "Name", "Strategy", "Speakers", "Lines", "Output"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
	)
	return out + fmt.Sprintf("%d saved, %d skipped, %d failed in %s\n",
		summary.Count(pipeline.StatusSaved),
		summary.Count(pipeline.StatusSkipped),
		summary.Count(pipeline.StatusFailed),
		summary.Finished.Sub(summary.Started).Round(time.Millisecond),
	)
}

func renderReport(report *replication.Report) string {
	rows := make([][]string, 0, len(report.Failed))
	for _, name := range report.FailedNames() {
		rows = append(rows, []string{name, report.Failed[name].Error()})
	}
	var out string
	if len(rows) > 0 {
		out = renderTable([]string{"Record", "Error"}, rows, []columnAlignment{alignLeft, alignLeft})
	}
	return out + fmt.Sprintf("%d of %d records replicated\n", report.Replicated, report.Processed)
}
