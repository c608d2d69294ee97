package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/peerrank/internal/contract"
	"github.com/huangsam/peerrank/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// chartCellLabel renders a chart cell, with "-" for missing data.
func chartCellLabel(cell *int) string {
	if cell == nil {
		return "-"
	}
	return strconv.Itoa(*cell)
}

// PrintChart outputs a chart series, dispatching based on the output format configured.
func PrintChart(category schema.Category, series schema.ChartSeries, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, NewChartFile(series))
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeChartCSV(w, series)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeChartTable(w, category, series, cfg, duration)
		}, "Wrote table")
	}
	return nil
}

// writeChartTable prints one row per title and one column per date, newest dates last.
// Only the most recent dates that fit the terminal are shown.
func writeChartTable(w io.Writer, category schema.Category, series schema.ChartSeries, cfg *contract.Config, duration time.Duration) error {
	titleWidth := GetMaxTableTitleWidth(cfg)
	maxDates := max(1, titleWidth/12)
	first := max(0, len(series.Dates)-maxDates)

	headers := []string{"Title"}
	for _, d := range series.Dates[first:] {
		headers = append(headers, d.UTC().Format("01-02 15:04"))
	}

	table := tablewriter.NewWriter(w)
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for col, title := range series.Titles {
		row := []string{contract.TruncateTitle(title, titleWidth)}
		for _, cells := range series.Data[first:] {
			row = append(row, chartCellLabel(cells[col]))
		}
		data = append(data, row)
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Showing %d %s titles over %d of %d snapshots (updated %s)\n",
		len(series.Titles), category, len(series.Dates)-first, len(series.Dates), chartDateLabel(series.UpdatedAt)); err != nil {
		return err
	}
	if duration > 0 {
		if _, err := fmt.Fprintf(w, "Materialized in %v. History backend: %s\n", duration, cfg.HistoryBackend); err != nil {
			return err
		}
	}
	return nil
}

// writeChartCSV writes the series in long form, one row per date and title.
// Missing cells are written as empty strings.
func writeChartCSV(w io.Writer, series schema.ChartSeries) error {
	header := []string{"date", "title", "peers"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for i, d := range series.Dates {
			for j, title := range series.Titles {
				peers := ""
				if cell := series.Data[i][j]; cell != nil {
					peers = strconv.Itoa(*cell)
				}
				if err := cw.Write([]string{chartDateLabel(d), title, peers}); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
