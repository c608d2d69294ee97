package outwriter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/huangsam/peerrank/internal/contract"
	"github.com/huangsam/peerrank/schema"
)

// RankingFileName returns the file name of a category's ranking for a window.
func RankingFileName(category schema.Category, window schema.Window) string {
	return fmt.Sprintf("%s_%s_rankings.json", category, window)
}

// ChartFileName returns the file name of a category's chart data.
func ChartFileName(category schema.Category) string {
	return fmt.Sprintf("%s_chart_data.json", category)
}

// NewRankingFile builds the on-disk form of a ranking.
func NewRankingFile(category schema.Category, window schema.Window, updatedAt time.Time, entries []schema.RankingEntry) schema.RankingFile {
	if entries == nil {
		entries = []schema.RankingEntry{}
	}
	return schema.RankingFile{
		UpdatedAt: updatedAt.UTC().Format(time.RFC3339),
		Period:    window,
		Category:  category,
		Rankings:  entries,
	}
}

// NewChartFile builds the on-disk form of a chart series. Null cells stay null.
func NewChartFile(series schema.ChartSeries) schema.ChartFile {
	file := schema.ChartFile{
		Titles: series.Titles,
		Dates:  make([]string, len(series.Dates)),
		Data:   series.Data,
	}
	if !series.UpdatedAt.IsZero() {
		file.UpdatedAt = series.UpdatedAt.UTC().Format(time.RFC3339)
	}
	for i, d := range series.Dates {
		file.Dates[i] = d.UTC().Format(time.RFC3339)
	}
	if file.Titles == nil {
		file.Titles = []string{}
	}
	if file.Data == nil {
		file.Data = [][]*int{}
	}
	return file
}

// WriteRankingFile atomically writes a ranking file into dir and returns its path.
func WriteRankingFile(dir string, ranking schema.RankingFile) (string, error) {
	path := filepath.Join(dir, RankingFileName(ranking.Category, ranking.Period))
	if err := writeFileAtomic(path, func(w io.Writer) error {
		return writeJSON(w, ranking)
	}); err != nil {
		return "", fmt.Errorf("failed to write ranking file: %w", err)
	}
	return path, nil
}

// WriteChartFile atomically writes a chart file into dir and returns its path.
func WriteChartFile(dir string, category schema.Category, chart schema.ChartFile) (string, error) {
	path := filepath.Join(dir, ChartFileName(category))
	if err := writeFileAtomic(path, func(w io.Writer) error {
		return writeJSON(w, chart)
	}); err != nil {
		return "", fmt.Errorf("failed to write chart file: %w", err)
	}
	return path, nil
}

// ReadRankingFile parses a ranking file.
func ReadRankingFile(path string) (schema.RankingFile, error) {
	var ranking schema.RankingFile
	if err := readJSONFile(path, &ranking); err != nil {
		return ranking, err
	}
	if _, ok := schema.ValidWindows[ranking.Period]; !ok {
		return ranking, fmt.Errorf("ranking file %s has invalid period %q", path, ranking.Period)
	}
	return ranking, nil
}

// ReadChartFile parses a chart file and checks that the matrix matches its axes.
func ReadChartFile(path string) (schema.ChartFile, error) {
	var chart schema.ChartFile
	if err := readJSONFile(path, &chart); err != nil {
		return chart, err
	}
	if len(chart.Data) != len(chart.Dates) {
		return chart, fmt.Errorf("chart file %s has %d rows for %d dates", path, len(chart.Data), len(chart.Dates))
	}
	for i, row := range chart.Data {
		if len(row) != len(chart.Titles) {
			return chart, fmt.Errorf("chart file %s row %d has %d cells for %d titles", path, i, len(row), len(chart.Titles))
		}
	}
	return chart, nil
}

func readJSONFile(path string, dest any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// chartDateLabel formats a chart row date for tables.
func chartDateLabel(t time.Time) string {
	return t.UTC().Format(contract.DateTimeFormat)
}
