// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/huangsam/peerrank/internal/contract"
	"github.com/huangsam/peerrank/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteRankings prints a ranking using the configured output format.
func (ow *OutWriter) WriteRankings(ranking schema.RankingFile, cfg *contract.Config, duration time.Duration) error {
	return PrintRankings(ranking, cfg, duration)
}

// WriteGroups prints the groups of one collector batch using the configured output format.
func (ow *OutWriter) WriteGroups(category schema.Category, groups []schema.TitleGroup, rejected []schema.RejectedRecord, cfg *contract.Config, duration time.Duration) error {
	return PrintGroups(category, groups, rejected, cfg, duration)
}

// WriteChart prints a chart series using the configured output format.
func (ow *OutWriter) WriteChart(category schema.Category, series schema.ChartSeries, cfg *contract.Config, duration time.Duration) error {
	return PrintChart(category, series, cfg, duration)
}

// WriteRunFiles writes the ranking files and the chart file of a run into the output directory.
// It returns the written paths in write order.
func (ow *OutWriter) WriteRunFiles(category schema.Category, result schema.RunResult, outputDir string) ([]string, error) {
	var paths []string
	for _, window := range schema.AllWindows {
		ranking := NewRankingFile(category, window, result.RankedAt, result.Rankings[window])
		path, err := WriteRankingFile(outputDir, ranking)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	path, err := WriteChartFile(outputDir, category, NewChartFile(result.Chart))
	if err != nil {
		return paths, err
	}
	return append(paths, path), nil
}

// WriteRunSummary prints what a run produced.
func (ow *OutWriter) WriteRunSummary(category schema.Category, result schema.RunResult, paths []string, cfg *contract.Config, duration time.Duration) error {
	return PrintRunSummary(category, result, paths, cfg, duration)
}
