package outwriter

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/peerrank/internal/contract"
	"github.com/huangsam/peerrank/schema"
)

// runOutput is the JSON shape of a run summary.
type runOutput struct {
	Category  schema.Category `json:"category"`
	RunID     string          `json:"run_id"`
	Timestamp string          `json:"timestamp"`
	Appended  bool            `json:"appended"`
	Groups    int             `json:"groups"`
	Records   int             `json:"records"`
	Rejected  int             `json:"rejected"`
	Files     []string        `json:"files"`
}

// PrintRunSummary reports the outcome of one category run.
// Text mode also prints the daily ranking table.
func PrintRunSummary(category schema.Category, result schema.RunResult, paths []string, cfg *contract.Config, duration time.Duration) error {
	summary := runOutput{
		Category:  category,
		RunID:     result.Snapshot.RunID,
		Timestamp: result.Snapshot.Timestamp.UTC().Format(time.RFC3339Nano),
		Appended:  result.Appended,
		Groups:    len(result.Snapshot.Groups),
		Records:   len(result.Snapshot.RawRecords),
		Rejected:  len(result.Rejected),
		Files:     paths,
	}

	if cfg.Output == schema.JSONOut {
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, summary)
		}, "Wrote JSON")
	}

	if cfg.Output == schema.TextOut {
		daily := NewRankingFile(category, schema.DailyWindow, result.RankedAt, result.Rankings[schema.DailyWindow])
		if err := writeRankingsTable(os.Stdout, daily, cfg, 0); err != nil {
			return err
		}
	}

	status := "appended"
	if !result.Appended {
		status = "not appended"
	}
	fmt.Printf("📦 %s snapshot %s at %s %s: %d groups from %d records, %d rejected\n",
		category, summary.RunID, summary.Timestamp, status, summary.Groups, summary.Records, summary.Rejected)
	for _, p := range paths {
		fmt.Printf("💾 Wrote %s\n", p)
	}
	fmt.Printf("Run completed in %v. History backend: %s\n", duration, cfg.HistoryBackend)
	return nil
}
