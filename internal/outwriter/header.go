package outwriter

import (
	"fmt"
	"time"

	"github.com/huangsam/peerrank/internal/contract"
	"github.com/huangsam/peerrank/schema"
)

// LogRunHeader prints a header for a pipeline run.
func LogRunHeader(category schema.Category, input string, timestamp time.Time) {
	fmt.Printf("🔎 Category: %s (Input: %s)\n", category, input)
	fmt.Printf("📅 Snapshot: %s\n", timestamp.Format(contract.DateTimeFormat))
}

// LogRankingsHeader prints a header for a ranking lookup.
func LogRankingsHeader(category schema.Category, window schema.Window, asOf time.Time) {
	fmt.Printf("🔎 Category: %s (Window: %s)\n", category, window)
	fmt.Printf("📅 As of: %s\n", asOf.Format(contract.DateTimeFormat))
}

// LogChartHeader prints a header for a chart materialization.
func LogChartHeader(category schema.Category, limit int) {
	fmt.Printf("🔎 Category: %s (Top %d titles)\n", category, limit)
}
