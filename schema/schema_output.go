package schema

import "time"

// RankingFile is the on-disk form of a {category}_{period}_rankings.json file.
type RankingFile struct {
	UpdatedAt string         `json:"updated_at"` // ISO-8601 timestamp of the ranked snapshot
	Period    Window         `json:"period"`
	Category  Category       `json:"category"`
	Rankings  []RankingEntry `json:"rankings"`
}

// ChartFile is the on-disk form of a {category}_chart_data.json file.
type ChartFile struct {
	UpdatedAt string   `json:"updated_at"`
	Titles    []string `json:"titles"`
	Dates     []string `json:"dates"`
	Data      [][]*int `json:"data"`
}

// RunResult holds everything one pipeline run produced for a category.
type RunResult struct {
	Snapshot Snapshot                  `json:"snapshot"`
	Appended bool                      `json:"appended"`  // False when the snapshot was out of order or had no groups
	RankedAt time.Time                 `json:"ranked_at"` // Timestamp of the snapshot the rankings were computed at
	Rankings map[Window][]RankingEntry `json:"rankings"`
	Chart    ChartSeries               `json:"chart"`
	Rejected []RejectedRecord          `json:"rejected"`
}
