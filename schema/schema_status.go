package schema

import "time"

// CategoryStatus summarizes the stored history of one category.
type CategoryStatus struct {
	Snapshots     int       `json:"snapshots"`
	FirstSnapshot time.Time `json:"first_snapshot"`
	LastSnapshot  time.Time `json:"last_snapshot"`
}

// HistoryStatus represents the status of the history store.
type HistoryStatus struct {
	Backend        string                      `json:"backend"`
	Connected      bool                        `json:"connected"`
	TotalSnapshots int                         `json:"total_snapshots"`
	Categories     map[Category]CategoryStatus `json:"categories"`
	TableSizes     map[string]int64            `json:"table_sizes"`
}
