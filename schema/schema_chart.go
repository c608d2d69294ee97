package schema

import "time"

// ChartSeries is a dense time-indexed matrix of peer counts per top-K title.
// Data has one row per date and one column per title; a nil cell means no data.
type ChartSeries struct {
	UpdatedAt time.Time   `json:"updated_at"`
	Titles    []string    `json:"titles"`
	Dates     []time.Time `json:"dates"`
	Data      [][]*int    `json:"data"`
}
