// Package schema has the domain types shared by every peerrank package.
package schema

import "time"

// RawRecord is one scraped listing as supplied by the collector.
type RawRecord struct {
	Title     string    `json:"title"`
	Seeders   int       `json:"seeders"`
	Leechers  int       `json:"leechers"`
	Category  Category  `json:"category"`
	Timestamp time.Time `json:"timestamp,omitzero"` // Zero when the collector did not stamp the record
}

// Peers returns seeders plus leechers.
func (r RawRecord) Peers() int {
	return r.Seeders + r.Leechers
}

// RejectedRecord is a RawRecord that was dropped before grouping.
type RejectedRecord struct {
	Index  int       `json:"index"`  // Position in the collector batch
	Record RawRecord `json:"record"` // The offending record
	Reason error     `json:"-"`      // Wraps the malformed-record sentinel
}

// TitleGroup is the deduplicated representation of one real-world work.
// TotalPeers always equals TotalSeeders + TotalLeechers; use NewTitleGroup and Add to keep it so.
type TitleGroup struct {
	MainTitle     string   `json:"main_title"`
	TotalSeeders  int      `json:"total_seeders"`
	TotalLeechers int      `json:"total_leechers"`
	TotalPeers    int      `json:"total_peers"`
	MemberTitles  []string `json:"member_titles"` // Distinct titles in first-seen order
}

// NewTitleGroup opens a group seeded by the given record.
func NewTitleGroup(mainTitle string, seed RawRecord) TitleGroup {
	g := TitleGroup{MainTitle: mainTitle}
	g.Add(seed)
	return g
}

// Add merges a record into the group.
func (g *TitleGroup) Add(r RawRecord) {
	g.TotalSeeders += r.Seeders
	g.TotalLeechers += r.Leechers
	g.TotalPeers = g.TotalSeeders + g.TotalLeechers
	for _, t := range g.MemberTitles {
		if t == r.Title {
			return
		}
	}
	g.MemberTitles = append(g.MemberTitles, r.Title)
}

// Snapshot is one run's categorized, grouped, timestamped result set.
type Snapshot struct {
	RunID      string       `json:"run_id,omitempty"`
	Timestamp  time.Time    `json:"timestamp"`
	Category   Category     `json:"category"`
	Groups     []TitleGroup `json:"groups"`                // Sorted by total peers descending
	RawRecords []RawRecord  `json:"raw_records,omitempty"` // Accepted raw records of the run
}

// History is the append-only chronological sequence of snapshots for one category.
type History struct {
	Category  Category   `json:"category"`
	Snapshots []Snapshot `json:"snapshots"`
}

// Len returns the number of snapshots.
func (h History) Len() int {
	return len(h.Snapshots)
}

// Latest returns the newest snapshot and whether one exists.
func (h History) Latest() (Snapshot, bool) {
	if len(h.Snapshots) == 0 {
		return Snapshot{}, false
	}
	return h.Snapshots[len(h.Snapshots)-1], true
}
