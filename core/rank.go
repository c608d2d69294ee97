package core

import (
	"fmt"
	"time"

	"github.com/huangsam/peerrank/core/algo"
	"github.com/huangsam/peerrank/schema"
)

// DefaultTopK is the number of titles in a ranking or chart.
const DefaultTopK = 20

// CurrentSnapshot returns the latest snapshot taken at or before asOf.
func CurrentSnapshot(history schema.History, asOf time.Time) (schema.Snapshot, error) {
	if history.Len() == 0 {
		return schema.Snapshot{}, fmt.Errorf("%w: history for %q is empty", schema.ErrNoData, history.Category)
	}
	for i := len(history.Snapshots) - 1; i >= 0; i-- {
		if !history.Snapshots[i].Timestamp.After(asOf) {
			return history.Snapshots[i], nil
		}
	}
	return schema.Snapshot{}, fmt.Errorf("%w: no snapshot for %q at or before %s", schema.ErrNoData, history.Category, asOf.Format(time.RFC3339))
}

// baselineSnapshot returns the earliest snapshot inside [current-window, current).
func baselineSnapshot(history schema.History, current schema.Snapshot, window schema.Window) (schema.Snapshot, bool) {
	windowStart := current.Timestamp.Add(-window.Duration())
	for _, s := range history.Snapshots {
		if s.Timestamp.Before(windowStart) {
			continue
		}
		if !s.Timestamp.Before(current.Timestamp) {
			break
		}
		return s, true
	}
	return schema.Snapshot{}, false
}

// rankIndex maps each main title to its 1-based rank. The first occurrence wins.
func rankIndex(groups []schema.TitleGroup) map[string]int {
	index := make(map[string]int, len(groups))
	for i, g := range groups {
		if _, ok := index[g.MainTitle]; !ok {
			index[g.MainTitle] = i + 1
		}
	}
	return index
}

// Rank computes the top-k ranking as of a point in time, with rank changes against
// the baseline snapshot of the window. Titles match across snapshots by exact main title.
// Without a baseline every entry is new.
func Rank(history schema.History, asOf time.Time, window schema.Window, k int) ([]schema.RankingEntry, error) {
	if k <= 0 {
		k = DefaultTopK
	}
	current, err := CurrentSnapshot(history, asOf)
	if err != nil {
		return nil, err
	}

	var baselineRanks map[string]int
	if baseline, ok := baselineSnapshot(history, current, window); ok {
		baselineRanks = rankIndex(baseline.Groups)
	}

	top := algo.TopGroups(current.Groups, k)
	entries := make([]schema.RankingEntry, 0, len(top))
	for i, g := range top {
		entry := schema.RankingEntry{
			CurrentRank: i + 1,
			Title:       g.MainTitle,
			Seeders:     g.TotalSeeders,
			Leechers:    g.TotalLeechers,
			Peers:       g.TotalPeers,
			RankChange:  schema.NewEntry(),
		}
		if prev, ok := baselineRanks[g.MainTitle]; ok {
			entry.RankChange = schema.Moved(prev, entry.CurrentRank)
			entry.PreviousRank = &prev
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// RankAll computes the ranking for every supported window.
func RankAll(history schema.History, asOf time.Time, k int) (map[schema.Window][]schema.RankingEntry, error) {
	rankings := make(map[schema.Window][]schema.RankingEntry, len(schema.AllWindows))
	for _, w := range schema.AllWindows {
		entries, err := Rank(history, asOf, w, k)
		if err != nil {
			return nil, err
		}
		rankings[w] = entries
	}
	return rankings, nil
}
