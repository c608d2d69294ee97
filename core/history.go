package core

import (
	"fmt"
	"time"

	"github.com/huangsam/peerrank/schema"
)

// Append wraps the groups of one run into a snapshot and appends it to the history.
// On a non-increasing timestamp it returns the history untouched with ErrOutOfOrderSnapshot.
func Append(history schema.History, groups []schema.TitleGroup, timestamp time.Time) (schema.History, error) {
	return AppendSnapshot(history, schema.Snapshot{
		Timestamp: timestamp,
		Category:  history.Category,
		Groups:    groups,
	})
}

// AppendSnapshot appends a fully built snapshot to the history.
// The input history is never mutated; callers keep using it when an error is returned.
func AppendSnapshot(history schema.History, snapshot schema.Snapshot) (schema.History, error) {
	if last, ok := history.Latest(); ok && !snapshot.Timestamp.After(last.Timestamp) {
		return history, fmt.Errorf("%w: %s is not after the last snapshot at %s",
			schema.ErrOutOfOrderSnapshot, snapshot.Timestamp.Format(time.RFC3339), last.Timestamp.Format(time.RFC3339))
	}
	if snapshot.Category == "" {
		snapshot.Category = history.Category
	}

	snapshots := make([]schema.Snapshot, len(history.Snapshots), len(history.Snapshots)+1)
	copy(snapshots, history.Snapshots)
	return schema.History{
		Category:  history.Category,
		Snapshots: append(snapshots, snapshot),
	}, nil
}
