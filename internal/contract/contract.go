// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"

	"github.com/huangsam/peerrank/schema"
)

// HistoryManager defines the interface for reaching the history store.
// This allows the persistence layer to be mocked for testing.
type HistoryManager interface {
	GetHistoryStore() HistoryStore
}

// HistoryStore defines the durable, ordered, append-only store of snapshots keyed by category.
type HistoryStore interface {
	// LoadHistory returns every snapshot of a category in chronological order
	LoadHistory(ctx context.Context, category schema.Category) (schema.History, error)

	// AppendSnapshot persists a snapshot after the latest one of its category and
	// returns it with its assigned run ID. It rejects non-increasing timestamps.
	AppendSnapshot(ctx context.Context, snapshot schema.Snapshot) (schema.Snapshot, error)

	// GetStatus returns status information about the history store
	GetStatus(ctx context.Context) (schema.HistoryStatus, error)

	// GetAllSnapshots returns every snapshot row for export
	GetAllSnapshots(ctx context.Context) ([]schema.SnapshotRecord, error)

	// GetAllGroups returns every group row for export
	GetAllGroups(ctx context.Context) ([]schema.GroupRecord, error)

	// GetAllRawRecords returns every archived raw record row for export
	GetAllRawRecords(ctx context.Context) ([]schema.RawRecordRow, error)

	// Close closes the underlying connection
	Close() error
}
