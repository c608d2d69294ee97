package iocache

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/peerrank/internal/contract"
	"github.com/huangsam/peerrank/schema"
)

// MemoryHistoryStore keeps history in process memory. It backs the none backend,
// so a run still ranks against the snapshots appended earlier in the same process.
type MemoryHistoryStore struct {
	mu        sync.RWMutex
	snapshots []schema.Snapshot // Append order across all categories
}

var _ contract.HistoryStore = &MemoryHistoryStore{} // Compile-time check

// NewMemoryHistoryStore returns an empty in-memory store.
func NewMemoryHistoryStore() *MemoryHistoryStore {
	return &MemoryHistoryStore{}
}

// LoadHistory returns every snapshot of a category in chronological order.
func (ms *MemoryHistoryStore) LoadHistory(_ context.Context, category schema.Category) (schema.History, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	history := schema.History{Category: category}
	for _, s := range ms.snapshots {
		if s.Category == category {
			s.RawRecords = nil
			history.Snapshots = append(history.Snapshots, s)
		}
	}
	return history, nil
}

// AppendSnapshot stores a snapshot after the latest one of its category.
func (ms *MemoryHistoryStore) AppendSnapshot(_ context.Context, snapshot schema.Snapshot) (schema.Snapshot, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	for i := len(ms.snapshots) - 1; i >= 0; i-- {
		last := ms.snapshots[i]
		if last.Category != snapshot.Category {
			continue
		}
		if !snapshot.Timestamp.After(last.Timestamp) {
			return snapshot, fmt.Errorf("%w: %s is not after the last stored snapshot at %s",
				schema.ErrOutOfOrderSnapshot, snapshot.Timestamp.Format(time.RFC3339), last.Timestamp.Format(time.RFC3339))
		}
		break
	}

	if snapshot.RunID == "" {
		snapshot.RunID = uuid.NewString()
	}
	stored := snapshot
	stored.Groups = slices.Clone(snapshot.Groups)
	stored.RawRecords = slices.Clone(snapshot.RawRecords)
	ms.snapshots = append(ms.snapshots, stored)
	return snapshot, nil
}

// GetStatus returns status information about the in-memory store.
func (ms *MemoryHistoryStore) GetStatus(_ context.Context) (schema.HistoryStatus, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	status := schema.HistoryStatus{
		Backend:        string(schema.NoneBackend),
		Connected:      true,
		TotalSnapshots: len(ms.snapshots),
		Categories:     make(map[schema.Category]schema.CategoryStatus),
		TableSizes:     make(map[string]int64),
	}
	for _, s := range ms.snapshots {
		cs := status.Categories[s.Category]
		if cs.Snapshots == 0 {
			cs.FirstSnapshot = s.Timestamp
		}
		cs.Snapshots++
		cs.LastSnapshot = s.Timestamp
		status.Categories[s.Category] = cs

		status.TableSizes[snapshotsTable]++
		status.TableSizes[groupsTable] += int64(len(s.Groups))
		status.TableSizes[rawRecordsTable] += int64(len(s.RawRecords))
	}
	return status, nil
}

// GetAllSnapshots returns every snapshot row, numbered in append order.
func (ms *MemoryHistoryStore) GetAllSnapshots(_ context.Context) ([]schema.SnapshotRecord, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	var results []schema.SnapshotRecord
	for i, s := range ms.snapshots {
		results = append(results, schema.SnapshotRecord{
			SnapshotID: int64(i + 1),
			RunID:      s.RunID,
			Category:   s.Category,
			TakenAt:    s.Timestamp,
			GroupCount: int32(len(s.Groups)),
			RawCount:   int32(len(s.RawRecords)),
		})
	}
	return results, nil
}

// GetAllGroups returns every group row.
func (ms *MemoryHistoryStore) GetAllGroups(_ context.Context) ([]schema.GroupRecord, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	var results []schema.GroupRecord
	for i, s := range ms.snapshots {
		for j, g := range s.Groups {
			results = append(results, schema.GroupRecord{
				SnapshotID:    int64(i + 1),
				Position:      int32(j + 1),
				MainTitle:     g.MainTitle,
				TotalSeeders:  int32(g.TotalSeeders),
				TotalLeechers: int32(g.TotalLeechers),
				TotalPeers:    int32(g.TotalPeers),
				MemberTitles:  slices.Clone(g.MemberTitles),
			})
		}
	}
	return results, nil
}

// GetAllRawRecords returns every archived raw record row.
func (ms *MemoryHistoryStore) GetAllRawRecords(_ context.Context) ([]schema.RawRecordRow, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	var results []schema.RawRecordRow
	for i, s := range ms.snapshots {
		for j, r := range s.RawRecords {
			results = append(results, schema.RawRecordRow{
				SnapshotID: int64(i + 1),
				Position:   int32(j),
				Title:      r.Title,
				Seeders:    int32(r.Seeders),
				Leechers:   int32(r.Leechers),
			})
		}
	}
	return results, nil
}

// Close drops nothing; the data lives until the process exits.
func (ms *MemoryHistoryStore) Close() error {
	return nil
}
