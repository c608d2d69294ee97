package iocache

import (
	"context"

	"github.com/huangsam/peerrank/internal/contract"
	"github.com/huangsam/peerrank/schema"
	"github.com/stretchr/testify/mock"
)

// MockHistoryManager is a mock implementation of HistoryManager for testing.
type MockHistoryManager struct {
	mock.Mock
}

var _ contract.HistoryManager = &MockHistoryManager{} // Compile-time check

// GetHistoryStore implements the HistoryManager interface.
func (m *MockHistoryManager) GetHistoryStore() contract.HistoryStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.HistoryStore)
	return store
}

// MockHistoryStore is a mock implementation of HistoryStore for testing.
type MockHistoryStore struct {
	mock.Mock
}

var _ contract.HistoryStore = &MockHistoryStore{} // Compile-time check

// LoadHistory implements the HistoryStore interface.
func (m *MockHistoryStore) LoadHistory(ctx context.Context, category schema.Category) (schema.History, error) {
	args := m.Called(ctx, category)
	return args.Get(0).(schema.History), args.Error(1)
}

// AppendSnapshot implements the HistoryStore interface.
func (m *MockHistoryStore) AppendSnapshot(ctx context.Context, snapshot schema.Snapshot) (schema.Snapshot, error) {
	args := m.Called(ctx, snapshot)
	return args.Get(0).(schema.Snapshot), args.Error(1)
}

// GetStatus implements the HistoryStore interface.
func (m *MockHistoryStore) GetStatus(ctx context.Context) (schema.HistoryStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(schema.HistoryStatus), args.Error(1)
}

// GetAllSnapshots implements the HistoryStore interface.
func (m *MockHistoryStore) GetAllSnapshots(ctx context.Context) ([]schema.SnapshotRecord, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]schema.SnapshotRecord)
	return records, args.Error(1)
}

// GetAllGroups implements the HistoryStore interface.
func (m *MockHistoryStore) GetAllGroups(ctx context.Context) ([]schema.GroupRecord, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]schema.GroupRecord)
	return records, args.Error(1)
}

// GetAllRawRecords implements the HistoryStore interface.
func (m *MockHistoryStore) GetAllRawRecords(ctx context.Context) ([]schema.RawRecordRow, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]schema.RawRecordRow)
	return records, args.Error(1)
}

// Close implements the HistoryStore interface.
func (m *MockHistoryStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
