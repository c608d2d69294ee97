// Package iocache is for durable history I/O.
package iocache

import (
	"sync"

	"github.com/huangsam/peerrank/internal/contract"
)

// HistoryStoreManager manages the HistoryStore instance.
type HistoryStoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	history      contract.HistoryStore
}

var _ contract.HistoryManager = &HistoryStoreManager{} // Compile-time check

// GetHistoryStore returns the HistoryStore.
func (mgr *HistoryStoreManager) GetHistoryStore() contract.HistoryStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.history
}

// NewHistoryStoreManager wraps an existing store, mostly for tests and the MCP server.
func NewHistoryStoreManager(store contract.HistoryStore) *HistoryStoreManager {
	return &HistoryStoreManager{history: store}
}
