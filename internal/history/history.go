// Package history records check runs and their violations in a SQL database.
package history

import (
	"sync"

	"github.com/huangsam/snapguard/internal/contract"
)

// HistoryStoreManager holds the history store used by the check command.
type HistoryStoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	history      contract.HistoryStore
}

var _ contract.HistoryManager = &HistoryStoreManager{} // Compile-time check

// GetHistoryStore returns the history store, or nil when history was never initialized.
func (mgr *HistoryStoreManager) GetHistoryStore() contract.HistoryStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.history
}
