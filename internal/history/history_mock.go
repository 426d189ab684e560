package history

import (
	"time"

	"github.com/huangsam/snapguard/internal/contract"
	"github.com/huangsam/snapguard/schema"
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

// BeginRun implements the HistoryStore interface.
func (m *MockHistoryStore) BeginRun(runUUID string, startTime time.Time, configParams map[string]any) (int64, error) {
	args := m.Called(runUUID, startTime, configParams)
	return args.Get(0).(int64), args.Error(1)
}

// EndRun implements the HistoryStore interface.
func (m *MockHistoryStore) EndRun(runID int64, endTime time.Time, totalProjects, totalViolations int, passed bool) error {
	args := m.Called(runID, endTime, totalProjects, totalViolations, passed)
	return args.Error(0)
}

// RecordViolations implements the HistoryStore interface.
func (m *MockHistoryStore) RecordViolations(runID int64, rows []schema.ViolationRow) error {
	args := m.Called(runID, rows)
	return args.Error(0)
}

// GetStatus implements the HistoryStore interface.
func (m *MockHistoryStore) GetStatus() (schema.HistoryStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.HistoryStatus), args.Error(1)
}

// GetAllRuns implements the HistoryStore interface.
func (m *MockHistoryStore) GetAllRuns() ([]schema.CheckRunRecord, error) {
	args := m.Called()
	runs, _ := args.Get(0).([]schema.CheckRunRecord)
	return runs, args.Error(1)
}

// GetAllViolations implements the HistoryStore interface.
func (m *MockHistoryStore) GetAllViolations() ([]schema.ViolationRecord, error) {
	args := m.Called()
	violations, _ := args.Get(0).([]schema.ViolationRecord)
	return violations, args.Error(1)
}

// Close implements the HistoryStore interface.
func (m *MockHistoryStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
