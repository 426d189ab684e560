// Package contract provides interfaces and shared utilities for snapguard's internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/snapguard/schema"
)

// ReactorLoader supplies the projects taking part in one release.
// This allows the check to be tested without any build files on disk.
type ReactorLoader interface {
	// Load returns the reactor projects in build order.
	Load(ctx context.Context) ([]schema.Project, error)
}

// HistoryManager defines the interface for managing history stores.
// This allows the history layer to be mocked for testing.
type HistoryManager interface {
	GetHistoryStore() HistoryStore
}

// HistoryStore defines the interface for tracking check runs and their violations.
type HistoryStore interface {
	// BeginRun creates a new check run and returns its numeric ID
	BeginRun(runUUID string, startTime time.Time, configParams map[string]any) (int64, error)

	// EndRun updates the check run with its verdict
	EndRun(runID int64, endTime time.Time, totalProjects, totalViolations int, passed bool) error

	// RecordViolations stores the violation rows of a check run
	RecordViolations(runID int64, rows []schema.ViolationRow) error

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// GetAllRuns returns every recorded check run
	GetAllRuns() ([]schema.CheckRunRecord, error)

	// GetAllViolations returns every recorded violation
	GetAllViolations() ([]schema.ViolationRecord, error)

	// Close closes the underlying connection
	Close() error
}
