package schema

import "time"

// HistoryStatus represents the status of the check history store.
type HistoryStatus struct {
	Backend         string           `json:"backend"`
	Connected       bool             `json:"connected"`
	TotalRuns       int64            `json:"total_runs"`
	FailedRuns      int64            `json:"failed_runs"`
	LastRunID       int64            `json:"last_run_id,omitempty"`
	LastRunTime     time.Time        `json:"last_run_time"`
	LastRunPassed   bool             `json:"last_run_passed"`
	OldestRunTime   time.Time        `json:"oldest_run_time"`
	TotalViolations int64            `json:"total_violations"`
	TableSizes      map[string]int64 `json:"table_sizes"`
}

// CheckRunRecord represents one row of the check runs table.
type CheckRunRecord struct {
	RunID           int64
	RunUUID         string
	StartTime       time.Time
	EndTime         *time.Time
	RunDurationMs   *int32
	TotalProjects   int32
	TotalViolations int32
	Passed          bool
	ConfigParams    *string
}

// ViolationRecord represents one row of the violations table.
type ViolationRecord struct {
	RunID      int64
	Project    string
	Plugin     string
	Dependency string
}
