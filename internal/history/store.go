package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/snapguard/internal/contract"
	"github.com/huangsam/snapguard/schema"
)

// Table names for check history.
const (
	checkRunsTable  = "snapguard_check_runs"
	violationsTable = "snapguard_violations"
)

// historyTables lists every table owned by the store.
var historyTables = []string{checkRunsTable, violationsTable}

// HistoryStoreImpl implements the HistoryStore interface.
type HistoryStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore creates a new HistoryStore with the specified backend.
// NoneBackend yields a store that accepts every call and records nothing.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	if backend == schema.NoneBackend {
		return &HistoryStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}
	if err := createHistoryTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history tables: %w", err)
	}
	return &HistoryStoreImpl{db: db, backend: backend}, nil
}

// disabled reports whether the store records nothing.
func (hs *HistoryStoreImpl) disabled() bool {
	return hs.backend == schema.NoneBackend || hs.db == nil
}

// createHistoryTables creates the history tables.
func createHistoryTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{checkRunsTable, getCreateCheckRunsQuery(backend)},
		{violationsTable, getCreateViolationsQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// getCreateCheckRunsQuery returns the CREATE TABLE query for snapguard_check_runs.
func getCreateCheckRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(checkRunsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				run_uuid VARCHAR(36) NOT NULL,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				total_projects INT NOT NULL DEFAULT 0,
				total_violations INT NOT NULL DEFAULT 0,
				passed BOOLEAN NOT NULL DEFAULT FALSE,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				run_uuid TEXT NOT NULL,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				total_projects INT NOT NULL DEFAULT 0,
				total_violations INT NOT NULL DEFAULT 0,
				passed BOOLEAN NOT NULL DEFAULT FALSE,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				run_uuid TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				total_projects INTEGER NOT NULL DEFAULT 0,
				total_violations INTEGER NOT NULL DEFAULT 0,
				passed INTEGER NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateViolationsQuery returns the CREATE TABLE query for snapguard_violations.
func getCreateViolationsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(violationsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				project VARCHAR(255) NOT NULL,
				plugin VARCHAR(255) NOT NULL,
				dependency VARCHAR(255) NOT NULL,
				PRIMARY KEY (run_id, project, plugin, dependency)
			);
		`, quotedTableName)

	default: // SQLite and PostgreSQL
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				project TEXT NOT NULL,
				plugin TEXT NOT NULL,
				dependency TEXT NOT NULL,
				PRIMARY KEY (run_id, project, plugin, dependency)
			);
		`, quotedTableName)
	}
}

// BeginRun creates a new check run and returns its numeric ID.
func (hs *HistoryStoreImpl) BeginRun(runUUID string, startTime time.Time, configParams map[string]any) (int64, error) {
	if hs.disabled() {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(checkRunsTable, hs.backend)
	p := placeholders(hs.backend, 3)

	var runID int64
	switch hs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (run_uuid, start_time, config_params) VALUES (%s) RETURNING run_id`,
			quotedTableName, strings.Join(p, ", "))
		err = hs.db.QueryRow(query, runUUID, startTime, string(configJSON)).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (run_uuid, start_time, config_params) VALUES (%s)`,
			quotedTableName, strings.Join(p, ", "))
		var result sql.Result
		result, err = hs.db.Exec(query, runUUID, formatTime(startTime, hs.backend), string(configJSON))
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert check run: %w", err)
	}
	return runID, nil
}

// EndRun updates the check run with its verdict.
func (hs *HistoryStoreImpl) EndRun(runID int64, endTime time.Time, totalProjects, totalViolations int, passed bool) error {
	if hs.disabled() {
		return nil
	}

	quotedTableName := quoteTableName(checkRunsTable, hs.backend)
	p := placeholders(hs.backend, 1)
	start := timeScanner{backend: hs.backend}
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quotedTableName, p[0])
	if err := hs.db.QueryRow(query, runID).Scan(start.dest()); err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}
	startTime, err := start.value()
	if err != nil {
		return err
	}
	durationMs := endTime.Sub(*startTime).Milliseconds()

	p = placeholders(hs.backend, 6)
	updateQuery := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, total_projects = %s, total_violations = %s, passed = %s WHERE run_id = %s`,
		quotedTableName, p[0], p[1], p[2], p[3], p[4], p[5])
	_, err = hs.db.Exec(updateQuery, formatTime(endTime, hs.backend), durationMs, totalProjects, totalViolations, passed, runID)
	if err != nil {
		return fmt.Errorf("failed to update check run: %w", err)
	}
	return nil
}

// RecordViolations stores the violation rows of a check run in one transaction.
func (hs *HistoryStoreImpl) RecordViolations(runID int64, rows []schema.ViolationRow) error {
	if hs.disabled() || len(rows) == 0 {
		return nil
	}

	tx, err := hs.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	p := placeholders(hs.backend, 4)
	query := fmt.Sprintf(`INSERT INTO %s (run_id, project, plugin, dependency) VALUES (%s)`,
		quoteTableName(violationsTable, hs.backend), strings.Join(p, ", "))
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare violation insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, row := range rows {
		if _, err := stmt.Exec(runID, row.Project, row.Plugin, row.Dependency); err != nil {
			return fmt.Errorf("failed to insert violation %s -> %s: %w", row.Plugin, row.Dependency, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit violations: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if hs.disabled() {
		return status, nil
	}

	runsTable := quoteTableName(checkRunsTable, hs.backend)
	row := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runsTable))
	if err := row.Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		p := placeholders(hs.backend, 1)
		failedQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE end_time IS NOT NULL AND passed = %s", runsTable, p[0])
		if err := hs.db.QueryRow(failedQuery, false).Scan(&status.FailedRuns); err != nil {
			return status, fmt.Errorf("failed to get failed runs: %w", err)
		}

		last := timeScanner{backend: hs.backend}
		lastQuery := fmt.Sprintf("SELECT run_id, start_time, passed FROM %s ORDER BY run_id DESC LIMIT 1", runsTable)
		if err := hs.db.QueryRow(lastQuery).Scan(&status.LastRunID, last.dest(), &status.LastRunPassed); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		lastTime, err := last.value()
		if err != nil {
			return status, err
		}
		status.LastRunTime = *lastTime

		oldest := timeScanner{backend: hs.backend}
		oldestQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", runsTable)
		if err := hs.db.QueryRow(oldestQuery).Scan(oldest.dest()); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		oldestTime, err := oldest.value()
		if err != nil {
			return status, err
		}
		status.OldestRunTime = *oldestTime
	}

	for _, table := range historyTables {
		var count int64
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, hs.backend))
		if err := hs.db.QueryRow(countQuery).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.TotalViolations = status.TableSizes[violationsTable]

	return status, nil
}

// GetAllRuns retrieves all check runs from the store.
func (hs *HistoryStoreImpl) GetAllRuns() ([]schema.CheckRunRecord, error) {
	if hs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, run_uuid, start_time, end_time, run_duration_ms,
		total_projects, total_violations, passed, config_params
		FROM %s ORDER BY run_id`, quoteTableName(checkRunsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query check runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.CheckRunRecord
	for rows.Next() {
		var record schema.CheckRunRecord
		start := timeScanner{backend: hs.backend}
		end := timeScanner{backend: hs.backend}
		if err := rows.Scan(&record.RunID, &record.RunUUID, start.dest(), end.dest(), &record.RunDurationMs,
			&record.TotalProjects, &record.TotalViolations, &record.Passed, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan check run: %w", err)
		}
		startTime, err := start.value()
		if err != nil {
			return nil, err
		}
		if startTime != nil {
			record.StartTime = *startTime
		}
		if record.EndTime, err = end.value(); err != nil {
			return nil, err
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating check runs: %w", err)
	}
	return results, nil
}

// GetAllViolations retrieves all recorded violations from the store.
func (hs *HistoryStoreImpl) GetAllViolations() ([]schema.ViolationRecord, error) {
	if hs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, project, plugin, dependency FROM %s ORDER BY run_id, project, plugin, dependency`,
		quoteTableName(violationsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query violations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ViolationRecord
	for rows.Next() {
		var record schema.ViolationRecord
		if err := rows.Scan(&record.RunID, &record.Project, &record.Plugin, &record.Dependency); err != nil {
			return nil, fmt.Errorf("failed to scan violation: %w", err)
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating violations: %w", err)
	}
	return results, nil
}
