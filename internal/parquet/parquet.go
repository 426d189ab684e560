// Package parquet provides data structures and functions for exporting snapguard
// check data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/snapguard/schema"
	"github.com/parquet-go/parquet-go"
)

// CheckRun represents a single recorded check run.
// This struct maps to the snapguard_check_runs database table.
type CheckRun struct {
	// RunID is the numeric identifier assigned by the history store
	RunID int64 `parquet:"run_id,snappy"`

	// RunUUID is the identifier shared with the check output
	RunUUID string `parquet:"run_uuid,snappy"`

	// StartTime is when the check began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the check completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the check in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	TotalProjects   int32 `parquet:"total_projects,snappy"`
	TotalViolations int32 `parquet:"total_violations,snappy"`
	Passed          bool  `parquet:"passed,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// Violation is one recorded (project, plugin, dependency) triple of a check run.
// This struct maps to the snapguard_violations database table.
type Violation struct {
	RunID      int64  `parquet:"run_id,snappy"`
	Project    string `parquet:"project,dict,snappy"`
	Plugin     string `parquet:"plugin,dict,snappy"`
	Dependency string `parquet:"dependency,snappy"`
}

// ReportRow is one violation of a single check, written by the parquet output mode.
type ReportRow struct {
	RunUUID    string `parquet:"run_uuid,dict,snappy"`
	Project    string `parquet:"project,dict,snappy"`
	Plugin     string `parquet:"plugin,dict,snappy"`
	Dependency string `parquet:"dependency,snappy"`
}

// writeParquet writes data to a new Parquet file at outputPath.
// The schema is derived from the struct tags of T.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteCheckRunsParquet writes a slice of CheckRun structs to a Parquet file.
func WriteCheckRunsParquet(data []CheckRun, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteViolationsParquet writes a slice of Violation structs to a Parquet file.
func WriteViolationsParquet(data []Violation, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteReportParquet writes the violations of one check result to a Parquet file.
func WriteReportParquet(result *schema.CheckResult, outputPath string) error {
	return writeParquet(ConvertCheckResult(result), outputPath)
}

// ConvertCheckRunRecords converts schema.CheckRunRecord to CheckRun for Parquet export.
func ConvertCheckRunRecords(records []schema.CheckRunRecord) []CheckRun {
	result := make([]CheckRun, len(records))
	for i, record := range records {
		result[i] = CheckRun{
			RunID:           record.RunID,
			RunUUID:         record.RunUUID,
			StartTime:       record.StartTime,
			EndTime:         record.EndTime,
			RunDurationMs:   record.RunDurationMs,
			TotalProjects:   record.TotalProjects,
			TotalViolations: record.TotalViolations,
			Passed:          record.Passed,
			ConfigParams:    record.ConfigParams,
		}
	}
	return result
}

// ConvertViolationRecords converts schema.ViolationRecord to Violation for Parquet export.
func ConvertViolationRecords(records []schema.ViolationRecord) []Violation {
	result := make([]Violation, len(records))
	for i, record := range records {
		result[i] = Violation{
			RunID:      record.RunID,
			Project:    record.Project,
			Plugin:     record.Plugin,
			Dependency: record.Dependency,
		}
	}
	return result
}

// ConvertCheckResult flattens a check result into report rows.
func ConvertCheckResult(result *schema.CheckResult) []ReportRow {
	if result == nil {
		return []ReportRow{}
	}
	rows := result.Rows()
	converted := make([]ReportRow, len(rows))
	for i, row := range rows {
		converted[i] = ReportRow{
			RunUUID:    result.RunID,
			Project:    row.Project,
			Plugin:     row.Plugin,
			Dependency: row.Dependency,
		}
	}
	return converted
}
