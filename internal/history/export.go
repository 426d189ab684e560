package history

import (
	"errors"
	"fmt"

	"github.com/huangsam/snapguard/internal/contract"
	"github.com/huangsam/snapguard/internal/parquet"
)

// ExecuteHistoryExport exports the global history store to Parquet files.
func ExecuteHistoryExport(outputFile string) error {
	return exportHistory(Manager.GetHistoryStore(), outputFile)
}

// exportHistory writes the check runs and violations of store next to outputFile.
func exportHistory(store contract.HistoryStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("history is not configured. Use --history-backend to select a store")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no check history found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total check runs: %d\n", status.TotalRuns)
	fmt.Printf("Total violation records: %d\n", status.TableSizes[violationsTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve check runs: %w", err)
	}
	violations, err := store.GetAllViolations()
	if err != nil {
		return fmt.Errorf("failed to retrieve violations: %w", err)
	}

	runsFile := outputFile + ".check_runs.parquet"
	parquetRuns := parquet.ConvertCheckRunRecords(runs)
	if err := parquet.WriteCheckRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write check runs: %w", err)
	}
	fmt.Printf("Exported %d check runs to: %s\n", len(parquetRuns), runsFile)

	violationsFile := outputFile + ".violations.parquet"
	parquetViolations := parquet.ConvertViolationRecords(violations)
	if err := parquet.WriteViolationsParquet(parquetViolations, violationsFile); err != nil {
		return fmt.Errorf("failed to write violations: %w", err)
	}
	fmt.Printf("Exported %d violation records to: %s\n", len(parquetViolations), violationsFile)

	return nil
}
