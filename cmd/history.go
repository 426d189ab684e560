package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/snapguard/internal/contract"
	"github.com/huangsam/snapguard/internal/history"
	"github.com/huangsam/snapguard/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// loadHistoryConfig reads the history backend settings without touching the reactor.
func loadHistoryConfig() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend, err := contract.ParseHistoryBackend(viper.GetString("history-backend"))
	if err != nil {
		return err
	}
	connStr := viper.GetString("history-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// historySetup loads minimal configuration needed for history operations.
// This is used by commands that need history access without full shared setup.
func historySetup(_ *cobra.Command, _ []string) error {
	if err := loadHistoryConfig(); err != nil {
		return err
	}
	if err := history.InitStores(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return fmt.Errorf("failed to initialize history: %w", err)
	}
	historyManager = history.Manager
	return nil
}

// historyMigrateSetup loads the history settings without opening the store,
// so that migrations can run on a fresh database.
func historyMigrateSetup(_ *cobra.Command, _ []string) error {
	if err := loadHistoryConfig(); err != nil {
		return err
	}
	if cfg.HistoryBackend == schema.SQLiteBackend && cfg.HistoryDBConnect == "" {
		cfg.HistoryDBConnect = contract.GetHistoryDBFilePath()
	}
	return nil
}

// historyCmd focused on check history management.
//
// Note: History subcommands use minimal initialization instead of the full
// sharedSetup used by check. This avoids reactor path validation for simple
// history operations.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage the history of release checks",
	Long: `Manage the recorded history of release checks.

Every check run is recorded with its settings, verdict and the SNAPSHOT
plugin dependencies it found.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show history statistics
  export  - Export runs and violations to Parquet
  clear   - Remove all history data
  migrate - Run database schema migrations

Examples:
  # Check history status
  snapguard history status

  # Export for analysis in pandas/DuckDB
  snapguard history export --output-file snapguard-history.parquet`,
}

// historyStatusCmd shows history status.
var historyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display history statistics and connection details",
	Long: `Show the backend, the number of recorded runs and failures, the
first and last run times and the number of recorded violations.

Examples:
  snapguard history status
  snapguard history status --history-backend postgresql --history-db-connect "host=db dbname=snapguard"`,
	PreRunE: historySetup,
	Run: func(_ *cobra.Command, _ []string) {
		store := historyManager.GetHistoryStore()
		if store == nil {
			contract.LogFatal("Failed to get history status", fmt.Errorf("history backend is %s", cfg.HistoryBackend))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get history status", err)
		}
		history.PrintHistoryStatus(os.Stdout, status)
	},
}

// historyClearCmd clears the history data.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded check runs",
	Long: `Delete all recorded check runs and their violations.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  snapguard history export --output-file backup.parquet
  snapguard history clear`,
	PreRunE: historySetup,
	Run: func(_ *cobra.Command, _ []string) {
		// Release the SQLite file before deleting it
		history.CloseStores()
		dbFilePath := cfg.HistoryDBConnect
		if dbFilePath == "" {
			dbFilePath = contract.GetHistoryDBFilePath()
		}
		if err := history.ClearHistory(cfg.HistoryBackend, dbFilePath, cfg.HistoryDBConnect); err != nil {
			contract.LogFatal("Failed to clear history", err)
		}
		fmt.Println("History cleared successfully.")
	},
}

// historyExportCmd exports history data to Parquet files.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export check runs and violations to Parquet",
	Long: `Export all recorded history to Parquet for use with analytics tools.

Exports two datasets next to --output-file:
- check runs - settings, duration and verdict of each run
- violations - every (project, plugin, dependency) triple found

Requires: --output-file parameter

Examples:
  snapguard history export --output-file history.parquet
  duckdb -c "SELECT * FROM read_parquet('history.parquet.check_runs.parquet') LIMIT 10"`,
	PreRunE: historySetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := history.ExecuteHistoryExport(cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export history", err)
		}
	},
}

// historyMigrateCmd runs database migrations for the history store.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the history store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  snapguard history migrate

  # Rollback to the initial state
  snapguard history migrate --target-version 0`,
	PreRunE: historyMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := history.MigrateHistory(cfg.HistoryBackend, cfg.HistoryDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
		fmt.Println("Migrations applied successfully.")
	},
}
