package cmd

import (
	"errors"
	"fmt"

	"github.com/huangsam/peerrank/internal/contract"
	"github.com/huangsam/peerrank/internal/iocache"
	"github.com/huangsam/peerrank/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// historyCmd focused on snapshot history management.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage the stored snapshot history",
	Long: `Manage the append-only snapshot history that rankings and charts are built from.

Every run stores:
- Snapshot metadata (run ID, category, timestamp)
- The ranked title groups with their seeders and leechers
- The raw collector records that were accepted

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (in-memory)

Subcommands:
  status  - Show history statistics
  export  - Export data to Parquet for analytics
  clear   - Remove all history
  migrate - Run database schema migrations`,
}

// historyStatusCmd shows history status.
var historyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display history statistics and connection details",
	Long: `Show the backend, connection state, per-category snapshot counts and table sizes.

Examples:
  peerrank history status
  peerrank history status --history-backend postgresql --history-db-connect "host=localhost dbname=peerrank"`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		status, err := historyManager.GetHistoryStore().GetStatus(rootCtx)
		if err != nil {
			return fmt.Errorf("failed to get history status: %w", err)
		}
		iocache.PrintHistoryStatus(status)
		return nil
	},
}

// historyClearCmd clears the history.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all stored snapshots",
	Long: `Delete every stored snapshot, group and raw record.

For SQLite the database file is removed. For MySQL and PostgreSQL the history
and migration tables are dropped.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  peerrank history export --output-file backup
  peerrank history clear`,
	PreRunE: configSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		dbFilePath := cfg.HistoryDBConnect
		if dbFilePath == "" {
			dbFilePath = iocache.GetHistoryDBFilePath()
		}
		if err := iocache.ClearHistory(cfg.HistoryBackend, dbFilePath, cfg.HistoryDBConnect); err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		fmt.Println("History cleared successfully.")
		return nil
	},
}

// historyExportCmd exports history data to Parquet files.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the history to Parquet for BI tools and analytics",
	Long: `Export all stored history to three Parquet files next to --output-file:

- <output-file>.snapshots.parquet   - one row per snapshot
- <output-file>.groups.parquet      - one row per ranked title group
- <output-file>.raw_records.parquet - one row per accepted collector record

Requires: --output-file parameter

Examples:
  peerrank history export --output-file peerrank
  duckdb -c "SELECT * FROM read_parquet('peerrank.groups.parquet') LIMIT 10"`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		if cfg.HistoryBackend == schema.NoneBackend {
			return errors.New("history export needs a persistent backend (sqlite, mysql or postgresql)")
		}
		return iocache.ExecuteHistoryExport(rootCtx, historyManager.GetHistoryStore(), cfg.OutputFile)
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
  peerrank history migrate

  # Migrate to specific version
  peerrank history migrate --target-version 2

  # Rollback to initial state
  peerrank history migrate --target-version 0`,
	PreRunE: configSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := contract.ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
			return err
		}
		return iocache.MigrateHistory(cfg.HistoryBackend, cfg.HistoryDBConnect, viper.GetInt("target-version"))
	},
}
