package iocache

import (
	"context"
	"errors"
	"fmt"

	"github.com/huangsam/peerrank/internal/contract"
	"github.com/huangsam/peerrank/internal/parquet"
)

// ExecuteHistoryExport performs the actual export of history data to Parquet files.
// It writes <outputFile>.snapshots.parquet, <outputFile>.groups.parquet and
// <outputFile>.raw_records.parquet.
func ExecuteHistoryExport(ctx context.Context, store contract.HistoryStore, outputFile string) error {
	// Validate that output file is specified
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	// Check if there's any data to export
	status, err := store.GetStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalSnapshots == 0 {
		return errors.New("no history data found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total snapshots: %d\n", status.TotalSnapshots)

	snapshots, err := store.GetAllSnapshots(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve snapshots: %w", err)
	}
	groups, err := store.GetAllGroups(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve groups: %w", err)
	}
	rawRecords, err := store.GetAllRawRecords(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve raw records: %w", err)
	}

	snapshotsFile := outputFile + ".snapshots.parquet"
	if err := parquet.WriteSnapshotsParquet(parquet.ConvertSnapshotRecords(snapshots), snapshotsFile); err != nil {
		return fmt.Errorf("failed to write snapshots: %w", err)
	}
	fmt.Printf("Exported %d snapshots to: %s\n", len(snapshots), snapshotsFile)

	groupsFile := outputFile + ".groups.parquet"
	if err := parquet.WriteGroupsParquet(parquet.ConvertGroupRecords(groups), groupsFile); err != nil {
		return fmt.Errorf("failed to write groups: %w", err)
	}
	fmt.Printf("Exported %d groups to: %s\n", len(groups), groupsFile)

	rawFile := outputFile + ".raw_records.parquet"
	if err := parquet.WriteRawRecordsParquet(parquet.ConvertRawRecordRows(rawRecords), rawFile); err != nil {
		return fmt.Errorf("failed to write raw records: %w", err)
	}
	fmt.Printf("Exported %d raw records to: %s\n", len(rawRecords), rawFile)

	fmt.Println("\nExport complete! The Parquet files can be used with:")
	fmt.Println("  - Apache Spark")
	fmt.Println("  - Pandas (via pyarrow)")
	fmt.Println("  - DuckDB")
	fmt.Println("  - Any other Parquet-compatible tool")

	return nil
}
