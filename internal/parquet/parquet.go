// Package parquet provides data structures and functions for exporting peerrank
// history to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/peerrank/schema"
	"github.com/parquet-go/parquet-go"
)

// Snapshot represents one persisted run of a category.
// This struct maps to the peerrank_snapshots database table.
type Snapshot struct {
	// SnapshotID is the unique identifier of the snapshot row
	SnapshotID int64 `parquet:"snapshot_id,snappy"`

	// RunID is the UUID assigned when the snapshot was persisted
	RunID string `parquet:"run_id,snappy"`

	// Category is movies or games
	Category string `parquet:"category,snappy,dict"`

	// TakenAt is the snapshot timestamp (stored as TIMESTAMP with nanosecond precision)
	TakenAt time.Time `parquet:"taken_at,snappy"`

	// GroupCount is the number of title groups in the snapshot
	GroupCount int32 `parquet:"group_count,snappy"`

	// RawCount is the number of accepted raw records archived with the snapshot
	RawCount int32 `parquet:"raw_count,snappy"`
}

// Group represents one title group of a snapshot.
// This struct maps to the peerrank_groups database table.
type Group struct {
	SnapshotID    int64    `parquet:"snapshot_id,snappy"`
	GroupRank     int32    `parquet:"group_rank,snappy"`
	MainTitle     string   `parquet:"main_title,snappy"`
	TotalSeeders  int32    `parquet:"total_seeders,snappy"`
	TotalLeechers int32    `parquet:"total_leechers,snappy"`
	TotalPeers    int32    `parquet:"total_peers,snappy"`
	MemberTitles  []string `parquet:"member_titles,list"`
}

// RawRecord represents one archived collector record of a snapshot.
// This struct maps to the peerrank_raw_records database table.
type RawRecord struct {
	SnapshotID  int64  `parquet:"snapshot_id,snappy"`
	RecordIndex int32  `parquet:"record_index,snappy"`
	Title       string `parquet:"title,snappy"`
	Seeders     int32  `parquet:"seeders,snappy"`
	Leechers    int32  `parquet:"leechers,snappy"`
}

// writeParquet writes rows of any struct type to a Parquet file.
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
	// Close flushes the footer, so its error matters
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteSnapshotsParquet writes a slice of Snapshot structs to a Parquet file.
func WriteSnapshotsParquet(data []Snapshot, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteGroupsParquet writes a slice of Group structs to a Parquet file.
func WriteGroupsParquet(data []Group, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteRawRecordsParquet writes a slice of RawRecord structs to a Parquet file.
func WriteRawRecordsParquet(data []RawRecord, outputPath string) error {
	return writeParquet(data, outputPath)
}

// ConvertSnapshotRecords converts schema.SnapshotRecord to Snapshot for Parquet export.
func ConvertSnapshotRecords(records []schema.SnapshotRecord) []Snapshot {
	result := make([]Snapshot, len(records))
	for i, record := range records {
		result[i] = Snapshot{
			SnapshotID: record.SnapshotID,
			RunID:      record.RunID,
			Category:   string(record.Category),
			TakenAt:    record.TakenAt,
			GroupCount: record.GroupCount,
			RawCount:   record.RawCount,
		}
	}
	return result
}

// ConvertGroupRecords converts schema.GroupRecord to Group for Parquet export.
func ConvertGroupRecords(records []schema.GroupRecord) []Group {
	result := make([]Group, len(records))
	for i, record := range records {
		result[i] = Group{
			SnapshotID:    record.SnapshotID,
			GroupRank:     record.Position,
			MainTitle:     record.MainTitle,
			TotalSeeders:  record.TotalSeeders,
			TotalLeechers: record.TotalLeechers,
			TotalPeers:    record.TotalPeers,
			MemberTitles:  record.MemberTitles,
		}
	}
	return result
}

// ConvertRawRecordRows converts schema.RawRecordRow to RawRecord for Parquet export.
func ConvertRawRecordRows(records []schema.RawRecordRow) []RawRecord {
	result := make([]RawRecord, len(records))
	for i, record := range records {
		result[i] = RawRecord{
			SnapshotID:  record.SnapshotID,
			RecordIndex: record.Position,
			Title:       record.Title,
			Seeders:     record.Seeders,
			Leechers:    record.Leechers,
		}
	}
	return result
}

// SampleSnapshots generates sample Snapshot rows for demonstration.
func SampleSnapshots(now time.Time) []Snapshot {
	return []Snapshot{
		{SnapshotID: 1, RunID: "5b0c7f5e-8a7b-4f0e-9a57-0f1f1e9d8c01", Category: "movies", TakenAt: now.Add(-24 * time.Hour), GroupCount: 2, RawCount: 3},
		{SnapshotID: 2, RunID: "9d2e4c1a-3b6f-4e8d-a1c2-7e5f6a8b9c02", Category: "movies", TakenAt: now, GroupCount: 2, RawCount: 2},
	}
}

// SampleGroups generates sample Group rows for demonstration.
func SampleGroups() []Group {
	return []Group{
		{SnapshotID: 1, GroupRank: 1, MainTitle: "Movie.Title.2023.1080p.BluRay", TotalSeeders: 140, TotalLeechers: 30, TotalPeers: 170,
			MemberTitles: []string{"Movie.Title.2023.1080p.BluRay", "Movie Title (2023)"}},
		{SnapshotID: 1, GroupRank: 2, MainTitle: "Another Film 2160p", TotalSeeders: 80, TotalLeechers: 9, TotalPeers: 89,
			MemberTitles: []string{"Another Film 2160p"}},
		{SnapshotID: 2, GroupRank: 1, MainTitle: "Another Film 2160p", TotalSeeders: 200, TotalLeechers: 20, TotalPeers: 220,
			MemberTitles: []string{"Another Film 2160p"}},
		{SnapshotID: 2, GroupRank: 2, MainTitle: "Movie.Title.2023.1080p.BluRay", TotalSeeders: 90, TotalLeechers: 10, TotalPeers: 100,
			MemberTitles: []string{"Movie.Title.2023.1080p.BluRay"}},
	}
}
