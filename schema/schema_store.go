package schema

import "time"

// SnapshotRecord represents a row from the peerrank_snapshots table.
type SnapshotRecord struct {
	SnapshotID int64
	RunID      string
	Category   Category
	TakenAt    time.Time
	GroupCount int32
	RawCount   int32
}

// GroupRecord represents a row from the peerrank_groups table.
type GroupRecord struct {
	SnapshotID    int64
	Position      int32
	MainTitle     string
	TotalSeeders  int32
	TotalLeechers int32
	TotalPeers    int32
	MemberTitles  []string
}

// RawRecordRow represents a row from the peerrank_raw_records table.
type RawRecordRow struct {
	SnapshotID int64
	Position   int32
	Title      string
	Seeders    int32
	Leechers   int32
}
