package iocache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/google/uuid"
	"github.com/huangsam/peerrank/internal/contract"
	"github.com/huangsam/peerrank/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// HistoryStoreImpl persists snapshots in a SQL database.
type HistoryStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore creates a new HistoryStore with the specified backend.
// The schema is migrated to the latest version before the store is returned.
// NoneBackend yields an in-memory store that lives as long as the process.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	if backend == schema.NoneBackend {
		return NewMemoryHistoryStore(), nil
	}

	db, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}

	// Ping to verify connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		var connDetail string
		switch backend {
		case schema.MySQLBackend:
			connDetail = "Check that MySQL is running and the connection string is correct. Ensure user/password are valid."
		case schema.PostgreSQLBackend:
			connDetail = "Check that PostgreSQL is running and the connection string is correct. Ensure user/password are valid."
		default:
			connDetail = "Verify the database file is accessible."
		}
		return nil, fmt.Errorf("failed to connect to %s database: %w. %s", backend, err, connDetail)
	}

	if err := migrateUp(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history tables: %w", err)
	}

	return &HistoryStoreImpl{db: db, backend: backend}, nil
}

// openDB opens a connection pool for a SQL backend without verifying it.
func openDB(backend schema.DatabaseBackend, connStr string) (*sql.DB, error) {
	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = GetHistoryDBFilePath()
		}
		db, err := sql.Open("sqlite", dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)
		return db, nil

	case schema.MySQLBackend:
		// connStr should be:
		// user:password@tcp(host:port)/dbname
		cfg, err := mysql.ParseDSN(connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open MySQL database: %w. Check connection string format: user:password@tcp(host:port)/dbname", err)
		}
		// Timestamps are scanned into time.Time and stored in UTC
		cfg.ParseTime = true
		cfg.Loc = time.UTC
		db, err := sql.Open("mysql", cfg.FormatDSN())
		if err != nil {
			return nil, fmt.Errorf("failed to open MySQL database: %w", err)
		}
		return db, nil

	case schema.PostgreSQLBackend:
		// connStr should be:
		// host=localhost port=5432 user=postgres password=mysecretpassword dbname=postgres
		db, err := sql.Open("pgx", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}
		return db, nil

	default:
		return nil, fmt.Errorf("unsupported history backend: %s. Must be sqlite, mysql, postgresql, or none", backend)
	}
}

// LoadHistory returns every snapshot of a category in chronological order.
// Raw records are not loaded; they are only needed for export.
func (hs *HistoryStoreImpl) LoadHistory(ctx context.Context, category schema.Category) (schema.History, error) {
	history := schema.History{Category: category}

	snapshotsQuery := fmt.Sprintf(`SELECT snapshot_id, run_id, taken_at FROM %s WHERE category = %s ORDER BY taken_at`,
		quoteTableName(snapshotsTable, hs.backend), placeholders(hs.backend, 1))
	rows, err := hs.db.QueryContext(ctx, snapshotsQuery, string(category))
	if err != nil {
		return history, fmt.Errorf("failed to query snapshots for %s: %w", category, err)
	}

	indexByID := make(map[int64]int)
	for rows.Next() {
		var id int64
		var runID string
		takenAt := timeColumn{backend: hs.backend}
		if err := rows.Scan(&id, &runID, takenAt.dest()); err != nil {
			_ = rows.Close()
			return history, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		ts, err := takenAt.Time()
		if err != nil {
			_ = rows.Close()
			return history, err
		}
		indexByID[id] = len(history.Snapshots)
		history.Snapshots = append(history.Snapshots, schema.Snapshot{
			RunID:     runID,
			Timestamp: ts,
			Category:  category,
			Groups:    []schema.TitleGroup{},
		})
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return history, fmt.Errorf("error iterating snapshots: %w", err)
	}
	_ = rows.Close()

	if len(history.Snapshots) == 0 {
		return history, nil
	}

	groupsQuery := fmt.Sprintf(`
		SELECT g.snapshot_id, g.main_title, g.total_seeders, g.total_leechers, g.member_titles
		FROM %s g JOIN %s s ON g.snapshot_id = s.snapshot_id
		WHERE s.category = %s
		ORDER BY g.snapshot_id, g.group_rank`,
		quoteTableName(groupsTable, hs.backend), quoteTableName(snapshotsTable, hs.backend), placeholders(hs.backend, 1))
	rows, err = hs.db.QueryContext(ctx, groupsQuery, string(category))
	if err != nil {
		return history, fmt.Errorf("failed to query groups for %s: %w", category, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var id int64
		var g schema.TitleGroup
		var members string
		if err := rows.Scan(&id, &g.MainTitle, &g.TotalSeeders, &g.TotalLeechers, &members); err != nil {
			return history, fmt.Errorf("failed to scan group: %w", err)
		}
		g.TotalPeers = g.TotalSeeders + g.TotalLeechers
		if err := json.Unmarshal([]byte(members), &g.MemberTitles); err != nil {
			return history, fmt.Errorf("failed to decode member titles of %q: %w", g.MainTitle, err)
		}
		idx, ok := indexByID[id]
		if !ok {
			continue
		}
		history.Snapshots[idx].Groups = append(history.Snapshots[idx].Groups, g)
	}
	if err := rows.Err(); err != nil {
		return history, fmt.Errorf("error iterating groups: %w", err)
	}

	return history, nil
}

// AppendSnapshot persists a snapshot with its groups and raw records in one transaction.
func (hs *HistoryStoreImpl) AppendSnapshot(ctx context.Context, snapshot schema.Snapshot) (schema.Snapshot, error) {
	if snapshot.RunID == "" {
		snapshot.RunID = uuid.NewString()
	}

	tx, err := hs.db.BeginTx(ctx, nil)
	if err != nil {
		return snapshot, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Enforce chronological append per category
	latestQuery := fmt.Sprintf(`SELECT taken_at FROM %s WHERE category = %s ORDER BY taken_at DESC LIMIT 1`,
		quoteTableName(snapshotsTable, hs.backend), placeholders(hs.backend, 1))
	latest := timeColumn{backend: hs.backend}
	err = tx.QueryRowContext(ctx, latestQuery, string(snapshot.Category)).Scan(latest.dest())
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return snapshot, fmt.Errorf("failed to read latest snapshot of %s: %w", snapshot.Category, err)
	default:
		last, err := latest.Time()
		if err != nil {
			return snapshot, err
		}
		if !snapshot.Timestamp.After(last) {
			return snapshot, fmt.Errorf("%w: %s is not after the last stored snapshot at %s",
				schema.ErrOutOfOrderSnapshot, snapshot.Timestamp.Format(time.RFC3339), last.Format(time.RFC3339))
		}
	}

	snapshotID, err := hs.insertSnapshot(ctx, tx, snapshot)
	if err != nil {
		return snapshot, err
	}

	groupStmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (snapshot_id, group_rank, main_title, total_seeders, total_leechers, total_peers, member_titles)
		VALUES (%s)`, quoteTableName(groupsTable, hs.backend), placeholders(hs.backend, 7)))
	if err != nil {
		return snapshot, fmt.Errorf("failed to prepare group insert: %w", err)
	}
	defer func() { _ = groupStmt.Close() }()

	for i, g := range snapshot.Groups {
		members, err := json.Marshal(g.MemberTitles)
		if err != nil {
			return snapshot, fmt.Errorf("failed to encode member titles of %q: %w", g.MainTitle, err)
		}
		if _, err := groupStmt.ExecContext(ctx, snapshotID, i+1, g.MainTitle, g.TotalSeeders, g.TotalLeechers, g.TotalPeers, string(members)); err != nil {
			return snapshot, fmt.Errorf("failed to insert group %q: %w", g.MainTitle, err)
		}
	}

	rawStmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (snapshot_id, record_index, title, seeders, leechers)
		VALUES (%s)`, quoteTableName(rawRecordsTable, hs.backend), placeholders(hs.backend, 5)))
	if err != nil {
		return snapshot, fmt.Errorf("failed to prepare raw record insert: %w", err)
	}
	defer func() { _ = rawStmt.Close() }()

	for i, r := range snapshot.RawRecords {
		if _, err := rawStmt.ExecContext(ctx, snapshotID, i, r.Title, r.Seeders, r.Leechers); err != nil {
			return snapshot, fmt.Errorf("failed to insert raw record %q: %w", r.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return snapshot, fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return snapshot, nil
}

// insertSnapshot inserts the snapshot row and returns its generated ID.
func (hs *HistoryStoreImpl) insertSnapshot(ctx context.Context, tx *sql.Tx, snapshot schema.Snapshot) (int64, error) {
	quotedTableName := quoteTableName(snapshotsTable, hs.backend)
	args := []any{
		snapshot.RunID, string(snapshot.Category), formatTime(snapshot.Timestamp, hs.backend),
		len(snapshot.Groups), len(snapshot.RawRecords),
	}

	var snapshotID int64
	switch hs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (run_id, category, taken_at, group_count, raw_count) VALUES ($1, $2, $3, $4, $5) RETURNING snapshot_id`, quotedTableName)
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&snapshotID); err != nil {
			return 0, fmt.Errorf("failed to insert snapshot: %w", err)
		}
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (run_id, category, taken_at, group_count, raw_count) VALUES (?, ?, ?, ?, ?)`, quotedTableName)
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, fmt.Errorf("failed to insert snapshot: %w", err)
		}
		snapshotID, err = result.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("failed to read snapshot ID: %w", err)
		}
	}
	return snapshotID, nil
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus(ctx context.Context) (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		Categories: make(map[schema.Category]schema.CategoryStatus),
		TableSizes: make(map[string]int64),
	}

	query := fmt.Sprintf(`SELECT category, COUNT(*), MIN(taken_at), MAX(taken_at) FROM %s GROUP BY category`,
		quoteTableName(snapshotsTable, hs.backend))
	rows, err := hs.db.QueryContext(ctx, query)
	if err != nil {
		return status, fmt.Errorf("failed to summarize snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var category string
		var cs schema.CategoryStatus
		first := timeColumn{backend: hs.backend}
		last := timeColumn{backend: hs.backend}
		if err := rows.Scan(&category, &cs.Snapshots, first.dest(), last.dest()); err != nil {
			return status, fmt.Errorf("failed to scan snapshot summary: %w", err)
		}
		if cs.FirstSnapshot, err = first.Time(); err != nil {
			return status, err
		}
		if cs.LastSnapshot, err = last.Time(); err != nil {
			return status, err
		}
		status.Categories[schema.Category(category)] = cs
		status.TotalSnapshots += cs.Snapshots
	}
	if err := rows.Err(); err != nil {
		return status, fmt.Errorf("error iterating snapshot summary: %w", err)
	}

	// Get table sizes
	for _, table := range historyTables {
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, hs.backend))
		var count int64
		if err := hs.db.QueryRowContext(ctx, countQuery).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllSnapshots retrieves all snapshot rows from the store.
func (hs *HistoryStoreImpl) GetAllSnapshots(ctx context.Context) ([]schema.SnapshotRecord, error) {
	query := fmt.Sprintf(`SELECT snapshot_id, run_id, category, taken_at, group_count, raw_count FROM %s ORDER BY snapshot_id`,
		quoteTableName(snapshotsTable, hs.backend))
	rows, err := hs.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.SnapshotRecord
	for rows.Next() {
		var record schema.SnapshotRecord
		var category string
		takenAt := timeColumn{backend: hs.backend}
		if err := rows.Scan(&record.SnapshotID, &record.RunID, &category, takenAt.dest(), &record.GroupCount, &record.RawCount); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		record.Category = schema.Category(category)
		if record.TakenAt, err = takenAt.Time(); err != nil {
			return nil, err
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}
	return results, nil
}

// GetAllGroups retrieves all group rows from the store.
func (hs *HistoryStoreImpl) GetAllGroups(ctx context.Context) ([]schema.GroupRecord, error) {
	query := fmt.Sprintf(`SELECT snapshot_id, group_rank, main_title, total_seeders, total_leechers, total_peers, member_titles
		FROM %s ORDER BY snapshot_id, group_rank`, quoteTableName(groupsTable, hs.backend))
	rows, err := hs.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.GroupRecord
	for rows.Next() {
		var record schema.GroupRecord
		var members string
		if err := rows.Scan(&record.SnapshotID, &record.Position, &record.MainTitle, &record.TotalSeeders,
			&record.TotalLeechers, &record.TotalPeers, &members); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		if err := json.Unmarshal([]byte(members), &record.MemberTitles); err != nil {
			return nil, fmt.Errorf("failed to decode member titles of %q: %w", record.MainTitle, err)
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating groups: %w", err)
	}
	return results, nil
}

// GetAllRawRecords retrieves all archived raw record rows from the store.
func (hs *HistoryStoreImpl) GetAllRawRecords(ctx context.Context) ([]schema.RawRecordRow, error) {
	query := fmt.Sprintf(`SELECT snapshot_id, record_index, title, seeders, leechers FROM %s ORDER BY snapshot_id, record_index`,
		quoteTableName(rawRecordsTable, hs.backend))
	rows, err := hs.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query raw records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RawRecordRow
	for rows.Next() {
		var record schema.RawRecordRow
		if err := rows.Scan(&record.SnapshotID, &record.Position, &record.Title, &record.Seeders, &record.Leechers); err != nil {
			return nil, fmt.Errorf("failed to scan raw record: %w", err)
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating raw records: %w", err)
	}
	return results, nil
}

// Close closes the underlying connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}
