package iocache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/peerrank/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryStoreManager(t *testing.T) {
	store := NewMemoryHistoryStore()
	mgr := NewHistoryStoreManager(store)
	assert.Same(t, store, mgr.GetHistoryStore())

	empty := &HistoryStoreManager{}
	assert.Nil(t, empty.GetHistoryStore())
}

func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, "`peerrank_groups`", quoteTableName(groupsTable, schema.MySQLBackend))
	assert.Equal(t, `"peerrank_groups"`, quoteTableName(groupsTable, schema.PostgreSQLBackend))
	assert.Equal(t, `"peerrank_groups"`, quoteTableName(groupsTable, schema.SQLiteBackend))
}

func TestValidateTableName(t *testing.T) {
	assert.NoError(t, validateTableName("peerrank_snapshots"))
	assert.Error(t, validateTableName(""))
	assert.Error(t, validateTableName("drop table; --"))
	assert.Error(t, validateTableName("1abc"))
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "$1, $2, $3", placeholders(schema.PostgreSQLBackend, 3))
	assert.Equal(t, "?, ?", placeholders(schema.MySQLBackend, 2))
	assert.Equal(t, "?", placeholders(schema.SQLiteBackend, 1))
}

func TestTimeColumnSQLite(t *testing.T) {
	ts := time.Date(2025, 1, 2, 3, 4, 5, 600, time.FixedZone("x", 3600))
	text := formatTime(ts, schema.SQLiteBackend).(string)
	assert.Equal(t, "2025-01-02T02:04:05.000000600Z", text)

	col := timeColumn{backend: schema.SQLiteBackend, text: text}
	got, err := col.Time()
	require.NoError(t, err)
	assert.True(t, got.Equal(ts))

	bad := timeColumn{backend: schema.SQLiteBackend, text: "yesterday"}
	_, err = bad.Time()
	assert.Error(t, err)
}

func TestLockCategory(t *testing.T) {
	dir := t.TempDir()

	lock, err := LockCategory(context.Background(), dir, schema.MoviesCategory)
	require.NoError(t, err)
	assert.Equal(t, schema.MoviesCategory, lock.Category())
	assert.FileExists(t, LockPath(dir, schema.MoviesCategory))

	// A second locker on the same category waits and times out
	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()
	_, err = LockCategory(ctx, dir, schema.MoviesCategory)
	assert.ErrorIs(t, err, ErrCategoryLocked)

	// Other categories are independent
	games, err := LockCategory(context.Background(), dir, schema.GamesCategory)
	require.NoError(t, err)
	require.NoError(t, games.Unlock())

	require.NoError(t, lock.Unlock())
	again, err := LockCategory(context.Background(), dir, schema.MoviesCategory)
	require.NoError(t, err)
	require.NoError(t, again.Unlock())
}

func TestLockCategoryCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "locks")
	lock, err := LockCategory(context.Background(), dir, schema.GamesCategory)
	require.NoError(t, err)
	defer func() { _ = lock.Unlock() }()

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestExecuteHistoryExport(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryHistoryStore()
	out := filepath.Join(t.TempDir(), "history")

	assert.Error(t, ExecuteHistoryExport(ctx, store, ""))
	assert.Error(t, ExecuteHistoryExport(ctx, store, out), "empty history has nothing to export")

	_, err := store.AppendSnapshot(ctx, sampleSnapshot(schema.MoviesCategory, t0, "A", "B"))
	require.NoError(t, err)
	require.NoError(t, ExecuteHistoryExport(ctx, store, out))

	for _, suffix := range []string{".snapshots.parquet", ".groups.parquet", ".raw_records.parquet"} {
		assert.FileExists(t, out+suffix)
	}
}

func TestExecuteHistoryExportStatusError(t *testing.T) {
	ctx := context.Background()
	store := &MockHistoryStore{}
	store.On("GetStatus", ctx).Return(schema.HistoryStatus{}, assert.AnError)

	err := ExecuteHistoryExport(ctx, store, filepath.Join(t.TempDir(), "x"))
	assert.ErrorIs(t, err, assert.AnError)
	store.AssertExpectations(t)
}
