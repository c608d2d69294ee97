package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/peerrank/internal/contract"
	"github.com/huangsam/peerrank/internal/iocache"
	"github.com/huangsam/peerrank/internal/outwriter"
	"github.com/huangsam/peerrank/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func runConfig(t *testing.T) *contract.Config {
	t.Helper()
	dir := t.TempDir()
	return &contract.Config{
		Categories:     []schema.Category{schema.MoviesCategory},
		ResultLimit:    20,
		Window:         schema.DailyWindow,
		Output:         schema.JSONOut,
		OutputFile:     filepath.Join(dir, "out.json"),
		OutputDir:      filepath.Join(dir, "data"),
		AsOf:           t0.Add(48 * time.Hour),
		HistoryBackend: schema.NoneBackend,
		LockDir:        filepath.Join(dir, "locks"),
		LockTimeout:    time.Second,
	}
}

func writeInput(t *testing.T, lines string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "listings.csv")
	require.NoError(t, os.WriteFile(path, []byte(lines), 0o644))
	return path
}

func TestResolveRunTimestamp(t *testing.T) {
	now := time.Date(2025, 3, 5, 8, 30, 15, 987654321, time.UTC)
	stamped := []schema.RawRecord{{Timestamp: t0}, {Timestamp: t0.Add(time.Minute)}}

	assert.Equal(t, t0.Add(time.Hour), ResolveRunTimestamp(t0.Add(time.Hour), stamped, now), "explicit run time wins")
	assert.Equal(t, t0.Add(time.Minute), ResolveRunTimestamp(time.Time{}, stamped, now), "newest record timestamp")
	assert.Equal(t, time.Date(2025, 3, 5, 8, 30, 15, 0, time.UTC), ResolveRunTimestamp(time.Time{}, nil, now), "now truncated to the second")

	withNanos := time.Date(2025, 3, 5, 8, 30, 15, 123456789, time.FixedZone("x", 7200))
	got := ResolveRunTimestamp(withNanos, nil, now)
	assert.Equal(t, time.UTC, got.Location())
	assert.Equal(t, 123456000, got.Nanosecond())
}

func TestExecuteRunScenario(t *testing.T) {
	ctx := context.Background()
	cfg := runConfig(t)
	store := iocache.NewMemoryHistoryStore()

	first, err := ExecuteRun(ctx, cfg, store, schema.MoviesCategory, []schema.RawRecord{
		movie("Oppenheimer", 90, 10),
		movie("Dune Part Two", 40, 10),
	}, t0)
	require.NoError(t, err)
	assert.True(t, first.Appended)
	assert.NotEmpty(t, first.Snapshot.RunID)
	for _, w := range schema.AllWindows {
		for _, e := range first.Rankings[w] {
			assert.True(t, e.RankChange.New, "no baseline yet")
		}
	}

	second, err := ExecuteRun(ctx, cfg, store, schema.MoviesCategory, []schema.RawRecord{
		movie("Dune Part Two", 150, 20),
		movie("Oppenheimer", 90, 10),
		movie("Barbie", 5, 5),
		movie("", 1, 1),
	}, t0.Add(12*time.Hour))
	require.NoError(t, err)
	assert.True(t, second.Appended)
	require.Len(t, second.Rejected, 1)
	assert.Equal(t, 3, second.Rejected[0].Index)
	assert.Len(t, second.Snapshot.RawRecords, 3)

	daily := second.Rankings[schema.DailyWindow]
	require.Len(t, daily, 3)
	assert.Equal(t, "Dune Part Two", daily[0].Title)
	assert.Equal(t, 1, daily[0].RankChange.Delta)
	assert.Equal(t, -1, daily[1].RankChange.Delta)
	assert.True(t, daily[2].RankChange.New)

	assert.Equal(t, []string{"Dune Part Two", "Oppenheimer", "Barbie"}, second.Chart.Titles)
	require.Len(t, second.Chart.Data, 2)
	assert.Equal(t, 50, *second.Chart.Data[0][0])
	assert.Nil(t, second.Chart.Data[0][2])

	history, err := store.LoadHistory(ctx, schema.MoviesCategory)
	require.NoError(t, err)
	assert.Equal(t, 2, history.Len())
	assert.Equal(t, second.Snapshot.RunID, history.Snapshots[1].RunID)
}

func TestExecuteRunOutOfOrder(t *testing.T) {
	ctx := context.Background()
	cfg := runConfig(t)
	store := iocache.NewMemoryHistoryStore()

	_, err := ExecuteRun(ctx, cfg, store, schema.MoviesCategory, []schema.RawRecord{movie("Oppenheimer", 10, 0)}, t0.Add(time.Hour))
	require.NoError(t, err)

	result, err := ExecuteRun(ctx, cfg, store, schema.MoviesCategory, []schema.RawRecord{movie("Barbie", 99, 0)}, t0)
	require.NoError(t, err)
	assert.False(t, result.Appended)
	assert.Empty(t, result.Snapshot.RunID)
	assert.Equal(t, t0.Add(time.Hour), result.RankedAt)

	// Outputs reflect the stored history, not the rejected snapshot
	require.Len(t, result.Rankings[schema.DailyWindow], 1)
	assert.Equal(t, "Oppenheimer", result.Rankings[schema.DailyWindow][0].Title)
	assert.Equal(t, []string{"Oppenheimer"}, result.Chart.Titles)

	history, err := store.LoadHistory(ctx, schema.MoviesCategory)
	require.NoError(t, err)
	assert.Equal(t, 1, history.Len())

	// Ranking and chart files carry the timestamp of the stored snapshot
	paths, err := outwriter.NewOutWriter().WriteRunFiles(schema.MoviesCategory, result, cfg.OutputDir)
	require.NoError(t, err)
	ranking, err := outwriter.ReadRankingFile(filepath.Join(cfg.OutputDir, "movies_daily_rankings.json"))
	require.NoError(t, err)
	chart, err := outwriter.ReadChartFile(paths[len(paths)-1])
	require.NoError(t, err)
	assert.Equal(t, t0.Add(time.Hour).Format(time.RFC3339), ranking.UpdatedAt)
	assert.Equal(t, chart.UpdatedAt, ranking.UpdatedAt)
}

func TestExecuteRunRankedAt(t *testing.T) {
	ctx := context.Background()
	cfg := runConfig(t)
	store := iocache.NewMemoryHistoryStore()

	result, err := ExecuteRun(ctx, cfg, store, schema.MoviesCategory, []schema.RawRecord{movie("Oppenheimer", 10, 0)}, t0)
	require.NoError(t, err)
	assert.True(t, result.Appended)
	assert.Equal(t, t0, result.RankedAt)
	assert.Equal(t, result.Snapshot.Timestamp, result.RankedAt)
}

func TestExecuteRunEmptyBatch(t *testing.T) {
	ctx := context.Background()
	cfg := runConfig(t)
	store := iocache.NewMemoryHistoryStore()

	_, err := ExecuteRun(ctx, cfg, store, schema.GamesCategory, nil, t0)
	assert.ErrorIs(t, err, ErrNoData, "nothing to rank without history")

	_, err = ExecuteRun(ctx, cfg, store, schema.MoviesCategory, []schema.RawRecord{movie("Oppenheimer", 10, 0)}, t0)
	require.NoError(t, err)

	result, err := ExecuteRun(ctx, cfg, store, schema.MoviesCategory, []schema.RawRecord{movie("", 1, 1)}, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, result.Appended)
	require.Len(t, result.Rejected, 1)
	assert.Equal(t, t0, result.RankedAt)
	assert.Equal(t, "Oppenheimer", result.Rankings[schema.DailyWindow][0].Title)
	assert.Len(t, result.Chart.Dates, 1, "no empty column in the chart")

	history, err := store.LoadHistory(ctx, schema.MoviesCategory)
	require.NoError(t, err)
	assert.Equal(t, 1, history.Len())
	games, err := store.LoadHistory(ctx, schema.GamesCategory)
	require.NoError(t, err)
	assert.Equal(t, 0, games.Len())
}

func TestExecuteRunConcurrentAppendRejected(t *testing.T) {
	ctx := context.Background()
	cfg := runConfig(t)
	store := &iocache.MockHistoryStore{}

	empty := schema.History{Category: schema.MoviesCategory}
	stored := schema.History{Category: schema.MoviesCategory, Snapshots: []schema.Snapshot{snapshotAt(t0.Add(time.Hour), "Oppenheimer")}}
	store.On("LoadHistory", ctx, schema.MoviesCategory).Return(empty, nil).Once()
	store.On("AppendSnapshot", ctx, mock.Anything).Return(schema.Snapshot{}, fmt.Errorf("%w: raced", schema.ErrOutOfOrderSnapshot)).Once()
	store.On("LoadHistory", ctx, schema.MoviesCategory).Return(stored, nil).Once()

	result, err := ExecuteRun(ctx, cfg, store, schema.MoviesCategory, []schema.RawRecord{movie("Barbie", 1, 1)}, t0)
	require.NoError(t, err)
	assert.False(t, result.Appended)
	assert.Equal(t, "Oppenheimer", result.Rankings[schema.DailyWindow][0].Title)
	store.AssertExpectations(t)
}

func TestExecuteRunStoreErrors(t *testing.T) {
	ctx := context.Background()
	cfg := runConfig(t)

	t.Run("load", func(t *testing.T) {
		store := &iocache.MockHistoryStore{}
		store.On("LoadHistory", ctx, schema.MoviesCategory).Return(schema.History{}, assert.AnError)
		_, err := ExecuteRun(ctx, cfg, store, schema.MoviesCategory, nil, t0)
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("append", func(t *testing.T) {
		store := &iocache.MockHistoryStore{}
		store.On("LoadHistory", ctx, schema.MoviesCategory).Return(schema.History{Category: schema.MoviesCategory}, nil)
		store.On("AppendSnapshot", ctx, mock.Anything).Return(schema.Snapshot{}, assert.AnError)
		_, err := ExecuteRun(ctx, cfg, store, schema.MoviesCategory, []schema.RawRecord{movie("Barbie", 1, 1)}, t0)
		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestExecuteRunCommand(t *testing.T) {
	ctx := context.Background()
	cfg := runConfig(t)
	cfg.Categories = []schema.Category{schema.MoviesCategory, schema.GamesCategory}
	cfg.RunTime = t0
	cfg.InputPath = writeInput(t, "title,seeders,leechers,category\n"+
		"Oppenheimer,10,2,movies\n"+
		"Elden Ring,7,1,games\n"+
		"Barbie,oops,1,movies\n"+
		"Dune Part Two,4,4,\n")
	mgr := iocache.NewHistoryStoreManager(iocache.NewMemoryHistoryStore())

	require.NoError(t, ExecuteRunCommand(ctx, cfg, mgr))

	for _, category := range cfg.Categories {
		for _, w := range schema.AllWindows {
			assert.FileExists(t, filepath.Join(cfg.OutputDir, outwriter.RankingFileName(category, w)))
		}
		assert.FileExists(t, filepath.Join(cfg.OutputDir, outwriter.ChartFileName(category)))
	}

	movies, err := outwriter.ReadRankingFile(filepath.Join(cfg.OutputDir, "movies_daily_rankings.json"))
	require.NoError(t, err)
	require.Len(t, movies.Rankings, 2)
	assert.Equal(t, "Oppenheimer", movies.Rankings[0].Title)
	assert.Equal(t, "Dune Part Two", movies.Rankings[1].Title)

	games, err := outwriter.ReadRankingFile(filepath.Join(cfg.OutputDir, "games_daily_rankings.json"))
	require.NoError(t, err)
	require.Len(t, games.Rankings, 2, "records without a category join every run")
	assert.Equal(t, "Elden Ring", games.Rankings[0].Title)

	// The lock is released after the run
	lock, err := iocache.LockCategory(ctx, cfg.LockDir, schema.MoviesCategory)
	require.NoError(t, err)
	require.NoError(t, lock.Unlock())
}

func TestExecuteRunCommandSkipsEmptyCategory(t *testing.T) {
	cfg := runConfig(t)
	cfg.Categories = []schema.Category{schema.MoviesCategory, schema.GamesCategory}
	cfg.RunTime = t0
	cfg.InputPath = writeInput(t, "title,seeders,leechers,category\nOppenheimer,10,2,movies\n")
	store := iocache.NewMemoryHistoryStore()

	require.NoError(t, ExecuteRunCommand(context.Background(), cfg, iocache.NewHistoryStoreManager(store)))

	assert.FileExists(t, filepath.Join(cfg.OutputDir, "movies_daily_rankings.json"))
	assert.NoFileExists(t, filepath.Join(cfg.OutputDir, "games_daily_rankings.json"))
	assert.NoFileExists(t, filepath.Join(cfg.OutputDir, "games_chart_data.json"))

	games, err := store.LoadHistory(context.Background(), schema.GamesCategory)
	require.NoError(t, err)
	assert.Equal(t, 0, games.Len())
}

func TestExecuteRunCommandLocked(t *testing.T) {
	ctx := context.Background()
	cfg := runConfig(t)
	cfg.LockTimeout = 200 * time.Millisecond
	cfg.InputPath = writeInput(t, "title,seeders,leechers\nOppenheimer,1,1\n")
	store := iocache.NewMemoryHistoryStore()

	lock, err := iocache.LockCategory(ctx, cfg.LockDir, schema.MoviesCategory)
	require.NoError(t, err)
	defer func() { _ = lock.Unlock() }()

	err = ExecuteRunCommand(ctx, cfg, iocache.NewHistoryStoreManager(store))
	assert.ErrorIs(t, err, iocache.ErrCategoryLocked)

	status, err := store.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, status.TotalSnapshots)
}

func TestExecuteRunCommandBadInput(t *testing.T) {
	cfg := runConfig(t)
	cfg.InputPath = filepath.Join(t.TempDir(), "missing.csv")
	err := ExecuteRunCommand(context.Background(), cfg, iocache.NewHistoryStoreManager(iocache.NewMemoryHistoryStore()))
	assert.Error(t, err)
}

func seededManager(t *testing.T) contract.HistoryManager {
	t.Helper()
	store := iocache.NewMemoryHistoryStore()
	for _, s := range []schema.Snapshot{
		snapshotAt(t0, "A", "B"),
		snapshotAt(t0.Add(12*time.Hour), "B", "A", "C"),
	} {
		_, err := store.AppendSnapshot(context.Background(), s)
		require.NoError(t, err)
	}
	return iocache.NewHistoryStoreManager(store)
}

func TestGetRankingsResults(t *testing.T) {
	ctx := WithSuppressHeader(context.Background())
	cfg := runConfig(t)
	mgr := seededManager(t)

	ranking, err := GetRankingsResults(ctx, cfg, mgr, schema.MoviesCategory)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-02T00:00:00Z", ranking.UpdatedAt)
	assert.Equal(t, schema.DailyWindow, ranking.Period)
	require.Len(t, ranking.Rankings, 3)
	assert.Equal(t, "B", ranking.Rankings[0].Title)
	assert.Equal(t, 1, ranking.Rankings[0].RankChange.Delta)

	cfg.AsOf = t0.Add(time.Hour)
	ranking, err = GetRankingsResults(ctx, cfg, mgr, schema.MoviesCategory)
	require.NoError(t, err)
	assert.Equal(t, "A", ranking.Rankings[0].Title)

	_, err = GetRankingsResults(ctx, cfg, mgr, schema.GamesCategory)
	assert.True(t, errors.Is(err, ErrNoData))
}

func TestExecuteRankingsCommand(t *testing.T) {
	ctx := context.Background()
	cfg := runConfig(t)
	cfg.Categories = []schema.Category{schema.GamesCategory, schema.MoviesCategory}

	require.NoError(t, ExecuteRankingsCommand(ctx, cfg, seededManager(t)), "missing history is not an error")
	ranking, err := outwriter.ReadRankingFile(cfg.OutputFile)
	require.NoError(t, err)
	assert.Equal(t, schema.MoviesCategory, ranking.Category)

	// A ranking file can be printed back without touching the store
	fromFile := runConfig(t)
	fromFile.FromFile = cfg.OutputFile
	mgr := &iocache.MockHistoryManager{}
	require.NoError(t, ExecuteRankingsCommand(ctx, fromFile, mgr))
	mgr.AssertNotCalled(t, "GetHistoryStore")

	copied, err := outwriter.ReadRankingFile(fromFile.OutputFile)
	require.NoError(t, err)
	assert.Equal(t, ranking, copied)
}

// captureStdout returns what fn wrote to standard output.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()
	require.NoError(t, w.Close())
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(data)
}

func TestNoDataMessagesStayOffStdout(t *testing.T) {
	ctx := context.Background()
	cfg := runConfig(t)
	cfg.Categories = []schema.Category{schema.GamesCategory}
	cfg.OutputFile = ""
	mgr := iocache.NewHistoryStoreManager(iocache.NewMemoryHistoryStore())

	out := captureStdout(t, func() {
		require.NoError(t, ExecuteRankingsCommand(ctx, cfg, mgr))
		require.NoError(t, ExecuteChartCommand(ctx, cfg, mgr))
	})
	assert.NotContains(t, out, "No rankings yet")
	assert.NotContains(t, out, "No chart data yet")
}

func TestGetChartResults(t *testing.T) {
	ctx := WithSuppressHeader(context.Background())
	cfg := runConfig(t)
	cfg.ResultLimit = 2

	series, err := GetChartResults(ctx, cfg, seededManager(t), schema.MoviesCategory)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, series.Titles)
	assert.Len(t, series.Dates, 2)

	_, err = GetChartResults(ctx, cfg, seededManager(t), schema.GamesCategory)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestExecuteChartCommandWritesFile(t *testing.T) {
	cfg := runConfig(t)
	cfg.WriteFiles = true

	require.NoError(t, ExecuteChartCommand(context.Background(), cfg, seededManager(t)))

	chart, err := outwriter.ReadChartFile(filepath.Join(cfg.OutputDir, "movies_chart_data.json"))
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A", "C"}, chart.Titles)
	assert.Nil(t, chart.Data[0][2])
}

func TestExecuteGroupCommand(t *testing.T) {
	cfg := runConfig(t)
	cfg.InputPath = writeInput(t, "title,seeders,leechers\n"+
		"Movie.Title.2023.1080p.BluRay,100,20\n"+
		"Movie Title (2023),40,10\n"+
		"Barbie,5,5\n")
	store := &iocache.MockHistoryStore{}

	require.NoError(t, ExecuteGroupCommand(context.Background(), cfg, iocache.NewHistoryStoreManager(store)))
	store.AssertNotCalled(t, "AppendSnapshot", mock.Anything, mock.Anything)

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"total_peers": 170`)
	assert.NoDirExists(t, cfg.OutputDir)
}
