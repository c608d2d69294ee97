// Package core has the grouping-and-ranking pipeline and the executors built on it.
package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/huangsam/peerrank/internal/collector"
	"github.com/huangsam/peerrank/internal/contract"
	"github.com/huangsam/peerrank/internal/iocache"
	"github.com/huangsam/peerrank/internal/outwriter"
	"github.com/huangsam/peerrank/schema"
)

// Sentinel errors of the pipeline, shared with the schema package.
var (
	ErrMalformedRecord    = schema.ErrMalformedRecord
	ErrOutOfOrderSnapshot = schema.ErrOutOfOrderSnapshot
	ErrNoData             = schema.ErrNoData
)

// ExecutorFunc defines the function signature for executing the different commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager) error

// ResolveRunTimestamp picks the snapshot timestamp of a run: the explicit run time,
// else the newest record timestamp, else now truncated to the second.
// The result is in UTC with microsecond precision so that every backend stores it exactly.
func ResolveRunTimestamp(runTime time.Time, records []schema.RawRecord, now time.Time) time.Time {
	ts := runTime
	if ts.IsZero() {
		ts = collector.NewestTimestamp(records)
	}
	if ts.IsZero() {
		ts = now.Truncate(time.Second)
	}
	return ts.UTC().Truncate(time.Microsecond)
}

// ExecuteRun runs the pipeline for one category batch: grouping, appending the snapshot,
// persisting it, ranking every window and materializing the chart series.
//
// An out-of-order timestamp or a batch without groups is logged and skips persistence;
// rankings and the chart then reflect the stored history as of its latest snapshot, and
// RankedAt names that snapshot. A skipped batch against an empty history returns ErrNoData.
// The caller holds the category lock.
func ExecuteRun(ctx context.Context, cfg *contract.Config, store contract.HistoryStore, category schema.Category, records []schema.RawRecord, timestamp time.Time) (schema.RunResult, error) {
	var opts []GroupOption
	if cfg.DisplayTitles {
		opts = append(opts, WithDisplayTitles())
	}
	grouped := Group(records, category, opts...)
	for _, r := range grouped.Rejected {
		contract.LogWarn(fmt.Sprintf("Skipping %s record %d", category, r.Index), r.Reason)
	}

	history, err := store.LoadHistory(ctx, category)
	if err != nil {
		return schema.RunResult{}, fmt.Errorf("failed to load %s history: %w", category, err)
	}

	snapshot := schema.Snapshot{
		Timestamp:  timestamp,
		Category:   category,
		Groups:     grouped.Groups,
		RawRecords: AcceptedRecords(records, grouped.Rejected),
	}
	result := schema.RunResult{Snapshot: snapshot, Rejected: grouped.Rejected}

	asOf := timestamp
	updated, err := AppendSnapshot(history, snapshot)
	switch {
	case len(grouped.Groups) == 0:
		contract.LogWarn(fmt.Sprintf("Not persisting %s snapshot", category), fmt.Errorf("no %s records in batch", category))
		last, ok := history.Latest()
		if !ok {
			return result, fmt.Errorf("%w: no %s history", ErrNoData, category)
		}
		asOf = last.Timestamp
	case errors.Is(err, ErrOutOfOrderSnapshot):
		contract.LogWarn(fmt.Sprintf("Not persisting %s snapshot", category), err)
		last, _ := history.Latest()
		asOf = last.Timestamp
	case err != nil:
		return result, err
	default:
		stored, err := store.AppendSnapshot(ctx, snapshot)
		if errors.Is(err, ErrOutOfOrderSnapshot) {
			// Another writer got in between the load and the append
			contract.LogWarn(fmt.Sprintf("Not persisting %s snapshot", category), err)
			if history, err = store.LoadHistory(ctx, category); err != nil {
				return result, fmt.Errorf("failed to reload %s history: %w", category, err)
			}
			last, _ := history.Latest()
			asOf = last.Timestamp
			break
		}
		if err != nil {
			return result, fmt.Errorf("failed to persist %s snapshot: %w", category, err)
		}
		result.Snapshot = stored
		result.Appended = true
		updated.Snapshots[len(updated.Snapshots)-1].RunID = stored.RunID
		history = updated
	}

	current, err := CurrentSnapshot(history, asOf)
	if err != nil {
		return result, err
	}
	result.RankedAt = current.Timestamp
	if result.Rankings, err = RankAll(history, asOf, cfg.ResultLimit); err != nil {
		return result, err
	}
	if result.Chart, err = Materialize(history, cfg.ResultLimit); err != nil {
		return result, err
	}
	return result, nil
}

// ExecuteRunCommand reads the collector file and runs every configured category in turn,
// each under its own lock. It writes the ranking and chart files and prints a summary.
func ExecuteRunCommand(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager) error {
	batch, err := collector.ReadFile(cfg.InputPath, cfg.InputFormat)
	if err != nil {
		return err
	}
	for _, r := range batch.Rejected {
		contract.LogWarn(fmt.Sprintf("Skipping input record %d", r.Index), r.Reason)
	}

	ow := outwriter.NewOutWriter()
	if cfg.Output != schema.TextOut {
		ctx = WithSuppressHeader(ctx)
	}
	for _, category := range cfg.Categories {
		if err := runCategory(ctx, cfg, mgr.GetHistoryStore(), ow, category, batch.Records); err != nil {
			return err
		}
	}
	return nil
}

// runCategory runs one category under its lock.
func runCategory(ctx context.Context, cfg *contract.Config, store contract.HistoryStore, ow *outwriter.OutWriter, category schema.Category, records []schema.RawRecord) error {
	start := time.Now()

	lockCtx, cancel := context.WithTimeout(ctx, cfg.LockTimeout)
	defer cancel()
	lock, err := iocache.LockCategory(lockCtx, cfg.LockDir, category)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			contract.LogWarn(fmt.Sprintf("Cannot release %s lock", category), err)
		}
	}()

	batch := collector.ForCategory(records, category)
	timestamp := ResolveRunTimestamp(cfg.RunTime, batch, time.Now())
	if !shouldSuppressHeader(ctx) {
		outwriter.LogRunHeader(category, cfg.InputPath, timestamp)
	}

	result, err := ExecuteRun(ctx, cfg, store, category, batch, timestamp)
	if errors.Is(err, ErrNoData) {
		contract.LogWarn(fmt.Sprintf("No rankings yet for %s", category), err)
		return nil
	}
	if err != nil {
		return err
	}
	paths, err := ow.WriteRunFiles(category, result, cfg.OutputDir)
	if err != nil {
		return err
	}
	return ow.WriteRunSummary(category, result, paths, cfg, time.Since(start))
}

// ExecuteGroupCommand groups the collector file for every configured category and prints
// the groups. Nothing is persisted or written to the output directory.
func ExecuteGroupCommand(_ context.Context, cfg *contract.Config, _ contract.HistoryManager) error {
	start := time.Now()
	batch, err := collector.ReadFile(cfg.InputPath, cfg.InputFormat)
	if err != nil {
		return err
	}

	var opts []GroupOption
	if cfg.DisplayTitles {
		opts = append(opts, WithDisplayTitles())
	}
	ow := outwriter.NewOutWriter()
	for _, category := range cfg.Categories {
		grouped := Group(collector.ForCategory(batch.Records, category), category, opts...)
		rejected := append(append([]schema.RejectedRecord{}, batch.Rejected...), grouped.Rejected...)
		if err := ow.WriteGroups(category, grouped.Groups, rejected, cfg, time.Since(start)); err != nil {
			return err
		}
	}
	return nil
}

// GetRankingsResults ranks the stored history of a category as configured and returns
// it in its file form. It returns ErrNoData when nothing has been ranked yet.
func GetRankingsResults(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager, category schema.Category) (schema.RankingFile, error) {
	history, err := mgr.GetHistoryStore().LoadHistory(ctx, category)
	if err != nil {
		return schema.RankingFile{}, fmt.Errorf("failed to load %s history: %w", category, err)
	}
	if !shouldSuppressHeader(ctx) {
		outwriter.LogRankingsHeader(category, cfg.Window, cfg.AsOf)
	}

	current, err := CurrentSnapshot(history, cfg.AsOf)
	if err != nil {
		return schema.RankingFile{}, err
	}
	entries, err := Rank(history, cfg.AsOf, cfg.Window, cfg.ResultLimit)
	if err != nil {
		return schema.RankingFile{}, err
	}
	return outwriter.NewRankingFile(category, cfg.Window, current.Timestamp, entries), nil
}

// ExecuteRankingsCommand prints the ranking of every configured category.
// With a ranking file configured it prints that file instead.
func ExecuteRankingsCommand(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager) error {
	ow := outwriter.NewOutWriter()
	if cfg.FromFile != "" {
		ranking, err := outwriter.ReadRankingFile(cfg.FromFile)
		if err != nil {
			return err
		}
		return ow.WriteRankings(ranking, cfg, 0)
	}

	if cfg.Output != schema.TextOut {
		ctx = WithSuppressHeader(ctx)
	}
	for _, category := range cfg.Categories {
		start := time.Now()
		ranking, err := GetRankingsResults(ctx, cfg, mgr, category)
		if errors.Is(err, ErrNoData) {
			contract.LogWarn(fmt.Sprintf("No rankings yet for %s", category), err)
			continue
		}
		if err != nil {
			return err
		}
		if err := ow.WriteRankings(ranking, cfg, time.Since(start)); err != nil {
			return err
		}
	}
	return nil
}

// GetChartResults materializes the chart series of a category's stored history.
func GetChartResults(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager, category schema.Category) (schema.ChartSeries, error) {
	history, err := mgr.GetHistoryStore().LoadHistory(ctx, category)
	if err != nil {
		return schema.ChartSeries{}, fmt.Errorf("failed to load %s history: %w", category, err)
	}
	if !shouldSuppressHeader(ctx) {
		outwriter.LogChartHeader(category, cfg.ResultLimit)
	}
	return Materialize(history, cfg.ResultLimit)
}

// ExecuteChartCommand prints the chart series of every configured category and,
// when asked to, writes the chart files.
func ExecuteChartCommand(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager) error {
	ow := outwriter.NewOutWriter()
	if cfg.Output != schema.TextOut {
		ctx = WithSuppressHeader(ctx)
	}
	for _, category := range cfg.Categories {
		start := time.Now()
		series, err := GetChartResults(ctx, cfg, mgr, category)
		if errors.Is(err, ErrNoData) {
			contract.LogWarn(fmt.Sprintf("No chart data yet for %s", category), err)
			continue
		}
		if err != nil {
			return err
		}
		if err := ow.WriteChart(category, series, cfg, time.Since(start)); err != nil {
			return err
		}
		if cfg.WriteFiles {
			path, err := outwriter.WriteChartFile(cfg.OutputDir, category, outwriter.NewChartFile(series))
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "💾 Wrote chart file to %s\n", path)
		}
	}
	return nil
}
