// Package main provides a performance benchmarking tool for the peerrank CLI.
// It generates synthetic collector batches of increasing size, times the group and
// run commands against the in-memory and SQLite backends, treats the first successful
// SQLite run as cold and averages the rest as warm, and writes the timings to CSV.
//
// Prerequisites:
// - peerrank binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory for generated batches, history databases and output files
package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"
)

// BenchmarkResult holds the result of one batch size and command.
type BenchmarkResult struct {
	BatchSize  int
	Command    string
	MemoryTime string
	ColdTime   string
	WarmTime   string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir    string
	Timeout    time.Duration
	MemoryRuns int
	SQLiteRuns int
	BatchSizes []int
	Seed       uint64
}

// Fragments used to build scraped-looking release names.
var (
	baseTitles = []string{
		"Oppenheimer", "Barbie", "Dune Part Two", "Poor Things", "The Holdovers", "Past Lives",
		"Killers of the Flower Moon", "Godzilla Minus One", "The Zone of Interest", "Anatomy of a Fall",
		"Elden Ring", "Baldurs Gate 3", "Starfield", "Alan Wake 2", "Hogwarts Legacy", "Cyberpunk 2077",
	}
	releaseTags = []string{"1080p.BluRay.x264", "2160p.WEB-DL.HDR", "720p.HDTV", "REPACK.PROPER", "Multi-Lang", "GOG"}
	separators  = []string{".", " ", "_"}
)

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir:    os.Args[1],
		Timeout:    5 * time.Minute,
		MemoryRuns: 3,
		SQLiteRuns: 4,
		BatchSizes: []int{100, 1000, 5000, 20000},
		Seed:       42,
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results, err := runBenchmarks(config)
	if err != nil {
		fmt.Printf("Benchmark failed: %v\n", err)
		os.Exit(1)
	}

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the peerrank binary exists and the work dir is usable
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("peerrank"); err != nil {
		return fmt.Errorf("peerrank binary not found in PATH")
	}
	return os.MkdirAll(config.WorkDir, 0o755)
}

// generateBatch writes a collector JSON batch with the given number of records.
func generateBatch(path string, size int, rng *rand.Rand, ts time.Time) error {
	records := make([]map[string]any, 0, size)
	for range size {
		title := baseTitles[rng.IntN(len(baseTitles))]
		sep := separators[rng.IntN(len(separators))]
		name := title + sep + strconv.Itoa(2020+rng.IntN(5)) + sep + releaseTags[rng.IntN(len(releaseTags))]
		records = append(records, map[string]any{
			"title":     name,
			"seeders":   rng.IntN(5000),
			"leechers":  rng.IntN(800),
			"category":  "movies",
			"timestamp": ts.Format(time.RFC3339),
		})
	}
	data, err := json.Marshal(records)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// runBenchmarks executes all benchmark tests across configured batch sizes
func runBenchmarks(config BenchmarkConfig) ([]BenchmarkResult, error) {
	var results []BenchmarkResult
	rng := rand.New(rand.NewPCG(config.Seed, config.Seed))

	fmt.Printf("Starting benchmark: %d batch sizes, %v timeout, memory: %d runs, sqlite: %d runs\n",
		len(config.BatchSizes), config.Timeout, config.MemoryRuns, config.SQLiteRuns)

	for _, size := range config.BatchSizes {
		fmt.Printf("Benchmarking %d records\n", size)

		batches := make([]string, max(config.MemoryRuns, config.SQLiteRuns))
		start := time.Now().UTC().Add(-time.Duration(len(batches)) * time.Hour).Truncate(time.Second)
		for i := range batches {
			batches[i] = filepath.Join(config.WorkDir, fmt.Sprintf("batch_%d_%d.json", size, i))
			if err := generateBatch(batches[i], size, rng, start.Add(time.Duration(i)*time.Hour)); err != nil {
				return nil, fmt.Errorf("failed to generate batch: %w", err)
			}
		}

		results = append(results, runBenchmarkSuite(config, size, "group", batches))
		results = append(results, runBenchmarkSuite(config, size, "run", batches))
	}

	return results, nil
}

// runBenchmarkSuite runs both the memory and the sqlite phases for a command
func runBenchmarkSuite(config BenchmarkConfig, size int, command string, batches []string) BenchmarkResult {
	fmt.Printf("Running %s on %d records\n", command, size)

	dbPath := filepath.Join(config.WorkDir, fmt.Sprintf("history_%d_%s.db", size, command))
	_ = os.Remove(dbPath)

	runPhase := func(backend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		times := runBenchmark(config, command, backend, dbPath, batches[:numRuns])
		if len(times) == 0 {
			return 0, "TIMEOUT"
		}
		coldTime = times[0]
		if len(times) == 1 {
			return coldTime, fmt.Sprintf("%.3fs", coldTime)
		}
		var sum float64
		for _, t := range times[1:] {
			sum += t
		}
		return coldTime, fmt.Sprintf("%.3fs", sum/float64(len(times)-1))
	}

	_, memoryAvg := runPhase("none", config.MemoryRuns, "Memory")
	coldTime, warmAvg := runPhase("sqlite", config.SQLiteRuns, "SQLite")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  Memory average: %s, Cold time: %s, Warm average: %s\n", memoryAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		BatchSize:  size,
		Command:    command,
		MemoryTime: memoryAvg,
		ColdTime:   coldTimeStr,
		WarmTime:   warmAvg,
	}
}

// runBenchmark executes one peerrank command per batch and returns the successful timings in order
func runBenchmark(config BenchmarkConfig, command, backend, dbPath string, batches []string) []float64 {
	var times []float64
	for _, batch := range batches {
		args := []string{
			command, "--input", batch, "--output", "json",
			"--history-backend", backend,
			"--output-dir", filepath.Join(config.WorkDir, "data"),
			"--lock-dir", filepath.Join(config.WorkDir, "locks"),
		}
		if backend == "sqlite" {
			args = append(args, "--history-db-connect", dbPath)
		}

		start := time.Now()
		cmd := exec.Command("peerrank", args...)

		done := make(chan error, 1)
		go func() {
			done <- cmd.Run()
		}()

		select {
		case err := <-done:
			if err == nil {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
		}
	}
	return times
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("peerrank_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"records", "cmd", "memory_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		row := []string{strconv.Itoa(result.BatchSize), result.Command, result.MemoryTime, result.ColdTime, result.WarmTime}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	printCommandSummary(results, "group", "Group (dry run):")
	printCommandSummary(results, "run", "Full run:")
}

// printCommandSummary displays results for a specific command type
func printCommandSummary(results []BenchmarkResult, command, title string) {
	fmt.Printf("%s\n", title)
	for _, result := range results {
		if result.Command == command {
			fmt.Printf("  %6d records: Memory: %s, Cold: %s, Warm: %s\n", result.BatchSize, result.MemoryTime, result.ColdTime, result.WarmTime)
		}
	}
}
