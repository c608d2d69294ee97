package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/peerrank/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit = 20
	MaxResultLimit     = 100
	DefaultOutputDir   = "data"
	DefaultLockTimeout = 30 * time.Second
)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// Config holds the runtime configuration for a run.
// This struct remains the "final, validated" config.
type Config struct {
	Categories  []schema.Category
	ResultLimit int
	Window      schema.Window
	Output      schema.OutputMode
	OutputFile  string
	OutputDir   string
	Width       int // Terminal width override (0 = auto-detect)

	InputPath     string
	InputFormat   string // Empty means detect from the file extension
	RunTime       time.Time
	AsOf          time.Time
	DisplayTitles bool
	FromFile      string // Ranking file to print instead of ranking the stored history
	WriteFiles    bool   // Write the chart file in addition to printing it

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	LockDir     string
	LockTimeout time.Duration

	UseColors bool // Enable colored labels in table output
}

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Category         string `mapstructure:"category"`
	Limit            int    `mapstructure:"limit"`
	Output           string `mapstructure:"output"`
	OutputFile       string `mapstructure:"output-file"`
	OutputDir        string `mapstructure:"output-dir"`
	Width            int    `mapstructure:"width"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`
	LockDir          string `mapstructure:"lock-dir"`
	LockTimeout      string `mapstructure:"lock-timeout"`
	Color            string `mapstructure:"color"`

	// --- Fields from runCmd.Flags() and groupCmd.Flags() ---
	Input         string `mapstructure:"input"`
	InputFormat   string `mapstructure:"input-format"`
	At            string `mapstructure:"at"`
	DisplayTitles bool   `mapstructure:"display-titles"`

	// --- Fields from rankingsCmd.Flags() and chartCmd.Flags() ---
	Window   string `mapstructure:"window"`
	AsOf     string `mapstructure:"as-of"`
	FromFile string `mapstructure:"from-file"`
	Write    bool   `mapstructure:"write"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Categories = slices.Clone(c.Categories)
	return &clone
}

// Category returns the first configured category.
func (c *Config) Category() schema.Category {
	if len(c.Categories) == 0 {
		return schema.MoviesCategory
	}
	return c.Categories[0]
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processCategories(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := processTimeInputs(cfg, input, time.Now()); err != nil {
		return err
	}
	if err := processLocking(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' with the host:port address")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates the history backend configuration.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(input.HistoryBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	return ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect)
}

// validateSimpleInputs processes and validates all non-time related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.InputPath = strings.TrimSpace(input.Input)
	cfg.DisplayTitles = input.DisplayTitles
	cfg.FromFile = strings.TrimSpace(input.FromFile)
	cfg.WriteFiles = input.Write

	// Parse color flag
	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. ResultLimit Validation ---
	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	// --- 2. Window Validation ---
	cfg.Window = schema.Window(strings.ToLower(input.Window))
	if cfg.Window == "" {
		cfg.Window = schema.DailyWindow
	}
	if _, ok := schema.ValidWindows[cfg.Window]; !ok {
		return fmt.Errorf("invalid window '%s'. must be daily, weekly", input.Window)
	}

	// --- 3. Output Validation ---
	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json", cfg.Output)
	}

	cfg.OutputDir = strings.TrimSpace(input.OutputDir)
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}

	// --- 4. Input Format Validation ---
	cfg.InputFormat = strings.ToLower(strings.TrimSpace(input.InputFormat))
	switch cfg.InputFormat {
	case "", "json", "csv":
	default:
		return fmt.Errorf("invalid input format '%s'. must be json, csv", input.InputFormat)
	}

	return nil
}

// processCategories parses the comma-separated category list.
func processCategories(cfg *Config, input *ConfigRawInput) error {
	cfg.Categories = nil
	for part := range strings.SplitSeq(input.Category, ",") {
		c := schema.Category(strings.ToLower(strings.TrimSpace(part)))
		if c == "" {
			continue
		}
		if _, ok := schema.ValidCategories[c]; !ok {
			return fmt.Errorf("invalid category '%s'. must be movies, games", part)
		}
		if !slices.Contains(cfg.Categories, c) {
			cfg.Categories = append(cfg.Categories, c)
		}
	}
	if len(cfg.Categories) == 0 {
		return fmt.Errorf("at least one category is required (movies, games)")
	}
	return nil
}

// processTimeInputs resolves the run timestamp and the ranking reference time.
func processTimeInputs(cfg *Config, input *ConfigRawInput, now time.Time) error {
	cfg.RunTime = time.Time{}
	if input.At != "" {
		t, err := ParseTimeInput(input.At, now)
		if err != nil {
			return fmt.Errorf("invalid --at value: %w", err)
		}
		cfg.RunTime = t
	}

	cfg.AsOf = now.UTC()
	if input.AsOf != "" {
		t, err := ParseTimeInput(input.AsOf, now)
		if err != nil {
			return fmt.Errorf("invalid --as-of value: %w", err)
		}
		cfg.AsOf = t
	}
	return nil
}

// processLocking resolves where category locks live and how long to wait for them.
func processLocking(cfg *Config, input *ConfigRawInput) error {
	cfg.LockDir = strings.TrimSpace(input.LockDir)
	if cfg.LockDir == "" {
		cfg.LockDir = os.TempDir()
	}

	cfg.LockTimeout = DefaultLockTimeout
	if input.LockTimeout != "" {
		d, err := ParseLookbackDuration(input.LockTimeout)
		if err != nil {
			return fmt.Errorf("invalid --lock-timeout value: %w", err)
		}
		cfg.LockTimeout = d
	}
	return nil
}

// ProcessProfilingConfig enables profiling when a file prefix is given.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	profilePrefix = strings.TrimSpace(profilePrefix)
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for history storage.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".peerrank_history.db"
	}
	return filepath.Join(homeDir, ".peerrank_history.db")
}

// RevalidateQuery applies a read-only query to a cloned config: one category, and an
// optional window, limit and as-of time. Empty or zero values keep the current settings.
// It is used by callers that bypass the CLI flags, such as the MCP tools.
func RevalidateQuery(cfg *Config, category, window string, limit int, asOf string, now time.Time) error {
	c := schema.Category(strings.ToLower(strings.TrimSpace(category)))
	if c == "" {
		return fmt.Errorf("category is required (movies, games)")
	}
	if _, ok := schema.ValidCategories[c]; !ok {
		return fmt.Errorf("invalid category '%s'. must be movies, games", category)
	}
	cfg.Categories = []schema.Category{c}

	if window != "" {
		w := schema.Window(strings.ToLower(window))
		if _, ok := schema.ValidWindows[w]; !ok {
			return fmt.Errorf("invalid window '%s'. must be daily, weekly", window)
		}
		cfg.Window = w
	}
	if cfg.Window == "" {
		cfg.Window = schema.DailyWindow
	}

	if limit != 0 {
		if limit < 0 || limit > MaxResultLimit {
			return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, limit)
		}
		cfg.ResultLimit = limit
	}
	if cfg.ResultLimit <= 0 {
		cfg.ResultLimit = DefaultResultLimit
	}

	cfg.AsOf = now.UTC()
	if asOf != "" {
		t, err := ParseTimeInput(asOf, now)
		if err != nil {
			return fmt.Errorf("invalid as_of value: %w", err)
		}
		cfg.AsOf = t
	}
	return nil
}
