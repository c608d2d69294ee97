package schema

import "time"

// Custom string types for type safety.
type (
	// Category represents a content category of scraped listings.
	Category string

	// Window represents the look-back interval used for rank deltas.
	Window string

	// RankDirection represents how a title moved between two snapshots.
	RankDirection string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for history storage.
	DatabaseBackend string
)

// All categories supported.
const (
	MoviesCategory Category = "movies" // default
	GamesCategory  Category = "games"
)

// All ranking windows supported.
const (
	DailyWindow  Window = "daily" // default
	WeeklyWindow Window = "weekly"
)

// All rank directions supported.
const (
	UpDirection        RankDirection = "up"
	DownDirection      RankDirection = "down"
	UnchangedDirection RankDirection = "unchanged"
	NewDirection       RankDirection = "new"
)

// All output modes supported.
const (
	CSVOut  OutputMode = "csv"
	TextOut OutputMode = "text" // default
	JSONOut OutputMode = "json"
)

// All history backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// AllCategories returns a list of all supported categories.
var AllCategories = []Category{MoviesCategory, GamesCategory}

// AllWindows returns a list of all supported ranking windows.
var AllWindows = []Window{DailyWindow, WeeklyWindow}

// ValidCategories lists all valid categories.
var ValidCategories = map[Category]struct{}{
	MoviesCategory: {},
	GamesCategory:  {},
}

// ValidWindows lists all valid ranking windows.
var ValidWindows = map[Window]struct{}{
	DailyWindow:  {},
	WeeklyWindow: {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:  {},
	TextOut: {},
	JSONOut: {},
}

// ValidDatabaseBackends lists all valid history backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// Duration returns the look-back interval of the window.
// Unknown windows fall back to the daily interval.
func (w Window) Duration() time.Duration {
	switch w {
	case WeeklyWindow:
		return 7 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}
