package iocache

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/huangsam/peerrank/schema"
)

// Table names for history storage.
const (
	snapshotsTable  = "peerrank_snapshots"
	groupsTable     = "peerrank_groups"
	rawRecordsTable = "peerrank_raw_records"
	migrationsTable = "peerrank_schema_migrations"
)

// historyTables lists the data tables in dependency order.
var historyTables = []string{snapshotsTable, groupsTable, rawRecordsTable}

// sqliteTimeLayout is fixed-width so that text ordering matches time ordering.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var tableNameRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// validateTableName ensures the table name contains only safe characters.
func validateTableName(name string) error {
	if name == "" {
		return fmt.Errorf("table name cannot be empty")
	}
	if !tableNameRe.MatchString(name) {
		return fmt.Errorf("invalid table name: %s (must match pattern ^[a-zA-Z_][a-zA-Z0-9_]*$)", name)
	}
	return nil
}

// quoteTableName returns the properly quoted table name for the given backend.
func quoteTableName(name string, backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf("`%s`", name)
	default: // SQLite and PostgreSQL
		return fmt.Sprintf("\"%s\"", name)
	}
}

// placeholders returns n comma-separated parameter placeholders for the backend.
func placeholders(backend schema.DatabaseBackend, n int) string {
	parts := make([]string, n)
	for i := range parts {
		if backend == schema.PostgreSQLBackend {
			parts[i] = fmt.Sprintf("$%d", i+1)
		} else {
			parts[i] = "?"
		}
	}
	return strings.Join(parts, ", ")
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	switch backend {
	case schema.SQLiteBackend:
		return t.UTC().Format(sqliteTimeLayout)
	default:
		return t.UTC()
	}
}

// timeColumn is a scan destination for a timestamp column on any backend.
// SQLite stores text while MySQL and PostgreSQL store native datetimes.
type timeColumn struct {
	backend schema.DatabaseBackend
	text    string
	value   time.Time
}

func (c *timeColumn) dest() any {
	if c.backend == schema.SQLiteBackend {
		return &c.text
	}
	return &c.value
}

// Time returns the scanned value in UTC.
func (c *timeColumn) Time() (time.Time, error) {
	if c.backend != schema.SQLiteBackend {
		return c.value.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339Nano, c.text)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", c.text, err)
	}
	return t.UTC(), nil
}
