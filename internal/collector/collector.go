// Package collector reads scraped listing records from collector files.
package collector

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/huangsam/peerrank/schema"
)

// Supported collector file formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// timestampLayouts are tried in order when a record carries a timestamp.
// Zone-less layouts are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// Batch is one collector file split into readable records and rejected rows.
type Batch struct {
	Records  []schema.RawRecord
	Rejected []schema.RejectedRecord
}

// DetectFormat picks the reader for a path. A non-empty override wins over the extension.
func DetectFormat(path, override string) (string, error) {
	format := strings.ToLower(strings.TrimSpace(override))
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	switch format {
	case FormatJSON, FormatCSV:
		return format, nil
	default:
		return "", fmt.Errorf("cannot detect input format of %q (use --input-format json or csv)", path)
	}
}

// ReadFile opens a collector file and reads it with the detected format.
func ReadFile(path, format string) (Batch, error) {
	if path == "" {
		return Batch{}, fmt.Errorf("--input is required")
	}
	format, err := DetectFormat(path, format)
	if err != nil {
		return Batch{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return Batch{}, fmt.Errorf("failed to open collector file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Read(f, format)
}

// Read parses collector records in the given format.
func Read(r io.Reader, format string) (Batch, error) {
	switch format {
	case FormatJSON:
		return ReadJSON(r)
	case FormatCSV:
		return ReadCSV(r)
	default:
		return Batch{}, fmt.Errorf("unsupported input format: %s", format)
	}
}

// jsonRecord keeps counts loose so that one bad row does not fail the whole file.
type jsonRecord struct {
	Title     string      `json:"title"`
	Seeders   json.Number `json:"seeders"`
	Leechers  json.Number `json:"leechers"`
	Category  string      `json:"category"`
	Timestamp string      `json:"timestamp"`
}

// ReadJSON reads either a JSON array of records or an object with a "records" array.
func ReadJSON(r io.Reader) (Batch, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Batch{}, fmt.Errorf("failed to read JSON input: %w", err)
	}
	data = bytes.TrimSpace(data)

	var items []json.RawMessage
	switch {
	case len(data) == 0:
		return Batch{}, nil
	case data[0] == '[':
		if err := json.Unmarshal(data, &items); err != nil {
			return Batch{}, fmt.Errorf("invalid JSON record array: %w", err)
		}
	case data[0] == '{':
		var wrapper struct {
			Records []json.RawMessage `json:"records"`
		}
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return Batch{}, fmt.Errorf("invalid JSON record object: %w", err)
		}
		items = wrapper.Records
	default:
		return Batch{}, fmt.Errorf("JSON input must be an array of records or an object with a records field")
	}

	var batch Batch
	for i, item := range items {
		var jr jsonRecord
		if err := json.Unmarshal(item, &jr); err != nil {
			batch.reject(i, schema.RawRecord{}, fmt.Errorf("%w: %v", schema.ErrMalformedRecord, err))
			continue
		}
		record, err := buildRecord(jr.Title, jr.Seeders.String(), jr.Leechers.String(), jr.Category, jr.Timestamp)
		if err != nil {
			batch.reject(i, record, err)
			continue
		}
		batch.Records = append(batch.Records, record)
	}
	return batch, nil
}

// ForCategory returns the records that belong to a category run.
// Records without a category are assigned to it.
func ForCategory(records []schema.RawRecord, category schema.Category) []schema.RawRecord {
	selected := make([]schema.RawRecord, 0, len(records))
	for _, r := range records {
		if r.Category == "" {
			r.Category = category
		}
		if r.Category == category {
			selected = append(selected, r)
		}
	}
	return selected
}

// NewestTimestamp returns the latest record timestamp, or the zero time if none is stamped.
func NewestTimestamp(records []schema.RawRecord) time.Time {
	var newest time.Time
	for _, r := range records {
		if r.Timestamp.After(newest) {
			newest = r.Timestamp
		}
	}
	return newest
}

func (b *Batch) reject(index int, record schema.RawRecord, reason error) {
	b.Rejected = append(b.Rejected, schema.RejectedRecord{Index: index, Record: record, Reason: reason})
}
