package collector

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/huangsam/peerrank/schema"
)

// Column names understood by the CSV reader. Any other column is ignored.
const (
	titleColumn     = "title"
	seedersColumn   = "seeders"
	leechersColumn  = "leechers"
	categoryColumn  = "category"
	timestampColumn = "timestamp"
)

var requiredColumns = []string{titleColumn, seedersColumn, leechersColumn}

// ReadCSV reads records from a CSV file with a header row.
func ReadCSV(r io.Reader) (Batch, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return Batch{}, nil
	}
	if err != nil {
		return Batch{}, fmt.Errorf("failed to read CSV header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, seen := columns[name]; !seen {
			columns[name] = i
		}
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return Batch{}, fmt.Errorf("CSV header is missing the %q column", name)
		}
	}

	field := func(row []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var batch Batch
	for index := 0; ; index++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			batch.reject(index, schema.RawRecord{}, fmt.Errorf("%w: %v", schema.ErrMalformedRecord, err))
			continue
		}
		if err != nil {
			return batch, fmt.Errorf("failed to read CSV row %d: %w", index+1, err)
		}
		record, err := buildRecord(
			field(row, titleColumn),
			field(row, seedersColumn),
			field(row, leechersColumn),
			field(row, categoryColumn),
			field(row, timestampColumn),
		)
		if err != nil {
			batch.reject(index, record, err)
			continue
		}
		batch.Records = append(batch.Records, record)
	}
	return batch, nil
}
