package collector

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/peerrank/schema"
)

// buildRecord turns the text fields of one row into a RawRecord.
// Counts must be integers; empty titles and negative counts are left for grouping to reject.
func buildRecord(title, seeders, leechers, category, timestamp string) (schema.RawRecord, error) {
	record := schema.RawRecord{Title: strings.TrimSpace(title)}

	var err error
	if record.Seeders, err = parseCount("seeders", seeders); err != nil {
		return record, err
	}
	if record.Leechers, err = parseCount("leechers", leechers); err != nil {
		return record, err
	}

	if c := schema.Category(strings.ToLower(strings.TrimSpace(category))); c != "" {
		record.Category = c
		if _, ok := schema.ValidCategories[c]; !ok {
			return record, fmt.Errorf("%w: unknown category %q for %q", schema.ErrMalformedRecord, category, record.Title)
		}
	}

	if ts := strings.TrimSpace(timestamp); ts != "" {
		t, err := parseTimestamp(ts)
		if err != nil {
			return record, fmt.Errorf("%w: %v", schema.ErrMalformedRecord, err)
		}
		record.Timestamp = t
	}
	return record, nil
}

func parseCount(field, value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("%w: missing %s", schema.ErrMalformedRecord, field)
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not an integer", schema.ErrMalformedRecord, field, value)
	}
	return n, nil
}

func parseTimestamp(value string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", value)
}
