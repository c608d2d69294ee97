package core

import (
	"fmt"
	"strings"

	"github.com/huangsam/peerrank/core/algo"
	"github.com/huangsam/peerrank/schema"
)

// GroupResult holds the groups of one batch and the records rejected before grouping.
type GroupResult struct {
	Groups   []schema.TitleGroup
	Rejected []schema.RejectedRecord
}

// groupOptions tunes how groups are labeled.
type groupOptions struct {
	displayTitles bool
}

// GroupOption configures Group.
type GroupOption func(*groupOptions)

// WithDisplayTitles labels each group with the display-cleaned title of its seed.
func WithDisplayTitles() GroupOption {
	return func(o *groupOptions) {
		o.displayTitles = true
	}
}

// validateRecord returns a wrapped ErrMalformedRecord when the record cannot be grouped.
func validateRecord(r schema.RawRecord, category schema.Category) error {
	switch {
	case strings.TrimSpace(r.Title) == "":
		return fmt.Errorf("%w: empty title", schema.ErrMalformedRecord)
	case r.Seeders < 0 || r.Leechers < 0:
		return fmt.Errorf("%w: negative counts for %q (seeders=%d, leechers=%d)", schema.ErrMalformedRecord, r.Title, r.Seeders, r.Leechers)
	case r.Category != category:
		return fmt.Errorf("%w: %q belongs to category %q, not %q", schema.ErrMalformedRecord, r.Title, r.Category, category)
	}
	return nil
}

// Group clusters one batch of raw records into title groups.
//
// Records are scanned in their original order. Each unassigned record seeds a new group
// and every later unassigned record whose normalized title is similar enough to the
// seed's joins it. The seed labels the group. Groups come back sorted by total peers,
// with ties kept in seed order.
func Group(records []schema.RawRecord, category schema.Category, opts ...GroupOption) GroupResult {
	var o groupOptions
	for _, opt := range opts {
		opt(&o)
	}

	result := GroupResult{Groups: []schema.TitleGroup{}}

	// 1. Validate and normalize
	accepted := make([]schema.RawRecord, 0, len(records))
	for i, r := range records {
		if err := validateRecord(r, category); err != nil {
			result.Rejected = append(result.Rejected, schema.RejectedRecord{Index: i, Record: r, Reason: err})
			continue
		}
		accepted = append(accepted, r)
	}
	keys := make([]string, len(accepted))
	for i, r := range accepted {
		keys[i] = algo.Normalize(r.Title)
	}

	// 2. Greedy first-fit against each seed
	assigned := make([]bool, len(accepted))
	for i, seed := range accepted {
		if assigned[i] {
			continue
		}
		assigned[i] = true

		mainTitle := seed.Title
		if o.displayTitles {
			mainTitle = algo.DisplayTitle(seed.Title)
		}
		group := schema.NewTitleGroup(mainTitle, seed)

		for j := i + 1; j < len(accepted); j++ {
			if assigned[j] || !algo.Similar(keys[i], keys[j]) {
				continue
			}
			assigned[j] = true
			group.Add(accepted[j])
		}
		result.Groups = append(result.Groups, group)
	}

	// 3. Order by peers, stable on seed order
	algo.SortGroups(result.Groups)
	return result
}

// AcceptedRecords returns the records that survived validation, in input order.
func AcceptedRecords(records []schema.RawRecord, rejected []schema.RejectedRecord) []schema.RawRecord {
	if len(rejected) == 0 {
		return records
	}
	skip := make(map[int]struct{}, len(rejected))
	for _, r := range rejected {
		skip[r.Index] = struct{}{}
	}
	accepted := make([]schema.RawRecord, 0, len(records)-len(rejected))
	for i, r := range records {
		if _, ok := skip[i]; !ok {
			accepted = append(accepted, r)
		}
	}
	return accepted
}
