package core

import (
	"fmt"
	"time"

	"github.com/huangsam/peerrank/schema"
)

// Materialize builds the chart series for the top-k titles of the newest snapshot.
// Every snapshot contributes one row; a title missing from a snapshot yields a nil cell.
func Materialize(history schema.History, k int) (schema.ChartSeries, error) {
	if k <= 0 {
		k = DefaultTopK
	}
	latest, ok := history.Latest()
	if !ok {
		return schema.ChartSeries{}, fmt.Errorf("%w: history for %q is empty", schema.ErrNoData, history.Category)
	}

	titles := make([]string, 0, k)
	seen := make(map[string]struct{}, k)
	for _, g := range latest.Groups {
		if len(titles) == k {
			break
		}
		if _, dup := seen[g.MainTitle]; dup {
			continue
		}
		seen[g.MainTitle] = struct{}{}
		titles = append(titles, g.MainTitle)
	}

	series := schema.ChartSeries{
		UpdatedAt: latest.Timestamp,
		Titles:    titles,
		Dates:     make([]time.Time, 0, history.Len()),
		Data:      make([][]*int, 0, history.Len()),
	}
	for _, s := range history.Snapshots {
		peers := peersByTitle(s.Groups)
		row := make([]*int, len(titles))
		for i, title := range titles {
			if p, ok := peers[title]; ok {
				row[i] = &p
			}
		}
		series.Dates = append(series.Dates, s.Timestamp)
		series.Data = append(series.Data, row)
	}
	return series, nil
}

// peersByTitle maps each main title to its total peers. The first occurrence wins.
func peersByTitle(groups []schema.TitleGroup) map[string]int {
	peers := make(map[string]int, len(groups))
	for _, g := range groups {
		if _, ok := peers[g.MainTitle]; !ok {
			peers[g.MainTitle] = g.TotalPeers
		}
	}
	return peers
}
