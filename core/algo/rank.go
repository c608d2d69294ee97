package algo

import (
	"sort"

	"github.com/huangsam/peerrank/schema"
)

// SortGroups orders groups by total peers in descending order. The sort is stable,
// so groups with equal peers keep their seed order.
func SortGroups(groups []schema.TitleGroup) {
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].TotalPeers > groups[j].TotalPeers
	})
}

// TopGroups returns the first 'limit' groups. If limit is greater than the number
// of groups, all groups are returned.
func TopGroups(groups []schema.TitleGroup, limit int) []schema.TitleGroup {
	if len(groups) > limit {
		return groups[:limit]
	}
	return groups
}
