package iocache

import (
	"fmt"
	"slices"

	"github.com/huangsam/peerrank/schema"
)

// PrintHistoryStatus prints history status information.
func PrintHistoryStatus(status schema.HistoryStatus) {
	fmt.Printf("History Backend: %s\n", status.Backend)
	fmt.Printf("Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	fmt.Printf("Total Snapshots: %d\n", status.TotalSnapshots)
	for _, category := range schema.AllCategories {
		cs, ok := status.Categories[category]
		if !ok {
			continue
		}
		fmt.Printf("  %s: %d snapshots (%s to %s)\n", category, cs.Snapshots,
			cs.FirstSnapshot.Format("2006-01-02 15:04:05"), cs.LastSnapshot.Format("2006-01-02 15:04:05"))
	}
	fmt.Println("Table Sizes:")
	tables := make([]string, 0, len(status.TableSizes))
	for table := range status.TableSizes {
		tables = append(tables, table)
	}
	slices.Sort(tables)
	for _, table := range tables {
		fmt.Printf("  %s: %d rows\n", table, status.TableSizes[table])
	}
}
