package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/peerrank/internal/contract"
	"github.com/huangsam/peerrank/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// groupsOutput is the JSON shape of a dry-run grouping.
type groupsOutput struct {
	Category schema.Category       `json:"category"`
	Groups   []schema.TitleGroup   `json:"groups"`
	Rejected []rejectedRecordEntry `json:"rejected"`
}

// rejectedRecordEntry carries the rejection reason as text.
type rejectedRecordEntry struct {
	Index  int              `json:"index"`
	Record schema.RawRecord `json:"record"`
	Reason string           `json:"reason"`
}

// PrintGroups outputs the groups of one batch, dispatching based on the output format configured.
func PrintGroups(category schema.Category, groups []schema.TitleGroup, rejected []schema.RejectedRecord, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		out := groupsOutput{Category: category, Groups: groups, Rejected: []rejectedRecordEntry{}}
		for _, r := range rejected {
			out.Rejected = append(out.Rejected, rejectedRecordEntry{Index: r.Index, Record: r.Record, Reason: fmt.Sprint(r.Reason)})
		}
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, out)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeGroupsCSV(w, category, groups)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeGroupsTable(w, category, groups, rejected, cfg, duration)
		}, "Wrote table")
	}
	return nil
}

// writeGroupsTable generates and writes the human-readable table.
func writeGroupsTable(w io.Writer, category schema.Category, groups []schema.TitleGroup, rejected []schema.RejectedRecord, cfg *contract.Config, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "Title", "Seeders", "Leechers", "Peers", "Members"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	titleWidth := GetMaxTableTitleWidth(cfg)
	limit := min(len(groups), cfg.ResultLimit)
	var data [][]string
	for i, g := range groups[:limit] {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			contract.TruncateTitle(g.MainTitle, titleWidth),
			strconv.Itoa(g.TotalSeeders),
			strconv.Itoa(g.TotalLeechers),
			strconv.Itoa(g.TotalPeers),
			strconv.Itoa(len(g.MemberTitles)),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	records := 0
	for _, g := range groups {
		records += len(g.MemberTitles)
	}
	if _, err := fmt.Fprintf(w, "Showing top %d of %d %s groups (%d distinct titles, %d rejected records)\n",
		limit, len(groups), category, records, len(rejected)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Grouped in %v. Nothing was written.\n", duration); err != nil {
		return err
	}
	return nil
}

// writeGroupsCSV writes every group in CSV format. Member titles are joined with "|".
func writeGroupsCSV(w io.Writer, category schema.Category, groups []schema.TitleGroup) error {
	header := []string{"rank", "main_title", "seeders", "leechers", "peers", "member_titles", "category"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for i, g := range groups {
			rec := []string{
				strconv.Itoa(i + 1),
				g.MainTitle,
				strconv.Itoa(g.TotalSeeders),
				strconv.Itoa(g.TotalLeechers),
				strconv.Itoa(g.TotalPeers),
				strings.Join(g.MemberTitles, "|"),
				string(category),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
