package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/peerrank/internal/contract"
	"github.com/huangsam/peerrank/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintRankings outputs a ranking, dispatching based on the output format configured.
func PrintRankings(ranking schema.RankingFile, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, ranking)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRankingsCSV(w, ranking)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRankingsTable(w, ranking, cfg, duration)
		}, "Wrote table")
	}
	return nil
}

// previousRankLabel renders a previous rank, or "-" for new titles.
func previousRankLabel(prev *int) string {
	if prev == nil {
		return "-"
	}
	return strconv.Itoa(*prev)
}

// writeRankingsTable generates and writes the human-readable table.
func writeRankingsTable(w io.Writer, ranking schema.RankingFile, cfg *contract.Config, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "Title", "Seeders", "Leechers", "Peers", "Change", "Prev"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	label := contract.GetPlainLabel
	if cfg.UseColors {
		label = contract.GetColorLabel
	}
	titleWidth := GetMaxTableTitleWidth(cfg)

	var data [][]string
	for _, e := range ranking.Rankings {
		data = append(data, []string{
			strconv.Itoa(e.CurrentRank),
			contract.TruncateTitle(e.Title, titleWidth),
			strconv.Itoa(e.Seeders),
			strconv.Itoa(e.Leechers),
			strconv.Itoa(e.Peers),
			label(e.RankChange),
			previousRankLabel(e.PreviousRank),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Showing top %d %s titles (%s ranking updated %s)\n",
		len(ranking.Rankings), ranking.Category, ranking.Period, ranking.UpdatedAt); err != nil {
		return err
	}
	if duration > 0 {
		if _, err := fmt.Fprintf(w, "Ranked in %v. History backend: %s\n", duration, cfg.HistoryBackend); err != nil {
			return err
		}
	}
	return nil
}

// writeRankingsCSV writes a ranking in CSV format.
func writeRankingsCSV(w io.Writer, ranking schema.RankingFile) error {
	header := []string{"rank", "title", "seeders", "leechers", "peers", "rank_change", "previous_rank", "period", "category", "updated_at"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, e := range ranking.Rankings {
			prev := ""
			if e.PreviousRank != nil {
				prev = strconv.Itoa(*e.PreviousRank)
			}
			rec := []string{
				strconv.Itoa(e.CurrentRank),
				e.Title,
				strconv.Itoa(e.Seeders),
				strconv.Itoa(e.Leechers),
				strconv.Itoa(e.Peers),
				e.RankChange.String(),
				prev,
				string(ranking.Period),
				string(ranking.Category),
				ranking.UpdatedAt,
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
