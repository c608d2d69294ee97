package cmd

import (
	"github.com/huangsam/peerrank/core"
	"github.com/spf13/cobra"
)

// runCmd runs the full pipeline for one collector batch.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Group a collector batch, append it to history and write rankings.",
	Long: `Run the full pipeline on one collector file, once per configured category.

For each category the run:
- Rejects malformed records (empty title, negative counts, foreign category)
- Groups the remaining records into titles by normalized-title similarity
- Appends the snapshot to the stored history
- Ranks the snapshot against the daily and weekly baselines
- Writes the ranking and chart files to the output directory

The snapshot time is --at, otherwise the newest record timestamp, otherwise now.
Concurrent runs of the same category wait for each other up to --lock-timeout.

Examples:
  # Ingest a scrape of movie listings
  peerrank run --input movies.json --category movies

  # Backfill a CSV scrape taken two days ago
  peerrank run --input games.csv --category games --at "2 days ago"

  # Print the run summary as JSON
  peerrank run --input batch.json --category movies,games --output json`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return core.ExecuteRunCommand(rootCtx, cfg, historyManager)
	},
}

// groupCmd shows the grouping of a collector batch without storing anything.
var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Show how a collector batch groups into titles (dry run).",
	Long: `Group a collector file and print the groups ordered by total peers.

Nothing is stored and no files are written, which makes this useful for checking
how listings of the same title merge before running the full pipeline.

Examples:
  peerrank group --input movies.json --category movies --limit 50
  peerrank group --input games.csv --category games --output csv`,
	PreRunE: configSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		return core.ExecuteGroupCommand(rootCtx, cfg, historyManager)
	},
}
