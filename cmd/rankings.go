package cmd

import (
	"github.com/huangsam/peerrank/core"
	"github.com/spf13/cobra"
)

// rankingsCmd ranks the stored history.
var rankingsCmd = &cobra.Command{
	Use:   "rankings",
	Short: "Show the top titles with their rank change over a window.",
	Long: `Rank the latest stored snapshot of each category by total peers.

Each entry carries its rank change against the earliest snapshot inside the
window: positive when the title moved up, "new" when the baseline did not have it.

Examples:
  # Daily movers
  peerrank rankings --category movies

  # Weekly movers as of last Monday's data
  peerrank rankings --category games --window weekly --as-of 2024-03-04T00:00:00Z

  # Print a ranking file written by an earlier run
  peerrank rankings --from-file data/movies_daily_rankings.json`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return core.ExecuteRankingsCommand(rootCtx, cfg, historyManager)
	},
}

// chartCmd materializes the chart series of the stored history.
var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Show peer counts of the current top titles across all snapshots.",
	Long: `Build the chart matrix of each category: one row per stored snapshot and one
column per current top title. Empty cells mean the title was not seen that run.

Examples:
  peerrank chart --category movies --limit 10
  peerrank chart --category games --write --output-dir site/data`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return core.ExecuteChartCommand(rootCtx, cfg, historyManager)
	},
}
