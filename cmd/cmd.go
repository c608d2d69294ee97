// Package cmd defines the command-line interface for peerrank.
package cmd

import (
	"github.com/huangsam/peerrank/internal/contract"
	"github.com/huangsam/peerrank/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(groupCmd)
	rootCmd.AddCommand(rankingsCmd)
	rootCmd.AddCommand(chartCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().StringP("category", "c", string(schema.MoviesCategory), "Comma-separated categories: movies, games")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of titles to rank or chart")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().String("output-dir", contract.DefaultOutputDir, "Directory for ranking and chart files")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("history-backend", string(schema.SQLiteBackend), "History backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string (sqlite path, or e.g. user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("lock-dir", "", "Directory for per-category run locks (default: OS temp dir)")
	rootCmd.PersistentFlags().String("lock-timeout", contract.DefaultLockTimeout.String(), "How long a run waits for its category lock")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Local flags are bound to Viper by the setup of the command that runs
	for _, c := range []*cobra.Command{runCmd, groupCmd} {
		c.Flags().StringP("input", "i", "", "Collector file with raw records (json or csv)")
		c.Flags().String("input-format", "", "Collector file format: json or csv (default: from extension)")
		c.Flags().Bool("display-titles", false, "Clean release tags from the displayed main titles")
	}
	runCmd.Flags().String("at", "", "Snapshot time in ISO8601 or time ago (default: newest record time)")

	rankingsCmd.Flags().StringP("window", "w", string(schema.DailyWindow), "Rank change window: daily or weekly")
	rankingsCmd.Flags().String("as-of", "", "Rank the latest snapshot at or before this time (ISO8601 or time ago)")
	rankingsCmd.Flags().String("from-file", "", "Print a previously written ranking file instead")

	chartCmd.Flags().Bool("write", false, "Also write the chart file to the output directory")

	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
}
