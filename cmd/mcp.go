package cmd

import (
	"github.com/huangsam/peerrank/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the peerrank MCP server",
	Long:  `Launch an MCP server on stdio that lets AI agents read rankings, chart series and history status.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Headers are suppressed by the tools themselves since stdio carries the protocol
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, historyManager)
	},
}
