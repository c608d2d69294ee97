// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/peerrank/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the peerrank MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.HistoryManager) *server.MCPServer {
	s := server.NewMCPServer(
		"peerrank History Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: get_rankings ---
	s.AddTool(mcp.NewTool("get_rankings",
		mcp.WithDescription("Rank the most shared titles of a category with their rank change over a window."),
		mcp.WithString("category", mcp.Description("Content category."), mcp.Required(), mcp.Enum("movies", "games")),
		mcp.WithString("window", mcp.Description("Look-back window for rank changes. Defaults to 'daily'."), mcp.Enum("daily", "weekly")),
		mcp.WithNumber("limit", mcp.Description("Number of titles to return (1-100).")),
		mcp.WithString("as_of", mcp.Description("Rank the latest snapshot at or before this time (RFC 3339 or 'N units ago').")),
	), h.handleGetRankings)

	// --- 2. Tool: get_chart_series ---
	s.AddTool(mcp.NewTool("get_chart_series",
		mcp.WithDescription("Peer counts of the current top titles of a category across every stored snapshot."),
		mcp.WithString("category", mcp.Description("Content category."), mcp.Required(), mcp.Enum("movies", "games")),
		mcp.WithNumber("limit", mcp.Description("Number of titles to chart (1-100).")),
	), h.handleGetChartSeries)

	// --- 3. Tool: get_history_status ---
	s.AddTool(mcp.NewTool("get_history_status",
		mcp.WithDescription("Backend, connection state and per-category snapshot counts of the history store."),
	), h.handleGetHistoryStatus)

	return s
}

// StartMCPServer starts the peerrank MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.HistoryManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
