package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/peerrank/core"
	"github.com/huangsam/peerrank/internal/contract"
	"github.com/huangsam/peerrank/internal/outwriter"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.HistoryManager
}

// jsonResult renders a value as indented JSON text.
func jsonResult(v any) *mcp.CallToolResult {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err))
	}
	return mcp.NewToolResultText(string(jsonData))
}

func (h *toolHandler) handleGetRankings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	err := contract.RevalidateQuery(cfg,
		request.GetString("category", ""),
		request.GetString("window", ""),
		request.GetInt("limit", 0),
		request.GetString("as_of", ""),
		time.Now(),
	)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid ranking parameters: %v", err)), nil
	}

	ranking, err := core.GetRankingsResults(core.WithSuppressHeader(ctx), cfg, h.mgr, cfg.Category())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("ranking failed: %v", err)), nil
	}
	return jsonResult(ranking), nil
}

func (h *toolHandler) handleGetChartSeries(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	err := contract.RevalidateQuery(cfg,
		request.GetString("category", ""),
		"",
		request.GetInt("limit", 0),
		"",
		time.Now(),
	)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid chart parameters: %v", err)), nil
	}

	series, err := core.GetChartResults(core.WithSuppressHeader(ctx), cfg, h.mgr, cfg.Category())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("chart failed: %v", err)), nil
	}
	return jsonResult(outwriter.NewChartFile(series)), nil
}

func (h *toolHandler) handleGetHistoryStatus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	store := h.mgr.GetHistoryStore()
	if store == nil {
		return mcp.NewToolResultError("history store is not initialized"), nil
	}
	status, err := store.GetStatus(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("status failed: %v", err)), nil
	}
	return jsonResult(status), nil
}
