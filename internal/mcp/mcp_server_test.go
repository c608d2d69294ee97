package mcp_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/huangsam/peerrank/internal/contract"
	"github.com/huangsam/peerrank/internal/iocache"
	mcp_internal "github.com/huangsam/peerrank/internal/mcp"
	"github.com/huangsam/peerrank/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func callTool(t *testing.T, s *server.MCPServer, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)

	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	}
	res, err := tool.Handler(context.Background(), req)
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	require.NotNil(t, res)
	return res
}

func resultText(res *mcp.CallToolResult) string {
	return res.Content[0].(mcp.TextContent).Text
}

func seededServer(t *testing.T) *server.MCPServer {
	t.Helper()
	store := iocache.NewMemoryHistoryStore()
	now := time.Now().UTC().Truncate(time.Second)
	snapshots := []schema.Snapshot{
		{Timestamp: now.Add(-2 * time.Hour), Category: schema.MoviesCategory, Groups: []schema.TitleGroup{
			schema.NewTitleGroup("Oppenheimer", schema.RawRecord{Title: "Oppenheimer", Seeders: 90}),
			schema.NewTitleGroup("Barbie", schema.RawRecord{Title: "Barbie", Seeders: 50}),
		}},
		{Timestamp: now.Add(-time.Hour), Category: schema.MoviesCategory, Groups: []schema.TitleGroup{
			schema.NewTitleGroup("Barbie", schema.RawRecord{Title: "Barbie", Seeders: 120}),
			schema.NewTitleGroup("Oppenheimer", schema.RawRecord{Title: "Oppenheimer", Seeders: 80}),
		}},
	}
	for _, s := range snapshots {
		_, err := store.AppendSnapshot(context.Background(), s)
		require.NoError(t, err)
	}
	baseCfg := &contract.Config{ResultLimit: contract.DefaultResultLimit, Window: schema.DailyWindow}
	return mcp_internal.NewMCPServer(baseCfg, iocache.NewHistoryStoreManager(store))
}

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	baseCfg := &contract.Config{ResultLimit: 20}

	// A dummy manager; validation fails before the store is reached
	mgr := &iocache.MockHistoryManager{}
	s := mcp_internal.NewMCPServer(baseCfg, mgr)

	tests := []struct {
		name, tool string
		args       map[string]any
		msg        string
	}{
		{"get_rankings missing category", "get_rankings", map[string]any{}, "category is required"},
		{"get_rankings invalid window", "get_rankings", map[string]any{"category": "movies", "window": "monthly"}, "invalid window"},
		{"get_rankings invalid limit", "get_rankings", map[string]any{"category": "movies", "limit": 500.0}, "limit must be"},
		{"get_rankings invalid as_of", "get_rankings", map[string]any{"category": "movies", "as_of": "soon"}, "invalid as_of"},
		{"get_chart_series invalid category", "get_chart_series", map[string]any{"category": "music"}, "invalid category"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := callTool(t, s, tt.tool, tt.args)
			assert.True(t, res.IsError, "The response should indicate an error state")
			assert.Contains(t, resultText(res), tt.msg)
		})
	}
	mgr.AssertNotCalled(t, "GetHistoryStore")
}

func TestMCPServerGetRankings(t *testing.T) {
	s := seededServer(t)

	res := callTool(t, s, "get_rankings", map[string]any{"category": "movies", "limit": 1.0})
	require.False(t, res.IsError, resultText(res))

	var ranking schema.RankingFile
	require.NoError(t, json.Unmarshal([]byte(resultText(res)), &ranking))
	assert.Equal(t, schema.DailyWindow, ranking.Period)
	require.Len(t, ranking.Rankings, 1)
	assert.Equal(t, "Barbie", ranking.Rankings[0].Title)
	assert.Equal(t, 1, ranking.Rankings[0].RankChange.Delta)

	res = callTool(t, s, "get_rankings", map[string]any{"category": "games"})
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(res), "no data")
}

func TestMCPServerGetChartSeries(t *testing.T) {
	s := seededServer(t)

	res := callTool(t, s, "get_chart_series", map[string]any{"category": "movies"})
	require.False(t, res.IsError, resultText(res))

	var chart schema.ChartFile
	require.NoError(t, json.Unmarshal([]byte(resultText(res)), &chart))
	assert.Equal(t, []string{"Barbie", "Oppenheimer"}, chart.Titles)
	require.Len(t, chart.Data, 2)
	assert.Equal(t, 50, *chart.Data[0][0])
}

func TestMCPServerGetHistoryStatus(t *testing.T) {
	s := seededServer(t)

	res := callTool(t, s, "get_history_status", nil)
	require.False(t, res.IsError, resultText(res))

	var status schema.HistoryStatus
	require.NoError(t, json.Unmarshal([]byte(resultText(res)), &status))
	assert.Equal(t, "none", status.Backend)
	assert.Equal(t, 2, status.TotalSnapshots)
	assert.Equal(t, 2, status.Categories[schema.MoviesCategory].Snapshots)

	empty := mcp_internal.NewMCPServer(&contract.Config{}, &iocache.HistoryStoreManager{})
	res = callTool(t, empty, "get_history_status", nil)
	assert.True(t, res.IsError)
}
