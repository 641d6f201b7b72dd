// Package tools provides the MCP tool surface over the inference contract.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// HealthDeps describes the served model for the health tool.
type HealthDeps struct {
	Version     string
	Dataset     string
	ProfileMode string
}

type healthResult struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Dataset     string `json:"dataset,omitempty"`
	ProfileMode string `json:"profile_mode,omitempty"`
}

// RegisterHealthTool adds a health check tool to the MCP server. The tool
// reports server status, version and which model this server documents.
func RegisterHealthTool(s *server.MCPServer, deps HealthDeps) {
	tool := mcp.NewTool(
		"health",
		mcp.WithDescription("Returns server health status, version and the configured dataset"),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := json.Marshal(healthResult{
			Status:      "ok",
			Version:     deps.Version,
			Dataset:     deps.Dataset,
			ProfileMode: deps.ProfileMode,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal health result: %w", err)
		}
		return mcp.NewToolResultText(string(result)), nil
	})
}
