package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
)

func TestNewServer(t *testing.T) {
	logger := zap.NewNop()
	s := NewServer("semdoc", "1.0.0", logger)

	if s == nil {
		t.Fatal("expected non-nil server")
	}
	if s.mcp == nil {
		t.Fatal("expected non-nil mcp server")
	}
	if s.logger != logger {
		t.Error("expected logger to be set")
	}
	if s.MCP() != s.mcp {
		t.Error("MCP() should return the internal server")
	}
}

func TestServerRegisterTool(t *testing.T) {
	s := NewServer("semdoc", "1.0.0", zap.NewNop())

	tool := mcpgo.NewTool("probe", mcpgo.WithDescription("A probe tool"))
	s.RegisterTool(tool, func(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
		return mcpgo.NewToolResultText("ok"), nil
	})

	raw := s.MCP().HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","method":"tools/list","id":1}`))
	resultBytes, err := json.Marshal(raw)
	if err != nil {
		t.Fatalf("failed to marshal response: %v", err)
	}
	if !strings.Contains(string(resultBytes), `"probe"`) {
		t.Error("registered tool not present in tools/list")
	}
}
