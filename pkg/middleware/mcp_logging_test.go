package middleware

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func toolCallRequest(tool string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = tool
	req.Params.Arguments = args
	return req
}

func TestToolCallLogger(t *testing.T) {
	t.Run("logs successful tool call", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		logger := zap.New(core)

		handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("ok"), nil
		}
		wrapped := ToolCallLogger(logger)(handler)

		result, err := wrapped(context.Background(),
			toolCallRequest("get_fact_profile", map[string]any{"fact": "FactSales"}))
		require.NoError(t, err)
		require.NotNil(t, result)

		require.Equal(t, 2, logs.Len(), "should log call and outcome")

		callLog := logs.All()[0]
		assert.Equal(t, "tool call", callLog.Message)
		assert.Equal(t, "get_fact_profile", callLog.ContextMap()["tool"])
		args := callLog.ContextMap()["arguments"].(map[string]any)
		assert.Equal(t, "FactSales", args["fact"])

		outcomeLog := logs.All()[1]
		assert.Equal(t, "tool call succeeded", outcomeLog.Message)
		assert.NotNil(t, outcomeLog.ContextMap()["duration"])
	})

	t.Run("logs handler error", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		logger := zap.New(core)

		handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return nil, errors.New("model unreachable")
		}
		wrapped := ToolCallLogger(logger)(handler)

		_, err := wrapped(context.Background(), toolCallRequest("get_model_contract", nil))
		require.Error(t, err)

		outcomeLog := logs.All()[1]
		assert.Equal(t, "tool call failed", outcomeLog.Message)
		assert.Equal(t, "model unreachable", outcomeLog.ContextMap()["error"])
	})

	t.Run("logs error results", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		logger := zap.New(core)

		handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultError("fact_not_found"), nil
		}
		wrapped := ToolCallLogger(logger)(handler)

		_, err := wrapped(context.Background(), toolCallRequest("get_fact_profile", nil))
		require.NoError(t, err)

		outcomeLog := logs.All()[1]
		assert.Equal(t, "tool call returned error result", outcomeLog.Message)
	})

	t.Run("nil logger passes straight through", func(t *testing.T) {
		called := false
		handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			called = true
			return mcp.NewToolResultText("ok"), nil
		}
		wrapped := ToolCallLogger(nil)(handler)

		_, err := wrapped(context.Background(), toolCallRequest("health", nil))
		require.NoError(t, err)
		assert.True(t, called)
	})
}

func TestSanitizeArguments(t *testing.T) {
	t.Run("redacts sensitive keys", func(t *testing.T) {
		result := sanitizeArguments(map[string]any{
			"password":     "secret123",
			"api_key":      "abc123",
			"accessToken":  "xyz",
			"normal_param": "visible",
		})

		assert.Equal(t, "[REDACTED]", result["password"])
		assert.Equal(t, "[REDACTED]", result["api_key"])
		assert.Equal(t, "[REDACTED]", result["accessToken"])
		assert.Equal(t, "visible", result["normal_param"])
	})

	t.Run("truncates long string values", func(t *testing.T) {
		long := strings.Repeat("x", maxLoggedValueLen+50)
		result := sanitizeArguments(map[string]any{"filter": long})

		got := result["filter"].(string)
		assert.Len(t, got, maxLoggedValueLen+3)
		assert.True(t, strings.HasSuffix(got, "..."))
	})

	t.Run("keeps non-string values", func(t *testing.T) {
		result := sanitizeArguments(map[string]any{"refresh": true, "limit": 5})
		assert.Equal(t, true, result["refresh"])
		assert.Equal(t, 5, result["limit"])
	})

	t.Run("nil arguments stay nil", func(t *testing.T) {
		assert.Nil(t, sanitizeArguments(nil))
	})
}
