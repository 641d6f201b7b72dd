// Package middleware provides cross-cutting wrappers for the MCP tool
// handler chain.
package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// maxLoggedValueLen bounds string argument values in logs.
const maxLoggedValueLen = 200

// ToolCallLogger returns tool handler middleware that logs every MCP tool
// call with sanitized arguments, its outcome and duration. Pass nil logger
// to disable logging. All output goes to the logger (stderr); tool calls on
// a stdio server must never write to stdout.
func ToolCallLogger(logger *zap.Logger) server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		if logger == nil {
			return next
		}

		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			tool := req.Params.Name
			logger.Debug("tool call",
				zap.String("tool", tool),
				zap.Any("arguments", sanitizeArguments(req.GetArguments())),
			)

			start := time.Now()
			result, err := next(ctx, req)
			duration := time.Since(start)

			switch {
			case err != nil:
				logger.Warn("tool call failed",
					zap.String("tool", tool),
					zap.Error(err),
					zap.Duration("duration", duration),
				)
			case result != nil && result.IsError:
				logger.Debug("tool call returned error result",
					zap.String("tool", tool),
					zap.Duration("duration", duration),
				)
			default:
				logger.Debug("tool call succeeded",
					zap.String("tool", tool),
					zap.Duration("duration", duration),
				)
			}
			return result, err
		}
	}
}

// sanitizeArguments redacts sensitive fields and truncates long values.
func sanitizeArguments(args map[string]any) map[string]any {
	if args == nil {
		return nil
	}

	sensitiveKeywords := []string{"password", "secret", "token", "key", "credential"}
	result := make(map[string]any, len(args))

	for k, v := range args {
		lowerKey := strings.ToLower(k)
		isSensitive := false
		for _, keyword := range sensitiveKeywords {
			if strings.Contains(lowerKey, keyword) {
				isSensitive = true
				break
			}
		}
		if isSensitive {
			result[k] = "[REDACTED]"
			continue
		}

		if str, ok := v.(string); ok && len(str) > maxLoggedValueLen {
			result[k] = str[:maxLoggedValueLen] + "..."
		} else {
			result[k] = v
		}
	}

	return result
}
