package mcp

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// loggingMiddleware records every tool call with its duration and
// outcome through the server's structured logger.
func (s *Server) loggingMiddleware() server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			start := time.Now()
			result, err := next(ctx, req)
			elapsed := time.Since(start)

			attrs := []any{
				"tool", req.Params.Name,
				"duration_ms", elapsed.Milliseconds(),
			}
			if err != nil {
				attrs = append(attrs, "error", err)
				s.logger.Error("tool call failed", attrs...)
			} else {
				if result != nil && result.IsError {
					attrs = append(attrs, "tool_error", true)
				}
				s.logger.Info("tool call", attrs...)
			}

			return result, err
		}
	}
}
