package mcp

import (
	"context"

	"github.com/bobmcallan/divvy/internal/config"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// VersionTool returns the mcp.Tool definition for get_version.
func VersionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Get the divvy server version. Use this to verify connectivity."),
	)
}

// VersionToolHandler reports build as the tool result.
func VersionToolHandler(build config.BuildInfo) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(build), nil
	}
}
