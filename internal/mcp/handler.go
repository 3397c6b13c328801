package mcp

import (
	"net/http"

	"github.com/bobmcallan/divvy/internal/common"
	"github.com/bobmcallan/divvy/internal/config"
	"github.com/bobmcallan/divvy/internal/dashboard"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Handler is the HTTP handler for the MCP endpoint.
// It wraps mcp-go's StreamableHTTPServer and delegates to it.
type Handler struct {
	server     *mcpserver.MCPServer
	streamable *mcpserver.StreamableHTTPServer
	logger     *common.Logger
}

// NewHandler creates an MCP handler exposing the dashboard tools.
func NewHandler(controller *dashboard.Controller, build config.BuildInfo, maxCSVBytes int64, logger *common.Logger) *Handler {
	if logger == nil {
		logger = common.NewSilentLogger()
	}

	mcpSrv := NewServer(controller, build, maxCSVBytes, logger)

	streamable := mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithStateLess(true),
	)

	logger.Info().
		Int("tools", len(toolNames)).
		Msg("MCP handler initialized")

	return &Handler{
		server:     mcpSrv,
		streamable: streamable,
		logger:     logger,
	}
}

// NewServer builds the MCP server with every dashboard tool registered.
func NewServer(controller *dashboard.Controller, build config.BuildInfo, maxCSVBytes int64, logger *common.Logger) *mcpserver.MCPServer {
	mcpSrv := mcpserver.NewMCPServer(
		build.Service,
		build.Version,
		mcpserver.WithToolCapabilities(true),
	)
	RegisterTools(mcpSrv, controller, build, maxCSVBytes, logger)
	return mcpSrv
}

// Server returns the underlying MCP server.
func (h *Handler) Server() *mcpserver.MCPServer {
	return h.server
}

// ServeHTTP delegates to the mcp-go StreamableHTTPServer.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.streamable.ServeHTTP(w, r)
}
