// Package mcp exposes module exploration over the Model Context Protocol
// so agent frontends can inspect Python APIs without running Python.
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/modpeek/pkg/render"
	"github.com/gnana997/modpeek/pkg/surface"
)

const serverVersion = "0.1.0"

// Server implements the MCP server, exposing exploration and signature
// tools over stdio.
type Server struct {
	mcpServer *server.MCPServer
	service   *surface.Service
	pretty    *render.PrettyRenderer
	json      *render.JSONRenderer
	logger    *slog.Logger
}

// NewServer creates an MCP server backed by the given facade. The display
// config drives the pretty output format; logger may be nil.
func NewServer(svc *surface.Service, display render.DisplayConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		service: svc,
		pretty:  render.NewPrettyRenderer(display),
		json:    render.NewJSONRenderer(),
		logger:  logger,
	}

	s.mcpServer = server.NewMCPServer(
		"modpeek",
		serverVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithToolHandlerMiddleware(s.loggingMiddleware()),
	)

	s.mcpServer.AddTools(
		server.ServerTool{Tool: exploreModuleTool(), Handler: s.handleExploreModule},
		server.ServerTool{Tool: getSignatureTool(), Handler: s.handleGetSignature},
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
