// Package mcp exposes inventory reads over the Model Context Protocol.
package mcp

import (
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/middleware"
)

// ServerName is advertised to MCP clients.
const ServerName = "cbls-tracker"

// Instructions is sent to clients on initialize.
const Instructions = "Cable inventory, tracked per datacenter as an append-only ledger of import snapshots. " +
	"A product's current quantity in a datacenter is its most recent snapshot there; a product missing from " +
	"the latest import of that datacenter has quantity 0. Tools that take a datacenter treat an omitted value " +
	"as all datacenters and an empty string as the unscoped datacenter. All tools are read-only."

// Server wraps the mcp-go MCPServer.
type Server struct {
	mcp    *server.MCPServer
	logger *zap.Logger
}

// NewServer creates a new MCP server instance. Every tool call is recorded by an
// AuditLogger.
func NewServer(name, version string, logger *zap.Logger) *Server {
	audit := NewAuditLogger(logger)
	mcpServer := server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(false),
		server.WithInstructions(Instructions),
		server.WithHooks(audit.Hooks()),
		server.WithRecovery(),
	)

	return &Server{
		mcp:    mcpServer,
		logger: logger,
	}
}

// MCP returns the underlying MCPServer for tool registration.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// NewStreamableHTTPServer creates a stateless HTTP transport for this server.
// The mux owns the /mcp path, so no endpoint path is configured here.
func (s *Server) NewStreamableHTTPServer() *server.StreamableHTTPServer {
	return server.NewStreamableHTTPServer(
		s.mcp,
		server.WithStateLess(true),
	)
}

// Handler returns the HTTP transport with JSON-RPC request logging in front.
func (s *Server) Handler() http.Handler {
	return middleware.MCPRequestLogger(s.logger)(s.NewStreamableHTTPServer())
}

// RegisterTool is a convenience wrapper for registering a tool.
func (s *Server) RegisterTool(tool mcp.Tool, handler server.ToolHandlerFunc) {
	s.mcp.AddTool(tool, handler)
}
