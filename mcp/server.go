package mcp

import (
	"github.com/mark3labs/mcp-go/server"
)

const (
	serverName    = "promobot"
	serverVersion = "1.0.0"
)

// NewServer builds the MCP server with all tools registered.
func NewServer(d Deps) *server.MCPServer {
	s := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(true),
	)

	registerTools(s, d)

	return s
}

// Serve starts the MCP stdio server.
func Serve(d Deps) error {
	return server.ServeStdio(NewServer(d))
}
