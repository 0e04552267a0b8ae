package mcp

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/corvino/roomboard/internal/client"
)

// Config holds the configuration for the MCP server.
type Config struct {
	ServerURL string
}

// NewServer builds the MCP server with every board tool registered.
func NewServer(cfg Config) *mcpserver.MCPServer {
	srv := mcpserver.NewMCPServer(
		"roomboard",
		"1.0.0",
		mcpserver.WithToolCapabilities(true),
	)
	RegisterTools(srv, client.NewHTTPClient(cfg.ServerURL))
	return srv
}

// Serve starts the MCP stdio server. It blocks until stdin is closed or a signal is received.
func Serve(cfg Config) error {
	srv := NewServer(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	stdioSrv := mcpserver.NewStdioServer(srv)
	return stdioSrv.Listen(ctx, os.Stdin, os.Stdout)
}
