package cli

import (
	"github.com/spf13/cobra"

	"github.com/corvino/roomboard/internal/mcp"
)

func newMCPServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:    "mcp-serve",
		Short:  "Start the MCP stdio server",
		Long:   `Runs a Model Context Protocol (MCP) server over stdio exposing get_room_status and set_room_status against --server.`,
		Hidden: true, // launched by MCP hosts as a subprocess
		RunE: func(cmd *cobra.Command, args []string) error {
			return mcp.Serve(mcp.Config{ServerURL: flagServer})
		},
	}
}
