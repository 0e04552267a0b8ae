package mcp

import (
	"context"
	"fmt"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/corvino/roomboard/internal/client"
	"github.com/corvino/roomboard/internal/protocol"
)

// prop is a shorthand for building a JSON Schema property.
func prop(typ, desc string) any {
	return map[string]any{
		"type":        typ,
		"description": desc,
	}
}

func propEnum(typ, desc string, enum []string) any {
	vals := make([]any, len(enum))
	for i, v := range enum {
		vals[i] = v
	}
	return map[string]any{
		"type":        typ,
		"description": desc,
		"enum":        vals,
	}
}

// RegisterTools adds the board tools to the MCP server.
func RegisterTools(srv *mcpserver.MCPServer, c *client.HTTPClient) {
	srv.AddTool(mcplib.Tool{
		Name:        "get_room_status",
		Description: "Show the current status of every room on the board.",
		InputSchema: mcplib.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, makeGetRoomStatusHandler(c))

	srv.AddTool(mcplib.Tool{
		Name:        "set_room_status",
		Description: "Set one room's status. OK marks it good, NOK marks it not good, RESET clears it. Every connected display updates immediately.",
		InputSchema: mcplib.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"room":   prop("string", "Room id, e.g. prayer-ground"),
				"status": propEnum("string", "New status", []string{protocol.TokenOK, protocol.TokenNOK, protocol.TokenReset}),
			},
			Required: []string{"room", "status"},
		},
	}, makeSetRoomStatusHandler(c))
}

func makeGetRoomStatusHandler(c *client.HTTPClient) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		list, err := c.Rooms()
		if err != nil {
			return mcplib.NewToolResultError(fmt.Sprintf("failed to get rooms: %v", err)), nil
		}

		var sb strings.Builder
		for _, rs := range list.Rooms {
			fmt.Fprintf(&sb, "%s: %s\n", rs.Room, rs.Status)
		}
		return mcplib.NewToolResultText(sb.String()), nil
	}
}

func makeSetRoomStatusHandler(c *client.HTTPClient) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		room := request.GetString("room", "")
		status := request.GetString("status", "")
		if room == "" || status == "" {
			return mcplib.NewToolResultError("room and status are required"), nil
		}
		switch status {
		case protocol.TokenOK, protocol.TokenNOK, protocol.TokenReset:
		default:
			return mcplib.NewToolResultError(fmt.Sprintf("status must be OK, NOK or RESET, got %q", status)), nil
		}

		out, err := c.SetStatus(room, status)
		if err != nil {
			return mcplib.NewToolResultError(fmt.Sprintf("failed to set status: %v", err)), nil
		}
		return mcplib.NewToolResultText(fmt.Sprintf("%s is now %s", out.Room, out.Status)), nil
	}
}
