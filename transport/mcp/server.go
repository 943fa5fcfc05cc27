package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/openfour/gameserver/game/service"
)

// Server wraps an MCP server whose tools observe the game service.
type Server struct {
	svc       *service.Service
	mcpServer *server.MCPServer
}

// NewServer creates the MCP tool server for the given service.
func NewServer(svc *service.Service, name, version string) *Server {
	s := &Server{
		svc: svc,
		mcpServer: server.NewMCPServer(
			name,
			version,
			server.WithToolCapabilities(true),
			server.WithInstructions(`Connect Four game server - MCP interface

Read-only observation tools. Games are created and played over the
server's WebSocket protocol; a session id is the bearer credential for
observing a game.

AVAILABLE TOOLS:
- server_stats: Get live and maximum session counts
- session_board: Render the board of a session by id`),
		),
	}

	s.registerTools()
	return s
}

// registerTools registers all MCP tools.
func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "server_stats",
		Description: "Get the number of live game sessions and the session capacity",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleServerStats)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "session_board",
		Description: "Render the current board of a game session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session id of the game to render",
				},
			},
			Required: []string{"session_id"},
		},
	}, s.handleSessionBoard)
}

// GetMCPServer returns the underlying MCP server for serving.
func (s *Server) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

// Tool handlers

func (s *Server) handleServerStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	active, max := s.svc.Stats()
	result := fmt.Sprintf("Live sessions: %d\nCapacity: %d\n", active, max)
	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleSessionBoard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	if sessionID == "" {
		return mcp.NewToolResultError("session_id is required"), nil
	}

	board, err := s.svc.Board(sessionID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Game %s:\n\n%s", sessionID, board)
	return mcp.NewToolResultText(result), nil
}
