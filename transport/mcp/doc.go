// Package mcp exposes a read-only MCP tool surface for the game server.
//
// The tools let an MCP client observe the server without joining games:
//   - server_stats: live and maximum session counts
//   - session_board: textual board render for a known session id
//
// The surface is mounted at POST /mcp by main; tool handlers call the
// service directly. Nothing here can create sessions or submit moves —
// gameplay stays on the WebSocket protocol.
package mcp
