// Package api provides the HTTP surface of the game server.
//
// Routes:
//   - GET /ws — WebSocket upgrade; gameplay happens on the socket
//   - GET /healthz — liveness probe
//   - GET /api/stats — live and maximum session counts
//   - GET /api/sessions/{id}/board — textual board render for a known
//     session id (the id is the bearer credential)
//
// The REST side is deliberately read-only: sessions are created, joined,
// and played exclusively over the WebSocket protocol.
package api
