// Package service implements the connection orchestration for the game
// server: routing a connection's first event, the per-connection gameplay
// loop, and event broadcast to a session's audience.
//
// The service package implements:
//   - First-event classification: create a session, join one as the second
//     player, or attach as a spectator
//   - The receive/apply/broadcast cycle that drives a game
//   - Best-effort fan-out of serialized events to session members
//   - Session teardown when the creating connection goes away
//
// Core Types:
//
// Service is the orchestrator; it is constructed over a Registry (the
// session store) and handles one connection per call to HandleConnection.
// Conn is the transport-neutral connection handle, implemented by the
// websocket transport. Event is the JSON envelope exchanged on the wire.
//
// Lifecycle:
//
// HandleConnection is the connection's task. It reads exactly one event to
// classify the connection, then runs until the transport reports closure.
// The session created by a connection is destroyed when that connection's
// task returns, whatever the reason; a joined connection only removes
// itself from the session on the way out.
//
// Concurrency:
//
// Every connection runs HandleConnection on its own goroutine. Tasks share
// state only through the Registry, which synchronizes internally; sends to
// other connections are non-blocking and best-effort.
package service
