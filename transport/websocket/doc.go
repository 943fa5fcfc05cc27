// Package websocket provides the WebSocket transport for the game server.
//
// The websocket package implements:
//   - Connection upgrade and handoff to the service's per-connection task
//   - A buffered, non-blocking send queue per connection
//   - Ping/pong keepalive and write deadlines
//   - Disconnection of stalled peers instead of blocking broadcasters
//
// Architecture:
//
// Each accepted connection gets two goroutines: the HTTP handler goroutine
// becomes the connection's task (it reads inbound messages through
// Conn.Receive and runs the service loop), and a writer goroutine drains
// the send queue to the peer. Events enqueued with Conn.Send reach the
// peer in FIFO order.
//
// Backpressure:
//
// Send never blocks. If a peer stops draining and its queue fills, the
// connection is closed and the send reports a queue-full error; the
// broadcaster carries on with the remaining recipients.
//
// Usage:
//
//	handler := websocket.NewHandler(svc, 256, logger)
//	router.Handle("/ws", handler)
//
// Connection Lifecycle:
//
// 1. Client connects and is upgraded
// 2. The service classifies the first inbound event
// 3. Inbound events drive the game, outbound events drain via the queue
// 4. Peer disconnect (or a stalled queue) closes the connection and
// unblocks the task, which performs its registry cleanup
package websocket
