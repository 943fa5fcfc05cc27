// Package session provides the session registry for the game server.
//
// The session package implements:
//   - Thread-safe storage of live sessions keyed by session id
//   - Unguessable session id generation
//   - Player and watcher membership per session
//   - A bounded number of concurrently live sessions
//
// Core Types:
//
// Registry is the process-wide store; it implements service.Registry.
// Each entry owns one engine.Game shared by reference between the player
// and watcher sides, so moves applied by either player are visible to
// spectators without copying.
//
// Session Identifiers:
//
// Ids are 12 bytes of cryptographic randomness in URL-safe base64 (16
// characters). An id is a bearer credential: anyone who learns it may join
// or watch the game. Ids are never reused while a session is live.
//
// Concurrency:
//
// A single lock guards the session table and every session's member sets.
// Membership snapshots for broadcast are taken under that lock, so a
// concurrent insert or remove can never corrupt iteration or skip a
// member that joined strictly before the snapshot.
//
// Usage:
//
//	registry := session.NewRegistry(128, logger)
//
//	id, game, err := registry.Create(conn)
//	if err != nil {
//		// service.ErrTooManySessions or service.ErrIDCollision
//	}
//	defer registry.Destroy(id)
package session
