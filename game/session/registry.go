package session

import (
	"crypto/rand"
	"encoding/base64"
	"sync"

	"github.com/rs/zerolog"

	"github.com/openfour/gameserver/game/engine"
	"github.com/openfour/gameserver/game/service"
)

// idBytes is the entropy per session id; 12 bytes encode to 16 URL-safe
// characters, enough to make guessing a live id infeasible.
const idBytes = 12

// DefaultMaxSessions bounds the registry when no explicit capacity is
// configured.
const DefaultMaxSessions = 128

// entry holds one live session. The same *engine.Game instance backs both
// the player and the watcher side.
type entry struct {
	game     *engine.Game
	players  map[service.Conn]struct{}
	watchers map[service.Conn]struct{}
}

// Registry is the process-wide session store. It implements
// service.Registry and is safe for concurrent use.
type Registry struct {
	maxSessions int
	log         zerolog.Logger

	mu       sync.RWMutex
	sessions map[string]*entry
}

var _ service.Registry = (*Registry)(nil)

// NewRegistry creates an empty registry holding at most maxSessions live
// sessions. A non-positive capacity falls back to DefaultMaxSessions.
func NewRegistry(maxSessions int, log zerolog.Logger) *Registry {
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	return &Registry{
		maxSessions: maxSessions,
		log:         log.With().Str("component", "registry").Logger(),
		sessions:    make(map[string]*entry),
	}
}

// Create allocates a new game, generates its id, and registers creator as
// the first player. Fails with service.ErrTooManySessions at capacity and
// service.ErrIDCollision if the generated id already exists.
func (r *Registry) Create(creator service.Conn) (string, *engine.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.sessions) >= r.maxSessions {
		return "", nil, service.ErrTooManySessions
	}

	id := newID()
	if _, exists := r.sessions[id]; exists {
		return "", nil, service.ErrIDCollision
	}

	game := engine.New()
	r.sessions[id] = &entry{
		game:     game,
		players:  map[service.Conn]struct{}{creator: {}},
		watchers: make(map[service.Conn]struct{}),
	}

	r.log.Debug().Str("game_id", id).Int("live", len(r.sessions)).Msg("session created")
	return id, game, nil
}

// Game returns the engine for a live session.
func (r *Registry) Game(id string) (*engine.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.sessions[id]
	if !ok {
		return nil, service.ErrSessionNotFound
	}
	return e.game, nil
}

// Join adds conn to the session's player set. Membership is separate from
// the two play identities: the registry does not reject a third member.
func (r *Registry) Join(conn service.Conn, id string) (*engine.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok {
		return nil, service.ErrSessionNotFound
	}
	e.players[conn] = struct{}{}
	return e.game, nil
}

// Leave removes conn from the session's player set. Absence of the member
// or of the session is a no-op.
func (r *Registry) Leave(conn service.Conn, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.sessions[id]; ok {
		delete(e.players, conn)
	}
}

// Watch adds conn to the session's watcher set.
func (r *Registry) Watch(conn service.Conn, id string) (*engine.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok {
		return nil, service.ErrSessionNotFound
	}
	e.watchers[conn] = struct{}{}
	return e.game, nil
}

// Unwatch removes conn from the session's watcher set. Idempotent.
func (r *Registry) Unwatch(conn service.Conn, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.sessions[id]; ok {
		delete(e.watchers, conn)
	}
}

// Destroy removes the session for everyone: players, watchers, and any
// later lookup. Destroying a dead session is a no-op.
func (r *Registry) Destroy(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return
	}
	delete(r.sessions, id)
	r.log.Debug().Str("game_id", id).Int("live", len(r.sessions)).Msg("session destroyed")
}

// Players returns a snapshot of the session's player set.
func (r *Registry) Players(id string) ([]service.Conn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.sessions[id]
	if !ok {
		return nil, service.ErrSessionNotFound
	}
	return collect(e.players), nil
}

// Watchers returns a snapshot of the session's watcher set.
func (r *Registry) Watchers(id string) ([]service.Conn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.sessions[id]
	if !ok {
		return nil, service.ErrSessionNotFound
	}
	return collect(e.watchers), nil
}

// Audience returns a snapshot of players and watchers combined, taken
// under the same lock that guards membership mutation.
func (r *Registry) Audience(id string) ([]service.Conn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.sessions[id]
	if !ok {
		return nil, service.ErrSessionNotFound
	}

	conns := make([]service.Conn, 0, len(e.players)+len(e.watchers))
	for c := range e.players {
		conns = append(conns, c)
	}
	for c := range e.watchers {
		if _, alsoPlayer := e.players[c]; !alsoPlayer {
			conns = append(conns, c)
		}
	}
	return conns, nil
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Capacity returns the maximum number of live sessions.
func (r *Registry) Capacity() int {
	return r.maxSessions
}

// collect copies a member set into a slice.
func collect(set map[service.Conn]struct{}) []service.Conn {
	conns := make([]service.Conn, 0, len(set))
	for c := range set {
		conns = append(conns, c)
	}
	return conns
}

// newID generates a cryptographically random, URL-safe session id.
func newID() string {
	b := make([]byte, idBytes)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand never fails on supported platforms.
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
