package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/openfour/gameserver/game/engine"
)

// Errors surfaced by Registry implementations.
var (
	// ErrSessionNotFound reports that the referenced session id does not
	// exist: never created, already destroyed, or racing destruction.
	ErrSessionNotFound = errors.New("game not found")

	// ErrTooManySessions reports that the registry is at its session limit.
	ErrTooManySessions = errors.New("too many active games")

	// ErrIDCollision reports that a freshly generated session id already
	// exists. Practically unreachable given the id entropy.
	ErrIDCollision = errors.New("game id collision")
)

// Conn is the transport-neutral handle for one active connection. The
// websocket transport implements it.
//
// Send must be non-blocking from the caller's perspective and deliver
// payloads in FIFO order per connection; a stalled peer is the
// implementation's problem, not the broadcaster's. Receive blocks until the
// next inbound message and returns an error once the transport reports
// closure.
type Conn interface {
	ID() string
	Send(payload []byte) error
	Receive(ctx context.Context) ([]byte, error)
	Close() error
}

// Registry is the session store the service orchestrates against. All
// methods are safe for concurrent use; snapshot methods return the
// membership at call time, read under the same critical section that
// guards membership mutation.
type Registry interface {
	// Create allocates a new game, registers creator as its first player,
	// and returns the generated session id. Fails with ErrTooManySessions
	// or ErrIDCollision.
	Create(creator Conn) (string, *engine.Game, error)

	// Game returns the engine for a live session.
	Game(id string) (*engine.Game, error)

	// Join adds conn to the session's player set.
	Join(conn Conn, id string) (*engine.Game, error)

	// Leave removes conn from the session's player set. Removing an absent
	// member or referencing a dead session is a no-op.
	Leave(conn Conn, id string)

	// Watch adds conn to the session's watcher set.
	Watch(conn Conn, id string) (*engine.Game, error)

	// Unwatch removes conn from the session's watcher set. Idempotent.
	Unwatch(conn Conn, id string)

	// Destroy removes the session from the registry. Idempotent.
	Destroy(id string)

	// Players returns a snapshot of the session's player set.
	Players(id string) ([]Conn, error)

	// Watchers returns a snapshot of the session's watcher set.
	Watchers(id string) ([]Conn, error)

	// Audience returns a snapshot of players and watchers combined.
	Audience(id string) ([]Conn, error)

	// Count returns the number of live sessions.
	Count() int

	// Capacity returns the maximum number of live sessions.
	Capacity() int
}

// Service routes new connections and runs their gameplay loops.
type Service struct {
	registry Registry
	log      zerolog.Logger
}

// New creates a service over the given registry.
func New(registry Registry, log zerolog.Logger) *Service {
	return &Service{
		registry: registry,
		log:      log.With().Str("component", "service").Logger(),
	}
}

// Stats returns the live and maximum session counts.
func (s *Service) Stats() (active, max int) {
	return s.registry.Count(), s.registry.Capacity()
}

// Board returns a textual render of a live session's board.
func (s *Service) Board(id string) (string, error) {
	game, err := s.registry.Game(id)
	if err != nil {
		return "", err
	}
	return game.Render(), nil
}

// HandleConnection is the per-connection task. It reads the first inbound
// event to decide whether the connection starts a game, joins one, or
// spectates, then runs the matching loop until the connection closes.
func (s *Service) HandleConnection(ctx context.Context, conn Conn) {
	log := s.log.With().Str("conn_id", conn.ID()).Logger()

	raw, err := conn.Receive(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("connection closed before first event")
		return
	}

	evt, err := decodeEvent(raw)
	if err != nil {
		s.send(conn, errorEvent(err.Error()))
		return
	}

	switch evt.Type {
	case EventInit:
		if evt.GameID == "" {
			s.create(ctx, conn, log)
		} else {
			s.join(ctx, conn, evt.GameID, log)
		}
	case EventWatch:
		s.watch(ctx, conn, evt.GameID, log)
	default:
		s.send(conn, errorEvent(fmt.Sprintf("unsupported event type %q", evt.Type)))
	}
}

// create starts a new session with conn as the red player. The deferred
// Destroy ties the session's lifetime to this connection's task: however
// the loop ends, the session is released exactly once.
func (s *Service) create(ctx context.Context, conn Conn, log zerolog.Logger) {
	id, game, err := s.registry.Create(conn)
	if err != nil {
		s.send(conn, errorEvent(err.Error()))
		return
	}
	defer s.registry.Destroy(id)

	log = log.With().Str("game_id", id).Logger()
	log.Info().Msg("game created")

	s.send(conn, initEvent(id))
	s.playLoop(ctx, conn, game, id, engine.PlayerRed, log)

	log.Info().Msg("game destroyed")
}

// join attaches conn to an existing session as the yellow player. Only the
// connection's own membership is released on exit; the session belongs to
// its creator.
func (s *Service) join(ctx context.Context, conn Conn, id string, log zerolog.Logger) {
	game, err := s.registry.Join(conn, id)
	if err != nil {
		s.send(conn, errorEvent(err.Error()))
		return
	}
	defer s.registry.Leave(conn, id)

	log = log.With().Str("game_id", id).Logger()
	log.Info().Msg("player joined")

	s.replay(conn, game)
	s.playLoop(ctx, conn, game, id, engine.PlayerYellow, log)

	log.Info().Msg("player left")
}

// watch attaches conn as a spectator. Spectators receive broadcasts but
// their inbound messages are never routed to a play identity; the loop
// discards them until the connection closes.
func (s *Service) watch(ctx context.Context, conn Conn, id string, log zerolog.Logger) {
	game, err := s.registry.Watch(conn, id)
	if err != nil {
		s.send(conn, errorEvent(err.Error()))
		return
	}
	defer s.registry.Unwatch(conn, id)

	log = log.With().Str("game_id", id).Logger()
	log.Info().Msg("watcher attached")

	s.replay(conn, game)
	for {
		if _, err := conn.Receive(ctx); err != nil {
			break
		}
	}

	log.Info().Msg("watcher detached")
}

// playLoop runs the gameplay cycle for one player connection: receive a
// play event, apply it to the shared engine, broadcast the result. The
// loop ends only when the transport reports closure or the payload is
// unparseable; game completion leaves the connection idle but open.
func (s *Service) playLoop(ctx context.Context, conn Conn, game *engine.Game, id string, player engine.Player, log zerolog.Logger) {
	for {
		raw, err := conn.Receive(ctx)
		if err != nil {
			return
		}

		evt, err := decodeEvent(raw)
		if err != nil {
			// Garbage on the wire; answer once and hang up.
			s.send(conn, errorEvent(err.Error()))
			return
		}

		if evt.Type != EventPlay {
			s.send(conn, errorEvent(fmt.Sprintf("unsupported event type %q", evt.Type)))
			continue
		}
		if evt.Column == nil {
			s.send(conn, errorEvent("play event has no column"))
			continue
		}

		// The session dies with its creator; a joined connection may still
		// be sending moves against an id that is gone.
		if _, err := s.registry.Game(id); err != nil {
			s.send(conn, errorEvent(err.Error()))
			return
		}

		row, err := game.Play(player, *evt.Column)
		if err != nil {
			// Rejected moves stay local to the offending connection.
			s.send(conn, errorEvent(err.Error()))
			continue
		}

		move := engine.Move{Player: player, Column: *evt.Column, Row: row}
		log.Debug().Int("column", move.Column).Int("row", move.Row).Msg("move accepted")
		s.broadcast(id, encodeEvent(playEvent(move)))

		if game.LastMoveWon() {
			log.Info().Str("winner", string(player)).Msg("game decided")
			s.broadcast(id, encodeEvent(winEvent(player)))
		}
	}
}

// replay brings a late-attaching connection up to date by sending every
// accepted move, and the win event if the game is already decided.
func (s *Service) replay(conn Conn, game *engine.Game) {
	for _, move := range game.Moves() {
		s.send(conn, playEvent(move))
	}
	if winner := game.Winner(); winner != "" {
		s.send(conn, winEvent(winner))
	}
}

// broadcast delivers a serialized event to every connection in the
// session's audience at call time. Delivery is independent per recipient;
// failures are logged and swallowed. A vanished session is tolerated: the
// creator may have disconnected between the move and the fan-out.
func (s *Service) broadcast(id string, payload []byte) {
	conns, err := s.registry.Audience(id)
	if err != nil {
		s.log.Debug().Str("game_id", id).Msg("broadcast to destroyed game dropped")
		return
	}

	for _, conn := range conns {
		if err := conn.Send(payload); err != nil {
			s.log.Debug().Err(err).Str("conn_id", conn.ID()).Msg("broadcast delivery failed")
		}
	}
}

// send delivers a single event to one connection, best effort.
func (s *Service) send(conn Conn, evt Event) {
	if err := conn.Send(encodeEvent(evt)); err != nil {
		s.log.Debug().Err(err).Str("conn_id", conn.ID()).Msg("send failed")
	}
}
