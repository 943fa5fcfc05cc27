package service

import (
	"encoding/json"
	"fmt"

	"github.com/openfour/gameserver/game/engine"
)

// Event types exchanged over a connection, one event per message.
const (
	EventInit  = "init"
	EventWatch = "watch"
	EventPlay  = "play"
	EventWin   = "win"
	EventError = "error"
)

// Event is the JSON envelope for every message on the wire. Which fields
// are present depends on Type:
//
//	init (client):  game_id (optional; absent means create)
//	init (server):  game_id
//	watch (client): game_id
//	play (client):  column
//	play (server):  player, column, row
//	win (server):   player
//	error (server): message
type Event struct {
	Type    string        `json:"type"`
	GameID  string        `json:"game_id,omitempty"`
	Player  engine.Player `json:"player,omitempty"`
	Column  *int          `json:"column,omitempty"`
	Row     *int          `json:"row,omitempty"`
	Message string        `json:"message,omitempty"`
}

// decodeEvent parses one inbound message. It fails when the payload is not
// a JSON object or carries no type discriminant.
func decodeEvent(data []byte) (Event, error) {
	var evt Event
	if err := json.Unmarshal(data, &evt); err != nil {
		return Event{}, fmt.Errorf("failed to parse event: %w", err)
	}
	if evt.Type == "" {
		return Event{}, fmt.Errorf("event has no type")
	}
	return evt, nil
}

// encodeEvent serializes an event once so broadcasts reuse the same bytes
// for every recipient.
func encodeEvent(evt Event) []byte {
	data, _ := json.Marshal(evt)
	return data
}

func initEvent(gameID string) Event {
	return Event{Type: EventInit, GameID: gameID}
}

func playEvent(move engine.Move) Event {
	column := move.Column
	row := move.Row
	return Event{Type: EventPlay, Player: move.Player, Column: &column, Row: &row}
}

func winEvent(player engine.Player) Event {
	return Event{Type: EventWin, Player: player}
}

func errorEvent(message string) Event {
	return Event{Type: EventError, Message: message}
}
