package engine

// Player identifies one of the two sides of a game. The values are the
// strings that appear in the "player" field of play and win events.
type Player string

const (
	// PlayerRed is the side assigned to the connection that created the
	// session. Red always moves first.
	PlayerRed Player = "red"

	// PlayerYellow is the side assigned to the connection that joined the
	// session as the second player.
	PlayerYellow Player = "yellow"
)

// Board dimensions. Columns are indexed 0-6 left to right, rows 0-5 bottom
// to top.
const (
	Columns = 7
	Rows    = 6
)

// winLength is the number of aligned pieces that decides the game.
const winLength = 4

// Move records one accepted move together with the row the piece landed in.
type Move struct {
	Player Player `json:"player"`
	Column int    `json:"column"`
	Row    int    `json:"row"`
}
