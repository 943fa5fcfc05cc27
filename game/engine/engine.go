package engine

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrInvalidMove is the category for every rejected move: illegal column,
// full column, playing out of turn, or playing after the game is decided.
// Specific failures wrap it, so callers classify with errors.Is.
var ErrInvalidMove = errors.New("invalid move")

// Game holds the mutable state of one Connect Four game. The zero value is
// not usable; create instances with New.
type Game struct {
	mu     sync.Mutex
	cells  [Columns][Rows]Player
	top    [Columns]int // next free row per column
	moves  []Move
	winner Player
}

// New returns an empty game with red to move.
func New() *Game {
	return &Game{}
}

// Play attempts a move by player in the given column and returns the row
// the piece landed in. It fails with an error wrapping ErrInvalidMove when
// the game is already decided, when it is not player's turn, when the
// column is out of range, or when the column is full.
func (g *Game) Play(player Player, column int) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.winner != "" {
		return 0, fmt.Errorf("%w: the game is already over", ErrInvalidMove)
	}
	if player != g.turn() {
		return 0, fmt.Errorf("%w: it isn't your turn", ErrInvalidMove)
	}
	if column < 0 || column >= Columns {
		return 0, fmt.Errorf("%w: column %d is out of range", ErrInvalidMove, column)
	}
	row := g.top[column]
	if row >= Rows {
		return 0, fmt.Errorf("%w: column %d is full", ErrInvalidMove, column)
	}

	g.cells[column][row] = player
	g.top[column]++
	g.moves = append(g.moves, Move{Player: player, Column: column, Row: row})

	if g.winsFrom(column, row, player) {
		g.winner = player
	}

	return row, nil
}

// LastMoveWon reports whether the most recent accepted move decided the
// game.
func (g *Game) LastMoveWon() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.winner != ""
}

// Winner returns the winning player, or the empty string while the game is
// undecided.
func (g *Game) Winner() Player {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.winner
}

// Moves returns a copy of the accepted moves in play order. It is used to
// replay the game to a connection that attaches after moves were made.
func (g *Game) Moves() []Move {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]Move, len(g.moves))
	copy(out, g.moves)
	return out
}

// turn returns the player whose move it is. Caller must hold g.mu.
func (g *Game) turn() Player {
	if len(g.moves)%2 == 0 {
		return PlayerRed
	}
	return PlayerYellow
}

// winsFrom reports whether the piece just placed at (column, row) completes
// a line of winLength for player. Caller must hold g.mu.
func (g *Game) winsFrom(column, row int, player Player) bool {
	directions := [4][2]int{
		{1, 0},  // horizontal
		{0, 1},  // vertical
		{1, 1},  // diagonal rising
		{1, -1}, // diagonal falling
	}

	for _, d := range directions {
		count := 1
		count += g.countRun(column, row, d[0], d[1], player)
		count += g.countRun(column, row, -d[0], -d[1], player)
		if count >= winLength {
			return true
		}
	}

	return false
}

// countRun counts consecutive pieces of player starting one step from
// (column, row) in direction (dc, dr). Caller must hold g.mu.
func (g *Game) countRun(column, row, dc, dr int, player Player) int {
	count := 0
	for {
		column += dc
		row += dr
		if column < 0 || column >= Columns || row < 0 || row >= Rows {
			return count
		}
		if g.cells[column][row] != player {
			return count
		}
		count++
	}
}

// Render returns a textual view of the board, top row first. Empty cells
// are ".", red pieces "R", yellow pieces "Y".
func (g *Game) Render() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	var b strings.Builder
	for row := Rows - 1; row >= 0; row-- {
		for column := 0; column < Columns; column++ {
			switch g.cells[column][row] {
			case PlayerRed:
				b.WriteByte('R')
			case PlayerYellow:
				b.WriteByte('Y')
			default:
				b.WriteByte('.')
			}
			if column < Columns-1 {
				b.WriteByte(' ')
			}
		}
		b.WriteByte('\n')
	}

	return b.String()
}
