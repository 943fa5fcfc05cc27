// Package engine provides the core Connect Four game logic.
//
// The engine package implements the game mechanics including:
//   - Drop-row computation for moves played into a column
//   - Turn alternation between the two players, red first
//   - Win detection in all four directions
//   - A move log for replaying a game to late-attaching connections
//
// Core Types:
//
// Game is the mutable game state for one session. Player identifies one of
// the two fixed sides (PlayerRed, PlayerYellow). Move records one accepted
// move with its computed row.
//
// Usage:
//
//	game := engine.New()
//
//	row, err := game.Play(engine.PlayerRed, 3)
//	if err != nil {
//		// illegal column, full column, out of turn, or game already over
//	}
//
//	if game.LastMoveWon() {
//		winner := game.Winner()
//		_ = winner
//	}
//
// Concurrency:
//
// A Game is shared by reference between the two player connections of a
// session and is safe for concurrent use. All exported methods take the
// game's internal lock.
package engine
