// Package engine provides the core game logic for 2048.
//
// The engine package implements the game mechanics including:
//   - The 4x4 board of numbered tiles and its at-rest invariants
//   - Sliding and merging tiles in one of four directions
//   - Random tile spawning through an injectable RandomSource
//   - Score keeping and win/loss detection
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. Board holds the tiles keyed by position,
// GameState is the snapshot presenters render, and MoveOutcome reports
// what a single move did.
//
// Usage:
//
//	eng := engine.NewEngineWithSeed(42)
//
//	out, err := eng.ApplyMove(engine.Left)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if out.Moved {
//		fmt.Println("gained", out.ScoreGained)
//	}
//	state := eng.GetState()
//
// Game Rules:
//
// Every move slides all tiles as far as they go toward one edge. Two tiles
// of equal value that meet merge into one tile of double value, and the
// merged value is added to the score. A cell takes part in at most one merge
// per move. If anything moved, a 2 or a 4 appears on a random empty cell.
// The game is won once a 2048 tile appears and lost when the board is full
// with no two orthogonally adjacent tiles of equal value.
package engine
