package engine

import (
	"fmt"
	"sync"
	"time"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	Restart() *GameState
	Status() Status
	CheckWin() bool
	CheckGameOver() bool
	GetScore() int
	Board() *Board

	// Movement operations
	ApplyMove(dir Direction) (MoveOutcome, error)
	Move(direction string) (MoveOutcome, error)
	CanMove(dir Direction) bool
	GetPossibleMoves() []Direction
	SpawnRandomTile() (Tile, bool)

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry
}

// GameEngine implements the Engine interface. All mutation happens under mu
// so at most one move is in flight at a time.
type GameEngine struct {
	mu    sync.Mutex
	board *Board
	score int
	rng   RandomSource

	history      []MoveHistoryEntry
	currentMoves int
}

// NewEngine creates an engine with a freshly seeded board. A nil rng falls
// back to a time-seeded source.
func NewEngine(rng RandomSource) *GameEngine {
	if rng == nil {
		rng = NewSeededSource(time.Now().UnixNano())
	}
	e := &GameEngine{rng: rng}
	e.reset()
	return e
}

// NewEngineWithSeed creates an engine whose spawns are fully determined by seed
func NewEngineWithSeed(seed int64) *GameEngine {
	return NewEngine(NewSeededSource(seed))
}

// NewEngineFromBoard creates an engine on an existing board, for scenarios and tests
func NewEngineFromBoard(board *Board, score int, rng RandomSource) (*GameEngine, error) {
	if board == nil {
		return nil, fmt.Errorf("board cannot be nil")
	}
	if score < 0 {
		return nil, fmt.Errorf("score cannot be negative: %d", score)
	}
	if err := board.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = NewSeededSource(time.Now().UnixNano())
	}
	return &GameEngine{
		board: board.Clone(),
		score: score,
		rng:   rng,
	}, nil
}

// reset clears the board and score and seeds the initial tiles
func (e *GameEngine) reset() {
	e.board = NewBoard()
	e.score = 0
	e.currentMoves = 0
	for i := 0; i < InitialTiles; i++ {
		e.board.spawn(e.rng)
	}
}

// Restart clears the board, resets the score and seeds two new tiles.
// Cumulative history survives.
func (e *GameEngine) Restart() *GameState {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.reset()
	return e.snapshot()
}

// ApplyMove slides every tile toward dir. When anything moved or merged one
// random tile is spawned; otherwise the board is left untouched.
func (e *GameEngine) ApplyMove(dir Direction) (MoveOutcome, error) {
	if !dir.Valid() {
		return MoveOutcome{}, fmt.Errorf("%w: %q", ErrInvalidDirection, string(dir))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	out := e.board.slide(dir)
	if out.Moved {
		e.score += out.ScoreGained
		if t, ok := e.board.spawn(e.rng); ok {
			out.Spawned = &t
		}
		if err := e.board.Validate(); err != nil {
			panic(err)
		}
	}

	e.addMoveToHistory(out)
	return out, nil
}

// Move parses direction and applies it
func (e *GameEngine) Move(direction string) (MoveOutcome, error) {
	dir, err := ParseDirection(direction)
	if err != nil {
		return MoveOutcome{}, err
	}
	return e.ApplyMove(dir)
}

// BulkMove applies moves in order and stops early once the game is lost or a
// direction is invalid
func (e *GameEngine) BulkMove(moves []Direction) ([]MoveOutcome, error) {
	results := make([]MoveOutcome, 0, len(moves))

	for _, dir := range moves {
		if e.CheckGameOver() {
			break
		}
		out, err := e.ApplyMove(dir)
		if err != nil {
			return results, err
		}
		results = append(results, out)
	}

	return results, nil
}

// SpawnRandomTile places a 2 or 4 on a random empty cell; false on a full board
func (e *GameEngine) SpawnRandomTile() (Tile, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.board.spawn(e.rng)
}

// CheckWin reports whether a 2048 tile is on the board
func (e *GameEngine) CheckWin() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.board.HasValue(WinValue)
}

// CheckGameOver reports whether the board is full and locked
func (e *GameEngine) CheckGameOver() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.board.IsGameOver()
}

// Status returns the derived game status
func (e *GameEngine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return StatusOf(e.board)
}

// GetScore returns the current score
func (e *GameEngine) GetScore() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.score
}

// Board returns a copy of the current board
func (e *GameEngine) Board() *Board {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.board.Clone()
}

// GetState returns a snapshot of the current game
func (e *GameEngine) GetState() *GameState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot()
}

func (e *GameEngine) snapshot() *GameState {
	status := StatusOf(e.board)
	return &GameState{
		Grid:              e.board.Grid(),
		Tiles:             e.board.Tiles(),
		Score:             e.score,
		Status:            status,
		Won:               status == Won,
		GameOver:          e.board.IsGameOver(),
		MaxTile:           e.board.MaxTile(),
		EmptyCells:        len(e.board.EmptyCells()),
		Message:           statusMessage(status),
		TotalMoves:        len(e.history),
		CurrentMovesCount: e.currentMoves,
	}
}

// CanMove checks whether sliding toward dir would change the board
func (e *GameEngine) CanMove(dir Direction) bool {
	if !dir.Valid() {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.board.canSlide(dir)
}

// GetPossibleMoves returns every direction that would change the board
func (e *GameEngine) GetPossibleMoves() []Direction {
	var possible []Direction
	for _, dir := range Directions {
		if e.CanMove(dir) {
			possible = append(possible, dir)
		}
	}
	return possible
}

// GetMoveHistory returns a copy of the complete move history
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	history := make([]MoveHistoryEntry, len(e.history))
	copy(history, e.history)
	return history
}

// GetLastMove returns the last move made, or nil if no moves
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.history) == 0 {
		return nil
	}
	last := e.history[len(e.history)-1]
	return &last
}

func (e *GameEngine) addMoveToHistory(out MoveOutcome) {
	e.history = append(e.history, MoveHistoryEntry{
		Action:      out.Direction,
		Moved:       out.Moved,
		ScoreGained: out.ScoreGained,
		Score:       e.score,
		Timestamp:   time.Now().Unix(),
		MoveNumber:  len(e.history) + 1,
	})
	e.currentMoves++
}
