package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Direction is one of the four slide directions
type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

// Status is the derived state of a game
type Status string

const (
	Playing Status = "playing"
	Won     Status = "won"
	Lost    Status = "lost"
)

const (
	// Board geometry and tile rules
	BoardSize    = 4
	WinValue     = 2048
	InitialTiles = 2
	MinTileValue = 2

	// Limits
	MaxBulkMoves = 50
)

var (
	ErrInvalidDirection = errors.New("invalid direction")
	ErrOutOfBounds      = errors.New("position out of bounds")
	ErrCellOccupied     = errors.New("cell already occupied")
	ErrInvalidTileValue = errors.New("invalid tile value")
	ErrCorruptBoard     = errors.New("corrupt board")
)

// SpawnValues are the values a spawned tile may take, each equally likely
var SpawnValues = []int{2, 4}

// Directions lists every valid direction in a stable order
var Directions = []Direction{Up, Down, Left, Right}

// ParseDirection accepts "up", "Left", "ArrowDown" and similar spellings
func ParseDirection(s string) (Direction, error) {
	d := strings.ToLower(strings.TrimSpace(s))
	d = strings.TrimPrefix(d, "arrow")
	switch Direction(d) {
	case Up, Down, Left, Right:
		return Direction(d), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// Valid reports whether d is one of the four directions
func (d Direction) Valid() bool {
	switch d {
	case Up, Down, Left, Right:
		return true
	}
	return false
}

// delta returns the row and column step for one cell of movement
func (d Direction) delta() (int, int) {
	switch d {
	case Up:
		return -1, 0
	case Down:
		return 1, 0
	case Left:
		return 0, -1
	case Right:
		return 0, 1
	}
	return 0, 0
}

// Position represents row,col coordinates on the board
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// InBounds reports whether the position lies on the board
func (p Position) InBounds() bool {
	return p.Row >= 0 && p.Row < BoardSize && p.Col >= 0 && p.Col < BoardSize
}

func (p Position) step(d Direction) Position {
	dr, dc := d.delta()
	return Position{Row: p.Row + dr, Col: p.Col + dc}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Tile is a numbered tile at rest on the board.
// ID survives moves but not merges: a merged tile disappears and the
// tile it merged into keeps its own ID.
type Tile struct {
	ID       int      `json:"id"`
	Position Position `json:"position"`
	Value    int      `json:"value"`
}

// Merge records one merge performed during a move
type Merge struct {
	Position Position `json:"position"`
	Value    int      `json:"value"`
	TileID   int      `json:"tile_id"`
	Absorbed int      `json:"absorbed_id"`
}

// MoveOutcome describes what a single ApplyMove did
type MoveOutcome struct {
	Direction   Direction `json:"direction"`
	Moved       bool      `json:"moved"`
	ScoreGained int       `json:"score_gained"`
	Merges      []Merge   `json:"merges,omitempty"`
	Spawned     *Tile     `json:"spawned,omitempty"`
}

// GameState is the snapshot a presenter renders
type GameState struct {
	Grid       [BoardSize][BoardSize]int `json:"grid"`
	Tiles      []Tile                    `json:"tiles"`
	Score      int                       `json:"score"`
	Status     Status                    `json:"status"`
	Won        bool                      `json:"won"`
	GameOver   bool                      `json:"game_over"`
	MaxTile    int                       `json:"max_tile"`
	EmptyCells int                       `json:"empty_cells"`
	Message    string                    `json:"message"`
	TotalMoves int                       `json:"total_moves"`

	// CurrentMovesCount counts moves since the last restart while
	// TotalMoves stays cumulative.
	CurrentMovesCount int `json:"current_moves_count"`
}

// MoveHistoryEntry represents a single applied direction in the game history
type MoveHistoryEntry struct {
	Action      Direction `json:"action"`
	Moved       bool      `json:"moved"`
	ScoreGained int       `json:"score_gained"`
	Score       int       `json:"score"`
	Timestamp   int64     `json:"timestamp"`
	MoveNumber  int       `json:"move_number"`
}
