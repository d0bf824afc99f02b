package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

var ErrInvalidLayout = errors.New("invalid layout")

// Layout is a named starting position. A zero in Grid marks an empty cell and
// an all-empty grid means a regular random start.
type Layout struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Grid        [][]int `json:"grid"`
	Score       int     `json:"score"`
}

// ValidateLayout checks the layout shape, tile values and score
func ValidateLayout(l *Layout) error {
	if l == nil {
		return fmt.Errorf("%w: layout is nil", ErrInvalidLayout)
	}
	if l.Name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidLayout)
	}
	if l.Score < 0 {
		return fmt.Errorf("%w: score cannot be negative: %d", ErrInvalidLayout, l.Score)
	}
	if len(l.Grid) != BoardSize {
		return fmt.Errorf("%w: grid has %d rows, want %d", ErrInvalidLayout, len(l.Grid), BoardSize)
	}
	for r, row := range l.Grid {
		if len(row) != BoardSize {
			return fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidLayout, r, len(row), BoardSize)
		}
		for c, v := range row {
			if v != 0 && !isTileValue(v) {
				return fmt.Errorf("%w: value %d at (%d,%d) is not a tile", ErrInvalidLayout, v, r, c)
			}
		}
	}
	return nil
}

// LoadLayout reads and validates a layout from a JSON file
func LoadLayout(filename string) (*Layout, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLayout, err)
	}
	if err := ValidateLayout(&l); err != nil {
		return nil, err
	}
	return &l, nil
}

// IsEmpty reports whether the layout places no tiles
func (l *Layout) IsEmpty() bool {
	for _, row := range l.Grid {
		for _, v := range row {
			if v != 0 {
				return false
			}
		}
	}
	return true
}

// Board builds the layout's board
func (l *Layout) Board() (*Board, error) {
	if err := ValidateLayout(l); err != nil {
		return nil, err
	}
	var grid [BoardSize][BoardSize]int
	for r := range grid {
		copy(grid[r][:], l.Grid[r])
	}
	return NewBoardFromGrid(grid)
}

// NewEngineFromLayout starts a game from a layout. An empty layout seeds the
// initial tiles the same way NewEngine does.
func NewEngineFromLayout(l *Layout, rng RandomSource) (*GameEngine, error) {
	if err := ValidateLayout(l); err != nil {
		return nil, err
	}
	if l.IsEmpty() {
		eng := NewEngine(rng)
		eng.score = l.Score
		return eng, nil
	}

	board, err := l.Board()
	if err != nil {
		return nil, err
	}
	return NewEngineFromBoard(board, l.Score, rng)
}

// EmptyLayout returns a layout with no tiles
func EmptyLayout(name, description string) *Layout {
	grid := make([][]int, BoardSize)
	for r := range grid {
		grid[r] = make([]int, BoardSize)
	}
	return &Layout{Name: name, Description: description, Grid: grid}
}
