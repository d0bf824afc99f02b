package engine

import (
	"fmt"
	"strings"
)

// Board is a sparse set of tiles indexed by position, at most one per cell
type Board struct {
	cells  [BoardSize][BoardSize]*Tile
	nextID int
}

// NewBoard creates an empty board
func NewBoard() *Board {
	return &Board{nextID: 1}
}

// NewBoardFromGrid builds a board from a value grid where 0 marks an empty cell.
// Tiles receive IDs in row-major order.
func NewBoardFromGrid(grid [BoardSize][BoardSize]int) (*Board, error) {
	b := NewBoard()
	for r := 0; r < BoardSize; r++ {
		for c := 0; c < BoardSize; c++ {
			if grid[r][c] == 0 {
				continue
			}
			if _, err := b.Place(Position{Row: r, Col: c}, grid[r][c]); err != nil {
				return nil, err
			}
		}
	}
	return b, nil
}

// Place puts a new tile with the given value on an empty cell
func (b *Board) Place(pos Position, value int) (Tile, error) {
	if !pos.InBounds() {
		return Tile{}, fmt.Errorf("%w: %s", ErrOutOfBounds, pos)
	}
	if !isTileValue(value) {
		return Tile{}, fmt.Errorf("%w: %d", ErrInvalidTileValue, value)
	}
	if b.cells[pos.Row][pos.Col] != nil {
		return Tile{}, fmt.Errorf("%w: %s", ErrCellOccupied, pos)
	}

	t := &Tile{ID: b.nextID, Position: pos, Value: value}
	b.nextID++
	b.cells[pos.Row][pos.Col] = t
	return *t, nil
}

// At returns the tile at pos, if any
func (b *Board) At(pos Position) (Tile, bool) {
	if !pos.InBounds() {
		return Tile{}, false
	}
	t := b.cells[pos.Row][pos.Col]
	if t == nil {
		return Tile{}, false
	}
	return *t, true
}

// Value returns the tile value at row,col or 0 when the cell is empty
func (b *Board) Value(row, col int) int {
	if t, ok := b.At(Position{Row: row, Col: col}); ok {
		return t.Value
	}
	return 0
}

// EmptyCells returns the empty positions in row-major order
func (b *Board) EmptyCells() []Position {
	var empty []Position
	for r := 0; r < BoardSize; r++ {
		for c := 0; c < BoardSize; c++ {
			if b.cells[r][c] == nil {
				empty = append(empty, Position{Row: r, Col: c})
			}
		}
	}
	return empty
}

// IsFull reports whether every cell holds a tile
func (b *Board) IsFull() bool {
	return b.Len() == BoardSize*BoardSize
}

// Len returns the number of tiles on the board
func (b *Board) Len() int {
	n := 0
	for r := 0; r < BoardSize; r++ {
		for c := 0; c < BoardSize; c++ {
			if b.cells[r][c] != nil {
				n++
			}
		}
	}
	return n
}

// Tiles returns copies of all tiles in row-major order
func (b *Board) Tiles() []Tile {
	tiles := make([]Tile, 0, BoardSize*BoardSize)
	for r := 0; r < BoardSize; r++ {
		for c := 0; c < BoardSize; c++ {
			if t := b.cells[r][c]; t != nil {
				tiles = append(tiles, *t)
			}
		}
	}
	return tiles
}

// Grid returns the board as a value grid, 0 for empty cells
func (b *Board) Grid() [BoardSize][BoardSize]int {
	var grid [BoardSize][BoardSize]int
	for r := 0; r < BoardSize; r++ {
		for c := 0; c < BoardSize; c++ {
			if t := b.cells[r][c]; t != nil {
				grid[r][c] = t.Value
			}
		}
	}
	return grid
}

// MaxTile returns the largest tile value, 0 on an empty board
func (b *Board) MaxTile() int {
	highest := 0
	for _, t := range b.Tiles() {
		if t.Value > highest {
			highest = t.Value
		}
	}
	return highest
}

// Clone returns a deep copy of the board, tile IDs included
func (b *Board) Clone() *Board {
	clone := &Board{nextID: b.nextID}
	for r := 0; r < BoardSize; r++ {
		for c := 0; c < BoardSize; c++ {
			if t := b.cells[r][c]; t != nil {
				cp := *t
				clone.cells[r][c] = &cp
			}
		}
	}
	return clone
}

// Equal compares tiles cell by cell, identities included
func (b *Board) Equal(other *Board) bool {
	if other == nil {
		return false
	}
	for r := 0; r < BoardSize; r++ {
		for c := 0; c < BoardSize; c++ {
			x, y := b.cells[r][c], other.cells[r][c]
			if (x == nil) != (y == nil) {
				return false
			}
			if x != nil && *x != *y {
				return false
			}
		}
	}
	return true
}

// Validate checks the at-rest invariants: every tile sits in the cell its
// position names, values are powers of two and IDs are unique.
func (b *Board) Validate() error {
	seen := make(map[int]Position)
	for r := 0; r < BoardSize; r++ {
		for c := 0; c < BoardSize; c++ {
			t := b.cells[r][c]
			if t == nil {
				continue
			}
			here := Position{Row: r, Col: c}
			if t.Position != here {
				return fmt.Errorf("%w: tile %d records %s but sits at %s", ErrCorruptBoard, t.ID, t.Position, here)
			}
			if !isTileValue(t.Value) {
				return fmt.Errorf("%w: tile %d has value %d", ErrCorruptBoard, t.ID, t.Value)
			}
			if prev, dup := seen[t.ID]; dup {
				return fmt.Errorf("%w: tile %d at both %s and %s", ErrCorruptBoard, t.ID, prev, here)
			}
			seen[t.ID] = here
		}
	}
	return nil
}

// String renders the board as ASCII art
func (b *Board) String() string {
	line := "+------+------+------+------+"
	var sb strings.Builder
	sb.WriteString(line + "\n")
	for r := 0; r < BoardSize; r++ {
		sb.WriteString("|")
		for c := 0; c < BoardSize; c++ {
			if v := b.Value(r, c); v == 0 {
				sb.WriteString("      |")
			} else {
				fmt.Fprintf(&sb, "%5d |", v)
			}
		}
		sb.WriteString("\n" + line + "\n")
	}
	return sb.String()
}

func isTileValue(v int) bool {
	return v >= MinTileValue && v&(v-1) == 0
}
