package engine

// HasValue reports whether any tile on the board equals v
func (b *Board) HasValue(v int) bool {
	for _, t := range b.Tiles() {
		if t.Value == v {
			return true
		}
	}
	return false
}

// IsGameOver reports whether the board is full with no adjacent equal pair
func (b *Board) IsGameOver() bool {
	if !b.IsFull() {
		return false
	}
	return !b.hasAdjacentPair()
}

// StatusOf derives the game status from a board. A board that is both won
// and locked counts as won.
func StatusOf(b *Board) Status {
	switch {
	case b.HasValue(WinValue):
		return Won
	case b.IsGameOver():
		return Lost
	default:
		return Playing
	}
}

// statusMessage returns the banner text a presenter shows for a status
func statusMessage(s Status) string {
	switch s {
	case Won:
		return "You win! A 2048 tile is on the board."
	case Lost:
		return "Game over! No moves left."
	default:
		return "Use the arrow keys to slide the tiles."
	}
}
