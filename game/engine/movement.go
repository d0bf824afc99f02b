package engine

// traversal returns the row and column visiting order for a move so that
// tiles nearest the target edge are settled first.
func traversal(dir Direction) (rows, cols []int) {
	rows = make([]int, BoardSize)
	cols = make([]int, BoardSize)
	for i := 0; i < BoardSize; i++ {
		rows[i], cols[i] = i, i
	}
	switch dir {
	case Down:
		reverse(rows)
	case Right:
		reverse(cols)
	}
	return rows, cols
}

func reverse(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// slide moves every tile on the board toward dir, merging equal neighbours.
// A cell accepts at most one merge per slide. It does not spawn.
func (b *Board) slide(dir Direction) MoveOutcome {
	out := MoveOutcome{Direction: dir}
	var merged [BoardSize][BoardSize]bool

	rows, cols := traversal(dir)
	for _, r := range rows {
		for _, c := range cols {
			tile := b.cells[r][c]
			if tile == nil {
				continue
			}

			origin := Position{Row: r, Col: c}
			dest := origin
			for {
				next := dest.step(dir)
				if !next.InBounds() {
					break
				}
				occupant := b.cells[next.Row][next.Col]
				if occupant == nil {
					dest = next
					continue
				}
				if occupant.Value == tile.Value && !merged[next.Row][next.Col] {
					dest = next
					merged[next.Row][next.Col] = true
				}
				break
			}

			if dest == origin {
				continue
			}
			out.Moved = true
			b.cells[r][c] = nil

			if target := b.cells[dest.Row][dest.Col]; target != nil {
				target.Value *= 2
				out.ScoreGained += target.Value
				out.Merges = append(out.Merges, Merge{
					Position: dest,
					Value:    target.Value,
					TileID:   target.ID,
					Absorbed: tile.ID,
				})
				continue
			}

			tile.Position = dest
			b.cells[dest.Row][dest.Col] = tile
		}
	}

	return out
}

// canSlide reports whether a slide toward dir would change the board
func (b *Board) canSlide(dir Direction) bool {
	return b.Clone().slide(dir).Moved
}

// CanSlide is canSlide for callers holding a detached board, such as a
// presenter working from a GameState grid
func (b *Board) CanSlide(dir Direction) bool {
	return dir.Valid() && b.canSlide(dir)
}

// hasAdjacentPair reports whether two orthogonal neighbours hold equal values.
// Empty cells never pair with anything.
func (b *Board) hasAdjacentPair() bool {
	for r := 0; r < BoardSize; r++ {
		for c := 0; c < BoardSize; c++ {
			v := b.Value(r, c)
			if v == 0 {
				continue
			}
			if c+1 < BoardSize && b.Value(r, c+1) == v {
				return true
			}
			if r+1 < BoardSize && b.Value(r+1, c) == v {
				return true
			}
		}
	}
	return false
}
