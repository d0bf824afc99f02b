package engine

import "math/rand"

// RandomSource is the single source of non-determinism in the engine.
// *rand.Rand satisfies it.
type RandomSource interface {
	Intn(n int) int
}

// NewSeededSource returns a deterministic RandomSource
func NewSeededSource(seed int64) RandomSource {
	return rand.New(rand.NewSource(seed))
}

// spawn places a 2 or 4 on a uniformly chosen empty cell.
// It returns false when the board is full.
func (b *Board) spawn(rng RandomSource) (Tile, bool) {
	empty := b.EmptyCells()
	if len(empty) == 0 {
		return Tile{}, false
	}

	pos := empty[rng.Intn(len(empty))]
	value := SpawnValues[rng.Intn(len(SpawnValues))]
	t, err := b.Place(pos, value)
	if err != nil {
		// pos came from EmptyCells and value from SpawnValues
		panic(err)
	}
	return t, true
}
