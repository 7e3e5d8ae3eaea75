package generator

import "questaroo.app/lightson/internal/domain"

// RandomSource yields uniform values in [0, 1). *math/rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// GenerateBoard builds a size×size board by starting from all OFF and, for
// every cell in row-major order, toggling at that cell with probability p.
// Exactly size² values are drawn from src whatever their outcome.
//
// The result is reachable from all OFF by construction, and all ON is
// reachable from all OFF for any size, so the board is always solvable.
func GenerateBoard(size int, p float64, src RandomSource) domain.Board {
	b, _ := generate(size, p, src)
	return b
}

func generate(size int, p float64, src RandomSource) (domain.Board, int) {
	b := domain.NewBoard(size)
	toggles := 0
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			if src.Float64() < p {
				b.Toggle(domain.Coord{Row: r, Col: c})
				toggles++
			}
		}
	}
	return b, toggles
}
