package solver

import (
	"errors"
	"fmt"

	"questaroo.app/lightson/internal/domain"
)

// ErrUnsolvable reports a board from which all-ON cannot be reached.
var ErrUnsolvable = errors.New("board cannot be solved")

func checkBoard(b domain.Board) error {
	if b.Size() == 0 || !b.Square() {
		return fmt.Errorf("%w: %d rows", domain.ErrNotSquare, b.Size())
	}
	return nil
}

// clicksFrom converts a row-major press vector into coordinates.
func clicksFrom(n int, pressed func(i int) bool) []domain.Coord {
	out := make([]domain.Coord, 0, n)
	for i := 0; i < n*n; i++ {
		if pressed(i) {
			out = append(out, domain.Coord{Row: i / n, Col: i % n})
		}
	}
	return out
}
