package solver

import (
	"context"
	"time"

	"questaroo.app/lightson/internal/domain"
	"questaroo.app/lightson/internal/ports"
)

// ChaseSolver is a brute-force solver: it tries every press pattern for the
// first row, then "chases" the lights down, pressing under every OFF cell so
// the row above turns ON. A pattern works when the last row ends all ON.
// Cost is 2^N chases of N² presses, fine for the supported sizes.
type ChaseSolver struct{}

func NewChaseSolver() *ChaseSolver { return &ChaseSolver{} }

func (s *ChaseSolver) Solve(ctx context.Context, b domain.Board) (domain.Solution, ports.Stats, error) {
	start := time.Now()
	if err := checkBoard(b); err != nil {
		return domain.Solution{}, ports.Stats{}, err
	}
	n := b.Size()
	nodes := 0
	var best []domain.Coord
	found := false

	for mask := 0; mask < 1<<uint(n); mask++ {
		if err := ctx.Err(); err != nil {
			return domain.Solution{}, ports.Stats{Nodes: nodes, Duration: time.Since(start)}, err
		}
		work := b.Clone()
		presses := make([]domain.Coord, 0, n*n)
		press := func(at domain.Coord) {
			work.Toggle(at)
			presses = append(presses, at)
			nodes++
		}
		for c := 0; c < n; c++ {
			if mask&(1<<uint(c)) != 0 {
				press(domain.Coord{Row: 0, Col: c})
			}
		}
		for r := 1; r < n; r++ {
			for c := 0; c < n; c++ {
				if !work[r-1][c] {
					press(domain.Coord{Row: r, Col: c})
				}
			}
		}
		if !work.Solved() {
			continue
		}
		if !found || len(presses) < len(best) {
			best = presses
			found = true
		}
	}

	if !found {
		return domain.Solution{}, ports.Stats{Nodes: nodes, Duration: time.Since(start)}, ErrUnsolvable
	}
	return domain.Solution{Clicks: best}, ports.Stats{Nodes: nodes, Duration: time.Since(start)}, nil
}
