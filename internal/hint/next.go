package hint

import (
	"context"
	"fmt"

	"questaroo.app/lightson/internal/domain"
	"questaroo.app/lightson/internal/ports"
)

// NextClick implements a Hinter that points at the first click of a
// minimal solution.
type NextClick struct {
	Solver ports.Solver
}

func NewNextClick(s ports.Solver) *NextClick { return &NextClick{Solver: s} }

// Hint returns the first click (row-major) of the solver's minimal solution.
// A solved board has nothing to suggest.
func (h *NextClick) Hint(ctx context.Context, b domain.Board) (domain.Hint, bool, error) {
	if b.Solved() {
		return domain.Hint{}, false, nil
	}
	sol, _, err := h.Solver.Solve(ctx, b)
	if err != nil {
		return domain.Hint{}, false, err
	}
	if len(sol.Clicks) == 0 {
		return domain.Hint{}, false, nil
	}
	next := sol.Clicks[0]
	return domain.Hint{
		Message:   fmt.Sprintf("Try row %d, column %d (%d clicks to go)", next.Row+1, next.Col+1, len(sol.Clicks)),
		Cell:      next,
		Remaining: len(sol.Clicks),
	}, true, nil
}
