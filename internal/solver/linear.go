package solver

import (
	"context"
	"math/bits"
	"time"

	"questaroo.app/lightson/internal/domain"
	"questaroo.app/lightson/internal/ports"
)

// LinearSolver treats the board as a linear system over GF(2).
// Variables: one per cell (pressed or not), row-major.
// Equations: for each cell, the presses in its closed neighbourhood must sum
// to 1 exactly when the light is currently OFF.
// The system is reduced with Gaussian elimination; when the toggle matrix is
// singular the null space is enumerated to find the fewest clicks.
type LinearSolver struct {
	// MaxNullity caps null-space enumeration at 2^MaxNullity candidates.
	MaxNullity int
}

func NewLinearSolver() *LinearSolver { return &LinearSolver{MaxNullity: 16} }

// bitrow is a fixed-width GF(2) vector.
type bitrow []uint64

func newBitrow(width int) bitrow { return make(bitrow, (width+63)/64) }

func (r bitrow) get(i int) bool { return r[i/64]&(1<<(uint(i)%64)) != 0 }
func (r bitrow) set(i int) { r[i/64] |= 1 << (uint(i) % 64) }

func (r bitrow) xor(o bitrow) {
	for i := range r {
		r[i] ^= o[i]
	}
}

func (r bitrow) ones() int {
	n := 0
	for _, w := range r {
		n += bits.OnesCount64(w)
	}
	return n
}

func (s *LinearSolver) Solve(ctx context.Context, b domain.Board) (domain.Solution, ports.Stats, error) {
	start := time.Now()
	if err := checkBoard(b); err != nil {
		return domain.Solution{}, ports.Stats{}, err
	}
	n := b.Size()
	vars := n * n
	nodes := 0

	// augmented matrix: columns 0..vars-1 coefficients, column vars the target
	rows := make([]bitrow, vars)
	for i := 0; i < vars; i++ {
		row := newBitrow(vars + 1)
		for _, c := range domain.NewBoard(n).Toggle(domain.Coord{Row: i / n, Col: i % n}) {
			row.set(c.Row*n + c.Col)
		}
		if !b[i/n][i%n] {
			row.set(vars)
		}
		rows[i] = row
	}

	pivots := make([]int, 0, vars)
	isPivot := make([]bool, vars)
	rank := 0
	for col := 0; col < vars && rank < vars; col++ {
		if err := ctx.Err(); err != nil {
			return domain.Solution{}, ports.Stats{Nodes: nodes, Duration: time.Since(start)}, err
		}
		sel := -1
		for r := rank; r < vars; r++ {
			if rows[r].get(col) {
				sel = r
				break
			}
		}
		if sel < 0 {
			continue // free variable
		}
		rows[rank], rows[sel] = rows[sel], rows[rank]
		for r := 0; r < vars; r++ {
			if r != rank && rows[r].get(col) {
				rows[r].xor(rows[rank])
				nodes++
			}
		}
		pivots = append(pivots, col)
		isPivot[col] = true
		rank++
	}

	// zero rows with a set target bit are contradictions
	for r := rank; r < vars; r++ {
		if rows[r].get(vars) {
			return domain.Solution{}, ports.Stats{Nodes: nodes, Duration: time.Since(start)}, ErrUnsolvable
		}
	}

	x := newBitrow(vars)
	for k, col := range pivots {
		if rows[k].get(vars) {
			x.set(col)
		}
	}

	// null-space basis: one vector per free column
	var basis []bitrow
	for f := 0; f < vars; f++ {
		if isPivot[f] {
			continue
		}
		v := newBitrow(vars)
		v.set(f)
		for k, col := range pivots {
			if rows[k].get(f) {
				v.set(col)
			}
		}
		basis = append(basis, v)
	}

	best := append(bitrow(nil), x...)
	if len(basis) > 0 && len(basis) <= s.MaxNullity {
		bestOnes := best.ones()
		cur := append(bitrow(nil), x...)
		// Gray-code walk: each step flips one basis vector in or out
		for i := uint64(1); i < 1<<uint(len(basis)); i++ {
			if i&0xfff == 0 {
				if err := ctx.Err(); err != nil {
					return domain.Solution{}, ports.Stats{Nodes: nodes, Duration: time.Since(start)}, err
				}
			}
			cur.xor(basis[bits.TrailingZeros64(i)])
			nodes++
			if o := cur.ones(); o < bestOnes {
				bestOnes = o
				copy(best, cur)
			}
		}
	}

	sol := domain.Solution{Clicks: clicksFrom(n, best.get)}
	return sol, ports.Stats{Nodes: nodes, Duration: time.Since(start)}, nil
}
