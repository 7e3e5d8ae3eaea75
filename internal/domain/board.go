package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrOutOfBounds indicates a coordinate outside the board.
	ErrOutOfBounds = errors.New("coordinate out of bounds")
	// ErrNotSquare indicates a board whose rows do not match its height.
	ErrNotSquare = errors.New("board must be square")
	// ErrInvalidParams indicates generation parameters outside the supported range.
	ErrInvalidParams = errors.New("invalid generation parameters")
	// ErrUnknownDifficulty indicates an unrecognised difficulty label.
	ErrUnknownDifficulty = errors.New("unknown difficulty")
	// ErrBadCell indicates a board row with a character other than '#' or '.'.
	ErrBadCell = errors.New("unexpected cell character")
)

// Board is a square grid of lights; true means ON.
type Board [][]bool

// crossOffsets is the toggle pattern, target first.
var crossOffsets = [5]Coord{{0, 0}, {-1, 0}, {1, 0}, {0, -1}, {0, 1}}

// NewBoard returns an n×n board with every light OFF.
func NewBoard(n int) Board {
	if n < 0 {
		n = 0
	}
	b := make(Board, n)
	for r := range b {
		b[r] = make([]bool, n)
	}
	return b
}

// FilledBoard returns an n×n board with every light ON.
func FilledBoard(n int) Board {
	b := NewBoard(n)
	for r := range b {
		for c := range b[r] {
			b[r][c] = true
		}
	}
	return b
}

// ParseBoard reads rows written with '#' for ON and '.' for OFF.
func ParseBoard(rows ...string) (Board, error) {
	n := len(rows)
	b := NewBoard(n)
	for r, row := range rows {
		row = strings.TrimSpace(row)
		if len(row) != n {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrNotSquare, r, len(row), n)
		}
		for c, ch := range row {
			switch ch {
			case '#':
				b[r][c] = true
			case '.':
			default:
				return nil, fmt.Errorf("%w %q at row %d col %d", ErrBadCell, ch, r, c)
			}
		}
	}
	return b, nil
}

// String renders the board in the ParseBoard notation, one row per line.
func (b Board) String() string {
	var sb strings.Builder
	for r, row := range b {
		if r > 0 {
			sb.WriteByte('\n')
		}
		for _, on := range row {
			if on {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
	}
	return sb.String()
}

// Size is the board dimension N.
func (b Board) Size() int { return len(b) }

// Square reports whether every row has exactly Size cells.
func (b Board) Square() bool {
	for _, row := range b {
		if len(row) != len(b) {
			return false
		}
	}
	return true
}

func (b Board) Clone() Board {
	out := make(Board, len(b))
	for r := range b {
		out[r] = append([]bool(nil), b[r]...)
	}
	return out
}

func (b Board) Equal(o Board) bool {
	if len(b) != len(o) {
		return false
	}
	for r := range b {
		if len(b[r]) != len(o[r]) {
			return false
		}
		for c := range b[r] {
			if b[r][c] != o[r][c] {
				return false
			}
		}
	}
	return true
}

func (b Board) InBounds(c Coord) bool {
	return c.Row >= 0 && c.Row < len(b) && c.Col >= 0 && c.Col < len(b)
}

// Lit counts the cells that are ON.
func (b Board) Lit() int {
	n := 0
	for _, row := range b {
		for _, on := range row {
			if on {
				n++
			}
		}
	}
	return n
}

// Toggle flips the target cell and its in-bounds orthogonal neighbours in
// place and returns the flipped coordinates. Neighbours off the grid are
// skipped; there is no wraparound. An out-of-bounds target changes nothing.
func (b Board) Toggle(at Coord) []Coord {
	if !b.InBounds(at) {
		return nil
	}
	flipped := make([]Coord, 0, len(crossOffsets))
	for _, d := range crossOffsets {
		n := Coord{Row: at.Row + d.Row, Col: at.Col + d.Col}
		if !b.InBounds(n) {
			continue
		}
		b[n.Row][n.Col] = !b[n.Row][n.Col]
		flipped = append(flipped, n)
	}
	return flipped
}

// Solved reports whether every light is ON.
func (b Board) Solved() bool {
	if len(b) == 0 {
		return false
	}
	for _, row := range b {
		for _, on := range row {
			if !on {
				return false
			}
		}
	}
	return true
}
