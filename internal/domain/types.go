package domain

import (
	"fmt"
	"time"
)

const (
	MinBoardSize = 1
	MaxBoardSize = 12
)

// DefaultParams is the reference 5×5 board with a one-in-four toggle chance.
var DefaultParams = Params{Size: 5, Probability: 0.25}

// Coord identifies a cell on the board.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (c Coord) String() string { return fmt.Sprintf("(%d,%d)", c.Row, c.Col) }

// Params tunes board generation.
type Params struct {
	Size        int     `json:"size" validate:"min=1,max=12"`
	Probability float64 `json:"probability" validate:"gte=0,lte=1"`
}

// Valid reports whether p lies within the supported ranges.
func (p Params) Valid() bool {
	return p.Size >= MinBoardSize && p.Size <= MaxBoardSize && p.Probability >= 0 && p.Probability <= 1
}

// Solution is a set of clicks that turns every light ON, in row-major order.
type Solution struct {
	Clicks []Coord `json:"clicks"`
}

// Hint suggests the next click for the UI.
type Hint struct {
	Message   string `json:"message,omitempty"`
	Cell      Coord  `json:"cell"`
	Remaining int    `json:"remaining"`
}

// Puzzle is a generated or saved board with metadata.
type Puzzle struct {
	ID         string     `json:"id,omitempty"`
	Seed       int64      `json:"seed,omitempty"`
	Difficulty Difficulty `json:"difficulty"`
	Params     Params     `json:"params"`
	Board      Board      `json:"board"`
	CreatedAt  int64      `json:"createdAt,omitempty"`
	// Optional user metadata
	Name  string `json:"name,omitempty"`
	Notes string `json:"notes,omitempty"`
}

// PuzzleMeta is a lightweight listing entry.
type PuzzleMeta struct {
	ID         string     `json:"id"`
	Name       string     `json:"name,omitempty"`
	Difficulty Difficulty `json:"difficulty"`
	Size       int        `json:"size"`
	CreatedAt  int64      `json:"createdAt"`
}

// Session is the complete, serializable state of one game being played.
type Session struct {
	ID         string     `json:"id"`
	PuzzleID   string     `json:"puzzleId,omitempty"`
	Seed       int64      `json:"seed"`
	Difficulty Difficulty `json:"difficulty"`
	Params     Params     `json:"params"`
	Board      Board      `json:"board"`
	Moves      int        `json:"moves"`
	Status     Status     `json:"status"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	SolvedAt   *time.Time `json:"solvedAt,omitempty"`
}

// Clone returns a copy that shares no board memory with s.
func (s Session) Clone() Session {
	out := s
	out.Board = s.Board.Clone()
	if s.SolvedAt != nil {
		t := *s.SolvedAt
		out.SolvedAt = &t
	}
	return out
}
