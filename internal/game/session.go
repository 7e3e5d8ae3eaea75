// Package game implements the Active/Solved state machine of a play session.
//
// Functions take a domain.Session value and return the next one; the caller
// owns storage and serialization. Returned sessions never share board memory
// with their inputs.
package game

import (
	"fmt"
	"time"

	"questaroo.app/lightson/internal/domain"
)

// MoveResult describes the outcome of one click.
type MoveResult struct {
	// Accepted is false when the session was already solved.
	Accepted bool           `json:"accepted"`
	Solved   bool           `json:"solved"`
	Flipped  []domain.Coord `json:"flipped,omitempty"`
	Moves    int            `json:"moves"`
}

// New starts an Active session on a copy of the puzzle's board.
func New(id string, p *domain.Puzzle, now time.Time) domain.Session {
	s := domain.Session{
		ID:        id,
		CreatedAt: now,
	}
	reset(&s, p, now)
	return s
}

// Move applies one click. Out-of-range targets are rejected with
// domain.ErrOutOfBounds. Clicks on a solved session are ignored: the
// session comes back unchanged and the result is not Accepted.
func Move(s domain.Session, at domain.Coord, now time.Time) (domain.Session, MoveResult, error) {
	if !s.Board.InBounds(at) {
		return s, MoveResult{Moves: s.Moves, Solved: s.Status == domain.StatusSolved},
			fmt.Errorf("%w: %v on %dx%d board", domain.ErrOutOfBounds, at, s.Board.Size(), s.Board.Size())
	}
	if s.Status == domain.StatusSolved {
		return s, MoveResult{Accepted: false, Solved: true, Moves: s.Moves}, nil
	}

	next := s.Clone()
	flipped := next.Board.Toggle(at)
	next.Moves++
	next.UpdatedAt = now
	if next.Board.Solved() {
		next.Status = domain.StatusSolved
		solvedAt := now
		next.SolvedAt = &solvedAt
	}
	return next, MoveResult{
		Accepted: true,
		Solved:   next.Status == domain.StatusSolved,
		Flipped:  flipped,
		Moves:    next.Moves,
	}, nil
}

// Restart replaces the board with a freshly generated puzzle, zeroes the
// move counter and returns the session to Active. It is allowed from
// either state.
func Restart(s domain.Session, p *domain.Puzzle, now time.Time) domain.Session {
	next := s.Clone()
	reset(&next, p, now)
	return next
}

func reset(s *domain.Session, p *domain.Puzzle, now time.Time) {
	s.PuzzleID = p.ID
	s.Seed = p.Seed
	s.Difficulty = p.Difficulty
	s.Params = p.Params
	s.Board = p.Board.Clone()
	s.Moves = 0
	s.Status = domain.StatusActive
	s.SolvedAt = nil
	s.UpdatedAt = now
}
