package ports

import (
	"context"
	"time"

	"questaroo.app/lightson/internal/domain"
)

// Stats captures performance characteristics of an operation.
type Stats struct {
	Nodes    int
	Duration time.Duration
}

// Solver finds a minimal set of clicks that turns every light ON.
type Solver interface {
	Solve(ctx context.Context, b domain.Board) (domain.Solution, Stats, error)
}

// Generator creates new solvable boards from a seed.
type Generator interface {
	Generate(ctx context.Context, seed int64, params domain.Params) (*domain.Puzzle, Stats, error)
}

// Validator checks caller input before it reaches the engine.
type Validator interface {
	ValidateParams(p domain.Params) error
	ValidateBoard(b domain.Board) error
	ValidateMove(b domain.Board, at domain.Coord) error
	ValidateStruct(v any) error
}

// Hinter suggests the next click on a board.
type Hinter interface {
	Hint(ctx context.Context, b domain.Board) (domain.Hint, bool, error)
}

// Storage persists and retrieves saved puzzles.
type Storage interface {
	Save(ctx context.Context, p *domain.Puzzle) error
	Load(ctx context.Context, id string) (*domain.Puzzle, error)
	List(ctx context.Context) ([]domain.PuzzleMeta, error)
}

// SessionStore holds live game sessions. Update runs fn with exclusive
// access to the stored session and persists whatever fn leaves in it.
type SessionStore interface {
	Create(ctx context.Context, s domain.Session) error
	Get(ctx context.Context, id string) (domain.Session, error)
	Update(ctx context.Context, id string, fn func(*domain.Session) error) (domain.Session, error)
	Delete(ctx context.Context, id string) error
	Reap(olderThan time.Time) int
}
