package generator

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"questaroo.app/lightson/internal/domain"
	"questaroo.app/lightson/internal/ports"
)

// ToggleGenerator creates boards by random toggling from the all-OFF state.
type ToggleGenerator struct{}

func NewToggleGenerator() *ToggleGenerator { return &ToggleGenerator{} }

// Generate creates a solvable board from seed. The same seed and params
// always yield the same board. Stats.Nodes counts the toggles applied.
func (g *ToggleGenerator) Generate(ctx context.Context, seed int64, params domain.Params) (*domain.Puzzle, ports.Stats, error) {
	start := time.Now()
	if !params.Valid() {
		return nil, ports.Stats{}, fmt.Errorf("%w: size=%d probability=%v", domain.ErrInvalidParams, params.Size, params.Probability)
	}
	if err := ctx.Err(); err != nil {
		return nil, ports.Stats{}, err
	}
	rng := rand.New(rand.NewSource(seed))
	b, toggles := generate(params.Size, params.Probability, rng)
	p := &domain.Puzzle{
		Seed:       seed,
		Difficulty: domain.DifficultyFor(params.Probability),
		Params:     params,
		Board:      b,
		CreatedAt:  time.Now().UnixNano(),
	}
	return p, ports.Stats{Nodes: toggles, Duration: time.Since(start)}, nil
}
