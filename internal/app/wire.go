// Package app assembles solvers, storage and the use case service from a
// config.Config, for both commands.
package app

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"questaroo.app/lightson/internal/domain"
	"questaroo.app/lightson/internal/generator"
	"questaroo.app/lightson/internal/hint"
	"questaroo.app/lightson/internal/infrastructure/storage"
	"questaroo.app/lightson/internal/infrastructure/storage/memory"
	"questaroo.app/lightson/internal/infrastructure/storage/sqlite"
	"questaroo.app/lightson/internal/platform/config"
	"questaroo.app/lightson/internal/ports"
	"questaroo.app/lightson/internal/solver"
	"questaroo.app/lightson/internal/usecase"
	"questaroo.app/lightson/internal/validator"
)

// NewSolver picks the linear-algebra solver by default and the
// light-chasing one for "chase".
func NewSolver(kind string) ports.Solver {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "chase", "chasing":
		return solver.NewChaseSolver()
	default:
		return solver.NewLinearSolver()
	}
}

// NewStorage opens the puzzle library named by cfg.Storage. The returned
// close function releases it.
func NewStorage(cfg config.Config) (ports.Storage, func() error, error) {
	noop := func() error { return nil }
	switch strings.ToLower(strings.TrimSpace(cfg.Storage)) {
	case "", "fs":
		if err := os.MkdirAll(cfg.PersistPath, 0o755); err != nil {
			return nil, noop, errors.Wrap(err, "create persist path")
		}
		return storage.NewFS(cfg.PersistPath), noop, nil
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return nil, noop, errors.Wrap(err, "create sqlite dir")
		}
		st, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		return st, st.Close, nil
	default:
		return nil, noop, errors.Errorf("unknown storage %q (want fs or sqlite)", cfg.Storage)
	}
}

// NewService wires providers into a use case service. The session store is
// returned separately so the caller can run its reaper.
func NewService(cfg config.Config, logger *slog.Logger) (*usecase.Service, *memory.Sessions, func() error, error) {
	v := validator.New()
	defaults := domain.Params{Size: cfg.BoardSize, Probability: cfg.ToggleProbability}
	if err := v.ValidateParams(defaults); err != nil {
		return nil, nil, nil, errors.Wrap(err, "board defaults")
	}

	st, closeStorage, err := NewStorage(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	s := NewSolver(cfg.Solver)
	sessions := memory.NewSessions()
	uc := usecase.NewService(s, generator.NewToggleGenerator(), v, hint.NewNextClick(s), st, sessions)
	uc.Defaults = defaults
	if logger != nil {
		uc.Logger = logger
	}
	return uc, sessions, closeStorage, nil
}
