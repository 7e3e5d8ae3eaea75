// Package sqlite provides a SQLite-backed puzzle library.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"questaroo.app/lightson/internal/domain"
	"questaroo.app/lightson/internal/infrastructure/storage"
	"questaroo.app/lightson/internal/infrastructure/storage/sqlite/migrations"
)

// Store persists puzzles in SQLite.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a SQLite puzzle store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(context.Background(), sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Save inserts or replaces one puzzle.
func (s *Store) Save(ctx context.Context, p *domain.Puzzle) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if p == nil {
		return errors.New("invalid puzzle: nil")
	}
	if err := storage.CheckID(p.ID); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO puzzles (
		   id, seed, difficulty, size, probability, board, name, notes, created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   seed = excluded.seed,
		   difficulty = excluded.difficulty,
		   size = excluded.size,
		   probability = excluded.probability,
		   board = excluded.board,
		   name = excluded.name,
		   notes = excluded.notes,
		   created_at = excluded.created_at`,
		p.ID,
		p.Seed,
		int(p.Difficulty),
		p.Board.Size(),
		p.Params.Probability,
		p.Board.String(),
		strings.TrimSpace(p.Name),
		strings.TrimSpace(p.Notes),
		p.CreatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "save puzzle")
	}
	return nil
}

// Load returns one puzzle by ID.
func (s *Store) Load(ctx context.Context, id string) (*domain.Puzzle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, seed, difficulty, size, probability, board, name, notes, created_at
		 FROM puzzles WHERE id = ?`, id)

	var (
		p          domain.Puzzle
		difficulty int
		board      string
	)
	err := row.Scan(&p.ID, &p.Seed, &difficulty, &p.Params.Size, &p.Params.Probability, &board, &p.Name, &p.Notes, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrapf(storage.ErrNotFound, "puzzle %s", id)
		}
		return nil, errors.Wrap(err, "load puzzle")
	}
	p.Difficulty = domain.Difficulty(difficulty)
	b, err := domain.ParseBoard(strings.Split(board, "\n")...)
	if err != nil {
		return nil, errors.Wrapf(err, "decode board of puzzle %s", id)
	}
	p.Board = b
	return &p, nil
}

// List returns library entries, newest first.
func (s *Store) List(ctx context.Context) ([]domain.PuzzleMeta, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, name, difficulty, size, created_at FROM puzzles ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, errors.Wrap(err, "list puzzles")
	}
	defer rows.Close()

	out := []domain.PuzzleMeta{}
	for rows.Next() {
		var (
			m          domain.PuzzleMeta
			difficulty int
		)
		if err := rows.Scan(&m.ID, &m.Name, &difficulty, &m.Size, &m.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan puzzle")
		}
		m.Difficulty = domain.Difficulty(difficulty)
		out = append(out, m)
	}
	return out, errors.Wrap(rows.Err(), "iterate puzzles")
}
