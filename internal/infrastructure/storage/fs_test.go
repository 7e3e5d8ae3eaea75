package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"questaroo.app/lightson/internal/domain"
)

func samplePuzzle(id string, d domain.Difficulty, created int64) *domain.Puzzle {
	b := domain.NewBoard(3)
	b.Toggle(domain.Coord{Row: 1, Col: 1})
	return &domain.Puzzle{
		ID:         id,
		Seed:       42,
		Difficulty: d,
		Params:     domain.Params{Size: 3, Probability: d.Probability()},
		Board:      b,
		CreatedAt:  created,
		Name:       "cross " + id,
	}
}

func TestFSRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewFS(t.TempDir())

	p := samplePuzzle("abc", domain.Hard, 10)
	require.NoError(t, s.Save(ctx, p))

	got, err := s.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, domain.Hard, got.Difficulty)
	assert.Equal(t, int64(42), got.Seed)
	assert.True(t, got.Board.Equal(p.Board), "board = \n%s", got.Board)
	assert.Equal(t, "cross abc", got.Name)
}

func TestFSSaveMovesBetweenDifficulties(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := NewFS(dir)

	require.NoError(t, s.Save(ctx, samplePuzzle("abc", domain.Easy, 1)))
	require.NoError(t, s.Save(ctx, samplePuzzle("abc", domain.Hard, 1)))

	_, err := os.Stat(filepath.Join(dir, "easy", "abc.json"))
	assert.True(t, os.IsNotExist(err), "stale easy copy left behind")

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.Hard, list[0].Difficulty)
}

func TestFSList(t *testing.T) {
	ctx := context.Background()
	s := NewFS(t.TempDir())

	empty, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, s.Save(ctx, samplePuzzle("old", domain.Easy, 1)))
	require.NoError(t, s.Save(ctx, samplePuzzle("new", domain.Medium, 2)))

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].ID)
	assert.Equal(t, "old", list[1].ID)
	assert.Equal(t, 3, list[0].Size)
}

func TestFSErrors(t *testing.T) {
	ctx := context.Background()
	s := NewFS(t.TempDir())

	_, err := s.Load(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound), "err = %v", err)

	_, err = s.Load(ctx, "../etc/passwd")
	assert.True(t, errors.Is(err, ErrInvalidID), "err = %v", err)

	err = s.Save(ctx, samplePuzzle("", domain.Easy, 1))
	assert.True(t, errors.Is(err, ErrInvalidID), "err = %v", err)

	assert.Error(t, s.Save(ctx, nil))
}

func TestFSSaveFailsWhenStaleCopyCannotBeRemoved(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := NewFS(dir)

	// a non-empty directory where the easy copy would live cannot be removed
	stale := filepath.Join(dir, "easy", "abc.json")
	require.NoError(t, os.MkdirAll(stale, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(stale, "keep"), []byte("x"), 0o644))

	err := s.Save(ctx, samplePuzzle("abc", domain.Hard, 1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "remove stale easy copy")

	_, err = os.Stat(filepath.Join(dir, "hard", "abc.json"))
	assert.True(t, os.IsNotExist(err), "hard copy written despite stale easy copy")
}
