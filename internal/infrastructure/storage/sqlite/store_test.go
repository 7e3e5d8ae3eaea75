package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"questaroo.app/lightson/internal/domain"
	"questaroo.app/lightson/internal/infrastructure/storage"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "lightson.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lightson.db")
	first, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, second.Close())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTempStore(t)

	b, err := domain.ParseBoard(
		".#...",
		"###..",
		".#.#.",
		"..###",
		"...#.",
	)
	require.NoError(t, err)
	in := &domain.Puzzle{
		ID:         "fixture",
		Seed:       99,
		Difficulty: domain.Medium,
		Params:     domain.DefaultParams,
		Board:      b,
		CreatedAt:  1234,
		Name:       "two crosses",
		Notes:      "hand made",
	}
	require.NoError(t, store.Save(ctx, in))

	got, err := store.Load(ctx, "fixture")
	require.NoError(t, err)
	assert.True(t, got.Board.Equal(b), "board =\n%s", got.Board)
	assert.Equal(t, in.Params, got.Params)
	assert.Equal(t, in.Seed, got.Seed)
	assert.Equal(t, in.Difficulty, got.Difficulty)
	assert.Equal(t, "two crosses", got.Name)
	assert.Equal(t, "hand made", got.Notes)
	assert.Equal(t, int64(1234), got.CreatedAt)

	// saving again replaces the row
	in.Name = "renamed"
	require.NoError(t, store.Save(ctx, in))
	got, err = store.Load(ctx, "fixture")
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)
}

func TestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := openTempStore(t)

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.Save(ctx, &domain.Puzzle{
			ID:         id,
			Difficulty: domain.Easy,
			Params:     domain.Params{Size: 2, Probability: 0.15},
			Board:      domain.NewBoard(2),
			CreatedAt:  int64(i),
		}))
	}
	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{list[0].ID, list[1].ID, list[2].ID})
	assert.Equal(t, 2, list[0].Size)
	assert.Equal(t, domain.Easy, list[0].Difficulty)
}

func TestLoadMissing(t *testing.T) {
	store := openTempStore(t)
	_, err := store.Load(context.Background(), "nope")
	assert.True(t, errors.Is(err, storage.ErrNotFound), "err = %v", err)
}

func TestSaveRejectsBadID(t *testing.T) {
	store := openTempStore(t)
	err := store.Save(context.Background(), &domain.Puzzle{ID: "a/b", Board: domain.NewBoard(1)})
	assert.True(t, errors.Is(err, storage.ErrInvalidID), "err = %v", err)
}

func TestExtractUp(t *testing.T) {
	content := "-- +migrate Up\nCREATE TABLE x (id INT);\n-- +migrate Down\nDROP TABLE x;\n"
	assert.Equal(t, "\nCREATE TABLE x (id INT);\n", extractUp(content))
	assert.Equal(t, "SELECT 1;", extractUp("SELECT 1;"))
}
