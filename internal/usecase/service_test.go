package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"questaroo.app/lightson/internal/domain"
	"questaroo.app/lightson/internal/generator"
	"questaroo.app/lightson/internal/hint"
	"questaroo.app/lightson/internal/infrastructure/storage"
	"questaroo.app/lightson/internal/infrastructure/storage/memory"
	"questaroo.app/lightson/internal/solver"
	"questaroo.app/lightson/internal/validator"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	s := solver.NewLinearSolver()
	u := NewService(
		s,
		generator.NewToggleGenerator(),
		validator.New(),
		hint.NewNextClick(s),
		storage.NewFS(t.TempDir()),
		memory.NewSessions(),
	)
	u.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return u
}

func float(f float64) *float64 { return &f }

func TestNewGameDefaults(t *testing.T) {
	u := newTestService(t)
	u.newSeed = func() (int64, error) { return 7, nil }

	s, err := u.NewGame(context.Background(), NewGameRequest{})
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, int64(7), s.Seed)
	assert.Equal(t, domain.DefaultParams, s.Params)
	assert.Equal(t, 5, s.Board.Size())
	assert.Equal(t, domain.StatusActive, s.Status)
	assert.Equal(t, 0, s.Moves)

	got, err := u.Session(context.Background(), s.ID)
	require.NoError(t, err)
	assert.True(t, got.Board.Equal(s.Board))
}

func TestNewGameIsDeterministicForSeed(t *testing.T) {
	u := newTestService(t)
	req := NewGameRequest{Difficulty: "hard", Size: 6, Seed: 1234}
	a, err := u.NewGame(context.Background(), req)
	require.NoError(t, err)
	b, err := u.NewGame(context.Background(), req)
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.True(t, a.Board.Equal(b.Board))
	assert.Equal(t, domain.Hard, a.Difficulty)
	assert.Equal(t, domain.Hard.Probability(), a.Params.Probability)
}

func TestNewGameRejectsBadInput(t *testing.T) {
	u := newTestService(t)
	ctx := context.Background()

	_, err := u.NewGame(ctx, NewGameRequest{Size: domain.MaxBoardSize + 1})
	var verr *validator.ValidationError
	require.True(t, errors.As(err, &verr), "err = %v", err)
	assert.True(t, errors.Is(err, domain.ErrInvalidParams))
	assert.Contains(t, verr.FieldMap(), "size")

	_, err = u.NewGame(ctx, NewGameRequest{Probability: float(1.5)})
	assert.True(t, errors.Is(err, domain.ErrInvalidParams), "err = %v", err)

	_, err = u.NewGame(ctx, NewGameRequest{Difficulty: "nightmare"})
	require.True(t, errors.As(err, &verr), "err = %v", err)
	assert.True(t, errors.Is(err, domain.ErrUnknownDifficulty))
	assert.Contains(t, verr.FieldMap(), "difficulty")
}

func TestPlayToSolvedThenMovesAreIgnored(t *testing.T) {
	u := newTestService(t)
	ctx := context.Background()

	s, err := u.NewGame(ctx, NewGameRequest{Size: 3, Probability: float(0), Seed: 1})
	require.NoError(t, err)
	require.True(t, s.Board.Equal(domain.NewBoard(3)))

	sol, _, err := u.Solve(ctx, s.Board)
	require.NoError(t, err)
	require.NotEmpty(t, sol.Clicks)

	for i, c := range sol.Clicks {
		cur, r, err := u.Move(ctx, s.ID, c)
		require.NoError(t, err)
		assert.True(t, r.Accepted)
		assert.Equal(t, i+1, r.Moves)
		assert.Equal(t, i == len(sol.Clicks)-1, r.Solved, "after click %d", i)
		assert.Equal(t, i+1, cur.Moves)
	}

	solved, err := u.Session(ctx, s.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusSolved, solved.Status)
	require.NotNil(t, solved.SolvedAt)

	after, r, err := u.Move(ctx, s.ID, domain.Coord{Row: 1, Col: 1})
	require.NoError(t, err)
	assert.False(t, r.Accepted)
	assert.True(t, r.Solved)
	assert.Equal(t, solved.Moves, after.Moves)
	assert.True(t, after.Board.Equal(domain.FilledBoard(3)))

	_, found, err := u.Hint(ctx, s.ID)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMoveOutOfBounds(t *testing.T) {
	u := newTestService(t)
	ctx := context.Background()
	s, err := u.NewGame(ctx, NewGameRequest{Size: 3, Seed: 5})
	require.NoError(t, err)

	_, _, err = u.Move(ctx, s.ID, domain.Coord{Row: 3, Col: 0})
	var verr *validator.ValidationError
	require.True(t, errors.As(err, &verr), "err = %v", err)
	assert.True(t, errors.Is(err, domain.ErrOutOfBounds))
	assert.Contains(t, verr.FieldMap(), "row")

	got, err := u.Session(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Moves)
	assert.True(t, got.Board.Equal(s.Board))
}

func TestRestartResetsSession(t *testing.T) {
	u := newTestService(t)
	ctx := context.Background()
	seeds := []int64{11, 22}
	u.newSeed = func() (int64, error) {
		s := seeds[0]
		seeds = seeds[1:]
		return s, nil
	}

	s, err := u.NewGame(ctx, NewGameRequest{Size: 4, Difficulty: "easy"})
	require.NoError(t, err)
	_, _, err = u.Move(ctx, s.ID, domain.Coord{Row: 0, Col: 0})
	require.NoError(t, err)

	r, err := u.Restart(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, r.ID)
	assert.Equal(t, 0, r.Moves)
	assert.Equal(t, domain.StatusActive, r.Status)
	assert.Equal(t, int64(22), r.Seed)
	assert.Equal(t, domain.Easy, r.Difficulty)
	assert.Equal(t, s.Params, r.Params)

	want, _, err := generator.NewToggleGenerator().Generate(ctx, 22, s.Params)
	require.NoError(t, err)
	assert.True(t, r.Board.Equal(want.Board))
}

func TestHintCountsDown(t *testing.T) {
	u := newTestService(t)
	ctx := context.Background()
	s, err := u.NewGame(ctx, NewGameRequest{Size: 5, Probability: float(0), Seed: 3})
	require.NoError(t, err)

	h, found, err := u.Hint(ctx, s.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 15, h.Remaining)

	_, _, err = u.Move(ctx, s.ID, h.Cell)
	require.NoError(t, err)
	h, found, err = u.Hint(ctx, s.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 14, h.Remaining)
}

func TestAbandon(t *testing.T) {
	u := newTestService(t)
	ctx := context.Background()
	s, err := u.NewGame(ctx, NewGameRequest{Seed: 9})
	require.NoError(t, err)

	require.NoError(t, u.Abandon(ctx, s.ID))
	_, err = u.Session(ctx, s.ID)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
	assert.True(t, errors.Is(u.Abandon(ctx, s.ID), storage.ErrNotFound))
}

func TestSaveLoadPlay(t *testing.T) {
	u := newTestService(t)
	ctx := context.Background()
	b, err := domain.ParseBoard("#..", ".#.", "..#")
	require.NoError(t, err)

	p := &domain.Puzzle{Name: "diagonal", Board: b, Params: domain.Params{Probability: 0.25}}
	require.NoError(t, u.Save(ctx, p, ""))
	assert.NotEmpty(t, p.ID)
	assert.NotZero(t, p.CreatedAt)
	assert.Equal(t, 3, p.Params.Size)
	assert.Equal(t, domain.Medium, p.Difficulty)

	list, err := u.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "diagonal", list[0].Name)

	loaded, err := u.Load(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, loaded.Board.Equal(b))

	s, err := u.Play(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, s.PuzzleID)
	assert.True(t, s.Board.Equal(b))
	assert.Equal(t, domain.StatusActive, s.Status)

	_, err = u.Play(ctx, "missing")
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestSaveRejectsRaggedBoard(t *testing.T) {
	u := newTestService(t)
	err := u.Save(context.Background(), &domain.Puzzle{Board: domain.Board{{true, false}, {true}}}, "")
	assert.True(t, errors.Is(err, domain.ErrNotSquare), "err = %v", err)
}

func TestSaveFillsParamsSoRestartDrawsFreshBoards(t *testing.T) {
	u := newTestService(t)
	ctx := context.Background()
	seeds := []int64{31, 32, 33}
	u.newSeed = func() (int64, error) {
		s := seeds[0]
		seeds = seeds[1:]
		return s, nil
	}
	b, err := domain.ParseBoard("#.#", "...", "#.#")
	require.NoError(t, err)

	bare := &domain.Puzzle{ID: "bare", Board: b}
	require.NoError(t, u.Save(ctx, bare, ""))
	assert.Equal(t, domain.Params{Size: 3, Probability: domain.DefaultParams.Probability}, bare.Params)
	assert.Equal(t, domain.Medium, bare.Difficulty)

	labelled := &domain.Puzzle{ID: "labelled", Board: b}
	require.NoError(t, u.Save(ctx, labelled, "hard"))
	assert.Equal(t, domain.Hard.Probability(), labelled.Params.Probability)
	assert.Equal(t, domain.Hard, labelled.Difficulty)

	s, err := u.Play(ctx, "bare")
	require.NoError(t, err)
	assert.Equal(t, bare.Params, s.Params)
	for _, seed := range []int64{31, 32, 33} {
		r, err := u.Restart(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, seed, r.Seed)
		want, _, err := generator.NewToggleGenerator().Generate(ctx, seed, bare.Params)
		require.NoError(t, err)
		assert.True(t, r.Board.Equal(want.Board), "seed %d board =\n%s", seed, r.Board)
	}
}

func TestSaveRejectsBadParams(t *testing.T) {
	u := newTestService(t)
	ctx := context.Background()
	b := domain.NewBoard(3)

	err := u.Save(ctx, &domain.Puzzle{ID: "neg", Board: b, Params: domain.Params{Probability: -7}}, "")
	var verr *validator.ValidationError
	require.True(t, errors.As(err, &verr), "err = %v", err)
	assert.True(t, errors.Is(err, domain.ErrInvalidParams))
	assert.Contains(t, verr.FieldMap(), "probability")

	err = u.Save(ctx, &domain.Puzzle{ID: "odd", Board: b}, "nightmare")
	require.True(t, errors.As(err, &verr), "err = %v", err)
	assert.True(t, errors.Is(err, domain.ErrUnknownDifficulty))

	_, err = u.Load(ctx, "neg")
	assert.True(t, errors.Is(err, storage.ErrNotFound), "err = %v", err)
}

func TestSolveAndGenerate(t *testing.T) {
	u := newTestService(t)
	ctx := context.Background()

	sol, _, err := u.Solve(ctx, domain.FilledBoard(4))
	require.NoError(t, err)
	assert.Empty(t, sol.Clicks)

	_, _, err = u.Solve(ctx, domain.Board{})
	assert.Error(t, err)

	p, st, err := u.Generate(ctx, 42, domain.Params{Size: 4, Probability: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(42), p.Seed)
	assert.Equal(t, 16, st.Nodes)

	_, _, err = u.Generate(ctx, 42, domain.Params{Size: 0, Probability: 0.5})
	assert.True(t, errors.Is(err, domain.ErrInvalidParams))
}

func TestNotConfigured(t *testing.T) {
	u := &Service{}
	ctx := context.Background()

	_, _, err := u.Solve(ctx, domain.NewBoard(2))
	assert.Equal(t, errNotConfigured, err)
	_, err = u.NewGame(ctx, NewGameRequest{})
	assert.Equal(t, errNotConfigured, err)
	_, _, err = u.Move(ctx, "x", domain.Coord{})
	assert.Equal(t, errNotConfigured, err)
	_, err = u.List(ctx)
	assert.Equal(t, errNotConfigured, err)
	_, _, err = u.Hint(ctx, "x")
	assert.Equal(t, errNotConfigured, err)
}
