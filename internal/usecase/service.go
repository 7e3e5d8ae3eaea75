package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"questaroo.app/lightson/internal/domain"
	"questaroo.app/lightson/internal/game"
	"questaroo.app/lightson/internal/platform/random"
	"questaroo.app/lightson/internal/ports"
	"questaroo.app/lightson/internal/validator"
)

const tracerName = "questaroo.app/lightson/usecase"

type Service struct {
	Solver    ports.Solver
	Generator ports.Generator
	Validator ports.Validator
	Hinter    ports.Hinter
	Storage   ports.Storage
	Sessions  ports.SessionStore

	Logger *slog.Logger
	// Defaults fill in size and probability a new game leaves out.
	Defaults domain.Params

	now     func() time.Time
	newSeed func() (int64, error)
	newID   func() string
}

func NewService(s ports.Solver, g ports.Generator, v ports.Validator, h ports.Hinter, st ports.Storage, ss ports.SessionStore) *Service {
	return &Service{
		Solver:    s,
		Generator: g,
		Validator: v,
		Hinter:    h,
		Storage:   st,
		Sessions:  ss,
		Logger:    slog.Default(),
		Defaults:  domain.DefaultParams,
		now:       time.Now,
		newSeed:   random.NewSeed,
		newID:     uuid.NewString,
	}
}

var errNotConfigured = errors.New("usecase dependency not configured")

func errUnknownDifficulty() error {
	return &validator.ValidationError{
		Err:    domain.ErrUnknownDifficulty,
		Fields: []validator.FieldError{{Field: "difficulty", Error: "difficulty must be one of easy, medium, hard"}},
	}
}

// NewGameRequest describes the board a new session starts on. Zero values
// fall back to the service defaults; an explicit Difficulty sets the toggle
// probability unless Probability is also given.
type NewGameRequest struct {
	Difficulty  string   `json:"difficulty,omitempty"`
	Size        int      `json:"size,omitempty"`
	Probability *float64 `json:"probability,omitempty"`
	Seed        int64    `json:"seed,omitempty"`
}

func (u *Service) span(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (u *Service) log() *slog.Logger {
	if u.Logger == nil {
		return slog.Default()
	}
	return u.Logger
}

func (u *Service) clock() time.Time {
	if u.now == nil {
		return time.Now()
	}
	return u.now()
}

func (u *Service) id() string {
	if u.newID == nil {
		return uuid.NewString()
	}
	return u.newID()
}

// seed returns s, or a fresh random seed when s is zero.
func (u *Service) seed(s int64) (int64, error) {
	if s != 0 {
		return s, nil
	}
	gen := u.newSeed
	if gen == nil {
		gen = random.NewSeed
	}
	s, err := gen()
	return s, errors.Wrap(err, "draw seed")
}

func (u *Service) defaults() domain.Params {
	if u.Defaults.Size == 0 {
		return domain.DefaultParams
	}
	return u.Defaults
}

// ResolveParams turns a request into generation parameters, validated.
func (u *Service) ResolveParams(req NewGameRequest) (domain.Difficulty, domain.Params, error) {
	p := u.defaults()
	if req.Size != 0 {
		p.Size = req.Size
	}
	d, err := domain.ParseDifficulty(req.Difficulty)
	if err != nil {
		return d, p, errUnknownDifficulty()
	}
	if strings.TrimSpace(req.Difficulty) != "" {
		p.Probability = d.Probability()
	}
	if req.Probability != nil {
		p.Probability = *req.Probability
	}
	if u.Validator != nil {
		if err := u.Validator.ValidateParams(p); err != nil {
			return d, p, err
		}
	}
	return d, p, nil
}

func (u *Service) generate(ctx context.Context, seed int64, p domain.Params) (*domain.Puzzle, ports.Stats, error) {
	seed, err := u.seed(seed)
	if err != nil {
		return nil, ports.Stats{}, err
	}
	return u.Generator.Generate(ctx, seed, p)
}

// NewGame generates a board and starts an Active session on it.
func (u *Service) NewGame(ctx context.Context, req NewGameRequest) (s domain.Session, err error) {
	ctx, span := u.span(ctx, "NewGame",
		attribute.String("difficulty", req.Difficulty),
		attribute.Int("size", req.Size),
	)
	defer func() { endSpan(span, err) }()

	if u.Generator == nil || u.Sessions == nil {
		return domain.Session{}, errNotConfigured
	}
	d, p, err := u.ResolveParams(req)
	if err != nil {
		return domain.Session{}, err
	}
	puzzle, st, err := u.generate(ctx, req.Seed, p)
	if err != nil {
		return domain.Session{}, errors.Wrap(err, "generate board")
	}
	if strings.TrimSpace(req.Difficulty) != "" {
		puzzle.Difficulty = d
	}

	s = game.New(u.id(), puzzle, u.clock())
	if err := u.Sessions.Create(ctx, s); err != nil {
		return domain.Session{}, errors.Wrap(err, "create session")
	}
	span.SetAttributes(attribute.String("session.id", s.ID), attribute.Int64("seed", s.Seed))
	u.log().Debug("session started",
		"session", s.ID,
		"seed", s.Seed,
		"size", s.Params.Size,
		"p", s.Params.Probability,
		"toggles", st.Nodes,
	)
	return s, nil
}

// Session returns the current state of a session.
func (u *Service) Session(ctx context.Context, id string) (s domain.Session, err error) {
	ctx, span := u.span(ctx, "Session", attribute.String("session.id", id))
	defer func() { endSpan(span, err) }()

	if u.Sessions == nil {
		return domain.Session{}, errNotConfigured
	}
	return u.Sessions.Get(ctx, id)
}

// Move clicks one cell of a session. A click on a solved session is not an
// error: the session comes back unchanged and the result is not Accepted.
func (u *Service) Move(ctx context.Context, id string, at domain.Coord) (s domain.Session, res game.MoveResult, err error) {
	ctx, span := u.span(ctx, "Move",
		attribute.String("session.id", id),
		attribute.Int("row", at.Row),
		attribute.Int("col", at.Col),
	)
	defer func() { endSpan(span, err) }()

	if u.Sessions == nil {
		return domain.Session{}, game.MoveResult{}, errNotConfigured
	}
	s, err = u.Sessions.Update(ctx, id, func(cur *domain.Session) error {
		if u.Validator != nil {
			if err := u.Validator.ValidateMove(cur.Board, at); err != nil {
				return err
			}
		}
		next, r, err := game.Move(*cur, at, u.clock())
		if err != nil {
			return err
		}
		*cur = next
		res = r
		return nil
	})
	if err != nil {
		return domain.Session{}, game.MoveResult{}, err
	}
	span.SetAttributes(attribute.Bool("accepted", res.Accepted), attribute.Bool("solved", res.Solved))
	switch {
	case !res.Accepted:
		u.log().Debug("move ignored on solved session", "session", id, "cell", at.String())
	case res.Solved:
		u.log().Debug("session solved", "session", id, "moves", res.Moves)
	}
	return s, res, nil
}

// Restart puts a fresh board from the session's parameters in play and
// zeroes its move counter. Allowed from either state.
func (u *Service) Restart(ctx context.Context, id string) (s domain.Session, err error) {
	ctx, span := u.span(ctx, "Restart", attribute.String("session.id", id))
	defer func() { endSpan(span, err) }()

	if u.Generator == nil || u.Sessions == nil {
		return domain.Session{}, errNotConfigured
	}
	s, err = u.Sessions.Update(ctx, id, func(cur *domain.Session) error {
		puzzle, _, err := u.generate(ctx, 0, cur.Params)
		if err != nil {
			return errors.Wrap(err, "generate board")
		}
		puzzle.Difficulty = cur.Difficulty
		*cur = game.Restart(*cur, puzzle, u.clock())
		return nil
	})
	if err != nil {
		return domain.Session{}, err
	}
	u.log().Debug("session restarted", "session", id, "seed", s.Seed)
	return s, nil
}

// Abandon discards a session.
func (u *Service) Abandon(ctx context.Context, id string) (err error) {
	ctx, span := u.span(ctx, "Abandon", attribute.String("session.id", id))
	defer func() { endSpan(span, err) }()

	if u.Sessions == nil {
		return errNotConfigured
	}
	if err := u.Sessions.Delete(ctx, id); err != nil {
		return err
	}
	u.log().Debug("session abandoned", "session", id)
	return nil
}

// Hint suggests the next click for a session. found is false once the
// board is solved.
func (u *Service) Hint(ctx context.Context, id string) (h domain.Hint, found bool, err error) {
	ctx, span := u.span(ctx, "Hint", attribute.String("session.id", id))
	defer func() { endSpan(span, err) }()

	if u.Hinter == nil || u.Sessions == nil {
		return domain.Hint{}, false, errNotConfigured
	}
	s, err := u.Sessions.Get(ctx, id)
	if err != nil {
		return domain.Hint{}, false, err
	}
	if s.Status == domain.StatusSolved {
		return domain.Hint{}, false, nil
	}
	return u.Hinter.Hint(ctx, s.Board)
}

// Solve returns a minimal set of clicks that turns every light of b ON.
func (u *Service) Solve(ctx context.Context, b domain.Board) (sol domain.Solution, st ports.Stats, err error) {
	ctx, span := u.span(ctx, "Solve", attribute.Int("size", b.Size()))
	defer func() { endSpan(span, err) }()

	if u.Solver == nil {
		return domain.Solution{}, ports.Stats{}, errNotConfigured
	}
	if u.Validator != nil {
		if err := u.Validator.ValidateBoard(b); err != nil {
			return domain.Solution{}, ports.Stats{}, err
		}
	}
	sol, st, err = u.Solver.Solve(ctx, b)
	if err != nil {
		return domain.Solution{}, st, err
	}
	span.SetAttributes(attribute.Int("clicks", len(sol.Clicks)), attribute.Int("nodes", st.Nodes))
	return sol, st, nil
}

// Generate creates a board without starting a session. A zero seed draws a
// fresh one.
func (u *Service) Generate(ctx context.Context, seed int64, p domain.Params) (puzzle *domain.Puzzle, st ports.Stats, err error) {
	ctx, span := u.span(ctx, "Generate", attribute.Int("size", p.Size), attribute.Float64("probability", p.Probability))
	defer func() { endSpan(span, err) }()

	if u.Generator == nil {
		return nil, ports.Stats{}, errNotConfigured
	}
	if u.Validator != nil {
		if err := u.Validator.ValidateParams(p); err != nil {
			return nil, ports.Stats{}, err
		}
	}
	return u.generate(ctx, seed, p)
}

// Persistence

// Save stores p in the puzzle library, assigning an ID and creation time
// when missing. difficulty names the label to file it under; empty derives
// the label from the probability. A zero probability takes the label's, or
// the service default when no label is given, so Restart keeps drawing
// fresh boards.
func (u *Service) Save(ctx context.Context, p *domain.Puzzle, difficulty string) (err error) {
	ctx, span := u.span(ctx, "Save")
	defer func() { endSpan(span, err) }()

	if u.Storage == nil {
		return errNotConfigured
	}
	if p == nil {
		return errors.Wrap(domain.ErrInvalidParams, "nil puzzle")
	}
	if u.Validator != nil {
		if err := u.Validator.ValidateBoard(p.Board); err != nil {
			return err
		}
	}
	p.Params.Size = p.Board.Size()
	if strings.TrimSpace(difficulty) != "" {
		d, err := domain.ParseDifficulty(difficulty)
		if err != nil {
			return errUnknownDifficulty()
		}
		p.Difficulty = d
		if p.Params.Probability == 0 {
			p.Params.Probability = d.Probability()
		}
	} else {
		if p.Params.Probability == 0 {
			p.Params.Probability = u.defaults().Probability
		}
		p.Difficulty = domain.DifficultyFor(p.Params.Probability)
	}
	if u.Validator != nil {
		if err := u.Validator.ValidateParams(p.Params); err != nil {
			return err
		}
	} else if !p.Params.Valid() {
		return errors.Wrapf(domain.ErrInvalidParams, "size=%d probability=%v", p.Params.Size, p.Params.Probability)
	}
	if p.ID == "" {
		p.ID = u.id()
	}
	if p.CreatedAt == 0 {
		p.CreatedAt = u.clock().UnixNano()
	}
	span.SetAttributes(attribute.String("puzzle.id", p.ID))
	if err := u.Storage.Save(ctx, p); err != nil {
		return err
	}
	u.log().Debug("puzzle saved", "puzzle", p.ID, "size", p.Params.Size, "difficulty", p.Difficulty.String())
	return nil
}

func (u *Service) Load(ctx context.Context, id string) (p *domain.Puzzle, err error) {
	ctx, span := u.span(ctx, "Load", attribute.String("puzzle.id", id))
	defer func() { endSpan(span, err) }()

	if u.Storage == nil {
		return nil, errNotConfigured
	}
	return u.Storage.Load(ctx, id)
}

func (u *Service) List(ctx context.Context) (ps []domain.PuzzleMeta, err error) {
	ctx, span := u.span(ctx, "List")
	defer func() { endSpan(span, err) }()

	if u.Storage == nil {
		return nil, errNotConfigured
	}
	return u.Storage.List(ctx)
}

// Play starts a session on a saved puzzle.
func (u *Service) Play(ctx context.Context, puzzleID string) (s domain.Session, err error) {
	ctx, span := u.span(ctx, "Play", attribute.String("puzzle.id", puzzleID))
	defer func() { endSpan(span, err) }()

	if u.Storage == nil || u.Sessions == nil {
		return domain.Session{}, errNotConfigured
	}
	p, err := u.Storage.Load(ctx, puzzleID)
	if err != nil {
		return domain.Session{}, err
	}
	if u.Validator != nil {
		if err := u.Validator.ValidateBoard(p.Board); err != nil {
			return domain.Session{}, errors.Wrapf(err, "puzzle %s", puzzleID)
		}
	}
	s = game.New(u.id(), p, u.clock())
	if err := u.Sessions.Create(ctx, s); err != nil {
		return domain.Session{}, errors.Wrap(err, "create session")
	}
	u.log().Debug("session started from library", "session", s.ID, "puzzle", puzzleID)
	return s, nil
}
