package httpadapter

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"

	"questaroo.app/lightson/internal/domain"
	"questaroo.app/lightson/internal/game"
	"questaroo.app/lightson/internal/infrastructure/storage"
	"questaroo.app/lightson/internal/solver"
	"questaroo.app/lightson/internal/usecase"
	"questaroo.app/lightson/internal/validator"
)

type Handler struct {
	UC     *usecase.Service
	Logger *slog.Logger
}

func New(uc *usecase.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{UC: uc, Logger: logger}
}

func (h *Handler) Register(r *httprouter.Router) {
	r.POST("/api/sessions", h.handleNewGame)
	r.GET("/api/sessions/:id", h.handleSession)
	r.DELETE("/api/sessions/:id", h.handleAbandon)
	r.POST("/api/sessions/:id/moves", h.handleMove)
	r.POST("/api/sessions/:id/restart", h.handleRestart)
	r.GET("/api/sessions/:id/hint", h.handleHint)

	r.POST("/api/solve", h.handleSolve)
	r.POST("/api/generate", h.handleGenerate)

	r.GET("/api/puzzles", h.handleList)
	r.POST("/api/puzzles", h.handleSave)
	r.GET("/api/puzzles/:id", h.handleLoad)
	r.POST("/api/puzzles/:id/play", h.handlePlay)
}

type errorResp struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps engine and storage errors to HTTP status codes.
func statusFor(err error) int {
	var verr *validator.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidParams),
		errors.Is(err, domain.ErrNotSquare),
		errors.Is(err, domain.ErrBadCell),
		errors.Is(err, domain.ErrOutOfBounds),
		errors.Is(err, domain.ErrUnknownDifficulty),
		errors.Is(err, solver.ErrUnsolvable):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	resp := errorResp{Error: err.Error()}
	var verr *validator.ValidationError
	if errors.As(err, &verr) {
		resp.Fields = verr.FieldMap()
	}
	if status == http.StatusInternalServerError {
		h.Logger.Error("request failed", "path", r.URL.Path, "err", err, "cause", errors.Cause(err))
	}
	writeJSON(w, status, resp)
}

// decode reads an optional JSON body into v. An empty body leaves v as is.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return &validator.ValidationError{
			Err:    validator.ErrValidation,
			Fields: []validator.FieldError{{Field: "body", Error: "invalid JSON: " + err.Error()}},
		}
	}
	return nil
}

// ---- Sessions ----

type sessionResp struct {
	Session domain.Session `json:"session"`
	Lit     int            `json:"lit"`
}

func newSessionResp(s domain.Session) sessionResp {
	return sessionResp{Session: s, Lit: s.Board.Lit()}
}

func (h *Handler) handleNewGame(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req usecase.NewGameRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	s, err := h.UC.NewGame(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newSessionResp(s))
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	s, err := h.UC.Session(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResp(s))
}

func (h *Handler) handleAbandon(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.UC.Abandon(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type moveReq struct {
	Row *int `json:"row" validate:"required"`
	Col *int `json:"col" validate:"required"`
}

type moveResp struct {
	Session domain.Session  `json:"session"`
	Result  game.MoveResult `json:"result"`
	Lit     int             `json:"lit"`
}

func (h *Handler) handleMove(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req moveReq
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if h.UC.Validator != nil {
		if err := h.UC.Validator.ValidateStruct(req); err != nil {
			h.writeError(w, r, err)
			return
		}
	} else if req.Row == nil || req.Col == nil {
		h.writeError(w, r, &validator.ValidationError{
			Err:    validator.ErrValidation,
			Fields: []validator.FieldError{{Field: "cell", Error: "row and col are required"}},
		})
		return
	}
	at := domain.Coord{Row: *req.Row, Col: *req.Col}
	s, res, err := h.UC.Move(r.Context(), ps.ByName("id"), at)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, moveResp{Session: s, Result: res, Lit: s.Board.Lit()})
}

func (h *Handler) handleRestart(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	s, err := h.UC.Restart(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResp(s))
}

type hintResp struct {
	Found bool         `json:"found"`
	Hint  *domain.Hint `json:"hint,omitempty"`
}

func (h *Handler) handleHint(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	hh, ok, err := h.UC.Hint(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	resp := hintResp{Found: ok}
	if ok {
		resp.Hint = &hh
	}
	writeJSON(w, http.StatusOK, resp)
}

// ---- Solve / Generate ----

// boardReq accepts a board either as a boolean grid or as rows of '#'
// (on) and '.' (off).
type boardReq struct {
	Board domain.Board `json:"board,omitempty"`
	Rows  []string     `json:"rows,omitempty"`
}

func (b boardReq) board() (domain.Board, error) {
	if len(b.Rows) == 0 {
		return b.Board, nil
	}
	return domain.ParseBoard(b.Rows...)
}

type solveResp struct {
	Clicks     []domain.Coord `json:"clicks"`
	DurationMs int64          `json:"durationMs"`
	Nodes      int            `json:"nodes"`
}

func (h *Handler) handleSolve(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req boardReq
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	b, err := req.board()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	sol, st, err := h.UC.Solve(r.Context(), b)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	clicks := sol.Clicks
	if clicks == nil {
		clicks = []domain.Coord{}
	}
	writeJSON(w, http.StatusOK, solveResp{Clicks: clicks, DurationMs: st.Duration.Milliseconds(), Nodes: st.Nodes})
}

type generateResp struct {
	Puzzle     *domain.Puzzle `json:"puzzle"`
	DurationMs int64          `json:"durationMs"`
	Nodes      int            `json:"nodes"`
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req usecase.NewGameRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	d, p, err := h.UC.ResolveParams(req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	puzzle, st, err := h.UC.Generate(r.Context(), req.Seed, p)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Difficulty) != "" {
		puzzle.Difficulty = d
	}
	writeJSON(w, http.StatusOK, generateResp{Puzzle: puzzle, DurationMs: st.Duration.Milliseconds(), Nodes: st.Nodes})
}

// ---- Save / Load / List / Play ----

// saveReq takes difficulty as a plain label so an absent one can be told
// apart from "easy".
type saveReq struct {
	domain.Puzzle
	Difficulty string   `json:"difficulty,omitempty"`
	Rows       []string `json:"rows,omitempty"`
}

type saveResp struct {
	ID string `json:"id"`
}

func (h *Handler) handleSave(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req saveReq
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	p := req.Puzzle
	if len(req.Rows) > 0 {
		b, err := domain.ParseBoard(req.Rows...)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		p.Board = b
	}
	if err := h.UC.Save(r.Context(), &p, req.Difficulty); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, saveResp{ID: p.ID})
}

type loadResp struct {
	Puzzle *domain.Puzzle `json:"puzzle"`
}

func (h *Handler) handleLoad(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	p, err := h.UC.Load(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loadResp{Puzzle: p})
}

type listResp struct {
	Puzzles []domain.PuzzleMeta `json:"puzzles"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ps, err := h.UC.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if ps == nil {
		ps = []domain.PuzzleMeta{}
	}
	writeJSON(w, http.StatusOK, listResp{Puzzles: ps})
}

func (h *Handler) handlePlay(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	s, err := h.UC.Play(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newSessionResp(s))
}
