// Package tui is a terminal front end for playing one session at a time.
package tui

import (
	"context"
	"log/slog"

	"github.com/mattn/go-runewidth"
	"github.com/nsf/termbox-go"
	"github.com/pkg/errors"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"questaroo.app/lightson/internal/domain"
	"questaroo.app/lightson/internal/usecase"
)

const help = "arrows/hjkl move  space click  r restart  ? hint  q quit"

type App struct {
	UC     *usecase.Service
	Logger *slog.Logger
	// Request starts the first session unless PuzzleID names a saved puzzle.
	Request  usecase.NewGameRequest
	PuzzleID string

	session domain.Session
	cursor  domain.Coord
	hint    *domain.Coord
	notice  string
	printer *message.Printer
}

func New(uc *usecase.Service, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{UC: uc, Logger: logger, printer: message.NewPrinter(language.English)}
}

// Run takes over the terminal until the player quits.
func (a *App) Run(ctx context.Context) error {
	if err := a.start(ctx); err != nil {
		return err
	}
	if err := termbox.Init(); err != nil {
		return errors.Wrap(err, "init terminal")
	}
	defer termbox.Close()
	termbox.SetInputMode(termbox.InputEsc | termbox.InputMouse)

	go func() {
		<-ctx.Done()
		termbox.Interrupt()
	}()

	for {
		if err := a.draw(); err != nil {
			return err
		}
		ev := termbox.PollEvent()
		switch ev.Type {
		case termbox.EventError:
			return errors.Wrap(ev.Err, "read terminal event")
		case termbox.EventInterrupt:
			return a.quit(context.WithoutCancel(ctx))
		}
		quit, err := a.handle(ctx, ev)
		if err != nil {
			return err
		}
		if quit {
			return a.quit(ctx)
		}
	}
}

func (a *App) start(ctx context.Context) error {
	var (
		s   domain.Session
		err error
	)
	if a.PuzzleID != "" {
		s, err = a.UC.Play(ctx, a.PuzzleID)
	} else {
		s, err = a.UC.NewGame(ctx, a.Request)
	}
	if err != nil {
		return errors.Wrap(err, "start game")
	}
	a.session = s
	a.cursor = domain.Coord{Row: s.Board.Size() / 2, Col: s.Board.Size() / 2}
	a.Logger.Info("game started", "session", s.ID, "size", s.Board.Size(), "seed", s.Seed)
	return nil
}

func (a *App) quit(ctx context.Context) error {
	if err := a.UC.Abandon(ctx, a.session.ID); err != nil {
		a.Logger.Warn("abandon session", "session", a.session.ID, "err", err)
	}
	a.Logger.Info("game over", "session", a.session.ID, "moves", a.session.Moves, "status", a.session.Status.String())
	return nil
}

// handle applies one event. Engine rejections become a notice on screen;
// only infrastructure failures are returned.
func (a *App) handle(ctx context.Context, ev termbox.Event) (quit bool, err error) {
	n := a.session.Board.Size()
	switch actionFor(ev) {
	case actUp:
		a.cursor = clampCursor(a.cursor, -1, 0, n)
	case actDown:
		a.cursor = clampCursor(a.cursor, 1, 0, n)
	case actLeft:
		a.cursor = clampCursor(a.cursor, 0, -1, n)
	case actRight:
		a.cursor = clampCursor(a.cursor, 0, 1, n)
	case actClick:
		return false, a.click(ctx, a.cursor)
	case actMouse:
		if c, ok := cellAt(ev.MouseX, ev.MouseY, n); ok {
			a.cursor = c
			return false, a.click(ctx, c)
		}
	case actRestart:
		s, err := a.UC.Restart(ctx, a.session.ID)
		if err != nil {
			return false, errors.Wrap(err, "restart")
		}
		a.session = s
		a.hint = nil
		a.notice = "New board."
	case actHint:
		h, found, err := a.UC.Hint(ctx, a.session.ID)
		if err != nil {
			a.notice = err.Error()
			return false, nil
		}
		if found {
			a.hint = &h.Cell
			a.cursor = h.Cell
			a.notice = h.Message
		}
	case actQuit:
		return true, nil
	}
	return false, nil
}

func (a *App) click(ctx context.Context, at domain.Coord) error {
	s, res, err := a.UC.Move(ctx, a.session.ID, at)
	if err != nil {
		if errors.Is(err, domain.ErrOutOfBounds) {
			a.notice = err.Error()
			return nil
		}
		return errors.Wrap(err, "move")
	}
	a.session = s
	a.hint = nil
	switch {
	case !res.Accepted:
		a.notice = "Already solved."
	case res.Solved:
		a.notice = ""
		a.Logger.Info("solved", "session", s.ID, "moves", s.Moves)
	default:
		a.notice = ""
	}
	return nil
}

func (a *App) draw() error {
	if err := termbox.Clear(termbox.ColorDefault, termbox.ColorDefault); err != nil {
		return errors.Wrap(err, "clear screen")
	}
	printAt(originX, 0, "Lights On", termbox.ColorYellow|termbox.AttrBold, termbox.ColorDefault)
	printAt(originX, 1, help, termbox.ColorDefault, termbox.ColorDefault)

	b := a.session.Board
	for r := range b {
		for c := range b[r] {
			at := domain.Coord{Row: r, Col: c}
			x, y := cellOrigin(at)
			fg, bg := termbox.ColorWhite, termbox.ColorBlack
			if b[r][c] {
				fg, bg = termbox.ColorBlack, termbox.ColorYellow
			}
			if a.hint != nil && *a.hint == at {
				bg = termbox.ColorBlue
			}
			left, right := ' ', ' '
			if a.cursor == at {
				left, right = '[', ']'
			}
			termbox.SetCell(x, y, left, fg, bg)
			termbox.SetCell(x+1, y, ' ', fg, bg)
			termbox.SetCell(x+2, y, right, fg, bg)
		}
	}

	y := originY + boardHeight(b.Size())
	printAt(originX, y, statusLine(a.printer, a.session), termbox.ColorDefault, termbox.ColorDefault)
	if a.notice != "" {
		printAt(originX, y+1, a.notice, termbox.ColorCyan, termbox.ColorDefault)
	}
	return errors.Wrap(termbox.Flush(), "flush screen")
}

func printAt(x, y int, s string, fg, bg termbox.Attribute) {
	for _, r := range s {
		termbox.SetCell(x, y, r, fg, bg)
		x += runewidth.RuneWidth(r)
	}
}
