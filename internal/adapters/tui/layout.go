package tui

import (
	"github.com/nsf/termbox-go"
	"golang.org/x/text/message"

	"questaroo.app/lightson/internal/domain"
)

// Screen geometry. Each cell is cellW-1 columns wide and one row tall, with
// a one-column and one-row gutter after it.
const (
	originX = 2
	originY = 3
	cellW   = 4
	cellH   = 2
)

// cellOrigin returns the top-left screen position of cell c.
func cellOrigin(c domain.Coord) (x, y int) {
	return originX + c.Col*cellW, originY + c.Row*cellH
}

// cellAt maps a screen position back to a cell of an n×n board. Gutters
// and positions off the board report false.
func cellAt(x, y, n int) (domain.Coord, bool) {
	dx, dy := x-originX, y-originY
	if dx < 0 || dy < 0 {
		return domain.Coord{}, false
	}
	if dx%cellW == cellW-1 || dy%cellH == cellH-1 {
		return domain.Coord{}, false
	}
	c := domain.Coord{Row: dy / cellH, Col: dx / cellW}
	if c.Row >= n || c.Col >= n {
		return domain.Coord{}, false
	}
	return c, true
}

// boardHeight is the number of screen rows the grid of an n×n board uses.
func boardHeight(n int) int { return n * cellH }

// clampCursor moves c by (dr, dc), staying on an n×n board.
func clampCursor(c domain.Coord, dr, dc, n int) domain.Coord {
	c.Row = min(max(c.Row+dr, 0), n-1)
	c.Col = min(max(c.Col+dc, 0), n-1)
	return c
}

type action int

const (
	actNone action = iota
	actUp
	actDown
	actLeft
	actRight
	actClick
	actMouse
	actRestart
	actHint
	actQuit
)

// actionFor maps a terminal event to what the player asked for.
func actionFor(ev termbox.Event) action {
	switch ev.Type {
	case termbox.EventMouse:
		if ev.Key == termbox.MouseLeft {
			return actMouse
		}
		return actNone
	case termbox.EventKey:
	default:
		return actNone
	}
	switch ev.Key {
	case termbox.KeyArrowUp:
		return actUp
	case termbox.KeyArrowDown:
		return actDown
	case termbox.KeyArrowLeft:
		return actLeft
	case termbox.KeyArrowRight:
		return actRight
	case termbox.KeySpace, termbox.KeyEnter:
		return actClick
	case termbox.KeyEsc, termbox.KeyCtrlC:
		return actQuit
	}
	switch ev.Ch {
	case 'k':
		return actUp
	case 'j':
		return actDown
	case 'h':
		return actLeft
	case 'l':
		return actRight
	case 'r':
		return actRestart
	case '?':
		return actHint
	case 'q':
		return actQuit
	}
	return actNone
}

// statusLine summarises a session for the line under the board.
func statusLine(p *message.Printer, s domain.Session) string {
	n := s.Board.Size()
	if s.Status == domain.StatusSolved {
		return p.Sprintf("Solved in %d moves! Press r for a new board, q to quit.", s.Moves)
	}
	return p.Sprintf("Moves: %d   Lit: %d/%d   (%s, %d×%d)", s.Moves, s.Board.Lit(), n*n, s.Difficulty, n, n)
}
