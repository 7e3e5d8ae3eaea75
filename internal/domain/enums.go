package domain

import (
	"fmt"
	"strings"
)

// Difficulty labels target puzzle generation density.
type Difficulty int

const (
	Easy Difficulty = iota
	Medium
	Hard
)

// Probability returns the per-cell toggle chance used when generating a board.
func (d Difficulty) Probability() float64 {
	switch d {
	case Easy:
		return 0.15
	case Hard:
		return 0.40
	default:
		return 0.25 // Medium
	}
}

// DifficultyFor maps a probability back to the nearest preset label.
func DifficultyFor(p float64) Difficulty {
	switch {
	case p < (Easy.Probability()+Medium.Probability())/2:
		return Easy
	case p < (Medium.Probability()+Hard.Probability())/2:
		return Medium
	default:
		return Hard
	}
}

func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	default:
		return "unknown"
	}
}

func (d Difficulty) MarshalText() ([]byte, error) {
	if d < Easy || d > Hard {
		return nil, fmt.Errorf("%w: %d", ErrUnknownDifficulty, int(d))
	}
	return []byte(d.String()), nil
}

func (d *Difficulty) UnmarshalText(b []byte) error {
	v, err := ParseDifficulty(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// ParseDifficulty converts a label to a Difficulty. Unknown labels yield
// Medium together with ErrUnknownDifficulty; an empty label is Medium.
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return Easy, nil
	case "", "medium":
		return Medium, nil
	case "hard":
		return Hard, nil
	default:
		return Medium, fmt.Errorf("%w: %q", ErrUnknownDifficulty, s)
	}
}

// Status is the state of a game session.
type Status int

const (
	StatusActive Status = iota // accepting moves
	StatusSolved               // terminal until restart
)

func (s Status) String() string {
	if s == StatusSolved {
		return "solved"
	}
	return "active"
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	switch string(b) {
	case "active":
		*s = StatusActive
	case "solved":
		*s = StatusSolved
	default:
		return fmt.Errorf("unknown session status %q", string(b))
	}
	return nil
}
