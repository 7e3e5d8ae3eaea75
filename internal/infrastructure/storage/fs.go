package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"questaroo.app/lightson/internal/domain"
)

var (
	// ErrNotFound is returned when a puzzle or session does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidID rejects identifiers that are empty or unsafe as file names.
	ErrInvalidID = errors.New("invalid id")
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// CheckID reports ErrInvalidID for ids that are not plain tokens.
func CheckID(id string) error {
	if !idPattern.MatchString(id) {
		return errors.Wrapf(ErrInvalidID, "%q", id)
	}
	return nil
}

// FS stores puzzles as JSON files under one folder per difficulty.
type FS struct{ dir string }

func NewFS(dir string) *FS { return &FS{dir: dir} }

var difficulties = []domain.Difficulty{domain.Easy, domain.Medium, domain.Hard}

func (s *FS) pathFor(id string, d domain.Difficulty) string {
	return filepath.Join(s.dir, d.String(), strings.TrimSpace(id)+".json")
}

func (s *FS) Save(ctx context.Context, p *domain.Puzzle) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p == nil {
		return errors.New("invalid puzzle: nil")
	}
	if err := CheckID(p.ID); err != nil {
		return err
	}
	if p.Difficulty < domain.Easy || p.Difficulty > domain.Hard {
		p.Difficulty = domain.Medium
	}
	// drop copies filed under another difficulty so Load stays unambiguous
	for _, d := range difficulties {
		if d == p.Difficulty {
			continue
		}
		if err := os.Remove(s.pathFor(p.ID, d)); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, "remove stale %s copy", d)
		}
	}
	target := s.pathFor(p.ID, p.Difficulty)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return errors.Wrap(err, "create puzzle dir")
	}
	f, err := os.Create(target)
	if err != nil {
		return errors.Wrap(err, "create puzzle file")
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(p), "encode puzzle")
}

func (s *FS) Load(ctx context.Context, id string) (*domain.Puzzle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := CheckID(id); err != nil {
		return nil, err
	}
	for _, d := range difficulties {
		data, err := os.ReadFile(s.pathFor(id, d))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, errors.Wrap(err, "read puzzle")
		}
		var out domain.Puzzle
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, errors.Wrapf(err, "decode puzzle %s", id)
		}
		out.Difficulty = d // the folder is authoritative
		return &out, nil
	}
	return nil, errors.Wrapf(ErrNotFound, "puzzle %s", id)
}

func (s *FS) List(ctx context.Context) ([]domain.PuzzleMeta, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	type m struct {
		ID     string        `json:"id"`
		Name   string        `json:"name,omitempty"`
		Params domain.Params `json:"params"`
		// board is only read for its size when params are absent
		Board     domain.Board `json:"board"`
		CreatedAt int64        `json:"createdAt"`
	}

	out := []domain.PuzzleMeta{}
	for _, d := range difficulties {
		dir := filepath.Join(s.dir, d.String())
		ents, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, errors.Wrap(err, "list puzzles")
		}
		for _, e := range ents {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
				continue
			}
			data, err := os.ReadFile(filepath.Join(dir, e.Name()))
			if err != nil {
				continue
			}
			var mm m
			if err := json.Unmarshal(data, &mm); err != nil || mm.ID == "" {
				continue
			}
			size := mm.Params.Size
			if size == 0 {
				size = mm.Board.Size()
			}
			out = append(out, domain.PuzzleMeta{
				ID:         mm.ID,
				Name:       mm.Name,
				Difficulty: d,
				Size:       size,
				CreatedAt:  mm.CreatedAt,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
