// Package memory keeps live game sessions in process memory.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"questaroo.app/lightson/internal/domain"
	"questaroo.app/lightson/internal/infrastructure/storage"
)

// ErrExists is returned by Create for a duplicate session ID.
var ErrExists = errors.New("session already exists")

// Sessions is a SessionStore. Every method copies sessions in and out, so
// callers never share a board with the store or with each other.
type Sessions struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
}

func NewSessions() *Sessions {
	return &Sessions{sessions: make(map[string]domain.Session)}
}

func (m *Sessions) Create(ctx context.Context, s domain.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.ID]; ok {
		return errors.Wrapf(ErrExists, "session %s", s.ID)
	}
	m.sessions[s.ID] = s.Clone()
	return nil
}

func (m *Sessions) Get(ctx context.Context, id string) (domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return domain.Session{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return domain.Session{}, errors.Wrapf(storage.ErrNotFound, "session %s", id)
	}
	return s.Clone(), nil
}

// Update serializes changes to one session: fn sees a private copy, and the
// copy is stored only when fn succeeds.
func (m *Sessions) Update(ctx context.Context, id string, fn func(*domain.Session) error) (domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return domain.Session{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return domain.Session{}, errors.Wrapf(storage.ErrNotFound, "session %s", id)
	}
	cur := s.Clone()
	if err := fn(&cur); err != nil {
		return s.Clone(), err
	}
	cur.ID = id
	m.sessions[id] = cur.Clone()
	return cur, nil
}

func (m *Sessions) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return errors.Wrapf(storage.ErrNotFound, "session %s", id)
	}
	delete(m.sessions, id)
	return nil
}

// Reap drops sessions not updated since olderThan and reports how many.
func (m *Sessions) Reap(olderThan time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if s.UpdatedAt.Before(olderThan) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

// Len reports the number of live sessions.
func (m *Sessions) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// RunReaper reaps sessions idle for longer than ttl every interval until ctx
// is done. onReap, when set, is told how many sessions each pass removed.
func (m *Sessions) RunReaper(ctx context.Context, ttl, interval time.Duration, onReap func(n int)) {
	if ttl <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := m.Reap(now.Add(-ttl)); n > 0 && onReap != nil {
				onReap(n)
			}
		}
	}
}
