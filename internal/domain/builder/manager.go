package builder

import (
	"context"
	"errors"
	"sync"
	"time"

	"kashpages/internal/domain/access"
	"kashpages/internal/persist"
	"kashpages/internal/platform/logger"
)

// Manager keeps the live sessions of every principal.
type Manager struct {
	log *logger.Logger
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(log *logger.Logger) *Manager {
	if log == nil {
		log = logger.Nop()
	}
	return &Manager{log: log.With("component", "builder"), now: time.Now, sessions: map[string]*Session{}}
}

func (m *Manager) Add(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID()] = s
}

// Get returns a session owned by p. Sessions of other principals are not found.
func (m *Manager) Get(p access.Principal, id string) (*Session, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok || s.Principal().UserID != p.UserID || s.Closed() {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Find returns p's open session on ref, if any.
func (m *Manager) Find(p access.Principal, ref persist.Ref) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.Principal().UserID == p.UserID && s.Ref() == ref && !s.Closed() {
			return s, true
		}
	}
	return nil, false
}

// Close ends and forgets a session. Unsaved edits are discarded.
func (m *Manager) Close(p access.Principal, id string) error {
	s, err := m.Get(p, id)
	if err != nil {
		return err
	}
	s.Close()
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) snapshot() []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}

// AutoSaveDirty saves every dirty session. Failures are logged and joined; the
// failing sessions stay dirty.
func (m *Manager) AutoSaveDirty(ctx context.Context) (int, error) {
	saved := 0
	var errs []error
	for _, s := range m.snapshot() {
		if s.Closed() || !s.Dirty() {
			continue
		}
		if err := s.Save(ctx); err != nil {
			m.log.Warn("autosave failed", "session_id", s.ID(), "ref", s.Ref().String(), "error", err)
			errs = append(errs, err)
			continue
		}
		saved++
	}
	return saved, errors.Join(errs...)
}

// SweepIdle closes sessions idle for longer than ttl. Dirty sessions are saved
// first; one that cannot be saved is kept for the next sweep.
func (m *Manager) SweepIdle(ctx context.Context, ttl time.Duration) int {
	cutoff := m.now().Add(-ttl)
	closed := 0
	for _, s := range m.snapshot() {
		if !s.Closed() && s.LastActive().After(cutoff) {
			continue
		}
		if !s.Closed() && s.Dirty() {
			if err := s.Save(ctx); err != nil {
				m.log.Warn("idle session not saved", "session_id", s.ID(), "error", err)
				continue
			}
		}
		s.Close()
		m.mu.Lock()
		delete(m.sessions, s.ID())
		m.mu.Unlock()
		closed++
	}
	if closed > 0 {
		m.log.Info("idle builder sessions closed", "count", closed)
	}
	return closed
}
