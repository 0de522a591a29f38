package session

import (
	"context"
	"sync"
	"time"

	"pricedash/domain/core"
	"pricedash/internal"
	"pricedash/internal/errors"
)

// Manager owns the live sessions, keyed by a time-ordered UUID.
type Manager struct {
	cfg Config
	pub Publisher
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a session manager publishing patches to pub.
func NewManager(cfg Config, pub Publisher) *Manager {
	if cfg.Logger == nil {
		cfg.Logger = internal.DefaultLogger
	}
	if cfg.IdleExpiry <= 0 {
		cfg.IdleExpiry = 2 * time.Hour
	}
	return &Manager{
		cfg:      cfg,
		pub:      pub,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Create starts a new session.
func (m *Manager) Create(ctx context.Context) (*Session, error) {
	return m.create(ctx, core.NewSessionID().String())
}

func (m *Manager) create(ctx context.Context, id string) (*Session, error) {
	s, err := newSession(ctx, id, m.cfg, m.pub)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create session")
	}
	s.Touch(m.now())

	m.mu.Lock()
	if live, ok := m.sessions[id]; ok {
		m.mu.Unlock()
		s.Close()
		return live, nil
	}
	m.sessions[id] = s
	n := len(m.sessions)
	m.mu.Unlock()

	m.cfg.Logger.Info("[Session] Created session %s (active: %d)", id, n)
	return s, nil
}

// Get returns a live session and records activity on it.
func (m *Manager) Get(id string) (*Session, bool) {
	if _, err := core.ParseSessionID(id); err != nil {
		return nil, false
	}
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if ok {
		s.Touch(m.now())
	}
	return s, ok
}

// GetOrCreate returns the session for id. An expired but well-formed id is
// revived under the same id so its stored preferences apply again; anything
// else gets a fresh session. created reports whether a session was built.
func (m *Manager) GetOrCreate(ctx context.Context, id string) (s *Session, created bool, err error) {
	if s, ok := m.Get(id); ok {
		return s, false, nil
	}
	if sid, perr := core.ParseSessionID(id); perr == nil {
		s, err = m.create(ctx, sid.String())
	} else {
		s, err = m.Create(ctx)
	}
	return s, err == nil, err
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep closes sessions idle for longer than the expiry and returns how many.
func (m *Manager) Sweep() int {
	cutoff := m.now().Add(-m.cfg.IdleExpiry)
	var expired []*Session

	m.mu.Lock()
	for id, s := range m.sessions {
		if s.LastSeen().Before(cutoff) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}
	if len(expired) > 0 {
		m.cfg.Logger.Info("[Session] Expired %d idle sessions", len(expired))
	}
	return len(expired)
}

// Run sweeps idle sessions until ctx is done.
func (m *Manager) Run(ctx context.Context) {
	interval := m.cfg.IdleExpiry / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

// Close closes every session.
func (m *Manager) Close() {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for id, s := range m.sessions {
		all = append(all, s)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, s := range all {
		s.Close()
	}
}
