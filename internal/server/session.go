package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/example/cheatgen/internal/adapters/memory"
	"github.com/example/cheatgen/internal/app"
	"github.com/example/cheatgen/internal/core/interview"
	"github.com/example/cheatgen/internal/events"
	"github.com/example/cheatgen/internal/logging"
	"github.com/example/cheatgen/internal/ports/secondary"
	"github.com/example/cheatgen/internal/synth"
)

// Session is one browser's working schema. Requests on a session are
// serialized by mu.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu        sync.Mutex
	lastSeen  time.Time
	service   *app.ModelerServiceImpl
	bus       *events.Bus
	interview *interview.Interview
}

// SessionManager owns the live sessions.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	exports  secondary.ExportRepository
	defaults synth.Options
	logger   zerolog.Logger
	now      func() time.Time
}

// NewSessionManager creates a manager. Sessions idle longer than ttl are
// dropped; a zero ttl keeps them forever. exports may be nil.
func NewSessionManager(ttl time.Duration, exports secondary.ExportRepository, defaults synth.Options, logger zerolog.Logger) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		exports:  exports,
		defaults: defaults,
		logger:   logger,
		now:      time.Now,
	}
}

// Create starts a session with an empty schema.
func (m *SessionManager) Create() *Session {
	now := m.now()
	bus := events.NewBus(events.DefaultCapacity)
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		lastSeen:  now,
		bus:       bus,
		interview: interview.New(),
	}
	logger := m.logger.With().Str("session", s.ID).Logger()
	bus.Subscribe(logging.EventHandler(logger))
	s.service = app.NewModelerService(memory.NewSchemaStore(), m.exports, bus, m.defaults, logger)

	m.mu.Lock()
	m.pruneLocked(now)
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.logger.Debug().Str("session", s.ID).Msg("session created")
	return s
}

// Get returns a live session and marks it as seen.
func (m *SessionManager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}

	now := m.now()
	s.mu.Lock()
	expired := m.ttl > 0 && now.Sub(s.lastSeen) > m.ttl
	if !expired {
		s.lastSeen = now
	}
	s.mu.Unlock()
	if expired {
		m.Delete(id)
		return nil, false
	}
	return s, true
}

// Delete ends a session.
func (m *SessionManager) Delete(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	return ok
}

// Len returns the number of live sessions.
func (m *SessionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *SessionManager) pruneLocked(now time.Time) {
	if m.ttl <= 0 {
		return
	}
	for id, s := range m.sessions {
		s.mu.Lock()
		idle := now.Sub(s.lastSeen)
		s.mu.Unlock()
		if idle > m.ttl {
			delete(m.sessions, id)
			m.logger.Debug().Str("session", id).Dur("idle", idle).Msg("session expired")
		}
	}
}
