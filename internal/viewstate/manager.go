package viewstate

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/formansean/ufo-timline/internal/favorites"
)

// DefaultSessionTTL is how long an untouched session survives before the
// sweeper reclaims it.
const DefaultSessionTTL = 30 * time.Minute

// Manager owns the live sessions, keyed by minted session ID.
type Manager struct {
	mu        sync.Mutex
	sessions  map[string]*Session
	source    Source
	ttl       time.Duration
	width     float64
	globeSize float64
	favPath   string
}

// NewManager builds a manager that creates sessions over source with the
// given timeline width and globe size. A non-positive ttl falls back to
// DefaultSessionTTL.
func NewManager(source Source, width, globeSize float64, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Manager{
		sessions:  make(map[string]*Session),
		source:    source,
		ttl:       ttl,
		width:     width,
		globeSize: globeSize,
	}
}

// PersistFavorites makes sessions load their favorite marks from path
// and write them back on every change.
func (m *Manager) PersistFavorites(path string) {
	m.mu.Lock()
	m.favPath = path
	m.mu.Unlock()
}

// Create mints a new session and registers it. When favorites
// persistence is configured the session starts from the saved marks.
func (m *Manager) Create(now time.Time) (*Session, error) {
	m.mu.Lock()
	favPath := m.favPath
	m.mu.Unlock()

	s := NewSession(uuid.NewString(), m.source, m.width, m.globeSize, now)
	if favPath != "" {
		saved, err := favorites.Load(favPath)
		if err != nil {
			s.Close()
			return nil, errors.Wrap(err, "load favorites")
		}
		s.adoptFavorites(saved, favPath)
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s, nil
}

// Get looks up a session and records the access for idle expiry.
func (m *Manager) Get(id string, now time.Time) (*Session, bool) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if ok {
		s.Touch(now)
	}
	return s, ok
}

// Delete removes a session and releases its timers.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		s.Close()
	}
}

// Len reports the live session count.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep reclaims sessions idle longer than the TTL and returns how many
// were removed.
func (m *Manager) Sweep(now time.Time) int {
	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		if now.Sub(s.lastTouched()) > m.ttl {
			delete(m.sessions, id)
			expired = append(expired, s)
		}
	}
	m.mu.Unlock()
	for _, s := range expired {
		s.Close()
	}
	return len(expired)
}
