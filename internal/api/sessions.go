package api

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"price-compare-storefront/internal/catalog"
)

var (
	ErrSessionNotFound = errors.New("api: session not found")
	ErrTooManySessions = errors.New("api: too many active sessions")
)

// Session is one browser's storefront state. The controller is only
// touched through Do, which serializes concurrent requests of the same session.
type Session struct {
	ID string

	mu       sync.Mutex
	ctrl     *catalog.Controller
	lastSeen time.Time
}

// Do runs fn with exclusive access to the session controller.
func (s *Session) Do(fn func(c *catalog.Controller)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.ctrl)
}

// SessionRegistry keeps storefront sessions in memory, bounded in count and
// expired after an idle period.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	idleTTL  time.Duration
	max      int
	now      func() time.Time
}

// NewSessionRegistry creates a registry. idleTTL <= 0 disables expiry.
func NewSessionRegistry(idleTTL time.Duration, maxSessions int) *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*Session),
		idleTTL:  idleTTL,
		max:      maxSessions,
		now:      time.Now,
	}
}

// Create starts a session over snap with the default UI state.
func (r *SessionRegistry) Create(snap catalog.Snapshot) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sweepLocked()
	if r.max > 0 && len(r.sessions) >= r.max {
		return nil, ErrTooManySessions
	}

	s := &Session{
		ID:       uuid.NewString(),
		ctrl:     catalog.NewControllerFrom(snap),
		lastSeen: r.now(),
	}
	r.sessions[s.ID] = s
	return s, nil
}

// Get returns a live session and marks it as used.
func (r *SessionRegistry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if r.expired(s) {
		delete(r.sessions, id)
		return nil, ErrSessionNotFound
	}
	s.lastSeen = r.now()
	return s, nil
}

// Delete ends a session.
func (r *SessionRegistry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(r.sessions, id)
	return nil
}

// Sweep drops idle sessions and returns how many were removed.
func (r *SessionRegistry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sweepLocked()
}

func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *SessionRegistry) sweepLocked() int {
	removed := 0
	for id, s := range r.sessions {
		if r.expired(s) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

func (r *SessionRegistry) expired(s *Session) bool {
	return r.idleTTL > 0 && r.now().Sub(s.lastSeen) > r.idleTTL
}
