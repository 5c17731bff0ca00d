package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/justestif/moodtune/internal/recommend"
)

const (
	sessionCookieName = "moodtune_session"
	defaultSessionTTL = 24 * time.Hour
)

// Session is one browser's recommendation state.
type Session struct {
	ID           string
	Orchestrator *recommend.Orchestrator
	CreatedAt    time.Time
	LastSeen     time.Time
}

// SessionStore keeps an orchestrator per browser session in memory.
// Sessions idle for longer than the TTL are closed and replaced.
type SessionStore struct {
	newOrchestrator func() *recommend.Orchestrator
	ttl             time.Duration
	now             func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionStore creates a new in-memory session store.
func NewSessionStore(factory func() *recommend.Orchestrator, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionStore{
		newOrchestrator: factory,
		ttl:             ttl,
		now:             time.Now,
		sessions:        make(map[string]*Session),
	}
}

// Get returns the live session with id, or nil.
func (s *SessionStore) Get(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(id)
}

func (s *SessionStore) getLocked(id string) *Session {
	session, ok := s.sessions[id]
	if !ok {
		return nil
	}
	now := s.now()
	if now.Sub(session.LastSeen) > s.ttl {
		delete(s.sessions, id)
		session.Orchestrator.Close()
		return nil
	}
	session.LastSeen = now
	return session
}

// FromRequest returns the request's session, creating one and setting the
// cookie when the request has none or it expired.
func (s *SessionStore) FromRequest(w http.ResponseWriter, r *http.Request) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if session := s.getLocked(cookie.Value); session != nil {
			return session
		}
	}

	now := s.now()
	session := &Session{
		ID:           uuid.NewString(),
		Orchestrator: s.newOrchestrator(),
		CreatedAt:    now,
		LastSeen:     now,
	}
	s.sessions[session.ID] = session
	s.pruneLocked()

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    session.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.ttl.Seconds()),
	})
	return session
}

// pruneLocked closes every expired session.
func (s *SessionStore) pruneLocked() {
	now := s.now()
	for id, session := range s.sessions {
		if now.Sub(session.LastSeen) > s.ttl {
			delete(s.sessions, id)
			session.Orchestrator.Close()
		}
	}
}

// Len returns the number of stored sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Close closes every session's orchestrator.
func (s *SessionStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, session := range s.sessions {
		session.Orchestrator.Close()
		delete(s.sessions, id)
	}
}
