package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-crudform/pkg/surface"
)

const sessionCookieName = "crudform_session"

// session is the form state of one browser. mu serializes its render passes.
type session struct {
	mu       sync.Mutex
	state    *surface.MemoryState
	lastSeen time.Time
}

// sessions maps cookie ids onto sessions and forgets idle ones.
type sessions struct {
	mu   sync.Mutex
	byID map[string]*session
	ttl  time.Duration
	now  func() time.Time
}

func newSessions(ttl time.Duration) *sessions {
	return &sessions{byID: make(map[string]*session), ttl: ttl, now: time.Now}
}

// acquire returns the session named by the request cookie, starting a new one
// (and setting the cookie) when it is missing, malformed or expired.
func (s *sessions) acquire(w http.ResponseWriter, r *http.Request) *session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.pruneLocked(now)

	if c, err := r.Cookie(sessionCookieName); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			if sess, ok := s.byID[id.String()]; ok {
				sess.lastSeen = now
				return sess
			}
		}
	}

	id := uuid.NewString()
	sess := &session{state: surface.NewMemoryState(), lastSeen: now}
	s.byID[id] = sess
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess
}

func (s *sessions) pruneLocked(now time.Time) {
	if s.ttl <= 0 {
		return
	}
	for id, sess := range s.byID {
		if now.Sub(sess.lastSeen) > s.ttl {
			delete(s.byID, id)
		}
	}
}

func (s *sessions) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}
