package auth

import (
	"errors"
	"sync"
	"time"

	"jiahe-site/models"

	"github.com/google/uuid"
)

var ErrSessionClosed = errors.New("session has been logged out")

type State int

const (
	Unauthenticated State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// Session is one console visit. It only moves between states through
// Login and Logout; nothing expires it while it is held.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu        sync.Mutex
	state     State
	username  string
	drafts    map[string]any
	flashes   []string
}

func NewSession() *Session {
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		drafts:    make(map[string]any),
	}
}

// Login authenticates the session against admin. On failure the session
// keeps its state and the caller shows the error so the user can retry.
func (s *Session) Login(admin models.AdminConfig, username, password string) error {
	if err := VerifyCredentials(admin, username, password); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Authenticated
	s.username = username
	return nil
}

// Logout always ends in Unauthenticated and drops every edit buffer.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = Unauthenticated
	s.username = ""
	s.drafts = make(map[string]any)
	s.flashes = nil
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Username() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.username
}

// SetDraft opens (or replaces) the edit buffer of a collection.
func (s *Session) SetDraft(collection string, draft any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[collection] = draft
}

func (s *Session) Draft(collection string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[collection]
	return d, ok
}

func (s *Session) ClearDraft(collection string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, collection)
}

// AddFlash queues a message for the next console render.
func (s *Session) AddFlash(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flashes = append(s.flashes, msg)
}

func (s *Session) TakeFlashes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.flashes
	s.flashes = nil
	return out
}

// SessionStore holds the authenticated sessions of this process.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	maxAge   time.Duration
}

func NewSessionStore(maxAge time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		maxAge:   maxAge,
	}
}

func (st *SessionStore) Add(s *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.prune(time.Now())
	st.sessions[s.ID] = s
}

// Get returns an authenticated session by id.
func (st *SessionStore) Get(id string) (*Session, error) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()

	if !ok || s.State() != Authenticated {
		return nil, ErrSessionClosed
	}
	return s, nil
}

// Remove logs the session out and forgets it.
func (st *SessionStore) Remove(id string) {
	st.mu.Lock()
	s, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()

	if ok {
		s.Logout()
	}
}

func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// prune drops sessions whose token can no longer be valid. Caller holds mu.
func (st *SessionStore) prune(now time.Time) {
	if st.maxAge <= 0 {
		return
	}
	for id, s := range st.sessions {
		if now.Sub(s.CreatedAt) > st.maxAge {
			delete(st.sessions, id)
		}
	}
}
