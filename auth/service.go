package auth

import (
	"time"

	"jiahe-site/models"
)

// AdminSource yields the admin credentials currently in effect.
type AdminSource func() models.AdminConfig

// Service ties sessions to signed tokens.
type Service struct {
	jwt      *JWTService
	sessions *SessionStore
	admin    AdminSource
}

func NewService(secretKey string, admin AdminSource) *Service {
	return &Service{
		jwt:      NewJWTService(secretKey),
		sessions: NewSessionStore(TokenTTL + time.Hour),
		admin:    admin,
	}
}

// Login opens a session for a valid pair and returns its token.
func (s *Service) Login(username, password string) (*Session, string, error) {
	session := NewSession()
	if err := session.Login(s.admin(), username, password); err != nil {
		return nil, "", err
	}
	token, err := s.jwt.GenerateToken(session.ID, session.Username())
	if err != nil {
		return nil, "", err
	}
	s.sessions.Add(session)
	return session, token, nil
}

// Authenticate resolves a token to its live session.
func (s *Service) Authenticate(token string) (*Session, error) {
	claims, err := s.jwt.ParseToken(token)
	if err != nil {
		return nil, err
	}
	return s.sessions.Get(claims.ID)
}

// Logout closes the session behind token. Unknown or expired tokens are
// ignored; the caller ends up logged out either way.
func (s *Service) Logout(token string) {
	claims, err := s.jwt.ParseToken(token)
	if err != nil {
		return
	}
	s.sessions.Remove(claims.ID)
}
