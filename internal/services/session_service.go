package services

import (
	"context"
	"time"

	"github.com/fliproyale/waitlist/internal/repositories"
	"github.com/google/uuid"
)

// SessionService issues opaque session tokens with a fixed lifetime. Sessions are not renewed.
type SessionService struct {
	sessions *repositories.SessionRepo
	ttl      time.Duration
	newToken func() string
}

func NewSessionService(sessions *repositories.SessionRepo, ttl time.Duration) *SessionService {
	return &SessionService{sessions: sessions, ttl: ttl, newToken: uuid.NewString}
}

func (s *SessionService) TTL() time.Duration { return s.ttl }

func (s *SessionService) CreateSession(ctx context.Context, userID string) (string, error) {
	token := s.newToken()
	if err := s.sessions.Create(ctx, token, userID, s.ttl); err != nil {
		return "", err
	}
	return token, nil
}

// ResolveSession returns ErrSessionInvalid for empty, unknown and expired tokens alike.
func (s *SessionService) ResolveSession(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrSessionInvalid
	}
	userID, found, err := s.sessions.Resolve(ctx, token)
	if err != nil {
		return "", err
	}
	if !found {
		return "", ErrSessionInvalid
	}
	return userID, nil
}
