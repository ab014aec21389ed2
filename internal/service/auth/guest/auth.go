// Package service_guest_auth is the identity collaborator: it hands out
// bearer tokens for anonymous guests and resolves them back to stable user
// ids. The coordination engine trusts the resolved id and nothing else.
package service_guest_auth

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/quipstack/core/internal/model"
)

var ErrInternal = errors.New("internal error")

const defaultSessionTTL = 12 * time.Hour

type SessionStore interface {
	Set(key string, value string, ttl time.Duration) error
	Get(key string) (string, error)
}

type Service struct {
	sessions SessionStore
	ttl      time.Duration
}

func New(sessions SessionStore, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &Service{
		sessions: sessions,
		ttl:      ttl,
	}
}

// SignIn mints a fresh guest identity and the token that proves it.
func (s *Service) SignIn() (token string, userID model.UserID, err error) {
	userID = model.UserID(uuid.New().String())
	token = uuid.New().String()

	if err := s.sessions.Set(token, string(userID), s.ttl); err != nil {
		return "", model.EmptyUserID, errors.Join(ErrInternal, err)
	}
	return token, userID, nil
}

// Resolve maps a token to its user. Unknown or expired tokens come back as
// EmptyUserID without error; that is the "unauthenticated" signal.
func (s *Service) Resolve(token string) (model.UserID, error) {
	if token == "" {
		return model.EmptyUserID, nil
	}

	v, err := s.sessions.Get(token)
	if err != nil {
		return model.EmptyUserID, errors.Join(ErrInternal, err)
	}
	return model.UserID(v), nil
}
