package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"authd/internal/common"
	"authd/internal/models"
	"authd/internal/repositories"

	"github.com/google/uuid"
)

// DefaultSessionTTL is how long an issued session stays valid.
const DefaultSessionTTL = 24 * time.Hour

const tokenBytes = 32 // 256 bits of entropy per token

// SessionService issues, authenticates, and revokes sessions.
type SessionService interface {
	Issue(ctx context.Context, userID uuid.UUID) (*models.Session, error)
	Authenticate(ctx context.Context, token string) (*models.PublicUser, error)
	RevokeByToken(ctx context.Context, token string) error
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) (int64, error)
	SweepExpired(ctx context.Context) (int64, error)
}

type sessionService struct {
	sessions repositories.SessionRepository
	users    repositories.UserRepository
	ttl      time.Duration
}

// NewSessionService creates a session service. A non-positive ttl falls back
// to DefaultSessionTTL.
func NewSessionService(sessions repositories.SessionRepository, users repositories.UserRepository, ttl time.Duration) SessionService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &sessionService{sessions: sessions, users: users, ttl: ttl}
}

// Issue generates an unguessable token, persists one new session row, and
// returns it. Token collisions are surfaced as errors, never retried.
func (s *sessionService) Issue(ctx context.Context, userID uuid.UUID) (*models.Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session := &models.Session{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     token,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Authenticate runs the token through the validation pipeline:
// lookup, expiry check, active check. Unknown and expired tokens both fail
// with ErrInvalidSession so a caller cannot probe which tokens once existed.
func (s *sessionService) Authenticate(ctx context.Context, token string) (*models.PublicUser, error) {
	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	// The boundary is inclusive: a session is invalid exactly at its expiry instant.
	if !time.Now().Before(session.ExpiresAt) {
		return nil, common.ErrInvalidSession
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			// The cascade should make this unreachable; fail closed anyway.
			return nil, common.ErrInvalidSession
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, common.ErrAccountInactive
	}

	return user.Public(), nil
}

func (s *sessionService) RevokeByToken(ctx context.Context, token string) error {
	return s.sessions.DeleteByToken(ctx, token)
}

func (s *sessionService) RevokeAllForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.sessions.DeleteByUserID(ctx, userID)
}

// SweepExpired prunes rows past their expiry instant. The authenticator never
// depends on the sweep for correctness; this only keeps the table small.
func (s *sessionService) SweepExpired(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx, time.Now())
}

func generateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
