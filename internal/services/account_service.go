package services

import (
	"context"
	"errors"
	"log"
	"time"

	"authd/internal/common"
	"authd/internal/models"
	"authd/internal/repositories"

	"github.com/google/uuid"
)

// RegisterInput carries the fields required to create an account. Boundary
// validation (email syntax, length bounds) happens before this is built.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// UpdateUserInput is a tri-state patch: a nil field is untouched, a non-nil
// field is written. Present-but-empty is the caller's mistake and is rejected
// at the boundary before reaching the service.
type UpdateUserInput struct {
	Email     *string
	FirstName *string
	LastName  *string
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User      *models.PublicUser `json:"user"`
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"expires_at"`
}

// AccountService orchestrates registration, login, logout, profile updates,
// and password changes over the user and session stores.
type AccountService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResponse, error)
	Login(ctx context.Context, email, password string) (*AuthResponse, error)
	Logout(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, token string) (*models.PublicUser, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, patch UpdateUserInput) (*models.PublicUser, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error
}

type accountService struct {
	users    repositories.UserRepository
	sessions SessionService
	hasher   PasswordHasher
}

func NewAccountService(users repositories.UserRepository, sessions SessionService, hasher PasswordHasher) AccountService {
	return &accountService{users: users, sessions: sessions, hasher: hasher}
}

// Register creates the user and immediately issues a session. The unique
// constraint on users.email decides concurrent duplicate registrations; the
// insert either lands or comes back as ErrEmailTaken.
func (s *accountService) Register(ctx context.Context, input RegisterInput) (*AuthResponse, error) {
	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &models.User{
		ID:           uuid.New(),
		Email:        input.Email,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	session, err := s.sessions.Issue(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{User: user.Public(), Token: session.Token, ExpiresAt: session.ExpiresAt}, nil
}

// Login verifies credentials and issues a fresh session. Unknown email and
// wrong password return the same ErrInvalidCredentials.
func (s *accountService) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, common.ErrAccountDeactivated
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}

	session, err := s.sessions.Issue(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{User: user.Public(), Token: session.Token, ExpiresAt: session.ExpiresAt}, nil
}

// Logout always succeeds, whether or not the token exists.
func (s *accountService) Logout(ctx context.Context, token string) error {
	return s.sessions.RevokeByToken(ctx, token)
}

func (s *accountService) CurrentUser(ctx context.Context, token string) (*models.PublicUser, error) {
	return s.sessions.Authenticate(ctx, token)
}

// UpdateProfile applies only the fields present in the patch. The id is
// caller-supplied; ownership has already been verified at the boundary.
func (s *accountService) UpdateProfile(ctx context.Context, id uuid.UUID, patch UpdateUserInput) (*models.PublicUser, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Email != nil && *patch.Email != user.Email {
		taken, err := s.users.EmailTakenByOther(ctx, *patch.Email, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, common.ErrEmailTaken
		}
	}

	if patch.Email != nil {
		user.Email = *patch.Email
	}
	if patch.FirstName != nil {
		user.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		user.LastName = *patch.LastName
	}
	user.UpdatedAt = time.Now()

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return user.Public(), nil
}

// ChangePassword re-derives the stored hash and revokes every session the
// user holds, forcing re-login on all devices. Setting the same password
// again is a normal successful change.
func (s *accountService) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if !s.hasher.Verify(currentPassword, user.PasswordHash) {
		return common.ErrIncorrectPassword
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = hash
	user.UpdatedAt = time.Now()
	if err := s.users.UpdatePassword(ctx, user); err != nil {
		return err
	}

	revoked, err := s.sessions.RevokeAllForUser(ctx, userID)
	if err != nil {
		return err
	}
	log.Printf("password changed for user %s, revoked %d sessions", userID, revoked)
	return nil
}
