package background

import (
	"context"
	"errors"
	"testing"

	"authd/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) Issue(ctx context.Context, userID uuid.UUID) (*models.Session, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockSessionService) Authenticate(ctx context.Context, token string) (*models.PublicUser, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PublicUser), args.Error(1)
}

func (m *MockSessionService) RevokeByToken(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockSessionService) RevokeAllForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSessionService) SweepExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func TestNewJobSchedulerRegistersSweep(t *testing.T) {
	sessions := new(MockSessionService)

	js, err := NewJobScheduler(sessions)
	require.NoError(t, err)
	defer js.Stop()

	js.mu.RLock()
	_, ok := js.jobs["session-expiry-sweep"]
	js.mu.RUnlock()
	assert.True(t, ok)
}

func TestSweepExpiredSessions(t *testing.T) {
	sessions := new(MockSessionService)
	sessions.On("SweepExpired", mock.Anything).Return(int64(3), nil)

	js, err := NewJobScheduler(sessions)
	require.NoError(t, err)
	defer js.Stop()

	js.sweepExpiredSessions(context.Background())
	sessions.AssertExpectations(t)
}

func TestSweepExpiredSessionsError(t *testing.T) {
	sessions := new(MockSessionService)
	sessions.On("SweepExpired", mock.Anything).Return(int64(0), errors.New("connection refused"))

	js, err := NewJobScheduler(sessions)
	require.NoError(t, err)
	defer js.Stop()

	// Must not panic; the error is logged and the next run retries.
	js.sweepExpiredSessions(context.Background())
	sessions.AssertExpectations(t)
}
