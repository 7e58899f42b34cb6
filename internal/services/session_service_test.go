package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"authd/internal/common"
	"authd/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// Mock repositories

type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, session *models.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockSessionRepository) DeleteByToken(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockSessionRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) EmailTakenByOther(ctx context.Context, email string, excludeID uuid.UUID) (bool, error) {
	args := m.Called(ctx, email, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

type SessionServiceTestSuite struct {
	suite.Suite
	sessionRepo *MockSessionRepository
	userRepo    *MockUserRepository
	svc         SessionService
	ctx         context.Context
	userID      uuid.UUID
}

func (suite *SessionServiceTestSuite) SetupTest() {
	suite.sessionRepo = new(MockSessionRepository)
	suite.userRepo = new(MockUserRepository)
	suite.svc = NewSessionService(suite.sessionRepo, suite.userRepo, 0)
	suite.ctx = context.Background()
	suite.userID = uuid.New()
}

func TestSessionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SessionServiceTestSuite))
}

func (suite *SessionServiceTestSuite) activeUser() *models.User {
	return &models.User{
		ID:           suite.userID,
		Email:        "alice@example.com",
		PasswordHash: "$2a$10$irrelevant",
		FirstName:    "Alice",
		LastName:     "Lee",
		IsActive:     true,
		CreatedAt:    time.Now().Add(-time.Hour),
		UpdatedAt:    time.Now().Add(-time.Hour),
	}
}

func (suite *SessionServiceTestSuite) TestIssue_Success() {
	before := time.Now()
	suite.sessionRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.Session")).Return(nil)

	session, err := suite.svc.Issue(suite.ctx, suite.userID)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.userID, session.UserID)
	assert.Len(suite.T(), session.Token, 64) // 32 random bytes, hex encoded
	assert.False(suite.T(), session.ExpiresAt.Before(before.Add(DefaultSessionTTL)))
	suite.sessionRepo.AssertExpectations(suite.T())
}

func (suite *SessionServiceTestSuite) TestIssue_TokensAreUnique() {
	suite.sessionRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.Session")).Return(nil)

	s1, err := suite.svc.Issue(suite.ctx, suite.userID)
	assert.NoError(suite.T(), err)
	s2, err := suite.svc.Issue(suite.ctx, suite.userID)
	assert.NoError(suite.T(), err)

	assert.NotEqual(suite.T(), s1.Token, s2.Token)
}

func (suite *SessionServiceTestSuite) TestIssue_StoreFailure() {
	suite.sessionRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.Session")).Return(errors.New("insert failed"))

	session, err := suite.svc.Issue(suite.ctx, suite.userID)

	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), session)
}

func (suite *SessionServiceTestSuite) TestAuthenticate_Success() {
	session := &models.Session{
		ID:        uuid.New(),
		UserID:    suite.userID,
		Token:     "tok",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	user := suite.activeUser()
	suite.sessionRepo.On("GetByToken", suite.ctx, "tok").Return(session, nil)
	suite.userRepo.On("GetByID", suite.ctx, suite.userID).Return(user, nil)

	got, err := suite.svc.Authenticate(suite.ctx, "tok")

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), user.ID, got.ID)
	assert.Equal(suite.T(), user.Email, got.Email)
}

func (suite *SessionServiceTestSuite) TestAuthenticate_UnknownToken() {
	suite.sessionRepo.On("GetByToken", suite.ctx, "nope").Return(nil, common.ErrInvalidSession)

	got, err := suite.svc.Authenticate(suite.ctx, "nope")

	assert.ErrorIs(suite.T(), err, common.ErrInvalidSession)
	assert.Nil(suite.T(), got)
}

func (suite *SessionServiceTestSuite) TestAuthenticate_ExpiryBoundaryIsInclusive() {
	// A session expiring exactly "now" is already invalid by the time the
	// check runs: the check happens at now + epsilon for some epsilon >= 0.
	session := &models.Session{
		ID:        uuid.New(),
		UserID:    suite.userID,
		Token:     "tok",
		ExpiresAt: time.Now(),
	}
	suite.sessionRepo.On("GetByToken", suite.ctx, "tok").Return(session, nil)

	got, err := suite.svc.Authenticate(suite.ctx, "tok")

	assert.ErrorIs(suite.T(), err, common.ErrInvalidSession)
	assert.Nil(suite.T(), got)
	suite.userRepo.AssertNotCalled(suite.T(), "GetByID", mock.Anything, mock.Anything)
}

func (suite *SessionServiceTestSuite) TestAuthenticate_ExpiredLooksLikeUnknown() {
	session := &models.Session{
		ID:        uuid.New(),
		UserID:    suite.userID,
		Token:     "tok",
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	suite.sessionRepo.On("GetByToken", suite.ctx, "tok").Return(session, nil)
	suite.sessionRepo.On("GetByToken", suite.ctx, "unknown").Return(nil, common.ErrInvalidSession)

	_, expiredErr := suite.svc.Authenticate(suite.ctx, "tok")
	_, unknownErr := suite.svc.Authenticate(suite.ctx, "unknown")

	// Expired and never-existed tokens are indistinguishable to the caller.
	assert.Equal(suite.T(), expiredErr, unknownErr)
}

func (suite *SessionServiceTestSuite) TestAuthenticate_InactiveAccount() {
	session := &models.Session{
		ID:        uuid.New(),
		UserID:    suite.userID,
		Token:     "tok",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	user := suite.activeUser()
	user.IsActive = false
	suite.sessionRepo.On("GetByToken", suite.ctx, "tok").Return(session, nil)
	suite.userRepo.On("GetByID", suite.ctx, suite.userID).Return(user, nil)

	got, err := suite.svc.Authenticate(suite.ctx, "tok")

	assert.ErrorIs(suite.T(), err, common.ErrAccountInactive)
	assert.Nil(suite.T(), got)
}

func (suite *SessionServiceTestSuite) TestAuthenticate_OrphanedSessionFailsClosed() {
	session := &models.Session{
		ID:        uuid.New(),
		UserID:    suite.userID,
		Token:     "tok",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	suite.sessionRepo.On("GetByToken", suite.ctx, "tok").Return(session, nil)
	suite.userRepo.On("GetByID", suite.ctx, suite.userID).Return(nil, common.ErrUserNotFound)

	got, err := suite.svc.Authenticate(suite.ctx, "tok")

	assert.ErrorIs(suite.T(), err, common.ErrInvalidSession)
	assert.Nil(suite.T(), got)
}

func (suite *SessionServiceTestSuite) TestRevokeByToken() {
	suite.sessionRepo.On("DeleteByToken", suite.ctx, "tok").Return(nil)

	assert.NoError(suite.T(), suite.svc.RevokeByToken(suite.ctx, "tok"))
	suite.sessionRepo.AssertExpectations(suite.T())
}

func (suite *SessionServiceTestSuite) TestRevokeAllForUser() {
	suite.sessionRepo.On("DeleteByUserID", suite.ctx, suite.userID).Return(int64(3), nil)

	n, err := suite.svc.RevokeAllForUser(suite.ctx, suite.userID)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(3), n)
}

func (suite *SessionServiceTestSuite) TestSweepExpired() {
	suite.sessionRepo.On("DeleteExpired", suite.ctx, mock.AnythingOfType("time.Time")).Return(int64(5), nil)

	n, err := suite.svc.SweepExpired(suite.ctx)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(5), n)
}
