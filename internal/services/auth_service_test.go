package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"dataclinica/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceTestSuite struct {
	suite.Suite
	userRepo   *MockUserRepository
	tenantRepo *MockTenantRepository
	cacheSvc   *MockCacheService
	service    AuthService

	ctx      context.Context
	tenantID uuid.UUID
	userID   uuid.UUID
}

func (s *AuthServiceTestSuite) SetupTest() {
	s.userRepo = new(MockUserRepository)
	s.tenantRepo = new(MockTenantRepository)
	s.cacheSvc = new(MockCacheService)
	s.service = NewAuthService(s.userRepo, s.tenantRepo, s.cacheSvc, "test-secret", 15*time.Minute, 7*24*time.Hour)

	s.ctx = context.Background()
	s.tenantID = uuid.New()
	s.userID = uuid.New()
}

func (s *AuthServiceTestSuite) activeUser(password string) *models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	assert.NoError(s.T(), err)
	return &models.User{
		ID:           s.userID,
		TenantID:     s.tenantID,
		Email:        "ana@san-rafael.example",
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		Status:       "active",
	}
}

func (s *AuthServiceTestSuite) TestLogin_Success() {
	user := s.activeUser("correct-horse-battery")
	s.cacheSvc.On("IncrementRateLimit", s.ctx, "login:ana@san-rafael.example", 15*time.Minute).Return(int64(1), nil)
	s.userRepo.On("GetByEmail", s.ctx, user.Email).Return(user, nil)
	s.cacheSvc.On("SetRefreshToken", s.ctx, mock.AnythingOfType("string"), s.tenantID.String()+":"+s.userID.String(), 7*24*time.Hour).Return(nil)

	tokens, err := s.service.Login(s.ctx, user.Email, "correct-horse-battery")

	assert.NoError(s.T(), err)
	assert.NotEmpty(s.T(), tokens.AccessToken)
	assert.NotEmpty(s.T(), tokens.RefreshToken)
	assert.Equal(s.T(), s.userID.String(), tokens.UserID)
	s.cacheSvc.AssertExpectations(s.T())
}

func (s *AuthServiceTestSuite) TestLogin_WrongPassword() {
	user := s.activeUser("correct-horse-battery")
	s.cacheSvc.On("IncrementRateLimit", s.ctx, "login:ana@san-rafael.example", 15*time.Minute).Return(int64(2), nil)
	s.userRepo.On("GetByEmail", s.ctx, user.Email).Return(user, nil)

	tokens, err := s.service.Login(s.ctx, user.Email, "wrong")

	assert.Nil(s.T(), tokens)
	assert.ErrorIs(s.T(), err, ErrUnauthorized)
}

func (s *AuthServiceTestSuite) TestLogin_RateLimited() {
	s.cacheSvc.On("IncrementRateLimit", s.ctx, "login:ana@san-rafael.example", 15*time.Minute).Return(int64(6), nil)

	tokens, err := s.service.Login(s.ctx, "ana@san-rafael.example", "whatever")

	assert.Nil(s.T(), tokens)
	assert.ErrorIs(s.T(), err, ErrRateLimited)
	// A limited attempt must not touch credentials at all.
	s.userRepo.AssertNotCalled(s.T(), "GetByEmail")
}

func (s *AuthServiceTestSuite) TestLogin_LimiterUnavailableDegradesOpen() {
	user := s.activeUser("correct-horse-battery")
	s.cacheSvc.On("IncrementRateLimit", s.ctx, "login:ana@san-rafael.example", 15*time.Minute).Return(int64(0), errors.New("redis down"))
	s.userRepo.On("GetByEmail", s.ctx, user.Email).Return(user, nil)
	s.cacheSvc.On("SetRefreshToken", s.ctx, mock.AnythingOfType("string"), s.tenantID.String()+":"+s.userID.String(), 7*24*time.Hour).Return(nil)

	tokens, err := s.service.Login(s.ctx, user.Email, "correct-horse-battery")

	assert.NoError(s.T(), err)
	assert.NotEmpty(s.T(), tokens.AccessToken)
}

func (s *AuthServiceTestSuite) TestLogin_UnknownEmail() {
	s.cacheSvc.On("IncrementRateLimit", s.ctx, "login:nobody@san-rafael.example", 15*time.Minute).Return(int64(1), nil)
	s.userRepo.On("GetByEmail", s.ctx, "nobody@san-rafael.example").Return(nil, pgx.ErrNoRows)

	tokens, err := s.service.Login(s.ctx, "nobody@san-rafael.example", "whatever")

	assert.Nil(s.T(), tokens)
	assert.ErrorIs(s.T(), err, ErrUnauthorized)
}

func (s *AuthServiceTestSuite) TestLogin_DisabledAccount() {
	user := s.activeUser("correct-horse-battery")
	user.Status = "disabled"
	s.cacheSvc.On("IncrementRateLimit", s.ctx, "login:ana@san-rafael.example", 15*time.Minute).Return(int64(1), nil)
	s.userRepo.On("GetByEmail", s.ctx, user.Email).Return(user, nil)

	tokens, err := s.service.Login(s.ctx, user.Email, "correct-horse-battery")

	assert.Nil(s.T(), tokens)
	assert.ErrorIs(s.T(), err, ErrUnauthorized)
}

func (s *AuthServiceTestSuite) TestRefresh_RotatesToken() {
	user := s.activeUser("correct-horse-battery")
	presented := "refresh-token-value"
	storedHash := hashToken(presented)
	s.cacheSvc.On("GetRefreshToken", s.ctx, storedHash).Return(s.tenantID.String()+":"+s.userID.String(), nil)
	s.userRepo.On("GetByID", s.ctx, s.tenantID, s.userID).Return(user, nil)
	s.cacheSvc.On("DeleteRefreshToken", s.ctx, storedHash).Return(nil)
	s.cacheSvc.On("SetRefreshToken", s.ctx, mock.AnythingOfType("string"), s.tenantID.String()+":"+s.userID.String(), 7*24*time.Hour).Return(nil)

	tokens, err := s.service.Refresh(s.ctx, presented)

	assert.NoError(s.T(), err)
	assert.NotEqual(s.T(), presented, tokens.RefreshToken)
	s.cacheSvc.AssertCalled(s.T(), "DeleteRefreshToken", s.ctx, storedHash)
}

func (s *AuthServiceTestSuite) TestRefresh_UnknownToken() {
	s.cacheSvc.On("GetRefreshToken", s.ctx, hashToken("stale")).Return("", nil)

	tokens, err := s.service.Refresh(s.ctx, "stale")

	assert.Nil(s.T(), tokens)
	assert.ErrorIs(s.T(), err, ErrUnauthorized)
	s.userRepo.AssertNotCalled(s.T(), "GetByID")
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
