package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"dataclinica/internal/caching"
	"dataclinica/internal/models"
	"dataclinica/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// TokenClaims are the JWT claims carried by access tokens.
type TokenClaims struct {
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// SignupRequest registers a new clinic with its first admin user.
type SignupRequest struct {
	ClinicName string `json:"clinic_name"`
	Subdomain  string `json:"subdomain"`
	License    string `json:"license"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
}

type AuthService interface {
	Signup(ctx context.Context, req *SignupRequest) (*models.TokenResponse, error)
	Login(ctx context.Context, email, password string) (*models.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenResponse, error)
}

type authService struct {
	userRepo   repositories.UserRepository
	tenantRepo repositories.TenantRepository
	cacheSvc   caching.CacheService
	jwtSecret  []byte
	tokenTTL   time.Duration
	refreshTTL time.Duration
}

func NewAuthService(userRepo repositories.UserRepository, tenantRepo repositories.TenantRepository, cacheSvc caching.CacheService, jwtSecret string, tokenTTL, refreshTTL time.Duration) AuthService {
	return &authService{
		userRepo:   userRepo,
		tenantRepo: tenantRepo,
		cacheSvc:   cacheSvc,
		jwtSecret:  []byte(jwtSecret),
		tokenTTL:   tokenTTL,
		refreshTTL: refreshTTL,
	}
}

func (s *authService) Signup(ctx context.Context, req *SignupRequest) (*models.TokenResponse, error) {
	if req.Email == "" || req.Password == "" || req.ClinicName == "" || req.Subdomain == "" {
		return nil, fmt.Errorf("clinic_name, subdomain, email and password are required: %w", ErrValidation)
	}
	if len(req.Password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters: %w", ErrValidation)
	}

	if existing, err := s.userRepo.GetByEmail(ctx, req.Email); err != nil && err != pgx.ErrNoRows {
		return nil, err
	} else if existing != nil {
		return nil, fmt.Errorf("email already registered: %w", ErrValidation)
	}
	if existing, err := s.tenantRepo.GetBySubdomain(ctx, req.Subdomain); err != nil && err != pgx.ErrNoRows {
		return nil, err
	} else if existing != nil {
		return nil, fmt.Errorf("subdomain already taken: %w", ErrValidation)
	}

	tenant := &models.Tenant{
		ID:        uuid.New(),
		Name:      req.ClinicName,
		Subdomain: req.Subdomain,
		License:   req.License,
		Status:    models.TenantStatusActive,
	}
	if err := s.tenantRepo.Create(ctx, tenant); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.New(),
		TenantID:     tenant.ID,
		Email:        req.Email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         models.RoleAdmin,
		Status:       "active",
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.generateTokens(ctx, user)
}

// Login attempts are rate limited per email so a stolen address cannot be
// brute-forced. The limiter runs on redis; if redis is down logins still
// work, only the limit is lost.
const (
	maxLoginAttempts = 5
	loginLimitWindow = 15 * time.Minute
)

func (s *authService) Login(ctx context.Context, email, password string) (*models.TokenResponse, error) {
	attempts, err := s.cacheSvc.IncrementRateLimit(ctx, "login:"+strings.ToLower(email), loginLimitWindow)
	if err != nil {
		log.Warn().Err(err).Msg("login rate limiter unavailable")
	} else if attempts > maxLoginAttempts {
		return nil, fmt.Errorf("too many login attempts for %s: %w", email, ErrRateLimited)
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("invalid credentials: %w", ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	if user.Status != "active" {
		return nil, fmt.Errorf("account disabled: %w", ErrUnauthorized)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", ErrUnauthorized)
	}

	return s.generateTokens(ctx, user)
}

// Refresh rotates the refresh token: the presented token is consumed and a
// new pair is issued.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*models.TokenResponse, error) {
	tokenHash := hashToken(refreshToken)
	stored, err := s.cacheSvc.GetRefreshToken(ctx, tokenHash)
	if err != nil {
		return nil, err
	}
	if stored == "" {
		return nil, fmt.Errorf("invalid refresh token: %w", ErrUnauthorized)
	}

	tenantID, userID, err := parseRefreshValue(stored)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", ErrUnauthorized)
	}

	user, err := s.userRepo.GetByID(ctx, tenantID, userID)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("invalid refresh token: %w", ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	if user.Status != "active" {
		return nil, fmt.Errorf("account disabled: %w", ErrUnauthorized)
	}

	if err := s.cacheSvc.DeleteRefreshToken(ctx, tokenHash); err != nil {
		log.Warn().Err(err).Msg("failed to revoke consumed refresh token")
	}

	return s.generateTokens(ctx, user)
}

func (s *authService) generateTokens(ctx context.Context, user *models.User) (*models.TokenResponse, error) {
	now := time.Now()
	claims := TokenClaims{
		UserID:   user.ID.String(),
		TenantID: user.TenantID.String(),
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "dataclinica-auth",
			Subject:   user.ID.String(),
			Audience:  jwt.ClaimStrings{"dataclinica-api"},
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign JWT: %v", err)
	}

	refreshToken, err := generateSecureToken()
	if err != nil {
		return nil, err
	}
	refreshValue := user.TenantID.String() + ":" + user.ID.String()
	if err := s.cacheSvc.SetRefreshToken(ctx, hashToken(refreshToken), refreshValue, s.refreshTTL); err != nil {
		// Login still works without refresh; log and move on.
		log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("failed to store refresh token")
	}

	return &models.TokenResponse{
		AccessToken:  accessToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.tokenTTL.Seconds()),
		RefreshToken: refreshToken,
		UserID:       user.ID.String(),
		TenantID:     user.TenantID.String(),
		IssuedAt:     now,
	}, nil
}

func generateSecureToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func parseRefreshValue(value string) (tenantID, userID uuid.UUID, err error) {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return uuid.Nil, uuid.Nil, fmt.Errorf("malformed refresh token value")
	}
	tenantID, err = uuid.Parse(parts[0])
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	userID, err = uuid.Parse(parts[1])
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return tenantID, userID, nil
}
