package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"region-storefront/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost is the cost factor used by HashPassword
	BcryptCost = 10

	// RoleAdmin is the only role this service issues.
	RoleAdmin = "admin"

	DefaultAccessTokenExpiration = time.Hour
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenRevoked       = errors.New("token has been revoked")
)

// Claims represents the JWT claims
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// AdminAuthService authenticates the single allow-listed administrator
type AdminAuthService interface {
	Login(ctx context.Context, email, password string) (string, domain.Principal, error)
	Logout(ctx context.Context, principal domain.Principal) error
	ValidateToken(ctx context.Context, token string) (domain.Principal, error)
	IsAdmin(email string) bool
}

// AdminCredentials is the allow-listed account.
type AdminCredentials struct {
	Email        string
	PasswordHash string
}

type adminAuthService struct {
	creds     AdminCredentials
	jwtSecret []byte
	ttl       time.Duration
	denylist  TokenDenylist
	now       func() time.Time
	logger    *zap.Logger
}

// NewAdminAuthService creates the admin auth service. denylist may be nil,
// in which case logout only ends the session client-side.
func NewAdminAuthService(creds AdminCredentials, jwtSecret string, ttl time.Duration, denylist TokenDenylist, logger *zap.Logger) AdminAuthService {
	if ttl <= 0 {
		ttl = DefaultAccessTokenExpiration
	}
	if creds.Email == "" || creds.PasswordHash == "" {
		logger.Warn("Admin credentials are not configured; admin login is disabled")
	}
	if jwtSecret == "" {
		logger.Warn("JWT secret is not configured; admin login is disabled")
	}
	return &adminAuthService{
		creds:     creds,
		jwtSecret: []byte(jwtSecret),
		ttl:       ttl,
		denylist:  denylist,
		now:       time.Now,
		logger:    logger,
	}
}

// HashPassword hashes a password for ADMIN_PASSWORD_HASH
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (s *adminAuthService) IsAdmin(email string) bool {
	return s.creds.Email != "" && strings.EqualFold(strings.TrimSpace(email), s.creds.Email)
}

// Login checks the allow-listed credentials and issues an access token
func (s *adminAuthService) Login(ctx context.Context, email, password string) (string, domain.Principal, error) {
	if s.creds.PasswordHash == "" || len(s.jwtSecret) == 0 {
		return "", domain.Principal{}, ErrInvalidCredentials
	}

	// The hash is compared even for unknown emails so both failures take
	// the same time.
	pwErr := bcrypt.CompareHashAndPassword([]byte(s.creds.PasswordHash), []byte(password))
	if !s.IsAdmin(email) || pwErr != nil {
		s.logger.Warn("Admin login rejected", zap.String("email", email))
		return "", domain.Principal{}, ErrInvalidCredentials
	}

	now := s.now()
	principal := domain.Principal{
		Email:     s.creds.Email,
		Role:      RoleAdmin,
		TokenID:   uuid.NewString(),
		ExpiresAt: now.Add(s.ttl),
	}

	claims := Claims{
		Email: principal.Email,
		Role:  principal.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        principal.TokenID,
			Subject:   principal.Email,
			ExpiresAt: jwt.NewNumericDate(principal.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", domain.Principal{}, fmt.Errorf("failed to sign token: %w", err)
	}

	s.logger.Info("Admin logged in", zap.String("token_id", principal.TokenID))
	return token, principal, nil
}

// Logout revokes the token until it would have expired anyway
func (s *adminAuthService) Logout(ctx context.Context, principal domain.Principal) error {
	if s.denylist == nil || principal.TokenID == "" {
		return nil
	}

	ttl := principal.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}

	if err := s.denylist.Revoke(ctx, principal.TokenID, ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	s.logger.Info("Admin logged out", zap.String("token_id", principal.TokenID))
	return nil
}

// ValidateToken parses a token and rejects revoked ones
func (s *adminAuthService) ValidateToken(ctx context.Context, tokenString string) (domain.Principal, error) {
	// An empty HMAC key would accept tokens anyone can sign.
	if len(s.jwtSecret) == 0 {
		return domain.Principal{}, ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Email == "" {
		return domain.Principal{}, ErrInvalidToken
	}

	principal := domain.Principal{
		Email:   claims.Email,
		Role:    claims.Role,
		TokenID: claims.ID,
	}
	if claims.ExpiresAt != nil {
		principal.ExpiresAt = claims.ExpiresAt.Time
	}

	if s.denylist != nil && principal.TokenID != "" {
		revoked, err := s.denylist.IsRevoked(ctx, principal.TokenID)
		if err != nil {
			// Fail open like the rate limiter: Redis trouble must not lock
			// the admin out.
			s.logger.Error("Failed to check token denylist", zap.Error(err))
		} else if revoked {
			return domain.Principal{}, ErrTokenRevoked
		}
	}

	return principal, nil
}
