package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("token is invalid")
)

// TokenConfig holds the signing configuration for both token kinds. Access
// and refresh tokens are signed with independent secrets so that a
// compromise of one namespace does not compromise the other.
type TokenConfig struct {
	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	Issuer             string
	Audience           string
}

// AccessTokenClaims are embedded in short-lived access tokens.
type AccessTokenClaims struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// RefreshTokenClaims are embedded in refresh tokens. They carry the user ID
// only; everything else is reloaded from storage at exchange time.
type RefreshTokenClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies access and refresh tokens.
type TokenService struct {
	jwtAuth JWTAuthenticator
	config  TokenConfig
}

// NewTokenService creates a TokenService from the given configuration.
func NewTokenService(config TokenConfig) *TokenService {
	return &TokenService{
		jwtAuth: NewJWTAuthenticator(config.Audience, config.Issuer),
		config:  config,
	}
}

// IssueAccessToken signs a short-lived access token carrying the user's
// identity claims. Pure function of its inputs and the configured secret.
func (s *TokenService) IssueAccessToken(userID, email, role, username string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.config.AccessTokenTTL)

	claims := AccessTokenClaims{
		UserID:           userID,
		Email:            email,
		Role:             role,
		Username:         username,
		RegisteredClaims: s.registeredClaims(userID, now, expiresAt),
	}

	token, err := s.jwtAuth.GenerateToken(claims, s.config.AccessTokenSecret)
	if err != nil {
		return "", time.Time{}, err
	}

	return token, expiresAt, nil
}

// IssueRefreshToken signs a long-lived refresh token carrying only the user
// ID. Each token gets a unique JTI so two tokens issued in the same second
// never collide.
func (s *TokenService) IssueRefreshToken(userID string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.config.RefreshTokenTTL)

	registered := s.registeredClaims(userID, now, expiresAt)
	registered.ID = uuid.NewString()

	claims := RefreshTokenClaims{
		UserID:           userID,
		RegisteredClaims: registered,
	}

	token, err := s.jwtAuth.GenerateToken(claims, s.config.RefreshTokenSecret)
	if err != nil {
		return "", time.Time{}, err
	}

	return token, expiresAt, nil
}

// VerifyAccessToken validates an access token and returns its claims.
func (s *TokenService) VerifyAccessToken(token string) (*AccessTokenClaims, error) {
	claims := &AccessTokenClaims{}
	if _, err := s.jwtAuth.ValidateTokenWithClaims(token, s.config.AccessTokenSecret, claims); err != nil {
		return nil, mapTokenError(err)
	}

	return claims, nil
}

// VerifyRefreshToken validates a refresh token and returns its claims.
func (s *TokenService) VerifyRefreshToken(token string) (*RefreshTokenClaims, error) {
	claims := &RefreshTokenClaims{}
	if _, err := s.jwtAuth.ValidateTokenWithClaims(token, s.config.RefreshTokenSecret, claims); err != nil {
		return nil, mapTokenError(err)
	}

	return claims, nil
}

// DecodeExpiry parses a token without verifying its signature and returns
// the expiry claim. For introspection only, never for trust decisions.
func (s *TokenService) DecodeExpiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()

	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, ErrTokenInvalid
	}

	expiresAt, err := claims.GetExpirationTime()
	if err != nil || expiresAt == nil {
		return time.Time{}, ErrTokenInvalid
	}

	return expiresAt.Time, nil
}

func (s *TokenService) registeredClaims(subject string, now, expiresAt time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    s.config.Issuer,
		Audience:  jwt.ClaimStrings{s.config.Audience},
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
}

func mapTokenError(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return ErrTokenExpired
	}

	return ErrTokenInvalid
}
