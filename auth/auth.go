// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/thinkshare/thinkshare/apperr"
	"github.com/thinkshare/thinkshare/models"
)

var (
	ErrMissingSecret = errors.New("token secret is required")
	ErrSameSecret    = errors.New("access and refresh secrets must differ")
)

// Default token lifetimes.
const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 15 * 24 * time.Hour
)

// NewID returns a new random identifier for users, articles and comments.
func NewID() string {
	return uuid.NewString()
}

// TokenConfig configures a TokenIssuer.
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// TokenIssuer mints and verifies HS256 access and refresh tokens. The two
// token kinds use distinct secrets, so one can never be presented as the other.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewTokenIssuer validates cfg and fills in default lifetimes.
func NewTokenIssuer(cfg TokenConfig) (*TokenIssuer, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, ErrMissingSecret
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, ErrSameSecret
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &TokenIssuer{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		now:           cfg.Now,
	}, nil
}

// RefreshTTL is the lifetime of refresh tokens, used for the cookie Max-Age.
func (ti *TokenIssuer) RefreshTTL() time.Duration {
	return ti.refreshTTL
}

// AccessToken signs a short-lived access token for userID.
func (ti *TokenIssuer) AccessToken(userID string) (string, error) {
	return ti.sign(userID, ti.accessSecret, ti.accessTTL)
}

// RefreshToken signs a refresh token for userID. Each token carries a unique
// jti so two issuances in the same second never collide.
func (ti *TokenIssuer) RefreshToken(userID string) (string, error) {
	return ti.sign(userID, ti.refreshSecret, ti.refreshTTL)
}

// VerifyAccess returns the user id carried by a valid access token.
func (ti *TokenIssuer) VerifyAccess(token string) (string, error) {
	return ti.verify(token, ti.accessSecret, "access")
}

// VerifyRefresh returns the user id carried by a valid refresh token.
func (ti *TokenIssuer) VerifyRefresh(token string) (string, error) {
	return ti.verify(token, ti.refreshSecret, "refresh")
}

func (ti *TokenIssuer) sign(userID string, secret []byte, ttl time.Duration) (string, error) {
	if userID == "" {
		return "", errors.New("user id is required")
	}
	now := ti.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (ti *TokenIssuer) verify(token string, secret []byte, kind string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ti.now),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		msg := kind + " token expired"
		if kind == "access" {
			msg = models.ExpiredAccessTokenMessage
		}
		return "", apperr.Wrap(apperr.InvalidToken, msg, err)
	}
	if err != nil {
		return "", apperr.Wrap(apperr.InvalidToken, "invalid "+kind+" token", err)
	}
	if claims.Subject == "" {
		return "", apperr.New(apperr.InvalidToken, "invalid "+kind+" token")
	}
	return claims.Subject, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header value.
func BearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", apperr.New(apperr.Unauthenticated, "Unauthorized - No access token provided")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", apperr.New(apperr.Unauthenticated, "Unauthorized - No access token provided")
	}
	return token, nil
}
