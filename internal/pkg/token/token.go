// Package token issues and verifies the signed access and refresh tokens.
//
// Access and refresh tokens are signed with distinct HS256 secrets so that a
// token of one class can never be accepted as the other.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/b2world/ems-backend/internal/core/domain"
)

const (
	DefaultAccessTTL  = 24 * time.Hour
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// Claims is the payload carried by both token classes.
type Claims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Config holds the signing material and lifetimes.
type Config struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// Manager signs and parses tokens.
type Manager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewManager(cfg Config) *Manager {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}
	return &Manager{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		now:           time.Now,
	}
}

// IssueAccess signs a short-lived access token for the user.
func (m *Manager) IssueAccess(userID, role string) (string, error) {
	return m.sign(userID, role, m.accessTTL, m.accessSecret)
}

// IssueRefresh signs a long-lived refresh token for the user. Every token
// carries a unique id so two logins within the same second differ.
func (m *Manager) IssueRefresh(userID, role string) (string, error) {
	return m.sign(userID, role, m.refreshTTL, m.refreshSecret)
}

// ParseAccess verifies an access token and returns its claims.
func (m *Manager) ParseAccess(raw string) (*Claims, error) {
	return m.parse(raw, m.accessSecret)
}

// ParseRefresh verifies a refresh token and returns its claims.
func (m *Manager) ParseRefresh(raw string) (*Claims, error) {
	return m.parse(raw, m.refreshSecret)
}

func (m *Manager) sign(userID, role string, ttl time.Duration, secret []byte) (string, error) {
	now := m.now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (m *Manager) parse(raw string, secret []byte) (*Claims, error) {
	if raw == "" {
		return nil, domain.ErrUnauthenticated
	}

	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return secret, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithExpirationRequired())
	if err != nil || !tkn.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: token expired", domain.ErrInvalidToken)
		}
		return nil, domain.ErrInvalidToken
	}
	if claims.UserID == "" || claims.Role == "" {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}
