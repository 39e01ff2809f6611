package token

import (
	"errors"
	"testing"
	"time"

	"github.com/b2world/ems-backend/internal/core/domain"
)

func newTestManager() *Manager {
	return NewManager(Config{AccessSecret: "access-secret", RefreshSecret: "refresh-secret"})
}

func TestManager_AccessRoundTrip(t *testing.T) {
	m := newTestManager()

	signed, err := m.IssueAccess("u1", domain.RoleManager)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	claims, err := m.ParseAccess(signed)
	if err != nil {
		t.Fatalf("ParseAccess: %v", err)
	}
	if claims.UserID != "u1" || claims.Role != domain.RoleManager {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != DefaultAccessTTL {
		t.Fatalf("expected 24h lifetime, got %s", got)
	}
}

func TestManager_RefreshLifetime(t *testing.T) {
	m := newTestManager()

	signed, err := m.IssueRefresh("u1", domain.RoleEmployee)
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	claims, err := m.ParseRefresh(signed)
	if err != nil {
		t.Fatalf("ParseRefresh: %v", err)
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != 7*24*time.Hour {
		t.Fatalf("expected 7 day lifetime, got %s", got)
	}
}

func TestManager_SecretsAreNotInterchangeable(t *testing.T) {
	m := newTestManager()

	refresh, _ := m.IssueRefresh("u1", domain.RoleEmployee)
	if _, err := m.ParseAccess(refresh); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("refresh token accepted as access token: %v", err)
	}

	access, _ := m.IssueAccess("u1", domain.RoleEmployee)
	if _, err := m.ParseRefresh(access); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("access token accepted as refresh token: %v", err)
	}
}

func TestManager_Expired(t *testing.T) {
	m := newTestManager()
	m.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	signed, _ := m.IssueAccess("u1", domain.RoleEmployee)

	m.now = time.Now
	if _, err := m.ParseAccess(signed); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestManager_Empty(t *testing.T) {
	if _, err := newTestManager().ParseAccess(""); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestManager_RefreshTokensAreUnique(t *testing.T) {
	m := newTestManager()
	a, _ := m.IssueRefresh("u1", domain.RoleEmployee)
	b, _ := m.IssueRefresh("u1", domain.RoleEmployee)
	if a == b {
		t.Fatalf("expected distinct refresh tokens")
	}
}
