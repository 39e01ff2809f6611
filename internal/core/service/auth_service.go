package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/b2world/ems-backend/internal/core/domain"
	"github.com/b2world/ems-backend/internal/core/ports"
	"github.com/b2world/ems-backend/internal/pkg/metrics"
	"github.com/b2world/ems-backend/internal/pkg/token"
)

// DefaultRefreshTokenLimit bounds the stored refresh tokens per user.
const DefaultRefreshTokenLimit = 5

const minPasswordLength = 6

// AuthService implements registration, login and the refresh-token lifecycle.
type AuthService struct {
	repo         ports.UserRepository
	tokens       *token.Manager
	refreshLimit int
	log          zerolog.Logger
}

func NewAuthService(repo ports.UserRepository, tokens *token.Manager, refreshLimit int, log zerolog.Logger) *AuthService {
	if refreshLimit <= 0 {
		refreshLimit = DefaultRefreshTokenLimit
	}
	return &AuthService{repo: repo, tokens: tokens, refreshLimit: refreshLimit, log: log}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	user, err := newUser(in)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info().Str("user_id", created.ID).Str("role", created.Role).Msg("user registered")
	return created, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.Validation("email and password are required")
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.AuthFailuresTotal.WithLabelValues("unknown_user").Inc()
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		metrics.AuthFailuresTotal.WithLabelValues("bad_password").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	access, err := s.tokens.IssueAccess(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	refresh, err := s.tokens.IssueRefresh(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	if err := s.repo.AddRefreshToken(ctx, user.ID, refresh, s.refreshLimit); err != nil {
		return nil, fmt.Errorf("login: store refresh token: %w", err)
	}

	return &ports.LoginResult{AccessToken: access, RefreshToken: refresh, User: user}, nil
}

// Refresh exchanges a stored refresh token for a new access token. The
// refresh token itself is not rotated.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*ports.RefreshResult, error) {
	if refreshToken == "" {
		return nil, domain.ErrUnauthenticated
	}

	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		metrics.AuthFailuresTotal.WithLabelValues("invalid_refresh").Inc()
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrRevokedToken
		}
		return nil, fmt.Errorf("refresh: %w", err)
	}
	if !user.HasRefreshToken(refreshToken) {
		metrics.AuthFailuresTotal.WithLabelValues("revoked_refresh").Inc()
		return nil, domain.ErrRevokedToken
	}

	// Role comes from the stored user so promotions apply on refresh.
	access, err := s.tokens.IssueAccess(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}
	return &ports.RefreshResult{AccessToken: access, User: user}, nil
}

// Logout revokes the presented refresh token. Access tokens are stateless and
// stay valid until they expire.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return domain.ErrUnauthenticated
	}

	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return err
	}

	if err := s.repo.RemoveRefreshToken(ctx, claims.UserID, refreshToken); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// newUser validates registration input and builds a user with a hashed
// password.
func newUser(in ports.RegisterInput) (*domain.User, error) {
	email := normalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	if name == "" || email == "" {
		return nil, domain.Validation("name and email are required")
	}
	if len(in.Password) < minPasswordLength {
		return nil, domain.Validation(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	role := in.Role
	if role == "" {
		role = domain.RoleEmployee
	}
	if !domain.ValidRole(role) {
		return nil, domain.Validation("role must be one of: " + strings.Join(domain.Roles, ", "))
	}
	if in.BaseSalary.IsNegative() {
		return nil, domain.Validation("base salary cannot be negative")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	return &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		ManagerID:    in.ManagerID,
		Department:   strings.TrimSpace(in.Department),
		Phone:        strings.TrimSpace(in.Phone),
		BaseSalary:   in.BaseSalary,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
