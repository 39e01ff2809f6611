package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/b2world/ems-backend/internal/core/domain"
	"github.com/b2world/ems-backend/internal/core/ports"
)

// UserService manages employee records.
type UserService struct {
	repo ports.UserRepository
	log  zerolog.Logger
}

func NewUserService(repo ports.UserRepository, log zerolog.Logger) *UserService {
	return &UserService{repo: repo, log: log}
}

// Create adds an employee on behalf of an administrator.
func (s *UserService) Create(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	if err := s.checkManager(ctx, in.ManagerID); err != nil {
		return nil, err
	}
	user, err := newUser(in)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// List returns all users, optionally restricted to one role.
func (s *UserService) List(ctx context.Context, role string) ([]domain.User, error) {
	var filter domain.UserFilter
	if role != "" {
		if !domain.ValidRole(role) {
			return nil, domain.Validation("role must be one of: " + strings.Join(domain.Roles, ", "))
		}
		filter.Roles = []string{role}
	}
	users, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Update applies an administrative change.
func (s *UserService) Update(ctx context.Context, id string, upd ports.UserUpdate) (*domain.User, error) {
	if upd.Role != nil && !domain.ValidRole(*upd.Role) {
		return nil, domain.Validation("role must be one of: " + strings.Join(domain.Roles, ", "))
	}
	if upd.BaseSalary != nil && upd.BaseSalary.IsNegative() {
		return nil, domain.Validation("base salary cannot be negative")
	}
	if upd.ManagerID != nil {
		if *upd.ManagerID == id {
			return nil, domain.Validation("a user cannot manage themselves")
		}
		if err := s.checkManager(ctx, *upd.ManagerID); err != nil {
			return nil, err
		}
	}
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return nil, domain.Validation("name cannot be empty")
	}

	user, err := s.repo.Update(ctx, id, upd)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	s.log.Info().Str("user_id", id).Msg("user updated")
	return user, nil
}

// UpdateSelf applies the subset of fields a user may change on their own
// profile.
func (s *UserService) UpdateSelf(ctx context.Context, id string, upd ports.UserUpdate) (*domain.User, error) {
	allowed := ports.UserUpdate{Name: upd.Name, Department: upd.Department, Phone: upd.Phone}
	if allowed.Name != nil && strings.TrimSpace(*allowed.Name) == "" {
		return nil, domain.Validation("name cannot be empty")
	}
	user, err := s.repo.Update(ctx, id, allowed)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	s.log.Info().Str("user_id", id).Msg("user deleted")
	return nil
}

// Team lists the direct reports of a manager.
func (s *UserService) Team(ctx context.Context, managerID string) ([]domain.User, error) {
	users, err := s.repo.List(ctx, domain.UserFilter{ManagerID: managerID})
	if err != nil {
		return nil, fmt.Errorf("team: %w", err)
	}
	return users, nil
}

// checkManager verifies that id, when set, names a manager or admin.
func (s *UserService) checkManager(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	mgr, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("manager: %w", err)
	}
	if mgr.Role != domain.RoleManager && mgr.Role != domain.RoleAdmin {
		return domain.Validation("assigned manager must have the manager or admin role")
	}
	return nil
}
