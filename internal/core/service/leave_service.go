package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/b2world/ems-backend/internal/core/domain"
	"github.com/b2world/ems-backend/internal/core/ports"
)

type LeaveService struct {
	repo     ports.LeaveRepository
	users    ports.UserRepository
	notifier ports.NotificationService
	log      zerolog.Logger
}

func NewLeaveService(repo ports.LeaveRepository, users ports.UserRepository, notifier ports.NotificationService, log zerolog.Logger) *LeaveService {
	return &LeaveService{repo: repo, users: users, notifier: notifier, log: log}
}

// Apply files a pending leave request and tells the requester's manager.
func (s *LeaveService) Apply(ctx context.Context, userID string, in ports.ApplyLeaveInput) (*domain.Leave, error) {
	switch in.Type {
	case domain.LeaveSick, domain.LeaveCasual, domain.LeaveEarned:
	default:
		return nil, domain.Validation("leave type must be one of: sick, casual, earned")
	}
	if in.From.IsZero() || in.To.IsZero() {
		return nil, domain.Validation("from and to dates are required")
	}
	if in.To.Before(in.From) {
		return nil, domain.Validation("to date cannot be before from date")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("apply leave: %w", err)
	}

	now := time.Now().UTC()
	leave, err := s.repo.Create(ctx, &domain.Leave{
		UserID:    userID,
		ManagerID: user.ManagerID,
		Type:      in.Type,
		From:      in.From.UTC(),
		To:        in.To.UTC(),
		Reason:    strings.TrimSpace(in.Reason),
		Status:    domain.LeavePending,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("apply leave: %w", err)
	}

	if user.ManagerID != "" {
		s.notifier.Notify(ctx, ports.NotifyInput{
			RecipientID: user.ManagerID,
			SenderID:    userID,
			Title:       "New leave request",
			Message:     fmt.Sprintf("%s requested %s leave from %s to %s.", user.Name, in.Type, leave.From.Format(time.DateOnly), leave.To.Format(time.DateOnly)),
			RelatedTo:   domain.RelatedLeave,
			RelatedID:   leave.ID,
		})
	}

	return leave, nil
}

// Decide approves or rejects a pending request. Only the requester's manager
// or an administrator may decide.
func (s *LeaveService) Decide(ctx context.Context, caller ports.Principal, leaveID string, status domain.LeaveStatus, comment string) (*domain.Leave, error) {
	if status != domain.LeaveApproved && status != domain.LeaveRejected {
		return nil, domain.Validation("status must be approved or rejected")
	}

	leave, err := s.repo.FindByID(ctx, leaveID)
	if err != nil {
		return nil, fmt.Errorf("decide leave: %w", err)
	}
	if !caller.IsAdmin() {
		requester, err := s.users.FindByID(ctx, leave.UserID)
		if err != nil {
			return nil, fmt.Errorf("decide leave: %w", err)
		}
		if requester.ManagerID != caller.UserID {
			return nil, domain.Forbidden("only the employee's manager can decide this request")
		}
	}
	if leave.Status != domain.LeavePending {
		return nil, domain.ErrLeaveDecided
	}

	decided, err := s.repo.Decide(ctx, leaveID, status, strings.TrimSpace(comment), caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("decide leave: %w", err)
	}

	s.notifier.Notify(ctx, ports.NotifyInput{
		RecipientID: decided.UserID,
		SenderID:    caller.UserID,
		Title:       "Leave request " + string(status),
		Message:     fmt.Sprintf("Your %s leave from %s to %s was %s.", decided.Type, decided.From.Format(time.DateOnly), decided.To.Format(time.DateOnly), status),
		RelatedTo:   domain.RelatedLeave,
		RelatedID:   decided.ID,
		Channels:    []string{domain.ChannelEmail},
	})

	s.log.Info().Str("leave_id", leaveID).Str("status", string(status)).Str("by", caller.UserID).Msg("leave decided")
	return decided, nil
}

// TeamRequests lists the requests of the manager's direct reports.
func (s *LeaveService) TeamRequests(ctx context.Context, managerID string) ([]domain.Leave, error) {
	team, err := s.users.List(ctx, domain.UserFilter{ManagerID: managerID})
	if err != nil {
		return nil, fmt.Errorf("team leave requests: %w", err)
	}
	if len(team) == 0 {
		return []domain.Leave{}, nil
	}
	ids := make([]string, len(team))
	for i, u := range team {
		ids[i] = u.ID
	}
	out, err := s.repo.ListByUsers(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("team leave requests: %w", err)
	}
	return out, nil
}

func (s *LeaveService) MyRequests(ctx context.Context, userID string) ([]domain.Leave, error) {
	out, err := s.repo.ListByUsers(ctx, []string{userID})
	if err != nil {
		return nil, fmt.Errorf("leave requests: %w", err)
	}
	return out, nil
}
