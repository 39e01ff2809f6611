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

// OffboardingService drives resignations through clearance to the exit
// letters.
type OffboardingService struct {
	repo     ports.OffboardingRepository
	users    ports.UserRepository
	renderer ports.DocumentRenderer
	notifier ports.NotificationService
	log      zerolog.Logger
}

func NewOffboardingService(
	repo ports.OffboardingRepository,
	users ports.UserRepository,
	renderer ports.DocumentRenderer,
	notifier ports.NotificationService,
	log zerolog.Logger,
) *OffboardingService {
	return &OffboardingService{repo: repo, users: users, renderer: renderer, notifier: notifier, log: log}
}

// Resign opens the offboarding process and tells the manager and every admin.
func (s *OffboardingService) Resign(ctx context.Context, userID string, in ports.ResignInput) (*domain.Offboarding, error) {
	if in.ResignationDate.IsZero() || in.LastWorkingDate.IsZero() {
		return nil, domain.Validation("resignation and last working dates are required")
	}
	if in.LastWorkingDate.Before(in.ResignationDate) {
		return nil, domain.Validation("last working date cannot be before resignation date")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resign: %w", err)
	}

	now := time.Now().UTC()
	o, err := s.repo.Create(ctx, &domain.Offboarding{
		UserID:          userID,
		ResignationDate: in.ResignationDate.UTC(),
		LastWorkingDate: in.LastWorkingDate.UTC(),
		Reason:          strings.TrimSpace(in.Reason),
		Status:          domain.OffboardingPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		return nil, fmt.Errorf("resign: %w", err)
	}

	recipients := []string{}
	if user.ManagerID != "" {
		recipients = append(recipients, user.ManagerID)
	}
	admins, err := s.users.List(ctx, domain.UserFilter{Roles: []string{domain.RoleAdmin}})
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to list admins for resignation notice")
	}
	for _, a := range admins {
		if a.ID != user.ManagerID {
			recipients = append(recipients, a.ID)
		}
	}
	for _, id := range recipients {
		s.notifier.Notify(ctx, ports.NotifyInput{
			RecipientID: id,
			SenderID:    userID,
			Title:       "Resignation submitted",
			Message:     fmt.Sprintf("%s resigned. Last working date: %s.", user.Name, o.LastWorkingDate.Format(time.DateOnly)),
			RelatedTo:   domain.RelatedOffboarding,
			RelatedID:   o.ID,
			Channels:    []string{domain.ChannelEmail},
		})
	}

	return o, nil
}

// UpdateClearance applies the given flags; the repository derives the
// process status from the stored clearance.
func (s *OffboardingService) UpdateClearance(ctx context.Context, userID string, upd ports.ClearanceUpdate) (*domain.Offboarding, error) {
	if upd.HR == nil && upd.IT == nil && upd.Finance == nil && upd.Manager == nil {
		return nil, domain.Validation("at least one clearance flag is required")
	}
	o, err := s.repo.UpdateClearance(ctx, userID, upd)
	if err != nil {
		return nil, fmt.Errorf("update clearance: %w", err)
	}
	s.log.Debug().Str("user_id", userID).Str("status", string(o.Status)).Msg("clearance updated")
	return o, nil
}

// Letter renders the requested exit letter and records that it was issued.
func (s *OffboardingService) Letter(ctx context.Context, userID string, kind ports.LetterKind) (*ports.Letter, error) {
	o, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s letter: %w", kind, err)
	}
	if kind == ports.RelievingLetter && !o.Clearance.Complete() {
		return nil, domain.Conflict("relieving letter requires completed clearance")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s letter: %w", kind, err)
	}

	content, err := s.renderer.RenderLetter(kind, o, user)
	if err != nil {
		return nil, fmt.Errorf("%s letter: render: %w", kind, err)
	}
	if err := s.repo.MarkLetterIssued(ctx, userID, kind); err != nil {
		return nil, fmt.Errorf("%s letter: %w", kind, err)
	}

	return &ports.Letter{
		FileName: fmt.Sprintf("%s_letter_%s.pdf", kind, userID),
		Content:  content,
	}, nil
}

// Status returns the offboarding record to the leaver or an administrator.
func (s *OffboardingService) Status(ctx context.Context, caller ports.Principal, userID string) (*domain.Offboarding, error) {
	if !caller.IsAdmin() && caller.UserID != userID {
		return nil, domain.Forbidden("cannot view another employee's offboarding")
	}
	o, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("offboarding status: %w", err)
	}
	return o, nil
}
