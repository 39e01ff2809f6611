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

type TrainingService struct {
	repo ports.TrainingRepository
	log  zerolog.Logger
}

func NewTrainingService(repo ports.TrainingRepository, log zerolog.Logger) *TrainingService {
	return &TrainingService{repo: repo, log: log}
}

func (s *TrainingService) Create(ctx context.Context, trainerID string, in ports.CreateTrainingInput) (*domain.Training, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, domain.Validation("title is required")
	}
	if len(in.TargetAudience) == 0 {
		return nil, domain.Validation("target audience is required")
	}
	for _, r := range in.TargetAudience {
		if !domain.ValidRole(r) {
			return nil, domain.Validation("target audience must contain only: " + strings.Join(domain.Roles, ", "))
		}
	}
	if !in.EndDate.IsZero() && in.EndDate.Before(in.StartDate) {
		return nil, domain.Validation("end date cannot be before start date")
	}

	t, err := s.repo.Create(ctx, &domain.Training{
		Title:          title,
		Description:    strings.TrimSpace(in.Description),
		TrainerID:      trainerID,
		TargetAudience: in.TargetAudience,
		StartDate:      in.StartDate.UTC(),
		EndDate:        in.EndDate.UTC(),
		CompletedBy:    []domain.TrainingCompletion{},
		CreatedAt:      time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("create training: %w", err)
	}
	s.log.Info().Str("training_id", t.ID).Strs("audience", t.TargetAudience).Msg("training created")
	return t, nil
}

// ForRole lists the courses whose audience includes role.
func (s *TrainingService) ForRole(ctx context.Context, role string) ([]domain.Training, error) {
	out, err := s.repo.ListForRole(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("list trainings: %w", err)
	}
	return out, nil
}

// Complete marks the course completed by userID. A second completion is a
// conflict.
func (s *TrainingService) Complete(ctx context.Context, trainingID, userID string) (*domain.Training, error) {
	t, err := s.repo.Complete(ctx, trainingID, userID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("complete training: %w", err)
	}
	return t, nil
}
