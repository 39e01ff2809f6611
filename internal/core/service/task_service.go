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

// TaskService covers task assignment and progress reports.
type TaskService struct {
	repo     ports.TaskRepository
	users    ports.UserRepository
	notifier ports.NotificationService
	log      zerolog.Logger
}

func NewTaskService(repo ports.TaskRepository, users ports.UserRepository, notifier ports.NotificationService, log zerolog.Logger) *TaskService {
	return &TaskService{repo: repo, users: users, notifier: notifier, log: log}
}

func (s *TaskService) Assign(ctx context.Context, managerID string, in ports.AssignTaskInput) (*domain.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" || in.EmployeeID == "" {
		return nil, domain.Validation("employee and title are required")
	}

	assignee, err := s.users.FindByID(ctx, in.EmployeeID)
	if err != nil {
		return nil, fmt.Errorf("assign task: %w", err)
	}
	if assignee.Role == domain.RoleAdmin {
		return nil, domain.Validation("tasks cannot be assigned to administrators")
	}

	now := time.Now().UTC()
	task, err := s.repo.Create(ctx, &domain.Task{
		EmployeeID:  assignee.ID,
		AssignedBy:  managerID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Deadline:    in.Deadline,
		Status:      domain.TaskAssigned,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, fmt.Errorf("assign task: %w", err)
	}

	s.notifier.Notify(ctx, ports.NotifyInput{
		RecipientID: assignee.ID,
		SenderID:    managerID,
		Title:       "New task assigned",
		Message:     task.Title,
		RelatedTo:   domain.RelatedTask,
		RelatedID:   task.ID,
	})
	return task, nil
}

func (s *TaskService) AssignedBy(ctx context.Context, managerID string) ([]domain.Task, error) {
	out, err := s.repo.ListByAssigner(ctx, managerID)
	if err != nil {
		return nil, fmt.Errorf("assigned tasks: %w", err)
	}
	return out, nil
}

func (s *TaskService) Mine(ctx context.Context, userID string) ([]domain.Task, error) {
	out, err := s.repo.ListByEmployee(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("my tasks: %w", err)
	}
	return out, nil
}

// SubmitReport records the assignee's progress report.
func (s *TaskService) SubmitReport(ctx context.Context, userID, taskID, progress, remarks string) (*domain.Task, error) {
	if strings.TrimSpace(progress) == "" {
		return nil, domain.Validation("progress is required")
	}
	task, err := s.repo.FindByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("submit report: %w", err)
	}
	if task.EmployeeID != userID {
		return nil, domain.Forbidden("only the assignee can report on this task")
	}
	if task.Status == domain.TaskReviewed {
		return nil, domain.Conflict("task already reviewed")
	}

	updated, err := s.repo.SubmitReport(ctx, taskID, strings.TrimSpace(progress), strings.TrimSpace(remarks), time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("submit report: %w", err)
	}

	s.notifier.Notify(ctx, ports.NotifyInput{
		RecipientID: task.AssignedBy,
		SenderID:    userID,
		Title:       "Task report submitted",
		Message:     task.Title,
		RelatedTo:   domain.RelatedTask,
		RelatedID:   task.ID,
	})
	return updated, nil
}

// Review closes a submitted task. Only the assigning manager or an admin may
// review.
func (s *TaskService) Review(ctx context.Context, caller ports.Principal, taskID, remarks string) (*domain.Task, error) {
	task, err := s.repo.FindByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("review task: %w", err)
	}
	if !caller.IsAdmin() && task.AssignedBy != caller.UserID {
		return nil, domain.Forbidden("only the assigning manager can review this task")
	}
	if task.Status != domain.TaskSubmitted {
		return nil, domain.Conflict("only submitted tasks can be reviewed")
	}

	updated, err := s.repo.Review(ctx, taskID, strings.TrimSpace(remarks))
	if err != nil {
		return nil, fmt.Errorf("review task: %w", err)
	}
	return updated, nil
}
