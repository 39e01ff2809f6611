package domain

import "time"

var (
	ErrTrainingNotFound  = NotFound("training not found")
	ErrTrainingCompleted = Conflict("training already completed")
)

type TrainingCompletion struct {
	UserID      string    `json:"user_id"`
	CompletedAt time.Time `json:"completed_at"`
}

// Training is a course offered to one or more roles.
type Training struct {
	ID             string               `json:"id"`
	Title          string               `json:"title"`
	Description    string               `json:"description,omitempty"`
	TrainerID      string               `json:"trainer_id"`
	TargetAudience []string             `json:"target_audience"`
	StartDate      time.Time            `json:"start_date"`
	EndDate        time.Time            `json:"end_date"`
	CompletedBy    []TrainingCompletion `json:"completed_by"`
	CreatedAt      time.Time            `json:"created_at"`
}
