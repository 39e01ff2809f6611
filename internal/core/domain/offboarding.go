package domain

import "time"

type OffboardingStatus string

const (
	OffboardingPending    OffboardingStatus = "pending"
	OffboardingInProgress OffboardingStatus = "in-progress"
	OffboardingCompleted  OffboardingStatus = "completed"
	OffboardingCancelled  OffboardingStatus = "cancelled"
)

var (
	ErrOffboardingNotFound  = NotFound("offboarding record not found")
	ErrAlreadyResigned      = Conflict("resignation already submitted")
	ErrOffboardingCancelled = Conflict("offboarding was cancelled")
)

// Clearance tracks the departments that signed off a leaver.
type Clearance struct {
	HR      bool `json:"hr"`
	IT      bool `json:"it"`
	Finance bool `json:"finance"`
	Manager bool `json:"manager"`
}

// Complete reports whether every department cleared.
func (c Clearance) Complete() bool {
	return c.HR && c.IT && c.Finance && c.Manager
}

// Offboarding is the exit process of one user. At most one exists per user.
type Offboarding struct {
	ID                     string            `json:"id"`
	UserID                 string            `json:"user_id"`
	ResignationDate        time.Time         `json:"resignation_date"`
	LastWorkingDate        time.Time         `json:"last_working_date"`
	Reason                 string            `json:"reason,omitempty"`
	Status                 OffboardingStatus `json:"status"`
	Clearance              Clearance         `json:"clearance"`
	ExperienceLetterIssued bool              `json:"experience_letter_issued"`
	RelievingLetterIssued  bool              `json:"relieving_letter_issued"`
	CreatedAt              time.Time         `json:"created_at"`
	UpdatedAt              time.Time         `json:"updated_at"`
}
