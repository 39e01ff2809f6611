package domain

import "time"

type TaskStatus string

const (
	TaskAssigned  TaskStatus = "assigned"
	TaskSubmitted TaskStatus = "submitted"
	TaskReviewed  TaskStatus = "reviewed"
)

var ErrTaskNotFound = NotFound("task not found")

// Task is a unit of work assigned by a manager and reported on by the assignee.
type Task struct {
	ID            string     `json:"id"`
	EmployeeID    string     `json:"employee_id"`
	AssignedBy    string     `json:"assigned_by"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	Deadline      *time.Time `json:"deadline,omitempty"`
	Status        TaskStatus `json:"status"`
	Progress      string     `json:"progress,omitempty"`
	Remarks       string     `json:"remarks,omitempty"`
	ReviewRemarks string     `json:"review_remarks,omitempty"`
	SubmittedAt   *time.Time `json:"submitted_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
