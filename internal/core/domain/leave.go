package domain

import "time"

type LeaveStatus string

const (
	LeavePending  LeaveStatus = "pending"
	LeaveApproved LeaveStatus = "approved"
	LeaveRejected LeaveStatus = "rejected"
)

const (
	LeaveSick   = "sick"
	LeaveCasual = "casual"
	LeaveEarned = "earned"
)

var (
	ErrLeaveNotFound = NotFound("leave request not found")
	ErrLeaveDecided  = Conflict("leave request already decided")
)

// Leave is a time-off request awaiting or carrying a manager decision.
type Leave struct {
	ID             string      `json:"id"`
	UserID         string      `json:"user_id"`
	ManagerID      string      `json:"manager_id,omitempty"`
	Type           string      `json:"leave_type"`
	From           time.Time   `json:"from_date"`
	To             time.Time   `json:"to_date"`
	Reason         string      `json:"reason"`
	Status         LeaveStatus `json:"status"`
	ManagerComment string      `json:"manager_comment,omitempty"`
	DecidedBy      string      `json:"decided_by,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}
