package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/b2world/ems-backend/internal/core/domain"
)

// UserRepository persists users and their refresh-token lists.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, filter domain.UserFilter) ([]domain.User, error)
	Update(ctx context.Context, id string, upd UserUpdate) (*domain.User, error)
	Delete(ctx context.Context, id string) error

	// AddRefreshToken appends token keeping at most limit entries, newest last.
	AddRefreshToken(ctx context.Context, userID, token string, limit int) error
	// RemoveRefreshToken removes token from the list. Removing an absent
	// token is not an error.
	RemoveRefreshToken(ctx context.Context, userID, token string) error
}

// UserUpdate carries optional fields; nil means unchanged.
type UserUpdate struct {
	Name       *string
	Role       *string
	ManagerID  *string
	Department *string
	Phone      *string
	BaseSalary *decimal.Decimal
}

// AttendanceRepository persists attendance records, one per (user, day).
type AttendanceRepository interface {
	// ClockIn creates today's record; returns domain.ErrAlreadyClockedIn when
	// the record already exists.
	ClockIn(ctx context.Context, userID, day string, at time.Time) (*domain.AttendanceRecord, error)
	// ClockOut closes today's open record; returns domain.ErrNoActiveClockIn
	// when there is none.
	ClockOut(ctx context.Context, userID, day string, at time.Time) (*domain.AttendanceRecord, error)
	// ListRange returns the user's records with fromDay <= day < toDay.
	ListRange(ctx context.Context, userID, fromDay, toDay string) ([]domain.AttendanceRecord, error)
	// CountPresent counts records in range with both clock-in and clock-out set.
	CountPresent(ctx context.Context, userID, fromDay, toDay string) (int, error)
	// ListAllRange returns every user's records in range.
	ListAllRange(ctx context.Context, fromDay, toDay string) ([]domain.AttendanceRecord, error)
}

// PayrollRepository persists payroll records, unique per (user, month, year).
type PayrollRepository interface {
	Exists(ctx context.Context, userID string, month, year int) (bool, error)
	// Create inserts a record; returns domain.ErrPayrollExists on a
	// uniqueness violation.
	Create(ctx context.Context, rec *domain.PayrollRecord) (*domain.PayrollRecord, error)
	FindByID(ctx context.Context, id string) (*domain.PayrollRecord, error)
	FindByPeriod(ctx context.Context, userID string, month, year int) (*domain.PayrollRecord, error)
	ListByUser(ctx context.Context, userID string) ([]domain.PayrollRecord, error)
	MarkPayslipGenerated(ctx context.Context, id string) error
}

type LeaveRepository interface {
	Create(ctx context.Context, l *domain.Leave) (*domain.Leave, error)
	FindByID(ctx context.Context, id string) (*domain.Leave, error)
	ListByUsers(ctx context.Context, userIDs []string) ([]domain.Leave, error)
	// Decide sets the decision only while the request is pending; returns
	// domain.ErrLeaveDecided otherwise.
	Decide(ctx context.Context, id string, status domain.LeaveStatus, comment, decidedBy string) (*domain.Leave, error)
	CountByStatus(ctx context.Context, from, to time.Time) (map[domain.LeaveStatus]int, error)
}

type TaskRepository interface {
	Create(ctx context.Context, t *domain.Task) (*domain.Task, error)
	FindByID(ctx context.Context, id string) (*domain.Task, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]domain.Task, error)
	ListByAssigner(ctx context.Context, managerID string) ([]domain.Task, error)
	SubmitReport(ctx context.Context, id, progress, remarks string, at time.Time) (*domain.Task, error)
	Review(ctx context.Context, id, remarks string) (*domain.Task, error)
	CountByStatus(ctx context.Context) (map[domain.TaskStatus]int, error)
}

type TrainingRepository interface {
	Create(ctx context.Context, t *domain.Training) (*domain.Training, error)
	ListForRole(ctx context.Context, role string) ([]domain.Training, error)
	// Complete records the completion once; returns
	// domain.ErrTrainingCompleted on the second call for the same user.
	Complete(ctx context.Context, id, userID string, at time.Time) (*domain.Training, error)
}

type OffboardingRepository interface {
	// Create returns domain.ErrAlreadyResigned when the user already has one.
	Create(ctx context.Context, o *domain.Offboarding) (*domain.Offboarding, error)
	FindByUser(ctx context.Context, userID string) (*domain.Offboarding, error)
	UpdateClearance(ctx context.Context, userID string, upd ClearanceUpdate) (*domain.Offboarding, error)
	MarkLetterIssued(ctx context.Context, userID string, kind LetterKind) error
}

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error)
	ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool) ([]domain.Notification, error)
	MarkRead(ctx context.Context, recipientID string, ids []string) (int64, error)
}

type ChatRepository interface {
	// Append adds messages to the user's session, creating it when absent.
	Append(ctx context.Context, userID string, msgs ...domain.ChatMessage) error
	FindByUser(ctx context.Context, userID string) (*domain.ChatSession, error)
}

// RunLock serialises payroll runs for one period across instances.
type RunLock interface {
	Acquire(ctx context.Context, month, year int) (bool, error)
	Release(ctx context.Context, month, year int) error
}
