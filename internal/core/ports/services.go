package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/b2world/ems-backend/internal/core/domain"
)

// Principal is the authenticated caller of a service operation.
type Principal struct {
	UserID string
	Role   string
}

// IsAdmin reports whether the caller is an administrator.
func (p Principal) IsAdmin() bool { return p.Role == domain.RoleAdmin }

// --- auth ---

type RegisterInput struct {
	Name       string
	Email      string
	Password   string
	Role       string
	ManagerID  string
	Department string
	Phone      string
	BaseSalary decimal.Decimal
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	User         *domain.User
}

type RefreshResult struct {
	AccessToken string
	User        *domain.User
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error)
	Logout(ctx context.Context, refreshToken string) error
}

// --- users ---

type UserService interface {
	Create(ctx context.Context, in RegisterInput) (*domain.User, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context, role string) ([]domain.User, error)
	Update(ctx context.Context, id string, upd UserUpdate) (*domain.User, error)
	UpdateSelf(ctx context.Context, id string, upd UserUpdate) (*domain.User, error)
	Delete(ctx context.Context, id string) error
	Team(ctx context.Context, managerID string) ([]domain.User, error)
}

// --- attendance ---

type AttendanceService interface {
	ClockIn(ctx context.Context, userID string) (*domain.AttendanceRecord, error)
	ClockOut(ctx context.Context, userID string) (*domain.AttendanceRecord, error)
	Calendar(ctx context.Context, userID string, month, year int) ([]domain.AttendanceRecord, error)
}

// --- payroll ---

// PayrollRunItem is the result of one employee in a payroll run.
type PayrollRunItem struct {
	UserID    string
	Name      string
	Outcome   domain.PayrollOutcome
	NetSalary decimal.Decimal
	Reason    string
}

// PayrollRunSummary reports a whole run. Items are in employee order.
type PayrollRunSummary struct {
	Month          int
	Year           int
	WorkingDays    int
	Processed      int
	Skipped        int
	Failed         int
	TotalNetAmount decimal.Decimal
	Items          []PayrollRunItem
}

type Payslip struct {
	FileName string
	Content  []byte
}

type PayrollService interface {
	Generate(ctx context.Context, month, year int) (*PayrollRunSummary, error)
	Payslip(ctx context.Context, caller Principal, userID string, month, year int) (*Payslip, error)
	History(ctx context.Context, userID string) ([]domain.PayrollRecord, error)
	Record(ctx context.Context, caller Principal, id string) (*domain.PayrollRecord, error)
}

// --- leave ---

type ApplyLeaveInput struct {
	Type   string
	From   time.Time
	To     time.Time
	Reason string
}

type LeaveService interface {
	Apply(ctx context.Context, userID string, in ApplyLeaveInput) (*domain.Leave, error)
	Decide(ctx context.Context, caller Principal, leaveID string, status domain.LeaveStatus, comment string) (*domain.Leave, error)
	TeamRequests(ctx context.Context, managerID string) ([]domain.Leave, error)
	MyRequests(ctx context.Context, userID string) ([]domain.Leave, error)
}

// --- tasks ---

type AssignTaskInput struct {
	EmployeeID  string
	Title       string
	Description string
	Deadline    *time.Time
}

type TaskService interface {
	Assign(ctx context.Context, managerID string, in AssignTaskInput) (*domain.Task, error)
	AssignedBy(ctx context.Context, managerID string) ([]domain.Task, error)
	Mine(ctx context.Context, userID string) ([]domain.Task, error)
	SubmitReport(ctx context.Context, userID, taskID, progress, remarks string) (*domain.Task, error)
	Review(ctx context.Context, caller Principal, taskID, remarks string) (*domain.Task, error)
}

// --- training ---

type CreateTrainingInput struct {
	Title          string
	Description    string
	TargetAudience []string
	StartDate      time.Time
	EndDate        time.Time
}

type TrainingService interface {
	Create(ctx context.Context, trainerID string, in CreateTrainingInput) (*domain.Training, error)
	ForRole(ctx context.Context, role string) ([]domain.Training, error)
	Complete(ctx context.Context, trainingID, userID string) (*domain.Training, error)
}

// --- offboarding ---

type ResignInput struct {
	ResignationDate time.Time
	LastWorkingDate time.Time
	Reason          string
}

// ClearanceUpdate carries optional flags; nil means unchanged.
type ClearanceUpdate struct {
	HR      *bool
	IT      *bool
	Finance *bool
	Manager *bool
}

type Letter struct {
	FileName string
	Content  []byte
}

type OffboardingService interface {
	Resign(ctx context.Context, userID string, in ResignInput) (*domain.Offboarding, error)
	UpdateClearance(ctx context.Context, userID string, upd ClearanceUpdate) (*domain.Offboarding, error)
	Letter(ctx context.Context, userID string, kind LetterKind) (*Letter, error)
	Status(ctx context.Context, caller Principal, userID string) (*domain.Offboarding, error)
}

// --- notifications ---

type NotifyInput struct {
	RecipientID string
	SenderID    string
	Title       string
	Message     string
	RelatedTo   string
	RelatedID   string
	// Channels lists external channels in addition to the in-app record.
	Channels []string
}

type NotificationService interface {
	Notify(ctx context.Context, in NotifyInput)
	Unread(ctx context.Context, userID string) ([]domain.Notification, error)
	All(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkRead(ctx context.Context, userID string, ids []string) (int64, error)
}

// --- chatbot ---

type ChatAnswer struct {
	Reply  string
	Source string
}

type ChatbotService interface {
	Ask(ctx context.Context, userID, message string) (*ChatAnswer, error)
	History(ctx context.Context, userID string) (*domain.ChatSession, error)
}

// --- analytics ---

type AttendanceInsights struct {
	TotalClockIns int
	CompletedDays int
	TotalHours    decimal.Decimal
}

type LeaveTrends struct {
	Total    int
	Approved int
	Rejected int
	Pending  int
}

type TaskStats struct {
	Assigned  int
	Submitted int
	Reviewed  int
}

type Dashboard struct {
	Month      int
	Year       int
	Attendance AttendanceInsights
	Leave      LeaveTrends
	Tasks      TaskStats
}

type AnalyticsService interface {
	Dashboard(ctx context.Context, month, year int) (*Dashboard, error)
}
