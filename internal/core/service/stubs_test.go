package service

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/b2world/ems-backend/internal/core/domain"
	"github.com/b2world/ems-backend/internal/core/ports"
)

// --- users ---

type stubUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*domain.User
}

func newStubUserRepo(users ...*domain.User) *stubUserRepo {
	r := &stubUserRepo{users: make(map[string]*domain.User)}
	for _, u := range users {
		r.users[u.ID] = cloneUser(u)
	}
	return r
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.RefreshTokens = slices.Clone(u.RefreshTokens)
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.seq++
	c := cloneUser(user)
	c.ID = fmt.Sprintf("user-%d", r.seq)
	r.users[c.ID] = c
	return cloneUser(c), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) List(_ context.Context, f domain.UserFilter) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.User{}
	for _, u := range r.users {
		if len(f.Roles) > 0 && !slices.Contains(f.Roles, u.Role) {
			continue
		}
		if f.ManagerID != "" && u.ManagerID != f.ManagerID {
			continue
		}
		out = append(out, *cloneUser(u))
	}
	slices.SortFunc(out, func(a, b domain.User) int {
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, id string, upd ports.UserUpdate) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	if upd.ManagerID != nil {
		u.ManagerID = *upd.ManagerID
	}
	if upd.Department != nil {
		u.Department = *upd.Department
	}
	if upd.Phone != nil {
		u.Phone = *upd.Phone
	}
	if upd.BaseSalary != nil {
		u.BaseSalary = *upd.BaseSalary
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) AddRefreshToken(_ context.Context, userID, token string, limit int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.RefreshTokens = append(u.RefreshTokens, token)
	if len(u.RefreshTokens) > limit {
		u.RefreshTokens = u.RefreshTokens[len(u.RefreshTokens)-limit:]
	}
	return nil
}

func (r *stubUserRepo) RemoveRefreshToken(_ context.Context, userID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.RefreshTokens = slices.DeleteFunc(u.RefreshTokens, func(t string) bool { return t == token })
	return nil
}

// --- attendance ---

type stubAttendanceRepo struct {
	mu      sync.Mutex
	records map[string]*domain.AttendanceRecord // key: user|day
	countFn func(userID string) (int, error)
}

func newStubAttendanceRepo() *stubAttendanceRepo {
	return &stubAttendanceRepo{records: make(map[string]*domain.AttendanceRecord)}
}

func (r *stubAttendanceRepo) put(userID, day string, in, out *time.Time) {
	r.records[userID+"|"+day] = &domain.AttendanceRecord{ID: userID + day, UserID: userID, Day: day, ClockIn: in, ClockOut: out}
}

func (r *stubAttendanceRepo) ClockIn(_ context.Context, userID, day string, at time.Time) (*domain.AttendanceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[userID+"|"+day]; ok {
		return nil, domain.ErrAlreadyClockedIn
	}
	r.put(userID, day, &at, nil)
	rec := *r.records[userID+"|"+day]
	return &rec, nil
}

func (r *stubAttendanceRepo) ClockOut(_ context.Context, userID, day string, at time.Time) (*domain.AttendanceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[userID+"|"+day]
	if !ok || rec.ClockIn == nil || rec.ClockOut != nil {
		return nil, domain.ErrNoActiveClockIn
	}
	rec.ClockOut = &at
	out := *rec
	return &out, nil
}

func (r *stubAttendanceRepo) ListRange(_ context.Context, userID, fromDay, toDay string) ([]domain.AttendanceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.AttendanceRecord{}
	for _, rec := range r.records {
		if (userID == "" || rec.UserID == userID) && rec.Day >= fromDay && rec.Day < toDay {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (r *stubAttendanceRepo) ListAllRange(ctx context.Context, fromDay, toDay string) ([]domain.AttendanceRecord, error) {
	return r.ListRange(ctx, "", fromDay, toDay)
}

func (r *stubAttendanceRepo) CountPresent(ctx context.Context, userID, fromDay, toDay string) (int, error) {
	if r.countFn != nil {
		return r.countFn(userID)
	}
	recs, _ := r.ListRange(ctx, userID, fromDay, toDay)
	n := 0
	for _, rec := range recs {
		if rec.Present() {
			n++
		}
	}
	return n, nil
}

// presentDays fills n completed weekdays of January 2024 for userID.
func (r *stubAttendanceRepo) presentDays(userID string, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	day := time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)
	for added := 0; added < n; day = day.AddDate(0, 0, 1) {
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}
		in, out := day, day.Add(8*time.Hour)
		r.put(userID, day.Format(time.DateOnly), &in, &out)
		added++
	}
}

// --- payroll ---

type stubPayrollRepo struct {
	mu        sync.Mutex
	seq       int
	records   map[string]*domain.PayrollRecord // key: user|month|year
	createErr map[string]error                 // by user id
	// existsLies makes Exists report false so Create sees the duplicate,
	// like two runs racing past the existence check.
	existsLies bool
}

func newStubPayrollRepo() *stubPayrollRepo {
	return &stubPayrollRepo{records: make(map[string]*domain.PayrollRecord), createErr: make(map[string]error)}
}

func payrollKey(userID string, month, year int) string {
	return fmt.Sprintf("%s|%d|%d", userID, month, year)
}

func (r *stubPayrollRepo) Exists(_ context.Context, userID string, month, year int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.existsLies {
		return false, nil
	}
	_, ok := r.records[payrollKey(userID, month, year)]
	return ok, nil
}

func (r *stubPayrollRepo) Create(_ context.Context, rec *domain.PayrollRecord) (*domain.PayrollRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.createErr[rec.UserID]; err != nil {
		return nil, err
	}
	key := payrollKey(rec.UserID, rec.Month, rec.Year)
	if _, ok := r.records[key]; ok {
		return nil, domain.ErrPayrollExists
	}
	r.seq++
	c := *rec
	c.ID = fmt.Sprintf("payroll-%d", r.seq)
	r.records[key] = &c
	out := c
	return &out, nil
}

func (r *stubPayrollRepo) FindByID(_ context.Context, id string) (*domain.PayrollRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.ID == id {
			out := *rec
			return &out, nil
		}
	}
	return nil, domain.ErrPayrollNotFound
}

func (r *stubPayrollRepo) FindByPeriod(_ context.Context, userID string, month, year int) (*domain.PayrollRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[payrollKey(userID, month, year)]
	if !ok {
		return nil, domain.ErrPayrollNotFound
	}
	out := *rec
	return &out, nil
}

func (r *stubPayrollRepo) ListByUser(_ context.Context, userID string) ([]domain.PayrollRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.PayrollRecord{}
	for _, rec := range r.records {
		if rec.UserID == userID {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (r *stubPayrollRepo) MarkPayslipGenerated(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.ID == id {
			rec.PayslipGenerated = true
			return nil
		}
	}
	return domain.ErrPayrollNotFound
}

// --- collaborators ---

type stubNotifier struct {
	mu   sync.Mutex
	sent []ports.NotifyInput
}

func (n *stubNotifier) Notify(_ context.Context, in ports.NotifyInput) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, in)
}

func (n *stubNotifier) Unread(context.Context, string) ([]domain.Notification, error) {
	return nil, nil
}
func (n *stubNotifier) All(context.Context, string) ([]domain.Notification, error) { return nil, nil }
func (n *stubNotifier) MarkRead(context.Context, string, []string) (int64, error)  { return 0, nil }

func (n *stubNotifier) recipients() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.sent))
	for i, in := range n.sent {
		out[i] = in.RecipientID
	}
	return out
}

type stubRenderer struct {
	err error
}

func (r stubRenderer) RenderPayslip(rec *domain.PayrollRecord, _ *domain.User) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF payslip " + rec.NetSalary.StringFixed(2)), nil
}

func (r stubRenderer) RenderLetter(kind ports.LetterKind, _ *domain.Offboarding, _ *domain.User) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF " + string(kind)), nil
}

type stubLock struct {
	held    bool
	err     error
	release int
}

func (l *stubLock) Acquire(context.Context, int, int) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	if l.held {
		return false, nil
	}
	l.held = true
	return true, nil
}

func (l *stubLock) Release(context.Context, int, int) error {
	l.held = false
	l.release++
	return nil
}
