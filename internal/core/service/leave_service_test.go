package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/b2world/ems-backend/internal/core/domain"
	"github.com/b2world/ems-backend/internal/core/ports"
)

type stubLeaveRepo struct {
	mu     sync.Mutex
	seq    int
	leaves map[string]*domain.Leave
}

func newStubLeaveRepo() *stubLeaveRepo {
	return &stubLeaveRepo{leaves: make(map[string]*domain.Leave)}
}

func (r *stubLeaveRepo) Create(_ context.Context, l *domain.Leave) (*domain.Leave, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	c := *l
	c.ID = fmt.Sprintf("leave-%d", r.seq)
	r.leaves[c.ID] = &c
	out := c
	return &out, nil
}

func (r *stubLeaveRepo) FindByID(_ context.Context, id string) (*domain.Leave, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.leaves[id]
	if !ok {
		return nil, domain.ErrLeaveNotFound
	}
	out := *l
	return &out, nil
}

func (r *stubLeaveRepo) ListByUsers(_ context.Context, ids []string) ([]domain.Leave, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Leave{}
	for _, l := range r.leaves {
		if slices.Contains(ids, l.UserID) {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *stubLeaveRepo) Decide(_ context.Context, id string, status domain.LeaveStatus, comment, by string) (*domain.Leave, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.leaves[id]
	if !ok {
		return nil, domain.ErrLeaveNotFound
	}
	if l.Status != domain.LeavePending {
		return nil, domain.ErrLeaveDecided
	}
	l.Status, l.ManagerComment, l.DecidedBy = status, comment, by
	out := *l
	return &out, nil
}

func (r *stubLeaveRepo) CountByStatus(context.Context, time.Time, time.Time) (map[domain.LeaveStatus]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[domain.LeaveStatus]int{}
	for _, l := range r.leaves {
		out[l.Status]++
	}
	return out, nil
}

func leaveFixture() (*LeaveService, *stubLeaveRepo, *stubNotifier) {
	users := newStubUserRepo(
		&domain.User{ID: "m1", Name: "Manager", Role: domain.RoleManager},
		&domain.User{ID: "m2", Name: "Other Manager", Role: domain.RoleManager},
		&domain.User{ID: "e1", Name: "Employee", Role: domain.RoleEmployee, ManagerID: "m1"},
		&domain.User{ID: "e2", Name: "Employee 2", Role: domain.RoleEmployee, ManagerID: "m2"},
	)
	repo := newStubLeaveRepo()
	n := &stubNotifier{}
	return NewLeaveService(repo, users, n, zerolog.Nop()), repo, n
}

func sickLeave() ports.ApplyLeaveInput {
	return ports.ApplyLeaveInput{
		Type:   domain.LeaveSick,
		From:   time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC),
		To:     time.Date(2024, 5, 7, 0, 0, 0, 0, time.UTC),
		Reason: "flu",
	}
}

func TestLeaveService_Apply(t *testing.T) {
	svc, _, n := leaveFixture()

	leave, err := svc.Apply(context.Background(), "e1", sickLeave())
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if leave.Status != domain.LeavePending || leave.ManagerID != "m1" {
		t.Fatalf("unexpected leave: %+v", leave)
	}
	if got := n.recipients(); len(got) != 1 || got[0] != "m1" {
		t.Fatalf("expected manager notification, got %v", got)
	}
}

func TestLeaveService_Apply_Validation(t *testing.T) {
	svc, _, _ := leaveFixture()

	bad := sickLeave()
	bad.Type = "vacation"
	if _, err := svc.Apply(context.Background(), "e1", bad); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for type, got %v", err)
	}

	bad = sickLeave()
	bad.From, bad.To = bad.To, bad.From
	if _, err := svc.Apply(context.Background(), "e1", bad); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for dates, got %v", err)
	}
}

func TestLeaveService_Decide(t *testing.T) {
	svc, _, n := leaveFixture()
	leave, _ := svc.Apply(context.Background(), "e1", sickLeave())

	other := ports.Principal{UserID: "m2", Role: domain.RoleManager}
	if _, err := svc.Decide(context.Background(), other, leave.ID, domain.LeaveApproved, ""); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for other manager, got %v", err)
	}

	mgr := ports.Principal{UserID: "m1", Role: domain.RoleManager}
	if _, err := svc.Decide(context.Background(), mgr, leave.ID, domain.LeavePending, ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for status, got %v", err)
	}

	decided, err := svc.Decide(context.Background(), mgr, leave.ID, domain.LeaveApproved, " enjoy ")
	if err != nil {
		t.Fatalf("Decide returned error: %v", err)
	}
	if decided.Status != domain.LeaveApproved || decided.ManagerComment != "enjoy" {
		t.Fatalf("unexpected decision: %+v", decided)
	}
	if got := n.recipients(); got[len(got)-1] != "e1" {
		t.Fatalf("expected employee notification, got %v", got)
	}

	if _, err := svc.Decide(context.Background(), mgr, leave.ID, domain.LeaveRejected, ""); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict on second decision, got %v", err)
	}
}

func TestLeaveService_Decide_Admin(t *testing.T) {
	svc, _, _ := leaveFixture()
	leave, _ := svc.Apply(context.Background(), "e2", sickLeave())

	admin := ports.Principal{UserID: "a1", Role: domain.RoleAdmin}
	if _, err := svc.Decide(context.Background(), admin, leave.ID, domain.LeaveRejected, "no"); err != nil {
		t.Fatalf("admin Decide returned error: %v", err)
	}
}

func TestLeaveService_TeamRequests(t *testing.T) {
	svc, _, _ := leaveFixture()
	_, _ = svc.Apply(context.Background(), "e1", sickLeave())
	_, _ = svc.Apply(context.Background(), "e2", sickLeave())

	got, err := svc.TeamRequests(context.Background(), "m1")
	if err != nil {
		t.Fatalf("TeamRequests returned error: %v", err)
	}
	if len(got) != 1 || got[0].UserID != "e1" {
		t.Fatalf("expected only e1's request, got %+v", got)
	}

	got, _ = svc.TeamRequests(context.Background(), "nobody")
	if len(got) != 0 {
		t.Fatalf("expected no requests, got %d", len(got))
	}

	mine, _ := svc.MyRequests(context.Background(), "e2")
	if len(mine) != 1 {
		t.Fatalf("expected 1 own request, got %d", len(mine))
	}
}
