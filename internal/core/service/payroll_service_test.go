package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b2world/ems-backend/internal/core/calendar"
	"github.com/b2world/ems-backend/internal/core/domain"
	"github.com/b2world/ems-backend/internal/core/ports"
)

type payrollFixture struct {
	users      *stubUserRepo
	attendance *stubAttendanceRepo
	payrolls   *stubPayrollRepo
	notifier   *stubNotifier
	svc        *PayrollService
}

func newPayrollFixture(t *testing.T, holidays calendar.Table, users ...*domain.User) *payrollFixture {
	t.Helper()
	f := &payrollFixture{
		users:      newStubUserRepo(users...),
		attendance: newStubAttendanceRepo(),
		payrolls:   newStubPayrollRepo(),
		notifier:   &stubNotifier{},
	}
	f.svc = NewPayrollService(f.users, f.attendance, f.payrolls, holidays, stubRenderer{}, DefaultPayrollPolicy(), zerolog.Nop()).
		WithNotifier(f.notifier)
	return f
}

func employee(id string) *domain.User {
	return &domain.User{ID: id, Name: "Employee " + id, Email: id + "@b2world.test", Role: domain.RoleEmployee}
}

func TestComputePay_January2024Scenario(t *testing.T) {
	pay := ComputePay(decimal.NewFromInt(50000), 23, 20, DefaultPayrollPolicy())

	assert.Equal(t, "2173.91", pay.DailyRate.StringFixed(2))
	assert.Equal(t, "43478.26", pay.Gross.StringFixed(2))
	assert.Equal(t, "4347.83", pay.Tax.StringFixed(2))
	assert.Equal(t, "5217.39", pay.ProvidentFund.StringFixed(2))
	assert.Equal(t, "33913.04", pay.Net.StringFixed(2))
	assert.True(t, pay.Net.Equal(pay.Gross.Sub(pay.Tax).Sub(pay.ProvidentFund)))
}

func TestComputePay_NetInvariant(t *testing.T) {
	p := DefaultPayrollPolicy()
	for wd := 1; wd <= 23; wd++ {
		for present := 0; present <= wd; present++ {
			pay := ComputePay(decimal.RequireFromString("61234.57"), wd, present, p)
			require.True(t, pay.Net.Equal(pay.Gross.Sub(pay.Tax).Sub(pay.ProvidentFund)), "wd=%d present=%d", wd, present)
			require.False(t, pay.Net.IsNegative())
		}
	}
}

func TestPayrollService_Generate_Scenario(t *testing.T) {
	f := newPayrollFixture(t, calendar.Table{}, employee("e1"))
	f.attendance.presentDays("e1", 20)

	summary, err := f.svc.Generate(context.Background(), 1, 2024)
	require.NoError(t, err)

	assert.Equal(t, 23, summary.WorkingDays)
	assert.Equal(t, 1, summary.Processed)
	assert.Zero(t, summary.Skipped)
	assert.Zero(t, summary.Failed)
	assert.Equal(t, "33913.04", summary.TotalNetAmount.StringFixed(2))

	rec, err := f.payrolls.FindByPeriod(context.Background(), "e1", 1, 2024)
	require.NoError(t, err)
	assert.Equal(t, 20, rec.DaysPresent)
	assert.Equal(t, "50000.00", rec.BaseSalary.StringFixed(2))
	assert.Equal(t, "43478.26", rec.GrossSalary.StringFixed(2))
	assert.Equal(t, "4347.83", rec.Tax.StringFixed(2))
	assert.Equal(t, "5217.39", rec.ProvidentFund.StringFixed(2))
	assert.Equal(t, "33913.04", rec.NetSalary.StringFixed(2))

	assert.Equal(t, []string{"e1"}, f.notifier.recipients())
}

func TestPayrollService_Generate_DefaultHolidays(t *testing.T) {
	f := newPayrollFixture(t, calendar.DefaultTable(), employee("e1"))
	f.attendance.presentDays("e1", 22)

	summary, err := f.svc.Generate(context.Background(), 1, 2024)
	require.NoError(t, err)

	// Republic Day falls on a Friday in 2024.
	assert.Equal(t, 22, summary.WorkingDays)
	assert.Equal(t, "39000.00", summary.TotalNetAmount.StringFixed(2))
}

func TestPayrollService_Generate_RerunSkips(t *testing.T) {
	f := newPayrollFixture(t, calendar.Table{}, employee("e1"), employee("e2"))
	f.attendance.presentDays("e1", 20)

	first, err := f.svc.Generate(context.Background(), 1, 2024)
	require.NoError(t, err)
	require.Equal(t, 2, first.Processed)

	before, _ := f.payrolls.FindByPeriod(context.Background(), "e1", 1, 2024)

	second, err := f.svc.Generate(context.Background(), 1, 2024)
	require.NoError(t, err)
	assert.Zero(t, second.Processed)
	assert.Equal(t, 2, second.Skipped)
	assert.True(t, second.TotalNetAmount.IsZero())
	for _, it := range second.Items {
		assert.Equal(t, domain.OutcomeSkipped, it.Outcome)
	}

	after, _ := f.payrolls.FindByPeriod(context.Background(), "e1", 1, 2024)
	assert.Equal(t, before, after)
	assert.Len(t, f.payrolls.records, 2)
}

func TestPayrollService_Generate_ZeroPresent(t *testing.T) {
	f := newPayrollFixture(t, calendar.Table{}, employee("e1"))

	summary, err := f.svc.Generate(context.Background(), 1, 2024)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Processed)

	rec, err := f.payrolls.FindByPeriod(context.Background(), "e1", 1, 2024)
	require.NoError(t, err)
	assert.True(t, rec.GrossSalary.IsZero())
	assert.True(t, rec.Tax.IsZero())
	assert.True(t, rec.ProvidentFund.IsZero())
	assert.True(t, rec.NetSalary.IsZero())
}

func TestPayrollService_Generate_OnlyEligibleRoles(t *testing.T) {
	mgr := employee("m1")
	mgr.Role = domain.RoleManager
	admin := employee("a1")
	admin.Role = domain.RoleAdmin
	intern := employee("i1")
	intern.Role = domain.RoleIntern

	f := newPayrollFixture(t, calendar.Table{}, employee("e1"), mgr, admin, intern)

	summary, err := f.svc.Generate(context.Background(), 1, 2024)
	require.NoError(t, err)

	ids := []string{}
	for _, it := range summary.Items {
		ids = append(ids, it.UserID)
	}
	assert.ElementsMatch(t, []string{"e1", "m1"}, ids)
}

func TestPayrollService_RunOne_SkipsIneligibleRole(t *testing.T) {
	for _, role := range domain.Roles {
		u := employee("x1")
		u.Role = role
		assert.Equal(t, slices.Contains(domain.PayrollRoles, role), u.PayrollEligible(), role)
	}

	intern := employee("i1")
	intern.Role = domain.RoleIntern
	f := newPayrollFixture(t, calendar.Table{}, intern)
	f.attendance.presentDays("i1", 10)

	item := f.svc.runOne(context.Background(), intern, 1, 2024, 23, "2024-01-01", "2024-02-01")
	assert.Equal(t, domain.OutcomeSkipped, item.Outcome)
	assert.Empty(t, f.payrolls.records)
}

func TestPayrollService_Generate_PerEmployeeBaseSalary(t *testing.T) {
	e := employee("e1")
	e.BaseSalary = decimal.NewFromInt(30000)
	f := newPayrollFixture(t, calendar.Table{}, e)
	f.attendance.presentDays("e1", 23)

	_, err := f.svc.Generate(context.Background(), 1, 2024)
	require.NoError(t, err)

	rec, _ := f.payrolls.FindByPeriod(context.Background(), "e1", 1, 2024)
	assert.Equal(t, "30000.00", rec.GrossSalary.StringFixed(2))
	assert.Equal(t, "23400.00", rec.NetSalary.StringFixed(2))
}

func TestPayrollService_Generate_InvalidPeriod(t *testing.T) {
	allApril := calendar.Table{}
	for d := 1; d <= 30; d++ {
		allApril = append(allApril, calendar.Holiday{Name: fmt.Sprintf("day %d", d), Month: time.April, Day: d})
	}
	f := newPayrollFixture(t, allApril, employee("e1"))

	_, err := f.svc.Generate(context.Background(), 4, 2024)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidPeriod))
	assert.Empty(t, f.payrolls.records)
}

func TestPayrollService_Generate_BadInput(t *testing.T) {
	f := newPayrollFixture(t, calendar.Table{}, employee("e1"))

	for _, tc := range []struct{ month, year int }{{0, 2024}, {13, 2024}, {5, 24}, {12, 9999}} {
		_, err := f.svc.Generate(context.Background(), tc.month, tc.year)
		assert.True(t, errors.Is(err, domain.ErrValidation), "month=%d year=%d", tc.month, tc.year)
	}
}

func TestPayrollService_Generate_ContinuesOnFailure(t *testing.T) {
	f := newPayrollFixture(t, calendar.Table{}, employee("e1"), employee("e2"), employee("e3"))
	f.payrolls.createErr["e2"] = errors.New("write timeout")

	summary, err := f.svc.Generate(context.Background(), 1, 2024)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 1, summary.Failed)
	for _, it := range summary.Items {
		if it.UserID == "e2" {
			assert.Equal(t, domain.OutcomeFailed, it.Outcome)
			assert.NotEmpty(t, it.Reason)
		} else {
			assert.Equal(t, domain.OutcomeProcessed, it.Outcome)
		}
	}
}

func TestPayrollService_Generate_ConcurrentInsertIsSkipped(t *testing.T) {
	f := newPayrollFixture(t, calendar.Table{}, employee("e1"))
	_, err := f.payrolls.Create(context.Background(), &domain.PayrollRecord{UserID: "e1", Month: 1, Year: 2024})
	require.NoError(t, err)
	f.payrolls.existsLies = true

	summary, err := f.svc.Generate(context.Background(), 1, 2024)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	assert.Zero(t, summary.Failed)
}

func TestPayrollService_Generate_ManyEmployees(t *testing.T) {
	users := make([]*domain.User, 0, 25)
	for i := 0; i < 25; i++ {
		users = append(users, employee(fmt.Sprintf("e%02d", i)))
	}
	f := newPayrollFixture(t, calendar.Table{}, users...)
	f.attendance.countFn = func(string) (int, error) { return 20, nil }

	summary, err := f.svc.Generate(context.Background(), 1, 2024)
	require.NoError(t, err)
	assert.Equal(t, 25, summary.Processed)
	assert.Equal(t, decimal.RequireFromString("33913.04").Mul(decimal.NewFromInt(25)).StringFixed(2), summary.TotalNetAmount.StringFixed(2))
	for i, it := range summary.Items {
		assert.Equal(t, fmt.Sprintf("e%02d", i), it.UserID, "items keep employee order")
	}
}

func TestPayrollService_Generate_RunLock(t *testing.T) {
	f := newPayrollFixture(t, calendar.Table{}, employee("e1"))
	lock := &stubLock{held: true}
	f.svc.WithRunLock(lock)

	_, err := f.svc.Generate(context.Background(), 1, 2024)
	assert.True(t, errors.Is(err, domain.ErrRunInProgress))

	lock.held = false
	_, err = f.svc.Generate(context.Background(), 1, 2024)
	require.NoError(t, err)
	assert.Equal(t, 1, lock.release)
	assert.False(t, lock.held)

	lock.err = errors.New("redis down")
	summary, err := f.svc.Generate(context.Background(), 1, 2024)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
}

func TestPayrollService_Payslip(t *testing.T) {
	f := newPayrollFixture(t, calendar.Table{}, employee("e1"), employee("e2"))
	f.attendance.presentDays("e1", 20)
	_, err := f.svc.Generate(context.Background(), 1, 2024)
	require.NoError(t, err)

	owner := ports.Principal{UserID: "e1", Role: domain.RoleEmployee}
	slip, err := f.svc.Payslip(context.Background(), owner, "e1", 1, 2024)
	require.NoError(t, err)
	assert.Equal(t, "payslip_e1_2024_01.pdf", slip.FileName)
	assert.Contains(t, string(slip.Content), "33913.04")

	rec, _ := f.payrolls.FindByPeriod(context.Background(), "e1", 1, 2024)
	assert.True(t, rec.PayslipGenerated)

	other := ports.Principal{UserID: "e2", Role: domain.RoleEmployee}
	_, err = f.svc.Payslip(context.Background(), other, "e1", 1, 2024)
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	admin := ports.Principal{UserID: "a1", Role: domain.RoleAdmin}
	_, err = f.svc.Payslip(context.Background(), admin, "e1", 1, 2024)
	require.NoError(t, err)

	_, err = f.svc.Payslip(context.Background(), owner, "e1", 2, 2024)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestPayrollService_Record(t *testing.T) {
	f := newPayrollFixture(t, calendar.Table{}, employee("e1"))
	_, err := f.svc.Generate(context.Background(), 1, 2024)
	require.NoError(t, err)
	rec, _ := f.payrolls.FindByPeriod(context.Background(), "e1", 1, 2024)

	got, err := f.svc.Record(context.Background(), ports.Principal{UserID: "e1", Role: domain.RoleEmployee}, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)

	_, err = f.svc.Record(context.Background(), ports.Principal{UserID: "e9", Role: domain.RoleManager}, rec.ID)
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	_, err = f.svc.Record(context.Background(), ports.Principal{UserID: "a1", Role: domain.RoleAdmin}, "missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
