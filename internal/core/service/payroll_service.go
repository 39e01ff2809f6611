package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/b2world/ems-backend/internal/core/calendar"
	"github.com/b2world/ems-backend/internal/core/domain"
	"github.com/b2world/ems-backend/internal/core/ports"
	"github.com/b2world/ems-backend/internal/pkg/metrics"
)

// PayrollPolicy holds the organisation-wide payroll parameters.
type PayrollPolicy struct {
	DefaultBaseSalary decimal.Decimal
	TaxRate           decimal.Decimal
	ProvidentFundRate decimal.Decimal
	// Concurrency bounds the per-employee steps running at once.
	Concurrency int
}

// DefaultPayrollPolicy returns a base salary of 50000, 10% tax and 12%
// provident fund.
func DefaultPayrollPolicy() PayrollPolicy {
	return PayrollPolicy{
		DefaultBaseSalary: decimal.NewFromInt(50000),
		TaxRate:           decimal.RequireFromString("0.10"),
		ProvidentFundRate: decimal.RequireFromString("0.12"),
		Concurrency:       4,
	}
}

// HolidayCalendar resolves the holidays of a period.
type HolidayCalendar interface {
	ForPeriod(year int, month time.Month) calendar.HolidaySet
}

// Pay is the outcome of the salary formula for one employee.
type Pay struct {
	DailyRate     decimal.Decimal
	Gross         decimal.Decimal
	Tax           decimal.Decimal
	ProvidentFund decimal.Decimal
	Net           decimal.Decimal
}

// ComputePay prorates base over the working days actually attended.
// Amounts are rounded to 2 places; net is derived from the rounded parts so
// that net == gross - tax - pf holds exactly. workingDays must be positive.
func ComputePay(base decimal.Decimal, workingDays, daysPresent int, p PayrollPolicy) Pay {
	wd := decimal.NewFromInt(int64(workingDays))
	gross := base.Mul(decimal.NewFromInt(int64(daysPresent))).Div(wd).Round(2)
	tax := gross.Mul(p.TaxRate).Round(2)
	pf := gross.Mul(p.ProvidentFundRate).Round(2)
	return Pay{
		DailyRate:     base.Div(wd).Round(2),
		Gross:         gross,
		Tax:           tax,
		ProvidentFund: pf,
		Net:           gross.Sub(tax).Sub(pf),
	}
}

// PayrollService generates monthly payroll and serves payslips.
type PayrollService struct {
	users      ports.UserRepository
	attendance ports.AttendanceRepository
	payrolls   ports.PayrollRepository
	holidays   HolidayCalendar
	renderer   ports.DocumentRenderer
	policy     PayrollPolicy
	lock       ports.RunLock
	notifier   ports.NotificationService
	log        zerolog.Logger
}

func NewPayrollService(
	users ports.UserRepository,
	attendance ports.AttendanceRepository,
	payrolls ports.PayrollRepository,
	holidays HolidayCalendar,
	renderer ports.DocumentRenderer,
	policy PayrollPolicy,
	log zerolog.Logger,
) *PayrollService {
	if policy.Concurrency <= 0 {
		policy.Concurrency = 1
	}
	return &PayrollService{
		users:      users,
		attendance: attendance,
		payrolls:   payrolls,
		holidays:   holidays,
		renderer:   renderer,
		policy:     policy,
		log:        log,
	}
}

// WithRunLock makes Generate hold a per-period lock while it runs.
func (s *PayrollService) WithRunLock(lock ports.RunLock) *PayrollService {
	s.lock = lock
	return s
}

// WithNotifier tells employees when their payroll is ready.
func (s *PayrollService) WithNotifier(n ports.NotificationService) *PayrollService {
	s.notifier = n
	return s
}

// Generate computes payroll for every eligible employee for the period.
// Employees that already have a record are skipped, so re-running a period
// is safe. A failure for one employee is reported in the summary and does not
// stop the others.
func (s *PayrollService) Generate(ctx context.Context, month, year int) (summary *ports.PayrollRunSummary, err error) {
	start := time.Now()
	defer func() {
		result := "ok"
		if err != nil {
			result = "error"
		}
		metrics.PayrollRunDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
	}()

	if !calendar.ValidPeriod(month, year) {
		return nil, domain.Validation("month must be between 1 and 12 and year must have four digits")
	}
	m := time.Month(month)

	workingDays := calendar.WorkingDays(year, m, s.holidays.ForPeriod(year, m))
	if workingDays == 0 {
		return nil, fmt.Errorf("generate payroll %02d/%d: %w", month, year, domain.ErrNoWorkingDays)
	}

	if s.lock != nil {
		acquired, lockErr := s.lock.Acquire(ctx, month, year)
		switch {
		case lockErr != nil:
			// Storage uniqueness still prevents duplicates without the lock.
			s.log.Warn().Err(lockErr).Int("month", month).Int("year", year).Msg("payroll lock unavailable, running anyway")
		case !acquired:
			return nil, domain.ErrRunInProgress
		default:
			defer func() {
				if relErr := s.lock.Release(context.WithoutCancel(ctx), month, year); relErr != nil {
					s.log.Warn().Err(relErr).Int("month", month).Int("year", year).Msg("failed to release payroll lock")
				}
			}()
		}
	}

	employees, err := s.users.List(ctx, domain.UserFilter{Roles: domain.PayrollRoles})
	if err != nil {
		return nil, fmt.Errorf("generate payroll: list employees: %w", err)
	}

	fromDay, toDay := periodDays(month, year)

	items := make([]ports.PayrollRunItem, len(employees))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.policy.Concurrency)
	for i := range employees {
		i := i
		emp := &employees[i]
		g.Go(func() error {
			items[i] = s.runOne(gctx, emp, month, year, workingDays, fromDay, toDay)
			return nil
		})
	}
	_ = g.Wait()

	summary = &ports.PayrollRunSummary{
		Month:          month,
		Year:           year,
		WorkingDays:    workingDays,
		TotalNetAmount: decimal.Zero,
		Items:          items,
	}
	for _, it := range items {
		metrics.PayrollRecordsTotal.WithLabelValues(string(it.Outcome)).Inc()
		switch it.Outcome {
		case domain.OutcomeProcessed:
			summary.Processed++
			summary.TotalNetAmount = summary.TotalNetAmount.Add(it.NetSalary)
		case domain.OutcomeSkipped:
			summary.Skipped++
		default:
			summary.Failed++
		}
	}

	s.log.Info().
		Int("month", month).
		Int("year", year).
		Int("working_days", workingDays).
		Int("processed", summary.Processed).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Str("total_net", summary.TotalNetAmount.StringFixed(2)).
		Msg("payroll run completed")

	return summary, nil
}

func (s *PayrollService) runOne(ctx context.Context, emp *domain.User, month, year, workingDays int, fromDay, toDay string) ports.PayrollRunItem {
	item := ports.PayrollRunItem{UserID: emp.ID, Name: emp.Name, NetSalary: decimal.Zero}
	fail := func(err error, msg string) ports.PayrollRunItem {
		s.log.Error().Err(err).Str("user_id", emp.ID).Int("month", month).Int("year", year).Msg(msg)
		item.Outcome = domain.OutcomeFailed
		item.Reason = msg
		return item
	}

	if err := ctx.Err(); err != nil {
		return fail(err, "payroll run cancelled")
	}

	if !emp.PayrollEligible() {
		item.Outcome = domain.OutcomeSkipped
		item.Reason = "role is not included in payroll"
		return item
	}

	// 1. Skip employees already paid for the period.
	exists, err := s.payrolls.Exists(ctx, emp.ID, month, year)
	if err != nil {
		return fail(err, "failed to check existing payroll")
	}
	if exists {
		item.Outcome = domain.OutcomeSkipped
		item.Reason = "payroll already generated"
		return item
	}

	// 2. Count completed attendance days in the period.
	present, err := s.attendance.CountPresent(ctx, emp.ID, fromDay, toDay)
	if err != nil {
		return fail(err, "failed to count attendance")
	}

	// 3. Compute and persist.
	base := emp.BaseSalary
	if base.IsZero() {
		base = s.policy.DefaultBaseSalary
	}
	pay := ComputePay(base, workingDays, present, s.policy)

	created, err := s.payrolls.Create(ctx, &domain.PayrollRecord{
		UserID:        emp.ID,
		Month:         month,
		Year:          year,
		BaseSalary:    base,
		WorkingDays:   workingDays,
		DaysPresent:   present,
		DailyRate:     pay.DailyRate,
		GrossSalary:   pay.Gross,
		Tax:           pay.Tax,
		ProvidentFund: pay.ProvidentFund,
		NetSalary:     pay.Net,
		GeneratedAt:   time.Now().UTC(),
	})
	if err != nil {
		// A concurrent run inserted the record first.
		if errors.Is(err, domain.ErrPayrollExists) {
			item.Outcome = domain.OutcomeSkipped
			item.Reason = "payroll already generated"
			return item
		}
		return fail(err, "failed to save payroll")
	}

	// 4. Tell the employee (best-effort).
	if s.notifier != nil {
		s.notifier.Notify(ctx, ports.NotifyInput{
			RecipientID: emp.ID,
			Title:       "Payslip available",
			Message:     fmt.Sprintf("Your payroll for %s %d has been generated. Net salary: %s.", time.Month(month), year, created.NetSalary.StringFixed(2)),
			RelatedTo:   domain.RelatedPayroll,
			RelatedID:   created.ID,
			Channels:    []string{domain.ChannelEmail},
		})
	}

	item.Outcome = domain.OutcomeProcessed
	item.NetSalary = created.NetSalary
	return item
}

// Payslip renders the payslip of userID for the period. Only the owner or an
// administrator may download it.
func (s *PayrollService) Payslip(ctx context.Context, caller ports.Principal, userID string, month, year int) (*ports.Payslip, error) {
	if !caller.IsAdmin() && caller.UserID != userID {
		return nil, domain.Forbidden("cannot access another employee's payslip")
	}
	if !calendar.ValidPeriod(month, year) {
		return nil, domain.Validation("month must be between 1 and 12 and year must have four digits")
	}

	rec, err := s.payrolls.FindByPeriod(ctx, userID, month, year)
	if err != nil {
		return nil, fmt.Errorf("payslip: %w", err)
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("payslip: %w", err)
	}

	content, err := s.renderer.RenderPayslip(rec, user)
	if err != nil {
		return nil, fmt.Errorf("payslip: render: %w", err)
	}

	if !rec.PayslipGenerated {
		if err := s.payrolls.MarkPayslipGenerated(ctx, rec.ID); err != nil {
			s.log.Warn().Err(err).Str("payroll_id", rec.ID).Msg("failed to flag payslip as generated")
		}
	}

	return &ports.Payslip{
		FileName: fmt.Sprintf("payslip_%s_%d_%02d.pdf", userID, year, month),
		Content:  content,
	}, nil
}

// History lists the user's payroll records, newest period first.
func (s *PayrollService) History(ctx context.Context, userID string) ([]domain.PayrollRecord, error) {
	recs, err := s.payrolls.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("payroll history: %w", err)
	}
	return recs, nil
}

// Record returns one payroll record to its owner or an administrator.
func (s *PayrollService) Record(ctx context.Context, caller ports.Principal, id string) (*domain.PayrollRecord, error) {
	rec, err := s.payrolls.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("payroll record: %w", err)
	}
	if !caller.IsAdmin() && rec.UserID != caller.UserID {
		return nil, domain.Forbidden("cannot access another employee's payroll")
	}
	return rec, nil
}
