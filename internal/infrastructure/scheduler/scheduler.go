// Package scheduler runs the monthly payroll automatically.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/b2world/ems-backend/internal/core/ports"
)

const runTimeout = 30 * time.Minute

// PayrollGenerator is the part of the payroll service the scheduler drives.
type PayrollGenerator interface {
	Generate(ctx context.Context, month, year int) (*ports.PayrollRunSummary, error)
}

// Scheduler triggers payroll generation for the previous month on a cron
// schedule evaluated in the organisation's time zone.
type Scheduler struct {
	cron    *cron.Cron
	payroll PayrollGenerator
	loc     *time.Location
	log     zerolog.Logger
	now     func() time.Time
}

func New(payroll PayrollGenerator, loc *time.Location, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(loc)),
		payroll: payroll,
		loc:     loc,
		log:     log,
		now:     time.Now,
	}
}

// SchedulePayroll registers the monthly run. spec is a standard five-field
// cron expression.
func (s *Scheduler) SchedulePayroll(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.runPreviousMonth); err != nil {
		return fmt.Errorf("schedule payroll %q: %w", spec, err)
	}
	s.log.Info().Str("schedule", spec).Msg("payroll run scheduled")
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits for a running job to finish or ctx to
// expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn().Msg("scheduler stop timed out with a job still running")
	}
}

func (s *Scheduler) runPreviousMonth() {
	month, year := previousPeriod(s.now().In(s.loc))

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	log := s.log.With().Int("month", month).Int("year", year).Logger()
	log.Info().Msg("scheduled payroll run started")

	summary, err := s.payroll.Generate(ctx, month, year)
	if err != nil {
		log.Error().Err(err).Msg("scheduled payroll run failed")
		return
	}
	log.Info().
		Int("processed", summary.Processed).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Str("total_net", summary.TotalNetAmount.StringFixed(2)).
		Msg("scheduled payroll run finished")
}

// previousPeriod returns the calendar month before t.
func previousPeriod(t time.Time) (month, year int) {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	prev := first.AddDate(0, -1, 0)
	return int(prev.Month()), prev.Year()
}
