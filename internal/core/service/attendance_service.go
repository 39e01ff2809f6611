package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/b2world/ems-backend/internal/core/calendar"
	"github.com/b2world/ems-backend/internal/core/domain"
	"github.com/b2world/ems-backend/internal/core/ports"
	"github.com/b2world/ems-backend/internal/pkg/metrics"
)

// AttendanceService records daily clock-in and clock-out. Days are counted in
// the organisation time zone.
type AttendanceService struct {
	repo ports.AttendanceRepository
	loc  *time.Location
	now  func() time.Time
	log  zerolog.Logger
}

func NewAttendanceService(repo ports.AttendanceRepository, loc *time.Location, log zerolog.Logger) *AttendanceService {
	if loc == nil {
		loc = time.UTC
	}
	return &AttendanceService{repo: repo, loc: loc, now: time.Now, log: log}
}

func (s *AttendanceService) ClockIn(ctx context.Context, userID string) (*domain.AttendanceRecord, error) {
	now := s.now().UTC()
	rec, err := s.repo.ClockIn(ctx, userID, calendar.DayKey(now, s.loc), now)
	if err != nil {
		return nil, fmt.Errorf("clock in: %w", err)
	}
	metrics.AttendanceEventsTotal.WithLabelValues("clock_in").Inc()
	s.log.Debug().Str("user_id", userID).Str("day", rec.Day).Msg("clocked in")
	return rec, nil
}

func (s *AttendanceService) ClockOut(ctx context.Context, userID string) (*domain.AttendanceRecord, error) {
	now := s.now().UTC()
	rec, err := s.repo.ClockOut(ctx, userID, calendar.DayKey(now, s.loc), now)
	if err != nil {
		return nil, fmt.Errorf("clock out: %w", err)
	}
	metrics.AttendanceEventsTotal.WithLabelValues("clock_out").Inc()
	s.log.Debug().Str("user_id", userID).Str("day", rec.Day).Msg("clocked out")
	return rec, nil
}

// Calendar lists the user's records of the month ordered by day.
func (s *AttendanceService) Calendar(ctx context.Context, userID string, month, year int) ([]domain.AttendanceRecord, error) {
	if !calendar.ValidPeriod(month, year) {
		return nil, domain.Validation("month must be between 1 and 12 and year must have four digits")
	}
	from, to := periodDays(month, year)
	recs, err := s.repo.ListRange(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("attendance calendar: %w", err)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].Day < recs[j].Day })
	return recs, nil
}

// periodDays returns the day keys bounding [first of month, first of next).
func periodDays(month, year int) (string, string) {
	from, to := calendar.MonthRange(year, time.Month(month), time.UTC)
	return calendar.DateOf(from).String(), calendar.DateOf(to).String()
}
