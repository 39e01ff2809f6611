package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/b2world/ems-backend/internal/core/calendar"
	"github.com/b2world/ems-backend/internal/core/domain"
	"github.com/b2world/ems-backend/internal/core/ports"
)

// AnalyticsService aggregates organisation-wide figures for a month.
type AnalyticsService struct {
	attendance ports.AttendanceRepository
	leaves     ports.LeaveRepository
	tasks      ports.TaskRepository
}

func NewAnalyticsService(attendance ports.AttendanceRepository, leaves ports.LeaveRepository, tasks ports.TaskRepository) *AnalyticsService {
	return &AnalyticsService{attendance: attendance, leaves: leaves, tasks: tasks}
}

func (s *AnalyticsService) Dashboard(ctx context.Context, month, year int) (*ports.Dashboard, error) {
	if !calendar.ValidPeriod(month, year) {
		return nil, domain.Validation("month must be between 1 and 12 and year must have four digits")
	}
	out := &ports.Dashboard{Month: month, Year: year}
	fromDay, toDay := periodDays(month, year)
	from, to := calendar.MonthRange(year, time.Month(month), time.UTC)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		recs, err := s.attendance.ListAllRange(gctx, fromDay, toDay)
		if err != nil {
			return fmt.Errorf("attendance insights: %w", err)
		}
		var worked time.Duration
		for _, r := range recs {
			if r.ClockIn != nil {
				out.Attendance.TotalClockIns++
			}
			if r.Present() {
				out.Attendance.CompletedDays++
				worked += r.Worked()
			}
		}
		out.Attendance.TotalHours = decimal.NewFromFloat(worked.Hours()).Round(2)
		return nil
	})

	g.Go(func() error {
		counts, err := s.leaves.CountByStatus(gctx, from, to)
		if err != nil {
			return fmt.Errorf("leave trends: %w", err)
		}
		out.Leave = ports.LeaveTrends{
			Approved: counts[domain.LeaveApproved],
			Rejected: counts[domain.LeaveRejected],
			Pending:  counts[domain.LeavePending],
		}
		out.Leave.Total = out.Leave.Approved + out.Leave.Rejected + out.Leave.Pending
		return nil
	})

	g.Go(func() error {
		counts, err := s.tasks.CountByStatus(gctx)
		if err != nil {
			return fmt.Errorf("task stats: %w", err)
		}
		out.Tasks = ports.TaskStats{
			Assigned:  counts[domain.TaskAssigned],
			Submitted: counts[domain.TaskSubmitted],
			Reviewed:  counts[domain.TaskReviewed],
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
