package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/b2world/ems-backend/internal/core/ports"
)

type AnalyticsHandler struct {
	analytics ports.AnalyticsService
	loc       *time.Location
}

func NewAnalyticsHandler(analytics ports.AnalyticsService, loc *time.Location) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, loc: loc}
}

type dashboardResponse struct {
	Month      int `json:"month"`
	Year       int `json:"year"`
	Attendance struct {
		TotalClockIns int    `json:"total_clock_ins"`
		CompletedDays int    `json:"completed_days"`
		TotalHours    string `json:"total_hours"`
	} `json:"attendance_insights"`
	Leave struct {
		Total    int `json:"total"`
		Approved int `json:"approved"`
		Rejected int `json:"rejected"`
		Pending  int `json:"pending"`
	} `json:"leave_trends"`
	Tasks struct {
		Assigned  int `json:"assigned"`
		Submitted int `json:"submitted"`
		Reviewed  int `json:"reviewed"`
	} `json:"task_stats"`
}

func toDashboardResponse(d *ports.Dashboard) dashboardResponse {
	var out dashboardResponse
	out.Month, out.Year = d.Month, d.Year
	out.Attendance.TotalClockIns = d.Attendance.TotalClockIns
	out.Attendance.CompletedDays = d.Attendance.CompletedDays
	out.Attendance.TotalHours = d.Attendance.TotalHours.StringFixed(2)
	out.Leave.Total = d.Leave.Total
	out.Leave.Approved = d.Leave.Approved
	out.Leave.Rejected = d.Leave.Rejected
	out.Leave.Pending = d.Leave.Pending
	out.Tasks.Assigned = d.Tasks.Assigned
	out.Tasks.Submitted = d.Tasks.Submitted
	out.Tasks.Reviewed = d.Tasks.Reviewed
	return out
}

// Dashboard aggregates attendance, leave and task figures for a month.
//
// @Summary      Analytics dashboard
// @Tags         analytics
// @Produce      json
// @Security     BearerAuth
// @Param        month  query     int  false  "Month 1-12"
// @Param        year   query     int  false  "Year"
// @Success      200    {object}  dashboardResponse
// @Failure      400    {object}  errorResponse
// @Router       /api/analytics/dashboard [get]
func (h *AnalyticsHandler) Dashboard(c echo.Context) error {
	month, year, err := period(c, time.Now().In(h.loc))
	if err != nil {
		return err
	}
	d, err := h.analytics.Dashboard(c.Request().Context(), month, year)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDashboardResponse(d))
}
