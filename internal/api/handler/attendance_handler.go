package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/b2world/ems-backend/internal/core/ports"
)

type AttendanceHandler struct {
	attendance ports.AttendanceService
	loc        *time.Location
}

func NewAttendanceHandler(attendance ports.AttendanceService, loc *time.Location) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance, loc: loc}
}

// ClockIn opens today's attendance record.
//
// @Summary      Clock in
// @Tags         attendance
// @Produce      json
// @Security     BearerAuth
// @Success      201  {object}  domain.AttendanceRecord
// @Failure      409  {object}  errorResponse
// @Router       /api/attendance/clock-in [post]
func (h *AttendanceHandler) ClockIn(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	rec, err := h.attendance.ClockIn(c.Request().Context(), p.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, rec)
}

// ClockOut closes today's attendance record.
//
// @Summary      Clock out
// @Tags         attendance
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.AttendanceRecord
// @Failure      400  {object}  errorResponse
// @Router       /api/attendance/clock-out [post]
func (h *AttendanceHandler) ClockOut(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	rec, err := h.attendance.ClockOut(c.Request().Context(), p.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rec)
}

// Calendar lists the caller's records for a month, the current one by default.
//
// @Summary      Attendance calendar
// @Tags         attendance
// @Produce      json
// @Security     BearerAuth
// @Param        month  query     int  false  "Month 1-12"
// @Param        year   query     int  false  "Year"
// @Success      200    {array}   domain.AttendanceRecord
// @Failure      400    {object}  errorResponse
// @Router       /api/attendance/calendar [get]
func (h *AttendanceHandler) Calendar(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	month, year, err := period(c, time.Now().In(h.loc))
	if err != nil {
		return err
	}
	recs, err := h.attendance.Calendar(c.Request().Context(), p.UserID, month, year)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, recs)
}
