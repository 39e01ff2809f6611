package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/b2world/ems-backend/internal/core/domain"
	"github.com/b2world/ems-backend/internal/core/ports"
)

type LeaveHandler struct {
	leave ports.LeaveService
}

func NewLeaveHandler(leave ports.LeaveService) *LeaveHandler {
	return &LeaveHandler{leave: leave}
}

type applyLeaveRequest struct {
	LeaveType string `json:"leave_type" validate:"required,oneof=sick casual earned"`
	FromDate  string `json:"from_date"  validate:"required"`
	ToDate    string `json:"to_date"    validate:"required"`
	Reason    string `json:"reason"     validate:"required,max=500"`
}

type decideLeaveRequest struct {
	Status         string `json:"status"          validate:"required,oneof=approved rejected"`
	ManagerComment string `json:"manager_comment" validate:"max=500"`
}

// Apply files a leave request for the caller.
//
// @Summary      Apply for leave
// @Tags         leave
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      applyLeaveRequest  true  "Leave request"
// @Success      201   {object}  domain.Leave
// @Failure      400   {object}  errorResponse
// @Router       /api/leave/apply [post]
func (h *LeaveHandler) Apply(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req applyLeaveRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	from, err := parseDate("from_date", req.FromDate)
	if err != nil {
		return err
	}
	to, err := parseDate("to_date", req.ToDate)
	if err != nil {
		return err
	}

	l, err := h.leave.Apply(c.Request().Context(), p.UserID, ports.ApplyLeaveInput{
		Type:   req.LeaveType,
		From:   from,
		To:     to,
		Reason: req.Reason,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, l)
}

// Mine lists the caller's leave requests.
//
// @Summary      Own leave requests
// @Tags         leave
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Leave
// @Router       /api/leave/mine [get]
func (h *LeaveHandler) Mine(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	list, err := h.leave.MyRequests(c.Request().Context(), p.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// Decide approves or rejects a pending request.
//
// @Summary      Approve or reject leave
// @Tags         leave
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Leave id"
// @Param        body  body      decideLeaveRequest  true  "Decision"
// @Success      200   {object}  domain.Leave
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/leave/approve/{id} [put]
func (h *LeaveHandler) Decide(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req decideLeaveRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	l, err := h.leave.Decide(c.Request().Context(), p, c.Param("id"), domain.LeaveStatus(req.Status), req.ManagerComment)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, l)
}

// TeamRequests lists the requests of the calling manager's team.
//
// @Summary      Team leave requests
// @Tags         leave
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Leave
// @Router       /api/leave/manager-requests [get]
func (h *LeaveHandler) TeamRequests(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	list, err := h.leave.TeamRequests(c.Request().Context(), p.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}
