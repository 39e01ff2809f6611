package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/b2world/ems-backend/internal/core/domain"
	"github.com/b2world/ems-backend/internal/core/ports"
)

type PayrollHandler struct {
	payroll ports.PayrollService
}

func NewPayrollHandler(payroll ports.PayrollService) *PayrollHandler {
	return &PayrollHandler{payroll: payroll}
}

type calculatePayrollRequest struct {
	Month int `json:"month" validate:"required,min=1,max=12"`
	Year  int `json:"year"  validate:"required,min=1970,max=9999"`
}

type payrollRunItemResponse struct {
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	Outcome   string `json:"outcome"`
	NetSalary string `json:"net_salary,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

type payrollRunResponse struct {
	Month          int                      `json:"month"`
	Year           int                      `json:"year"`
	WorkingDays    int                      `json:"working_days"`
	Processed      int                      `json:"processed"`
	Skipped        int                      `json:"skipped"`
	Failed         int                      `json:"failed"`
	TotalNetAmount string                   `json:"total_net_amount"`
	Items          []payrollRunItemResponse `json:"items"`
}

func toPayrollRunResponse(s *ports.PayrollRunSummary) payrollRunResponse {
	items := make([]payrollRunItemResponse, len(s.Items))
	for i, it := range s.Items {
		items[i] = payrollRunItemResponse{
			UserID:  it.UserID,
			Name:    it.Name,
			Outcome: string(it.Outcome),
			Reason:  it.Reason,
		}
		if it.Outcome == domain.OutcomeProcessed {
			items[i].NetSalary = it.NetSalary.StringFixed(2)
		}
	}
	return payrollRunResponse{
		Month:          s.Month,
		Year:           s.Year,
		WorkingDays:    s.WorkingDays,
		Processed:      s.Processed,
		Skipped:        s.Skipped,
		Failed:         s.Failed,
		TotalNetAmount: s.TotalNetAmount.StringFixed(2),
		Items:          items,
	}
}

// Calculate runs payroll for every eligible employee for one month.
//
// @Summary      Generate payroll
// @Tags         payroll
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      calculatePayrollRequest  true  "Period"
// @Success      200   {object}  payrollRunResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/payroll/calculate [post]
func (h *PayrollHandler) Calculate(c echo.Context) error {
	var req calculatePayrollRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	summary, err := h.payroll.Generate(c.Request().Context(), req.Month, req.Year)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPayrollRunResponse(summary))
}

// Payslip streams the PDF payslip of one user for one month.
//
// @Summary      Download a payslip
// @Tags         payroll
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        userId  path  string  true  "User id"
// @Param        month   path  int     true  "Month 1-12"
// @Param        year    path  int     true  "Year"
// @Success      200     {file}    binary
// @Failure      403     {object}  errorResponse
// @Failure      404     {object}  errorResponse
// @Router       /api/payroll/payslip/{userId}/{month}/{year} [get]
func (h *PayrollHandler) Payslip(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	month, year, err := parsePeriod(c.Param("month"), c.Param("year"))
	if err != nil {
		return err
	}

	slip, err := h.payroll.Payslip(c.Request().Context(), p, c.Param("userId"), month, year)
	if err != nil {
		return err
	}
	return attachment(c, slip.FileName, slip.Content)
}

// History lists payroll records newest first. Admins may pass ?userId= to
// read another user's history.
//
// @Summary      Payroll history
// @Tags         payroll
// @Produce      json
// @Security     BearerAuth
// @Param        userId  query     string  false  "User id (admin only)"
// @Success      200     {array}   domain.PayrollRecord
// @Failure      403     {object}  errorResponse
// @Router       /api/payroll/history [get]
func (h *PayrollHandler) History(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	userID := p.UserID
	if q := c.QueryParam("userId"); q != "" && q != p.UserID {
		if !p.IsAdmin() {
			return domain.Forbidden("cannot read another user's payroll")
		}
		userID = q
	}

	recs, err := h.payroll.History(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, recs)
}

// Record returns one payroll record.
//
// @Summary      Get a payroll record
// @Tags         payroll
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Record id"
// @Success      200  {object}  domain.PayrollRecord
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/payroll/record/{id} [get]
func (h *PayrollHandler) Record(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	rec, err := h.payroll.Record(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rec)
}

func attachment(c echo.Context, name string, content []byte) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	c.Response().Header().Set(echo.HeaderContentLength, strconv.Itoa(len(content)))
	return c.Blob(http.StatusOK, "application/pdf", content)
}
