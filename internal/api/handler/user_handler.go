package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/b2world/ems-backend/internal/core/domain"
	"github.com/b2world/ems-backend/internal/core/ports"
)

type UserHandler struct {
	users ports.UserService
}

func NewUserHandler(users ports.UserService) *UserHandler {
	return &UserHandler{users: users}
}

type createEmployeeRequest struct {
	Name       string `json:"name"        validate:"required,max=100"`
	Email      string `json:"email"       validate:"required,email"`
	Password   string `json:"password"    validate:"required,min=6"`
	Role       string `json:"role"        validate:"required,oneof=admin manager employee intern"`
	ManagerID  string `json:"manager_id"  validate:"omitempty,mongodb"`
	Department string `json:"department"  validate:"max=100"`
	Phone      string `json:"phone"       validate:"max=20"`
	BaseSalary string `json:"base_salary" validate:"omitempty,numeric"`
}

type updateEmployeeRequest struct {
	Name       *string `json:"name"        validate:"omitempty,min=1,max=100"`
	Role       *string `json:"role"        validate:"omitempty,oneof=admin manager employee intern"`
	ManagerID  *string `json:"manager_id"  validate:"omitempty,mongodb"`
	Department *string `json:"department"  validate:"omitempty,max=100"`
	Phone      *string `json:"phone"       validate:"omitempty,max=20"`
	BaseSalary *string `json:"base_salary" validate:"omitempty,numeric"`
}

type updateSelfRequest struct {
	Name       *string `json:"name"       validate:"omitempty,min=1,max=100"`
	Department *string `json:"department" validate:"omitempty,max=100"`
	Phone      *string `json:"phone"      validate:"omitempty,max=20"`
}

func parseSalary(v string) (decimal.Decimal, error) {
	if v == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil || d.IsNegative() {
		return decimal.Zero, domain.Validation("base_salary must be a non-negative amount")
	}
	return d, nil
}

// Profile returns the caller's own record.
//
// @Summary      Own profile
// @Tags         employee
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.User
// @Failure      401  {object}  errorResponse
// @Router       /api/employee/profile [get]
func (h *UserHandler) Profile(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	user, err := h.users.Get(c.Request().Context(), p.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateSelf lets a user change their own contact details.
//
// @Summary      Update own details
// @Tags         employee
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateSelfRequest  true  "Fields to change"
// @Success      200   {object}  domain.User
// @Failure      400   {object}  errorResponse
// @Router       /api/employee/update-details [put]
func (h *UserHandler) UpdateSelf(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req updateSelfRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.users.UpdateSelf(c.Request().Context(), p.UserID, ports.UserUpdate{
		Name:       req.Name,
		Department: req.Department,
		Phone:      req.Phone,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Create adds an employee account of any role.
//
// @Summary      Create an employee
// @Tags         employees
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createEmployeeRequest  true  "Employee"
// @Success      201   {object}  domain.User
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/employees [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createEmployeeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	salary, err := parseSalary(req.BaseSalary)
	if err != nil {
		return err
	}

	user, err := h.users.Create(c.Request().Context(), ports.RegisterInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Role:       req.Role,
		ManagerID:  req.ManagerID,
		Department: req.Department,
		Phone:      req.Phone,
		BaseSalary: salary,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

// List returns all users, optionally filtered by ?role=.
//
// @Summary      List employees
// @Tags         employees
// @Produce      json
// @Security     BearerAuth
// @Param        role  query     string  false  "Role filter"
// @Success      200   {array}   domain.User
// @Router       /api/employees [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.users.List(c.Request().Context(), c.QueryParam("role"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// Get returns one user.
//
// @Summary      Get an employee
// @Tags         employees
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  domain.User
// @Failure      404  {object}  errorResponse
// @Router       /api/employees/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.users.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Update changes any field of a user, including role and salary.
//
// @Summary      Update an employee
// @Tags         employees
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "User id"
// @Param        body  body      updateEmployeeRequest  true  "Fields to change"
// @Success      200   {object}  domain.User
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/employees/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	var req updateEmployeeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	upd := ports.UserUpdate{
		Name:       req.Name,
		Role:       req.Role,
		ManagerID:  req.ManagerID,
		Department: req.Department,
		Phone:      req.Phone,
	}
	if req.BaseSalary != nil {
		salary, err := parseSalary(*req.BaseSalary)
		if err != nil {
			return err
		}
		upd.BaseSalary = &salary
	}

	user, err := h.users.Update(c.Request().Context(), c.Param("id"), upd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Delete removes a user.
//
// @Summary      Delete an employee
// @Tags         employees
// @Security     BearerAuth
// @Param        id   path  string  true  "User id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /api/employees/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	if err := h.users.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Team lists the users reporting to the calling manager.
//
// @Summary      Own team
// @Tags         manager
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.User
// @Router       /api/manager/team [get]
func (h *UserHandler) Team(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	team, err := h.users.Team(c.Request().Context(), p.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, team)
}
