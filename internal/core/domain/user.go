package domain

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleEmployee = "employee"
	RoleIntern   = "intern"
)

var (
	ErrUserNotFound = NotFound("user not found")
	ErrUserExists   = Conflict("user already exists")
)

// Roles lists every valid role.
var Roles = []string{RoleAdmin, RoleManager, RoleEmployee, RoleIntern}

// PayrollRoles lists the roles included in a payroll run.
var PayrollRoles = []string{RoleEmployee, RoleManager}

// ValidRole reports whether role is one of Roles.
func ValidRole(role string) bool {
	return slices.Contains(Roles, role)
}

// User models a person with access to the system.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
	ManagerID    string `json:"manager_id,omitempty"`
	Department   string `json:"department,omitempty"`
	Phone        string `json:"phone,omitempty"`
	// BaseSalary is the monthly salary used by payroll. Zero means the
	// organisation default applies.
	BaseSalary    decimal.Decimal `json:"base_salary" swaggertype:"string"`
	RefreshTokens []string        `json:"-"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// PayrollEligible reports whether the user takes part in a payroll run.
func (u *User) PayrollEligible() bool {
	return slices.Contains(PayrollRoles, u.Role)
}

// HasRefreshToken reports whether token is in the user's stored list.
func (u *User) HasRefreshToken(token string) bool {
	return slices.Contains(u.RefreshTokens, token)
}

// UserFilter narrows user listings. Empty fields are ignored.
type UserFilter struct {
	Roles     []string
	ManagerID string
}
