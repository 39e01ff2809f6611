package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrPayrollNotFound = NotFound("payroll record not found")
	ErrPayrollExists   = Conflict("payroll already generated for this period")
	ErrRunInProgress   = Conflict("payroll run already in progress for this period")
)

// PayrollRecord is the computed pay of one user for one month. Exactly one
// record exists per (user, month, year).
type PayrollRecord struct {
	ID               string          `json:"id"`
	UserID           string          `json:"user_id"`
	Month            int             `json:"month"`
	Year             int             `json:"year"`
	BaseSalary       decimal.Decimal `json:"base_salary" swaggertype:"string"`
	WorkingDays      int             `json:"working_days"`
	DaysPresent      int             `json:"days_present"`
	DailyRate        decimal.Decimal `json:"daily_rate" swaggertype:"string"`
	GrossSalary      decimal.Decimal `json:"gross_salary" swaggertype:"string"`
	Tax              decimal.Decimal `json:"tax" swaggertype:"string"`
	ProvidentFund    decimal.Decimal `json:"provident_fund" swaggertype:"string"`
	NetSalary        decimal.Decimal `json:"net_salary" swaggertype:"string"`
	PayslipGenerated bool            `json:"payslip_generated"`
	GeneratedAt      time.Time       `json:"generated_at"`
}

// PayrollOutcome is the per-employee result of a payroll run.
type PayrollOutcome string

const (
	OutcomeProcessed PayrollOutcome = "processed"
	OutcomeSkipped   PayrollOutcome = "skipped"
	OutcomeFailed    PayrollOutcome = "failed"
)

// ErrNoWorkingDays is returned for a period without a single working day.
var ErrNoWorkingDays = newError(ErrInvalidPeriod, "period has no working days")
