package domain

import "time"

var (
	ErrAlreadyClockedIn = Conflict("already clocked in today")
	ErrNoActiveClockIn  = Validation("no active clock-in found for today")
)

// AttendanceRecord is one user's presence for a single calendar day.
// Day is the organisation-local date formatted as 2006-01-02.
type AttendanceRecord struct {
	ID       string     `json:"id"`
	UserID   string     `json:"user_id"`
	Day      string     `json:"day"`
	ClockIn  *time.Time `json:"clock_in,omitempty"`
	ClockOut *time.Time `json:"clock_out,omitempty"`
}

// Present reports whether the day counts towards payroll.
func (r *AttendanceRecord) Present() bool {
	return r.ClockIn != nil && r.ClockOut != nil
}

// Worked returns the clocked duration, zero while the day is still open.
func (r *AttendanceRecord) Worked() time.Duration {
	if !r.Present() || r.ClockOut.Before(*r.ClockIn) {
		return 0
	}
	return r.ClockOut.Sub(*r.ClockIn)
}
