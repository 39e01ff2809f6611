// Package calendar computes working days for payroll periods.
//
// A working day is a calendar day that falls on Monday through Friday and is
// not a holiday of the period. All functions are pure; holiday lookups are
// resolved by the caller through a Table.
package calendar

import (
	"fmt"
	"time"
)

// Date is a civil date without time of day or location.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the civil date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// String formats the date as 2006-01-02.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// HolidaySet is the set of holidays that apply to a period.
type HolidaySet map[Date]struct{}

// NewHolidaySet builds a set from explicit dates.
func NewHolidaySet(dates ...Date) HolidaySet {
	s := make(HolidaySet, len(dates))
	for _, d := range dates {
		s[d] = struct{}{}
	}
	return s
}

// Contains reports whether d is a holiday.
func (s HolidaySet) Contains(d Date) bool {
	_, ok := s[d]
	return ok
}

// Supported years. MaxYear keeps the exclusive end of every period a
// four-digit day key.
const (
	MinYear = 1970
	MaxYear = 9998
)

// ValidPeriod reports whether month is 1..12 and year is within
// [MinYear, MaxYear].
func ValidPeriod(month, year int) bool {
	return month >= 1 && month <= 12 && year >= MinYear && year <= MaxYear
}

// DaysIn returns the number of days of the month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// WorkingDays counts the weekdays of the month that are not holidays.
// A nil set means no holidays.
func WorkingDays(year int, month time.Month, holidays HolidaySet) int {
	n := 0
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	for day := first; day.Month() == month; day = day.AddDate(0, 0, 1) {
		switch day.Weekday() {
		case time.Saturday, time.Sunday:
			continue
		}
		if holidays.Contains(DateOf(day)) {
			continue
		}
		n++
	}
	return n
}

// MonthRange returns the half-open interval [first day, first day of the
// next month) in loc.
func MonthRange(year int, month time.Month, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	from := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return from, from.AddDate(0, 1, 0)
}

// DayKey formats t as the organisation-local day key used by attendance.
func DayKey(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return DateOf(t).String()
}
