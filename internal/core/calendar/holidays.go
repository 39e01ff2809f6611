package calendar

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Holiday recurs on the same month and day every year.
type Holiday struct {
	Name  string     `yaml:"name"`
	Month time.Month `yaml:"month"`
	Day   int        `yaml:"day"`
}

// Table is the organisation holiday calendar.
type Table []Holiday

// DefaultTable returns the national holidays observed when no holiday file
// is configured.
func DefaultTable() Table {
	return Table{
		{Name: "Republic Day", Month: time.January, Day: 26},
		{Name: "Independence Day", Month: time.August, Day: 15},
		{Name: "Gandhi Jayanti", Month: time.October, Day: 2},
	}
}

// ForPeriod returns the holidays of the table falling in the given month.
func (t Table) ForPeriod(year int, month time.Month) HolidaySet {
	set := HolidaySet{}
	for _, h := range t {
		if h.Month != month || h.Day > DaysIn(year, month) {
			continue
		}
		set[Date{Year: year, Month: month, Day: h.Day}] = struct{}{}
	}
	return set
}

type fileTable struct {
	Holidays []Holiday `yaml:"holidays"`
}

// LoadTable reads a YAML holiday file of the form:
//
//	holidays:
//	  - name: Republic Day
//	    month: 1
//	    day: 26
func LoadTable(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read holidays file: %w", err)
	}
	return ParseTable(data)
}

// ParseTable decodes and validates a YAML holiday document.
func ParseTable(data []byte) (Table, error) {
	var ft fileTable
	if err := yaml.Unmarshal(data, &ft); err != nil {
		return nil, fmt.Errorf("parse holidays: %w", err)
	}
	for i := range ft.Holidays {
		h := &ft.Holidays[i]
		h.Name = strings.TrimSpace(h.Name)
		if h.Month < time.January || h.Month > time.December {
			return nil, fmt.Errorf("holidays[%d]: month must be 1..12", i)
		}
		// 2024 is a leap year so Feb 29 is accepted.
		if h.Day < 1 || h.Day > DaysIn(2024, h.Month) {
			return nil, fmt.Errorf("holidays[%d]: day out of range", i)
		}
	}
	return Table(ft.Holidays), nil
}
