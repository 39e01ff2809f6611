package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkingDays_NoHolidays(t *testing.T) {
	cases := []struct {
		name  string
		year  int
		month time.Month
		want  int
	}{
		{"january 2024", 2024, time.January, 23},
		{"february 2024 leap", 2024, time.February, 21},
		{"february 2023", 2023, time.February, 20},
		{"june 2024", 2024, time.June, 20},
		{"september 2024", 2024, time.September, 21},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, WorkingDays(tc.year, tc.month, nil))
		})
	}
}

func TestWorkingDays_DefaultTable(t *testing.T) {
	table := DefaultTable()

	// Republic Day 2024 is a Friday.
	assert.Equal(t, 22, WorkingDays(2024, time.January, table.ForPeriod(2024, time.January)))
	// Independence Day 2021 is a Sunday and changes nothing.
	assert.Equal(t,
		WorkingDays(2021, time.August, nil),
		WorkingDays(2021, time.August, table.ForPeriod(2021, time.August)))
}

func TestWorkingDays_MonotonicInHolidays(t *testing.T) {
	base := WorkingDays(2024, time.March, nil)
	one := WorkingDays(2024, time.March, NewHolidaySet(Date{2024, time.March, 5}))
	two := WorkingDays(2024, time.March, NewHolidaySet(Date{2024, time.March, 5}, Date{2024, time.March, 6}))

	assert.GreaterOrEqual(t, base, one)
	assert.GreaterOrEqual(t, one, two)
	assert.Equal(t, base-2, two)
}

func TestWorkingDays_IgnoresHolidaysOutsideMonth(t *testing.T) {
	set := NewHolidaySet(Date{2024, time.February, 1}, Date{2023, time.January, 2})
	assert.Equal(t, 23, WorkingDays(2024, time.January, set))
}

func TestWorkingDays_AllWeekdaysHolidays(t *testing.T) {
	set := HolidaySet{}
	for d := 1; d <= 30; d++ {
		set[Date{2024, time.April, d}] = struct{}{}
	}
	assert.Zero(t, WorkingDays(2024, time.April, set))
}

func TestTable_ForPeriodSkipsInvalidDay(t *testing.T) {
	table := Table{{Name: "Leap", Month: time.February, Day: 29}}
	assert.Len(t, table.ForPeriod(2024, time.February), 1)
	assert.Empty(t, table.ForPeriod(2023, time.February))
}

func TestParseTable(t *testing.T) {
	doc := []byte(`
holidays:
  - name: " Founders Day "
    month: 3
    day: 14
  - name: Diwali
    month: 11
    day: 1
`)
	table, err := ParseTable(doc)
	require.NoError(t, err)
	require.Len(t, table, 2)
	assert.Equal(t, "Founders Day", table[0].Name)
	assert.Equal(t, time.March, table[0].Month)
	assert.True(t, table.ForPeriod(2024, time.November).Contains(Date{2024, time.November, 1}))
}

func TestParseTable_Invalid(t *testing.T) {
	_, err := ParseTable([]byte("holidays:\n  - name: x\n    month: 13\n    day: 1\n"))
	require.Error(t, err)

	_, err = ParseTable([]byte("holidays:\n  - name: x\n    month: 4\n    day: 31\n"))
	require.Error(t, err)
}

func TestMonthRange(t *testing.T) {
	from, to := MonthRange(2024, time.December, nil)
	assert.Equal(t, time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), to)
}

func TestDayKey(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	ts := time.Date(2024, time.January, 25, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-01-26", DayKey(ts, loc))
	assert.Equal(t, "2024-01-25", DayKey(ts, time.UTC))
}

func TestValidPeriod(t *testing.T) {
	assert.True(t, ValidPeriod(1, 2024))
	assert.True(t, ValidPeriod(12, MaxYear))
	assert.False(t, ValidPeriod(0, 2024))
	assert.False(t, ValidPeriod(13, 2024))
	assert.False(t, ValidPeriod(1, MinYear-1))
	assert.False(t, ValidPeriod(12, 9999))
}

func TestDayKeys_LastSupportedPeriodSortsInOrder(t *testing.T) {
	from, to := MonthRange(MaxYear, time.December, time.UTC)
	start, end := DayKey(from, time.UTC), DayKey(to, time.UTC)

	require.Len(t, end, len(start))
	assert.Less(t, start, end)
}
