package calendar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsLeapYear(t *testing.T) {
	cases := []struct {
		year int
		want bool
	}{
		{2000, true},  // divisible by 400
		{1900, false}, // divisible by 100, not 400
		{2024, true},  // divisible by 4, not 100
		{2025, false},
		{2026, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, IsLeapYear(c.year), "year=%d", c.year)
	}
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 31, DaysInMonth(1, false))
	assert.Equal(t, 28, DaysInMonth(2, false))
	assert.Equal(t, 29, DaysInMonth(2, true))
	assert.Equal(t, 30, DaysInMonth(4, false))
	assert.Equal(t, 31, DaysInMonth(12, true))
	assert.Equal(t, 0, DaysInMonth(0, false))
	assert.Equal(t, 0, DaysInMonth(13, false))
}

func TestDaysInMonthSumsToYearLength(t *testing.T) {
	total := 0
	for m := 1; m <= 12; m++ {
		total += DaysInMonth(m, false)
	}
	assert.Equal(t, 365, total)

	total = 0
	for m := 1; m <= 12; m++ {
		total += DaysInMonth(m, true)
	}
	assert.Equal(t, 366, total)
}

// Reference weekdays taken from the Gregorian calendar: 2000-01-01 was a
// Saturday, 2024-01-01 a Monday, 2026-01-01 a Thursday, 2026-07-31 a
// Friday, 1999-12-31 a Friday.
func TestDayOfWeekKnownDates(t *testing.T) {
	const (
		sunday = iota
		monday
		tuesday
		wednesday
		thursday
		friday
		saturday
	)
	cases := []struct {
		year, month, day int
		want             int
	}{
		{2000, 1, 1, saturday},
		{1999, 12, 31, friday},
		{2024, 1, 1, monday},
		{2026, 1, 1, thursday},
		{2026, 7, 31, friday},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, DayOfWeek(c.year, c.month, c.day), "%04d-%02d-%02d", c.year, c.month, c.day)
	}
}

func TestDayOfWeekAdvancesByOneEachDay(t *testing.T) {
	prev := DayOfWeek(2026, 2, 27)
	for day := 28; day <= 28; day++ {
		got := DayOfWeek(2026, 2, day)
		assert.Equal(t, (prev+1)%7, got)
		prev = got
	}
	// 2026 is not a leap year, so March 1 follows February 28.
	march1 := DayOfWeek(2026, 3, 1)
	assert.Equal(t, (prev+1)%7, march1)
}
