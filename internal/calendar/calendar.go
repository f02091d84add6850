// Package calendar implements the calendar-math helpers spec.md names
// as thin, out-of-scope external collaborators (§1): leap-year testing,
// days-in-month, and day-of-week. The signal-decoding engine depends
// only on this package's exported functions, never on its own
// reimplementation of calendar arithmetic.
package calendar

// IsLeapYear reports whether the given 4-digit Gregorian year is a
// leap year. Provided for cross-checking the transmitted leap-year bit
// against the broadcast 2-digit year; the engine trusts the
// transmitted bit for frame validation (§3), not this function.
func IsLeapYear(year int) bool {
	if year%400 == 0 {
		return true
	}
	if year%100 == 0 {
		return false
	}
	return year%4 == 0
}

var daysInMonthNonLeap = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// DaysInMonth returns the number of days in the given 1-based month,
// honoring leap for February.
func DaysInMonth(month int, leap bool) int {
	if month < 1 || month > 12 {
		return 0
	}
	days := daysInMonthNonLeap[month-1]
	if month == 2 && leap {
		days = 29
	}
	return days
}

// DayOfWeek returns the day of week (0=Sunday .. 6=Saturday) for the
// given Gregorian calendar date, via Zeller's congruence.
func DayOfWeek(year, month, day int) int {
	y := year
	m := month
	if m < 3 {
		m += 12
		y--
	}
	k := y % 100
	j := y / 100
	h := (day + (13*(m+1))/5 + k + k/4 + j/4 + 5*j) % 7
	// Zeller's h: 0=Saturday, 1=Sunday, ... ; rotate to 0=Sunday.
	return (h + 6) % 7
}
