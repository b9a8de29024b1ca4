package tzexpand

import "time"

// IsLeapYear determines if the year is a leap year.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInMonth returns the number of days in a given month for a specific year.
func DaysInMonth(year int, month time.Month) int {
	switch month {
	case time.February:
		if IsLeapYear(year) {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	}
	return 31
}

// Weekday returns the day of the week of a date using Zeller's congruence.
func Weekday(year int, month time.Month, day int) time.Weekday {
	m := int(month)
	if m < 3 {
		m += 12
		year--
	}
	k := mod(year, 100)
	j := floorDiv(year, 100)
	h := (day + (13*(m+1))/5 + k + k/4 + floorDiv(j, 4) + 5*j) % 7
	// Zeller counts from Saturday.
	return time.Weekday(mod(h+6, 7))
}

// LastWeekdayOfMonth returns the day of month of the last given weekday.
func LastWeekdayOfMonth(year int, month time.Month, wd time.Weekday) int {
	last := DaysInMonth(year, month)
	return last - mod(int(Weekday(year, month, last))-int(wd), 7)
}

// NthWeekdayOfMonth returns the day of month of the nth (1-based) given weekday.
// Values of n that run past the end of the month select the last such weekday,
// so 5 always means "last".
func NthWeekdayOfMonth(year int, month time.Month, wd time.Weekday, n int) int {
	day := 1 + mod(int(wd)-int(Weekday(year, month, 1)), 7)
	days := DaysInMonth(year, month)
	for i := 1; i < n && day+7 <= days; i++ {
		day += 7
	}
	return day
}

// nextWeekday returns the first wd on or after the given day, which may fall
// into the following month or year.
func nextWeekday(year int, month time.Month, day int, wd time.Weekday) (int, time.Month, int) {
	day += mod(int(wd)-int(Weekday(year, month, day)), 7)
	if days := DaysInMonth(year, month); day > days {
		day -= days
		month++
		if month > time.December {
			month = time.January
			year++
		}
	}
	return year, month, day
}

// prevWeekday returns the last wd on or before the given day, which may fall
// into the preceding month or year.
func prevWeekday(year int, month time.Month, day int, wd time.Weekday) (int, time.Month, int) {
	day -= mod(int(Weekday(year, month, day))-int(wd), 7)
	if day < 1 {
		month--
		if month < time.January {
			month = time.December
			year--
		}
		day += DaysInMonth(year, month)
	}
	return year, month, day
}

func mod(a, b int) int {
	if m := a % b; m < 0 {
		return m + b
	} else {
		return m
	}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
