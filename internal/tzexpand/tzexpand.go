// Package tzexpand resolves the recurring day specifications used by time zone
// rules to concrete calendar days, and analyses concrete days back into the
// "nth weekday of the month" form.
package tzexpand

import (
	"fmt"
	"time"

	"github.com/ngrash/tzmatch/tzdata"
)

// DayOfMonth resolves a tzdata day specification for the given month.
// The Sun>=N and Sun<=N forms can resolve into a neighbouring month or year.
func DayOfMonth(year int, month time.Month, d tzdata.Day) (int, time.Month, int) {
	switch d.Form {
	case tzdata.DayFormNum:
		return year, month, d.Num
	case tzdata.DayFormLast:
		return year, month, LastWeekdayOfMonth(year, month, d.Day)
	case tzdata.DayFormAfter:
		return nextWeekday(year, month, d.Num, d.Day)
	case tzdata.DayFormBefore:
		return prevWeekday(year, month, d.Num, d.Day)
	}
	panic(fmt.Errorf("invalid DayForm: %v", d.Form))
}

// Occurrence returns which occurrence of its weekday t is within its month,
// counting from 1, and whether it is the last one. Calendar fields are taken
// in t's location.
func Occurrence(t time.Time) (nth int, last bool) {
	year, month, day := t.Date()
	// Align to the first occurrence of the weekday, then step week by week.
	cursor := 1 + mod(int(t.Weekday())-int(Weekday(year, month, 1)), 7)
	for cursor <= day {
		nth++
		cursor += 7
	}
	return nth, cursor > DaysInMonth(year, month)
}
