// Package posixtz parses the POSIX TZ strings found in the footer of TZif
// files and expands them into transitions.
//
// The RFC 8536 extensions are supported: hours of a transition time may range
// from -167 to 167.
package posixtz

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ngrash/tzmatch/internal/tzexpand"
	"github.com/ngrash/tzmatch/internal/unixtime"
)

// DateForm is the form of a transition date.
type DateForm int

const (
	// Julian is Jn, 1 <= n <= 365, February 29 is never counted.
	Julian DateForm = iota
	// ZeroBased is n, 0 <= n <= 365, February 29 is counted in leap years.
	ZeroBased
	// MonthWeekDay is Mm.w.d, day d of week w of month m, week 5 is the last.
	MonthWeekDay
)

// Date is the date and local time of a transition.
type Date struct {
	Form  DateForm
	Day   int
	Week  int
	Month int
	// Time is in seconds since local midnight.
	Time int
}

// Rule is a parsed TZ string. Offsets are in seconds east of UTC, the
// opposite sign of the string itself.
type Rule struct {
	StdName   string
	StdOffset int
	DSTName   string
	DSTOffset int
	Start     Date
	End       Date
}

// HasDST reports whether the rule has daylight saving time.
func (r Rule) HasDST() bool {
	return r.DSTName != ""
}

// Transition is a change of UTC offset.
type Transition struct {
	// At is the Unix time of the transition in seconds.
	At int64
	// Offset is the UTC offset in seconds east that starts at At.
	Offset int
	IsDST  bool
}

// defaultRule applies when a DST name is given without start and end dates.
const defaultRule = ",M3.2.0,M11.1.0"

// Parse parses a TZ string of the form
//
//	std offset [dst [offset] [,start[/time],end[/time]]]
func Parse(s string) (Rule, error) {
	var (
		r    Rule
		err  error
		orig = s
	)
	fail := func(what string, err error) (Rule, error) {
		return Rule{}, fmt.Errorf("TZ string %q: %s: %w", orig, what, err)
	}

	if r.StdName, s, err = parseName(s); err != nil {
		return fail("std name", err)
	}
	var off int
	if off, s, err = parseOffset(s, 24); err != nil {
		return fail("std offset", err)
	}
	r.StdOffset = -off
	if s == "" {
		return r, nil
	}

	if r.DSTName, s, err = parseName(s); err != nil {
		return fail("dst name", err)
	}
	r.DSTOffset = r.StdOffset + unixtime.SecondsPerHour
	if s != "" && s[0] != ',' {
		if off, s, err = parseOffset(s, 24); err != nil {
			return fail("dst offset", err)
		}
		r.DSTOffset = -off
	}
	if s == "" {
		s = defaultRule
	}

	if s[0] != ',' {
		return fail("rule", fmt.Errorf("expected ',' at %q", s))
	}
	if r.Start, s, err = parseDate(s[1:]); err != nil {
		return fail("start", err)
	}
	if s == "" || s[0] != ',' {
		return fail("rule", fmt.Errorf("expected ',' at %q", s))
	}
	if r.End, s, err = parseDate(s[1:]); err != nil {
		return fail("end", err)
	}
	if s != "" {
		return fail("rule", fmt.Errorf("trailing characters %q", s))
	}
	return r, nil
}

func parseName(s string) (string, string, error) {
	if strings.HasPrefix(s, "<") {
		name, rest, found := strings.Cut(s[1:], ">")
		if !found {
			return "", "", fmt.Errorf("unterminated quoted name")
		}
		return name, rest, nil
	}
	i := strings.IndexAny(s, "0123456789,-+")
	if i < 0 {
		i = len(s)
	}
	if i < 3 {
		return "", "", fmt.Errorf("name %q is shorter than 3 characters", s[:i])
	}
	return s[:i], s[i:], nil
}

// parseOffset parses [+|-]hh[:mm[:ss]] and returns it in seconds.
func parseOffset(s string, maxHours int) (int, string, error) {
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	limits := []int{maxHours, 59, 59}
	units := []int{unixtime.SecondsPerHour, unixtime.SecondsPerMinute, 1}
	var off int
	for i := range limits {
		if i > 0 {
			if s == "" || s[0] != ':' {
				break
			}
			s = s[1:]
		}
		var n int
		var err error
		if n, s, err = parseNum(s, 0, limits[i]); err != nil {
			return 0, "", err
		}
		off += n * units[i]
	}
	if neg {
		off = -off
	}
	return off, s, nil
}

func parseDate(s string) (Date, string, error) {
	var (
		d   Date
		err error
	)
	switch {
	case s == "":
		return d, "", fmt.Errorf("missing date")
	case s[0] == 'J':
		d.Form = Julian
		d.Day, s, err = parseNum(s[1:], 1, 365)
	case s[0] == 'M':
		d.Form = MonthWeekDay
		fields := []*int{&d.Month, &d.Week, &d.Day}
		limits := [][2]int{{1, 12}, {1, 5}, {0, 6}}
		s = s[1:]
		for i, f := range fields {
			if i > 0 {
				if s == "" || s[0] != '.' {
					return d, "", fmt.Errorf("expected '.' at %q", s)
				}
				s = s[1:]
			}
			if *f, s, err = parseNum(s, limits[i][0], limits[i][1]); err != nil {
				return d, "", err
			}
		}
	default:
		d.Form = ZeroBased
		d.Day, s, err = parseNum(s, 0, 365)
	}
	if err != nil {
		return d, "", err
	}

	d.Time = 2 * unixtime.SecondsPerHour
	if s != "" && s[0] == '/' {
		if d.Time, s, err = parseOffset(s[1:], 167); err != nil {
			return d, "", fmt.Errorf("time: %w", err)
		}
	}
	return d, s, nil
}

func parseNum(s string, min, max int) (int, string, error) {
	i := 0
	n := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		n = n*10 + int(s[i]-'0')
		if n > max {
			return 0, "", fmt.Errorf("number at %q exceeds %d", s, max)
		}
		i++
	}
	if i == 0 {
		return 0, "", fmt.Errorf("expected number at %q", s)
	}
	if n < min {
		return 0, "", fmt.Errorf("number %d is less than %d", n, min)
	}
	return n, s[i:], nil
}

// yearDay returns the zero-based day of the year the date falls on.
func (d Date) yearDay(year int) int {
	switch d.Form {
	case Julian:
		day := d.Day - 1
		if tzexpand.IsLeapYear(year) && d.Day >= 60 {
			day++
		}
		return day
	case ZeroBased:
		return d.Day
	}
	dom := tzexpand.NthWeekdayOfMonth(year, time.Month(d.Month), time.Weekday(d.Day), d.Week)
	return int(unixtime.DaysSinceEpoch(year, d.Month, dom) - unixtime.DaysSinceEpoch(year, 1, 1))
}

// at returns the Unix time of the date in year when the given offset applies
// before the transition.
func (d Date) at(year int, offset int) int64 {
	return unixtime.FromDateTime(year, 1, 1+d.yearDay(year), 0, 0, d.Time) - int64(offset)
}

// Transitions returns the transitions of years from through to, inclusive,
// in chronological order. Rules without daylight saving time have none.
func (r Rule) Transitions(from, to int) []Transition {
	if !r.HasDST() {
		return nil
	}
	var ts []Transition
	for year := from; year <= to; year++ {
		ts = append(ts,
			Transition{At: r.Start.at(year, r.StdOffset), Offset: r.DSTOffset, IsDST: true},
			Transition{At: r.End.at(year, r.DSTOffset), Offset: r.StdOffset},
		)
	}
	sort.SliceStable(ts, func(i, j int) bool { return ts[i].At < ts[j].At })
	return ts
}
