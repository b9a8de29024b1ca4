// Package tzdata parses the source files of the IANA time zone database
// (https://www.iana.org/time-zones) as described in zic(8).
//
// Only Rule, Zone and Link lines are understood. Leap second files are
// distributed separately and carry no information about UT offsets.
package tzdata

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// parseError is an error that occurred on a specific input line.
type parseError struct {
	lineNumber int
	line       string
	err        error
}

func (e *parseError) Error() string {
	return fmt.Sprintf("line %d: %q: %v", e.lineNumber, e.line, e.err)
}

func (e *parseError) Unwrap() error {
	return e.err
}

// Parse parses the content of a tzdata source file.
func Parse(r io.Reader) (File, error) {
	var (
		f                    File
		lineNumber           int
		continuationExpected bool
	)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()
		fields := splitLine(line)
		if fields == nil {
			continue
		}
		fail := func(kind string, err error) error {
			return &parseError{lineNumber, line, fmt.Errorf("parse %s: %w", kind, err)}
		}

		if continuationExpected {
			z, err := parseZoneFields(fields, true)
			if err != nil {
				return f, fail("zone continuation", err)
			}
			f.ZoneLines = append(f.ZoneLines, z)
			continuationExpected = z.Until.Defined
			continue
		}

		keyword := strings.ToLower(fields[0])
		switch {
		case isAbbrev(keyword, "zone", "z"):
			z, err := parseZoneFields(fields, false)
			if err != nil {
				return f, fail("zone", err)
			}
			f.ZoneLines = append(f.ZoneLines, z)
			continuationExpected = z.Until.Defined
		case isAbbrev(keyword, "rule", "r"):
			rl, err := parseRuleLine(fields)
			if err != nil {
				return f, fail("rule", err)
			}
			f.RuleLines = append(f.RuleLines, rl)
		case isAbbrev(keyword, "link", "l"):
			if len(fields) != 3 {
				return f, fail("link", fmt.Errorf("expected 3 fields, got %d", len(fields)))
			}
			f.LinkLines = append(f.LinkLines, LinkLine{Target: fields[1], Name: fields[2]})
		default:
			return f, &parseError{lineNumber, line, fmt.Errorf("unexpected line")}
		}
	}
	if err := scanner.Err(); err != nil {
		return f, fmt.Errorf("scanner: %w", err)
	}
	if continuationExpected {
		return f, fmt.Errorf("line %d: missing zone continuation line", lineNumber)
	}
	return f, nil
}

// splitLine strips comments and splits the line into fields.
// It returns nil for blank lines.
func splitLine(line string) []string {
	var (
		fields []string
		field  strings.Builder
		quoted bool
		inside bool
	)
	flush := func() {
		if inside {
			fields = append(fields, field.String())
			field.Reset()
			inside = false
		}
	}
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
			inside = true
		case quoted:
			field.WriteRune(r)
		case r == '#':
			flush()
			return fields
		case r == ' ' || r == '\t' || r == '\f' || r == '\r' || r == '\v' || r == '\n':
			flush()
		default:
			field.WriteRune(r)
			inside = true
		}
	}
	flush()
	return fields
}

// parseZoneFields parses a zone line, or a continuation line when continuation
// is set, in which case the keyword and name fields are absent.
func parseZoneFields(fields []string, continuation bool) (ZoneLine, error) {
	z := ZoneLine{Continuation: continuation}
	if !continuation {
		if len(fields) < 5 {
			return z, fmt.Errorf("expected at least 5 fields, got %d", len(fields))
		}
		name := fields[1]
		if name == "" || strings.Contains(name, "..") {
			return z, fmt.Errorf("NAME %q: invalid", name)
		}
		z.Name = name
		fields = fields[2:]
	}
	if len(fields) < 3 {
		return z, fmt.Errorf("expected at least 3 fields, got %d", len(fields))
	}
	if len(fields) > 7 {
		return z, fmt.Errorf("too many fields: %d", len(fields))
	}

	var errs error
	var err error
	if z.Offset, err = parseTimeOfDay(fields[0]); err != nil {
		errs = errors.Join(errs, fmt.Errorf("STDOFF %q: %w", fields[0], err))
	}
	z.Rules = parseZoneRules(fields[1])
	z.Format = fields[2]
	if len(fields) > 3 {
		if z.Until, err = parseUntil(fields[3:]); err != nil {
			errs = errors.Join(errs, fmt.Errorf("UNTIL %q: %w", strings.Join(fields[3:], " "), err))
		}
	}
	return z, errs
}

func parseZoneRules(s string) ZoneRules {
	if s == "-" {
		return ZoneRules{Form: ZoneRulesStandard}
	}
	if t, err := parseSave(s); err == nil {
		return ZoneRules{Form: ZoneRulesTime, Time: t}
	}
	// Whether a rule set with this name exists is checked by the compiler.
	return ZoneRules{Form: ZoneRulesName, Name: s}
}

// parseUntil parses the one to four fields YEAR [MONTH [DAY [TIME]]].
func parseUntil(fields []string) (Until, error) {
	var u Until
	if len(fields) == 0 {
		return u, nil
	}
	year, err := strconv.Atoi(fields[0])
	if err != nil {
		return u, fmt.Errorf("year: %w", err)
	}
	u.Year, u.Month, u.Day, u.Parts = year, time.January, NewDayNum(1), UntilYear
	if len(fields) > 1 {
		if u.Month, err = parseMonth(fields[1]); err != nil {
			return u, err
		}
		u.Parts = UntilMonth
	}
	if len(fields) > 2 {
		if u.Day, err = parseDay(fields[2]); err != nil {
			return u, fmt.Errorf("day: %w", err)
		}
		u.Parts = UntilDay
	}
	if len(fields) > 3 {
		if u.Time, err = parseAt(fields[3]); err != nil {
			return u, fmt.Errorf("time: %w", err)
		}
		u.Parts = UntilTime
	}
	u.Defined = true
	return u, nil
}

func parseRuleLine(fields []string) (RuleLine, error) {
	if len(fields) != 10 {
		return RuleLine{}, fmt.Errorf("expected 10 fields, got %d", len(fields))
	}
	var (
		r    RuleLine
		errs error
		err  error
	)
	r.Name = fields[1]
	if r.Name == "" || strings.ContainsAny(r.Name[:1], "0123456789+-") {
		errs = errors.Join(errs, fmt.Errorf("NAME %q: invalid", r.Name))
	}
	if r.From, err = parseYear(fields[2], 0, false); err != nil {
		errs = errors.Join(errs, fmt.Errorf("FROM %q: %w", fields[2], err))
	}
	if r.To, err = parseYear(fields[3], r.From, true); err != nil {
		errs = errors.Join(errs, fmt.Errorf("TO %q: %w", fields[3], err))
	}
	if r.In, err = parseMonth(fields[5]); err != nil {
		errs = errors.Join(errs, fmt.Errorf("IN %q: %w", fields[5], err))
	}
	if r.On, err = parseDay(fields[6]); err != nil {
		errs = errors.Join(errs, fmt.Errorf("ON %q: %w", fields[6], err))
	}
	if r.At, err = parseAt(fields[7]); err != nil {
		errs = errors.Join(errs, fmt.Errorf("AT %q: %w", fields[7], err))
	}
	if r.Save, err = parseSave(fields[8]); err != nil {
		errs = errors.Join(errs, fmt.Errorf("SAVE %q: %w", fields[8], err))
	}
	if r.Letter = fields[9]; r.Letter == "-" {
		r.Letter = ""
	}
	return r, errs
}

// parseYear parses the FROM and TO columns. "only" is accepted in TO and
// repeats FROM.
func parseYear(s string, from Year, to bool) (Year, error) {
	l := strings.ToLower(s)
	switch {
	case isAbbrev(l, "minimum", "mi"):
		return MinYear, nil
	case isAbbrev(l, "maximum", "ma"):
		return MaxYear, nil
	case to && isAbbrev(l, "only", "o"):
		return from, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	return Year(n), nil
}

var months = []string{"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december"}

func parseMonth(s string) (time.Month, error) {
	l := strings.ToLower(s)
	for i, m := range months {
		if isAbbrev(l, m, m[:3]) {
			return time.Month(i + 1), nil
		}
	}
	return 0, fmt.Errorf("invalid month %q", s)
}

var weekdays = []struct {
	name, min string
}{
	{"sunday", "su"}, {"monday", "m"}, {"tuesday", "tu"}, {"wednesday", "w"},
	{"thursday", "th"}, {"friday", "f"}, {"saturday", "sa"},
}

func parseWeekday(s string) (time.Weekday, error) {
	l := strings.ToLower(s)
	for i, wd := range weekdays {
		if isAbbrev(l, wd.name, wd.min) {
			return time.Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("invalid weekday %q", s)
}

// parseDay parses the ON column: 5, lastSun, Sun>=8 or Sun<=25.
func parseDay(s string) (Day, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return NewDayNum(n), nil
	}
	if strings.HasPrefix(strings.ToLower(s), "last") {
		wd, err := parseWeekday(s[4:])
		if err != nil {
			return Day{}, err
		}
		return NewDayLast(wd), nil
	}
	for _, op := range []string{">=", "<="} {
		wds, ns, found := strings.Cut(s, op)
		if !found {
			continue
		}
		wd, err := parseWeekday(wds)
		if err != nil {
			return Day{}, err
		}
		n, err := strconv.Atoi(ns)
		if err != nil {
			return Day{}, fmt.Errorf("day of month %q: %w", ns, err)
		}
		if op == ">=" {
			return NewDayAfter(n, wd), nil
		}
		return NewDayBefore(n, wd), nil
	}
	return Day{}, fmt.Errorf("invalid day %q", s)
}

// parseAt parses the AT column and the time of an UNTIL column.
func parseAt(s string) (Time, error) {
	form := WallClock
	if n := len(s); n > 1 {
		switch s[n-1] {
		case 'w':
			s = s[:n-1]
		case 's':
			form, s = StandardTime, s[:n-1]
		case 'u', 'g', 'z':
			form, s = UniversalTime, s[:n-1]
		}
	}
	d, err := parseTimeOfDay(s)
	return Time{d, form}, err
}

// parseSave parses the SAVE column. Without a suffix, zero is standard time
// and anything else daylight saving time.
func parseSave(s string) (Time, error) {
	var suffix byte
	if n := len(s); n > 1 && (s[n-1] == 's' || s[n-1] == 'd') {
		suffix, s = s[n-1], s[:n-1]
	}
	d, err := parseTimeOfDay(s)
	if err != nil {
		return Time{}, err
	}
	form := DaylightSavingTime
	if suffix == 's' || (suffix == 0 && d == 0) {
		form = StandardTime
	}
	return Time{d, form}, nil
}

// parseTimeOfDay parses [-]h[:mm[:ss[.fraction]]] and "-" (zero).
func parseTimeOfDay(s string) (time.Duration, error) {
	if s == "-" {
		return 0, nil
	}
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	parts := strings.Split(s, ":")
	if len(parts) > 3 || parts[0] == "" {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	units := []time.Duration{time.Hour, time.Minute, time.Second}
	var d time.Duration
	for i, p := range parts {
		var frac string
		if i == 2 {
			p, frac, _ = strings.Cut(p, ".")
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid time %q", s)
		}
		d += time.Duration(n) * units[i]
		if frac != "" {
			if len(frac) > 9 {
				frac = frac[:9]
			}
			ns, err := strconv.Atoi(frac + strings.Repeat("0", 9-len(frac)))
			if err != nil {
				return 0, fmt.Errorf("invalid fraction %q", frac)
			}
			d += time.Duration(ns)
		}
	}
	if neg {
		d = -d
	}
	return d, nil
}

// isAbbrev reports whether s is a prefix of long that is at least as long as min.
func isAbbrev(s, long, min string) bool {
	return strings.HasPrefix(s, min) && strings.HasPrefix(long, s)
}
