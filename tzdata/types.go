package tzdata

import (
	"math"
	"strconv"
	"time"
)

// Year is a year of the proleptic Gregorian calendar as used in the FROM and TO
// columns of a rule line.
type Year int

const (
	// MinYear means the indefinite past.
	MinYear Year = math.MinInt
	// MaxYear means the indefinite future.
	MaxYear Year = math.MaxInt
)

func (y Year) String() string {
	switch y {
	case MinYear:
		return "min"
	case MaxYear:
		return "max"
	}
	return strconv.Itoa(int(y))
}

// TimeForm tells how a time of day is to be interpreted.
type TimeForm int

const (
	WallClock TimeForm = iota
	StandardTime
	DaylightSavingTime
	UniversalTime
)

func (f TimeForm) String() string {
	switch f {
	case WallClock:
		return "WallClock"
	case StandardTime:
		return "StandardTime"
	case DaylightSavingTime:
		return "DaylightSavingTime"
	case UniversalTime:
		return "UniversalTime"
	}
	return "<UNDEFINED>"
}

// Time is a duration since 00:00 together with the form it is expressed in.
type Time struct {
	time.Duration
	Form TimeForm
}

// NewWallClock returns a local wall clock time.
func NewWallClock(d time.Duration) Time {
	return Time{d, WallClock}
}

// NewStandardTime returns a local standard time.
func NewStandardTime(d time.Duration) Time {
	return Time{d, StandardTime}
}

// NewDaylightSavingTime returns a daylight saving time amount.
func NewDaylightSavingTime(d time.Duration) Time {
	return Time{d, DaylightSavingTime}
}

// NewUniversalTime returns a universal time.
func NewUniversalTime(d time.Duration) Time {
	return Time{d, UniversalTime}
}

// Seconds returns the duration in whole seconds.
func (t Time) Seconds() int64 {
	return int64(t.Duration / time.Second)
}

// DayForm is the form of the ON column of a rule line or the day of an UNTIL column.
type DayForm int

const (
	DayFormNum    DayForm = iota // 5
	DayFormLast                  // lastSun
	DayFormAfter                 // Sun>=8
	DayFormBefore                // Sun<=25
)

func (f DayForm) String() string {
	switch f {
	case DayFormNum:
		return "Num"
	case DayFormLast:
		return "Last"
	case DayFormAfter:
		return "After"
	case DayFormBefore:
		return "Before"
	}
	return "<UNDEFINED>"
}

// Day is a day specification. Num is unused for DayFormLast and Day is unused
// for DayFormNum.
type Day struct {
	Form DayForm
	Num  int
	Day  time.Weekday
}

// NewDayNum returns the fixed day of month n.
func NewDayNum(n int) Day {
	return Day{Form: DayFormNum, Num: n}
}

// NewDayLast returns the last wd of the month, as in lastSun.
func NewDayLast(wd time.Weekday) Day {
	return Day{Form: DayFormLast, Day: wd}
}

// NewDayAfter returns the first wd on or after day n, as in Sun>=8.
func NewDayAfter(n int, wd time.Weekday) Day {
	return Day{Form: DayFormAfter, Num: n, Day: wd}
}

// NewDayBefore returns the last wd on or before day n, as in Sun<=25.
func NewDayBefore(n int, wd time.Weekday) Day {
	return Day{Form: DayFormBefore, Num: n, Day: wd}
}

// RuleLine is a parsed Rule line:
//
//	Rule  NAME  FROM  TO    -  IN   ON       AT     SAVE   LETTER/S
//	Rule  US    1967  1973  -  Apr  lastSun  2:00w  1:00d  D
type RuleLine struct {
	Name   string
	From   Year
	To     Year
	In     time.Month
	On     Day
	At     Time
	Save   Time
	Letter string
}

// ActiveIn reports whether the rule applies in the given year.
func (r RuleLine) ActiveIn(year int) bool {
	return Year(year) >= r.From && Year(year) <= r.To
}

// ZoneRulesForm is the form of the RULES column of a zone line.
type ZoneRulesForm int

const (
	// ZoneRulesStandard means standard time always applies ("-").
	ZoneRulesStandard ZoneRulesForm = iota
	// ZoneRulesName references a set of rule lines by name.
	ZoneRulesName
	// ZoneRulesTime is a fixed amount of saved time.
	ZoneRulesTime
)

// ZoneRules is the RULES column of a zone line.
type ZoneRules struct {
	Form ZoneRulesForm
	Name string // set for ZoneRulesName
	Time Time   // set for ZoneRulesTime
}

// ZoneLine is a Zone line or one of its continuation lines.
//
//	Zone  NAME        STDOFF  RULES   FORMAT  [UNTIL]
//	Zone  Asia/Amman  2:00    Jordan  EE%sT   2017 Oct 27 01:00
type ZoneLine struct {
	Continuation bool
	Name         string // empty for continuation lines
	Offset       time.Duration
	Rules        ZoneRules
	Format       string
	Until        Until
}

// UntilParts tells which trailing fields of an UNTIL column were given.
// Omitted fields default to the earliest possible value.
type UntilParts uint8

const (
	UntilYear UntilParts = iota + 1
	UntilMonth
	UntilDay
	UntilTime
)

// Until is the UNTIL column of a zone line. The zero value means the column is absent.
type Until struct {
	Defined bool
	Parts   UntilParts
	Year    int
	Month   time.Month
	Day     Day
	Time    Time
}

// LinkLine is a parsed Link line:
//
//	Link  TARGET           LINK-NAME
//	Link  Europe/Istanbul  Asia/Istanbul
type LinkLine struct {
	Target string
	Name   string
}

// File is the content of one or more tzdata source files.
type File struct {
	ZoneLines []ZoneLine
	RuleLines []RuleLine
	LinkLines []LinkLine
}

// Zones groups zone lines by the name of the zone they belong to,
// preserving their order.
func (f File) Zones() map[string][]ZoneLine {
	zones := make(map[string][]ZoneLine)
	var name string
	for _, l := range f.ZoneLines {
		if !l.Continuation {
			name = l.Name
		}
		zones[name] = append(zones[name], l)
	}
	return zones
}

// Rules returns the rule lines named name in file order.
func (f File) Rules(name string) []RuleLine {
	var rules []RuleLine
	for _, r := range f.RuleLines {
		if r.Name == name {
			rules = append(rules, r)
		}
	}
	return rules
}

// Merge appends the lines of other to f.
func (f *File) Merge(other File) {
	f.ZoneLines = append(f.ZoneLines, other.ZoneLines...)
	f.RuleLines = append(f.RuleLines, other.RuleLines...)
	f.LinkLines = append(f.LinkLines, other.LinkLines...)
}
