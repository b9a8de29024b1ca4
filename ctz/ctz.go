// Package ctz models the customTimeZone resource of Microsoft Graph: a fixed
// bias from UTC and, optionally, a pair of annual rules for the transitions
// into and out of daylight saving time.
//
// Biases count minutes behind UTC, so UTC-08:00 has a bias of 480.
package ctz

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"
)

// CustomTimeZone is a custom time zone definition.
type CustomTimeZone struct {
	Name string `yaml:"name,omitempty" json:"name,omitempty"`
	// Bias is the offset from UTC in minutes, positive west of Greenwich.
	// Nil means the bias is absent, which no zone is compatible with.
	Bias           *int                    `yaml:"bias,omitempty" json:"bias,omitempty"`
	StandardOffset *StandardTimeZoneOffset `yaml:"standardOffset,omitempty" json:"standardOffset,omitempty"`
	DaylightOffset *DaylightTimeZoneOffset `yaml:"daylightOffset,omitempty" json:"daylightOffset,omitempty"`
}

// StandardTimeZoneOffset is the rule for the transition to standard time.
type StandardTimeZoneOffset struct {
	// Time is the local wall clock time of the transition, HH:MM:SS.fffffff.
	Time string `yaml:"time" json:"time"`
	// DayOccurrence selects the nth DayOfWeek of Month, 5 means the last one.
	DayOccurrence int    `yaml:"dayOccurrence" json:"dayOccurrence"`
	DayOfWeek     string `yaml:"dayOfWeek" json:"dayOfWeek"`
	Month         int    `yaml:"month" json:"month"`
	// Year is carried along but not used for matching.
	Year int `yaml:"year" json:"year"`
}

// DaylightTimeZoneOffset is the rule for the transition to daylight saving time.
type DaylightTimeZoneOffset struct {
	StandardTimeZoneOffset `yaml:",inline"`
	// DaylightBias is added to Bias during daylight saving time, typically -60.
	DaylightBias *int `yaml:"daylightBias,omitempty" json:"daylightBias,omitempty"`
}

// ObservesDST reports whether z has a nonzero daylight bias.
func (z CustomTimeZone) ObservesDST() bool {
	return z.DaylightOffset != nil && z.DaylightOffset.DaylightBias != nil && *z.DaylightOffset.DaylightBias != 0
}

// Decode reads a custom time zone in YAML or JSON.
func Decode(r io.Reader) (CustomTimeZone, error) {
	var z CustomTimeZone
	if err := yaml.NewDecoder(r).Decode(&z); err != nil {
		return z, fmt.Errorf("decoding custom time zone: %w", err)
	}
	return z, nil
}

// ReadFile decodes the custom time zone in the named file, or stdin for "-".
func ReadFile(path string) (CustomTimeZone, error) {
	if path == "-" {
		return Decode(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return CustomTimeZone{}, err
	}
	defer f.Close()
	z, err := Decode(f)
	if err != nil {
		return z, fmt.Errorf("%s: %w", path, err)
	}
	return z, nil
}

var weekdays = func() map[string]time.Weekday {
	m := make(map[string]time.Weekday, 7)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		m[cases.Fold().String(wd.String())] = wd
	}
	return m
}()

// ParseWeekday parses an English weekday name, ignoring case.
func ParseWeekday(s string) (time.Weekday, bool) {
	wd, ok := weekdays[cases.Fold().String(strings.TrimSpace(s))]
	return wd, ok
}

var timeOfDayPattern = regexp.MustCompile(`^[0-9]{2}:[0-9]{2}:[0-9]{2}(\.[0-9]{1,7})?$`)

// ParseTimeOfDay parses HH:MM:SS with an optional fraction of up to seven
// digits and returns the time since midnight.
func ParseTimeOfDay(s string) (time.Duration, error) {
	if !timeOfDayPattern.MatchString(s) {
		return 0, fmt.Errorf("invalid time of day %q: want HH:MM:SS.fffffff", s)
	}
	t, err := time.Parse("15:04:05", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond()), nil
}

// FormatTimeOfDay formats the local time of day of t the way transition
// times are written.
func FormatTimeOfDay(t time.Time) string {
	return t.Format("15:04:05.0000000")
}
