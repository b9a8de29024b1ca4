package ctz

import (
	"fmt"
	"sort"
	"time"

	"github.com/ngrash/tzmatch/internal/tzexpand"
	"github.com/ngrash/tzmatch/timeline"
)

// Transition is a concrete change of offset produced by a rule.
// Offsets are in minutes west of UTC, like Bias.
type Transition struct {
	At           time.Time
	OffsetBefore int
	OffsetAfter  int
}

// Transitions returns the two transitions of z in the given year in
// chronological order. z must observe daylight saving time.
func (z CustomTimeZone) Transitions(year int) ([]Transition, error) {
	if err := z.Validate(); err != nil {
		return nil, err
	}
	if z.Bias == nil || !z.ObservesDST() || z.StandardOffset == nil {
		return nil, fmt.Errorf("%s does not observe daylight saving time", z.describe())
	}
	bias := *z.Bias
	dst := bias + *z.DaylightOffset.DaylightBias
	ts := []Transition{
		{At: occurrence(year, z.DaylightOffset.StandardTimeZoneOffset, bias), OffsetBefore: bias, OffsetAfter: dst},
		{At: occurrence(year, *z.StandardOffset, dst), OffsetBefore: dst, OffsetAfter: bias},
	}
	sort.Slice(ts, func(i, j int) bool { return ts[i].At.Before(ts[j].At) })
	return ts, nil
}

// occurrence returns the instant the rule fires in year while offset, in
// minutes west, is in effect. The rule must be valid.
func occurrence(year int, o StandardTimeZoneOffset, offset int) time.Time {
	wd, _ := ParseWeekday(o.DayOfWeek)
	tod, _ := ParseTimeOfDay(o.Time)
	month := time.Month(o.Month)
	day := tzexpand.NthWeekdayOfMonth(year, month, wd, o.DayOccurrence)
	loc := time.FixedZone("", -offset*60)
	return time.Date(year, month, day, 0, 0, 0, 0, loc).Add(tod)
}

// Timeline synthesizes the timeline of z with the transitions of the years
// from through to. Zones without daylight saving time have a single period.
func (z CustomTimeZone) Timeline(name string, from, to int) (timeline.Timeline, error) {
	if z.Bias == nil {
		return timeline.Timeline{}, fmt.Errorf("%s has no bias", z.describe())
	}
	b := timeline.NewBuilder(name)
	if !z.ObservesDST() {
		return b.Finish(*z.Bias), nil
	}
	offset := *z.Bias
	for year := from; year <= to; year++ {
		ts, err := z.Transitions(year)
		if err != nil {
			return timeline.Timeline{}, err
		}
		for _, t := range ts {
			b.Add(t.At.UnixMilli(), t.OffsetBefore)
			offset = t.OffsetAfter
		}
	}
	return b.Finish(offset), nil
}

func (z CustomTimeZone) describe() string {
	if z.Name != "" {
		return fmt.Sprintf("custom time zone %q", z.Name)
	}
	return "custom time zone"
}
