// Package match decides whether a custom time zone behaves like a zone of a
// time zone database around a reference instant.
//
// Two sign conventions meet here. Custom time zones count minutes behind UTC
// (a bias of 480 is UTC-08:00) and a daylight bias is added to the bias, so
// -60 moves clocks forward. Timelines count minutes west of UTC, so both use
// the same sign for offsets, but a transition into daylight saving time makes
// the timeline offset smaller.
package match

import (
	"time"

	"github.com/ngrash/tzmatch/ctz"
	"github.com/ngrash/tzmatch/internal/tzexpand"
	"github.com/ngrash/tzmatch/timeline"
)

// Compatible reports whether tl agrees with z around ref.
//
// A custom time zone without daylight saving time is compatible with a zone
// whose current period lasts forever and has the bias as its offset. One with
// daylight saving time is compatible when both transitions adjacent to the
// current period of tl are produced by its rules.
func Compatible(tl timeline.Timeline, z ctz.CustomTimeZone, ref time.Time) bool {
	cur := tl.IndexAt(ref)
	if cur < 0 {
		return false
	}
	zoneDST := tl.Untils[cur] != timeline.Forever
	if !z.ObservesDST() {
		return !zoneDST && z.Bias != nil && tl.Offsets[cur] == *z.Bias
	}
	if !zoneDST || tl.Len() < 3 {
		return false
	}
	// The first period has no transition before it.
	cur = max(cur, 1)
	return transitionCompatible(tl, z, cur-1, cur) &&
		transitionCompatible(tl, z, cur, cur+1)
}

// transitionCompatible reports whether the transition between periods before
// and after of tl is one of the two transitions of z.
func transitionCompatible(tl timeline.Timeline, z ctz.CustomTimeZone, before, after int) bool {
	if z.Bias == nil || z.StandardOffset == nil || !z.ObservesDST() {
		return false
	}
	bias, daylightBias := *z.Bias, *z.DaylightOffset.DaylightBias
	offset := tl.Offsets[before]
	diff := -(tl.Offsets[after] - offset)
	local := tl.End(before)
	if diff > 0 {
		// Into daylight saving time.
		return offset == bias && diff == -daylightBias &&
			ruleMatches(z.DaylightOffset.StandardTimeZoneOffset, local)
	}
	return offset == bias+daylightBias && diff == daylightBias &&
		ruleMatches(*z.StandardOffset, local)
}

// ruleMatches reports whether the local wall clock time of a transition is
// the one described by o.
func ruleMatches(o ctz.StandardTimeZoneOffset, local time.Time) bool {
	tod, err := ctz.ParseTimeOfDay(o.Time)
	if err != nil || tod != sinceMidnight(local) {
		return false
	}
	wd, ok := ctz.ParseWeekday(o.DayOfWeek)
	if !ok || wd != local.Weekday() || time.Month(o.Month) != local.Month() {
		return false
	}
	return occurrence(o, local) == o.DayOccurrence
}

// occurrence returns the occurrence of the weekday of local within its
// month. A fourth occurrence that is also the last one counts as 5 when the
// rule asks for the last occurrence.
func occurrence(o ctz.StandardTimeZoneOffset, local time.Time) int {
	nth, last := tzexpand.Occurrence(local)
	if o.DayOccurrence == 5 && nth == 4 && last {
		return 5
	}
	return nth
}

func sinceMidnight(t time.Time) time.Duration {
	h, m, s := t.Clock()
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second + time.Duration(t.Nanosecond())
}
