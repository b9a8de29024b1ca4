// Package tzc compiles parsed tzdata source into timelines.
//
// Rules are expanded year by year within a bounded window of years, the way
// zic(8) bounds its output with -r. Transitions outside the window are not
// generated; the offset in effect at the end of the window lasts forever.
package tzc

import (
	"bytes"
	"fmt"
	"maps"
	"math"
	"slices"
	"sort"
	"time"

	"github.com/ngrash/tzmatch/internal/tzexpand"
	"github.com/ngrash/tzmatch/internal/unixtime"
	"github.com/ngrash/tzmatch/timeline"
	"github.com/ngrash/tzmatch/tzdata"
)

const (
	DefaultMinYear = 1800
	DefaultMaxYear = 2037
)

type options struct {
	minYear, maxYear int
}

// Option configures Compile.
type Option func(*options)

// WithMinYear sets the first year for which rules are expanded.
func WithMinYear(year int) Option {
	return func(o *options) { o.minYear = year }
}

// WithMaxYear sets the last year for which rules are expanded.
func WithMaxYear(year int) Option {
	return func(o *options) { o.maxYear = year }
}

// CompileBytes parses and compiles tzdata source.
func CompileBytes(data []byte, opts ...Option) (map[string]timeline.Timeline, error) {
	f, err := tzdata.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return Compile(f, opts...)
}

// Compile returns the timelines of all zones and links in f, keyed by name.
func Compile(f tzdata.File, opts ...Option) (map[string]timeline.Timeline, error) {
	o := options{minYear: DefaultMinYear, maxYear: DefaultMaxYear}
	for _, fn := range opts {
		fn(&o)
	}
	if o.minYear > o.maxYear {
		return nil, fmt.Errorf("invalid year window [%d, %d]", o.minYear, o.maxYear)
	}

	zones := f.Zones()
	result := make(map[string]timeline.Timeline, len(zones)+len(f.LinkLines))
	for _, name := range slices.Sorted(maps.Keys(zones)) {
		tl, err := compileZone(f, name, zones[name], o)
		if err != nil {
			return nil, fmt.Errorf("compiling zone %s: %w", name, err)
		}
		if err := tl.Validate(); err != nil {
			return nil, fmt.Errorf("compiling zone %s: %w", name, err)
		}
		result[name] = tl
	}
	if err := resolveLinks(f.LinkLines, result); err != nil {
		return nil, err
	}
	return result, nil
}

// event is a rule transition in a specific year.
type event struct {
	// local is the date and time of the AT column as if it were UT.
	local int64
	form  tzdata.TimeForm
	save  int64
}

// ut returns the Unix time of the event given the standard offset of the zone
// line and the saved time in effect before it.
func (e event) ut(stdoff, save int64) int64 {
	return toUT(e.local, e.form, stdoff, save)
}

func toUT(local int64, form tzdata.TimeForm, stdoff, save int64) int64 {
	switch form {
	case tzdata.UniversalTime:
		return local
	case tzdata.StandardTime:
		return local - stdoff
	}
	return local - stdoff - save
}

func compileZone(f tzdata.File, name string, lines []tzdata.ZoneLine, o options) (timeline.Timeline, error) {
	b := timeline.NewBuilder(name)
	// start is the beginning of the current line in Unix seconds.
	start := int64(math.MinInt64)
	for i, l := range lines {
		stdoff := int64(l.Offset / time.Second)
		var (
			save   int64
			events []event
		)
		switch l.Rules.Form {
		case tzdata.ZoneRulesTime:
			save = l.Rules.Time.Seconds()
		case tzdata.ZoneRulesName:
			rules := f.Rules(l.Rules.Name)
			if len(rules) == 0 {
				return timeline.Timeline{}, fmt.Errorf("line %d: unknown rules %q", i+1, l.Rules.Name)
			}
			from := o.minYear
			if start != math.MinInt64 {
				from = max(from, time.Unix(start, 0).UTC().Year()-1)
			}
			to := o.maxYear
			if l.Until.Defined {
				to = min(to, l.Until.Year)
			}
			events = expand(rules, from, to, stdoff)
		}

		until := func(save int64) int64 {
			u := l.Until
			y, m, d := tzexpand.DayOfMonth(u.Year, u.Month, u.Day)
			local := unixtime.FromDateTime(y, int(m), d, 0, 0, 0) + u.Time.Seconds()
			return toUT(local, u.Time.Form, stdoff, save)
		}

		for _, e := range events {
			at := e.ut(stdoff, save)
			if l.Until.Defined && at >= until(save) {
				break
			}
			if at > start {
				b.Add(unixtime.Millis(at), minutesWest(stdoff+save))
			}
			save = e.save
		}

		if !l.Until.Defined {
			if i != len(lines)-1 {
				return timeline.Timeline{}, fmt.Errorf("line %d: missing UNTIL", i+1)
			}
			return b.Finish(minutesWest(stdoff + save)), nil
		}
		start = until(save)
		b.Add(unixtime.Millis(start), minutesWest(stdoff+save))
	}
	return timeline.Timeline{}, fmt.Errorf("last line has an UNTIL column")
}

// expand returns the transitions of the rules in the years from through to,
// ordered by their standard time.
func expand(rules []tzdata.RuleLine, from, to int, stdoff int64) []event {
	var events []event
	for year := from; year <= to; year++ {
		for _, r := range rules {
			if !r.ActiveIn(year) {
				continue
			}
			y, m, d := tzexpand.DayOfMonth(year, r.In, r.On)
			events = append(events, event{
				local: unixtime.FromDateTime(y, int(m), d, 0, 0, 0) + r.At.Seconds(),
				form:  r.At.Form,
				save:  r.Save.Seconds(),
			})
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].ut(stdoff, 0) < events[j].ut(stdoff, 0)
	})
	return events
}

// minutesWest converts an offset in seconds east of UT to minutes west,
// truncating toward zero.
func minutesWest(offset int64) int {
	return int(-offset / unixtime.SecondsPerMinute)
}

// resolveLinks adds the timeline of each link's final target under the link's name.
func resolveLinks(links []tzdata.LinkLine, zones map[string]timeline.Timeline) error {
	targets := make(map[string]string, len(links))
	for _, l := range links {
		targets[l.Name] = l.Target
	}
	for _, name := range slices.Sorted(maps.Keys(targets)) {
		target := targets[name]
		seen := map[string]bool{name: true}
		for {
			next, ok := targets[target]
			if !ok {
				break
			}
			if seen[target] {
				return fmt.Errorf("link %s: cycle through %s", name, target)
			}
			seen[target] = true
			target = next
		}
		tl, ok := zones[target]
		if !ok {
			return fmt.Errorf("link %s: unknown target %s", name, target)
		}
		tl.Name = name
		zones[name] = tl
	}
	return nil
}
