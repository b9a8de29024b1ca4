// Package timeline provides the flattened representation of a time zone that
// matching operates on: a sequence of periods, each with a constant UTC offset.
package timeline

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// Forever is the end of the final period of every timeline.
const Forever int64 = math.MaxInt64

// Timeline is the offset history of a single zone.
//
// Period i covers the instants (Untils[i-1], Untils[i]] in Unix milliseconds
// and has the UTC offset -Offsets[i] minutes, i.e. offsets count minutes west
// of UTC. The first period is unbounded to the past, the last one ends at
// Forever.
type Timeline struct {
	Name    string
	Untils  []int64
	Offsets []int
}

// Len returns the number of periods.
func (tl Timeline) Len() int {
	return len(tl.Untils)
}

// Index returns the index of the period that ends strictly after ms, or -1
// if there is none.
func (tl Timeline) Index(ms int64) int {
	i := sort.Search(len(tl.Untils), func(i int) bool { return tl.Untils[i] > ms })
	if i == len(tl.Untils) {
		return -1
	}
	return i
}

// IndexAt is Index for a time.Time.
func (tl Timeline) IndexAt(t time.Time) int {
	return tl.Index(t.UnixMilli())
}

// Location returns the fixed location of period i.
func (tl Timeline) Location(i int) *time.Location {
	return time.FixedZone("", -tl.Offsets[i]*60)
}

// End returns the last instant of period i as seen in that period's offset.
// It must not be called for the final period.
func (tl Timeline) End(i int) time.Time {
	return time.UnixMilli(tl.Untils[i]).In(tl.Location(i))
}

// Validate checks the structural invariants of the timeline.
func (tl Timeline) Validate() error {
	var errs []error
	if len(tl.Untils) != len(tl.Offsets) {
		errs = append(errs, fmt.Errorf("%d untils but %d offsets", len(tl.Untils), len(tl.Offsets)))
	}
	if len(tl.Untils) == 0 {
		errs = append(errs, errors.New("no periods"))
	} else if last := tl.Untils[len(tl.Untils)-1]; last != Forever {
		errs = append(errs, fmt.Errorf("final until is %d, not Forever", last))
	}
	for i := 1; i < len(tl.Untils); i++ {
		if tl.Untils[i] <= tl.Untils[i-1] {
			errs = append(errs, fmt.Errorf("until %d (%d) is not after until %d (%d)", i, tl.Untils[i], i-1, tl.Untils[i-1]))
		}
	}
	for i, o := range tl.Offsets {
		if o < -25*60 || o > 25*60 {
			errs = append(errs, fmt.Errorf("offset %d (%d minutes) is out of range", i, o))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("timeline %s: %w", tl.Name, err)
	}
	return nil
}

// Builder assembles a timeline from periods given in chronological order.
// Consecutive periods with the same offset are merged, so every boundary of
// the result is an actual change of offset.
type Builder struct {
	name    string
	untils  []int64
	offsets []int
}

// NewBuilder returns a builder for the named timeline.
func NewBuilder(name string) *Builder {
	return &Builder{name: name}
}

// Add appends a period that ends at until (Unix milliseconds) and has the
// given offset in minutes west of UTC. Periods that end at or before the
// previous one are empty and ignored.
func (b *Builder) Add(until int64, offset int) {
	n := len(b.untils)
	if n > 0 && until <= b.untils[n-1] {
		return
	}
	if n > 0 && b.offsets[n-1] == offset {
		b.untils[n-1] = until
		return
	}
	b.untils = append(b.untils, until)
	b.offsets = append(b.offsets, offset)
}

// Finish closes the timeline with a final period of the given offset.
func (b *Builder) Finish(offset int) Timeline {
	b.Add(Forever, offset)
	return Timeline{Name: b.name, Untils: b.untils, Offsets: b.offsets}
}
