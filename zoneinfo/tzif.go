package zoneinfo

import (
	"fmt"
	"time"

	"github.com/ngrash/tzmatch/internal/posixtz"
	"github.com/ngrash/tzmatch/internal/unixtime"
	"github.com/ngrash/tzmatch/timeline"
	"github.com/ngrash/tzmatch/tzif"
)

// FromTZif returns the timeline described by TZif data. Transitions after the
// last explicit one are generated from the footer's TZ string up to and
// including the horizon year.
func FromTZif(name string, data tzif.Data, horizon int) (timeline.Timeline, error) {
	blk := data.Block()
	if len(blk.LocalTimeTypes) == 0 {
		return timeline.Timeline{}, fmt.Errorf("%s: no local time types", name)
	}

	b := timeline.NewBuilder(name)
	// Time type 0 applies before the first transition.
	utoff := int64(blk.LocalTimeTypes[0].Utoff)
	for i, at := range blk.TransitionTimes {
		typ := int(blk.TransitionTypes[i])
		if typ >= len(blk.LocalTimeTypes) {
			return timeline.Timeline{}, fmt.Errorf("%s: transition %d: invalid type %d", name, i, typ)
		}
		b.Add(unixtime.Millis(at), minutesWest(utoff))
		utoff = int64(blk.LocalTimeTypes[typ].Utoff)
	}

	if data.Version >= tzif.V2 && data.Footer != "" {
		rule, err := posixtz.Parse(data.Footer)
		if err != nil {
			return timeline.Timeline{}, fmt.Errorf("%s: footer: %w", name, err)
		}
		last := int64(-1 << 63)
		from := 1970
		if n := len(blk.TransitionTimes); n > 0 {
			last = blk.TransitionTimes[n-1]
			from = time.Unix(last, 0).UTC().Year()
		}
		for _, tr := range rule.Transitions(from, horizon) {
			if tr.At <= last {
				continue
			}
			b.Add(unixtime.Millis(tr.At), minutesWest(utoff))
			utoff = int64(tr.Offset)
		}
	}
	return b.Finish(minutesWest(utoff)), nil
}

// minutesWest converts seconds east of UT to minutes west, truncating toward zero.
func minutesWest(utoff int64) int {
	return int(-utoff / unixtime.SecondsPerMinute)
}
