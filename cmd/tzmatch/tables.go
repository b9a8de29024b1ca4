package main

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/ngrash/tzmatch/ctz"
	"github.com/ngrash/tzmatch/internal/tzexpand"
	"github.com/ngrash/tzmatch/timeline"
)

// periodsTable lists up to n periods of tl on either side of the one
// containing ref. Each row shows how the period ends as seen in its own
// offset, which is what rules are compared against.
func periodsTable(tl timeline.Timeline, ref time.Time, n int) table.Writer {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"Until (UTC)", "Offset", "Local end", "Weekday", ""})
	cur := tl.IndexAt(ref)
	if cur < 0 {
		cur = tl.Len() - 1
	}
	for i := max(cur-n, 0); i <= min(cur+n, tl.Len()-1); i++ {
		marker := ""
		if i == cur {
			marker = "<- ref"
		}
		if tl.Untils[i] == timeline.Forever {
			tw.AppendRow(table.Row{"forever", formatOffset(tl.Offsets[i]), "", "", marker})
			continue
		}
		end := tl.End(i)
		nth, last := tzexpand.Occurrence(end)
		occ := fmt.Sprintf("%s #%d", end.Weekday(), nth)
		if last {
			occ += " (last)"
		}
		tw.AppendRow(table.Row{
			time.UnixMilli(tl.Untils[i]).UTC().Format(time.RFC3339),
			formatOffset(tl.Offsets[i]),
			end.Format("2006-01-02 ") + ctz.FormatTimeOfDay(end),
			occ,
			marker,
		})
	}
	return tw
}

// transitionsTable lists the transitions of z in year.
func transitionsTable(z ctz.CustomTimeZone, year int) (table.Writer, error) {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"At (UTC)", "From", "To"})
	if !z.ObservesDST() {
		if z.Bias == nil {
			return nil, fmt.Errorf("rule %q has no bias", z.Name)
		}
		tw.AppendRow(table.Row{"none", formatOffset(*z.Bias), formatOffset(*z.Bias)})
		return tw, nil
	}
	ts, err := z.Transitions(year)
	if err != nil {
		return nil, err
	}
	for _, t := range ts {
		tw.AppendRow(table.Row{
			t.At.UTC().Format(time.RFC3339),
			formatOffset(t.OffsetBefore),
			formatOffset(t.OffsetAfter),
		})
	}
	return tw, nil
}
