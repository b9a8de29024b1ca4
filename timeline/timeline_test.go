package timeline

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// America/Los_Angeles around 2024.
var pacific = Timeline{
	Name:    "America/Los_Angeles",
	Untils:  []int64{1699174800000, 1710064800000, 1730624400000, Forever},
	Offsets: []int{420, 480, 420, 480},
}

func TestIndex(t *testing.T) {
	cases := []struct {
		ms   int64
		want int
	}{
		{0, 0},
		{1699174800000 - 1, 0},
		// Untils are inclusive ends of a period.
		{1699174800000, 1},
		{1699174800000 + 1, 1},
		{1710064800000, 2},
		{1730624400000, 3},
		{Forever - 1, 3},
		{Forever, -1},
	}
	for _, c := range cases {
		if got := pacific.Index(c.ms); got != c.want {
			t.Errorf("Index(%d) = %d, want %d", c.ms, got, c.want)
		}
	}
	if got := pacific.IndexAt(time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)); got != 1 {
		t.Errorf("IndexAt(2024-01-15) = %d, want 1", got)
	}
}

func TestEnd(t *testing.T) {
	// The period ending 2024-03-10 10:00 UTC is PST, so the transition is at
	// 02:00 local time.
	end := pacific.End(1)
	if got, want := end.Format("2006-01-02 15:04 -0700"), "2024-03-10 02:00 -0800"; got != want {
		t.Errorf("End(1) = %s, want %s", got, want)
	}
	end = pacific.End(2)
	if got, want := end.Format("2006-01-02 15:04 -0700"), "2024-11-03 02:00 -0700"; got != want {
		t.Errorf("End(2) = %s, want %s", got, want)
	}
}

func TestValidate(t *testing.T) {
	if err := pacific.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
	cases := []struct {
		tl   Timeline
		want []string
	}{
		{Timeline{Name: "empty"}, []string{"no periods"}},
		{Timeline{Name: "lengths", Untils: []int64{Forever}, Offsets: []int{0, 60}}, []string{"1 untils but 2 offsets"}},
		{Timeline{Name: "open", Untils: []int64{10}, Offsets: []int{0}}, []string{"not Forever"}},
		{Timeline{Name: "order", Untils: []int64{10, 10, Forever}, Offsets: []int{0, 60, 0}}, []string{"is not after"}},
		{Timeline{Name: "range", Untils: []int64{Forever}, Offsets: []int{26 * 60}}, []string{"out of range"}},
	}
	for _, c := range cases {
		err := c.tl.Validate()
		if err == nil {
			t.Errorf("%s: Validate() succeeded, want error", c.tl.Name)
			continue
		}
		for _, w := range c.want {
			if !strings.Contains(err.Error(), w) {
				t.Errorf("%s: error %q does not contain %q", c.tl.Name, err, w)
			}
		}
	}
}

func TestBuilder(t *testing.T) {
	b := NewBuilder("Test/Zone")
	b.Add(100, 60)
	// Same offset extends the previous period.
	b.Add(200, 60)
	b.Add(300, 0)
	// Empty periods are dropped.
	b.Add(300, 120)
	b.Add(250, 120)
	b.Add(400, 120)
	got := b.Finish(120)

	want := Timeline{
		Name:    "Test/Zone",
		Untils:  []int64{200, 300, Forever},
		Offsets: []int{60, 0, 120},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Finish() mismatch (-want +got):\n%s", diff)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestBuilder_FixedOffset(t *testing.T) {
	got := NewBuilder("Etc/GMT+5").Finish(300)
	want := Timeline{Name: "Etc/GMT+5", Untils: []int64{Forever}, Offsets: []int{300}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Finish() mismatch (-want +got):\n%s", diff)
	}
}
