package match

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"cloudeng.io/logging/ctxlog"
	"github.com/google/go-cmp/cmp"

	"github.com/ngrash/tzmatch/ctz"
	"github.com/ngrash/tzmatch/timeline"
	"github.com/ngrash/tzmatch/tzdata"
	"github.com/ngrash/tzmatch/zoneinfo"
)

const source = `
# Rule	NAME	FROM	TO	-	IN	ON	AT	SAVE	LETTER
Rule	US	1967	2006	-	Oct	lastSun	2:00	0	S
Rule	US	1987	2006	-	Apr	Sun>=1	2:00	1:00	D
Rule	US	2007	max	-	Mar	Sun>=8	2:00	1:00	D
Rule	US	2007	max	-	Nov	Sun>=1	2:00	0	S

Rule	EU	1979	1995	-	Sep	lastSun	 1:00u	0	-
Rule	EU	1981	max	-	Mar	lastSun	 1:00u	1:00	S
Rule	EU	1996	max	-	Oct	lastSun	 1:00u	0	-

Rule	AN	2008	max	-	Apr	Sun>=1	2:00s	0	S
Rule	AN	2008	max	-	Oct	Sun>=1	2:00s	1:00	D

Zone	America/Dawson	-8:00	US	P%sT
Zone	America/Los_Angeles	-8:00	US	P%sT
Zone	Africa/Ceuta	0:00	-	WET	1986
			1:00	EU	CE%sT
Zone	Europe/Berlin	1:00	EU	CE%sT
Zone	Australia/Sydney	10:00	AN	AE%sT
Zone	Asia/Kolkata	5:30	-	IST
Zone	Asia/Tokyo	9:00	-	JST

Link	Asia/Kolkata	Asia/Calcutta
`

func testDB(t *testing.T) *zoneinfo.DB {
	t.Helper()
	f, err := tzdata.Parse(strings.NewReader(source))
	if err != nil {
		t.Fatal(err)
	}
	db, err := zoneinfo.Compiled(f)
	if err != nil {
		t.Fatal(err)
	}
	return db
}

func TestFind(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	cases := []struct {
		name string
		z    ctz.CustomTimeZone
		want string
	}{
		{"pacific", pacific(), "America/Dawson"},
		{"cet", cet(), "Africa/Ceuta"},
		{"skewed", rule(-63, offset("03:00:00.0000000", 5, "sunday", 10), -61, offset("02:00:00.0000000", 5, "sunday", 3)), ""},
		{"india", fixed(-330), "Asia/Calcutta"},
		{"utc", fixed(0), ""},
	}
	for _, c := range cases {
		got, err := Find(ctx, db, c.z, WithReference(reference))
		if err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		if got != c.want {
			t.Errorf("%s: Find() = %q, want %q", c.name, got, c.want)
		}
	}
}

func TestFindAll(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	cases := []struct {
		name string
		z    ctz.CustomTimeZone
		want []string
	}{
		{"pacific", pacific(), []string{"America/Dawson", "America/Los_Angeles"}},
		{"cet", cet(), []string{"Africa/Ceuta", "Europe/Berlin"}},
		{"india", fixed(-330), []string{"Asia/Calcutta", "Asia/Kolkata"}},
		{"sydney", sydney(), []string{"Australia/Sydney"}},
		{"skewed", rule(-63, offset("03:00:00.0000000", 5, "sunday", 10), -61, offset("02:00:00.0000000", 5, "sunday", 3)), nil},
	}
	for _, c := range cases {
		for _, concurrency := range []int{1, 3, 0} {
			got, err := FindAll(ctx, db, c.z, WithReference(reference), WithConcurrency(concurrency))
			if err != nil {
				t.Fatalf("%s: %v", c.name, err)
			}
			if diff := cmp.Diff(c.want, got); diff != "" {
				t.Errorf("%s: FindAll(concurrency %d) mismatch (-want +got):\n%s", c.name, concurrency, diff)
			}
		}
	}
}

func TestFind_DefaultReference(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	for _, z := range []ctz.CustomTimeZone{pacific(), cet(), sydney(), fixed(-330)} {
		want, err := Find(ctx, db, z, WithReference(time.Now()))
		if err != nil {
			t.Fatal(err)
		}
		got, err := Find(ctx, db, z)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("%s: Find() = %q, Find(WithReference(now)) = %q", z.Name, got, want)
		}
		if want == "" {
			t.Errorf("%s: no match at the current time", z.Name)
		}
	}
}

func TestFind_InvalidRule(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	z := pacific()
	z.StandardOffset.Month = 0
	z.DaylightOffset.Time = "two o'clock"

	_, err := Find(ctx, db, z, WithReference(reference))
	var verr *ctz.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Find() = %v, want *ctz.ValidationError", err)
	}
	if _, err := FindAll(ctx, db, z, WithReference(reference)); !errors.As(err, &verr) {
		t.Fatalf("FindAll() = %v, want *ctz.ValidationError", err)
	}
}

func TestFind_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Find(ctx, testDB(t), pacific(), WithReference(reference)); !errors.Is(err, context.Canceled) {
		t.Errorf("Find() = %v, want context.Canceled", err)
	}
}

// brokenDB fails to load some of its zones.
type brokenDB struct {
	*zoneinfo.DB
	broken map[string]bool
}

func (db brokenDB) Names() []string {
	return append([]string{"Aaa/Broken"}, db.DB.Names()...)
}

func (db brokenDB) Lookup(name string) (timeline.Timeline, error) {
	if db.broken[name] {
		return timeline.Timeline{}, fmt.Errorf("%s: corrupt file", name)
	}
	return db.DB.Lookup(name)
}

func TestFind_SkipsBrokenZones(t *testing.T) {
	var out bytes.Buffer
	ctx := ctxlog.NewJSONLogger(context.Background(), &out, &slog.HandlerOptions{Level: slog.LevelDebug})
	db := brokenDB{DB: testDB(t), broken: map[string]bool{"Aaa/Broken": true, "America/Dawson": true}}

	got, err := Find(ctx, db, pacific(), WithReference(reference))
	if err != nil {
		t.Fatal(err)
	}
	if got != "America/Los_Angeles" {
		t.Errorf("Find() = %q, want America/Los_Angeles", got)
	}
	logs := out.String()
	for _, want := range []string{`"zone":"Aaa/Broken"`, `"zone":"America/Dawson"`, "corrupt file", `"level":"WARN"`, `"level":"DEBUG"`} {
		if !strings.Contains(logs, want) {
			t.Errorf("log output does not contain %s:\n%s", want, logs)
		}
	}

	all, err := FindAll(context.Background(), db, cet(), WithReference(reference))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"Africa/Ceuta", "Europe/Berlin"}, all); diff != "" {
		t.Errorf("FindAll() mismatch (-want +got):\n%s", diff)
	}
}
