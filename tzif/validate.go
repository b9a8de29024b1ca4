package tzif

import (
	"errors"
	"fmt"
	"strings"
)

// Validate reports every violation of the structural requirements of
// RFC 8536 found in d.
func Validate(d Data) error {
	var errs []error
	switch d.Version {
	case V1, V2, V3, V4:
	default:
		errs = append(errs, fmt.Errorf("unknown version %v", d.Version))
	}
	errs = append(errs, validateBlock("v1", d.V1)...)
	if d.Version >= V2 {
		errs = append(errs, validateBlock("v2", d.V2)...)
		if strings.ContainsAny(d.Footer, "\x00\n") {
			errs = append(errs, fmt.Errorf("footer: TZ string %q contains NUL or newline", d.Footer))
		}
	} else if d.Footer != "" {
		errs = append(errs, fmt.Errorf("footer: version 1 files have no footer"))
	}
	return errors.Join(errs...)
}

func validateBlock(name string, b Block) []error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(name+" "+format, args...))
	}

	if n := len(b.TransitionTypes); n != len(b.TransitionTimes) {
		fail("transitions: %d times but %d types", len(b.TransitionTimes), n)
	}
	for i := 1; i < len(b.TransitionTimes); i++ {
		if b.TransitionTimes[i] <= b.TransitionTimes[i-1] {
			fail("transition time %d: not in strictly ascending order", i)
		}
	}
	for i, typ := range b.TransitionTypes {
		if int(typ) >= len(b.LocalTimeTypes) {
			fail("transition type %d: index %d out of range [0, %d)", i, typ, len(b.LocalTimeTypes))
		}
	}

	if len(b.LocalTimeTypes) == 0 {
		fail("typecnt: must not be zero")
	}
	if len(b.Designations) == 0 {
		fail("charcnt: must not be zero")
	} else if b.Designations[len(b.Designations)-1] != 0 {
		fail("time zone designations: missing NUL terminator")
	}
	for i, lt := range b.LocalTimeTypes {
		if lt.Utoff == -1<<31 {
			fail("local time type %d: utoff must not be -2**31", i)
		}
		if int(lt.Idx) >= len(b.Designations) {
			fail("local time type %d: designation index %d out of range", i, lt.Idx)
		}
	}

	if n := len(b.UTLocal); n != 0 && n != len(b.LocalTimeTypes) {
		fail("isutcnt (%d): must be 0 or equal to typecnt (%d)", n, len(b.LocalTimeTypes))
	}
	if n := len(b.StandardWall); n != 0 && n != len(b.LocalTimeTypes) {
		fail("isstdcnt (%d): must be 0 or equal to typecnt (%d)", n, len(b.LocalTimeTypes))
	}
	for i, ut := range b.UTLocal {
		if ut && (i >= len(b.StandardWall) || !b.StandardWall[i]) {
			fail("UT/local indicator %d: set without standard/wall indicator", i)
		}
	}

	for i, ls := range b.LeapSeconds {
		if i == 0 {
			if ls.Occur < 0 {
				fail("leap second 0: occurrence must be nonnegative")
			}
			continue
		}
		prev := b.LeapSeconds[i-1]
		if ls.Occur-prev.Occur < 2419199 {
			fail("leap second %d: less than 28 days after the previous one", i)
		}
		if d := ls.Corr - prev.Corr; d != 1 && d != -1 && !(i == len(b.LeapSeconds)-1 && d == 0) {
			fail("leap second %d: correction differs by %d", i, d)
		}
	}
	return errs
}
