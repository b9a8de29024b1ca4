package ctz

import (
	"fmt"
	"strings"

	"cloudeng.io/errors"
)

// ValidationError lists the problems found in a custom time zone.
type ValidationError struct {
	Name string
	Err  error
}

func (e *ValidationError) Error() string {
	name := e.Name
	if name == "" {
		name = "custom time zone"
	}
	return fmt.Sprintf("invalid %s: %v", name, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

const maxBias = 24 * 60

// Validate checks the fields that matching depends on. Calendar fields of the
// transition rules are only checked when z observes daylight saving time,
// since zones without it leave them zeroed.
func (z CustomTimeZone) Validate() error {
	var errs errors.M
	if z.Bias != nil && (*z.Bias < -maxBias || *z.Bias > maxBias) {
		errs.Append(fmt.Errorf("bias: %d out of range [%d, %d]", *z.Bias, -maxBias, maxBias))
	}
	if z.ObservesDST() {
		if b := *z.DaylightOffset.DaylightBias; b < -maxBias || b > maxBias {
			errs.Append(fmt.Errorf("daylightBias: %d out of range [%d, %d]", b, -maxBias, maxBias))
		}
		if z.StandardOffset == nil {
			errs.Append(fmt.Errorf("standardOffset: missing"))
		} else {
			validateOffset(&errs, "standardOffset", *z.StandardOffset)
		}
		validateOffset(&errs, "daylightOffset", z.DaylightOffset.StandardTimeZoneOffset)
	}
	if err := errs.Err(); err != nil {
		return &ValidationError{Name: z.Name, Err: err}
	}
	return nil
}

func validateOffset(errs *errors.M, field string, o StandardTimeZoneOffset) {
	if _, err := ParseTimeOfDay(o.Time); err != nil {
		errs.Append(fmt.Errorf("%s.time: %w", field, err))
	}
	if o.DayOccurrence < 1 || o.DayOccurrence > 5 {
		errs.Append(fmt.Errorf("%s.dayOccurrence: %d out of range [1, 5]", field, o.DayOccurrence))
	}
	if _, ok := ParseWeekday(o.DayOfWeek); !ok {
		errs.Append(fmt.Errorf("%s.dayOfWeek: unknown weekday %q", field, strings.TrimSpace(o.DayOfWeek)))
	}
	if o.Month < 1 || o.Month > 12 {
		errs.Append(fmt.Errorf("%s.month: %d out of range [1, 12]", field, o.Month))
	}
}
