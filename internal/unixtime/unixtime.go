// Package unixtime converts civil dates and times of the proleptic Gregorian
// calendar to Unix timestamps without going through time.Location.
//
// Zone data is what time.Location is built from, so the compiler and the
// POSIX rule expander do their arithmetic here instead.
package unixtime

const (
	SecondsPerMinute = 60
	SecondsPerHour   = 60 * SecondsPerMinute
	SecondsPerDay    = 24 * SecondsPerHour

	daysPer400Years = 365*400 + 97
	// daysToUnixEpoch is the number of days from 0000-03-01 to 1970-01-01.
	daysToUnixEpoch = 719468
)

// FromDateTime returns the number of seconds since 1970-01-01 00:00:00 UTC for
// the given civil date and time. Leap seconds are ignored.
//
// Month must be in [1, 12]. Day, hour, minute and second may be out of their
// usual ranges and are applied linearly, so day 0 is the last day of the
// previous month and hour 24 is midnight of the next day.
func FromDateTime(year, month, day, hour, minute, second int) int64 {
	return DaysSinceEpoch(year, month, day)*SecondsPerDay +
		int64(hour)*SecondsPerHour +
		int64(minute)*SecondsPerMinute +
		int64(second)
}

// DaysSinceEpoch returns the number of days between 1970-01-01 and the given date.
func DaysSinceEpoch(year, month, day int) int64 {
	// Shift the year to start in March so the leap day is the last day of the year.
	if month <= 2 {
		year--
	}
	era := year
	if era < 0 {
		era -= 399
	}
	era /= 400
	yoe := year - era*400                  // [0, 399]
	mp := (month + 9) % 12                 // March = 0
	doy := (153*mp+2)/5 + day - 1          // day of the shifted year
	doe := yoe*365 + yoe/4 - yoe/100 + doy // day of the era
	return int64(era)*daysPer400Years + int64(doe) - daysToUnixEpoch
}

// Millis converts Unix seconds to Unix milliseconds.
func Millis(sec int64) int64 {
	return sec * 1000
}
