// Package datetime provides UNIX-timestamp and ISO-date helpers. All
// conversions are UTC.
package datetime

import (
	"fmt"
	"time"
)

const (
	// ISODate is the wire format for request date ranges
	ISODate = "2006-01-02"

	secondsPerDay = 24 * 3600
)

// NowRFC3339 returns the current time in RFC3339 format
func NowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// NowUnix returns the current UNIX timestamp
func NowUnix() int64 {
	return time.Now().Unix()
}

// FromUnix converts a UNIX timestamp to a UTC time
func FromUnix(ts int64) time.Time {
	return time.Unix(ts, 0).UTC()
}

// ParseISODate parses a YYYY-MM-DD date string as midnight UTC
func ParseISODate(s string) (time.Time, error) {
	t, err := time.Parse(ISODate, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// ISOToUnix converts a YYYY-MM-DD date string to a UNIX timestamp
func ISOToUnix(s string) (int64, error) {
	t, err := ParseISODate(s)
	if err != nil {
		return 0, err
	}
	return t.Unix(), nil
}

// UnixToISO formats a UNIX timestamp as a YYYY-MM-DD date string
func UnixToISO(ts int64) string {
	return FromUnix(ts).Format(ISODate)
}

// DayKey returns the YYYY-MM-DD grouping key for a timestamp
func DayKey(ts int64) string {
	return FromUnix(ts).Format(ISODate)
}

// WeekKey returns the YYYY-Wxx grouping key for a timestamp
func WeekKey(ts int64) string {
	year, week := FromUnix(ts).ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// MonthKey returns the YYYY-MM grouping key for a timestamp
func MonthKey(ts int64) string {
	return FromUnix(ts).Format("2006-01")
}

// MonthBoundaries returns the first and last second of the month containing ts
func MonthBoundaries(ts int64) (int64, int64) {
	t := FromUnix(ts)
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Second)
	return start.Unix(), end.Unix()
}

// DaysBetween returns whole days between two timestamps, rounded down
func DaysBetween(start, end int64) int {
	return int((end - start) / secondsPerDay)
}

// MonthsBetween returns calendar months between two timestamps
func MonthsBetween(start, end int64) int {
	s, e := FromUnix(start), FromUnix(end)
	return (e.Year()-s.Year())*12 + int(e.Month()) - int(s.Month())
}

// AddDays adds days to a timestamp
func AddDays(ts int64, days int) int64 {
	return FromUnix(ts).AddDate(0, 0, days).Unix()
}

// AddMonths adds calendar months to a timestamp, clamping the day to the last
// day of the target month (Jan 31 plus one month is Feb 28 or 29).
func AddMonths(ts int64, months int) int64 {
	t := FromUnix(ts)

	month := int(t.Month()) + months
	year := t.Year()
	for month > 12 {
		month -= 12
		year++
	}
	for month < 1 {
		month += 12
		year--
	}

	day := t.Day()
	if last := lastDayOfMonth(year, time.Month(month)); day > last {
		day = last
	}

	return time.Date(year, time.Month(month), day,
		t.Hour(), t.Minute(), t.Second(), 0, time.UTC).Unix()
}

func lastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
