// Package utils provides utility functions for the application.
package utils

import (
	"time"
)

// ISO8601Millis is the wire format for dates crossing the API boundary,
// e.g. "2021-12-31T23:59:59.999Z".
const ISO8601Millis = "2006-01-02T15:04:05.000Z07:00"

// UTCNow returns the current time in UTC
func UTCNow() time.Time {
	return time.Now().UTC()
}

// UTCNowPtr returns a pointer to the current time in UTC
func UTCNowPtr() *time.Time {
	now := UTCNow()
	return &now
}

// UTCNowFormat returns the current UTC time formatted according to the given layout
func UTCNowFormat(layout string) string {
	return UTCNow().Format(layout)
}

// UTCNowRFC3339 returns the current UTC time in RFC3339 format
func UTCNowRFC3339() string {
	return UTCNow().Format(time.RFC3339)
}

// TimeToUTC converts a time to UTC if it's not already
func TimeToUTC(t time.Time) time.Time {
	return t.UTC()
}

// StartOfUTCDay truncates a time to 00:00:00.000 UTC of its UTC calendar day.
// All before/after/equal decisions in this codebase compare at this
// granularity so that time-of-day and timezone offsets never shift a date
// across a day boundary.
func StartOfUTCDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfUTCDay returns 23:59:59.999 UTC of the time's UTC calendar day.
func EndOfUTCDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 23, 59, 59, int(999*time.Millisecond), time.UTC)
}

// EndOfPreviousUTCDay returns 23:59:59.999 UTC of the day before the time's
// UTC calendar day.
func EndOfPreviousUTCDay(t time.Time) time.Time {
	return EndOfUTCDay(t.UTC().AddDate(0, 0, -1))
}

// IsBeforeDay reports whether t falls on an earlier UTC calendar day than ref.
func IsBeforeDay(t, ref time.Time) bool {
	return StartOfUTCDay(t).Before(StartOfUTCDay(ref))
}

// IsAfterDay reports whether t falls on a later UTC calendar day than ref.
func IsAfterDay(t, ref time.Time) bool {
	return StartOfUTCDay(t).After(StartOfUTCDay(ref))
}

// IsSameDay reports whether t and ref fall on the same UTC calendar day.
func IsSameDay(t, ref time.Time) bool {
	return StartOfUTCDay(t).Equal(StartOfUTCDay(ref))
}

// CompareDay orders two times by UTC calendar day: -1, 0 or +1.
func CompareDay(t, ref time.Time) int {
	return StartOfUTCDay(t).Compare(StartOfUTCDay(ref))
}

// StartOfUTCMonth truncates a time to 00:00:00.000 UTC of the first day of
// its UTC month.
func StartOfUTCMonth(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// IsUTCFirstDayOfMonth reports whether the time falls on the first UTC
// calendar day of its month.
func IsUTCFirstDayOfMonth(t time.Time) bool {
	return t.UTC().Day() == 1
}

// StartOfNextUTCMonth returns the closest start-of-month on or after the
// given time: the time's own month start when it already sits on the first
// day, otherwise the start of the following month.
func StartOfNextUTCMonth(t time.Time) time.Time {
	monthStart := StartOfUTCMonth(t)
	if IsSameDay(monthStart, t) {
		return monthStart
	}
	return monthStart.AddDate(0, 1, 0)
}

// FormatISODate renders a time in the API wire format (UTC, millisecond
// precision).
func FormatISODate(t time.Time) string {
	return t.UTC().Format(ISO8601Millis)
}

// ParseISODate accepts the formats dates arrive in on the wire: RFC3339 with
// or without fractional seconds, or a bare "2006-01-02" day.
func ParseISODate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	t, err := time.Parse(ISO8601Millis, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
