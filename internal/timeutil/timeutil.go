// Package timeutil normalizes device-supplied timestamps into canonical
// instants and derives the calendar day used for aggregate keying.
package timeutil

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidTimestamp is returned when a raw value cannot be parsed into a
// valid calendar instant. It is always a per-record failure.
var ErrInvalidTimestamp = errors.New("invalid timestamp")

// localFormats are tried in order for values that carry no zone offset; they
// are interpreted in the deployment location. Devices have been observed to
// send all of these.
var localFormats = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
}

// epochMillisFloor: numeric values at or above this are epoch milliseconds,
// below it epoch seconds.
const epochMillisFloor = 1e12

// Normalize parses a device timestamp in one of the accepted encodings into
// an absolute instant. Offset-free encodings are interpreted in loc, the
// deployment's local time zone.
func Normalize(raw string, loc *time.Location) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, ErrInvalidTimestamp
	}

	if parsed, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return parsed, nil
	}
	for _, format := range localFormats {
		if parsed, err := time.ParseInLocation(format, value, loc); err == nil {
			return parsed, nil
		}
	}
	if epoch, err := strconv.ParseInt(value, 10, 64); err == nil {
		if epoch <= 0 {
			return time.Time{}, ErrInvalidTimestamp
		}
		if epoch >= epochMillisFloor {
			return time.Unix(0, epoch*int64(time.Millisecond)), nil
		}
		return time.Unix(epoch, 0), nil
	}

	return time.Time{}, ErrInvalidTimestamp
}

// DayOf returns the aggregate day key for an instant, evaluated in the
// deployment location rather than UTC: the device's "day" boundary follows
// local shift boundaries.
func DayOf(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

// FormatLocal renders an instant for result payloads and live broadcasts.
func FormatLocal(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02 15:04:05")
}
