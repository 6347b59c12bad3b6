// Package timestamp parses provider segment timestamps.
//
// Providers send airport-local times, usually without an offset
// ("2025-03-01T06:10:00"). Such values are read as UTC so that differences
// between them are plain wall-clock arithmetic.
package timestamp

import (
	"time"
)

var layouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

func Parse(s string) (time.Time, error) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, &time.ParseError{
		Value:   s,
		Message: ": unable to parse timestamp",
	}
}

// MinutesBetween returns the whole minutes from start to end. It is negative
// when end precedes start.
func MinutesBetween(start, end string) (int, error) {
	from, err := Parse(start)
	if err != nil {
		return 0, err
	}
	to, err := Parse(end)
	if err != nil {
		return 0, err
	}
	return int(to.Sub(from) / time.Minute), nil
}

// Display trims a timestamp to "YYYY-MM-DD HH:MM".
func Display(s string) string {
	t, err := Parse(s)
	if err != nil {
		return s
	}
	return t.Format("2006-01-02 15:04")
}
