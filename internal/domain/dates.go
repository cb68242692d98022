package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Layouts accepted for displayed post timestamps and for --cutoff_date.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006 15:04",
	"01/02/2006",
	"1/2/2006",
	"Monday, January 2, 2006 3:04 PM",
	"Monday, January 2, 2006 15:04",
	"Monday, January 2, 2006",
	"January 2, 2006 3:04 PM",
	"January 2, 2006 15:04",
	"January 2, 2006",
	"Jan 2, 2006 3:04 PM",
	"Jan 2, 2006",
	"2 January 2006 15:04",
	"2 January 2006",
}

// Layouts for recent posts, which are displayed without a year.
var yearlessLayouts = []string{
	"Monday, January 2 3:04 PM",
	"January 2 3:04 PM",
	"January 2",
}

var atSeparator = regexp.MustCompile(`\s+at\s+`)

// ParseDate parses a displayed post timestamp or a cutoff date string.
// "Tuesday, March 3, 2020 at 10:04 AM" is read with the " at" dropped.
func ParseDate(s string) (time.Time, error) {
	return parseDateAt(s, time.Now())
}

func parseDateAt(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(atSeparator.ReplaceAllString(s, " "))
	if s == "" {
		return time.Time{}, ErrInvalidDate
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}

	for _, layout := range yearlessLayouts {
		t, err := time.ParseInLocation(layout, s, time.Local)
		if err != nil {
			continue
		}
		t = t.AddDate(now.Year()-t.Year(), 0, 0)
		if t.After(now) {
			t = t.AddDate(-1, 0, 0)
		}
		return t, nil
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}
