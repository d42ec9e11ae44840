// Package dates parses the admin panel's locale date format.
package dates

import (
	"strconv"
	"strings"
	"time"
)

const DayLayout = "02.01.2006"

// Parse interprets "DD.MM.YYYY" optionally followed by " HH:MM". A missing
// time part means 00:00. A non-numeric day, month or year yields the zero
// time and ok=false; callers that want the historical permissive behavior
// treat that as earliest-possible rather than an error, callers that want
// to reject malformed input check ok. Out-of-range components normalize the
// way time.Date does (32.01 rolls into February).
func Parse(s string) (time.Time, bool) {
	datePart, timePart, _ := strings.Cut(strings.TrimSpace(s), " ")

	parts := strings.Split(datePart, ".")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	dd, errD := strconv.Atoi(parts[0])
	mm, errM := strconv.Atoi(parts[1])
	yyyy, errY := strconv.Atoi(parts[2])
	if errD != nil || errM != nil || errY != nil {
		return time.Time{}, false
	}

	// Garbage in the time part degrades to midnight, not to failure.
	hh, mi := 0, 0
	if timePart != "" {
		hs, ms, _ := strings.Cut(timePart, ":")
		if n, err := strconv.Atoi(hs); err == nil {
			hh = n
		}
		if n, err := strconv.Atoi(ms); err == nil {
			mi = n
		}
	}

	return time.Date(yyyy, time.Month(mm), dd, hh, mi, 0, 0, time.Local), true
}

// FormatDay renders t as "DD.MM.YYYY", the format comment timestamps use.
func FormatDay(t time.Time) string {
	return t.Format(DayLayout)
}
