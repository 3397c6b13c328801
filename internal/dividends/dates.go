package dividends

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// DisplayLayout is the fixed layout used for payment dates.
const DisplayLayout = "02/01/2006 15:04"

var (
	isoDateRe     = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	isoDateTimeRe = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})[ T](\d{2}):(\d{2})(?::(\d{2}))?$`)
	displayRe     = regexp.MustCompile(`(\d{2})/(\d{2})/(\d{4})\s+(\d{2}):(\d{2})`)
)

// FormatDateDisplay converts a source date string to dd/mm/yyyy HH:MM in
// local wall-clock time. Unrecognized input is returned trimmed but
// otherwise unchanged, so it is never lost from the table.
func FormatDateDisplay(input string) string {
	s := strings.TrimSpace(input)
	if s == "" {
		return ""
	}

	if m := isoDateRe.FindStringSubmatch(s); m != nil && validMonthDay(m[2], m[3]) {
		return localDate(m[1], m[2], m[3], "0", "0").Format(DisplayLayout)
	}
	if m := isoDateTimeRe.FindStringSubmatch(s); m != nil && validMonthDay(m[2], m[3]) {
		return localDate(m[1], m[2], m[3], m[4], m[5]).Format(DisplayLayout)
	}
	// Already in display form.
	if m := displayRe.FindStringSubmatch(s); m != nil && m[0] == s {
		return s
	}
	if t, ok := parseGeneric(s); ok {
		return t.Format(DisplayLayout)
	}
	return s
}

// ParseDisplayDate parses the first dd/mm/yyyy HH:MM occurrence in s.
func ParseDisplayDate(s string) (time.Time, bool) {
	m := displayRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	return localDate(m[3], m[2], m[1], m[4], m[5]), true
}

// localDate builds a local time from decimal components. Out-of-range
// components roll over the same way time.Date does (day 31 of a 30-day
// month becomes the 1st of the next month).
func localDate(year, month, day, hour, minute string) time.Time {
	y, _ := strconv.Atoi(year)
	mo, _ := strconv.Atoi(month)
	d, _ := strconv.Atoi(day)
	h, _ := strconv.Atoi(hour)
	mi, _ := strconv.Atoi(minute)
	return time.Date(y, time.Month(mo), d, h, mi, 0, 0, time.Local)
}

// validMonthDay rejects a zero day and a month outside 1..12. Days past the
// end of the month are still accepted and roll over in localDate.
func validMonthDay(month, day string) bool {
	mo, _ := strconv.Atoi(month)
	d, _ := strconv.Atoi(day)
	return mo >= 1 && mo <= 12 && d >= 1
}

func parseGeneric(s string) (t time.Time, ok bool) {
	defer func() {
		if recover() != nil {
			t, ok = time.Time{}, false
		}
	}()
	parsed, err := dateparse.ParseLocal(s)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}
