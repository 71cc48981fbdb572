package parse

import (
	"strconv"
	"strings"
	"time"
)

// ParseDate accepts ISO dates ("2026-01-10", with or without a time part) and
// Finnish short dates ("10.1.26", "10.1.2026"). Dates are returned at UTC midnight.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	switch {
	case s == "", s == "0", s == "NaT":
		return time.Time{}, false
	case strings.Contains(s, "-"):
		if len(s) > len("2006-01-02") {
			s = s[:len("2006-01-02")]
		}
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	case strings.Contains(s, "."):
		return parseDottedDate(s)
	}
	return time.Time{}, false
}

func parseDottedDate(s string) (time.Time, bool) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return time.Time{}, false
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return time.Time{}, false
		}
		nums[i] = n
	}

	day, month, year := nums[0], nums[1], nums[2]
	if year < 100 {
		year += 2000
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}
