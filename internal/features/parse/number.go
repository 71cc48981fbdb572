package parse

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	digitCommaRun        = regexp.MustCompile(`[\d,]+`)
	leadingDigitCommaRun = regexp.MustCompile(`^[\d,]+`)
)

// commaFloat converts a digit/comma run using the comma as decimal separator.
// Only the first comma is a separator; anything from a second comma on is ignored.
func commaFloat(run string) float64 {
	if run == "" {
		return 0
	}

	s := strings.Replace(run, ",", ".", 1)
	if i := strings.IndexByte(s, ','); i >= 0 {
		s = s[:i]
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// leadingInt returns the integer formed by the leading ASCII digits of s
func leadingInt(s string) (int, bool) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, false
	}

	n, err := strconv.Atoi(s[:i])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Int parses a wire integer, tolerating surrounding text ("2100 m" → 2100).
// Returns 0 when there is no leading number.
func Int(s string) int {
	n, _ := leadingInt(strings.TrimSpace(s))
	return n
}
