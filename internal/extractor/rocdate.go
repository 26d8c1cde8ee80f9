package extractor

import (
	"strconv"
	"strings"
	"time"
)

// rocOffset is the year difference between the Minguo and Gregorian calendars.
const rocOffset = 1911

// ConvertROCDate converts a Republic-of-China date "YYY/MM/DD" into the
// Western "YYYY-MM-DD" form. Malformed input is returned unchanged.
// A four-digit year is taken as already Western and only reformatted.
func ConvertROCDate(s string) string {
	t, ok := parseROCDate(s)
	if !ok {
		return s
	}
	return t.Format(time.DateOnly)
}

func parseROCDate(s string) (time.Time, bool) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return time.Time{}, false
	}

	var nums [3]int
	for i, p := range parts {
		if p == "" || len(p) > 4 || strings.Trim(p, "0123456789") != "" {
			return time.Time{}, false
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return time.Time{}, false
		}
		nums[i] = n
	}

	year, month, day := nums[0], nums[1], nums[2]
	if len(parts[0]) < 4 {
		year += rocOffset
	}
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow such as 02/30
	if t.Day() != day || t.Month() != time.Month(month) {
		return time.Time{}, false
	}
	return t, true
}
