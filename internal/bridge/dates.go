package bridge

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// The spreadsheet exports carry dates as "M.D.YYYY h:mm:ss" or
// "M/D/YYYY h:mm:ss" with one- or two-digit components. Anything else goes
// through the generic layout list.
var explicitDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})\.(\d{4})\s+(\d{1,2}):(\d{1,2}):(\d{1,2})$`),
	regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})\s+(\d{1,2}):(\d{1,2}):(\d{1,2})$`),
}

var fallbackLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"1/2/2006 15:04",
	"1/2/2006",
}

// ParseDate parses a raw date cell. The boolean is false when the value is
// empty or unparsable; such records degrade gracefully (they are excluded
// from bridge matching but stay in the graph).
func ParseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	for _, pattern := range explicitDatePatterns {
		match := pattern.FindStringSubmatch(s)
		if match == nil {
			continue
		}
		month, _ := strconv.Atoi(match[1])
		day, _ := strconv.Atoi(match[2])
		year, _ := strconv.Atoi(match[3])
		hour, _ := strconv.Atoi(match[4])
		minute, _ := strconv.Atoi(match[5])
		second, _ := strconv.Atoi(match[6])
		return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC), true
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
