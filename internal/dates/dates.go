// Package dates parses the date formats found in extracted claim documents.
package dates

import (
	"strings"
	"time"
)

// Layouts accepted for claim dates, tried in order.
var layouts = []string{"02-01-2006", "2006-01-02", "02/01/2006"}

// Parse parses a claim date string. The second return is false when the
// string is empty or matches no known layout.
func Parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// PolicyEnd extracts the end date from a policy period written as
// "START to END". It returns false when the period has no "to" separator or
// the end date fails to parse.
func PolicyEnd(period string) (time.Time, bool) {
	if !strings.Contains(period, "to") {
		return time.Time{}, false
	}
	parts := strings.Split(period, "to")
	return Parse(parts[len(parts)-1])
}
