package domain

import (
	"strings"
	"time"
)

// DateLayout is the calendar date format accepted alongside RFC3339
const DateLayout = "2006-01-02"

// ParseDate accepts an RFC3339 timestamp or a plain YYYY-MM-DD date (UTC midnight)
func ParseDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	t, err := time.Parse(DateLayout, v)
	if err != nil {
		return time.Time{}, InvalidRequestf("Invalid date %q, expected YYYY-MM-DD or RFC3339", v)
	}
	return t, nil
}
