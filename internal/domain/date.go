package domain

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

const DefaultLatestLimit = 100

// FarFuture stands in for an omitted upper date bound.
var FarFuture = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)

// ParseDate parses a YYYY-MM-DD calendar date in UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not a YYYY-MM-DD date", ErrInvalidDate, s)
	}
	return t, nil
}
