package util

import (
	"time"

	"github.com/jinzhu/now"
	"github.com/pkg/errors"
)

const DateLayout = "2006-01-02"

// ParseDate parses an ISO YYYY-MM-DD date string.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "invalid date %q, expected YYYY-MM-DD", value)
	}
	return t, nil
}

// DateRangeBounds expands optional ISO date strings into inclusive
// range endpoints. An empty start or end leaves that side open.
func DateRangeBounds(startDate, endDate string) (start, end time.Time, err error) {
	if startDate != "" {
		start, err = ParseDate(startDate)
		if err != nil {
			return
		}
		start = now.New(start).BeginningOfDay()
	}
	if endDate != "" {
		end, err = ParseDate(endDate)
		if err != nil {
			return
		}
		end = now.New(end).EndOfDay()
	}
	if startDate != "" && endDate != "" && end.Before(start) {
		err = errors.Errorf("end_date %s before start_date %s", endDate, startDate)
	}
	return
}

func TimeNowZ() time.Time {
	return time.Now().UTC()
}
