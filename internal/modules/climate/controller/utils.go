package controller

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/asymonsziebart/TempHumidityMonitor/internal/modules/climate/types"
)

const (
	defaultSeriesHours = 24
	maxSeriesHours     = 7 * 24
)

func parseSeriesQuery(r *http.Request) (hours int, err error) {
	s := r.URL.Query().Get("hours")
	if s == "" {
		return defaultSeriesHours, nil
	}
	n, convErr := strconv.Atoi(s)
	if convErr != nil {
		return 0, errors.New("invalid 'hours' (expected integer)")
	}
	if n < 1 {
		return 0, errors.New("'hours' must be >= 1")
	}
	if n > maxSeriesHours {
		return 0, errors.New("'hours' must be <= 168")
	}
	return n, nil
}

// parseDay reads ?day=YYYY-MM-DD as a local date, defaulting to today.
func parseDay(r *http.Request, now time.Time) (time.Time, error) {
	s := r.URL.Query().Get("day")
	if s == "" {
		return now.In(time.Local), nil
	}
	day, err := time.ParseInLocation(types.DayLayout, s, time.Local)
	if err != nil {
		return time.Time{}, errors.New("invalid 'day' (expected YYYY-MM-DD)")
	}
	return day, nil
}
