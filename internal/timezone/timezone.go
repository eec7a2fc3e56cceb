package timezone

import (
	"time"

	"github.com/BruksfildServices01/field-service/internal/httperr"
)

const DefaultTimezone = "Asia/Kuala_Lumpur"

// Clock returns the current time. Use cases take one so tests can pin it.
type Clock func() time.Time

func IsValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

func Location(tz string) *time.Location {
	if IsValid(tz) {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}

	if loc, err := time.LoadLocation(DefaultTimezone); err == nil {
		return loc
	}
	return time.UTC
}

// ClockIn returns a clock reporting the current time in tz.
func ClockIn(tz string) Clock {
	loc := Location(tz)
	return func() time.Time {
		return time.Now().In(loc)
	}
}

// Fixed returns a clock that always reports t.
func Fixed(t time.Time) Clock {
	return func() time.Time { return t }
}

// ParseDate parses a YYYY-MM-DD date at midnight in tz.
func ParseDate(tz, date string) (time.Time, error) {
	d, err := time.ParseInLocation("2006-01-02", date, Location(tz))
	if err != nil {
		return time.Time{}, httperr.ErrBusiness("invalid_date")
	}
	return d, nil
}

// ParseHM validates an HH:mm time of day.
func ParseHM(hm string) error {
	if _, err := time.Parse("15:04", hm); err != nil {
		return httperr.ErrBusiness("invalid_time")
	}
	return nil
}

// CalendarDate parses a YYYY-MM-DD date as stored in date columns: midnight
// UTC, with no zone attached to the day itself.
func CalendarDate(date string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}, httperr.ErrBusiness("invalid_date")
	}
	return d, nil
}

// Today is the calendar date of now, in the form CalendarDate returns.
func Today(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
