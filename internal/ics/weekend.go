package ics

import (
	"errors"
	"time"

	"github.com/teambition/rrule-go"
)

// maxWeekends caps UpcomingWeekends.
const maxWeekends = 52

// UpcomingWeekends returns the Saturday midnights of the next n weekends in
// loc. When from already falls on a weekend, that weekend comes first.
func UpcomingWeekends(from time.Time, n int, loc *time.Location) ([]time.Time, error) {
	if n <= 0 {
		return nil, errors.New("ics: weekend count must be positive")
	}
	if n > maxWeekends {
		n = maxWeekends
	}
	if loc == nil {
		loc = time.Local
	}

	local := from.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	if start.Weekday() == time.Sunday {
		start = start.AddDate(0, 0, -1)
	}

	r, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Dtstart:   start,
		Byweekday: []rrule.Weekday{rrule.SA},
		Count:     n,
	})
	if err != nil {
		return nil, err
	}
	return r.All(), nil
}

// NextWeekend is the first entry of UpcomingWeekends.
func NextWeekend(from time.Time, loc *time.Location) (time.Time, error) {
	ws, err := UpcomingWeekends(from, 1, loc)
	if err != nil {
		return time.Time{}, err
	}
	return ws[0], nil
}

// dayOffset is the number of days from Saturday to day.
func dayOffset(day time.Weekday) (int, bool) {
	switch day {
	case time.Saturday:
		return 0, true
	case time.Sunday:
		return 1, true
	default:
		return 0, false
	}
}
