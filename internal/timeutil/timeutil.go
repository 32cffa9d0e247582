// Package timeutil converts between "HH:MM" clock strings and minute offsets
// from midnight.
package timeutil

import (
	"errors"
	"fmt"
)

// MinutesPerDay is 24 hours * 60 minutes.
const MinutesPerDay = 1440

// ErrInvalidTimeFormat is returned for anything that is not a 24-hour
// "HH:MM" string with both fields zero-padded.
var ErrInvalidTimeFormat = errors.New("invalid time format")

// TimeToMinutes parses "HH:MM" into minutes since midnight, in [0, 1440).
func TimeToMinutes(t string) (int, error) {
	if len(t) != 5 || t[2] != ':' {
		return 0, fmt.Errorf("timeutil: %q: %w", t, ErrInvalidTimeFormat)
	}
	h, okH := twoDigits(t[0], t[1])
	m, okM := twoDigits(t[3], t[4])
	if !okH || !okM || h > 23 || m > 59 {
		return 0, fmt.Errorf("timeutil: %q: %w", t, ErrInvalidTimeFormat)
	}
	return h*60 + m, nil
}

// MinutesToTime formats m as "HH:MM" after normalising it into a single day,
// so 1500 becomes "01:00" and -30 becomes "23:30".
func MinutesToTime(m int) string {
	m %= MinutesPerDay
	if m < 0 {
		m += MinutesPerDay
	}
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// CalculateEndTime adds duration minutes to start. Results past midnight wrap
// silently, so the end may sort before the start.
func CalculateEndTime(start string, duration int) (string, error) {
	s, err := TimeToMinutes(start)
	if err != nil {
		return "", err
	}
	return MinutesToTime(s + duration), nil
}

func twoDigits(a, b byte) (int, bool) {
	if a < '0' || a > '9' || b < '0' || b > '9' {
		return 0, false
	}
	return int(a-'0')*10 + int(b-'0'), true
}
