// Package conflict detects overlapping activities on a single day and finds
// the next free start time for a new or moved activity.
//
// Intervals are half-open: [start, start+duration). Two activities that only
// touch (one ends at 11:00, the next starts at 11:00) do not conflict.
package conflict

import (
	"sort"

	"weekendplan/internal/model"
	"weekendplan/internal/timeutil"
)

// Placement is the outcome of resolving a proposed start time.
type Placement struct {
	// Start is the final "HH:MM" start time.
	Start string
	// Rescheduled is true when Start differs from the preferred start
	// because the preferred slot was taken.
	Rescheduled bool
	// Overlaps is true when even the final placement still conflicts. This
	// only happens when the search ran past midnight on a packed day and
	// the start was clamped back to the last slot of the day.
	Overlaps bool
}

type interval struct {
	start, end int
}

func (iv interval) overlaps(start, end int) bool {
	return start < iv.end && end > iv.start
}

// intervalsOf converts the day list into minute intervals, skipping excludeID.
// The end of each interval is start+duration, not the wrapped EndTime, so an
// activity running past midnight still blocks the rest of its evening.
func intervalsOf(existing []model.ScheduledActivity, excludeID string) ([]interval, error) {
	out := make([]interval, 0, len(existing))
	for _, a := range existing {
		if excludeID != "" && a.ID == excludeID {
			continue
		}
		s, err := timeutil.TimeToMinutes(a.StartTime)
		if err != nil {
			return nil, err
		}
		out = append(out, interval{start: s, end: s + a.Duration})
	}
	return out, nil
}

// HasConflict reports whether [start, start+duration) overlaps any activity
// in existing other than the one whose ID is excludeID.
func HasConflict(existing []model.ScheduledActivity, start string, duration int, excludeID string) (bool, error) {
	s, err := timeutil.TimeToMinutes(start)
	if err != nil {
		return false, err
	}
	ivs, err := intervalsOf(existing, excludeID)
	if err != nil {
		return false, err
	}
	return anyOverlap(ivs, s, s+duration), nil
}

// FindNextAvailableTime pushes preferredStart forward past every activity it
// runs into, walking the day in start-time order once. If the result would
// end after midnight, the start is clamped to max(0, 1440-duration).
//
// Known limitation: the search only moves forward. It never looks for an
// earlier gap, and the clamped result may still overlap on a full day.
func FindNextAvailableTime(existing []model.ScheduledActivity, preferredStart string, duration int, excludeID string) (string, error) {
	start, err := timeutil.TimeToMinutes(preferredStart)
	if err != nil {
		return "", err
	}
	ivs, err := intervalsOf(existing, excludeID)
	if err != nil {
		return "", err
	}
	return timeutil.MinutesToTime(nextStart(ivs, start, duration)), nil
}

// Resolve keeps preferredStart when it is free and otherwise moves it with
// FindNextAvailableTime, reporting whether the final slot is still taken.
func Resolve(existing []model.ScheduledActivity, preferredStart string, duration int, excludeID string) (Placement, error) {
	start, err := timeutil.TimeToMinutes(preferredStart)
	if err != nil {
		return Placement{}, err
	}
	ivs, err := intervalsOf(existing, excludeID)
	if err != nil {
		return Placement{}, err
	}

	if !anyOverlap(ivs, start, start+duration) {
		return Placement{Start: timeutil.MinutesToTime(start)}, nil
	}

	next := nextStart(ivs, start, duration)
	return Placement{
		Start:       timeutil.MinutesToTime(next),
		Rescheduled: true,
		Overlaps:    anyOverlap(ivs, next, next+duration),
	}, nil
}

func anyOverlap(ivs []interval, start, end int) bool {
	for _, iv := range ivs {
		if iv.overlaps(start, end) {
			return true
		}
	}
	return false
}

func nextStart(ivs []interval, start, duration int) int {
	sorted := append([]interval(nil), ivs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].start < sorted[j].start })

	for _, iv := range sorted {
		if iv.overlaps(start, start+duration) {
			start = iv.end
		}
	}

	if start+duration > timeutil.MinutesPerDay {
		start = max(0, timeutil.MinutesPerDay-duration)
	}
	return start
}
