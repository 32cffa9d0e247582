// Package schedule applies placement operations to a WeekendPlan while
// keeping every day list sorted by start time and free of overlaps.
package schedule

import (
	"sort"
	"time"

	"weekendplan/internal/conflict"
	"weekendplan/internal/model"
	"weekendplan/internal/timeutil"
)

// AddResult tells the caller where an activity ended up.
type AddResult struct {
	Success        bool   `json:"success"`
	Rescheduled    bool   `json:"rescheduled"`
	FinalStartTime string `json:"finalStartTime,omitempty"`
	// Overlaps is set when the day was too full to find a free slot and the
	// activity was clamped to the end of the day on top of another one.
	Overlaps bool `json:"overlaps,omitempty"`
}

// Engine mutates plans in place. Operations on a nil plan, an unknown day
// or a missing activity are no-ops; only malformed time strings fail.
type Engine struct {
	// Now stamps UpdatedAt. Defaults to time.Now.
	Now func() time.Time
}

// NewEngine returns an Engine using the wall clock.
func NewEngine() *Engine {
	return &Engine{Now: time.Now}
}

func (e *Engine) now() time.Time {
	if e == nil || e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

// AddActivity places activity on day at preferredStart, or at the next free
// slot after it when preferredStart is taken.
func (e *Engine) AddActivity(plan *model.WeekendPlan, activity model.Activity, day model.Day, preferredStart string) (AddResult, error) {
	if plan == nil || !day.Valid() {
		return AddResult{}, nil
	}

	list := plan.Activities(day)
	p, err := conflict.Resolve(list, preferredStart, activity.Duration, "")
	if err != nil {
		return AddResult{}, err
	}
	end, err := timeutil.CalculateEndTime(p.Start, activity.Duration)
	if err != nil {
		return AddResult{}, err
	}

	entry := model.ScheduledActivity{
		Activity:  activity,
		Day:       day,
		StartTime: p.Start,
		EndTime:   end,
	}
	next := append(append(make([]model.ScheduledActivity, 0, len(list)+1), list...), entry)
	sortByStart(next)
	plan.SetActivities(day, next)
	plan.UpdatedAt = e.now()

	return AddResult{
		Success:        true,
		Rescheduled:    p.Rescheduled,
		FinalStartTime: p.Start,
		Overlaps:       p.Overlaps,
	}, nil
}

// RemoveActivity drops every entry of day whose activity ID is activityID.
func (e *Engine) RemoveActivity(plan *model.WeekendPlan, activityID string, day model.Day) {
	if plan == nil || !day.Valid() {
		return
	}
	list := plan.Activities(day)
	next := make([]model.ScheduledActivity, 0, len(list))
	for _, a := range list {
		if a.ID != activityID {
			next = append(next, a)
		}
	}
	if len(next) == len(list) {
		return
	}
	plan.SetActivities(day, next)
	plan.UpdatedAt = e.now()
}

// UpdateActivityTime moves an activity within its day. The activity is left
// out of its own conflict check.
func (e *Engine) UpdateActivityTime(plan *model.WeekendPlan, activityID string, day model.Day, newStart string) error {
	if plan == nil || !day.Valid() {
		return nil
	}
	list := plan.Activities(day)
	idx := indexOf(list, activityID)
	if idx < 0 {
		return nil
	}

	target := list[idx]
	p, err := conflict.Resolve(list, newStart, target.Duration, activityID)
	if err != nil {
		return err
	}
	end, err := timeutil.CalculateEndTime(p.Start, target.Duration)
	if err != nil {
		return err
	}

	next := cloneList(list)
	next[idx].StartTime = p.Start
	next[idx].EndTime = end
	sortByStart(next)
	plan.SetActivities(day, next)
	plan.UpdatedAt = e.now()
	return nil
}

// ReorderActivities moves the entry at oldIndex to newIndex, sorts the day by
// start time and then compacts it: the first entry keeps its start and every
// following entry starts when the previous one ends.
func (e *Engine) ReorderActivities(plan *model.WeekendPlan, day model.Day, oldIndex, newIndex int) error {
	if plan == nil || !day.Valid() {
		return nil
	}
	list := plan.Activities(day)
	if oldIndex < 0 || oldIndex >= len(list) || newIndex < 0 || newIndex >= len(list) {
		return nil
	}

	next := cloneList(list)
	moved := next[oldIndex]
	next = append(next[:oldIndex], next[oldIndex+1:]...)
	next = append(next[:newIndex], append([]model.ScheduledActivity{moved}, next[newIndex:]...)...)
	sortByStart(next)

	for i := 1; i < len(next); i++ {
		start := next[i-1].EndTime
		end, err := timeutil.CalculateEndTime(start, next[i].Duration)
		if err != nil {
			return err
		}
		next[i].StartTime = start
		next[i].EndTime = end
	}

	plan.SetActivities(day, next)
	plan.UpdatedAt = e.now()
	return nil
}

// MoveActivityBetweenDays takes an activity off fromDay and places it on
// toDay at newStart, or the next free slot after it. fromDay is not
// compacted.
func (e *Engine) MoveActivityBetweenDays(plan *model.WeekendPlan, activityID string, fromDay, toDay model.Day, newStart string) error {
	if plan == nil || !fromDay.Valid() || !toDay.Valid() {
		return nil
	}
	fromList := plan.Activities(fromDay)
	idx := indexOf(fromList, activityID)
	if idx < 0 {
		return nil
	}
	moving := fromList[idx]

	remaining := make([]model.ScheduledActivity, 0, len(fromList))
	remaining = append(remaining, fromList[:idx]...)
	remaining = append(remaining, fromList[idx+1:]...)

	// Resolve against the target day as it will look once the activity has
	// left its source day, which matters when fromDay == toDay.
	toList := plan.Activities(toDay)
	if fromDay == toDay {
		toList = remaining
	}
	p, err := conflict.Resolve(toList, newStart, moving.Duration, "")
	if err != nil {
		return err
	}
	end, err := timeutil.CalculateEndTime(p.Start, moving.Duration)
	if err != nil {
		return err
	}

	moving.Day = toDay
	moving.StartTime = p.Start
	moving.EndTime = end

	next := append(cloneList(toList), moving)
	sortByStart(next)

	if fromDay != toDay {
		plan.SetActivities(fromDay, remaining)
	}
	plan.SetActivities(toDay, next)
	plan.UpdatedAt = e.now()
	return nil
}

// SeedActivities places activities back-to-back on day starting at
// firstStart, each one through AddActivity.
func (e *Engine) SeedActivities(plan *model.WeekendPlan, day model.Day, activities []model.Activity, firstStart string) error {
	start := firstStart
	for _, a := range activities {
		res, err := e.AddActivity(plan, a, day, start)
		if err != nil {
			return err
		}
		if !res.Success {
			return nil
		}
		start, err = timeutil.CalculateEndTime(res.FinalStartTime, a.Duration)
		if err != nil {
			return err
		}
	}
	return nil
}

func indexOf(list []model.ScheduledActivity, id string) int {
	for i, a := range list {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func cloneList(list []model.ScheduledActivity) []model.ScheduledActivity {
	out := make([]model.ScheduledActivity, len(list))
	copy(out, list)
	return out
}

// sortByStart orders a day by start minute. Entries with the same start keep
// their relative order; unparsable starts (only possible in imported data)
// sink to the end.
func sortByStart(list []model.ScheduledActivity) {
	sort.SliceStable(list, func(i, j int) bool {
		return startKey(list[i]) < startKey(list[j])
	})
}

func startKey(a model.ScheduledActivity) int {
	m, err := timeutil.TimeToMinutes(a.StartTime)
	if err != nil {
		return timeutil.MinutesPerDay
	}
	return m
}

// Normalize repairs a plan that came from outside the engine (import,
// share link, calendar file): every entry gets its Day set from the list it
// is in, its EndTime recomputed from StartTime and Duration, and each day is
// sorted. Overlaps are kept as they are. A malformed start time is an error.
func Normalize(plan *model.WeekendPlan) error {
	if plan == nil {
		return nil
	}
	for _, day := range model.Days {
		list := cloneList(plan.Activities(day))
		for i := range list {
			end, err := timeutil.CalculateEndTime(list[i].StartTime, list[i].Duration)
			if err != nil {
				return err
			}
			list[i].Day = day
			list[i].EndTime = end
		}
		sortByStart(list)
		plan.SetActivities(day, list)
	}
	return nil
}
