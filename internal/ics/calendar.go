// Package ics moves plans in and out of iCalendar files. A plan has no
// dates of its own, so every export is anchored to a concrete weekend.
package ics

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "weekendplan/internal/log"
	"weekendplan/internal/model"
	"weekendplan/internal/timeutil"
)

const productID = "-//weekendplan//Weekend Planner//EN"

// Extension properties carrying fields iCalendar has no slot for.
var (
	propActivityID = ical.ComponentPropertyExtended("WEEKENDPLAN-ACTIVITY")
	propMood       = ical.ComponentPropertyExtended("WEEKENDPLAN-MOOD")
	propIcon       = ical.ComponentPropertyExtended("WEEKENDPLAN-ICON")
	propNotes      = ical.ComponentPropertyExtended("WEEKENDPLAN-NOTES")
	propTheme      = ical.ComponentPropertyExtended("WEEKENDPLAN-THEME")
)

// ExportOptions controls Export.
type ExportOptions struct {
	// Weekend is the Saturday the plan is laid on. Zero means the weekend
	// NextWeekend(Now) picks.
	Weekend time.Time
	// Location interprets the plan's wall-clock times. Defaults to time.Local.
	Location *time.Location
	// Now stamps DTSTAMP. Defaults to time.Now.
	Now func() time.Time
}

// Export renders plan as an iCalendar document with one VEVENT per
// scheduled activity.
func Export(plan model.WeekendPlan, opts ExportOptions) ([]byte, error) {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	now := opts.Now()

	saturday := opts.Weekend
	if saturday.IsZero() {
		var err error
		if saturday, err = NextWeekend(now, opts.Location); err != nil {
			return nil, err
		}
	}
	if saturday.In(opts.Location).Weekday() != time.Saturday {
		return nil, fmt.Errorf("ics: anchor %s is not a Saturday", saturday.Format("2006-01-02"))
	}
	s := saturday.In(opts.Location)
	saturday = time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, opts.Location)

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	cal.SetName(plan.Name)
	cal.SetXWRCalName(plan.Name)
	cal.SetXWRTimezone(opts.Location.String())

	for _, day := range model.Days {
		date := saturday
		if day == model.Sunday {
			date = saturday.AddDate(0, 0, 1)
		}
		for i, a := range plan.Activities(day) {
			mins, err := timeutil.TimeToMinutes(a.StartTime)
			if err != nil {
				return nil, fmt.Errorf("ics: %s %s: %w", day, a.ID, err)
			}
			start := time.Date(date.Year(), date.Month(), date.Day(), mins/60, mins%60, 0, 0, opts.Location)
			end := start.Add(time.Duration(a.Duration) * time.Minute)

			ev := cal.AddEvent(fmt.Sprintf("%s-%s-%d@weekendplan", plan.ID, day, i))
			ev.SetDtStampTime(now)
			if !plan.CreatedAt.IsZero() {
				ev.SetCreatedTime(plan.CreatedAt)
			}
			if !plan.UpdatedAt.IsZero() {
				ev.SetModifiedAt(plan.UpdatedAt)
			}
			ev.SetStartAt(start)
			ev.SetEndAt(end)
			ev.SetSummary(a.Name)
			if a.Description != "" {
				ev.SetDescription(a.Description)
			}
			if a.Category != "" {
				ev.AddCategory(string(a.Category))
			}
			ev.SetProperty(propActivityID, a.ID)
			ev.SetProperty(propTheme, string(plan.Theme))
			if a.Mood != "" {
				ev.SetProperty(propMood, string(a.Mood))
			}
			if a.Icon != "" {
				ev.SetProperty(propIcon, a.Icon)
			}
			if a.Notes != "" {
				ev.SetProperty(propNotes, a.Notes)
			}
		}
	}

	appLog.Debug("ics: exported plan", "plan_id", plan.ID, "weekend", saturday.Format("2006-01-02"), "events", plan.ActivityCount())
	return []byte(cal.Serialize()), nil
}
