package ics

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"sort"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "weekendplan/internal/log"
	"weekendplan/internal/model"
	"weekendplan/internal/timeutil"
)

// ErrNoWeekendEvents is returned when a calendar has nothing that falls on
// a Saturday or Sunday.
var ErrNoWeekendEvents = errors.New("ics: no timed weekend events")

// ImportResult is a plan skeleton built from a calendar plus what was left
// out of it.
type ImportResult struct {
	Plan model.WeekendPlan
	// Weekend is the Saturday the events were taken from.
	Weekend time.Time
	// Skipped counts events that were all-day, malformed, off the weekend or
	// on a later weekend.
	Skipped int
}

// Import reads an iCalendar body and turns the timed events of its earliest
// weekend into a plan skeleton. Times are read in loc. The plan has no id
// or timestamps; the caller assigns them.
func Import(body []byte, loc *time.Location) (ImportResult, error) {
	var res ImportResult
	if len(body) == 0 {
		return res, errors.New("ics: empty body")
	}
	if loc == nil {
		loc = time.Local
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		appLog.Error("ics: parse failed", err)
		return res, err
	}

	type parsed struct {
		saturday time.Time
		day      model.Day
		start    time.Time
		entry    model.ScheduledActivity
	}
	var events []parsed
	theme := model.Theme("")

	for _, ve := range cal.Events() {
		entry, start, ok := parseVEvent(ve, loc)
		if !ok {
			res.Skipped++
			continue
		}
		off, weekend := dayOffset(start.Weekday())
		if !weekend {
			res.Skipped++
			continue
		}
		day := model.Saturday
		if off == 1 {
			day = model.Sunday
		}
		sat := time.Date(start.Year(), start.Month(), start.Day()-off, 0, 0, 0, 0, loc)
		entry.Day = day
		events = append(events, parsed{saturday: sat, day: day, start: start, entry: entry})

		if p := ve.GetProperty(propTheme); p != nil && theme == "" {
			if t, err := model.ParseTheme(p.Value); err == nil {
				theme = t
			}
		}
	}
	if len(events) == 0 {
		return res, ErrNoWeekendEvents
	}

	sort.SliceStable(events, func(i, j int) bool { return events[i].start.Before(events[j].start) })
	res.Weekend = events[0].saturday

	plan := model.WeekendPlan{
		Name:     calendarName(cal),
		Theme:    theme,
		Saturday: []model.ScheduledActivity{},
		Sunday:   []model.ScheduledActivity{},
	}
	if plan.Theme == "" {
		plan.Theme = model.ThemeLazy
	}
	for _, ev := range events {
		if !ev.saturday.Equal(res.Weekend) {
			res.Skipped++
			continue
		}
		plan.SetActivities(ev.day, append(plan.Activities(ev.day), ev.entry))
	}
	res.Plan = plan

	appLog.Info("ics: import completed", "weekend", res.Weekend.Format("2006-01-02"),
		"activities", plan.ActivityCount(), "skipped", res.Skipped)
	return res, nil
}

func parseVEvent(ve *ical.VEvent, loc *time.Location) (model.ScheduledActivity, time.Time, bool) {
	var out model.ScheduledActivity

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil || !strings.Contains(dtStart.Value, "T") {
		// All-day events have no place on an hourly schedule.
		return out, time.Time{}, false
	}
	start, err := ve.GetStartAt()
	if err != nil {
		appLog.Warn("ics: bad DTSTART", "uid", ve.Id(), "err", err)
		return out, time.Time{}, false
	}
	end, err := ve.GetEndAt()
	if err != nil {
		end = start.Add(time.Hour)
	}
	minutes := int(end.Sub(start) / time.Minute)
	if minutes <= 0 {
		return out, time.Time{}, false
	}
	start = start.In(loc)

	out.Activity = model.Activity{
		ID:       propValue(ve, propActivityID),
		Name:     propValue(ve, ical.ComponentPropertySummary),
		Duration: minutes,
		Icon:     propValue(ve, propIcon),
		Mood:     model.Mood(propValue(ve, propMood)),
	}
	out.Description = propValue(ve, ical.ComponentPropertyDescription)
	out.Notes = propValue(ve, propNotes)
	if out.ID == "" {
		sum := sha1.Sum([]byte(ve.Id() + start.Format(time.RFC3339)))
		out.ID = "ics-" + hex.EncodeToString(sum[:6])
	}
	if out.Name == "" {
		out.Name = "Untitled"
	}
	if out.Icon == "" {
		out.Icon = "📅"
	}
	if cat := firstCategory(ve); cat != "" {
		out.Category = model.Category(cat)
	}
	out.IsCustom = !out.Category.Known()

	out.StartTime = timeutil.MinutesToTime(start.Hour()*60 + start.Minute())
	return out, start, true
}

func propValue(ve *ical.VEvent, p ical.ComponentProperty) string {
	if prop := ve.GetProperty(p); prop != nil {
		return prop.Value
	}
	return ""
}

func firstCategory(ve *ical.VEvent) string {
	v := propValue(ve, ical.ComponentPropertyCategories)
	if i := strings.IndexByte(v, ','); i >= 0 {
		v = v[:i]
	}
	return strings.ToLower(strings.TrimSpace(v))
}

func calendarName(cal *ical.Calendar) string {
	for _, token := range []ical.Property{ical.PropertyXWRCalName, ical.PropertyName} {
		for _, p := range cal.CalendarProperties {
			if p.IANAToken == string(token) && p.Value != "" {
				return p.Value
			}
		}
	}
	return ""
}
