package ics

import (
	"errors"
	"strings"
	"testing"
	"time"

	"weekendplan/internal/model"
)

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Skipf("timezone %s unavailable: %v", name, err)
	}
	return loc
}

func TestUpcomingWeekends(t *testing.T) {
	loc := mustLoad(t, "Europe/Berlin")

	cases := []struct {
		name string
		from time.Time
		want string
	}{
		{"Wednesday", time.Date(2025, 9, 10, 15, 0, 0, 0, loc), "2025-09-13"},
		{"Saturday", time.Date(2025, 9, 13, 23, 59, 0, 0, loc), "2025-09-13"},
		{"Sunday", time.Date(2025, 9, 14, 7, 0, 0, 0, loc), "2025-09-13"},
		{"Monday", time.Date(2025, 9, 15, 0, 0, 0, 0, loc), "2025-09-20"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NextWeekend(tc.from, loc)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if got.Format("2006-01-02") != tc.want || got.Hour() != 0 || got.Weekday() != time.Saturday {
				t.Errorf("Expected %s 00:00 Saturday, got %s", tc.want, got)
			}
		})
	}

	ws, err := UpcomingWeekends(time.Date(2025, 10, 20, 0, 0, 0, 0, loc), 3, loc)
	if err != nil {
		t.Fatal(err)
	}
	if len(ws) != 3 {
		t.Fatalf("Expected 3 weekends, got %d", len(ws))
	}
	// Crosses the end of daylight saving time on 2025-10-26.
	for i, want := range []string{"2025-10-25", "2025-11-01", "2025-11-08"} {
		if ws[i].Format("2006-01-02 15:04") != want+" 00:00" {
			t.Errorf("Expected weekend %d at %s 00:00, got %s", i, want, ws[i])
		}
	}

	if _, err := UpcomingWeekends(time.Now(), 0, loc); err == nil {
		t.Error("Expected error for zero count")
	}
}

func samplePlan() model.WeekendPlan {
	return model.WeekendPlan{
		ID:    "plan-1",
		Name:  "Hike, then rest",
		Theme: model.ThemeAdventurous,
		Saturday: []model.ScheduledActivity{{
			Activity: model.Activity{ID: "hiking", Name: "Hiking", Description: "Trails; snacks", Category: model.CategoryOutdoor, Duration: 180, Icon: "🥾", Mood: model.MoodAdventurous},
			Day:      model.Saturday, StartTime: "08:00", EndTime: "11:00", Notes: "bring water, map",
		}},
		Sunday: []model.ScheduledActivity{{
			Activity: model.Activity{ID: "late-show", Name: "Late show", Category: model.CategoryEntertainment, Duration: 120, Icon: "🎬"},
			Day:      model.Sunday, StartTime: "23:00", EndTime: "01:00",
		}},
	}
}

func TestExport(t *testing.T) {
	loc := mustLoad(t, "Asia/Seoul")
	sat := time.Date(2025, 9, 13, 0, 0, 0, 0, loc)
	now := time.Date(2025, 9, 10, 12, 0, 0, 0, time.UTC)

	body, err := Export(samplePlan(), ExportOptions{Weekend: sat, Location: loc, Now: func() time.Time { return now }})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	out := string(body)
	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"METHOD:PUBLISH",
		"X-WR-CALNAME:Hike\\, then rest",
		// 08:00 in Seoul is 23:00 UTC the day before.
		"DTSTART:20250912T230000Z",
		"DTEND:20250913T020000Z",
		"SUMMARY:Hiking",
		"CATEGORIES:outdoor",
		"X-WEEKENDPLAN-MOOD:adventurous",
		"X-WEEKENDPLAN-ACTIVITY:hiking",
		"UID:plan-1-saturday-0@weekendplan",
		// Sunday 23:00 + 2h ends on Monday.
		"DTSTART:20250914T140000Z",
		"DTEND:20250914T160000Z",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q", want)
		}
	}

	if _, err := Export(samplePlan(), ExportOptions{Weekend: sat.AddDate(0, 0, 1), Location: loc}); err == nil {
		t.Error("Expected error for a non-Saturday anchor")
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	loc := mustLoad(t, "America/New_York")
	sat := time.Date(2025, 11, 1, 0, 0, 0, 0, loc)

	body, err := Export(samplePlan(), ExportOptions{Weekend: sat, Location: loc})
	if err != nil {
		t.Fatal(err)
	}
	res, err := Import(body, loc)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !res.Weekend.Equal(sat) {
		t.Errorf("Expected weekend %s, got %s", sat, res.Weekend)
	}
	p := res.Plan
	if p.Name != "Hike, then rest" || p.Theme != model.ThemeAdventurous {
		t.Errorf("Expected name and theme restored, got %q %s", p.Name, p.Theme)
	}
	if len(p.Saturday) != 1 || len(p.Sunday) != 1 {
		t.Fatalf("Expected one activity per day, got %d/%d", len(p.Saturday), len(p.Sunday))
	}
	h := p.Saturday[0]
	if h.ID != "hiking" || h.StartTime != "08:00" || h.Duration != 180 || h.Category != model.CategoryOutdoor ||
		h.Mood != model.MoodAdventurous || h.Notes != "bring water, map" || h.Description != "Trails; snacks" || h.IsCustom {
		t.Errorf("Expected Saturday activity restored, got %+v", h)
	}
	// Sunday 2025-11-02 is the day daylight saving time ends in New York.
	if s := p.Sunday[0]; s.StartTime != "23:00" || s.Duration != 120 || s.Day != model.Sunday {
		t.Errorf("Expected Sunday activity restored, got %+v", s)
	}
}

const foreignCalendar = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//Example//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:a@example\r\n" +
	"DTSTART:20250913T100000Z\r\n" +
	"DTEND:20250913T113000Z\r\n" +
	"SUMMARY:Pottery class\r\n" +
	"CATEGORIES:Crafts\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:b@example\r\n" +
	"DTSTART;VALUE=DATE:20250914\r\n" +
	"SUMMARY:Birthday\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:c@example\r\n" +
	"DTSTART:20250915T090000Z\r\n" +
	"DTEND:20250915T100000Z\r\n" +
	"SUMMARY:Standup\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:d@example\r\n" +
	"DTSTART:20250920T090000Z\r\n" +
	"DTEND:20250920T100000Z\r\n" +
	"SUMMARY:Next weekend\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestImportForeignCalendar(t *testing.T) {
	res, err := Import([]byte(foreignCalendar), time.UTC)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if res.Skipped != 3 {
		t.Errorf("Expected all-day, weekday and later-weekend events skipped, got %d", res.Skipped)
	}
	if len(res.Plan.Saturday) != 1 || len(res.Plan.Sunday) != 0 {
		t.Fatalf("Expected one Saturday activity, got %+v", res.Plan)
	}
	a := res.Plan.Saturday[0]
	if a.Name != "Pottery class" || a.StartTime != "10:00" || a.Duration != 90 {
		t.Errorf("Unexpected activity %+v", a)
	}
	if !strings.HasPrefix(a.ID, "ics-") || !a.IsCustom || a.Category != "crafts" {
		t.Errorf("Expected generated id and custom category, got %+v", a.Activity)
	}
	if res.Plan.Theme != model.ThemeLazy {
		t.Errorf("Expected default theme, got %s", res.Plan.Theme)
	}
}

func TestImportErrors(t *testing.T) {
	if _, err := Import(nil, time.UTC); err == nil {
		t.Error("Expected error for empty body")
	}
	weekdayOnly := "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nBEGIN:VEVENT\r\nUID:x\r\nDTSTART:20250915T090000Z\r\nDTEND:20250915T100000Z\r\nEND:VEVENT\r\nEND:VCALENDAR\r\n"
	if _, err := Import([]byte(weekdayOnly), time.UTC); !errors.Is(err, ErrNoWeekendEvents) {
		t.Errorf("Expected ErrNoWeekendEvents, got %v", err)
	}
}
