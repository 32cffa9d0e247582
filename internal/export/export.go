// Package export renders plans into the formats users take out of the
// planner: JSON records, CSV sheets, plain-text summaries and share links.
package export

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"weekendplan/internal/model"
)

// ThemeNamer resolves a theme id to its display name. *catalog.Catalog
// implements it.
type ThemeNamer interface {
	ThemeName(id model.Theme) string
}

// CSVHeader is the first line of every CSV export.
const CSVHeader = "Day,Activity,Start Time,End Time,Duration,Category,Mood,Notes"

// JSON returns the full plan as indented JSON.
func JSON(plan model.WeekendPlan) ([]byte, error) {
	b, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export: json: %w", err)
	}
	return b, nil
}

// CSV writes one row per scheduled activity, Saturday first. Activity names
// and notes are always quoted.
func CSV(plan model.WeekendPlan) string {
	var sb strings.Builder
	sb.WriteString(CSVHeader)
	for _, day := range model.Days {
		for _, a := range plan.Activities(day) {
			sb.WriteByte('\n')
			fmt.Fprintf(&sb, "%s,%s,%s,%s,%d minutes,%s,%s,%s",
				day.Label(),
				quote(a.Name),
				a.StartTime,
				a.EndTime,
				a.Duration,
				a.Category,
				a.Mood,
				quote(a.Notes),
			)
		}
	}
	return sb.String()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Summary renders a short human readable overview of the plan. themes may
// be nil, in which case the raw theme id is shown.
func Summary(plan model.WeekendPlan, themes ThemeNamer) string {
	themeName := string(plan.Theme)
	if themes != nil {
		themeName = themes.ThemeName(plan.Theme)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Weekend Plan: %s\n", plan.Name)
	fmt.Fprintf(&sb, "Theme: %s\n", themeName)
	fmt.Fprintf(&sb, "Total Activities: %d\n", plan.ActivityCount())
	fmt.Fprintf(&sb, "Total Duration: %s\n", FormatDuration(plan.TotalDuration()))

	for _, day := range model.Days {
		list := append([]model.ScheduledActivity(nil), plan.Activities(day)...)
		sort.SliceStable(list, func(i, j int) bool { return list[i].StartTime < list[j].StartTime })

		fmt.Fprintf(&sb, "\n%s (%d activities):\n", day.Label(), len(list))
		for _, a := range list {
			fmt.Fprintf(&sb, "• %s - %s (%s)\n", a.StartTime, a.Name, FormatDuration(a.Duration))
		}
	}
	return strings.TrimSpace(sb.String())
}

// FormatDuration renders minutes as "45m", "2h" or "2h 30m".
func FormatDuration(minutes int) string {
	h, m := minutes/60, minutes%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh %dm", h, m)
	}
}
