package model

import (
	"fmt"
	"strings"
	"time"
)

// Day identifies one of the two days of a weekend plan.
type Day string

const (
	Saturday Day = "saturday"
	Sunday   Day = "sunday"
)

// Days lists the plan days in display order.
var Days = []Day{Saturday, Sunday}

// Valid reports whether d is a known plan day.
func (d Day) Valid() bool {
	switch d {
	case Saturday, Sunday:
		return true
	default:
		return false
	}
}

// Label is the capitalised display name used by exporters.
func (d Day) Label() string {
	switch d {
	case Saturday:
		return "Saturday"
	case Sunday:
		return "Sunday"
	default:
		return string(d)
	}
}

// ParseDay converts user input into a Day.
func ParseDay(s string) (Day, error) {
	d := Day(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("model: unknown day %q", s)
	}
	return d, nil
}

// Activity is a catalog template: something that can be placed on a day.
type Activity struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Category    Category `json:"category" yaml:"category"`
	// Duration in minutes; always positive for catalog entries.
	Duration int    `json:"duration" yaml:"duration"`
	Icon     string `json:"icon" yaml:"icon"`
	Mood     Mood   `json:"mood,omitempty" yaml:"mood,omitempty"`
	IsCustom bool   `json:"isCustom,omitempty" yaml:"isCustom,omitempty"`
}

// Validate checks the fields every activity must carry. Custom activities
// may use categories and moods outside the predefined sets.
func (a Activity) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("model: activity id is empty")
	}
	if a.Name == "" {
		return fmt.Errorf("model: activity %q has no name", a.ID)
	}
	if a.Duration <= 0 {
		return fmt.Errorf("model: activity %q has non-positive duration %d", a.ID, a.Duration)
	}
	if !a.IsCustom {
		if !a.Category.Known() {
			return fmt.Errorf("model: activity %q has unknown category %q", a.ID, a.Category)
		}
		if a.Mood != "" && !a.Mood.Known() {
			return fmt.Errorf("model: activity %q has unknown mood %q", a.ID, a.Mood)
		}
	}
	return nil
}

// ScheduledActivity is an Activity placed on a day with concrete times.
// EndTime always equals StartTime + Duration, wrapping past midnight.
type ScheduledActivity struct {
	Activity  `yaml:",inline"`
	Day       Day      `json:"day" yaml:"day"`
	StartTime string   `json:"startTime" yaml:"startTime"`
	EndTime   string   `json:"endTime" yaml:"endTime"`
	UserMood  UserMood `json:"userMood,omitempty" yaml:"userMood,omitempty"`
	Notes     string   `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// ThemeColors overrides the palette of a plan's theme.
type ThemeColors struct {
	Primary   string `json:"primary" yaml:"primary"`
	Secondary string `json:"secondary" yaml:"secondary"`
	Accent    string `json:"accent" yaml:"accent"`
}

// MoodEntry is one line of a plan's mood journal.
type MoodEntry struct {
	ID         string    `json:"id" yaml:"id"`
	Timestamp  time.Time `json:"timestamp" yaml:"timestamp"`
	Mood       UserMood  `json:"mood" yaml:"mood"`
	Notes      string    `json:"notes,omitempty" yaml:"notes,omitempty"`
	ActivityID string    `json:"activityId,omitempty" yaml:"activityId,omitempty"`
}

// WeekendPlan is the aggregate root: two ordered day lists plus metadata.
type WeekendPlan struct {
	ID                string              `json:"id" yaml:"id"`
	Name              string              `json:"name" yaml:"name"`
	Theme             Theme               `json:"theme" yaml:"theme"`
	Saturday          []ScheduledActivity `json:"saturday" yaml:"saturday"`
	Sunday            []ScheduledActivity `json:"sunday" yaml:"sunday"`
	CreatedAt         time.Time           `json:"createdAt" yaml:"createdAt"`
	UpdatedAt         time.Time           `json:"updatedAt" yaml:"updatedAt"`
	OverallMood       UserMood            `json:"overallMood,omitempty" yaml:"overallMood,omitempty"`
	MoodJournal       []MoodEntry         `json:"moodJournal,omitempty" yaml:"moodJournal,omitempty"`
	CustomThemeColors *ThemeColors        `json:"customThemeColors,omitempty" yaml:"customThemeColors,omitempty"`
}

// Activities returns the list for day, or nil for an unknown day.
// The returned slice aliases the plan.
func (p *WeekendPlan) Activities(day Day) []ScheduledActivity {
	switch day {
	case Saturday:
		return p.Saturday
	case Sunday:
		return p.Sunday
	default:
		return nil
	}
}

// SetActivities replaces the list for day. Unknown days are ignored.
func (p *WeekendPlan) SetActivities(day Day, list []ScheduledActivity) {
	switch day {
	case Saturday:
		p.Saturday = list
	case Sunday:
		p.Sunday = list
	}
}

// ActivityCount is the number of scheduled entries across both days.
func (p *WeekendPlan) ActivityCount() int {
	return len(p.Saturday) + len(p.Sunday)
}

// TotalDuration sums the durations of every scheduled entry, in minutes.
func (p *WeekendPlan) TotalDuration() int {
	total := 0
	for _, day := range Days {
		for _, a := range p.Activities(day) {
			total += a.Duration
		}
	}
	return total
}

// Clone returns a deep copy; mutating the copy never touches p.
func (p WeekendPlan) Clone() WeekendPlan {
	out := p
	out.Saturday = cloneActivities(p.Saturday)
	out.Sunday = cloneActivities(p.Sunday)
	if p.MoodJournal != nil {
		out.MoodJournal = append([]MoodEntry(nil), p.MoodJournal...)
	}
	if p.CustomThemeColors != nil {
		c := *p.CustomThemeColors
		out.CustomThemeColors = &c
	}
	return out
}

func cloneActivities(in []ScheduledActivity) []ScheduledActivity {
	out := make([]ScheduledActivity, len(in))
	copy(out, in)
	return out
}
