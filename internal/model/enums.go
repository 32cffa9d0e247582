package model

import "fmt"

// Category groups activities. The predefined values are listed below;
// custom activities may introduce their own.
type Category string

const (
	CategoryOutdoor       Category = "outdoor"
	CategoryIndoor        Category = "indoor"
	CategorySocial        Category = "social"
	CategoryWellness      Category = "wellness"
	CategoryFood          Category = "food"
	CategoryEntertainment Category = "entertainment"
)

// Categories lists the predefined categories.
var Categories = []Category{
	CategoryOutdoor, CategoryIndoor, CategorySocial,
	CategoryWellness, CategoryFood, CategoryEntertainment,
}

// Known reports whether c is one of the predefined categories.
func (c Category) Known() bool {
	switch c {
	case CategoryOutdoor, CategoryIndoor, CategorySocial,
		CategoryWellness, CategoryFood, CategoryEntertainment:
		return true
	default:
		return false
	}
}

// Label returns the display name of the category.
func (c Category) Label() string {
	switch c {
	case CategoryOutdoor:
		return "Outdoor"
	case CategoryIndoor:
		return "Indoor"
	case CategorySocial:
		return "Social"
	case CategoryWellness:
		return "Wellness"
	case CategoryFood:
		return "Food"
	case CategoryEntertainment:
		return "Entertainment"
	default:
		return "Custom"
	}
}

// Color is the badge color used by the printable plan view.
func (c Category) Color() string {
	switch c {
	case CategoryOutdoor:
		return "#16a34a"
	case CategoryIndoor:
		return "#2563eb"
	case CategorySocial:
		return "#db2777"
	case CategoryWellness:
		return "#9333ea"
	case CategoryFood:
		return "#ea580c"
	case CategoryEntertainment:
		return "#ca8a04"
	default:
		return "#6b7280"
	}
}

// Mood is the feel of an activity template.
type Mood string

const (
	MoodEnergetic   Mood = "energetic"
	MoodRelaxed     Mood = "relaxed"
	MoodHappy       Mood = "happy"
	MoodAdventurous Mood = "adventurous"
)

// Known reports whether m is one of the predefined activity moods.
func (m Mood) Known() bool {
	switch m {
	case MoodEnergetic, MoodRelaxed, MoodHappy, MoodAdventurous:
		return true
	default:
		return false
	}
}

// Emoji returns the glyph shown next to the mood.
func (m Mood) Emoji() string {
	switch m {
	case MoodEnergetic:
		return "⚡"
	case MoodRelaxed:
		return "😌"
	case MoodHappy:
		return "😊"
	case MoodAdventurous:
		return "🧭"
	case "":
		return ""
	default:
		return "✨"
	}
}

// UserMood is how the user feels, recorded in the mood journal.
type UserMood string

const (
	UserMoodExcited   UserMood = "excited"
	UserMoodNeutral   UserMood = "neutral"
	UserMoodStressed  UserMood = "stressed"
	UserMoodTired     UserMood = "tired"
	UserMoodMotivated UserMood = "motivated"
)

// UserMoods lists the journal moods in display order.
var UserMoods = []UserMood{
	UserMoodExcited, UserMoodMotivated, UserMoodNeutral, UserMoodTired, UserMoodStressed,
}

// Valid reports whether m is a known journal mood.
func (m UserMood) Valid() bool {
	switch m {
	case UserMoodExcited, UserMoodNeutral, UserMoodStressed, UserMoodTired, UserMoodMotivated:
		return true
	default:
		return false
	}
}

// Label returns the display name.
func (m UserMood) Label() string {
	switch m {
	case UserMoodExcited:
		return "Excited"
	case UserMoodNeutral:
		return "Neutral"
	case UserMoodStressed:
		return "Stressed"
	case UserMoodTired:
		return "Tired"
	case UserMoodMotivated:
		return "Motivated"
	default:
		return "Unknown"
	}
}

// Emoji returns the glyph shown in the mood journal.
func (m UserMood) Emoji() string {
	switch m {
	case UserMoodExcited:
		return "😄"
	case UserMoodNeutral:
		return "😐"
	case UserMoodStressed:
		return "😰"
	case UserMoodTired:
		return "😴"
	case UserMoodMotivated:
		return "💪"
	default:
		return "❔"
	}
}

// ParseUserMood converts user input into a UserMood.
func ParseUserMood(s string) (UserMood, error) {
	m := UserMood(s)
	if !m.Valid() {
		return "", fmt.Errorf("model: unknown mood %q", s)
	}
	return m, nil
}

// Theme is the preset a plan was created from.
type Theme string

const (
	ThemeLazy        Theme = "lazy"
	ThemeAdventurous Theme = "adventurous"
	ThemeFamily      Theme = "family"
	ThemeProductive  Theme = "productive"
	ThemeSocial      Theme = "social"
)

// Valid reports whether t is a known theme.
func (t Theme) Valid() bool {
	switch t {
	case ThemeLazy, ThemeAdventurous, ThemeFamily, ThemeProductive, ThemeSocial:
		return true
	default:
		return false
	}
}

// ParseTheme converts user input into a Theme.
func ParseTheme(s string) (Theme, error) {
	t := Theme(s)
	if !t.Valid() {
		return "", fmt.Errorf("model: unknown theme %q", s)
	}
	return t, nil
}
