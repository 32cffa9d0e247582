package catalog

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"weekendplan/internal/model"
)

//go:embed data/catalog.yaml
var defaultCatalog []byte

// Theme is a preset a plan can be created from: a palette and a starter set
// of activities.
type Theme struct {
	ID          model.Theme       `yaml:"id" json:"id"`
	Name        string            `yaml:"name" json:"name"`
	Description string            `yaml:"description" json:"description"`
	Icon        string            `yaml:"icon" json:"icon"`
	Vibe        string            `yaml:"vibe" json:"vibe"`
	Colors      model.ThemeColors `yaml:"colors" json:"colors"`
	// Suggested holds activity IDs from the same catalog.
	Suggested []string `yaml:"suggested" json:"suggestedActivities"`
}

// Catalog is the read-only list of predefined activities and themes.
type Catalog struct {
	themes     []Theme
	activities []model.Activity
	byID       map[string]int
}

type catalogFile struct {
	Themes     []Theme          `yaml:"themes"`
	Activities []model.Activity `yaml:"activities"`
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Parse decodes a YAML catalog and checks it for consistency:
//   - every activity passes model.Activity.Validate and has a unique id
//   - every theme id is a known model.Theme
//   - every suggested activity exists
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	if len(f.Activities) == 0 {
		return nil, errors.New("catalog: no activities")
	}

	c := &Catalog{
		themes:     f.Themes,
		activities: f.Activities,
		byID:       make(map[string]int, len(f.Activities)),
	}
	for i, a := range f.Activities {
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
		if _, dup := c.byID[a.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate activity id %q", a.ID)
		}
		c.byID[a.ID] = i
	}
	for _, t := range f.Themes {
		if !t.ID.Valid() {
			return nil, fmt.Errorf("catalog: unknown theme id %q", t.ID)
		}
		for _, id := range t.Suggested {
			if _, ok := c.byID[id]; !ok {
				return nil, fmt.Errorf("catalog: theme %q suggests unknown activity %q", t.ID, id)
			}
		}
	}
	return c, nil
}

// Activities returns a copy of the predefined activities in catalog order.
func (c *Catalog) Activities() []model.Activity {
	return append([]model.Activity(nil), c.activities...)
}

// Activity looks up a predefined activity by id.
func (c *Catalog) Activity(id string) (model.Activity, bool) {
	i, ok := c.byID[id]
	if !ok {
		return model.Activity{}, false
	}
	return c.activities[i], true
}

// ByCategory returns the predefined activities of one category.
func (c *Catalog) ByCategory(cat model.Category) []model.Activity {
	var out []model.Activity
	for _, a := range c.activities {
		if a.Category == cat {
			out = append(out, a)
		}
	}
	return out
}

// Themes returns a copy of the theme list.
func (c *Catalog) Themes() []Theme {
	return append([]Theme(nil), c.themes...)
}

// Theme looks up a theme definition.
func (c *Catalog) Theme(id model.Theme) (Theme, bool) {
	for _, t := range c.themes {
		if t.ID == id {
			return t, true
		}
	}
	return Theme{}, false
}

// ThemeName returns the display name of a theme, or the raw id when the
// catalog does not define it.
func (c *Catalog) ThemeName(id model.Theme) string {
	if t, ok := c.Theme(id); ok {
		return t.Name
	}
	return string(id)
}

// Suggested resolves a theme's starter activities.
func (c *Catalog) Suggested(id model.Theme) []model.Activity {
	t, ok := c.Theme(id)
	if !ok {
		return nil
	}
	out := make([]model.Activity, 0, len(t.Suggested))
	for _, aid := range t.Suggested {
		if a, ok := c.Activity(aid); ok {
			out = append(out, a)
		}
	}
	return out
}

// Suggestions lists up to n predefined activities the plan does not
// schedule yet: the theme's starters first, topped up with activities that
// share the plan's leading mood. Both groups keep catalog order.
func (c *Catalog) Suggestions(plan model.WeekendPlan, n int) []model.Activity {
	t, ok := c.Theme(plan.Theme)
	if !ok || n <= 0 {
		return nil
	}
	scheduled := make(map[string]bool)
	for _, day := range model.Days {
		for _, a := range plan.Activities(day) {
			scheduled[a.ID] = true
		}
	}
	starter := make(map[string]bool, len(t.Suggested))
	for _, id := range t.Suggested {
		starter[id] = true
	}

	var out []model.Activity
	for _, a := range c.activities {
		if starter[a.ID] && !scheduled[a.ID] {
			out = append(out, a)
		}
	}
	if len(out) >= n {
		return out[:n]
	}

	mood := plan.LeadingMood()
	for _, a := range c.activities {
		if len(out) == n {
			break
		}
		if scheduled[a.ID] || starter[a.ID] {
			continue
		}
		if mood == "" || a.Mood == mood {
			out = append(out, a)
		}
	}
	return out
}

// fallbackColors is the palette used when neither the plan nor its theme
// defines one.
var fallbackColors = model.ThemeColors{Primary: "#a16207", Secondary: "#6366f1", Accent: "#22c55e"}

// EffectiveColors returns the plan's custom colors, falling back to its
// theme's palette.
func (c *Catalog) EffectiveColors(plan model.WeekendPlan) model.ThemeColors {
	if plan.CustomThemeColors != nil {
		return *plan.CustomThemeColors
	}
	if t, ok := c.Theme(plan.Theme); ok {
		return t.Colors
	}
	return fallbackColors
}
