package web

import (
	"embed"
	"html/template"
	"net/http"

	"weekendplan/internal/export"
	appLog "weekendplan/internal/log"
	"weekendplan/internal/model"
)

// embeddedTemplates holds the printable plan view. It is also what the
// headless browser renders for PNG export.
//
//go:embed templates/*.html
var embeddedTemplates embed.FS

var printTmpl = template.Must(template.New("print.html").Funcs(template.FuncMap{
	"duration": export.FormatDuration,
}).ParseFS(embeddedTemplates, "templates/print.html"))

type printDay struct {
	Label      string
	Activities []printActivity
}

type printActivity struct {
	model.ScheduledActivity
	CategoryLabel string
	CategoryColor string
	MoodEmoji     string
}

type printView struct {
	Plan          model.WeekendPlan
	ThemeName     string
	Colors        model.ThemeColors
	Days          []printDay
	TotalDuration string
	OverallEmoji  string
}

// handlePrint renders the current plan, or the saved plan named by ?id=.
func (s *Server) handlePrint(w http.ResponseWriter, r *http.Request) {
	var (
		plan model.WeekendPlan
		ok   bool
	)
	if id := r.URL.Query().Get("id"); id != "" {
		plan, ok = s.findPlan(id)
	} else {
		plan, ok = s.store.CurrentPlan()
	}
	if !ok {
		http.Error(w, "plan not found", http.StatusNotFound)
		return
	}

	view := printView{
		Plan:          plan,
		ThemeName:     s.catalog.ThemeName(plan.Theme),
		Colors:        s.catalog.EffectiveColors(plan),
		TotalDuration: export.FormatDuration(plan.TotalDuration()),
	}
	if plan.OverallMood != "" {
		view.OverallEmoji = plan.OverallMood.Emoji()
	}
	for _, day := range model.Days {
		pd := printDay{Label: day.Label()}
		for _, a := range plan.Activities(day) {
			pa := printActivity{
				ScheduledActivity: a,
				CategoryLabel:     a.Category.Label(),
				CategoryColor:     a.Category.Color(),
			}
			if a.UserMood != "" {
				pa.MoodEmoji = a.UserMood.Emoji()
			}
			pd.Activities = append(pd.Activities, pa)
		}
		view.Days = append(view.Days, pd)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := printTmpl.Execute(w, view); err != nil {
		appLog.Error("print: render failed", err, "plan_id", plan.ID)
	}
}
