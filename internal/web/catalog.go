package web

import (
	"errors"
	"net/http"

	"weekendplan/internal/catalog"
	"weekendplan/internal/model"
	"weekendplan/internal/planstore"
)

type themesResponse struct {
	Themes   []catalog.Theme `json:"themes"`
	Selected model.Theme     `json:"selected"`
}

func (s *Server) handleThemes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, themesResponse{
		Themes:   s.catalog.Themes(),
		Selected: s.store.SelectedTheme(),
	})
}

type setThemeRequest struct {
	Theme string `json:"theme"`
}

func (s *Server) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	var req setThemeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	theme, err := model.ParseTheme(req.Theme)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.store.SetTheme(theme)
	writeJSON(w, http.StatusOK, themesResponse{
		Themes:   s.catalog.Themes(),
		Selected: s.store.SelectedTheme(),
	})
}

type categoryInfo struct {
	ID    model.Category `json:"id"`
	Label string         `json:"label"`
	Color string         `json:"color"`
}

type catalogResponse struct {
	Activities []model.Activity `json:"activities"`
	Custom     []model.Activity `json:"custom"`
	Categories []categoryInfo   `json:"categories"`
}

// handleCatalog lists predefined and custom activities, optionally filtered
// by ?category=.
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	activities := s.catalog.Activities()
	custom := s.store.CustomActivities()
	if c := r.URL.Query().Get("category"); c != "" {
		cat := model.Category(c)
		activities = s.catalog.ByCategory(cat)
		custom = filterCategory(custom, cat)
	}
	if activities == nil {
		activities = []model.Activity{}
	}

	cats := make([]categoryInfo, 0, len(model.Categories))
	for _, c := range model.Categories {
		cats = append(cats, categoryInfo{ID: c, Label: c.Label(), Color: c.Color()})
	}
	writeJSON(w, http.StatusOK, catalogResponse{
		Activities: activities,
		Custom:     custom,
		Categories: cats,
	})
}

func filterCategory(list []model.Activity, cat model.Category) []model.Activity {
	out := make([]model.Activity, 0, len(list))
	for _, a := range list {
		if a.Category == cat {
			out = append(out, a)
		}
	}
	return out
}

func (s *Server) handleAddCustom(w http.ResponseWriter, r *http.Request) {
	var a model.Activity
	if err := decodeJSON(w, r, &a); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	added, err := s.store.AddCustomActivity(a)
	if errors.Is(err, planstore.ErrActivityIDTaken) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

func (s *Server) handleRemoveCustom(w http.ResponseWriter, r *http.Request) {
	if !s.store.RemoveCustomActivity(r.PathValue("id")) {
		writeError(w, http.StatusNotFound, "custom activity not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
