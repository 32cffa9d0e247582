package web

import (
	"errors"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"weekendplan/internal/export"
	"weekendplan/internal/ics"
	appLog "weekendplan/internal/log"
	"weekendplan/internal/model"
)

func (s *Server) handleSavedPlans(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.SavedPlans())
}

func (s *Server) handleImportJSON(w http.ResponseWriter, r *http.Request) {
	var plan model.WeekendPlan
	if err := decodeJSON(w, r, &plan); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if plan.Theme != "" && !plan.Theme.Valid() {
		writeError(w, http.StatusBadRequest, "unknown theme "+string(plan.Theme))
		return
	}
	s.importPlan(w, plan)
}

type importICSResponse struct {
	Plan    model.WeekendPlan `json:"plan"`
	Weekend string            `json:"weekend"`
	Skipped int               `json:"skipped"`
}

// handleImportICS takes a raw iCalendar body.
func (s *Server) handleImportICS(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "calendar too large")
		return
	}
	res, err := ics.Import(body, s.loc)
	if err != nil {
		if errors.Is(err, ics.ErrNoWeekendEvents) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "invalid calendar: "+err.Error())
		return
	}
	plan, err := s.store.ImportPlan(res.Plan)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, importICSResponse{
		Plan:    plan,
		Weekend: res.Weekend.Format(time.DateOnly),
		Skipped: res.Skipped,
	})
}

type sharedRequest struct {
	// Link is a full share link or a bare token.
	Link string `json:"link"`
}

func (s *Server) handleImportShared(w http.ResponseWriter, r *http.Request) {
	var req sharedRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	plan := export.ParseSharedPlan(req.Link)
	if plan == nil {
		writeError(w, http.StatusBadRequest, "invalid share link")
		return
	}
	s.importPlan(w, *plan)
}

func (s *Server) importPlan(w http.ResponseWriter, plan model.WeekendPlan) {
	imported, err := s.store.ImportPlan(plan)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, imported)
}

func (s *Server) handleLoadPlan(w http.ResponseWriter, r *http.Request) {
	plan, ok := s.store.LoadPlan(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "plan not found")
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleDeletePlan(w http.ResponseWriter, r *http.Request) {
	if !s.store.DeletePlan(r.PathValue("id")) {
		writeError(w, http.StatusNotFound, "plan not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDuplicatePlan(w http.ResponseWriter, r *http.Request) {
	plan, ok := s.store.DuplicatePlan(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "plan not found")
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

type renameRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleRenamePlan(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	id := r.PathValue("id")
	if !s.store.UpdatePlanName(id, name) {
		writeError(w, http.StatusNotFound, "plan not found")
		return
	}
	s.writePlan(w, id)
}

type moodRequest struct {
	Mood       string `json:"mood"`
	Notes      string `json:"notes,omitempty"`
	ActivityID string `json:"activityId,omitempty"`
}

func (s *Server) handleRecordMood(w http.ResponseWriter, r *http.Request) {
	var req moodRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	mood, err := model.ParseUserMood(req.Mood)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id := r.PathValue("id")
	entry := &model.MoodEntry{Mood: mood, Notes: req.Notes, ActivityID: req.ActivityID}
	if !s.store.UpdatePlanMood(id, mood, entry) {
		writeError(w, http.StatusNotFound, "plan not found")
		return
	}
	s.writePlan(w, id)
}

type moodStatsResponse struct {
	model.MoodStats
	OverallMood model.UserMood    `json:"overallMood,omitempty"`
	Recent      []model.MoodEntry `json:"recent"`
}

func (s *Server) handleMoodStats(w http.ResponseWriter, r *http.Request) {
	plan, ok := s.findPlan(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "plan not found")
		return
	}
	recent := plan.RecentMoods(parseIntDefault(r.URL.Query().Get("recent"), 5))
	if recent == nil {
		recent = []model.MoodEntry{}
	}
	writeJSON(w, http.StatusOK, moodStatsResponse{
		MoodStats:   plan.MoodStats(),
		OverallMood: plan.OverallMood,
		Recent:      recent,
	})
}

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// handleThemeColors sets a custom palette. A JSON null body resets it.
func (s *Server) handleThemeColors(w http.ResponseWriter, r *http.Request) {
	var colors *model.ThemeColors
	if err := decodeJSON(w, r, &colors); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if colors != nil {
		for _, c := range []string{colors.Primary, colors.Secondary, colors.Accent} {
			if !hexColor.MatchString(c) {
				writeError(w, http.StatusBadRequest, "colors must be #rrggbb, got "+c)
				return
			}
		}
	}
	id := r.PathValue("id")
	if !s.store.UpdateThemeColors(id, colors) {
		writeError(w, http.StatusNotFound, "plan not found")
		return
	}
	appLog.Debug("theme colors updated", "plan_id", id, "reset", colors == nil)
	s.writePlan(w, id)
}

// findPlan prefers the current plan's copy, which may hold unsaved edits.
func (s *Server) findPlan(id string) (model.WeekendPlan, bool) {
	if cur, ok := s.store.CurrentPlan(); ok && cur.ID == id {
		return cur, true
	}
	return s.store.SavedPlan(id)
}

func (s *Server) writePlan(w http.ResponseWriter, id string) {
	plan, ok := s.findPlan(id)
	if !ok {
		writeError(w, http.StatusNotFound, "plan not found")
		return
	}
	writeJSON(w, http.StatusOK, plan)
}
