package web

import (
	"errors"
	"net/http"

	"weekendplan/internal/model"
	"weekendplan/internal/schedule"
)

// requireCurrent writes 409 and returns false when no plan is being edited.
// Store operations are silent no-ops in that case; the API reports it.
func (s *Server) requireCurrent(w http.ResponseWriter) bool {
	if _, ok := s.store.CurrentPlan(); !ok {
		writeError(w, http.StatusConflict, "no current plan")
		return false
	}
	return true
}

func (s *Server) writeCurrent(w http.ResponseWriter, status int) {
	plan, ok := s.store.CurrentPlan()
	if !ok {
		writeError(w, http.StatusConflict, "no current plan")
		return
	}
	writeJSON(w, status, plan)
}

func (s *Server) handleCurrentPlan(w http.ResponseWriter, _ *http.Request) {
	plan, ok := s.store.CurrentPlan()
	if !ok {
		writeError(w, http.StatusNotFound, "no current plan")
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

type createPlanRequest struct {
	Theme string `json:"theme"`
}

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var req createPlanRequest
	// The body is optional; chunked requests carry no length up front.
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	theme := s.store.SelectedTheme()
	if req.Theme != "" {
		t, err := model.ParseTheme(req.Theme)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		theme = t
	}

	plan, err := s.store.CreateNewPlan(theme)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

func (s *Server) handleClearPlan(w http.ResponseWriter, _ *http.Request) {
	s.store.ClearCurrentPlan()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSavePlan(w http.ResponseWriter, _ *http.Request) {
	plan, ok := s.store.SavePlan()
	if !ok {
		writeError(w, http.StatusConflict, "no current plan")
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

type addActivityRequest struct {
	// ActivityID names a catalog or custom activity.
	ActivityID string `json:"activityId"`
	// Activity places an ad-hoc activity instead.
	Activity  *model.Activity `json:"activity,omitempty"`
	Day       string          `json:"day"`
	StartTime string          `json:"startTime"`
}

type addActivityResponse struct {
	Result schedule.AddResult `json:"result"`
	Plan   model.WeekendPlan  `json:"plan"`
}

func (s *Server) handleAddActivity(w http.ResponseWriter, r *http.Request) {
	var req addActivityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	day, err := model.ParseDay(req.Day)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var activity model.Activity
	switch {
	case req.Activity != nil:
		// Ad-hoc activities always get their own id so they can never be
		// confused with a catalog entry or another scheduled one.
		activity = *req.Activity
		activity.ID = s.store.NewCustomID()
		activity.IsCustom = true
		if err := activity.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	case req.ActivityID != "":
		a, ok := s.store.FindActivity(req.ActivityID)
		if !ok {
			writeError(w, http.StatusNotFound, "unknown activity "+req.ActivityID)
			return
		}
		activity = a
	default:
		writeError(w, http.StatusBadRequest, "activityId or activity is required")
		return
	}

	if !s.requireCurrent(w) {
		return
	}
	res, err := s.store.AddActivityToSchedule(activity, day, req.StartTime)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	plan, _ := s.store.CurrentPlan()
	writeJSON(w, http.StatusOK, addActivityResponse{Result: res, Plan: plan})
}

func (s *Server) handleRemoveActivity(w http.ResponseWriter, r *http.Request) {
	day, err := model.ParseDay(r.PathValue("day"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !s.requireCurrent(w) {
		return
	}
	s.store.RemoveActivityFromSchedule(r.PathValue("id"), day)
	s.writeCurrent(w, http.StatusOK)
}

type updateTimeRequest struct {
	StartTime string `json:"startTime"`
}

func (s *Server) handleUpdateTime(w http.ResponseWriter, r *http.Request) {
	day, err := model.ParseDay(r.PathValue("day"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req updateTimeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !s.requireCurrent(w) {
		return
	}
	if err := s.store.UpdateActivityTime(r.PathValue("id"), day, req.StartTime); err != nil {
		writeStoreError(w, err)
		return
	}
	s.writeCurrent(w, http.StatusOK)
}

type reorderRequest struct {
	Day      string `json:"day"`
	OldIndex int    `json:"oldIndex"`
	NewIndex int    `json:"newIndex"`
}

func (s *Server) handleReorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	day, err := model.ParseDay(req.Day)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !s.requireCurrent(w) {
		return
	}
	if err := s.store.ReorderActivities(day, req.OldIndex, req.NewIndex); err != nil {
		writeStoreError(w, err)
		return
	}
	s.writeCurrent(w, http.StatusOK)
}

type moveRequest struct {
	ActivityID string `json:"activityId"`
	FromDay    string `json:"fromDay"`
	ToDay      string `json:"toDay"`
	StartTime  string `json:"startTime"`
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	from, err := model.ParseDay(req.FromDay)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	to, err := model.ParseDay(req.ToDay)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !s.requireCurrent(w) {
		return
	}
	if err := s.store.MoveActivityBetweenDays(req.ActivityID, from, to, req.StartTime); err != nil {
		writeStoreError(w, err)
		return
	}
	s.writeCurrent(w, http.StatusOK)
}

// Overview sizes follow the planner's sidebar: two gaps, three suggestions.
const (
	overviewGaps        = 2
	overviewSuggestions = 3
)

type overviewResponse struct {
	PlanID         string                 `json:"planId"`
	ActivityCount  int                    `json:"activityCount"`
	TotalDuration  int                    `json:"totalDuration"`
	CategoryCounts map[model.Category]int `json:"categoryCounts"`
	MoodCounts     map[model.Mood]int     `json:"moodCounts"`
	BalanceScore   int                    `json:"balanceScore"`
	TimeGaps       []schedule.Gap         `json:"timeGaps"`
	Suggestions    []model.Activity       `json:"suggestions"`
}

// handleOverview summarises the current plan, or the plan named by ?id=:
// distributions, free slots and activities worth adding.
func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	var (
		plan model.WeekendPlan
		ok   bool
	)
	if id := r.URL.Query().Get("id"); id != "" {
		if plan, ok = s.findPlan(id); !ok {
			writeError(w, http.StatusNotFound, "plan not found")
			return
		}
	} else if plan, ok = s.store.CurrentPlan(); !ok {
		writeError(w, http.StatusConflict, "no current plan")
		return
	}

	gaps, err := schedule.TimeGaps(plan, overviewGaps)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if gaps == nil {
		gaps = []schedule.Gap{}
	}
	suggestions := s.catalog.Suggestions(plan, overviewSuggestions)
	if suggestions == nil {
		suggestions = []model.Activity{}
	}
	writeJSON(w, http.StatusOK, overviewResponse{
		PlanID:         plan.ID,
		ActivityCount:  plan.ActivityCount(),
		TotalDuration:  plan.TotalDuration(),
		CategoryCounts: plan.CategoryCounts(),
		MoodCounts:     plan.MoodCounts(),
		BalanceScore:   plan.BalanceScore(),
		TimeGaps:       gaps,
		Suggestions:    suggestions,
	})
}
