// Package planstore owns the session state of the planner: the plan being
// edited, the saved plans, the selected theme and the user's custom
// activities. Schedule changes are delegated to schedule.Engine.
//
// Every mutation follows the same shape: take the lock, copy the state it
// touches, apply the change to the copy, swap the copy in. Readers only ever
// see complete transitions and never receive references into the store.
package planstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"weekendplan/internal/catalog"
	appLog "weekendplan/internal/log"
	"weekendplan/internal/model"
	"weekendplan/internal/schedule"
	"weekendplan/internal/timeutil"
)

// Persister is the durable side of the store. Only the saved plans cross
// this boundary; the current plan and selected theme are session state.
type Persister interface {
	LoadPlans(ctx context.Context) ([]model.WeekendPlan, error)
	SavePlans(ctx context.Context, plans []model.WeekendPlan) error
}

// Options configures a Store. Zero values get sensible defaults.
type Options struct {
	Engine    *schedule.Engine
	Catalog   *catalog.Catalog
	Persister Persister

	Now   func() time.Time
	NewID func() string

	// DefaultTheme is the selected theme before any plan is created.
	DefaultTheme model.Theme
	// SeedStarter places the theme's suggested activities on Saturday when
	// a plan is created.
	SeedStarter bool
	// DefaultStartTime is where seeded activities begin ("09:00").
	DefaultStartTime string
}

// Store is the planner state container. It is safe for concurrent use.
type Store struct {
	engine    *schedule.Engine
	catalog   *catalog.Catalog
	persister Persister
	now       func() time.Time
	newID     func() string

	seedStarter  bool
	defaultStart string

	mu            sync.Mutex
	current       *model.WeekendPlan
	saved         []model.WeekendPlan
	selectedTheme model.Theme
	custom        []model.Activity
	dirty         bool

	// flushMu keeps concurrent flushes from writing out of order.
	flushMu sync.Mutex

	subsMu  sync.Mutex
	subs    map[int]func(Event)
	nextSub int
}

// New builds an empty Store.
func New(opts Options) *Store {
	s := &Store{
		engine:        opts.Engine,
		catalog:       opts.Catalog,
		persister:     opts.Persister,
		now:           opts.Now,
		newID:         opts.NewID,
		seedStarter:   opts.SeedStarter,
		defaultStart:  opts.DefaultStartTime,
		selectedTheme: opts.DefaultTheme,
		saved:         []model.WeekendPlan{},
		subs:          make(map[int]func(Event)),
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.engine == nil {
		s.engine = &schedule.Engine{Now: s.now}
	}
	if s.selectedTheme == "" {
		s.selectedTheme = model.ThemeLazy
	}
	if _, err := timeutil.TimeToMinutes(s.defaultStart); err != nil {
		s.defaultStart = "09:00"
	}
	return s
}

// Restore replaces the saved plans with what the persister holds. The
// current plan is left alone; it is never persisted.
func (s *Store) Restore(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	plans, err := s.persister.LoadPlans(ctx)
	if err != nil {
		return fmt.Errorf("planstore: restore: %w", err)
	}

	restored := make([]model.WeekendPlan, 0, len(plans))
	seen := make(map[string]int, len(plans))
	for _, p := range plans {
		if p.ID == "" {
			appLog.Warn("planstore: skipping saved plan without id", "name", p.Name)
			continue
		}
		// A later copy of the same id wins.
		if i, ok := seen[p.ID]; ok {
			restored[i] = p.Clone()
			continue
		}
		seen[p.ID] = len(restored)
		restored = append(restored, p.Clone())
	}

	s.mu.Lock()
	s.saved = restored
	s.dirty = false
	s.mu.Unlock()

	appLog.Info("planstore: restored saved plans", "count", len(restored))
	s.notify(Event{Op: OpRestore})
	return nil
}

// Flush writes the saved plans through the persister when they changed
// since the last successful flush.
func (s *Store) Flush(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return nil
	}
	snapshot := clonePlans(s.saved)
	s.dirty = false
	s.mu.Unlock()

	if err := s.persister.SavePlans(ctx, snapshot); err != nil {
		s.mu.Lock()
		s.dirty = true
		s.mu.Unlock()
		return fmt.Errorf("planstore: flush: %w", err)
	}
	appLog.Debug("planstore: flushed saved plans", "count", len(snapshot))
	return nil
}

// Dirty reports whether saved plans changed since the last flush.
func (s *Store) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// CurrentPlan returns a copy of the plan being edited.
func (s *Store) CurrentPlan() (model.WeekendPlan, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return model.WeekendPlan{}, false
	}
	return s.current.Clone(), true
}

// SavedPlans returns copies of the saved plans in insertion order.
func (s *Store) SavedPlans() []model.WeekendPlan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clonePlans(s.saved)
}

// SavedPlan returns a copy of one saved plan.
func (s *Store) SavedPlan(id string) (model.WeekendPlan, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.savedIndex(id); i >= 0 {
		return s.saved[i].Clone(), true
	}
	return model.WeekendPlan{}, false
}

// SelectedTheme is the last theme chosen, independent of the current plan.
func (s *Store) SelectedTheme() model.Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedTheme
}

// SetTheme changes the selected theme without touching any plan.
func (s *Store) SetTheme(theme model.Theme) {
	s.mu.Lock()
	s.selectedTheme = theme
	s.mu.Unlock()
	s.notify(Event{Op: OpSetTheme})
}

// CreateNewPlan starts a fresh plan for theme and makes it current.
func (s *Store) CreateNewPlan(theme model.Theme) (model.WeekendPlan, error) {
	now := s.now()
	plan := model.WeekendPlan{
		ID:        s.newID(),
		Name:      "Weekend Plan - " + now.Format("Jan 2, 2006"),
		Theme:     theme,
		Saturday:  []model.ScheduledActivity{},
		Sunday:    []model.ScheduledActivity{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if s.seedStarter && s.catalog != nil {
		if err := s.engine.SeedActivities(&plan, model.Saturday, s.catalog.Suggested(theme), s.defaultStart); err != nil {
			return model.WeekendPlan{}, fmt.Errorf("planstore: seed plan: %w", err)
		}
		plan.UpdatedAt = now
	}

	s.mu.Lock()
	s.current = &plan
	s.selectedTheme = theme
	s.mu.Unlock()

	appLog.Info("planstore: created plan", "plan_id", plan.ID, "theme", theme, "seeded", plan.ActivityCount())
	s.notify(Event{Op: OpCreatePlan, PlanID: plan.ID})
	return plan.Clone(), nil
}

// ClearCurrentPlan drops the current plan. Saved plans are untouched.
func (s *Store) ClearCurrentPlan() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
	s.notify(Event{Op: OpClearCurrent})
}

// AddActivityToSchedule places activity on day of the current plan. Without
// a current plan it returns a zero AddResult (Success false).
func (s *Store) AddActivityToSchedule(activity model.Activity, day model.Day, preferredStart string) (schedule.AddResult, error) {
	var res schedule.AddResult
	err := s.updateCurrent(OpAddActivity, func(p *model.WeekendPlan) error {
		var err error
		res, err = s.engine.AddActivity(p, activity, day, preferredStart)
		return err
	})
	if err == nil && res.Rescheduled {
		appLog.Info("planstore: activity rescheduled", "activity_id", activity.ID, "day", day,
			"preferred", preferredStart, "final", res.FinalStartTime, "overlaps", res.Overlaps)
	}
	return res, err
}

// RemoveActivityFromSchedule removes an activity from day of the current plan.
func (s *Store) RemoveActivityFromSchedule(activityID string, day model.Day) {
	_ = s.updateCurrent(OpRemoveActivity, func(p *model.WeekendPlan) error {
		s.engine.RemoveActivity(p, activityID, day)
		return nil
	})
}

// UpdateActivityTime retimes an activity of the current plan.
func (s *Store) UpdateActivityTime(activityID string, day model.Day, newStart string) error {
	return s.updateCurrent(OpUpdateTime, func(p *model.WeekendPlan) error {
		return s.engine.UpdateActivityTime(p, activityID, day, newStart)
	})
}

// ReorderActivities reorders and compacts one day of the current plan.
func (s *Store) ReorderActivities(day model.Day, oldIndex, newIndex int) error {
	return s.updateCurrent(OpReorder, func(p *model.WeekendPlan) error {
		return s.engine.ReorderActivities(p, day, oldIndex, newIndex)
	})
}

// MoveActivityBetweenDays moves an activity of the current plan to toDay.
func (s *Store) MoveActivityBetweenDays(activityID string, fromDay, toDay model.Day, newStart string) error {
	return s.updateCurrent(OpMoveActivity, func(p *model.WeekendPlan) error {
		return s.engine.MoveActivityBetweenDays(p, activityID, fromDay, toDay, newStart)
	})
}

// updateCurrent runs fn on a copy of the current plan and swaps it in when
// fn succeeds. Without a current plan it does nothing.
func (s *Store) updateCurrent(op Op, fn func(p *model.WeekendPlan) error) error {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return nil
	}
	next := s.current.Clone()
	if err := fn(&next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.current = &next
	s.mu.Unlock()

	s.notify(Event{Op: op, PlanID: next.ID})
	return nil
}

func (s *Store) savedIndex(id string) int {
	for i := range s.saved {
		if s.saved[i].ID == id {
			return i
		}
	}
	return -1
}

func clonePlans(in []model.WeekendPlan) []model.WeekendPlan {
	out := make([]model.WeekendPlan, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}
