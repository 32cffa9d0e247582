package planstore

import (
	"fmt"

	appLog "weekendplan/internal/log"
	"weekendplan/internal/model"
	"weekendplan/internal/schedule"
)

// SavePlan stores a copy of the current plan, replacing a saved plan with
// the same id.
func (s *Store) SavePlan() (model.WeekendPlan, bool) {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return model.WeekendPlan{}, false
	}
	plan := s.current.Clone()
	if i := s.savedIndex(plan.ID); i >= 0 {
		s.saved[i] = plan.Clone()
	} else {
		s.saved = append(s.saved, plan.Clone())
	}
	s.dirty = true
	s.mu.Unlock()

	appLog.Info("planstore: saved plan", "plan_id", plan.ID, "name", plan.Name)
	s.notify(Event{Op: OpSavePlan, PlanID: plan.ID})
	return plan, true
}

// LoadPlan makes a copy of a saved plan current.
func (s *Store) LoadPlan(id string) (model.WeekendPlan, bool) {
	s.mu.Lock()
	i := s.savedIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return model.WeekendPlan{}, false
	}
	plan := s.saved[i].Clone()
	s.current = &plan
	s.selectedTheme = plan.Theme
	s.mu.Unlock()

	s.notify(Event{Op: OpLoadPlan, PlanID: id})
	return plan.Clone(), true
}

// DeletePlan removes a saved plan and clears the current plan when it is
// the one being deleted.
func (s *Store) DeletePlan(id string) bool {
	s.mu.Lock()
	i := s.savedIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	next := make([]model.WeekendPlan, 0, len(s.saved)-1)
	next = append(next, s.saved[:i]...)
	next = append(next, s.saved[i+1:]...)
	s.saved = next
	if s.current != nil && s.current.ID == id {
		s.current = nil
	}
	s.dirty = true
	s.mu.Unlock()

	appLog.Info("planstore: deleted plan", "plan_id", id)
	s.notify(Event{Op: OpDeletePlan, PlanID: id})
	return true
}

// DuplicatePlan appends a copy of a saved plan under a new id. The copy
// starts with an empty mood journal and is not made current.
func (s *Store) DuplicatePlan(id string) (model.WeekendPlan, bool) {
	now := s.now()
	newID := s.newID()

	s.mu.Lock()
	i := s.savedIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return model.WeekendPlan{}, false
	}
	dup := s.saved[i].Clone()
	dup.ID = newID
	dup.Name += " (Copy)"
	dup.CreatedAt = now
	dup.UpdatedAt = now
	dup.MoodJournal = nil
	s.saved = append(s.saved, dup.Clone())
	s.dirty = true
	s.mu.Unlock()

	s.notify(Event{Op: OpDuplicatePlan, PlanID: dup.ID})
	return dup, true
}

// UpdatePlanName renames a plan, both the current one and its saved copy.
func (s *Store) UpdatePlanName(id, name string) bool {
	return s.updatePlan(OpRenamePlan, id, func(p *model.WeekendPlan) {
		p.Name = name
	})
}

// UpdatePlanMood sets the overall mood of a plan and appends entry to its
// journal when given. A missing entry id or timestamp is filled in.
func (s *Store) UpdatePlanMood(id string, mood model.UserMood, entry *model.MoodEntry) bool {
	var e model.MoodEntry
	if entry != nil {
		e = *entry
		if e.ID == "" {
			e.ID = s.newID()
		}
		if e.Timestamp.IsZero() {
			e.Timestamp = s.now()
		}
		if e.Mood == "" {
			e.Mood = mood
		}
	}
	return s.updatePlan(OpUpdateMood, id, func(p *model.WeekendPlan) {
		p.OverallMood = mood
		if entry != nil {
			p.MoodJournal = append(p.MoodJournal, e)
		}
	})
}

// UpdateThemeColors sets the custom palette of a plan. A nil colors value
// reverts to the theme palette.
func (s *Store) UpdateThemeColors(id string, colors *model.ThemeColors) bool {
	return s.updatePlan(OpUpdateColors, id, func(p *model.WeekendPlan) {
		if colors == nil {
			p.CustomThemeColors = nil
			return
		}
		c := *colors
		p.CustomThemeColors = &c
	})
}

// updatePlan applies fn to the current plan when its id matches and to the
// saved plan with that id. It reports whether either was found.
func (s *Store) updatePlan(op Op, id string, fn func(p *model.WeekendPlan)) bool {
	now := s.now()
	found := false

	s.mu.Lock()
	if s.current != nil && s.current.ID == id {
		next := s.current.Clone()
		fn(&next)
		next.UpdatedAt = now
		s.current = &next
		found = true
	}
	if i := s.savedIndex(id); i >= 0 {
		next := s.saved[i].Clone()
		fn(&next)
		next.UpdatedAt = now
		s.saved[i] = next
		s.dirty = true
		found = true
	}
	s.mu.Unlock()

	if found {
		s.notify(Event{Op: op, PlanID: id})
	}
	return found
}

// ImportPlan takes a plan from outside (file, share link, calendar), gives
// it a fresh id and timestamps, saves it and makes it current.
func (s *Store) ImportPlan(plan model.WeekendPlan) (model.WeekendPlan, error) {
	imported := plan.Clone()
	if err := schedule.Normalize(&imported); err != nil {
		return model.WeekendPlan{}, fmt.Errorf("planstore: import: %w", err)
	}
	now := s.now()
	imported.ID = s.newID()
	imported.CreatedAt = now
	imported.UpdatedAt = now
	if imported.Name == "" {
		imported.Name = "Imported Plan - " + now.Format("Jan 2, 2006")
	}

	s.mu.Lock()
	s.saved = append(s.saved, imported.Clone())
	cur := imported.Clone()
	s.current = &cur
	if imported.Theme != "" {
		s.selectedTheme = imported.Theme
	}
	s.dirty = true
	s.mu.Unlock()

	appLog.Info("planstore: imported plan", "plan_id", imported.ID, "activities", imported.ActivityCount())
	s.notify(Event{Op: OpImportPlan, PlanID: imported.ID})
	return imported, nil
}
