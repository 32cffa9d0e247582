package planstore

import (
	"errors"
	"fmt"

	"weekendplan/internal/model"
)

// ErrActivityIDTaken is returned when a custom activity reuses the id of a
// catalog activity.
var ErrActivityIDTaken = errors.New("activity id is already used by the catalog")

// AddCustomActivity registers a user-defined activity. An empty id gets a
// generated "custom-" id; an existing custom id is replaced. Catalog ids are
// reserved.
func (s *Store) AddCustomActivity(a model.Activity) (model.Activity, error) {
	a.IsCustom = true
	if a.ID == "" {
		a.ID = s.NewCustomID()
	}
	if err := a.Validate(); err != nil {
		return model.Activity{}, fmt.Errorf("planstore: custom activity: %w", err)
	}
	if s.catalog != nil {
		if _, ok := s.catalog.Activity(a.ID); ok {
			return model.Activity{}, fmt.Errorf("planstore: custom activity %q: %w", a.ID, ErrActivityIDTaken)
		}
	}

	s.mu.Lock()
	next := make([]model.Activity, 0, len(s.custom)+1)
	replaced := false
	for _, c := range s.custom {
		if c.ID == a.ID {
			next = append(next, a)
			replaced = true
			continue
		}
		next = append(next, c)
	}
	if !replaced {
		next = append(next, a)
	}
	s.custom = next
	s.mu.Unlock()

	s.notify(Event{Op: OpAddCustom})
	return a, nil
}

// RemoveCustomActivity deletes a user-defined activity. Plans that already
// schedule it keep their copy.
func (s *Store) RemoveCustomActivity(id string) bool {
	s.mu.Lock()
	next := make([]model.Activity, 0, len(s.custom))
	for _, c := range s.custom {
		if c.ID != id {
			next = append(next, c)
		}
	}
	removed := len(next) != len(s.custom)
	s.custom = next
	s.mu.Unlock()

	if removed {
		s.notify(Event{Op: OpRemoveCustom})
	}
	return removed
}

// CustomActivities returns a copy of the user-defined activities.
func (s *Store) CustomActivities() []model.Activity {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Activity, len(s.custom))
	copy(out, s.custom)
	return out
}

// FindActivity looks an activity up among the custom ones first, then in
// the catalog.
func (s *Store) FindActivity(id string) (model.Activity, bool) {
	s.mu.Lock()
	for _, c := range s.custom {
		if c.ID == id {
			s.mu.Unlock()
			return c, true
		}
	}
	s.mu.Unlock()

	if s.catalog == nil {
		return model.Activity{}, false
	}
	return s.catalog.Activity(id)
}

// NewCustomID returns a fresh id for a user-defined activity.
func (s *Store) NewCustomID() string {
	return "custom-" + s.newID()
}
