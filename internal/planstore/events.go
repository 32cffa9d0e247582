package planstore

// Op names the store operation behind an Event.
type Op string

const (
	OpRestore        Op = "restore"
	OpSetTheme       Op = "setTheme"
	OpCreatePlan     Op = "createPlan"
	OpClearCurrent   Op = "clearCurrent"
	OpAddActivity    Op = "addActivity"
	OpRemoveActivity Op = "removeActivity"
	OpUpdateTime     Op = "updateTime"
	OpReorder        Op = "reorder"
	OpMoveActivity   Op = "moveActivity"
	OpSavePlan       Op = "savePlan"
	OpLoadPlan       Op = "loadPlan"
	OpDeletePlan     Op = "deletePlan"
	OpDuplicatePlan  Op = "duplicatePlan"
	OpRenamePlan     Op = "renamePlan"
	OpUpdateMood     Op = "updateMood"
	OpUpdateColors   Op = "updateColors"
	OpImportPlan     Op = "importPlan"
	OpAddCustom      Op = "addCustomActivity"
	OpRemoveCustom   Op = "removeCustomActivity"
)

// Event is delivered to subscribers after a state change. PlanID is empty
// for changes that are not about one plan.
type Event struct {
	Op     Op
	PlanID string
}

// Subscribe registers fn for every state change. Callbacks run on the
// mutating goroutine after the store lock is released, so they may read
// the store. The returned func removes the subscription.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subsMu.Unlock()

	return func() {
		s.subsMu.Lock()
		delete(s.subs, id)
		s.subsMu.Unlock()
	}
}

func (s *Store) notify(ev Event) {
	s.subsMu.Lock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subsMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
