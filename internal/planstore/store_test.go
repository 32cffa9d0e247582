package planstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"weekendplan/internal/catalog"
	"weekendplan/internal/model"
)

var testNow = time.Date(2025, 9, 13, 8, 0, 0, 0, time.UTC)

type memPersister struct {
	mu    sync.Mutex
	plans []model.WeekendPlan
	saves int
	err   error
}

func (m *memPersister) LoadPlans(ctx context.Context) ([]model.WeekendPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.WeekendPlan(nil), m.plans...), m.err
}

func (m *memPersister) SavePlans(ctx context.Context, plans []model.WeekendPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.plans = plans
	m.saves++
	return nil
}

func newTestStore(t *testing.T, opts Options) *Store {
	t.Helper()
	n := 0
	opts.Now = func() time.Time { return testNow }
	opts.NewID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return New(opts)
}

func reading() model.Activity {
	return model.Activity{ID: "reading", Name: "Reading", Category: model.CategoryIndoor, Duration: 120, Icon: "*", Mood: model.MoodRelaxed}
}

func TestCreateNewPlan(t *testing.T) {
	s := newTestStore(t, Options{})
	plan, err := s.CreateNewPlan(model.ThemeFamily)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if plan.ID != "id-1" {
		t.Errorf("Expected generated id id-1, got %s", plan.ID)
	}
	if plan.Name != "Weekend Plan - Sep 13, 2025" {
		t.Errorf("Expected dated name, got %q", plan.Name)
	}
	if plan.Saturday == nil || plan.Sunday == nil || plan.ActivityCount() != 0 {
		t.Errorf("Expected empty non-nil days, got %+v", plan)
	}
	if s.SelectedTheme() != model.ThemeFamily {
		t.Errorf("Expected selected theme family, got %s", s.SelectedTheme())
	}
	cur, ok := s.CurrentPlan()
	if !ok || cur.ID != plan.ID {
		t.Errorf("Expected new plan to be current")
	}
}

func TestCreateNewPlanSeeded(t *testing.T) {
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("Expected catalog, got %v", err)
	}
	s := newTestStore(t, Options{Catalog: cat, SeedStarter: true, DefaultStartTime: "09:00"})
	plan, err := s.CreateNewPlan(model.ThemeLazy)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(plan.Saturday) != len(cat.Suggested(model.ThemeLazy)) {
		t.Fatalf("Expected every suggestion on Saturday, got %d", len(plan.Saturday))
	}
	if plan.Saturday[0].ID != "brunch" || plan.Saturday[0].StartTime != "09:00" {
		t.Errorf("Expected brunch at 09:00 first, got %s at %s", plan.Saturday[0].ID, plan.Saturday[0].StartTime)
	}
	if plan.Saturday[1].StartTime != plan.Saturday[0].EndTime {
		t.Errorf("Expected back-to-back seeding, got %s after %s", plan.Saturday[1].StartTime, plan.Saturday[0].EndTime)
	}
}

func TestScheduleOpsWithoutCurrentPlan(t *testing.T) {
	s := newTestStore(t, Options{})
	res, err := s.AddActivityToSchedule(reading(), model.Saturday, "09:00")
	if err != nil || res.Success {
		t.Errorf("Expected silent no-op, got %+v, %v", res, err)
	}
	s.RemoveActivityFromSchedule("reading", model.Saturday)
	if err := s.UpdateActivityTime("reading", model.Saturday, "10:00"); err != nil {
		t.Errorf("Expected nil error, got %v", err)
	}
	if _, ok := s.SavePlan(); ok {
		t.Error("Expected SavePlan to do nothing without a current plan")
	}
}

func TestScheduleOps(t *testing.T) {
	s := newTestStore(t, Options{})
	if _, err := s.CreateNewPlan(model.ThemeLazy); err != nil {
		t.Fatal(err)
	}

	res, err := s.AddActivityToSchedule(reading(), model.Saturday, "09:00")
	if err != nil || !res.Success || res.Rescheduled {
		t.Fatalf("Expected plain placement, got %+v, %v", res, err)
	}
	hike := model.Activity{ID: "hiking", Name: "Hiking", Category: model.CategoryOutdoor, Duration: 60, Icon: "*"}
	res, err = s.AddActivityToSchedule(hike, model.Saturday, "10:00")
	if err != nil || !res.Rescheduled || res.FinalStartTime != "11:00" {
		t.Fatalf("Expected reschedule to 11:00, got %+v, %v", res, err)
	}

	if err := s.MoveActivityBetweenDays("hiking", model.Saturday, model.Sunday, "08:00"); err != nil {
		t.Fatal(err)
	}
	cur, _ := s.CurrentPlan()
	if len(cur.Saturday) != 1 || len(cur.Sunday) != 1 || cur.Sunday[0].Day != model.Sunday {
		t.Fatalf("Expected hiking moved to Sunday, got %+v", cur)
	}

	if err := s.UpdateActivityTime("reading", model.Saturday, "nine"); err == nil {
		t.Error("Expected error for malformed time")
	}
	after, _ := s.CurrentPlan()
	if after.Saturday[0].StartTime != "09:00" {
		t.Errorf("Expected failed update to leave state untouched, got %s", after.Saturday[0].StartTime)
	}

	s.RemoveActivityFromSchedule("reading", model.Saturday)
	cur, _ = s.CurrentPlan()
	if len(cur.Saturday) != 0 {
		t.Errorf("Expected Saturday empty, got %+v", cur.Saturday)
	}
}

func TestCurrentPlanIsACopy(t *testing.T) {
	s := newTestStore(t, Options{})
	if _, err := s.CreateNewPlan(model.ThemeLazy); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddActivityToSchedule(reading(), model.Saturday, "09:00"); err != nil {
		t.Fatal(err)
	}
	cur, _ := s.CurrentPlan()
	cur.Saturday[0].StartTime = "20:00"
	again, _ := s.CurrentPlan()
	if again.Saturday[0].StartTime != "09:00" {
		t.Error("Expected CurrentPlan to return a copy")
	}
}

func TestSaveLoadDeleteDuplicate(t *testing.T) {
	s := newTestStore(t, Options{})
	plan, _ := s.CreateNewPlan(model.ThemeSocial)
	if _, err := s.AddActivityToSchedule(reading(), model.Sunday, "14:00"); err != nil {
		t.Fatal(err)
	}

	t.Run("SaveUpserts", func(t *testing.T) {
		s.SavePlan()
		s.SavePlan()
		if got := len(s.SavedPlans()); got != 1 {
			t.Fatalf("Expected 1 saved plan, got %d", got)
		}
		if !s.Dirty() {
			t.Error("Expected store dirty after save")
		}
	})

	t.Run("LoadIsDeepCopy", func(t *testing.T) {
		s.ClearCurrentPlan()
		s.SetTheme(model.ThemeLazy)
		loaded, ok := s.LoadPlan(plan.ID)
		if !ok {
			t.Fatal("Expected plan to load")
		}
		if s.SelectedTheme() != model.ThemeSocial {
			t.Errorf("Expected selected theme to follow loaded plan, got %s", s.SelectedTheme())
		}
		if err := s.UpdateActivityTime("reading", model.Sunday, "16:00"); err != nil {
			t.Fatal(err)
		}
		saved, _ := s.SavedPlan(plan.ID)
		if saved.Sunday[0].StartTime != "14:00" {
			t.Errorf("Expected saved plan untouched by edits, got %s", saved.Sunday[0].StartTime)
		}
		if loaded.Sunday[0].StartTime != "14:00" {
			t.Errorf("Expected loaded copy 14:00, got %s", loaded.Sunday[0].StartTime)
		}
	})

	t.Run("Duplicate", func(t *testing.T) {
		s.UpdatePlanMood(plan.ID, model.UserMoodExcited, &model.MoodEntry{Notes: "great"})
		dup, ok := s.DuplicatePlan(plan.ID)
		if !ok {
			t.Fatal("Expected duplicate")
		}
		if dup.ID == plan.ID || dup.Name != plan.Name+" (Copy)" {
			t.Errorf("Expected fresh id and (Copy) suffix, got %s %q", dup.ID, dup.Name)
		}
		if len(dup.MoodJournal) != 0 {
			t.Errorf("Expected empty journal, got %d entries", len(dup.MoodJournal))
		}
		if cur, _ := s.CurrentPlan(); cur.ID != plan.ID {
			t.Error("Expected duplicate not to become current")
		}
		if len(s.SavedPlans()) != 2 {
			t.Errorf("Expected 2 saved plans, got %d", len(s.SavedPlans()))
		}
	})

	t.Run("DeleteClearsCurrent", func(t *testing.T) {
		if !s.DeletePlan(plan.ID) {
			t.Fatal("Expected delete to succeed")
		}
		if _, ok := s.CurrentPlan(); ok {
			t.Error("Expected current plan cleared")
		}
		if s.DeletePlan(plan.ID) {
			t.Error("Expected second delete to report not found")
		}
	})
}

func TestUpdatePlanAppliesToBothCopies(t *testing.T) {
	s := newTestStore(t, Options{})
	plan, _ := s.CreateNewPlan(model.ThemeLazy)
	s.SavePlan()

	if !s.UpdatePlanName(plan.ID, "Chill") {
		t.Fatal("Expected rename to find the plan")
	}
	colors := &model.ThemeColors{Primary: "#000000", Secondary: "#111111", Accent: "#222222"}
	s.UpdateThemeColors(plan.ID, colors)
	colors.Primary = "#ffffff"
	s.UpdatePlanMood(plan.ID, model.UserMoodTired, &model.MoodEntry{})

	cur, _ := s.CurrentPlan()
	saved, _ := s.SavedPlan(plan.ID)
	for name, p := range map[string]model.WeekendPlan{"current": cur, "saved": saved} {
		if p.Name != "Chill" {
			t.Errorf("Expected %s name Chill, got %q", name, p.Name)
		}
		if p.CustomThemeColors == nil || p.CustomThemeColors.Primary != "#000000" {
			t.Errorf("Expected %s custom colors copied, got %+v", name, p.CustomThemeColors)
		}
		if p.OverallMood != model.UserMoodTired || len(p.MoodJournal) != 1 {
			t.Errorf("Expected %s mood tired with one entry, got %s %d", name, p.OverallMood, len(p.MoodJournal))
		}
	}
	if e := saved.MoodJournal[0]; e.ID == "" || !e.Timestamp.Equal(testNow) || e.Mood != model.UserMoodTired {
		t.Errorf("Expected entry defaults filled in, got %+v", e)
	}

	if s.UpdatePlanName("missing", "x") {
		t.Error("Expected unknown id to report false")
	}
}

func TestImportPlan(t *testing.T) {
	s := newTestStore(t, Options{})
	in := model.WeekendPlan{
		ID:    "foreign",
		Name:  "From a friend",
		Theme: model.ThemeAdventurous,
		Saturday: []model.ScheduledActivity{
			{Activity: reading(), StartTime: "13:00"},
			{Activity: model.Activity{ID: "b", Name: "B", Duration: 30}, StartTime: "08:00"},
		},
	}
	got, err := s.ImportPlan(in)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got.ID == "foreign" || !got.CreatedAt.Equal(testNow) {
		t.Errorf("Expected fresh id and timestamps, got %s %v", got.ID, got.CreatedAt)
	}
	if got.Saturday[0].ID != "b" || got.Saturday[1].EndTime != "15:00" || got.Saturday[1].Day != model.Saturday {
		t.Errorf("Expected normalized days, got %+v", got.Saturday)
	}
	if got.Sunday == nil {
		t.Error("Expected Sunday to be an empty list")
	}
	if cur, _ := s.CurrentPlan(); cur.ID != got.ID {
		t.Error("Expected imported plan to be current")
	}
	if s.SelectedTheme() != model.ThemeAdventurous {
		t.Errorf("Expected selected theme adventurous, got %s", s.SelectedTheme())
	}

	bad := in
	bad.Saturday = []model.ScheduledActivity{{Activity: reading(), StartTime: "25:00"}}
	if _, err := s.ImportPlan(bad); err == nil {
		t.Error("Expected malformed start time to fail the import")
	}
	if len(s.SavedPlans()) != 1 {
		t.Errorf("Expected failed import to leave saved plans alone, got %d", len(s.SavedPlans()))
	}
}

func TestCustomActivities(t *testing.T) {
	cat, err := catalog.Default()
	if err != nil {
		t.Fatal(err)
	}
	s := newTestStore(t, Options{Catalog: cat})

	a, err := s.AddCustomActivity(model.Activity{Name: "Pottery", Category: "crafts", Duration: 90, Icon: "*"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if a.ID != "custom-id-1" || !a.IsCustom {
		t.Errorf("Expected generated custom id, got %+v", a)
	}
	if _, err := s.AddCustomActivity(model.Activity{Name: "Nothing"}); err == nil {
		t.Error("Expected zero duration to be rejected")
	}

	a.Duration = 45
	if _, err := s.AddCustomActivity(a); err != nil {
		t.Fatal(err)
	}
	if list := s.CustomActivities(); len(list) != 1 || list[0].Duration != 45 {
		t.Errorf("Expected replaced custom activity, got %+v", list)
	}

	if got, ok := s.FindActivity(a.ID); !ok || got.Name != "Pottery" {
		t.Errorf("Expected custom lookup, got %+v", got)
	}
	if _, ok := s.FindActivity("reading"); !ok {
		t.Error("Expected catalog fallback")
	}
	if !s.RemoveCustomActivity(a.ID) || s.RemoveCustomActivity(a.ID) {
		t.Error("Expected remove to succeed once")
	}
}

func TestCustomActivityCannotShadowCatalog(t *testing.T) {
	cat, err := catalog.Default()
	if err != nil {
		t.Fatal(err)
	}
	s := newTestStore(t, Options{Catalog: cat})

	_, err = s.AddCustomActivity(model.Activity{ID: "hiking", Name: "Impostor", Category: model.CategoryOutdoor, Duration: 5, Icon: "*"})
	if !errors.Is(err, ErrActivityIDTaken) {
		t.Fatalf("Expected ErrActivityIDTaken, got %v", err)
	}
	if len(s.CustomActivities()) != 0 {
		t.Errorf("Expected no custom activity stored, got %+v", s.CustomActivities())
	}
	got, ok := s.FindActivity("hiking")
	if !ok || got.Name != "Hiking" || got.Duration != 180 || got.IsCustom {
		t.Errorf("Expected catalog hiking, got %+v", got)
	}
}

func TestSubscribe(t *testing.T) {
	s := newTestStore(t, Options{})
	var got []Op
	unsubscribe := s.Subscribe(func(ev Event) {
		// Reading from a callback must not deadlock.
		s.CurrentPlan()
		got = append(got, ev.Op)
	})

	s.CreateNewPlan(model.ThemeLazy)
	s.AddActivityToSchedule(reading(), model.Saturday, "09:00")
	s.SavePlan()
	unsubscribe()
	s.ClearCurrentPlan()

	want := []Op{OpCreatePlan, OpAddActivity, OpSavePlan}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected event %d to be %s, got %s", i, want[i], got[i])
		}
	}
}

func TestRestoreAndFlush(t *testing.T) {
	p := &memPersister{plans: []model.WeekendPlan{
		{ID: "a", Name: "First"},
		{ID: "", Name: "Broken"},
		{ID: "a", Name: "First again"},
		{ID: "b", Name: "Second"},
	}}
	s := newTestStore(t, Options{Persister: p})
	ctx := context.Background()

	if err := s.Restore(ctx); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	saved := s.SavedPlans()
	if len(saved) != 2 || saved[0].Name != "First again" || saved[1].ID != "b" {
		t.Fatalf("Expected deduplicated plans, got %+v", saved)
	}
	if _, ok := s.CurrentPlan(); ok {
		t.Error("Expected no current plan after restore")
	}

	if err := s.Flush(ctx); err != nil || p.saves != 0 {
		t.Fatalf("Expected clean flush to skip the persister, got %d saves, %v", p.saves, err)
	}

	s.DeletePlan("a")
	if err := s.Flush(ctx); err != nil {
		t.Fatal(err)
	}
	if p.saves != 1 || len(p.plans) != 1 || s.Dirty() {
		t.Errorf("Expected one write of one plan, got %d saves, %d plans", p.saves, len(p.plans))
	}

	p.err = errors.New("disk full")
	s.DuplicatePlan("b")
	if err := s.Flush(ctx); !errors.Is(err, p.err) {
		t.Errorf("Expected wrapped persister error, got %v", err)
	}
	if !s.Dirty() {
		t.Error("Expected store to stay dirty after failed flush")
	}
}

func TestConcurrentMutations(t *testing.T) {
	s := newTestStore(t, Options{})
	s.CreateNewPlan(model.ThemeLazy)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a := model.Activity{ID: fmt.Sprintf("a%d", i), Name: "A", Category: model.CategoryFood, Duration: 30, Icon: "*"}
			if _, err := s.AddActivityToSchedule(a, model.Saturday, "09:00"); err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		}(i)
	}
	wg.Wait()

	cur, _ := s.CurrentPlan()
	if len(cur.Saturday) != 20 {
		t.Fatalf("Expected 20 activities, got %d", len(cur.Saturday))
	}
	if cur.Saturday[0].StartTime != "09:00" || cur.Saturday[19].StartTime != "18:30" {
		t.Errorf("Expected packed 09:00..18:30, got %s..%s", cur.Saturday[0].StartTime, cur.Saturday[19].StartTime)
	}
}
