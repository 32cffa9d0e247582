package schedule

import (
	"errors"
	"testing"

	"weekendplan/internal/model"
	"weekendplan/internal/timeutil"
)

func placed(id string, duration int, start string) model.ScheduledActivity {
	return model.ScheduledActivity{Activity: activity(id, duration), StartTime: start}
}

func TestTimeGaps(t *testing.T) {
	t.Run("empty days start at nine", func(t *testing.T) {
		gaps, err := TimeGaps(*emptyPlan(), 0)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		want := []Gap{
			{Day: model.Saturday, Time: "09:00", Reason: "Start your Saturday"},
			{Day: model.Sunday, Time: "09:00", Reason: "Start your Sunday"},
		}
		if len(gaps) != len(want) || gaps[0] != want[0] || gaps[1] != want[1] {
			t.Errorf("Expected %+v, got %+v", want, gaps)
		}
	})

	t.Run("gaps between activities", func(t *testing.T) {
		plan := emptyPlan()
		plan.Saturday = []model.ScheduledActivity{
			placed("b", 60, "12:00"),
			placed("a", 120, "09:00"),
			placed("c", 30, "13:00"),
		}
		// Runs past midnight; the wrapped end must not read as a gap.
		plan.Sunday = []model.ScheduledActivity{placed("late", 180, "22:00"), placed("early", 60, "08:00")}

		gaps, err := TimeGaps(*plan, 0)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		want := []Gap{
			{Day: model.Saturday, Time: "11:00", Reason: "Fill the gap"},
			{Day: model.Sunday, Time: "09:00", Reason: "Fill the gap"},
		}
		if len(gaps) != len(want) || gaps[0] != want[0] || gaps[1] != want[1] {
			t.Errorf("Expected %+v, got %+v", want, gaps)
		}
	})

	t.Run("limit", func(t *testing.T) {
		gaps, _ := TimeGaps(*emptyPlan(), 1)
		if len(gaps) != 1 || gaps[0].Day != model.Saturday {
			t.Errorf("Expected only the Saturday gap, got %+v", gaps)
		}
	})

	t.Run("malformed time", func(t *testing.T) {
		plan := emptyPlan()
		plan.Saturday = []model.ScheduledActivity{placed("a", 60, "9:00")}
		if _, err := TimeGaps(*plan, 0); !errors.Is(err, timeutil.ErrInvalidTimeFormat) {
			t.Errorf("Expected ErrInvalidTimeFormat, got %v", err)
		}
	})
}
