package schedule

import (
	"sort"

	"weekendplan/internal/model"
	"weekendplan/internal/timeutil"
)

// DayStart is where an empty day is suggested to begin.
const DayStart = "09:00"

// Gap is a free slot worth filling.
type Gap struct {
	Day    model.Day `json:"day"`
	Time   string    `json:"time"`
	Reason string    `json:"reason"`
}

// TimeGaps lists, per day, the free time between consecutive activities, or
// DayStart for a day with nothing planned. Each gap starts where the
// earlier activity ends. limit <= 0 returns every gap.
func TimeGaps(plan model.WeekendPlan, limit int) ([]Gap, error) {
	var gaps []Gap
	for _, day := range model.Days {
		list := plan.Activities(day)
		if len(list) == 0 {
			gaps = append(gaps, Gap{Day: day, Time: DayStart, Reason: "Start your " + day.Label()})
			continue
		}

		type span struct{ start, end int }
		spans := make([]span, 0, len(list))
		for _, a := range list {
			s, err := timeutil.TimeToMinutes(a.StartTime)
			if err != nil {
				return nil, err
			}
			spans = append(spans, span{start: s, end: s + a.Duration})
		}
		sort.SliceStable(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

		for i := 0; i+1 < len(spans); i++ {
			if spans[i].end < spans[i+1].start {
				gaps = append(gaps, Gap{Day: day, Time: timeutil.MinutesToTime(spans[i].end), Reason: "Fill the gap"})
			}
		}
	}
	if limit > 0 && len(gaps) > limit {
		gaps = gaps[:limit]
	}
	return gaps, nil
}
