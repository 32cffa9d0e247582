package model

// CategoryCounts counts scheduled activities per category across both days.
// Custom categories are counted too.
func (p *WeekendPlan) CategoryCounts() map[Category]int {
	out := make(map[Category]int)
	for _, day := range Days {
		for _, a := range p.Activities(day) {
			out[a.Category]++
		}
	}
	return out
}

// MoodCounts counts scheduled activities per activity mood. Activities
// without a mood are left out.
func (p *WeekendPlan) MoodCounts() map[Mood]int {
	out := make(map[Mood]int)
	for _, day := range Days {
		for _, a := range p.Activities(day) {
			if a.Mood != "" {
				out[a.Mood]++
			}
		}
	}
	return out
}

// BalanceScore rates category variety from 0 to 100: the number of distinct
// categories scheduled over the number of predefined ones, capped at 100.
func (p *WeekendPlan) BalanceScore() int {
	return min(100, len(p.CategoryCounts())*100/len(Categories))
}

// LeadingMood is the mood of the first scheduled activity that has one,
// Saturday first, or "" when none does.
func (p *WeekendPlan) LeadingMood() Mood {
	for _, day := range Days {
		for _, a := range p.Activities(day) {
			if a.Mood != "" {
				return a.Mood
			}
		}
	}
	return ""
}
