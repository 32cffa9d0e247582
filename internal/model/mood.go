package model

// MoodStats summarises a plan's mood journal.
type MoodStats struct {
	TotalEntries int              `json:"totalEntries"`
	DominantMood UserMood         `json:"dominantMood,omitempty"`
	Counts       map[UserMood]int `json:"counts"`
}

// MoodStats counts journal entries per mood. The dominant mood is the most
// frequent one; on a tie the mood that reached the count first wins.
func (p *WeekendPlan) MoodStats() MoodStats {
	stats := MoodStats{Counts: make(map[UserMood]int)}
	best := 0
	for _, e := range p.MoodJournal {
		stats.TotalEntries++
		stats.Counts[e.Mood]++
		if n := stats.Counts[e.Mood]; n > best {
			best = n
			stats.DominantMood = e.Mood
		}
	}
	return stats
}

// RecentMoods returns up to n journal entries, newest first.
func (p *WeekendPlan) RecentMoods(n int) []MoodEntry {
	if n <= 0 || len(p.MoodJournal) == 0 {
		return nil
	}
	if n > len(p.MoodJournal) {
		n = len(p.MoodJournal)
	}
	out := make([]MoodEntry, 0, n)
	for i := len(p.MoodJournal) - 1; i >= len(p.MoodJournal)-n; i-- {
		out = append(out, p.MoodJournal[i])
	}
	return out
}
