// internal/stats/achievements.go
//
// One-time milestones unlocked from statistics thresholds.
// Predicates are checked after every completed round, in catalog order, and
// an achievement already present in Statistics.Achievements never fires again.
package stats

import "github.com/samber/lo"

// Achievement describes a milestone.
type Achievement struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Icon  string `json:"icon"`

	unlocked func(*Statistics) bool
}

// Catalog lists every achievement in evaluation order.
var Catalog = []Achievement{
	{ID: "first_win", Title: "First Win!", Icon: "🏆", unlocked: func(s *Statistics) bool { return s.Played >= 1 && s.Streak >= 1 }},
	{ID: "streak_3", Title: "3 in a Row", Icon: "🔥", unlocked: func(s *Statistics) bool { return s.Streak >= 3 }},
	{ID: "streak_7", Title: "Unstoppable (7)", Icon: "🚀", unlocked: func(s *Statistics) bool { return s.Streak >= 7 }},
	{ID: "played_10", Title: "Dedicated Student", Icon: "📚", unlocked: func(s *Statistics) bool { return s.Played >= 10 }},
}

// Lookup finds a catalog entry by id.
func Lookup(id string) (Achievement, bool) {
	return lo.Find(Catalog, func(a Achievement) bool { return a.ID == id })
}

// Has reports whether id is already unlocked.
func (s *Statistics) Has(id string) bool {
	return lo.Contains(s.Achievements, id)
}

// Unlock records every newly satisfied achievement and returns them in
// unlock order. Already unlocked ones are skipped.
func (s *Statistics) Unlock() []Achievement {
	s.ensure()
	fresh := lo.Filter(Catalog, func(a Achievement, _ int) bool {
		return !s.Has(a.ID) && a.unlocked(s)
	})
	for _, a := range fresh {
		s.Achievements = append(s.Achievements, a.ID)
	}
	return fresh
}
