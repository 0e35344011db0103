package service

import "math"

// SubjectStats is the class-wide outcome of one subject.
type SubjectStats struct {
	Highest int
	Lowest  int
	Average float64
	Ranked  []RankedItem
}

// SubjectStatsTracker accumulates totals of one subject in one class, term and session.
type SubjectStatsTracker struct {
	highest int
	lowest  int
	items   []RankItem
}

// NewSubjectStatsTracker returns an empty tracker.
func NewSubjectStatsTracker() *SubjectStatsTracker {
	return &SubjectStatsTracker{highest: math.MinInt, lowest: math.MaxInt}
}

// Record adds the total of one result.
func (t *SubjectStatsTracker) Record(id string, total int) {
	t.highest = max(t.highest, total)
	t.lowest = min(t.lowest, total)
	t.items = append(t.items, RankItem{ID: id, Score: float64(total)})
}

// Finalize computes extremes, mean and positions. An empty tracker reports zeros.
func (t *SubjectStatsTracker) Finalize() SubjectStats {
	if len(t.items) == 0 {
		return SubjectStats{Ranked: []RankedItem{}}
	}
	sum := 0.0
	for _, item := range t.items {
		sum += item.Score
	}
	return SubjectStats{
		Highest: t.highest,
		Lowest:  t.lowest,
		Average: sum / float64(len(t.items)),
		Ranked:  Rank(t.items),
	}
}
