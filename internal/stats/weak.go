package stats

import (
	"sort"

	"github.com/verte-zerg/parrot/internal/model"
)

// WeakestPhrases returns up to n phrases ordered by lowest average score.
func WeakestPhrases(aggs []model.PhraseAggregate, n int) []model.PhraseAggregate {
	candidates := make([]model.PhraseAggregate, 0, len(aggs))
	for _, agg := range aggs {
		if agg.Attempts > 0 {
			candidates = append(candidates, agg)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		ai := averageScore(candidates[i])
		aj := averageScore(candidates[j])
		if ai == aj {
			return candidates[i].Target < candidates[j].Target
		}
		return ai < aj
	})
	if n > 0 && n < len(candidates) {
		candidates = candidates[:n]
	}
	return candidates
}

func averageScore(agg model.PhraseAggregate) float64 {
	if agg.Attempts == 0 {
		return 0
	}
	return float64(agg.ScoreSum) / float64(agg.Attempts)
}
