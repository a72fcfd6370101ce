package stats

import (
	"sort"

	"github.com/verte-zerg/parrot/internal/model"
)

// ReasonCount is the number of attempts that failed for a reason.
type ReasonCount struct {
	Reason model.Reason
	Count  int
}

// TopReasons returns the n most frequent failure reasons. n <= 0 returns all of them.
func TopReasons(attempts []model.AttemptAggregate, n int) []ReasonCount {
	counts := map[model.Reason]int{}
	for _, a := range attempts {
		if a.Failed {
			continue
		}
		for _, r := range a.Reasons {
			counts[r]++
		}
	}
	out := make([]ReasonCount, 0, len(counts))
	for r, c := range counts {
		out = append(out, ReasonCount{Reason: r, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Reason < out[j].Reason
		}
		return out[i].Count > out[j].Count
	})
	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}
