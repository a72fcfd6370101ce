package deck

import (
	"math/rand"
	"time"

	"github.com/verte-zerg/parrot/internal/model"
)

// Picker chooses the next phrase to practice.
type Picker struct {
	rnd *rand.Rand
}

// NewPicker returns a Picker seeded with the current time.
func NewPicker() *Picker {
	return NewPickerWithSeed(time.Now().UnixNano())
}

// NewPickerWithSeed returns a deterministic Picker.
func NewPickerWithSeed(seed int64) *Picker {
	return &Picker{rnd: rand.New(rand.NewSource(seed))}
}

// Weights biases phrases toward low recent scores. A phrase with no recent attempts
// counts as a score of zero.
func Weights(phrases []Phrase, aggs []model.PhraseAggregate, factor float64) []float64 {
	byTarget := make(map[string]model.PhraseAggregate, len(aggs))
	for _, agg := range aggs {
		byTarget[agg.Target] = agg
	}
	weights := make([]float64, len(phrases))
	for i, p := range phrases {
		avg := 0.0
		if agg, ok := byTarget[p.Text]; ok && agg.Attempts > 0 {
			avg = float64(agg.ScoreSum) / float64(agg.Attempts)
		}
		weights[i] = 1.0 + factor*(1.0-avg/100.0)
	}
	return weights
}

// Pick selects a phrase. Nil weights pick uniformly. The phrase equal to skip is avoided
// whenever another phrase exists.
func (p *Picker) Pick(phrases []Phrase, weights []float64, skip string) Phrase {
	if len(phrases) == 0 {
		return Phrase{}
	}
	if len(phrases) == 1 {
		return phrases[0]
	}

	total := 0.0
	adjusted := make([]float64, len(phrases))
	for i, ph := range phrases {
		w := 1.0
		if weights != nil && i < len(weights) {
			w = weights[i]
		}
		if w < 0 || ph.Text == skip {
			w = 0
		}
		adjusted[i] = w
		total += w
	}
	if total == 0 {
		for i, ph := range phrases {
			if ph.Text != skip {
				return phrases[i]
			}
		}
		return phrases[0]
	}

	r := p.rnd.Float64() * total
	acc := 0.0
	for i, w := range adjusted {
		if w == 0 {
			continue
		}
		acc += w
		if r <= acc {
			return phrases[i]
		}
	}
	for i := len(adjusted) - 1; i >= 0; i-- {
		if adjusted[i] > 0 {
			return phrases[i]
		}
	}
	return phrases[0]
}
