package stats

import (
	"context"
	"io"

	"github.com/verte-zerg/parrot/internal/model"
	"github.com/verte-zerg/parrot/internal/store"
)

const weakestPhrases = 8

// Report contains precomputed data for stats rendering.
type Report struct {
	Attempts []model.AttemptAggregate
	Phrases  []model.PhraseAggregate
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	attempts, err := st.ListAttempts(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	phrases, err := st.GetPhraseAggregates(ctx, len(attempts), cfg.Lang)
	if err != nil {
		return Report{}, err
	}
	return Report{Attempts: attempts, Phrases: phrases}, nil
}

// Render writes every report section.
func (r Report) Render(w io.Writer, curveWindow, totalWidth int, useColor bool) error {
	if err := RenderSummary(w, r.Attempts); err != nil {
		return err
	}
	if len(r.Attempts) == 0 {
		return nil
	}
	if err := RenderReasonTable(w, r.Attempts); err != nil {
		return err
	}
	if err := RenderWeakestTable(w, r.Phrases, weakestPhrases); err != nil {
		return err
	}
	return RenderScoreCurve(w, r.Attempts, curveWindow, totalWidth, 0, useColor)
}
