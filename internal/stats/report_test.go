package stats

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/parrot/internal/model"
	"github.com/verte-zerg/parrot/internal/store"
)

func TestBuildReport(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "parrot.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	targets := []string{"hola", "gracias", "hola"}
	for i, target := range targets {
		end := time.Unix(0, 0).UTC().Add(time.Duration(i) * time.Minute)
		attempt := model.Attempt{
			SessionID: "s",
			StartedAt: end.Add(-2 * time.Second),
			EndedAt:   end,
			Lang:      "es",
			Target:    target,
			Method:    model.MethodLiveSpeech,
			Trigger:   model.TriggerSilence,
			Pass:      i > 0,
			Score:     30 + i*30,
		}
		if _, err := st.InsertAttempt(ctx, attempt); err != nil {
			t.Fatalf("insert attempt: %v", err)
		}
	}

	report, err := BuildReport(ctx, st, model.StatsConfig{Lang: "es", Last: 2, CurveWindow: 2})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Attempts) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(report.Attempts))
	}
	if report.Attempts[0].Target != "gracias" || report.Attempts[1].Score != 90 {
		t.Fatalf("unexpected attempts: %+v", report.Attempts)
	}
	if len(report.Phrases) != 2 {
		t.Fatalf("expected phrase aggregates for the window, got %+v", report.Phrases)
	}

	var buf bytes.Buffer
	if err := report.Render(&buf, 2, 60, false); err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"Summary", "Weakest Phrases", "Score (moving average, window 2)"} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("expected %q in report:\n%s", want, buf.String())
		}
	}
}
