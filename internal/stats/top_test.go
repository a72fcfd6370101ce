package stats

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/verte-zerg/parrot/internal/model"
)

func sampleAttempts() []model.AttemptAggregate {
	return []model.AttemptAggregate{
		{Target: "hola", Method: model.MethodLiveSpeech, Pass: true, Score: 90},
		{Target: "hola", Method: model.MethodLiveSpeech, Score: 40, Reasons: []model.Reason{model.ReasonLowCharSim, model.ReasonLowWordF1}},
		{Target: "adiós", Method: model.MethodAudioFallback, Score: 20, Reasons: []model.Reason{model.ReasonSpeechQuality, model.ReasonLowWordF1}},
		{Target: "adiós", Method: model.MethodAudioFallback, Failed: true},
	}
}

func TestTopReasons(t *testing.T) {
	top := TopReasons(sampleAttempts(), 2)
	if len(top) != 2 {
		t.Fatalf("expected 2 reasons, got %d", len(top))
	}
	if top[0].Reason != model.ReasonLowWordF1 || top[0].Count != 2 {
		t.Fatalf("expected low-word-f1 first, got %+v", top[0])
	}
	if top[1].Reason != model.ReasonLowCharSim {
		t.Fatalf("expected ties ordered by name, got %+v", top[1])
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleAttempts())
	if s.Attempts != 4 || s.Scored != 3 || s.Failed != 1 || s.Passes != 1 {
		t.Fatalf("unexpected counts %+v", s)
	}
	if s.BestScore != 90 || math.Abs(s.AvgScore-50) > 1e-9 {
		t.Fatalf("unexpected scores %+v", s)
	}
	if s.ByMethod[model.MethodAudioFallback] != 2 {
		t.Fatalf("expected method counts, got %v", s.ByMethod)
	}
	if math.Abs(s.PassRate()-1.0/3.0) > 1e-9 {
		t.Fatalf("unexpected pass rate %f", s.PassRate())
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{10, 20, 30, 40}, 2)
	want := []float64{10, 15, 25, 35}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestWeakestPhrases(t *testing.T) {
	aggs := []model.PhraseAggregate{
		{Target: "b", Attempts: 2, ScoreSum: 100},
		{Target: "a", Attempts: 1, ScoreSum: 50},
		{Target: "c", Attempts: 1, ScoreSum: 10},
		{Target: "d"},
	}
	weak := WeakestPhrases(aggs, 2)
	if len(weak) != 2 || weak[0].Target != "c" || weak[1].Target != "a" {
		t.Fatalf("unexpected order: %+v", weak)
	}
}

func TestRenderSections(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSummary(&buf, sampleAttempts()); err != nil {
		t.Fatalf("summary: %v", err)
	}
	if err := RenderReasonTable(&buf, sampleAttempts()); err != nil {
		t.Fatalf("reasons: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Attempts: 4", "Pass rate: 33.3%", "Failed to score: 1", "audio-fallback: 2", "Failure Reasons", "low-word-f1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := RenderSummary(&buf, nil); err != nil {
		t.Fatalf("empty summary: %v", err)
	}
	if !strings.Contains(buf.String(), "No attempts found.") {
		t.Fatalf("expected empty notice")
	}
}
