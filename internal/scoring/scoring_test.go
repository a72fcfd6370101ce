package scoring

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/verte-zerg/parrot/internal/model"
)

func TestEvaluatePerfectMatch(t *testing.T) {
	ev, err := Default().Evaluate(Input{
		Recognized: "Buenos días, ¿cómo estás?",
		Confidence: 1.0,
		Target:     "Buenos días, ¿cómo estás?",
		Lang:       "es",
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !ev.Pass {
		t.Fatalf("expected pass, got reasons %v", ev.Reasons)
	}
	if ev.Score < 95 {
		t.Fatalf("expected score >= 95, got %d", ev.Score)
	}
	if ev.CharSimilarity != 1 || ev.WordF1 != 1 {
		t.Fatalf("expected perfect similarity, got char=%f f1=%f", ev.CharSimilarity, ev.WordF1)
	}
	if ev.SpeechQuality != nil {
		t.Fatalf("expected no speech quality breakdown without audio")
	}
}

func TestEvaluateStopwordOnlyPhrases(t *testing.T) {
	cases := []struct {
		lang   string
		target string
	}{
		{"es", "No"},
		{"es", "Sí"},
		{"es", "Yo"},
		{"en", "It is"},
	}
	for _, tc := range cases {
		ev, err := Default().Evaluate(Input{Recognized: tc.target, Confidence: 1, Target: tc.target, Lang: tc.lang})
		if err != nil {
			t.Fatalf("evaluate %q: %v", tc.target, err)
		}
		if !ev.Pass {
			t.Fatalf("expected %q (%s) to pass, got reasons %v", tc.target, tc.lang, ev.Reasons)
		}
		if ev.WordF1 != 1 {
			t.Fatalf("expected word F1 1 for %q, got %f", tc.target, ev.WordF1)
		}
	}

	ev, err := Default().Evaluate(Input{Recognized: "Sí", Confidence: 1, Target: "No", Lang: "es"})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if ev.Pass || ev.WordF1 != 0 {
		t.Fatalf("expected a different stopword to fail, got pass=%v f1=%f", ev.Pass, ev.WordF1)
	}
}

func TestEvaluateQuietAudioFailsSpeechQuality(t *testing.T) {
	ev, err := Default().Evaluate(Input{
		Recognized: "hola amigo",
		Confidence: 0.9,
		Audio:      &model.AudioMetrics{Duration: 1.0, Rms: 0.001, ZeroCrossings: 500, SampleRate: 16000},
		Target:     "hola amigo",
		Lang:       "es",
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if ev.Pass {
		t.Fatalf("expected failure for quiet audio")
	}
	if !ev.HasReason(model.ReasonSpeechQuality) {
		t.Fatalf("expected speech-quality reason, got %v", ev.Reasons)
	}
	if ev.SpeechQuality == nil || ev.SpeechQuality.Pass {
		t.Fatalf("expected failing speech quality breakdown")
	}
}

func TestEvaluateAudioGatePasses(t *testing.T) {
	ev, err := Default().Evaluate(Input{
		Recognized: "hola amigo",
		Audio:      &model.AudioMetrics{Duration: 1.0, Rms: 0.2, ZeroCrossings: 800, SampleRate: 16000},
		Target:     "hola amigo",
		Lang:       "es",
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if ev.SpeechQuality == nil || !ev.SpeechQuality.Pass {
		t.Fatalf("expected speech quality to pass, got %+v", ev.SpeechQuality)
	}
	if math.Abs(ev.SpeechQuality.ExpectedDuration-0.8) > 1e-9 {
		t.Fatalf("expected 0.8s expected duration, got %f", ev.SpeechQuality.ExpectedDuration)
	}
}

func TestEvaluateDurationOutsideTolerance(t *testing.T) {
	ev, err := Default().Evaluate(Input{
		Recognized: "hola",
		Audio:      &model.AudioMetrics{Duration: 20, Rms: 0.2, ZeroCrossings: 16000, SampleRate: 16000},
		Target:     "hola",
		Lang:       "es",
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !ev.HasReason(model.ReasonSpeechQuality) {
		t.Fatalf("expected speech-quality for a 20s attempt at a short phrase")
	}
}

func TestEvaluateEmptyTranscript(t *testing.T) {
	ev, err := Default().Evaluate(Input{Target: "hola mundo", Lang: "es"})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if ev.LanguageLikelihood != 0 {
		t.Fatalf("expected zero language likelihood, got %f", ev.LanguageLikelihood)
	}
	if ev.Pass {
		t.Fatalf("expected failure for empty transcript")
	}
	if !ev.HasReason(model.ReasonNotTargetLang) || !ev.HasReason(model.ReasonLowWordF1) {
		t.Fatalf("expected not-target-lang and low-word-f1, got %v", ev.Reasons)
	}
	if ev.HasReason(model.ReasonLowConfidence) {
		t.Fatalf("expected unknown confidence to be ignored")
	}
}

func TestEvaluateReasonOrder(t *testing.T) {
	ev, err := Default().Evaluate(Input{
		Recognized: "privet mir",
		Confidence: 0.2,
		Target:     "привет мир",
		Lang:       "ru",
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	want := []model.Reason{
		model.ReasonNotTargetLang,
		model.ReasonLowCharSim,
		model.ReasonLowWordF1,
		model.ReasonLowConfidence,
	}
	if !reflect.DeepEqual(ev.Reasons, want) {
		t.Fatalf("expected reasons %v, got %v", want, ev.Reasons)
	}
}

func TestEvaluateConfidenceFloor(t *testing.T) {
	engine := New(nil, model.Weights{Confidence: 100, ConfidenceFloor: 0.55})
	ev, err := engine.Evaluate(Input{Recognized: "hola", Target: "hola", Lang: "es"})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if ev.Score != 55 {
		t.Fatalf("expected floored confidence score 55, got %d", ev.Score)
	}
	ev, err = engine.Evaluate(Input{Recognized: "hola", Confidence: 0.9, Target: "hola", Lang: "es"})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if ev.Score != 90 {
		t.Fatalf("expected confidence score 90, got %d", ev.Score)
	}
}

func TestEvaluateScoreClamped(t *testing.T) {
	engine := New(nil, model.Weights{Char: -500, ConfidenceFloor: 0.55})
	ev, err := engine.Evaluate(Input{Recognized: "hola", Target: "hola", Lang: "es"})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if ev.Score != 0 {
		t.Fatalf("expected clamped score 0, got %d", ev.Score)
	}
}

func TestEvaluateNoTarget(t *testing.T) {
	_, err := Default().Evaluate(Input{Recognized: "hola", Target: "   "})
	if !errors.Is(err, ErrNoTarget) {
		t.Fatalf("expected ErrNoTarget, got %v", err)
	}
}
