// Package scoring turns a recognized transcript or raw audio metrics into a pass/fail verdict.
package scoring

import (
	"errors"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/verte-zerg/parrot/internal/langdetect"
	"github.com/verte-zerg/parrot/internal/model"
	"github.com/verte-zerg/parrot/internal/textsim"
	"github.com/verte-zerg/parrot/internal/thresholds"
)

// ErrNoTarget is returned when there is no target phrase to score against.
var ErrNoTarget = errors.New("no-target: target text is empty")

// Input is one attempt to score.
type Input struct {
	Recognized string
	// Confidence is the recognizer confidence; 0 means unknown.
	Confidence float64
	// Audio is set on the audio-fallback path.
	Audio  *model.AudioMetrics
	Target string
	Lang   string
}

// Engine scores attempts against per-language thresholds.
type Engine struct {
	table   *thresholds.Table
	weights model.Weights
}

// New builds an Engine. A nil table uses the builtin thresholds.
func New(table *thresholds.Table, weights model.Weights) *Engine {
	if table == nil {
		table = thresholds.MustBuiltin()
	}
	return &Engine{table: table, weights: weights}
}

// Default returns an Engine with builtin thresholds and default weights.
func Default() *Engine {
	return New(nil, model.DefaultWeights())
}

// Thresholds returns the table the engine scores against.
func (e *Engine) Thresholds() *thresholds.Table {
	return e.table
}

// Evaluate produces the verdict for in. Reasons are ordered by check sequence.
func (e *Engine) Evaluate(in Input) (model.Evaluation, error) {
	if strings.TrimSpace(in.Target) == "" {
		return model.Evaluation{}, ErrNoTarget
	}
	cfg := e.table.Lookup(in.Lang)
	ev := model.Evaluation{
		Reasons:    []model.Reason{},
		Confidence: in.Confidence,
	}

	if in.Audio != nil {
		sq := speechQuality(*in.Audio, in.Target, cfg)
		ev.SpeechQuality = &sq
		if !sq.Pass {
			ev.Reasons = append(ev.Reasons, model.ReasonSpeechQuality)
		}
	}

	recognizedWords := textsim.Tokenize(in.Recognized)
	targetWords := textsim.Tokenize(in.Target)

	ev.LanguageLikelihood = langdetect.Likelihood(recognizedWords, in.Lang)
	if ev.LanguageLikelihood < cfg.MinLanguageLikelihood {
		ev.Reasons = append(ev.Reasons, model.ReasonNotTargetLang)
	}

	ev.CharSimilarity = textsim.CharSimilarity(in.Recognized, in.Target)
	if ev.CharSimilarity < cfg.MinCharSimilarity {
		ev.Reasons = append(ev.Reasons, model.ReasonLowCharSim)
	}

	prf := textsim.WordPRF(recognizedWords, targetWords, langdetect.Stopwords(in.Lang))
	ev.WordF1 = prf.F1
	ev.Precision = prf.Precision
	ev.Recall = prf.Recall
	if ev.WordF1 < cfg.MinWordF1 {
		ev.Reasons = append(ev.Reasons, model.ReasonLowWordF1)
	}

	if in.Confidence != 0 && in.Confidence < cfg.MinConfidence {
		ev.Reasons = append(ev.Reasons, model.ReasonLowConfidence)
	}

	ev.Pass = len(ev.Reasons) == 0
	ev.Score = e.score(ev.CharSimilarity, ev.WordF1, ev.LanguageLikelihood, in.Confidence)
	return ev, nil
}

func (e *Engine) score(charSim, f1, langLikelihood, confidence float64) int {
	w := e.weights
	raw := charSim*w.Char + f1*w.Word + langLikelihood*w.Lang + math.Max(confidence, w.ConfidenceFloor)*w.Confidence
	return int(math.Max(0, math.Min(100, math.Round(raw))))
}

func speechQuality(m model.AudioMetrics, target string, cfg model.Thresholds) model.SpeechQuality {
	expected := math.Max(cfg.MinSpeechSeconds, float64(utf8.RuneCountInString(target))*cfg.SecondsPerCharacter)
	sq := model.SpeechQuality{
		Duration:         m.Duration,
		ExpectedDuration: expected,
		Rms:              m.Rms,
	}
	if m.Duration > 0 {
		sq.ZcrPerSec = float64(m.ZeroCrossings) / m.Duration
	}
	if expected > 0 {
		sq.DurationRatio = m.Duration / expected
	}
	sq.Pass = m.Duration > 0 &&
		m.Duration >= cfg.MinSpeechSeconds &&
		m.Rms >= cfg.MinRms &&
		sq.ZcrPerSec >= cfg.MinZcrPerSec &&
		sq.ZcrPerSec <= cfg.MaxZcrPerSec &&
		sq.DurationRatio >= cfg.DurationTolerance[0] &&
		sq.DurationRatio <= cfg.DurationTolerance[1]
	return sq
}
