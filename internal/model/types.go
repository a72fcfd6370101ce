// Package model defines shared data structures.
package model

import "time"

// Config defines practice settings.
type Config struct {
	Lang           string
	DeckPath       string
	SilenceTimeout time.Duration
	HardCap        time.Duration
	FocusWeak      bool
	WeakWindow     int
	WeakFactor     float64
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Lang        string
	Since       *time.Time
	Last        int
	CurveWindow int
}

// Thresholds holds the per-language gates used by the scoring engine.
type Thresholds struct {
	MinSpeechSeconds      float64
	MinRms                float64
	MinZcrPerSec          float64
	MaxZcrPerSec          float64
	MinConfidence         float64
	MinCharSimilarity     float64
	MinWordF1             float64
	MinLanguageLikelihood float64
	SecondsPerCharacter   float64
	// DurationTolerance is the accepted [low, high] range of actual/expected duration.
	DurationTolerance [2]float64
}

// Weights are the score contributions of each similarity signal.
type Weights struct {
	Char       float64
	Word       float64
	Lang       float64
	Confidence float64
	// ConfidenceFloor replaces lower or missing recognizer confidence in the score.
	ConfidenceFloor float64
}

// DefaultWeights returns the stock scoring weights.
func DefaultWeights() Weights {
	return Weights{
		Char:            60,
		Word:            35,
		Lang:            20,
		Confidence:      15,
		ConfidenceFloor: 0.55,
	}
}

// Reason is a failure reason code attached to an evaluation.
type Reason string

const (
	ReasonSpeechQuality Reason = "speech-quality"
	ReasonNotTargetLang Reason = "not-target-lang"
	ReasonLowCharSim    Reason = "low-char-sim"
	ReasonLowWordF1     Reason = "low-word-f1"
	ReasonLowConfidence Reason = "low-confidence"
)

// AudioMetrics summarizes a captured audio buffer.
type AudioMetrics struct {
	Duration      float64 `json:"duration"`
	Rms           float64 `json:"rms"`
	ZeroCrossings int     `json:"zeroCrossings"`
	SampleRate    int     `json:"sampleRate"`
}

// SpeechQuality is the breakdown of the audio gate.
type SpeechQuality struct {
	Duration         float64 `json:"duration"`
	ExpectedDuration float64 `json:"expectedDuration"`
	DurationRatio    float64 `json:"durationRatio"`
	ZcrPerSec        float64 `json:"zcrPerSec"`
	Rms              float64 `json:"rms"`
	Pass             bool    `json:"pass"`
}

// Evaluation is the verdict for one attempt.
type Evaluation struct {
	Pass               bool           `json:"pass"`
	Score              int            `json:"score"`
	Reasons            []Reason       `json:"reasons"`
	CharSimilarity     float64        `json:"charSimilarity"`
	WordF1             float64        `json:"wordF1"`
	Precision          float64        `json:"precision"`
	Recall             float64        `json:"recall"`
	LanguageLikelihood float64        `json:"languageLikelihood"`
	Confidence         float64        `json:"confidence"`
	SpeechQuality      *SpeechQuality `json:"speechQuality,omitempty"`
}

// HasReason reports whether the evaluation carries the given reason.
func (e Evaluation) HasReason(r Reason) bool {
	for _, got := range e.Reasons {
		if got == r {
			return true
		}
	}
	return false
}

// Method names the path that produced an evaluation.
type Method string

const (
	MethodLiveSpeech    Method = "live-speech-api"
	MethodAudioFallback Method = "audio-fallback"
)

// Trigger names what ended a recording session.
type Trigger string

const (
	TriggerSilence          Trigger = "silence"
	TriggerHardCap          Trigger = "hard-cap"
	TriggerStop             Trigger = "stop"
	TriggerRecognizerError  Trigger = "recognizer-error"
	TriggerCaptureEnded     Trigger = "capture-ended"
	TriggerContextCancelled Trigger = "context"
)

// Outcome is delivered exactly once per recording session.
type Outcome struct {
	SessionID      string
	Target         string
	Lang           string
	Evaluation     *Evaluation
	RecognizedText string
	Confidence     float64
	AudioMetrics   *AudioMetrics
	Method         Method
	Trigger        Trigger
	StartedAt      time.Time
	EndedAt        time.Time
	Err            error
}

// Attempt is a stored practice attempt.
type Attempt struct {
	ID             int64
	SessionID      string
	StartedAt      time.Time
	EndedAt        time.Time
	Lang           string
	Target         string
	RecognizedText string
	Method         Method
	Trigger        Trigger
	Pass           bool
	Score          int
	Reasons        []Reason
	CharSimilarity float64
	WordF1         float64
	LangLikelihood float64
	Confidence     float64
	Error          string
}

// NewAttempt flattens an outcome into the stored attempt shape.
func NewAttempt(o Outcome) Attempt {
	a := Attempt{
		SessionID:      o.SessionID,
		StartedAt:      o.StartedAt,
		EndedAt:        o.EndedAt,
		Lang:           o.Lang,
		Target:         o.Target,
		RecognizedText: o.RecognizedText,
		Method:         o.Method,
		Trigger:        o.Trigger,
		Confidence:     o.Confidence,
	}
	if o.Evaluation != nil {
		a.Pass = o.Evaluation.Pass
		a.Score = o.Evaluation.Score
		a.Reasons = o.Evaluation.Reasons
		a.CharSimilarity = o.Evaluation.CharSimilarity
		a.WordF1 = o.Evaluation.WordF1
		a.LangLikelihood = o.Evaluation.LanguageLikelihood
	}
	if o.Err != nil {
		a.Error = o.Err.Error()
	}
	return a
}

// AttemptAggregate summarizes an attempt for reporting.
type AttemptAggregate struct {
	AttemptID int64
	EndedAt   time.Time
	Target    string
	Method    Method
	Pass      bool
	Score     int
	Reasons   []Reason
	Failed    bool
}

// PhraseAggregate aggregates attempts at the same target phrase.
type PhraseAggregate struct {
	Target   string
	Attempts int
	Passes   int
	ScoreSum int
}
