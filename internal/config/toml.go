// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/parrot/internal/model"
	"github.com/verte-zerg/parrot/internal/thresholds"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice   PracticeConfig             `toml:"practice"`
	Scoring    ScoringConfig              `toml:"scoring"`
	Thresholds map[string]ThresholdConfig `toml:"thresholds"`
	Recognizer RecognizerConfig           `toml:"recognizer"`
	Log        LogConfig                  `toml:"log"`
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	Lang           *string  `toml:"lang"`
	Deck           *string  `toml:"deck"`
	SilenceTimeout *string  `toml:"silence-timeout"`
	HardCap        *string  `toml:"hard-cap"`
	FocusWeak      *bool    `toml:"focus-weak"`
	WeakWindow     *int     `toml:"weak-window"`
	WeakFactor     *float64 `toml:"weak-factor"`
}

// ScoringConfig overrides score weights.
type ScoringConfig struct {
	Char            *float64 `toml:"char"`
	Word            *float64 `toml:"word"`
	Lang            *float64 `toml:"lang"`
	Confidence      *float64 `toml:"confidence"`
	ConfidenceFloor *float64 `toml:"confidence-floor"`
}

// ThresholdConfig overrides one language's thresholds. Unset fields keep the builtin value.
type ThresholdConfig struct {
	MinSpeechSeconds      *float64  `toml:"min-speech-seconds"`
	MinRms                *float64  `toml:"min-rms"`
	MinZcrPerSec          *float64  `toml:"min-zcr-per-sec"`
	MaxZcrPerSec          *float64  `toml:"max-zcr-per-sec"`
	MinConfidence         *float64  `toml:"min-confidence"`
	MinCharSimilarity     *float64  `toml:"min-char-similarity"`
	MinWordF1             *float64  `toml:"min-word-f1"`
	MinLanguageLikelihood *float64  `toml:"min-language-likelihood"`
	SecondsPerCharacter   *float64  `toml:"seconds-per-character"`
	DurationTolerance     []float64 `toml:"duration-tolerance"`
}

// RecognizerConfig maps speech recognizer settings.
type RecognizerConfig struct {
	Models     map[string]string `toml:"models"`
	SampleRate *int              `toml:"sample-rate"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Weights returns the default weights with any [scoring] overrides applied.
func (c FileConfig) Weights() (model.Weights, error) {
	w := model.DefaultWeights()
	s := c.Scoring
	setFloat(&w.Char, s.Char)
	setFloat(&w.Word, s.Word)
	setFloat(&w.Lang, s.Lang)
	setFloat(&w.Confidence, s.Confidence)
	setFloat(&w.ConfidenceFloor, s.ConfidenceFloor)
	if w.ConfidenceFloor < 0 || w.ConfidenceFloor > 1 {
		return model.Weights{}, fmt.Errorf("scoring.confidence-floor must be between 0 and 1")
	}
	return w, nil
}

// ThresholdTable merges [thresholds.<lang>] overrides over the builtin table. A language
// without a builtin entry starts from the default entry.
func (c FileConfig) ThresholdTable() (*thresholds.Table, error) {
	entries := thresholds.Builtin()
	for lang, override := range c.Thresholds {
		base, ok := entries[lang]
		if !ok {
			base = entries[thresholds.DefaultKey]
		}
		merged, err := override.apply(base)
		if err != nil {
			return nil, fmt.Errorf("thresholds.%s: %w", lang, err)
		}
		entries[lang] = merged
	}
	table, err := thresholds.New(entries)
	if err != nil {
		return nil, fmt.Errorf("failed to build thresholds: %w", err)
	}
	return table, nil
}

func (o ThresholdConfig) apply(base model.Thresholds) (model.Thresholds, error) {
	setFloat(&base.MinSpeechSeconds, o.MinSpeechSeconds)
	setFloat(&base.MinRms, o.MinRms)
	setFloat(&base.MinZcrPerSec, o.MinZcrPerSec)
	setFloat(&base.MaxZcrPerSec, o.MaxZcrPerSec)
	setFloat(&base.MinConfidence, o.MinConfidence)
	setFloat(&base.MinCharSimilarity, o.MinCharSimilarity)
	setFloat(&base.MinWordF1, o.MinWordF1)
	setFloat(&base.MinLanguageLikelihood, o.MinLanguageLikelihood)
	setFloat(&base.SecondsPerCharacter, o.SecondsPerCharacter)
	if o.DurationTolerance != nil {
		if len(o.DurationTolerance) != 2 {
			return model.Thresholds{}, fmt.Errorf("duration-tolerance needs exactly two values")
		}
		base.DurationTolerance = [2]float64{o.DurationTolerance[0], o.DurationTolerance[1]}
	}
	return base, nil
}

// ParseDuration parses a duration setting, returning fallback when value is nil.
func ParseDuration(name string, value *string, fallback time.Duration) (time.Duration, error) {
	if value == nil {
		return fallback, nil
	}
	d, err := time.ParseDuration(*value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, *value, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be > 0", name)
	}
	return d, nil
}

func setFloat(target *float64, value *float64) {
	if value != nil {
		*target = *value
	}
}
