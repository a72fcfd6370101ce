// Package thresholds holds the per-language gate configuration for scoring.
package thresholds

import (
	"fmt"
	"sort"

	"github.com/verte-zerg/parrot/internal/langdetect"
	"github.com/verte-zerg/parrot/internal/model"
)

// DefaultKey is the required fallback entry.
const DefaultKey = "default"

// Table maps base language codes to thresholds. It is immutable after New.
type Table struct {
	entries map[string]model.Thresholds
}

// Builtin returns the shipped threshold entries, including the default.
func Builtin() map[string]model.Thresholds {
	base := model.Thresholds{
		MinSpeechSeconds:      0.6,
		MinRms:                0.01,
		MinZcrPerSec:          40,
		MaxZcrPerSec:          6000,
		MinConfidence:         0.5,
		MinCharSimilarity:     0.6,
		MinWordF1:             0.5,
		MinLanguageLikelihood: 0.5,
		SecondsPerCharacter:   0.08,
		DurationTolerance:     [2]float64{0.35, 3.0},
	}
	entries := map[string]model.Thresholds{DefaultKey: base}

	latin := base
	latin.MinCharSimilarity = 0.65
	for _, lang := range []string{"en", "es", "it", "pt", "de"} {
		entries[lang] = latin
	}

	fr := latin
	// Silent letters make French transcripts drift further from the spelling.
	fr.MinCharSimilarity = 0.55
	fr.SecondsPerCharacter = 0.07
	entries["fr"] = fr

	ru := base
	ru.SecondsPerCharacter = 0.09
	entries["ru"] = ru

	cjk := base
	cjk.SecondsPerCharacter = 0.25
	cjk.MinWordF1 = 0.3
	cjk.MinCharSimilarity = 0.5
	entries["ja"] = cjk
	entries["zh"] = cjk

	return entries
}

// New validates entries and builds a Table. A "default" entry is required.
func New(entries map[string]model.Thresholds) (*Table, error) {
	if _, ok := entries[DefaultKey]; !ok {
		return nil, fmt.Errorf("thresholds: %q entry is required", DefaultKey)
	}
	t := &Table{entries: make(map[string]model.Thresholds, len(entries))}
	for lang, th := range entries {
		key := lang
		if key != DefaultKey {
			key = langdetect.BaseLang(lang)
		}
		if key == "" {
			return nil, fmt.Errorf("thresholds: empty language key")
		}
		if err := Validate(th); err != nil {
			return nil, fmt.Errorf("thresholds %q: %w", lang, err)
		}
		t.entries[key] = th
	}
	return t, nil
}

// MustBuiltin returns a Table of the builtin entries.
func MustBuiltin() *Table {
	t, err := New(Builtin())
	if err != nil {
		panic(err)
	}
	return t
}

// Validate rejects out-of-range thresholds.
func Validate(th model.Thresholds) error {
	if th.MinSpeechSeconds < 0 {
		return fmt.Errorf("min-speech-seconds must be >= 0")
	}
	if th.MinRms < 0 {
		return fmt.Errorf("min-rms must be >= 0")
	}
	if th.MinZcrPerSec < 0 || th.MaxZcrPerSec < th.MinZcrPerSec {
		return fmt.Errorf("zcr range [%g, %g] is invalid", th.MinZcrPerSec, th.MaxZcrPerSec)
	}
	for name, v := range map[string]float64{
		"min-confidence":          th.MinConfidence,
		"min-char-similarity":     th.MinCharSimilarity,
		"min-word-f1":             th.MinWordF1,
		"min-language-likelihood": th.MinLanguageLikelihood,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be between 0 and 1", name)
		}
	}
	if th.SecondsPerCharacter <= 0 {
		return fmt.Errorf("seconds-per-character must be > 0")
	}
	if th.DurationTolerance[0] < 0 || th.DurationTolerance[1] < th.DurationTolerance[0] {
		return fmt.Errorf("duration tolerance [%g, %g] is invalid", th.DurationTolerance[0], th.DurationTolerance[1])
	}
	return nil
}

// Lookup returns the thresholds for lang, falling back to the default entry.
func (t *Table) Lookup(lang string) model.Thresholds {
	if th, ok := t.entries[langdetect.BaseLang(lang)]; ok {
		return th
	}
	return t.entries[DefaultKey]
}

// Has reports whether lang has its own entry.
func (t *Table) Has(lang string) bool {
	_, ok := t.entries[langdetect.BaseLang(lang)]
	return ok
}

// Languages lists configured languages, excluding the default entry.
func (t *Table) Languages() []string {
	langs := make([]string, 0, len(t.entries))
	for lang := range t.entries {
		if lang == DefaultKey {
			continue
		}
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}
