// Package vosk streams offline speech recognition results from Vosk models.
//
// The recognizer is compiled with the vosk build tag; without it the package reports
// itself unavailable.
package vosk

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/verte-zerg/parrot/internal/langdetect"
)

var (
	// ErrUnavailable is returned when the binary was built without Vosk support.
	ErrUnavailable = errors.New("vosk recognizer not compiled in (build with -tags vosk)")
	// ErrNoModel is returned when no model directory is configured for a language.
	ErrNoModel = errors.New("no vosk model configured for language")
	// ErrBusy is returned when Start is called while a stream is running.
	ErrBusy = errors.New("vosk recognizer already running")
)

// AudioFeed supplies PCM16 mono chunks at the recognizer sample rate.
type AudioFeed interface {
	Subscribe() <-chan []byte
}

type wordResult struct {
	Conf float64 `json:"conf"`
	Word string  `json:"word"`
}

type result struct {
	Text    string       `json:"text"`
	Partial string       `json:"partial"`
	Result  []wordResult `json:"result"`
}

// parseResult decodes a Vosk JSON result. Confidence is the mean word confidence, 0 when
// the model did not report words.
func parseResult(raw string) (string, float64, error) {
	var res result
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return "", 0, fmt.Errorf("failed to parse vosk result: %w", err)
	}
	text := strings.TrimSpace(res.Text)
	if text == "" {
		text = strings.TrimSpace(res.Partial)
	}
	if len(res.Result) == 0 {
		return text, 0, nil
	}
	sum := 0.0
	for _, w := range res.Result {
		sum += w.Conf
	}
	return text, sum / float64(len(res.Result)), nil
}

// modelPath resolves a model directory for lang, falling back to its base language.
func modelPath(models map[string]string, lang string) (string, error) {
	if path, ok := models[lang]; ok && path != "" {
		return path, nil
	}
	base := langdetect.BaseLang(lang)
	if path, ok := models[base]; ok && path != "" {
		return path, nil
	}
	return "", fmt.Errorf("%w: %s", ErrNoModel, lang)
}
