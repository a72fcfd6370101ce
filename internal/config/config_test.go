package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/parrot/internal/thresholds"
)

const sampleConfig = `
[practice]
lang = "es"
silence-timeout = "1500ms"

[scoring]
char = 50.0
confidence-floor = 0.4

[thresholds.es]
min-char-similarity = 0.7
duration-tolerance = [0.5, 2.5]

[thresholds.ko]
min-word-f1 = 0.2

[recognizer]
sample-rate = 16000

[recognizer.models]
es = "/models/vosk-es"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("expected missing file to be ignored: %v", err)
	}
	if cfg.Practice.Lang != nil {
		t.Fatalf("expected empty config")
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestLoadConfigValues(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Practice.Lang == nil || *cfg.Practice.Lang != "es" {
		t.Fatalf("expected practice lang es")
	}
	d, err := ParseDuration("silence-timeout", cfg.Practice.SilenceTimeout, 2*time.Second)
	if err != nil || d != 1500*time.Millisecond {
		t.Fatalf("expected 1.5s silence timeout, got %s %v", d, err)
	}
	if cfg.Recognizer.Models["es"] != "/models/vosk-es" {
		t.Fatalf("expected es model path, got %v", cfg.Recognizer.Models)
	}
}

func TestWeightsOverrides(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	w, err := cfg.Weights()
	if err != nil {
		t.Fatalf("weights: %v", err)
	}
	if w.Char != 50 || w.Word != 35 || w.ConfidenceFloor != 0.4 {
		t.Fatalf("unexpected weights %+v", w)
	}

	bad := 1.5
	cfg.Scoring.ConfidenceFloor = &bad
	if _, err := cfg.Weights(); err == nil {
		t.Fatalf("expected error for floor above 1")
	}
}

func TestThresholdTableMergesOverrides(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	table, err := cfg.ThresholdTable()
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	es := table.Lookup("es")
	if es.MinCharSimilarity != 0.7 || es.DurationTolerance != [2]float64{0.5, 2.5} {
		t.Fatalf("expected es overrides, got %+v", es)
	}
	if es.MinRms != thresholds.Builtin()["es"].MinRms {
		t.Fatalf("expected unset fields to keep builtin values")
	}
	ko := table.Lookup("ko")
	if ko.MinWordF1 != 0.2 || ko.MinRms != thresholds.Builtin()[thresholds.DefaultKey].MinRms {
		t.Fatalf("expected ko to start from default, got %+v", ko)
	}
}

func TestThresholdTableRejectsBadTolerance(t *testing.T) {
	cfg := FileConfig{Thresholds: map[string]ThresholdConfig{"es": {DurationTolerance: []float64{1}}}}
	if _, err := cfg.ThresholdTable(); err == nil {
		t.Fatalf("expected error for single tolerance value")
	}
}

func TestParseDurationRejectsInvalid(t *testing.T) {
	bad := "soon"
	if _, err := ParseDuration("hard-cap", &bad, time.Second); err == nil {
		t.Fatalf("expected parse error")
	}
	zero := "0s"
	if _, err := ParseDuration("hard-cap", &zero, time.Second); err == nil {
		t.Fatalf("expected error for zero duration")
	}
	if d, err := ParseDuration("hard-cap", nil, time.Second); err != nil || d != time.Second {
		t.Fatalf("expected fallback, got %s %v", d, err)
	}
}

func TestLoaderEnvOverrides(t *testing.T) {
	env := map[string]string{
		"PARROT_LANG":             "fr",
		"PARROT_LOG_LEVEL":        "debug",
		"PARROT_VOSK_MODEL_PT_BR": "/models/pt",
	}
	loader := Loader{
		Lookup: func(key string) (string, bool) {
			v, ok := env[key]
			return v, ok
		},
		Environ: func() []string {
			out := make([]string, 0, len(env))
			for k, v := range env {
				out = append(out, k+"="+v)
			}
			return out
		},
	}
	cfg, err := loader.Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *cfg.Practice.Lang != "fr" {
		t.Fatalf("expected env lang fr, got %s", *cfg.Practice.Lang)
	}
	if cfg.Log.Level == nil || *cfg.Log.Level != "debug" {
		t.Fatalf("expected env log level")
	}
	if cfg.Recognizer.Models["pt-br"] != "/models/pt" || cfg.Recognizer.Models["es"] != "/models/vosk-es" {
		t.Fatalf("expected merged models, got %v", cfg.Recognizer.Models)
	}
	if cfg.Practice.Deck != nil {
		t.Fatalf("expected unset deck to stay nil")
	}
}
