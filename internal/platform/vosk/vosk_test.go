package vosk

import (
	"errors"
	"math"
	"testing"
)

func TestParseResultFinal(t *testing.T) {
	text, conf, err := parseResult(`{"result":[{"conf":1.0,"word":"hola"},{"conf":0.5,"word":"amigo"}],"text":"hola amigo"}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if text != "hola amigo" {
		t.Fatalf("expected text, got %q", text)
	}
	if math.Abs(conf-0.75) > 1e-9 {
		t.Fatalf("expected mean confidence 0.75, got %f", conf)
	}
}

func TestParseResultPartial(t *testing.T) {
	text, conf, err := parseResult(`{"partial":"hola"}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if text != "hola" || conf != 0 {
		t.Fatalf("expected partial text with unknown confidence, got %q %f", text, conf)
	}
}

func TestParseResultInvalid(t *testing.T) {
	if _, _, err := parseResult("{"); err == nil {
		t.Fatalf("expected error for invalid json")
	}
}

func TestModelPath(t *testing.T) {
	models := map[string]string{"es": "/models/es", "pt-BR": "/models/pt-br"}
	if path, err := modelPath(models, "es-MX"); err != nil || path != "/models/es" {
		t.Fatalf("expected base language model, got %q %v", path, err)
	}
	if path, err := modelPath(models, "pt-BR"); err != nil || path != "/models/pt-br" {
		t.Fatalf("expected exact model, got %q %v", path, err)
	}
	if _, err := modelPath(models, "fr"); !errors.Is(err, ErrNoModel) {
		t.Fatalf("expected ErrNoModel, got %v", err)
	}
}
