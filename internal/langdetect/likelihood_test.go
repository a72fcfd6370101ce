package langdetect

import (
	"math"
	"testing"

	"github.com/verte-zerg/parrot/internal/textsim"
)

func TestLikelihoodEmpty(t *testing.T) {
	if got := Likelihood(nil, "es"); got != 0 {
		t.Fatalf("expected 0 for empty input, got %f", got)
	}
}

func TestLikelihoodScriptAndStopwords(t *testing.T) {
	words := textsim.Tokenize("el perro come")
	got := Likelihood(words, "es")
	want := 0.8*1 + 0.2*(1.0/3)
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %f, got %f", want, got)
	}
}

func TestLikelihoodShortInputDenominator(t *testing.T) {
	got := Likelihood([]string{"el"}, "es")
	want := 0.8 + 0.2*0.5
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected floored denominator result %f, got %f", want, got)
	}
}

func TestLikelihoodWrongScript(t *testing.T) {
	words := textsim.Tokenize("hello world")
	if got := Likelihood(words, "ru"); got != 0 {
		t.Fatalf("expected latin words to score 0 for russian, got %f", got)
	}
	words = textsim.Tokenize("привет мир")
	if got := Likelihood(words, "ru"); got < 0.8 {
		t.Fatalf("expected cyrillic words to score high for russian, got %f", got)
	}
}

func TestLikelihoodUnknownLanguage(t *testing.T) {
	got := Likelihood([]string{"the", "cat"}, "xx")
	if math.Abs(got-0.8) > 1e-9 {
		t.Fatalf("expected script-only score 0.8 for unknown language, got %f", got)
	}
	if len(Stopwords("xx")) != 0 {
		t.Fatalf("expected empty stopwords for unknown language")
	}
}

func TestBaseLang(t *testing.T) {
	cases := map[string]string{"es-ES": "es", "pt_BR": "pt", " EN ": "en", "de": "de"}
	for in, want := range cases {
		if got := BaseLang(in); got != want {
			t.Fatalf("BaseLang(%q) = %q, expected %q", in, got, want)
		}
	}
}

func TestStopwordsNormalized(t *testing.T) {
	if _, ok := Stopwords("fr")["etait"]; !ok {
		t.Fatalf("expected normalized french stopword")
	}
	if _, ok := Stopwords("es-MX")["mas"]; !ok {
		t.Fatalf("expected regional tag to resolve to spanish stopwords")
	}
}

func TestMatchesScript(t *testing.T) {
	if !MatchesScript("don't", "en") {
		t.Fatalf("expected apostrophe word to match latin")
	}
	if MatchesScript("-", "en") {
		t.Fatalf("expected punctuation-only word to be rejected")
	}
	if !MatchesScript("ありがとう", "ja") {
		t.Fatalf("expected hiragana to match japanese")
	}
}
