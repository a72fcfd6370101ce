package textsim

import (
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "  ¿Cuál es   tu nombre? ", want: "cual es tu nombre"},
		{in: "Ça va, très bien!", want: "ca va tres bien"},
		{in: "Don’t stop", want: "don't stop"},
		{in: "co-op 42", want: "co-op"},
		{in: "Straße", want: "straße"},
		{in: "Привет, мир", want: "привет мир"},
		{in: "", want: ""},
		{in: "!!!", want: ""},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Fatalf("Normalize(%q) = %q, expected %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"Cuál", "İstanbul", "Ünïcödé — text", "Ёлка", "한국어 문장", "ﬁne", "Ἀθῆναι"}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Fatalf("expected idempotent normalize for %q: %q then %q", in, once, twice)
		}
	}
}

func TestNormalizeDiacriticInsensitive(t *testing.T) {
	if Normalize("Cuál") != Normalize("Cual") {
		t.Fatalf("expected diacritic-insensitive normalize")
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("  Hola,  ¿qué   tal? ")
	want := []string{"hola", "que", "tal"}
	if len(got) != len(want) {
		t.Fatalf("expected %d tokens, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %q at %d, got %q", want[i], i, got[i])
		}
	}
	if len(Tokenize("...")) != 0 {
		t.Fatalf("expected no tokens for punctuation-only input")
	}
}

func TestLevenshtein(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"kitten", "sitting", 3},
		{"", "abc", 3},
		{"abc", "", 3},
		{"hola", "Hola!", 0},
		{"año", "ano", 0},
		{"flaw", "lawn", 2},
	}
	for _, tc := range cases {
		if got := Levenshtein(tc.a, tc.b); got != tc.want {
			t.Fatalf("Levenshtein(%q, %q) = %d, expected %d", tc.a, tc.b, got, tc.want)
		}
		if got := Levenshtein(tc.b, tc.a); got != tc.want {
			t.Fatalf("expected symmetric distance for %q/%q, got %d", tc.a, tc.b, got)
		}
	}
}

func TestLevenshteinTriangle(t *testing.T) {
	words := []string{"casa", "cosa", "caso", "masa", "mesa", ""}
	for _, a := range words {
		if Levenshtein(a, a) != 0 {
			t.Fatalf("expected zero distance for %q", a)
		}
		for _, b := range words {
			for _, c := range words {
				if Levenshtein(a, c) > Levenshtein(a, b)+Levenshtein(b, c) {
					t.Fatalf("triangle inequality violated for %q %q %q", a, b, c)
				}
			}
		}
	}
}

func TestCharSimilarity(t *testing.T) {
	if got := CharSimilarity("buenos días", "buenos dias"); got != 1 {
		t.Fatalf("expected identical similarity 1, got %f", got)
	}
	if got := CharSimilarity("", ""); got != 1 {
		t.Fatalf("expected empty strings to be identical, got %f", got)
	}
	if got := CharSimilarity("", "hola"); got != 0 {
		t.Fatalf("expected 0 similarity against empty, got %f", got)
	}
	got := CharSimilarity("kitten", "sitting")
	want := float64(7-3) / 7
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %f, got %f", want, got)
	}
}

func TestWordPRF(t *testing.T) {
	stop := map[string]struct{}{"el": {}, "la": {}}
	prf := WordPRF([]string{"el", "gato", "negro"}, []string{"el", "gato", "blanco"}, stop)
	if math.Abs(prf.Precision-0.5) > 1e-9 || math.Abs(prf.Recall-0.5) > 1e-9 || math.Abs(prf.F1-0.5) > 1e-9 {
		t.Fatalf("unexpected prf: %+v", prf)
	}

	disjoint := WordPRF([]string{"perro"}, []string{"gato"}, nil)
	if disjoint.F1 != 0 {
		t.Fatalf("expected zero F1 for disjoint vocabularies, got %f", disjoint.F1)
	}

	empty := WordPRF(nil, []string{"gato"}, nil)
	if empty.Precision != 0 || empty.Recall != 0 || empty.F1 != 0 {
		t.Fatalf("expected zero prf for empty recognition, got %+v", empty)
	}
}

func TestWordPRFStopwordOnlyTarget(t *testing.T) {
	stop := map[string]struct{}{"no": {}, "si": {}, "yo": {}}
	same := WordPRF([]string{"no"}, []string{"no"}, stop)
	if same.Precision != 1 || same.Recall != 1 || same.F1 != 1 {
		t.Fatalf("expected perfect prf for a repeated stopword phrase, got %+v", same)
	}

	wrong := WordPRF([]string{"si"}, []string{"no"}, stop)
	if wrong.F1 != 0 {
		t.Fatalf("expected zero F1 for a different stopword, got %f", wrong.F1)
	}

	partial := WordPRF([]string{"yo"}, []string{"yo", "no"}, stop)
	if partial.Precision != 1 || math.Abs(partial.Recall-0.5) > 1e-9 {
		t.Fatalf("expected precision 1 and recall 0.5, got %+v", partial)
	}

	mixed := WordPRF([]string{"no", "gato"}, []string{"no", "gato"}, stop)
	if mixed.Precision != 1 || mixed.Recall != 1 {
		t.Fatalf("expected content words to drive prf, got %+v", mixed)
	}
}

func TestWordPRFMultiplicity(t *testing.T) {
	prf := WordPRF([]string{"si", "si", "si"}, []string{"si", "no", "si"}, nil)
	if math.Abs(prf.Precision-2.0/3) > 1e-9 {
		t.Fatalf("expected precision 2/3, got %f", prf.Precision)
	}
	if math.Abs(prf.Recall-2.0/3) > 1e-9 {
		t.Fatalf("expected recall 2/3, got %f", prf.Recall)
	}
}
