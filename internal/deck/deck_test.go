package deck

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/verte-zerg/parrot/internal/model"
)

func writeDeck(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write deck: %v", err)
	}
	return path
}

func TestLoadText(t *testing.T) {
	path := writeDeck(t, "es.txt", "# greetings\nhola\n\n  buenos días  \nhola\n")
	d, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []string{"hola", "buenos días"}
	if !reflect.DeepEqual(d.Texts(), want) {
		t.Fatalf("expected %v, got %v", want, d.Texts())
	}
	if d.Path != path {
		t.Fatalf("expected path to be recorded")
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeDeck(t, "fr.yaml", `lang: fr
phrases:
  - bonjour
  - text: merci beaucoup
    note: thanks
  - text: "  "
`)
	d, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if d.Lang != "fr" {
		t.Fatalf("expected lang fr, got %q", d.Lang)
	}
	want := []Phrase{{Text: "bonjour"}, {Text: "merci beaucoup", Note: "thanks"}}
	if !reflect.DeepEqual(d.Phrases, want) {
		t.Fatalf("expected %+v, got %+v", want, d.Phrases)
	}
}

func TestLoadEmptyDeck(t *testing.T) {
	if _, err := Load(writeDeck(t, "empty.txt", "# nothing\n\n")); err == nil {
		t.Fatalf("expected error for empty deck")
	}
	if _, err := Load(writeDeck(t, "bad.yml", "phrases: [")); err == nil {
		t.Fatalf("expected error for invalid yaml")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestWeightsFavorLowScores(t *testing.T) {
	phrases := []Phrase{{Text: "hola"}, {Text: "adiós"}, {Text: "gracias"}}
	aggs := []model.PhraseAggregate{
		{Target: "hola", Attempts: 2, ScoreSum: 200},
		{Target: "adiós", Attempts: 2, ScoreSum: 100},
	}
	got := Weights(phrases, aggs, 2)
	want := []float64{1, 2, 3}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestPickAvoidsSkip(t *testing.T) {
	picker := NewPickerWithSeed(1)
	phrases := []Phrase{{Text: "hola"}, {Text: "adiós"}}
	for i := 0; i < 50; i++ {
		if got := picker.Pick(phrases, nil, "hola"); got.Text != "adiós" {
			t.Fatalf("expected skip to be avoided, got %q", got.Text)
		}
	}
	single := []Phrase{{Text: "hola"}}
	if got := picker.Pick(single, nil, "hola"); got.Text != "hola" {
		t.Fatalf("expected single phrase even when skipped")
	}
	if got := picker.Pick(nil, nil, ""); got.Text != "" {
		t.Fatalf("expected empty phrase for empty deck")
	}
}

func TestPickWeighted(t *testing.T) {
	picker := NewPickerWithSeed(42)
	phrases := []Phrase{{Text: "a"}, {Text: "b"}}
	counts := map[string]int{}
	for i := 0; i < 4000; i++ {
		counts[picker.Pick(phrases, []float64{1, 9}, "").Text]++
	}
	if counts["b"] < 3*counts["a"] {
		t.Fatalf("expected heavier phrase to dominate, got %v", counts)
	}
}

func TestWatchReloads(t *testing.T) {
	path := writeDeck(t, "es.txt", "hola\n")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan Deck, 4)
	errs := make(chan error, 1)
	go func() {
		errs <- Watch(ctx, path, func(d Deck, err error) {
			if err != nil {
				return
			}
			select {
			case reloaded <- d:
			default:
			}
		})
	}()

	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case d := <-reloaded:
			if len(d.Phrases) == 2 {
				cancel()
				if err := <-errs; err != nil {
					t.Fatalf("watch: %v", err)
				}
				return
			}
		case <-tick.C:
			if err := os.WriteFile(path, []byte("hola\nadiós\n"), 0o644); err != nil {
				t.Fatalf("rewrite deck: %v", err)
			}
		case <-deadline:
			t.Fatalf("timed out waiting for reload")
		}
	}
}
