// Package textsim normalizes transcripts and measures how close they are to a target phrase.
package textsim

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// PRF holds word-level precision, recall and F1.
type PRF struct {
	Precision float64
	Recall    float64
	F1        float64
}

// Normalize lowercases text, strips diacritics and punctuation, and collapses whitespace.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	lowered := strings.ToLower(text)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.M)), norm.NFC)
	stripped, _, err := transform.String(t, lowered)
	if err != nil {
		stripped = lowered
	}
	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range stripped {
		switch {
		case r == '’' || r == '\'':
			b.WriteRune('\'')
		case r == '-' || unicode.IsLetter(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Tokenize splits normalized text into words.
func Tokenize(text string) []string {
	return strings.Fields(Normalize(text))
}

// Levenshtein returns the edit distance between the normalized forms of a and b.
func Levenshtein(a, b string) int {
	return distance([]rune(Normalize(a)), []rune(Normalize(b)))
}

func distance(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// CharSimilarity returns 1 - distance/maxLen over normalized strings, in [0, 1].
func CharSimilarity(a, b string) float64 {
	na := []rune(Normalize(a))
	nb := []rune(Normalize(b))
	maxLen := max(len(na), len(nb), 1)
	return float64(maxLen-distance(na, nb)) / float64(maxLen)
}

// WordPRF compares recognized and target tokens after removing stopwords.
// A target made only of stopwords is compared on the unfiltered tokens.
// Shared words count up to the smaller multiplicity on either side.
func WordPRF(recognized, target []string, stopwords map[string]struct{}) PRF {
	rec := filterStopwords(recognized, stopwords)
	tgt := filterStopwords(target, stopwords)
	if len(tgt) == 0 {
		rec = filterStopwords(recognized, nil)
		tgt = filterStopwords(target, nil)
	}

	counts := make(map[string]int, len(tgt))
	for _, w := range tgt {
		counts[w]++
	}
	shared := 0
	for _, w := range rec {
		if counts[w] > 0 {
			counts[w]--
			shared++
		}
	}

	var out PRF
	if len(rec) > 0 {
		out.Precision = float64(shared) / float64(len(rec))
	}
	if len(tgt) > 0 {
		out.Recall = float64(shared) / float64(len(tgt))
	}
	if out.Precision+out.Recall > 0 {
		out.F1 = 2 * out.Precision * out.Recall / (out.Precision + out.Recall)
	}
	return out
}

func filterStopwords(words []string, stopwords map[string]struct{}) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w == "" {
			continue
		}
		if _, ok := stopwords[w]; ok {
			continue
		}
		out = append(out, w)
	}
	return out
}
