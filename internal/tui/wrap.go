package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/parrot/internal/textsim"
)

type styledRune struct {
	s       string
	width   int
	isSpace bool
}

// wordMatch is one target word and whether the recognizer heard it.
type wordMatch struct {
	text    string
	matched bool
}

// matchWords marks each target word found in the recognized text. Every recognized
// token can satisfy one target word. Words that normalize to nothing count as matched.
func matchWords(target, recognized string) []wordMatch {
	heard := map[string]int{}
	for _, tok := range textsim.Tokenize(recognized) {
		heard[tok]++
	}
	fields := strings.Fields(target)
	out := make([]wordMatch, 0, len(fields))
	for _, word := range fields {
		norm := textsim.Normalize(word)
		matched := norm == ""
		if !matched {
			// A target word may normalize to several tokens ("rock'n'roll", "well-known").
			matched = true
			for _, tok := range strings.Fields(norm) {
				if heard[tok] == 0 {
					matched = false
					break
				}
			}
			if matched {
				for _, tok := range strings.Fields(norm) {
					heard[tok]--
				}
			}
		}
		out = append(out, wordMatch{text: word, matched: matched})
	}
	return out
}

// buildStyledRunes styles the target phrase. Without a transcript every word is rendered
// in the phrase style.
func buildStyledRunes(words []wordMatch, showMatch bool) []styledRune {
	out := make([]styledRune, 0)
	for i, w := range words {
		if i > 0 {
			out = append(out, styledRune{s: " ", width: 1, isSpace: true})
		}
		style := phraseStyle
		if showMatch {
			style = missedStyle
			if w.matched {
				style = matchedStyle
			}
		}
		out = append(out, styleWord(w.text, style)...)
	}
	return out
}

func styleWord(word string, style lipgloss.Style) []styledRune {
	out := make([]styledRune, 0, len(word))
	for _, r := range word {
		out = append(out, styledRune{
			s:     style.Render(string(r)),
			width: runewidth.RuneWidth(r),
		})
	}
	return out
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		b.WriteString(item.s)
	}
	return b.String()
}

func wrapStyledRunes(runes []styledRune, width int) string {
	if width <= 0 {
		return renderStyledRunes(runes)
	}
	var out strings.Builder
	line := make([]styledRune, 0, len(runes))
	lineWidth := 0
	lastSpaceIdx := -1

	for i := 0; i < len(runes); {
		item := runes[i]
		if lineWidth+item.width > width && len(line) > 0 {
			if lastSpaceIdx >= 0 {
				out.WriteString(renderStyledRunes(line[:lastSpaceIdx]))
				out.WriteRune('\n')
				line = append([]styledRune{}, line[lastSpaceIdx+1:]...)
				lineWidth = lineWidthOf(line)
				lastSpaceIdx = lastSpaceIndex(line)
			} else {
				out.WriteString(renderStyledRunes(line))
				out.WriteRune('\n')
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
			}
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	out.WriteString(renderStyledRunes(line))
	return out.String()
}

func lineWidthOf(line []styledRune) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []styledRune) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}
