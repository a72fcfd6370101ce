// Package deck loads practice phrase decks from text or YAML files.
package deck

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Phrase is one practice target.
type Phrase struct {
	Text string `yaml:"text"`
	Note string `yaml:"note,omitempty"`
}

// UnmarshalYAML accepts either a bare string or a mapping with text and note.
func (p *Phrase) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		p.Text = node.Value
		return nil
	}
	type plain Phrase
	var raw plain
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*p = Phrase(raw)
	return nil
}

// Deck is an ordered list of phrases for one language.
type Deck struct {
	Lang    string   `yaml:"lang"`
	Phrases []Phrase `yaml:"phrases"`
	Path    string   `yaml:"-"`
}

// Texts returns the phrase texts in deck order.
func (d Deck) Texts() []string {
	out := make([]string, len(d.Phrases))
	for i, p := range d.Phrases {
		out[i] = p.Text
	}
	return out
}

// Load reads a deck. Files ending in .yaml or .yml are parsed as YAML; anything else is
// read as one phrase per line, skipping blank lines and lines starting with '#'.
func Load(path string) (Deck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Deck{}, err
	}
	var d Deck
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		d, err = parseYAML(data)
	default:
		d, err = parseText(data)
	}
	if err != nil {
		return Deck{}, fmt.Errorf("failed to parse deck %s: %w", path, err)
	}
	d.Path = path
	return d, nil
}

func parseYAML(data []byte) (Deck, error) {
	var d Deck
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Deck{}, err
	}
	return clean(d)
}

func parseText(data []byte) (Deck, error) {
	var d Deck
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		d.Phrases = append(d.Phrases, Phrase{Text: line})
	}
	if err := scanner.Err(); err != nil {
		return Deck{}, err
	}
	return clean(d)
}

func clean(d Deck) (Deck, error) {
	seen := make(map[string]struct{}, len(d.Phrases))
	phrases := d.Phrases[:0]
	for _, p := range d.Phrases {
		p.Text = strings.TrimSpace(p.Text)
		if p.Text == "" {
			continue
		}
		if _, ok := seen[p.Text]; ok {
			continue
		}
		seen[p.Text] = struct{}{}
		phrases = append(phrases, p)
	}
	d.Phrases = phrases
	if len(d.Phrases) == 0 {
		return Deck{}, fmt.Errorf("deck is empty")
	}
	return d, nil
}
