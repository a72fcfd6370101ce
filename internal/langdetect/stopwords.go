// Package langdetect estimates whether a transcript is written in the expected language.
package langdetect

import (
	"sort"
	"strings"
	"unicode"

	"github.com/verte-zerg/parrot/internal/textsim"
)

var rawStopwords = map[string]string{
	"en": "a an the and or but of to in on at for with is are was were be been it this that these those i you he she we they me my your his her our their not no do does did have has had will would can could so as by from up out if then there what which who",
	"es": "el la los las un una unos unas y o pero de del al a en con por para es son era fue ser estar esta este esto eso ese esa que se no si su sus mi mis tu tus lo le les me te nos como mas muy ya hay yo",
	"fr": "le la les un une des et ou mais de du au aux a en dans sur pour par avec est sont etait etre avoir ai as il elle ils elles je tu nous vous on ce cette ces que qui ne pas se sa son ses mon ma mes ton ta tes y",
	"de": "der die das den dem des ein eine einen einem einer und oder aber zu in im an am auf mit von fur ist sind war waren sein haben hat ich du er sie es wir ihr nicht kein keine so wie was wer dass auch noch nur",
	"it": "il lo la i gli le un uno una e o ma di del della dei a al in nel con per su da e sono era essere ho hai ha che chi non si mi ti ci vi io tu lui lei noi voi loro come piu",
	"pt": "o a os as um uma uns umas e ou mas de do da dos das em no na nos nas por para com e sao era ser estar que se nao sim eu tu ele ela nos vos eles elas meu minha seu sua como mais muito",
	"nl": "de het een en of maar van in op te aan met voor door is zijn was waren ben heb heeft ik jij je hij zij wij we jullie niet geen dat die dit wat wie ook nog er",
	"pl": "i w na z do nie sie to jest sa byl byla ze jak ale lub o od po za dla ja ty on ona my wy oni co czy tak juz tylko",
	"ru": "и в во не что он на я с со как а то все она так его но да ты к у же вы за бы по только ее мне было вот от меня еще нет о из ему",
	"uk": "і й в у не що він на я з зі як а то все вона так його але та ти до же ви за би по тільки її мені було от від мене ще ні о із йому",
}

var stopwordSets = buildStopwords()

func buildStopwords() map[string]map[string]struct{} {
	sets := make(map[string]map[string]struct{}, len(rawStopwords))
	for lang, list := range rawStopwords {
		set := make(map[string]struct{})
		for _, w := range strings.Fields(list) {
			set[textsim.Normalize(w)] = struct{}{}
		}
		sets[lang] = set
	}
	return sets
}

// Stopwords returns the normalized stopword set for a language, empty when unknown.
// The returned map must not be modified.
func Stopwords(lang string) map[string]struct{} {
	if set, ok := stopwordSets[BaseLang(lang)]; ok {
		return set
	}
	return map[string]struct{}{}
}

// Supported lists languages that ship a stopword table.
func Supported() []string {
	langs := make([]string, 0, len(stopwordSets))
	for lang := range stopwordSets {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// BaseLang reduces a language tag such as "es-ES" or "pt_BR" to its lowercase primary subtag.
func BaseLang(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(lang, "-_"); i >= 0 {
		lang = lang[:i]
	}
	return lang
}

var scripts = map[string][]*unicode.RangeTable{
	"ru": {unicode.Cyrillic},
	"uk": {unicode.Cyrillic},
	"bg": {unicode.Cyrillic},
	"sr": {unicode.Cyrillic, unicode.Latin},
	"el": {unicode.Greek},
	"ar": {unicode.Arabic},
	"fa": {unicode.Arabic},
	"he": {unicode.Hebrew},
	"hi": {unicode.Devanagari},
	"ko": {unicode.Hangul},
	"ja": {unicode.Han, unicode.Hiragana, unicode.Katakana},
	"zh": {unicode.Han},
	"th": {unicode.Thai},
}

// MatchesScript reports whether every letter of word belongs to the language's script.
// Unknown languages are treated as Latin-script.
func MatchesScript(word, lang string) bool {
	tables, ok := scripts[BaseLang(lang)]
	if !ok {
		tables = []*unicode.RangeTable{unicode.Latin}
	}
	letters := 0
	for _, r := range word {
		if r == '\'' || r == '-' || r == 'ー' {
			continue
		}
		if !unicode.IsOneOf(tables, r) {
			return false
		}
		letters++
	}
	return letters > 0
}
