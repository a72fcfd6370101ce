package langdetect

// Likelihood estimates how plausible it is that words are written in lang.
// It blends script conformance (80%) with stopword density (20%).
func Likelihood(words []string, lang string) float64 {
	if len(words) == 0 {
		return 0
	}
	stop := Stopwords(lang)
	letters := 0
	stops := 0
	for _, w := range words {
		if MatchesScript(w, lang) {
			letters++
		}
		if _, ok := stop[w]; ok {
			stops++
		}
	}
	letterRatio := float64(letters) / float64(len(words))
	stopRatio := float64(stops) / float64(max(len(words), 2))
	return 0.8*letterRatio + 0.2*stopRatio
}
