package tui

import "github.com/verte-zerg/parrot/internal/model"

var guidance = map[model.Reason]string{
	model.ReasonSpeechQuality: "Speak the whole phrase at a natural pace, closer to the microphone.",
	model.ReasonNotTargetLang: "That did not sound like the practice language. Try again in the target language.",
	model.ReasonLowCharSim:    "Several sounds were off. Listen to the phrase again and repeat it slowly.",
	model.ReasonLowWordF1:     "Some words were missing or different. Check the highlighted words.",
	model.ReasonLowConfidence: "The recognizer was unsure. Articulate each word more clearly.",
}

// Guidance returns advice for a failure reason, or an empty string for unknown codes.
func Guidance(r model.Reason) string {
	return guidance[r]
}
