package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/parrot/internal/audiometrics"
	"github.com/verte-zerg/parrot/internal/model"
	"github.com/verte-zerg/parrot/internal/scoring"
	"github.com/verte-zerg/parrot/internal/tui"
)

var (
	evalTarget     string
	evalLang       string
	evalText       string
	evalConfidence float64
	evalWAV        string
	evalJSON       bool
)

func newEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Score one attempt offline",
		Args:  cobra.NoArgs,
		RunE:  runEvalCmd,
	}
	cmd.Flags().StringVar(&evalTarget, "target", "", "target phrase")
	cmd.Flags().StringVar(&evalLang, "lang", defaultLang, "language code")
	cmd.Flags().StringVar(&evalText, "text", "", "recognized text")
	cmd.Flags().Float64Var(&evalConfidence, "confidence", 0, "recognizer confidence (0-1, 0 = unknown)")
	cmd.Flags().StringVar(&evalWAV, "wav", "", "WAV recording of the attempt")
	cmd.Flags().BoolVar(&evalJSON, "json", false, "print the evaluation as JSON")
	return cmd
}

func runEvalCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "lang", &evalLang, fileCfg.Practice.Lang)
	if strings.TrimSpace(evalTarget) == "" {
		return fmt.Errorf("--target must not be empty")
	}
	if evalText == "" && evalWAV == "" {
		return fmt.Errorf("either --text or --wav is required")
	}
	if evalConfidence < 0 || evalConfidence > 1 {
		return fmt.Errorf("--confidence must be between 0 and 1")
	}

	engine, err := newEngine(fileCfg)
	if err != nil {
		return err
	}

	in := scoring.Input{
		Recognized: evalText,
		Confidence: evalConfidence,
		Target:     evalTarget,
		Lang:       evalLang,
	}
	method := model.MethodLiveSpeech
	if evalWAV != "" {
		buf, err := os.ReadFile(evalWAV)
		if err != nil {
			return fmt.Errorf("failed to read wav: %w", err)
		}
		metrics, err := audiometrics.Extract(buf, audiometrics.WAVDecoder{})
		if err != nil {
			return fmt.Errorf("failed to analyze wav: %w", err)
		}
		in.Audio = &metrics
		if evalText == "" {
			method = model.MethodAudioFallback
		}
	}

	ev, err := engine.Evaluate(in)
	if err != nil {
		return fmt.Errorf("failed to evaluate: %w", err)
	}
	if evalJSON {
		return writeEvaluationJSON(cmd.OutOrStdout(), ev)
	}
	return writeEvaluation(cmd.OutOrStdout(), method, ev)
}

func writeEvaluationJSON(w io.Writer, ev model.Evaluation) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ev); err != nil {
		return fmt.Errorf("failed to encode evaluation: %w", err)
	}
	return nil
}

func writeEvaluation(w io.Writer, method model.Method, ev model.Evaluation) error {
	verdict := "FAIL"
	if ev.Pass {
		verdict = "PASS"
	}
	rows := [][2]string{
		{"Verdict", fmt.Sprintf("%s (score %d)", verdict, ev.Score)},
		{"Method", string(method)},
		{"Char similarity", fmt.Sprintf("%.3f", ev.CharSimilarity)},
		{"Word F1", fmt.Sprintf("%.3f (precision %.3f, recall %.3f)", ev.WordF1, ev.Precision, ev.Recall)},
		{"Language likelihood", fmt.Sprintf("%.3f", ev.LanguageLikelihood)},
		{"Confidence", fmt.Sprintf("%.3f", ev.Confidence)},
	}
	if sq := ev.SpeechQuality; sq != nil {
		state := "fail"
		if sq.Pass {
			state = "pass"
		}
		rows = append(rows,
			[2]string{"Speech quality", state},
			[2]string{"Duration", fmt.Sprintf("%.2fs of %.2fs expected (ratio %.2f)", sq.Duration, sq.ExpectedDuration, sq.DurationRatio)},
			[2]string{"RMS", fmt.Sprintf("%.4f", sq.Rms)},
			[2]string{"Zero crossings/s", fmt.Sprintf("%.1f", sq.ZcrPerSec)},
		)
	}
	if len(ev.Reasons) > 0 {
		reasons := make([]string, 0, len(ev.Reasons))
		for _, r := range ev.Reasons {
			reasons = append(reasons, string(r))
		}
		rows = append(rows, [2]string{"Reasons", strings.Join(reasons, ", ")})
	}

	width := 0
	for _, row := range rows {
		width = max(width, len(row[0]))
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(w, "%-*s  %s\n", width, row[0], row[1]); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	for _, r := range ev.Reasons {
		if text := tui.Guidance(r); text != "" {
			if _, err := fmt.Fprintf(w, "- %s\n", text); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
	}
	return nil
}

func writeLangs(w io.Writer, thresholdLangs, stopwordLangs []string, models map[string]string, speech bool) error {
	modelLangs := make([]string, 0, len(models))
	for lang := range models {
		modelLangs = append(modelLangs, lang)
	}
	sort.Strings(modelLangs)

	capture := "not built in (rebuild with -tags portaudio,vosk)"
	if speech {
		capture = "available"
	}
	lines := []string{
		"Thresholds: " + joinOrNone(thresholdLangs) + " (others use default)",
		"Stopwords:  " + joinOrNone(stopwordLangs),
		"Models:     " + joinOrNone(modelLangs),
		"Speech:     " + capture,
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
