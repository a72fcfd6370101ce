// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"sort"

	"github.com/verte-zerg/parrot/internal/model"
)

// Summary aggregates a list of attempts.
type Summary struct {
	Attempts  int
	Scored    int
	Failed    int
	Passes    int
	AvgScore  float64
	BestScore int
	ByMethod  map[model.Method]int
}

// PassRate is the share of scored attempts that passed.
func (s Summary) PassRate() float64 {
	if s.Scored == 0 {
		return 0
	}
	return float64(s.Passes) / float64(s.Scored)
}

// Summarize computes totals. Attempts that ended in an error count toward Failed only.
func Summarize(attempts []model.AttemptAggregate) Summary {
	s := Summary{Attempts: len(attempts), ByMethod: map[model.Method]int{}}
	total := 0
	for _, a := range attempts {
		s.ByMethod[a.Method]++
		if a.Failed {
			s.Failed++
			continue
		}
		s.Scored++
		total += a.Score
		if a.Pass {
			s.Passes++
		}
		if a.Score > s.BestScore {
			s.BestScore = a.Score
		}
	}
	if s.Scored > 0 {
		s.AvgScore = float64(total) / float64(s.Scored)
	}
	return s
}

// MovingAverage computes a trailing mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	sum := 0.0
	for i, v := range values {
		sum += v
		n := i + 1
		if i >= window {
			sum -= values[i-window]
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// Scores returns the score of every scored attempt in order.
func Scores(attempts []model.AttemptAggregate) []float64 {
	out := make([]float64, 0, len(attempts))
	for _, a := range attempts {
		if a.Failed {
			continue
		}
		out = append(out, float64(a.Score))
	}
	return out
}

// RenderSummary prints a summary block for attempts.
func RenderSummary(w io.Writer, attempts []model.AttemptAggregate) error {
	if len(attempts) == 0 {
		_, err := fmt.Fprintln(w, "No attempts found.")
		return err
	}
	s := Summarize(attempts)
	lines := []string{
		"Summary",
		fmt.Sprintf("Attempts: %d", s.Attempts),
		fmt.Sprintf("Pass rate: %.1f%%", s.PassRate()*100),
		fmt.Sprintf("Avg score: %.1f", s.AvgScore),
		fmt.Sprintf("Best score: %d", s.BestScore),
	}
	if s.Failed > 0 {
		lines = append(lines, fmt.Sprintf("Failed to score: %d", s.Failed))
	}
	methods := make([]string, 0, len(s.ByMethod))
	for m := range s.ByMethod {
		methods = append(methods, string(m))
	}
	sort.Strings(methods)
	for _, m := range methods {
		lines = append(lines, fmt.Sprintf("  %s: %d", m, s.ByMethod[model.Method(m)]))
	}
	lines = append(lines, "")
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderReasonTable prints how often each failure reason occurred.
func RenderReasonTable(w io.Writer, attempts []model.AttemptAggregate) error {
	counts := TopReasons(attempts, 0)
	if len(counts) == 0 {
		_, err := fmt.Fprintln(w, "No failure reasons recorded.")
		return err
	}
	scored := Summarize(attempts).Scored
	t := table{
		title:   "Failure Reasons",
		headers: []string{"Reason", "Count", "Share"},
		right:   map[int]bool{1: true, 2: true},
	}
	for _, rc := range counts {
		share := 0.0
		if scored > 0 {
			share = float64(rc.Count) / float64(scored)
		}
		t.rows = append(t.rows, []string{string(rc.Reason), fmt.Sprintf("%d", rc.Count), fmt.Sprintf("%.1f%%", share*100)})
	}
	return t.write(w)
}

// RenderWeakestTable prints the lowest-scoring phrases.
func RenderWeakestTable(w io.Writer, aggs []model.PhraseAggregate, n int) error {
	weak := WeakestPhrases(aggs, n)
	if len(weak) == 0 {
		_, err := fmt.Fprintln(w, "No phrase stats found.")
		return err
	}
	t := table{
		title:   "Weakest Phrases",
		headers: []string{"Phrase", "Avg", "Passed", "Attempts"},
		right:   map[int]bool{1: true, 2: true, 3: true},
	}
	for _, agg := range weak {
		t.rows = append(t.rows, []string{
			agg.Target,
			fmt.Sprintf("%.1f", averageScore(agg)),
			fmt.Sprintf("%d", agg.Passes),
			fmt.Sprintf("%d", agg.Attempts),
		})
	}
	return t.write(w)
}

// RenderScoreCurve plots the moving-average score of scored attempts.
func RenderScoreCurve(w io.Writer, attempts []model.AttemptAggregate, window, totalWidth, height int, useColor bool) error {
	scores := Scores(attempts)
	if len(scores) == 0 {
		return nil
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	title := fmt.Sprintf("Score (moving average, window %d)", window)
	return PlotScores(w, title, MovingAverage(scores, window), width, height, useColor)
}
