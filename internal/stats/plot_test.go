package stats

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestPlotScores(t *testing.T) {
	var buf bytes.Buffer
	if err := PlotScores(&buf, "Score", []float64{0, 50, 100, 100}, 12, 4, false); err != nil {
		t.Fatalf("PlotScores failed: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "Score\n") {
		t.Fatalf("expected title first, got %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no color when writing to a buffer")
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 1+4+1 {
		t.Fatalf("expected title, 4 rows and footer, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[1], "100 | ") || !strings.HasPrefix(lines[4], "  0 | ") {
		t.Fatalf("unexpected axis labels: %q %q", lines[1], lines[4])
	}
	if !strings.Contains(lines[1], "█") {
		t.Fatalf("expected full bars at the top row for 100 scores: %q", lines[1])
	}
	if !strings.Contains(lines[len(lines)-1], "4 points, latest 100.0") {
		t.Fatalf("unexpected footer %q", lines[len(lines)-1])
	}
}

func TestPlotScoresEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := PlotScores(&buf, "Score", nil, 10, 4, false); err != nil {
		t.Fatalf("PlotScores failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output for empty series")
	}
}

func TestPlotWidthFor(t *testing.T) {
	axisWidth := utf8.RuneCountInString(axisLabelTop) + utf8.RuneCountInString(axisSeparator)
	if got := PlotWidthFor(80); got != 80-axisWidth {
		t.Fatalf("expected width %d, got %d", 80-axisWidth, got)
	}
	if got := PlotWidthFor(0); got != minPlotWidth {
		t.Fatalf("expected min width %d, got %d", minPlotWidth, got)
	}
}

func TestResample(t *testing.T) {
	got := resample([]float64{10, 20, 30, 40}, 2)
	if got[0] != 15 || got[1] != 35 {
		t.Fatalf("expected bucket averages, got %v", got)
	}
	stretched := resample([]float64{10, 20}, 4)
	if stretched[0] != 10 || stretched[3] != 20 {
		t.Fatalf("expected stretched endpoints, got %v", stretched)
	}
}
