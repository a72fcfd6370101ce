package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"
)

const (
	defaultPlotHeight   = 8
	minPlotWidth        = 10
	axisLabelTop        = "100"
	axisLabelMid        = "50"
	axisLabelBottom     = "0"
	axisSeparator       = " | "
	terminalWidthBackup = 80
	colorBar            = "\x1b[36m"
	colorReset          = "\x1b[0m"
)

// eighths indexes partial block glyphs by filled eighths of a cell.
var eighths = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// PlotScores renders values on a fixed 0-100 scale as a column chart. Values are
// resampled to width columns; width <= 0 fits the terminal.
func PlotScores(w io.Writer, title string, values []float64, width, height int, useColor bool) error {
	if len(values) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width <= 0 {
		width = PlotWidthFor(terminalWidth())
	}
	width = max(width, minPlotWidth)
	useColor = shouldUseColor(w, useColor)

	columns := resample(values, width)
	labels := make([]string, height)
	labels[0] = axisLabelTop
	if height > 2 {
		labels[height/2] = axisLabelMid
	}
	if height > 1 {
		labels[height-1] = axisLabelBottom
	}

	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	for row := 0; row < height; row++ {
		fromBottom := height - 1 - row
		var b strings.Builder
		fmt.Fprintf(&b, "%*s%s", len(axisLabelTop), labels[row], axisSeparator)
		if useColor {
			b.WriteString(colorBar)
		}
		for _, v := range columns {
			filled := int(math.Round(clamp(v, 0, 100) / 100 * float64(height*8)))
			level := filled - fromBottom*8
			b.WriteRune(eighths[int(clamp(float64(level), 0, 8))])
		}
		if useColor {
			b.WriteString(colorReset)
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(b.String(), " ")); err != nil {
			return err
		}
	}
	last := values[len(values)-1]
	if _, err := fmt.Fprintf(w, "%d points, latest %.1f\n\n", len(values), last); err != nil {
		return err
	}
	return nil
}

// PlotWidthFor computes a plot width that fits within the total available width.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	axisWidth := utf8.RuneCountInString(axisLabelTop) + utf8.RuneCountInString(axisSeparator)
	return max(totalWidth-axisWidth, minPlotWidth)
}

// resample stretches or averages values into width buckets.
func resample(values []float64, width int) []float64 {
	out := make([]float64, width)
	n := len(values)
	for i := range out {
		start := i * n / width
		end := (i + 1) * n / width
		if end <= start {
			out[i] = values[min(start, n-1)]
			continue
		}
		sum := 0.0
		for _, v := range values[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
