package statsui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/parrot/internal/model"
)

func attemptColumns() []table.Column {
	return []table.Column{
		{Title: "Ended", Width: 16},
		{Title: "Result", Width: 6},
		{Title: "Score", Width: 5},
		{Title: "Method", Width: 15},
		{Title: "Phrase", Width: 28},
		{Title: "Reasons", Width: 30},
	}
}

func phraseColumns() []table.Column {
	return []table.Column{
		{Title: "Phrase", Width: 36},
		{Title: "Avg", Width: 6},
		{Title: "Passed", Width: 6},
		{Title: "Attempts", Width: 8},
	}
}

func attemptRows(attempts []model.AttemptAggregate) []table.Row {
	rows := make([]table.Row, 0, len(attempts))
	for _, a := range attempts {
		result := "FAIL"
		score := fmt.Sprintf("%d", a.Score)
		switch {
		case a.Failed:
			result = "ERR"
			score = "-"
		case a.Pass:
			result = "PASS"
		}
		reasons := make([]string, 0, len(a.Reasons))
		for _, r := range a.Reasons {
			reasons = append(reasons, string(r))
		}
		rows = append(rows, table.Row{
			a.EndedAt.Local().Format("2006-01-02 15:04"),
			result,
			score,
			string(a.Method),
			a.Target,
			strings.Join(reasons, ", "),
		})
	}
	return rows
}

// phraseRows keeps the order of aggs.
func phraseRows(aggs []model.PhraseAggregate) []table.Row {
	rows := make([]table.Row, 0, len(aggs))
	for _, agg := range aggs {
		avg := 0.0
		if agg.Attempts > 0 {
			avg = float64(agg.ScoreSum) / float64(agg.Attempts)
		}
		rows = append(rows, table.Row{
			agg.Target,
			fmt.Sprintf("%.1f", avg),
			fmt.Sprintf("%d", agg.Passes),
			fmt.Sprintf("%d", agg.Attempts),
		})
	}
	return rows
}

func newTable(cols []table.Column, rows []table.Row) table.Model {
	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithHeight(1),
	)
	t.SetStyles(tableStyles())
	return t
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

// fitTable sizes t so its rendered view fills exactly bodyHeight lines.
func fitTable(t *table.Model, width, bodyHeight int) {
	target := max(1, bodyHeight)
	t.SetWidth(width)
	t.SetHeight(max(1, target-1))
	for i := 0; i < 2; i++ {
		diff := target - lipgloss.Height(t.View())
		if diff == 0 {
			return
		}
		t.SetHeight(max(1, t.Height()+diff))
	}
}
