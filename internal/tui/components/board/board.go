// Package board draws layout positions as a grid of fixed-width cells.
package board

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/courselit/internal/models"
)

type Cell struct {
	Col   int
	Row   int
	Text  string
	Style lipgloss.Style
}

// Render places cells on a Cols x Rows grid. Headers, when given, form the
// first line. Empty grid positions are left blank.
func Render(cells []Cell, headers []string, colWidth int) string {
	cols, rows := len(headers), 0
	for _, c := range cells {
		cols = max(cols, c.Col+1)
		rows = max(rows, c.Row+1)
	}
	if cols == 0 {
		return ""
	}

	grid := make([][]string, rows)
	blank := strings.Repeat(" ", colWidth)
	for r := range grid {
		grid[r] = make([]string, cols)
		for c := range grid[r] {
			grid[r][c] = blank
		}
	}
	for _, c := range cells {
		if c.Col < 0 || c.Row < 0 {
			continue
		}
		grid[c.Row][c.Col] = c.Style.Width(colWidth - 1).MaxWidth(colWidth - 1).Render(Truncate(c.Text, colWidth-2)) + " "
	}

	var b strings.Builder
	if len(headers) > 0 {
		for c := 0; c < cols; c++ {
			h := ""
			if c < len(headers) {
				h = headers[c]
			}
			b.WriteString(headerStyle.Width(colWidth - 1).Render(Truncate(h, colWidth-2)))
			b.WriteString(" ")
		}
		b.WriteString("\n")
	}
	for _, row := range grid {
		b.WriteString(strings.TrimRight(strings.Join(row, ""), " "))
		b.WriteString("\n")
	}
	return b.String()
}

var headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)

// Truncate shortens s to at most n runes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 {
		return ""
	}
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

var statusStyles = map[models.CourseStatus]lipgloss.Style{
	models.StatusCompleted:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	models.StatusExempted:   lipgloss.NewStyle().Foreground(lipgloss.Color("36")),
	models.StatusInProgress: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	models.StatusFailed:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	models.StatusPlanned:    lipgloss.NewStyle().Foreground(lipgloss.Color("75")),
}

// StatusStyle colors a course by plan status. Pending courses are grey.
func StatusStyle(s models.CourseStatus) lipgloss.Style {
	if st, ok := statusStyles[s]; ok {
		return st
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
}
