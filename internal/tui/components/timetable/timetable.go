// Package timetable shows the weekly grid of in-progress courses.
package timetable

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/courselit/internal/constants"
	"github.com/julianstephens/courselit/internal/models"
	tt "github.com/julianstephens/courselit/internal/timetable"
	"github.com/julianstephens/courselit/internal/tui/components/board"
)

const colWidth = 11

var (
	slotStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	collisionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warningStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

type Model struct {
	viewport viewport.Model
	result   tt.Result
}

func New(width, height int) Model {
	return Model{viewport: viewport.New(width, height)}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = height
}

func (m *Model) SetResult(r tt.Result) {
	m.result = r
	m.render()
}

func (m *Model) render() {
	g := m.result.Grid
	if g == nil {
		m.viewport.SetContent("No timetable.")
		return
	}

	headers := []string{"Slot"}
	for _, d := range constants.DayNames[:min(g.Days, constants.DaysPerWeek)] {
		headers = append(headers, d[:3])
	}

	var cells []board.Cell
	for row, slot := range g.Slots {
		cells = append(cells, board.Cell{Col: 0, Row: row, Text: slot, Style: slotStyle})
		for day := 0; day < g.Days; day++ {
			sc := g.At(slot, day)
			if sc == nil {
				continue
			}
			cells = append(cells, board.Cell{
				Col:   day + 1,
				Row:   row,
				Text:  sc.Course.ID,
				Style: board.StatusStyle(models.StatusInProgress),
			})
		}
	}

	var b strings.Builder
	b.WriteString(board.Render(cells, headers, colWidth))
	if len(m.result.Unscheduled) > 0 {
		fmt.Fprintf(&b, "\nUnscheduled: %s\n", strings.Join(m.result.Unscheduled, ", "))
	}
	for _, c := range m.result.Collisions {
		b.WriteString(collisionStyle.Render("collision: "+c.Description) + "\n")
	}
	for _, w := range m.result.Warnings {
		b.WriteString(warningStyle.Render("warning: "+w.Description) + "\n")
	}
	m.viewport.SetContent(b.String())
}
