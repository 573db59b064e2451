// Package curriculum shows the catalog laid out by phase, colored by the
// student's progress.
package curriculum

import (
	"fmt"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/courselit/internal/layout"
	"github.com/julianstephens/courselit/internal/models"
	"github.com/julianstephens/courselit/internal/tui/components/board"
)

const colWidth = 22

type Model struct {
	viewport   viewport.Model
	engine     *layout.Engine
	curriculum models.Curriculum
	status     map[string]models.CourseStatus
}

func New(engine *layout.Engine, width, height int) Model {
	return Model{viewport: viewport.New(width, height), engine: engine}
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

// SetData replaces the curriculum and the plan whose statuses color it.
func (m *Model) SetData(c models.Curriculum, plan models.StudentPlan) {
	m.curriculum = c
	m.status = make(map[string]models.CourseStatus)
	for _, sem := range plan.Semesters {
		for _, sc := range sem.Courses {
			m.status[sc.Course.ID] = sc.Status
		}
	}
	m.render()
}

func (m *Model) render() {
	if len(m.curriculum.Phases) == 0 {
		m.viewport.SetContent("No curriculum loaded.")
		return
	}

	cfg := m.engine.Config()
	vis := m.engine.Curriculum(m.curriculum)
	names := make(map[string]string, m.curriculum.CourseCount())
	headers := make([]string, len(m.curriculum.Phases))
	for i, phase := range m.curriculum.Phases {
		headers[i] = fmt.Sprintf("Phase %d", phase.Number)
		for _, c := range phase.Courses {
			names[c.ID] = c.Name
		}
	}

	cells := make([]board.Cell, 0, len(vis.Positions))
	for _, pos := range vis.Positions {
		status, ok := m.status[pos.CourseID]
		if !ok {
			status = models.StatusPending
		}
		cells = append(cells, board.Cell{
			Col:   int(pos.X / cfg.PhaseWidth),
			Row:   int((pos.Y - cfg.TopMargin) / cfg.VerticalSpacing),
			Text:  pos.CourseID + " " + names[pos.CourseID],
			Style: board.StatusStyle(status),
		})
	}

	m.viewport.SetContent(fmt.Sprintf("%s: %d courses\n\n%s",
		m.curriculum.Name, m.curriculum.CourseCount(), board.Render(cells, headers, colWidth)))
}
