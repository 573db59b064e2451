package plan

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/courselit/internal/layout"
	"github.com/julianstephens/courselit/internal/models"
	"github.com/julianstephens/courselit/internal/tui/components/board"
)

// ColWidth is the terminal width of one semester column.
const ColWidth = 22

var (
	cursorStyle = lipgloss.NewStyle().Reverse(true)
	pickedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	ghostStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

// Model is the semester board. The cursor may rest on a ghost slot, which is
// where a picked-up course is dropped.
type Model struct {
	viewport viewport.Model
	engine   *layout.Engine
	plan     models.StudentPlan
	vis      layout.StudentVisualization
	sem, row int
	picked   string
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
	if len(m.plan.Semesters) == 0 {
		return "No plan loaded."
	}
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = height
	m.render()
}

func (m *Model) SetPlan(plan models.StudentPlan) {
	m.plan = plan
	m.vis = m.engine.Student(plan, m.engine.Config().PhaseWidth)
	m.clamp()
	m.render()
}

// Cursor returns the 1-based semester number and 0-based row under the cursor.
func (m Model) Cursor() (semester, row int) {
	return m.sem + 1, m.row
}

// Selected returns the course under the cursor, if the cursor is not on a ghost.
func (m Model) Selected() (models.StudentCourse, bool) {
	if m.sem >= len(m.plan.Semesters) {
		return models.StudentCourse{}, false
	}
	courses := m.plan.Semesters[m.sem].Courses
	if m.row >= len(courses) {
		return models.StudentCourse{}, false
	}
	return courses[m.row], true
}

func (m *Model) MoveCursor(dSem, dRow int) {
	m.sem += dSem
	m.row += dRow
	m.clamp()
	m.render()
}

// ClickAt moves the cursor to the slot under a terminal cell. Coordinates are
// relative to the top-left of the board; line 0 is the semester header.
func (m *Model) ClickAt(x, y int) bool {
	cfg := m.engine.Config()
	lx := float64(x) / ColWidth * cfg.PhaseWidth
	ly := float64(y+m.viewport.YOffset) * cfg.VerticalSpacing
	semIdx, row, ok := m.engine.SlotAt(lx, ly, cfg.PhaseWidth)
	if !ok || semIdx >= len(m.plan.Semesters) {
		return false
	}
	m.sem, m.row = semIdx, row
	m.clamp()
	m.render()
	return true
}

// Pick marks the selected course as being moved. It returns false on a ghost.
func (m *Model) Pick() bool {
	sc, ok := m.Selected()
	if !ok {
		return false
	}
	m.picked = sc.Course.ID
	m.render()
	return true
}

func (m Model) Picked() string {
	return m.picked
}

func (m *Model) Drop() {
	m.picked = ""
	m.render()
}

func (m *Model) clamp() {
	n := len(m.plan.Semesters)
	if n == 0 {
		m.sem, m.row = 0, 0
		return
	}
	m.sem = max(0, min(m.sem, n-1))
	limit := max(len(m.plan.Semesters[m.sem].Courses), m.engine.Config().BoxesPerColumn)
	m.row = max(0, min(m.row, limit-1))
}

func (m *Model) render() {
	if len(m.plan.Semesters) == 0 {
		m.viewport.SetContent("No plan loaded.")
		return
	}

	cfg := m.engine.Config()
	headers := make([]string, len(m.plan.Semesters))
	for i, sem := range m.plan.Semesters {
		headers[i] = fmt.Sprintf("S%d %s %dcr", sem.Number, sem.Year, sem.TotalCredits)
		headers[i] = strings.Join(strings.Fields(headers[i]), " ")
	}

	cells := make([]board.Cell, 0, len(m.vis.Positions))
	for _, pos := range m.vis.Positions {
		cell := board.Cell{
			Col: int(pos.X / cfg.PhaseWidth),
			Row: int(pos.Y/cfg.VerticalSpacing) - 1,
		}
		if pos.IsGhost {
			cell.Text = "·"
			cell.Style = ghostStyle
		} else {
			sc := m.vis.CourseMap[pos.CourseID]
			cell.Text = sc.Course.ID + " " + sc.Course.Name
			cell.Style = board.StatusStyle(sc.Status)
			if sc.Course.ID == m.picked {
				cell.Style = pickedStyle
			}
		}
		if cell.Col == m.sem && cell.Row == m.row {
			cell.Style = cell.Style.Inherit(cursorStyle)
		}
		cells = append(cells, cell)
	}
	// Rows past the column capacity of an overfull semester have no ghost, so
	// the cursor there needs its own cell.
	if _, ok := m.Selected(); !ok && m.row >= cfg.BoxesPerColumn {
		cells = append(cells, board.Cell{Col: m.sem, Row: m.row, Text: "·", Style: cursorStyle})
	}

	m.viewport.SetContent(board.Render(cells, headers, ColWidth))
}
