package tui

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/courselit/internal/deps"
	"github.com/julianstephens/courselit/internal/logger"
	"github.com/julianstephens/courselit/internal/models"
	"github.com/julianstephens/courselit/internal/planner"
	"github.com/julianstephens/courselit/internal/session"
)

// statusCycle is the order the status key steps through.
var statusCycle = []models.CourseStatus{
	models.StatusPlanned,
	models.StatusInProgress,
	models.StatusCompleted,
	models.StatusFailed,
	models.StatusExempted,
}

func nextStatus(s models.CourseStatus) models.CourseStatus {
	for i, st := range statusCycle {
		if st == s {
			return statusCycle[(i+1)%len(statusCycle)]
		}
	}
	return models.StatusPlanned
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resize()

	case loadedMsg:
		if errors.Is(msg.err, session.ErrStale) {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			logger.Error("Failed to load session", "error", msg.err)
			m.err = msg.err
			return m, nil
		}
		if msg.snap.Rebuilt {
			m.message = warningStyle.Render("Record changed since the plan was saved, plan rebuilt")
		}
		return m, m.setSnapshot(msg.snap)

	case planChangedMsg:
		if msg.ch != m.changes {
			return m, nil
		}
		m.refresh()
		return m, waitForPlanChange(m.changes)
	}

	switch m.state {
	case StateMoveCourse:
		return m, handleMoveForm(&m, msg)
	case StateAddCourse:
		return m, handleAddForm(&m, msg)
	}

	switch msg := msg.(type) {
	case tea.MouseMsg:
		if m.state == StatePlan && msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			m.planModel.ClickAt(msg.X-contentOffsetX, msg.Y-contentOffsetY)
			return m, nil
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			m.stopWatching()
			m.loader.Discard()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % SessionState(len(tabTitles))
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state - 1 + SessionState(len(tabTitles))) % SessionState(len(tabTitles))
			return m, nil
		case key.Matches(msg, m.keys.Reload):
			m.loading = true
			m.message = ""
			return m, m.load()
		case key.Matches(msg, m.keys.Switch) && m.snap != nil && !m.loading:
			degree, ok := nextDegree(m.snap)
			if !ok {
				m.message = warningStyle.Render("No other curriculum of interest")
				return m, nil
			}
			m.loading = true
			m.message = "Switching to " + degree
			return m, m.switchCurriculum(degree)
		}

		if m.snap != nil {
			switch m.state {
			case StatePlan:
				if cmd, ok := handlePlanKeys(&m, msg); ok {
					return m, cmd
				}
			case StateDeps:
				if key.Matches(msg, m.keys.Toggle) {
					if m.depsDir == deps.Prerequisites {
						m.depsDir = deps.Dependents
					} else {
						m.depsDir = deps.Prerequisites
					}
					m.renderDeps()
					return m, nil
				}
			}
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case StateCurriculum:
		m.curriculumModel, cmd = m.curriculumModel.Update(msg)
	case StatePlan:
		m.planModel, cmd = m.planModel.Update(msg)
	case StateTimetable:
		m.timetableModel, cmd = m.timetableModel.Update(msg)
	case StateDeps:
		m.depsView, cmd = m.depsView.Update(msg)
	}
	return m, cmd
}

func handlePlanKeys(m *Model, msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.planModel.MoveCursor(0, -1)
	case key.Matches(msg, m.keys.Down):
		m.planModel.MoveCursor(0, 1)
	case key.Matches(msg, m.keys.Left):
		m.planModel.MoveCursor(-1, 0)
	case key.Matches(msg, m.keys.Right):
		m.planModel.MoveCursor(1, 0)

	case key.Matches(msg, m.keys.Cancel):
		m.planModel.Drop()
		m.message = ""

	case key.Matches(msg, m.keys.Pick):
		if id := m.planModel.Picked(); id != "" {
			sem, row := m.planModel.Cursor()
			m.planModel.Drop()
			m.apply(fmt.Sprintf("Moved %s to semester %d", id, sem), func(s *planner.Store) error {
				return s.MoveCourse(id, sem, row)
			})
		} else if m.planModel.Pick() {
			m.message = fmt.Sprintf("Moving %s: choose a slot and press space", m.planModel.Picked())
		}

	case key.Matches(msg, m.keys.Enter):
		sc, ok := m.planModel.Selected()
		if !ok {
			return nil, true
		}
		m.depsCourse = sc.Course.ID
		m.depsDir = deps.Prerequisites
		m.renderDeps()
		m.state = StateDeps

	case key.Matches(msg, m.keys.Move):
		sc, ok := m.planModel.Selected()
		if !ok {
			return nil, true
		}
		sem, _ := m.planModel.Cursor()
		m.moveForm = &MoveFormModel{CourseID: sc.Course.ID, Semester: sem}
		m.form = NewMoveForm(m.moveForm, m.snap.Plan.Plan().Semesters)
		m.previousState = m.state
		m.state = StateMoveCourse
		return m.form.Init(), true

	case key.Matches(msg, m.keys.Add):
		available := m.snap.Plan.Available()
		if len(available) == 0 {
			m.message = warningStyle.Render("No courses with satisfied prerequisites")
			return nil, true
		}
		sem, _ := m.planModel.Cursor()
		m.addForm = &AddFormModel{CourseID: available[0].ID, Semester: sem, Status: models.StatusPlanned}
		m.form = NewAddForm(m.addForm, available, m.snap.Plan.Plan().Semesters)
		m.previousState = m.state
		m.state = StateAddCourse
		return m.form.Init(), true

	case key.Matches(msg, m.keys.Remove):
		sc, ok := m.planModel.Selected()
		if !ok {
			return nil, true
		}
		m.apply("Removed "+sc.Course.ID, func(s *planner.Store) error {
			return s.RemoveCourse(sc.Course.ID)
		})

	case key.Matches(msg, m.keys.Status):
		sc, ok := m.planModel.Selected()
		if !ok {
			return nil, true
		}
		next := nextStatus(sc.Status)
		m.apply(fmt.Sprintf("%s is now %s", sc.Course.ID, next), func(s *planner.Store) error {
			return s.SetStatus(sc.Course.ID, next)
		})

	default:
		return nil, false
	}
	return nil, true
}

// apply runs a plan mutation and persists the result. The store notifies
// the subscription set up by setSnapshot, which redraws. Mutation errors
// leave the plan untouched and are shown in the message line.
func (m *Model) apply(done string, fn func(*planner.Store) error) {
	if err := fn(m.snap.Plan); err != nil {
		m.message = dangerStyle.Render(err.Error())
		return
	}
	if m.save != nil {
		if err := m.save(m.snap); err != nil {
			logger.Error("Failed to save plan", "error", err)
			m.message = dangerStyle.Render("failed to save plan: " + err.Error())
			return
		}
	}
	m.message = statusStyle.Render(done)
}

// updateForm feeds msg to the open form. Esc returns to the previous tab.
func updateForm(m *Model, msg tea.Msg) (tea.Cmd, bool) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = m.previousState
		return nil, false
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	return cmd, true
}

func handleMoveForm(m *Model, msg tea.Msg) tea.Cmd {
	cmd, open := updateForm(m, msg)
	if !open {
		return nil
	}

	switch m.form.State {
	case huh.StateCompleted:
		fm := *m.moveForm
		pos := math.MaxInt
		if p := strings.TrimSpace(fm.Position); p != "" {
			if n, err := strconv.Atoi(p); err == nil {
				pos = n - 1
			}
		}
		m.state = m.previousState
		m.apply(fmt.Sprintf("Moved %s to semester %d", fm.CourseID, fm.Semester), func(s *planner.Store) error {
			return s.MoveCourse(fm.CourseID, fm.Semester, pos)
		})
	case huh.StateAborted:
		m.state = m.previousState
	}
	return cmd
}

func handleAddForm(m *Model, msg tea.Msg) tea.Cmd {
	cmd, open := updateForm(m, msg)
	if !open {
		return nil
	}

	switch m.form.State {
	case huh.StateCompleted:
		fm := *m.addForm
		m.state = m.previousState
		m.apply(fmt.Sprintf("Added %s to semester %d", fm.CourseID, fm.Semester), func(s *planner.Store) error {
			return s.AddCourse(fm.CourseID, fm.Semester, fm.Status)
		})
	case huh.StateAborted:
		m.state = m.previousState
	}
	return cmd
}
