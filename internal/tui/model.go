package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/courselit/internal/config"
	"github.com/julianstephens/courselit/internal/deps"
	"github.com/julianstephens/courselit/internal/layout"
	"github.com/julianstephens/courselit/internal/models"
	"github.com/julianstephens/courselit/internal/session"
	"github.com/julianstephens/courselit/internal/tui/components/curriculum"
	"github.com/julianstephens/courselit/internal/tui/components/plan"
	"github.com/julianstephens/courselit/internal/tui/components/timetable"
)

type SessionState int

// Tabs come first so the tab index is the state.
const (
	StateCurriculum SessionState = iota
	StatePlan
	StateTimetable
	StateDeps
	StateMoveCourse
	StateAddCourse
)

var tabTitles = []string{"Curriculum", "Plan", "Timetable", "Dependencies"}

type MoveFormModel struct {
	CourseID string
	Semester int
	Position string
}

type AddFormModel struct {
	CourseID string
	Semester int
	Status   models.CourseStatus
}

// SaveFunc persists the plan of a snapshot after a mutation.
type SaveFunc func(*session.Snapshot) error

type loadedMsg struct {
	snap *session.Snapshot
	err  error
}

// planChangedMsg is emitted after every plan mutation. ch identifies the
// subscription it came from.
type planChangedMsg struct {
	plan models.StudentPlan
	ch   chan models.StudentPlan
}

type Model struct {
	loader *session.Loader
	cfg    config.Config
	save   SaveFunc
	engine *layout.Engine

	snap        *session.Snapshot
	loading     bool
	err         error
	changes     chan models.StudentPlan
	unsubscribe func()

	state         SessionState
	previousState SessionState
	keys          KeyMap
	help          help.Model

	planModel       plan.Model
	curriculumModel curriculum.Model
	timetableModel  timetable.Model
	depsView        viewport.Model
	depsCourse      string
	depsDir         deps.Direction

	form     *huh.Form
	moveForm *MoveFormModel
	addForm  *AddFormModel

	message  string
	warning  string
	quitting bool
	width    int
	height   int
}

func NewModel(loader *session.Loader, cfg config.Config, save SaveFunc) Model {
	engine := layout.New(cfg.LayoutConfig())
	return Model{
		loader:          loader,
		cfg:             cfg,
		save:            save,
		engine:          engine,
		loading:         true,
		state:           StatePlan,
		keys:            DefaultKeyMap(),
		help:            help.New(),
		planModel:       plan.New(engine, 0, 0),
		curriculumModel: curriculum.New(engine, 0, 0),
		timetableModel:  timetable.New(0, 0),
		depsView:        viewport.New(0, 0),
	}
}

func (m Model) Init() tea.Cmd {
	return m.load()
}

// load runs the session chain off the UI goroutine.
func (m Model) load() tea.Cmd {
	loader := m.loader
	return func() tea.Msg {
		snap, err := loader.Load(context.Background())
		return loadedMsg{snap: snap, err: err}
	}
}

// switchCurriculum reloads the curriculum stages for degree, keeping the
// loaded profile.
func (m Model) switchCurriculum(degree string) tea.Cmd {
	loader := m.loader
	return func() tea.Msg {
		snap, err := loader.SwitchCurriculum(context.Background(), degree)
		return loadedMsg{snap: snap, err: err}
	}
}

// waitForPlanChange blocks until the plan store reports a mutation. It
// yields nothing once the subscription is closed.
func waitForPlanChange(ch chan models.StudentPlan) tea.Cmd {
	return func() tea.Msg {
		p, ok := <-ch
		if !ok {
			return nil
		}
		return planChangedMsg{plan: p, ch: ch}
	}
}

// nextDegree returns the degree after the loaded one among the record's
// degree and the degrees the student is interested in.
func nextDegree(snap *session.Snapshot) (string, bool) {
	var degrees []string
	seen := make(map[string]bool)
	for _, d := range append([]string{snap.Record.CurrentDegree}, snap.Record.InterestedDegrees...) {
		if d != "" && !seen[d] {
			seen[d] = true
			degrees = append(degrees, d)
		}
	}
	for i, d := range degrees {
		if d == snap.Degree {
			next := degrees[(i+1)%len(degrees)]
			return next, next != snap.Degree
		}
	}
	if len(degrees) > 0 {
		return degrees[0], true
	}
	return "", false
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	switch m.state {
	case StatePlan:
		keys = append(keys, m.keys.Pick, m.keys.Move, m.keys.Add, m.keys.Remove, m.keys.Status)
	case StateDeps:
		keys = append(keys, m.keys.Toggle)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help, m.keys.Reload, m.keys.Switch}
	navigation := []key.Binding{m.keys.Up, m.keys.Down, m.keys.Left, m.keys.Right, m.keys.Enter}

	var actions []key.Binding
	switch m.state {
	case StatePlan:
		actions = []key.Binding{m.keys.Pick, m.keys.Cancel, m.keys.Move, m.keys.Add, m.keys.Remove, m.keys.Status}
	case StateDeps:
		actions = []key.Binding{m.keys.Toggle}
	}
	return [][]key.Binding{global, navigation, actions}
}

// setSnapshot shows snap and subscribes to its plan store. The returned
// command delivers the first change.
func (m *Model) setSnapshot(snap *session.Snapshot) tea.Cmd {
	m.stopWatching()
	m.snap = snap
	m.loading = false
	m.err = nil
	if m.depsCourse == "" {
		if sc, ok := m.planModel.Selected(); ok {
			m.depsCourse = sc.Course.ID
		}
	}
	m.refresh()

	ch := make(chan models.StudentPlan, 1)
	m.changes = ch
	m.unsubscribe = snap.Plan.Subscribe(func(p models.StudentPlan) {
		select {
		case ch <- p:
		default:
			// keep only the latest plan
			select {
			case <-ch:
			default:
			}
			ch <- p
		}
	})
	return waitForPlanChange(ch)
}

func (m *Model) stopWatching() {
	if m.unsubscribe == nil {
		return
	}
	m.unsubscribe()
	close(m.changes)
	m.unsubscribe = nil
	m.changes = nil
}

// refresh redraws every view from the current snapshot.
func (m *Model) refresh() {
	if m.snap == nil {
		return
	}
	p := m.snap.Plan.Plan()
	m.planModel.SetPlan(p)
	m.curriculumModel.SetData(m.snap.Curriculum, p)
	m.timetableModel.SetResult(m.snap.Timetable(m.cfg.Timetable.Slots))
	m.renderDeps()

	report := m.snap.Report(m.cfg.Timetable.Slots)
	if report.HasConflicts() {
		m.warning = fmt.Sprintf("⚠ %d validation warning(s)", len(report.Conflicts))
	} else {
		m.warning = ""
	}
}

func (m *Model) renderDeps() {
	if m.snap == nil || m.depsCourse == "" {
		m.depsView.SetContent("Select a course on the Plan tab and press enter.")
		return
	}
	tree, warnings, err := m.snap.Resolver().Tree(m.depsCourse, m.depsDir)
	if err != nil {
		m.depsView.SetContent(dangerStyle.Render(err.Error()))
		return
	}
	content := fmt.Sprintf("%s of %s\n\n%s", m.depsDir, m.depsCourse, tree.Render())
	for _, w := range warnings {
		content += "\n" + warningStyle.Render("warning: "+w.Description)
	}
	m.depsView.SetContent(content)
}

func (m *Model) resize() {
	// tabs, docStyle padding, message line and help
	h := max(0, m.height-6)
	w := max(0, m.width-4)
	m.planModel.SetSize(w, h)
	m.curriculumModel.SetSize(w, h)
	m.timetableModel.SetSize(w, h)
	m.depsView.Width = w
	m.depsView.Height = h
}
