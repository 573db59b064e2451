package tui

import (
	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch {
	case m.state == StateMoveCourse || m.state == StateAddCourse:
		content = m.form.View()
	case m.err != nil:
		content = m.viewError()
	case m.snap == nil:
		content = "Loading…"
	default:
		switch m.state {
		case StateCurriculum:
			content = m.curriculumModel.View()
		case StatePlan:
			content = m.planModel.View()
		case StateTimetable:
			content = m.timetableModel.View()
		case StateDeps:
			content = m.depsView.View()
		}
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		docStyle.Render(content),
		m.viewStatusLine(),
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	active := m.state
	if active >= SessionState(len(tabTitles)) {
		active = m.previousState
	}
	var tabs []string
	for i, title := range tabTitles {
		if active == SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	if m.snap != nil {
		tabs = append(tabs, inactiveTabStyle.Render(m.snap.Curriculum.Name))
	}
	if m.loading && m.snap != nil {
		tabs = append(tabs, inactiveTabStyle.Render("reloading…"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewStatusLine() string {
	parts := make([]string, 0, 2)
	if m.message != "" {
		parts = append(parts, m.message)
	}
	if m.warning != "" {
		parts = append(parts, warningStyle.Render(m.warning))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, joinSpaced(parts)...)
}

func joinSpaced(parts []string) []string {
	out := make([]string, 0, len(parts)*2)
	for i, p := range parts {
		if i > 0 {
			out = append(out, "  ")
		}
		out = append(out, p)
	}
	return out
}

func (m Model) viewError() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		dangerStyle.Render("Failed to load: "+m.err.Error()),
		"",
		"Press ctrl+r to retry or q to quit.",
	)
}
