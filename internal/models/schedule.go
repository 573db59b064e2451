package models

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"
)

// ScheduleEntry places a class start on a weekday. Day is 0-based from Monday.
type ScheduleEntry struct {
	Day       int    `json:"day" csv:"day"`
	StartTime string `json:"startTime" csv:"start_time"`
}

// ProfessorSchedule is the raw professor-specific schedule string, e.g. "Mon/Wed 08:00-09:40".
type ProfessorSchedule struct {
	ProfessorID string `json:"professorId"`
	Schedule    string `json:"schedule"`
}

// ProfessorOverride is a parsed ProfessorSchedule. Its entries replace the
// course's default schedule when the professor is selected.
type ProfessorOverride struct {
	ID          string          `json:"id"`
	CourseID    string          `json:"courseId"`
	ProfessorID string          `json:"professorId"`
	Entries     []ScheduleEntry `json:"entries"`
}

const (
	scheduleProfessorsKey = "professors"
	scheduleSelectedKey   = "selected"
	scheduleInvalidKey    = "invalid"
)

// ScheduleSource is the class-schedule table for one term. On the wire the
// default schedule is keyed directly by course ID next to the reserved
// "professors", "selected" and "invalid" keys. Invalid is written back so a
// stored schedule keeps reporting the courses that failed to decode on import.
type ScheduleSource struct {
	Courses    map[string][]ScheduleEntry     `json:"-"`
	Professors map[string][]ProfessorSchedule `json:"-"`
	// Selected maps a course ID to the professor the student picked.
	Selected map[string]string `json:"-"`
	// Invalid lists course IDs whose entries could not be decoded.
	Invalid []string `json:"-"`
}

func NewScheduleSource() ScheduleSource {
	return ScheduleSource{
		Courses:    make(map[string][]ScheduleEntry),
		Professors: make(map[string][]ProfessorSchedule),
		Selected:   make(map[string]string),
	}
}

func (s *ScheduleSource) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse schedule source: %w", err)
	}

	*s = NewScheduleSource()
	for key, value := range raw {
		switch key {
		case scheduleProfessorsKey:
			if err := json.Unmarshal(value, &s.Professors); err != nil {
				return fmt.Errorf("failed to parse professors: %w", err)
			}
		case scheduleSelectedKey:
			if err := json.Unmarshal(value, &s.Selected); err != nil {
				return fmt.Errorf("failed to parse selected professors: %w", err)
			}
		case scheduleInvalidKey:
			var ids []string
			if err := json.Unmarshal(value, &ids); err != nil {
				return fmt.Errorf("failed to parse invalid course list: %w", err)
			}
			s.Invalid = append(s.Invalid, ids...)
		default:
			var entries []ScheduleEntry
			if err := json.Unmarshal(value, &entries); err != nil {
				s.Invalid = append(s.Invalid, key)
				continue
			}
			s.Courses[key] = entries
		}
	}
	sort.Strings(s.Invalid)
	s.Invalid = slices.Compact(s.Invalid)
	if s.Professors == nil {
		s.Professors = make(map[string][]ProfessorSchedule)
	}
	if s.Selected == nil {
		s.Selected = make(map[string]string)
	}
	return nil
}

func (s ScheduleSource) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Courses)+3)
	for id, entries := range s.Courses {
		out[id] = entries
	}
	if len(s.Professors) > 0 {
		out[scheduleProfessorsKey] = s.Professors
	}
	if len(s.Selected) > 0 {
		out[scheduleSelectedKey] = s.Selected
	}
	if len(s.Invalid) > 0 {
		out[scheduleInvalidKey] = s.Invalid
	}
	return json.Marshal(out)
}
