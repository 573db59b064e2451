package timetable

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/courselit/internal/constants"
	"github.com/julianstephens/courselit/internal/models"
	"github.com/julianstephens/courselit/internal/validation"
)

var dayMap = map[string]int{
	"mon": 0, "monday": 0, "seg": 0, "segunda": 0,
	"tue": 1, "tuesday": 1, "ter": 1, "terca": 1, "terça": 1,
	"wed": 2, "wednesday": 2, "qua": 2, "quarta": 2,
	"thu": 3, "thursday": 3, "qui": 3, "quinta": 3,
	"fri": 4, "friday": 4, "sex": 4, "sexta": 4,
	"sat": 5, "saturday": 5, "sab": 5, "sáb": 5, "sabado": 5, "sábado": 5,
}

// ParseDay resolves a day name to its 0-based column (Monday = 0).
func ParseDay(name string) (int, bool) {
	day, ok := dayMap[strings.ToLower(strings.TrimSpace(name))]
	return day, ok
}

// ParseSchedule parses a professor schedule such as "Mon/Wed 08:20-10:00".
// Each known day yields one entry at the start time. The end time is not
// used: every class is two slots long. Unknown days are skipped and reported.
func ParseSchedule(schedule string) ([]models.ScheduleEntry, []validation.Conflict) {
	fields := strings.Fields(schedule)
	if len(fields) != 2 {
		return nil, []validation.Conflict{{
			Type:        validation.ConflictInvalidTime,
			Description: fmt.Sprintf("schedule %q is not in \"Day1/Day2 HH:MM-HH:MM\" form", schedule),
		}}
	}

	start, _, _ := strings.Cut(fields[1], "-")
	if !isValidTime(start) {
		return nil, []validation.Conflict{{
			Type:        validation.ConflictInvalidTime,
			Description: fmt.Sprintf("schedule %q has invalid start time %q", schedule, start),
		}}
	}

	var entries []models.ScheduleEntry
	var warnings []validation.Conflict
	for _, name := range strings.Split(fields[0], "/") {
		day, ok := ParseDay(name)
		if !ok {
			warnings = append(warnings, validation.Conflict{
				Type:        validation.ConflictUnknownDay,
				Description: fmt.Sprintf("schedule %q names unknown day %q", schedule, name),
			})
			continue
		}
		entries = append(entries, models.ScheduleEntry{Day: day, StartTime: start})
	}
	return entries, warnings
}

// BuildOverrides parses every professor schedule of a source. The result is
// keyed by course ID, then professor ID.
func BuildOverrides(professors map[string][]models.ProfessorSchedule) (map[string]map[string]models.ProfessorOverride, []validation.Conflict) {
	overrides := make(map[string]map[string]models.ProfessorOverride, len(professors))
	var warnings []validation.Conflict

	for _, courseID := range slices.Sorted(maps.Keys(professors)) {
		for _, ps := range professors[courseID] {
			entries, ws := ParseSchedule(ps.Schedule)
			for i := range ws {
				ws[i].Items = []string{courseID}
			}
			warnings = append(warnings, ws...)

			if overrides[courseID] == nil {
				overrides[courseID] = make(map[string]models.ProfessorOverride)
			}
			overrides[courseID][ps.ProfessorID] = models.ProfessorOverride{
				ID:          uuid.New().String(),
				CourseID:    courseID,
				ProfessorID: ps.ProfessorID,
				Entries:     entries,
			}
		}
	}
	return overrides, warnings
}

func isValidTime(s string) bool {
	_, err := time.Parse(constants.TimeFormat, s)
	return err == nil && len(s) == len(constants.TimeFormat)
}
