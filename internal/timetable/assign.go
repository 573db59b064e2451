package timetable

import (
	"fmt"

	"github.com/julianstephens/courselit/internal/constants"
	"github.com/julianstephens/courselit/internal/models"
	"github.com/julianstephens/courselit/internal/validation"
)

// ClassLength is the number of consecutive slots a class occupies.
const ClassLength = 2

type Input struct {
	// Courses are the student's in-progress courses.
	Courses []models.StudentCourse
	// Defaults is the default schedule keyed by course ID.
	Defaults map[string][]models.ScheduleEntry
	// Overrides holds parsed professor schedules keyed by course ID, then professor ID.
	Overrides map[string]map[string]models.ProfessorOverride
	// Selected maps a course ID to the professor whose override is active.
	Selected map[string]string
}

type Result struct {
	Grid *Grid
	// Collisions has one entry per pair of courses claiming the same cell.
	Collisions []validation.Conflict
	// Warnings lists skipped entries.
	Warnings []validation.Conflict
	// Unscheduled lists courses with no schedule entries at all.
	Unscheduled []string
}

// Report merges collisions and warnings.
func (r Result) Report() validation.ValidationResult {
	var vr validation.ValidationResult
	vr.Add(r.Collisions...)
	vr.Add(r.Warnings...)
	return vr
}

type Assigner struct {
	slots []string
	days  int
}

func New(slots []string, days int) *Assigner {
	if len(slots) == 0 {
		slots = constants.DefaultSlots
	}
	if days <= 0 {
		days = constants.DaysPerWeek
	}
	return &Assigner{slots: slots, days: days}
}

type cell struct {
	slot string
	day  int
}

type assignment struct {
	grid   *Grid
	claims map[cell][]string
	result *Result
}

// Assign places courses on the weekly grid. Courses without an active
// override go first, using the default schedule; overridden courses go second
// and use only their override's entries. When two courses claim a cell the
// later one keeps it and the pair is reported as a collision.
func (a *Assigner) Assign(in Input) Result {
	result := Result{Grid: NewGrid(a.slots, a.days)}
	st := &assignment{
		grid:   result.Grid,
		claims: make(map[cell][]string),
		result: &result,
	}

	var overridden []models.StudentCourse
	var overrideEntries [][]models.ScheduleEntry
	for _, sc := range in.Courses {
		if ov, ok := activeOverride(in, sc.Course.ID, &result); ok {
			overridden = append(overridden, sc)
			overrideEntries = append(overrideEntries, ov.Entries)
			continue
		}

		entries, ok := in.Defaults[sc.Course.ID]
		if !ok || len(entries) == 0 {
			result.Unscheduled = append(result.Unscheduled, sc.Course.ID)
			continue
		}
		st.place(sc, entries)
	}

	for i, sc := range overridden {
		if len(overrideEntries[i]) == 0 {
			result.Unscheduled = append(result.Unscheduled, sc.Course.ID)
			continue
		}
		st.place(sc, overrideEntries[i])
	}

	return result
}

func activeOverride(in Input, courseID string, result *Result) (models.ProfessorOverride, bool) {
	profID, ok := in.Selected[courseID]
	if !ok || profID == "" {
		return models.ProfessorOverride{}, false
	}
	ov, ok := in.Overrides[courseID][profID]
	if !ok {
		result.Warnings = append(result.Warnings, validation.Conflict{
			Type:        validation.ConflictInvalidRecord,
			Description: fmt.Sprintf("selected professor %s has no schedule for course %s, using default", profID, courseID),
			Items:       []string{courseID},
		})
		return models.ProfessorOverride{}, false
	}
	return ov, true
}

func (st *assignment) place(sc models.StudentCourse, entries []models.ScheduleEntry) {
	course := sc
	for _, entry := range entries {
		if entry.Day < 0 || entry.Day >= st.grid.Days {
			st.result.Warnings = append(st.result.Warnings, validation.Conflict{
				Type:        validation.ConflictInvalidDay,
				Description: fmt.Sprintf("course %s has a class on day %d, outside the %d-day week", sc.Course.ID, entry.Day, st.grid.Days),
				Items:       []string{sc.Course.ID},
				Day:         entry.Day,
			})
			continue
		}

		start, ok := st.grid.SlotIndex(entry.StartTime)
		if !ok {
			st.result.Warnings = append(st.result.Warnings, validation.Conflict{
				Type:        validation.ConflictInvalidTime,
				Description: fmt.Sprintf("course %s starts at %q, which is not a known slot", sc.Course.ID, entry.StartTime),
				Items:       []string{sc.Course.ID},
				Slot:        entry.StartTime,
				Day:         entry.Day,
			})
			continue
		}

		end := min(start+ClassLength, len(st.grid.Slots))
		for i := start; i < end; i++ {
			st.claim(cell{slot: st.grid.Slots[i], day: entry.Day}, &course)
		}
	}
}

func (st *assignment) claim(c cell, course *models.StudentCourse) {
	id := course.Course.ID
	for _, other := range st.claims[c] {
		if other == id {
			st.grid.set(c.slot, c.day, course)
			return
		}
	}

	for _, other := range st.claims[c] {
		st.result.Collisions = append(st.result.Collisions, validation.Conflict{
			Type: validation.ConflictSlotCollision,
			Description: fmt.Sprintf("%s and %s both meet %s at %s",
				other, id, dayName(c.day), c.slot),
			Items: []string{other, id},
			Slot:  c.slot,
			Day:   c.day,
		})
	}
	st.claims[c] = append(st.claims[c], id)
	st.grid.set(c.slot, c.day, course)
}

func dayName(day int) string {
	if day >= 0 && day < len(constants.DayNames) {
		return constants.DayNames[day]
	}
	return fmt.Sprintf("day %d", day)
}
