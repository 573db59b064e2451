package session

import (
	"github.com/julianstephens/courselit/internal/constants"
	"github.com/julianstephens/courselit/internal/deps"
	"github.com/julianstephens/courselit/internal/models"
	"github.com/julianstephens/courselit/internal/planner"
	"github.com/julianstephens/courselit/internal/timetable"
	"github.com/julianstephens/courselit/internal/validation"
)

// Timetable places the plan's in-progress courses on the weekly grid.
func (s *Snapshot) Timetable(slots []string) timetable.Result {
	return timetable.New(slots, constants.DaysPerWeek).Assign(timetable.Input{
		Courses:   s.Plan.Plan().InProgress(),
		Defaults:  s.Schedule.Courses,
		Overrides: s.Overrides,
		Selected:  s.Schedule.Selected,
	})
}

func (s *Snapshot) Resolver() *deps.Resolver {
	return deps.NewResolver(s.Lookup)
}

// Report collects every data-integrity problem of the snapshot: load
// warnings, prerequisite ordering in the current plan and timetable
// collisions.
func (s *Snapshot) Report(slots []string) validation.ValidationResult {
	var vr validation.ValidationResult
	vr.Merge(s.Warnings)
	vr.Merge(planner.CheckOrder(s.Plan.Plan(), s.Lookup))
	vr.Merge(s.Timetable(slots).Report())
	return vr
}

// Saved is the current plan keyed for storage, fingerprinted with the record
// it was built from.
func (s *Snapshot) Saved() models.SavedPlan {
	return models.SavedPlan{
		StudentID:    s.Record.StudentID,
		CurriculumID: s.Degree,
		RecordHash:   planner.RecordHash(s.Record),
		Plan:         s.Plan.Plan(),
	}
}
