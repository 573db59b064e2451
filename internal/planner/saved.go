package planner

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/julianstephens/courselit/internal/curriculum"
	"github.com/julianstephens/courselit/internal/models"
	"github.com/julianstephens/courselit/internal/validation"
)

// RecordHash fingerprints the parts of a record a plan is built from. The
// degree is left out so switching curricula does not count as a change.
func RecordHash(rec models.StudentRecord) string {
	data, _ := json.Marshal(struct {
		CurrentSemester int                       `json:"currentSemester"`
		FirstTerm       string                    `json:"firstTerm"`
		Coursed         [][]models.RawCourseEntry `json:"coursed"`
		Plan            [][]models.RawCourseEntry `json:"plan"`
	}{rec.CurrentSemester, rec.FirstTerm, rec.Coursed, rec.Plan})
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Trim drops semesters past total, reporting every course they held.
func Trim(plan models.StudentPlan, total int) (models.StudentPlan, []validation.Conflict) {
	if total < 1 || len(plan.Semesters) <= total {
		return plan, nil
	}
	var warnings []validation.Conflict
	for _, sem := range plan.Semesters[total:] {
		for _, c := range sem.Courses {
			warnings = append(warnings, validation.Conflict{
				Type:        validation.ConflictInvalidSemester,
				Description: fmt.Sprintf("saved course %s in semester %d is past the last semester (%d)", c.Course.ID, sem.Number, total),
				Items:       []string{c.Course.ID},
			})
		}
	}
	plan.Semesters = plan.Semesters[:total]
	return plan, warnings
}

// KeepPlanned copies the planned courses of saved into built, in the same
// semester, when built does not already place them. It returns how many
// were carried over.
func KeepPlanned(built, saved models.StudentPlan, lookup *curriculum.Lookup) (models.StudentPlan, int) {
	placed := make(map[string]bool)
	for _, sem := range built.Semesters {
		for _, c := range sem.Courses {
			placed[c.Course.ID] = true
		}
	}

	kept := 0
	for i, sem := range saved.Semesters {
		if i >= len(built.Semesters) {
			break
		}
		for _, c := range sem.Courses {
			if c.Status != models.StatusPlanned || placed[c.Course.ID] {
				continue
			}
			course, ok := lookup.Get(c.Course.ID)
			if !ok {
				continue
			}
			built.Semesters[i].Courses = append(built.Semesters[i].Courses, models.StudentCourse{Course: course, Status: models.StatusPlanned})
			placed[course.ID] = true
			kept++
		}
	}
	for i := range built.Semesters {
		built.Semesters[i].RecomputeCredits()
	}
	return built, kept
}
