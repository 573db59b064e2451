package planner

import (
	"fmt"

	"github.com/julianstephens/courselit/internal/curriculum"
	"github.com/julianstephens/courselit/internal/models"
	"github.com/julianstephens/courselit/internal/validation"
)

// CheckOrder reports planned or in-progress courses whose prerequisites are
// missing from the plan, failed, or placed in the same or a later semester.
// Prerequisites unknown to the curriculum are left to curriculum.Validate.
func CheckOrder(plan models.StudentPlan, lookup *curriculum.Lookup) validation.ValidationResult {
	type placement struct {
		semester int
		status   models.CourseStatus
	}
	placed := make(map[string]placement)
	for _, sem := range plan.Semesters {
		for _, c := range sem.Courses {
			placed[c.Course.ID] = placement{semester: sem.Number, status: c.Status}
		}
	}

	var result validation.ValidationResult
	for _, sem := range plan.Semesters {
		for _, c := range sem.Courses {
			if c.Status != models.StatusPlanned && c.Status != models.StatusInProgress {
				continue
			}
			for _, preID := range c.Course.Prerequisites {
				if !lookup.Has(preID) {
					continue
				}
				pre, ok := placed[preID]
				var problem string
				switch {
				case !ok:
					problem = "is not in the plan"
				case pre.status == models.StatusFailed:
					problem = fmt.Sprintf("was failed in semester %d", pre.semester)
				case pre.semester >= sem.Number && !pre.status.Satisfies():
					problem = fmt.Sprintf("is placed in semester %d", pre.semester)
				default:
					continue
				}
				result.Add(validation.Conflict{
					Type:        validation.ConflictPrerequisiteOrder,
					Description: fmt.Sprintf("%s (semester %d) requires %s, which %s", c.Course.ID, sem.Number, preID, problem),
					Items:       []string{c.Course.ID, preID},
				})
			}
		}
	}
	return result
}
