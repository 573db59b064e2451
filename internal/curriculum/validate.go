package curriculum

import (
	"fmt"

	"github.com/julianstephens/courselit/internal/models"
	"github.com/julianstephens/courselit/internal/validation"
)

// Validate reports data-integrity problems in a curriculum. Nothing here is
// fatal: callers keep using the curriculum and skip what was reported.
func Validate(c models.Curriculum, lookup *Lookup) validation.ValidationResult {
	var result validation.ValidationResult

	if c.TotalPhases > 0 && len(c.Phases) > c.TotalPhases {
		result.Add(validation.Conflict{
			Type:        validation.ConflictPhaseMismatch,
			Description: fmt.Sprintf("curriculum %q declares %d phases but lists %d", c.Name, c.TotalPhases, len(c.Phases)),
		})
	}

	for _, phase := range c.Phases {
		for _, course := range phase.Courses {
			if err := validation.Struct(course); err != nil {
				result.Add(validation.Conflict{
					Type:        validation.ConflictInvalidRecord,
					Description: fmt.Sprintf("course %q: %v", course.ID, err),
					Items:       []string{course.ID},
				})
			}
			if course.Phase != phase.Number {
				result.Add(validation.Conflict{
					Type:        validation.ConflictPhaseMismatch,
					Description: fmt.Sprintf("course %s declares phase %d but is listed under phase %d", course.ID, course.Phase, phase.Number),
					Items:       []string{course.ID},
				})
			}
		}
	}

	// Prerequisite checks run against the deduplicated lookup.
	for _, course := range lookup.Courses() {
		for _, preID := range course.Prerequisites {
			pre, ok := lookup.Get(preID)
			if !ok {
				result.Add(validation.Conflict{
					Type:        validation.ConflictUnresolvedPrerequisite,
					Description: fmt.Sprintf("course %s lists unknown prerequisite %s", course.ID, preID),
					Items:       []string{course.ID, preID},
				})
				continue
			}
			if pre.Phase > course.Phase {
				result.Add(validation.Conflict{
					Type:        validation.ConflictPrerequisitePhase,
					Description: fmt.Sprintf("prerequisite %s (phase %d) comes after dependent %s (phase %d)", pre.ID, pre.Phase, course.ID, course.Phase),
					Items:       []string{course.ID, pre.ID},
				})
			}
		}
	}

	return result
}
