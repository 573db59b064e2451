package curriculum

import (
	"fmt"

	"github.com/julianstephens/courselit/internal/models"
	"github.com/julianstephens/courselit/internal/validation"
)

// Lookup is an immutable courseID -> Course table for one curriculum. It
// remembers catalog order (phase order, then order within the phase). Build a
// new Lookup whenever a different curriculum is loaded.
type Lookup struct {
	name    string
	courses map[string]models.Course
	order   []string
	index   map[string]int
}

// NewLookup indexes every course of c. When an ID appears more than once the
// first occurrence is kept and the rest are reported.
func NewLookup(c models.Curriculum) (*Lookup, []validation.Conflict) {
	l := &Lookup{
		name:    c.Name,
		courses: make(map[string]models.Course, c.CourseCount()),
		index:   make(map[string]int, c.CourseCount()),
	}

	var warnings []validation.Conflict
	for _, phase := range c.Phases {
		for _, course := range phase.Courses {
			if _, exists := l.courses[course.ID]; exists {
				warnings = append(warnings, validation.Conflict{
					Type:        validation.ConflictDuplicateCourse,
					Description: fmt.Sprintf("course %s appears more than once in curriculum %q (phase %d copy ignored)", course.ID, c.Name, phase.Number),
					Items:       []string{course.ID},
				})
				continue
			}
			l.index[course.ID] = len(l.order)
			l.order = append(l.order, course.ID)
			l.courses[course.ID] = course
		}
	}
	return l, warnings
}

// Name returns the curriculum name the lookup was built from.
func (l *Lookup) Name() string {
	if l == nil {
		return ""
	}
	return l.name
}

func (l *Lookup) Get(id string) (models.Course, bool) {
	if l == nil {
		return models.Course{}, false
	}
	c, ok := l.courses[id]
	return c, ok
}

func (l *Lookup) Has(id string) bool {
	_, ok := l.Get(id)
	return ok
}

// Index returns the catalog position of a course.
func (l *Lookup) Index(id string) (int, bool) {
	if l == nil {
		return 0, false
	}
	i, ok := l.index[id]
	return i, ok
}

func (l *Lookup) Len() int {
	if l == nil {
		return 0
	}
	return len(l.order)
}

// Courses returns every course in catalog order.
func (l *Lookup) Courses() []models.Course {
	if l == nil {
		return nil
	}
	out := make([]models.Course, len(l.order))
	for i, id := range l.order {
		out[i] = l.courses[id]
	}
	return out
}
