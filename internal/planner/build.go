package planner

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/julianstephens/courselit/internal/constants"
	"github.com/julianstephens/courselit/internal/curriculum"
	"github.com/julianstephens/courselit/internal/models"
	"github.com/julianstephens/courselit/internal/validation"
)

type Options struct {
	PlanNumber     int
	TotalSemesters int
	PassingGrade   float64
	MaxGrade       float64
}

func DefaultOptions() Options {
	return Options{
		PlanNumber:     constants.DefaultPlanNumber,
		TotalSemesters: constants.DefaultTotalSemesters,
		PassingGrade:   constants.DefaultPassingGrade,
		MaxGrade:       constants.DefaultMaxGrade,
	}
}

// Build turns a raw student record into a plan with exactly
// opts.TotalSemesters semesters. Entries that cannot be placed are skipped
// and reported; Build itself never fails.
func Build(rec models.StudentRecord, lookup *curriculum.Lookup, opts Options) (models.StudentPlan, []validation.Conflict) {
	plan := EmptyPlan(opts.PlanNumber, opts.TotalSemesters, rec.FirstTerm)
	b := &builder{plan: &plan, lookup: lookup, where: make(map[string]int)}

	for offset, entries := range rec.Coursed {
		for _, entry := range entries {
			b.add(offset, entry, coursedStatus(offset+1, rec.CurrentSemester, entry.Grade, opts.PassingGrade))
		}
	}
	for offset, entries := range rec.Plan {
		for _, entry := range entries {
			b.add(offset, entry, models.StatusPlanned)
		}
	}

	for i := range plan.Semesters {
		plan.Semesters[i].RecomputeCredits()
	}
	return plan, b.warnings
}

// EmptyPlan returns a plan with total empty semesters. Year labels are
// derived from firstTerm when it is set.
func EmptyPlan(number, total int, firstTerm string) models.StudentPlan {
	plan := models.StudentPlan{Number: number, Semesters: make([]models.StudentSemester, total)}
	for i := range plan.Semesters {
		plan.Semesters[i] = models.StudentSemester{
			Number:  i + 1,
			Year:    TermLabel(firstTerm, i),
			Courses: []models.StudentCourse{},
		}
	}
	return plan
}

// TermLabel returns the "YYYY.N" label offset semesters after first, or ""
// when first is not a valid term.
func TermLabel(first string, offset int) string {
	yearStr, halfStr, ok := strings.Cut(first, ".")
	if !ok {
		return ""
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return ""
	}
	half, err := strconv.Atoi(halfStr)
	if err != nil || half < 1 || half > 2 {
		return ""
	}
	n := (half - 1) + offset
	return fmt.Sprintf("%d.%d", year+n/2, n%2+1)
}

func coursedStatus(semester, current int, grade *float64, passing float64) models.CourseStatus {
	switch {
	case semester >= current:
		return models.StatusInProgress
	case grade == nil:
		return models.StatusExempted
	case *grade >= passing:
		return models.StatusCompleted
	default:
		return models.StatusFailed
	}
}

type builder struct {
	plan     *models.StudentPlan
	lookup   *curriculum.Lookup
	where    map[string]int
	warnings []validation.Conflict
}

func (b *builder) add(offset int, entry models.RawCourseEntry, status models.CourseStatus) {
	if entry.Invalid {
		b.warn(validation.ConflictInvalidRecord, nil, "malformed course entry %s in semester %d skipped", entry.Raw, offset+1)
		return
	}
	if offset >= len(b.plan.Semesters) {
		b.warn(validation.ConflictInvalidSemester, []string{entry.CourseCode}, "course %s in semester %d is past the last semester (%d)", entry.CourseCode, offset+1, len(b.plan.Semesters))
		return
	}
	course, ok := b.lookup.Get(entry.CourseCode)
	if !ok {
		b.warn(validation.ConflictUnknownCourse, []string{entry.CourseCode}, "course %s in semester %d is not in curriculum %q", entry.CourseCode, offset+1, b.lookup.Name())
		return
	}

	if prev, seen := b.where[course.ID]; seen {
		b.warn(validation.ConflictDuplicateCourse, []string{course.ID}, "course %s appears in semesters %d and %d, keeping semester %d", course.ID, prev+1, offset+1, offset+1)
		removeCourse(&b.plan.Semesters[prev], course.ID)
	}

	sc := models.StudentCourse{Course: course, Status: status, ClassCode: entry.ClassCode}
	if entry.Grade != nil {
		g := *entry.Grade
		sc.Grade = &g
	}
	sem := &b.plan.Semesters[offset]
	sem.Courses = append(sem.Courses, sc)
	b.where[course.ID] = offset
}

func (b *builder) warn(t validation.ConflictType, items []string, format string, args ...any) {
	b.warnings = append(b.warnings, validation.Conflict{
		Type:        t,
		Description: fmt.Sprintf(format, args...),
		Items:       items,
	})
}

func removeCourse(sem *models.StudentSemester, courseID string) (models.StudentCourse, bool) {
	for i, c := range sem.Courses {
		if c.Course.ID == courseID {
			sem.Courses = append(sem.Courses[:i], sem.Courses[i+1:]...)
			return c, true
		}
	}
	return models.StudentCourse{}, false
}
