package planner

import (
	"errors"
	"fmt"
	"sync"

	"github.com/julianstephens/courselit/internal/curriculum"
	"github.com/julianstephens/courselit/internal/models"
)

var (
	ErrUnknownCourse   = errors.New("course not in curriculum")
	ErrCourseInPlan    = errors.New("course already in plan")
	ErrCourseNotInPlan = errors.New("course not in plan")
	ErrInvalidSemester = errors.New("semester out of range")
	ErrInvalidStatus   = errors.New("invalid course status")
	ErrInvalidGrade    = errors.New("grade out of range")
)

// Store is the single owner of a student plan. Mutations are applied one at
// a time; each one recomputes semester credits and notifies subscribers with
// a snapshot.
type Store struct {
	mu          sync.Mutex
	plan        models.StudentPlan
	lookup      *curriculum.Lookup
	opts        Options
	subscribers map[int]func(models.StudentPlan)
	nextSub     int
}

func NewStore(plan models.StudentPlan, lookup *curriculum.Lookup, opts Options) *Store {
	p := plan.Clone()
	for len(p.Semesters) < opts.TotalSemesters {
		p.Semesters = append(p.Semesters, models.StudentSemester{
			Number:  len(p.Semesters) + 1,
			Courses: []models.StudentCourse{},
		})
	}
	for i := range p.Semesters {
		p.Semesters[i].RecomputeCredits()
	}
	return &Store{
		plan:        p,
		lookup:      lookup,
		opts:        opts,
		subscribers: make(map[int]func(models.StudentPlan)),
	}
}

// Plan returns a snapshot of the current plan.
func (s *Store) Plan() models.StudentPlan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plan.Clone()
}

func (s *Store) Lookup() *curriculum.Lookup {
	return s.lookup
}

// Subscribe registers fn to receive a snapshot after every mutation. The
// returned function removes the subscription.
func (s *Store) Subscribe(fn func(models.StudentPlan)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// Find returns the 1-based semester number holding courseID.
func (s *Store) Find(courseID string) (models.StudentCourse, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	semIdx, idx, ok := s.locate(courseID)
	if !ok {
		return models.StudentCourse{}, 0, false
	}
	return s.plan.Semesters[semIdx].Courses[idx], semIdx + 1, true
}

// AddCourse appends a catalog course to a semester. An empty status means planned.
func (s *Store) AddCourse(courseID string, semester int, status models.CourseStatus) error {
	if status == "" {
		status = models.StatusPlanned
	}
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	course, ok := s.lookup.Get(courseID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCourse, courseID)
	}

	return s.mutate(func(p *models.StudentPlan) error {
		if err := checkSemester(p, semester); err != nil {
			return err
		}
		if _, _, ok := s.locate(courseID); ok {
			return fmt.Errorf("%w: %s", ErrCourseInPlan, courseID)
		}
		sem := &p.Semesters[semester-1]
		sem.Courses = append(sem.Courses, models.StudentCourse{Course: course, Status: status})
		return nil
	})
}

// MoveCourse removes a course from its semester and inserts it at index in
// the target semester. The index is clamped to the target's bounds.
func (s *Store) MoveCourse(courseID string, semester, index int) error {
	return s.mutate(func(p *models.StudentPlan) error {
		if err := checkSemester(p, semester); err != nil {
			return err
		}
		semIdx, _, ok := s.locate(courseID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrCourseNotInPlan, courseID)
		}

		sc, _ := removeCourse(&p.Semesters[semIdx], courseID)
		target := &p.Semesters[semester-1]
		index = max(0, min(index, len(target.Courses)))
		target.Courses = append(target.Courses, models.StudentCourse{})
		copy(target.Courses[index+1:], target.Courses[index:])
		target.Courses[index] = sc
		return nil
	})
}

// RemoveCourse drops a course from the plan, returning it to pending.
func (s *Store) RemoveCourse(courseID string) error {
	return s.mutate(func(p *models.StudentPlan) error {
		semIdx, _, ok := s.locate(courseID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrCourseNotInPlan, courseID)
		}
		removeCourse(&p.Semesters[semIdx], courseID)
		return nil
	})
}

func (s *Store) SetStatus(courseID string, status models.CourseStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return s.update(courseID, func(sc *models.StudentCourse) error {
		sc.Status = status
		return nil
	})
}

// SetGrade records a grade. A nil grade clears it.
func (s *Store) SetGrade(courseID string, grade *float64) error {
	if grade != nil && (*grade < 0 || *grade > s.opts.MaxGrade) {
		return fmt.Errorf("%w: %.2f (allowed 0 to %.2f)", ErrInvalidGrade, *grade, s.opts.MaxGrade)
	}
	return s.update(courseID, func(sc *models.StudentCourse) error {
		if grade == nil {
			sc.Grade = nil
			return nil
		}
		g := *grade
		sc.Grade = &g
		return nil
	})
}

func (s *Store) SetClassCode(courseID, code string) error {
	return s.update(courseID, func(sc *models.StudentCourse) error {
		sc.ClassCode = code
		return nil
	})
}

// Available lists catalog courses that are not in the plan and whose
// prerequisites are all completed or exempted.
func (s *Store) Available() []models.Course {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := make(map[string]models.CourseStatus)
	for _, sem := range s.plan.Semesters {
		for _, c := range sem.Courses {
			status[c.Course.ID] = c.Status
		}
	}

	var out []models.Course
	for _, course := range s.lookup.Courses() {
		if _, inPlan := status[course.ID]; inPlan {
			continue
		}
		ready := true
		for _, pre := range course.Prerequisites {
			if !status[pre].Satisfies() {
				ready = false
				break
			}
		}
		if ready {
			out = append(out, course)
		}
	}
	return out
}

// Record writes the plan back into the raw record shape. Every non-planned
// course goes to coursed, planned courses go to plan. Entries of base the
// plan could not hold (unreadable tuples or courses outside the curriculum)
// are kept at their original semester after the plan's own entries.
func (s *Store) Record(base models.StudentRecord) models.StudentRecord {
	plan := s.Plan()
	rec := base
	rec.Coursed = nil
	rec.Plan = nil

	for i, sem := range plan.Semesters {
		for _, c := range sem.Courses {
			entry := models.RawCourseEntry{CourseCode: c.Course.ID, ClassCode: c.ClassCode, Grade: c.Grade}
			if c.Status == models.StatusPlanned {
				rec.Plan = growTo(rec.Plan, i+1)
				rec.Plan[i] = append(rec.Plan[i], entry)
			} else {
				rec.Coursed = growTo(rec.Coursed, i+1)
				rec.Coursed[i] = append(rec.Coursed[i], entry)
			}
		}
	}
	rec.Coursed = s.carry(rec.Coursed, base.Coursed, len(plan.Semesters))
	rec.Plan = s.carry(rec.Plan, base.Plan, len(plan.Semesters))
	return rec
}

func (s *Store) carry(out, base [][]models.RawCourseEntry, semesters int) [][]models.RawCourseEntry {
	for i, entries := range base {
		for _, e := range entries {
			if i < semesters && !e.Invalid && s.lookup.Has(e.CourseCode) {
				continue
			}
			out = growTo(out, i+1)
			out[i] = append(out[i], e)
		}
	}
	return out
}

func growTo(semesters [][]models.RawCourseEntry, n int) [][]models.RawCourseEntry {
	for len(semesters) < n {
		semesters = append(semesters, []models.RawCourseEntry{})
	}
	return semesters
}

func (s *Store) update(courseID string, fn func(*models.StudentCourse) error) error {
	return s.mutate(func(p *models.StudentPlan) error {
		semIdx, idx, ok := s.locate(courseID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrCourseNotInPlan, courseID)
		}
		return fn(&p.Semesters[semIdx].Courses[idx])
	})
}

// mutate applies fn under the lock. On error the plan is left unchanged.
func (s *Store) mutate(fn func(*models.StudentPlan) error) error {
	s.mu.Lock()
	working := s.plan.Clone()
	original := s.plan
	s.plan = working
	if err := fn(&s.plan); err != nil {
		s.plan = original
		s.mu.Unlock()
		return err
	}
	for i := range s.plan.Semesters {
		s.plan.Semesters[i].RecomputeCredits()
	}
	snapshot := s.plan.Clone()
	subs := make([]func(models.StudentPlan), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
	return nil
}

// locate must be called with mu held.
func (s *Store) locate(courseID string) (semIdx, idx int, ok bool) {
	for i, sem := range s.plan.Semesters {
		for j, c := range sem.Courses {
			if c.Course.ID == courseID {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}

func checkSemester(p *models.StudentPlan, semester int) error {
	if semester < 1 || semester > len(p.Semesters) {
		return fmt.Errorf("%w: %d (plan has %d semesters)", ErrInvalidSemester, semester, len(p.Semesters))
	}
	return nil
}
