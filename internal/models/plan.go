package models

type CourseStatus string

const (
	StatusPending    CourseStatus = "pending"
	StatusInProgress CourseStatus = "in-progress"
	StatusCompleted  CourseStatus = "completed"
	StatusFailed     CourseStatus = "failed"
	StatusExempted   CourseStatus = "exempted"
	StatusPlanned    CourseStatus = "planned"
)

// Valid reports whether s is a status a plan entry may hold. Pending is
// implicit (a course in no semester) and is never stored.
func (s CourseStatus) Valid() bool {
	switch s {
	case StatusInProgress, StatusCompleted, StatusFailed, StatusExempted, StatusPlanned:
		return true
	}
	return false
}

// Satisfies reports whether a course with this status counts as a met prerequisite.
func (s CourseStatus) Satisfies() bool {
	return s == StatusCompleted || s == StatusExempted
}

type StudentCourse struct {
	Course    Course       `json:"course"`
	Status    CourseStatus `json:"status"`
	Grade     *float64     `json:"grade,omitempty"`
	ClassCode string       `json:"classCode,omitempty"`
}

type StudentSemester struct {
	Number       int             `json:"number"`
	Year         string          `json:"year"`
	Courses      []StudentCourse `json:"courses"`
	TotalCredits int             `json:"totalCredits"`
}

// RecomputeCredits refreshes TotalCredits from the course list.
func (s *StudentSemester) RecomputeCredits() {
	total := 0
	for _, c := range s.Courses {
		total += c.Course.Credits
	}
	s.TotalCredits = total
}

type StudentPlan struct {
	Number    int               `json:"number"`
	Semesters []StudentSemester `json:"semesters"`
}

// InProgress returns in-progress courses in semester then list order.
func (p StudentPlan) InProgress() []StudentCourse {
	return p.withStatus(StatusInProgress)
}

// Planned returns planned courses in semester then list order.
func (p StudentPlan) Planned() []StudentCourse {
	return p.withStatus(StatusPlanned)
}

func (p StudentPlan) withStatus(status CourseStatus) []StudentCourse {
	var out []StudentCourse
	for _, sem := range p.Semesters {
		for _, c := range sem.Courses {
			if c.Status == status {
				out = append(out, c)
			}
		}
	}
	return out
}

// TotalCredits sums credits across all semesters.
func (p StudentPlan) TotalCredits() int {
	total := 0
	for _, sem := range p.Semesters {
		total += sem.TotalCredits
	}
	return total
}

// Clone returns a deep copy so callers cannot mutate a store's plan.
func (p StudentPlan) Clone() StudentPlan {
	out := StudentPlan{Number: p.Number, Semesters: make([]StudentSemester, len(p.Semesters))}
	for i, sem := range p.Semesters {
		cp := sem
		cp.Courses = make([]StudentCourse, len(sem.Courses))
		for j, c := range sem.Courses {
			if c.Grade != nil {
				g := *c.Grade
				c.Grade = &g
			}
			cp.Courses[j] = c
		}
		out.Semesters[i] = cp
	}
	return out
}

// SavedPlan is a persisted plan together with what it was derived from.
// RecordHash fingerprints the student record at save time; it is empty for
// plans saved before fingerprints were recorded.
type SavedPlan struct {
	StudentID    string      `json:"studentId"`
	CurriculumID string      `json:"curriculumId"`
	RecordHash   string      `json:"recordHash,omitempty"`
	Plan         StudentPlan `json:"plan"`
}
