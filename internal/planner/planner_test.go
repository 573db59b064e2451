package planner

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/julianstephens/courselit/internal/curriculum"
	"github.com/julianstephens/courselit/internal/models"
	"github.com/julianstephens/courselit/internal/validation"
)

func testLookup(t *testing.T) *curriculum.Lookup {
	t.Helper()
	lookup, _ := curriculum.NewLookup(models.Curriculum{
		Name: "CS",
		Phases: []models.Phase{
			{Number: 1, Courses: []models.Course{
				{ID: "A", Credits: 4, Phase: 1},
				{ID: "B", Credits: 2, Phase: 1},
			}},
			{Number: 2, Courses: []models.Course{
				{ID: "C", Credits: 4, Phase: 2, Prerequisites: []string{"A"}},
				{ID: "D", Credits: 6, Phase: 2, Prerequisites: []string{"A", "B"}},
			}},
			{Number: 3, Courses: []models.Course{
				{ID: "E", Credits: 4, Phase: 3, Prerequisites: []string{"C"}},
			}},
		},
	})
	return lookup
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.TotalSemesters = 4
	return opts
}

func grade(g float64) *float64 { return &g }

func entry(code string, g *float64) models.RawCourseEntry {
	return models.RawCourseEntry{CourseCode: code, ClassCode: "01", Grade: g}
}

func semesterIDs(plan models.StudentPlan, n int) []string {
	var ids []string
	for _, c := range plan.Semesters[n-1].Courses {
		ids = append(ids, c.Course.ID)
	}
	return ids
}

func TestBuild(t *testing.T) {
	rec := models.StudentRecord{
		StudentID:       "1",
		CurrentSemester: 2,
		FirstTerm:       "2023.2",
		Coursed: [][]models.RawCourseEntry{
			{entry("A", grade(8)), entry("B", grade(3.5)), entry("X", grade(9))},
			{entry("C", nil)},
		},
		Plan: [][]models.RawCourseEntry{
			{}, {}, {entry("D", nil), entry("E", nil)},
			{}, {entry("A", nil)},
		},
	}

	plan, warnings := Build(rec, testLookup(t), testOptions())

	if len(plan.Semesters) != 4 {
		t.Fatalf("expected 4 semesters, got %d", len(plan.Semesters))
	}
	if got := semesterIDs(plan, 1); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Errorf("semester 1: expected [A B], got %v", got)
	}
	if plan.Semesters[0].Courses[0].Status != models.StatusCompleted {
		t.Errorf("A should be completed")
	}
	if plan.Semesters[0].Courses[1].Status != models.StatusFailed {
		t.Errorf("B should be failed")
	}
	if plan.Semesters[1].Courses[0].Status != models.StatusInProgress {
		t.Errorf("C should be in progress")
	}
	if got := semesterIDs(plan, 3); !reflect.DeepEqual(got, []string{"D", "E"}) {
		t.Errorf("semester 3: expected [D E], got %v", got)
	}
	if plan.Semesters[0].TotalCredits != 6 || plan.Semesters[2].TotalCredits != 10 {
		t.Errorf("unexpected credits: %d, %d", plan.Semesters[0].TotalCredits, plan.Semesters[2].TotalCredits)
	}
	if plan.Semesters[0].Year != "2023.2" || plan.Semesters[1].Year != "2024.1" {
		t.Errorf("unexpected year labels: %q, %q", plan.Semesters[0].Year, plan.Semesters[1].Year)
	}

	var vr validation.ValidationResult
	vr.Add(warnings...)
	if vr.Count(validation.ConflictUnknownCourse) != 1 {
		t.Errorf("expected unknown course X to be reported:\n%s", vr.FormatReport())
	}
	if vr.Count(validation.ConflictInvalidSemester) != 1 {
		t.Errorf("expected semester 5 entry to be reported:\n%s", vr.FormatReport())
	}
}

func TestBuildExemptedAndRetake(t *testing.T) {
	rec := models.StudentRecord{
		CurrentSemester: 3,
		Coursed: [][]models.RawCourseEntry{
			{entry("A", grade(2)), entry("B", nil)},
			{entry("A", grade(7))},
		},
	}

	plan, warnings := Build(rec, testLookup(t), testOptions())
	if got := semesterIDs(plan, 1); !reflect.DeepEqual(got, []string{"B"}) {
		t.Errorf("retaken course should leave semester 1, got %v", got)
	}
	if plan.Semesters[0].Courses[0].Status != models.StatusExempted {
		t.Errorf("B without grade should be exempted")
	}
	if c := plan.Semesters[1].Courses[0]; c.Course.ID != "A" || c.Status != models.StatusCompleted {
		t.Errorf("unexpected retake: %+v", c)
	}
	if len(warnings) != 1 || warnings[0].Type != validation.ConflictDuplicateCourse {
		t.Errorf("expected one duplicate warning, got %v", warnings)
	}
}

func TestBuildInvalidEntry(t *testing.T) {
	rec := models.StudentRecord{
		CurrentSemester: 1,
		Coursed:         [][]models.RawCourseEntry{{{Invalid: true, Raw: "[]"}}},
	}
	plan, warnings := Build(rec, testLookup(t), testOptions())
	if len(plan.Semesters[0].Courses) != 0 {
		t.Error("invalid entry should be skipped")
	}
	if len(warnings) != 1 || warnings[0].Type != validation.ConflictInvalidRecord {
		t.Errorf("unexpected warnings: %v", warnings)
	}
}

func TestTermLabel(t *testing.T) {
	tests := []struct {
		first  string
		offset int
		want   string
	}{
		{"2023.1", 0, "2023.1"},
		{"2023.1", 1, "2023.2"},
		{"2023.1", 2, "2024.1"},
		{"2023.2", 3, "2025.1"},
		{"", 1, ""},
		{"2023.3", 0, ""},
		{"abcd.1", 0, ""},
	}
	for _, tt := range tests {
		if got := TermLabel(tt.first, tt.offset); got != tt.want {
			t.Errorf("TermLabel(%q, %d) = %q, want %q", tt.first, tt.offset, got, tt.want)
		}
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	lookup := testLookup(t)
	return NewStore(EmptyPlan(1, 4, ""), lookup, testOptions())
}

func TestStoreAddAndCredits(t *testing.T) {
	s := newTestStore(t)

	if err := s.AddCourse("A", 1, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.AddCourse("D", 1, models.StatusInProgress); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	plan := s.Plan()
	if plan.Semesters[0].TotalCredits != 10 {
		t.Errorf("expected 10 credits, got %d", plan.Semesters[0].TotalCredits)
	}
	if plan.Semesters[0].Courses[0].Status != models.StatusPlanned {
		t.Errorf("empty status should default to planned")
	}
	if len(plan.InProgress()) != 1 || len(plan.Planned()) != 1 {
		t.Errorf("unexpected derived views")
	}
}

func TestStoreAddErrors(t *testing.T) {
	s := newTestStore(t)
	if err := s.AddCourse("A", 1, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name     string
		id       string
		semester int
		status   models.CourseStatus
		want     error
	}{
		{"duplicate", "A", 2, "", ErrCourseInPlan},
		{"unknown course", "Z", 1, "", ErrUnknownCourse},
		{"semester too low", "B", 0, "", ErrInvalidSemester},
		{"semester too high", "B", 5, "", ErrInvalidSemester},
		{"pending is implicit", "B", 1, models.StatusPending, ErrInvalidStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.AddCourse(tt.id, tt.semester, tt.status)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	if n := len(s.Plan().Semesters[0].Courses); n != 1 {
		t.Errorf("failed mutations must not change the plan, semester 1 has %d courses", n)
	}
}

func TestStoreMove(t *testing.T) {
	s := newTestStore(t)
	for _, id := range []string{"A", "B"} {
		if err := s.AddCourse(id, 1, ""); err != nil {
			t.Fatal(err)
		}
	}
	for _, id := range []string{"C", "D"} {
		if err := s.AddCourse(id, 2, ""); err != nil {
			t.Fatal(err)
		}
	}

	if err := s.MoveCourse("A", 2, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	plan := s.Plan()
	if got := semesterIDs(plan, 1); !reflect.DeepEqual(got, []string{"B"}) {
		t.Errorf("semester 1: expected [B], got %v", got)
	}
	if got := semesterIDs(plan, 2); !reflect.DeepEqual(got, []string{"C", "A", "D"}) {
		t.Errorf("semester 2: expected [C A D], got %v", got)
	}
	if plan.Semesters[0].TotalCredits != 2 || plan.Semesters[1].TotalCredits != 14 {
		t.Errorf("credits not recomputed: %d, %d", plan.Semesters[0].TotalCredits, plan.Semesters[1].TotalCredits)
	}

	// Reorder within a semester and clamp an out-of-range index.
	if err := s.MoveCourse("C", 2, 99); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := semesterIDs(s.Plan(), 2); !reflect.DeepEqual(got, []string{"A", "D", "C"}) {
		t.Errorf("semester 2: expected [A D C], got %v", got)
	}
	if err := s.MoveCourse("C", 2, -3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := semesterIDs(s.Plan(), 2); !reflect.DeepEqual(got, []string{"C", "A", "D"}) {
		t.Errorf("semester 2: expected [C A D], got %v", got)
	}

	if err := s.MoveCourse("E", 1, 0); !errors.Is(err, ErrCourseNotInPlan) {
		t.Errorf("expected ErrCourseNotInPlan, got %v", err)
	}
}

func TestStoreAtMostOnce(t *testing.T) {
	s := newTestStore(t)
	_ = s.AddCourse("A", 1, "")
	_ = s.MoveCourse("A", 3, 0)
	_ = s.MoveCourse("A", 2, 0)

	count := 0
	for _, sem := range s.Plan().Semesters {
		for _, c := range sem.Courses {
			if c.Course.ID == "A" {
				count++
			}
		}
	}
	if count != 1 {
		t.Errorf("expected A exactly once, found %d", count)
	}
}

func TestStoreStatusGradeRemove(t *testing.T) {
	s := newTestStore(t)
	_ = s.AddCourse("A", 1, models.StatusInProgress)

	if err := s.SetStatus("A", models.StatusCompleted); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.SetGrade("A", grade(9.5)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.SetGrade("A", grade(11)); !errors.Is(err, ErrInvalidGrade) {
		t.Errorf("expected ErrInvalidGrade, got %v", err)
	}
	if err := s.SetClassCode("A", "04208"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c, semester, ok := s.Find("A")
	if !ok || semester != 1 || c.Status != models.StatusCompleted || c.Grade == nil || *c.Grade != 9.5 || c.ClassCode != "04208" {
		t.Errorf("unexpected course state: %+v (semester %d)", c, semester)
	}

	if err := s.SetGrade("A", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c, _, _ := s.Find("A"); c.Grade != nil {
		t.Error("expected grade to be cleared")
	}

	if err := s.RemoveCourse("A"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, ok := s.Find("A"); ok {
		t.Error("A should be pending after removal")
	}
	if err := s.RemoveCourse("A"); !errors.Is(err, ErrCourseNotInPlan) {
		t.Errorf("expected ErrCourseNotInPlan, got %v", err)
	}
	if err := s.SetStatus("A", models.StatusPlanned); !errors.Is(err, ErrCourseNotInPlan) {
		t.Errorf("expected ErrCourseNotInPlan, got %v", err)
	}
}

func TestStoreSnapshotsAreIsolated(t *testing.T) {
	s := newTestStore(t)
	_ = s.AddCourse("A", 1, "")

	snapshot := s.Plan()
	snapshot.Semesters[0].Courses[0].Status = models.StatusFailed

	if c, _, _ := s.Find("A"); c.Status != models.StatusPlanned {
		t.Error("modifying a snapshot changed the store")
	}
}

func TestStoreSubscribe(t *testing.T) {
	s := newTestStore(t)

	var mu sync.Mutex
	var credits []int
	unsubscribe := s.Subscribe(func(p models.StudentPlan) {
		mu.Lock()
		defer mu.Unlock()
		credits = append(credits, p.TotalCredits())
	})

	_ = s.AddCourse("A", 1, "")
	_ = s.AddCourse("B", 1, "")
	_ = s.AddCourse("A", 2, "") // fails, no notification
	unsubscribe()
	_ = s.AddCourse("C", 2, "")

	mu.Lock()
	defer mu.Unlock()
	if !reflect.DeepEqual(credits, []int{4, 6}) {
		t.Errorf("expected notifications [4 6], got %v", credits)
	}
}

func TestStoreAvailable(t *testing.T) {
	s := newTestStore(t)
	_ = s.AddCourse("A", 1, models.StatusCompleted)
	_ = s.AddCourse("B", 1, models.StatusFailed)

	var ids []string
	for _, c := range s.Available() {
		ids = append(ids, c.ID)
	}
	// C needs A (completed). D needs B, which failed. E needs C.
	if !reflect.DeepEqual(ids, []string{"C"}) {
		t.Errorf("expected [C], got %v", ids)
	}
}

func TestStoreRecordRoundTrip(t *testing.T) {
	lookup := testLookup(t)
	rec := models.StudentRecord{
		StudentID:       "1",
		CurrentSemester: 2,
		Coursed:         [][]models.RawCourseEntry{{entry("A", grade(8))}, {entry("C", nil)}},
		Plan:            [][]models.RawCourseEntry{{}, {}, {entry("E", nil)}},
	}

	plan, _ := Build(rec, lookup, testOptions())
	out := NewStore(plan, lookup, testOptions()).Record(rec)

	rebuilt, warnings := Build(out, lookup, testOptions())
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if !reflect.DeepEqual(rebuilt, plan) {
		t.Errorf("round trip changed the plan:\n%+v\n%+v", plan, rebuilt)
	}
}

func TestStoreRecordKeepsUnplaceableEntries(t *testing.T) {
	lookup := testLookup(t)
	broken := models.RawCourseEntry{Invalid: true, Raw: `[42, "01"]`}
	rec := models.StudentRecord{
		StudentID:       "1",
		CurrentSemester: 2,
		Coursed:         [][]models.RawCourseEntry{{entry("A", grade(8)), broken}, {entry("OLD", grade(7))}},
		Plan:            [][]models.RawCourseEntry{{}, {}, {entry("GONE", nil)}},
	}

	plan, warnings := Build(rec, lookup, testOptions())
	if len(warnings) != 3 {
		t.Fatalf("expected 3 build warnings, got %v", warnings)
	}
	out := NewStore(plan, lookup, testOptions()).Record(rec)

	if !reflect.DeepEqual(out.Coursed[0], []models.RawCourseEntry{entry("A", grade(8)), broken}) {
		t.Errorf("unreadable entry should stay in semester 1, got %+v", out.Coursed[0])
	}
	if len(out.Coursed) < 2 || !reflect.DeepEqual(out.Coursed[1], []models.RawCourseEntry{entry("OLD", grade(7))}) {
		t.Errorf("unknown coursed entry should stay in semester 2, got %+v", out.Coursed)
	}
	if len(out.Plan) < 3 || !reflect.DeepEqual(out.Plan[2], []models.RawCourseEntry{entry("GONE", nil)}) {
		t.Errorf("unknown planned entry should stay in semester 3, got %+v", out.Plan)
	}
}

func TestTrim(t *testing.T) {
	plan := EmptyPlan(1, 6, "")
	plan.Semesters[4].Courses = []models.StudentCourse{{Course: models.Course{ID: "A"}, Status: models.StatusPlanned}}
	plan.Semesters[5].Courses = []models.StudentCourse{{Course: models.Course{ID: "B"}, Status: models.StatusPlanned}}

	trimmed, warnings := Trim(plan, 4)
	if len(trimmed.Semesters) != 4 {
		t.Errorf("expected 4 semesters, got %d", len(trimmed.Semesters))
	}
	if len(warnings) != 2 || warnings[0].Type != validation.ConflictInvalidSemester || warnings[1].Items[0] != "B" {
		t.Errorf("expected a warning per dropped course, got %+v", warnings)
	}

	same, warnings := Trim(plan, 8)
	if len(same.Semesters) != 6 || warnings != nil {
		t.Errorf("shorter plans must be untouched")
	}
}

func TestKeepPlanned(t *testing.T) {
	lookup := testLookup(t)
	built := EmptyPlan(1, 4, "")
	built.Semesters[0].Courses = []models.StudentCourse{{Course: models.Course{ID: "A", Credits: 4}, Status: models.StatusCompleted}}

	saved := EmptyPlan(1, 5, "")
	saved.Semesters[1].Courses = []models.StudentCourse{
		{Course: models.Course{ID: "A"}, Status: models.StatusPlanned},   // already placed
		{Course: models.Course{ID: "C"}, Status: models.StatusPlanned},   // kept
		{Course: models.Course{ID: "B"}, Status: models.StatusCompleted}, // record decides
		{Course: models.Course{ID: "Z"}, Status: models.StatusPlanned},   // unknown
	}
	saved.Semesters[4].Courses = []models.StudentCourse{{Course: models.Course{ID: "D"}, Status: models.StatusPlanned}}

	merged, kept := KeepPlanned(built, saved, lookup)
	if kept != 1 {
		t.Errorf("expected 1 course carried over, got %d", kept)
	}
	if ids := semesterIDs(merged, 2); !reflect.DeepEqual(ids, []string{"C"}) {
		t.Errorf("expected [C] in semester 2, got %v", ids)
	}
	if merged.Semesters[1].TotalCredits != 4 {
		t.Errorf("credits should come from the lookup, got %d", merged.Semesters[1].TotalCredits)
	}
}

func TestRecordHash(t *testing.T) {
	rec := models.StudentRecord{StudentID: "1", CurrentSemester: 2, CurrentDegree: "cs",
		Coursed: [][]models.RawCourseEntry{{entry("A", grade(8))}}}
	h := RecordHash(rec)

	other := rec
	other.CurrentDegree = "math"
	other.Name = "renamed"
	if RecordHash(other) != h {
		t.Error("degree and name must not change the fingerprint")
	}

	other = rec
	other.Coursed = [][]models.RawCourseEntry{{entry("A", grade(9))}}
	if RecordHash(other) == h {
		t.Error("a changed grade must change the fingerprint")
	}
	other = rec
	other.CurrentSemester = 3
	if RecordHash(other) == h {
		t.Error("a changed current semester must change the fingerprint")
	}
}

func TestCheckOrder(t *testing.T) {
	s := newTestStore(t)
	_ = s.AddCourse("A", 1, models.StatusFailed)
	_ = s.AddCourse("C", 2, models.StatusPlanned) // A failed
	_ = s.AddCourse("E", 2, models.StatusPlanned) // C same semester
	_ = s.AddCourse("D", 3, models.StatusPlanned) // A failed, B missing

	result := CheckOrder(s.Plan(), s.Lookup())
	if n := result.Count(validation.ConflictPrerequisiteOrder); n != 4 {
		t.Errorf("expected 4 ordering conflicts, got %d:\n%s", n, result.FormatReport())
	}
}
