package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/julianstephens/courselit/internal/models"
	"github.com/julianstephens/courselit/internal/storage/sqlite"
)

func seededStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s := sqlite.NewStore(filepath.Join(t.TempDir(), "courselit.db"))
	if err := s.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	src := newFake()
	cs := src.curricula["cs"]
	cs.ID = "cs"
	if err := s.SaveCurriculum(cs); err != nil {
		t.Fatalf("save curriculum: %v", err)
	}
	if err := s.SaveStudent(src.record); err != nil {
		t.Fatalf("save student: %v", err)
	}
	if err := s.SaveSchedule("", "cs", src.schedule); err != nil {
		t.Fatalf("save schedule: %v", err)
	}
	return s
}

func TestStoreSourceRequiresActiveStudent(t *testing.T) {
	s := seededStore(t)
	l := NewLoader(NewStoreSource(s), testOptions())

	_, err := l.Load(context.Background())
	if !errors.Is(err, ErrNoActiveStudent) {
		t.Fatalf("expected ErrNoActiveStudent, got %v", err)
	}
	if l.State() != StateFailed {
		t.Errorf("expected failed, got %s", l.State())
	}
}

func TestStoreSourceLoad(t *testing.T) {
	s := seededStore(t)
	settings, err := s.GetSettings()
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	settings.ActiveStudentID = "1"
	if err := s.SaveSettings(settings); err != nil {
		t.Fatalf("save settings: %v", err)
	}

	snap, err := NewLoader(NewStoreSource(s), testOptions()).Load(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if snap.Degree != "cs" || !snap.Lookup.Has("A") {
		t.Errorf("unexpected snapshot degree %q", snap.Degree)
	}
	if len(snap.Schedule.Courses["A"]) != 1 {
		t.Errorf("expected stored schedule, got %+v", snap.Schedule.Courses)
	}

	// A saved plan wins over the record on the next load.
	if err := snap.Plan.MoveCourse("A", 2, 0); err != nil {
		t.Fatalf("move failed: %v", err)
	}
	if err := s.SavePlan(snap.Saved()); err != nil {
		t.Fatalf("save plan: %v", err)
	}

	snap, err = NewLoader(NewStoreSource(s), testOptions()).Load(context.Background())
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if _, semester, ok := snap.Plan.Find("A"); !ok || semester != 2 {
		t.Errorf("expected saved placement in semester 2, got %d", semester)
	}
}

func TestStoreSourceMissingSchedule(t *testing.T) {
	s := seededStore(t)
	other := models.Curriculum{ID: "math", Name: "Math"}
	if err := s.SaveCurriculum(other); err != nil {
		t.Fatalf("save curriculum: %v", err)
	}
	src := NewStoreSource(s)
	sched, err := src.FetchSchedule(context.Background(), "math")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sched.Courses) != 0 || sched.Courses == nil {
		t.Errorf("expected empty schedule, got %+v", sched)
	}
}

func TestStoreSourcePlanPerDegree(t *testing.T) {
	s := seededStore(t)
	settings, err := s.GetSettings()
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	settings.ActiveStudentID = "1"
	if err := s.SaveSettings(settings); err != nil {
		t.Fatalf("save settings: %v", err)
	}
	plan := models.StudentPlan{Number: 1, Semesters: []models.StudentSemester{{Number: 1, Courses: []models.StudentCourse{}}}}
	if err := s.SavePlan(models.SavedPlan{StudentID: "1", CurriculumID: "cs", RecordHash: "h", Plan: plan}); err != nil {
		t.Fatalf("save plan: %v", err)
	}

	src := NewStoreSource(s)
	if err := src.CheckAuth(context.Background()); err != nil {
		t.Fatalf("auth: %v", err)
	}
	saved, found, err := src.FetchPlan(context.Background(), "cs", 1)
	if err != nil || !found || saved.RecordHash != "h" {
		t.Errorf("expected the cs plan, got found=%v err=%v %+v", found, err, saved)
	}
	if _, found, err := src.FetchPlan(context.Background(), "math", 1); err != nil || found {
		t.Errorf("math has no saved plan, got found=%v err=%v", found, err)
	}
}
