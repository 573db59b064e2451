package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/julianstephens/courselit/internal/models"
	"github.com/julianstephens/courselit/internal/planner"
	"github.com/julianstephens/courselit/internal/validation"
)

type fakeSource struct {
	mu    sync.Mutex
	calls []string

	authErr        error
	profileErr     error
	schedErr       error
	record         models.StudentRecord
	curricula      map[string]models.Curriculum
	schedule       models.ScheduleSource
	curriculumGate chan struct{}
}

func (f *fakeSource) called(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeSource) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeSource) CheckAuth(ctx context.Context) error {
	f.called("auth")
	return f.authErr
}

func (f *fakeSource) FetchProfile(ctx context.Context) (models.StudentRecord, error) {
	f.called("profile")
	return f.record, f.profileErr
}

func (f *fakeSource) FetchCurriculum(ctx context.Context, degree string) (models.Curriculum, error) {
	f.called("curriculum:" + degree)
	if f.curriculumGate != nil {
		select {
		case <-f.curriculumGate:
		case <-ctx.Done():
			return models.Curriculum{}, ctx.Err()
		}
	}
	c, ok := f.curricula[degree]
	if !ok {
		return models.Curriculum{}, errors.New("no such degree")
	}
	return c, nil
}

func (f *fakeSource) FetchSchedule(ctx context.Context, degree string) (models.ScheduleSource, error) {
	f.called("schedule:" + degree)
	return f.schedule, f.schedErr
}

func newFake() *fakeSource {
	sched := models.NewScheduleSource()
	sched.Courses["A"] = []models.ScheduleEntry{{Day: 0, StartTime: "07:30"}}
	sched.Professors["A"] = []models.ProfessorSchedule{{ProfessorID: "p1", Schedule: "Tue 08:20-10:00"}}
	sched.Invalid = []string{"Q"}

	return &fakeSource{
		record: models.StudentRecord{
			StudentID:       "1",
			Name:            "Ana",
			CurrentSemester: 1,
			CurrentDegree:   "cs",
			Coursed:         [][]models.RawCourseEntry{{{CourseCode: "A"}, {CourseCode: "NOPE"}}},
		},
		curricula: map[string]models.Curriculum{
			"cs": {Name: "CS", Phases: []models.Phase{{Number: 1, Courses: []models.Course{
				{ID: "A", Name: "Algorithms", Phase: 1, Credits: 4},
			}}}},
			"math": {Name: "Math", Phases: []models.Phase{{Number: 1, Courses: []models.Course{
				{ID: "M", Name: "Calculus", Phase: 1, Credits: 6},
			}}}},
		},
		schedule: sched,
	}
}

func testOptions() planner.Options {
	opts := planner.DefaultOptions()
	opts.TotalSemesters = 4
	return opts
}

func TestLoadRunsChainInOrder(t *testing.T) {
	src := newFake()
	l := NewLoader(src, testOptions())

	if l.State() != StateIdle {
		t.Fatalf("expected idle, got %s", l.State())
	}
	snap, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"auth", "profile", "curriculum:cs", "schedule:cs"}
	if got := src.Calls(); len(got) != len(want) {
		t.Fatalf("expected calls %v, got %v", want, got)
	} else {
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("call %d: expected %s, got %s", i, want[i], got[i])
			}
		}
	}

	if l.State() != StateReady {
		t.Errorf("expected ready, got %s", l.State())
	}
	if snap.Lookup.Len() != 1 || snap.Plan.Plan().Semesters[0].Courses[0].Course.Name != "Algorithms" {
		t.Errorf("unexpected snapshot contents")
	}
	if snap.Plan.Plan().Semesters[0].Courses[0].Status != models.StatusInProgress {
		t.Errorf("course in the current semester should be in progress")
	}
	if _, ok := snap.Overrides["A"]["p1"]; !ok {
		t.Errorf("expected parsed override for A")
	}
	if snap.Warnings.Count(validation.ConflictUnknownCourse) != 1 {
		t.Errorf("expected unknown course warning:\n%s", snap.Warnings.FormatReport())
	}
	if snap.Warnings.Count(validation.ConflictInvalidRecord) != 1 {
		t.Errorf("expected invalid schedule warning:\n%s", snap.Warnings.FormatReport())
	}

	got, err := l.Snapshot()
	if err != nil || got != snap {
		t.Errorf("Snapshot should return the completed load, got %v, %v", got, err)
	}
}

func TestLoadFailureHaltsChain(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(*fakeSource)
		wantCalls int
	}{
		{"auth", func(f *fakeSource) { f.authErr = errors.New("denied") }, 1},
		{"profile", func(f *fakeSource) { f.profileErr = errors.New("timeout") }, 2},
		{"curriculum", func(f *fakeSource) { f.record.CurrentDegree = "unknown" }, 3},
		{"schedule", func(f *fakeSource) { f.schedErr = errors.New("503") }, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newFake()
			tt.setup(src)
			l := NewLoader(src, testOptions())

			if _, err := l.Load(context.Background()); err == nil {
				t.Fatal("expected error")
			}
			if l.State() != StateFailed {
				t.Errorf("expected failed, got %s", l.State())
			}
			if l.Err() == nil {
				t.Error("expected recorded error")
			}
			if n := len(src.Calls()); n != tt.wantCalls {
				t.Errorf("expected %d calls before halting, got %d: %v", tt.wantCalls, n, src.Calls())
			}
			if _, err := l.Snapshot(); !errors.Is(err, ErrNotReady) {
				t.Errorf("expected ErrNotReady, got %v", err)
			}
		})
	}
}

func TestDiscardDropsInFlightResult(t *testing.T) {
	src := newFake()
	src.curriculumGate = make(chan struct{})
	l := NewLoader(src, testOptions())

	type result struct {
		snap *Snapshot
		err  error
	}
	done := make(chan result)
	go func() {
		snap, err := l.Load(context.Background())
		done <- result{snap, err}
	}()

	// Wait until the load is blocked in the curriculum stage.
	for l.State() != StateProfileLoaded {
	}
	l.Discard()
	close(src.curriculumGate)

	res := <-done
	if !errors.Is(res.err, ErrStale) {
		t.Fatalf("expected ErrStale, got %v", res.err)
	}
	if res.snap != nil {
		t.Error("stale load must not return a snapshot")
	}
	if l.State() != StateIdle {
		t.Errorf("discarded loader should stay idle, got %s", l.State())
	}
	if _, err := l.Snapshot(); !errors.Is(err, ErrNotReady) {
		t.Errorf("stale results must not be applied, got %v", err)
	}
}

func TestStaleFailureIsNotApplied(t *testing.T) {
	src := newFake()
	src.curriculumGate = make(chan struct{})
	l := NewLoader(src, testOptions())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() {
		_, err := l.Load(ctx)
		done <- err
	}()

	for l.State() != StateProfileLoaded {
	}
	l.Discard()
	cancel()

	if err := <-done; !errors.Is(err, ErrStale) {
		t.Fatalf("expected ErrStale, got %v", err)
	}
	if l.State() == StateFailed {
		t.Error("a failure from a discarded load must not change state")
	}
}

func TestSwitchCurriculum(t *testing.T) {
	src := newFake()
	l := NewLoader(src, testOptions())

	if _, err := l.SwitchCurriculum(context.Background(), "math"); !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady before a load, got %v", err)
	}

	first, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := l.SwitchCurriculum(context.Background(), "math")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if second.Lookup.Has("A") {
		t.Error("course from the previous curriculum leaked into the new lookup")
	}
	if !first.Lookup.Has("A") {
		t.Error("the previous snapshot must be left untouched")
	}
	if second.Record.StudentID != "1" || second.Degree != "math" {
		t.Errorf("unexpected snapshot: %+v", second)
	}
	// A is not part of math, so the rebuilt plan reports it.
	if second.Warnings.Count(validation.ConflictUnknownCourse) != 2 {
		t.Errorf("expected 2 unknown course warnings:\n%s", second.Warnings.FormatReport())
	}
	if l.State() != StateReady {
		t.Errorf("expected ready, got %s", l.State())
	}
}

type planFake struct {
	*fakeSource
	saved   models.SavedPlan
	degrees []string
}

func (p *planFake) FetchPlan(ctx context.Context, degree string, number int) (models.SavedPlan, bool, error) {
	p.degrees = append(p.degrees, degree)
	return p.saved, true, nil
}

func TestSavedPlanPreferred(t *testing.T) {
	saved := planner.EmptyPlan(1, 4, "")
	saved.Semesters[2].Courses = []models.StudentCourse{
		{Course: models.Course{ID: "A"}, Status: models.StatusPlanned},
		{Course: models.Course{ID: "GONE"}, Status: models.StatusPlanned},
	}
	src := &planFake{fakeSource: newFake()}
	src.saved = models.SavedPlan{RecordHash: planner.RecordHash(src.record), Plan: saved}

	snap, err := NewLoader(src, testOptions()).Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Rebuilt {
		t.Error("an unchanged record should not trigger a rebuild")
	}
	if len(src.degrees) != 1 || src.degrees[0] != "cs" {
		t.Errorf("plan should be fetched for the loaded degree, got %v", src.degrees)
	}

	c, semester, ok := snap.Plan.Find("A")
	if !ok || semester != 3 || c.Course.Name != "Algorithms" || c.Course.Credits != 4 {
		t.Errorf("saved plan course should be refreshed from the lookup, got %+v in %d", c, semester)
	}
	if _, _, ok := snap.Plan.Find("GONE"); ok {
		t.Error("courses missing from the curriculum should be dropped")
	}
	if snap.Plan.Plan().Semesters[2].TotalCredits != 4 {
		t.Errorf("credits should be recomputed")
	}
}

func TestSavedPlanRebuiltWhenRecordChanges(t *testing.T) {
	src := &planFake{fakeSource: newFake()}
	src.curricula["cs"] = models.Curriculum{Name: "CS", Phases: []models.Phase{{Number: 1, Courses: []models.Course{
		{ID: "A", Name: "Algorithms", Phase: 1, Credits: 4},
		{ID: "B", Name: "Basics", Phase: 1, Credits: 2},
	}}}}
	before := src.record

	saved := planner.EmptyPlan(1, 4, "")
	saved.Semesters[1].Courses = []models.StudentCourse{
		{Course: models.Course{ID: "A"}, Status: models.StatusFailed},
	}
	saved.Semesters[3].Courses = []models.StudentCourse{
		{Course: models.Course{ID: "B"}, Status: models.StatusPlanned},
	}
	src.saved = models.SavedPlan{RecordHash: planner.RecordHash(before), Plan: saved}

	// The student moved on: A from semester 1 is now graded.
	grade := 9.0
	src.record.CurrentSemester = 2
	src.record.Coursed = [][]models.RawCourseEntry{{{CourseCode: "A", Grade: &grade}}}

	snap, err := NewLoader(src, testOptions()).Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !snap.Rebuilt {
		t.Fatal("expected the plan to be rebuilt")
	}
	if c, semester, _ := snap.Plan.Find("A"); semester != 1 || c.Status != models.StatusCompleted {
		t.Errorf("record should win for A, got %s in %d", c.Status, semester)
	}
	if c, semester, ok := snap.Plan.Find("B"); !ok || semester != 4 || c.Status != models.StatusPlanned {
		t.Errorf("planned B should be carried over, got ok=%v in %d", ok, semester)
	}
}

func TestLegacySavedPlanTrusted(t *testing.T) {
	saved := planner.EmptyPlan(1, 4, "")
	saved.Semesters[3].Courses = []models.StudentCourse{{Course: models.Course{ID: "A"}, Status: models.StatusPlanned}}
	src := &planFake{fakeSource: newFake(), saved: models.SavedPlan{Plan: saved}}

	snap, err := NewLoader(src, testOptions()).Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Rebuilt {
		t.Error("a plan saved without a fingerprint should be kept")
	}
	if _, semester, _ := snap.Plan.Find("A"); semester != 4 {
		t.Errorf("expected saved placement, got %d", semester)
	}
}

func TestSavedPlanTrimmedToTotalSemesters(t *testing.T) {
	saved := planner.EmptyPlan(1, 6, "")
	saved.Semesters[5].Courses = []models.StudentCourse{{Course: models.Course{ID: "A"}, Status: models.StatusPlanned}}
	src := &planFake{fakeSource: newFake()}
	src.saved = models.SavedPlan{RecordHash: planner.RecordHash(src.record), Plan: saved}

	snap, err := NewLoader(src, testOptions()).Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := len(snap.Plan.Plan().Semesters); n != 4 {
		t.Errorf("expected 4 semesters, got %d", n)
	}
	if _, _, ok := snap.Plan.Find("A"); ok {
		t.Error("courses past the last semester should be dropped")
	}
	if snap.Warnings.Count(validation.ConflictInvalidSemester) != 1 {
		t.Errorf("expected one invalid semester warning:\n%s", snap.Warnings.FormatReport())
	}
}

func TestSnapshotSaved(t *testing.T) {
	src := newFake()
	snap, err := NewLoader(src, testOptions()).Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	saved := snap.Saved()
	if saved.StudentID != "1" || saved.CurriculumID != "cs" || saved.RecordHash != planner.RecordHash(src.record) {
		t.Errorf("unexpected saved plan key: %+v", saved)
	}
	if len(saved.Plan.Semesters) != 4 {
		t.Errorf("expected the current plan, got %d semesters", len(saved.Plan.Semesters))
	}
}

func TestCanAdvance(t *testing.T) {
	tests := []struct {
		from, to State
		want     bool
	}{
		{StateIdle, StateAuthChecked, true},
		{StateIdle, StateProfileLoaded, false},
		{StateScheduleLoaded, StateReady, true},
		{StateReady, StateFailed, false},
		{StateCurriculumLoaded, StateFailed, true},
		{StateFailed, StateFailed, false},
		{StateScheduleLoaded, StateIdle, false},
	}
	for _, tt := range tests {
		if got := canAdvance(tt.from, tt.to); got != tt.want {
			t.Errorf("canAdvance(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestSnapshotReport(t *testing.T) {
	src := newFake()
	src.schedule.Courses["A"] = []models.ScheduleEntry{{Day: 9, StartTime: "07:30"}}

	snap, err := NewLoader(src, testOptions()).Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result := snap.Timetable(nil)
	if len(result.Warnings) != 1 || result.Warnings[0].Type != validation.ConflictInvalidDay {
		t.Errorf("expected one invalid day warning, got %+v", result.Warnings)
	}

	report := snap.Report(nil)
	if report.Count(validation.ConflictInvalidDay) != 1 || report.Count(validation.ConflictUnknownCourse) != 1 {
		t.Errorf("report should merge load and timetable problems:\n%s", report.FormatReport())
	}
}
