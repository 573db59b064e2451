// Package clitest builds command contexts over throwaway SQLite stores.
package clitest

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/julianstephens/courselit/internal/cli"
	"github.com/julianstephens/courselit/internal/config"
	"github.com/julianstephens/courselit/internal/models"
	"github.com/julianstephens/courselit/internal/storage/sqlite"
)

// New returns an initialized context whose output is captured in the
// returned buffer.
func New(t testing.TB) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()

	store := sqlite.NewStore(filepath.Join(dir, "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})

	var out bytes.Buffer
	return &cli.Context{
		Store:      store,
		Config:     config.Default(),
		ConfigPath: filepath.Join(dir, "config.toml"),
		Out:        &out,
	}, &out
}

func course(id, name string, phase int, prereqs ...string) models.Course {
	return models.Course{ID: id, Name: name, Credits: 4, Phase: phase, Type: models.CourseMandatory, Prerequisites: prereqs}
}

// Curriculum is the "cs" program used by Seed.
func Curriculum() models.Curriculum {
	return models.Curriculum{
		ID:          "cs",
		Name:        "Computer Science",
		TotalPhases: 3,
		Phases: []models.Phase{
			{Number: 1, Courses: []models.Course{
				course("A", "Algorithms", 1),
				course("B", "Basics", 1),
			}},
			{Number: 2, Courses: []models.Course{
				course("C", "Compilers", 2, "A"),
				course("D", "Databases", 2, "A", "B"),
				course("F", "Formal Logic", 2, "A"),
			}},
			{Number: 3, Courses: []models.Course{
				course("E", "Embedded", 3, "C"),
			}},
		},
	}
}

func grade(g float64) *float64 { return &g }

// Record is student 42 in semester 2: A passed, B failed, C in progress and
// E planned for semester 3.
func Record() models.StudentRecord {
	return models.StudentRecord{
		ID:              "rec-42",
		StudentID:       "42",
		Name:            "Ana",
		CurrentSemester: 2,
		CurrentDegree:   "cs",
		Coursed: [][]models.RawCourseEntry{
			{{CourseCode: "A", ClassCode: "01", Grade: grade(8)}, {CourseCode: "B", ClassCode: "01", Grade: grade(4)}},
			{{CourseCode: "C", ClassCode: "02"}},
		},
		Plan: [][]models.RawCourseEntry{{}, {}, {{CourseCode: "E"}}},
	}
}

// Schedule meets C on Monday 07:30 unless professor p1 (Tue/Thu 08:20) is selected.
func Schedule() models.ScheduleSource {
	src := models.NewScheduleSource()
	src.Courses["C"] = []models.ScheduleEntry{{Day: 0, StartTime: "07:30"}}
	src.Courses["E"] = []models.ScheduleEntry{{Day: 0, StartTime: "08:20"}}
	src.Professors["C"] = []models.ProfessorSchedule{{ProfessorID: "p1", Schedule: "Tue/Thu 08:20-10:00"}}
	return src
}

// Seed stores Curriculum, Record and Schedule and activates the student.
func Seed(t testing.TB, ctx *cli.Context) {
	t.Helper()
	if err := ctx.Store.SaveCurriculum(Curriculum()); err != nil {
		t.Fatalf("failed to save curriculum: %v", err)
	}
	if err := ctx.Store.SaveStudent(Record()); err != nil {
		t.Fatalf("failed to save student: %v", err)
	}
	if err := ctx.Store.SaveSchedule("", "cs", Schedule()); err != nil {
		t.Fatalf("failed to save schedule: %v", err)
	}
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		t.Fatalf("failed to get settings: %v", err)
	}
	settings.ActiveStudentID = "42"
	if err := ctx.Store.SaveSettings(settings); err != nil {
		t.Fatalf("failed to save settings: %v", err)
	}
}
