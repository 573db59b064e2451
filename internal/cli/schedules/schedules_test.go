package schedules

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/courselit/internal/cli/clitest"
	"github.com/julianstephens/courselit/internal/validation"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestImportCmd_JSON(t *testing.T) {
	ctx, out := clitest.New(t)
	path := writeFile(t, "s.json", `{
  "C": [{"day": 2, "startTime": "10:10"}],
  "D": "not a list",
  "professors": {"C": [{"professorId": "p9", "schedule": "Fri 13:30-15:10"}]}
}`)

	if err := (&ImportCmd{File: path, Curriculum: "cs"}).Run(ctx); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	src, err := ctx.Store.GetSchedule("cs")
	if err != nil {
		t.Fatalf("schedule not stored under the curriculum id: %v", err)
	}
	if len(src.Courses["C"]) != 1 || src.Courses["C"][0].Day != 2 {
		t.Errorf("unexpected default schedule: %+v", src.Courses)
	}
	if len(src.Professors["C"]) != 1 {
		t.Errorf("professor schedules not stored: %+v", src.Professors)
	}
	if !strings.Contains(out.String(), "1 course(s) skipped") {
		t.Errorf("expected the unreadable entry to be reported:\n%s", out.String())
	}
}

func TestImportCmd_RequiresCurriculum(t *testing.T) {
	ctx, _ := clitest.New(t)
	path := writeFile(t, "s.json", `{}`)

	if err := (&ImportCmd{File: path}).Run(ctx); err == nil {
		t.Errorf("expected an error without an active curriculum")
	}
}

func TestImportCmd_CSVKeepsProfessors(t *testing.T) {
	ctx, _ := clitest.New(t)
	clitest.Seed(t, ctx)
	path := writeFile(t, "s.csv", "course_id,day,start_time\nC,Wednesday,09:10\nC,4,09:10\nX,Funday,07:30\n")

	if err := (&ImportCmd{File: path, CSV: true, Curriculum: "cs"}).Run(ctx); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	src, err := ctx.Store.GetSchedule("cs")
	if err != nil {
		t.Fatalf("failed to get schedule: %v", err)
	}
	if got := src.Courses["C"]; len(got) != 2 || got[0].Day != 2 || got[1].Day != 4 {
		t.Errorf("unexpected C entries: %+v", got)
	}
	if _, ok := src.Courses["E"]; ok {
		t.Errorf("CSV import should replace the previous default schedules")
	}
	if len(src.Professors["C"]) != 1 {
		t.Errorf("professor schedules should survive a CSV import: %+v", src.Professors)
	}
}

func TestTimetableCmd(t *testing.T) {
	ctx, out := clitest.New(t)
	clitest.Seed(t, ctx)

	if err := (&TimetableCmd{}).Run(ctx); err != nil {
		t.Fatalf("timetable failed: %v", err)
	}
	lines := strings.Split(out.String(), "\n")
	if !strings.HasPrefix(lines[1], "07:30 C ") || !strings.HasPrefix(lines[2], "08:20 C ") {
		t.Errorf("expected C on Monday 07:30 and 08:20:\n%s", out.String())
	}
	if strings.Contains(out.String(), "E ") {
		t.Errorf("planned courses must not appear in the timetable:\n%s", out.String())
	}
}

func TestSelectCmd(t *testing.T) {
	ctx, out := clitest.New(t)
	clitest.Seed(t, ctx)

	if err := (&SelectCmd{Course: "C", Professor: "nobody"}).Run(ctx); err == nil {
		t.Fatalf("expected an error for an unknown professor")
	}
	if err := (&SelectCmd{Course: "C", Professor: "p1"}).Run(ctx); err != nil {
		t.Fatalf("select failed: %v", err)
	}

	out.Reset()
	csvPath := filepath.Join(t.TempDir(), "grid.csv")
	if err := (&TimetableCmd{CSV: csvPath}).Run(ctx); err != nil {
		t.Fatalf("timetable failed: %v", err)
	}
	data, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatalf("failed to read csv: %v", err)
	}
	rows := strings.Split(strings.TrimSpace(string(data)), "\n")
	if rows[0] != "slot,monday,tuesday,wednesday,thursday,friday,saturday" {
		t.Errorf("unexpected header %q", rows[0])
	}
	if rows[1] != "07:30,,,,,," || rows[2] != "08:20,,C,,C,," || rows[3] != "09:10,,C,,C,," {
		t.Errorf("the selected professor's schedule should replace the default:\n%s", data)
	}

	if err := (&SelectCmd{Course: "C"}).Run(ctx); err != nil {
		t.Fatalf("clearing selection failed: %v", err)
	}
	src, err := ctx.Store.GetSchedule("cs")
	if err != nil {
		t.Fatalf("failed to get schedule: %v", err)
	}
	if _, ok := src.Selected["C"]; ok {
		t.Errorf("selection should be cleared: %+v", src.Selected)
	}
}

func TestUnreadableEntriesSurviveSelect(t *testing.T) {
	ctx, _ := clitest.New(t)
	clitest.Seed(t, ctx)
	path := writeFile(t, "s.json", `{
  "C": [{"day": 2, "startTime": "10:10"}],
  "D": "not a list",
  "professors": {"C": [{"professorId": "p9", "schedule": "Fri 13:30-15:10"}]}
}`)
	if err := (&ImportCmd{File: path, Curriculum: "cs"}).Run(ctx); err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if err := (&SelectCmd{Course: "C", Professor: "p9"}).Run(ctx); err != nil {
		t.Fatalf("select failed: %v", err)
	}

	snap, err := ctx.Session(context.Background())
	if err != nil {
		t.Fatalf("failed to load session: %v", err)
	}
	if snap.Schedule.Selected["C"] != "p9" {
		t.Errorf("selection not stored: %v", snap.Schedule.Selected)
	}
	found := false
	for _, w := range snap.Warnings.Conflicts {
		if w.Type == validation.ConflictInvalidRecord && len(w.Items) == 1 && w.Items[0] == "D" {
			found = true
		}
	}
	if !found {
		t.Errorf("stored schedule should still report D:\n%s", snap.Warnings.FormatReport())
	}
}
