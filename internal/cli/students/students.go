package students

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/julianstephens/courselit/internal/cli"
	"github.com/julianstephens/courselit/internal/models"
	"github.com/julianstephens/courselit/internal/validation"
)

type ImportCmd struct {
	File       string `arg:"" help:"Student record JSON file." type:"existingfile"`
	NoActivate bool   `help:"Keep the current active student."`
}

func (c *ImportCmd) Run(ctx *cli.Context) error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("failed to read student record: %w", err)
	}
	var rec models.StudentRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("failed to parse student record: %w", err)
	}
	if err := validation.Struct(rec); err != nil {
		return fmt.Errorf("invalid student record: %w", err)
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	if err := ctx.Store.SaveStudent(rec); err != nil {
		return err
	}
	ctx.Printf("✓ Imported student %s (%s), semester %d\n", rec.Name, rec.StudentID, rec.CurrentSemester)

	if c.NoActivate {
		return nil
	}
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	settings.ActiveStudentID = rec.StudentID
	if err := ctx.Store.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	ctx.Printf("Active student set to %s\n", rec.StudentID)
	return nil
}

type ShowCmd struct{}

func (c *ShowCmd) Run(ctx *cli.Context) error {
	snap, err := ctx.Session(context.Background())
	if err != nil {
		return err
	}

	rec := snap.Record
	plan := snap.Plan.Plan()
	ctx.Printf("%s (%s)\n", rec.Name, rec.StudentID)
	ctx.Printf("  Degree:           %s\n", snap.Degree)
	ctx.Printf("  Curriculum:       %s\n", snap.Curriculum.Name)
	ctx.Printf("  Current semester: %d\n", rec.CurrentSemester)
	if rec.FirstTerm != "" {
		ctx.Printf("  First term:       %s\n", rec.FirstTerm)
	}
	if len(rec.InterestedDegrees) > 0 {
		ctx.Printf("  Interested in:    %v\n", rec.InterestedDegrees)
	}

	counts := make(map[models.CourseStatus]int)
	credits := 0
	for _, sem := range plan.Semesters {
		for _, sc := range sem.Courses {
			counts[sc.Status]++
			if sc.Status.Satisfies() {
				credits += sc.Course.Credits
			}
		}
	}
	ctx.Printf("  Earned credits:   %d\n", credits)
	for _, status := range []models.CourseStatus{
		models.StatusCompleted, models.StatusExempted, models.StatusInProgress,
		models.StatusFailed, models.StatusPlanned,
	} {
		ctx.Printf("  %-17s %d\n", string(status)+":", counts[status])
	}
	ctx.Printf("  %-17s %d\n", "pending:", snap.Lookup.Len()-len(distinct(plan)))
	if n := len(snap.Warnings.Conflicts); n > 0 {
		ctx.Printf("%d data warning(s), run 'courselit validate' for details\n", n)
	}
	return nil
}

func distinct(plan models.StudentPlan) map[string]bool {
	seen := make(map[string]bool)
	for _, sem := range plan.Semesters {
		for _, sc := range sem.Courses {
			seen[sc.Course.ID] = true
		}
	}
	return seen
}

// ExportCmd writes the current plan back into the raw record format.
type ExportCmd struct {
	Output string `short:"o" help:"Write to this file instead of stdout." type:"path"`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	snap, err := ctx.Session(context.Background())
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(snap.Plan.Record(snap.Record), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode student record: %w", err)
	}
	data = append(data, '\n')

	if c.Output == "" {
		_, err = ctx.Stdout().Write(data)
		return err
	}
	if err := os.WriteFile(c.Output, data, 0o644); err != nil {
		return fmt.Errorf("failed to write student record: %w", err)
	}
	ctx.Printf("✓ Exported student record to %s\n", c.Output)
	return nil
}
