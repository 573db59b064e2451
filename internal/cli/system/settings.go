package system

import (
	"fmt"

	"github.com/julianstephens/courselit/internal/cli"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	Student    *string `help:"Set the active student ID."`
	Curriculum *string `help:"Set the active curriculum ID. Empty follows the student's degree."`
	Schedule   *string `help:"Set the active schedule ID. Empty follows the curriculum."`
	Plan       *int    `help:"Set the plan number to load and save."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	if c.List {
		ctx.Println("Current Settings:")
		ctx.Printf("  Active Student:    %s\n", orNone(settings.ActiveStudentID))
		ctx.Printf("  Active Curriculum: %s\n", orNone(settings.ActiveCurriculumID))
		ctx.Printf("  Active Schedule:   %s\n", orNone(settings.ActiveScheduleID))
		ctx.Printf("  Plan Number:       %d\n", settings.PlanNumber)
		return nil
	}

	updated := false
	if c.Student != nil {
		if *c.Student != "" {
			if _, err := ctx.Store.GetStudent(*c.Student); err != nil {
				return fmt.Errorf("unknown student %q: %w", *c.Student, err)
			}
		}
		settings.ActiveStudentID = *c.Student
		updated = true
	}
	if c.Curriculum != nil {
		if *c.Curriculum != "" {
			if _, err := ctx.Store.GetCurriculum(*c.Curriculum); err != nil {
				return fmt.Errorf("unknown curriculum %q: %w", *c.Curriculum, err)
			}
		}
		settings.ActiveCurriculumID = *c.Curriculum
		updated = true
	}
	if c.Schedule != nil {
		settings.ActiveScheduleID = *c.Schedule
		updated = true
	}
	if c.Plan != nil {
		if *c.Plan < 1 {
			return fmt.Errorf("plan number must be at least 1, got %d", *c.Plan)
		}
		settings.PlanNumber = *c.Plan
		updated = true
	}

	if !updated {
		ctx.Println("No changes specified. Use --list to view settings or flags to update them.")
		return nil
	}
	if err := ctx.Store.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	ctx.Println("Settings updated successfully.")
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
