package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/courselit/internal/models"
)

func semesterOptions(semesters []models.StudentSemester) []huh.Option[int] {
	opts := make([]huh.Option[int], 0, len(semesters))
	for _, sem := range semesters {
		label := fmt.Sprintf("Semester %d", sem.Number)
		if sem.Year != "" {
			label += " (" + sem.Year + ")"
		}
		opts = append(opts, huh.NewOption(label, sem.Number))
	}
	return opts
}

// NewMoveForm asks for a target semester and an optional 1-based position.
func NewMoveForm(fm *MoveFormModel, semesters []models.StudentSemester) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Move "+fm.CourseID+" to").
				Options(semesterOptions(semesters)...).
				Value(&fm.Semester),
			huh.NewInput().
				Title("Position").
				Description("Leave empty to append").
				Value(&fm.Position).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					i, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil {
						return err
					}
					if i < 1 {
						return fmt.Errorf("position must be 1 or greater")
					}
					return nil
				}),
		),
	)
}

// NewAddForm offers the courses whose prerequisites are satisfied.
func NewAddForm(fm *AddFormModel, available []models.Course, semesters []models.StudentSemester) *huh.Form {
	courses := make([]huh.Option[string], 0, len(available))
	for _, c := range available {
		courses = append(courses, huh.NewOption(fmt.Sprintf("%s %s (%d cr)", c.ID, c.Name, c.Credits), c.ID))
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Course").
				Options(courses...).
				Value(&fm.CourseID),
			huh.NewSelect[int]().
				Title("Semester").
				Options(semesterOptions(semesters)...).
				Value(&fm.Semester),
			huh.NewSelect[models.CourseStatus]().
				Title("Status").
				Options(
					huh.NewOption("Planned", models.StatusPlanned),
					huh.NewOption("In progress", models.StatusInProgress),
					huh.NewOption("Completed", models.StatusCompleted),
					huh.NewOption("Exempted", models.StatusExempted),
				).
				Value(&fm.Status),
		),
	)
}
