package plans

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/julianstephens/courselit/internal/cli"
	"github.com/julianstephens/courselit/internal/models"
	"github.com/julianstephens/courselit/internal/planner"
)

type ShowCmd struct {
	Semester int `short:"s" help:"Only show this semester."`
}

func (c *ShowCmd) Run(ctx *cli.Context) error {
	snap, err := ctx.Session(context.Background())
	if err != nil {
		return err
	}

	plan := snap.Plan.Plan()
	ctx.Printf("Plan %d for %s (%s)\n", plan.Number, snap.Record.Name, snap.Curriculum.Name)
	if snap.Rebuilt {
		ctx.Println("Record changed since this plan was saved; rebuilt from the record, planned courses kept.")
	}
	for _, sem := range plan.Semesters {
		if c.Semester != 0 && sem.Number != c.Semester {
			continue
		}
		printSemester(ctx, sem)
	}
	return nil
}

func printSemester(ctx *cli.Context, sem models.StudentSemester) {
	label := fmt.Sprintf("Semester %d", sem.Number)
	if sem.Year != "" {
		label += " (" + sem.Year + ")"
	}
	ctx.Printf("\n%s, %d credits\n", label, sem.TotalCredits)
	if len(sem.Courses) == 0 {
		ctx.Println("  (empty)")
		return
	}
	for _, sc := range sem.Courses {
		grade := ""
		if sc.Grade != nil {
			grade = fmt.Sprintf("%.1f", *sc.Grade)
		}
		ctx.Printf("  %-10s %-40s %-12s %5s %s\n", sc.Course.ID, sc.Course.Name, sc.Status, grade, sc.ClassCode)
	}
}

// mutate loads the session, applies fn to the plan store and saves the
// result. A backup is taken first.
func mutate(ctx *cli.Context, fn func(*planner.Store) error) error {
	snap, err := ctx.Session(context.Background())
	if err != nil {
		return err
	}
	ctx.PerformAutomaticBackup()
	if err := fn(snap.Plan); err != nil {
		return err
	}
	return ctx.SavePlan(snap)
}

type AddCmd struct {
	Course   string `arg:"" help:"Course ID."`
	Semester int    `arg:"" help:"Semester number."`
	Status   string `help:"Course status." default:"planned" enum:"planned,in-progress,completed,failed,exempted"`
}

func (c *AddCmd) Run(ctx *cli.Context) error {
	err := mutate(ctx, func(s *planner.Store) error {
		return s.AddCourse(c.Course, c.Semester, models.CourseStatus(c.Status))
	})
	if err != nil {
		return err
	}
	ctx.Printf("✓ Added %s to semester %d as %s\n", c.Course, c.Semester, c.Status)
	return nil
}

type MoveCmd struct {
	Course   string `arg:"" help:"Course ID."`
	Semester int    `arg:"" help:"Target semester number."`
	Position int    `help:"1-based position in the target semester. 0 appends." default:"0"`
}

func (c *MoveCmd) Run(ctx *cli.Context) error {
	index := c.Position - 1
	if c.Position <= 0 {
		index = math.MaxInt
	}
	err := mutate(ctx, func(s *planner.Store) error {
		return s.MoveCourse(c.Course, c.Semester, index)
	})
	if err != nil {
		return err
	}
	ctx.Printf("✓ Moved %s to semester %d\n", c.Course, c.Semester)
	return nil
}

type RemoveCmd struct {
	Course string `arg:"" help:"Course ID."`
}

func (c *RemoveCmd) Run(ctx *cli.Context) error {
	err := mutate(ctx, func(s *planner.Store) error {
		return s.RemoveCourse(c.Course)
	})
	if err != nil {
		return err
	}
	ctx.Printf("✓ Removed %s from the plan\n", c.Course)
	return nil
}

type StatusCmd struct {
	Course string `arg:"" help:"Course ID."`
	Status string `arg:"" help:"New status." enum:"planned,in-progress,completed,failed,exempted"`
}

func (c *StatusCmd) Run(ctx *cli.Context) error {
	err := mutate(ctx, func(s *planner.Store) error {
		return s.SetStatus(c.Course, models.CourseStatus(c.Status))
	})
	if err != nil {
		return err
	}
	ctx.Printf("✓ %s is now %s\n", c.Course, c.Status)
	return nil
}

type GradeCmd struct {
	Course string   `arg:"" help:"Course ID."`
	Grade  *float64 `arg:"" optional:"" help:"Grade. Omit to clear."`
	Class  *string  `help:"Also set the class code."`
}

func (c *GradeCmd) Run(ctx *cli.Context) error {
	err := mutate(ctx, func(s *planner.Store) error {
		if err := s.SetGrade(c.Course, c.Grade); err != nil {
			return err
		}
		if c.Class != nil {
			return s.SetClassCode(c.Course, *c.Class)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if c.Grade == nil {
		ctx.Printf("✓ Cleared grade of %s\n", c.Course)
	} else {
		ctx.Printf("✓ Graded %s with %.1f\n", c.Course, *c.Grade)
	}
	return nil
}

type AvailableCmd struct{}

func (c *AvailableCmd) Run(ctx *cli.Context) error {
	snap, err := ctx.Session(context.Background())
	if err != nil {
		return err
	}

	courses := snap.Plan.Available()
	if len(courses) == 0 {
		ctx.Println("No courses available.")
		return nil
	}
	for _, course := range courses {
		prereqs := ""
		if len(course.Prerequisites) > 0 {
			prereqs = "after " + strings.Join(course.Prerequisites, ", ")
		}
		ctx.Printf("  %-10s %-40s phase %-2d %2d cr  %s\n", course.ID, course.Name, course.Phase, course.Credits, prereqs)
	}
	return nil
}
