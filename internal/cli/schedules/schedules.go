package schedules

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/courselit/internal/cli"
	"github.com/julianstephens/courselit/internal/logger"
	"github.com/julianstephens/courselit/internal/models"
	"github.com/julianstephens/courselit/internal/session"
	"github.com/julianstephens/courselit/internal/storage"
	"github.com/julianstephens/courselit/internal/timetable"
)

type ImportCmd struct {
	File       string `arg:"" help:"Schedule source file, JSON unless --csv." type:"existingfile"`
	CSV        bool   `help:"Read default course schedules from CSV (course_id,day,start_time)."`
	ID         string `help:"Schedule ID. Defaults to the curriculum ID."`
	Curriculum string `help:"Curriculum the schedule belongs to. Defaults to the active curriculum."`
}

func (c *ImportCmd) Run(ctx *cli.Context) error {
	curriculumID := c.Curriculum
	if curriculumID == "" {
		settings, err := ctx.Store.GetSettings()
		if err != nil {
			return fmt.Errorf("failed to get settings: %w", err)
		}
		curriculumID = settings.ActiveCurriculumID
	}
	if curriculumID == "" {
		return errors.New("no curriculum given and none active, use --curriculum")
	}
	id := c.ID
	if id == "" {
		id = curriculumID
	}

	src, err := c.read(ctx, id)
	if err != nil {
		return err
	}
	for _, courseID := range src.Invalid {
		logger.Warn("Skipping unreadable schedule entries", "course", courseID)
	}

	if err := ctx.Store.SaveSchedule(id, curriculumID, src); err != nil {
		return err
	}
	ctx.Printf("✓ Imported schedule %s for %s: %d courses, %d with professor schedules\n",
		id, curriculumID, len(src.Courses), len(src.Professors))
	if n := len(src.Invalid); n > 0 {
		ctx.Printf("%d course(s) skipped with unreadable entries\n", n)
	}
	return nil
}

func (c *ImportCmd) read(ctx *cli.Context, id string) (models.ScheduleSource, error) {
	f, err := os.Open(c.File)
	if err != nil {
		return models.ScheduleSource{}, fmt.Errorf("failed to open schedule file: %w", err)
	}
	defer f.Close()

	if !c.CSV {
		var src models.ScheduleSource
		if err := json.NewDecoder(f).Decode(&src); err != nil {
			return models.ScheduleSource{}, fmt.Errorf("failed to parse schedule: %w", err)
		}
		return src, nil
	}

	defaults, warnings, err := timetable.ReadDefaultsCSV(f)
	if err != nil {
		return models.ScheduleSource{}, err
	}
	for _, w := range warnings {
		ctx.Printf("warning: %s\n", w.Description)
	}

	// CSV carries only default schedules; professor data already stored is kept.
	src, err := ctx.Store.GetSchedule(id)
	if errors.Is(err, storage.ErrNotFound) {
		src = models.NewScheduleSource()
	} else if err != nil {
		return models.ScheduleSource{}, err
	}
	src.Courses = defaults
	src.Invalid = nil
	return src, nil
}

// SelectCmd picks the professor whose schedule replaces a course's default.
type SelectCmd struct {
	Course    string `arg:"" help:"Course ID."`
	Professor string `arg:"" optional:"" help:"Professor ID. Omit to go back to the default schedule."`
}

func (c *SelectCmd) Run(ctx *cli.Context) error {
	snap, err := ctx.Session(context.Background())
	if err != nil {
		return err
	}
	if c.Professor != "" {
		if _, ok := snap.Overrides[c.Course][c.Professor]; !ok {
			return fmt.Errorf("professor %s has no schedule for course %s", c.Professor, c.Course)
		}
	}

	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	src := snap.Schedule
	if src.Selected == nil {
		src.Selected = make(map[string]string)
	}
	if c.Professor == "" {
		delete(src.Selected, c.Course)
	} else {
		src.Selected[c.Course] = c.Professor
	}
	if err := ctx.Store.SaveSchedule(session.ScheduleID(settings, snap.Degree), snap.Degree, src); err != nil {
		return err
	}

	if c.Professor == "" {
		ctx.Printf("✓ %s uses its default schedule\n", c.Course)
	} else {
		ctx.Printf("✓ %s uses the schedule of professor %s\n", c.Course, c.Professor)
	}
	return nil
}

type TimetableCmd struct {
	CSV string `help:"Write the grid as CSV to this file ('-' for stdout)." type:"path"`
}

func (c *TimetableCmd) Run(ctx *cli.Context) error {
	snap, err := ctx.Session(context.Background())
	if err != nil {
		return err
	}
	result := snap.Timetable(ctx.Config.Timetable.Slots)

	switch c.CSV {
	case "":
		printGrid(ctx, result.Grid)
	case "-":
		if err := timetable.WriteCSV(ctx.Stdout(), result.Grid); err != nil {
			return err
		}
	default:
		f, err := os.Create(c.CSV)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", c.CSV, err)
		}
		if err := timetable.WriteCSV(f, result.Grid); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to write %s: %w", c.CSV, err)
		}
		ctx.Printf("✓ Timetable written to %s\n", c.CSV)
	}

	for _, id := range result.Unscheduled {
		ctx.Printf("no schedule: %s\n", id)
	}
	for _, w := range result.Warnings {
		ctx.Printf("warning: %s\n", w.Description)
	}
	for _, col := range result.Collisions {
		ctx.Printf("collision: %s\n", col.Description)
	}
	return nil
}
