package curricula

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/julianstephens/courselit/internal/cli"
	"github.com/julianstephens/courselit/internal/curriculum"
	"github.com/julianstephens/courselit/internal/layout"
	"github.com/julianstephens/courselit/internal/logger"
	"github.com/julianstephens/courselit/internal/models"
	"github.com/julianstephens/courselit/internal/validation"
)

type ImportCmd struct {
	File     string `arg:"" help:"Curriculum source file (.json, .yaml, .yml or .toml)." type:"existingfile"`
	ID       string `help:"Curriculum ID. Defaults to the id field, then the file name."`
	Activate bool   `help:"Make this the active curriculum."`
}

func (c *ImportCmd) Run(ctx *cli.Context) error {
	cur, err := curriculum.LoadFile(c.File)
	if err != nil {
		return err
	}
	if c.ID != "" {
		cur.ID = c.ID
	}
	if cur.ID == "" {
		cur.ID = strings.TrimSuffix(filepath.Base(c.File), filepath.Ext(c.File))
	}
	// Course-level problems are reported below and do not block the import.
	header := cur
	header.Phases = nil
	if err := validation.Struct(header); err != nil {
		return fmt.Errorf("invalid curriculum: %w", err)
	}

	lookup, warnings := curriculum.NewLookup(cur)
	report := curriculum.Validate(cur, lookup)
	report.Add(warnings...)
	for _, w := range report.Conflicts {
		logger.Warn("Curriculum warning", "curriculum", cur.ID, "type", w.Type, "detail", w.Description)
	}

	if err := ctx.Store.SaveCurriculum(cur); err != nil {
		return err
	}
	ctx.Printf("✓ Imported curriculum %s (%s): %d phases, %d courses\n", cur.ID, cur.Name, cur.TotalPhases, lookup.Len())
	if report.HasConflicts() {
		ctx.Println(strings.TrimSuffix(report.FormatReport(), "\n"))
	}

	if c.Activate {
		settings, err := ctx.Store.GetSettings()
		if err != nil {
			return fmt.Errorf("failed to get settings: %w", err)
		}
		settings.ActiveCurriculumID = cur.ID
		if err := ctx.Store.SaveSettings(settings); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
		ctx.Printf("Active curriculum set to %s\n", cur.ID)
	}
	return nil
}

type ListCmd struct{}

func (c *ListCmd) Run(ctx *cli.Context) error {
	infos, err := ctx.Store.ListCurricula()
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		ctx.Println("No curricula imported. Use 'courselit curriculum import FILE'.")
		return nil
	}

	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	for _, info := range infos {
		marker := " "
		if info.ID == settings.ActiveCurriculumID {
			marker = "*"
		}
		ctx.Printf("%s %-16s %-40s %s\n", marker, info.ID, info.Name, info.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

type ShowCmd struct {
	ID string `arg:"" optional:"" help:"Curriculum ID. Defaults to the active student's curriculum."`
}

func (c *ShowCmd) Run(ctx *cli.Context) error {
	cur, err := c.resolve(ctx)
	if err != nil {
		return err
	}

	engine := ctx.Layout()
	vis := engine.Curriculum(cur)
	width, height := layout.Bounds(vis.Positions)

	ctx.Printf("%s (%s): %d phases, %d courses\n", cur.Name, cur.ID, cur.TotalPhases, cur.CourseCount())
	ctx.Printf("Canvas %.0f x %.0f\n", width, height)
	printPositions(ctx, cur, vis.Positions)
	return nil
}

func (c *ShowCmd) resolve(ctx *cli.Context) (models.Curriculum, error) {
	if c.ID != "" {
		return ctx.Store.GetCurriculum(c.ID)
	}
	snap, err := ctx.Session(context.Background())
	if err != nil {
		return models.Curriculum{}, errors.Join(errors.New("no curriculum ID given and no active session"), err)
	}
	return snap.Curriculum, nil
}

func printPositions(ctx *cli.Context, cur models.Curriculum, positions []models.CoursePosition) {
	names := make(map[string]string)
	for _, p := range cur.Phases {
		for _, course := range p.Courses {
			names[course.ID] = course.Name
		}
	}

	lastX := -1.0
	for _, pos := range positions {
		if pos.X != lastX {
			ctx.Printf("\nx=%.0f\n", pos.X)
			lastX = pos.X
		}
		ctx.Printf("  %-10s %-40s y=%-6.0f w=%.0f\n", pos.CourseID, names[pos.CourseID], pos.Y, pos.Width)
	}
}
