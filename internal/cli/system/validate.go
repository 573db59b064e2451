package system

import (
	"context"
	"strings"

	"github.com/julianstephens/courselit/internal/cli"
	"github.com/julianstephens/courselit/internal/errors"
)

type ValidateCmd struct{}

func (c *ValidateCmd) Run(ctx *cli.Context) error {
	snap, err := ctx.Session(context.Background())
	if err != nil {
		return err
	}

	report := snap.Report(ctx.Config.Timetable.Slots)
	ctx.Println(strings.TrimSuffix(report.FormatReport(), "\n"))
	if report.HasConflicts() {
		return errors.ErrConflicts
	}
	return nil
}
